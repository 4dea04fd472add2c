package bind_group_provider

// BindGroupProviderOption is a functional option used to configure a BindGroupProvider during construction.
type BindGroupProviderOption func(*bindGroupProvider)

// WithMeshData stages vertex and index bytes for upload when the owning pipeline is registered.
//
// Parameters:
//   - vertexData: the raw vertex bytes
//   - indexData: the raw uint32 index bytes
//   - indexCount: the number of indices in indexData
//
// Returns:
//   - BindGroupProviderOption: a function that stages the mesh data on the provider
func WithMeshData(vertexData, indexData []byte, indexCount int) BindGroupProviderOption {
	return func(p *bindGroupProvider) {
		p.vertexData = vertexData
		p.indexData = indexData
		p.indexCount = indexCount
	}
}
