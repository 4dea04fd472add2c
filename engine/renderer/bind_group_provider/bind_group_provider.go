package bind_group_provider

import (
	"github.com/cogentcore/webgpu/wgpu"
)

// bindGroupProvider is the unexported implementation of BindGroupProvider.
type bindGroupProvider struct {
	// label is a debug label added for convenience.
	label string

	// The following fields are staged on the CPU at construction and uploaded when the owning pipeline is registered.

	vertexData []byte
	indexData  []byte
	// indexCount is the number of indices for draw calls, used by the Renderer to issue DrawIndexed calls for this provider.
	indexCount int

	// The following fields are GPU allocated resources and must be released when no longer needed. They are populated by the Renderer during registration, not by user-creation.

	// bindGroup is the GPU bind group created for this provider, or nil if it holds no constant slot.
	bindGroup *wgpu.BindGroup
	// buffers holds the GPU uniform buffers created for this provider, keyed by binding index.
	buffers map[int]*wgpu.Buffer
	// vertexBuffer is the GPU vertex buffer created from vertexData, or nil if the provider holds no mesh.
	vertexBuffer *wgpu.Buffer
	// indexBuffer is the GPU index buffer created from indexData, or nil if the provider holds no mesh.
	indexBuffer *wgpu.Buffer
}

// BindGroupProvider defines the interface for the GPU resources a pipeline reads from: either a mesh
// (vertex and index buffers) or a constant slot (uniform buffers behind one bind group).
//
// Usage pattern:
//  1. The frame orchestrator creates a provider, staging mesh data with WithMeshData for meshes
//  2. The provider is attached to a Pipeline as its mesh, vertex constants or pixel constants
//  3. Renderer.RegisterPipelines uploads the staged mesh and creates the constant bind groups
//  4. Each frame the orchestrator calls Renderer.WriteBuffers with a BufferWrite per constant slot
//  5. The renderer backend reads BindGroup, VertexBuffer and IndexBuffer while drawing
type BindGroupProvider interface {
	// Release releases any GPU resources held by this provider.
	// Staged CPU data is kept so the provider can be uploaded again.
	Release()

	// Label returns the debug label of the provider.
	//
	// Returns:
	//   - string: the label used for GPU object labels
	Label() string

	// VertexData returns the staged vertex bytes.
	//
	// Returns:
	//   - []byte: the raw vertex data, or nil for constant slots
	VertexData() []byte

	// IndexData returns the staged index bytes (uint32 indices).
	//
	// Returns:
	//   - []byte: the raw index data, or nil for constant slots
	IndexData() []byte

	// BindGroup returns the GPU bind group for this provider.
	//
	// Returns:
	//   - *wgpu.BindGroup: the bind group, or nil if not initialized with the Renderer
	BindGroup() *wgpu.BindGroup

	// Buffer returns the GPU buffer at a binding index.
	//
	// Parameters:
	//   - binding: the binding index within the bind group
	//
	// Returns:
	//   - *wgpu.Buffer: the buffer, or nil if none was created at that binding
	Buffer(binding int) *wgpu.Buffer

	// Buffers returns every GPU buffer held by the provider, keyed by binding index.
	//
	// Returns:
	//   - map[int]*wgpu.Buffer: the buffers
	Buffers() map[int]*wgpu.Buffer

	// VertexBuffer returns the GPU vertex buffer.
	//
	// Returns:
	//   - *wgpu.Buffer: the vertex buffer, or nil if not uploaded
	VertexBuffer() *wgpu.Buffer

	// IndexBuffer returns the GPU index buffer.
	//
	// Returns:
	//   - *wgpu.Buffer: the index buffer, or nil if not uploaded
	IndexBuffer() *wgpu.Buffer

	// IndexCount returns the number of indices drawn from the index buffer.
	//
	// Returns:
	//   - int: the index count
	IndexCount() int

	// SetBindGroup stores the GPU bind group.
	//
	// Parameters:
	//   - bg: the bind group
	SetBindGroup(bg *wgpu.BindGroup)

	// SetBuffer stores a GPU buffer at a binding index.
	//
	// Parameters:
	//   - binding: the binding index
	//   - buf: the buffer
	SetBuffer(binding int, buf *wgpu.Buffer)

	// SetVertexBuffer stores the GPU vertex buffer.
	//
	// Parameters:
	//   - buf: the vertex buffer
	SetVertexBuffer(buf *wgpu.Buffer)

	// SetIndexBuffer stores the GPU index buffer.
	//
	// Parameters:
	//   - buf: the index buffer
	SetIndexBuffer(buf *wgpu.Buffer)

	// SetIndexCount sets the number of indices drawn from the index buffer.
	//
	// Parameters:
	//   - count: the index count
	SetIndexCount(count int)
}

// Compile-time check that bindGroupProvider implements BindGroupProvider
var _ BindGroupProvider = &bindGroupProvider{}

// BufferWrite describes a single GPU buffer write targeting one binding of a BindGroupProvider
// at a given byte offset. Writes are queued and land before the next submitted frame.
type BufferWrite struct {
	Provider BindGroupProvider
	Binding  int
	Offset   uint64
	Data     []byte
}

// NewBindGroupProvider creates a new BindGroupProvider with the provided options.
//
// Parameters:
//   - label: a debug label used for the GPU objects created for this provider
//   - options: a variadic list of options to configure the provider
//
// Returns:
//   - BindGroupProvider: a new instance of BindGroupProvider configured with the provided options
func NewBindGroupProvider(label string, options ...BindGroupProviderOption) BindGroupProvider {
	p := &bindGroupProvider{
		label:   label,
		buffers: make(map[int]*wgpu.Buffer),
	}
	for _, opt := range options {
		opt(p)
	}
	return p
}

func (p *bindGroupProvider) Label() string {
	return p.label
}

func (p *bindGroupProvider) VertexData() []byte {
	return p.vertexData
}

func (p *bindGroupProvider) IndexData() []byte {
	return p.indexData
}

func (p *bindGroupProvider) BindGroup() *wgpu.BindGroup {
	return p.bindGroup
}

func (p *bindGroupProvider) Buffer(binding int) *wgpu.Buffer {
	return p.buffers[binding]
}

func (p *bindGroupProvider) Buffers() map[int]*wgpu.Buffer {
	return p.buffers
}

func (p *bindGroupProvider) VertexBuffer() *wgpu.Buffer {
	return p.vertexBuffer
}

func (p *bindGroupProvider) IndexBuffer() *wgpu.Buffer {
	return p.indexBuffer
}

func (p *bindGroupProvider) IndexCount() int {
	return p.indexCount
}

func (p *bindGroupProvider) SetBindGroup(bg *wgpu.BindGroup) {
	p.bindGroup = bg
}

func (p *bindGroupProvider) SetBuffer(binding int, buf *wgpu.Buffer) {
	if p.buffers == nil {
		p.buffers = make(map[int]*wgpu.Buffer)
	}
	p.buffers[binding] = buf
}

func (p *bindGroupProvider) SetVertexBuffer(buf *wgpu.Buffer) {
	p.vertexBuffer = buf
}

func (p *bindGroupProvider) SetIndexBuffer(buf *wgpu.Buffer) {
	p.indexBuffer = buf
}

func (p *bindGroupProvider) SetIndexCount(count int) {
	p.indexCount = count
}

func (p *bindGroupProvider) Release() {
	for i, buf := range p.buffers {
		if buf != nil {
			buf.Release()
		}
		delete(p.buffers, i)
	}

	if p.bindGroup != nil {
		p.bindGroup.Release()
		p.bindGroup = nil
	}
	if p.vertexBuffer != nil {
		p.vertexBuffer.Release()
		p.vertexBuffer = nil
	}
	if p.indexBuffer != nil {
		p.indexBuffer.Release()
		p.indexBuffer = nil
	}
}
