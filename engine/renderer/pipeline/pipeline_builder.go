package pipeline

import (
	"github.com/Carmen-Shannon/oxy-timewarp/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-timewarp/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

// PipelineBuilderOption is a functional option used to configure a Pipeline during construction.
type PipelineBuilderOption func(*pipeline)

// WithVertexShader sets the vertex shader for this pipeline.
//
// Parameters:
//   - s: the vertex shader to use for this pipeline
//
// Returns:
//   - PipelineBuilderOption: a function that sets the vertex shader
func WithVertexShader(s shader.Shader) PipelineBuilderOption {
	return func(p *pipeline) {
		p.vertexShader = s
	}
}

// WithFragmentShader sets the fragment shader for this pipeline.
//
// Parameters:
//   - s: the fragment shader to use for this pipeline
//
// Returns:
//   - PipelineBuilderOption: a function that sets the fragment shader
func WithFragmentShader(s shader.Shader) PipelineBuilderOption {
	return func(p *pipeline) {
		p.fragmentShader = s
	}
}

// WithVertexLayout sets the vertex buffer layout the mesh is read with.
//
// Parameters:
//   - layout: the vertex buffer layout, usually one of the mesh package layouts
//
// Returns:
//   - PipelineBuilderOption: a function that sets the vertex layout
func WithVertexLayout(layout wgpu.VertexBufferLayout) PipelineBuilderOption {
	return func(p *pipeline) {
		p.vertexLayout = layout
	}
}

// WithMesh sets the provider that stages the mesh data and later holds its GPU buffers.
//
// Parameters:
//   - mesh: the mesh provider, created with bind_group_provider.WithMeshData
//
// Returns:
//   - PipelineBuilderOption: a function that sets the mesh provider
func WithMesh(mesh bind_group_provider.BindGroupProvider) PipelineBuilderOption {
	return func(p *pipeline) {
		p.mesh = mesh
	}
}

// WithVertexConstants sets the vertex-stage constant slot, bound at VertexConstantsGroup.
//
// Parameters:
//   - constants: the provider whose uniform buffer the vertex shader reads
//
// Returns:
//   - PipelineBuilderOption: a function that sets the vertex constant slot
func WithVertexConstants(constants bind_group_provider.BindGroupProvider) PipelineBuilderOption {
	return func(p *pipeline) {
		p.vertexConstants = constants
	}
}

// WithPixelConstants sets the fragment-stage constant slot and the group it is bound at.
//
// Parameters:
//   - group: the bind group index declared by the fragment shader
//   - constants: the provider whose uniform buffer the fragment shader reads
//
// Returns:
//   - PipelineBuilderOption: a function that sets the pixel constant slot
func WithPixelConstants(group int, constants bind_group_provider.BindGroupProvider) PipelineBuilderOption {
	return func(p *pipeline) {
		p.pixelConstantsGroup = group
		p.pixelConstants = constants
	}
}

// WithTextureGroup declares that the pipeline samples a render target at the given bind group.
// The group must hold a texture at binding 0 and a sampler at binding 1.
//
// Parameters:
//   - group: the bind group index of the sampled texture
//
// Returns:
//   - PipelineBuilderOption: a function that sets the texture group
func WithTextureGroup(group int) PipelineBuilderOption {
	return func(p *pipeline) {
		p.textureGroup = group
	}
}

// WithBlendEnabled sets whether blending is enabled for this pipeline.
//
// Parameters:
//   - enabled: a boolean indicating whether blending should be enabled
//
// Returns:
//   - PipelineBuilderOption: a function that sets the blend enabled state
func WithBlendEnabled(enabled bool) PipelineBuilderOption {
	return func(p *pipeline) {
		p.blendEnabled = enabled
	}
}

// WithBlendState sets the blend state used when blending is enabled.
//
// Parameters:
//   - blendState: the blend state to use for this pipeline
//
// Returns:
//   - PipelineBuilderOption: a function that sets the blend state
func WithBlendState(blendState *wgpu.BlendState) PipelineBuilderOption {
	return func(p *pipeline) {
		p.blendState = blendState
	}
}

// WithCullMode sets the cull mode for this pipeline.
//
// Parameters:
//   - mode: the cull mode to use (e.g., wgpu.CullModeNone, wgpu.CullModeBack)
//
// Returns:
//   - PipelineBuilderOption: a function that sets the cull mode
func WithCullMode(mode wgpu.CullMode) PipelineBuilderOption {
	return func(p *pipeline) {
		p.cullMode = mode
	}
}

// WithTopology sets the primitive topology for this pipeline.
//
// Parameters:
//   - topology: the primitive topology to use (e.g., wgpu.PrimitiveTopologyTriangleList)
//
// Returns:
//   - PipelineBuilderOption: a function that sets the primitive topology
func WithTopology(topology wgpu.PrimitiveTopology) PipelineBuilderOption {
	return func(p *pipeline) {
		p.topology = topology
	}
}

// WithFrontFace sets the front face winding order for this pipeline.
//
// Parameters:
//   - frontFace: the front face to use (e.g., wgpu.FrontFaceCCW, wgpu.FrontFaceCW)
//
// Returns:
//   - PipelineBuilderOption: a function that sets the front face
func WithFrontFace(frontFace wgpu.FrontFace) PipelineBuilderOption {
	return func(p *pipeline) {
		p.frontFace = frontFace
	}
}

// WithWriteMask sets the color write mask for this pipeline.
//
// Parameters:
//   - writeMask: the color write mask to use (e.g., wgpu.ColorWriteMaskAll)
//
// Returns:
//   - PipelineBuilderOption: a function that sets the color write mask
func WithWriteMask(writeMask wgpu.ColorWriteMask) PipelineBuilderOption {
	return func(p *pipeline) {
		p.writeMask = writeMask
	}
}
