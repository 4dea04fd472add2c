package pipeline

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy-timewarp/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-timewarp/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

// NoBindGroup marks an optional bind group slot as unused.
const NoBindGroup = -1

// VertexConstantsGroup is the bind group index the vertex-stage constant slot is bound at.
const VertexConstantsGroup = 0

var (
	// ErrMissingShader is returned when a pipeline is validated without both shader stages.
	ErrMissingShader = errors.New("pipeline requires a vertex and a fragment shader")

	// ErrMissingMesh is returned when a pipeline is validated without a mesh provider.
	ErrMissingMesh = errors.New("pipeline requires a mesh provider")

	// ErrLayoutMismatch is returned when the vertex layout does not feed the vertex shader inputs.
	ErrLayoutMismatch = errors.New("vertex layout does not match vertex shader inputs")
)

// pipeline is the implementation of the Pipeline interface.
// It bundles everything a single draw needs: the shader pair, the vertex layout, the mesh and the
// constant slots, plus the GPU pipeline objects created when the pipeline is registered.
type pipeline struct {
	// pipelineKey is the unique identifier for this pipeline, used for labels and lookups
	pipelineKey string

	vertexShader, fragmentShader shader.Shader

	// vertexLayout describes how the mesh's vertex buffer feeds the vertex shader inputs
	vertexLayout wgpu.VertexBufferLayout

	// mesh holds the staged vertex/index data and, once registered, the GPU buffers
	mesh bind_group_provider.BindGroupProvider
	// vertexConstants is the vertex-stage constant slot, bound at VertexConstantsGroup
	vertexConstants bind_group_provider.BindGroupProvider
	// pixelConstants is the optional fragment-stage constant slot, bound at pixelConstantsGroup
	pixelConstants      bind_group_provider.BindGroupProvider
	pixelConstantsGroup int
	// textureGroup is the bind group a sampled render target is bound at, or NoBindGroup
	textureGroup int

	// GPU objects, populated by the renderer backend during registration.
	renderPipeline   *wgpu.RenderPipeline
	bindGroupLayouts []*wgpu.BindGroupLayout

	blendEnabled bool
	cullMode     wgpu.CullMode
	topology     wgpu.PrimitiveTopology
	frontFace    wgpu.FrontFace
	writeMask    wgpu.ColorWriteMask
	blendState   *wgpu.BlendState
}

// Pipeline defines the interface for a render pipeline record. It ties a vertex/fragment shader pair
// to the mesh it draws, the vertex layout that feeds it and the constant slots it reads from, together
// with the fixed-function state (cull, winding, topology, blend) used when the GPU pipeline is created.
type Pipeline interface {
	// PipelineKey returns the unique key associated with this pipeline, used for caching and lookups.
	//
	// Returns:
	//   - string: the unique key for this pipeline
	PipelineKey() string

	// Shader retrieves the shader associated with the specified stage if it exists, nil otherwise.
	//
	// Parameters:
	//   - shaderType: the stage of shader to retrieve (vertex or fragment)
	//
	// Returns:
	//   - shader.Shader: the shader associated with the stage, or nil if not set
	Shader(shaderType shader.ShaderType) shader.Shader

	// VertexLayout returns the vertex buffer layout the mesh is read with.
	//
	// Returns:
	//   - wgpu.VertexBufferLayout: the vertex buffer layout
	VertexLayout() wgpu.VertexBufferLayout

	// Mesh returns the provider holding the mesh's vertex and index buffers.
	//
	// Returns:
	//   - bind_group_provider.BindGroupProvider: the mesh provider
	Mesh() bind_group_provider.BindGroupProvider

	// IndexCount returns the number of indices drawn by this pipeline.
	//
	// Returns:
	//   - int: the index count of the mesh, or 0 if no mesh is set
	IndexCount() int

	// VertexConstants returns the vertex-stage constant slot.
	//
	// Returns:
	//   - bind_group_provider.BindGroupProvider: the vertex constants provider
	VertexConstants() bind_group_provider.BindGroupProvider

	// PixelConstants returns the fragment-stage constant slot, or nil if the pipeline has none.
	//
	// Returns:
	//   - bind_group_provider.BindGroupProvider: the pixel constants provider
	PixelConstants() bind_group_provider.BindGroupProvider

	// PixelConstantsGroup returns the bind group index of the pixel constant slot.
	//
	// Returns:
	//   - int: the group index, or NoBindGroup
	PixelConstantsGroup() int

	// TextureGroup returns the bind group index at which a render target is sampled.
	//
	// Returns:
	//   - int: the group index, or NoBindGroup if the pipeline samples no texture
	TextureGroup() int

	// RenderPipeline returns the GPU render pipeline, or nil before registration.
	//
	// Returns:
	//   - *wgpu.RenderPipeline: the GPU render pipeline
	RenderPipeline() *wgpu.RenderPipeline

	// SetRenderPipeline sets the GPU render pipeline.
	//
	// Parameters:
	//   - p: the WebGPU render pipeline to set
	SetRenderPipeline(p *wgpu.RenderPipeline)

	// BindGroupLayout returns the GPU bind group layout created for a group during registration.
	//
	// Parameters:
	//   - group: the bind group index
	//
	// Returns:
	//   - *wgpu.BindGroupLayout: the layout, or nil if the group is unused or the pipeline is not registered
	BindGroupLayout(group int) *wgpu.BindGroupLayout

	// SetBindGroupLayouts stores the GPU bind group layouts, indexed by group.
	//
	// Parameters:
	//   - layouts: the layouts, one per group index
	SetBindGroupLayouts(layouts []*wgpu.BindGroupLayout)

	// BlendEnabled returns whether blending is enabled for this pipeline.
	//
	// Returns:
	//   - bool: true if blending is enabled, false otherwise
	BlendEnabled() bool

	// BlendState returns the blend state used when blending is enabled.
	//
	// Returns:
	//   - *wgpu.BlendState: the blend state for this pipeline
	BlendState() *wgpu.BlendState

	// CullMode returns the cull mode configured for this pipeline.
	//
	// Returns:
	//   - wgpu.CullMode: the cull mode for this pipeline (e.g., wgpu.CullModeNone, wgpu.CullModeBack)
	CullMode() wgpu.CullMode

	// Topology returns the primitive topology configured for this pipeline.
	//
	// Returns:
	//   - wgpu.PrimitiveTopology: the primitive topology for this pipeline
	Topology() wgpu.PrimitiveTopology

	// FrontFace returns the front face winding order configured for this pipeline.
	//
	// Returns:
	//   - wgpu.FrontFace: the front face winding order (e.g., wgpu.FrontFaceCCW, wgpu.FrontFaceCW)
	FrontFace() wgpu.FrontFace

	// WriteMask returns the color write mask configured for this pipeline.
	//
	// Returns:
	//   - wgpu.ColorWriteMask: the color write mask for this pipeline
	WriteMask() wgpu.ColorWriteMask

	// Validate checks that the record is complete and internally consistent before any GPU object is created:
	// both shaders are present, the vertex layout supplies every vertex shader input with a matching format,
	// and the texture and pixel constant groups are declared by the fragment shader.
	//
	// Returns:
	//   - error: the first inconsistency found, or nil
	Validate() error

	// Release releases the GPU pipeline, its bind group layouts, the mesh buffers and the constant slots.
	Release()
}

var _ Pipeline = &pipeline{}

// NewPipeline is the entry point to create a new Pipeline record.
//
// Parameters:
//   - pipelineKey: the unique key for this pipeline
//   - opts: a variadic list of PipelineBuilderOption functions to configure the pipeline
//
// Returns:
//   - Pipeline: a new Pipeline instance with the specified configuration
func NewPipeline(pipelineKey string, opts ...PipelineBuilderOption) Pipeline {
	p := &pipeline{
		pipelineKey:         pipelineKey,
		pixelConstantsGroup: NoBindGroup,
		textureGroup:        NoBindGroup,
		blendEnabled:        false,
		cullMode:            wgpu.CullModeNone,
		topology:            wgpu.PrimitiveTopologyTriangleList,
		frontFace:           wgpu.FrontFaceCCW,
		writeMask:           wgpu.ColorWriteMaskAll,
		blendState: &wgpu.BlendState{
			Color: wgpu.BlendComponent{
				SrcFactor: wgpu.BlendFactorSrcAlpha,
				DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
				Operation: wgpu.BlendOperationAdd,
			},
			Alpha: wgpu.BlendComponent{
				SrcFactor: wgpu.BlendFactorOne,
				DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
				Operation: wgpu.BlendOperationAdd,
			},
		},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *pipeline) PipelineKey() string {
	return p.pipelineKey
}

func (p *pipeline) Shader(shaderType shader.ShaderType) shader.Shader {
	switch shaderType {
	case shader.ShaderTypeVertex:
		return p.vertexShader
	case shader.ShaderTypeFragment:
		return p.fragmentShader
	default:
		return nil
	}
}

func (p *pipeline) VertexLayout() wgpu.VertexBufferLayout {
	return p.vertexLayout
}

func (p *pipeline) Mesh() bind_group_provider.BindGroupProvider {
	return p.mesh
}

func (p *pipeline) IndexCount() int {
	if p.mesh == nil {
		return 0
	}
	return p.mesh.IndexCount()
}

func (p *pipeline) VertexConstants() bind_group_provider.BindGroupProvider {
	return p.vertexConstants
}

func (p *pipeline) PixelConstants() bind_group_provider.BindGroupProvider {
	return p.pixelConstants
}

func (p *pipeline) PixelConstantsGroup() int {
	return p.pixelConstantsGroup
}

func (p *pipeline) TextureGroup() int {
	return p.textureGroup
}

func (p *pipeline) RenderPipeline() *wgpu.RenderPipeline {
	return p.renderPipeline
}

func (p *pipeline) SetRenderPipeline(rp *wgpu.RenderPipeline) {
	p.renderPipeline = rp
}

func (p *pipeline) BindGroupLayout(group int) *wgpu.BindGroupLayout {
	if group < 0 || group >= len(p.bindGroupLayouts) {
		return nil
	}
	return p.bindGroupLayouts[group]
}

func (p *pipeline) SetBindGroupLayouts(layouts []*wgpu.BindGroupLayout) {
	p.bindGroupLayouts = layouts
}

func (p *pipeline) BlendEnabled() bool {
	return p.blendEnabled
}

func (p *pipeline) BlendState() *wgpu.BlendState {
	return p.blendState
}

func (p *pipeline) CullMode() wgpu.CullMode {
	return p.cullMode
}

func (p *pipeline) Topology() wgpu.PrimitiveTopology {
	return p.topology
}

func (p *pipeline) FrontFace() wgpu.FrontFace {
	return p.frontFace
}

func (p *pipeline) WriteMask() wgpu.ColorWriteMask {
	return p.writeMask
}

func (p *pipeline) Validate() error {
	if p.vertexShader == nil || p.fragmentShader == nil {
		return fmt.Errorf("pipeline %s: %w", p.pipelineKey, ErrMissingShader)
	}
	if p.mesh == nil {
		return fmt.Errorf("pipeline %s: %w", p.pipelineKey, ErrMissingMesh)
	}
	if p.vertexConstants == nil {
		return fmt.Errorf("pipeline %s: vertex constant slot is not set", p.pipelineKey)
	}

	attributes := make(map[uint32]wgpu.VertexFormat, len(p.vertexLayout.Attributes))
	for _, a := range p.vertexLayout.Attributes {
		attributes[a.ShaderLocation] = a.Format
	}
	for _, in := range p.vertexShader.VertexInputs() {
		format, ok := attributes[in.Location]
		if !ok {
			return fmt.Errorf("pipeline %s: %w: no attribute for @location(%d) %s", p.pipelineKey, ErrLayoutMismatch, in.Location, in.Name)
		}
		if format != in.Format {
			return fmt.Errorf("pipeline %s: %w: @location(%d) %s expects format %v, layout has %v", p.pipelineKey, ErrLayoutMismatch, in.Location, in.Name, in.Format, format)
		}
	}

	if p.textureGroup != NoBindGroup && !declaresTexture(p.fragmentShader.BindGroupLayoutDescriptor(p.textureGroup)) {
		return fmt.Errorf("pipeline %s: fragment shader declares no texture at group %d", p.pipelineKey, p.textureGroup)
	}
	if p.pixelConstantsGroup != NoBindGroup {
		if p.pixelConstants == nil {
			return fmt.Errorf("pipeline %s: pixel constant group %d has no provider", p.pipelineKey, p.pixelConstantsGroup)
		}
		if len(p.fragmentShader.BindGroupLayoutDescriptor(p.pixelConstantsGroup).Entries) == 0 {
			return fmt.Errorf("pipeline %s: fragment shader declares nothing at group %d", p.pipelineKey, p.pixelConstantsGroup)
		}
	}
	return nil
}

func (p *pipeline) Release() {
	if p.renderPipeline != nil {
		p.renderPipeline.Release()
		p.renderPipeline = nil
	}
	for i, l := range p.bindGroupLayouts {
		if l != nil {
			l.Release()
			p.bindGroupLayouts[i] = nil
		}
	}
	p.bindGroupLayouts = nil

	for _, provider := range []bind_group_provider.BindGroupProvider{p.mesh, p.vertexConstants, p.pixelConstants} {
		if provider != nil {
			provider.Release()
		}
	}
}

func declaresTexture(desc wgpu.BindGroupLayoutDescriptor) bool {
	for _, e := range desc.Entries {
		if e.Texture.SampleType != wgpu.TextureSampleTypeUndefined {
			return true
		}
	}
	return false
}
