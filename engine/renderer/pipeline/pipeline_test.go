package pipeline

import (
	"errors"
	"testing"

	"github.com/Carmen-Shannon/oxy-timewarp/engine/mesh"
	"github.com/Carmen-Shannon/oxy-timewarp/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-timewarp/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const gridVertexSource = `
struct WarpConstants {
    inv_warp: mat4x4<f32>,
    projection: mat4x4<f32>,
};
@group(0) @binding(0) var<uniform> warp: WarpConstants;

struct VertexOutput {
    @builtin(position) position: vec4<f32>,
    @location(0) tex_coord: vec2<f32>,
};

@vertex
fn vs_main(@location(0) tex_coord: vec2<f32>) -> VertexOutput {
    var out: VertexOutput;
    out.position = vec4<f32>(tex_coord, 0.0, 1.0);
    out.tex_coord = tex_coord;
    return out;
}
`

const gridFragmentSource = `
struct PixelConstants {
    border_color: vec4<f32>,
};
@group(1) @binding(0) var frame_texture: texture_2d<f32>;
@group(1) @binding(1) var frame_sampler: sampler;
@group(2) @binding(0) var<uniform> pixel: PixelConstants;

@fragment
fn fs_main(@location(0) tex_coord: vec2<f32>) -> @location(0) vec4<f32> {
    return textureSample(frame_texture, frame_sampler, tex_coord) + pixel.border_color;
}
`

func newTestShaders(t *testing.T) (shader.Shader, shader.Shader) {
	t.Helper()
	vs, err := shader.NewShader("grid_vs", shader.ShaderTypeVertex, gridVertexSource)
	require.NoError(t, err)
	fs, err := shader.NewShader("grid_fs", shader.ShaderTypeFragment, gridFragmentSource)
	require.NoError(t, err)
	return vs, fs
}

func newTestPipeline(t *testing.T, opts ...PipelineBuilderOption) Pipeline {
	t.Helper()
	vs, fs := newTestShaders(t)
	grid, err := mesh.NewWarpGrid(3)
	require.NoError(t, err)

	base := []PipelineBuilderOption{
		WithVertexShader(vs),
		WithFragmentShader(fs),
		WithVertexLayout(mesh.WarpVertexLayout()),
		WithMesh(bind_group_provider.NewBindGroupProvider("grid",
			bind_group_provider.WithMeshData(grid.VertexBytes(), grid.IndexBytes(), grid.IndexCount()))),
		WithVertexConstants(bind_group_provider.NewBindGroupProvider("warp constants")),
		WithPixelConstants(2, bind_group_provider.NewBindGroupProvider("pixel constants")),
		WithTextureGroup(1),
	}
	return NewPipeline("warp", append(base, opts...)...)
}

func TestNewPipeline_Defaults(t *testing.T) {
	p := NewPipeline("empty")

	assert.Equal(t, "empty", p.PipelineKey())
	assert.Equal(t, NoBindGroup, p.TextureGroup())
	assert.Equal(t, NoBindGroup, p.PixelConstantsGroup())
	assert.Equal(t, wgpu.CullModeNone, p.CullMode())
	assert.Equal(t, wgpu.FrontFaceCCW, p.FrontFace())
	assert.Equal(t, wgpu.PrimitiveTopologyTriangleList, p.Topology())
	assert.Equal(t, wgpu.ColorWriteMaskAll, p.WriteMask())
	assert.False(t, p.BlendEnabled())
	assert.NotNil(t, p.BlendState())
	assert.Zero(t, p.IndexCount())
	assert.Nil(t, p.RenderPipeline())
	assert.Nil(t, p.BindGroupLayout(0))
	assert.Nil(t, p.Shader(shader.ShaderType(5)))
}

func TestNewPipeline_Options(t *testing.T) {
	p := newTestPipeline(t,
		WithCullMode(wgpu.CullModeBack),
		WithFrontFace(wgpu.FrontFaceCW),
		WithBlendEnabled(true),
		WithWriteMask(wgpu.ColorWriteMaskRed),
	)

	assert.Equal(t, wgpu.CullModeBack, p.CullMode())
	assert.Equal(t, wgpu.FrontFaceCW, p.FrontFace())
	assert.True(t, p.BlendEnabled())
	assert.Equal(t, wgpu.ColorWriteMaskRed, p.WriteMask())
	assert.Equal(t, 1, p.TextureGroup())
	assert.Equal(t, 2, p.PixelConstantsGroup())
	assert.Equal(t, 24, p.IndexCount())
	assert.Equal(t, "grid_vs", p.Shader(shader.ShaderTypeVertex).Key())
	assert.Equal(t, "grid_fs", p.Shader(shader.ShaderTypeFragment).Key())
	assert.NoError(t, p.Validate())
}

func TestPipeline_ValidateMissingPieces(t *testing.T) {
	vs, _ := newTestShaders(t)

	err := NewPipeline("no fragment", WithVertexShader(vs)).Validate()
	assert.True(t, errors.Is(err, ErrMissingShader))

	err = newTestPipeline(t, WithMesh(nil)).Validate()
	assert.True(t, errors.Is(err, ErrMissingMesh))

	err = newTestPipeline(t, WithVertexConstants(nil)).Validate()
	assert.Error(t, err)

	err = newTestPipeline(t, WithPixelConstants(2, nil)).Validate()
	assert.Error(t, err)
}

func TestPipeline_ValidateLayoutMismatch(t *testing.T) {
	err := newTestPipeline(t, WithVertexLayout(mesh.SceneVertexLayout())).Validate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrLayoutMismatch), "float32x3 at location 0 cannot feed a vec2 input")

	err = newTestPipeline(t, WithVertexLayout(wgpu.VertexBufferLayout{ArrayStride: 8})).Validate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrLayoutMismatch))
}

func TestPipeline_ValidateUndeclaredGroups(t *testing.T) {
	assert.Error(t, newTestPipeline(t, WithTextureGroup(2)).Validate(), "group 2 holds a uniform, not a texture")
	assert.Error(t, newTestPipeline(t, WithPixelConstants(3, bind_group_provider.NewBindGroupProvider("x"))).Validate())
}

func TestPipeline_BindGroupLayoutBounds(t *testing.T) {
	p := newTestPipeline(t)
	p.SetBindGroupLayouts([]*wgpu.BindGroupLayout{nil, nil, nil})

	assert.Nil(t, p.BindGroupLayout(-1))
	assert.Nil(t, p.BindGroupLayout(3))

	p.Release()
	assert.Nil(t, p.BindGroupLayout(0))
	assert.Nil(t, p.RenderPipeline())
}
