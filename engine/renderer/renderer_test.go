package renderer_test

import (
	"errors"
	"testing"

	"github.com/Carmen-Shannon/oxy-timewarp/engine/mesh"
	"github.com/Carmen-Shannon/oxy-timewarp/engine/renderer"
	"github.com/Carmen-Shannon/oxy-timewarp/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-timewarp/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-timewarp/engine/renderer/renderertest"
	"github.com/Carmen-Shannon/oxy-timewarp/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sceneVS = `
struct SceneConstants { world_view_proj: mat4x4<f32>, };
@group(0) @binding(0) var<uniform> constants: SceneConstants;
struct VertexOutput {
    @builtin(position) position: vec4<f32>,
    @location(0) color: vec3<f32>,
};
@vertex
fn vs_main(@location(0) position: vec3<f32>, @location(1) color: vec3<f32>) -> VertexOutput {
    var out: VertexOutput;
    out.position = constants.world_view_proj * vec4<f32>(position, 1.0);
    out.color = color;
    return out;
}
`

const sceneFS = `
@fragment
fn fs_main(@location(0) color: vec3<f32>) -> @location(0) vec4<f32> {
    return vec4<f32>(color, 1.0);
}
`

const warpVS = `
struct WarpConstants { inv_warp: mat4x4<f32>, projection: mat4x4<f32>, };
@group(0) @binding(0) var<uniform> warp: WarpConstants;
struct VertexOutput {
    @builtin(position) position: vec4<f32>,
    @location(0) tex_coord: vec2<f32>,
};
@vertex
fn vs_main(@location(0) tex_coord: vec2<f32>) -> VertexOutput {
    var out: VertexOutput;
    out.position = warp.projection * vec4<f32>(tex_coord, 1.0, 1.0);
    out.tex_coord = tex_coord;
    return out;
}
`

const warpFS = `
@group(1) @binding(0) var frame_texture: texture_2d<f32>;
@group(1) @binding(1) var frame_sampler: sampler;
@fragment
fn fs_main(@location(0) tex_coord: vec2<f32>) -> @location(0) vec4<f32> {
    return textureSample(frame_texture, frame_sampler, tex_coord);
}
`

var black = wgpu.Color{R: 0, G: 0, B: 0, A: 1}

type fixture struct {
	backend      *renderertest.Backend
	renderer     renderer.Renderer
	scene        pipeline.Pipeline
	warp         pipeline.Pipeline
	intermediate renderer.RenderTarget
}

func newShader(t *testing.T, key string, st shader.ShaderType, src string) shader.Shader {
	t.Helper()
	s, err := shader.NewShader(key, st, src)
	require.NoError(t, err)
	return s
}

func newScenePipeline(t *testing.T, key string) pipeline.Pipeline {
	t.Helper()
	cube := mesh.NewSceneCube()
	return pipeline.NewPipeline(key,
		pipeline.WithVertexShader(newShader(t, "scene_vs", shader.ShaderTypeVertex, sceneVS)),
		pipeline.WithFragmentShader(newShader(t, "scene_fs", shader.ShaderTypeFragment, sceneFS)),
		pipeline.WithVertexLayout(mesh.SceneVertexLayout()),
		pipeline.WithMesh(bind_group_provider.NewBindGroupProvider("cube",
			bind_group_provider.WithMeshData(cube.VertexBytes(), cube.IndexBytes(), cube.IndexCount()))),
		pipeline.WithVertexConstants(bind_group_provider.NewBindGroupProvider("scene constants")),
		pipeline.WithCullMode(wgpu.CullModeBack),
		pipeline.WithFrontFace(wgpu.FrontFaceCW),
	)
}

func newWarpPipeline(t *testing.T) pipeline.Pipeline {
	t.Helper()
	grid, err := mesh.NewWarpGrid(4)
	require.NoError(t, err)
	return pipeline.NewPipeline("warp",
		pipeline.WithVertexShader(newShader(t, "warp_vs", shader.ShaderTypeVertex, warpVS)),
		pipeline.WithFragmentShader(newShader(t, "warp_fs", shader.ShaderTypeFragment, warpFS)),
		pipeline.WithVertexLayout(mesh.WarpVertexLayout()),
		pipeline.WithMesh(bind_group_provider.NewBindGroupProvider("grid",
			bind_group_provider.WithMeshData(grid.VertexBytes(), grid.IndexBytes(), grid.IndexCount()))),
		pipeline.WithVertexConstants(bind_group_provider.NewBindGroupProvider("warp constants")),
		pipeline.WithTextureGroup(1),
	)
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	backend := renderertest.NewBackend()
	r, err := renderer.NewRenderer(renderertest.Surface{W: 64, H: 48}, renderer.WithBackend(backend))
	require.NoError(t, err)

	f := &fixture{backend: backend, renderer: r, scene: newScenePipeline(t, "scene"), warp: newWarpPipeline(t)}
	require.NoError(t, r.RegisterPipelines(f.scene, f.warp))

	f.intermediate, err = r.CreateRenderTarget("Intermediate", r.Width(), r.Height())
	require.NoError(t, err)
	backend.Reset()
	return f
}

func TestNewRenderer(t *testing.T) {
	backend := renderertest.NewBackend()
	r, err := renderer.NewRenderer(renderertest.Surface{W: 800, H: 600}, renderer.WithBackend(backend))
	require.NoError(t, err)

	assert.Equal(t, 800, r.Width())
	assert.Equal(t, 600, r.Height())
	assert.True(t, r.BackBuffer().IsBackBuffer())
	assert.Equal(t, 800, backend.Width)
	assert.Equal(t, 600, backend.Height)

	_, err = renderer.NewRenderer(renderertest.Surface{W: 0, H: 600}, renderer.WithBackend(backend))
	assert.Error(t, err)
}

func TestNewRenderer_ConfiguresSurfaceOnce(t *testing.T) {
	backend := renderertest.NewBackend()
	_, err := renderer.NewRenderer(renderertest.Surface{W: 640, H: 480}, renderer.WithBackend(backend))
	require.NoError(t, err)

	assert.Equal(t, []string{renderertest.OpConfigureSurface}, backend.Ops())
}

func TestRenderer_RegisterPipelines(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.renderer.RegisterPipelines(f.scene))
	assert.Empty(t, f.backend.Events, "already registered pipelines are skipped")
	assert.Same(t, f.scene, f.renderer.Pipeline("scene"))
	assert.Nil(t, f.renderer.Pipeline("missing"))

	incomplete := pipeline.NewPipeline("incomplete")
	err := f.renderer.RegisterPipelines(incomplete)
	assert.True(t, errors.Is(err, pipeline.ErrMissingShader))
	assert.Nil(t, f.renderer.Pipeline("incomplete"))

	boom := errors.New("device lost")
	f.backend.RegisterPipelineErr = boom
	err = f.renderer.RegisterPipelines(newScenePipeline(t, "scene2"))
	assert.ErrorIs(t, err, boom)
	assert.Nil(t, f.renderer.Pipeline("scene2"))
}

func TestRenderer_StrictShaderValidation(t *testing.T) {
	backend := renderertest.NewBackend()
	r, err := renderer.NewRenderer(renderertest.Surface{W: 8, H: 8},
		renderer.WithBackend(backend),
		renderer.WithStrictShaderValidation(true),
	)
	require.NoError(t, err)

	broken := `@fragment fn fs_main(@location(0) color: vec3<f32>) -> @location(0) vec4<f32> { return missing_value; }`
	scene := newScenePipeline(t, "scene")
	p := pipeline.NewPipeline("broken",
		pipeline.WithVertexShader(scene.Shader(shader.ShaderTypeVertex)),
		pipeline.WithFragmentShader(newShader(t, "broken_fs", shader.ShaderTypeFragment, broken)),
		pipeline.WithVertexLayout(mesh.SceneVertexLayout()),
		pipeline.WithMesh(scene.Mesh()),
		pipeline.WithVertexConstants(scene.VertexConstants()),
	)

	assert.Error(t, r.RegisterPipelines(p))
	assert.Empty(t, backend.EventsOf(renderertest.OpRegisterPipeline))
}

func TestRenderer_CreateRenderTarget(t *testing.T) {
	f := newFixture(t)

	_, err := f.renderer.CreateRenderTarget("bad", 0, 10)
	assert.Error(t, err)

	target, err := f.renderer.CreateRenderTarget("extra", 16, 8)
	require.NoError(t, err)
	assert.Equal(t, "extra", target.Label())
	assert.Equal(t, 16, target.Width())
	assert.Equal(t, 8, target.Height())
	assert.False(t, target.IsBackBuffer())
	assert.Equal(t, []renderertest.Event{{Op: renderertest.OpInitRenderTarget, Target: "extra"}}, f.backend.Events)
}

func TestRenderer_FrameSequence(t *testing.T) {
	f := newFixture(t)
	r := f.renderer
	back := r.BackBuffer()

	require.NoError(t, r.BeginFrame())
	require.NoError(t, r.ClearTarget(f.intermediate, black))
	require.NoError(t, r.ClearTarget(back, black))
	r.UnbindTextures()

	require.NoError(t, r.BeginPass(f.intermediate))
	require.NoError(t, r.DrawPipeline(f.scene))
	require.NoError(t, r.EndPass())

	require.NoError(t, r.BeginPass(back))
	require.NoError(t, r.BindTexture(f.intermediate))
	require.NoError(t, r.DrawPipeline(f.warp))
	require.NoError(t, r.EndPass())

	require.NoError(t, r.EndFrame())
	require.NoError(t, r.Present())

	assert.Equal(t, []string{
		renderertest.OpBeginFrame,
		renderertest.OpBeginPass, renderertest.OpDraw, renderertest.OpEndPass,
		renderertest.OpBeginPass, renderertest.OpDraw, renderertest.OpEndPass,
		renderertest.OpEndFrame,
		renderertest.OpPresent,
	}, f.backend.Ops())

	passes := f.backend.EventsOf(renderertest.OpBeginPass)
	require.Len(t, passes, 2)
	assert.Equal(t, "Intermediate", passes[0].Target)
	require.NotNil(t, passes[0].Clear)
	assert.Equal(t, black, *passes[0].Clear)
	assert.Equal(t, "Back Buffer", passes[1].Target)
	require.NotNil(t, passes[1].Clear)

	draws := f.backend.EventsOf(renderertest.OpDraw)
	assert.Equal(t, renderertest.Event{Op: renderertest.OpDraw, Pipeline: "scene", IndexCount: 36}, draws[0])
	assert.Equal(t, renderertest.Event{Op: renderertest.OpDraw, Pipeline: "warp", Texture: "Intermediate", IndexCount: 54}, draws[1])
}

func TestRenderer_SecondPassLoadsContents(t *testing.T) {
	f := newFixture(t)
	r := f.renderer

	require.NoError(t, r.BeginFrame())
	require.NoError(t, r.ClearTarget(f.intermediate, black))
	require.NoError(t, r.BeginPass(f.intermediate))
	require.NoError(t, r.EndPass())
	require.NoError(t, r.BeginPass(f.intermediate))
	require.NoError(t, r.EndPass())

	passes := f.backend.EventsOf(renderertest.OpBeginPass)
	require.Len(t, passes, 2)
	assert.NotNil(t, passes[0].Clear)
	assert.Nil(t, passes[1].Clear, "a clear is consumed by the first pass")
}

func TestRenderer_EndFrameFlushesClears(t *testing.T) {
	f := newFixture(t)
	r := f.renderer

	require.NoError(t, r.BeginFrame())
	require.NoError(t, r.ClearTarget(f.intermediate, black))
	require.NoError(t, r.ClearTarget(r.BackBuffer(), wgpu.Color{R: 1, A: 1}))
	require.NoError(t, r.ClearTarget(f.intermediate, wgpu.Color{G: 1, A: 1}))
	require.NoError(t, r.EndFrame())

	assert.Equal(t, []string{
		renderertest.OpBeginFrame,
		renderertest.OpBeginPass, renderertest.OpEndPass,
		renderertest.OpBeginPass, renderertest.OpEndPass,
		renderertest.OpEndFrame,
	}, f.backend.Ops())

	passes := f.backend.EventsOf(renderertest.OpBeginPass)
	assert.Equal(t, "Intermediate", passes[0].Target)
	assert.Equal(t, wgpu.Color{G: 1, A: 1}, *passes[0].Clear, "the last requested colour wins")
	assert.Equal(t, "Back Buffer", passes[1].Target)
}

func TestRenderer_TargetHazards(t *testing.T) {
	f := newFixture(t)
	r := f.renderer

	require.NoError(t, r.BeginFrame())

	require.NoError(t, r.BindTexture(f.intermediate))
	err := r.BeginPass(f.intermediate)
	assert.True(t, errors.Is(err, renderer.ErrTargetHazard), "drawing into a bound texture")

	r.UnbindTextures()
	require.NoError(t, r.BeginPass(f.intermediate))
	assert.True(t, errors.Is(r.BindTexture(f.intermediate), renderer.ErrTargetHazard), "binding the active target")
	assert.True(t, errors.Is(r.ClearTarget(f.intermediate, black), renderer.ErrTargetHazard), "clearing the active target")
	require.NoError(t, r.EndPass())

	assert.True(t, errors.Is(r.BindTexture(r.BackBuffer()), renderer.ErrTargetHazard), "sampling the back buffer")
}

func TestRenderer_DrawErrors(t *testing.T) {
	f := newFixture(t)
	r := f.renderer

	require.NoError(t, r.BeginFrame())
	assert.True(t, errors.Is(r.DrawPipeline(f.scene), renderer.ErrNoActivePass))
	assert.True(t, errors.Is(r.EndPass(), renderer.ErrNoActivePass))

	require.NoError(t, r.BeginPass(r.BackBuffer()))
	assert.True(t, errors.Is(r.DrawPipeline(newScenePipeline(t, "scene")), renderer.ErrPipelineNotRegistered),
		"a record with a registered key is still a different pipeline")
	assert.True(t, errors.Is(r.DrawPipeline(nil), renderer.ErrPipelineNotRegistered))

	r.UnbindTextures()
	assert.True(t, errors.Is(r.DrawPipeline(f.warp), renderer.ErrNoTextureBound))
	assert.Empty(t, f.backend.EventsOf(renderertest.OpDraw))
}

func TestRenderer_FrameStateErrors(t *testing.T) {
	f := newFixture(t)
	r := f.renderer

	assert.True(t, errors.Is(r.ClearTarget(f.intermediate, black), renderer.ErrFrameState))
	assert.True(t, errors.Is(r.BeginPass(f.intermediate), renderer.ErrFrameState))
	assert.True(t, errors.Is(r.EndFrame(), renderer.ErrFrameState))
	assert.True(t, errors.Is(r.Present(), renderer.ErrFrameState))

	require.NoError(t, r.BeginFrame())
	assert.True(t, errors.Is(r.BeginFrame(), renderer.ErrFrameState))

	require.NoError(t, r.BeginPass(f.intermediate))
	assert.True(t, errors.Is(r.BeginPass(r.BackBuffer()), renderer.ErrFrameState))
	assert.True(t, errors.Is(r.EndFrame(), renderer.ErrFrameState))
	require.NoError(t, r.EndPass())

	require.NoError(t, r.EndFrame())
	assert.True(t, errors.Is(r.BeginFrame(), renderer.ErrFrameState), "the frame has not been presented")
	require.NoError(t, r.Present())
	require.NoError(t, r.BeginFrame())
}

func TestRenderer_BeginFrameBackendError(t *testing.T) {
	f := newFixture(t)
	f.backend.BeginFrameErr = errors.New("surface lost")

	assert.ErrorIs(t, f.renderer.BeginFrame(), f.backend.BeginFrameErr)
	assert.True(t, errors.Is(f.renderer.BeginPass(f.intermediate), renderer.ErrFrameState))
}

func TestRenderer_WriteBuffers(t *testing.T) {
	f := newFixture(t)
	data := []byte{1, 2, 3, 4}

	f.renderer.WriteBuffers([]bind_group_provider.BufferWrite{{Provider: f.scene.VertexConstants(), Binding: 0, Data: data}})
	data[0] = 9

	writes := f.backend.WritesTo("scene constants")
	require.Len(t, writes, 1)
	assert.Equal(t, []byte{1, 2, 3, 4}, writes[0].Data)
}

func TestRenderer_Release(t *testing.T) {
	f := newFixture(t)

	f.renderer.Release()

	assert.True(t, f.backend.Released)
	assert.Nil(t, f.renderer.Pipeline("scene"))
	assert.Equal(t, renderertest.OpRelease, f.backend.Ops()[len(f.backend.Ops())-1])
}
