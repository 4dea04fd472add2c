package engine

import (
	"embed"
	"fmt"

	"github.com/Carmen-Shannon/oxy-timewarp/engine/mesh"
	"github.com/Carmen-Shannon/oxy-timewarp/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-timewarp/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-timewarp/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

//go:embed shaders/*.wgsl
var shaderFS embed.FS

// PipelineIndex identifies an entry of the engine's pipeline table.
type PipelineIndex int

const (
	// SceneRender draws the coloured cube into the intermediate target.
	SceneRender PipelineIndex = iota
	// RotationalTimewarp draws the warp grid into the back buffer, sampling the intermediate target.
	RotationalTimewarp

	pipelineCount
)

func (i PipelineIndex) String() string {
	switch i {
	case SceneRender:
		return "scene_render"
	case RotationalTimewarp:
		return "rotational_timewarp"
	default:
		return fmt.Sprintf("PipelineIndex(%d)", int(i))
	}
}

// Bind group layout of the warp program.
const (
	warpTextureGroup     = 1
	warpPixelConstsGroup = 2
)

// loadShader reads an embedded WGSL file and reflects it.
func loadShader(name string, shaderType shader.ShaderType) (shader.Shader, error) {
	src, err := shaderFS.ReadFile("shaders/" + name + ".wgsl")
	if err != nil {
		return nil, fmt.Errorf("failed to read embedded shader %s: %w", name, err)
	}
	return shader.NewShader(name, shaderType, string(src))
}

func loadShaderPair(vsName, fsName string) (shader.Shader, shader.Shader, error) {
	vs, err := loadShader(vsName, shader.ShaderTypeVertex)
	if err != nil {
		return nil, nil, err
	}
	fs, err := loadShader(fsName, shader.ShaderTypeFragment)
	if err != nil {
		return nil, nil, err
	}
	return vs, fs, nil
}

// newScenePipeline builds the cube pipeline. The cube's front faces wind clockwise.
func newScenePipeline() (pipeline.Pipeline, error) {
	vs, fs, err := loadShaderPair("scene_vs", "scene_fs")
	if err != nil {
		return nil, err
	}

	cube := mesh.NewSceneCube()
	return pipeline.NewPipeline(SceneRender.String(),
		pipeline.WithVertexShader(vs),
		pipeline.WithFragmentShader(fs),
		pipeline.WithVertexLayout(mesh.SceneVertexLayout()),
		pipeline.WithMesh(bind_group_provider.NewBindGroupProvider("scene cube",
			bind_group_provider.WithMeshData(cube.VertexBytes(), cube.IndexBytes(), cube.IndexCount()),
		)),
		pipeline.WithVertexConstants(bind_group_provider.NewBindGroupProvider("scene constants")),
		pipeline.WithFrontFace(wgpu.FrontFaceCW),
		pipeline.WithCullMode(wgpu.CullModeBack),
	), nil
}

// newWarpPipeline builds the grid pipeline that samples the intermediate target.
//
// Parameters:
//   - gridResolution: vertices per side of the warp grid
//
// Returns:
//   - pipeline.Pipeline: the warp pipeline
//   - error: mesh.ErrGridResolution or a shader error
func newWarpPipeline(gridResolution int) (pipeline.Pipeline, error) {
	vs, fs, err := loadShaderPair("warp_vs", "warp_fs")
	if err != nil {
		return nil, err
	}

	grid, err := mesh.NewWarpGrid(gridResolution)
	if err != nil {
		return nil, err
	}
	return pipeline.NewPipeline(RotationalTimewarp.String(),
		pipeline.WithVertexShader(vs),
		pipeline.WithFragmentShader(fs),
		pipeline.WithVertexLayout(mesh.WarpVertexLayout()),
		pipeline.WithMesh(bind_group_provider.NewBindGroupProvider("warp grid",
			bind_group_provider.WithMeshData(grid.VertexBytes(), grid.IndexBytes(), grid.IndexCount()),
		)),
		pipeline.WithVertexConstants(bind_group_provider.NewBindGroupProvider("warp constants")),
		pipeline.WithPixelConstants(warpPixelConstsGroup, bind_group_provider.NewBindGroupProvider("warp pixel constants")),
		pipeline.WithTextureGroup(warpTextureGroup),
		pipeline.WithCullMode(wgpu.CullModeNone),
	), nil
}
