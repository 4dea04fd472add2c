// Package engine drives the rotational timewarp demo: it owns the window, the renderer, the camera
// and the two pipelines, and records one scene pass and one warp pass per frame.
package engine

import (
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-timewarp/common"
	"github.com/Carmen-Shannon/oxy-timewarp/engine/camera"
	"github.com/Carmen-Shannon/oxy-timewarp/engine/mesh"
	"github.com/Carmen-Shannon/oxy-timewarp/engine/profiler"
	"github.com/Carmen-Shannon/oxy-timewarp/engine/renderer"
	"github.com/Carmen-Shannon/oxy-timewarp/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-timewarp/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-timewarp/engine/timewarp"
	"github.com/Carmen-Shannon/oxy-timewarp/engine/window"
	"github.com/cogentcore/webgpu/wgpu"
)

// RenderMode selects how the scene reaches the screen.
type RenderMode int

const (
	// RenderModeWarped re-projects the intermediate target through the warp matrix.
	RenderModeWarped RenderMode = iota
	// RenderModeDirect draws the scene with the current view and passes the intermediate target through unwarped.
	RenderModeDirect
)

func (m RenderMode) String() string {
	if m == RenderModeDirect {
		return "direct"
	}
	return "warped"
}

// ScenePose selects the view the scene pass renders with in RenderModeWarped.
type ScenePose int

const (
	// ScenePoseCurrent renders the scene with the current view.
	ScenePoseCurrent ScenePose = iota
	// ScenePoseStale renders the scene with the stale view, so the warp pass alone turns the camera.
	ScenePoseStale
)

func (p ScenePose) String() string {
	if p == ScenePoseStale {
		return "stale"
	}
	return "current"
}

var clearColor = wgpu.Color{R: 0, G: 0, B: 0, A: 1}

// sceneConstants mirrors SceneConstants in scene_vs.wgsl.
type sceneConstants struct {
	WorldViewProj common.Matrix
}

// warpConstants mirrors WarpConstants in warp_vs.wgsl.
type warpConstants struct {
	InvWarp    common.Matrix
	Projection common.Matrix
}

// pixelConstants mirrors PixelConstants in warp_fs.wgsl.
type pixelConstants struct {
	BorderColor common.Vector4
}

// engine implements the Engine interface.
type engine struct {
	window     window.Window
	ownsWindow bool
	windowOpts []window.WindowBuilderOption

	renderer     renderer.Renderer
	ownsRenderer bool
	rendererOpts []renderer.RendererBuilderOption

	camera     camera.Camera
	controller camera.OrientationController

	pipelines    [pipelineCount]pipeline.Pipeline
	intermediate renderer.RenderTarget

	profiler         *profiler.Profiler
	profilingEnabled bool

	renderMode     RenderMode
	scenePose      ScenePose
	gridResolution int
	sensitivity    float32
	borderColor    common.Vector4

	lastWarp    common.Matrix
	releaseOnce sync.Once
}

// Engine is the main entry point for the demo.
// Every method must be called from the thread that created the Engine.
type Engine interface {
	// Frame records, submits and presents one frame.
	//
	// Returns:
	//   - error: the first renderer error of the frame
	Frame() error

	// Run calls Frame once per window message loop iteration until the window closes or a frame fails.
	//
	// Returns:
	//   - error: the frame error that ended the loop, or nil if the window was closed
	Run() error

	// Release tears down the pipelines, the render targets and the device if the engine created the
	// renderer, then closes the window if the engine created it. Safe to call more than once.
	Release()

	// Window returns the window the engine presents to.
	Window() window.Window

	// Renderer returns the renderer the engine draws with.
	Renderer() renderer.Renderer

	// Camera returns the engine's camera.
	Camera() camera.Camera

	// Pipeline returns the pipeline at the given table index, or nil if the index is out of range.
	//
	// Parameters:
	//   - index: the pipeline table index
	//
	// Returns:
	//   - pipeline.Pipeline: the pipeline
	Pipeline(index PipelineIndex) pipeline.Pipeline

	// RenderMode returns the active render mode.
	RenderMode() RenderMode

	// SetRenderMode selects the render mode from the next frame on.
	//
	// Parameters:
	//   - mode: the render mode
	SetRenderMode(mode RenderMode)

	// ScenePose returns the view the scene pass uses in RenderModeWarped.
	ScenePose() ScenePose

	// SetScenePose selects the scene pass view from the next frame on.
	//
	// Parameters:
	//   - pose: the scene pose
	SetScenePose(pose ScenePose)

	// Orientation returns the accumulated camera orientation.
	Orientation() timewarp.Orientation

	// LastWarp returns the warp matrix handed to the warp pass by the most recent frame.
	LastWarp() common.Matrix
}

var _ Engine = &engine{}

// NewEngine creates the window (unless one is supplied), the renderer, the camera, both pipelines
// and the intermediate render target. On failure everything created so far is released.
//
// Parameters:
//   - options: functional options for engine configuration
//
// Returns:
//   - Engine: the ready engine
//   - error: the first setup failure
func NewEngine(options ...EngineBuilderOption) (Engine, error) {
	e := &engine{
		profiler:       profiler.NewProfiler(),
		renderMode:     RenderModeWarped,
		scenePose:      ScenePoseCurrent,
		gridResolution: mesh.DefaultGridResolution,
		sensitivity:    camera.DefaultSensitivity,
		borderColor:    common.Vector4(common.BorderClampSampler().BorderColor),
		lastWarp:       common.Identity(),
	}
	for _, opt := range options {
		opt(e)
	}

	if err := e.init(); err != nil {
		e.Release()
		return nil, err
	}

	common.Logger().Info("engine ready",
		"width", e.renderer.Width(),
		"height", e.renderer.Height(),
		"grid", e.gridResolution,
		"mode", e.renderMode,
		"pose", e.scenePose,
	)
	return e, nil
}

func (e *engine) init() error {
	if e.window == nil {
		w, err := window.NewWindow(e.windowOpts...)
		if err != nil {
			return err
		}
		e.window = w
		e.ownsWindow = true
	}

	if e.renderer == nil {
		r, err := renderer.NewRenderer(e.window, e.rendererOpts...)
		if err != nil {
			return err
		}
		e.renderer = r
		e.ownsRenderer = true
	}

	e.controller = camera.NewOrientationController(camera.WithSensitivity(e.sensitivity))
	e.camera = camera.NewCamera(
		camera.WithAspect(float32(e.renderer.Width())/float32(e.renderer.Height())),
		camera.WithController(e.controller),
	)

	scene, err := newScenePipeline()
	if err != nil {
		return fmt.Errorf("scene pipeline: %w", err)
	}
	warp, err := newWarpPipeline(e.gridResolution)
	if err != nil {
		scene.Release()
		return fmt.Errorf("warp pipeline: %w", err)
	}
	if err := e.renderer.RegisterPipelines(scene, warp); err != nil {
		if e.renderer.Pipeline(scene.PipelineKey()) == nil {
			scene.Release()
		}
		warp.Release()
		return err
	}
	e.pipelines[SceneRender] = scene
	e.pipelines[RotationalTimewarp] = warp

	e.intermediate, err = e.renderer.CreateRenderTarget("Intermediate", e.renderer.Width(), e.renderer.Height())
	if err != nil {
		return err
	}

	border := pixelConstants{BorderColor: e.borderColor}
	e.renderer.WriteBuffers([]bind_group_provider.BufferWrite{{
		Provider: warp.PixelConstants(),
		Data:     common.StructToBytes(&border),
	}})

	e.window.SetKeyDownCallback(e.handleKeyDown)
	return nil
}

func (e *engine) handleKeyDown(keyCode uint32) {
	switch keyCode {
	case common.KeyM:
		if e.renderMode == RenderModeWarped {
			e.SetRenderMode(RenderModeDirect)
		} else {
			e.SetRenderMode(RenderModeWarped)
		}
	case common.KeyP:
		if e.scenePose == ScenePoseCurrent {
			e.SetScenePose(ScenePoseStale)
		} else {
			e.SetScenePose(ScenePoseCurrent)
		}
	}
}

// frameTransforms picks the scene view and the warp matrix for the active mode and pose.
func (e *engine) frameTransforms(staleView, currentView common.Matrix) (sceneView, warp common.Matrix) {
	if e.renderMode == RenderModeDirect {
		return currentView, common.Identity()
	}
	sceneView = currentView
	if e.scenePose == ScenePoseStale {
		sceneView = staleView
	}
	return sceneView, timewarp.ComputeWarpMatrix(staleView, currentView)
}

func (e *engine) Frame() error {
	r := e.renderer
	scene := e.pipelines[SceneRender]
	warp := e.pipelines[RotationalTimewarp]

	if err := r.BeginFrame(); err != nil {
		return err
	}
	if err := r.ClearTarget(e.intermediate, clearColor); err != nil {
		return err
	}
	if err := r.ClearTarget(r.BackBuffer(), clearColor); err != nil {
		return err
	}

	e.controller.Sample(e.window.CursorPosition())
	projection := e.camera.Projection()
	sceneView, warpMatrix := e.frameTransforms(e.camera.StaleView(), e.camera.CurrentView())
	e.lastWarp = warpMatrix

	// the intermediate target may still be bound from the previous frame's warp pass
	r.UnbindTextures()

	if err := r.BeginPass(e.intermediate); err != nil {
		return err
	}
	sceneConsts := sceneConstants{WorldViewProj: sceneView.Mul(projection)}
	r.WriteBuffers([]bind_group_provider.BufferWrite{{
		Provider: scene.VertexConstants(),
		Data:     common.StructToBytes(&sceneConsts),
	}})
	if err := r.DrawPipeline(scene); err != nil {
		return err
	}
	if err := r.EndPass(); err != nil {
		return err
	}

	if err := r.BeginPass(r.BackBuffer()); err != nil {
		return err
	}
	if err := r.BindTexture(e.intermediate); err != nil {
		return err
	}
	warpConsts := warpConstants{InvWarp: warpMatrix, Projection: projection}
	r.WriteBuffers([]bind_group_provider.BufferWrite{{
		Provider: warp.VertexConstants(),
		Data:     common.StructToBytes(&warpConsts),
	}})
	if err := r.DrawPipeline(warp); err != nil {
		return err
	}
	if err := r.EndPass(); err != nil {
		return err
	}

	if err := r.EndFrame(); err != nil {
		return err
	}
	if err := r.Present(); err != nil {
		return err
	}

	if e.profilingEnabled {
		e.profiler.Tick()
	}
	return nil
}

func (e *engine) Run() error {
	var frameErr error
	e.window.SetUpdateCallback(func() {
		if err := e.Frame(); err != nil {
			frameErr = err
			e.window.Stop()
		}
	})
	e.window.ProcessMessages()
	e.window.SetUpdateCallback(nil)

	if frameErr != nil {
		common.Logger().Error("frame failed", "error", frameErr)
	}
	return frameErr
}

func (e *engine) Release() {
	e.releaseOnce.Do(func() {
		// pipelines and targets belong to the renderer once registered
		if e.renderer != nil && e.ownsRenderer {
			e.renderer.Release()
		}
		if e.window != nil && e.ownsWindow {
			if err := e.window.Close(); err != nil {
				common.Logger().Warn("failed to close window", "error", err)
			}
		}
		common.Logger().Info("engine released")
	})
}

func (e *engine) Window() window.Window {
	return e.window
}

func (e *engine) Renderer() renderer.Renderer {
	return e.renderer
}

func (e *engine) Camera() camera.Camera {
	return e.camera
}

func (e *engine) Pipeline(index PipelineIndex) pipeline.Pipeline {
	if index < 0 || index >= pipelineCount {
		return nil
	}
	return e.pipelines[index]
}

func (e *engine) RenderMode() RenderMode {
	return e.renderMode
}

func (e *engine) SetRenderMode(mode RenderMode) {
	if mode == e.renderMode {
		return
	}
	e.renderMode = mode
	common.Logger().Info("render mode changed", "mode", mode)
}

func (e *engine) ScenePose() ScenePose {
	return e.scenePose
}

func (e *engine) SetScenePose(pose ScenePose) {
	if pose == e.scenePose {
		return
	}
	e.scenePose = pose
	common.Logger().Info("scene pose changed", "pose", pose)
}

func (e *engine) Orientation() timewarp.Orientation {
	return e.controller.Orientation()
}

func (e *engine) LastWarp() common.Matrix {
	return e.lastWarp
}
