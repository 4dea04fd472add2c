package engine

import (
	"github.com/Carmen-Shannon/oxy-timewarp/common"
	"github.com/Carmen-Shannon/oxy-timewarp/engine/renderer"
	"github.com/Carmen-Shannon/oxy-timewarp/engine/window"
)

// EngineBuilderOption is a functional option for configuring an Engine.
// Use the With* functions to create options that are applied directly to the engine instance.
type EngineBuilderOption func(*engine)

// WithWindow makes the engine present to an existing window instead of creating one.
// The caller keeps ownership and closes the window itself.
//
// Parameters:
//   - w: the window to present to
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithWindow(w window.Window) EngineBuilderOption {
	return func(e *engine) {
		e.window = w
	}
}

// WithWindowOptions sets the options the engine creates its own window with.
// Ignored when WithWindow supplies a window.
//
// Parameters:
//   - options: window builder options
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithWindowOptions(options ...window.WindowBuilderOption) EngineBuilderOption {
	return func(e *engine) {
		e.windowOpts = append(e.windowOpts, options...)
	}
}

// WithRenderer makes the engine draw with an existing renderer instead of creating one.
// The caller keeps ownership and releases the renderer, and with it the engine's pipelines.
//
// Parameters:
//   - r: the renderer to draw with
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithRenderer(r renderer.Renderer) EngineBuilderOption {
	return func(e *engine) {
		e.renderer = r
	}
}

// WithRendererOptions sets the options the engine creates its own renderer with.
// Ignored when WithRenderer supplies a renderer.
//
// Parameters:
//   - options: renderer builder options
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithRendererOptions(options ...renderer.RendererBuilderOption) EngineBuilderOption {
	return func(e *engine) {
		e.rendererOpts = append(e.rendererOpts, options...)
	}
}

// WithProfiling enables or disables performance profiling output.
//
// Parameters:
//   - enabled: if true, enables performance profiling
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProfiling(enabled bool) EngineBuilderOption {
	return func(e *engine) {
		e.profilingEnabled = enabled
	}
}

// WithRenderMode sets the starting render mode.
//
// Parameters:
//   - mode: RenderModeWarped or RenderModeDirect
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithRenderMode(mode RenderMode) EngineBuilderOption {
	return func(e *engine) {
		e.renderMode = mode
	}
}

// WithScenePose sets the starting scene pose.
//
// Parameters:
//   - pose: ScenePoseCurrent or ScenePoseStale
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithScenePose(pose ScenePose) EngineBuilderOption {
	return func(e *engine) {
		e.scenePose = pose
	}
}

// WithGridResolution sets the number of vertices along each side of the warp grid.
// Values below 2 make NewEngine fail.
//
// Parameters:
//   - n: vertices per side (default 65)
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithGridResolution(n int) EngineBuilderOption {
	return func(e *engine) {
		e.gridResolution = n
	}
}

// WithSensitivity sets the radians of rotation per pixel of pointer motion.
//
// Parameters:
//   - sensitivity: radians per pixel (default 0.001)
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithSensitivity(sensitivity float32) EngineBuilderOption {
	return func(e *engine) {
		e.sensitivity = sensitivity
	}
}

// WithBorderColor sets the colour the warp pass shows where no scene texel maps.
//
// Parameters:
//   - color: RGBA colour (default common.BorderClampSampler().BorderColor, transparent black)
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithBorderColor(color common.Vector4) EngineBuilderOption {
	return func(e *engine) {
		e.borderColor = color
	}
}
