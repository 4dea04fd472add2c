package renderer

import (
	"github.com/Carmen-Shannon/oxy-timewarp/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-timewarp/engine/renderer/pipeline"
	"github.com/cogentcore/webgpu/wgpu"
)

// RendererBackendType identifies the GPU backend implementation used by the Renderer.
type RendererBackendType int

const (
	// BackendTypeWGPU selects the WebGPU-based rendering backend.
	BackendTypeWGPU RendererBackendType = iota

	// BackendTypeCustom marks a renderer whose backend was supplied with WithBackend.
	BackendTypeCustom
)

// RendererBackend is the GPU-facing half of the Renderer. The Renderer validates call order and binding
// state, then forwards each operation to its backend; a backend may therefore assume every call it
// receives is legal. The WebGPU implementation is created by NewRenderer; tests substitute a recording
// backend with WithBackend.
type RendererBackend interface {
	// ConfigureSurface configures the presentation surface for the given size in pixels.
	// Frames are always presented on vertical blank (FIFO, sync interval 1).
	//
	// Parameters:
	//   - width: the surface width in pixels
	//   - height: the surface height in pixels
	//
	// Returns:
	//   - error: an error if the surface could not be configured
	ConfigureSurface(width, height int) error

	// RegisterRenderPipeline creates the GPU pipeline and bind group layouts for a pipeline record,
	// uploads its staged mesh and creates the bind groups of its constant slots.
	//
	// Parameters:
	//   - p: the validated pipeline record
	//
	// Returns:
	//   - error: an error if any GPU object could not be created
	RegisterRenderPipeline(p pipeline.Pipeline) error

	// InitRenderTarget allocates the colour texture of an offscreen render target.
	// The texture is usable both as a render attachment and as a sampled texture.
	//
	// Parameters:
	//   - t: the render target to allocate
	//
	// Returns:
	//   - error: an error if the texture could not be created
	InitRenderTarget(t RenderTarget) error

	// WriteBuffers queues constant slot writes.
	//
	// Parameters:
	//   - writes: the buffer writes to queue
	WriteBuffers(writes []bind_group_provider.BufferWrite)

	// BeginFrame acquires the next surface texture and opens a command encoder for the frame.
	//
	// Returns:
	//   - error: an error if the surface texture could not be acquired
	BeginFrame() error

	// BeginPass opens a render pass into a target. A nil clear loads the target's previous contents.
	//
	// Parameters:
	//   - t: the render target to draw into
	//   - clear: the clear colour, or nil to keep existing contents
	//
	// Returns:
	//   - error: an error if the pass could not be started
	BeginPass(t RenderTarget, clear *wgpu.Color) error

	// DrawPipeline records one indexed draw of the pipeline's full mesh in the open pass.
	//
	// Parameters:
	//   - p: the registered pipeline to draw
	//   - texture: the render target sampled at the pipeline's texture group, or nil if the pipeline samples none
	//
	// Returns:
	//   - error: an error if the draw could not be recorded
	DrawPipeline(p pipeline.Pipeline, texture RenderTarget) error

	// EndPass closes the open render pass.
	EndPass()

	// EndFrame finishes the frame's command encoder and submits it to the GPU queue.
	//
	// Returns:
	//   - error: an error if the command buffer could not be finished
	EndFrame() error

	// Present presents the acquired surface texture and releases it.
	Present()

	// Release releases the device, surface and every backend-owned GPU object.
	Release()
}
