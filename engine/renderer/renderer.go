package renderer

import (
	"errors"
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-timewarp/common"
	"github.com/Carmen-Shannon/oxy-timewarp/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-timewarp/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-timewarp/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

var (
	// ErrTargetHazard is returned when a render target would be drawn into while bound as a sampled texture.
	ErrTargetHazard = errors.New("render target is both the render destination and a sampled input")

	// ErrNoActivePass is returned when a draw is issued or a pass is ended with no pass open.
	ErrNoActivePass = errors.New("no active render pass")

	// ErrPipelineNotRegistered is returned when drawing a pipeline that was never registered.
	ErrPipelineNotRegistered = errors.New("pipeline is not registered")

	// ErrFrameState is returned when frame-level calls arrive out of order.
	ErrFrameState = errors.New("invalid frame state")

	// ErrNoTextureBound is returned when drawing a pipeline that samples a render target while none is bound.
	ErrNoTextureBound = errors.New("pipeline samples a render target but none is bound")
)

// SurfaceSource provides the presentation surface the renderer draws its back buffer into.
// window.Window satisfies it.
type SurfaceSource interface {
	// SurfaceDescriptor returns the platform-specific descriptor used to create the GPU surface.
	SurfaceDescriptor() *wgpu.SurfaceDescriptor

	// Width returns the surface width in pixels.
	Width() int

	// Height returns the surface height in pixels.
	Height() int
}

// renderer is the implementation of the Renderer interface.
type renderer struct {
	mu *sync.Mutex

	pipelineCache map[string]pipeline.Pipeline
	targets       []RenderTarget
	backBuffer    *renderTarget

	backendType RendererBackendType
	backend     RendererBackend

	// Pre-creation config collected from builder options
	forceFallbackAdapter   bool
	strictShaderValidation bool
	pendingBackend         RendererBackend

	// Per-frame binding state
	frameActive   bool
	frameEnded    bool
	activeTarget  RenderTarget
	boundTexture  RenderTarget
	pendingClears map[RenderTarget]wgpu.Color
	clearOrder    []RenderTarget
}

// Renderer defines the interface for the rendering system.
//
// The Renderer owns the GPU device, the back buffer and every registered pipeline. A frame is recorded as
// a sequence of passes: BeginFrame, then for each pass BeginPass, any number of BindTexture and DrawPipeline
// calls and EndPass, and finally EndFrame and Present. ClearTarget requests a clear that is applied when the
// target's next pass opens, or at EndFrame if it is never drawn into.
//
// The Renderer tracks which target is being drawn into and which target is bound as a sampled texture, and
// refuses any call that would make one target both at once.
type Renderer interface {
	// RegisterPipelines validates each pipeline record, creates its GPU objects through the backend and caches
	// it by PipelineKey. Pipelines whose keys are already registered are skipped.
	//
	// Parameters:
	//   - pipelines: the Pipelines to register
	//
	// Returns:
	//   - error: an error if validation or GPU object creation fails
	RegisterPipelines(pipelines ...pipeline.Pipeline) error

	// Pipeline retrieves the registered Pipeline associated with the given key.
	//
	// Parameters:
	//   - key: the unique identifier of the Pipeline
	//
	// Returns:
	//   - pipeline.Pipeline: the Pipeline associated with the key, or nil if not found
	Pipeline(key string) pipeline.Pipeline

	// CreateRenderTarget allocates an offscreen colour target in the surface format.
	//
	// Parameters:
	//   - label: a debug label for the target
	//   - width: the target width in pixels
	//   - height: the target height in pixels
	//
	// Returns:
	//   - RenderTarget: the new target, owned by the renderer
	//   - error: an error if the size is invalid or the texture could not be created
	CreateRenderTarget(label string, width, height int) (RenderTarget, error)

	// BackBuffer returns the render target that is presented at the end of each frame.
	//
	// Returns:
	//   - RenderTarget: the back buffer
	BackBuffer() RenderTarget

	// Width returns the surface width in pixels.
	Width() int

	// Height returns the surface height in pixels.
	Height() int

	// WriteBuffers queues constant slot writes. They land before the next submitted frame.
	//
	// Parameters:
	//   - writes: the buffer writes
	WriteBuffers(writes []bind_group_provider.BufferWrite)

	// BeginFrame acquires the next back buffer image.
	//
	// Returns:
	//   - error: ErrFrameState if a frame is already active, or the backend error
	BeginFrame() error

	// ClearTarget requests that a target be cleared to a colour this frame.
	//
	// Parameters:
	//   - t: the target to clear
	//   - color: the clear colour
	//
	// Returns:
	//   - error: ErrFrameState outside a frame, ErrTargetHazard if t is the target of the open pass
	ClearTarget(t RenderTarget, color wgpu.Color) error

	// UnbindTextures unbinds the sampled render target, if any.
	UnbindTextures()

	// BeginPass opens a render pass into a target.
	//
	// Parameters:
	//   - t: the target to draw into
	//
	// Returns:
	//   - error: ErrFrameState outside a frame or with a pass already open, ErrTargetHazard if t is bound as a texture
	BeginPass(t RenderTarget) error

	// BindTexture binds an offscreen render target as the sampled texture for subsequent draws.
	//
	// Parameters:
	//   - t: the target to sample
	//
	// Returns:
	//   - error: ErrTargetHazard if t is the target of the open pass or the back buffer
	BindTexture(t RenderTarget) error

	// DrawPipeline draws a registered pipeline's full mesh into the open pass, binding its constant slots and,
	// when it declares a texture group, the bound render target.
	//
	// Parameters:
	//   - p: the pipeline to draw
	//
	// Returns:
	//   - error: ErrNoActivePass, ErrPipelineNotRegistered or ErrNoTextureBound on misuse
	DrawPipeline(p pipeline.Pipeline) error

	// EndPass closes the open render pass.
	//
	// Returns:
	//   - error: ErrNoActivePass if no pass is open
	EndPass() error

	// EndFrame applies clears that no pass consumed and submits the frame.
	//
	// Returns:
	//   - error: ErrFrameState outside a frame or with a pass still open, or the backend error
	EndFrame() error

	// Present presents the back buffer. Must follow EndFrame.
	//
	// Returns:
	//   - error: ErrFrameState if the frame was not ended
	Present() error

	// Release releases every pipeline, then every render target, then the device.
	Release()
}

var _ Renderer = &renderer{}

// NewRenderer creates a new Renderer drawing into the surface provided by the given source.
// Unless WithBackend supplies a backend, a WebGPU device is created for the surface.
//
// Parameters:
//   - surface: the presentation surface source, typically a window.Window
//   - options: variadic list of RendererBuilderOption functions to configure the Renderer
//
// Returns:
//   - Renderer: the new Renderer
//   - error: an error if the device or surface could not be set up
func NewRenderer(surface SurfaceSource, options ...RendererBuilderOption) (Renderer, error) {
	r := &renderer{
		mu:            &sync.Mutex{},
		pipelineCache: make(map[string]pipeline.Pipeline),
		backendType:   BackendTypeWGPU,
		pendingClears: make(map[RenderTarget]wgpu.Color),
	}

	// Apply options first so config flags (e.g. forceFallbackAdapter) are
	// available before the backend requests a GPU adapter.
	for _, opt := range options {
		opt(r)
	}

	if surface.Width() <= 0 || surface.Height() <= 0 {
		return nil, fmt.Errorf("invalid surface size %dx%d", surface.Width(), surface.Height())
	}

	switch {
	case r.pendingBackend != nil:
		r.backendType = BackendTypeCustom
		r.backend = r.pendingBackend
	default:
		b, err := newWGPURendererBackend(surface.SurfaceDescriptor(), r.forceFallbackAdapter)
		if err != nil {
			return nil, fmt.Errorf("failed to create wgpu backend: %w", err)
		}
		r.backend = b
	}

	if err := r.backend.ConfigureSurface(surface.Width(), surface.Height()); err != nil {
		r.backend.Release()
		return nil, fmt.Errorf("failed to configure surface: %w", err)
	}

	r.backBuffer = newRenderTarget("Back Buffer", surface.Width(), surface.Height(), true)
	common.Logger().Info("renderer created",
		"width", surface.Width(),
		"height", surface.Height(),
		"backend", r.backendType,
	)
	return r, nil
}

func (r *renderer) RegisterPipelines(pipelines ...pipeline.Pipeline) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, p := range pipelines {
		key := p.PipelineKey()
		if _, exists := r.pipelineCache[key]; exists {
			continue
		}
		if err := p.Validate(); err != nil {
			return err
		}
		if err := r.validateShaders(p); err != nil {
			return err
		}
		if err := r.backend.RegisterRenderPipeline(p); err != nil {
			return fmt.Errorf("failed to register pipeline %s: %w", key, err)
		}
		r.pipelineCache[key] = p
		common.Logger().Debug("pipeline registered", "pipeline", key, "indices", p.IndexCount())
	}
	return nil
}

// validateShaders compiles both shader stages off the GPU. Failures are fatal only with strict validation,
// since the driver compiler may accept WGSL the offline compiler does not support yet.
func (r *renderer) validateShaders(p pipeline.Pipeline) error {
	for _, st := range []shader.ShaderType{shader.ShaderTypeVertex, shader.ShaderTypeFragment} {
		s := p.Shader(st)
		if err := s.Validate(); err != nil {
			if r.strictShaderValidation {
				return fmt.Errorf("pipeline %s: %w", p.PipelineKey(), err)
			}
			common.Logger().Warn("shader validation failed, deferring to the GPU compiler",
				"pipeline", p.PipelineKey(),
				"shader", s.Key(),
				"error", err,
			)
		}
	}
	return nil
}

func (r *renderer) Pipeline(key string) pipeline.Pipeline {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pipelineCache[key]
}

func (r *renderer) CreateRenderTarget(label string, width, height int) (RenderTarget, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("render target %s: invalid size %dx%d", label, width, height)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	t := newRenderTarget(label, width, height, false)
	if err := r.backend.InitRenderTarget(t); err != nil {
		return nil, fmt.Errorf("render target %s: %w", label, err)
	}
	r.targets = append(r.targets, t)
	return t, nil
}

func (r *renderer) BackBuffer() RenderTarget {
	return r.backBuffer
}

func (r *renderer) Width() int {
	return r.backBuffer.Width()
}

func (r *renderer) Height() int {
	return r.backBuffer.Height()
}

func (r *renderer) WriteBuffers(writes []bind_group_provider.BufferWrite) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.backend.WriteBuffers(writes)
}

func (r *renderer) BeginFrame() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.frameActive || r.frameEnded {
		return fmt.Errorf("%w: BeginFrame called before the previous frame was presented", ErrFrameState)
	}
	if err := r.backend.BeginFrame(); err != nil {
		return err
	}
	r.frameActive = true
	return nil
}

func (r *renderer) ClearTarget(t RenderTarget, color wgpu.Color) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.frameActive {
		return fmt.Errorf("%w: ClearTarget outside a frame", ErrFrameState)
	}
	if t == r.activeTarget {
		return fmt.Errorf("%w: cannot clear %s while drawing into it", ErrTargetHazard, t.Label())
	}
	if _, pending := r.pendingClears[t]; !pending {
		r.clearOrder = append(r.clearOrder, t)
	}
	r.pendingClears[t] = color
	return nil
}

func (r *renderer) UnbindTextures() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.boundTexture = nil
}

func (r *renderer) BeginPass(t RenderTarget) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.frameActive {
		return fmt.Errorf("%w: BeginPass outside a frame", ErrFrameState)
	}
	if r.activeTarget != nil {
		return fmt.Errorf("%w: pass into %s is still open", ErrFrameState, r.activeTarget.Label())
	}
	if t == r.boundTexture {
		return fmt.Errorf("%w: %s is bound as a texture", ErrTargetHazard, t.Label())
	}
	return r.beginPass(t)
}

// beginPass opens the pass and consumes any pending clear for t. Callers hold mu.
func (r *renderer) beginPass(t RenderTarget) error {
	var clear *wgpu.Color
	if c, ok := r.pendingClears[t]; ok {
		clear = &c
		r.dropPendingClear(t)
	}
	if err := r.backend.BeginPass(t, clear); err != nil {
		return fmt.Errorf("failed to begin pass into %s: %w", t.Label(), err)
	}
	r.activeTarget = t
	return nil
}

func (r *renderer) dropPendingClear(t RenderTarget) {
	delete(r.pendingClears, t)
	for i, pending := range r.clearOrder {
		if pending == t {
			r.clearOrder = append(r.clearOrder[:i], r.clearOrder[i+1:]...)
			break
		}
	}
}

func (r *renderer) BindTexture(t RenderTarget) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if t.IsBackBuffer() {
		return fmt.Errorf("%w: the back buffer cannot be sampled", ErrTargetHazard)
	}
	if t == r.activeTarget {
		return fmt.Errorf("%w: %s is the active pass target", ErrTargetHazard, t.Label())
	}
	r.boundTexture = t
	return nil
}

func (r *renderer) DrawPipeline(p pipeline.Pipeline) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.activeTarget == nil {
		return ErrNoActivePass
	}
	if p == nil || r.pipelineCache[p.PipelineKey()] != p {
		return ErrPipelineNotRegistered
	}

	var texture RenderTarget
	if p.TextureGroup() != pipeline.NoBindGroup {
		if r.boundTexture == nil {
			return fmt.Errorf("pipeline %s: %w", p.PipelineKey(), ErrNoTextureBound)
		}
		texture = r.boundTexture
	}
	return r.backend.DrawPipeline(p, texture)
}

func (r *renderer) EndPass() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.activeTarget == nil {
		return ErrNoActivePass
	}
	r.backend.EndPass()
	r.activeTarget = nil
	return nil
}

func (r *renderer) EndFrame() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.frameActive {
		return fmt.Errorf("%w: EndFrame outside a frame", ErrFrameState)
	}
	if r.activeTarget != nil {
		return fmt.Errorf("%w: pass into %s is still open", ErrFrameState, r.activeTarget.Label())
	}

	// a clear with no pass behind it still has to reach the target
	for len(r.clearOrder) > 0 {
		t := r.clearOrder[0]
		if err := r.beginPass(t); err != nil {
			return err
		}
		r.backend.EndPass()
		r.activeTarget = nil
	}

	r.frameActive = false
	if err := r.backend.EndFrame(); err != nil {
		return fmt.Errorf("failed to submit frame: %w", err)
	}
	r.frameEnded = true
	return nil
}

func (r *renderer) Present() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.frameEnded {
		return fmt.Errorf("%w: Present before EndFrame", ErrFrameState)
	}
	r.backend.Present()
	r.frameEnded = false
	return nil
}

func (r *renderer) Release() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for key, p := range r.pipelineCache {
		p.Release()
		delete(r.pipelineCache, key)
	}
	for _, t := range r.targets {
		t.Release()
	}
	r.targets = nil
	r.backBuffer.Release()

	r.backend.Release()
	common.Logger().Info("renderer released")
}
