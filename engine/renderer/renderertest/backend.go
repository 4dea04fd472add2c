// Package renderertest provides a RendererBackend that records every call instead of talking to a GPU,
// so code driving a Renderer can be tested without a device or a window.
package renderertest

import (
	"github.com/Carmen-Shannon/oxy-timewarp/engine/renderer"
	"github.com/Carmen-Shannon/oxy-timewarp/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-timewarp/engine/renderer/pipeline"
	"github.com/cogentcore/webgpu/wgpu"
)

// Op names recorded by Backend.
const (
	OpConfigureSurface = "ConfigureSurface"
	OpRegisterPipeline = "RegisterPipeline"
	OpInitRenderTarget = "InitRenderTarget"
	OpWriteBuffers     = "WriteBuffers"
	OpBeginFrame       = "BeginFrame"
	OpBeginPass        = "BeginPass"
	OpDraw             = "Draw"
	OpEndPass          = "EndPass"
	OpEndFrame         = "EndFrame"
	OpPresent          = "Present"
	OpRelease          = "Release"
)

// Event is one recorded backend call.
type Event struct {
	Op string
	// Target is the label of the render target a pass or allocation was for.
	Target string
	// Pipeline is the key of the drawn or registered pipeline.
	Pipeline string
	// Texture is the label of the render target sampled by a draw, if any.
	Texture string
	// Clear is the clear colour a pass opened with, or nil if it loaded the previous contents.
	Clear *wgpu.Color
	// IndexCount is the number of indices a draw covered.
	IndexCount int
}

// Write is a recorded constant slot write with its data copied at the time of the call.
type Write struct {
	Provider string
	Binding  int
	Offset   uint64
	Data     []byte
}

// Backend is a renderer.RendererBackend that records calls. The zero value is ready to use.
type Backend struct {
	Events []Event
	Writes []Write

	Width, Height int
	Released      bool

	// Errors injected into the matching calls, when set.
	BeginFrameErr       error
	RegisterPipelineErr error
}

var _ renderer.RendererBackend = &Backend{}

// NewBackend creates an empty recording backend.
func NewBackend() *Backend {
	return &Backend{}
}

func (b *Backend) record(e Event) {
	b.Events = append(b.Events, e)
}

func (b *Backend) ConfigureSurface(width, height int) error {
	b.Width, b.Height = width, height
	b.record(Event{Op: OpConfigureSurface})
	return nil
}

func (b *Backend) RegisterRenderPipeline(p pipeline.Pipeline) error {
	if b.RegisterPipelineErr != nil {
		return b.RegisterPipelineErr
	}
	b.record(Event{Op: OpRegisterPipeline, Pipeline: p.PipelineKey()})
	return nil
}

func (b *Backend) InitRenderTarget(t renderer.RenderTarget) error {
	b.record(Event{Op: OpInitRenderTarget, Target: t.Label()})
	return nil
}

func (b *Backend) WriteBuffers(writes []bind_group_provider.BufferWrite) {
	for _, w := range writes {
		b.Writes = append(b.Writes, Write{
			Provider: w.Provider.Label(),
			Binding:  w.Binding,
			Offset:   w.Offset,
			Data:     append([]byte(nil), w.Data...),
		})
	}
	b.record(Event{Op: OpWriteBuffers})
}

func (b *Backend) BeginFrame() error {
	if b.BeginFrameErr != nil {
		return b.BeginFrameErr
	}
	b.record(Event{Op: OpBeginFrame})
	return nil
}

func (b *Backend) BeginPass(t renderer.RenderTarget, clear *wgpu.Color) error {
	e := Event{Op: OpBeginPass, Target: t.Label()}
	if clear != nil {
		c := *clear
		e.Clear = &c
	}
	b.record(e)
	return nil
}

func (b *Backend) DrawPipeline(p pipeline.Pipeline, texture renderer.RenderTarget) error {
	e := Event{Op: OpDraw, Pipeline: p.PipelineKey(), IndexCount: p.IndexCount()}
	if texture != nil {
		e.Texture = texture.Label()
	}
	b.record(e)
	return nil
}

func (b *Backend) EndPass() {
	b.record(Event{Op: OpEndPass})
}

func (b *Backend) EndFrame() error {
	b.record(Event{Op: OpEndFrame})
	return nil
}

func (b *Backend) Present() {
	b.record(Event{Op: OpPresent})
}

func (b *Backend) Release() {
	b.Released = true
	b.record(Event{Op: OpRelease})
}

// Ops returns the recorded operation names in call order.
func (b *Backend) Ops() []string {
	ops := make([]string, len(b.Events))
	for i, e := range b.Events {
		ops[i] = e.Op
	}
	return ops
}

// EventsOf returns the recorded events with the given operation name.
func (b *Backend) EventsOf(op string) []Event {
	var out []Event
	for _, e := range b.Events {
		if e.Op == op {
			out = append(out, e)
		}
	}
	return out
}

// WritesTo returns the recorded writes to the provider with the given label.
func (b *Backend) WritesTo(provider string) []Write {
	var out []Write
	for _, w := range b.Writes {
		if w.Provider == provider {
			out = append(out, w)
		}
	}
	return out
}

// Reset forgets every recorded event and write.
func (b *Backend) Reset() {
	b.Events = nil
	b.Writes = nil
}

// Surface is a fixed-size renderer.SurfaceSource with no platform surface behind it.
type Surface struct {
	W, H int
}

var _ renderer.SurfaceSource = Surface{}

func (s Surface) SurfaceDescriptor() *wgpu.SurfaceDescriptor { return nil }
func (s Surface) Width() int                                 { return s.W }
func (s Surface) Height() int                                { return s.H }
