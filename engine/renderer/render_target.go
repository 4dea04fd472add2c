package renderer

import "github.com/cogentcore/webgpu/wgpu"

// renderTarget is the implementation of the RenderTarget interface.
type renderTarget struct {
	label      string
	width      int
	height     int
	backBuffer bool

	texture     *wgpu.Texture
	textureView *wgpu.TextureView

	// textureBindGroups caches the bind group that samples this target, one per pipeline key,
	// since each pipeline owns its own texture group layout.
	textureBindGroups map[string]*wgpu.BindGroup
}

// RenderTarget is a colour surface a render pass can draw into. Offscreen targets can also be bound
// as the sampled texture of a later pass; the back buffer can only be drawn into and presented.
// The Renderer never allows a target to be drawn into while it is bound as a texture.
type RenderTarget interface {
	// Label returns the debug label of the target.
	Label() string

	// Width returns the width of the target in pixels.
	Width() int

	// Height returns the height of the target in pixels.
	Height() int

	// IsBackBuffer reports whether the target is the presentation surface.
	IsBackBuffer() bool

	// Texture returns the GPU colour texture, or nil for the back buffer and before allocation.
	Texture() *wgpu.Texture

	// TextureView returns the view of the GPU colour texture, or nil for the back buffer and before allocation.
	TextureView() *wgpu.TextureView

	// SetTexture stores the GPU colour texture and its view.
	//
	// Parameters:
	//   - tex: the colour texture
	//   - view: a view of tex
	SetTexture(tex *wgpu.Texture, view *wgpu.TextureView)

	// TextureBindGroup returns the cached bind group that samples this target for a pipeline.
	//
	// Parameters:
	//   - pipelineKey: the key of the sampling pipeline
	//
	// Returns:
	//   - *wgpu.BindGroup: the cached bind group, or nil if none was created yet
	TextureBindGroup(pipelineKey string) *wgpu.BindGroup

	// SetTextureBindGroup caches the bind group that samples this target for a pipeline.
	//
	// Parameters:
	//   - pipelineKey: the key of the sampling pipeline
	//   - bg: the bind group
	SetTextureBindGroup(pipelineKey string, bg *wgpu.BindGroup)

	// Release releases the texture, its view and every cached bind group.
	Release()
}

var _ RenderTarget = &renderTarget{}

func newRenderTarget(label string, width, height int, backBuffer bool) *renderTarget {
	return &renderTarget{
		label:             label,
		width:             width,
		height:            height,
		backBuffer:        backBuffer,
		textureBindGroups: make(map[string]*wgpu.BindGroup),
	}
}

func (t *renderTarget) Label() string {
	return t.label
}

func (t *renderTarget) Width() int {
	return t.width
}

func (t *renderTarget) Height() int {
	return t.height
}

func (t *renderTarget) IsBackBuffer() bool {
	return t.backBuffer
}

func (t *renderTarget) Texture() *wgpu.Texture {
	return t.texture
}

func (t *renderTarget) TextureView() *wgpu.TextureView {
	return t.textureView
}

func (t *renderTarget) SetTexture(tex *wgpu.Texture, view *wgpu.TextureView) {
	t.texture = tex
	t.textureView = view
}

func (t *renderTarget) TextureBindGroup(pipelineKey string) *wgpu.BindGroup {
	return t.textureBindGroups[pipelineKey]
}

func (t *renderTarget) SetTextureBindGroup(pipelineKey string, bg *wgpu.BindGroup) {
	t.textureBindGroups[pipelineKey] = bg
}

func (t *renderTarget) Release() {
	for key, bg := range t.textureBindGroups {
		if bg != nil {
			bg.Release()
		}
		delete(t.textureBindGroups, key)
	}
	if t.textureView != nil {
		t.textureView.Release()
		t.textureView = nil
	}
	if t.texture != nil {
		t.texture.Release()
		t.texture = nil
	}
}
