package window

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewEngineWindow_Defaults(t *testing.T) {
	w := newEngineWindow()

	assert.Equal(t, "Rotational Timewarp", w.title)
	assert.Equal(t, 1280, w.Width())
	assert.Equal(t, 720, w.Height())
	assert.Empty(t, w.iconPath)
}

func TestNewEngineWindow_Options(t *testing.T) {
	w := newEngineWindow(
		WithTitle("warp"),
		WithWidth(640),
		WithHeight(480),
		WithIconPath("icon.png"),
	)

	assert.Equal(t, "warp", w.title)
	assert.Equal(t, 640, w.Width())
	assert.Equal(t, 480, w.Height())
	assert.Equal(t, "icon.png", w.iconPath)
}

func TestNewWindow_InvalidSize(t *testing.T) {
	w, err := NewWindow(WithWidth(0))
	assert.Error(t, err)
	assert.Nil(t, w)
}

func TestEngineWindow_Uninitialized(t *testing.T) {
	w := newEngineWindow()

	assert.False(t, w.IsRunning())
	assert.Nil(t, w.SurfaceDescriptor())
	x, y := w.CursorPosition()
	assert.Zero(t, x)
	assert.Zero(t, y)
	assert.Error(t, w.Close())

	w.Stop()

	called := false
	w.SetUpdateCallback(func() { called = true })
	w.ProcessMessages()
	assert.False(t, called, "the loop does not run without a platform window")
}
