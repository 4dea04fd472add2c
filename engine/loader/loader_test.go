package loader

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePNG(t *testing.T, img image.Image) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "icon.png")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())
	return path
}

func TestLoadImage(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 3, 2))
	img.Set(0, 0, color.NRGBA{R: 255, A: 255})
	img.Set(2, 1, color.NRGBA{B: 255, A: 255})

	data, err := LoadImage(writePNG(t, img))
	require.NoError(t, err)

	assert.Equal(t, uint32(3), data.Width)
	assert.Equal(t, uint32(2), data.Height)
	assert.Equal(t, uint32(12), data.RowPitch())
	require.Len(t, data.Pixels, 24)
	assert.Equal(t, []byte{255, 0, 0, 255}, data.Pixels[0:4], "first row is the top row")
	assert.Equal(t, []byte{0, 0, 255, 255}, data.Pixels[20:24])
	assert.Equal(t, []byte{0, 0, 0, 0}, data.Pixels[4:8])
}

func TestDecodeImage_OffsetBounds(t *testing.T) {
	img := image.NewRGBA(image.Rect(5, 5, 7, 6))
	img.Set(5, 5, color.RGBA{G: 255, A: 255})

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))

	data, err := DecodeImage(&buf)
	require.NoError(t, err)
	assert.Equal(t, uint32(2), data.Width)
	assert.Equal(t, uint32(1), data.Height)
	assert.Equal(t, []byte{0, 255, 0, 255}, data.Pixels[0:4])
}

func TestLoadImage_MissingFile(t *testing.T) {
	data, err := LoadImage(filepath.Join(t.TempDir(), "missing.png"))
	assert.Error(t, err)
	assert.Nil(t, data.Pixels)
}

func TestDecodeImage_NotAnImage(t *testing.T) {
	data, err := DecodeImage(bytes.NewReader([]byte("definitely not an image")))
	assert.Error(t, err)
	assert.Nil(t, data.Pixels)
}
