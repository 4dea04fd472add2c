// Package loader decodes image files into RGBA staging data.
package loader

import (
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"

	"github.com/Carmen-Shannon/oxy-timewarp/common"
	"github.com/anthonynsimon/bild/clone"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ErrEmptyImage is returned when an image decodes to zero pixels.
var ErrEmptyImage = errors.New("image has no pixels")

// LoadImage reads and decodes the image file at path.
// PNG, JPEG, GIF, BMP, TIFF and WebP files are recognized by content, not extension.
//
// Parameters:
//   - path: the image file to read
//
// Returns:
//   - common.TextureStagingData: top-down RGBA pixels, 4 bytes per pixel with no row padding
//   - error: an error if the file cannot be opened or decoded; no partial data is returned
func LoadImage(path string) (common.TextureStagingData, error) {
	file, err := os.Open(path)
	if err != nil {
		return common.TextureStagingData{}, fmt.Errorf("failed to open image %s: %w", path, err)
	}
	defer file.Close()

	data, err := DecodeImage(file)
	if err != nil {
		return common.TextureStagingData{}, fmt.Errorf("image %s: %w", path, err)
	}
	return data, nil
}

// DecodeImage decodes an image stream into RGBA staging data.
//
// Parameters:
//   - r: the encoded image
//
// Returns:
//   - common.TextureStagingData: top-down RGBA pixels
//   - error: an error if the stream is not a supported image
func DecodeImage(r io.Reader) (common.TextureStagingData, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		return common.TextureStagingData{}, fmt.Errorf("failed to decode image: %w", err)
	}

	bounds := img.Bounds()
	if bounds.Empty() {
		return common.TextureStagingData{}, fmt.Errorf("%s: %w", format, ErrEmptyImage)
	}

	rgba := clone.AsRGBA(img)
	width, height := bounds.Dx(), bounds.Dy()
	rowBytes := width * 4

	// rgba.Stride may exceed the row width; pack the rows tightly
	pixels := make([]byte, rowBytes*height)
	for y := 0; y < height; y++ {
		start := y * rgba.Stride
		copy(pixels[y*rowBytes:(y+1)*rowBytes], rgba.Pix[start:start+rowBytes])
	}

	return common.TextureStagingData{
		Pixels: pixels,
		Width:  uint32(width),
		Height: uint32(height),
	}, nil
}
