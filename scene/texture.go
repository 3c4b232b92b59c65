package scene

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"github.com/nfnt/resize"
	"golang.org/x/image/draw"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Texture holds CPU-side pixel data for a 2D texture or one cubemap face.
type Texture struct {
	Name   string
	Width  int
	Height int
	// Pixels in RGBA8 format (4 bytes per pixel, row-major, top-to-bottom).
	Pixels []byte
}

// CubemapFaces is the face order expected by the cubemap loader:
// +X, -X, +Y, -Y, +Z, -Z.
var CubemapFaces = [6]string{"right", "left", "top", "bottom", "front", "back"}

// LoadTexture reads a PNG, JPEG, BMP, TIFF or WebP file and returns it as
// RGBA8. Images larger than maxSize on either side are scaled down to fit
// (maxSize <= 0 disables scaling).
func LoadTexture(path string, maxSize int) (*Texture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open texture %q: %w", path, err)
	}
	tex, err := DecodeTexture(path, data, maxSize)
	if err != nil {
		return nil, fmt.Errorf("decode texture %q: %w", path, err)
	}
	return tex, nil
}

// DecodeTexture decodes an encoded image held in memory.
func DecodeTexture(name string, data []byte, maxSize int) (*Texture, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	return TextureFromImage(name, img, maxSize), nil
}

// TextureFromImage converts any image to an RGBA8 texture.
func TextureFromImage(name string, img image.Image, maxSize int) *Texture {
	b := img.Bounds()
	if maxSize > 0 && (b.Dx() > maxSize || b.Dy() > maxSize) {
		img = resize.Thumbnail(uint(maxSize), uint(maxSize), img, resize.Lanczos3)
		b = img.Bounds()
	}

	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)

	return &Texture{
		Name:   name,
		Width:  b.Dx(),
		Height: b.Dy(),
		Pixels: rgba.Pix,
	}
}

// LoadCubemap loads six faces in CubemapFaces order. A face that fails to
// load is left nil and its error is reported at the same index; the other
// faces are still returned.
func LoadCubemap(paths [6]string, maxSize int) ([6]*Texture, [6]error) {
	var faces [6]*Texture
	var errs [6]error
	for i, p := range paths {
		faces[i], errs[i] = LoadTexture(p, maxSize)
	}
	return faces, errs
}
