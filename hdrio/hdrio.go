// Package hdrio moves float radiance buffers in and out of files: Radiance
// RGBE (.hdr) for the raw scene and PNG for tone-mapped output.
package hdrio

import (
	"bufio"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"

	hdrimg "github.com/mdouchement/hdr"
	"github.com/mdouchement/hdr/codec/rgbe"
	"github.com/mdouchement/hdr/hdrcolor"
	"github.com/mdouchement/hdr/tmo"

	"hdr-lighting/hdr"
)

// ToImage converts an RGB(A) float buffer into an HDR image. The buffer's
// bottom row becomes the image's top row.
func ToImage(buf *hdr.FloatBuffer) *hdrimg.RGB {
	img := hdrimg.NewRGB(image.Rect(0, 0, buf.Width, buf.Height))
	for y := 0; y < buf.Height; y++ {
		row := buf.Height - 1 - y
		for x := 0; x < buf.Width; x++ {
			c := buf.RGBAt(x, row)
			img.Set(x, y, hdrcolor.RGB{R: float64(c.R), G: float64(c.G), B: float64(c.B)})
		}
	}
	return img
}

// FromImage converts an HDR image into a 3-channel float buffer (bottom row first).
func FromImage(img hdrimg.Image) *hdr.FloatBuffer {
	b := img.Bounds()
	buf := hdr.NewFloatBuffer(b.Dx(), b.Dy(), 3)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := buf.Height - 1 - (y - b.Min.Y)
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, _ := img.HDRAt(x, y).HDRRGBA()
			buf.SetRGB(x-b.Min.X, row, hdr.RGB{R: float32(r), G: float32(g), B: float32(bl)})
		}
	}
	return buf
}

// DecodeRadiance reads an RGBE stream.
func DecodeRadiance(r io.Reader) (*hdr.FloatBuffer, error) {
	m, err := rgbe.Decode(bufio.NewReader(r))
	if err != nil {
		return nil, fmt.Errorf("decode radiance: %w", err)
	}
	img, ok := m.(hdrimg.Image)
	if !ok {
		return nil, fmt.Errorf("decode radiance: %T is not high dynamic range", m)
	}
	return FromImage(img), nil
}

// EncodeRadiance writes buf as an RGBE stream.
func EncodeRadiance(w io.Writer, buf *hdr.FloatBuffer) error {
	bw := bufio.NewWriter(w)
	if err := rgbe.Encode(bw, ToImage(buf)); err != nil {
		return fmt.Errorf("encode radiance: %w", err)
	}
	return bw.Flush()
}

func ReadRadiance(path string) (*hdr.FloatBuffer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return DecodeRadiance(f)
}

// WriteRadiance writes buf to path, creating parent directories.
func WriteRadiance(path string, buf *hdr.FloatBuffer) error {
	return writeFile(path, func(w io.Writer) error { return EncodeRadiance(w, buf) })
}

// WritePNG encodes an 8-bit image.
func WritePNG(path string, img image.Image) error {
	return writeFile(path, func(w io.Writer) error { return png.Encode(w, img) })
}

// ReferenceDrago runs the library's Drago03 operator over buf, as an
// independent result to compare against hdr.OperatorDrago.
func ReferenceDrago(buf *hdr.FloatBuffer) image.Image {
	return tmo.NewDefaultDrago03(ToImage(buf)).Perform()
}

func writeFile(path string, encode func(io.Writer) error) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := encode(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}
