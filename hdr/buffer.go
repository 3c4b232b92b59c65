package hdr

import "fmt"

// FloatBuffer is a CPU-side float image, row-major, Channels floats per
// pixel with no padding. Row 0 is the bottom row, matching glReadPixels.
type FloatBuffer struct {
	Width    int
	Height   int
	Channels int
	Pix      []float32
}

// NewFloatBuffer allocates a zeroed width×height buffer.
func NewFloatBuffer(width, height, channels int) *FloatBuffer {
	if width < 0 || height < 0 || channels <= 0 {
		panic(fmt.Sprintf("hdr: invalid buffer size %dx%dx%d", width, height, channels))
	}
	return &FloatBuffer{
		Width:    width,
		Height:   height,
		Channels: channels,
		Pix:      make([]float32, width*height*channels),
	}
}

// Offset returns the index of the first channel of pixel (x, y).
func (b *FloatBuffer) Offset(x, y int) int {
	return (y*b.Width + x) * b.Channels
}

// RGBAt returns the first three channels of pixel (x, y), clamping the
// coordinates to the buffer edge.
func (b *FloatBuffer) RGBAt(x, y int) RGB {
	x = clampi(x, 0, b.Width-1)
	y = clampi(y, 0, b.Height-1)
	i := b.Offset(x, y)
	return RGB{b.Pix[i], b.Pix[i+1], b.Pix[i+2]}
}

// SetRGB writes the first three channels of pixel (x, y).
func (b *FloatBuffer) SetRGB(x, y int, c RGB) {
	i := b.Offset(x, y)
	b.Pix[i], b.Pix[i+1], b.Pix[i+2] = c.R, c.G, c.B
}

// Fill sets every pixel to c.
func (b *FloatBuffer) Fill(c RGB) {
	for y := 0; y < b.Height; y++ {
		for x := 0; x < b.Width; x++ {
			b.SetRGB(x, y, c)
		}
	}
}

// Clear zeroes the buffer.
func (b *FloatBuffer) Clear() {
	clear(b.Pix)
}

// CopyFrom copies src into b. Both must have the same dimensions.
func (b *FloatBuffer) CopyFrom(src *FloatBuffer) error {
	if src.Width != b.Width || src.Height != b.Height || src.Channels != b.Channels {
		return fmt.Errorf("hdr: copy %dx%dx%d into %dx%dx%d",
			src.Width, src.Height, src.Channels, b.Width, b.Height, b.Channels)
	}
	copy(b.Pix, src.Pix)
	return nil
}

// Sum returns the per-channel sum over all pixels.
func (b *FloatBuffer) Sum() RGB {
	var r, g, bl float64
	for i := 0; i+2 < len(b.Pix); i += b.Channels {
		r += float64(b.Pix[i])
		g += float64(b.Pix[i+1])
		bl += float64(b.Pix[i+2])
	}
	return RGB{float32(r), float32(g), float32(bl)}
}

func clampi(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
