package hdr

import "errors"

// BT.709 luma weights.
const (
	LumaR = 0.2126
	LumaG = 0.7152
	LumaB = 0.0722
)

var (
	ErrEmptyFrame  = errors.New("hdr: frame has no pixels")
	ErrShortBuffer = errors.New("hdr: pixel buffer smaller than width*height*3")
)

// LuminanceStats is the per-frame luminance summary of a rendered image.
type LuminanceStats struct {
	Avg float32
	Max float32
	Min float32
}

// Luminance returns the perceptual luminance of a linear RGB triple.
func Luminance(r, g, b float32) float32 {
	return LumaR*r + LumaG*g + LumaB*b
}

// ComputeStats reduces a tightly packed linear RGB buffer (one frame read back
// from the HDR target) to its average, maximum and minimum luminance.
// Min and max start from the first pixel, not from a sentinel.
func ComputeStats(pixels []float32, width, height int) (LuminanceStats, error) {
	n := width * height
	if width <= 0 || height <= 0 {
		return LuminanceStats{}, ErrEmptyFrame
	}
	if len(pixels) < n*3 {
		return LuminanceStats{}, ErrShortBuffer
	}

	first := Luminance(pixels[0], pixels[1], pixels[2])
	lo, hi := first, first
	var sum float64
	for i := 0; i < n*3; i += 3 {
		l := Luminance(pixels[i], pixels[i+1], pixels[i+2])
		sum += float64(l)
		if l > hi {
			hi = l
		}
		if l < lo {
			lo = l
		}
	}

	return LuminanceStats{
		Avg: float32(sum / float64(n)),
		Max: hi,
		Min: lo,
	}, nil
}
