package hdr

import "math"

// Gamma is the display gamma applied after tone mapping.
const Gamma = 2.2

// Drago03 constants: bias and display peak (cd/m², normalised to 1).
const (
	DragoBias      = 0.85
	dragoDisplayLd = 1.0
)

// RGB is a linear color triple.
type RGB struct {
	R, G, B float32
}

func (c RGB) Add(o RGB) RGB { return RGB{c.R + o.R, c.G + o.G, c.B + o.B} }

func (c RGB) Scale(s float32) RGB { return RGB{c.R * s, c.G * s, c.B * s} }

func (c RGB) Luminance() float32 { return Luminance(c.R, c.G, c.B) }

func (c RGB) apply(f func(float32) float32) RGB {
	return RGB{f(c.R), f(c.G), f(c.B)}
}

// ToneMap composites bloom over the HDR color, applies the operator selected
// by p and gamma-corrects the result into [0,1].
func ToneMap(color, bloom RGB, bloomEnabled bool, p ToneMapParams) RGB {
	if bloomEnabled {
		color = color.Add(bloom)
	}
	return GammaCorrect(MapOperator(color, p))
}

// MapOperator applies only the operator curve (no bloom, no gamma).
// Reinhard multiplies by ReinhardParams.Exposure before x/(x+1), so exposure
// 1 gives the plain curve.
func MapOperator(c RGB, p ToneMapParams) RGB {
	switch p := p.(type) {
	case ReinhardParams:
		return c.Scale(p.Exposure).apply(func(x float32) float32 {
			if x <= 0 {
				return 0
			}
			return x / (x + 1)
		})
	case ExponentialParams:
		return c.apply(func(x float32) float32 {
			return 1 - float32(math.Exp(float64(-x*p.Exposure)))
		})
	case DragoParams:
		return drago(c, p)
	default:
		return c.apply(func(x float32) float32 { return clampf(x, 0, 1) })
	}
}

// drago is the adaptive logarithmic mapping of Drago et al. (2003). World
// luminance is expressed relative to the frame average.
func drago(c RGB, p DragoParams) RGB {
	l := c.Luminance()
	if l <= 0 {
		return RGB{}
	}
	lwa := math.Max(float64(p.AvgLuminance), MinAdaptLuminance)
	lw := float64(l*p.Exposure) / lwa
	lmax := float64(p.MaxLuminance*p.Exposure) / lwa
	if lmax <= 0 {
		return RGB{}
	}
	if lw > lmax {
		lmax = lw
	}

	biasP := math.Log(DragoBias) / math.Log(0.5)
	ld := dragoDisplayLd / math.Log10(1+lmax) *
		math.Log(1+lw) / math.Log(2+8*math.Pow(lw/lmax, biasP))

	scale := float32(ld) / l
	return c.Scale(scale).apply(func(x float32) float32 { return clampf(x, 0, 1) })
}

// GammaCorrect encodes a linear [0,1] color with the fixed display gamma.
func GammaCorrect(c RGB) RGB {
	return c.apply(func(x float32) float32 {
		if x <= 0 {
			return 0
		}
		return float32(math.Pow(float64(x), 1/Gamma))
	})
}
