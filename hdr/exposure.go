package hdr

import "math"

const (
	// ExposureSensitivity shapes how hard the target reacts outside the dead band.
	ExposureSensitivity = 1.5
	// MinAdaptLuminance floors the frame average so a black frame still
	// produces a finite target.
	MinAdaptLuminance = 1e-4
)

// ExposureTarget returns the exposure the controller steers toward for a
// frame whose average luminance is avg.
func ExposureTarget(s *IlluminationState, avg float32) float32 {
	if avg < MinAdaptLuminance {
		avg = MinAdaptLuminance
	}
	switch {
	case avg < s.InfCapLuminance:
		return float32(math.Pow(float64(s.InfCapLuminance/avg), ExposureSensitivity))
	case avg > s.SupCapLuminance:
		return float32(math.Pow(float64(s.SupCapLuminance/avg), ExposureSensitivity))
	default:
		return s.TargetRestExposure
	}
}

// AdvanceExposure moves s.Exposure one step toward the target for stats.
// The step is proportional to the error and to dt, limited to
// MaxChangePerFrame, and the result is clamped to [MinExposure, MaxExposure].
func AdvanceExposure(s *IlluminationState, stats LuminanceStats, dt float32) {
	target := ExposureTarget(s, stats.Avg)

	delta := (target - s.Exposure) * s.AdaptationSpeed * dt
	if math.IsNaN(float64(delta)) {
		delta = 0
	}
	if delta > s.MaxChangePerFrame {
		delta = s.MaxChangePerFrame
	} else if delta < -s.MaxChangePerFrame {
		delta = -s.MaxChangePerFrame
	}

	s.Exposure = clampf(s.Exposure+delta, s.MinExposure, s.MaxExposure)
}

func clampf(v, lo, hi float32) float32 {
	if v > hi {
		v = hi
	}
	if v < lo {
		v = lo
	}
	return v
}
