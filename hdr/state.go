package hdr

import "fmt"

// IlluminationState is the mutable lighting/exposure state of the running
// renderer. A single instance is owned by the Pipeline and only touched from
// the render thread: input handling flips toggles, the exposure controller
// moves Exposure, and every frame overwrites the luminance statistics.
type IlluminationState struct {
	Operator        ToneMapOperator
	Exposure        float32
	DynamicExposure bool
	BloomEnabled    bool

	// Control-loop tuning, fixed for the run.
	AdaptationSpeed   float32
	MaxChangePerFrame float32

	// Dead band: no exposure correction while InfCap <= avg <= SupCap.
	InfCapLuminance float32
	SupCapLuminance float32

	TargetRestExposure float32
	MinExposure        float32
	MaxExposure        float32

	// Statistics of the last analysed frame.
	AvgLuminance float32
	MaxLuminance float32
	MinLuminance float32
}

// Observe records the statistics of the frame just analysed.
func (s *IlluminationState) Observe(stats LuminanceStats) {
	s.AvgLuminance = stats.Avg
	s.MaxLuminance = stats.Max
	s.MinLuminance = stats.Min
}

// Params returns the tone-mapping inputs required by the current operator.
func (s *IlluminationState) Params() ToneMapParams {
	switch s.Operator {
	case OperatorReinhard:
		return ReinhardParams{Exposure: s.Exposure}
	case OperatorExponential:
		return ExponentialParams{Exposure: s.Exposure}
	case OperatorDrago:
		return DragoParams{
			Exposure:     s.Exposure,
			MaxLuminance: s.MaxLuminance,
			AvgLuminance: s.AvgLuminance,
		}
	default:
		return NoneParams{}
	}
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

// Diagnostic is the one-line status printed every frame. Not a stable format.
func Diagnostic(s *IlluminationState) string {
	return fmt.Sprintf("op=%s dynamic=%s bloom=%s exposure=%.3f",
		s.Operator, onOff(s.DynamicExposure), onOff(s.BloomEnabled), s.Exposure)
}
