package hdr

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func testState() IlluminationState {
	return IlluminationState{
		Operator:           OperatorReinhard,
		Exposure:           1.0,
		DynamicExposure:    true,
		BloomEnabled:       true,
		AdaptationSpeed:    1.0,
		MaxChangePerFrame:  0.05,
		InfCapLuminance:    0.2,
		SupCapLuminance:    0.6,
		TargetRestExposure: 2.0,
		MinExposure:        0.1,
		MaxExposure:        5.0,
	}
}

func TestExposureTarget(t *testing.T) {
	s := testState()

	assert.Equal(t, float32(2.0), ExposureTarget(&s, 0.4))
	assert.Equal(t, float32(2.0), ExposureTarget(&s, 0.2))
	assert.Equal(t, float32(2.0), ExposureTarget(&s, 0.6))

	assert.InDelta(t, math.Pow(2, 1.5), ExposureTarget(&s, 0.1), 1e-4)
	assert.InDelta(t, math.Pow(0.5, 1.5), ExposureTarget(&s, 1.2), 1e-4)

	black := ExposureTarget(&s, 0)
	assert.False(t, math.IsInf(float64(black), 0))
	assert.InDelta(t, math.Pow(0.2/MinAdaptLuminance, 1.5), black, 1)
}

func TestAdvanceExposureStaysInBounds(t *testing.T) {
	avgs := []float32{0, 1e-9, 0.01, 0.4, 3, 1e6, float32(math.Inf(1)), float32(math.NaN())}
	dts := []float32{0, 0.016, 0.5, 10, float32(math.NaN())}

	for _, avg := range avgs {
		for _, dt := range dts {
			s := testState()
			for i := 0; i < 500; i++ {
				AdvanceExposure(&s, LuminanceStats{Avg: avg}, dt)
				if !assert.False(t, math.IsNaN(float64(s.Exposure)), "avg=%v dt=%v", avg, dt) {
					return
				}
				if !assert.GreaterOrEqual(t, s.Exposure, s.MinExposure, "avg=%v dt=%v", avg, dt) ||
					!assert.LessOrEqual(t, s.Exposure, s.MaxExposure, "avg=%v dt=%v", avg, dt) {
					return
				}
			}
		}
	}
}

func TestAdvanceExposureSlewLimit(t *testing.T) {
	for _, avg := range []float32{0.001, 0.4, 50} {
		s := testState()
		for i := 0; i < 200; i++ {
			before := s.Exposure
			AdvanceExposure(&s, LuminanceStats{Avg: avg}, 1.0)
			assert.LessOrEqual(t, math.Abs(float64(s.Exposure-before)), float64(s.MaxChangePerFrame)+1e-6)
		}
	}
}

func TestAdvanceExposureDeadBandConverges(t *testing.T) {
	s := testState()
	s.Exposure = 1.0
	stats := LuminanceStats{Avg: 0.4}

	prev := s.Exposure
	for i := 0; i < 2000; i++ {
		AdvanceExposure(&s, stats, 0.016)
		assert.GreaterOrEqual(t, s.Exposure, prev)
		assert.LessOrEqual(t, s.Exposure, s.TargetRestExposure+1e-6)
		prev = s.Exposure
	}
	assert.InDelta(t, s.TargetRestExposure, s.Exposure, 0.01)

	// From above the rest exposure.
	s.Exposure = 4.0
	prev = s.Exposure
	for i := 0; i < 2000; i++ {
		AdvanceExposure(&s, stats, 0.016)
		assert.LessOrEqual(t, s.Exposure, prev)
		assert.GreaterOrEqual(t, s.Exposure, s.TargetRestExposure-1e-6)
		prev = s.Exposure
	}
}

func TestAdvanceExposureDirection(t *testing.T) {
	dark := testState()
	AdvanceExposure(&dark, LuminanceStats{Avg: 0.05}, 0.016)
	assert.Greater(t, dark.Exposure, float32(1.0))

	bright := testState()
	AdvanceExposure(&bright, LuminanceStats{Avg: 5}, 0.016)
	assert.Less(t, bright.Exposure, float32(1.0))
}

func TestAdvanceExposureClampsOutOfRangeStart(t *testing.T) {
	s := testState()
	s.Exposure = 9
	AdvanceExposure(&s, LuminanceStats{Avg: 0.4}, 0.016)
	assert.Equal(t, s.MaxExposure, s.Exposure)
}
