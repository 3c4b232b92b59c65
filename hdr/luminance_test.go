package hdr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func uniformFrame(w, h int, c RGB) []float32 {
	pix := make([]float32, 0, w*h*3)
	for i := 0; i < w*h; i++ {
		pix = append(pix, c.R, c.G, c.B)
	}
	return pix
}

func TestComputeStatsUniform(t *testing.T) {
	stats, err := ComputeStats(uniformFrame(4, 3, RGB{1, 1, 1}), 4, 3)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, stats.Avg, 1e-5)
	assert.InDelta(t, 1.0, stats.Max, 1e-5)
	assert.InDelta(t, 1.0, stats.Min, 1e-5)

	stats, err = ComputeStats(uniformFrame(2, 2, RGB{1, 0, 0}), 2, 2)
	require.NoError(t, err)
	assert.InDelta(t, LumaR, stats.Avg, 1e-6)
}

func TestComputeStatsMixed(t *testing.T) {
	pix := []float32{
		0, 0, 0,
		0, 1, 0,
		10, 10, 10,
		0, 0, 1,
	}
	stats, err := ComputeStats(pix, 2, 2)
	require.NoError(t, err)

	assert.InDelta(t, 0, stats.Min, 1e-6)
	assert.InDelta(t, 10, stats.Max, 1e-4)
	assert.InDelta(t, (LumaG+10+LumaB)/4, stats.Avg, 1e-5)
}

func TestComputeStatsMinNotSentinel(t *testing.T) {
	// Every pixel brighter than any fixed sentinel start value.
	stats, err := ComputeStats(uniformFrame(3, 3, RGB{500, 500, 500}), 3, 3)
	require.NoError(t, err)
	assert.InDelta(t, 500, stats.Min, 1e-2)
	assert.InDelta(t, 500, stats.Max, 1e-2)
}

func TestComputeStatsErrors(t *testing.T) {
	_, err := ComputeStats(nil, 0, 10)
	assert.ErrorIs(t, err, ErrEmptyFrame)

	_, err = ComputeStats(make([]float32, 5), 2, 1)
	assert.ErrorIs(t, err, ErrShortBuffer)

	// Extra trailing floats are ignored.
	stats, err := ComputeStats(append(uniformFrame(1, 1, RGB{1, 1, 1}), 99, 99, 99), 1, 1)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, stats.Avg, 1e-5)
}
