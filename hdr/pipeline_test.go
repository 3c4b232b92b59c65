package hdr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBackend struct {
	w, h  int
	color RGB
	calls []string

	lastBloom  BlurSource
	lastParams ToneMapParams
	failRender error
}

func (f *fakeBackend) Size() (int, int) { return f.w, f.h }

func (f *fakeBackend) RenderScene(fc *FrameContext) error {
	f.calls = append(f.calls, "render")
	return f.failRender
}

func (f *fakeBackend) ReadPixels(dst []float32) error {
	f.calls = append(f.calls, "read")
	copy(dst, uniformFrame(f.w, f.h, f.color))
	return nil
}

func (f *fakeBackend) BlurPass(src BlurSource, dst int, horizontal bool) error {
	f.calls = append(f.calls, fmt.Sprintf("blur %s->%d", src, dst))
	return nil
}

func (f *fakeBackend) Composite(bloom BlurSource, p ToneMapParams, bloomEnabled bool) error {
	f.calls = append(f.calls, "composite")
	f.lastBloom = bloom
	f.lastParams = p
	return nil
}

func (f *fakeBackend) Present() error {
	f.calls = append(f.calls, "present")
	return nil
}

func (f *fakeBackend) Resize(w, h int) error {
	f.w, f.h = w, h
	return nil
}

func TestPipelineFrameOrder(t *testing.T) {
	fb := &fakeBackend{w: 4, h: 4, color: RGB{2, 2, 2}}
	p := NewPipeline(fb, testState(), WithBloomPasses(2))

	stats, err := p.Frame(&FrameContext{Frame: 1, Delta: 0.016})
	require.NoError(t, err)
	assert.InDelta(t, 2, stats.Avg, 1e-5)

	assert.Equal(t, []string{
		"render", "read",
		"blur bright->1", "blur pingpong[1]->0",
		"composite", "present",
	}, fb.calls)
	assert.Equal(t, BlurSource(0), fb.lastBloom)

	assert.InDelta(t, 2, p.State.AvgLuminance, 1e-5)
	assert.InDelta(t, 2, p.State.MaxLuminance, 1e-5)
	assert.InDelta(t, 2, p.State.MinLuminance, 1e-5)
}

func TestPipelineSkipsBlurWhenBloomDisabled(t *testing.T) {
	fb := &fakeBackend{w: 2, h: 2, color: RGB{1, 1, 1}}
	s := testState()
	s.BloomEnabled = false
	p := NewPipeline(fb, s)

	_, err := p.Frame(&FrameContext{Delta: 0.016})
	require.NoError(t, err)
	assert.Equal(t, []string{"render", "read", "composite", "present"}, fb.calls)
	assert.Equal(t, SourceBright, fb.lastBloom)
}

func TestPipelineExposureOnlyWhenDynamic(t *testing.T) {
	fb := &fakeBackend{w: 2, h: 2, color: RGB{10, 10, 10}}
	s := testState()
	s.DynamicExposure = false
	p := NewPipeline(fb, s)

	_, err := p.Frame(&FrameContext{Delta: 0.016})
	require.NoError(t, err)
	assert.Equal(t, float32(1.0), p.State.Exposure)

	p.State.DynamicExposure = true
	_, err = p.Frame(&FrameContext{Delta: 0.016})
	require.NoError(t, err)
	assert.Less(t, p.State.Exposure, float32(1.0))
	assert.Equal(t, ReinhardParams{Exposure: p.State.Exposure}, fb.lastParams)
}

func TestPipelineDragoSeesCurrentFrame(t *testing.T) {
	fb := &fakeBackend{w: 2, h: 2, color: RGB{3, 3, 3}}
	s := testState()
	s.Operator = OperatorDrago
	s.DynamicExposure = false
	p := NewPipeline(fb, s)

	_, err := p.Frame(&FrameContext{})
	require.NoError(t, err)
	dp, ok := fb.lastParams.(DragoParams)
	require.True(t, ok)
	assert.InDelta(t, 3, dp.MaxLuminance, 1e-5)
	assert.InDelta(t, 3, dp.AvgLuminance, 1e-5)
}

func TestPipelineRenderError(t *testing.T) {
	boom := errors.New("lost context")
	fb := &fakeBackend{w: 2, h: 2, failRender: boom}
	p := NewPipeline(fb, testState())

	_, err := p.Frame(&FrameContext{})
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "render scene")
	assert.Equal(t, []string{"render"}, fb.calls)
}

func TestPipelineResize(t *testing.T) {
	fb := &fakeBackend{w: 2, h: 2, color: RGB{1, 1, 1}}
	p := NewPipeline(fb, testState())
	assert.Len(t, p.Pixels(), 12)

	require.NoError(t, p.Resize(8, 4))
	assert.Len(t, p.Pixels(), 8*4*3)

	_, err := p.Frame(&FrameContext{})
	require.NoError(t, err)
}
