package hdr

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/rs/zerolog"
)

// FrameContext is everything a frame needs from the outside world. It is
// rebuilt by the application loop each frame and passed down explicitly.
type FrameContext struct {
	Frame      uint64
	Delta      float32 // seconds since the previous frame
	Width      int
	Height     int
	View       mgl32.Mat4
	SkyView    mgl32.Mat4 // View without its translation
	Projection mgl32.Mat4
	CameraPos  mgl32.Vec3
}

// Backend is the rendering collaborator the pipeline sequences. The OpenGL
// backend runs these on the GPU; the software backend runs them on the CPU.
type Backend interface {
	BlurBackend

	// Size returns the current size of the off-screen targets.
	Size() (width, height int)
	// RenderScene draws the lit scene into the HDR target, writing scene
	// radiance and bright-pass radiance.
	RenderScene(fc *FrameContext) error
	// ReadPixels copies the scene radiance into dst as packed RGB floats.
	// It blocks until rendering of the frame has finished.
	ReadPixels(dst []float32) error
	// Composite tone-maps the HDR color (plus bloom when enabled) into the
	// displayable target.
	Composite(bloom BlurSource, p ToneMapParams, bloomEnabled bool) error
	Present() error
	// Resize recreates the off-screen targets.
	Resize(width, height int) error
}

// Pipeline owns the illumination state and the readback buffer and runs the
// fixed per-frame sequence over a Backend.
type Pipeline struct {
	State IlluminationState
	Bloom Bloom

	backend Backend
	pixels  []float32
	log     zerolog.Logger
}

type Option func(*Pipeline)

// WithBloomPasses overrides the number of blur passes.
func WithBloomPasses(n int) Option {
	return func(p *Pipeline) { p.Bloom.Passes = n }
}

// WithLogger sets the pipeline logger (default: disabled).
func WithLogger(l zerolog.Logger) Option {
	return func(p *Pipeline) { p.log = l }
}

func NewPipeline(backend Backend, state IlluminationState, opts ...Option) *Pipeline {
	p := &Pipeline{
		State:   state,
		Bloom:   Bloom{Passes: DefaultBloomPasses},
		backend: backend,
		log:     zerolog.Nop(),
	}
	for _, o := range opts {
		o(p)
	}
	w, h := backend.Size()
	p.pixels = make([]float32, w*h*3)
	return p
}

// Pixels returns the scene radiance read back during the last frame.
func (p *Pipeline) Pixels() []float32 {
	return p.pixels
}

// Resize recreates the backend targets and the readback buffer.
func (p *Pipeline) Resize(width, height int) error {
	if err := p.backend.Resize(width, height); err != nil {
		return fmt.Errorf("resize backend: %w", err)
	}
	p.pixels = make([]float32, width*height*3)
	p.log.Debug().Int("width", width).Int("height", height).Msg("render targets resized")
	return nil
}

// Frame renders, analyses, adapts, blurs, tone-maps and presents one frame.
// It returns the luminance statistics of the rendered scene.
func (p *Pipeline) Frame(fc *FrameContext) (LuminanceStats, error) {
	if err := p.backend.RenderScene(fc); err != nil {
		return LuminanceStats{}, fmt.Errorf("render scene: %w", err)
	}

	w, h := p.backend.Size()
	if len(p.pixels) != w*h*3 {
		p.pixels = make([]float32, w*h*3)
	}
	if err := p.backend.ReadPixels(p.pixels); err != nil {
		return LuminanceStats{}, fmt.Errorf("read pixels: %w", err)
	}

	stats, err := ComputeStats(p.pixels, w, h)
	if err != nil {
		return LuminanceStats{}, fmt.Errorf("luminance stats: %w", err)
	}
	p.State.Observe(stats)

	if p.State.DynamicExposure {
		AdvanceExposure(&p.State, stats, fc.Delta)
	}

	bloom := SourceBright
	if p.State.BloomEnabled {
		bloom, err = p.Bloom.Run(p.backend)
		if err != nil {
			return stats, fmt.Errorf("bloom: %w", err)
		}
	}

	if err := p.backend.Composite(bloom, p.State.Params(), p.State.BloomEnabled); err != nil {
		return stats, fmt.Errorf("composite: %w", err)
	}
	if err := p.backend.Present(); err != nil {
		return stats, fmt.Errorf("present: %w", err)
	}

	p.log.Debug().
		Uint64("frame", fc.Frame).
		Float32("avg", stats.Avg).
		Float32("min", stats.Min).
		Float32("max", stats.Max).
		Msg(Diagnostic(&p.State))
	return stats, nil
}
