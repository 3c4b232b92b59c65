// Package software is a CPU implementation of hdr.Backend. It runs the same
// bright-pass, blur and composite stages as the OpenGL backend and is used by
// the offline tool and by tests that cannot create a GL context.
package software

import (
	"errors"
	"fmt"
	"image"
	"image/color"

	"github.com/rs/zerolog"

	"hdr-lighting/hdr"
)

// SceneSource fills the radiance buffer for a frame.
type SceneSource interface {
	Render(fc *hdr.FrameContext, dst *hdr.FloatBuffer) error
}

// SceneFunc adapts a plain function to SceneSource.
type SceneFunc func(fc *hdr.FrameContext, dst *hdr.FloatBuffer) error

func (f SceneFunc) Render(fc *hdr.FrameContext, dst *hdr.FloatBuffer) error {
	return f(fc, dst)
}

// StaticScene renders the same pre-loaded radiance image every frame.
type StaticScene struct {
	Image *hdr.FloatBuffer
}

func (s StaticScene) Render(_ *hdr.FrameContext, dst *hdr.FloatBuffer) error {
	return dst.CopyFrom(s.Image)
}

var ErrSameBuffer = errors.New("software: blur source and destination are the same buffer")

// Backend keeps every render target as a float buffer in host memory.
type Backend struct {
	Threshold float32

	scene    SceneSource
	color    *hdr.FloatBuffer
	bright   *hdr.FloatBuffer
	pingpong [2]*hdr.FloatBuffer
	out      *image.NRGBA
	present  func(*image.NRGBA) error
	log      zerolog.Logger
}

type Option func(*Backend)

// WithThreshold sets the bright-pass luminance threshold.
func WithThreshold(t float32) Option {
	return func(b *Backend) { b.Threshold = t }
}

// WithPresent installs a callback that receives the composited image.
func WithPresent(fn func(*image.NRGBA) error) Option {
	return func(b *Backend) { b.present = fn }
}

func WithLogger(l zerolog.Logger) Option {
	return func(b *Backend) { b.log = l }
}

func New(width, height int, scene SceneSource, opts ...Option) *Backend {
	b := &Backend{
		Threshold: hdr.DefaultBloomThreshold,
		scene:     scene,
		log:       zerolog.Nop(),
	}
	for _, o := range opts {
		o(b)
	}
	b.allocate(width, height)
	return b
}

func (b *Backend) allocate(width, height int) {
	b.color = hdr.NewFloatBuffer(width, height, 3)
	b.bright = hdr.NewFloatBuffer(width, height, 3)
	b.pingpong[0] = hdr.NewFloatBuffer(width, height, 3)
	b.pingpong[1] = hdr.NewFloatBuffer(width, height, 3)
	b.out = image.NewNRGBA(image.Rect(0, 0, width, height))
}

func (b *Backend) Size() (int, int) {
	return b.color.Width, b.color.Height
}

// Output returns the last composited image (top row first).
func (b *Backend) Output() *image.NRGBA {
	return b.out
}

// Buffer returns the radiance buffer or, for slots 0 and 1, a ping-pong buffer.
func (b *Backend) Buffer(src hdr.BlurSource) *hdr.FloatBuffer {
	switch src {
	case hdr.SourceBright:
		return b.bright
	case 0, 1:
		return b.pingpong[src]
	}
	return nil
}

func (b *Backend) RenderScene(fc *hdr.FrameContext) error {
	b.color.Clear()
	if err := b.scene.Render(fc, b.color); err != nil {
		return err
	}
	b.brightPass()
	return nil
}

// brightPass keeps pixels whose luminance exceeds the threshold.
func (b *Backend) brightPass() {
	b.bright.Clear()
	for y := 0; y < b.color.Height; y++ {
		for x := 0; x < b.color.Width; x++ {
			c := b.color.RGBAt(x, y)
			if c.Luminance() > b.Threshold {
				b.bright.SetRGB(x, y, c)
			}
		}
	}
}

func (b *Backend) ReadPixels(dst []float32) error {
	if len(dst) < len(b.color.Pix) {
		return fmt.Errorf("software: readback buffer holds %d floats, need %d", len(dst), len(b.color.Pix))
	}
	copy(dst, b.color.Pix)
	return nil
}

// gaussian5 is the binomial approximation used by both backends.
var gaussian5 = [5]float32{1.0 / 16, 4.0 / 16, 6.0 / 16, 4.0 / 16, 1.0 / 16}

func (b *Backend) BlurPass(src hdr.BlurSource, dst int, horizontal bool) error {
	in := b.Buffer(src)
	if in == nil || dst < 0 || dst > 1 {
		return fmt.Errorf("software: invalid blur %s -> %d", src, dst)
	}
	out := b.pingpong[dst]
	if in == out {
		return ErrSameBuffer
	}

	dx, dy := 0, 1
	if horizontal {
		dx, dy = 1, 0
	}
	for y := 0; y < in.Height; y++ {
		for x := 0; x < in.Width; x++ {
			var sum hdr.RGB
			for k, w := range gaussian5 {
				o := k - 2
				sum = sum.Add(in.RGBAt(x+o*dx, y+o*dy).Scale(w))
			}
			out.SetRGB(x, y, sum)
		}
	}
	return nil
}

func (b *Backend) Composite(bloom hdr.BlurSource, p hdr.ToneMapParams, bloomEnabled bool) error {
	var blur *hdr.FloatBuffer
	if bloomEnabled {
		if blur = b.Buffer(bloom); blur == nil {
			return fmt.Errorf("software: invalid bloom source %s", bloom)
		}
	}

	h := b.color.Height
	for y := 0; y < h; y++ {
		for x := 0; x < b.color.Width; x++ {
			var glow hdr.RGB
			if blur != nil {
				glow = blur.RGBAt(x, y)
			}
			c := hdr.ToneMap(b.color.RGBAt(x, y), glow, bloomEnabled, p)
			// Buffers are bottom-up; images are top-down.
			b.out.SetNRGBA(x, h-1-y, color.NRGBA{R: unorm8(c.R), G: unorm8(c.G), B: unorm8(c.B), A: 0xff})
		}
	}
	return nil
}

func (b *Backend) Present() error {
	if b.present == nil {
		return nil
	}
	return b.present(b.out)
}

func (b *Backend) Resize(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("software: invalid size %dx%d", width, height)
	}
	b.allocate(width, height)
	b.log.Debug().Int("width", width).Int("height", height).Msg("software targets reallocated")
	return nil
}

func unorm8(v float32) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 0xff
	}
	return uint8(v*255 + 0.5)
}
