package main

import (
	"image"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hdr-lighting/hdr"
	"hdr-lighting/hdrio"
)

func writeInput(t *testing.T, dir string) string {
	t.Helper()
	buf := hdr.NewFloatBuffer(16, 16, 3)
	buf.Fill(hdr.RGB{R: 0.02, G: 0.02, B: 0.02})
	buf.SetRGB(8, 8, hdr.RGB{R: 20, G: 16, B: 12})
	path := filepath.Join(dir, "in.hdr")
	require.NoError(t, hdrio.WriteRadiance(path, buf))
	return path
}

func defaultOptions(in, out string) options {
	return options{
		In: in, Out: out, Operator: "reinhard", Exposure: 1, Bloom: true,
		Passes: hdr.DefaultBloomPasses, Threshold: 1, Frames: 1, DT: 1.0 / 60,
	}
}

func decodePNG(t *testing.T, path string) image.Image {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	img, _, err := image.Decode(f)
	require.NoError(t, err)
	return img
}

func TestRunWritesToneMappedPNG(t *testing.T) {
	dir := t.TempDir()
	o := defaultOptions(writeInput(t, dir), filepath.Join(dir, "out.png"))
	o.Reference = true
	require.NoError(t, run(o, zerolog.Nop()))

	img := decodePNG(t, o.Out)
	assert.Equal(t, image.Rect(0, 0, 16, 16), img.Bounds())

	// buffer row 8 is image row 16-1-8 = 7
	peak, _, _, _ := img.At(8, 7).RGBA()
	corner, _, _, _ := img.At(0, 0).RGBA()
	assert.Greater(t, peak, corner)

	_, err := os.Stat(filepath.Join(dir, "out-drago03-ref.png"))
	assert.NoError(t, err)
}

func TestRunDynamicExposure(t *testing.T) {
	dir := t.TempDir()
	o := defaultOptions(writeInput(t, dir), filepath.Join(dir, "dyn.png"))
	o.Operator = "drago"
	o.Dynamic = true
	o.Frames = 30
	o.Bloom = false
	assert.NoError(t, run(o, zerolog.Nop()))
}

func TestRunRejectsBadOptions(t *testing.T) {
	dir := t.TempDir()
	in := writeInput(t, dir)
	out := filepath.Join(dir, "x.png")

	for name, mutate := range map[string]func(*options){
		"missing input": func(o *options) { o.In = "" },
		"bad operator":  func(o *options) { o.Operator = "filmic" },
		"zero frames":   func(o *options) { o.Frames = 0 },
		"neg passes":    func(o *options) { o.Passes = -1 },
		"absent file":   func(o *options) { o.In = filepath.Join(dir, "none.hdr") },
	} {
		t.Run(name, func(t *testing.T) {
			o := defaultOptions(in, out)
			mutate(&o)
			assert.Error(t, run(o, zerolog.Nop()))
		})
	}
}

func TestReferencePath(t *testing.T) {
	assert.Equal(t, "a/out-drago03-ref.png", referencePath("a/out.png"))
	assert.Equal(t, "noext-drago03-ref", referencePath("noext"))
}
