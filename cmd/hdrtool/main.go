// Command hdrtool runs the HDR pipeline on the CPU over a Radiance image and
// writes the tone-mapped result as PNG.
package main

import (
	"errors"
	"flag"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"hdr-lighting/config"
	"hdr-lighting/hdr"
	"hdr-lighting/hdrio"
	"hdr-lighting/internal/software"
)

type options struct {
	In        string
	Out       string
	Operator  string
	Exposure  float64
	Bloom     bool
	Passes    int
	Threshold float64
	Dynamic   bool
	Frames    int
	DT        float64
	Reference bool
	Config    string
}

func main() {
	var o options
	flag.StringVar(&o.In, "in", "", "input Radiance .hdr image")
	flag.StringVar(&o.Out, "out", "out.png", "output PNG")
	flag.StringVar(&o.Operator, "op", "reinhard", "tone-map operator: none, reinhard, exponential or drago")
	flag.Float64Var(&o.Exposure, "exposure", 1.0, "initial exposure")
	flag.BoolVar(&o.Bloom, "bloom", true, "enable bloom")
	flag.IntVar(&o.Passes, "passes", hdr.DefaultBloomPasses, "blur passes")
	flag.Float64Var(&o.Threshold, "threshold", hdr.DefaultBloomThreshold, "bright-pass luminance threshold")
	flag.BoolVar(&o.Dynamic, "dynamic", false, "run the exposure controller")
	flag.IntVar(&o.Frames, "frames", 1, "frames to run before writing the output")
	flag.Float64Var(&o.DT, "dt", 1.0/60, "seconds per frame for the exposure controller")
	flag.BoolVar(&o.Reference, "reference", false, "also write a reference Drago03 image next to -out")
	flag.StringVar(&o.Config, "config", "", "settings file for the exposure controller tuning")
	verbose := flag.Bool("v", false, "log every frame")
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if *verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	if err := run(o, log.Logger); err != nil {
		log.Fatal().Err(err).Msg("hdrtool")
	}
}

func run(o options, logger zerolog.Logger) error {
	if o.In == "" {
		return errors.New("-in is required")
	}
	if o.Frames < 1 {
		return errors.New("-frames must be at least 1")
	}
	if o.Passes < 0 {
		return errors.New("-passes must not be negative")
	}
	op, err := hdr.ParseOperator(o.Operator)
	if err != nil {
		return err
	}

	cfg := config.Default()
	if o.Config != "" {
		if cfg, err = config.Load(o.Config); err != nil {
			return err
		}
	}

	img, err := hdrio.ReadRadiance(o.In)
	if err != nil {
		return err
	}
	logger.Info().Str("in", o.In).Int("width", img.Width).Int("height", img.Height).Msg("loaded")

	backend := software.New(img.Width, img.Height, software.StaticScene{Image: img},
		software.WithThreshold(float32(o.Threshold)),
		software.WithLogger(logger),
	)

	state := cfg.Illumination.State()
	state.Operator = op
	state.Exposure = float32(o.Exposure)
	state.BloomEnabled = o.Bloom
	state.DynamicExposure = o.Dynamic

	pipeline := hdr.NewPipeline(backend, state,
		hdr.WithBloomPasses(o.Passes),
		hdr.WithLogger(logger),
	)

	var stats hdr.LuminanceStats
	for i := 0; i < o.Frames; i++ {
		stats, err = pipeline.Frame(&hdr.FrameContext{
			Frame:  uint64(i),
			Delta:  float32(o.DT),
			Width:  img.Width,
			Height: img.Height,
		})
		if err != nil {
			return err
		}
	}

	if err := hdrio.WritePNG(o.Out, backend.Output()); err != nil {
		return err
	}
	logger.Info().
		Str("out", o.Out).
		Float32("avg", stats.Avg).
		Float32("min", stats.Min).
		Float32("max", stats.Max).
		Msg(hdr.Diagnostic(&pipeline.State))

	if o.Reference {
		ref := referencePath(o.Out)
		if err := hdrio.WritePNG(ref, hdrio.ReferenceDrago(img)); err != nil {
			return err
		}
		logger.Info().Str("out", ref).Msg("reference drago03 written")
	}
	return nil
}

// referencePath turns out.png into out-drago03-ref.png.
func referencePath(out string) string {
	ext := filepath.Ext(out)
	return strings.TrimSuffix(out, ext) + "-drago03-ref" + ext
}
