package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"hdr-lighting/config"
	"hdr-lighting/core"
	"hdr-lighting/hdr"
	"hdr-lighting/hdrio"
	"hdr-lighting/internal/opengl"
	"hdr-lighting/scene"
	"hdr-lighting/telemetry"
)

func main() {
	configPath := flag.String("config", "settings/config.json", "settings file (JSON or YAML)")
	logLevel := flag.String("log-level", "", "log level, overrides log.level")
	telemetryAddr := flag.String("telemetry", "", "telemetry listen address, overrides telemetry.addr")
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly})

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", *configPath).Msg("load config")
	}
	if *logLevel != "" {
		cfg.Log.Level = *logLevel
	}
	if *telemetryAddr != "" {
		cfg.Telemetry.Addr = *telemetryAddr
	}
	setLogLevel(cfg.Log.Level)

	if !cfg.Illumination.ExposureOrderOK() {
		log.Warn().
			Float32("min", cfg.Illumination.MinExposure).
			Float32("avg", cfg.Illumination.AvgExposure).
			Float32("max", cfg.Illumination.MaxExposure).
			Msg("exposure bounds out of order")
	}

	window, err := core.NewWindow(core.WindowConfig{
		Width:        cfg.Window.Width,
		Height:       cfg.Window.Height,
		Title:        cfg.Window.Title,
		Resizable:    true,
		VSync:        cfg.Window.VSync,
		CaptureMouse: true,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("create window")
	}
	defer window.Destroy()

	width, height := window.GetFramebufferSize()
	backend, err := opengl.NewBackend(width, height, loadAssets(cfg), window.SwapBuffers, log.Logger)
	if err != nil {
		log.Fatal().Err(err).Msg("create renderer")
	}
	defer backend.Destroy()

	pipeline := hdr.NewPipeline(backend, cfg.Illumination.State(),
		hdr.WithBloomPasses(cfg.Bloom.Passes),
		hdr.WithLogger(log.Logger),
	)
	log.Info().Str("state", hdr.Diagnostic(&pipeline.State)).Int("width", width).Int("height", height).Msg("renderer ready")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var hub *telemetry.Hub
	if cfg.Telemetry.Addr != "" {
		hub = telemetry.NewHub(log.Logger)
		go func() {
			if err := hub.Serve(ctx, cfg.Telemetry.Addr); err != nil {
				log.Error().Err(err).Msg("telemetry server stopped")
			}
		}()
	}

	camera := scene.NewCamera(mgl32.Vec3{cfg.Camera.X, cfg.Camera.Y, cfg.Camera.Z})
	camController := NewCameraController()
	var controls hdr.Controls
	pressed := keyState(window.IsKeyPressed)

	fps := newFPSCounter(window.Time())
	lastTime := window.Time()
	var frame uint64

	for !window.ShouldClose() && ctx.Err() == nil {
		now := window.Time()
		deltaTime := float32(now - lastTime)
		lastTime = now

		window.PollEvents()
		if window.TakeResize() {
			w, h := window.GetFramebufferSize()
			if w > 0 && h > 0 {
				if err := pipeline.Resize(w, h); err != nil {
					log.Error().Err(err).Msg("resize")
				}
			}
		}

		res := controls.Apply(&pipeline.State, pressed)
		if res.Quit {
			window.SetShouldClose(true)
		}
		camController.Update(window, camera, deltaTime)

		w, h := backend.Size()
		fc := &hdr.FrameContext{
			Frame:      frame,
			Delta:      deltaTime,
			Width:      w,
			Height:     h,
			View:       camera.ViewMatrix(),
			SkyView:    camera.SkyboxView(),
			Projection: camera.Projection(float32(w) / float32(h)),
			CameraPos:  camera.Position,
		}
		if _, err := pipeline.Frame(fc); err != nil {
			log.Error().Err(err).Uint64("frame", frame).Msg("frame failed")
		}

		if res.Snapshot {
			snapshot(cfg.Snapshot.Dir, frame, pipeline.Pixels(), w, h)
		}
		if hub != nil {
			hub.Publish(telemetry.NewSample(frame, &pipeline.State))
		}
		if n, ok := fps.tick(now); ok {
			window.SetTitle(statusTitle(cfg.Window.Title, n, &pipeline.State))
		}
		frame++
	}

	log.Info().Uint64("frames", frame).Msg("exiting")
}

func setLogLevel(name string) {
	lvl, err := zerolog.ParseLevel(name)
	if err != nil {
		log.Warn().Err(err).Str("level", name).Msg("unknown log level, using info")
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
}

// loadAssets reads the scene content. Missing files are logged and left
// empty; the renderer draws them black.
func loadAssets(cfg *config.Config) opengl.Assets {
	assets := opengl.Assets{
		Tunnel:    scene.TunnelMesh(),
		Model:     scene.TunnelModel(),
		Lights:    scene.TunnelLights(),
		Threshold: cfg.Bloom.Threshold,
	}

	if cfg.Scene.Mesh != "" {
		m, err := scene.LoadMesh(cfg.Scene.Mesh)
		if err != nil {
			log.Warn().Err(err).Msg("tunnel mesh not loaded, using built-in box")
		} else {
			assets.Tunnel = m
		}
	}

	tex, err := scene.LoadTexture(cfg.Scene.Texture, cfg.Scene.MaxTextureSize)
	if err != nil {
		log.Warn().Err(err).Msg("diffuse texture not loaded")
	}
	assets.Diffuse = tex

	faces, errs := scene.LoadCubemap(cfg.Scene.Skybox, cfg.Scene.MaxTextureSize)
	for i, err := range errs {
		if err != nil {
			log.Warn().Err(err).Str("face", scene.CubemapFaces[i]).Msg("skybox face not loaded")
		}
	}
	assets.Skybox = faces
	return assets
}

// snapshot writes the scene radiance of the last frame as a Radiance file.
func snapshot(dir string, frame uint64, pixels []float32, width, height int) {
	buf := &hdr.FloatBuffer{Width: width, Height: height, Channels: 3, Pix: append([]float32(nil), pixels...)}
	if len(buf.Pix) != width*height*3 {
		log.Error().Int("floats", len(buf.Pix)).Msg("snapshot skipped, readback size mismatch")
		return
	}
	path := filepath.Join(dir, fmt.Sprintf("frame-%d.hdr", frame))
	if err := hdrio.WriteRadiance(path, buf); err != nil {
		log.Error().Err(err).Msg("snapshot failed")
		return
	}
	log.Info().Str("path", path).Msg("snapshot written")
}
