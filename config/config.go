// Package config loads the demo settings file.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"hdr-lighting/hdr"
)

type Window struct {
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
	Title  string `yaml:"title"`
	VSync  bool   `yaml:"vsync"`
}

type Camera struct {
	X float32 `yaml:"x"`
	Y float32 `yaml:"y"`
	Z float32 `yaml:"z"`
}

// Illumination holds the initial tone-mapping state and the exposure
// controller tuning.
type Illumination struct {
	Type            int     `yaml:"type"` // 0 none, 1 reinhard, 2 exponential, 3 drago
	DynamicExposure bool    `yaml:"dynamic_exp"`
	Exposure        float32 `yaml:"exposure"`
	InfCapLuminance float32 `yaml:"inf_cap_luminance"`
	SupCapLuminance float32 `yaml:"sup_cap_luminance"`
	AvgExposure     float32 `yaml:"avg_exposure"`
	MinExposure     float32 `yaml:"min_exposure"`
	MaxExposure     float32 `yaml:"max_exposure"`
	AdaptationSpeed float32 `yaml:"adaptation_speed"`
	MaxChange       float32 `yaml:"max_change"`
	Bloom           bool    `yaml:"bloom"`
}

type Bloom struct {
	Passes    int     `yaml:"passes"`
	Threshold float32 `yaml:"threshold"`
}

type Scene struct {
	Texture        string    `yaml:"texture"`
	Skybox         [6]string `yaml:"skybox"` // right, left, top, bottom, front, back
	Mesh           string    `yaml:"mesh"`
	MaxTextureSize int       `yaml:"max_texture_size"`
}

type Log struct {
	Level string `yaml:"level"`
}

type Telemetry struct {
	Addr string `yaml:"addr"`
}

type Snapshot struct {
	Dir string `yaml:"dir"`
}

type Config struct {
	Window       Window       `yaml:"window"`
	Camera       Camera       `yaml:"camera"`
	Illumination Illumination `yaml:"illumination"`
	Bloom        Bloom        `yaml:"bloom"`
	Scene        Scene        `yaml:"scene"`
	Log          Log          `yaml:"log"`
	Telemetry    Telemetry    `yaml:"telemetry"`
	Snapshot     Snapshot     `yaml:"snapshot"`
}

// Default returns the settings used for every key the file leaves out.
func Default() *Config {
	return &Config{
		Window: Window{Width: 800, Height: 600, Title: "HDR Lighting", VSync: true},
		Camera: Camera{X: 0, Y: 0, Z: 5},
		Illumination: Illumination{
			Type:            int(hdr.OperatorReinhard),
			DynamicExposure: true,
			Exposure:        1.0,
			InfCapLuminance: 0.1,
			SupCapLuminance: 0.5,
			AvgExposure:     2.0,
			MinExposure:     0.1,
			MaxExposure:     5.0,
			AdaptationSpeed: 1.0,
			MaxChange:       0.05,
			Bloom:           true,
		},
		Bloom: Bloom{Passes: hdr.DefaultBloomPasses, Threshold: hdr.DefaultBloomThreshold},
		Scene: Scene{
			Texture: "resources/textures/container.png",
			Skybox: [6]string{
				"resources/skybox/right.jpg",
				"resources/skybox/left.jpg",
				"resources/skybox/top.jpg",
				"resources/skybox/bottom.jpg",
				"resources/skybox/front.jpg",
				"resources/skybox/back.jpg",
			},
			MaxTextureSize: 2048,
		},
		Log:      Log{Level: "info"},
		Snapshot: Snapshot{Dir: "snapshots"},
	}
}

// Load reads a YAML or JSON settings file over Default.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(b)
}

func Parse(b []byte) (*Config, error) {
	c := Default()
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func Save(path string, c *Config) error {
	b, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0644)
}

// Validate rejects settings the renderer cannot run with. Exposure bounds
// that are out of order are allowed; see ExposureOrderOK.
func (c *Config) Validate() error {
	var errs []error
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		errs = append(errs, fmt.Errorf("window size %dx%d must be positive", c.Window.Width, c.Window.Height))
	}
	if _, err := hdr.OperatorFromIndex(c.Illumination.Type); err != nil {
		errs = append(errs, fmt.Errorf("illumination.type: %w", err))
	}
	if c.Illumination.InfCapLuminance >= c.Illumination.SupCapLuminance {
		errs = append(errs, fmt.Errorf("inf_cap_luminance %g must be below sup_cap_luminance %g",
			c.Illumination.InfCapLuminance, c.Illumination.SupCapLuminance))
	}
	if c.Bloom.Passes < 0 {
		errs = append(errs, fmt.Errorf("bloom.passes %d is negative", c.Bloom.Passes))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// ExposureOrderOK reports whether min <= avg <= max exposure holds.
func (i Illumination) ExposureOrderOK() bool {
	return i.MinExposure <= i.AvgExposure && i.AvgExposure <= i.MaxExposure
}

// State builds the initial illumination state. Type must be valid.
func (i Illumination) State() hdr.IlluminationState {
	op, _ := hdr.OperatorFromIndex(i.Type)
	return hdr.IlluminationState{
		Operator:           op,
		Exposure:           i.Exposure,
		DynamicExposure:    i.DynamicExposure,
		BloomEnabled:       i.Bloom,
		AdaptationSpeed:    i.AdaptationSpeed,
		MaxChangePerFrame:  i.MaxChange,
		InfCapLuminance:    i.InfCapLuminance,
		SupCapLuminance:    i.SupCapLuminance,
		TargetRestExposure: i.AvgExposure,
		MinExposure:        i.MinExposure,
		MaxExposure:        i.MaxExposure,
	}
}
