package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config captures the rendering and service configuration for a project.
type Config struct {
	Version int           `yaml:"version"`
	Video   VideoConfig   `yaml:"video"`
	Audio   AudioConfig   `yaml:"audio"`
	Export  ExportConfig  `yaml:"export"`
	Images  ImagesConfig  `yaml:"images"`
	Service ServiceConfig `yaml:"service"`
}

// VideoConfig contains frame sizing and framerate information.
type VideoConfig struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
	FPS    int `yaml:"fps"`
}

// AudioConfig describes audio encoding parameters.
type AudioConfig struct {
	ACodec      string `yaml:"acodec"`
	BitrateKbps int    `yaml:"bitrate_kbps"`
	SampleRate  int    `yaml:"sample_rate"`
}

// ExportConfig describes video encoding parameters for the final render.
type ExportConfig struct {
	VCodec string `yaml:"vcodec"`
	Preset string `yaml:"preset"`
	CRF    int    `yaml:"crf"`
}

// ImagesConfig controls generated-image defaults.
type ImagesConfig struct {
	DefaultDurationSec float64 `yaml:"default_duration_s"`
}

// ServiceConfig points at the generative service endpoint.
type ServiceConfig struct {
	BaseURL string `yaml:"base_url"`
}

// Default returns the baseline configuration.
func Default() Config {
	return Config{
		Version: 1,
		Video: VideoConfig{
			Width:  1280,
			Height: 720,
			FPS:    30,
		},
		Audio: AudioConfig{
			ACodec:      "aac",
			BitrateKbps: 192,
			SampleRate:  44100,
		},
		Export: ExportConfig{
			VCodec: "libx264",
			Preset: "medium",
			CRF:    20,
		},
		Images: ImagesConfig{
			DefaultDurationSec: 2.5,
		},
		Service: ServiceConfig{
			BaseURL: "",
		},
	}
}

// Load reads the YAML configuration from disk if it exists, otherwise returns
// the default configuration.
func Load(path string) (Config, error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg := Default()
			cfg.ApplyDefaults()
			return cfg, nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(contents, &cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.ApplyDefaults()
	return cfg, nil
}

// ApplyDefaults ensures nested fields fall back to sensible defaults when the
// YAML omits them.
func (c *Config) ApplyDefaults() {
	defaults := Default()

	if c.Version == 0 {
		c.Version = defaults.Version
	}
	if c.Video.Width == 0 {
		c.Video.Width = defaults.Video.Width
	}
	if c.Video.Height == 0 {
		c.Video.Height = defaults.Video.Height
	}
	if c.Video.FPS == 0 {
		c.Video.FPS = defaults.Video.FPS
	}
	if c.Audio.ACodec == "" {
		c.Audio.ACodec = defaults.Audio.ACodec
	}
	if c.Audio.BitrateKbps == 0 {
		c.Audio.BitrateKbps = defaults.Audio.BitrateKbps
	}
	if c.Audio.SampleRate == 0 {
		c.Audio.SampleRate = defaults.Audio.SampleRate
	}
	if c.Export.VCodec == "" {
		c.Export.VCodec = defaults.Export.VCodec
	}
	if c.Export.Preset == "" {
		c.Export.Preset = defaults.Export.Preset
	}
	if c.Export.CRF == 0 {
		c.Export.CRF = defaults.Export.CRF
	}
	if c.Images.DefaultDurationSec == 0 {
		c.Images.DefaultDurationSec = defaults.Images.DefaultDurationSec
	}
}

// Marshal returns the YAML encoding of the configuration.
func (c Config) Marshal() ([]byte, error) {
	buf, err := yaml.Marshal(&c)
	if err != nil {
		return nil, fmt.Errorf("marshal config: %w", err)
	}
	return buf, nil
}
