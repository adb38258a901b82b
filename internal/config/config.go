// Package config loads the demo's settings from MARQUEE_* environment
// variables.
package config

import (
	"fmt"
	"log/slog"

	"github.com/kelseyhightower/envconfig"

	"github.com/phanxgames/marquee"
)

type Config struct {
	Width      int        `envconfig:"WIDTH" default:"1280"`
	Height     int        `envconfig:"HEIGHT" default:"720"`
	Title      string     `envconfig:"TITLE" default:"marquee"`
	TPS        int        `envconfig:"TPS" default:"60"`
	VSync      bool       `envconfig:"VSYNC" default:"true"`
	Debug      bool       `envconfig:"DEBUG" default:"false"`
	Overlay    bool       `envconfig:"OVERLAY" default:"false"`
	LogLevel   slog.Level `envconfig:"LOG_LEVEL" default:"info"`
	Scene      string     `envconfig:"SCENE" default:""`
	Watch      bool       `envconfig:"WATCH" default:"false"`
	Script     string     `envconfig:"SCRIPT" default:""`
	Screenshot string     `envconfig:"SCREENSHOT_DIR" default:"screenshots"`
	Font       string     `envconfig:"FONT" default:""`
	FontSize   float32    `envconfig:"FONT_SIZE" default:"24"`
	Background Hex        `envconfig:"BACKGROUND" default:"#1e1e28"`
}

// Load reads the configuration from the environment.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("marquee", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("config: invalid window size %dx%d", c.Width, c.Height)
	}
	if c.TPS <= 0 {
		return fmt.Errorf("config: invalid tps %d", c.TPS)
	}
	if c.FontSize <= 0 {
		return fmt.Errorf("config: invalid font size %g", c.FontSize)
	}
	if c.Watch && c.Scene == "" {
		return fmt.Errorf("config: MARQUEE_WATCH requires MARQUEE_SCENE")
	}
	return nil
}

// Hex is a color written as #rgb, #rrggbb or #rrggbbaa.
type Hex marquee.Color

// Decode implements envconfig.Decoder.
func (h *Hex) Decode(value string) error {
	c, err := marquee.ParseHexColor(value)
	if err != nil {
		return err
	}
	*h = Hex(c)
	return nil
}

// Color returns the decoded color.
func (h Hex) Color() marquee.Color { return marquee.Color(h) }
