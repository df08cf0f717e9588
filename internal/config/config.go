// Package config handles meshing pipeline configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/Faultbox/midgard-mesh/internal/engine/native"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid config")

// Config holds all settings.
type Config struct {
	Meshing MeshingConfig `yaml:"meshing"`
	Workers WorkersConfig `yaml:"workers"`
	World   WorldConfig   `yaml:"world"`
	Viewer  ViewerConfig  `yaml:"viewer"`
	Metrics MetricsConfig `yaml:"metrics"`
	Dump    DumpConfig    `yaml:"dump"`
	Logging LoggingConfig `yaml:"logging"`
}

// MeshingConfig holds build buffer settings.
type MeshingConfig struct {
	Allocator string `yaml:"allocator"` // "mmap" or "heap"
}

// WorkersConfig holds worker pool settings.
type WorkersConfig struct {
	Count     int `yaml:"count"`
	QueueSize int `yaml:"queue_size"`
}

// WorldConfig holds terrain generation settings.
type WorldConfig struct {
	Seed   int64 `yaml:"seed"`
	Radius int   `yaml:"radius"` // sections around the origin, per axis
	Height int   `yaml:"height"` // vertical sections, starting at y=0
}

// ViewerConfig holds display settings for sectionview.
type ViewerConfig struct {
	Width      int  `yaml:"width"`
	Height     int  `yaml:"height"`
	Fullscreen bool `yaml:"fullscreen"`
	VSync      bool `yaml:"vsync"`
}

// MetricsConfig holds the Prometheus endpoint address. Empty disables it.
type MetricsConfig struct {
	Addr string `yaml:"addr"`
}

// DumpConfig holds the baked mesh dump path. Empty disables dumping.
type DumpConfig struct {
	Path string `yaml:"path"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Meshing: MeshingConfig{
			Allocator: native.KindMmap,
		},
		Workers: WorkersConfig{
			Count:     max(1, runtime.NumCPU()-1),
			QueueSize: 256,
		},
		World: WorldConfig{
			Seed:   1337,
			Radius: 4,
			Height: 3,
		},
		Viewer: ViewerConfig{
			Width:  1280,
			Height: 720,
			VSync:  true,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Validate reports the first setting that cannot work.
func (c *Config) Validate() error {
	switch {
	case c.Meshing.Allocator != native.KindMmap && c.Meshing.Allocator != native.KindHeap:
		return fmt.Errorf("%w: meshing.allocator %q", ErrInvalid, c.Meshing.Allocator)
	case c.Workers.Count < 1:
		return fmt.Errorf("%w: workers.count must be positive, got %d", ErrInvalid, c.Workers.Count)
	case c.Workers.QueueSize < 0:
		return fmt.Errorf("%w: workers.queue_size must not be negative, got %d", ErrInvalid, c.Workers.QueueSize)
	case c.World.Radius < 0:
		return fmt.Errorf("%w: world.radius must not be negative, got %d", ErrInvalid, c.World.Radius)
	case c.World.Height < 1:
		return fmt.Errorf("%w: world.height must be positive, got %d", ErrInvalid, c.World.Height)
	case c.Viewer.Width <= 0 || c.Viewer.Height <= 0:
		return fmt.Errorf("%w: viewer size %dx%d", ErrInvalid, c.Viewer.Width, c.Viewer.Height)
	}
	return nil
}
