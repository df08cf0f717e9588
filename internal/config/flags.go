package config

import "flag"

var (
	flagConfig    = flag.String("config", "", "Path to config file")
	flagDebug     = flag.Bool("debug", false, "Enable debug logging")
	flagWorkers   = flag.Int("workers", 0, "Number of meshing workers")
	flagSeed      = flag.Int64("seed", 0, "World seed")
	flagRadius    = flag.Int("radius", -1, "Section radius around the origin")
	flagAllocator = flag.String("allocator", "", "Build buffer allocator (mmap, heap)")
	flagMetrics   = flag.String("metrics", "", "Prometheus listen address, e.g. :2112")
	flagDump      = flag.String("dump", "", "Write baked meshes to this file")
	flagSave      = flag.Bool("save-config", false, "Write the effective config to the user config directory")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// SaveRequested reports whether --save-config was given.
func SaveRequested() bool {
	return *flagSave
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagWorkers > 0 {
		cfg.Workers.Count = *flagWorkers
	}
	if *flagSeed != 0 {
		cfg.World.Seed = *flagSeed
	}
	if *flagRadius >= 0 {
		cfg.World.Radius = *flagRadius
	}
	if *flagAllocator != "" {
		cfg.Meshing.Allocator = *flagAllocator
	}
	if *flagMetrics != "" {
		cfg.Metrics.Addr = *flagMetrics
	}
	if *flagDump != "" {
		cfg.Dump.Path = *flagDump
	}
}
