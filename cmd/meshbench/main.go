// Package main is a headless benchmark for the section meshing pipeline.
// It generates a block of terrain, meshes it on the worker pool and reports
// throughput and memory use.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/shirou/gopsutil/v3/process"
	"go.uber.org/zap"

	"github.com/Faultbox/midgard-mesh/internal/config"
	"github.com/Faultbox/midgard-mesh/internal/engine/meshdump"
	"github.com/Faultbox/midgard-mesh/internal/engine/native"
	"github.com/Faultbox/midgard-mesh/internal/engine/section"
	"github.com/Faultbox/midgard-mesh/internal/engine/worker"
	"github.com/Faultbox/midgard-mesh/internal/logger"
	"github.com/Faultbox/midgard-mesh/internal/metrics"
)

func main() {
	config.ParseFlags()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if config.SaveRequested() {
		if err := cfg.Save(); err != nil {
			logger.Warn("saving config failed", zap.Error(err))
		} else {
			logger.Info("config saved", zap.String("dir", config.ConfigDir()))
		}
	}

	if err := run(cfg); err != nil {
		logger.Error("meshbench failed", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	alloc, err := native.New(cfg.Meshing.Allocator)
	if err != nil {
		return err
	}

	m := metrics.New(func() int64 { return alloc.Stats().LiveBytes })
	if cfg.Metrics.Addr != "" {
		stop := m.Serve(cfg.Metrics.Addr)
		defer stop()
	}

	genStart := time.Now()
	gen := section.NewGenerator(section.DefaultGeneratorConfig(cfg.World.Seed))
	sections := gen.GenerateArea(cfg.World.Radius, cfg.World.Height)
	logger.Info("terrain generated",
		zap.Int("sections", len(sections)),
		zap.Int64("seed", cfg.World.Seed),
		zap.Duration("took", time.Since(genStart)),
	)

	pool := worker.NewPool(worker.Options{
		Workers:   cfg.Workers.Count,
		QueueSize: cfg.Workers.QueueSize,
		Allocator: alloc,
		Metrics:   m,
	})

	buildStart := time.Now()
	results, err := pool.BuildAll(ctx, sections)
	if err != nil {
		return fmt.Errorf("building sections: %w", err)
	}
	elapsed := time.Since(buildStart)
	defer func() {
		for i := range results {
			results[i].Release()
		}
	}()

	var (
		failed, quads int
		baked         uint64
		slowest       time.Duration
	)
	for i := range results {
		r := &results[i]
		if r.Err != nil {
			failed++
			continue
		}
		quads += r.Info.TotalQuads()
		slowest = max(slowest, r.Duration)
		for _, p := range r.Parts {
			baked += uint64(len(p.Buffer))
		}
	}

	if cfg.Dump.Path != "" {
		if err := dump(cfg.Dump.Path, results); err != nil {
			return err
		}
	}

	fields := []zap.Field{
		zap.Int("sections", len(results)),
		zap.Int("failed", failed),
		zap.String("quads", humanize.Comma(int64(quads))),
		zap.String("baked", humanize.Bytes(baked)),
		zap.Duration("took", elapsed),
		zap.Duration("slowest_section", slowest),
		zap.Float64("sections_per_sec", float64(len(results))/elapsed.Seconds()),
		zap.String("native_live", humanize.Bytes(uint64(alloc.Stats().LiveBytes))),
		zap.Int("workers", cfg.Workers.Count),
		zap.String("allocator", cfg.Meshing.Allocator),
	}
	if rss, err := residentSet(); err == nil {
		fields = append(fields, zap.String("rss", humanize.Bytes(rss)))
	} else {
		logger.Debug("rss unavailable", zap.Error(err))
	}
	logger.Info("meshing finished", fields...)

	if failed > 0 {
		return fmt.Errorf("%d of %d sections failed", failed, len(results))
	}
	return nil
}

func dump(path string, results []worker.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating dump: %w", err)
	}
	defer f.Close()

	runID := uuid.New()
	w, err := meshdump.NewWriter(f, runID)
	if err != nil {
		return err
	}
	for i := range results {
		r := &results[i]
		for j := range r.Parts {
			if err := w.Write(r.Coord, &r.Parts[j]); err != nil {
				return err
			}
		}
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("closing dump: %w", err)
	}

	logger.Info("mesh dump written",
		zap.String("path", path),
		zap.Stringer("run", runID),
		zap.Int("records", w.Records()),
	)
	return f.Close()
}

func residentSet() (uint64, error) {
	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return 0, err
	}
	mem, err := p.MemoryInfo()
	if err != nil {
		return 0, err
	}
	return mem.RSS, nil
}
