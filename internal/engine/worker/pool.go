// Package worker runs section builds on a fixed set of goroutines. Each
// worker owns one meshbuf.BuildBuffers for its whole lifetime.
package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Faultbox/midgard-mesh/internal/engine/mesher"
	"github.com/Faultbox/midgard-mesh/internal/engine/meshbuf"
	"github.com/Faultbox/midgard-mesh/internal/engine/native"
	"github.com/Faultbox/midgard-mesh/internal/engine/render"
	"github.com/Faultbox/midgard-mesh/internal/engine/section"
	"github.com/Faultbox/midgard-mesh/internal/engine/vertex"
	"github.com/Faultbox/midgard-mesh/internal/logger"
	"github.com/Faultbox/midgard-mesh/internal/metrics"
)

// ErrBuildAborted is wrapped by the error of every section build that hit a
// fatal condition. The section produced no output.
var ErrBuildAborted = errors.New("section build aborted")

// BuildFunc emits the quads of a section into bufs.
type BuildFunc func(sec *section.Section, bufs *meshbuf.BuildBuffers, info *section.RenderInfo)

// Result is the output of one section build.
type Result struct {
	Coord    section.Coord
	Parts    []meshbuf.BakedMeshParts // one per non-empty pass, in pass order
	Info     section.RenderInfo
	Duration time.Duration
	Err      error
}

// Release frees every baked buffer in the result.
func (r *Result) Release() {
	for i := range r.Parts {
		r.Parts[i].Release()
	}
	r.Parts = nil
}

// Options configures a Pool.
type Options struct {
	Workers   int
	QueueSize int
	Format    meshbuf.VertexFormat // defaults to vertex.Compact
	Allocator native.Allocator     // defaults to a heap allocator
	Build     BuildFunc            // defaults to mesher.Mesh
	Metrics   *metrics.Metrics     // optional
}

// Pool builds sections concurrently.
type Pool struct {
	opts Options
	log  *zap.Logger
}

// NewPool creates a pool. Workers start when Run is called.
func NewPool(opts Options) *Pool {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.Format == nil {
		opts.Format = vertex.Compact{}
	}
	if opts.Allocator == nil {
		opts.Allocator = native.NewHeap()
	}
	if opts.Build == nil {
		opts.Build = mesher.Mesh
	}
	return &Pool{opts: opts, log: logger.Named("worker")}
}

// Run builds every section received from jobs and sends one Result per
// section to results. It returns when jobs is closed and drained, or when
// ctx is cancelled, and closes results before returning.
//
// A section whose build panics yields a Result with Err wrapping
// ErrBuildAborted; the worker carries on with the next section.
func (p *Pool) Run(ctx context.Context, jobs <-chan *section.Section, results chan<- Result) error {
	defer close(results)

	g, ctx := errgroup.WithContext(ctx)
	for id := 0; id < p.opts.Workers; id++ {
		id := id
		g.Go(func() error {
			w := p.newWorker(id)
			defer w.destroy()
			return w.loop(ctx, jobs, results)
		})
	}
	return g.Wait()
}

// BuildAll builds sections and returns their results in completion order.
func (p *Pool) BuildAll(ctx context.Context, sections []*section.Section) ([]Result, error) {
	jobs := make(chan *section.Section, p.opts.QueueSize)
	results := make(chan Result, p.opts.QueueSize)

	errc := make(chan error, 1)
	go func() { errc <- p.Run(ctx, jobs, results) }()

	go func() {
		defer close(jobs)
		for _, sec := range sections {
			select {
			case jobs <- sec:
			case <-ctx.Done():
				return
			}
		}
	}()

	out := make([]Result, 0, len(sections))
	for r := range results {
		out = append(out, r)
	}
	if err := <-errc; err != nil {
		for i := range out {
			out[i].Release()
		}
		return nil, err
	}
	return out, nil
}

type worker struct {
	id       int
	pool     *Pool
	bufs     *meshbuf.BuildBuffers
	log      *zap.Logger
	scratch  int // capacity last reported to metrics
	sections int
}

func (p *Pool) newWorker(id int) *worker {
	w := &worker{
		id:   id,
		pool: p,
		bufs: meshbuf.NewBuildBuffers(p.opts.Format, p.opts.Allocator),
		log:  p.log.With(zap.Int("worker", id)),
	}
	w.reportScratch()
	w.log.Debug("worker started", zap.Int("scratch_bytes", w.scratch))
	return w
}

func (w *worker) loop(ctx context.Context, jobs <-chan *section.Section, results chan<- Result) error {
	for {
		var sec *section.Section
		select {
		case <-ctx.Done():
			return ctx.Err()
		case s, ok := <-jobs:
			if !ok {
				return nil
			}
			sec = s
		}

		res := w.build(sec)
		select {
		case results <- res:
		case <-ctx.Done():
			res.Release()
			return ctx.Err()
		}
	}
}

// build meshes and bakes one section. A panic from the build is a fatal
// condition for this section only: whatever was baked is released and the
// next Init rewinds the buffers.
func (w *worker) build(sec *section.Section) (res Result) {
	res.Coord = sec.Coord
	start := time.Now()
	m := w.pool.opts.Metrics

	defer func() {
		res.Duration = time.Since(start)
		if r := recover(); r != nil {
			res.Release()
			if err, ok := r.(error); ok {
				res.Err = fmt.Errorf("%w: section %s: %w", ErrBuildAborted, sec.Coord, err)
			} else {
				res.Err = fmt.Errorf("%w: section %s: %v", ErrBuildAborted, sec.Coord, r)
			}
			w.log.Warn("section build aborted", zap.Stringer("section", sec.Coord), zap.Error(res.Err))
			if m != nil {
				m.SectionsFailed.Inc()
			}
		}
		w.reportScratch()
	}()

	w.pool.opts.Build(sec, w.bufs, &res.Info)

	for _, pass := range render.Passes() {
		parts, ok := w.bufs.Bake(pass)
		if !ok {
			if m != nil {
				m.PassesEmpty.WithLabelValues(pass.String()).Inc()
			}
			continue
		}
		res.Parts = append(res.Parts, parts)
		if m != nil {
			m.PassesBaked.WithLabelValues(pass.String()).Inc()
			m.BakedBytes.WithLabelValues(pass.String()).Add(float64(len(parts.Buffer)))
		}
	}

	w.sections++
	if m != nil {
		m.SectionsBuilt.Inc()
		m.BuildDuration.Observe(time.Since(start).Seconds())
	}
	return res
}

func (w *worker) reportScratch() {
	capacity := w.bufs.Stats().Capacity()
	if m := w.pool.opts.Metrics; m != nil {
		m.ScratchBytes.Add(float64(capacity - w.scratch))
	}
	w.scratch = capacity
}

func (w *worker) destroy() {
	if m := w.pool.opts.Metrics; m != nil {
		m.ScratchBytes.Sub(float64(w.scratch))
	}
	w.log.Debug("worker stopped",
		zap.Int("sections", w.sections),
		zap.Int("scratch_bytes", w.scratch),
	)
	w.bufs.Destroy()
}
