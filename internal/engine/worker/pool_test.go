package worker

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/midgard-mesh/internal/engine/mesher"
	"github.com/Faultbox/midgard-mesh/internal/engine/meshbuf"
	"github.com/Faultbox/midgard-mesh/internal/engine/native"
	"github.com/Faultbox/midgard-mesh/internal/engine/render"
	"github.com/Faultbox/midgard-mesh/internal/engine/section"
	"github.com/Faultbox/midgard-mesh/internal/engine/vertex"
	"github.com/Faultbox/midgard-mesh/internal/metrics"
)

func generate(n int) []*section.Section {
	gen := section.NewGenerator(section.DefaultGeneratorConfig(3))
	out := make([]*section.Section, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, gen.Generate(section.Coord{X: int32(i), Y: 1, Z: 0}))
	}
	return out
}

func releaseAll(results []Result) {
	for i := range results {
		results[i].Release()
	}
}

func TestBuildAll(t *testing.T) {
	alloc := native.NewHeap()
	m := metrics.New(func() int64 { return alloc.Stats().LiveBytes })
	pool := NewPool(Options{Workers: 3, QueueSize: 4, Allocator: alloc, Metrics: m})

	sections := generate(12)
	results, err := pool.BuildAll(context.Background(), sections)
	require.NoError(t, err)
	require.Len(t, results, len(sections))

	seen := make(map[section.Coord]bool)
	for _, r := range results {
		require.NoError(t, r.Err)
		seen[r.Coord] = true
		assert.Equal(t, len(r.Info.Passes()), len(r.Parts), "one baked part per pass with quads")
		for _, p := range r.Parts {
			assert.Equal(t, r.Info.QuadCount(p.Pass)*4, p.VertexCount())
		}
	}
	assert.Len(t, seen, len(sections))
	assert.Equal(t, 12.0, testutil.ToFloat64(m.SectionsBuilt))
	assert.Zero(t, testutil.ToFloat64(m.ScratchBytes), "workers release scratch on exit")

	releaseAll(results)
	assert.Zero(t, alloc.Stats().LiveBytes, "all memory returned once results are released")
}

func TestResultsMatchSingleThreaded(t *testing.T) {
	sections := generate(4)
	results, err := NewPool(Options{Workers: 2}).BuildAll(context.Background(), sections)
	require.NoError(t, err)
	defer releaseAll(results)

	bufs := meshbuf.NewBuildBuffers(vertex.Compact{}, native.NewHeap())
	defer bufs.Destroy()

	byCoord := make(map[section.Coord]Result)
	for _, r := range results {
		byCoord[r.Coord] = r
	}
	for _, sec := range sections {
		var info section.RenderInfo
		mesher.Mesh(sec, bufs, &info)

		got := byCoord[sec.Coord]
		i := 0
		for _, pass := range render.Passes() {
			want, ok := bufs.Bake(pass)
			if !ok {
				continue
			}
			require.Less(t, i, len(got.Parts))
			assert.Equal(t, want.Pass, got.Parts[i].Pass)
			assert.Equal(t, want.Ranges, got.Parts[i].Ranges)
			assert.Equal(t, want.Buffer, got.Parts[i].Buffer)
			want.Release()
			i++
		}
		assert.Equal(t, i, len(got.Parts))
	}
}

func TestOneBuildBuffersPerWorker(t *testing.T) {
	var mu sync.Mutex
	owners := make(map[*meshbuf.BuildBuffers]int)

	build := func(sec *section.Section, bufs *meshbuf.BuildBuffers, info *section.RenderInfo) {
		mu.Lock()
		owners[bufs]++
		mu.Unlock()
		mesher.Mesh(sec, bufs, info)
	}

	pool := NewPool(Options{Workers: 2, Build: build})
	results, err := pool.BuildAll(context.Background(), generate(10))
	require.NoError(t, err)
	releaseAll(results)

	assert.LessOrEqual(t, len(owners), 2)
	total := 0
	for _, n := range owners {
		total += n
	}
	assert.Equal(t, 10, total)
}

func TestPanicAbortsOnlyThatSection(t *testing.T) {
	bad := section.Coord{X: 2, Y: 1, Z: 0}
	build := func(sec *section.Section, bufs *meshbuf.BuildBuffers, info *section.RenderInfo) {
		mesher.Mesh(sec, bufs, info)
		if sec.Coord == bad {
			// Out-of-range facing: a programming error in the mesher.
			bufs.Builder(render.PassSolid).Vertices(render.Facing(99))
		}
	}

	m := metrics.New(nil)
	pool := NewPool(Options{Workers: 1, Build: build, Metrics: m})
	results, err := pool.BuildAll(context.Background(), generate(5))
	require.NoError(t, err)
	defer releaseAll(results)

	require.Len(t, results, 5)
	for _, r := range results {
		if r.Coord == bad {
			assert.ErrorIs(t, r.Err, ErrBuildAborted)
			assert.Empty(t, r.Parts)
			continue
		}
		assert.NoError(t, r.Err)
		assert.NotEmpty(t, r.Parts)
	}
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SectionsFailed))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.SectionsBuilt))
}

// failingAllocator runs out of memory after a fixed number of allocations.
type failingAllocator struct {
	*native.Heap
	mu   sync.Mutex
	left int
}

func (a *failingAllocator) Alloc(size int) ([]byte, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.left == 0 {
		return nil, &native.AllocError{Op: "alloc", Size: size, Err: errors.New("limit reached")}
	}
	a.left--
	return a.Heap.Alloc(size)
}

func (a *failingAllocator) Grow(buf []byte, size int) ([]byte, error) {
	if size <= cap(buf) {
		return buf, nil
	}
	next, err := a.Alloc(size)
	if err != nil {
		return nil, err
	}
	next = append(next, buf...)
	a.Free(buf)
	return next, nil
}

func TestAllocationFailureIsReported(t *testing.T) {
	// Enough for the scratch buffers of one worker and nothing more.
	alloc := &failingAllocator{Heap: native.NewHeap(), left: render.PassCount * render.FacingCount}
	pool := NewPool(Options{Workers: 1, Allocator: alloc})

	results, err := pool.BuildAll(context.Background(), generate(1))
	require.NoError(t, err)
	require.Len(t, results, 1)

	assert.ErrorIs(t, results[0].Err, ErrBuildAborted)
	assert.ErrorIs(t, results[0].Err, native.ErrOutOfMemory)
	assert.Empty(t, results[0].Parts)
}

func TestRunStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	jobs := make(chan *section.Section)
	results := make(chan Result)

	errc := make(chan error, 1)
	go func() { errc <- NewPool(Options{Workers: 2}).Run(ctx, jobs, results) }()

	cancel()
	assert.ErrorIs(t, <-errc, context.Canceled)

	_, open := <-results
	assert.False(t, open, "results closed when Run returns")
}
