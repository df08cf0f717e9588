package meshbuf

import (
	"fmt"

	"github.com/Faultbox/midgard-mesh/internal/engine/native"
	"github.com/Faultbox/midgard-mesh/internal/engine/render"
	"github.com/Faultbox/midgard-mesh/internal/engine/section"
)

type state uint8

const (
	stateIdle state = iota
	stateInitialized
	stateDestroyed
)

func (s state) String() string {
	switch s {
	case stateIdle:
		return "idle"
	case stateInitialized:
		return "initialized"
	default:
		return "destroyed"
	}
}

// BuildBuffers owns the scratch buffers of every render pass for one worker.
//
// Create one per worker at startup, call Init before meshing each section,
// Bake each pass afterwards, and Destroy when the worker exits.
type BuildBuffers struct {
	builders [render.PassCount]*PassBuilder
	alloc    native.Allocator
	stride   int
	state    state
}

// NewBuildBuffers allocates a pass builder for every render pass, each facing
// buffer pre-sized to format.DefaultBufferSize().
func NewBuildBuffers(format VertexFormat, alloc native.Allocator) *BuildBuffers {
	bb := &BuildBuffers{alloc: alloc, stride: format.Stride()}
	for _, pass := range render.Passes() {
		bb.builders[pass] = newPassBuilder(pass, alloc, format.Stride(), format.DefaultBufferSize())
	}
	return bb
}

// Init starts a new section. Every facing buffer of every pass is emptied;
// capacity is kept.
func (bb *BuildBuffers) Init(info *section.RenderInfo, id section.Coord) {
	bb.check("Init", stateIdle, stateInitialized)
	for _, pb := range bb.builders {
		pb.Begin(info, id)
	}
	bb.state = stateInitialized
}

// Get returns the builder for the material's render pass.
func (bb *BuildBuffers) Get(m Material) *PassBuilder {
	return bb.Builder(m.RenderPass())
}

// Builder returns the builder for pass.
func (bb *BuildBuffers) Builder(pass render.Pass) *PassBuilder {
	return bb.builder("Get", pass)
}

func (bb *BuildBuffers) builder(op string, pass render.Pass) *PassBuilder {
	bb.check(op, stateInitialized)
	if int(pass) >= render.PassCount {
		panic(fmt.Sprintf("meshbuf: unknown render pass %d", pass))
	}
	return bb.builders[pass]
}

// Bake merges the facing buffers of pass into one newly allocated buffer.
// ok is false when the pass received no vertices; there is nothing to upload.
//
// Bake does not modify the scratch buffers, so it can be called again for the
// same pass; each call returns an independently owned buffer.
func (bb *BuildBuffers) Bake(pass render.Pass) (parts BakedMeshParts, ok bool) {
	pb := bb.builder("Bake", pass)

	size := 0
	var vertexCount uint32
	for f, b := range pb.buffers {
		if b.IsEmpty() {
			continue
		}
		count := uint32(b.Count())
		parts.Ranges[f] = VertexRange{Start: vertexCount, Count: count}
		vertexCount += count
		size += b.Len()
	}
	if size == 0 {
		return BakedMeshParts{}, false
	}

	merged, err := bb.alloc.Alloc(size)
	if err != nil {
		panic(err)
	}
	for _, b := range pb.buffers {
		merged = append(merged, b.Bytes()...)
	}

	parts.Pass = pass
	parts.Buffer = merged
	parts.alloc = bb.alloc
	return parts, true
}

// Destroy releases every buffer. The BuildBuffers must not be used again.
func (bb *BuildBuffers) Destroy() {
	bb.check("Destroy", stateIdle, stateInitialized)
	for _, pb := range bb.builders {
		pb.Destroy()
	}
	bb.state = stateDestroyed
}

// Stride returns the vertex record size in bytes.
func (bb *BuildBuffers) Stride() int { return bb.stride }

// Stats summarizes buffer usage per pass.
type Stats struct {
	Passes [render.PassCount]PassStats
}

// PassStats summarizes the facing buffers of one pass.
type PassStats struct {
	Vertices int
	Bytes    int
	Capacity int
}

// Capacity returns the total capacity of all facing buffers in bytes.
func (s Stats) Capacity() int {
	n := 0
	for _, p := range s.Passes {
		n += p.Capacity
	}
	return n
}

// Stats reports current usage of the scratch buffers.
func (bb *BuildBuffers) Stats() Stats {
	var s Stats
	for i, pb := range bb.builders {
		for _, b := range pb.buffers {
			s.Passes[i].Vertices += b.Count()
			s.Passes[i].Bytes += b.Len()
			s.Passes[i].Capacity += b.Cap()
		}
	}
	return s
}

func (bb *BuildBuffers) check(op string, allowed ...state) {
	for _, s := range allowed {
		if bb.state == s {
			return
		}
	}
	panic(fmt.Sprintf("meshbuf: %s called while %s", op, bb.state))
}
