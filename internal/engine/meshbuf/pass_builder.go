package meshbuf

import (
	"fmt"

	"github.com/Faultbox/midgard-mesh/internal/engine/native"
	"github.com/Faultbox/midgard-mesh/internal/engine/render"
	"github.com/Faultbox/midgard-mesh/internal/engine/section"
)

// PassBuilder routes vertices for one render pass to its facing buffers.
type PassBuilder struct {
	pass    render.Pass
	buffers [render.FacingCount]*FacingBuffer

	// Bound by Begin, valid until the next Begin or Destroy.
	info      *section.RenderInfo
	sectionID section.Coord
}

func newPassBuilder(pass render.Pass, alloc native.Allocator, stride, initial int) *PassBuilder {
	pb := &PassBuilder{pass: pass}
	for i := range pb.buffers {
		pb.buffers[i] = newFacingBuffer(alloc, stride, initial)
	}
	return pb
}

// Begin binds the section being built and empties every facing buffer.
func (pb *PassBuilder) Begin(info *section.RenderInfo, id section.Coord) {
	pb.info = info
	pb.sectionID = id
	for _, b := range pb.buffers {
		b.Reset()
	}
}

// Vertices returns the write target for quads pointing towards f.
func (pb *PassBuilder) Vertices(f render.Facing) *FacingBuffer {
	if int(f) >= render.FacingCount {
		panic(fmt.Sprintf("meshbuf: facing index %d out of range", f))
	}
	return pb.buffers[f]
}

// Write appends one vertex record to the buffer for f.
func (pb *PassBuilder) Write(f render.Facing, vertex []byte) {
	pb.Vertices(f).Append(vertex)
}

// Pass returns the render pass this builder collects.
func (pb *PassBuilder) Pass() render.Pass { return pb.pass }

// Info returns the metadata collector bound by Begin.
func (pb *PassBuilder) Info() *section.RenderInfo { return pb.info }

// SectionID returns the section bound by Begin.
func (pb *PassBuilder) SectionID() section.Coord { return pb.sectionID }

// VertexCount returns the vertices written across all facings.
func (pb *PassBuilder) VertexCount() int {
	n := 0
	for _, b := range pb.buffers {
		n += b.Count()
	}
	return n
}

// Destroy releases every facing buffer.
func (pb *PassBuilder) Destroy() {
	for _, b := range pb.buffers {
		b.Destroy()
	}
	pb.info = nil
}
