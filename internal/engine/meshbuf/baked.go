package meshbuf

import (
	"github.com/Faultbox/midgard-mesh/internal/engine/native"
	"github.com/Faultbox/midgard-mesh/internal/engine/render"
)

// VertexRange locates one facing's vertices inside a baked buffer.
type VertexRange struct {
	Start uint32 // first vertex
	Count uint32 // number of vertices
}

// End returns the index one past the last vertex.
func (r VertexRange) End() uint32 {
	return r.Start + r.Count
}

// BakedMeshParts is the merged output of one pass for one section.
//
// Buffer holds the vertices of every non-empty facing back to back in facing
// order, with no header or padding. The caller owns Buffer and must Release
// it once uploaded.
type BakedMeshParts struct {
	Pass   render.Pass
	Buffer []byte
	Ranges [render.FacingCount]VertexRange

	alloc native.Allocator
}

// Range returns the vertices contributed by f. ok is false when f produced
// nothing.
func (p *BakedMeshParts) Range(f render.Facing) (r VertexRange, ok bool) {
	r = p.Ranges[f]
	return r, r.Count > 0
}

// Facings returns the set of facings that produced vertices.
func (p *BakedMeshParts) Facings() render.FacingMask {
	var m render.FacingMask
	for f := render.Facing(0); f < render.Facing(render.FacingCount); f++ {
		if p.Ranges[f].Count > 0 {
			m = m.With(f)
		}
	}
	return m
}

// VertexCount returns the total number of vertices in Buffer.
func (p *BakedMeshParts) VertexCount() int {
	n := 0
	for _, r := range p.Ranges {
		n += int(r.Count)
	}
	return n
}

// Release returns Buffer to the allocator that produced it. Calling it again
// is a no-op.
func (p *BakedMeshParts) Release() {
	if p.Buffer == nil {
		return
	}
	if p.alloc != nil {
		p.alloc.Free(p.Buffer)
	}
	p.Buffer = nil
}
