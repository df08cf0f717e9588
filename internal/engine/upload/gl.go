package upload

import (
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/Faultbox/midgard-mesh/internal/engine/meshbuf"
	"github.com/Faultbox/midgard-mesh/internal/engine/render"
	"github.com/Faultbox/midgard-mesh/internal/engine/section"
	"github.com/Faultbox/midgard-mesh/internal/engine/vertex"
	"github.com/Faultbox/midgard-mesh/pkg/math"
)

// Uploader owns GL state shared by every section mesh: the quad index
// buffer. All methods must run on the GL thread.
type Uploader struct {
	ebo   uint32
	quads int // quads covered by the index buffer
}

// NewUploader creates the shared index buffer.
func NewUploader() *Uploader {
	u := &Uploader{}
	gl.GenBuffers(1, &u.ebo)
	u.ensureQuads(section.Volume)
	return u
}

// ensureQuads grows the index buffer to cover n quads. VAOs keep working
// because the buffer name does not change.
func (u *Uploader) ensureQuads(n int) {
	if n <= u.quads {
		return
	}
	n = max(n, u.quads*2)
	indices := make([]uint32, 0, n*6)
	for q := uint32(0); q < uint32(n); q++ {
		base := q * vertex.QuadVertices
		indices = append(indices, base, base+1, base+2, base+2, base+3, base)
	}
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, u.ebo)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(indices)*4, gl.Ptr(indices), gl.STATIC_DRAW)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, 0)
	u.quads = n
}

// SectionMesh is the GPU copy of one section's baked passes.
type SectionMesh struct {
	Coord  section.Coord
	Bounds Bounds
	passes [render.PassCount]passMesh
}

type passMesh struct {
	vao    uint32
	vbo    uint32
	ranges [render.FacingCount]meshbuf.VertexRange
}

// Upload copies baked parts to the GPU and releases their CPU buffers.
func (u *Uploader) Upload(coord section.Coord, parts []meshbuf.BakedMeshParts) *SectionMesh {
	ox, oy, oz := coord.Origin()
	origin := math.Vec3{X: float32(ox), Y: float32(oy), Z: float32(oz)}
	m := &SectionMesh{
		Coord: coord,
		Bounds: Bounds{
			Min: origin,
			Max: origin.Add(math.Vec3{X: section.Size, Y: section.Size, Z: section.Size}),
		},
	}

	for i := range parts {
		p := &parts[i]
		u.ensureQuads(p.VertexCount() / vertex.QuadVertices)

		pm := &m.passes[p.Pass]
		pm.ranges = p.Ranges

		gl.GenVertexArrays(1, &pm.vao)
		gl.BindVertexArray(pm.vao)

		gl.GenBuffers(1, &pm.vbo)
		gl.BindBuffer(gl.ARRAY_BUFFER, pm.vbo)
		gl.BufferData(gl.ARRAY_BUFFER, len(p.Buffer), unsafe.Pointer(&p.Buffer[0]), gl.STATIC_DRAW)

		// Position (location 0)
		gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, vertex.Stride, 0)
		gl.EnableVertexAttribArray(0)

		// Color (location 1)
		gl.VertexAttribPointerWithOffset(1, 4, gl.UNSIGNED_BYTE, true, vertex.Stride, 12)
		gl.EnableVertexAttribArray(1)

		// TexCoord (location 2)
		gl.VertexAttribPointerWithOffset(2, 2, gl.UNSIGNED_SHORT, true, vertex.Stride, 16)
		gl.EnableVertexAttribArray(2)

		gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, u.ebo)
		gl.BindVertexArray(0)

		p.Release()
	}
	return m
}

// Origin returns the world position of the section's minimum corner.
func (m *SectionMesh) Origin() math.Vec3 {
	return m.Bounds.Min
}

// HasPass reports whether the section has geometry in pass.
func (m *SectionMesh) HasPass(pass render.Pass) bool {
	return m.passes[pass].vao != 0
}

// Draw issues the draws for pass, skipping facings the camera at eye cannot
// see. It returns the number of draw calls issued.
func (m *SectionMesh) Draw(pass render.Pass, eye math.Vec3) int {
	return m.DrawFacings(pass, VisibleFacings(m.Bounds, eye))
}

// DrawFacings issues the draws for the facings in mask.
func (m *SectionMesh) DrawFacings(pass render.Pass, mask render.FacingMask) int {
	pm := &m.passes[pass]
	if pm.vao == 0 {
		return 0
	}
	cmds := DrawCommands(&pm.ranges, mask)
	if len(cmds) == 0 {
		return 0
	}

	gl.BindVertexArray(pm.vao)
	for _, c := range cmds {
		indices := int32(c.Count / vertex.QuadVertices * 6)
		gl.DrawElementsBaseVertex(gl.TRIANGLES, indices, gl.UNSIGNED_INT, nil, int32(c.First))
	}
	gl.BindVertexArray(0)
	return len(cmds)
}

// Destroy deletes the GL objects of every pass.
func (m *SectionMesh) Destroy() {
	for i := range m.passes {
		pm := &m.passes[i]
		if pm.vbo != 0 {
			gl.DeleteBuffers(1, &pm.vbo)
		}
		if pm.vao != 0 {
			gl.DeleteVertexArrays(1, &pm.vao)
		}
		*pm = passMesh{}
	}
}

// Destroy deletes the shared index buffer.
func (u *Uploader) Destroy() {
	if u.ebo != 0 {
		gl.DeleteBuffers(1, &u.ebo)
		u.ebo = 0
	}
}
