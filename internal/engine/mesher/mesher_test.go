package mesher

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/midgard-mesh/internal/engine/meshbuf"
	"github.com/Faultbox/midgard-mesh/internal/engine/native"
	"github.com/Faultbox/midgard-mesh/internal/engine/render"
	"github.com/Faultbox/midgard-mesh/internal/engine/section"
	"github.com/Faultbox/midgard-mesh/internal/engine/vertex"
)

func newBuffers(t *testing.T) *meshbuf.BuildBuffers {
	t.Helper()
	bb := meshbuf.NewBuildBuffers(vertex.Compact{}, native.NewHeap())
	t.Cleanup(bb.Destroy)
	return bb
}

func bake(t *testing.T, bb *meshbuf.BuildBuffers, pass render.Pass) meshbuf.BakedMeshParts {
	t.Helper()
	parts, ok := bb.Bake(pass)
	require.True(t, ok, "pass %s should have geometry", pass)
	t.Cleanup(parts.Release)
	return parts
}

func TestSingleCube(t *testing.T) {
	sec := section.New(section.Coord{})
	sec.Set(4, 5, 6, section.Stone)

	bb := newBuffers(t)
	var info section.RenderInfo
	Mesh(sec, bb, &info)

	assert.Equal(t, 6, info.QuadCount(render.PassSolid))
	assert.Equal(t, []render.Pass{render.PassSolid}, info.Passes())

	parts := bake(t, bb, render.PassSolid)
	assert.Equal(t, 24, parts.VertexCount())
	for i, f := range render.AxisFacings {
		r, ok := parts.Range(f)
		require.True(t, ok)
		assert.Equal(t, meshbuf.VertexRange{Start: uint32(i * 4), Count: 4}, r)
	}
	_, ok := parts.Range(render.FacingUnassigned)
	assert.False(t, ok)

	// The up face sits on top of the block.
	up, _ := parts.Range(render.FacingUp)
	for v := uint32(0); v < up.Count; v++ {
		off := int(up.Start+v) * vertex.Stride
		assert.Equal(t, float32(6), vertex.Decode(parts.Buffer[off:]).Position[1])
	}

	for _, pass := range []render.Pass{render.PassCutout, render.PassCutoutMipped, render.PassTranslucent} {
		_, ok := bb.Bake(pass)
		assert.False(t, ok, "pass %s should be empty", pass)
	}
}

func TestSharedFaceCulled(t *testing.T) {
	sec := section.New(section.Coord{})
	sec.Set(0, 0, 0, section.Stone)
	sec.Set(1, 0, 0, section.Dirt)

	bb := newBuffers(t)
	var info section.RenderInfo
	Mesh(sec, bb, &info)

	assert.Equal(t, 10, info.QuadCount(render.PassSolid))
	assert.Equal(t, 1, info.FacingCount(render.FacingEast))
	assert.Equal(t, 1, info.FacingCount(render.FacingWest))
	assert.Equal(t, 2, info.FacingCount(render.FacingUp))
}

func TestTransparentNeighbours(t *testing.T) {
	sec := section.New(section.Coord{})
	sec.Set(0, 0, 0, section.Stone)
	sec.Set(0, 1, 0, section.Glass)
	sec.Set(0, 2, 0, section.Glass)

	bb := newBuffers(t)
	var info section.RenderInfo
	Mesh(sec, bb, &info)

	// Stone shows its top through glass; glass hides the face against stone
	// and the face between the two glass blocks.
	assert.Equal(t, 6, info.QuadCount(render.PassSolid))
	assert.Equal(t, 9, info.QuadCount(render.PassTranslucent))

	parts := bake(t, bb, render.PassTranslucent)
	_, ok := parts.Range(render.FacingDown)
	assert.False(t, ok)
	up, ok := parts.Range(render.FacingUp)
	require.True(t, ok)
	assert.Equal(t, uint32(4), up.Count)
}

func TestCrossGoesToUnassigned(t *testing.T) {
	sec := section.New(section.Coord{})
	sec.Set(3, 3, 3, section.TallGrass)

	bb := newBuffers(t)
	var info section.RenderInfo
	Mesh(sec, bb, &info)

	parts := bake(t, bb, render.PassCutout)
	assert.Equal(t, render.FacingMask(0).With(render.FacingUnassigned), parts.Facings())
	assert.Equal(t, 8, parts.VertexCount())
}

func TestEmptySection(t *testing.T) {
	bb := newBuffers(t)
	var info section.RenderInfo
	Mesh(section.New(section.Coord{}), bb, &info)

	for _, pass := range render.Passes() {
		_, ok := bb.Bake(pass)
		assert.False(t, ok)
	}
	assert.Zero(t, info.TotalQuads())
}

func TestRemeshReusesBuffers(t *testing.T) {
	gen := section.NewGenerator(section.DefaultGeneratorConfig(99))
	bb := newBuffers(t)
	var info section.RenderInfo

	first := gen.Generate(section.Coord{X: 0, Y: 1, Z: 0})
	Mesh(first, bb, &info)
	a := bake(t, bb, render.PassSolid)

	Mesh(gen.Generate(section.Coord{X: 5, Y: 1, Z: 5}), bb, &info)

	// Meshing the first section again gives the same bytes.
	Mesh(first, bb, &info)
	b := bake(t, bb, render.PassSolid)
	assert.Equal(t, a.Buffer, b.Buffer)
	assert.Equal(t, a.Ranges, b.Ranges)
}

func TestWrongFormatPanics(t *testing.T) {
	bb := meshbuf.NewBuildBuffers(wideFormat{}, native.NewHeap())
	defer bb.Destroy()
	assert.Panics(t, func() {
		Mesh(section.New(section.Coord{}), bb, &section.RenderInfo{})
	})
}

type wideFormat struct{}

func (wideFormat) Stride() int            { return 32 }
func (wideFormat) DefaultBufferSize() int { return 1024 }
