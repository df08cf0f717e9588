package section

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/midgard-mesh/internal/engine/render"
)

func TestSetGet(t *testing.T) {
	s := New(Coord{1, 2, 3})
	assert.True(t, s.IsEmpty())

	s.Set(0, 0, 0, Stone)
	s.Set(15, 15, 15, Glass)
	assert.Equal(t, Stone, s.Get(0, 0, 0))
	assert.Equal(t, Glass, s.Get(15, 15, 15))
	assert.Equal(t, 2, s.BlockCount())

	s.Set(0, 0, 0, Air)
	assert.Equal(t, 1, s.BlockCount())
	assert.False(t, s.IsEmpty())
}

func TestGetOutsideIsAir(t *testing.T) {
	s := New(Coord{})
	s.Set(0, 0, 0, Stone)
	assert.Equal(t, Air, s.Get(-1, 0, 0))
	assert.Equal(t, Air, s.Get(0, Size, 0))
}

func TestCoordOrigin(t *testing.T) {
	x, y, z := Coord{-1, 2, 3}.Origin()
	assert.Equal(t, []int{-16, 32, 48}, []int{x, y, z})
	assert.Equal(t, "[-1 2 3]", Coord{-1, 2, 3}.String())
}

func TestLookup(t *testing.T) {
	assert.Equal(t, render.PassTranslucent, Lookup(Water).RenderPass())
	assert.Equal(t, ShapeCross, Lookup(TallGrass).Shape)
	assert.False(t, Lookup(Leaves).Opaque)
	assert.Panics(t, func() { Lookup(BlockID(1000)) })
}

func TestGenerateDeterministic(t *testing.T) {
	cfg := DefaultGeneratorConfig(42)
	a := NewGenerator(cfg).Generate(Coord{3, 1, -2})
	b := NewGenerator(cfg).Generate(Coord{3, 1, -2})
	require.Equal(t, a.blocks, b.blocks)
}

func TestGenerateLayers(t *testing.T) {
	g := NewGenerator(DefaultGeneratorConfig(7))

	bottom := g.Generate(Coord{0, 0, 0})
	assert.Equal(t, Stone, bottom.Get(0, 0, 0), "bedrock layer should be stone")

	sky := g.Generate(Coord{0, 10, 0})
	assert.True(t, sky.IsEmpty(), "sections far above the surface should be air")
}

func TestRenderInfo(t *testing.T) {
	var ri RenderInfo
	ri.AddQuad(render.PassSolid, render.FacingUp)
	ri.AddQuad(render.PassSolid, render.FacingUp)
	ri.AddQuad(render.PassTranslucent, render.FacingNorth)

	assert.Equal(t, 2, ri.QuadCount(render.PassSolid))
	assert.Equal(t, 3, ri.TotalQuads())
	assert.Equal(t, 2, ri.FacingCount(render.FacingUp))
	assert.Equal(t, []render.Pass{render.PassSolid, render.PassTranslucent}, ri.Passes())

	ri.Reset()
	assert.Zero(t, ri.TotalQuads())
	assert.Empty(t, ri.Passes())
}

func TestArea(t *testing.T) {
	coords := Area(1, 2)
	require.Len(t, coords, 3*3*2)

	seen := make(map[Coord]bool)
	for _, c := range coords {
		assert.False(t, seen[c], "duplicate %s", c)
		seen[c] = true
		assert.LessOrEqual(t, max(c.X, -c.X, c.Z, -c.Z), int32(1))
		assert.GreaterOrEqual(t, c.Y, int32(0))
		assert.Less(t, c.Y, int32(2))
	}
	assert.Empty(t, Area(3, 0))

	secs := NewGenerator(DefaultGeneratorConfig(1)).GenerateArea(0, 1)
	require.Len(t, secs, 1)
	assert.Equal(t, Coord{}, secs[0].Coord)
}
