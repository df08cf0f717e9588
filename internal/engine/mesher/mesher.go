// Package mesher turns section block data into quads and feeds them to the
// section build buffers.
package mesher

import (
	"github.com/Faultbox/midgard-mesh/internal/engine/meshbuf"
	"github.com/Faultbox/midgard-mesh/internal/engine/render"
	"github.com/Faultbox/midgard-mesh/internal/engine/section"
	"github.com/Faultbox/midgard-mesh/internal/engine/vertex"
)

// faceCorners holds the four corners of each cube face, counter-clockwise
// when viewed from outside, as offsets from the block's minimum corner.
var faceCorners = [6][4][3]float32{
	render.FacingDown:  {{0, 0, 0}, {1, 0, 0}, {1, 0, 1}, {0, 0, 1}},
	render.FacingUp:    {{0, 1, 1}, {1, 1, 1}, {1, 1, 0}, {0, 1, 0}},
	render.FacingNorth: {{1, 0, 0}, {0, 0, 0}, {0, 1, 0}, {1, 1, 0}},
	render.FacingSouth: {{0, 0, 1}, {1, 0, 1}, {1, 1, 1}, {0, 1, 1}},
	render.FacingWest:  {{0, 0, 0}, {0, 0, 1}, {0, 1, 1}, {0, 1, 0}},
	render.FacingEast:  {{1, 0, 1}, {1, 0, 0}, {1, 1, 0}, {1, 1, 1}},
}

// crossCorners holds the two diagonal planes of a cross-shaped block.
var crossCorners = [2][4][3]float32{
	{{0, 0, 0}, {1, 0, 1}, {1, 1, 1}, {0, 1, 0}},
	{{1, 0, 0}, {0, 0, 1}, {0, 1, 1}, {1, 1, 0}},
}

var quadUVs = [4][2]float32{{0, 1}, {1, 1}, {1, 0}, {0, 0}}

// Simple directional shading so faces are distinguishable without lighting.
var faceShade = [6]float32{
	render.FacingDown:  0.5,
	render.FacingUp:    1.0,
	render.FacingNorth: 0.8,
	render.FacingSouth: 0.8,
	render.FacingWest:  0.6,
	render.FacingEast:  0.6,
}

// Mesh emits every visible quad of sec into bufs, which must use the
// vertex.Compact format. It calls bufs.Init, so on return each pass is ready
// to Bake. info is reset and receives per-pass quad counts.
func Mesh(sec *section.Section, bufs *meshbuf.BuildBuffers, info *section.RenderInfo) {
	if bufs.Stride() != vertex.Stride {
		panic("mesher: build buffers do not use the compact vertex format")
	}
	info.Reset()
	bufs.Init(info, sec.Coord)
	if sec.IsEmpty() {
		return
	}

	for y := 0; y < section.Size; y++ {
		for z := 0; z < section.Size; z++ {
			for x := 0; x < section.Size; x++ {
				id := sec.Get(x, y, z)
				if id == section.Air {
					continue
				}
				block := section.Lookup(id)
				switch block.Shape {
				case section.ShapeCube:
					meshCube(sec, bufs.Get(block), block, x, y, z)
				case section.ShapeCross:
					meshCross(bufs.Get(block), block, x, y, z)
				}
			}
		}
	}
}

func meshCube(sec *section.Section, pb *meshbuf.PassBuilder, block *section.Block, x, y, z int) {
	for _, f := range render.AxisFacings {
		dx, dy, dz := f.Offset()
		if !faceVisible(block, sec.Get(x+dx, y+dy, z+dz)) {
			continue
		}
		color := shade(block.Color, faceShade[f])
		emitQuad(pb, f, &faceCorners[f], x, y, z, color)
	}
}

func meshCross(pb *meshbuf.PassBuilder, block *section.Block, x, y, z int) {
	for i := range crossCorners {
		emitQuad(pb, render.FacingUnassigned, &crossCorners[i], x, y, z, block.Color)
	}
}

// faceVisible reports whether a face of block is exposed by its neighbour.
func faceVisible(block *section.Block, neighbour section.BlockID) bool {
	if neighbour == section.Air {
		return true
	}
	if neighbour == block.ID {
		return false
	}
	return !section.Lookup(neighbour).Opaque
}

func emitQuad(pb *meshbuf.PassBuilder, f render.Facing, corners *[4][3]float32, x, y, z int, color [4]uint8) {
	buf := pb.Vertices(f)
	for i, c := range corners {
		vertex.Encode(buf.Next(), vertex.Vertex{
			Position: [3]float32{float32(x) + c[0], float32(y) + c[1], float32(z) + c[2]},
			Color:    color,
			TexCoord: quadUVs[i],
		})
	}
	pb.Info().AddQuad(pb.Pass(), f)
}

func shade(c [4]uint8, s float32) [4]uint8 {
	return [4]uint8{
		uint8(float32(c[0]) * s),
		uint8(float32(c[1]) * s),
		uint8(float32(c[2]) * s),
		c[3],
	}
}
