package section

import (
	"fmt"

	"github.com/Faultbox/midgard-mesh/internal/engine/render"
)

// BlockID indexes the block registry.
type BlockID uint16

// Registered blocks.
const (
	Air BlockID = iota
	Stone
	Dirt
	Grass
	Sand
	Log
	Leaves
	Water
	Glass
	TallGrass
)

// Shape selects how the mesher turns a block into quads.
type Shape uint8

const (
	// ShapeNone emits nothing.
	ShapeNone Shape = iota
	// ShapeCube emits one quad per exposed face.
	ShapeCube
	// ShapeCross emits two diagonal quads.
	ShapeCross
)

// Block describes how a block renders.
type Block struct {
	ID     BlockID
	Name   string
	Pass   render.Pass
	Shape  Shape
	Color  [4]uint8
	Opaque bool // hides the faces of neighbours
}

// RenderPass implements meshbuf.Material.
func (b *Block) RenderPass() render.Pass {
	return b.Pass
}

var registry = []Block{
	Air:       {ID: Air, Name: "air", Shape: ShapeNone},
	Stone:     {ID: Stone, Name: "stone", Pass: render.PassSolid, Shape: ShapeCube, Color: [4]uint8{125, 125, 125, 255}, Opaque: true},
	Dirt:      {ID: Dirt, Name: "dirt", Pass: render.PassSolid, Shape: ShapeCube, Color: [4]uint8{134, 96, 67, 255}, Opaque: true},
	Grass:     {ID: Grass, Name: "grass", Pass: render.PassSolid, Shape: ShapeCube, Color: [4]uint8{95, 159, 53, 255}, Opaque: true},
	Sand:      {ID: Sand, Name: "sand", Pass: render.PassSolid, Shape: ShapeCube, Color: [4]uint8{219, 207, 163, 255}, Opaque: true},
	Log:       {ID: Log, Name: "log", Pass: render.PassSolid, Shape: ShapeCube, Color: [4]uint8{102, 81, 51, 255}, Opaque: true},
	Leaves:    {ID: Leaves, Name: "leaves", Pass: render.PassCutoutMipped, Shape: ShapeCube, Color: [4]uint8{60, 120, 40, 255}},
	Water:     {ID: Water, Name: "water", Pass: render.PassTranslucent, Shape: ShapeCube, Color: [4]uint8{47, 67, 244, 160}},
	Glass:     {ID: Glass, Name: "glass", Pass: render.PassTranslucent, Shape: ShapeCube, Color: [4]uint8{200, 220, 255, 90}},
	TallGrass: {ID: TallGrass, Name: "tall_grass", Pass: render.PassCutout, Shape: ShapeCross, Color: [4]uint8{110, 170, 60, 255}},
}

// Lookup returns the registered block for id.
func Lookup(id BlockID) *Block {
	if int(id) >= len(registry) {
		panic(fmt.Sprintf("section: unknown block id %d", id))
	}
	return &registry[id]
}
