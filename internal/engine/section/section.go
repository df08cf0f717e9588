// Package section holds the voxel data that is meshed one section at a time.
package section

import "fmt"

// Size is the edge length of a section in blocks.
const Size = 16

// Volume is the number of blocks in a section.
const Volume = Size * Size * Size

// Coord identifies a section by its position in section units.
type Coord struct {
	X, Y, Z int32
}

// Origin returns the world position of the section's minimum corner.
func (c Coord) Origin() (x, y, z int) {
	return int(c.X) * Size, int(c.Y) * Size, int(c.Z) * Size
}

func (c Coord) String() string {
	return fmt.Sprintf("[%d %d %d]", c.X, c.Y, c.Z)
}

// Section is a Size³ block volume.
type Section struct {
	Coord  Coord
	blocks [Volume]BlockID
	solid  int
}

// New returns an all-air section.
func New(c Coord) *Section {
	return &Section{Coord: c}
}

func index(x, y, z int) int {
	return (y*Size+z)*Size + x
}

// InBounds reports whether the local position lies inside the section.
func InBounds(x, y, z int) bool {
	return x >= 0 && x < Size && y >= 0 && y < Size && z >= 0 && z < Size
}

// Get returns the block at a local position. Positions outside the section
// read as air.
func (s *Section) Get(x, y, z int) BlockID {
	if !InBounds(x, y, z) {
		return Air
	}
	return s.blocks[index(x, y, z)]
}

// Set stores a block at a local position.
func (s *Section) Set(x, y, z int, id BlockID) {
	i := index(x, y, z)
	if s.blocks[i] != Air {
		s.solid--
	}
	if id != Air {
		s.solid++
	}
	s.blocks[i] = id
}

// IsEmpty reports whether the section is all air.
func (s *Section) IsEmpty() bool {
	return s.solid == 0
}

// BlockCount returns the number of non-air blocks.
func (s *Section) BlockCount() int {
	return s.solid
}

// Area returns the coordinates of a square column of sections centered on
// the origin: x and z in [-radius, radius], y in [0, height).
func Area(radius, height int) []Coord {
	side := 2*radius + 1
	out := make([]Coord, 0, side*side*height)
	for y := 0; y < height; y++ {
		for z := -radius; z <= radius; z++ {
			for x := -radius; x <= radius; x++ {
				out = append(out, Coord{X: int32(x), Y: int32(y), Z: int32(z)})
			}
		}
	}
	return out
}
