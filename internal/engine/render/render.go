// Package render defines the closed sets of render passes and quad facings
// shared by the meshing and draw stages.
package render

import (
	"fmt"

	"github.com/Faultbox/midgard-mesh/pkg/math"
)

// Pass selects a draw and blend configuration.
type Pass uint8

// Render passes, in draw order.
const (
	PassSolid Pass = iota
	PassCutout
	PassCutoutMipped
	PassTranslucent

	PassCount = 4
)

var passNames = [PassCount]string{"solid", "cutout", "cutout_mipped", "translucent"}

func (p Pass) String() string {
	if int(p) < PassCount {
		return passNames[p]
	}
	return fmt.Sprintf("pass(%d)", uint8(p))
}

// ParsePass resolves a render pass by name.
func ParsePass(name string) (Pass, error) {
	for i, n := range passNames {
		if n == name {
			return Pass(i), nil
		}
	}
	return 0, fmt.Errorf("unknown render pass %q", name)
}

// Passes returns every render pass in index order.
func Passes() [PassCount]Pass {
	var out [PassCount]Pass
	for i := range out {
		out[i] = Pass(i)
	}
	return out
}

// Facing is the direction a quad points. FacingUnassigned holds quads that
// are not axis aligned and can never be culled by direction.
type Facing uint8

// Facings, in bake order.
const (
	FacingDown Facing = iota
	FacingUp
	FacingNorth
	FacingSouth
	FacingWest
	FacingEast
	FacingUnassigned

	FacingCount = 7
)

// AxisFacings lists the six cube directions.
var AxisFacings = [6]Facing{FacingDown, FacingUp, FacingNorth, FacingSouth, FacingWest, FacingEast}

var facingNames = [FacingCount]string{"down", "up", "north", "south", "west", "east", "unassigned"}

// North is -Z, east is +X, up is +Y.
var facingNormals = [FacingCount]math.Vec3{
	{X: 0, Y: -1, Z: 0},
	{X: 0, Y: 1, Z: 0},
	{X: 0, Y: 0, Z: -1},
	{X: 0, Y: 0, Z: 1},
	{X: -1, Y: 0, Z: 0},
	{X: 1, Y: 0, Z: 0},
	{},
}

func (f Facing) String() string {
	if int(f) < FacingCount {
		return facingNames[f]
	}
	return fmt.Sprintf("facing(%d)", uint8(f))
}

// Normal returns the unit normal, or the zero vector for FacingUnassigned.
func (f Facing) Normal() math.Vec3 {
	return facingNormals[f]
}

// Opposite returns the facing on the other side of the same axis.
// FacingUnassigned is its own opposite.
func (f Facing) Opposite() Facing {
	if f == FacingUnassigned {
		return f
	}
	return f ^ 1
}

// FacingMask is a set of facings.
type FacingMask uint8

// FacingMaskAll contains every facing.
const FacingMaskAll FacingMask = 1<<FacingCount - 1

// Has reports whether f is in the mask.
func (m FacingMask) Has(f Facing) bool {
	return m&(1<<f) != 0
}

// With returns the mask with f added.
func (m FacingMask) With(f Facing) FacingMask {
	return m | 1<<f
}

// Offset returns the integer step towards the neighbour that f faces.
func (f Facing) Offset() (dx, dy, dz int) {
	n := facingNormals[f]
	return int(n.X), int(n.Y), int(n.Z)
}
