// Package upload moves baked section meshes to the GPU and draws them with
// direction-based facing culling.
package upload

import (
	"github.com/Faultbox/midgard-mesh/internal/engine/meshbuf"
	"github.com/Faultbox/midgard-mesh/internal/engine/render"
	"github.com/Faultbox/midgard-mesh/pkg/math"
)

// Bounds is an axis-aligned box in world space.
type Bounds struct {
	Min, Max math.Vec3
}

// VisibleFacings returns the facings whose quads can face a camera at eye.
// A facing is culled when the camera is entirely behind the box along that
// facing's normal. Unassigned quads are always drawn.
func VisibleFacings(b Bounds, eye math.Vec3) render.FacingMask {
	m := render.FacingMask(0).With(render.FacingUnassigned)
	if eye.Y <= b.Max.Y {
		m = m.With(render.FacingDown)
	}
	if eye.Y >= b.Min.Y {
		m = m.With(render.FacingUp)
	}
	if eye.Z <= b.Max.Z {
		m = m.With(render.FacingNorth)
	}
	if eye.Z >= b.Min.Z {
		m = m.With(render.FacingSouth)
	}
	if eye.X <= b.Max.X {
		m = m.With(render.FacingWest)
	}
	if eye.X >= b.Min.X {
		m = m.With(render.FacingEast)
	}
	return m
}

// DrawCommand draws Count vertices starting at vertex First.
type DrawCommand struct {
	First uint32
	Count uint32
}

// DrawCommands returns the draws needed for the facings in mask. Ranges that
// are adjacent in the buffer are merged into one command.
func DrawCommands(ranges *[render.FacingCount]meshbuf.VertexRange, mask render.FacingMask) []DrawCommand {
	var cmds []DrawCommand
	for f := render.Facing(0); f < render.Facing(render.FacingCount); f++ {
		r := ranges[f]
		if r.Count == 0 || !mask.Has(f) {
			continue
		}
		if n := len(cmds); n > 0 && cmds[n-1].First+cmds[n-1].Count == r.Start {
			cmds[n-1].Count += r.Count
			continue
		}
		cmds = append(cmds, DrawCommand{First: r.Start, Count: r.Count})
	}
	return cmds
}
