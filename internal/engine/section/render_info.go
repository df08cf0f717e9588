package section

import "github.com/Faultbox/midgard-mesh/internal/engine/render"

// RenderInfo collects facts about a section while it is meshed.
type RenderInfo struct {
	quads [render.PassCount]int
	faces [render.FacingCount]int
}

// Reset clears everything recorded so far.
func (ri *RenderInfo) Reset() {
	*ri = RenderInfo{}
}

// AddQuad records one quad emitted into pass towards f.
func (ri *RenderInfo) AddQuad(pass render.Pass, f render.Facing) {
	ri.quads[pass]++
	ri.faces[f]++
}

// QuadCount returns the quads recorded for pass.
func (ri *RenderInfo) QuadCount(pass render.Pass) int {
	return ri.quads[pass]
}

// FacingCount returns the quads recorded towards f across all passes.
func (ri *RenderInfo) FacingCount(f render.Facing) int {
	return ri.faces[f]
}

// TotalQuads returns the quads recorded across all passes.
func (ri *RenderInfo) TotalQuads() int {
	n := 0
	for _, q := range ri.quads {
		n += q
	}
	return n
}

// Passes returns the passes that received at least one quad, in pass order.
func (ri *RenderInfo) Passes() []render.Pass {
	var out []render.Pass
	for _, p := range render.Passes() {
		if ri.quads[p] > 0 {
			out = append(out, p)
		}
	}
	return out
}
