// Package camera provides the orbit camera used to inspect meshed sections.
package camera

import (
	gomath "math"

	"github.com/Faultbox/midgard-mesh/pkg/math"
)

// Orbit circles a center point at a fixed distance.
type Orbit struct {
	Center math.Vec3

	Distance float32
	Pitch    float32 // radians above the horizon
	Yaw      float32 // radians around +Y

	MinDistance float32
	MaxDistance float32
	MinPitch    float32
	MaxPitch    float32

	DragSensitivity float32
	ZoomSensitivity float32
}

// NewOrbit creates an orbit camera sized for a handful of sections.
func NewOrbit() *Orbit {
	return &Orbit{
		Distance:        96,
		Pitch:           0.6,
		MinDistance:     8,
		MaxDistance:     2048,
		MinPitch:        -1.5,
		MaxPitch:        1.5,
		DragSensitivity: 0.005,
		ZoomSensitivity: 0.1,
	}
}

// Eye returns the camera position in world space.
func (c *Orbit) Eye() math.Vec3 {
	cp := gomath.Cos(float64(c.Pitch))
	off := math.Vec3{
		X: c.Distance * float32(cp*gomath.Sin(float64(c.Yaw))),
		Y: c.Distance * float32(gomath.Sin(float64(c.Pitch))),
		Z: c.Distance * float32(cp*gomath.Cos(float64(c.Yaw))),
	}
	return c.Center.Add(off)
}

// View returns the view matrix.
func (c *Orbit) View() math.Mat4 {
	return math.LookAt(c.Eye(), c.Center, math.Vec3{Y: 1})
}

// Drag rotates the camera by a mouse delta in pixels.
func (c *Orbit) Drag(dx, dy float32) {
	c.Yaw -= dx * c.DragSensitivity
	c.Pitch = clamp(c.Pitch+dy*c.DragSensitivity, c.MinPitch, c.MaxPitch)
}

// Zoom moves the camera towards the center for positive deltas.
func (c *Orbit) Zoom(delta float32) {
	c.Distance = clamp(c.Distance-delta*c.Distance*c.ZoomSensitivity, c.MinDistance, c.MaxDistance)
}

// Pan moves the center on the XZ plane relative to the current yaw.
// Speed scales with distance.
func (c *Orbit) Pan(forward, right, up float32) {
	speed := c.Distance * 0.01
	sin := float32(gomath.Sin(float64(c.Yaw)))
	cos := float32(gomath.Cos(float64(c.Yaw)))
	c.Center.X += (-sin*forward + cos*right) * speed
	c.Center.Z += (-cos*forward - sin*right) * speed
	c.Center.Y += up * speed
}

// Fit centers the camera on a box and backs off far enough to see it.
func (c *Orbit) Fit(min, max math.Vec3) {
	c.Center = min.Add(max).Scale(0.5)
	c.Distance = clamp(max.Sub(min).Length(), c.MinDistance, c.MaxDistance)
	c.Pitch = 0.6
	c.Yaw = 0.8
}

func clamp(v, lo, hi float32) float32 {
	return min(max(v, lo), hi)
}
