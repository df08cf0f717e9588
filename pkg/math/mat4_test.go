package math

import (
	"math"
	"testing"
)

func approx(a, b float32) bool {
	return math.Abs(float64(a-b)) < 1e-4
}

func TestMulIdentity(t *testing.T) {
	m := Translate(Vec3{1, 2, 3})
	result := m.Mul(Identity())

	for i := 0; i < 16; i++ {
		if result[i] != m[i] {
			t.Errorf("M * I should equal M, element %d: got %f, want %f", i, result[i], m[i])
		}
	}
}

func TestTranslatePoint(t *testing.T) {
	m := Translate(Vec3{10, 20, 30})
	p := m.TransformPoint(Vec3{1, 2, 3})

	if p != (Vec3{11, 22, 33}) {
		t.Errorf("TransformPoint: got %+v, want {11 22 33}", p)
	}
}

func TestLookAtMovesEyeToOrigin(t *testing.T) {
	eye := Vec3{8, 40, 60}
	view := LookAt(eye, Vec3{8, 8, 8}, Vec3{0, 1, 0})

	p := view.TransformPoint(eye)
	if !approx(p.X, 0) || !approx(p.Y, 0) || !approx(p.Z, 0) {
		t.Errorf("eye should map to origin, got %+v", p)
	}
}

func TestLookAtTargetInFront(t *testing.T) {
	view := LookAt(Vec3{0, 0, 10}, Vec3{}, Vec3{0, 1, 0})

	// Camera looks down -Z in view space
	p := view.TransformPoint(Vec3{})
	if !approx(p.Z, -10) {
		t.Errorf("target should be 10 units in front, got z=%f", p.Z)
	}
}

func TestPerspectiveDepthRange(t *testing.T) {
	proj := Perspective(math.Pi/3, 16.0/9.0, 0.1, 100)

	near := proj.TransformPoint(Vec3{0, 0, -0.1})
	far := proj.TransformPoint(Vec3{0, 0, -100})
	if !approx(near.Z, -1) {
		t.Errorf("near plane should map to -1, got %f", near.Z)
	}
	if !approx(far.Z, 1) {
		t.Errorf("far plane should map to 1, got %f", far.Z)
	}
}
