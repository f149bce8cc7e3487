package core

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

func vecNearlyEqual(a, b r3.Vec, eps float64) bool {
	return math.Abs(a.X-b.X) < eps && math.Abs(a.Y-b.Y) < eps && math.Abs(a.Z-b.Z) < eps
}

func TestRotationIdentity(t *testing.T) {
	m := NewRotationMatrix(0, 0)
	v := r3.Vec{X: 1.5, Y: -2, Z: 0.25}
	if got := m.Apply(v); !vecNearlyEqual(got, v, 1e-12) {
		t.Errorf("Expected %v, got %v", v, got)
	}
}

func TestRotationInclination(t *testing.T) {
	// Rx(pi/2) sends y to z and z to -y.
	m := NewRotationMatrix(math.Pi/2, 0)
	got := m.Apply(r3.Vec{Y: 1})
	expected := r3.Vec{Z: 1}
	if !vecNearlyEqual(got, expected, 1e-12) {
		t.Errorf("Expected %v, got %v", expected, got)
	}
}

func TestRotationPositionAngle(t *testing.T) {
	// Rz(pi/2) with no inclination sends x to -y.
	m := NewRotationMatrix(0, math.Pi/2)
	got := m.Apply(r3.Vec{X: 1})
	expected := r3.Vec{Y: -1}
	if !vecNearlyEqual(got, expected, 1e-12) {
		t.Errorf("Expected %v, got %v", expected, got)
	}
}

func TestRotationTransposeInverts(t *testing.T) {
	m := NewRotationMatrix(0.7, -1.3)
	v := r3.Vec{X: 0.3, Y: -4.5, Z: 2.2}
	got := m.ApplyTranspose(m.Apply(v))
	if !vecNearlyEqual(got, v, 1e-12) {
		t.Errorf("Round trip changed vector: expected %v, got %v", v, got)
	}
}

func TestRotationPreservesLength(t *testing.T) {
	m := NewRotationMatrix(1.1, 0.4)
	v := r3.Vec{X: 3, Y: -4, Z: 12}
	if got := r3.Norm(m.Apply(v)); math.Abs(got-13) > 1e-12 {
		t.Errorf("Expected length 13, got %v", got)
	}
}
