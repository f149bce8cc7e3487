package core

import (
	"gonum.org/v1/gonum/spatial/r3"
)

// Ray represents a line of sight with an origin and a unit direction.
type Ray struct {
	Origin r3.Vec
	Dir    r3.Vec
}

// NewRay creates a ray from an origin and a direction.
func NewRay(origin, dir r3.Vec) Ray {
	return Ray{Origin: origin, Dir: dir}
}

// At returns the point at distance t along the ray.
func (r Ray) At(t float64) r3.Vec {
	return r3.Add(r.Origin, r3.Scale(t, r.Dir))
}

// Advance moves the ray origin a distance t along its direction.
func (r *Ray) Advance(t float64) {
	r.Origin = r.At(t)
}

// ProjectVelocity returns the component of vel along dir. For a unit
// dir this is the line-of-sight velocity of material moving with vel.
func ProjectVelocity(dir, vel r3.Vec) float64 {
	return r3.Dot(dir, vel)
}
