package model

import "gonum.org/v1/gonum/spatial/r3"

// UniformCloud is a homogeneous cloud moving at a single bulk
// velocity. Its simplicity makes line shapes and optical depths
// predictable in closed form.
type UniformCloud struct {
	Dens    float64
	Temp    float64
	Vel     r3.Vec
	Doppler float64
	Abund   float64
}

func (m *UniformCloud) Density(pos r3.Vec) float64     { return m.Dens }
func (m *UniformCloud) Temperature(pos r3.Vec) float64 { return m.Temp }
func (m *UniformCloud) Velocity(pos r3.Vec) r3.Vec     { return m.Vel }
func (m *UniformCloud) DopplerB(pos r3.Vec) float64    { return m.Doppler }
func (m *UniformCloud) Abundance(pos r3.Vec) float64   { return m.Abund }
