package model

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/AFIC42/star-forming-regions/pkg/molecule"
)

// InfallEnvelope is a power-law envelope in free fall onto a central
// protostar: density falls as r^-1.5, temperature as r^-0.5, and
// material moves inward at the free-fall speed of the central mass.
type InfallEnvelope struct {
	RefRadius   float64
	RefDens     float64
	RefTemp     float64
	CentralMass float64
	Doppler     float64
	Abund       float64
}

// clampRadius keeps the power laws finite through the origin.
func (m *InfallEnvelope) clampRadius(pos r3.Vec) float64 {
	return math.Max(r3.Norm(pos), 0.01*m.RefRadius)
}

func (m *InfallEnvelope) Density(pos r3.Vec) float64 {
	r := m.clampRadius(pos)
	return m.RefDens * math.Pow(r/m.RefRadius, -1.5)
}

func (m *InfallEnvelope) Temperature(pos r3.Vec) float64 {
	r := m.clampRadius(pos)
	return m.RefTemp * math.Pow(r/m.RefRadius, -0.5)
}

func (m *InfallEnvelope) Velocity(pos r3.Vec) r3.Vec {
	r := m.clampRadius(pos)
	speed := math.Sqrt(2 * molecule.Grav * m.CentralMass / r)
	if n := r3.Norm(pos); n > 0 {
		return r3.Scale(-speed/n, pos)
	}
	return r3.Vec{}
}

func (m *InfallEnvelope) DopplerB(pos r3.Vec) float64  { return m.Doppler }
func (m *InfallEnvelope) Abundance(pos r3.Vec) float64 { return m.Abund }
