package model

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/AFIC42/star-forming-regions/pkg/molecule"
)

// Model describes a continuous physical model of a star-forming
// region. All quantities are SI; positions are measured from the
// model center.
type Model interface {
	// Density returns the main collision partner number density.
	Density(pos r3.Vec) float64
	// Temperature returns the kinetic gas temperature.
	Temperature(pos r3.Vec) float64
	// Velocity returns the systematic velocity field.
	Velocity(pos r3.Vec) r3.Vec
	// DopplerB returns the turbulent Doppler b parameter.
	DopplerB(pos r3.Vec) float64
	// Abundance returns the species abundance relative to Density.
	Abundance(pos r3.Vec) float64
}

// Params configures the built-in models. Zero values fall back to the
// defaults of a small protostellar envelope.
type Params struct {
	Radius      float64    `json:"radius"`      // model radius, m
	RefRadius   float64    `json:"refRadius"`   // power-law reference radius, m
	Density     float64    `json:"density"`     // density at the reference radius, 1/m^3
	Temperature float64    `json:"temperature"` // temperature at the reference radius, K
	CentralMass float64    `json:"centralMass"` // central mass, kg
	DopplerB    float64    `json:"dopplerB"`    // turbulent b parameter, m/s
	Abundance   float64    `json:"abundance"`   // species abundance
	Velocity    [3]float64 `json:"velocity"`    // bulk velocity for uniform models, m/s
}

func (p *Params) applyDefaults() {
	if p.Radius <= 0 {
		p.Radius = 2000 * molecule.AU
	}
	if p.RefRadius <= 0 {
		p.RefRadius = p.Radius / 10
	}
	if p.Density <= 0 {
		p.Density = 1.5e10
	}
	if p.Temperature <= 0 {
		p.Temperature = 20
	}
	if p.CentralMass <= 0 {
		p.CentralMass = molecule.MSun
	}
	if p.DopplerB <= 0 {
		p.DopplerB = 200
	}
	if p.Abundance <= 0 {
		p.Abundance = 1e-9
	}
}

// New returns a named built-in model configured by p.
func New(name string, p Params) (Model, error) {
	p.applyDefaults()
	switch name {
	case "uniform":
		return &UniformCloud{
			Dens:    p.Density,
			Temp:    p.Temperature,
			Vel:     r3.Vec{X: p.Velocity[0], Y: p.Velocity[1], Z: p.Velocity[2]},
			Doppler: p.DopplerB,
			Abund:   p.Abundance,
		}, nil
	case "infall":
		return &InfallEnvelope{
			RefRadius:   p.RefRadius,
			RefDens:     p.Density,
			RefTemp:     p.Temperature,
			CentralMass: p.CentralMass,
			Doppler:     p.DopplerB,
			Abund:       p.Abundance,
		}, nil
	default:
		return nil, fmt.Errorf("unknown model %q", name)
	}
}
