package model

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/AFIC42/star-forming-regions/pkg/grid"
	"github.com/AFIC42/star-forming-regions/pkg/molecule"
)

// GasToDust is the assumed gas-to-dust mass ratio.
const GasToDust = 100.0

// meanMolWeight converts the collision partner number density to a
// gas mass density in units of AMU.
const meanMolWeight = 2.4

// Dust opacity power law kappa = kappa0*(nu/nu0)^beta per unit dust
// mass, an Ossenkopf-style coagulated-grain prescription.
const (
	kappa0    = 1e-2 // m^2/kg at nu0
	kappaNu0  = 1e12 // Hz
	kappaBeta = 1.8
)

// KappaNu returns the dust opacity per unit dust mass at frequency nu.
func KappaNu(nu float64) float64 {
	return kappa0 * math.Pow(nu/kappaNu0, kappaBeta)
}

// SampleGrid fills the physical fields of every non-sink grid point
// from the model. Sink points keep their background values.
func SampleGrid(g *grid.Grid, m Model) {
	for i := range g.Points {
		p := &g.Points[i]
		if p.Sink {
			continue
		}
		p.Dens = m.Density(p.Pos)
		p.Tgas = m.Temperature(p.Pos)
		p.Tdust = p.Tgas
		p.Vel = m.Velocity(p.Pos)
		p.DopplerB = m.DopplerB(p.Pos)
	}
}

// AttachSpecies appends per-point molecular state for one species:
// number densities from the abundance, reciprocal Doppler widths from
// turbulence plus the thermal width of the species, populations in
// LTE at the local gas temperature, and the dust continuum terms of
// every line. Call once per species, in the order the render lists
// its species.
func AttachSpecies(g *grid.Grid, d *molecule.Data, abundance func(pos r3.Vec) float64) {
	for i := range g.Points {
		p := &g.Points[i]
		ms := grid.MolState{
			NMol: abundance(p.Pos) * p.Dens,
			Binv: 1 / math.Sqrt(p.DopplerB*p.DopplerB+2*molecule.KBoltz*p.Tgas/d.AMass),
			Pops: d.LTEPops(p.Tgas),
			Dust: make([]float64, d.NLine),
			Knu:  make([]float64, d.NLine),
		}
		if p.Sink {
			// Boundary points contribute no material.
			ms.NMol = 0
			for lev := range ms.Pops {
				ms.Pops[lev] = 0
			}
		}
		for l := 0; l < d.NLine; l++ {
			ms.Dust[l] = molecule.Planck(d.Freq[l], p.Tdust)
			ms.Knu[l] = KappaNu(d.Freq[l]) * meanMolWeight * molecule.AMU * p.Dens / GasToDust
		}
		p.Mol = append(p.Mol, ms)
	}
}

// ConstantAbundance adapts a fixed abundance to the lookup signature
// AttachSpecies expects, for grids loaded from tables.
func ConstantAbundance(abund float64) func(pos r3.Vec) float64 {
	return func(pos r3.Vec) float64 { return abund }
}
