package grid

import "gonum.org/v1/gonum/spatial/r3"

// Neighbor links a grid point to one adjacent point of the
// tessellation. Dir is the displacement from the owning point to the
// neighbor; the shared cell face passes through the midpoint of that
// segment, perpendicular to it.
type Neighbor struct {
	Dir r3.Vec
	To  int // arena index of the neighbor point
}

// MolState carries the per-species radiative inputs stored on a point.
// Level populations arrive precomputed; dust terms are per line.
type MolState struct {
	NMol float64   // species number density, 1/m^3
	Binv float64   // reciprocal total Doppler width, s/m
	Pops []float64 // fractional level populations
	Dust []float64 // dust emission input per line
	Knu  []float64 // dust opacity per line, 1/m
}

// Point is one sample of the physical model. Points live in a flat
// arena and reference each other by index only.
type Point struct {
	ID   int
	Pos  r3.Vec
	Vel  r3.Vec
	B    r3.Vec
	Dens     float64 // main collision partner density, 1/m^3
	Tgas     float64 // kinetic gas temperature, K
	Tdust    float64 // dust temperature, K
	DopplerB float64 // turbulent Doppler b parameter, m/s

	// Sink marks a boundary point: it carries only background field
	// values and never seeds rays.
	Sink bool

	Neighbors []Neighbor
	Mol       []MolState // indexed by species
}
