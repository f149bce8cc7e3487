package molecule

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// MaxPolarization is the maximum fractional polarization of thermal
// dust emission.
const MaxPolarization = 0.13

// ContinuumSource accumulates the dust contribution at one point into
// the emission and absorption coefficients of line i.
func ContinuumSource(st *AuxState, line int, jnu, alpha *float64) {
	*jnu += st.Dust[line] * st.Knu[line]
	*alpha += st.Knu[line]
}

// LineSource accumulates the molecular line contribution, weighted by
// the line-shape factor vfac. Stimulated emission enters the
// absorption coefficient with its negative sign, so inverted
// populations drive alpha below zero.
func (d *Data) LineSource(st *AuxState, vfac float64, line int, jnu, alpha *float64) {
	*jnu += vfac * HPIP * st.SpecNumDens[d.Upper[line]] * d.AEinst[line]
	*alpha += vfac * HPIP * (st.SpecNumDens[d.Lower[line]]*d.BEinstL[line] -
		st.SpecNumDens[d.Upper[line]]*d.BEinstU[line])
}

// PolarizedSource evaluates the Stokes I, Q, U source functions of the
// dust continuum for line i, given the local magnetic field and the
// image inclination, following Padovani et al. 2012 with the sigma2
// correction of Ade et al. 2015. It returns the per-Stokes source
// function values and the optical depth increment across ds, so that
// an opaque column saturates to the unpolarized dust source function.
func PolarizedSource(b r3.Vec, st *AuxState, line int, incl, ds float64) (snu [3]float64, dtau float64) {
	jnu := st.Dust[line]
	cos2g, cos2chi, sin2chi := stokesAngles(b, incl)
	snu[0] = jnu * (1 - MaxPolarization*(cos2g-2.0/3.0))
	snu[1] = jnu * MaxPolarization * cos2g * cos2chi
	snu[2] = jnu * MaxPolarization * cos2g * sin2chi
	dtau = st.Knu[line] * ds
	return snu, dtau
}

// stokesAngles rotates the magnetic field about the x axis into the
// observer frame and reduces it to the angle factors the polarized
// source terms need: the squared cosine of the angle between the field
// and the plane of the sky, and the double position angle of the field
// on the sky.
func stokesAngles(b r3.Vec, incl float64) (cos2gamma, cos2chi, sin2chi float64) {
	bp := r3.Vec{
		X: b.X,
		Y: b.Y*math.Cos(incl) + b.Z*math.Sin(incl),
		Z: -b.Y*math.Sin(incl) + b.Z*math.Cos(incl),
	}
	norm2 := r3.Norm2(bp)
	if norm2 == 0 {
		return 0, 0, 0
	}
	trans2 := bp.X*bp.X + bp.Y*bp.Y
	cos2gamma = trans2 / norm2
	if trans2 == 0 {
		return cos2gamma, 0, 0
	}
	cos2chi = (bp.X*bp.X - bp.Y*bp.Y) / trans2
	sin2chi = 2 * bp.X * bp.Y / trans2
	return cos2gamma, cos2chi, sin2chi
}
