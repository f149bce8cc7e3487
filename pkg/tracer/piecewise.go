package tracer

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/AFIC42/star-forming-regions/pkg/core"
	"github.com/AFIC42/star-forming-regions/pkg/molecule"
)

// piecewise integrates the RTE cell by cell through the Voronoi
// tessellation implied by the grid points, treating every field as
// constant within a cell. The notional photon starts on the near side
// of the model sphere and propagates away from the observer until it
// leaves the far side.
type piecewise struct {
	*shared
	projVels [nVelSteps]float64
}

func newPiecewise(sh *shared) *piecewise {
	return &piecewise{shared: sh}
}

func (t *piecewise) TraceRay(xp, yp float64, res *Result) {
	res.Reset()

	// The model is circular in projection; rays that miss the disk
	// carry nothing.
	if xp*xp+yp*yp > t.radius2 {
		return
	}
	// Z coordinate, in the unrotated frame, of the near intersection
	// of the line of sight with the model sphere.
	zp := -math.Sqrt(t.radius2 - (xp*xp + yp*yp))

	ray := core.NewRay(
		t.Rot.Apply(r3.Vec{X: xp, Y: yp, Z: zp}),
		t.Rot.Apply(r3.Vec{Z: 1})) // points away from the observer

	posn := t.Grid.NearestPoint(ray.Origin)

	col := 0.0
	chord := -2.0 * zp
	for col < chord {
		// The remaining distance to the far side of the sphere bounds
		// the step; the nearest Voronoi face shortens it.
		ds, nposn := t.voronoiStep(posn, ray, chord-col)

		if t.Polarized {
			t.stepPolarized(res, posn, ds)
		} else {
			t.stepLines(res, posn, ray, ds)
		}

		ray.Advance(ds)
		col += ds
		posn = nposn
	}

	t.addBackground(res)
}

// voronoiStep finds the distance from the ray origin to the nearest
// Voronoi face of cell posn, and the cell beyond it. Faces closer than
// the cutoff or nearly parallel to the ray are skipped; if no face
// qualifies the ray stays in the current cell, which the chord bound
// in the caller keeps finite.
func (t *piecewise) voronoiStep(posn int, ray core.Ray, ds float64) (float64, int) {
	nposn := -1
	p := &t.Grid.Points[posn]
	for i := range p.Neighbors {
		nb := &p.Neighbors[i]
		// The face passes through the midpoint of the neighbor link,
		// perpendicular to it: distance = (p0-l0)·n / l·n.
		facePoint := r3.Add(p.Pos, r3.Scale(0.5, nb.Dir))
		numerator := r3.Dot(r3.Sub(facePoint, ray.Origin), nb.Dir)
		denominator := r3.Dot(ray.Dir, nb.Dir)
		if math.Abs(denominator) > 0 {
			newdist := numerator / denominator
			if newdist < ds && newdist > t.Cutoff {
				ds = newdist
				nposn = nb.To
			}
		}
	}
	if nposn == -1 {
		nposn = posn
	}
	return ds, nposn
}

// stepLines accumulates the line and continuum contributions of one
// Voronoi crossing into every channel.
func (t *piecewise) stepLines(res *Result, posn int, ray core.Ray, ds float64) {
	// Sample the bulk velocity at sub-points along the step. With no
	// continuous field the stored point velocity serves instead.
	sampled := t.Velocity != nil
	if sampled {
		for i := 0; i < nVelSteps; i++ {
			d := float64(i) * ds * oneOnNSteps
			vel := t.Velocity(ray.At(d))
			t.projVels[i] = core.ProjectVelocity(ray.Dir, vel)
		}
	}
	projPointVel := core.ProjectVelocity(ray.Dir, t.Grid.Points[posn].Vel)

	// The continuum is identical for all channels.
	contJnu, contAlpha := 0.0, 0.0
	molecule.ContinuumSource(&t.Aux.Mol[posn][0], t.contLine, &contJnu, &contAlpha)

	for ichan := 0; ichan < t.NChan; ichan++ {
		jnu, alpha := contJnu, contAlpha
		vThisChan := t.chanVel(ichan)

		for li := range t.lines {
			lr := &t.lines[li]
			if !lr.inBand {
				continue
			}
			st := &t.Aux.Mol[posn][lr.mol]
			deltav := vThisChan - t.SourceVel - lr.redshift
			var vfac float64
			if sampled {
				vfac = lineAmpSample(t.projVels[:], st.Binv, deltav)
			} else {
				vfac = core.GaussianLine(deltav-projPointVel, st.Binv)
			}
			t.Species[lr.mol].LineSource(st, vfac, lr.line, &jnu, &alpha)
		}

		t.accumulate(res, ichan, jnu, alpha, ds)
	}
}

// stepPolarized accumulates the Stokes continuum contributions of one
// Voronoi crossing, one call per Stokes channel.
func (t *piecewise) stepPolarized(res *Result, posn int, ds float64) {
	p := &t.Grid.Points[posn]
	snu, dtau := molecule.PolarizedSource(p.B, &t.Aux.Mol[posn][0], 0, t.Theta, ds)
	for stokes := 0; stokes < t.NChan && stokes < len(snu); stokes++ {
		accumulatePolarized(res, stokes, snu[stokes]*t.norminv, dtau)
	}
}

// lineAmpSample averages the Gaussian line shape over precomputed
// projected velocities along a step, approximating the profile of
// material whose bulk velocity varies across the cell.
func lineAmpSample(projVels []float64, binv, deltav float64) float64 {
	vfac := 0.0
	for _, pv := range projVels {
		vfac += core.GaussianLine(deltav-pv, binv)
	}
	return vfac / float64(len(projVels))
}
