package tracer

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/AFIC42/star-forming-regions/pkg/core"
	"github.com/AFIC42/star-forming-regions/pkg/grid"
	"github.com/AFIC42/star-forming-regions/pkg/molecule"
)

// interpRec holds the field bundle interpolated at one point on a cell
// face: the displacement along the ray, the position, the magnetic
// field and the per-species radiative state. Three records live per
// integrator: entry and exit of the current cell, plus the working
// record at the current segment midpoint.
type interpRec struct {
	xCmpnt float64 // projection of the point onto the ray direction
	pos    r3.Vec
	b      r3.Vec
	mol    []molecule.AuxState
}

func newInterpRec(species []*molecule.Data) interpRec {
	rec := interpRec{mol: make([]molecule.AuxState, len(species))}
	for si, d := range species {
		rec.mol[si] = molecule.AuxState{
			SpecNumDens: make([]float64, d.NLev),
			Dust:        make([]float64, d.NLine),
			Knu:         make([]float64, d.NLine),
		}
	}
	return rec
}

// Ring slot roles. Entry and exit swap after every cell, so the exit
// bundle of one cell becomes the entry bundle of the next without
// recomputation; the midpoint slot is scratch for every segment.
const midSlot = 2

// smooth integrates the RTE along a chain of Delaunay cells, with the
// radiative state interpolated linearly between the barycentric values
// at the entry and exit faces of each cell. Velocity is the exception:
// it varies too non-linearly across a cell for interpolation, so it is
// resampled from the continuous field at every segment midpoint.
type smooth struct {
	*shared
	ring [3]interpRec
}

func newSmooth(sh *shared) *smooth {
	t := &smooth{shared: sh}
	for i := range t.ring {
		t.ring[i] = newInterpRec(sh.Species)
	}
	return t
}

func (t *smooth) TraceRay(xp, yp float64, res *Result) {
	res.Reset()

	if xp*xp+yp*yp > t.radius2 {
		return
	}
	zp := -math.Sqrt(t.radius2 - (xp*xp + yp*yp))

	ray := core.NewRay(
		t.Rot.Apply(r3.Vec{X: xp, Y: yp, Z: zp}),
		t.Rot.Apply(r3.Vec{Z: 1}))

	entry, chain, ok := t.Tess.WalkRay(ray.Origin, ray.Dir)
	if !ok {
		// A ray that misses the mesh contributes nothing.
		return
	}

	entryI, exitI := 0, 1
	t.baryInterp(&t.ring[entryI], chain[0].Cell, entry, ray)

	for ci := range chain {
		t.baryInterp(&t.ring[exitI], chain[ci].Cell, chain[ci].Exit, ray)

		ds := (t.ring[exitI].xCmpnt - t.ring[entryI].xCmpnt) / nSegments
		for si := 0; si < nSegments; si++ {
			frac := (float64(si) + 0.5) / nSegments
			t.segmentInterp(&t.ring[entryI], &t.ring[exitI], frac)
			mid := &t.ring[midSlot]

			if t.Polarized {
				snu, dtau := molecule.PolarizedSource(mid.b, &mid.mol[0], 0, t.Theta, ds)
				for stokes := 0; stokes < t.NChan && stokes < len(snu); stokes++ {
					accumulatePolarized(res, stokes, snu[stokes]*t.norminv, dtau)
				}
				continue
			}

			projVelRay := core.ProjectVelocity(ray.Dir, t.Velocity(mid.pos))

			contJnu, contAlpha := 0.0, 0.0
			molecule.ContinuumSource(&mid.mol[0], t.contLine, &contJnu, &contAlpha)

			for ichan := 0; ichan < t.NChan; ichan++ {
				jnu, alpha := contJnu, contAlpha
				vThisChan := t.chanVel(ichan)

				for li := range t.lines {
					lr := &t.lines[li]
					if !lr.inBand {
						continue
					}
					st := &mid.mol[lr.mol]
					deltav := vThisChan - t.SourceVel - lr.redshift
					vfac := core.GaussianLine(deltav-projVelRay, st.Binv)
					t.Species[lr.mol].LineSource(st, vfac, lr.line, &jnu, &alpha)
				}

				t.accumulate(res, ichan, jnu, alpha, ds)
			}
		}

		entryI, exitI = exitI, entryI
	}

	t.addBackground(res)
}

// baryInterp fills rec with the field bundle at a face hit, the linear
// combination of the face's three vertex values weighted by the
// barycentric coordinates of the hit.
func (t *smooth) baryInterp(rec *interpRec, cell int, hit grid.FaceHit, ray core.Ray) {
	fv := t.Tess.FaceVerts(cell, hit.Face)

	rec.pos = r3.Vec{}
	rec.b = r3.Vec{}
	for si := range rec.mol {
		st := &rec.mol[si]
		st.Binv = 0
		zero(st.SpecNumDens)
		zero(st.Dust)
		zero(st.Knu)
	}

	for k, vi := range fv {
		w := hit.Bary[k]
		p := &t.Grid.Points[vi]
		rec.pos = r3.Add(rec.pos, r3.Scale(w, p.Pos))
		rec.b = r3.Add(rec.b, r3.Scale(w, p.B))
		for si := range rec.mol {
			va := &t.Aux.Mol[vi][si]
			st := &rec.mol[si]
			st.Binv += w * va.Binv
			floats.AddScaled(st.SpecNumDens, w, va.SpecNumDens)
			floats.AddScaled(st.Dust, w, va.Dust)
			floats.AddScaled(st.Knu, w, va.Knu)
		}
	}
	rec.xCmpnt = core.ProjectVelocity(ray.Dir, r3.Sub(rec.pos, ray.Origin))
}

// segmentInterp fills the midpoint slot with the bundle a fraction
// frac of the way from entry to exit.
func (t *smooth) segmentInterp(entry, exit *interpRec, frac float64) {
	mid := &t.ring[midSlot]
	mid.xCmpnt = lerp(entry.xCmpnt, exit.xCmpnt, frac)
	mid.pos = r3.Add(r3.Scale(1-frac, entry.pos), r3.Scale(frac, exit.pos))
	mid.b = r3.Add(r3.Scale(1-frac, entry.b), r3.Scale(frac, exit.b))
	for si := range mid.mol {
		me, mx, mm := &entry.mol[si], &exit.mol[si], &mid.mol[si]
		mm.Binv = lerp(me.Binv, mx.Binv, frac)
		lerpSlice(mm.SpecNumDens, me.SpecNumDens, mx.SpecNumDens, frac)
		lerpSlice(mm.Dust, me.Dust, mx.Dust, frac)
		lerpSlice(mm.Knu, me.Knu, mx.Knu, frac)
	}
}

func lerp(a, b, frac float64) float64 { return a + (b-a)*frac }

func lerpSlice(dst, a, b []float64, frac float64) {
	for i := range dst {
		dst[i] = a[i] + (b[i]-a[i])*frac
	}
}

func zero(s []float64) {
	for i := range s {
		s[i] = 0
	}
}
