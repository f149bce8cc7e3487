// Package tracer solves the radiative transfer equation along image
// rays through an unstructured model grid. Two integrators share one
// contract: given a ray offset in the image plane, fill a per-channel
// intensity and optical depth vector. The piecewise-constant variant
// walks the Voronoi cells of the grid points; the smooth variant walks
// a Delaunay cell chain and interpolates the field between cell faces.
package tracer

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/AFIC42/star-forming-regions/pkg/core"
	"github.com/AFIC42/star-forming-regions/pkg/grid"
	"github.com/AFIC42/star-forming-regions/pkg/molecule"
)

// Algorithm selectors, chosen once per image.
const (
	AlgoPiecewise = 0 // cell-to-cell Voronoi walk, fields constant per cell
	AlgoSmooth    = 1 // Delaunay chain walk with barycentric interpolation
)

// Per-cell sampling resolutions. The piecewise tracer averages the
// line profile over sub-steps of each Voronoi crossing; the smooth
// tracer splits each Delaunay crossing into equal segments.
const (
	nVelSteps   = 10
	nSegments   = 5
	oneOnNSteps = 1.0 / nVelSteps
)

// Result accumulates one ray's per-channel output. It is a transient,
// single-thread value reused across rays.
type Result struct {
	Intensity []float64
	Tau       []float64
}

// NewResult returns accumulators sized for nchan channels.
func NewResult(nchan int) *Result {
	return &Result{
		Intensity: make([]float64, nchan),
		Tau:       make([]float64, nchan),
	}
}

// Reset zeroes the accumulators for the next ray.
func (r *Result) Reset() {
	for i := range r.Intensity {
		r.Intensity[i] = 0
		r.Tau[i] = 0
	}
}

// Integrator turns an image-plane ray offset into a per-channel
// intensity and optical depth vector. Implementations keep per-ray
// scratch state and must not be shared between goroutines; each worker
// owns one.
type Integrator interface {
	TraceRay(xp, yp float64, res *Result)
}

// Params is the read-only state shared by both integrators for one
// image render.
type Params struct {
	Grid    *grid.Grid
	Tess    *grid.Tessellation // required by AlgoSmooth
	Species []*molecule.Data
	Aux     *molecule.Aux

	// Velocity is the continuous bulk velocity field of the model.
	// When nil the piecewise tracer falls back to the velocity stored
	// on each grid point; the smooth tracer requires it.
	Velocity func(pos r3.Vec) r3.Vec

	Rot       core.RotationMatrix
	NChan     int
	VelRes    float64 // channel width, m/s
	Freq      float64 // image center frequency, Hz
	Bandwidth float64 // image bandwidth, Hz
	Trans     int     // resolved transition index
	SourceVel float64 // bulk recession velocity of the source, m/s
	Theta     float64 // image inclination, rad
	DoLine    bool
	Polarized bool

	// Cutoff is the minimum accepted face distance of the Voronoi
	// walk, guarding against re-selecting the face just crossed.
	Cutoff float64
}

// lineRef addresses one radiative transition of one species.
type lineRef struct {
	mol      int
	line     int
	redshift float64 // velocity displacement from the image frequency, m/s
	inBand   bool
}

// New constructs the integrator selected by algo. An unrecognized
// selector is a configuration error the caller treats as fatal.
func New(algo int, p Params) (Integrator, error) {
	if len(p.Species) == 0 {
		return nil, fmt.Errorf("tracer: no molecular species")
	}
	sh := newShared(p)
	switch algo {
	case AlgoPiecewise:
		return newPiecewise(sh), nil
	case AlgoSmooth:
		if p.Tess == nil {
			return nil, fmt.Errorf("tracer: smooth algorithm needs a tessellation")
		}
		if p.Velocity == nil {
			return nil, fmt.Errorf("tracer: smooth algorithm needs a continuous velocity field")
		}
		return newSmooth(sh), nil
	default:
		return nil, fmt.Errorf("tracer: unrecognized ray-tracing algorithm %d", algo)
	}
}

// shared carries the state and channel arithmetic common to both
// integrator variants.
type shared struct {
	Params
	lines    []lineRef
	contLine int
	radius2  float64
	norminv  float64
	localCMB float64
}

func newShared(p Params) *shared {
	sh := &shared{
		Params:  p,
		radius2: p.Grid.Radius * p.Grid.Radius,
		norminv: p.Species[0].NormInv,
	}

	// The continuum is evaluated for the image transition, or for the
	// first line when the image is continuum-only.
	if p.DoLine && p.Trans > -1 {
		sh.contLine = p.Trans
	}
	if p.Trans > -1 && p.Trans < p.Species[0].NLine {
		sh.localCMB = p.Species[0].LocalCMB[p.Trans]
	}

	// Flatten the line list over species, tagging the lines inside the
	// image band and fixing their red shift against the reference
	// frequency once. Blended lines of any species contribute to every
	// channel they fall in.
	refFreq := p.Freq
	if p.Trans > -1 && p.Trans < p.Species[0].NLine {
		refFreq = p.Species[0].Freq[p.Trans]
	}
	for mi, d := range p.Species {
		for li := 0; li < d.NLine; li++ {
			lr := lineRef{mol: mi, line: li}
			lr.inBand = p.DoLine &&
				d.Freq[li] > p.Freq-0.5*p.Bandwidth &&
				d.Freq[li] < p.Freq+0.5*p.Bandwidth
			lr.redshift = (refFreq - d.Freq[li]) / refFreq * molecule.CLight
			sh.lines = append(sh.lines, lr)
		}
	}
	return sh
}

// chanVel returns the recession velocity of channel ichan relative to
// the image center frequency.
func (sh *shared) chanVel(ichan int) float64 {
	return (float64(ichan) - float64(sh.NChan-1)*0.5) * sh.VelRes
}

// accumulate advances one channel's intensity and optical depth across
// a path segment with emission jnu and absorption alpha.
func (sh *shared) accumulate(res *Result, ichan int, jnu, alpha, ds float64) {
	dtau := alpha * ds
	_, remnant := core.IntegrateSegment(dtau)
	remnantSnu := remnant * jnu * sh.norminv * ds
	res.Intensity[ichan] += core.FastExp(res.Tau[ichan]) * remnantSnu
	res.Tau[ichan] += dtau
}

// accumulatePolarized advances one Stokes channel given its source
// term and optical depth increment.
func accumulatePolarized(res *Result, stokes int, snu, dtau float64) {
	res.Intensity[stokes] += core.FastExp(res.Tau[stokes]) * (1 - core.FastExp(dtau)) * snu
	res.Tau[stokes] += dtau
}

// addBackground adds the cosmic background, attenuated by the total
// optical depth of the ray, to every channel.
func (sh *shared) addBackground(res *Result) {
	for ichan := range res.Intensity {
		res.Intensity[ichan] += core.FastExp(res.Tau[ichan]) * sh.localCMB
	}
}
