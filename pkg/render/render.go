package render

import (
	"fmt"
	"math"
	"math/rand"
	"runtime"
	"sync"
	"sync/atomic"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/AFIC42/star-forming-regions/pkg/core"
	"github.com/AFIC42/star-forming-regions/pkg/grid"
	"github.com/AFIC42/star-forming-regions/pkg/molecule"
	"github.com/AFIC42/star-forming-regions/pkg/tracer"
)

// progressStep is the fraction of total rays between progress reports.
const progressStep = 0.002

// cutoffScale relates the grid's minimum resolved length to the
// shortest Voronoi face distance the tracer accepts.
const cutoffScale = 1e-7

// Config holds the render-wide settings that are not per-image.
type Config struct {
	Algorithm  int   // tracer.AlgoPiecewise or tracer.AlgoSmooth
	Antialias  int   // minimum rays per pixel
	NumWorkers int   // 0 = GOMAXPROCS
	Seed       int64 // master seed for the per-worker streams

	// Progress, when set, receives monotone fractional completion.
	Progress func(frac float64)
}

// Renderer ties a grid, its tessellation and the molecular data to an
// image sampler. The grid and species are shared read-only by all
// workers.
type Renderer struct {
	Grid    *grid.Grid
	Tess    *grid.Tessellation
	Species []*molecule.Data

	// Velocity is the continuous bulk velocity field; nil renders from
	// the discrete grid velocities (piecewise algorithm only).
	Velocity func(pos r3.Vec) r3.Vec

	Config Config
	Logger core.Logger
}

// Render fills the image's pixel accumulators by casting rays through
// the model. Each pixel receives at least the configured antialias
// minimum of rays, and one ray per model grid point that projects into
// it. It returns statistics of the finished render.
func (r *Renderer) Render(img *Image) (*Stats, error) {
	if len(r.Species) == 0 {
		return nil, fmt.Errorf("render: no molecular species")
	}
	logger := r.Logger
	if logger == nil {
		logger = core.DefaultLogger()
	}

	if err := img.FixChannels(r.Species[0]); err != nil {
		return nil, err
	}

	aux, err := molecule.BuildAux(r.Grid, r.Species)
	if err != nil {
		return nil, err
	}

	numWorkers := r.Config.NumWorkers
	if numWorkers <= 0 {
		numWorkers = runtime.GOMAXPROCS(0)
	}
	antialias := r.Config.Antialias
	if antialias < 1 {
		antialias = 1
	}

	params := tracer.Params{
		Grid:      r.Grid,
		Tess:      r.Tess,
		Species:   r.Species,
		Aux:       aux,
		Velocity:  r.Velocity,
		Rot:       img.Rot,
		NChan:     img.NChan,
		VelRes:    img.VelRes,
		Freq:      img.Freq,
		Bandwidth: img.Bandwidth,
		Trans:     img.Trans,
		SourceVel: img.SourceVel,
		Theta:     img.Theta,
		DoLine:    img.DoLine,
		Polarized: img.Polarized,
		Cutoff:    r.Grid.MinScale * cutoffScale,
	}

	// One integrator per worker: integrators keep per-ray scratch
	// state. Constructing them up front also surfaces a bad algorithm
	// selector before any work starts.
	integrators := make([]tracer.Integrator, numWorkers)
	for i := range integrators {
		integrators[i], err = tracer.New(r.Config.Algorithm, params)
		if err != nil {
			return nil, err
		}
	}

	totalRays := r.assignRayCounts(img, antialias)
	logger.Printf("rendering %dx%d pixels, %d channels, %d rays on %d workers\n",
		img.Pxls, img.Pxls, img.NChan, totalRays, numWorkers)

	streams := core.SpawnStreams(r.Config.Seed, numWorkers)

	tasks := make(chan int, len(img.Pixels))
	for ppi := range img.Pixels {
		tasks <- ppi
	}
	close(tasks)

	prog := &progressTracker{
		total:    totalRays,
		callback: r.Config.Progress,
		logger:   logger,
	}

	var wg sync.WaitGroup
	for wi := 0; wi < numWorkers; wi++ {
		wg.Add(1)
		go func(integ tracer.Integrator, rng *rand.Rand) {
			defer wg.Done()
			r.work(img, integ, rng, tasks, prog)
		}(integrators[wi], streams[wi])
	}
	wg.Wait()

	return newStats(img, totalRays, numWorkers), nil
}

// assignRayCounts sets each pixel's ray count to the number of
// interior grid points that project into it, floored at the antialias
// minimum, and returns the total.
func (r *Renderer) assignRayCounts(img *Image, antialias int) int {
	size := img.PixelSize()
	centre := float64(img.Pxls) / 2.0

	for gi := range r.Grid.Points {
		p := &r.Grid.Points[gi]
		if p.Sink {
			continue
		}
		// Grid coordinates rotate to the observer frame with the
		// transpose of the image rotation.
		proj := img.Rot.ApplyTranspose(p.Pos)
		xi := int(math.Floor(proj.X/size + centre))
		yi := int(math.Floor(proj.Y/size + centre))
		if xi < 0 || xi >= img.Pxls || yi < 0 || yi >= img.Pxls {
			continue
		}
		img.Pixels[yi*img.Pxls+xi].NumRays++
	}

	total := 0
	for i := range img.Pixels {
		if img.Pixels[i].NumRays < antialias {
			img.Pixels[i].NumRays = antialias
		}
		total += img.Pixels[i].NumRays
	}
	return total
}

// work drains the pixel task channel. All rays of one pixel are traced
// by the same worker, each from a uniform origin inside the pixel's
// footprint drawn from the worker's private stream.
func (r *Renderer) work(img *Image, integ tracer.Integrator, rng *rand.Rand,
	tasks <-chan int, prog *progressTracker) {

	size := img.PixelSize()
	centre := float64(img.Pxls) / 2.0
	res := tracer.NewResult(img.NChan)

	for ppi := range tasks {
		pix := &img.Pixels[ppi]
		xi := ppi % img.Pxls
		yi := ppi / img.Pxls
		weight := 1.0 / float64(pix.NumRays)

		for ai := 0; ai < pix.NumRays; ai++ {
			// The x axis of the image points opposite the model x
			// axis, as seen looking along the line of sight.
			xp := -size * (rng.Float64() + float64(xi) - centre)
			yp := size * (rng.Float64() + float64(yi) - centre)

			integ.TraceRay(xp, yp, res)
			img.accumulate(pix, weight, res)
		}

		prog.add(pix.NumRays)
	}
}

// accumulate folds one ray's result into a pixel at the given weight.
// Pixels are single-owner, but the lock also orders these writes
// against concurrent monitor snapshots of the in-flight image.
func (img *Image) accumulate(pix *Pixel, weight float64, res *tracer.Result) {
	img.mu.Lock()
	floats.AddScaled(pix.Intensity, weight, res.Intensity)
	floats.AddScaled(pix.Tau, weight, res.Tau)
	img.mu.Unlock()
}

// progressTracker reports monotone fractional completion as rays
// finish, never regressing even with workers racing to report.
type progressTracker struct {
	total    int
	done     int64
	mu       sync.Mutex
	last     float64
	callback func(frac float64)
	logger   core.Logger
}

func (p *progressTracker) add(rays int) {
	done := atomic.AddInt64(&p.done, int64(rays))
	if p.total <= 1 {
		return
	}
	frac := float64(done) / float64(p.total-1)
	if frac > 1 {
		frac = 1
	}

	p.mu.Lock()
	if frac-p.last < progressStep && !(frac >= 1 && p.last < 1) {
		p.mu.Unlock()
		return
	}
	p.last = frac
	p.mu.Unlock()

	if p.callback != nil {
		p.callback(frac)
	}
	if p.logger != nil {
		p.logger.Printf("raytracing %5.1f%%\n", 100*frac)
	}
}
