package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"math"
	"math/rand"
	"os"
	"time"

	"github.com/AFIC42/star-forming-regions/pkg/core"
	"github.com/AFIC42/star-forming-regions/pkg/cube"
	"github.com/AFIC42/star-forming-regions/pkg/grid"
	"github.com/AFIC42/star-forming-regions/pkg/model"
	"github.com/AFIC42/star-forming-regions/pkg/molecule"
	"github.com/AFIC42/star-forming-regions/pkg/monitor"
	"github.com/AFIC42/star-forming-regions/pkg/render"
	"github.com/AFIC42/star-forming-regions/pkg/tracer"
)

const arcsec = math.Pi / 180 / 3600

// RunConfig is the JSON run file: model, grid, image and output
// settings for one render.
type RunConfig struct {
	Model       string       `json:"model"`       // built-in model name
	ModelParams model.Params `json:"modelParams"` //
	GridFile    string       `json:"gridFile"`    // optional point table
	GridN       int          `json:"gridN"`       // lattice points per axis
	SinkPoints  int          `json:"sinkPoints"`  // extra boundary points
	Molecule    string       `json:"molecule"`    // LAMDA file; empty = built-in CO

	Algorithm int   `json:"algorithm"` // 0 = piecewise, 1 = smooth
	Antialias int   `json:"antialias"` // minimum rays per pixel
	Threads   int   `json:"threads"`   // 0 = all CPUs
	Seed      int64 `json:"seed"`      // 0 = from the clock

	Image   ImageConfig  `json:"image"`
	Output  OutputConfig `json:"output"`
	Monitor string       `json:"monitor"` // addr for the live monitor, empty = off
}

// ImageConfig holds the per-image geometry and spectral setup in
// observer-friendly units.
type ImageConfig struct {
	Pxls         int     `json:"pxls"`
	ImgResArcsec float64 `json:"imgRes"`    // arcsec per pixel
	DistancePC   float64 `json:"distance"`  // pc
	ThetaDeg     float64 `json:"theta"`     // inclination, deg
	PhiDeg       float64 `json:"phi"`       // rotation, deg
	FreqGHz      float64 `json:"freq"`      // 0 = from trans
	BandwidthGHz float64 `json:"bandwidth"` //
	VelRes       float64 `json:"velres"`    // m/s
	NChan        int     `json:"nchan"`     //
	Trans        int     `json:"trans"`     // -1 = nearest line to freq
	SourceVel    float64 `json:"sourceVel"` // m/s
	Continuum    bool    `json:"continuum"` // skip line radiation
	Polarized    bool    `json:"polarized"` //
}

// OutputConfig names the files to write. Empty entries are skipped.
type OutputConfig struct {
	NetCDF    string `json:"netcdf"`
	MapPrefix string `json:"mapPrefix"` // per-channel TIFF prefix
	PNG       string `json:"png"`       // peak-channel preview
}

func defaultConfig() RunConfig {
	return RunConfig{
		Model:     "uniform",
		GridN:     24,
		Algorithm: tracer.AlgoPiecewise,
		Antialias: 4,
		Image: ImageConfig{
			Pxls:         64,
			ImgResArcsec: 0.2,
			DistancePC:   140,
			NChan:        32,
			VelRes:       250,
			Trans:        0,
		},
		Output: OutputConfig{NetCDF: "cube.nc", PNG: "cube.png"},
	}
}

func main() {
	configPath := flag.String("config", "", "JSON run configuration file")
	modelName := flag.String("model", "", "override the model: 'uniform' or 'infall'")
	out := flag.String("out", "", "override the NetCDF output file")
	help := flag.Bool("help", false, "Show help information")
	flag.Parse()

	if *help {
		fmt.Println("Spectral-line cube ray tracer")
		fmt.Println("Usage: sfr [options]")
		fmt.Println()
		fmt.Println("Options:")
		flag.PrintDefaults()
		fmt.Println()
		fmt.Println("Available models:")
		fmt.Println("  uniform - homogeneous cloud, flat line profile")
		fmt.Println("  infall  - free-fall envelope onto a protostar")
		return
	}

	cfg := defaultConfig()
	if *configPath != "" {
		if err := loadConfig(*configPath, &cfg); err != nil {
			fmt.Printf("Error reading config: %v\n", err)
			os.Exit(1)
		}
	}
	if *modelName != "" {
		cfg.Model = *modelName
	}
	if *out != "" {
		cfg.Output.NetCDF = *out
	}
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}

	if err := run(cfg, core.DefaultLogger()); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig(path string, cfg *RunConfig) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, cfg)
}

func run(cfg RunConfig, logger core.Logger) error {
	mdl, err := model.New(cfg.Model, cfg.ModelParams)
	if err != nil {
		return err
	}
	radius := cfg.ModelParams.Radius
	if radius <= 0 {
		radius = 2000 * molecule.AU // matches the model parameter default
	}

	// Grid geometry comes from a cubic lattice covering the model
	// sphere, which carries both the Voronoi neighbor links and a
	// tetrahedral decomposition.
	points, cells, spacing := grid.Lattice(cfg.GridN, radius)
	if cfg.SinkPoints > 0 {
		points = grid.AddSinkShell(points, cfg.SinkPoints, radius,
			molecule.LocalCMBTemp, rand.New(rand.NewSource(cfg.Seed)))
	}
	g, err := grid.New(points, radius, spacing)
	if err != nil {
		return err
	}

	// Grid-file runs carry their velocities on the points, so the
	// tracer must fall back to the stored values instead of sampling
	// the analytic field the model would supply.
	velocity := mdl.Velocity
	if cfg.GridFile != "" {
		if cfg.Algorithm == tracer.AlgoSmooth {
			return fmt.Errorf("grid-file runs use the piecewise algorithm: the smooth tracer needs a continuous velocity field")
		}
		velocity = nil

		// Physical fields come from the table, resampled onto the
		// lattice geometry.
		tbl, err := grid.LoadTable(cfg.GridFile)
		if err != nil {
			return err
		}
		src, err := grid.New(tbl, radius, spacing)
		if err != nil {
			return err
		}
		grid.Resample(g.Points, src)
		logger.Printf("resampled %d table points onto %d grid points\n",
			len(tbl), len(g.Points))
	} else {
		model.SampleGrid(g, mdl)
	}

	var species *molecule.Data
	if cfg.Molecule != "" {
		species, err = molecule.LoadLAMDA(cfg.Molecule)
	} else {
		species, err = demoCO()
	}
	if err != nil {
		return err
	}
	model.AttachSpecies(g, species, mdl.Abundance)

	var tess *grid.Tessellation
	if cfg.Algorithm == tracer.AlgoSmooth {
		tess, err = grid.NewTessellation(g, cells)
		if err != nil {
			return err
		}
		logger.Printf("tessellation: %d cells over %d points\n",
			len(tess.Cells), len(g.Points))
	}

	img := &render.Image{
		Pxls:      cfg.Image.Pxls,
		ImgRes:    cfg.Image.ImgResArcsec * arcsec,
		Distance:  cfg.Image.DistancePC * molecule.PC,
		Theta:     cfg.Image.ThetaDeg * math.Pi / 180,
		Phi:       cfg.Image.PhiDeg * math.Pi / 180,
		Freq:      cfg.Image.FreqGHz * 1e9,
		Bandwidth: cfg.Image.BandwidthGHz * 1e9,
		VelRes:    cfg.Image.VelRes,
		NChan:     cfg.Image.NChan,
		Trans:     cfg.Image.Trans,
		SourceVel: cfg.Image.SourceVel,
		DoLine:    !cfg.Image.Continuum,
		Polarized: cfg.Image.Polarized,
	}

	r := &render.Renderer{
		Grid:     g,
		Tess:     tess,
		Species:  []*molecule.Data{species},
		Velocity: velocity,
		Config: render.Config{
			Algorithm:  cfg.Algorithm,
			Antialias:  cfg.Antialias,
			NumWorkers: cfg.Threads,
			Seed:       cfg.Seed,
		},
		Logger: logger,
	}

	if cfg.Monitor != "" {
		// The monitor needs initialized accumulators before serving.
		if err := img.FixChannels(species); err != nil {
			return err
		}
		mon := monitor.New(img)
		r.Config.Progress = mon.Progress
		mon.Serve(cfg.Monitor, logger)
	}

	start := time.Now()
	stats, err := r.Render(img)
	if err != nil {
		return err
	}
	logger.Printf("render complete in %v: %d rays, %.1f rays/pixel, peak intensity %.3g, peak tau %.3g\n",
		time.Since(start).Round(time.Millisecond), stats.TotalRays,
		stats.MeanRaysPerPixel, stats.PeakIntensity, stats.PeakTau)

	c, err := cube.FromImage(img)
	if err != nil {
		return err
	}
	if cfg.Output.NetCDF != "" {
		if err := c.WriteNetCDF(cfg.Output.NetCDF); err != nil {
			return err
		}
		logger.Printf("wrote %s\n", cfg.Output.NetCDF)
	}
	if cfg.Output.MapPrefix != "" {
		if err := c.WriteChannelMaps(cfg.Output.MapPrefix); err != nil {
			return err
		}
		logger.Printf("wrote %d channel maps at %s\n", c.NChan, cfg.Output.MapPrefix)
	}
	if cfg.Output.PNG != "" {
		if err := c.WritePreviewPNG(cfg.Output.PNG); err != nil {
			return err
		}
		logger.Printf("wrote %s\n", cfg.Output.PNG)
	}
	return nil
}

// demoCO builds a small built-in CO species, enough to render without
// a LAMDA data file: the four lowest rotational levels and their three
// radiative transitions.
func demoCO() (*molecule.Data, error) {
	toJoule := 100 * molecule.CLight * molecule.HPlanck // energies tabulated in 1/cm
	return molecule.NewData("CO", 28*molecule.AMU,
		[]float64{0, 3.845033 * toJoule, 11.534920 * toJoule, 23.069512 * toJoule},
		[]float64{1, 3, 5, 7},
		[]float64{115.2712018e9, 230.5380000e9, 345.7959899e9},
		[]float64{7.203e-8, 6.910e-7, 2.497e-6},
		[]int{1, 2, 3},
		[]int{0, 1, 2})
}
