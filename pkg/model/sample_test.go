package model

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/AFIC42/star-forming-regions/pkg/grid"
	"github.com/AFIC42/star-forming-regions/pkg/molecule"
)

func sampleSpecies(t *testing.T) *molecule.Data {
	t.Helper()
	freq := 115.2712018e9
	d, err := molecule.NewData("co-test", 28*molecule.AMU,
		[]float64{0, molecule.HPlanck * freq},
		[]float64{1, 3},
		[]float64{freq},
		[]float64{7.203e-8},
		[]int{1},
		[]int{0},
	)
	if err != nil {
		t.Fatalf("NewData failed: %v", err)
	}
	return d
}

func TestSampleGridFillsInterior(t *testing.T) {
	points := []grid.Point{
		{Pos: r3.Vec{X: 1e14}},
		{Pos: r3.Vec{X: 2e15}, Sink: true, Tgas: 2.728},
	}
	g, err := grid.New(points, 2e15, 1e12)
	if err != nil {
		t.Fatalf("grid.New failed: %v", err)
	}
	m := &UniformCloud{Dens: 1e10, Temp: 25, Vel: r3.Vec{Z: 300}, Doppler: 120, Abund: 1e-9}
	SampleGrid(g, m)

	if g.Points[0].Dens != 1e10 || g.Points[0].Tgas != 25 {
		t.Errorf("Interior point not filled: dens %v temp %v", g.Points[0].Dens, g.Points[0].Tgas)
	}
	if g.Points[0].Vel.Z != 300 {
		t.Errorf("Expected vz 300, got %v", g.Points[0].Vel.Z)
	}
	if g.Points[1].Tgas != 2.728 {
		t.Errorf("Sink point was overwritten: %v", g.Points[1].Tgas)
	}
}

func TestAttachSpecies(t *testing.T) {
	d := sampleSpecies(t)
	points := []grid.Point{
		{Pos: r3.Vec{X: 1e14}, Dens: 1e10, Tgas: 30, Tdust: 30, DopplerB: 200},
		{Pos: r3.Vec{X: 2e15}, Dens: 1e-30, Tgas: 2.728, Tdust: 2.728, DopplerB: 200, Sink: true},
	}
	g, err := grid.New(points, 2e15, 1e12)
	if err != nil {
		t.Fatalf("grid.New failed: %v", err)
	}
	AttachSpecies(g, d, ConstantAbundance(1e-9))

	ms := &g.Points[0].Mol[0]
	if got := ms.NMol; math.Abs(got-10) > 1e-9 {
		t.Errorf("Expected species density 10, got %v", got)
	}
	expectedBinv := 1 / math.Sqrt(200*200+2*molecule.KBoltz*30/d.AMass)
	if math.Abs(ms.Binv-expectedBinv) > 1e-12 {
		t.Errorf("Expected binv %v, got %v", expectedBinv, ms.Binv)
	}
	if len(ms.Pops) != d.NLev {
		t.Fatalf("Expected %d populations, got %d", d.NLev, len(ms.Pops))
	}
	if sum := ms.Pops[0] + ms.Pops[1]; math.Abs(sum-1) > 1e-12 {
		t.Errorf("Populations do not sum to 1: %v", sum)
	}
	expectedDust := molecule.Planck(d.Freq[0], 30)
	if math.Abs(ms.Dust[0]-expectedDust) > 1e-9*expectedDust {
		t.Errorf("Expected dust %v, got %v", expectedDust, ms.Dust[0])
	}
	if ms.Knu[0] <= 0 {
		t.Errorf("Expected positive dust opacity, got %v", ms.Knu[0])
	}

	// The sink carries no material.
	sink := &g.Points[1].Mol[0]
	if sink.NMol != 0 {
		t.Errorf("Expected zero species density on the sink, got %v", sink.NMol)
	}
	for lev, p := range sink.Pops {
		if p != 0 {
			t.Errorf("Expected zero population on the sink, level %d has %v", lev, p)
		}
	}
}

func TestKappaNuPowerLaw(t *testing.T) {
	lo := KappaNu(115e9)
	hi := KappaNu(230e9)
	if lo <= 0 {
		t.Fatalf("Expected positive opacity, got %v", lo)
	}
	expected := math.Pow(2, kappaBeta)
	if got := hi / lo; math.Abs(got-expected) > 1e-9 {
		t.Errorf("Expected opacity ratio %v for doubled frequency, got %v", expected, got)
	}
}
