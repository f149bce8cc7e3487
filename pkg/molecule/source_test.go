package molecule

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

func TestContinuumSource(t *testing.T) {
	st := &AuxState{Dust: []float64{2.5}, Knu: []float64{0.5}}
	var jnu, alpha float64
	ContinuumSource(st, 0, &jnu, &alpha)
	if math.Abs(jnu-1.25) > 1e-12 {
		t.Errorf("Expected jnu 1.25, got %v", jnu)
	}
	if math.Abs(alpha-0.5) > 1e-12 {
		t.Errorf("Expected alpha 0.5, got %v", alpha)
	}
	// Accumulation adds to existing values.
	ContinuumSource(st, 0, &jnu, &alpha)
	if math.Abs(jnu-2.5) > 1e-12 || math.Abs(alpha-1.0) > 1e-12 {
		t.Errorf("Expected accumulation, got jnu %v alpha %v", jnu, alpha)
	}
}

func TestLineSourceLTEYieldsPlanck(t *testing.T) {
	// At LTE the ratio of line emissivity to line opacity must equal
	// the Planck function at the gas temperature, independent of the
	// line-shape weight.
	d := testSpecies(t)
	temp := 40.0
	pops := d.LTEPops(temp)

	nmol, binv := 1e8, 1.0/250.0
	st := &AuxState{
		Binv:        binv,
		SpecNumDens: []float64{binv * nmol * pops[0], binv * nmol * pops[1]},
	}
	var jnu, alpha float64
	d.LineSource(st, 0.37, 0, &jnu, &alpha)
	if alpha <= 0 {
		t.Fatalf("Expected positive opacity at LTE, got %v", alpha)
	}
	got := jnu / alpha
	expected := Planck(d.Freq[0], temp)
	if math.Abs(got-expected)/expected > 1e-9 {
		t.Errorf("Expected source function %v, got %v", expected, got)
	}
}

func TestLineSourceInvertedPopulations(t *testing.T) {
	d := testSpecies(t)
	// Put everything in the upper level: stimulated emission wins and
	// the opacity must go negative.
	st := &AuxState{SpecNumDens: []float64{0, 1e5}}
	var jnu, alpha float64
	d.LineSource(st, 1.0, 0, &jnu, &alpha)
	if alpha >= 0 {
		t.Errorf("Expected negative opacity for inverted populations, got %v", alpha)
	}
	if jnu <= 0 {
		t.Errorf("Expected positive emissivity, got %v", jnu)
	}
}

func TestPolarizedSourceFieldInSky(t *testing.T) {
	// Field along x lies in the plane of the sky for any inclination:
	// cos2gamma=1, chi=0, so Q carries the full polarized fraction.
	st := &AuxState{Dust: []float64{2.0}, Knu: []float64{0.25}}
	snu, dtau := PolarizedSource(r3.Vec{X: 1}, st, 0, 0.6, 2.0)
	jnu := 2.0
	expectedI := jnu * (1 - MaxPolarization/3)
	if math.Abs(snu[0]-expectedI) > 1e-12 {
		t.Errorf("Expected I %v, got %v", expectedI, snu[0])
	}
	if math.Abs(snu[1]-jnu*MaxPolarization) > 1e-12 {
		t.Errorf("Expected Q %v, got %v", jnu*MaxPolarization, snu[1])
	}
	if math.Abs(snu[2]) > 1e-12 {
		t.Errorf("Expected zero U, got %v", snu[2])
	}
	if math.Abs(dtau-0.5) > 1e-12 {
		t.Errorf("Expected dtau 0.5, got %v", dtau)
	}
}

func TestPolarizedSourceFieldAlongSight(t *testing.T) {
	// At zero inclination a field along z points at the observer:
	// no preferred sky direction, Q=U=0 and I is enhanced.
	st := &AuxState{Dust: []float64{1.0}, Knu: []float64{1.0}}
	snu, _ := PolarizedSource(r3.Vec{Z: 1}, st, 0, 0, 1.0)
	if math.Abs(snu[1]) > 1e-12 || math.Abs(snu[2]) > 1e-12 {
		t.Errorf("Expected unpolarized emission, got Q %v U %v", snu[1], snu[2])
	}
	expectedI := 1 + MaxPolarization*2.0/3.0
	if math.Abs(snu[0]-expectedI) > 1e-12 {
		t.Errorf("Expected I %v, got %v", expectedI, snu[0])
	}
}

func TestPolarizedSourceInclinationRotatesField(t *testing.T) {
	// A field along z viewed at 90 degrees inclination lands in the
	// sky plane along y, so Q flips sign relative to a field along x.
	st := &AuxState{Dust: []float64{1.0}, Knu: []float64{1.0}}
	snu, _ := PolarizedSource(r3.Vec{Z: 1}, st, 0, math.Pi/2, 1.0)
	if snu[1] >= 0 {
		t.Errorf("Expected negative Q for a field along the sky y axis, got %v", snu[1])
	}
	if math.Abs(snu[2]) > 1e-9 {
		t.Errorf("Expected zero U, got %v", snu[2])
	}
}

func TestPolarizedSourceZeroField(t *testing.T) {
	st := &AuxState{Dust: []float64{1.0}, Knu: []float64{1.0}}
	snu, _ := PolarizedSource(r3.Vec{}, st, 0, 0.3, 1.0)
	if snu[1] != 0 || snu[2] != 0 {
		t.Errorf("Expected no polarization without a field, got Q %v U %v", snu[1], snu[2])
	}
}
