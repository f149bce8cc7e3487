package core

import (
	"math"
	"testing"
)

func TestFastExpMatchesExact(t *testing.T) {
	args := []float64{0, 1e-8, 0.001, 0.5, 1, 2.5, 10, 100, 250, 705.9}
	for _, x := range args {
		exact := math.Exp(-x)
		got := FastExp(x)
		if exact == 0 {
			if got != 0 {
				t.Errorf("FastExp(%v): expected 0, got %v", x, got)
			}
			continue
		}
		relErr := math.Abs(got-exact) / exact
		if relErr > 1e-6 {
			t.Errorf("FastExp(%v): relative error %v too large (got %v, want %v)", x, relErr, got, exact)
		}
	}
}

func TestFastExpNegativeArgument(t *testing.T) {
	got := FastExp(-2.0)
	expected := math.Exp(2.0)
	if math.Abs(got-expected) > 1e-12 {
		t.Errorf("Expected %v, got %v", expected, got)
	}
}

func TestFastExpUnderflow(t *testing.T) {
	if got := FastExp(1000); got != 0 {
		t.Errorf("Expected 0 beyond the table range, got %v", got)
	}
}

func TestGaussianLineSymmetry(t *testing.T) {
	binv := 1.0 / 200.0
	for _, v := range []float64{0, 12.5, 150, 1234.5, 4.9e5} {
		plus := GaussianLine(v, binv)
		minus := GaussianLine(-v, binv)
		if plus != minus {
			t.Errorf("Profile not symmetric at v=%v: %v vs %v", v, plus, minus)
		}
	}
}

func TestGaussianLinePeak(t *testing.T) {
	if got := GaussianLine(0, 1.0/200.0); got != 1.0 {
		t.Errorf("Expected unit peak at zero offset, got %v", got)
	}
}

func TestGaussianLineCutoff(t *testing.T) {
	binv := 0.005 // 200 m/s Doppler width
	// |v|*binv just above the limit must give exactly zero.
	vOver := (maxProfileArg + 1) / binv
	if got := GaussianLine(vOver, binv); got != 0 {
		t.Errorf("Expected exact zero beyond cutoff, got %v", got)
	}
	// Just below the limit the weight underflows but the branch taken
	// is still the exponential one; it must not be negative.
	vUnder := (maxProfileArg - 1) / binv
	if got := GaussianLine(vUnder, binv); got < 0 {
		t.Errorf("Expected non-negative weight below cutoff, got %v", got)
	}
}

func TestGaussianLineMatchesExp(t *testing.T) {
	binv := 1.0 / 350.0
	for _, v := range []float64{50, 300, 900} {
		expected := math.Exp(-(v * binv) * (v * binv))
		got := GaussianLine(v, binv)
		if math.Abs(got-expected) > 1e-6*expected {
			t.Errorf("v=%v: expected %v, got %v", v, expected, got)
		}
	}
}
