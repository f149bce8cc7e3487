package molecule

import (
	"fmt"
	"math"
)

// Data holds the radiative information for one molecular species:
// level structure and the line list with Einstein coefficients. Level
// and line arrays are index-aligned with the transition tables the
// populations were computed against.
type Data struct {
	Name  string
	AMass float64 // molecular mass in kg

	NLev  int
	NLine int

	// Per level.
	Energy []float64 // level energy in J
	GStat  []float64 // statistical weight

	// Per line.
	Freq    []float64 // rest frequency in Hz
	AEinst  []float64 // spontaneous emission rate in 1/s
	BEinstU []float64 // stimulated emission coefficient
	BEinstL []float64 // absorption coefficient
	Upper   []int     // upper level index
	Lower   []int     // lower level index

	// Normalization of intensities: Norm is the blackbody intensity
	// of the background field at the first transition, so that traced
	// intensities stay of order unity. LocalCMB holds the normalized
	// background per line, added at the far end of every ray.
	Norm     float64
	NormInv  float64
	LocalCMB []float64
}

// NewData assembles a species from its level and line tables and
// derives the stimulated coefficients from the spontaneous ones:
// B_ul = A_ul c^2 / (2 h nu^3) and B_lu = (g_u/g_l) B_ul.
func NewData(name string, amass float64, energy, gstat []float64, freq, aeinst []float64, upper, lower []int) (*Data, error) {
	if len(energy) != len(gstat) {
		return nil, fmt.Errorf("molecule %s: %d energies for %d weights", name, len(energy), len(gstat))
	}
	if len(freq) != len(aeinst) || len(freq) != len(upper) || len(freq) != len(lower) {
		return nil, fmt.Errorf("molecule %s: inconsistent line table lengths", name)
	}
	d := &Data{
		Name:   name,
		AMass:  amass,
		NLev:   len(energy),
		NLine:  len(freq),
		Energy: energy,
		GStat:  gstat,
		Freq:   freq,
		AEinst: aeinst,
		Upper:  upper,
		Lower:  lower,
	}
	d.BEinstU = make([]float64, d.NLine)
	d.BEinstL = make([]float64, d.NLine)
	for i := 0; i < d.NLine; i++ {
		if upper[i] < 0 || upper[i] >= d.NLev || lower[i] < 0 || lower[i] >= d.NLev {
			return nil, fmt.Errorf("molecule %s: line %d links levels %d-%d outside [0,%d)", name, i, upper[i], lower[i], d.NLev)
		}
		nu := d.Freq[i]
		d.BEinstU[i] = d.AEinst[i] * (CLight / nu) * (CLight / nu) / (HPlanck * nu) / 2.0
		d.BEinstL[i] = d.GStat[upper[i]] / d.GStat[lower[i]] * d.BEinstU[i]
	}
	d.InitCMB(LocalCMBTemp)
	return d, nil
}

// InitCMB sets the intensity normalization and the per-line background
// terms for a background temperature tcmb. A non-positive temperature
// turns the background off and leaves intensities unnormalized.
func (d *Data) InitCMB(tcmb float64) {
	d.LocalCMB = make([]float64, d.NLine)
	if tcmb <= 0 || d.NLine == 0 {
		d.Norm = 1
		d.NormInv = 1
		return
	}
	d.Norm = Planck(d.Freq[0], tcmb)
	d.NormInv = 1 / d.Norm
	for i := range d.LocalCMB {
		d.LocalCMB[i] = Planck(d.Freq[i], tcmb) * d.NormInv
	}
}

// NearestLine returns the index of the transition closest in frequency
// to freq.
func (d *Data) NearestLine(freq float64) int {
	best := 0
	bestDiff := math.Abs(freq - d.Freq[0])
	for i := 1; i < d.NLine; i++ {
		if diff := math.Abs(freq - d.Freq[i]); diff < bestDiff {
			best = i
			bestDiff = diff
		}
	}
	return best
}

// LTEPops fills a population vector with Boltzmann weights at
// temperature t. The engine otherwise consumes populations as given;
// this helper only prepares inputs for models without their own.
func (d *Data) LTEPops(t float64) []float64 {
	pops := make([]float64, d.NLev)
	if t <= 0 {
		pops[0] = 1
		return pops
	}
	var z float64
	for i := 0; i < d.NLev; i++ {
		pops[i] = d.GStat[i] * math.Exp(-d.Energy[i]/(KBoltz*t))
		z += pops[i]
	}
	for i := range pops {
		pops[i] /= z
	}
	return pops
}
