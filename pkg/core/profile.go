package core

import "math"

// maxProfileArg is the dimensionless velocity offset beyond which the
// Gaussian line shape is treated as exactly zero.
const maxProfileArg = 2500.0

const (
	expTableSize = 1024
	expMaxArg    = 706 // exp(-706) underflows to ~1e-307
)

var (
	negExpInt  [expMaxArg + 1]float64
	negExpFrac [expTableSize + 1]float64
)

func init() {
	for i := range negExpInt {
		negExpInt[i] = math.Exp(-float64(i))
	}
	for i := range negExpFrac {
		negExpFrac[i] = math.Exp(-float64(i) / expTableSize)
	}
}

// FastExp returns exp(-x) using a table with linear interpolation,
// accurate to a few parts in 1e7. Negative arguments fall back to the
// exact exponential.
func FastExp(x float64) float64 {
	if x < 0 {
		return math.Exp(-x)
	}
	if x >= expMaxArg {
		return 0
	}
	i := int(x)
	f := (x - float64(i)) * expTableSize
	j := int(f)
	t := f - float64(j)
	return negExpInt[i] * (negExpFrac[j]*(1-t) + negExpFrac[j+1]*t)
}

// GaussianLine returns the line-shape weight exp(-(v*binv)^2) for a
// line-of-sight velocity offset v and reciprocal Doppler width binv.
// Offsets with |v|*binv above the profile limit contribute nothing.
func GaussianLine(v, binv float64) float64 {
	val := math.Abs(v) * binv
	if val > maxProfileArg {
		return 0
	}
	return FastExp(val * val)
}
