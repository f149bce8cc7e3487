package molecule

import "math"

// Physical constants in SI units.
const (
	CLight  = 2.997924562e8 // speed of light, m/s
	HPlanck = 6.626196e-34  // Planck constant, J s
	KBoltz  = 1.380622e-23  // Boltzmann constant, J/K
	AMU     = 1.6605402e-27 // atomic mass unit, kg
	Grav    = 6.67428e-11   // gravitational constant, m^3/(kg s^2)

	AU   = 1.49598e11    // astronomical unit, m
	PC   = 3.08568025e16 // parsec, m
	MSun = 1.989e30      // solar mass, kg

	// LocalCMBTemp is the present-day cosmic microwave background
	// temperature in K.
	LocalCMBTemp = 2.728
)

// SqrtPi avoids a math.Sqrt call in constant expressions.
const SqrtPi = 1.7724538509055160273

// HPIP collects h*c/(4*pi*sqrt(pi)), the prefactor shared by the line
// emission and absorption coefficients.
const HPIP = HPlanck * CLight / (4 * math.Pi * SqrtPi)

// Planck returns the specific intensity of a blackbody at temperature
// t and frequency freq, in W/(m^2 Hz sr).
func Planck(freq, t float64) float64 {
	if t <= 0 {
		return 0
	}
	x := HPlanck * freq / (KBoltz * t)
	pre := 2 * HPlanck * freq * freq * freq / (CLight * CLight)
	if x > 100 {
		// Wien tail, where exp(x)-1 would overflow long before the
		// intensity itself underflows.
		return pre * math.Exp(-x)
	}
	return pre / (math.Exp(x) - 1)
}
