package core

import "math"

// tauThresh bounds the optical-depth increment below which the
// source-function remnant switches to its series expansion.
const tauThresh = 1e-5

// IntegrateSegment evaluates the attenuation factors for a path
// segment of optical depth dtau. It returns exp(-dtau) together with
// the remnant term (1-exp(-dtau))/dtau, which multiplies the source
// emissivity and stays finite as dtau approaches zero. Negative dtau
// (inverted populations) is handled by the same expressions.
func IntegrateSegment(dtau float64) (expDTau, remnant float64) {
	expDTau = FastExp(dtau)
	if math.Abs(dtau) < tauThresh {
		remnant = 1.0 - 0.5*dtau*(1.0-dtau/3.0)
	} else {
		remnant = (1.0 - expDTau) / dtau
	}
	return expDTau, remnant
}
