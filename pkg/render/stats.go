package render

import (
	"gonum.org/v1/gonum/stat"
)

// Stats summarizes one finished render.
type Stats struct {
	TotalRays  int
	NumPixels  int
	NumWorkers int

	MeanRaysPerPixel   float64
	StdDevRaysPerPixel float64

	// Intensity statistics over the peak channel of each pixel, in
	// normalized units.
	PeakIntensity float64
	MeanIntensity float64

	PeakTau float64
}

func newStats(img *Image, totalRays, numWorkers int) *Stats {
	s := &Stats{
		TotalRays:  totalRays,
		NumPixels:  len(img.Pixels),
		NumWorkers: numWorkers,
	}

	rays := make([]float64, len(img.Pixels))
	peaks := make([]float64, len(img.Pixels))
	for i := range img.Pixels {
		pix := &img.Pixels[i]
		rays[i] = float64(pix.NumRays)
		for ch := range pix.Intensity {
			if pix.Intensity[ch] > peaks[i] {
				peaks[i] = pix.Intensity[ch]
			}
			if pix.Tau[ch] > s.PeakTau {
				s.PeakTau = pix.Tau[ch]
			}
		}
		if peaks[i] > s.PeakIntensity {
			s.PeakIntensity = peaks[i]
		}
	}

	s.MeanRaysPerPixel, s.StdDevRaysPerPixel = stat.MeanStdDev(rays, nil)
	s.MeanIntensity = stat.Mean(peaks, nil)
	return s
}
