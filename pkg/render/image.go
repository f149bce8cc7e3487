// Package render samples an image of the model: it decides how many
// rays each pixel gets, dispatches ray tracing across a worker pool
// and accumulates the per-pixel spectral cube.
package render

import (
	"fmt"
	"sync"

	"github.com/AFIC42/star-forming-regions/pkg/core"
	"github.com/AFIC42/star-forming-regions/pkg/molecule"
)

// Pixel accumulates the per-channel intensity and optical depth of all
// rays cast through one image pixel.
type Pixel struct {
	Intensity []float64
	Tau       []float64
	NumRays   int
}

// Image describes one spectral-line image cube and owns its pixel
// accumulators. Exactly two of channel count, velocity resolution and
// bandwidth must be set; the third is derived.
type Image struct {
	Pxls     int     // pixels per image side
	ImgRes   float64 // angular pixel size, rad
	Distance float64 // distance to the model, m

	Theta float64 // inclination about the x axis, rad
	Phi   float64 // rotation about the z axis, rad

	Freq      float64 // image center frequency, Hz (0 = from Trans)
	Bandwidth float64 // Hz
	VelRes    float64 // m/s
	NChan     int
	Trans     int // transition index, -1 = nearest line to Freq

	SourceVel float64 // bulk recession velocity, m/s
	DoLine    bool
	Polarized bool

	Rot    core.RotationMatrix
	Pixels []Pixel

	// mu orders accumulator writes against concurrent snapshot reads.
	mu sync.Mutex
}

// IntensitySnapshot returns a copy of every pixel's intensity
// accumulator, taken under the same lock the render workers hold while
// accumulating, so readers of an in-flight render never observe torn
// values.
func (img *Image) IntensitySnapshot() [][]float64 {
	img.mu.Lock()
	defer img.mu.Unlock()
	snap := make([][]float64, len(img.Pixels))
	for i := range img.Pixels {
		snap[i] = append([]float64(nil), img.Pixels[i].Intensity...)
	}
	return snap
}

// PixelSize returns the physical size one pixel projects to at the
// model, in m.
func (img *Image) PixelSize() float64 { return img.Distance * img.ImgRes }

// FixChannels makes frequency, bandwidth, channel count and velocity
// resolution mutually consistent, deriving whichever is unset from the
// others, and resolves the transition actually imaged. Polarized
// images carry the three Stokes parameters as their channels.
func (img *Image) FixChannels(d *molecule.Data) error {
	if img.Pxls <= 0 || img.ImgRes <= 0 || img.Distance <= 0 {
		return fmt.Errorf("render: image geometry incomplete: pxls %d, imgres %g, distance %g",
			img.Pxls, img.ImgRes, img.Distance)
	}

	if img.Freq <= 0 {
		if img.Trans < 0 || img.Trans >= d.NLine {
			return fmt.Errorf("render: image needs a frequency or a transition index")
		}
		img.Freq = d.Freq[img.Trans]
	}

	if img.Polarized {
		img.NChan = 3
	} else {
		switch {
		case img.NChan > 0 && img.VelRes > 0:
			img.Bandwidth = float64(img.NChan) * img.VelRes / molecule.CLight * img.Freq
		case img.NChan == 0 && img.VelRes > 0 && img.Bandwidth > 0:
			img.NChan = int(img.Bandwidth / (img.VelRes / molecule.CLight * img.Freq))
		case img.NChan > 0 && img.VelRes <= 0 && img.Bandwidth > 0:
			img.VelRes = img.Bandwidth * molecule.CLight / img.Freq / float64(img.NChan)
		default:
			return fmt.Errorf("render: set two of nchan, velres, bandwidth")
		}
		if img.NChan <= 0 {
			return fmt.Errorf("render: channel count could not be derived from the bandwidth")
		}
	}

	if img.Trans < 0 {
		img.Trans = d.NearestLine(img.Freq)
	}

	img.Rot = core.NewRotationMatrix(img.Theta, img.Phi)
	img.Pixels = make([]Pixel, img.Pxls*img.Pxls)
	for i := range img.Pixels {
		img.Pixels[i] = Pixel{
			Intensity: make([]float64, img.NChan),
			Tau:       make([]float64, img.NChan),
		}
	}
	return nil
}
