// Package cube extracts the rendered spectral cube from an image and
// serializes it: a NetCDF file with the full intensity and optical
// depth arrays, 16-bit grayscale channel maps and a preview of the
// peak channel.
package cube

import (
	"fmt"

	"github.com/AFIC42/star-forming-regions/pkg/render"
)

// Cube is a dense width x height x channel block of intensities and
// optical depths plus the axis metadata the files need. Data is laid
// out channel-major, x fastest.
type Cube struct {
	Nx, Ny, NChan int

	Intensity []float64
	Tau       []float64

	ImgRes    float64 // angular pixel size, rad
	VelRes    float64 // channel width, m/s
	Freq      float64 // image center frequency, Hz
	Trans     int     // transition actually imaged
	Polarized bool
}

// FromImage copies a rendered image into a dense cube.
func FromImage(img *render.Image) (*Cube, error) {
	if len(img.Pixels) != img.Pxls*img.Pxls || img.NChan <= 0 {
		return nil, fmt.Errorf("cube: image has not been rendered")
	}
	c := &Cube{
		Nx:        img.Pxls,
		Ny:        img.Pxls,
		NChan:     img.NChan,
		Intensity: make([]float64, img.Pxls*img.Pxls*img.NChan),
		Tau:       make([]float64, img.Pxls*img.Pxls*img.NChan),
		ImgRes:    img.ImgRes,
		VelRes:    img.VelRes,
		Freq:      img.Freq,
		Trans:     img.Trans,
		Polarized: img.Polarized,
	}
	for ppi := range img.Pixels {
		pix := &img.Pixels[ppi]
		for ch := 0; ch < c.NChan; ch++ {
			i := ch*c.Nx*c.Ny + ppi
			c.Intensity[i] = pix.Intensity[ch]
			c.Tau[i] = pix.Tau[ch]
		}
	}
	return c, nil
}

// Channel returns the intensity plane of one channel, x fastest.
func (c *Cube) Channel(ch int) []float64 {
	n := c.Nx * c.Ny
	return c.Intensity[ch*n : (ch+1)*n]
}

// PeakChannel returns the channel holding the highest intensity.
func (c *Cube) PeakChannel() int {
	best, peak := 0, 0.0
	for ch := 0; ch < c.NChan; ch++ {
		for _, v := range c.Channel(ch) {
			if v > peak {
				peak = v
				best = ch
			}
		}
	}
	return best
}
