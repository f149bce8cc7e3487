package cube

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"

	"golang.org/x/image/tiff"
)

// channelImage maps one channel plane to a 16-bit grayscale image,
// normalized to the given peak. Y flips so north is up.
func (c *Cube) channelImage(ch int, peak float64) *image.Gray16 {
	img := image.NewGray16(image.Rect(0, 0, c.Nx, c.Ny))
	if peak <= 0 {
		peak = 1 // the plane renders black
	}
	scale := 1.0 / peak
	plane := c.Channel(ch)
	for y := 0; y < c.Ny; y++ {
		for x := 0; x < c.Nx; x++ {
			v := plane[y*c.Nx+x] * scale
			if v < 0 {
				v = 0
			} else if v > 1 {
				v = 1
			}
			g := uint16(math.Round(v * 65535))
			img.SetGray16(x, c.Ny-1-y, color.Gray16{Y: g})
		}
	}
	return img
}

// WriteChannelMaps writes one 16-bit grayscale TIFF per channel,
// normalized jointly to the cube peak so channels stay comparable.
func (c *Cube) WriteChannelMaps(prefix string) error {
	peak := 0.0
	for _, v := range c.Intensity {
		if v > peak {
			peak = v
		}
	}

	width := 1
	if c.NChan > 1 {
		width = int(math.Log10(float64(c.NChan-1))) + 1
	}
	for ch := 0; ch < c.NChan; ch++ {
		name := fmt.Sprintf("%s_%0*d.tif", prefix, width, ch)
		f, err := os.Create(name)
		if err != nil {
			return fmt.Errorf("cube: creating %s: %v", name, err)
		}
		err = tiff.Encode(f, c.channelImage(ch, peak), &tiff.Options{Compression: tiff.Deflate})
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return fmt.Errorf("cube: writing %s: %v", name, err)
		}
	}
	return nil
}

// WritePreviewPNG writes the peak channel as a 16-bit PNG, normalized
// to its own maximum.
func (c *Cube) WritePreviewPNG(filename string) error {
	ch := c.PeakChannel()
	peak := 0.0
	for _, v := range c.Channel(ch) {
		if v > peak {
			peak = v
		}
	}

	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("cube: creating %s: %v", filename, err)
	}
	err = png.Encode(f, c.channelImage(ch, peak))
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("cube: writing %s: %v", filename, err)
	}
	return nil
}
