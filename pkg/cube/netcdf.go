package cube

import (
	"fmt"
	"os"

	"github.com/ctessum/cdf"
)

// WriteNetCDF writes the cube to a NetCDF file with dimensions
// (channel, y, x) and the axis metadata as global attributes.
func (c *Cube) WriteNetCDF(filename string) error {
	h := cdf.NewHeader(
		[]string{"channel", "y", "x"},
		[]int{c.NChan, c.Ny, c.Nx})
	h.AddAttribute("", "comment", "synthetic spectral-line cube")
	h.AddAttribute("", "imgres", []float64{c.ImgRes})
	h.AddAttribute("", "velres", []float64{c.VelRes})
	h.AddAttribute("", "freq", []float64{c.Freq})
	h.AddAttribute("", "trans", []int32{int32(c.Trans)})

	h.AddVariable("intensity", []string{"channel", "y", "x"}, []float32{0})
	h.AddAttribute("intensity", "description", "emergent specific intensity")
	h.AddAttribute("intensity", "units", "normalized")
	h.AddVariable("tau", []string{"channel", "y", "x"}, []float32{0})
	h.AddAttribute("tau", "description", "accumulated optical depth")
	h.AddAttribute("tau", "units", "dimensionless")
	h.Define()

	w, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("cube: creating %s: %v", filename, err)
	}
	defer w.Close()

	f, err := cdf.Create(w, h)
	if err != nil {
		return fmt.Errorf("cube: writing header to %s: %v", filename, err)
	}
	if err := writeVar(f, "intensity", c.Intensity); err != nil {
		return fmt.Errorf("cube: %s: %v", filename, err)
	}
	if err := writeVar(f, "tau", c.Tau); err != nil {
		return fmt.Errorf("cube: %s: %v", filename, err)
	}
	if err := cdf.UpdateNumRecs(w); err != nil {
		return fmt.Errorf("cube: finalizing %s: %v", filename, err)
	}
	return nil
}

func writeVar(f *cdf.File, name string, data []float64) error {
	data32 := make([]float32, len(data))
	for i, v := range data {
		data32[i] = float32(v)
	}
	end := f.Header.Lengths(name)
	start := make([]int, len(end))
	w := f.Writer(name, start, end)
	if _, err := w.Write(data32); err != nil {
		return fmt.Errorf("writing variable %s: %v", name, err)
	}
	return nil
}
