package cube

import (
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/ctessum/cdf"
	"golang.org/x/image/tiff"

	"github.com/AFIC42/star-forming-regions/pkg/render"
)

// testImage builds a 4x4, 3-channel rendered image with a known
// intensity pattern: pixel ppi, channel ch holds ppi*10+ch.
func testImage(t *testing.T) *render.Image {
	t.Helper()
	img := &render.Image{
		Pxls:   4,
		NChan:  3,
		ImgRes: 1e-6,
		VelRes: 100,
		Freq:   100e9,
		Trans:  0,
	}
	img.Pixels = make([]render.Pixel, 16)
	for ppi := range img.Pixels {
		img.Pixels[ppi] = render.Pixel{
			Intensity: make([]float64, 3),
			Tau:       make([]float64, 3),
			NumRays:   1,
		}
		for ch := 0; ch < 3; ch++ {
			img.Pixels[ppi].Intensity[ch] = float64(ppi*10 + ch)
			img.Pixels[ppi].Tau[ch] = float64(ch)
		}
	}
	return img
}

func TestFromImageLayout(t *testing.T) {
	c, err := FromImage(testImage(t))
	if err != nil {
		t.Fatalf("FromImage failed: %v", err)
	}
	if c.Nx != 4 || c.Ny != 4 || c.NChan != 3 {
		t.Fatalf("Unexpected cube shape %dx%dx%d", c.Nx, c.Ny, c.NChan)
	}
	// Channel-major, pixel order within a plane.
	if got := c.Channel(1)[5]; got != 51 {
		t.Errorf("Expected pixel 5 channel 1 to hold 51, got %v", got)
	}
	if got := c.Tau[2*16+7]; got != 2 {
		t.Errorf("Expected tau plane 2 to hold 2, got %v", got)
	}
}

func TestFromImageRejectsUnrendered(t *testing.T) {
	if _, err := FromImage(&render.Image{Pxls: 4}); err == nil {
		t.Errorf("Expected an error for an unrendered image")
	}
}

func TestPeakChannel(t *testing.T) {
	c, err := FromImage(testImage(t))
	if err != nil {
		t.Fatalf("FromImage failed: %v", err)
	}
	// The last pixel of the last channel holds the maximum.
	if got := c.PeakChannel(); got != 2 {
		t.Errorf("Expected peak channel 2, got %d", got)
	}
}

func TestWriteNetCDFRoundTrip(t *testing.T) {
	c, err := FromImage(testImage(t))
	if err != nil {
		t.Fatalf("FromImage failed: %v", err)
	}
	path := filepath.Join(t.TempDir(), "cube.nc")
	if err := c.WriteNetCDF(path); err != nil {
		t.Fatalf("WriteNetCDF failed: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer f.Close()
	nc, err := cdf.Open(f)
	if err != nil {
		t.Fatalf("cdf.Open failed: %v", err)
	}
	dims := nc.Header.Lengths("intensity")
	if len(dims) != 3 || dims[0] != 3 || dims[1] != 4 || dims[2] != 4 {
		t.Errorf("Unexpected intensity dimensions %v", dims)
	}

	r := nc.Reader("intensity", nil, nil)
	buf := make([]float32, 3*4*4)
	if _, err := r.Read(buf); err != nil {
		t.Fatalf("reading intensity: %v", err)
	}
	if got := buf[16+5]; got != 51 {
		t.Errorf("Expected value 51 at plane 1 pixel 5, got %v", got)
	}
}

func TestWriteChannelMaps(t *testing.T) {
	c, err := FromImage(testImage(t))
	if err != nil {
		t.Fatalf("FromImage failed: %v", err)
	}
	prefix := filepath.Join(t.TempDir(), "chan")
	if err := c.WriteChannelMaps(prefix); err != nil {
		t.Fatalf("WriteChannelMaps failed: %v", err)
	}
	for ch := 0; ch < 3; ch++ {
		name := prefix + "_" + string(rune('0'+ch)) + ".tif"
		f, err := os.Open(name)
		if err != nil {
			t.Fatalf("Missing channel map %s: %v", name, err)
		}
		img, err := tiff.Decode(f)
		f.Close()
		if err != nil {
			t.Fatalf("Decoding %s: %v", name, err)
		}
		if b := img.Bounds(); b.Dx() != 4 || b.Dy() != 4 {
			t.Errorf("Channel map %s has bounds %v", name, b)
		}
	}
}

func TestWritePreviewPNG(t *testing.T) {
	c, err := FromImage(testImage(t))
	if err != nil {
		t.Fatalf("FromImage failed: %v", err)
	}
	path := filepath.Join(t.TempDir(), "peak.png")
	if err := c.WritePreviewPNG(path); err != nil {
		t.Fatalf("WritePreviewPNG failed: %v", err)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("Decoding preview: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 4 || b.Dy() != 4 {
		t.Errorf("Preview has bounds %v", b)
	}
}
