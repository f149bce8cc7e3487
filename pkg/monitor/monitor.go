// Package monitor serves live progress and a preview of an in-flight
// render over HTTP.
package monitor

import (
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"net/http"
	"sync"

	"github.com/AFIC42/star-forming-regions/pkg/core"
	"github.com/AFIC42/star-forming-regions/pkg/render"
)

// Monitor tracks the state of one render. The renderer feeds it
// through Progress; HTTP handlers read it concurrently.
type Monitor struct {
	mu   sync.Mutex
	frac float64
	img  *render.Image
}

// New returns a monitor watching img. The image may still be empty;
// previews reflect whatever the accumulators hold at request time.
func New(img *render.Image) *Monitor {
	return &Monitor{img: img}
}

// Progress records fractional completion; wire it into the renderer's
// progress callback.
func (m *Monitor) Progress(frac float64) {
	m.mu.Lock()
	if frac > m.frac {
		m.frac = frac
	}
	m.mu.Unlock()
}

// statusResponse is the JSON body of the progress endpoint.
type statusResponse struct {
	Fraction float64 `json:"fraction"`
	Pixels   int     `json:"pixels"`
	Channels int     `json:"channels"`
	Done     bool    `json:"done"`
}

func (m *Monitor) handleProgress(w http.ResponseWriter, r *http.Request) {
	m.mu.Lock()
	resp := statusResponse{
		Fraction: m.frac,
		Pixels:   m.img.Pxls,
		Channels: m.img.NChan,
		Done:     m.frac >= 1,
	}
	m.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// handlePreview renders the current peak channel of the in-flight
// accumulators as an 8-bit PNG.
func (m *Monitor) handlePreview(w http.ResponseWriter, r *http.Request) {
	img := m.preview()
	w.Header().Set("Content-Type", "image/png")
	if err := png.Encode(w, img); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (m *Monitor) preview() *image.Gray {
	n := m.img.Pxls
	out := image.NewGray(image.Rect(0, 0, n, n))

	// The render mutates pixels concurrently, so previews work from a
	// snapshot taken under the image's accumulator lock.
	snap := m.img.IntensitySnapshot()
	if len(snap) != n*n || m.img.NChan == 0 {
		return out
	}

	peak := 0.0
	best := 0
	for ch := 0; ch < m.img.NChan; ch++ {
		for ppi := range snap {
			if v := snap[ppi][ch]; v > peak {
				peak = v
				best = ch
			}
		}
	}
	if peak <= 0 {
		return out
	}

	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			v := snap[y*n+x][best] / peak
			if v < 0 {
				v = 0
			} else if v > 1 {
				v = 1
			}
			out.SetGray(x, n-1-y, color.Gray{Y: uint8(math.Round(v * 255))})
		}
	}
	return out
}

// Handler returns the monitor's HTTP routes.
func (m *Monitor) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/progress", m.handleProgress)
	mux.HandleFunc("/api/preview", m.handlePreview)
	return mux
}

// Serve starts the monitor on addr in the background. Errors from the
// listener are reported through the logger; a monitor failure never
// stops a render.
func (m *Monitor) Serve(addr string, logger core.Logger) {
	if logger == nil {
		logger = core.DefaultLogger()
	}
	logger.Printf("render monitor on http://%s\n", addr)
	go func() {
		if err := http.ListenAndServe(addr, m.Handler()); err != nil {
			logger.Printf("render monitor: %v\n", err)
		}
	}()
}

// String implements fmt.Stringer for logging.
func (m *Monitor) String() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return fmt.Sprintf("render %.1f%% complete", 100*m.frac)
}
