package grid

import (
	"bufio"
	"fmt"
	"math"
	"math/rand"
	"os"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"
)

// DefaultDopplerB is the turbulent Doppler b parameter assigned to
// loaded points that do not carry their own, in m/s.
const DefaultDopplerB = 200.0

// LoadTable reads a whitespace-separated grid table with one point per
// row: id, position (m), density (1/m^3), kinetic temperature (K) and
// velocity (m/s). Lines that are empty or start with '#' are skipped.
// The dust temperature is set equal to the gas temperature.
func LoadTable(filename string) ([]Point, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open grid table: %v", err)
	}
	defer file.Close()

	var points []Point
	sc := bufio.NewScanner(file)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 9 {
			return nil, fmt.Errorf("grid table line %d: expected 9 columns, got %d", lineNo, len(fields))
		}
		vals := make([]float64, 8)
		for i := 0; i < 8; i++ {
			v, err := strconv.ParseFloat(fields[i+1], 64)
			if err != nil {
				return nil, fmt.Errorf("grid table line %d: bad value %q: %v", lineNo, fields[i+1], err)
			}
			vals[i] = v
		}
		points = append(points, Point{
			Pos:      r3.Vec{X: vals[0], Y: vals[1], Z: vals[2]},
			Dens:     vals[3],
			Tgas:     vals[4],
			Tdust:    vals[4],
			Vel:      r3.Vec{X: vals[5], Y: vals[6], Z: vals[7]},
			DopplerB: DefaultDopplerB,
		})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read grid table: %v", err)
	}
	if len(points) == 0 {
		return nil, fmt.Errorf("grid table %s holds no points", filename)
	}
	return points, nil
}

// AddSinkShell appends n sink points spread over the sphere of the
// given radius, sampled by rejecting draws outside the unit ball and
// projecting the rest outward. Sink points carry only the background
// temperature tbg and a vanishing density.
func AddSinkShell(points []Point, n int, radius, tbg float64, rng *rand.Rand) []Point {
	for added := 0; added < n; {
		x := 2*rng.Float64() - 1
		y := 2*rng.Float64() - 1
		z := 2*rng.Float64() - 1
		r2 := x*x + y*y + z*z
		if r2 >= 1 || r2 == 0 {
			continue
		}
		scale := radius / math.Sqrt(r2)
		points = append(points, Point{
			Pos:      r3.Vec{X: scale * x, Y: scale * y, Z: scale * z},
			Dens:     1e-30,
			Tgas:     tbg,
			Tdust:    tbg,
			DopplerB: DefaultDopplerB,
			Sink:     true,
		})
		added++
	}
	return points
}

// Resample copies the physical fields of the nearest source point onto
// every non-sink destination point. It bridges externally supplied
// grid tables, which carry fields but no tessellation, onto geometry
// that does.
func Resample(dst []Point, src *Grid) {
	for i := range dst {
		if dst[i].Sink {
			continue
		}
		sp := &src.Points[src.NearestPoint(dst[i].Pos)]
		dst[i].Dens = sp.Dens
		dst[i].Tgas = sp.Tgas
		dst[i].Tdust = sp.Tdust
		dst[i].Vel = sp.Vel
		dst[i].DopplerB = sp.DopplerB
	}
}
