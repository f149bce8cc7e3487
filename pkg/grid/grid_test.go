package grid

import (
	"math/rand"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

func TestNewRejectsEmptyArena(t *testing.T) {
	if _, err := New(nil, 1, 1e-3); err == nil {
		t.Errorf("Expected error for empty arena")
	}
}

func TestNewRewritesIDs(t *testing.T) {
	points := []Point{
		{Pos: r3.Vec{X: 1}, ID: 99},
		{Pos: r3.Vec{Y: 1}, ID: 99},
	}
	g, err := New(points, 2, 1e-3)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	for i, p := range g.Points {
		if p.ID != i {
			t.Errorf("Point %d: expected ID %d, got %d", i, i, p.ID)
		}
	}
}

func TestNumInterior(t *testing.T) {
	points := []Point{
		{Pos: r3.Vec{X: 0.1}},
		{Pos: r3.Vec{X: 0.2}},
		{Pos: r3.Vec{X: 1}, Sink: true},
	}
	g, err := New(points, 1, 1e-3)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if got := g.NumInterior(); got != 2 {
		t.Errorf("Expected 2 interior points, got %d", got)
	}
}

func TestNearestPoint(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	points := make([]Point, 200)
	for i := range points {
		points[i].Pos = r3.Vec{
			X: 2*rng.Float64() - 1,
			Y: 2*rng.Float64() - 1,
			Z: 2*rng.Float64() - 1,
		}
	}
	g, err := New(points, 2, 1e-3)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	// Brute force comparison on a few probes.
	for probe := 0; probe < 20; probe++ {
		q := r3.Vec{
			X: 2*rng.Float64() - 1,
			Y: 2*rng.Float64() - 1,
			Z: 2*rng.Float64() - 1,
		}
		best, bestD := -1, 0.0
		for i := range g.Points {
			d := r3.Norm2(r3.Sub(g.Points[i].Pos, q))
			if best < 0 || d < bestD {
				best, bestD = i, d
			}
		}
		if got := g.NearestPoint(q); got != best {
			t.Errorf("Probe %d: expected point %d, got %d", probe, best, got)
		}
	}
}

func TestNearestPointOnExactPosition(t *testing.T) {
	// A query placed exactly on a stored point must return that point.
	rng := rand.New(rand.NewSource(11))
	points := make([]Point, 100)
	for i := range points {
		points[i].Pos = r3.Vec{X: rng.Float64(), Y: rng.Float64(), Z: rng.Float64()}
	}
	g, err := New(points, 2, 1e-3)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	for _, i := range []int{0, 17, 55, 99} {
		if got := g.NearestPoint(g.Points[i].Pos); got != i {
			t.Errorf("Expected point %d for its own position, got %d", i, got)
		}
	}
}
