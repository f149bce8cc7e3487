package grid

import (
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

func TestLatticeNeighborsAndSinks(t *testing.T) {
	points, _, spacing := Lattice(9, 1.0)
	if len(points) == 0 {
		t.Fatalf("Lattice produced no points")
	}
	expectedSpacing := 2.0 / 8.0
	if spacing != expectedSpacing {
		t.Errorf("Expected spacing %v, got %v", expectedSpacing, spacing)
	}

	interior := 0
	for i, p := range points {
		if r3.Norm(p.Pos) > 1.0+1e-9 {
			t.Errorf("Point %d outside the sphere: %v", i, p.Pos)
		}
		if !p.Sink {
			interior++
			if len(p.Neighbors) != 6 {
				t.Errorf("Interior point %d has %d neighbors, expected 6", i, len(p.Neighbors))
			}
		}
		for _, nb := range p.Neighbors {
			step := r3.Sub(points[nb.To].Pos, p.Pos)
			if r3.Norm(r3.Sub(step, nb.Dir)) > 1e-12 {
				t.Errorf("Point %d: neighbor direction %v does not match step %v", i, nb.Dir, step)
			}
		}
	}
	if interior == 0 {
		t.Errorf("Expected interior points in the lattice")
	}
	// The center of an odd lattice is a point and must be interior.
	found := false
	for _, p := range points {
		if r3.Norm(p.Pos) < 1e-12 {
			found = true
			if p.Sink {
				t.Errorf("Center point marked sink")
			}
		}
	}
	if !found {
		t.Errorf("Center point missing from the lattice")
	}
}

func TestLatticeTessellates(t *testing.T) {
	points, cells, spacing := Lattice(5, 1.0)
	if len(cells) == 0 {
		t.Fatalf("Lattice produced no cells")
	}
	if len(cells)%6 != 0 {
		t.Errorf("Expected six tetrahedra per cube, got %d cells", len(cells))
	}
	g, err := New(points, 1.0, spacing)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if _, err := NewTessellation(g, cells); err != nil {
		t.Fatalf("Lattice cells do not tessellate: %v", err)
	}
}
