package grid

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/kdtree"
	"gonum.org/v1/gonum/spatial/r3"
)

// Grid is the unstructured model sample set: a flat point arena with a
// spatial index for nearest-point queries. Radius bounds the model
// sphere and MinScale is the smallest length the sampling resolves.
type Grid struct {
	Points   []Point
	Radius   float64
	MinScale float64

	numInterior int
	tree        *kdtree.Tree
}

// New assembles a grid from a point arena. Point IDs are rewritten to
// match arena positions.
func New(points []Point, radius, minScale float64) (*Grid, error) {
	if len(points) == 0 {
		return nil, fmt.Errorf("grid: no points")
	}
	if radius <= 0 || minScale <= 0 {
		return nil, fmt.Errorf("grid: radius %g and min scale %g must be positive", radius, minScale)
	}
	g := &Grid{Points: points, Radius: radius, MinScale: minScale}
	for i := range g.Points {
		g.Points[i].ID = i
		if !g.Points[i].Sink {
			g.numInterior++
		}
	}
	g.buildIndex()
	return g, nil
}

func (g *Grid) buildIndex() {
	pts := make(treePoints, len(g.Points))
	for i := range g.Points {
		pts[i] = treePoint{pos: g.Points[i].Pos, idx: i}
	}
	g.tree = kdtree.New(pts, true)
}

// NearestPoint returns the arena index of the grid point closest to
// pos. A query at an exact point position returns that point.
func (g *Grid) NearestPoint(pos r3.Vec) int {
	got, _ := g.tree.Nearest(treePoint{pos: pos})
	return got.(treePoint).idx
}

// NumInterior returns the number of non-sink points.
func (g *Grid) NumInterior() int { return g.numInterior }
