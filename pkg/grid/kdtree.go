package grid

import (
	"gonum.org/v1/gonum/spatial/kdtree"
	"gonum.org/v1/gonum/spatial/r3"
)

// treePoint adapts one arena entry to the kdtree interfaces, keeping
// the arena index alongside the coordinates.
type treePoint struct {
	pos r3.Vec
	idx int
}

// Compare implements the kdtree.Comparable interface.
func (p treePoint) Compare(c kdtree.Comparable, d kdtree.Dim) float64 {
	q := c.(treePoint)
	switch d {
	case 0:
		return p.pos.X - q.pos.X
	case 1:
		return p.pos.Y - q.pos.Y
	case 2:
		return p.pos.Z - q.pos.Z
	default:
		panic("illegal dimension")
	}
}

// Dims returns the number of dimensions indexed.
func (p treePoint) Dims() int { return 3 }

// Distance returns the squared Euclidean distance between two points.
func (p treePoint) Distance(c kdtree.Comparable) float64 {
	q := c.(treePoint)
	return r3.Norm2(r3.Sub(p.pos, q.pos))
}

// treePoints satisfies kdtree.Interface.
type treePoints []treePoint

func (p treePoints) Index(i int) kdtree.Comparable         { return p[i] }
func (p treePoints) Len() int                              { return len(p) }
func (p treePoints) Slice(start, end int) kdtree.Interface { return p[start:end] }

// Pivot implements the kdtree.Interface method.
func (p treePoints) Pivot(d kdtree.Dim) int {
	return kdtree.Partition(treePlane{treePoints: p, Dim: d}, kdtree.MedianOfRandoms(treePlane{treePoints: p, Dim: d}, 100))
}

// treePlane implements sort.Interface and kdtree.SortSlicer.
type treePlane struct {
	treePoints
	kdtree.Dim
}

func (p treePlane) Less(i, j int) bool {
	switch p.Dim {
	case 0:
		return p.treePoints[i].pos.X < p.treePoints[j].pos.X
	case 1:
		return p.treePoints[i].pos.Y < p.treePoints[j].pos.Y
	case 2:
		return p.treePoints[i].pos.Z < p.treePoints[j].pos.Z
	default:
		panic("illegal dimension")
	}
}

func (p treePlane) Slice(start, end int) kdtree.SortSlicer {
	return treePlane{treePoints: p.treePoints[start:end], Dim: p.Dim}
}

func (p treePlane) Swap(i, j int) {
	p.treePoints[i], p.treePoints[j] = p.treePoints[j], p.treePoints[i]
}
