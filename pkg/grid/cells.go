package grid

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/spatial/r3"
)

// Cell is one tetrahedron of a pre-built Delaunay tessellation. Verts
// are point arena indices; face fi is the triangle opposite vertex fi,
// and Neigh[fi] is the cell across that face (-1 on the hull).
type Cell struct {
	ID     int
	Verts  [4]int
	Neigh  [4]int
	Centre r3.Vec
}

// FaceHit records a ray crossing one cell face. Bary holds the
// barycentric coordinates of the crossing on the face triangle, in the
// order FaceVerts lists the face's vertices.
type FaceHit struct {
	Face int
	Bary [3]float64
	Dist float64
}

// Crossing pairs a cell with the face hit where the ray leaves it.
type Crossing struct {
	Cell int
	Exit FaceHit
}

// Tessellation owns the cell arena and the face adjacency derived from
// shared vertex triples.
type Tessellation struct {
	grid  *Grid
	Cells []Cell
	hull  []cellFace
}

type cellFace struct {
	cell int
	face int
}

// NewTessellation links externally built tetrahedra over the grid's
// points. It derives cell-to-cell adjacency and the exterior hull from
// shared faces; a face shared by more than two cells is rejected.
func NewTessellation(g *Grid, verts [][4]int) (*Tessellation, error) {
	t := &Tessellation{grid: g, Cells: make([]Cell, len(verts))}
	for ci, vv := range verts {
		var centre r3.Vec
		for _, vi := range vv {
			if vi < 0 || vi >= len(g.Points) {
				return nil, fmt.Errorf("tessellation: cell %d references point %d outside the arena", ci, vi)
			}
			centre = r3.Add(centre, g.Points[vi].Pos)
		}
		t.Cells[ci] = Cell{
			ID:     ci,
			Verts:  vv,
			Neigh:  [4]int{-1, -1, -1, -1},
			Centre: r3.Scale(0.25, centre),
		}
	}

	faces := make(map[[3]int]cellFace, 2*len(verts))
	for ci := range t.Cells {
		for fi := 0; fi < 4; fi++ {
			key := t.faceKey(ci, fi)
			if prev, seen := faces[key]; seen {
				if t.Cells[prev.cell].Neigh[prev.face] != -1 {
					return nil, fmt.Errorf("tessellation: face %v shared by more than two cells", key)
				}
				t.Cells[prev.cell].Neigh[prev.face] = ci
				t.Cells[ci].Neigh[fi] = prev.cell
			} else {
				faces[key] = cellFace{cell: ci, face: fi}
			}
		}
	}
	for _, cf := range sortedHull(faces, t) {
		t.hull = append(t.hull, cf)
	}
	return t, nil
}

// sortedHull collects unmatched faces in deterministic order so walks
// do not depend on map iteration.
func sortedHull(faces map[[3]int]cellFace, t *Tessellation) []cellFace {
	var hull []cellFace
	for _, cf := range faces {
		if t.Cells[cf.cell].Neigh[cf.face] == -1 {
			hull = append(hull, cf)
		}
	}
	sort.Slice(hull, func(i, j int) bool {
		if hull[i].cell != hull[j].cell {
			return hull[i].cell < hull[j].cell
		}
		return hull[i].face < hull[j].face
	})
	return hull
}

func (t *Tessellation) faceKey(cell, face int) [3]int {
	fv := t.FaceVerts(cell, face)
	if fv[0] > fv[1] {
		fv[0], fv[1] = fv[1], fv[0]
	}
	if fv[1] > fv[2] {
		fv[1], fv[2] = fv[2], fv[1]
	}
	if fv[0] > fv[1] {
		fv[0], fv[1] = fv[1], fv[0]
	}
	return fv
}

// FaceVerts returns the three point indices of face fi, in the order
// the cell stores its vertices. Barycentric coordinates follow this
// order.
func (t *Tessellation) FaceVerts(cell, face int) [3]int {
	var fv [3]int
	k := 0
	for vi := 0; vi < 4; vi++ {
		if vi == face {
			continue
		}
		fv[k] = t.Cells[cell].Verts[vi]
		k++
	}
	return fv
}

const baryEps = 1e-10

// intersectFace runs the Moller-Trumbore test of a ray against face fi
// of a cell. It reports the distance along the ray and the barycentric
// coordinates of the crossing.
func (t *Tessellation) intersectFace(origin, dir r3.Vec, cell, face int) (FaceHit, bool) {
	fv := t.FaceVerts(cell, face)
	v0 := t.grid.Points[fv[0]].Pos
	edge1 := r3.Sub(t.grid.Points[fv[1]].Pos, v0)
	edge2 := r3.Sub(t.grid.Points[fv[2]].Pos, v0)

	pvec := r3.Cross(dir, edge2)
	det := r3.Dot(edge1, pvec)
	if math.Abs(det) < 1e-300 {
		return FaceHit{}, false
	}
	inv := 1 / det
	tvec := r3.Sub(origin, v0)
	u := r3.Dot(tvec, pvec) * inv
	if u < -baryEps || u > 1+baryEps {
		return FaceHit{}, false
	}
	qvec := r3.Cross(tvec, edge1)
	v := r3.Dot(dir, qvec) * inv
	if v < -baryEps || u+v > 1+baryEps {
		return FaceHit{}, false
	}
	dist := r3.Dot(edge2, qvec) * inv
	return FaceHit{Face: face, Bary: [3]float64{1 - u - v, u, v}, Dist: dist}, true
}

// findEntry locates the cell and hull face through which the ray first
// enters the complex.
func (t *Tessellation) findEntry(origin, dir r3.Vec) (int, FaceHit, bool) {
	bestCell := -1
	var best FaceHit
	for _, cf := range t.hull {
		hit, ok := t.intersectFace(origin, dir, cf.cell, cf.face)
		if !ok || hit.Dist < 0 {
			continue
		}
		if bestCell < 0 || hit.Dist < best.Dist {
			bestCell = cf.cell
			best = hit
		}
	}
	if bestCell < 0 {
		return -1, FaceHit{}, false
	}
	return bestCell, best, true
}

// WalkRay traces the ray through the complex, returning the entry face
// hit and the chain of cells crossed with their exit face hits. A ray
// that misses the complex, or a walk that fails to make progress,
// reports ok=false; callers treat that as an empty line of sight.
func (t *Tessellation) WalkRay(origin, dir r3.Vec) (entry FaceHit, chain []Crossing, ok bool) {
	cellID, entry, ok := t.findEntry(origin, dir)
	if !ok {
		return FaceHit{}, nil, false
	}

	entryFace := entry.Face
	prevDist := entry.Dist
	for steps := 0; steps <= len(t.Cells); steps++ {
		exit, found := t.exitFace(origin, dir, cellID, entryFace, prevDist)
		if !found {
			return FaceHit{}, nil, false
		}
		chain = append(chain, Crossing{Cell: cellID, Exit: exit})

		next := t.Cells[cellID].Neigh[exit.Face]
		if next < 0 {
			return entry, chain, true
		}
		entryFace = t.faceToward(next, cellID)
		prevDist = exit.Dist
		cellID = next
	}
	// The chain visited more cells than exist, which a straight ray
	// cannot do.
	return FaceHit{}, nil, false
}

// faceToward returns the index of the face of cell that borders prev.
func (t *Tessellation) faceToward(cell, prev int) int {
	for fi, n := range t.Cells[cell].Neigh {
		if n == prev {
			return fi
		}
	}
	return -1
}

// exitFace finds the face through which the ray leaves the cell it
// entered via entryFace at distance entryDist.
func (t *Tessellation) exitFace(origin, dir r3.Vec, cell, entryFace int, entryDist float64) (FaceHit, bool) {
	slack := 1e-9 * (1 + math.Abs(entryDist))
	found := false
	var best FaceHit
	for fi := 0; fi < 4; fi++ {
		if fi == entryFace {
			continue
		}
		hit, ok := t.intersectFace(origin, dir, cell, fi)
		if !ok || hit.Dist < entryDist-slack {
			continue
		}
		if !found || hit.Dist < best.Dist {
			best = hit
			found = true
		}
	}
	return best, found
}
