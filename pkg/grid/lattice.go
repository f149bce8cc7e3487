package grid

import (
	"gonum.org/v1/gonum/spatial/r3"
)

// Lattice builds a cubic point lattice covering the model sphere,
// together with the tetrahedral decomposition of its cubes. The
// Voronoi cell of a cubic lattice point is a cube, so the six axis
// links are the exact face neighbors; this serves models that do not
// arrive with an externally generated tessellation. n is the number of
// lattice points per axis. Points whose axis neighbors are not all
// inside the sphere are marked as sinks.
func Lattice(n int, radius float64) (points []Point, cells [][4]int, spacing float64) {
	if n < 2 {
		n = 2
	}
	spacing = 2 * radius / float64(n-1)

	coord := func(i int) float64 { return -radius + float64(i)*spacing }
	idx := make([]int, n*n*n)
	flat := func(i, j, k int) int { return (i*n+j)*n + k }
	for i := range idx {
		idx[i] = -1
	}

	inSphere := func(i, j, k int) bool {
		p := r3.Vec{X: coord(i), Y: coord(j), Z: coord(k)}
		return r3.Norm2(p) <= radius*radius*(1+1e-12)
	}

	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			for k := 0; k < n; k++ {
				if !inSphere(i, j, k) {
					continue
				}
				idx[flat(i, j, k)] = len(points)
				points = append(points, Point{
					Pos:      r3.Vec{X: coord(i), Y: coord(j), Z: coord(k)},
					DopplerB: DefaultDopplerB,
				})
			}
		}
	}

	// Axis neighbor links; lattice points missing any of the six are
	// boundary sinks.
	type offset struct{ di, dj, dk int }
	axes := []offset{{1, 0, 0}, {-1, 0, 0}, {0, 1, 0}, {0, -1, 0}, {0, 0, 1}, {0, 0, -1}}
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			for k := 0; k < n; k++ {
				pi := idx[flat(i, j, k)]
				if pi < 0 {
					continue
				}
				for _, a := range axes {
					ni, nj, nk := i+a.di, j+a.dj, k+a.dk
					if ni < 0 || nj < 0 || nk < 0 || ni >= n || nj >= n || nk >= n || idx[flat(ni, nj, nk)] < 0 {
						points[pi].Sink = true
						continue
					}
					to := idx[flat(ni, nj, nk)]
					points[pi].Neighbors = append(points[pi].Neighbors, Neighbor{
						Dir: r3.Sub(points[to].Pos, points[pi].Pos),
						To:  to,
					})
				}
			}
		}
	}

	// Six tetrahedra per complete cube, splitting along the main
	// diagonal so faces match between adjacent cubes.
	perms := [6][3]offset{
		{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}},
		{{1, 0, 0}, {0, 0, 1}, {0, 1, 0}},
		{{0, 1, 0}, {1, 0, 0}, {0, 0, 1}},
		{{0, 1, 0}, {0, 0, 1}, {1, 0, 0}},
		{{0, 0, 1}, {1, 0, 0}, {0, 1, 0}},
		{{0, 0, 1}, {0, 1, 0}, {1, 0, 0}},
	}
	for i := 0; i+1 < n; i++ {
		for j := 0; j+1 < n; j++ {
			for k := 0; k+1 < n; k++ {
				complete := true
				for di := 0; di <= 1 && complete; di++ {
					for dj := 0; dj <= 1 && complete; dj++ {
						for dk := 0; dk <= 1; dk++ {
							if idx[flat(i+di, j+dj, k+dk)] < 0 {
								complete = false
								break
							}
						}
					}
				}
				if !complete {
					continue
				}
				for _, p := range perms {
					ci, cj, ck := i, j, k
					tet := [4]int{idx[flat(ci, cj, ck)]}
					for step := 0; step < 2; step++ {
						ci += p[step].di
						cj += p[step].dj
						ck += p[step].dk
						tet[step+1] = idx[flat(ci, cj, ck)]
					}
					tet[3] = idx[flat(i+1, j+1, k+1)]
					cells = append(cells, tet)
				}
			}
		}
	}
	return points, cells, spacing
}
