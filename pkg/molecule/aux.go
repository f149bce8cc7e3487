package molecule

import (
	"fmt"

	"github.com/AFIC42/star-forming-regions/pkg/grid"
)

// AuxState is the per-point, per-species radiative state consumed by
// the tracers. SpecNumDens folds the reciprocal Doppler width into the
// level number densities so the line source functions need no further
// per-point factors.
type AuxState struct {
	Binv        float64
	SpecNumDens []float64 // binv*nmol*pops per level
	Dust        []float64 // per line
	Knu         []float64 // per line
}

// Aux holds the precomputed state for every grid point, addressed by
// arena index and species index.
type Aux struct {
	Mol [][]AuxState
}

// BuildAux precomputes the radiative state of every grid point for the
// given species. Points must carry molecular state for each species;
// sink points may instead carry none and get zero-valued state.
func BuildAux(g *grid.Grid, species []*Data) (*Aux, error) {
	aux := &Aux{Mol: make([][]AuxState, len(g.Points))}
	for pi := range g.Points {
		p := &g.Points[pi]
		states := make([]AuxState, len(species))
		for si, d := range species {
			st := AuxState{
				SpecNumDens: make([]float64, d.NLev),
				Dust:        make([]float64, d.NLine),
				Knu:         make([]float64, d.NLine),
			}
			if si < len(p.Mol) {
				ms := &p.Mol[si]
				if len(ms.Pops) != d.NLev && len(ms.Pops) != 0 {
					return nil, fmt.Errorf("point %d species %s: %d populations for %d levels", pi, d.Name, len(ms.Pops), d.NLev)
				}
				st.Binv = ms.Binv
				for lev := range ms.Pops {
					st.SpecNumDens[lev] = ms.Binv * ms.NMol * ms.Pops[lev]
				}
				copy(st.Dust, ms.Dust)
				copy(st.Knu, ms.Knu)
			} else if !p.Sink {
				return nil, fmt.Errorf("point %d: no molecular state for species %s", pi, d.Name)
			}
			states[si] = st
		}
		aux.Mol[pi] = states
	}
	return aux, nil
}
