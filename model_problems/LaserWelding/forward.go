package LaserWelding

import (
	"fmt"

	"github.com/optipuls/optipuls/types"
)

// SolveForward integrates the heat equation over the Nt steps of the control, row 0 is the initial state
func (p *Problem) SolveForward(control, initial []float64) (evo Evolution, err error) {
	var (
		Nt   = p.ip.Nt
		prev []float64
	)
	if err = p.checkControl(control); err != nil {
		return
	}
	if len(initial) != p.NDofs() {
		err = fmt.Errorf("%w: initial state has %d values, need %d", types.ErrDimensionMismatch, len(initial), p.NDofs())
		return
	}
	evo = NewEvolution(Nt+1, p.NDofs())
	evo.setStep(0, initial)
	prev = initial
	for k := 0; k < Nt; k++ {
		var next []float64
		if next, _, err = p.Form.SolveNonlinear(prev, control[k], p.Newton); err != nil {
			err = &SolveDivergedError{Step: k + 1, Phase: ForwardPhase, Err: err}
			return Evolution{}, err
		}
		evo.setStep(k+1, next)
		prev = next
	}
	return
}
