package fem

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/optipuls/optipuls/utils"
)

type NewtonOptions struct {
	MaxIterations int
	RelTol        float64 // increment tolerance relative to max(1, |θ'|)
}

func DefaultNewtonOptions() NewtonOptions {
	return NewtonOptions{MaxIterations: 25, RelTol: 1.e-10}
}

type NonConvergenceError struct {
	Iterations int
	Increment  float64
}

func (e *NonConvergenceError) Error() string {
	return fmt.Sprintf("newton iteration did not converge after %d iterations, last increment %g",
		e.Iterations, e.Increment)
}

/*
SolveNonlinear finds θ' with F(θ, θ', q) = 0 starting from θ' = θ.
Each iteration solves J δ = -F with J = dF/dθ'.
*/
func (hf *HeatForm) SolveNonlinear(prev []float64, q float64, opts NewtonOptions) (next []float64, iters int, err error) {
	var (
		inc = math.Inf(1)
	)
	next = make([]float64, len(prev))
	copy(next, prev)
	for iters = 1; iters <= opts.MaxIterations; iters++ {
		var (
			F     = hf.Residual(prev, next, q)
			delta []float64
		)
		floats.Scale(-1, F)
		ls := NewLinearSystem(hf.JacobianNext(prev, next, q), false, NewLinearForm(F))
		if delta, err = ls.Solve(); err != nil {
			err = &NonConvergenceError{Iterations: iters, Increment: inc}
			return
		}
		floats.Add(next, delta)
		inc = floats.Norm(delta, math.Inf(1))
		if !utils.IsFinite(inc) {
			break
		}
		if inc <= opts.RelTol*math.Max(1, floats.Norm(next, math.Inf(1))) {
			return
		}
	}
	err = &NonConvergenceError{Iterations: min(iters, opts.MaxIterations), Increment: inc}
	return
}
