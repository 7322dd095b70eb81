package LaserWelding

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/optipuls/optipuls/fem"
	"github.com/optipuls/optipuls/utils"
)

// targetNorm is the l^p aggregate of the target values over steps 1..Nt, with the sum of powers
func (p *Problem) targetNorm(evo Evolution) (norm, sum float64) {
	for k := 1; k <= p.ip.Nt; k++ {
		sum += math.Pow(p.TargetValue(evo.row(k)), float64(p.ip.Pow))
	}
	norm = math.Pow(sum, 1/float64(p.ip.Pow))
	return
}

// sensitivity is the shared factor M of the point objective derivative, dJ/dθ_k(x*) = M θ_k(x*)^(p-1)
func (p *Problem) sensitivity(evo Evolution) (M float64) {
	var (
		pw        = float64(p.ip.Pow)
		norm, sum = p.targetNorm(evo)
	)
	M = p.ip.BetaWelding * (norm - p.ip.ThresholdTemp) * math.Pow(sum, 1/pw-1)
	return
}

/*
SolveAdjoint marches the adjoint equations backward from the zero terminal state.
Row k-1 solves

	JN(θ_k-1, θ_k)^T λ_k-1 = -JP(θ_k, θ_k+1)^T λ_k - M θ_k(x*)^(p-1) δ(x*)

where JN and JP linearize the step residual in its next and previous state.
The term in λ_k is absent at k = Nt.
*/
func (p *Problem) SolveAdjoint(evo Evolution, control []float64) (adj Evolution, err error) {
	if err = p.checkControl(control); err != nil {
		return
	}
	if err = p.checkEvolution(evo); err != nil {
		return
	}
	var (
		Nt                = p.ip.Nt
		M                 = p.sensitivity(evo)
		theta, thetaAhead []float64
		target            = p.ip.TargetPoint
	)
	adj = NewEvolution(Nt+1, p.NDofs())
	theta = evo.row(Nt)
	for k := Nt; k >= 1; k-- {
		var (
			thetaPrev = evo.row(k - 1)
			rhs       fem.LinearForm
			lambda    []float64
		)
		if k < Nt {
			coupling := p.Form.JacobianPrev(theta, thetaAhead, control[k]).TMulVec(adj.row(k))
			floats.Scale(-1, coupling)
			rhs = fem.NewLinearForm(coupling)
		}
		ls := fem.NewLinearSystem(p.Form.JacobianNext(thetaPrev, theta, control[k-1]), true, rhs)
		source := -M * utils.POW(p.TargetValue(theta), p.ip.Pow-1)
		if err = ls.AddPointSource(p.Space, target, source); err != nil {
			return Evolution{}, err
		}
		if lambda, err = ls.Solve(); err != nil {
			err = &SolveDivergedError{Step: k, Phase: AdjointPhase, Err: err}
			return Evolution{}, err
		}
		adj.setStep(k-1, lambda)
		// shift the trailing states, the ahead state of step k-1 is the current θ_k
		thetaAhead, theta = theta, thetaPrev
	}
	return
}
