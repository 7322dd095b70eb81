package LaserWelding

import (
	"context"
	"math"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/floats"

	"github.com/optipuls/optipuls/utils"
)

/*
IterationRecord is one control of the descent with its cost, GradNorm is NaN until the gradient
there is evaluated. A Stalled record closes a run whose line search found no decrease: it repeats
the previous control and carries no step.
*/
type IterationRecord struct {
	Iteration int
	Control   []float64
	Cost      float64
	GradNorm  float64 // dt Σ g²
	Step      float64 // line search step that produced the control, zero for the initial and a stalled one
	Stalled   bool
}

/*
Optimize runs projected gradient descent on the control box [0,1]^Nt.
Each outer iteration halves the step until the clipped trial strictly lowers the cost,
then doubles it for the next iteration. The first record is the initial control.
Cancellation of ctx ends the loop at the next iteration boundary and is not an error.
*/
func (p *Problem) Optimize(ctx context.Context, control, initial []float64, maxIter int, step float64) (records []IterationRecord, err error) {
	var (
		evo   Evolution
		J     float64
		s     = step
		u     = utils.ClipSlice(append([]float64(nil), control...), 0, 1)
		maxLS = p.ip.MaxLineSearch
		log   = p.log
	)
	if err = p.checkControl(control); err != nil {
		return
	}
	if evo, err = p.SolveForward(u, initial); err != nil {
		return
	}
	J = p.Cost(evo, u)
	records = append(records, IterationRecord{Iteration: 0, Control: u, Cost: J, GradNorm: math.NaN()})

	for i := 1; i <= maxIter; i++ {
		if ctx.Err() != nil {
			log.WithField("i", i).Info("optimization cancelled")
			return records, nil
		}
		var (
			adj  Evolution
			grad []float64
		)
		if adj, err = p.SolveAdjoint(evo, u); err != nil {
			return
		}
		if grad, err = p.Gradient(adj, u); err != nil {
			return
		}
		norm := p.InnerProduct(grad, grad)
		records[len(records)-1].GradNorm = norm
		if norm < p.ip.Tolerance {
			log.WithFields(logrus.Fields{"i": i, "norm": norm}).Info("gradient norm below tolerance")
			return
		}

		var accepted bool
		for halvings := 0; ; halvings++ {
			trial := utils.ClipSlice(floats.AddScaledTo(make([]float64, len(u)), u, -s, grad), 0, 1)
			var evoTrial Evolution
			if evoTrial, err = p.SolveForward(trial, initial); err != nil {
				return
			}
			jTrial := p.Cost(evoTrial, trial)
			log.WithFields(logrus.Fields{"i": i, "s": s, "j": jTrial, "norm": norm}).Info("line search")
			if jTrial < J {
				u, evo, J = trial, evoTrial, jTrial
				accepted = true
				break
			}
			if halvings == maxLS {
				break
			}
			s /= 2
		}
		if !accepted {
			log.WithFields(logrus.Fields{"i": i, "s": s}).Warn("line search found no decrease")
			records = append(records, IterationRecord{
				Iteration: i,
				Control:   append([]float64(nil), u...),
				Cost:      J,
				GradNorm:  norm,
				Stalled:   true,
			})
			return
		}
		records = append(records, IterationRecord{Iteration: i, Control: u, Cost: J, GradNorm: math.NaN(), Step: s})
		s *= 2
	}
	log.WithField("iterations", maxIter).Info("iteration limit reached")
	return
}
