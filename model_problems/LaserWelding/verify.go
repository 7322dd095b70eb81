package LaserWelding

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"

	"github.com/optipuls/optipuls/types"
	"github.com/optipuls/optipuls/utils"
)

type DiffMode uint8

const (
	Forward DiffMode = iota // (J(q+εd) - J(q)) / ε
	Central                 // (J(q+εd) - J(q-εd)) / 2ε
)

func NewDiffMode(label string) (dm DiffMode, err error) {
	switch strings.ToLower(label) {
	case "", "forward":
		dm = Forward
	case "central", "two_sided":
		dm = Central
	default:
		err = fmt.Errorf("%w: unknown difference mode %q", types.ErrInvalidInput, label)
	}
	return
}

func (dm DiffMode) String() string {
	if dm == Central {
		return "central"
	}
	return "forward"
}

type GradientCheck struct {
	Mode        DiffMode
	Direction   []float64
	Directional float64 // dt Σ g d
	Epsilons    []float64
	FiniteDiff  []float64
	AbsErr      []float64
	RelErr      []float64
}

// Direction is a seeded random perturbation of unit time weighted norm, scaled by DirectionScale
func (p *Problem) Direction() (d []float64) {
	var (
		rng   = rand.New(rand.NewSource(p.ip.Seed))
		scale = p.ip.DirectionScale
	)
	if scale == 0 {
		scale = 0.0005 * p.ip.FinalTime
	}
	d = make([]float64, p.ip.Nt)
	for i := range d {
		d[i] = rng.Float64()
	}
	floats.Scale(scale/math.Sqrt(p.InnerProduct(d, d)), d)
	return
}

/*
Verify compares the analytic directional derivative along Direction with finite differences
of the cost for n epsilons, halving from epsInit. The trials run concurrently, each with its own state.
*/
func (p *Problem) Verify(ctx context.Context, control []float64, n int, mode DiffMode, epsInit float64) (gc *GradientCheck, err error) {
	var (
		initial = p.InitialState()
		evo     Evolution
		adj     Evolution
		grad    []float64
		J0      float64
	)
	if err = p.checkControl(control); err != nil {
		return
	}
	if n < 1 || !(epsInit > 0) {
		err = fmt.Errorf("%w: need n >= 1 and epsInit > 0, have %d and %v", types.ErrInvalidInput, n, epsInit)
		return
	}
	if evo, err = p.SolveForward(control, initial); err != nil {
		return
	}
	if adj, err = p.SolveAdjoint(evo, control); err != nil {
		return
	}
	if grad, err = p.Gradient(adj, control); err != nil {
		return
	}
	J0 = p.Cost(evo, control)
	gc = &GradientCheck{
		Mode:       mode,
		Direction:  p.Direction(),
		Epsilons:   make([]float64, n),
		FiniteDiff: make([]float64, n),
		AbsErr:     make([]float64, n),
		RelErr:     make([]float64, n),
	}
	gc.Directional = p.InnerProduct(grad, gc.Direction)
	for k := range gc.Epsilons {
		gc.Epsilons[k] = epsInit * math.Pow(2, -float64(k))
	}

	perturbed := func(eps float64) (J float64, err error) {
		q := floats.AddScaledTo(make([]float64, len(control)), control, eps, gc.Direction)
		var e Evolution
		if e, err = p.SolveForward(q, initial); err != nil {
			return
		}
		return p.Cost(e, q), nil
	}

	var (
		pm     = utils.NewPartitionMap(min(p.ParallelDegree, n), n)
		g, gtx = errgroup.WithContext(ctx)
	)
	for np := 0; np < pm.ParallelDegree; np++ {
		kMin, kMax := pm.GetBucketRange(np)
		g.Go(func() error {
			for k := kMin; k < kMax; k++ {
				if err := gtx.Err(); err != nil {
					return err
				}
				eps := gc.Epsilons[k]
				Jp, err := perturbed(eps)
				if err != nil {
					return err
				}
				switch mode {
				case Central:
					Jm, err := perturbed(-eps)
					if err != nil {
						return err
					}
					gc.FiniteDiff[k] = (Jp - Jm) / (2 * eps)
				default:
					gc.FiniteDiff[k] = (Jp - J0) / eps
				}
			}
			return nil
		})
	}
	if err = g.Wait(); err != nil {
		return nil, err
	}

	for k, eps := range gc.Epsilons {
		gc.AbsErr[k] = math.Abs(gc.Directional - gc.FiniteDiff[k])
		gc.RelErr[k] = gc.AbsErr[k]
		if gc.Directional != 0 {
			gc.RelErr[k] /= math.Abs(gc.Directional)
		}
		p.log.WithFields(logrus.Fields{
			"epsilon":     eps,
			"directional": gc.Directional,
			"finite diff": gc.FiniteDiff[k],
			"abs err":     gc.AbsErr[k],
			"rel err":     gc.RelErr[k],
		}).Info("gradient check")
	}
	return
}

// Orders is the observed convergence order log2(err[k-1]/err[k]) between successive epsilons
func (gc *GradientCheck) Orders() (orders []float64) {
	orders = make([]float64, len(gc.AbsErr))
	orders[0] = math.NaN()
	for k := 1; k < len(gc.AbsErr); k++ {
		orders[k] = math.Log2(gc.AbsErr[k-1] / gc.AbsErr[k])
	}
	return
}
