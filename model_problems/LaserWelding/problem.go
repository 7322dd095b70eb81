package LaserWelding

import (
	"fmt"
	"runtime"

	"github.com/sirupsen/logrus"

	"github.com/optipuls/optipuls/InputParameters"
	"github.com/optipuls/optipuls/fem"
	"github.com/optipuls/optipuls/types"
)

/*
Problem is the optimal control problem of a laser pulse on an axisymmetric plate.
It is read only after construction, independent solves may run concurrently.
*/
type Problem struct {
	ip             InputParameters.InputParameters
	Space          *fem.Space
	Form           *fem.HeatForm
	Coefficients   Coefficients
	Mode           InputParameters.CoefficientMode
	ControlRef     []float64
	Newton         fem.NewtonOptions
	ParallelDegree int // Number of go routines used by Verify
	log            *logrus.Logger
	// barycentric weights of the target point
	targetVerts   [3]int
	targetWeights [3]float64
}

type Option func(p *Problem)

func WithLogger(log *logrus.Logger) Option {
	return func(p *Problem) { p.log = log }
}

func WithNewtonOptions(opts fem.NewtonOptions) Option {
	return func(p *Problem) { p.Newton = opts }
}

// WithControlRef sets the reference control of the regularization term, zero by default
func WithControlRef(ref []float64) Option {
	return func(p *Problem) { p.ControlRef = append([]float64(nil), ref...) }
}

func WithParallelDegree(np int) Option {
	return func(p *Problem) { p.ParallelDegree = np }
}

func NewProblem(ip *InputParameters.InputParameters, material *InputParameters.Material, opts ...Option) (p *Problem, err error) {
	var (
		mesh *fem.AxiMesh
	)
	if err = ip.Validate(); err != nil {
		return
	}
	if material == nil {
		material = InputParameters.DefaultMaterial()
	}
	p = &Problem{
		ip:             *ip,
		Newton:         fem.DefaultNewtonOptions(),
		ParallelDegree: runtime.NumCPU(),
		log:            logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.ControlRef == nil {
		p.ControlRef = make([]float64, ip.Nt)
	}
	if len(p.ControlRef) != ip.Nt {
		err = fmt.Errorf("%w: reference control has length %d, need %d", types.ErrInvalidInput, len(p.ControlRef), ip.Nt)
		return nil, err
	}
	if p.Mode, err = InputParameters.NewCoefficientMode(ip.CoefficientMode); err != nil {
		return nil, err
	}
	if p.Coefficients, err = NewCoefficients(material, ip, p.Mode); err != nil {
		return nil, err
	}
	if mesh, err = fem.NewAxiMesh(ip.R, ip.Z, ip.NR, ip.NZ, ip.LaserRadius); err != nil {
		return nil, err
	}
	p.Space = fem.NewSpace(mesh)
	if p.targetVerts, p.targetWeights, err = p.Space.PointWeights(ip.TargetPoint); err != nil {
		return nil, err
	}
	co := p.Coefficients
	p.Form = fem.NewHeatForm(p.Space, co.VHC, co.KappaRad, co.KappaAx, co.Cooling,
		ip.LaserPD(), ip.Implicitness, ip.Dt())
	p.log.WithFields(logrus.Fields{
		"dofs":  p.Space.NDofs(),
		"cells": len(mesh.EToV),
		"nt":    ip.Nt,
		"mode":  p.Mode,
	}).Debug("problem initialized")
	return
}

// Params returns a copy of the problem parameters
func (p *Problem) Params() InputParameters.InputParameters { return p.ip }

func (p *Problem) Nt() int { return p.ip.Nt }

func (p *Problem) Dt() float64 { return p.ip.Dt() }

func (p *Problem) NDofs() int { return p.Space.NDofs() }

func (p *Problem) Logger() *logrus.Logger { return p.log }

// InitialState is the plate at ambient temperature
func (p *Problem) InitialState() []float64 {
	return p.Space.Constant(p.ip.TempAmbient)
}

// TargetValue is the field value at the target point
func (p *Problem) TargetValue(field []float64) (val float64) {
	for i, v := range p.targetVerts {
		val += p.targetWeights[i] * field[v]
	}
	return
}

func (p *Problem) checkControl(control []float64) error {
	if len(control) != p.ip.Nt {
		return fmt.Errorf("%w: control has length %d, need %d", types.ErrInvalidInput, len(control), p.ip.Nt)
	}
	return nil
}

func (p *Problem) checkEvolution(evo Evolution) error {
	if evo.M == nil || evo.Len() != p.ip.Nt+1 || evo.NDofs() != p.NDofs() {
		var r, c int
		if evo.M != nil {
			r, c = evo.M.Dims()
		}
		return fmt.Errorf("%w: evolution is %d x %d, need %d x %d",
			types.ErrDimensionMismatch, r, c, p.ip.Nt+1, p.NDofs())
	}
	return nil
}
