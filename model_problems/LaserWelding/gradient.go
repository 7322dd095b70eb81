package LaserWelding

import (
	"fmt"

	"gonum.org/v1/gonum/floats"

	"github.com/optipuls/optipuls/types"
)

// Gradient is the L2 in time representative of dJ/dq: -P ∫_laser λ_i r ds + α(q_i - q_ref,i)
func (p *Problem) Gradient(adj Evolution, control []float64) (grad []float64, err error) {
	if err = p.checkControl(control); err != nil {
		return
	}
	if err = p.checkEvolution(adj); err != nil {
		return
	}
	var (
		P = p.ip.LaserPD()
	)
	grad = make([]float64, p.ip.Nt)
	for i := range grad {
		grad[i] = -P * p.Space.BoundaryIntegral(adj.row(i), types.BC_Laser)
		if p.ip.Alpha != 0 {
			grad[i] += p.ip.Alpha * (control[i] - p.ControlRef[i])
		}
	}
	return
}

// Cost is ½βw(‖θ(x*)‖_p - θthr)² + ½α dt Σ(q - q_ref)²
func (p *Problem) Cost(evo Evolution, control []float64) (J float64) {
	if err := p.checkEvolution(evo); err != nil {
		panic(err)
	}
	if err := p.checkControl(control); err != nil {
		panic(err)
	}
	norm, _ := p.targetNorm(evo)
	dev := norm - p.ip.ThresholdTemp
	J = 0.5 * p.ip.BetaWelding * dev * dev
	if p.ip.Alpha != 0 {
		d := floats.SubTo(make([]float64, len(control)), control, p.ControlRef)
		J += 0.5 * p.ip.Alpha * p.Dt() * floats.Dot(d, d)
	}
	return
}

// InnerProduct is the time weighted dt Σ a_i b_i
func (p *Problem) InnerProduct(a, b []float64) float64 {
	if len(a) != len(b) {
		panic(fmt.Errorf("%w: lengths %d and %d", types.ErrDimensionMismatch, len(a), len(b)))
	}
	return floats.Dot(a, b) * p.Dt()
}
