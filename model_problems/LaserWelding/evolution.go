package LaserWelding

import (
	"gonum.org/v1/gonum/mat"
)

// Evolution holds one field vector per time level, row k is the field after step k
type Evolution struct {
	M *mat.Dense
}

func NewEvolution(levels, nDofs int) Evolution {
	return Evolution{M: mat.NewDense(levels, nDofs, nil)}
}

func (e Evolution) Len() int {
	r, _ := e.M.Dims()
	return r
}

func (e Evolution) NDofs() int {
	_, c := e.M.Dims()
	return c
}

// Step returns a copy of row k
func (e Evolution) Step(k int) []float64 {
	return mat.Row(nil, k, e.M)
}

func (e Evolution) row(k int) []float64 {
	return e.M.RawRowView(k)
}

func (e Evolution) setStep(k int, v []float64) {
	e.M.SetRow(k, v)
}
