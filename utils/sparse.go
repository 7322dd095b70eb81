package utils

import (
	"github.com/james-bowman/sparse"
	"gonum.org/v1/gonum/mat"
)

// DOK accumulates finite element contributions before conversion to CSR
type DOK struct {
	M *sparse.DOK
}

func NewDOK(nr, nc int) (R DOK) {
	R = DOK{sparse.NewDOK(nr, nc)}
	return
}

func (m DOK) Dims() (r, c int)    { return m.M.Dims() }
func (m DOK) At(i, j int) float64 { return m.M.At(i, j) }

// Add accumulates val into (i,j)
func (m DOK) Add(i, j int, val float64) {
	if val == 0 {
		return
	}
	m.M.Set(i, j, m.M.At(i, j)+val)
}

func (m DOK) ToCSR() CSR {
	return CSR{M: m.M.ToCSR()}
}

type CSR struct {
	M *sparse.CSR
}

func (m CSR) Dims() (r, c int)    { return m.M.Dims() }
func (m CSR) At(i, j int) float64 { return m.M.At(i, j) }

// Diagonal returns a copy of the main diagonal
func (m CSR) Diagonal() (d []float64) {
	nr, _ := m.Dims()
	d = make([]float64, nr)
	for i := range d {
		d[i] = m.M.At(i, i)
	}
	return
}

// Dense expands to a dense matrix for direct factorization
func (m CSR) Dense() *mat.Dense {
	return mat.DenseCopyOf(m.M)
}

// MulVec returns A*x
func (m CSR) MulVec(x []float64) (y []float64) {
	nr, _ := m.Dims()
	y = make([]float64, nr)
	m.M.MulVecTo(y, false, x)
	return
}

// TMulVec returns A^T*x without forming the transpose
func (m CSR) TMulVec(x []float64) (y []float64) {
	_, nc := m.Dims()
	y = make([]float64, nc)
	m.M.MulVecTo(y, true, x)
	return
}
