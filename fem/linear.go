package fem

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/optipuls/optipuls/types"
	"github.com/optipuls/optipuls/utils"
)

// LinearForm is an assembled right hand side, the zero value is the empty form
type LinearForm struct {
	Values []float64
}

func NewLinearForm(values []float64) LinearForm { return LinearForm{Values: values} }

// Empty reports a form with no terms, which assembles to a zero vector
func (lf LinearForm) Empty() bool { return lf.Values == nil }

// Assemble returns the dense right hand side of length n
func (lf LinearForm) Assemble(n int) (b []float64) {
	b = make([]float64, n)
	if lf.Empty() {
		return
	}
	if len(lf.Values) != n {
		panic(fmt.Errorf("%w: linear form has %d values, system has %d rows", types.ErrDimensionMismatch, len(lf.Values), n))
	}
	copy(b, lf.Values)
	return
}

// SolverKind selects the factorization used by LinearSystem.Solve
type SolverKind uint8

const (
	DirectLU          SolverKind = iota // dense LU of the expanded matrix
	ConjugateGradient                   // Jacobi preconditioned CG on the sparse matrix, LU when it fails
)

// DenseLimit is the largest system NewLinearSystem hands to the dense LU
const DenseLimit = 2000

const cgTolerance = 1.e-13

// LinearSystem is A x = b, or A^T x = b when Transpose is set
type LinearSystem struct {
	A         utils.CSR
	Transpose bool
	B         []float64
	Solver    SolverKind
}

func NewLinearSystem(A utils.CSR, transpose bool, rhs LinearForm) (ls *LinearSystem) {
	nr, nc := A.Dims()
	if nr != nc {
		panic(fmt.Errorf("%w: system matrix is %d x %d", types.ErrDimensionMismatch, nr, nc))
	}
	ls = &LinearSystem{
		A:         A,
		Transpose: transpose,
		B:         rhs.Assemble(nr),
	}
	if nr > DenseLimit {
		ls.Solver = ConjugateGradient
	}
	return
}

// AddPointSource adds a Dirac delta of the given magnitude at point to the right hand side
func (ls *LinearSystem) AddPointSource(space *Space, point [2]float64, magnitude float64) (err error) {
	var (
		verts [3]int
		w     [3]float64
	)
	if verts, w, err = space.PointWeights(point); err != nil {
		return
	}
	for i, v := range verts {
		ls.B[v] += magnitude * w[i]
	}
	return
}

func (ls *LinearSystem) Solve() (x []float64, err error) {
	if ls.Solver == ConjugateGradient {
		var converged bool
		if x, converged = ls.solveCG(); converged {
			return
		}
	}
	return ls.solveLU()
}

func (ls *LinearSystem) solveLU() (x []float64, err error) {
	var (
		n  = len(ls.B)
		lu mat.LU
		xv mat.VecDense
	)
	lu.Factorize(ls.A.Dense())
	if err = lu.SolveVecTo(&xv, ls.Transpose, mat.NewVecDense(n, ls.B)); err != nil {
		var cond mat.Condition
		if !errors.As(err, &cond) {
			return
		}
		err = nil
	}
	x = make([]float64, n)
	copy(x, xv.RawVector().Data)
	if !utils.IsFinite(x) {
		err = fmt.Errorf("linear solve produced non finite values, condition estimate %g", lu.Cond())
	}
	return
}

/*
solveCG runs conjugate gradients preconditioned by the diagonal of A.
It reports false on a non positive diagonal, a non positive curvature p.Ap
or when 2n iterations do not reduce the residual below cgTolerance*|b|.
*/
func (ls *LinearSystem) solveCG() (x []float64, converged bool) {
	var (
		n            = len(ls.B)
		diag         = ls.A.Diagonal()
		r            = make([]float64, n)
		z            = make([]float64, n)
		p            = make([]float64, n)
		Ap           = make([]float64, n)
		bnorm        = floats.Norm(ls.B, 2)
		rho, rhoPrev float64
	)
	x = make([]float64, n)
	if bnorm == 0 {
		return x, true
	}
	for _, d := range diag {
		if !(d > 0) {
			return nil, false
		}
	}
	copy(r, ls.B)
	for it := 0; it < 2*n; it++ {
		floats.DivTo(z, r, diag) // M z = r
		rho = floats.Dot(r, z)
		if it == 0 {
			copy(p, z)
		} else {
			floats.AddScaledTo(p, z, rho/rhoPrev, p)
		}
		clear(Ap)
		ls.A.M.MulVecTo(Ap, ls.Transpose, p)
		pAp := floats.Dot(p, Ap)
		if !(pAp > 0) {
			return nil, false
		}
		alpha := rho / pAp
		floats.AddScaled(x, alpha, p)
		floats.AddScaled(r, -alpha, Ap)
		if floats.Norm(r, 2) <= cgTolerance*bnorm {
			return x, true
		}
		rhoPrev = rho
	}
	return nil, false
}
