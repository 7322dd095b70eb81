package fem

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"

	"github.com/optipuls/optipuls/spline"
	"github.com/optipuls/optipuls/types"
	"github.com/optipuls/optipuls/utils"
)

func newTestSpace(t *testing.T) *Space {
	m, err := NewAxiMesh(1, 0.5, 4, 2, 0.5)
	require.NoError(t, err)
	return NewSpace(m)
}

func nonlinearForm(sp *Space) *HeatForm {
	var (
		vhc     = spline.NewPoly(1, 2, 0.3)
		kr      = spline.NewPoly(1, 1, 0.2, 0.05)
		kz      = spline.NewPoly(0, 0.7, 0.1)
		cooling = spline.NewPoly(1, 0, -0.5, -0.1, 0.02)
	)
	return NewHeatForm(sp, vhc, kr, kz, cooling, 3, 0.7, 0.05)
}

func TestAxiMesh(t *testing.T) {
	_, err := NewAxiMesh(1, 1, 0, 2, 0.5)
	assert.True(t, errors.Is(err, types.ErrInvalidInput))
	_, err = NewAxiMesh(1, 1, 2, 2, 2)
	assert.True(t, errors.Is(err, types.ErrInvalidInput))

	sp := newTestSpace(t)
	m := sp.Mesh
	assert.Equal(t, 15, sp.NDofs())
	assert.Equal(t, 16, len(m.EToV))
	assert.Equal(t, 12, len(m.Edges))
	count := make(map[types.BCFLAG]int)
	for _, e := range m.Edges {
		count[e.Marker]++
	}
	assert.Equal(t, map[types.BCFLAG]int{
		types.BC_Laser: 2, types.BC_Cooling: 6, types.BC_SymAxis: 2, types.BC_None: 2,
	}, count)
	assert.Equal(t, 2, len(m.EdgesByMarker(types.BC_Laser)))

	var area, moment float64
	for k := range m.EToV {
		area += sp.Area[k]
		moment += sp.Area[k] * sp.RC[k]
	}
	assert.InDelta(t, 0.5, area, 1.e-14)
	assert.InDelta(t, 0.25, moment, 1.e-14) // ∫ r dA = R^2 Z / 2
}

func TestPointEvaluation(t *testing.T) {
	sp := newTestSpace(t)
	lin := sp.Interpolate(func(r, z float64) float64 { return 2 + 3*r - z })
	for _, p := range [][2]float64{{0, 0.25}, {0.3, 0.1}, {1, 0.5}, {0.61, 0.37}} {
		verts, w, err := sp.PointWeights(p)
		require.NoError(t, err)
		assert.InDelta(t, 1, w[0]+w[1]+w[2], 1.e-14)
		for i := range verts {
			assert.True(t, w[i] >= -1.e-10)
		}
		val, err := sp.Eval(lin, p)
		require.NoError(t, err)
		assert.InDelta(t, 2+3*p[0]-p[1], val, 1.e-13)
	}
	_, err := sp.Eval(lin, [2]float64{1.5, 0.1})
	assert.True(t, errors.Is(err, types.ErrInvalidInput))
	_, err = sp.Eval(lin[:3], [2]float64{0.5, 0.1})
	assert.True(t, errors.Is(err, types.ErrDimensionMismatch))

	assert.InDelta(t, 0.125, sp.BoundaryIntegral(sp.Constant(1), types.BC_Laser), 1.e-14)
	assert.InDelta(t, 0, sp.BoundaryIntegral(sp.Constant(1), types.BC_SymAxis), 1.e-14)
}

func TestResidualBalance(t *testing.T) {
	// Hat functions sum to one: conduction cancels and the residual totals the energy balance
	var (
		sp   = newTestSpace(t)
		hf   = NewHeatForm(sp, spline.Const(2), spline.Const(1), spline.Const(1), spline.Const(0), 3, 1, 0.1)
		prev = sp.Interpolate(func(r, z float64) float64 { return r * z })
		next = sp.Interpolate(func(r, z float64) float64 { return 1 + r*z })
		q    = 0.5
	)
	var sum float64
	for _, f := range hf.Residual(prev, next, q) {
		sum += f
	}
	// ∫ 2 * 1 * r dx - dt q P ∫_laser r ds
	assert.InDelta(t, 2*0.25-0.1*q*3*0.125, sum, 1.e-13)
}

func TestJacobians(t *testing.T) {
	var (
		sp   = newTestSpace(t)
		hf   = nonlinearForm(sp)
		rng  = rand.New(rand.NewSource(3))
		n    = sp.NDofs()
		prev = make([]float64, n)
		next = make([]float64, n)
		d    = make([]float64, n)
		h    = 1.e-6
		q    = 0.8
	)
	for i := 0; i < n; i++ {
		prev[i] = 1 + 0.3*rng.Float64()
		next[i] = 1.1 + 0.3*rng.Float64()
		d[i] = rng.Float64() - 0.5
	}
	shift := func(x []float64, s float64) (y []float64) {
		y = make([]float64, n)
		for i := range x {
			y[i] = x[i] + s*d[i]
		}
		return
	}
	{ // dF/dθ'
		Jd := hf.JacobianNext(prev, next, q).MulVec(d)
		Fp := hf.Residual(prev, shift(next, h), q)
		Fm := hf.Residual(prev, shift(next, -h), q)
		for i := range Jd {
			assert.InDelta(t, (Fp[i]-Fm[i])/(2*h), Jd[i], 1.e-7)
		}
	}
	{ // dF/dθ
		Jd := hf.JacobianPrev(prev, next, q).MulVec(d)
		Fp := hf.Residual(shift(prev, h), next, q)
		Fm := hf.Residual(shift(prev, -h), next, q)
		for i := range Jd {
			assert.InDelta(t, (Fp[i]-Fm[i])/(2*h), Jd[i], 1.e-7)
		}
	}
	assert.Panics(t, func() { hf.Residual(prev[:2], next, q) })
}

func TestNewton(t *testing.T) {
	sp := newTestSpace(t)
	{ // Linear problem: the first update is exact
		hf := NewHeatForm(sp, spline.Const(1), spline.Const(1), spline.Const(2), spline.NewPoly(0, 0, -0.5), 1, 1, 0.1)
		prev := sp.Constant(1)
		next, iters, err := hf.SolveNonlinear(prev, 1, DefaultNewtonOptions())
		require.NoError(t, err)
		assert.LessOrEqual(t, iters, 2)
		assert.Less(t, floats.Norm(hf.Residual(prev, next, 1), math.Inf(1)), 1.e-12)
	}
	{
		hf := nonlinearForm(sp)
		prev := sp.Constant(1)
		next, _, err := hf.SolveNonlinear(prev, 0.7, DefaultNewtonOptions())
		require.NoError(t, err)
		assert.Less(t, floats.Norm(hf.Residual(prev, next, 0.7), math.Inf(1)), 1.e-10)

		_, _, err = hf.SolveNonlinear(prev, 0.7, NewtonOptions{MaxIterations: 1, RelTol: 1.e-10})
		var nce *NonConvergenceError
		require.True(t, errors.As(err, &nce))
		assert.Equal(t, 1, nce.Iterations)
		assert.False(t, math.IsInf(nce.Increment, 0))
	}
}

func TestLinearSystem(t *testing.T) {
	var (
		sp  = newTestSpace(t)
		dok = utils.NewDOK(3, 3)
	)
	for i, row := range [][3]float64{{4, 1, 0}, {2, 5, 1}, {0, 3, 6}} {
		for j, v := range row {
			dok.Add(i, j, v)
		}
	}
	A := dok.ToCSR()

	assert.True(t, LinearForm{}.Empty())
	assert.False(t, NewLinearForm([]float64{1, 2, 3}).Empty())
	x, err := NewLinearSystem(A, false, LinearForm{}).Solve()
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0, 0}, x)

	b := []float64{1, -2, 3}
	x, err = NewLinearSystem(A, true, NewLinearForm(b)).Solve()
	require.NoError(t, err)
	assert.InDeltaSlice(t, b, A.TMulVec(x), 1.e-13)
	x, err = NewLinearSystem(A, false, NewLinearForm(b)).Solve()
	require.NoError(t, err)
	assert.InDeltaSlice(t, b, A.MulVec(x), 1.e-13)

	// Point sources spread with barycentric weights that total the magnitude
	n := sp.NDofs()
	ls := NewLinearSystem(utils.NewDOK(n, n).ToCSR(), false, LinearForm{})
	require.NoError(t, ls.AddPointSource(sp, [2]float64{0.3, 0.2}, -2))
	var total float64
	for _, v := range ls.B {
		total += v
	}
	assert.InDelta(t, -2, total, 1.e-14)
	assert.Error(t, ls.AddPointSource(sp, [2]float64{-1, 0}, 1))
}

func TestExplicitScheme(t *testing.T) {
	var (
		sp      = newTestSpace(t)
		nc      = sp.Mesh.NR + 1
		vhc     = spline.NewPoly(1, 2, 0.3)
		kr      = spline.NewPoly(1, 1, 0.2, 0.05)
		kz      = spline.NewPoly(0, 0.7, 0.1)
		cooling = spline.NewPoly(1, 0, -0.5, -0.1, 0.02)
		// a vertex colouring that a rank one centroid mass would map to zero
		colouring = make([]float64, sp.NDofs())
	)
	for v := range colouring {
		colouring[v] = [3]float64{1, -2, 1}[(v%nc+v/nc)%3]
	}
	for _, imp := range []float64{0, 0.5} {
		var (
			hf   = NewHeatForm(sp, vhc, kr, kz, cooling, 3, imp, 0.05)
			prev = sp.Constant(1)
			J    = hf.JacobianNext(prev, prev, 0.7)
		)
		assert.Greater(t, floats.Norm(J.MulVec(colouring), math.Inf(1)), 1.e-3)
		next, iters, err := hf.SolveNonlinear(prev, 0.7, DefaultNewtonOptions())
		require.NoError(t, err, "implicitness %v", imp)
		assert.Less(t, floats.Norm(hf.Residual(prev, next, 0.7), math.Inf(1)), 1.e-10)
		assert.True(t, utils.IsFinite(next))
		if imp == 0 {
			// the explicit step is linear in θ' with a diagonal mass
			assert.LessOrEqual(t, iters, 2)
			for i := 0; i < sp.NDofs(); i++ {
				assert.Greater(t, J.At(i, i), 0.)
				for j := 0; j < sp.NDofs(); j++ {
					if i != j {
						assert.Equal(t, 0., J.At(i, j))
					}
				}
			}
		}
	}
}

func TestConjugateGradient(t *testing.T) {
	var (
		sp   = newTestSpace(t)
		hf   = nonlinearForm(sp)
		prev = sp.Interpolate(func(r, z float64) float64 { return 1 + 0.2*r })
		J    = hf.JacobianNext(prev, prev, 0.5)
		b    = sp.Interpolate(func(r, z float64) float64 { return r - z })
	)
	for _, transpose := range []bool{false, true} {
		ls := NewLinearSystem(J, transpose, NewLinearForm(b))
		assert.Equal(t, DirectLU, ls.Solver)
		xLU, err := ls.Solve()
		require.NoError(t, err)
		xCG, converged := ls.solveCG()
		require.True(t, converged)
		assert.InDeltaSlice(t, xLU, xCG, 1.e-10)
		ls.Solver = ConjugateGradient
		x, err := ls.Solve()
		require.NoError(t, err)
		assert.InDeltaSlice(t, xLU, x, 1.e-10)
	}
	{ // A negative diagonal stops CG, the LU fallback still solves
		dok := utils.NewDOK(2, 2)
		dok.Add(0, 0, -1)
		dok.Add(0, 1, 2)
		dok.Add(1, 0, 3)
		dok.Add(1, 1, 1)
		ls := NewLinearSystem(dok.ToCSR(), false, NewLinearForm([]float64{1, 4}))
		ls.Solver = ConjugateGradient
		_, converged := ls.solveCG()
		assert.False(t, converged)
		x, err := ls.Solve()
		require.NoError(t, err)
		assert.InDeltaSlice(t, []float64{1, 1}, x, 1.e-13)
	}
	{ // Large systems default to CG
		dok := utils.NewDOK(DenseLimit+1, DenseLimit+1)
		rhs := make([]float64, DenseLimit+1)
		for i := range rhs {
			dok.Add(i, i, 2)
			rhs[i] = float64(i)
		}
		ls := NewLinearSystem(dok.ToCSR(), false, NewLinearForm(rhs))
		assert.Equal(t, ConjugateGradient, ls.Solver)
		x, err := ls.Solve()
		require.NoError(t, err)
		assert.InDelta(t, float64(DenseLimit)/2, x[DenseLimit], 1.e-10)
	}
}
