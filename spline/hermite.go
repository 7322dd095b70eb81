package spline

import (
	"fmt"
	"math"
	"strings"

	"github.com/optipuls/optipuls/types"
)

// Extrapolation selects how a spline continues beyond its outer knots
type Extrapolation uint8

const (
	Constant Extrapolation = iota // value held flat, derivative structurally zero
	Linear                        // tangent line of the adjacent segment
)

func NewExtrapolation(name string) (e Extrapolation, err error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "constant":
		e = Constant
	case "linear":
		e = Linear
	default:
		err = fmt.Errorf("%w: unknown extrapolation %q", types.ErrInvalidInput, name)
	}
	return
}

func (e Extrapolation) String() string {
	switch e {
	case Constant:
		return "constant"
	case Linear:
		return "linear"
	}
	return fmt.Sprintf("Extrapolation(%d)", uint8(e))
}

// Hermite basis polynomials on the unit interval
var (
	h00 = [4]float64{1, 0, -3, 2} // 1 - 3u^2 + 2u^3
	h10 = [4]float64{0, 1, -2, 1} // u - 2u^2 + u^3
	h01 = [4]float64{0, 0, 3, -2} // 3u^2 - 2u^3
	h11 = [4]float64{0, 0, -1, 1} // -u^2 + u^3
)

/*
Spline is a piecewise polynomial defined on the whole real line

	      x[0]       x[1]       x[2]      x[n-1]
	----------+----------+----------+- - - - -+----------
	  pol[0]     pol[1]     pol[2]               pol[n]

Pieces[i] is used on the half-open interval [x[i-1], x[i]), with the outer pieces
extending to -Inf and +Inf. Every piece is stored in its own local coordinate.
*/
type Spline struct {
	Knots  []float64
	Pieces []Poly
}

func NewSpline(knots []float64, pieces []Poly) (s *Spline, err error) {
	for i := 1; i < len(knots); i++ {
		if !(knots[i-1] <= knots[i]) {
			err = fmt.Errorf("%w: knots are not sorted at index %d", types.ErrInvalidInput, i)
			return
		}
	}
	if len(pieces) != len(knots)+1 {
		err = fmt.Errorf("%w: %d knots need %d pieces, have %d",
			types.ErrDimensionMismatch, len(knots), len(knots)+1, len(pieces))
		return
	}
	s = &Spline{Knots: knots, Pieces: pieces}
	return
}

// NewHermiteSpline builds the C1 cubic Hermite interpolant of (knots, values, derivatives)
func NewHermiteSpline(knots, values, derivatives []float64, left, right Extrapolation) (s *Spline, err error) {
	var (
		n = len(knots)
	)
	if n == 0 {
		err = fmt.Errorf("%w: at least one knot is required", types.ErrInvalidInput)
		return
	}
	for i := 1; i < n; i++ {
		if !(knots[i-1] < knots[i]) {
			err = fmt.Errorf("%w: knots are not strictly sorted at index %d", types.ErrInvalidInput, i)
			return
		}
	}
	if len(values) != n {
		err = fmt.Errorf("%w: len(knots) = %d, len(values) = %d", types.ErrDimensionMismatch, n, len(values))
		return
	}
	if len(derivatives) != n {
		err = fmt.Errorf("%w: len(knots) = %d, len(derivatives) = %d", types.ErrDimensionMismatch, n, len(derivatives))
		return
	}
	pieces := make([]Poly, n+1)
	for i := 0; i < n-1; i++ {
		pieces[i+1] = HermitePolynomial(knots[i], knots[i+1], values[i], values[i+1], derivatives[i], derivatives[i+1])
	}

	switch left {
	case Linear:
		k := derivatives[0]
		if n > 1 {
			k = pieces[1].Derivative().Eval(knots[0])
		}
		pieces[0] = NewPoly(knots[0], values[0], k)
	default:
		pieces[0] = NewPoly(knots[0], values[0])
	}
	switch right {
	case Linear:
		k := derivatives[n-1]
		if n > 1 {
			k = pieces[n-1].Derivative().Eval(knots[n-1])
		}
		pieces[n] = NewPoly(knots[n-1], values[n-1], k)
	default:
		pieces[n] = NewPoly(knots[n-1], values[n-1])
	}
	return NewSpline(append([]float64(nil), knots...), pieces)
}

// NewNaiveHermiteSpline estimates the knot derivatives from the samples before building the Hermite spline
func NewNaiveHermiteSpline(knots, values []float64, left, right Extrapolation) (s *Spline, err error) {
	var (
		derivatives []float64
	)
	if len(knots) != len(values) {
		err = fmt.Errorf("%w: len(knots) = %d, len(values) = %d", types.ErrDimensionMismatch, len(knots), len(values))
		return
	}
	if derivatives, err = Gradient(values, knots); err != nil {
		return
	}
	return NewHermiteSpline(knots, values, derivatives, left, right)
}

/*
Gradient estimates df/dx at the sample points: second order central differences on the
(possibly non-uniform) interior, first order one sided differences at both ends.
*/
func Gradient(f, x []float64) (g []float64, err error) {
	var (
		n = len(x)
	)
	if n < 2 {
		err = fmt.Errorf("%w: gradient needs at least two samples, have %d", types.ErrInvalidInput, n)
		return
	}
	if len(f) != n {
		err = fmt.Errorf("%w: len(x) = %d, len(f) = %d", types.ErrDimensionMismatch, n, len(f))
		return
	}
	g = make([]float64, n)
	g[0] = (f[1] - f[0]) / (x[1] - x[0])
	g[n-1] = (f[n-1] - f[n-2]) / (x[n-1] - x[n-2])
	for i := 1; i < n-1; i++ {
		hs := x[i] - x[i-1]
		hd := x[i+1] - x[i]
		g[i] = (hs*hs*f[i+1] + (hd*hd-hs*hs)*f[i] - hd*hd*f[i-1]) / (hs * hd * (hd + hs))
	}
	return
}

// HermitePolynomial interpolates values p and slopes m at x0 and x1, expressed in s = t - x0
func HermitePolynomial(x0, x1, p0, p1, m0, m1 float64) (p Poly) {
	var (
		h    = x1 - x0
		coef = make([]float64, 4)
		hk   = 1.
	)
	for k := 0; k < 4; k++ {
		c := h00[k]*p0 + h01[k]*p1 + (h10[k]*m0+h11[k]*m1)*h
		coef[k] = c / hk
		hk *= h
	}
	return Poly{Origin: x0, Coef: coef}
}

// Eval selects the piece by the first knot exceeding t
func (s *Spline) Eval(t float64) float64 {
	for i, knot := range s.Knots {
		if t < knot {
			return s.Pieces[i].Eval(t)
		}
	}
	return s.Pieces[len(s.Pieces)-1].Eval(t)
}

func (s *Spline) Derivative() *Spline {
	pieces := make([]Poly, len(s.Pieces))
	for i, p := range s.Pieces {
		pieces[i] = p.Derivative()
	}
	return &Spline{Knots: s.Knots, Pieces: pieces}
}

func (s *Spline) Diff() Expr { return s.Derivative() }

func (s *Spline) String() string {
	return fmt.Sprintf("spline(knots=%v)", s.Knots)
}

// Expression renders the spline as a sum of branch selected polynomials in the input variable
func (s *Spline) Expression() Expr {
	var (
		n     = len(s.Knots)
		terms = make(Sum, len(s.Pieces))
	)
	for i, p := range s.Pieces {
		lo, hi := math.Inf(-1), math.Inf(1)
		if i > 0 {
			lo = s.Knots[i-1]
		}
		if i < n {
			hi = s.Knots[i]
		}
		terms[i] = Piecewise{Lo: lo, Hi: hi, Body: p}
	}
	return terms
}
