package spline

import (
	"fmt"
	"math"
	"strings"
)

// Expr is a scalar expression of one input variable t that can differentiate itself symbolically
type Expr interface {
	Eval(t float64) float64
	Diff() Expr
	String() string
}

type Const float64

func (c Const) Eval(float64) float64 { return float64(c) }
func (c Const) Diff() Expr           { return Const(0) }
func (c Const) String() string       { return fmt.Sprintf("%g", float64(c)) }

// Poly is Coef[0] + Coef[1]*s + Coef[2]*s^2 + ..., with s = t - Origin
type Poly struct {
	Origin float64
	Coef   []float64
}

func NewPoly(origin float64, coef ...float64) Poly {
	if len(coef) == 0 {
		coef = []float64{0}
	}
	return Poly{Origin: origin, Coef: coef}
}

func (p Poly) Eval(t float64) (y float64) {
	var (
		s = t - p.Origin
	)
	for k := len(p.Coef) - 1; k >= 0; k-- {
		y = y*s + p.Coef[k]
	}
	return
}

func (p Poly) Derivative() Poly {
	if len(p.Coef) <= 1 {
		return Poly{Origin: p.Origin, Coef: []float64{0}}
	}
	coef := make([]float64, len(p.Coef)-1)
	for k := 1; k < len(p.Coef); k++ {
		coef[k-1] = float64(k) * p.Coef[k]
	}
	return Poly{Origin: p.Origin, Coef: coef}
}

// Diff collapses to a Const once the derivative no longer depends on t
func (p Poly) Diff() Expr {
	switch len(p.Coef) {
	case 0, 1:
		return Const(0)
	case 2:
		return Const(p.Coef[1])
	}
	return p.Derivative()
}

func (p Poly) String() string {
	var (
		b   strings.Builder
		arg = "t"
	)
	if p.Origin != 0 {
		arg = fmt.Sprintf("(t - %g)", p.Origin)
	}
	b.WriteString("(")
	for k, c := range p.Coef {
		if k > 0 {
			b.WriteString(" + ")
		}
		switch k {
		case 0:
			fmt.Fprintf(&b, "%g", c)
		case 1:
			fmt.Fprintf(&b, "%g*%s", c, arg)
		default:
			fmt.Fprintf(&b, "%g*%s^%d", c, arg, k)
		}
	}
	b.WriteString(")")
	return b.String()
}

// Piecewise is Body on Lo <= t < Hi and zero elsewhere
type Piecewise struct {
	Lo, Hi float64
	Body   Expr
}

func (pw Piecewise) Eval(t float64) float64 {
	if t >= pw.Lo && t < pw.Hi {
		return pw.Body.Eval(t)
	}
	return 0
}

// Diff differentiates the selected branch; the branch points carry no distributional term
func (pw Piecewise) Diff() Expr { return Piecewise{Lo: pw.Lo, Hi: pw.Hi, Body: pw.Body.Diff()} }

func (pw Piecewise) String() string {
	var cond string
	switch {
	case math.IsInf(pw.Lo, -1) && math.IsInf(pw.Hi, 1):
		return pw.Body.String()
	case math.IsInf(pw.Lo, -1):
		cond = fmt.Sprintf("lt(t, %g)", pw.Hi)
	case math.IsInf(pw.Hi, 1):
		cond = fmt.Sprintf("ge(t, %g)", pw.Lo)
	default:
		cond = fmt.Sprintf("And(ge(t, %g), lt(t, %g))", pw.Lo, pw.Hi)
	}
	return fmt.Sprintf("conditional(%s, 1, 0) * %s", cond, pw.Body.String())
}

type Sum []Expr

func (s Sum) Eval(t float64) (y float64) {
	for _, e := range s {
		y += e.Eval(t)
	}
	return
}

func (s Sum) Diff() Expr {
	d := make(Sum, len(s))
	for i, e := range s {
		d[i] = e.Diff()
	}
	return d
}

func (s Sum) String() string {
	parts := make([]string, len(s))
	for i, e := range s {
		parts[i] = e.String()
	}
	return strings.Join(parts, " + ")
}

type Product struct {
	A, B Expr
}

func (p Product) Eval(t float64) float64 { return p.A.Eval(t) * p.B.Eval(t) }

func (p Product) Diff() Expr {
	return Sum{Product{p.A.Diff(), p.B}, Product{p.A, p.B.Diff()}}
}

func (p Product) String() string { return "[" + p.A.String() + "] * [" + p.B.String() + "]" }
