package LaserWelding

import (
	"github.com/optipuls/optipuls/InputParameters"
	"github.com/optipuls/optipuls/spline"
)

// Coefficients are the temperature dependent terms of the heat equation
type Coefficients struct {
	VHC      spline.Expr // volumetric heat capacity, heat capacity times density
	KappaRad spline.Expr
	KappaAx  spline.Expr
	Cooling  spline.Expr
	Density  spline.Expr
}

/*
NewCoefficients builds the equation coefficients from the material tables.
In SplineMode the splines are evaluated directly, in ExpressionMode they are rendered
as branch selected polynomial expressions first. Both give identical values.
*/
func NewCoefficients(mat *InputParameters.Material, ip *InputParameters.InputParameters,
	mode InputParameters.CoefficientMode) (co Coefficients, err error) {
	var (
		c, rho, kr, kz *spline.Spline
	)
	if c, rho, kr, kz, err = mat.Splines(); err != nil {
		return
	}
	switch mode {
	case InputParameters.ExpressionMode:
		co = Coefficients{
			VHC:      spline.Product{A: c.Expression(), B: rho.Expression()},
			KappaRad: kr.Expression(),
			KappaAx:  kz.Expression(),
			Density:  rho.Expression(),
		}
	default:
		co = Coefficients{
			VHC:      spline.Product{A: c, B: rho},
			KappaRad: kr,
			KappaAx:  kz,
			Density:  rho,
		}
	}
	co.Cooling = CoolingLaw(ip.ConvectionCoeff, ip.RadiationCoeff, ip.TempAmbient)
	return
}

/*
CoolingLaw is the outward loss g(θ) = -h(θ - θa) - ε(θ^4 - θa^4), expanded about θa:

	g = -(h + 4εθa^3) s - 6εθa^2 s^2 - 4εθa s^3 - ε s^4,  s = θ - θa
*/
func CoolingLaw(h, eps, tempAmbient float64) spline.Poly {
	var (
		ta = tempAmbient
	)
	return spline.NewPoly(ta, 0, -(h + 4*eps*ta*ta*ta), -6*eps*ta*ta, -4*eps*ta, -eps)
}
