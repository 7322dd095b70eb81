package fem

import (
	"fmt"

	"gonum.org/v1/gonum/floats"

	"github.com/optipuls/optipuls/spline"
	"github.com/optipuls/optipuls/types"
	"github.com/optipuls/optipuls/utils"
)

/*
HeatForm is the one step residual of the axisymmetric heat equation

	F(v) = ∫ s(θ)(θ' - θ) v r dx + dt ∫ K(θ) ∇u·∇v r dx
	     - dt ∫_laser q P v r ds - dt ∫_(laser, cooling) g(u) v r ds

with θ the previous state, θ' the next one and u = imp θ' + (1 - imp) θ.
Cells use one point quadrature at the centroid, boundary edges at the midpoint.
The mass term is lumped onto the vertices, so the mass matrix stays diagonal and positive
and the explicit scheme (imp = 0) remains solvable.
The coefficients are expressions in the temperature, their derivatives are built once by Diff.
*/
type HeatForm struct {
	Space        *Space
	VHC          spline.Expr // volumetric heat capacity s
	KappaRad     spline.Expr
	KappaAx      spline.Expr
	Cooling      spline.Expr // outward heat loss g
	LaserFlux    float64     // P, flux density at full control
	Implicitness float64
	Dt           float64

	dVHC, dKappaRad, dKappaAx, dCooling spline.Expr
}

func NewHeatForm(space *Space, vhc, kappaRad, kappaAx, cooling spline.Expr,
	laserFlux, implicitness, dt float64) (hf *HeatForm) {
	hf = &HeatForm{
		Space:        space,
		VHC:          vhc,
		KappaRad:     kappaRad,
		KappaAx:      kappaAx,
		Cooling:      cooling,
		LaserFlux:    laserFlux,
		Implicitness: implicitness,
		Dt:           dt,
		dVHC:         vhc.Diff(),
		dKappaRad:    kappaRad.Diff(),
		dKappaAx:     kappaAx.Diff(),
		dCooling:     cooling.Diff(),
	}
	return
}

func (hf *HeatForm) checkDims(prev, next []float64) {
	if n := hf.Space.NDofs(); len(prev) != n || len(next) != n {
		panic(fmt.Errorf("%w: state vectors of length %d and %d, space has %d dofs",
			types.ErrDimensionMismatch, len(prev), len(next), n))
	}
}

func (hf *HeatForm) mid(prev, next []float64) (um []float64) {
	um = make([]float64, len(prev))
	floats.ScaleTo(um, 1-hf.Implicitness, prev)
	floats.AddScaled(um, hf.Implicitness, next)
	return
}

type cellState struct {
	w            float64 // area * centroid radius
	uc           float64 // previous centroid value
	gradR, gradZ float64 // gradient of the implicit mixture
}

func (hf *HeatForm) cell(k int, prev, um []float64) (cs cellState) {
	var (
		sp  = hf.Space
		tri = sp.Mesh.EToV[k]
	)
	cs.w = sp.Area[k] * sp.RC[k]
	for n, v := range tri {
		cs.uc += prev[v]
		cs.gradR += sp.Grads[k][n][0] * um[v]
		cs.gradZ += sp.Grads[k][n][1] * um[v]
	}
	cs.uc /= 3
	return
}

func fluxEdge(marker types.BCFLAG) (laser, cooling bool) {
	switch marker {
	case types.BC_Laser:
		return true, true
	case types.BC_Cooling:
		return false, true
	}
	return
}

// Residual returns F(v) for every hat function v
func (hf *HeatForm) Residual(prev, next []float64, q float64) (F []float64) {
	hf.checkDims(prev, next)
	var (
		sp = hf.Space
		um = hf.mid(prev, next)
		dt = hf.Dt
	)
	F = make([]float64, sp.NDofs())
	for k, tri := range sp.Mesh.EToV {
		var (
			cs     = hf.cell(k, prev, um)
			s      = hf.VHC.Eval(cs.uc)
			kr, kz = hf.KappaRad.Eval(cs.uc), hf.KappaAx.Eval(cs.uc)
		)
		for i, vi := range tri {
			gi := sp.Grads[k][i]
			F[vi] += cs.w * (s*(next[vi]-prev[vi])/3 + dt*(kr*gi[0]*cs.gradR+kz*gi[1]*cs.gradZ))
		}
	}
	for _, e := range sp.Mesh.Edges {
		laser, cooling := fluxEdge(e.Marker)
		if !cooling {
			continue
		}
		var (
			we   = e.Length * e.RMid
			umid = 0.5 * (um[e.Verts[0]] + um[e.Verts[1]])
			flux = hf.Cooling.Eval(umid)
		)
		if laser {
			flux += q * hf.LaserFlux
		}
		for _, v := range e.Verts {
			F[v] -= dt * we * flux / 2
		}
	}
	return
}

// JacobianNext is dF_i/dθ'_j
func (hf *HeatForm) JacobianNext(prev, next []float64, q float64) utils.CSR {
	hf.checkDims(prev, next)
	var (
		sp  = hf.Space
		n   = sp.NDofs()
		J   = utils.NewDOK(n, n)
		um  = hf.mid(prev, next)
		dt  = hf.Dt
		imp = hf.Implicitness
	)
	for k, tri := range sp.Mesh.EToV {
		var (
			cs     = hf.cell(k, prev, um)
			s      = hf.VHC.Eval(cs.uc)
			kr, kz = hf.KappaRad.Eval(cs.uc), hf.KappaAx.Eval(cs.uc)
		)
		for i, vi := range tri {
			gi := sp.Grads[k][i]
			for j, vj := range tri {
				gj := sp.Grads[k][j]
				J.Add(vi, vj, cs.w*dt*imp*(kr*gi[0]*gj[0]+kz*gi[1]*gj[1]))
			}
			J.Add(vi, vi, cs.w*s/3)
		}
	}
	hf.addEdgeJacobian(J, um, imp)
	return J.ToCSR()
}

// JacobianPrev is dF_i/dθ_j
func (hf *HeatForm) JacobianPrev(prev, next []float64, q float64) utils.CSR {
	hf.checkDims(prev, next)
	var (
		sp  = hf.Space
		n   = sp.NDofs()
		J   = utils.NewDOK(n, n)
		um  = hf.mid(prev, next)
		dt  = hf.Dt
		imp = hf.Implicitness
	)
	for k, tri := range sp.Mesh.EToV {
		var (
			cs       = hf.cell(k, prev, um)
			s, ds    = hf.VHC.Eval(cs.uc), hf.dVHC.Eval(cs.uc)
			kr, kz   = hf.KappaRad.Eval(cs.uc), hf.KappaAx.Eval(cs.uc)
			dkr, dkz = hf.dKappaRad.Eval(cs.uc), hf.dKappaAx.Eval(cs.uc)
		)
		for i, vi := range tri {
			var (
				gi = sp.Grads[k][i]
				// derivative of the coefficients through the centroid value, identical for every j
				coef = ds/3*(next[vi]-prev[vi])/3 + dt*(dkr/3*gi[0]*cs.gradR+dkz/3*gi[1]*cs.gradZ)
			)
			for j, vj := range tri {
				gj := sp.Grads[k][j]
				J.Add(vi, vj, cs.w*(coef+dt*(1-imp)*(kr*gi[0]*gj[0]+kz*gi[1]*gj[1])))
			}
			J.Add(vi, vi, -cs.w*s/3)
		}
	}
	hf.addEdgeJacobian(J, um, 1-imp)
	return J.ToCSR()
}

func (hf *HeatForm) addEdgeJacobian(J utils.DOK, um []float64, factor float64) {
	if factor == 0 {
		return
	}
	for _, e := range hf.Space.Mesh.Edges {
		if _, cooling := fluxEdge(e.Marker); !cooling {
			continue
		}
		var (
			we   = e.Length * e.RMid
			umid = 0.5 * (um[e.Verts[0]] + um[e.Verts[1]])
			dg   = hf.dCooling.Eval(umid)
		)
		for _, vi := range e.Verts {
			for _, vj := range e.Verts {
				J.Add(vi, vj, -hf.Dt*we*dg*factor/4)
			}
		}
	}
}
