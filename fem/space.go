package fem

import (
	"fmt"

	"github.com/optipuls/optipuls/types"
)

// Space is the continuous piecewise linear field space on an AxiMesh, read only after construction
type Space struct {
	Mesh  *AxiMesh
	Area  []float64       // triangle areas
	RC    []float64       // radius at each centroid
	Grads [][3][2]float64 // constant gradients of the three hat functions per triangle
}

func NewSpace(m *AxiMesh) (s *Space) {
	var (
		K = len(m.EToV)
	)
	s = &Space{
		Mesh:  m,
		Area:  make([]float64, K),
		RC:    make([]float64, K),
		Grads: make([][3][2]float64, K),
	}
	for k, tri := range m.EToV {
		var (
			r, z   [3]float64
			twiceA float64
		)
		for n, v := range tri {
			r[n], z[n] = m.VX[v], m.VY[v]
		}
		twiceA = (r[1]-r[0])*(z[2]-z[0]) - (r[2]-r[0])*(z[1]-z[0])
		if twiceA <= 0 {
			panic(fmt.Errorf("triangle %d is degenerate or clockwise, 2A = %v", k, twiceA))
		}
		s.Area[k] = 0.5 * twiceA
		s.RC[k] = (r[0] + r[1] + r[2]) / 3
		for i := 0; i < 3; i++ {
			j, l := (i+1)%3, (i+2)%3
			s.Grads[k][i] = [2]float64{(z[j] - z[l]) / twiceA, (r[l] - r[j]) / twiceA}
		}
	}
	return
}

func (s *Space) NDofs() int { return s.Mesh.NumVerts() }

// Interpolate evaluates f at the vertices
func (s *Space) Interpolate(f func(r, z float64) float64) (field []float64) {
	field = make([]float64, s.NDofs())
	for i := range field {
		field[i] = f(s.Mesh.VX[i], s.Mesh.VY[i])
	}
	return
}

func (s *Space) Constant(val float64) []float64 {
	return s.Interpolate(func(r, z float64) float64 { return val })
}

/*
PointWeights locates the triangle containing point and returns its vertices with the
barycentric weights, so that a field value there is sum(w[i]*field[verts[i]]).
*/
func (s *Space) PointWeights(point [2]float64) (verts [3]int, w [3]float64, err error) {
	var (
		m   = s.Mesh
		tol = 1.e-10
	)
	for k, tri := range m.EToV {
		var (
			r0, z0 = m.VX[tri[0]], m.VY[tri[0]]
			r1, z1 = m.VX[tri[1]], m.VY[tri[1]]
			r2, z2 = m.VX[tri[2]], m.VY[tri[2]]
			twiceA = 2 * s.Area[k]
			dr, dz = point[0] - r0, point[1] - z0
		)
		l1 := (dr*(z2-z0) - (r2-r0)*dz) / twiceA
		l2 := ((r1-r0)*dz - dr*(z1-z0)) / twiceA
		l0 := 1 - l1 - l2
		if l0 >= -tol && l1 >= -tol && l2 >= -tol {
			verts, w = tri, [3]float64{l0, l1, l2}
			return
		}
	}
	err = fmt.Errorf("%w: point (%v, %v) lies outside the mesh", types.ErrInvalidInput, point[0], point[1])
	return
}

func (s *Space) Eval(field []float64, point [2]float64) (val float64, err error) {
	var (
		verts [3]int
		w     [3]float64
	)
	if len(field) != s.NDofs() {
		err = fmt.Errorf("%w: field has %d values, space has %d dofs", types.ErrDimensionMismatch, len(field), s.NDofs())
		return
	}
	if verts, w, err = s.PointWeights(point); err != nil {
		return
	}
	for i, v := range verts {
		val += w[i] * field[v]
	}
	return
}

// BoundaryIntegral is the one point quadrature of the integral of field*r over the edges carrying marker
func (s *Space) BoundaryIntegral(field []float64, marker types.BCFLAG) (sum float64) {
	for _, e := range s.Mesh.EdgesByMarker(marker) {
		sum += e.Length * e.RMid * 0.5 * (field[e.Verts[0]] + field[e.Verts[1]])
	}
	return
}
