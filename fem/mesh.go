package fem

import (
	"fmt"
	"math"

	"github.com/optipuls/optipuls/types"
)

/*
AxiMesh is a structured triangulation of the meridian half plane [0,R] x [0,Z].
Coordinates are (r, z): r is the distance from the symmetry axis, z = Z is the irradiated surface.

	z=Z  laser | cooling
	     +-----+----------+
	axis |                | insulated
	     +----------------+
	z=0        cooling
*/
type AxiMesh struct {
	R, Z        float64
	NR, NZ      int
	LaserRadius float64
	VX, VY      []float64 // r and z coordinates of the vertices
	EToV        [][3]int  // counterclockwise vertices of each triangle
	Edges       []BoundaryEdge
}

type BoundaryEdge struct {
	Key    types.EdgeKey
	Verts  [2]int
	Marker types.BCFLAG
	Length float64
	RMid   float64 // radius at the midpoint
}

func NewAxiMesh(R, Z float64, nr, nz int, laserRadius float64) (m *AxiMesh, err error) {
	if !(R > 0) || !(Z > 0) || nr < 1 || nz < 1 {
		err = fmt.Errorf("%w: mesh needs positive extents and cell counts, have R=%v Z=%v nr=%d nz=%d",
			types.ErrInvalidInput, R, Z, nr, nz)
		return
	}
	if laserRadius < 0 || laserRadius > R {
		err = fmt.Errorf("%w: laser radius %v outside [0, %v]", types.ErrInvalidInput, laserRadius, R)
		return
	}
	var (
		nv  = (nr + 1) * (nz + 1)
		idx = func(i, j int) int { return i + j*(nr+1) }
		ec  = make(types.EdgeCount)
	)
	m = &AxiMesh{
		R: R, Z: Z, NR: nr, NZ: nz, LaserRadius: laserRadius,
		VX:   make([]float64, nv),
		VY:   make([]float64, nv),
		EToV: make([][3]int, 0, 2*nr*nz),
	}
	for j := 0; j <= nz; j++ {
		for i := 0; i <= nr; i++ {
			m.VX[idx(i, j)] = R * float64(i) / float64(nr)
			m.VY[idx(i, j)] = Z * float64(j) / float64(nz)
		}
	}
	for j := 0; j < nz; j++ {
		for i := 0; i < nr; i++ {
			var (
				v0, v1 = idx(i, j), idx(i+1, j)
				v2, v3 = idx(i+1, j+1), idx(i, j+1)
			)
			m.EToV = append(m.EToV, [3]int{v0, v1, v2}, [3]int{v0, v2, v3})
		}
	}
	for _, tri := range m.EToV {
		ec.AddTriangle(tri)
	}
	for _, ek := range ec.BoundaryEdges() {
		verts := ek.GetVertices(false)
		var (
			r0, z0 = m.VX[verts[0]], m.VY[verts[0]]
			r1, z1 = m.VX[verts[1]], m.VY[verts[1]]
			rm, zm = 0.5 * (r0 + r1), 0.5 * (z0 + z1)
		)
		m.Edges = append(m.Edges, BoundaryEdge{
			Key:    ek,
			Verts:  verts,
			Marker: m.classify(rm, zm),
			Length: math.Hypot(r1-r0, z1-z0),
			RMid:   rm,
		})
	}
	return
}

// classify marks a boundary edge by its midpoint, the symmetry axis taking precedence
func (m *AxiMesh) classify(rm, zm float64) types.BCFLAG {
	var (
		tolR = 1.e-9 * m.R
		tolZ = 1.e-9 * m.Z
	)
	switch {
	case rm < tolR:
		return types.BC_SymAxis
	case zm > m.Z-tolZ && rm < m.LaserRadius:
		return types.BC_Laser
	case zm > m.Z-tolZ, zm < tolZ:
		return types.BC_Cooling
	}
	return types.BC_None
}

func (m *AxiMesh) NumVerts() int { return len(m.VX) }

// EdgesByMarker returns the boundary edges carrying the marker
func (m *AxiMesh) EdgesByMarker(marker types.BCFLAG) (edges []BoundaryEdge) {
	for _, e := range m.Edges {
		if e.Marker == marker {
			edges = append(edges, e)
		}
	}
	return
}
