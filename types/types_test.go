package types

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTypes(t *testing.T) {
	{ // Test packed int for edge labeling
		en := NewEdgeKey([2]int{1, 0})
		assert.Equal(t, EdgeKey(1<<32), en)
		assert.Equal(t, [2]int{0, 1}, en.GetVertices(false))
		assert.Equal(t, [2]int{1, 0}, en.GetVertices(true))

		en = NewEdgeKey([2]int{100, 1})
		assert.Equal(t, EdgeKey(100*(1<<32)+1), en)
		assert.Equal(t, [2]int{1, 100}, en.GetVertices(false))

		en = NewEdgeKey([2]int{1<<32 - 1, 1<<32 - 1})
		assert.Equal(t, EdgeKey(1<<64-1), en)
		assert.Equal(t, [2]int{1<<32 - 1, 1<<32 - 1}, en.GetVertices(false))

		assert.Panics(t, func() { NewEdgeKey([2]int{-1, 2}) })
	}
	{ // Two triangles sharing the diagonal of a unit square
		ec := make(EdgeCount)
		ec.AddTriangle([3]int{0, 1, 3})
		ec.AddTriangle([3]int{0, 3, 2})
		assert.Equal(t, 2, ec[NewEdgeKey([2]int{0, 3})])
		edges := ec.BoundaryEdges()
		assert.Equal(t, 4, len(edges))
		for i := 1; i < len(edges); i++ {
			assert.True(t, edges[i-1] < edges[i])
		}
		assert.NotContains(t, edges, NewEdgeKey([2]int{3, 0}))
	}
	{
		assert.Equal(t, "BC_None", fmt.Sprint(BC_None))
		assert.Equal(t, "BC_Laser", BC_Laser.String())
		assert.Equal(t, "BCFLAG(9)", BCFLAG(9).String())
	}
	{
		err := fmt.Errorf("%w: knots are not sorted", ErrInvalidInput)
		assert.True(t, errors.Is(err, ErrInvalidInput))
		assert.False(t, errors.Is(err, ErrDimensionMismatch))
	}
}
