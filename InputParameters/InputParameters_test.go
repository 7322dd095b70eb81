package InputParameters

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/optipuls/optipuls/types"
)

func TestParse(t *testing.T) {
	ip := DefaultInputParameters()
	require.NoError(t, ip.Validate())
	assert.InDelta(t, 0.010/30, ip.Dt(), 1.e-18)
	assert.InDelta(t, 0.135*1600/(math.Pi*0.0002*0.0002), ip.LaserPD(), 1.e-3)

	data := []byte(`
Title: "short pulse"
Nt: 4
FinalTime: 0.002
TargetPoint: [0, 0.0004]
CoefficientMode: expression
`)
	require.NoError(t, ip.Parse(data))
	assert.Equal(t, "short pulse", ip.Title)
	assert.Equal(t, 4, ip.Nt)
	assert.Equal(t, [2]float64{0, 0.0004}, ip.TargetPoint)
	assert.Equal(t, 0.0025, ip.R) // untouched keys keep their defaults
	require.NoError(t, ip.Validate())
	cm, err := NewCoefficientMode(ip.CoefficientMode)
	require.NoError(t, err)
	assert.Equal(t, ExpressionMode, cm)
	assert.Equal(t, "expression", cm.String())

	// JSON is valid YAML
	require.NoError(t, ip.Parse([]byte(`{"Nt": 12, "Pow": 4}`)))
	assert.Equal(t, 12, ip.Nt)
	assert.Equal(t, 4, ip.Pow)

	assert.Error(t, ip.Parse([]byte("Nt: [1, 2")))
}

func TestValidate(t *testing.T) {
	for _, mutate := range []func(ip *InputParameters){
		func(ip *InputParameters) { ip.Nt = 0 },
		func(ip *InputParameters) { ip.R = -1 },
		func(ip *InputParameters) { ip.LaserRadius = 1 },
		func(ip *InputParameters) { ip.Implicitness = 1.5 },
		func(ip *InputParameters) { ip.TargetPoint = [2]float64{0, 1} },
		func(ip *InputParameters) { ip.Pow = 0 },
		func(ip *InputParameters) { ip.StepInit = 0 },
		func(ip *InputParameters) { ip.MaxLineSearch = 0 },
		func(ip *InputParameters) { ip.CoefficientMode = "symbolic" },
		func(ip *InputParameters) { ip.Enthalpy = -1 },
		func(ip *InputParameters) { ip.VelocityMax = -0.1 },
	} {
		ip := DefaultInputParameters()
		mutate(ip)
		assert.True(t, errors.Is(ip.Validate(), types.ErrInvalidInput))
	}
	ip := DefaultInputParameters()
	ip.Implicitness = 0
	assert.NoError(t, ip.Validate())
}

func TestMaterial(t *testing.T) {
	m := DefaultMaterial()
	c, rho, kr, kz, err := m.Splines()
	require.NoError(t, err)
	assert.InDelta(t, 880, c.Eval(273), 1.e-9)
	assert.InDelta(t, 880, c.Eval(100), 1.e-9) // constant on the left
	assert.InDelta(t, 1180, c.Eval(2000), 1.e-9)
	// density continues linearly past the last knot
	assert.Less(t, rho.Eval(1500), rho.Eval(1273))
	assert.InDelta(t, kr.Eval(500), kz.Eval(500), 1.e-12)

	_, err = ParseMaterial([]byte(`density: {knots: [1, 2], values: [1, 2]}`))
	assert.True(t, errors.Is(err, types.ErrInvalidInput))

	m.Density.Values = m.Density.Values[:2]
	_, _, _, _, err = m.Splines()
	assert.True(t, errors.Is(err, types.ErrDimensionMismatch))

	m = DefaultMaterial()
	m.HeatCapacity.Extrapolation = "cubic"
	_, _, _, _, err = m.Splines()
	assert.True(t, errors.Is(err, types.ErrInvalidInput))

	m = DefaultMaterial()
	m.HeatCapacity.Derivatives = make([]float64, len(m.HeatCapacity.Knots))
	c, _, _, _, err = m.Splines()
	require.NoError(t, err)
	assert.Equal(t, 0., c.Derivative().Eval(273))
}
