package InputParameters

import (
	_ "embed"
	"fmt"

	"github.com/ghodss/yaml"

	"github.com/optipuls/optipuls/spline"
	"github.com/optipuls/optipuls/types"
)

//go:embed materials/dummy.yaml
var dummyMaterial []byte

// Table is a tabulated temperature dependence, derivatives are estimated from the values when omitted
type Table struct {
	Knots             []float64 `json:"knots"`
	Values            []float64 `json:"values"`
	Derivatives       []float64 `json:"derivatives,omitempty"`
	Extrapolation     string    `json:"extrapolation,omitempty"` // beyond the last knot
	ExtrapolationLeft string    `json:"extrapolation left,omitempty"`
}

func (t Table) Spline() (s *spline.Spline, err error) {
	var (
		left, right spline.Extrapolation
	)
	if left, err = spline.NewExtrapolation(t.ExtrapolationLeft); err != nil {
		return
	}
	if right, err = spline.NewExtrapolation(t.Extrapolation); err != nil {
		return
	}
	if len(t.Derivatives) == 0 {
		return spline.NewNaiveHermiteSpline(t.Knots, t.Values, left, right)
	}
	return spline.NewHermiteSpline(t.Knots, t.Values, t.Derivatives, left, right)
}

type Conductivity struct {
	Radial Table `json:"radial"`
	Axial  Table `json:"axial"`
}

type Material struct {
	HeatCapacity        Table        `json:"heat capacity"`
	Density             Table        `json:"density"`
	ThermalConductivity Conductivity `json:"thermal conductivity"`
}

func ParseMaterial(data []byte) (m *Material, err error) {
	m = &Material{}
	if err = yaml.Unmarshal(data, m); err != nil {
		return nil, err
	}
	for name, t := range m.tables() {
		if len(t.Knots) == 0 {
			return nil, fmt.Errorf("%w: material table %q has no knots", types.ErrInvalidInput, name)
		}
	}
	return
}

// DefaultMaterial is the embedded aluminium-like dummy material
func DefaultMaterial() *Material {
	m, err := ParseMaterial(dummyMaterial)
	if err != nil {
		panic(err)
	}
	return m
}

func (m *Material) tables() map[string]Table {
	return map[string]Table{
		"heat capacity":               m.HeatCapacity,
		"density":                     m.Density,
		"thermal conductivity radial": m.ThermalConductivity.Radial,
		"thermal conductivity axial":  m.ThermalConductivity.Axial,
	}
}

// Splines builds the heat capacity, density, radial and axial conductivity splines
func (m *Material) Splines() (c, rho, kappaRad, kappaAx *spline.Spline, err error) {
	if c, err = m.HeatCapacity.Spline(); err != nil {
		err = fmt.Errorf("heat capacity: %w", err)
		return
	}
	if rho, err = m.Density.Spline(); err != nil {
		err = fmt.Errorf("density: %w", err)
		return
	}
	if kappaRad, err = m.ThermalConductivity.Radial.Spline(); err != nil {
		err = fmt.Errorf("radial conductivity: %w", err)
		return
	}
	if kappaAx, err = m.ThermalConductivity.Axial.Spline(); err != nil {
		err = fmt.Errorf("axial conductivity: %w", err)
	}
	return
}
