package InputParameters

import (
	"fmt"
	"math"

	"github.com/ghodss/yaml"

	"github.com/optipuls/optipuls/types"
)

// Parameters obtained from the YAML or JSON input file
type InputParameters struct {
	Title string `json:"Title"`
	// Space and time discretization
	R           float64 `json:"R"`
	LaserRadius float64 `json:"LaserRadius"`
	Z           float64 `json:"Z"`
	FinalTime   float64 `json:"FinalTime"`
	Nt          int     `json:"Nt"`
	NR          int     `json:"NR"`
	NZ          int     `json:"NZ"`
	// Model constants
	TempAmbient     float64 `json:"TempAmbient"`
	Enthalpy        float64 `json:"Enthalpy"`
	PYAG            float64 `json:"PYAG"`
	Absorb          float64 `json:"Absorb"`
	Implicitness    float64 `json:"Implicitness"`
	ConvectionCoeff float64 `json:"ConvectionCoeff"`
	RadiationCoeff  float64 `json:"RadiationCoeff"`
	Liquidus        float64 `json:"Liquidus"`
	Solidus         float64 `json:"Solidus"`
	// Objective
	Alpha         float64    `json:"Alpha"` // control cost weight
	BetaWelding   float64    `json:"BetaWelding"`
	ThresholdTemp float64    `json:"ThresholdTemp"`
	TargetPoint   [2]float64 `json:"TargetPoint"` // (r, z)
	Pow           int        `json:"Pow"`
	VelocityMax   float64    `json:"VelocityMax"`
	// Optimizer
	Tolerance       float64 `json:"Tolerance"`
	IterMax         int     `json:"IterMax"`
	StepInit        float64 `json:"StepInit"`
	MaxLineSearch   int     `json:"MaxLineSearch"`
	CoefficientMode string  `json:"CoefficientMode"` // "spline" or "expression"
	// Gradient check
	DirectionScale float64 `json:"DirectionScale"` // zero selects 0.0005*FinalTime
	Seed           int64   `json:"Seed"`
}

// DefaultInputParameters is the laser welding setup of a 10 ms pulse on a thin plate
func DefaultInputParameters() (ip *InputParameters) {
	ip = &InputParameters{
		Title:           "Laser welding, 10 ms pulse",
		R:               0.0025,
		LaserRadius:     0.0002,
		Z:               0.0005,
		FinalTime:       0.010,
		Nt:              30,
		NR:              50,
		NZ:              10,
		TempAmbient:     295,
		Enthalpy:        397000,
		PYAG:            1600,
		Absorb:          0.135,
		Implicitness:    1,
		ConvectionCoeff: 20,
		RadiationCoeff:  2.26e-9,
		Liquidus:        923,
		Solidus:         858,
		Alpha:           0,
		BetaWelding:     1,
		ThresholdTemp:   1102,
		TargetPoint:     [2]float64{0, 0.5 * 0.0005},
		Pow:             6,
		VelocityMax:     0.12,
		Tolerance:       1.e-18,
		IterMax:         5,
		StepInit:        1,
		MaxLineSearch:   40,
		CoefficientMode: "spline",
		Seed:            1,
	}
	return
}

// Parse overlays the file contents onto the receiver, keys missing from the file keep their value
func (ip *InputParameters) Parse(data []byte) error {
	return yaml.Unmarshal(data, ip)
}

func (ip *InputParameters) Dt() float64 { return ip.FinalTime / float64(ip.Nt) }

// LaserPD is the absorbed power density at full control
func (ip *InputParameters) LaserPD() float64 {
	return ip.Absorb * ip.PYAG / (math.Pi * ip.LaserRadius * ip.LaserRadius)
}

func (ip *InputParameters) Validate() (err error) {
	bad := func(format string, args ...interface{}) error {
		return fmt.Errorf("%w: "+format, append([]interface{}{types.ErrInvalidInput}, args...)...)
	}
	switch {
	case !(ip.R > 0) || !(ip.Z > 0):
		return bad("domain extents must be positive, have R=%v Z=%v", ip.R, ip.Z)
	case ip.LaserRadius < 0 || ip.LaserRadius > ip.R:
		return bad("laser radius %v outside [0, R]", ip.LaserRadius)
	case !(ip.FinalTime > 0) || ip.Nt < 1:
		return bad("time domain needs FinalTime > 0 and Nt >= 1, have %v and %d", ip.FinalTime, ip.Nt)
	case ip.NR < 1 || ip.NZ < 1:
		return bad("mesh needs NR, NZ >= 1, have %d, %d", ip.NR, ip.NZ)
	case ip.Implicitness < 0 || ip.Implicitness > 1:
		return bad("implicitness %v outside [0, 1]", ip.Implicitness)
	case ip.Pow < 1:
		return bad("norm exponent must be at least 1, have %d", ip.Pow)
	case ip.TargetPoint[0] < 0 || ip.TargetPoint[0] > ip.R || ip.TargetPoint[1] < 0 || ip.TargetPoint[1] > ip.Z:
		return bad("target point %v outside the domain", ip.TargetPoint)
	case ip.Tolerance < 0 || ip.IterMax < 0 || ip.MaxLineSearch < 1:
		return bad("optimizer settings Tolerance=%v IterMax=%d MaxLineSearch=%d", ip.Tolerance, ip.IterMax, ip.MaxLineSearch)
	case !(ip.StepInit > 0):
		return bad("initial step must be positive, have %v", ip.StepInit)
	case ip.Enthalpy < 0 || ip.VelocityMax < 0:
		return bad("latent heat and velocity bound must not be negative, have %v and %v", ip.Enthalpy, ip.VelocityMax)
	case ip.DirectionScale < 0:
		return bad("direction scale must not be negative, have %v", ip.DirectionScale)
	}
	if _, err = NewCoefficientMode(ip.CoefficientMode); err != nil {
		return
	}
	return
}

type CoefficientMode uint8

const (
	SplineMode     CoefficientMode = iota // coefficients evaluate their splines directly
	ExpressionMode                        // coefficients are symbolic branch expressions
)

func NewCoefficientMode(label string) (cm CoefficientMode, err error) {
	switch label {
	case "", "spline":
		cm = SplineMode
	case "expression", "ufl":
		cm = ExpressionMode
	default:
		err = fmt.Errorf("%w: unknown coefficient mode %q", types.ErrInvalidInput, label)
	}
	return
}

func (cm CoefficientMode) String() string {
	if cm == ExpressionMode {
		return "expression"
	}
	return "spline"
}

func (ip *InputParameters) Print() {
	fmt.Printf("\"%s\"\t\t= Title\n", ip.Title)
	fmt.Printf("[%g, %g] x [%g, %g]\t= Domain, laser radius %g\n", 0., ip.R, 0., ip.Z, ip.LaserRadius)
	fmt.Printf("%8.5f\t\t= FinalTime\n", ip.FinalTime)
	fmt.Printf("[%d]\t\t\t\t= Time Steps\n", ip.Nt)
	fmt.Printf("[%d x %d]\t\t\t= Mesh Cells\n", ip.NR, ip.NZ)
	fmt.Printf("%8.3f\t\t= Ambient Temperature\n", ip.TempAmbient)
	fmt.Printf("%8.1f\t\t= P_YAG, absorption %g\n", ip.PYAG, ip.Absorb)
	fmt.Printf("%8.3f\t\t= Implicitness\n", ip.Implicitness)
	fmt.Printf("%g, %g\t\t= Convection, Radiation Coefficients\n", ip.ConvectionCoeff, ip.RadiationCoeff)
	fmt.Printf("%8.1f, %8.1f\t= Solidus, Liquidus\n", ip.Solidus, ip.Liquidus)
	fmt.Printf("%g, %g\t\t= Latent Heat, Front Velocity Bound\n", ip.Enthalpy, ip.VelocityMax)
	fmt.Printf("%8.1f\t\t= Threshold Temperature at %v\n", ip.ThresholdTemp, ip.TargetPoint)
	fmt.Printf("[%d]\t\t\t\t= Norm Exponent\n", ip.Pow)
	fmt.Printf("%g, %g\t\t\t= Alpha, BetaWelding\n", ip.Alpha, ip.BetaWelding)
	fmt.Printf("[%s]\t\t\t= Coefficient Mode\n", ip.CoefficientMode)
}
