package types

import (
	"strconv"
)

// BCFLAG marks the boundary edges of the axisymmetric domain
type BCFLAG uint8

const (
	BC_None    BCFLAG = iota // insulated, natural zero flux
	BC_Laser                 // laser footprint on the top surface
	BC_Cooling               // exposed surface cooled by convection and radiation
	BC_SymAxis               // symmetry axis r = 0
)

var bcNames = [...]string{"BC_None", "BC_Laser", "BC_Cooling", "BC_SymAxis"}

func (f BCFLAG) String() string {
	if int(f) < len(bcNames) {
		return bcNames[f]
	}
	return "BCFLAG(" + strconv.Itoa(int(f)) + ")"
}
