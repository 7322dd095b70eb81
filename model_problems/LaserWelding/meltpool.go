package LaserWelding

import (
	"math"
)

// MeltPool is the region at or above the liquidus in one field
type MeltPool struct {
	Radius     float64 // largest molten radius on the irradiated surface
	Volume     float64
	LatentHeat float64 // Enthalpy times density at the liquidus times Volume
	Velocity   float64 // surface front speed since the previous level
	Exceeded   bool    // |Velocity| above VelocityMax
}

func (p *Problem) meltPool(field []float64) (mp MeltPool) {
	var (
		sp   = p.Space
		m    = sp.Mesh
		liq  = p.ip.Liquidus
		zTop = m.Z * (1 - 1.e-9)
	)
	for k, tri := range m.EToV {
		if (field[tri[0]]+field[tri[1]]+field[tri[2]])/3 >= liq {
			mp.Volume += 2 * math.Pi * sp.Area[k] * sp.RC[k]
		}
	}
	for v, z := range m.VY {
		if z >= zTop && field[v] >= liq {
			mp.Radius = math.Max(mp.Radius, m.VX[v])
		}
	}
	mp.LatentHeat = p.ip.Enthalpy * p.Coefficients.Density.Eval(liq) * mp.Volume
	return
}

// MeltHistory reports the melt pool of every level of evo, the front velocity of level 0 is zero
func (p *Problem) MeltHistory(evo Evolution) (pools []MeltPool, err error) {
	if err = p.checkEvolution(evo); err != nil {
		return
	}
	pools = make([]MeltPool, evo.Len())
	for k := range pools {
		pools[k] = p.meltPool(evo.row(k))
		if k > 0 {
			pools[k].Velocity = (pools[k].Radius - pools[k-1].Radius) / p.Dt()
			pools[k].Exceeded = math.Abs(pools[k].Velocity) > p.ip.VelocityMax
		}
	}
	return
}
