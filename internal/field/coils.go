package field

import "gonum.org/v1/gonum/spatial/r3"

// Coils is an ordered set of loops whose fields superpose.
type Coils []Loop

// Net returns the summed table-based field at point.
func (c Coils) Net(point r3.Vec) r3.Vec {
	return c.NetWith(point, Tabulated)
}

// NetWith returns the summed field at point using ev for every loop.
func (c Coils) NetWith(point r3.Vec, ev Evaluator) r3.Vec {
	var b r3.Vec
	for _, l := range c {
		b = r3.Add(b, l.Eval(point, ev))
	}
	return b
}

// Validate checks every loop.
func (c Coils) Validate() error {
	for _, l := range c {
		if err := l.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Cusp returns two coaxial loops of radius a centred at z = +-halfGap with
// opposing currents, the loop at -halfGap carrying +current.
func Cusp(a, halfGap, current float64) Coils {
	return Coils{
		{Radius: a, Position: r3.Vec{Z: -halfGap}, Current: current},
		{Radius: a, Position: r3.Vec{Z: halfGap}, Current: -current},
	}
}

// Mirror returns two coaxial loops with equal currents, a magnetic bottle.
func Mirror(a, halfGap, current float64) Coils {
	return Coils{
		{Radius: a, Position: r3.Vec{Z: -halfGap}, Current: current},
		{Radius: a, Position: r3.Vec{Z: halfGap}, Current: current},
	}
}
