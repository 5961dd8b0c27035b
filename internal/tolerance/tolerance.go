package tolerance

import "fmt"

// Band is the acceptable range for a measured dimension: the closed
// interval [Nominal-Minus, Nominal+Plus].
type Band struct {
	Nominal float64
	Minus   float64
	Plus    float64
}

// Lower returns the lowest acceptable value.
func (b Band) Lower() float64 { return b.Nominal - b.Minus }

// Upper returns the highest acceptable value.
func (b Band) Upper() float64 { return b.Nominal + b.Plus }

// Contains reports whether measured lies inside the band, bounds included.
func (b Band) Contains(measured float64) bool {
	return b.Lower() <= measured && measured <= b.Upper()
}

// String renders the band the way it appears on a drawing, e.g. "10 +0.3/-0.2".
func (b Band) String() string {
	return fmt.Sprintf("%g +%g/-%g", b.Nominal, b.Plus, b.Minus)
}

// Evaluate classifies a measured value against a nominal value with
// independent minus/plus tolerances.
func Evaluate(measured, nominal, minus, plus float64) bool {
	return Band{Nominal: nominal, Minus: minus, Plus: plus}.Contains(measured)
}
