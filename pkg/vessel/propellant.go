package vessel

import "fmt"

// PropellantType identifies one of the recognized propellant resources.
type PropellantType int

const (
	LiquidFuel PropellantType = iota
	Oxidizer
	SolidFuel
	XenonGas

	// NumPropellants is the size of per-propellant accumulator arrays.
	NumPropellants
)

// Densities in metric tons per resource unit.
var propellantDensity = [NumPropellants]float64{
	LiquidFuel: 0.005,
	Oxidizer:   0.005,
	SolidFuel:  0.0075,
	XenonGas:   0.0001,
}

var propellantName = [NumPropellants]string{
	LiquidFuel: "LiquidFuel",
	Oxidizer:   "Oxidizer",
	SolidFuel:  "SolidFuel",
	XenonGas:   "XenonGas",
}

// Dual-propellant ("rocket") engines consume LiquidFuel and Oxidizer in a
// fixed 9:11 mass ratio. Engines that draw LiquidFuel alone ("nuclear")
// share the resource name but not the ratio.
const (
	FuelPerOxidizer = 9.0 / 11.0
	OxidizerPerFuel = 11.0 / 9.0
)

// Density returns the propellant's mass per resource unit in tons.
func (p PropellantType) Density() float64 {
	if p < 0 || p >= NumPropellants {
		return 0
	}
	return propellantDensity[p]
}

// String returns the in-game resource name.
func (p PropellantType) String() string {
	if p < 0 || p >= NumPropellants {
		return fmt.Sprintf("PropellantType(%d)", int(p))
	}
	return propellantName[p]
}

// PropellantByName maps a resource name to its PropellantType.
// Returns false for resources the simulation does not model (those are
// folded into dry mass by the stage mass accountant).
func PropellantByName(name string) (PropellantType, bool) {
	for i, n := range propellantName {
		if n == name {
			return PropellantType(i), true
		}
	}
	return 0, false
}
