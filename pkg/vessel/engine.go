package vessel

// Engine wraps an engine Part with its propulsion data.
type Engine struct {
	*Part

	// ThrustLimiter is the tweakable thrust fraction in [0,1].
	ThrustLimiter float64

	// VacuumThrust and SeaLevelThrust in kilonewtons at full throttle.
	VacuumThrust   float64
	SeaLevelThrust float64

	// FlowRate is the maximum propellant mass flow in tons per second,
	// indexed by PropellantType, before the thrust limiter is applied.
	FlowRate [NumPropellants]float64
}

// PossibleThrustAt returns the engine's full-throttle thrust at the given
// atmospheric pressure in atmospheres. Thrust varies linearly between the
// sea-level and vacuum figures; past 1 atm it keeps falling on the same
// slope but never below zero.
func (e *Engine) PossibleThrustAt(pressureAtm float64) float64 {
	if pressureAtm <= 0 {
		return e.VacuumThrust
	}
	t := e.VacuumThrust + (e.SeaLevelThrust-e.VacuumThrust)*pressureAtm
	if t < 0 {
		return 0
	}
	return t
}

// ConsumesBoth reports whether the engine draws both LiquidFuel and
// Oxidizer, i.e. is a dual-propellant rocket engine.
func (e *Engine) ConsumesBoth() bool {
	return e.FlowRate[LiquidFuel] > 0 && e.FlowRate[Oxidizer] > 0
}

// ActiveInStage reports whether the engine burns during stage s: from its
// activation stage (inclusive) until the stage it is decoupled in
// (exclusive). Stage indices count down toward zero.
func (e *Engine) ActiveInStage(s int) bool {
	if e.ActivationStage == NeverStaged {
		return false
	}
	if s > e.ActivationStage {
		return false
	}
	if e.DecoupledIn != NeverStaged && s <= e.DecoupledIn {
		return false
	}
	return true
}

// Snapshot is the point-in-time vessel state the engine computes over.
// Implementations must be immutable for the duration of a computation.
type Snapshot interface {
	// Name identifies the vessel, for logging and run records.
	Name() string

	// Parts enumerates every part of the vessel.
	Parts() []*Part

	// Engines enumerates every engine with its propulsion data.
	Engines() []*Engine

	// CurrentStage is the highest (active) stage index.
	CurrentStage() int

	// CurrentPressure is the ambient atmospheric pressure around the
	// vessel, in atmospheres.
	CurrentPressure() float64
}
