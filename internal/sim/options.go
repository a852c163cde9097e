// Package sim is the staging engine: it decomposes a vessel snapshot into
// per-stage burn intervals with piecewise-constant consumption and thrust,
// integrates the mass-flow physics over them, and reports per-stage
// performance. The computation is pure and synchronous; all mutable state
// lives in per-invocation contexts.
package sim

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/kspkit/stagesim/internal/fuelgraph"
)

// StandardGravity is g0 in m/s², used for ISP and TWR conversions.
const StandardGravity = 9.80665

// fuelEpsilon is the threshold below which a fuel quantity is treated as
// exactly zero, suppressing floating-point drift.
const fuelEpsilon = 1e-6

// negativeFuelTolerance bounds how far below zero a post-subtraction fuel
// amount may drift before it is an invariant violation.
const negativeFuelTolerance = 1e-6

// conservationTolerance is the relative divergence allowed between the sum
// of substage consumption and the stage's recorded fuel burned before a
// diagnostic is logged.
const conservationTolerance = 1e-3

// ErrInvalidPressure is returned for an atmospheric-pressure parameter
// outside [0,100] atm.
var ErrInvalidPressure = errors.New("atmospheric pressure out of range [0,100]")

// InvariantError indicates a simulator defect (not a user-facing input
// problem): the computation reached a state its invariants forbid.
type InvariantError struct {
	Msg string
}

func (e *InvariantError) Error() string {
	return "simulation invariant violated: " + e.Msg
}

func invariantf(format string, args ...any) error {
	return &InvariantError{Msg: fmt.Sprintf(format, args...)}
}

// Pressure selects the ambient pressure for thrust computation: either a
// fixed value in atmospheres or the vessel's current ambient pressure.
type Pressure struct {
	current bool
	atm     float64
}

// AtAtmospheres selects a fixed pressure in atmospheres.
func AtAtmospheres(atm float64) Pressure {
	return Pressure{atm: atm}
}

// CurrentPressure selects the vessel's ambient pressure at snapshot time.
func CurrentPressure() Pressure {
	return Pressure{current: true}
}

// Options configure one computation.
type Options struct {
	Pressure Pressure

	// PhysicsTick is the host's physics step in seconds. Burn intervals
	// shorter than one tick are folded away rather than emitted as
	// substages.
	PhysicsTick float64

	// SurfaceGravity in m/s² for TWR. Defaults to StandardGravity.
	SurfaceGravity float64

	// StrictFairings makes a malformed fairing part fatal instead of a
	// logged warning.
	StrictFairings bool

	Graph fuelgraph.Options

	Logger *slog.Logger
}

// DefaultOptions returns options for a vacuum-referenced computation at
// the vessel's current pressure.
func DefaultOptions() Options {
	return Options{
		Pressure:       CurrentPressure(),
		PhysicsTick:    0.02,
		SurfaceGravity: StandardGravity,
		Graph:          fuelgraph.DefaultOptions(),
		Logger:         slog.Default(),
	}
}

func (o *Options) normalize() {
	if o.PhysicsTick <= 0 {
		o.PhysicsTick = 0.02
	}
	if o.SurfaceGravity <= 0 {
		o.SurfaceGravity = StandardGravity
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	if o.Graph == (fuelgraph.Options{}) {
		o.Graph = fuelgraph.DefaultOptions()
	}
}
