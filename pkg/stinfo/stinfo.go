// Package stinfo is the public entry point of the staging engine: it
// computes per-stage mass, thrust, ISP, delta-v and burn time for a
// vessel snapshot with branching, cross-fed and duct-linked tank
// topology.
//
// The computation is pure and synchronous; callers typically run it once
// before a burn and cache the result.
package stinfo

import (
	"log/slog"

	"github.com/kspkit/stagesim/internal/sim"
	"github.com/kspkit/stagesim/pkg/vessel"
)

// StageSummary is the immutable per-stage performance record. Masses are
// in tons, thrust in kN, ISP in seconds, delta-v in m/s, durations in
// seconds.
type StageSummary struct {
	Stage int

	StartMass  float64
	EndMass    float64
	StagedMass float64
	FuelBurned float64

	TWRStart float64
	TWRPeak  float64
	SLTStart float64
	SLTPeak  float64

	ThrustVac float64
	ThrustAmb float64

	// IspVac and IspAmb follow the instantaneous convention (stage-
	// start thrust over consumption); IspVacLog and IspAmbLog are
	// back-solved from accumulated delta-v and the stage's mass ratio.
	IspVac    float64
	IspAmb    float64
	IspVacLog float64
	IspAmbLog float64

	DeltaVVac float64
	DeltaVAmb float64

	BurnDuration float64

	// Pressure is the ambient pressure used, in atmospheres.
	Pressure float64
}

// Option configures a computation.
type Option func(*sim.Options)

// AtAtmospheres computes ambient thrust at a fixed pressure in [0,100]
// atmospheres. Out-of-range values fail the computation.
func AtAtmospheres(atm float64) Option {
	return func(o *sim.Options) { o.Pressure = sim.AtAtmospheres(atm) }
}

// AtCurrentPressure computes ambient thrust at the vessel's pressure at
// snapshot time. This is the default.
func AtCurrentPressure() Option {
	return func(o *sim.Options) { o.Pressure = sim.CurrentPressure() }
}

// WithLogger injects the diagnostic sink.
func WithLogger(l *slog.Logger) Option {
	return func(o *sim.Options) { o.Logger = l }
}

// WithSurfaceGravity sets the gravity used for TWR, in m/s².
func WithSurfaceGravity(g float64) Option {
	return func(o *sim.Options) { o.SurfaceGravity = g }
}

// WithPhysicsTick sets the host's physics step in seconds. Burn intervals
// shorter than one tick are folded away. Non-positive values keep the
// default.
func WithPhysicsTick(seconds float64) Option {
	return func(o *sim.Options) { o.PhysicsTick = seconds }
}

// WithPlateTags overrides the nametags that pin or shed parts hanging off
// an engine plate.
func WithPlateTags(keep, drop string) Option {
	return func(o *sim.Options) {
		o.Graph.PlateKeepTag = keep
		o.Graph.PlateDropTag = drop
	}
}

// StrictFairings makes malformed fairing parts fatal instead of warned.
func StrictFairings() Option {
	return func(o *sim.Options) { o.StrictFairings = true }
}

// Compute runs the staging analysis over the snapshot. The returned
// slice is keyed by stage index: index 0 is the vessel's first (lowest)
// stage, the last index the active stage. The result is read-only; the
// snapshot is not mutated.
func Compute(snap vessel.Snapshot, options ...Option) ([]StageSummary, error) {
	opts := sim.DefaultOptions()
	for _, o := range options {
		o(&opts)
	}

	raw, err := sim.Compute(snap, opts)
	if err != nil {
		return nil, err
	}

	out := make([]StageSummary, len(raw))
	for i, r := range raw {
		out[i] = StageSummary{
			Stage:        r.Stage,
			StartMass:    r.StartMass,
			EndMass:      r.EndMass,
			StagedMass:   r.StagedMass,
			FuelBurned:   r.FuelBurned,
			TWRStart:     r.TWRStart,
			TWRPeak:      r.TWRPeak,
			SLTStart:     r.SLTStart,
			SLTPeak:      r.SLTPeak,
			ThrustVac:    r.ThrustVac,
			ThrustAmb:    r.ThrustAmb,
			IspVac:       r.IspVac,
			IspAmb:       r.IspAmb,
			IspVacLog:    r.IspVacLog,
			IspAmbLog:    r.IspAmbLog,
			DeltaVVac:    r.DeltaVVac,
			DeltaVAmb:    r.DeltaVAmb,
			BurnDuration: r.BurnDuration,
			Pressure:     r.Pressure,
		}
	}
	return out, nil
}
