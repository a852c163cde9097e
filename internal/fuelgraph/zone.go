// Package fuelgraph partitions a vessel snapshot into fuel zones and
// resolves fuel-duct transfer edges between them. A fuel zone is the
// maximal set of parts sharing one propellant reservoir via crossfeed;
// ducts move propellant between zones that crossfeed cannot join.
package fuelgraph

import (
	"github.com/kspkit/stagesim/pkg/vessel"
)

// Zone is one fuel-sharing equivalence class of parts.
type Zone struct {
	ID int

	// Parts holds every claimed member. Tanks, Engines and Ducts are
	// role views over the same membership.
	Parts   []*vessel.Part
	Tanks   []*vessel.Part
	Engines []*vessel.Engine
	Ducts   []*vessel.Part

	// ActivationStage is the earliest engine activation among members
	// (the largest stage index, stages count down in flight order).
	// vessel.NeverStaged when the zone has no staged engine.
	ActivationStage int

	// DecoupledStage is the latest removal among members: the smallest
	// DecoupledIn index, with vessel.NeverStaged dominating.
	DecoupledStage int

	// Fuel is the current propellant mass aboard the zone in tons,
	// mutated by the substage simulator as it burns.
	Fuel [vessel.NumPropellants]float64

	Incoming []*DuctEdge
	Outgoing *DuctEdge // at most one, validated by ResolveDucts
}

// DuctEdge is a directed propellant-transfer link between two zones.
type DuctEdge struct {
	Source *Zone
	Dest   *Zone
}

// AttachedAt reports whether the zone is still part of the vessel during
// stage s.
func (z *Zone) AttachedAt(s int) bool {
	return z.DecoupledStage == vessel.NeverStaged || s > z.DecoupledStage
}

// HasFuel reports whether the zone holds more than eps tons of the given
// propellant.
func (z *Zone) HasFuel(p vessel.PropellantType, eps float64) bool {
	return z.Fuel[p] > eps
}

// TotalFuel returns the zone's total propellant mass in tons.
func (z *Zone) TotalFuel() float64 {
	var m float64
	for _, f := range z.Fuel {
		m += f
	}
	return m
}

// laterStage returns whichever stage index happens later in flight.
// Stages count down, so later means smaller, and NeverStaged is latest
// of all.
func laterStage(a, b int) int {
	if a == vessel.NeverStaged || b == vessel.NeverStaged {
		return vessel.NeverStaged
	}
	if a < b {
		return a
	}
	return b
}

// earlierStage returns whichever stage index happens earlier in flight.
func earlierStage(a, b int) int {
	if a == vessel.NeverStaged {
		return b
	}
	if b == vessel.NeverStaged {
		return a
	}
	if a > b {
		return a
	}
	return b
}

// widen extends the zone's activation/decouple bounds to include a newly
// merged member's stage extents.
func (z *Zone) widen(activation, decoupled int) {
	if activation != vessel.NeverStaged {
		if z.ActivationStage == vessel.NeverStaged {
			z.ActivationStage = activation
		} else {
			z.ActivationStage = earlierStage(z.ActivationStage, activation)
		}
	}
	z.DecoupledStage = laterStage(z.DecoupledStage, decoupled)
}
