package sim

import (
	"fmt"

	"github.com/kspkit/stagesim/internal/fuelgraph"
	"github.com/kspkit/stagesim/pkg/vessel"
)

// ReverseTag flips a decoupler's mass-side heuristic: the part's own mass
// is counted one stage later than the default orientation would assign.
const ReverseTag = "reverse"

// accountInertMass assigns every part's dry mass, plus any fuel mass the
// simulator will never burn, to the stage index at which that mass is
// dropped. The returned slice is indexed by stage.
func accountInertMass(snap vessel.Snapshot, g *fuelgraph.Graph, opts *Options, nStages int) ([]float64, error) {
	inert := make([]float64, nStages)

	clamp := func(s int) int {
		if s < 0 {
			return 0
		}
		if s > nStages-1 {
			return nStages - 1
		}
		return s
	}

	// dropStage is one past the part's decoupled-in stage: the last
	// stage during which the part is still aboard. Never-removed parts
	// ride down to stage 0.
	dropStage := func(p *vessel.Part) int {
		if p.DecoupledIn == vessel.NeverStaged {
			return 0
		}
		return clamp(p.DecoupledIn + 1)
	}

	for _, p := range snap.Parts() {
		s := dropStage(p)

		switch {
		case p.Kind.IsDecouplerFamily() && p.ActivationStage != vessel.NeverStaged:
			// A staged decoupler contributes its own mass to the
			// stage before it activates and nothing afterward.
			// Which side it falls with is an orientation
			// heuristic; the reverse tag keeps it one stage
			// longer.
			s = clamp(p.ActivationStage + 1)
			if p.HasTag(ReverseTag) {
				s = clamp(p.ActivationStage)
			}
			inert[s] += p.DryMass

		case p.Kind == vessel.FairingBase:
			panel := p.FairingPanelMass
			if panel < 0 || panel > p.DryMass {
				if opts.StrictFairings {
					return nil, fmt.Errorf("fairing %q has invalid panel mass %.3f", p.Name, panel)
				}
				opts.Logger.Warn("fairing has invalid panel mass, counted with the base",
					"part", p.Name, "panelMass", panel)
				panel = 0
			}
			// Panels jettison one stage earlier than the base is
			// dropped.
			inert[s] += p.DryMass - panel
			inert[clamp(s+1)] += panel

		default:
			inert[s] += p.DryMass
		}

		// Resource mass the simulator won't burn is plain inert
		// mass: unrecognized resources always, recognized propellant
		// only when the part belongs to no zone.
		inert[s] += p.UnmodeledResourceMass
		if g.ZoneOf(p) == nil {
			inert[s] += p.FuelMass()
		}
	}

	return inert, nil
}
