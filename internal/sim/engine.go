package sim

import (
	"fmt"

	"github.com/kspkit/stagesim/internal/fuelgraph"
	"github.com/kspkit/stagesim/pkg/vessel"
)

// Compute runs the full staging analysis over one snapshot: zone graph,
// duct edges, inert-mass accounting, consumption/thrust tables, the
// substage burn simulation per stage, and the summary integration. The
// returned slice is indexed by stage; index zero is the vessel's lowest
// stage, the last index its active stage.
//
// The computation is deterministic and keeps no state between calls.
func Compute(snap vessel.Snapshot, opts Options) ([]StageSummary, error) {
	opts.normalize()

	pressureAtm := opts.Pressure.atm
	if opts.Pressure.current {
		pressureAtm = snap.CurrentPressure()
	}
	if pressureAtm < 0 || pressureAtm > 100 {
		return nil, fmt.Errorf("%w: %g", ErrInvalidPressure, pressureAtm)
	}

	nStages := snap.CurrentStage() + 1
	if nStages < 1 {
		nStages = 1
	}

	g := fuelgraph.Build(snap, opts.Graph, opts.Logger)
	if err := g.ResolveDucts(); err != nil {
		return nil, fmt.Errorf("resolving fuel ducts: %w", err)
	}

	inert, err := accountInertMass(snap, g, &opts, nStages)
	if err != nil {
		return nil, fmt.Errorf("accounting stage mass: %w", err)
	}

	tables, inits := buildTables(g, pressureAtm, nStages)

	stages, err := simulate(g, tables, inits, &opts)
	if err != nil {
		return nil, err
	}

	return summarize(stages, inert, &opts, pressureAtm), nil
}
