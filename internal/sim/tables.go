package sim

import (
	"github.com/kspkit/stagesim/internal/fuelgraph"
	"github.com/kspkit/stagesim/pkg/vessel"
)

// flowRow holds one zone's per-propellant consumption and thrust for one
// stage. Consumption is in tons/s, thrust in kN. Thrust is attributed to
// the propellant row that gates it: the Oxidizer row for dual-propellant
// engines, the engine's single propellant otherwise.
type flowRow struct {
	con    [vessel.NumPropellants]float64
	thruV  [vessel.NumPropellants]float64
	thruA  [vessel.NumPropellants]float64
	thruSL [vessel.NumPropellants]float64
}

func (r *flowRow) hasFlow() bool {
	for _, c := range r.con {
		if c > 0 {
			return true
		}
	}
	return false
}

// zoneTable is a zone's flow rows across all stages.
type zoneTable struct {
	zone *fuelgraph.Zone
	rows []flowRow // indexed by stage
}

// stageInit is a stage's aggregate consumption/thrust at stage start,
// before any fuel-availability gating. The "instantaneous" ISP convention
// reads these.
type stageInit struct {
	con    float64
	thruV  float64
	thruA  float64
	thruSL float64
}

// buildTables computes, per zone, per stage, per propellant, the mass-flow
// rate and thrust contributed by every engine active in that stage.
//
// An engine consuming both LiquidFuel and Oxidizer is dual-propellant: its
// LiquidFuel row is left zero and the paired fuel flow is reconstructed
// from the Oxidizer rate times 9/11 at burn time, so that single-
// propellant engines drawing the same LiquidFuel are not double-counted.
func buildTables(g *fuelgraph.Graph, pressureAtm float64, nStages int) (map[*fuelgraph.Zone]*zoneTable, []stageInit) {
	tables := make(map[*fuelgraph.Zone]*zoneTable, len(g.Zones))
	inits := make([]stageInit, nStages)

	for _, z := range g.Zones {
		t := &zoneTable{zone: z, rows: make([]flowRow, nStages)}
		tables[z] = t

		for _, e := range z.Engines {
			lim := e.ThrustLimiter
			thruV := e.VacuumThrust * lim
			thruA := e.PossibleThrustAt(pressureAtm) * lim
			thruSL := e.PossibleThrustAt(1) * lim
			dual := e.ConsumesBoth()

			for s := 0; s < nStages; s++ {
				if !e.ActiveInStage(s) {
					continue
				}
				row := &t.rows[s]
				thrustDone := false
				for p := vessel.PropellantType(0); p < vessel.NumPropellants; p++ {
					flow := e.FlowRate[p] * lim
					if flow <= 0 {
						continue
					}
					inits[s].con += flow
					if dual && p == vessel.LiquidFuel {
						// Reconstructed from Oxidizer later.
						continue
					}
					row.con[p] += flow
					if !thrustDone {
						row.thruV[p] += thruV
						row.thruA[p] += thruA
						row.thruSL[p] += thruSL
						thrustDone = true
					}
				}
				if thrustDone {
					inits[s].thruV += thruV
					inits[s].thruA += thruA
					inits[s].thruSL += thruSL
				}
			}
		}
	}

	return tables, inits
}
