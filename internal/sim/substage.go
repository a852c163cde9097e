package sim

import (
	"github.com/kspkit/stagesim/internal/fuelgraph"
	"github.com/kspkit/stagesim/pkg/vessel"
)

// Substage is one minimal-duration burn interval within a stage: every
// active zone/propellant combination burns at a constant rate for its
// whole length. Substages are emitted shortest-burn-first and their
// durations partition the stage's burn time.
type Substage struct {
	Duration  float64
	Con       float64 // aggregate consumption, tons/s
	ThrustVac float64 // kN
	ThrustAmb float64
	ThrustSL  float64
}

// Stage is the simulation record for one physical stage.
type Stage struct {
	Index      int
	Substages  []Substage
	FuelBurned float64 // tons
	Discarded  float64 // unburned fuel dropped at separation, tons
	BurnTime   float64 // seconds
	Init       stageInit
}

// stageContext carries all mutable state of one stage's simulation. It is
// rebuilt per stage; nothing survives a Compute call.
type stageContext struct {
	s      int
	g      *fuelgraph.Graph
	tables map[*fuelgraph.Zone]*zoneTable
	opts   *Options

	// drain maps reservoir zones to the per-propellant rates currently
	// pulled out of them, rebuilt every iteration.
	drain map[*fuelgraph.Zone]*[vessel.NumPropellants]float64

	// reach memoizes upstream-inclusive available fuel per iteration.
	reach map[reachKey]float64
}

type reachKey struct {
	zone *fuelgraph.Zone
	prop vessel.PropellantType
}

// simulate runs the substage loop for every stage from the current one
// down to zero, consuming zone fuel as it goes.
func simulate(g *fuelgraph.Graph, tables map[*fuelgraph.Zone]*zoneTable, inits []stageInit, opts *Options) ([]*Stage, error) {
	nStages := len(inits)
	stages := make([]*Stage, nStages)

	for s := nStages - 1; s >= 0; s-- {
		st := &Stage{Index: s, Init: inits[s]}
		stages[s] = st

		ctx := &stageContext{s: s, g: g, tables: tables, opts: opts}
		if err := ctx.run(st); err != nil {
			return nil, err
		}
	}
	return stages, nil
}

// run executes the iterative shortest-burn search for one stage.
func (ctx *stageContext) run(st *Stage) error {
	for {
		ctx.rebuild()

		// Fold away any reservoir whose remaining burn would be
		// shorter than one physics tick: consume the dribble and
		// re-resolve its consumers to the next upstream source.
		for ctx.consumeDribbles(st) {
			ctx.rebuild()
		}

		dt, ok := ctx.shortestBurn()
		if !ok {
			// Nothing can burn: stage separation is forced.
			break
		}

		sub := Substage{Duration: dt}
		for z, rates := range ctx.drain {
			for p, rate := range rates {
				if rate <= 0 {
					continue
				}
				sub.Con += rate
				z.Fuel[p] -= rate * dt
				if z.Fuel[p] < -negativeFuelTolerance {
					return invariantf("zone %d %s fuel negative after consumption: %g",
						z.ID, vessel.PropellantType(p), z.Fuel[p])
				}
				if z.Fuel[p] < fuelEpsilon {
					z.Fuel[p] = 0
				}
			}
		}
		sub.ThrustVac, sub.ThrustAmb, sub.ThrustSL = ctx.activeThrust()

		st.Substages = append(st.Substages, sub)
		st.FuelBurned += sub.Con * dt
		st.BurnTime += dt

		if ctx.canSeparate() {
			break
		}
	}

	// Fuel left in zones dropped at this separation leaves with them.
	// At stage zero nothing separates, but whatever could not be burned
	// is accounted the same way so end mass stays honest.
	for _, z := range ctx.g.Zones {
		if ctx.dropsAtSeparation(z) {
			st.Discarded += z.TotalFuel()
			for p := range z.Fuel {
				z.Fuel[p] = 0
			}
		}
	}
	return nil
}

// dropsAtSeparation reports whether the zone leaves the vessel when this
// stage separates. At stage zero every remaining zone "drops" for
// accounting purposes: its leftover fuel is dead mass.
func (ctx *stageContext) dropsAtSeparation(z *fuelgraph.Zone) bool {
	if ctx.s == 0 {
		return z.AttachedAt(0)
	}
	return z.AttachedAt(ctx.s) && z.DecoupledStage == ctx.s-1
}

// rebuild recomputes the drain-rate table from current fuel levels.
func (ctx *stageContext) rebuild() {
	ctx.drain = make(map[*fuelgraph.Zone]*[vessel.NumPropellants]float64)
	ctx.reach = make(map[reachKey]float64)

	for _, z := range ctx.g.Zones {
		if !z.AttachedAt(ctx.s) {
			continue
		}
		row := &ctx.tables[z].rows[ctx.s]
		for p := vessel.PropellantType(0); p < vessel.NumPropellants; p++ {
			rate := row.con[p]
			if rate <= 0 {
				continue
			}
			if !ctx.available(z, p) {
				continue
			}
			if p == vessel.Oxidizer && ctx.rowIsDual(z) {
				// Dual-propellant engines need both sides at
				// once; the paired LiquidFuel flows at 9/11
				// of the Oxidizer rate from its own source.
				if !ctx.available(z, vessel.LiquidFuel) {
					continue
				}
				ctx.assign(z, vessel.Oxidizer, rate, nil)
				ctx.assign(z, vessel.LiquidFuel, rate*vessel.FuelPerOxidizer, nil)
				continue
			}
			ctx.assign(z, p, rate, nil)
		}
	}
}

// rowIsDual reports whether the zone's Oxidizer consumption comes from
// dual-propellant engines (single-propellant engines never consume
// Oxidizer alone, so any Oxidizer row is dual).
func (ctx *stageContext) rowIsDual(z *fuelgraph.Zone) bool {
	for _, e := range z.Engines {
		if e.ActiveInStage(ctx.s) && e.ConsumesBoth() {
			return true
		}
	}
	return false
}

// available reports whether the zone's consumers can draw propellant p
// from the zone itself or anything upstream of it.
func (ctx *stageContext) available(z *fuelgraph.Zone, p vessel.PropellantType) bool {
	return ctx.reachableFuel(z, p, nil) > fuelEpsilon
}

// reachableFuel is fdfma: fuel mass available to zone z for propellant p,
// including everything flowing in over active duct edges. Solid fuel
// never crosses ducts. The guard set breaks duct cycles.
func (ctx *stageContext) reachableFuel(z *fuelgraph.Zone, p vessel.PropellantType, guard map[*fuelgraph.Zone]bool) float64 {
	if v, ok := ctx.reach[reachKey{z, p}]; ok {
		return v
	}
	if guard[z] {
		return 0
	}

	total := z.Fuel[p]
	if p != vessel.SolidFuel {
		if guard == nil {
			guard = make(map[*fuelgraph.Zone]bool)
		}
		guard[z] = true
		for _, e := range z.Incoming {
			if e.Source.AttachedAt(ctx.s) {
				total += ctx.reachableFuel(e.Source, p, guard)
			}
		}
		delete(guard, z)
	}

	ctx.reach[reachKey{z, p}] = total
	return total
}

// assign distributes a consumer zone's demand for propellant p onto the
// reservoirs it actually drains. Upstream sources drain before the local
// tank, and when several upstream branches hold fuel the demand fans in
// evenly across them; each branch recurses so the farthest source with
// fuel is hit first.
func (ctx *stageContext) assign(z *fuelgraph.Zone, p vessel.PropellantType, rate float64, guard map[*fuelgraph.Zone]bool) {
	if rate <= 0 {
		return
	}
	if guard[z] {
		return
	}

	if p != vessel.SolidFuel {
		var branches []*fuelgraph.Zone
		for _, e := range z.Incoming {
			if e.Source.AttachedAt(ctx.s) && ctx.reachableFuel(e.Source, p, nil) > fuelEpsilon {
				branches = append(branches, e.Source)
			}
		}
		if len(branches) > 0 {
			if guard == nil {
				guard = make(map[*fuelgraph.Zone]bool)
			}
			guard[z] = true
			share := rate / float64(len(branches))
			for _, b := range branches {
				ctx.assign(b, p, share, guard)
			}
			delete(guard, z)
			return
		}
	}

	if z.Fuel[p] > fuelEpsilon {
		rates := ctx.drain[z]
		if rates == nil {
			rates = &[vessel.NumPropellants]float64{}
			ctx.drain[z] = rates
		}
		rates[p] += rate
	}
}

// consumeDribbles removes reservoirs whose burn-out would be shorter than
// one physics tick: their residue is burned outright and the caller
// rebuilds the drain table, which re-resolves the demand downstream to
// the nearest zone that can still supply. Returns true when it consumed
// anything.
func (ctx *stageContext) consumeDribbles(st *Stage) bool {
	consumed := false
	for z, rates := range ctx.drain {
		for p, rate := range rates {
			if rate <= 0 || z.Fuel[p] <= 0 {
				continue
			}
			if z.Fuel[p]/rate < ctx.opts.PhysicsTick {
				st.FuelBurned += z.Fuel[p]
				z.Fuel[p] = 0
				consumed = true
			}
		}
	}
	return consumed
}

// shortestBurn finds the minimum positive burn-out time across all drained
// reservoirs.
func (ctx *stageContext) shortestBurn() (float64, bool) {
	best := 0.0
	found := false
	for z, rates := range ctx.drain {
		for p, rate := range rates {
			if rate <= 0 || z.Fuel[p] <= 0 {
				continue
			}
			t := z.Fuel[p] / rate
			if !found || t < best {
				best = t
				found = true
			}
		}
	}
	return best, found
}

// activeThrust sums the thrust of every zone/propellant row currently
// burning, including dual-propellant rows gated on both sides.
func (ctx *stageContext) activeThrust() (vac, amb, sl float64) {
	for _, z := range ctx.g.Zones {
		if !z.AttachedAt(ctx.s) {
			continue
		}
		row := &ctx.tables[z].rows[ctx.s]
		for p := vessel.PropellantType(0); p < vessel.NumPropellants; p++ {
			if row.con[p] <= 0 || !ctx.available(z, p) {
				continue
			}
			if p == vessel.Oxidizer && ctx.rowIsDual(z) && !ctx.available(z, vessel.LiquidFuel) {
				continue
			}
			vac += row.thruV[p]
			amb += row.thruA[p]
			sl += row.thruSL[p]
		}
	}
	return vac, amb, sl
}

// canSeparate reports whether the stage may legally separate: either no
// zone is active at all, or every zone that leaves at this separation has
// no fuel left that any active consumer still wants.
func (ctx *stageContext) canSeparate() bool {
	if ctx.s == 0 {
		// Stage zero never separates; the loop runs until nothing
		// can burn.
		return false
	}

	anyActive := false
	for _, z := range ctx.g.Zones {
		if z.AttachedAt(ctx.s) && ctx.tables[z].rows[ctx.s].hasFlow() {
			anyActive = true
			break
		}
	}
	if !anyActive {
		return true
	}

	for _, z := range ctx.g.Zones {
		if !ctx.dropsAtSeparation(z) {
			continue
		}
		for p := vessel.PropellantType(0); p < vessel.NumPropellants; p++ {
			if z.Fuel[p] > fuelEpsilon && ctx.wanted(z, p) {
				return false
			}
		}
	}
	return true
}

// wanted reports whether any active consumer can still draw propellant p
// out of reservoir z, directly or over duct chains. Fuel nobody will burn
// must not block separation.
func (ctx *stageContext) wanted(res *fuelgraph.Zone, p vessel.PropellantType) bool {
	for _, c := range ctx.g.Zones {
		if !c.AttachedAt(ctx.s) {
			continue
		}
		row := &ctx.tables[c].rows[ctx.s]
		demands := row.con[p] > 0
		if p == vessel.LiquidFuel && row.con[vessel.Oxidizer] > 0 && ctx.rowIsDual(c) {
			// Dual-propellant consumers draw LiquidFuel through
			// their Oxidizer row.
			demands = true
		}
		if !demands {
			continue
		}
		if ctx.drawsFrom(c, res, p, nil) {
			return true
		}
	}
	return false
}

// drawsFrom reports whether consumer zone c can reach reservoir res for
// propellant p (itself, or over active incoming duct chains; solid fuel
// is local only).
func (ctx *stageContext) drawsFrom(c, res *fuelgraph.Zone, p vessel.PropellantType, guard map[*fuelgraph.Zone]bool) bool {
	if c == res {
		return true
	}
	if p == vessel.SolidFuel || guard[c] {
		return false
	}
	if guard == nil {
		guard = make(map[*fuelgraph.Zone]bool)
	}
	guard[c] = true
	for _, e := range c.Incoming {
		if e.Source.AttachedAt(ctx.s) && ctx.drawsFrom(e.Source, res, p, guard) {
			return true
		}
	}
	return false
}
