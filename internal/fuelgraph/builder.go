package fuelgraph

import (
	"log/slog"

	"github.com/kspkit/stagesim/internal/queue"
	"github.com/kspkit/stagesim/pkg/vessel"
)

// Options tune traversal behavior. Tag names let the user override the
// engine-plate attachment heuristics on a per-part basis.
type Options struct {
	// PlateKeepTag marks a part hanging off an engine plate as attached
	// (claimed into the plate's zone) even when the heuristics say
	// otherwise.
	PlateKeepTag string

	// PlateDropTag forces a part to be treated as decoupled from an
	// engine plate.
	PlateDropTag string
}

// DefaultOptions returns the stock tag names.
func DefaultOptions() Options {
	return Options{
		PlateKeepTag: "keep",
		PlateDropTag: "drop",
	}
}

// Graph is the resolved fuel-zone topology of one snapshot.
type Graph struct {
	Zones []*Zone

	snap   vessel.Snapshot
	opts   Options
	logger *slog.Logger
	zoneOf map[*vessel.Part]*Zone
}

// ZoneOf returns the zone claiming the part, or nil when the part belongs
// to no zone.
func (g *Graph) ZoneOf(p *vessel.Part) *Zone {
	return g.zoneOf[p]
}

// Build partitions the snapshot's parts into fuel zones. Every engine not
// yet claimed seeds a bidirectional traversal (children and parent) that
// claims fuel-bearing parts, engines and ducts, transits crossfeed-enabled
// boundaries, and stops at crossfeed blockers. A traversal that reaches an
// already-claimed part merges into that zone, widening its stage bounds.
func Build(snap vessel.Snapshot, opts Options, logger *slog.Logger) *Graph {
	g := &Graph{
		snap:   snap,
		opts:   opts,
		logger: logger,
		zoneOf: make(map[*vessel.Part]*Zone),
	}

	engineOf := make(map[*vessel.Part]*vessel.Engine, len(snap.Engines()))
	for _, e := range snap.Engines() {
		engineOf[e.Part] = e
	}

	for _, eng := range snap.Engines() {
		if z := g.zoneOf[eng.Part]; z != nil {
			// Another traversal already claimed this engine: two
			// differently staged engines share one reservoir.
			// Widen the zone's bounds to the extremes found.
			z.widen(eng.ActivationStage, eng.DecoupledIn)
			continue
		}
		g.traverse(eng, engineOf)
	}

	return g
}

// traverse claims parts reachable from the seed engine into a zone. If the
// walk touches parts claimed by existing zones, everything collapses into
// the first such zone (reservoirs connected without an intervening
// decoupler are one zone).
func (g *Graph) traverse(seed *vessel.Engine, engineOf map[*vessel.Part]*vessel.Engine) {
	visited := map[*vessel.Part]bool{seed.Part: true}
	work := queue.New[*vessel.Part]()
	work.Push(seed.Part)

	var members []*vessel.Part
	var target *Zone // existing zone to merge into, if any

	for {
		p, ok := work.PopOK()
		if !ok {
			break
		}

		if z := g.zoneOf[p]; z != nil {
			// Claimed by an earlier traversal. Its region is
			// already explored, so record the merge target and do
			// not expand further through it.
			if target == nil {
				target = z
			} else if target != z {
				g.merge(target, z)
			}
			continue
		}
		// Only fuel carriers, engines and ducts become members;
		// structural parts are transited without being claimed.
		if p.HasFuel() || p.IsEngine || p.Kind == vessel.FuelDuct {
			members = append(members, p)
		}

		neighbors := make([]*vessel.Part, 0, len(p.Children)+1)
		if p.Parent != nil {
			neighbors = append(neighbors, p.Parent)
		}
		neighbors = append(neighbors, p.Children...)

		for _, n := range neighbors {
			if visited[n] {
				continue
			}
			visited[n] = true

			if !g.canTransit(p, n) {
				continue
			}

			if n.Kind == vessel.FuelDuct {
				// Ducts are claimed but never expanded: the
				// far side belongs to another zone and is
				// wired up by ResolveDucts.
				members = append(members, n)
				continue
			}
			work.Push(n)
		}
	}

	if target == nil {
		target = &Zone{
			ID:              len(g.Zones),
			ActivationStage: vessel.NeverStaged,
			DecoupledStage:  seed.Part.DecoupledIn,
		}
		g.Zones = append(g.Zones, target)
	}
	g.claim(target, members, engineOf)
	target.widen(seed.ActivationStage, seed.DecoupledIn)
	g.logger.Debug("fuel zone built",
		"zone", target.ID,
		"parts", len(target.Parts),
		"engines", len(target.Engines),
		"activation", target.ActivationStage,
		"decoupled", target.DecoupledStage)
}

// canTransit decides whether traversal may step from part p onto neighbor n.
func (g *Graph) canTransit(p, n *vessel.Part) bool {
	if n.BlocksCrossfeed {
		return false
	}

	// Children hanging off an engine plate are claimed only when
	// attached to the plate's top node, explicitly tagged as kept, or
	// engines mounted directly on the plate. Everything else on the
	// plate is treated as decoupled.
	if p.Kind == vessel.EnginePlate && n.Parent == p {
		if n.HasTag(g.opts.PlateDropTag) {
			return false
		}
		return n.AttachedToTopNode || n.HasTag(g.opts.PlateKeepTag) || n.IsEngine
	}

	// Part kinds are validated at snapshot decode, so only the
	// crossfeed flag matters here.
	if n.Kind.IsDecouplerFamily() {
		return n.CrossfeedEnabled
	}

	return true
}

// claim records members into the zone and fills its role views.
func (g *Graph) claim(z *Zone, members []*vessel.Part, engineOf map[*vessel.Part]*vessel.Engine) {
	for _, p := range members {
		if g.zoneOf[p] != nil {
			continue
		}
		g.zoneOf[p] = z
		z.Parts = append(z.Parts, p)

		if e := engineOf[p]; e != nil {
			z.Engines = append(z.Engines, e)
		}
		if p.Kind == vessel.FuelDuct {
			z.Ducts = append(z.Ducts, p)
		}
		if p.HasFuel() && !p.IsEngine {
			z.Tanks = append(z.Tanks, p)
		}
		for _, r := range p.Resources {
			z.Fuel[r.Type] += r.Mass()
		}
		z.DecoupledStage = laterStage(z.DecoupledStage, p.DecoupledIn)
	}
}

// merge folds zone b into zone a when a traversal connects them.
func (g *Graph) merge(a, b *Zone) {
	for _, p := range b.Parts {
		g.zoneOf[p] = a
	}
	a.Parts = append(a.Parts, b.Parts...)
	a.Tanks = append(a.Tanks, b.Tanks...)
	a.Engines = append(a.Engines, b.Engines...)
	a.Ducts = append(a.Ducts, b.Ducts...)
	for i := range b.Fuel {
		a.Fuel[i] += b.Fuel[i]
	}
	a.widen(b.ActivationStage, b.DecoupledStage)

	for i, z := range g.Zones {
		if z == b {
			g.Zones = append(g.Zones[:i], g.Zones[i+1:]...)
			break
		}
	}
	for i, z := range g.Zones {
		z.ID = i
	}
}
