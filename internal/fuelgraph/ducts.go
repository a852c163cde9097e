package fuelgraph

import (
	"fmt"

	"github.com/kspkit/stagesim/internal/queue"
	"github.com/kspkit/stagesim/pkg/vessel"
)

// ResolveDucts determines the destination zone of every zone's fuel duct
// and records the directed edges on both endpoints. Destination
// resolution prefers a unique part sharing the duct's user tag; without a
// tag (or with an ambiguous one, which is logged) it falls back to the far
// side of the decoupler the duct straddles. A duct that resolves back to
// its own zone is a no-op and is dropped.
func (g *Graph) ResolveDucts() error {
	for _, z := range g.Zones {
		if len(z.Ducts) == 0 {
			continue
		}
		if len(z.Ducts) > 1 {
			return fmt.Errorf("%w: zone %d has %d", ErrUnsupportedTopology, z.ID, len(z.Ducts))
		}

		duct := z.Ducts[0]
		dest, err := g.resolveDestination(z, duct)
		if err != nil {
			return err
		}
		if dest == z {
			g.logger.Debug("fuel duct resolves to its own zone, ignored",
				"zone", z.ID, "duct", duct.Name)
			continue
		}

		edge := &DuctEdge{Source: z, Dest: dest}
		z.Outgoing = edge
		dest.Incoming = append(dest.Incoming, edge)

		// Upstream drains before downstream, so a source outliving
		// its destination is a suspect snapshot.
		if dest.DecoupledStage != vessel.NeverStaged &&
			(z.DecoupledStage == vessel.NeverStaged || z.DecoupledStage < dest.DecoupledStage) {
			g.logger.Warn("fuel duct source decouples after its destination",
				"source", z.ID, "dest", dest.ID)
		}
	}
	return nil
}

// resolveDestination finds the zone a duct feeds.
func (g *Graph) resolveDestination(src *Zone, duct *vessel.Part) (*Zone, error) {
	if duct.Tag != "" {
		if dest, ok := g.destByTag(src, duct); ok {
			return dest, nil
		}
		g.logger.Warn("duct tag matched no unique target, falling back to decoupler inference",
			"zone", src.ID, "duct", duct.Name, "tag", duct.Tag)
	}
	if dest := g.destByDecoupler(src, duct); dest != nil {
		return dest, nil
	}
	return nil, fmt.Errorf("%w: duct %q in zone %d", ErrDuctDestination, duct.Name, src.ID)
}

// destByTag looks for exactly one other part carrying the duct's tag.
func (g *Graph) destByTag(src *Zone, duct *vessel.Part) (*Zone, bool) {
	var match *vessel.Part
	for _, p := range g.snap.Parts() {
		if p == duct || !p.HasTag(duct.Tag) {
			continue
		}
		if match != nil {
			return nil, false
		}
		match = p
	}
	if match == nil {
		return nil, false
	}
	dest := g.zoneOf[match]
	if dest == nil {
		return nil, false
	}
	return dest, true
}

// destByDecoupler walks outward from the duct and returns the first zone on
// the far side of the boundary the duct straddles, i.e. the nearest claimed
// part that does not belong to the source zone.
func (g *Graph) destByDecoupler(src *Zone, duct *vessel.Part) *Zone {
	visited := map[*vessel.Part]bool{duct: true}
	work := queue.New[*vessel.Part]()
	work.Push(duct)

	for {
		p, ok := work.PopOK()
		if !ok {
			return nil
		}
		if z := g.zoneOf[p]; z != nil && z != src {
			return z
		}
		if p.Parent != nil && !visited[p.Parent] {
			visited[p.Parent] = true
			work.Push(p.Parent)
		}
		for _, c := range p.Children {
			if !visited[c] {
				visited[c] = true
				work.Push(c)
			}
		}
	}
}
