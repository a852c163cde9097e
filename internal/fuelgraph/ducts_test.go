package fuelgraph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kspkit/stagesim/pkg/vessel"
)

// boosterFixture builds a core stack with one side booster joined by a
// crossfeed-disabled decoupler, the booster carrying one fuel duct.
// Returns the fixture plus the duct and the two tanks for assertions.
func boosterFixture(t *testing.T, ductTag string) (*fixture, *vessel.Part, *vessel.Part, *vessel.Part) {
	t.Helper()
	f := newFixture(2)

	coreTank := f.add(tank("core tank", vessel.NeverStaged, lfox(400)...))
	coreEng := &vessel.Part{Name: "core engine", DryMass: 1.5,
		ActivationStage: 2, DecoupledIn: vessel.NeverStaged}
	f.engine(coreEng, 215, 168, map[vessel.PropellantType]float64{
		vessel.LiquidFuel: 0.03, vessel.Oxidizer: 0.03 * vessel.OxidizerPerFuel,
	})

	dec := f.add(&vessel.Part{Name: "radial decoupler", DryMass: 0.025,
		Kind: vessel.Decoupler, ActivationStage: 1, DecoupledIn: 1})
	boosterTank := f.add(tank("booster tank", 1, lfox(400)...))
	boosterEng := &vessel.Part{Name: "booster engine", DryMass: 1.5,
		ActivationStage: 2, DecoupledIn: 1}
	f.engine(boosterEng, 215, 168, map[vessel.PropellantType]float64{
		vessel.LiquidFuel: 0.03, vessel.Oxidizer: 0.03 * vessel.OxidizerPerFuel,
	})
	duct := f.add(&vessel.Part{Name: "FTX-2", DryMass: 0.05, Kind: vessel.FuelDuct,
		Tag: ductTag, ActivationStage: vessel.NeverStaged, DecoupledIn: 1})

	link(coreTank, coreEng)
	link(coreTank, dec)
	link(dec, boosterTank)
	link(boosterTank, boosterEng)
	link(boosterTank, duct)

	return f, duct, boosterTank, coreTank
}

func TestResolveDucts_DecouplerInference(t *testing.T) {
	f, _, boosterTank, coreTank := boosterFixture(t, "")

	g := Build(f, DefaultOptions(), testLogger())
	require.Len(t, g.Zones, 2)
	require.NoError(t, g.ResolveDucts())

	src := g.ZoneOf(boosterTank)
	dst := g.ZoneOf(coreTank)
	require.NotNil(t, src.Outgoing)
	assert.Same(t, src, src.Outgoing.Source)
	assert.Same(t, dst, src.Outgoing.Dest)
	require.Len(t, dst.Incoming, 1)
	assert.Same(t, src.Outgoing, dst.Incoming[0])
}

func TestResolveDucts_TagMatch(t *testing.T) {
	f, _, boosterTank, coreTank := boosterFixture(t, "feed-core")
	coreTank.Tag = "feed-core"

	g := Build(f, DefaultOptions(), testLogger())
	require.NoError(t, g.ResolveDucts())

	src := g.ZoneOf(boosterTank)
	require.NotNil(t, src.Outgoing)
	assert.Same(t, g.ZoneOf(coreTank), src.Outgoing.Dest)
}

func TestResolveDucts_AmbiguousTagFallsBack(t *testing.T) {
	// two parts carry the duct's tag, so tag matching is ambiguous and
	// decoupler inference takes over
	f, _, boosterTank, coreTank := boosterFixture(t, "feed")
	coreTank.Tag = "feed"
	coreTank.Children[0].Tag = "feed" // core engine too

	g := Build(f, DefaultOptions(), testLogger())
	require.NoError(t, g.ResolveDucts())

	src := g.ZoneOf(boosterTank)
	require.NotNil(t, src.Outgoing)
	assert.Same(t, g.ZoneOf(coreTank), src.Outgoing.Dest)
}

func TestResolveDucts_SelfEdgeIgnored(t *testing.T) {
	// duct tagged at a part inside its own zone is a no-op
	f, _, boosterTank, _ := boosterFixture(t, "self")
	boosterTank.Tag = "self"

	g := Build(f, DefaultOptions(), testLogger())
	require.NoError(t, g.ResolveDucts())

	src := g.ZoneOf(boosterTank)
	assert.Nil(t, src.Outgoing)
}

func TestResolveDucts_TwoDuctsFatal(t *testing.T) {
	f, _, boosterTank, _ := boosterFixture(t, "")
	second := f.add(&vessel.Part{Name: "FTX-2 (2)", DryMass: 0.05, Kind: vessel.FuelDuct,
		ActivationStage: vessel.NeverStaged, DecoupledIn: 1})
	link(boosterTank, second)

	g := Build(f, DefaultOptions(), testLogger())

	err := g.ResolveDucts()
	assert.ErrorIs(t, err, ErrUnsupportedTopology)
}
