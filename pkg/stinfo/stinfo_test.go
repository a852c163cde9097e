package stinfo

import (
	"log/slog"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kspkit/stagesim/pkg/vessel"
)

type boosterSnap struct {
	pressure float64
	parts    []*vessel.Part
	engines  []*vessel.Engine
}

func (s *boosterSnap) Name() string              { return "booster" }
func (s *boosterSnap) Parts() []*vessel.Part     { return s.parts }
func (s *boosterSnap) Engines() []*vessel.Engine { return s.engines }
func (s *boosterSnap) CurrentStage() int         { return 0 }
func (s *boosterSnap) CurrentPressure() float64  { return s.pressure }

// newBooster is a single solid motor: 0.5 t dry under 3.0 t of fuel.
func newBooster(pressure float64) *boosterSnap {
	p := &vessel.Part{
		ID: 0, Name: "RT-10", DryMass: 0.5, IsEngine: true,
		ActivationStage: 0, DecoupledIn: vessel.NeverStaged,
		Resources: []vessel.Resource{{Type: vessel.SolidFuel, Amount: 400}},
	}
	e := &vessel.Engine{Part: p, ThrustLimiter: 1, VacuumThrust: 200, SeaLevelThrust: 180}
	e.FlowRate[vessel.SolidFuel] = 0.015
	return &boosterSnap{pressure: pressure, parts: []*vessel.Part{p}, engines: []*vessel.Engine{e}}
}

func quiet() Option {
	return WithLogger(slog.New(slog.DiscardHandler))
}

func TestCompute_Booster(t *testing.T) {
	sums, err := Compute(newBooster(0), quiet())
	require.NoError(t, err)
	require.Len(t, sums, 1)

	s := sums[0]
	assert.InDelta(t, 3.5, s.StartMass, 1e-9)
	assert.InDelta(t, 0.5, s.EndMass, 1e-9)
	assert.InDelta(t, 200.0, s.BurnDuration, 1e-6)
	assert.InDelta(t, 200.0/0.015*math.Log(7), s.DeltaVVac, 1e-6)
	assert.Zero(t, s.Pressure)
}

func TestCompute_PressureOptions(t *testing.T) {
	// The snapshot's ambient pressure is the default reference.
	sums, err := Compute(newBooster(1), quiet())
	require.NoError(t, err)
	assert.InDelta(t, 1.0, sums[0].Pressure, 1e-9)
	assert.InDelta(t, 180.0, sums[0].ThrustAmb, 1e-9)

	// An explicit pressure overrides it.
	sums, err = Compute(newBooster(1), quiet(), AtAtmospheres(0))
	require.NoError(t, err)
	assert.Zero(t, sums[0].Pressure)
	assert.InDelta(t, 200.0, sums[0].ThrustAmb, 1e-9)

	_, err = Compute(newBooster(1), quiet(), AtAtmospheres(101))
	require.Error(t, err)
}

func TestCompute_SurfaceGravity(t *testing.T) {
	earth, err := Compute(newBooster(0), quiet())
	require.NoError(t, err)
	moon, err := Compute(newBooster(0), quiet(), WithSurfaceGravity(1.62))
	require.NoError(t, err)

	// Lower gravity, higher TWR; delta-v is unaffected.
	assert.Greater(t, moon[0].TWRStart, earth[0].TWRStart)
	assert.InDelta(t, earth[0].DeltaVVac, moon[0].DeltaVVac, 1e-9)
}

func TestCompute_PhysicsTick(t *testing.T) {
	// A tick longer than the whole burn folds every interval away:
	// the fuel is still consumed, but no burn time or delta-v accrues.
	sums, err := Compute(newBooster(0), quiet(), WithPhysicsTick(250))
	require.NoError(t, err)
	require.Len(t, sums, 1)

	s := sums[0]
	assert.InDelta(t, 3.0, s.FuelBurned, 1e-9)
	assert.Zero(t, s.BurnDuration)
	assert.Zero(t, s.DeltaVVac)
	assert.InDelta(t, 3.5, s.StartMass, 1e-9)
	assert.InDelta(t, 0.5, s.EndMass, 1e-9)
}

// platedSnap is a tank-fed engine with an auxiliary tank hanging off an
// engine plate. The aux tank sits on a radial node and carries the
// nametag "pin", so only a matching keep tag claims it.
func platedSnap() *boosterSnap {
	main := &vessel.Part{
		ID: 0, Name: "main tank", DryMass: 0.5, DecoupledIn: vessel.NeverStaged,
		Resources: []vessel.Resource{
			{Type: vessel.LiquidFuel, Amount: 180},
			{Type: vessel.Oxidizer, Amount: 220},
		},
	}
	eng := &vessel.Part{
		ID: 1, Name: "engine", DryMass: 0.5, IsEngine: true,
		ActivationStage: 0, DecoupledIn: vessel.NeverStaged,
	}
	plate := &vessel.Part{
		ID: 2, Name: "plate", Kind: vessel.EnginePlate, DryMass: 0.1,
		CrossfeedEnabled: true,
		ActivationStage:  vessel.NeverStaged, DecoupledIn: vessel.NeverStaged,
	}
	aux := &vessel.Part{
		ID: 3, Name: "aux tank", DryMass: 0.2, DecoupledIn: vessel.NeverStaged,
		Tag: "pin",
		Resources: []vessel.Resource{
			{Type: vessel.LiquidFuel, Amount: 90},
			{Type: vessel.Oxidizer, Amount: 110},
		},
	}
	for _, c := range []*vessel.Part{eng, plate} {
		c.Parent = main
		main.Children = append(main.Children, c)
	}
	aux.Parent = plate
	plate.Children = []*vessel.Part{aux}

	e := &vessel.Engine{Part: eng, ThrustLimiter: 1, VacuumThrust: 100, SeaLevelThrust: 90}
	e.FlowRate[vessel.LiquidFuel] = 0.009
	e.FlowRate[vessel.Oxidizer] = 0.011

	return &boosterSnap{
		parts:   []*vessel.Part{main, eng, plate, aux},
		engines: []*vessel.Engine{e},
	}
}

func TestCompute_PlateTags(t *testing.T) {
	// Default heuristics treat the tagged aux tank as decoupled from the
	// plate, so its fuel is out of reach.
	sums, err := Compute(platedSnap(), quiet())
	require.NoError(t, err)
	require.Len(t, sums, 1)
	assert.InDelta(t, 2.0, sums[0].FuelBurned, 1e-9)

	// A matching keep tag pins it into the zone.
	sums, err = Compute(platedSnap(), quiet(), WithPlateTags("pin", "shed"))
	require.NoError(t, err)
	require.Len(t, sums, 1)
	assert.InDelta(t, 3.0, sums[0].FuelBurned, 1e-9)
	assert.InDelta(t, 4.3, sums[0].StartMass, 1e-9)
	assert.InDelta(t, 1.3, sums[0].EndMass, 1e-9)
}
