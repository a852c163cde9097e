package sim

import (
	"log/slog"

	"github.com/kspkit/stagesim/pkg/vessel"
)

// fixture is a hand-built snapshot for simulation tests.
type fixture struct {
	name     string
	parts    []*vessel.Part
	engines  []*vessel.Engine
	stage    int
	pressure float64
}

func (f *fixture) Name() string              { return f.name }
func (f *fixture) Parts() []*vessel.Part     { return f.parts }
func (f *fixture) Engines() []*vessel.Engine { return f.engines }
func (f *fixture) CurrentStage() int         { return f.stage }
func (f *fixture) CurrentPressure() float64  { return f.pressure }

func newFixture(currentStage int) *fixture {
	return &fixture{name: "test vessel", stage: currentStage, pressure: 0}
}

func (f *fixture) add(p *vessel.Part) *vessel.Part {
	p.ID = len(f.parts)
	f.parts = append(f.parts, p)
	return p
}

// engine registers p as an engine with the given thrust and flow rates.
func (f *fixture) engine(p *vessel.Part, vac, sl float64, flow map[vessel.PropellantType]float64) *vessel.Engine {
	p.IsEngine = true
	f.add(p)
	e := &vessel.Engine{
		Part:           p,
		ThrustLimiter:  1,
		VacuumThrust:   vac,
		SeaLevelThrust: sl,
	}
	for pt, rate := range flow {
		e.FlowRate[pt] = rate
	}
	f.engines = append(f.engines, e)
	return e
}

// totalMass sums every part's dry, propellant and unmodeled resource mass.
func (f *fixture) totalMass() float64 {
	var m float64
	for _, p := range f.parts {
		m += p.DryMass + p.FuelMass() + p.UnmodeledResourceMass
	}
	return m
}

func link(parent, child *vessel.Part) {
	child.Parent = parent
	parent.Children = append(parent.Children, child)
}

func tank(name string, decoupledIn int, resources ...vessel.Resource) *vessel.Part {
	return &vessel.Part{
		Name:            name,
		DryMass:         0.5,
		Resources:       resources,
		ActivationStage: vessel.NeverStaged,
		DecoupledIn:     decoupledIn,
	}
}

func lfox(units float64) []vessel.Resource {
	return []vessel.Resource{
		{Type: vessel.LiquidFuel, Amount: units * 9.0 / 20.0},
		{Type: vessel.Oxidizer, Amount: units * 11.0 / 20.0},
	}
}

func solid(units float64) []vessel.Resource {
	return []vessel.Resource{{Type: vessel.SolidFuel, Amount: units}}
}

// vacOpts returns quiet options pinned to vacuum so expected values do not
// depend on the fixture's ambient pressure.
func vacOpts() Options {
	o := DefaultOptions()
	o.Pressure = AtAtmospheres(0)
	o.Logger = testLogger()
	return o
}

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
