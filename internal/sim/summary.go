package sim

import (
	"math"
)

// StageSummary is the per-stage performance record the engine returns.
// All masses are in tons, thrust in kN, ISP in seconds, delta-v in m/s.
type StageSummary struct {
	Stage int

	StartMass  float64
	EndMass    float64
	StagedMass float64
	FuelBurned float64

	TWRStart float64
	TWRPeak  float64
	SLTStart float64
	SLTPeak  float64

	ThrustVac float64
	ThrustAmb float64

	// Instantaneous ISP, from stage-start consumption and thrust. This
	// matches the simple in-game readout.
	IspVac float64
	IspAmb float64

	// Log-integrated ISP, back-solved from the accumulated delta-v and
	// the stage's overall mass ratio. This matches engineering tools.
	IspVacLog float64
	IspAmbLog float64

	DeltaVVac float64
	DeltaVAmb float64

	BurnDuration float64

	// Pressure is the atmospheric pressure used for ambient thrust, in
	// atmospheres.
	Pressure float64
}

// summarize integrates the substage records into cumulative stage
// summaries, walking stage zero upward so masses telescope.
func summarize(stages []*Stage, inert []float64, opts *Options, pressureAtm float64) []StageSummary {
	g0 := StandardGravity
	gSurf := opts.SurfaceGravity
	sums := make([]StageSummary, len(stages))

	prevStart := 0.0
	for s, st := range stages {
		sum := StageSummary{
			Stage:        s,
			FuelBurned:   st.FuelBurned,
			BurnDuration: st.BurnTime,
			ThrustVac:    st.Init.thruV,
			ThrustAmb:    st.Init.thruA,
			Pressure:     pressureAtm,
		}

		sum.EndMass = prevStart + inert[s] + st.Discarded
		sum.StartMass = sum.EndMass + st.FuelBurned
		sum.StagedMass = sum.EndMass - prevStart

		if st.Init.con > 0 {
			sum.IspVac = st.Init.thruV / (st.Init.con * g0)
			sum.IspAmb = st.Init.thruA / (st.Init.con * g0)
		}

		m := sum.StartMass
		burnedCheck := 0.0
		for i, sub := range st.Substages {
			if sub.Con <= 0 || sub.Duration <= 0 {
				continue
			}
			ispV := sub.ThrustVac / (sub.Con * g0)
			ispA := sub.ThrustAmb / (sub.Con * g0)
			fuel := sub.Con * sub.Duration
			m1 := m - fuel
			if m1 <= 0 {
				opts.Logger.Error("substage drains below zero mass",
					"stage", s, "substage", i, "mass", m1)
				break
			}
			lnRatio := math.Log(m / m1)
			sum.DeltaVVac += ispV * g0 * lnRatio
			sum.DeltaVAmb += ispA * g0 * lnRatio

			twr := sub.ThrustAmb / (m * gSurf)
			slt := sub.ThrustSL / (m * gSurf)
			if i == 0 {
				sum.TWRStart = twr
				sum.SLTStart = slt
			}
			sum.TWRPeak = math.Max(sum.TWRPeak, twr)
			sum.SLTPeak = math.Max(sum.SLTPeak, slt)

			burnedCheck += fuel
			m = m1
		}

		if sum.FuelBurned > 0 && sum.EndMass > 0 && sum.StartMass > sum.EndMass {
			lnRatio := math.Log(sum.StartMass / sum.EndMass)
			if lnRatio > 0 {
				sum.IspVacLog = sum.DeltaVVac / (g0 * lnRatio)
				sum.IspAmbLog = sum.DeltaVAmb / (g0 * lnRatio)
			}
		}

		// Substage fuel must agree with the stage's recorded burn; a
		// divergence is a simulator defect worth surfacing, but the
		// numbers themselves remain usable.
		if st.FuelBurned > 0 {
			rel := math.Abs(burnedCheck-st.FuelBurned) / st.FuelBurned
			if rel > conservationTolerance {
				opts.Logger.Warn("substage fuel diverges from stage total",
					"stage", s,
					"substageFuel", burnedCheck,
					"stageFuel", st.FuelBurned,
					"relative", rel)
			}
		}

		// The next stage up carries this stage's full start mass,
		// unburned fuel included.
		prevStart = sum.StartMass
		sums[s] = sum
	}

	return sums
}
