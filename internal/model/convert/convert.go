// Package convert maps engine results onto the database schema.
package convert

import (
	"encoding/json"
	"time"

	"github.com/kspkit/stagesim/internal/model"
	"github.com/kspkit/stagesim/pkg/stinfo"

	"gorm.io/datatypes"
)

// ToVesselRun builds a persistable run record from a computation result.
func ToVesselRun(vesselName string, summaries []stinfo.StageSummary, took time.Duration) model.VesselRun {
	run := model.VesselRun{
		Vessel:     vesselName,
		ComputedAt: time.Now(),
		StageCount: len(summaries),
		Duration:   took,
	}
	if len(summaries) > 0 {
		run.Pressure = summaries[0].Pressure
	}

	for _, s := range summaries {
		extra, _ := json.Marshal(map[string]float64{"pressure": s.Pressure})
		run.Stages = append(run.Stages, model.StageRecord{
			Stage:        s.Stage,
			StartMass:    s.StartMass,
			EndMass:      s.EndMass,
			StagedMass:   s.StagedMass,
			FuelBurned:   s.FuelBurned,
			TWRStart:     s.TWRStart,
			TWRPeak:      s.TWRPeak,
			SLTStart:     s.SLTStart,
			SLTPeak:      s.SLTPeak,
			ThrustVac:    s.ThrustVac,
			ThrustAmb:    s.ThrustAmb,
			IspVac:       s.IspVac,
			IspAmb:       s.IspAmb,
			IspVacLog:    s.IspVacLog,
			IspAmbLog:    s.IspAmbLog,
			DeltaVVac:    s.DeltaVVac,
			DeltaVAmb:    s.DeltaVAmb,
			BurnDuration: s.BurnDuration,
			Extra:        datatypes.JSON(extra),
		})
	}
	return run
}
