// Package model defines the database schema for persisted computation
// runs. A run is one stinfo invocation over one snapshot; its per-stage
// summaries are stored as rows with the substage breakdown as JSON.
package model

import (
	"time"

	"gorm.io/datatypes"
)

// DatabaseModels lists every struct representing a table in the run
// history schema.
var DatabaseModels = []interface{}{
	&VesselRun{},
	&StageRecord{},
}

// VesselRun is one staging computation over one vessel snapshot.
type VesselRun struct {
	ID         uint `gorm:"primarykey"`
	Vessel     string
	ComputedAt time.Time
	Pressure   float64 // atmospheres used for ambient thrust
	StageCount int
	Duration   time.Duration // wall time of the computation

	Stages []StageRecord `gorm:"foreignKey:VesselRunID"`
}

// StageRecord is one stage's summary within a run.
type StageRecord struct {
	ID          uint `gorm:"primarykey"`
	VesselRunID uint `gorm:"index"`
	Stage       int

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

	IspVac    float64
	IspAmb    float64
	IspVacLog float64
	IspAmbLog float64

	DeltaVVac float64
	DeltaVAmb float64

	BurnDuration float64

	// Extra holds auxiliary per-stage data (currently the pressure
	// parameter; room for substage breakdowns) as JSON.
	Extra datatypes.JSON
}
