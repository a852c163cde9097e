package telemetry

import (
	"testing"
	"time"

	influxdb2_write "github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kspkit/stagesim/internal/model"
)

func fieldMap(p *influxdb2_write.Point) map[string]interface{} {
	out := make(map[string]interface{})
	for _, f := range p.FieldList() {
		out[f.Key] = f.Value
	}
	return out
}

func tagMap(p *influxdb2_write.Point) map[string]string {
	out := make(map[string]string)
	for _, t := range p.TagList() {
		out[t.Key] = t.Value
	}
	return out
}

func TestRunPoint(t *testing.T) {
	run := &model.VesselRun{
		Vessel:     "Kerbal X",
		ComputedAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		Pressure:   1,
		StageCount: 2,
		Duration:   42 * time.Millisecond,
		Stages: []model.StageRecord{
			{Stage: 0, DeltaVAmb: 3000, BurnDuration: 60},
			{Stage: 1, DeltaVAmb: 1500, BurnDuration: 30},
		},
	}

	p := RunPoint(run)
	require.Equal(t, "stage_run", p.Name())
	assert.Equal(t, "Kerbal X", tagMap(p)["vessel"])

	fields := fieldMap(p)
	assert.InDelta(t, 4500.0, fields["total_delta_v"], 1e-9)
	assert.InDelta(t, 90.0, fields["total_burn_time"], 1e-9)
	assert.EqualValues(t, 2, fields["stage_count"])
	assert.EqualValues(t, 42, fields["duration_ms"])
}

func TestStagePoint(t *testing.T) {
	run := &model.VesselRun{Vessel: "Kerbal X", ComputedAt: time.Now()}
	rec := &model.StageRecord{
		Stage:     1,
		DeltaVVac: 3400,
		DeltaVAmb: 3000,
		StartMass: 120.5,
		EndMass:   60.25,
		TWRStart:  1.4,
		TWRPeak:   2.8,
	}

	p := StagePoint(run, rec)
	require.Equal(t, "stage", p.Name())

	tags := tagMap(p)
	assert.Equal(t, "Kerbal X", tags["vessel"])
	assert.Equal(t, "1", tags["stage"])

	fields := fieldMap(p)
	assert.InDelta(t, 3400.0, fields["delta_v_vac"], 1e-9)
	assert.InDelta(t, 60.25, fields["end_mass"], 1e-9)
}
