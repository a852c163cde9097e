package handlers

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kspkit/stagesim/internal/cache"
	"github.com/kspkit/stagesim/internal/config"
	"github.com/kspkit/stagesim/internal/dispatcher"
	"github.com/kspkit/stagesim/internal/logging"
	"github.com/kspkit/stagesim/internal/model"
	"github.com/kspkit/stagesim/internal/snapshot"
	"github.com/kspkit/stagesim/internal/storage/memory"
	"github.com/kspkit/stagesim/pkg/stinfo"
)

// single solid booster, one stage
const boosterJSON = `{
	"vessel": "Test Booster",
	"currentStage": 0,
	"pressure": 1,
	"parts": [
		{
			"id": 0,
			"name": "RT-10",
			"dryMass": 0.45,
			"stage": 0,
			"decoupledIn": -1,
			"resources": [{"name": "SolidFuel", "amount": 375}],
			"engine": {
				"thrustLimiter": 1,
				"vacuumThrust": 227,
				"seaLevelThrust": 197.9,
				"flow": {"SolidFuel": 0.015975}
			}
		}
	]
}`

func newTestService(t *testing.T, backend *memory.Backend) *Service {
	t.Helper()
	lm := &logging.SlogManager{}
	deps := Dependencies{
		Codec:      snapshot.NewCodec(lm.Logger()),
		LogManager: lm,
		Version:    "1.0.0",
	}
	if backend != nil {
		deps.Backend = backend
	}
	return NewService(deps, NewVesselContext())
}

func TestHandleVersion(t *testing.T) {
	s := newTestService(t, nil)
	got, err := s.HandleVersion(dispatcher.Event{Command: "version"})
	require.NoError(t, err)
	assert.Equal(t, "1.0.0", got)
}

func TestHandleLoadVessel(t *testing.T) {
	s := newTestService(t, nil)

	got, err := s.HandleLoadVessel(dispatcher.Event{
		Command: "vessel:load",
		Args:    []string{boosterJSON},
	})
	require.NoError(t, err)
	assert.Equal(t, "Test Booster", got)

	snap := s.VesselContext().Get()
	require.NotNil(t, snap)
	assert.Len(t, snap.Parts(), 1)
	assert.Len(t, snap.Engines(), 1)
}

func TestHandleLoadVessel_BadPayload(t *testing.T) {
	s := newTestService(t, nil)

	_, err := s.HandleLoadVessel(dispatcher.Event{
		Command: "vessel:load",
		Args:    []string{"not json"},
	})
	assert.Error(t, err)

	_, err = s.HandleLoadVessel(dispatcher.Event{Command: "vessel:load"})
	assert.Error(t, err)
}

func TestHandleStageInfo_NoVessel(t *testing.T) {
	s := newTestService(t, nil)
	_, err := s.HandleStageInfo(dispatcher.Event{Command: "stinfo"})
	assert.ErrorContains(t, err, "no vessel loaded")
}

func TestHandleStageInfo_RecordsRun(t *testing.T) {
	backend := memory.New(config.MemoryConfig{})
	s := newTestService(t, backend)

	_, err := s.HandleLoadVessel(dispatcher.Event{Args: []string{boosterJSON}})
	require.NoError(t, err)

	got, err := s.HandleStageInfo(dispatcher.Event{
		Command: "stinfo",
		Args:    []string{"0"},
	})
	require.NoError(t, err)

	summaries, ok := got.([]stinfo.StageSummary)
	require.True(t, ok)
	require.Len(t, summaries, 1)
	assert.Positive(t, summaries[0].DeltaVVac)
	assert.Positive(t, summaries[0].BurnDuration)

	runs, err := backend.Runs()
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "Test Booster", runs[0].Vessel)
	assert.Equal(t, 1, runs[0].StageCount)
}

func TestHandleStageInfo_SimConfig(t *testing.T) {
	run := func(sc config.SimConfig) []stinfo.StageSummary {
		lm := &logging.SlogManager{}
		s := NewService(Dependencies{
			Codec:      snapshot.NewCodec(lm.Logger()),
			LogManager: lm,
			Sim:        sc,
		}, NewVesselContext())

		_, err := s.HandleLoadVessel(dispatcher.Event{Args: []string{boosterJSON}})
		require.NoError(t, err)

		got, err := s.HandleStageInfo(dispatcher.Event{Command: "stinfo"})
		require.NoError(t, err)
		summaries, ok := got.([]stinfo.StageSummary)
		require.True(t, ok)
		require.Len(t, summaries, 1)
		return summaries
	}

	earth := run(config.SimConfig{})
	moon := run(config.SimConfig{SurfaceGravity: 1.62})

	// lighter gravity raises TWR but leaves delta-v untouched
	assert.Greater(t, moon[0].TWRStart, earth[0].TWRStart)
	assert.InDelta(t, earth[0].DeltaVVac, moon[0].DeltaVVac, 1e-9)
}

func TestHandleExport(t *testing.T) {
	dir := t.TempDir()
	backend := memory.New(config.MemoryConfig{OutputDir: dir})
	require.NoError(t, backend.RecordRun(&model.VesselRun{Vessel: "X"}))

	s := newTestService(t, backend)
	got, err := s.HandleExport(dispatcher.Event{Command: "runs:export"})
	require.NoError(t, err)
	assert.Contains(t, got.(string), dir)
}

type noExportBackend struct{}

func (noExportBackend) Init() error                      { return nil }
func (noExportBackend) Close() error                     { return nil }
func (noExportBackend) RecordRun(*model.VesselRun) error { return nil }
func (noExportBackend) Runs() ([]model.VesselRun, error) { return nil, nil }

func TestHandleExport_Unsupported(t *testing.T) {
	lm := &logging.SlogManager{}
	s := NewService(Dependencies{
		Codec:      snapshot.NewCodec(lm.Logger()),
		LogManager: lm,
		Backend:    noExportBackend{},
	}, NewVesselContext())

	_, err := s.HandleExport(dispatcher.Event{Command: "runs:export"})
	assert.ErrorContains(t, err, "does not support export")
}

func TestRegisterAll(t *testing.T) {
	s := newTestService(t, nil)

	d, err := dispatcher.New(testLogger{})
	require.NoError(t, err)
	s.RegisterAll(d)

	for _, cmd := range []string{"version", "vessel:load", "stinfo", "runs:export"} {
		assert.True(t, d.HasHandler(cmd), cmd)
	}
}

func TestFormatStageTable(t *testing.T) {
	table := FormatStageTable([]stinfo.StageSummary{
		{Stage: 0, StartMass: 12.5, EndMass: 4.2, DeltaVVac: 3100, BurnDuration: 62.4},
		{Stage: 1, StartMass: 30.0, EndMass: 14.0, DeltaVVac: 1800, BurnDuration: 30.0},
	})

	assert.Contains(t, table, "Stage")
	assert.Contains(t, table, "3100.0")
	assert.Contains(t, table, "1800.0")
	// deepest stage renders first
	assert.Less(t,
		strings.Index(table, "1800.0"),
		strings.Index(table, "3100.0"))
}

type testLogger struct{}

func (testLogger) Debug(msg string, kv ...any) {}
func (testLogger) Info(msg string, kv ...any)  {}
func (testLogger) Error(msg string, kv ...any) { fmt.Println(msg, kv) }

func TestHandleStageInfo_CachedResult(t *testing.T) {
	backend := memory.New(config.MemoryConfig{})
	lm := &logging.SlogManager{}
	s := NewService(Dependencies{
		Codec:      snapshot.NewCodec(lm.Logger()),
		LogManager: lm,
		Backend:    backend,
		Cache:      cache.NewResultCache(),
	}, NewVesselContext())

	_, err := s.HandleLoadVessel(dispatcher.Event{Args: []string{boosterJSON}})
	require.NoError(t, err)

	first, err := s.HandleStageInfo(dispatcher.Event{Args: []string{"0"}})
	require.NoError(t, err)
	second, err := s.HandleStageInfo(dispatcher.Event{Args: []string{"0"}})
	require.NoError(t, err)
	assert.Equal(t, first, second)

	// cache hit skips recomputation and re-recording
	runs, err := backend.Runs()
	require.NoError(t, err)
	assert.Len(t, runs, 1)

	// reloading the vessel invalidates the cache
	_, err = s.HandleLoadVessel(dispatcher.Event{Args: []string{boosterJSON}})
	require.NoError(t, err)
	_, err = s.HandleStageInfo(dispatcher.Event{Args: []string{"0"}})
	require.NoError(t, err)
	runs, err = backend.Runs()
	require.NoError(t, err)
	assert.Len(t, runs, 2)
}
