// Package handlers implements the host-facing commands: loading vessel
// snapshots, running the staging computation, and exporting run history.
package handlers

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/kspkit/stagesim/internal/cache"
	"github.com/kspkit/stagesim/internal/config"
	"github.com/kspkit/stagesim/internal/dispatcher"
	"github.com/kspkit/stagesim/internal/logging"
	"github.com/kspkit/stagesim/internal/model/convert"
	"github.com/kspkit/stagesim/internal/snapshot"
	"github.com/kspkit/stagesim/internal/storage"
	"github.com/kspkit/stagesim/internal/util"
	"github.com/kspkit/stagesim/pkg/stinfo"
)

// VesselContext holds the currently loaded snapshot. Computations always
// run against the last loaded vessel.
type VesselContext struct {
	mu   sync.RWMutex
	snap *snapshot.Snapshot
}

// NewVesselContext creates an empty vessel context.
func NewVesselContext() *VesselContext {
	return &VesselContext{}
}

// Get returns the current snapshot, or nil when none is loaded.
func (vc *VesselContext) Get() *snapshot.Snapshot {
	vc.mu.RLock()
	defer vc.mu.RUnlock()
	return vc.snap
}

// Set replaces the current snapshot.
func (vc *VesselContext) Set(snap *snapshot.Snapshot) {
	vc.mu.Lock()
	defer vc.mu.Unlock()
	vc.snap = snap
}

// Dependencies holds everything the handler service needs.
type Dependencies struct {
	Codec      *snapshot.Codec
	Backend    storage.Backend
	LogManager *logging.SlogManager
	Cache      *cache.ResultCache
	Sim        config.SimConfig
	Version    string
}

// Service provides handler methods for host commands.
type Service struct {
	deps Dependencies
	ctx  *VesselContext
}

// NewService creates a new handler service.
func NewService(deps Dependencies, ctx *VesselContext) *Service {
	return &Service{deps: deps, ctx: ctx}
}

// VesselContext returns the vessel context.
func (s *Service) VesselContext() *VesselContext {
	return s.ctx
}

// RegisterAll wires every command onto the dispatcher.
func (s *Service) RegisterAll(d *dispatcher.Dispatcher) {
	d.Register("version", s.HandleVersion)
	d.Register("vessel:load", s.HandleLoadVessel, dispatcher.Logged())
	d.Register("stinfo", s.HandleStageInfo, dispatcher.Logged())
	d.Register("runs:export", s.HandleExport)
}

// HandleVersion reports the engine version.
func (s *Service) HandleVersion(e dispatcher.Event) (any, error) {
	return s.deps.Version, nil
}

// HandleLoadVessel decodes a JSON snapshot payload and makes it the
// current vessel. Args: [json].
func (s *Service) HandleLoadVessel(e dispatcher.Event) (any, error) {
	if len(e.Args) < 1 {
		return nil, fmt.Errorf("vessel:load requires a snapshot payload")
	}

	payload := util.FixEscapeQuotes(util.TrimQuotes(e.Args[0]))
	snap, err := s.deps.Codec.Decode([]byte(payload))
	if err != nil {
		return nil, fmt.Errorf("decoding snapshot: %w", err)
	}
	s.ctx.Set(snap)
	if s.deps.Cache != nil {
		s.deps.Cache.Reset()
	}

	logger := s.deps.LogManager.Logger()
	logger.Info("Vessel loaded",
		"vessel", snap.Name(),
		"parts", len(snap.Parts()),
		"engines", len(snap.Engines()),
		"currentStage", snap.CurrentStage())

	return snap.Name(), nil
}

// HandleStageInfo runs the staging computation against the current
// vessel. Args: optionally [pressure], a number in atmospheres or
// "current" for the vessel's ambient pressure (the default).
func (s *Service) HandleStageInfo(e dispatcher.Event) (any, error) {
	snap := s.ctx.Get()
	if snap == nil {
		return nil, fmt.Errorf("no vessel loaded")
	}

	pressureArg := "current"
	opts := []stinfo.Option{
		stinfo.WithLogger(s.deps.LogManager.Logger()),
		stinfo.WithPhysicsTick(s.deps.Sim.PhysicsTick),
		stinfo.WithSurfaceGravity(s.deps.Sim.SurfaceGravity),
		stinfo.WithPlateTags(s.deps.Sim.PlateKeepTag, s.deps.Sim.PlateDropTag),
		stinfo.AtCurrentPressure(),
	}
	if s.deps.Sim.StrictFairings {
		opts = append(opts, stinfo.StrictFairings())
	}
	if len(e.Args) > 0 {
		if atm, fixed := util.ParsePressureArg(e.Args[0]); fixed {
			pressureArg = e.Args[0]
			opts = append(opts, stinfo.AtAtmospheres(atm))
		}
	}

	if s.deps.Cache != nil {
		if cached, ok := s.deps.Cache.Get(snap.Name(), pressureArg); ok {
			return cached, nil
		}
	}

	start := time.Now()
	summaries, err := stinfo.Compute(snap, opts...)
	if err != nil {
		return nil, fmt.Errorf("computing stage info: %w", err)
	}
	took := time.Since(start)

	logger := s.deps.LogManager.Logger()
	logger.Info("Stage info computed",
		"vessel", snap.Name(),
		"stages", len(summaries),
		"took", took)

	if s.deps.Backend != nil {
		run := convert.ToVesselRun(snap.Name(), summaries, took)
		if err := s.deps.Backend.RecordRun(&run); err != nil {
			logger.Error("Failed to record run", "error", err)
		}
	}

	if s.deps.Cache != nil {
		s.deps.Cache.Set(snap.Name(), pressureArg, summaries)
	}

	return summaries, nil
}

// HandleExport writes the run history to a file when the backend
// supports it. Returns the file path.
func (s *Service) HandleExport(e dispatcher.Event) (any, error) {
	exp, ok := s.deps.Backend.(storage.Exportable)
	if !ok {
		return nil, fmt.Errorf("storage backend does not support export")
	}
	path, err := exp.Export()
	if err != nil {
		return nil, fmt.Errorf("exporting runs: %w", err)
	}
	return path, nil
}

// FormatStageTable renders summaries as fixed-width rows for host
// display, deepest stage first.
func FormatStageTable(summaries []stinfo.StageSummary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%-6s %10s %10s %9s %9s %7s %7s %9s %9s %9s\n",
		"Stage", "Start(t)", "End(t)", "TWR", "SLT", "IspVac", "IspAmb",
		"dVvac", "dVamb", "Burn")
	for i := len(summaries) - 1; i >= 0; i-- {
		s := summaries[i]
		fmt.Fprintf(&b, "%-6d %10s %10s %9.2f %9.2f %7.1f %7.1f %9.1f %9.1f %9s\n",
			s.Stage,
			util.FormatTons(s.StartMass),
			util.FormatTons(s.EndMass),
			s.TWRStart,
			s.SLTStart,
			s.IspVac,
			s.IspAmb,
			s.DeltaVVac,
			s.DeltaVAmb,
			util.FormatDuration(s.BurnDuration))
	}
	return b.String()
}
