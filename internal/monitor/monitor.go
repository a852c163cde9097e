// Package monitor periodically reports engine health: pending run queue
// depth, persistence latency and stored run counts.
package monitor

import (
	"sync"
	"time"

	"github.com/kspkit/stagesim/internal/logging"
	"github.com/kspkit/stagesim/internal/worker"
)

// Dependencies holds what the monitor observes.
type Dependencies struct {
	LogManager    *logging.SlogManager
	WorkerManager *worker.Manager
	Interval      time.Duration
}

// Service logs a status line at a fixed interval until stopped.
type Service struct {
	deps      Dependencies
	mu        sync.RWMutex
	isRunning bool
	stopChan  chan struct{}
}

// NewService creates a new monitor service.
func NewService(deps Dependencies) *Service {
	if deps.Interval <= 0 {
		deps.Interval = 30 * time.Second
	}
	return &Service{
		deps:     deps,
		stopChan: make(chan struct{}),
	}
}

// IsRunning reports whether the monitor loop is active.
func (s *Service) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// Start launches the monitor loop. Repeated calls are no-ops.
func (s *Service) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.isRunning {
		return
	}
	s.isRunning = true
	go s.run()
}

// Stop terminates the monitor loop.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.isRunning {
		return
	}
	s.isRunning = false
	close(s.stopChan)
}

func (s *Service) run() {
	ticker := time.NewTicker(s.deps.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.report()
		case <-s.stopChan:
			return
		}
	}
}

func (s *Service) report() {
	logger := s.deps.LogManager.Logger()

	if s.deps.WorkerManager == nil {
		logger.Info("Status: no storage pipeline configured")
		return
	}

	runs, err := s.deps.WorkerManager.Runs()
	if err != nil {
		logger.Error("Status: failed to read run history", "error", err)
		return
	}

	logger.Info("Status",
		"queuedRuns", s.deps.WorkerManager.QueueDepth(),
		"storedRuns", len(runs),
		"lastWriteDuration", s.deps.WorkerManager.LastWriteDuration())
}
