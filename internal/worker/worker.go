// Package worker decorates a storage backend with write-behind
// persistence so the compute path never waits on disk or network.
package worker

import (
	"context"
	"sync"
	"time"

	"github.com/kspkit/stagesim/internal/logging"
	"github.com/kspkit/stagesim/internal/model"
	"github.com/kspkit/stagesim/internal/queue"
	"github.com/kspkit/stagesim/internal/storage"
	"github.com/kspkit/stagesim/internal/telemetry"
)

const drainInterval = 250 * time.Millisecond

// Manager queues recorded runs and flushes them to the wrapped backend
// from a background goroutine. It satisfies storage.Backend itself, so
// callers treat it like any other backend.
type Manager struct {
	inner      storage.Backend
	telemetry  *telemetry.Manager
	logManager *logging.SlogManager

	pending *queue.Queue[*model.VesselRun]

	mu        sync.Mutex
	lastWrite time.Duration
	stopChan  chan struct{}
	doneChan  chan struct{}
	running   bool
}

// NewManager wraps a backend. telemetry may be nil.
func NewManager(inner storage.Backend, tm *telemetry.Manager, lm *logging.SlogManager) *Manager {
	return &Manager{
		inner:      inner,
		telemetry:  tm,
		logManager: lm,
		pending:    queue.New[*model.VesselRun](),
	}
}

// Init initializes the wrapped backend and starts the drain loop.
func (m *Manager) Init() error {
	if err := m.inner.Init(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.running {
		return nil
	}
	m.stopChan = make(chan struct{})
	m.doneChan = make(chan struct{})
	m.running = true
	go m.drainLoop()
	return nil
}

// Close drains outstanding runs, stops the loop and closes the wrapped
// backend.
func (m *Manager) Close() error {
	m.mu.Lock()
	if m.running {
		close(m.stopChan)
		m.running = false
		done := m.doneChan
		m.mu.Unlock()
		<-done
	} else {
		m.mu.Unlock()
	}
	return m.inner.Close()
}

// RecordRun queues a run for persistence and returns immediately.
func (m *Manager) RecordRun(run *model.VesselRun) error {
	m.pending.Push(run)
	return nil
}

// Runs flushes the queue first so callers see their own writes.
func (m *Manager) Runs() ([]model.VesselRun, error) {
	m.drain()
	return m.inner.Runs()
}

// Export flushes and delegates when the wrapped backend supports it.
func (m *Manager) Export() (string, error) {
	exp, ok := m.inner.(storage.Exportable)
	if !ok {
		return "", storage.ErrExportUnsupported
	}
	m.drain()
	return exp.Export()
}

// QueueDepth returns the number of runs awaiting persistence.
func (m *Manager) QueueDepth() int {
	return m.pending.Len()
}

// LastWriteDuration returns the wall time of the last drain cycle.
func (m *Manager) LastWriteDuration() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastWrite
}

func (m *Manager) drainLoop() {
	defer close(m.doneChan)
	ticker := time.NewTicker(drainInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.drain()
		case <-m.stopChan:
			m.drain()
			return
		}
	}
}

func (m *Manager) drain() {
	logger := m.logManager.Logger()
	start := time.Now()
	wrote := false

	for {
		run, ok := m.pending.PopOK()
		if !ok {
			break
		}
		wrote = true
		if err := m.inner.RecordRun(run); err != nil {
			logger.Error("Failed to persist run", "vessel", run.Vessel, "error", err)
			continue
		}
		if m.telemetry != nil {
			if err := m.telemetry.RecordRun(context.Background(), run); err != nil {
				logger.Error("Failed to record telemetry", "vessel", run.Vessel, "error", err)
			}
		}
	}

	if wrote {
		m.mu.Lock()
		m.lastWrite = time.Since(start)
		m.mu.Unlock()
	}
}
