// Package cache memoizes computation results per vessel and pressure.
// Hosts re-request stage info far more often than the vessel changes, so
// latency here matters more than memory.
package cache

import (
	"fmt"
	"sync"

	"github.com/kspkit/stagesim/pkg/stinfo"
)

// ResultCache caches stage summaries keyed by vessel name and the
// pressure argument they were computed at.
type ResultCache struct {
	m       sync.Mutex
	results map[string][]stinfo.StageSummary
}

// NewResultCache creates an empty result cache.
func NewResultCache() *ResultCache {
	return &ResultCache{
		results: make(map[string][]stinfo.StageSummary),
	}
}

func key(vessel, pressureArg string) string {
	return fmt.Sprintf("%s|%s", vessel, pressureArg)
}

// Get returns cached summaries for a vessel/pressure pair.
func (c *ResultCache) Get(vessel, pressureArg string) ([]stinfo.StageSummary, bool) {
	c.m.Lock()
	defer c.m.Unlock()
	s, ok := c.results[key(vessel, pressureArg)]
	return s, ok
}

// Set stores summaries for a vessel/pressure pair.
func (c *ResultCache) Set(vessel, pressureArg string, summaries []stinfo.StageSummary) {
	c.m.Lock()
	defer c.m.Unlock()
	c.results[key(vessel, pressureArg)] = summaries
}

// Reset drops every cached result. Called when a new vessel loads: any
// staging change invalidates all pressures.
func (c *ResultCache) Reset() {
	c.m.Lock()
	defer c.m.Unlock()
	c.results = make(map[string][]stinfo.StageSummary)
}

// Len returns the number of cached results.
func (c *ResultCache) Len() int {
	c.m.Lock()
	defer c.m.Unlock()
	return len(c.results)
}
