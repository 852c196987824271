// Package state holds the session-scoped dashboard state: the last completed
// poll cycle and the last on-demand crowd run. Created at startup, mutated
// only by the run triggers, read by the presentation boundary.
package state

import (
	"sync"
	"time"

	"github.com/outagewatch/outagewatch/internal/status"
)

// Store is a concurrency-safe in-memory state store.
type Store struct {
	mu       sync.RWMutex
	cycle    []status.SourceResult
	cycleAt  time.Time
	crowdRun *status.CrowdRun
}

// NewStore constructs an empty Store.
func NewStore() *Store {
	return &Store{}
}

// SetCycle replaces the stored cycle results wholesale.
func (s *Store) SetCycle(results []status.SourceResult, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cycle = make([]status.SourceResult, len(results))
	copy(s.cycle, results)
	s.cycleAt = at
}

// LastCycle returns a copy of the most recent cycle results, its completion
// time, and whether a cycle has run at all.
func (s *Store) LastCycle() ([]status.SourceResult, time.Time, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.cycle == nil {
		return nil, time.Time{}, false
	}
	out := make([]status.SourceResult, len(s.cycle))
	copy(out, s.cycle)
	return out, s.cycleAt, true
}

// SetCrowdRun stores the latest crowd run. It is retained until the next
// run or an explicit reset, never expired by the poll timer.
func (s *Store) SetCrowdRun(run status.CrowdRun) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.crowdRun = &run
}

// LastCrowdRun returns the last crowd run, if any.
func (s *Store) LastCrowdRun() (status.CrowdRun, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.crowdRun == nil {
		return status.CrowdRun{}, false
	}
	return *s.crowdRun, true
}

// Reset clears all stored state.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cycle = nil
	s.cycleAt = time.Time{}
	s.crowdRun = nil
}
