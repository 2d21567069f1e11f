package server

import (
	"sync"

	"github.com/google/uuid"

	"github.com/thesyncim/metronome/pkg/metronome/trial"
)

// Store holds uploaded trials in memory, grouped by run id. It is safe for
// concurrent use by the HTTP handlers. Nothing is persisted; the collector is
// a development tool, not a results database.
type Store struct {
	mu    sync.RWMutex
	runs  map[uuid.UUID][]*trial.Result
	order []uuid.UUID
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{runs: make(map[uuid.UUID][]*trial.Result)}
}

// Add files the trial under its run id, keeping upload order.
func (s *Store) Add(result *trial.Result) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.runs[result.RunID]; !ok {
		s.order = append(s.order, result.RunID)
	}
	s.runs[result.RunID] = append(s.runs[result.RunID], result)
}

// Run returns a copy of the run's trials in upload order.
func (s *Store) Run(id uuid.UUID) ([]*trial.Result, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	results, ok := s.runs[id]
	if !ok {
		return nil, false
	}
	return append([]*trial.Result(nil), results...), true
}

// Runs returns the known run ids, oldest first.
func (s *Store) Runs() []uuid.UUID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]uuid.UUID(nil), s.order...)
}

// TrialCount returns how many trials a run holds.
func (s *Store) TrialCount(id uuid.UUID) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.runs[id])
}
