package storage

import (
	"context"
	"sort"
	"sync"

	"loreweave/internal/growth"
)

type MemoryStore struct {
	mu          sync.RWMutex
	initialized bool
	worlds      map[string]WorldSnapshot
	diagnostics map[string][]growth.StepDiagnostics
	history     map[string][]float64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Init(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.initialized = true
	s.worlds = make(map[string]WorldSnapshot)
	s.diagnostics = make(map[string][]growth.StepDiagnostics)
	s.history = make(map[string][]float64)
	return nil
}

func (s *MemoryStore) SaveWorld(_ context.Context, snapshot WorldSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.worlds[snapshot.ID] = snapshot
	return nil
}

func (s *MemoryStore) GetWorld(_ context.Context, id string) (WorldSnapshot, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshot, ok := s.worlds[id]
	return snapshot, ok, nil
}

func (s *MemoryStore) ListWorlds(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.worlds))
	for id := range s.worlds {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (s *MemoryStore) SaveStepDiagnostics(_ context.Context, runID string, steps []growth.StepDiagnostics) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := make([]growth.StepDiagnostics, len(steps))
	copy(copied, steps)
	s.diagnostics[runID] = copied
	return nil
}

func (s *MemoryStore) GetStepDiagnostics(_ context.Context, runID string) ([]growth.StepDiagnostics, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	steps, ok := s.diagnostics[runID]
	return steps, ok, nil
}

func (s *MemoryStore) SaveDeviationHistory(_ context.Context, runID string, history []float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := make([]float64, len(history))
	copy(copied, history)
	s.history[runID] = copied
	return nil
}

func (s *MemoryStore) GetDeviationHistory(_ context.Context, runID string) ([]float64, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history, ok := s.history[runID]
	return history, ok, nil
}
