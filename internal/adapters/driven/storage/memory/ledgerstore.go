package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/labonzique/comcast-asrs-handler/internal/core/domain"
	"github.com/labonzique/comcast-asrs-handler/internal/core/ports/driven"
)

// Ensure LedgerStore implements the interface.
var _ driven.LedgerStore = (*LedgerStore)(nil)

// LedgerStore is an in-memory implementation of driven.LedgerStore.
type LedgerStore struct {
	mu      sync.RWMutex
	runs    map[string]domain.Run
	order   []string
	uploads map[string]domain.UploadEntry
}

// NewLedgerStore creates a new in-memory ledger.
func NewLedgerStore() *LedgerStore {
	return &LedgerStore{
		runs:    make(map[string]domain.Run),
		uploads: make(map[string]domain.UploadEntry),
	}
}

// CreateRun records a new run.
func (s *LedgerStore) CreateRun(_ context.Context, run domain.Run) error {
	if run.ID == "" {
		return fmt.Errorf("%w: run id is required", domain.ErrInvalidInput)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.runs[run.ID]; !ok {
		s.order = append(s.order, run.ID)
	}
	s.runs[run.ID] = run
	return nil
}

// UpdateRun replaces a run's counters and status.
func (s *LedgerStore) UpdateRun(_ context.Context, run domain.Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.runs[run.ID]; !ok {
		return domain.ErrNotFound
	}
	s.runs[run.ID] = run
	return nil
}

// GetRun retrieves a run by ID.
func (s *LedgerStore) GetRun(_ context.Context, id string) (*domain.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	run, ok := s.runs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &run, nil
}

// ListRuns returns the most recent runs, newest first.
func (s *LedgerStore) ListRuns(_ context.Context, limit int) ([]domain.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	runs := make([]domain.Run, 0, len(s.order))
	for i := len(s.order) - 1; i >= 0; i-- {
		runs = append(runs, s.runs[s.order[i]])
	}
	sort.SliceStable(runs, func(i, j int) bool {
		return runs[i].StartedAt.After(runs[j].StartedAt)
	})
	if limit > 0 && len(runs) > limit {
		runs = runs[:limit]
	}
	return runs, nil
}

// MarkUploaded remembers an uploaded group key.
func (s *LedgerStore) MarkUploaded(_ context.Context, entry domain.UploadEntry) error {
	if entry.GroupKey == "" {
		return fmt.Errorf("%w: group key is required", domain.ErrInvalidInput)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.uploads[entry.GroupKey] = entry
	return nil
}

// IsUploaded reports whether a group key has been uploaded.
func (s *LedgerStore) IsUploaded(_ context.Context, groupKey string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.uploads[groupKey]
	return ok, nil
}

// ListUploads returns the uploads performed by a run, oldest first.
func (s *LedgerStore) ListUploads(_ context.Context, runID string) ([]domain.UploadEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var entries []domain.UploadEntry
	for _, e := range s.uploads {
		if e.RunID == runID {
			entries = append(entries, e)
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].UploadedAt.Equal(entries[j].UploadedAt) {
			return entries[i].GroupKey < entries[j].GroupKey
		}
		return entries[i].UploadedAt.Before(entries[j].UploadedAt)
	})
	return entries, nil
}
