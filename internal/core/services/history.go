package services

import (
	"context"
	"fmt"

	"github.com/labonzique/comcast-asrs-handler/internal/core/domain"
	"github.com/labonzique/comcast-asrs-handler/internal/core/ports/driven"
	"github.com/labonzique/comcast-asrs-handler/internal/core/ports/driving"
)

// Ensure HistoryService implements the interface.
var _ driving.HistoryService = (*HistoryService)(nil)

// HistoryService reads the run ledger.
type HistoryService struct {
	ledger driven.LedgerStore
}

// NewHistoryService creates a history service. A nil ledger yields
// domain.ErrNotConfigured from every call.
func NewHistoryService(ledger driven.LedgerStore) *HistoryService {
	return &HistoryService{ledger: ledger}
}

// Runs returns the most recent runs, newest first.
func (s *HistoryService) Runs(ctx context.Context, limit int) ([]domain.Run, error) {
	if s.ledger == nil {
		return nil, fmt.Errorf("ledger %w", domain.ErrNotConfigured)
	}
	return s.ledger.ListRuns(ctx, limit)
}

// Run returns one run by ID.
func (s *HistoryService) Run(ctx context.Context, id string) (*domain.Run, error) {
	if s.ledger == nil {
		return nil, fmt.Errorf("ledger %w", domain.ErrNotConfigured)
	}
	if id == "" {
		return nil, fmt.Errorf("%w: run id is required", domain.ErrInvalidInput)
	}
	return s.ledger.GetRun(ctx, id)
}

// Uploads returns the rows uploaded by a run.
func (s *HistoryService) Uploads(ctx context.Context, runID string) ([]domain.UploadEntry, error) {
	if s.ledger == nil {
		return nil, fmt.Errorf("ledger %w", domain.ErrNotConfigured)
	}
	return s.ledger.ListUploads(ctx, runID)
}
