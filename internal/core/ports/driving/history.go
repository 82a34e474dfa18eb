package driving

import (
	"context"

	"github.com/labonzique/comcast-asrs-handler/internal/core/domain"
)

// HistoryService exposes the run ledger.
type HistoryService interface {
	// Runs returns the most recent runs, newest first.
	Runs(ctx context.Context, limit int) ([]domain.Run, error)

	// Run returns one run by ID.
	Run(ctx context.Context, id string) (*domain.Run, error)

	// Uploads returns the rows uploaded by a run.
	Uploads(ctx context.Context, runID string) ([]domain.UploadEntry, error)
}
