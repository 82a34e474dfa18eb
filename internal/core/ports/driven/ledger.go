package driven

import (
	"context"

	"github.com/labonzique/comcast-asrs-handler/internal/core/domain"
)

// LedgerStore persists run history and uploaded group keys.
// The ledger is best effort: it prevents routine duplicate uploads but
// does not make uploads exactly-once.
type LedgerStore interface {
	// CreateRun records a new run.
	CreateRun(ctx context.Context, run domain.Run) error

	// UpdateRun replaces a run's counters and status.
	// Returns domain.ErrNotFound if the run does not exist.
	UpdateRun(ctx context.Context, run domain.Run) error

	// GetRun retrieves a run by ID.
	GetRun(ctx context.Context, id string) (*domain.Run, error)

	// ListRuns returns the most recent runs, newest first.
	// A limit of zero or less returns all runs.
	ListRuns(ctx context.Context, limit int) ([]domain.Run, error)

	// MarkUploaded remembers an uploaded group key.
	MarkUploaded(ctx context.Context, entry domain.UploadEntry) error

	// IsUploaded reports whether a group key has been uploaded.
	IsUploaded(ctx context.Context, groupKey string) (bool, error)

	// ListUploads returns the uploads performed by a run.
	ListUploads(ctx context.Context, runID string) ([]domain.UploadEntry, error)
}
