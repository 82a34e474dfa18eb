package domain

import "time"

// RunStatus is the lifecycle state of a ledger run.
type RunStatus string

// Run statuses.
const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// Run is the ledger entry for one intake run.
type Run struct {
	// ID is the unique identifier for the run.
	ID string

	// Status is the current lifecycle state.
	Status RunStatus

	// StartedAt is when the run began.
	StartedAt time.Time

	// FinishedAt is when the run ended. Zero while running.
	FinishedAt time.Time

	// Records is the number of final records produced.
	Records int

	// Uploaded is the number of rows sent to the tracking sheet.
	Uploaded int

	// Failures is the number of per-document failures.
	Failures int

	// OutputPath is the exported spreadsheet path.
	OutputPath string

	// LastError holds the error that failed the run, if any.
	LastError string
}

// Duration returns how long the run took.
func (r *Run) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// UploadEntry remembers that a group key was sent to the tracking sheet.
type UploadEntry struct {
	// GroupKey is the uploaded record's key.
	GroupKey string

	// RowID is the row identifier assigned by the tracking service.
	RowID int64

	// RunID links to the run that performed the upload.
	RunID string

	// Attachments is the number of files attached to the row.
	Attachments int

	// UploadedAt is when the row was created.
	UploadedAt time.Time
}
