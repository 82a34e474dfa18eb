package driven

import (
	"context"

	"github.com/labonzique/comcast-asrs-handler/internal/core/domain"
)

// RowUploader sends final records to the remote tracking sheet.
type RowUploader interface {
	// AddRow appends one record as a row and attaches every file listed
	// in the record's output files that exists in attachmentDir.
	AddRow(ctx context.Context, record domain.FinalRecord, attachmentDir string) (*RowResult, error)
}

// RowResult describes a created row.
type RowResult struct {
	// RowID is the identifier assigned by the tracking service.
	RowID int64

	// Attached lists the files uploaded to the row.
	Attached []string

	// Missing lists output files not found in the attachment directory.
	Missing []string

	// Failed maps files that could not be attached to the cause.
	Failed map[string]error
}
