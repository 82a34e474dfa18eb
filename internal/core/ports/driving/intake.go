package driving

import (
	"context"

	"github.com/labonzique/comcast-asrs-handler/internal/core/domain"
)

// IntakeService runs the end-to-end intake: fetch, unpack, convert,
// process, export and optionally upload.
type IntakeService interface {
	// Run performs one intake run. Per-document failures are collected
	// in the report; the error is reserved for failures that stop the run.
	Run(ctx context.Context, opts domain.RunOptions) (*domain.RunReport, error)

	// Parse processes the current text working set without exporting.
	Parse(ctx context.Context) (*domain.PipelineResult, error)

	// Running reports whether a run is in progress.
	Running() bool
}
