package driving

import (
	"context"

	"github.com/labonzique/comcast-asrs-handler/internal/core/domain"
)

// RecordProcessor turns text documents into final records.
// It performs no I/O and holds no state between calls.
type RecordProcessor interface {
	// Extract produces the raw record for one document.
	Extract(doc domain.TextDocument) domain.RawRecord

	// Process runs extraction, key normalisation, consolidation and
	// classification over a snapshot of docs.
	Process(ctx context.Context, docs []domain.TextDocument) (*domain.PipelineResult, error)
}
