package driven

import (
	"context"

	"github.com/labonzique/comcast-asrs-handler/internal/core/domain"
)

// MailSource fetches mail containers that carry ASR attachments.
// Each source type (mail directory, gmail) implements this interface.
type MailSource interface {
	// Name identifies the source in logs and reports.
	Name() string

	// Validate checks the source is reachable and configured.
	// For a mail directory this checks the path exists; for API
	// sources it makes a lightweight authenticated call.
	Validate(ctx context.Context) error

	// Fetch streams every container currently available.
	// The document channel is closed when the source is exhausted.
	// Per-container problems are sent on the error channel and do not
	// stop the stream.
	Fetch(ctx context.Context) (<-chan domain.RawDocument, <-chan error)

	// Close releases resources.
	Close() error
}

// MailWatcher is implemented by sources that can push new containers
// as they arrive.
type MailWatcher interface {
	// Watch emits containers created or rewritten after the call.
	// The channel is closed when ctx is cancelled.
	Watch(ctx context.Context) (<-chan domain.RawDocument, error)
}
