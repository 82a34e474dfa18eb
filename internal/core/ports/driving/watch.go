package driving

import (
	"context"

	"github.com/labonzique/comcast-asrs-handler/internal/core/domain"
)

// WatchService triggers intake runs when new mail containers arrive.
type WatchService interface {
	// Watch blocks until ctx is cancelled. Each quiet period after a
	// burst of arrivals triggers one run; onRun receives its outcome.
	Watch(ctx context.Context, opts domain.RunOptions, onRun func(*domain.RunReport, error)) error
}
