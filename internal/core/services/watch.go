package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/labonzique/comcast-asrs-handler/internal/core/domain"
	"github.com/labonzique/comcast-asrs-handler/internal/core/ports/driven"
	"github.com/labonzique/comcast-asrs-handler/internal/core/ports/driving"
	"github.com/labonzique/comcast-asrs-handler/internal/logger"
)

// Ensure WatchService implements the interface.
var _ driving.WatchService = (*WatchService)(nil)

// DefaultDebounce is how long the mail directory must stay quiet
// before a run starts.
const DefaultDebounce = 2 * time.Second

// WatchService runs intake whenever watched sources report new containers.
type WatchService struct {
	intake   driving.IntakeService
	sources  []driven.MailWatcher
	debounce time.Duration
}

// NewWatchService creates a watch service. A non-positive debounce
// uses DefaultDebounce.
func NewWatchService(intake driving.IntakeService, debounce time.Duration, sources ...driven.MailWatcher) *WatchService {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &WatchService{
		intake:   intake,
		sources:  sources,
		debounce: debounce,
	}
}

// Watch blocks until ctx is cancelled or every source stops.
func (w *WatchService) Watch(ctx context.Context, opts domain.RunOptions, onRun func(*domain.RunReport, error)) error {
	if len(w.sources) == 0 {
		return fmt.Errorf("watch: no watchable mail source %w", domain.ErrNotConfigured)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	arrivals, err := w.merge(ctx)
	if err != nil {
		return err
	}

	timer := time.NewTimer(w.debounce)
	timer.Stop()
	pending := 0

	for {
		select {
		case <-ctx.Done():
			return nil

		case doc, ok := <-arrivals:
			if !ok {
				return nil
			}
			pending++
			logger.Debug("Container arrived: %s", doc.URI)
			timer.Reset(w.debounce)

		case <-timer.C:
			logger.Info("%d new container(s), starting run", pending)
			report, err := w.intake.Run(ctx, opts)
			if errors.Is(err, domain.ErrRunInProgress) {
				timer.Reset(w.debounce)
				continue
			}
			pending = 0
			if onRun != nil {
				onRun(report, err)
			}
		}
	}
}

// merge fans every source's arrivals into one channel, closed when all
// sources stop.
func (w *WatchService) merge(ctx context.Context) (<-chan domain.RawDocument, error) {
	out := make(chan domain.RawDocument)
	var wg sync.WaitGroup

	for _, source := range w.sources {
		ch, err := source.Watch(ctx)
		if err != nil {
			return nil, fmt.Errorf("watch: %w", err)
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			for doc := range ch {
				select {
				case out <- doc:
				case <-ctx.Done():
					return
				}
			}
		}()
	}

	go func() {
		wg.Wait()
		close(out)
	}()
	return out, nil
}
