// Package filesystem provides the mail directory source: Outlook .msg and
// RFC 822 .eml files dropped into a local folder.
package filesystem

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/labonzique/comcast-asrs-handler/internal/core/domain"
	"github.com/labonzique/comcast-asrs-handler/internal/core/ports/driven"
	"github.com/labonzique/comcast-asrs-handler/internal/logger"
)

// Ensure Connector implements the interfaces.
var (
	_ driven.MailSource  = (*Connector)(nil)
	_ driven.MailWatcher = (*Connector)(nil)
)

// ErrClosed is returned when a closed connector is used.
var ErrClosed = errors.New("connector closed")

// containerTypes maps recognised file extensions to container MIME types.
var containerTypes = map[string]string{
	".msg": domain.MIMETypeOutlookMessage,
	".eml": domain.MIMETypeRFC822,
}

// Connector reads mail containers from a directory. Subdirectories are
// not descended into.
type Connector struct {
	name     string
	rootPath string

	mu       sync.Mutex
	closed   bool
	watchers []*fsnotify.Watcher
}

// New creates a mail directory connector.
func New(name, rootPath string) *Connector {
	return &Connector{
		name:     name,
		rootPath: rootPath,
	}
}

// Name identifies the source.
func (c *Connector) Name() string {
	return c.name
}

// Validate checks the directory exists and is readable.
func (c *Connector) Validate(_ context.Context) error {
	return c.checkRoot()
}

// Fetch streams every container file in the directory, in directory
// listing order. Unreadable files are reported on the error channel.
func (c *Connector) Fetch(ctx context.Context) (<-chan domain.RawDocument, <-chan error) {
	docs := make(chan domain.RawDocument)
	errs := make(chan error, 1)

	go func() {
		defer close(errs)
		defer close(docs)

		if err := c.checkRoot(); err != nil {
			errs <- err
			return
		}

		entries, err := os.ReadDir(c.rootPath)
		if err != nil {
			errs <- fmt.Errorf("read mail directory: %w", err)
			return
		}

		for _, entry := range entries {
			if entry.IsDir() || isHidden(entry.Name()) {
				continue
			}
			path := filepath.Join(c.rootPath, entry.Name())
			mimeType := detectMIMEType(path)
			if mimeType == "" {
				logger.Debug("Skipping non-mail file: %s", entry.Name())
				continue
			}

			doc, err := c.readContainer(path, mimeType)
			if err != nil {
				select {
				case errs <- err:
				case <-ctx.Done():
					return
				}
				continue
			}

			select {
			case docs <- *doc:
			case <-ctx.Done():
				return
			}
		}
	}()

	return docs, errs
}

// Watch emits containers created or rewritten in the directory until ctx
// is cancelled. A file written in several steps may be emitted more than
// once; callers debounce.
func (c *Connector) Watch(ctx context.Context) (<-chan domain.RawDocument, error) {
	if err := c.checkRoot(); err != nil {
		return nil, err
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, ErrClosed
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		c.mu.Unlock()
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	c.watchers = append(c.watchers, watcher)
	c.mu.Unlock()

	if err := watcher.Add(c.rootPath); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watch %s: %w", c.rootPath, err)
	}

	out := make(chan domain.RawDocument)

	go func() {
		defer close(out)
		defer watcher.Close()

		for {
			select {
			case <-ctx.Done():
				return

			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				doc, ok := c.handleFsEvent(event)
				if !ok {
					continue
				}
				select {
				case out <- *doc:
				case <-ctx.Done():
					return
				}

			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warn("Mail directory watcher: %v", err)
			}
		}
	}()

	return out, nil
}

// handleFsEvent turns a create or write event on a container file into a
// document. Other events, directories and hidden files are ignored.
func (c *Connector) handleFsEvent(event fsnotify.Event) (*domain.RawDocument, bool) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return nil, false
	}
	if isHidden(filepath.Base(event.Name)) {
		return nil, false
	}
	info, err := os.Stat(event.Name)
	if err != nil || info.IsDir() {
		return nil, false
	}
	mimeType := detectMIMEType(event.Name)
	if mimeType == "" {
		return nil, false
	}

	doc, err := c.readContainer(event.Name, mimeType)
	if err != nil {
		logger.Warn("Failed to read %s: %v", event.Name, err)
		return nil, false
	}
	return doc, true
}

// Close stops any active watchers. The connector cannot watch afterwards.
func (c *Connector) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.closed = true
	var errs []error
	for _, w := range c.watchers {
		if err := w.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	c.watchers = nil
	return errors.Join(errs...)
}

func (c *Connector) readContainer(path, mimeType string) (*domain.RawDocument, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, domain.DocumentFailure{Document: path, Stage: domain.StageFetch, Err: err}
	}
	return &domain.RawDocument{
		SourceID: c.name,
		URI:      "file://" + path,
		MIMEType: mimeType,
		Content:  content,
		Metadata: map[string]any{
			"filename": filepath.Base(path),
			"size":     len(content),
		},
	}, nil
}

func (c *Connector) checkRoot() error {
	info, err := os.Stat(c.rootPath)
	if err != nil {
		return fmt.Errorf("root path error: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("root path error: %s is not a directory", c.rootPath)
	}
	return nil
}

// detectMIMEType returns the container type for a path, or "" when the
// extension is not a mail container.
func detectMIMEType(path string) string {
	return containerTypes[strings.ToLower(filepath.Ext(path))]
}

func isHidden(name string) bool {
	return strings.HasPrefix(name, ".") || strings.HasPrefix(name, "~$")
}
