package normalisers

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/labonzique/comcast-asrs-handler/internal/core/domain"
	"github.com/labonzique/comcast-asrs-handler/internal/core/ports/driven"
)

// Ensure Registry implements the interface.
var _ driven.AttachmentExtractorRegistry = (*Registry)(nil)

// Registry maps container MIME types to attachment extractors.
type Registry struct {
	mu         sync.RWMutex
	extractors map[string]driven.AttachmentExtractor
}

// NewRegistry creates a registry holding the given extractors.
func NewRegistry(extractors ...driven.AttachmentExtractor) *Registry {
	r := &Registry{extractors: make(map[string]driven.AttachmentExtractor)}
	for _, e := range extractors {
		r.Register(e)
	}
	return r
}

// Register adds an extractor for each of its MIME types. A later
// registration replaces an earlier one for the same type.
func (r *Registry) Register(extractor driven.AttachmentExtractor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, mimeType := range extractor.SupportedMIMETypes() {
		r.extractors[normaliseMIME(mimeType)] = extractor
	}
}

// Extract unpacks raw with the extractor registered for its MIME type.
func (r *Registry) Extract(ctx context.Context, raw *domain.RawDocument) ([]domain.Attachment, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	r.mu.RLock()
	extractor, ok := r.extractors[normaliseMIME(raw.MIMEType)]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnsupportedType, raw.MIMEType)
	}
	return extractor.Extract(ctx, raw)
}

// SupportedMIMETypes returns the registered container types, sorted.
func (r *Registry) SupportedMIMETypes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	types := make([]string, 0, len(r.extractors))
	for t := range r.extractors {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// normaliseMIME drops parameters and case: "Message/RFC822; x=y" -> "message/rfc822".
func normaliseMIME(mimeType string) string {
	base, _, _ := strings.Cut(mimeType, ";")
	return strings.ToLower(strings.TrimSpace(base))
}

// HasExtension reports whether name ends with ext, ignoring case.
func HasExtension(name, ext string) bool {
	return len(name) >= len(ext) && strings.EqualFold(name[len(name)-len(ext):], ext)
}
