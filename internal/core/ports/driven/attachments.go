package driven

import (
	"context"

	"github.com/labonzique/comcast-asrs-handler/internal/core/domain"
)

// AttachmentExtractor unpacks the attachments of one container format.
type AttachmentExtractor interface {
	// SupportedMIMETypes returns the container types this extractor handles.
	SupportedMIMETypes() []string

	// Extract returns the PDF attachments carried by the container.
	// A container without PDF attachments yields an empty slice.
	Extract(ctx context.Context, raw *domain.RawDocument) ([]domain.Attachment, error)
}

// AttachmentExtractorRegistry dispatches containers to the extractor
// registered for their MIME type.
type AttachmentExtractorRegistry interface {
	// Extract unpacks raw with the matching extractor.
	// Returns domain.ErrUnsupportedType when none is registered.
	Extract(ctx context.Context, raw *domain.RawDocument) ([]domain.Attachment, error)

	// Register adds an extractor. Later registrations win for a shared type.
	Register(extractor AttachmentExtractor)

	// SupportedMIMETypes returns all container types that can be unpacked.
	SupportedMIMETypes() []string
}

// TextConverter renders the first page of a PDF as plain text.
type TextConverter interface {
	// FirstPageText returns the text of the first page of a PDF.
	// Returns domain.ErrNoText when the page has no text layer.
	FirstPageText(ctx context.Context, pdf []byte) (string, error)
}
