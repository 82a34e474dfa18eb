package driven

import (
	"context"

	"github.com/labonzique/comcast-asrs-handler/internal/core/domain"
)

// Workspace manages the working directories of a run: temporary
// attachments, temporary text renditions and the attachment archive
// used for uploads.
type Workspace interface {
	// Prepare creates the working directories.
	Prepare(ctx context.Context) error

	// SaveAttachment writes an attachment to the temporary directory and
	// the archive. Returns the stored file name.
	SaveAttachment(ctx context.Context, att domain.Attachment) (string, error)

	// ListAttachments returns attachment file names in the temporary
	// directory, in directory listing order.
	ListAttachments(ctx context.Context) ([]string, error)

	// ReadAttachment returns the content of a temporary attachment.
	ReadAttachment(ctx context.Context, name string) ([]byte, error)

	// HasText reports whether a text rendition already exists.
	HasText(ctx context.Context, name string) bool

	// SaveText writes a text rendition.
	SaveText(ctx context.Context, name, text string) error

	// ListTexts returns text file names in directory listing order.
	// Only names carrying the text extension are returned.
	ListTexts(ctx context.Context) ([]string, error)

	// ReadText returns one text document.
	ReadText(ctx context.Context, name string) (domain.TextDocument, error)

	// ArchiveDir returns the directory holding archived attachments.
	ArchiveDir() string

	// Clear empties the temporary directories. The archive is kept.
	Clear(ctx context.Context) error
}
