package domain

// Well-known MIME types handled by the intake.
const (
	MIMETypeOutlookMessage = "application/vnd.ms-outlook"
	MIMETypeRFC822         = "message/rfc822"
	MIMETypePDF            = "application/pdf"
	MIMETypeText           = "text/plain"
)

// RawDocument represents opaque bytes fetched by a mail source.
// It is the source's output before attachments are unpacked.
type RawDocument struct {
	// SourceID names the mail source that produced this document.
	SourceID string

	// URI is the original location (file path, gmail:// URI).
	URI string

	// MIMEType is the container type (e.g., "message/rfc822").
	MIMEType string

	// Content is the raw bytes.
	Content []byte

	// Metadata contains source-specific key-value pairs.
	Metadata map[string]any
}

// Attachment is one file carried by a mail container.
type Attachment struct {
	// Name is the attachment's long filename.
	Name string

	// MIMEType is the attachment type as declared or inferred.
	MIMEType string

	// Content is the decoded attachment payload.
	Content []byte
}

// TextDocument is a plain-text rendition of one attachment.
// It is the unit consumed by the record pipeline.
type TextDocument struct {
	// Name is the text file name (e.g., "A1_OF12345.txt").
	Name string

	// Text is the full decoded content.
	Text string
}
