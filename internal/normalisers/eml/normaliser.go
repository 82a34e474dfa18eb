// Package eml unpacks RFC 822 messages, such as .eml files and raw
// Gmail messages, into their PDF attachments.
package eml

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net/mail"
	"path/filepath"
	"strings"

	"github.com/labonzique/comcast-asrs-handler/internal/core/domain"
	"github.com/labonzique/comcast-asrs-handler/internal/core/ports/driven"
	"github.com/labonzique/comcast-asrs-handler/internal/normalisers"
)

// Ensure Extractor implements the interface.
var _ driven.AttachmentExtractor = (*Extractor)(nil)

// maxDepth bounds nested multipart recursion.
const maxDepth = 10

// Extractor collects attachments from RFC 822 messages.
type Extractor struct {
	extension string
}

// New creates an extractor keeping attachments whose file name ends with
// extension (".pdf" when empty).
func New(extension string) *Extractor {
	if extension == "" {
		extension = ".pdf"
	}
	return &Extractor{extension: extension}
}

// SupportedMIMETypes returns the MIME types this extractor handles.
func (e *Extractor) SupportedMIMETypes() []string {
	return []string{domain.MIMETypeRFC822}
}

// Extract walks the message's MIME tree and returns matching attachments
// in the order they appear.
func (e *Extractor) Extract(ctx context.Context, raw *domain.RawDocument) ([]domain.Attachment, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	msg, err := mail.ReadMessage(bytes.NewReader(raw.Content))
	if err != nil {
		return nil, fmt.Errorf("%w: parse message: %v", domain.ErrInvalidInput, err)
	}

	var out []domain.Attachment
	if err := e.walk(msg.Header.Get("Content-Type"), msg.Header.Get("Content-Disposition"),
		msg.Header.Get("Content-Transfer-Encoding"), msg.Body, 0, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (e *Extractor) walk(contentType, disposition, encoding string, body io.Reader, depth int, out *[]domain.Attachment) error {
	if depth > maxDepth {
		return fmt.Errorf("%w: multipart nesting deeper than %d", domain.ErrInvalidInput, maxDepth)
	}

	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType, params = "text/plain", nil
	}

	if strings.HasPrefix(mediaType, "multipart/") {
		boundary := params["boundary"]
		if boundary == "" {
			return fmt.Errorf("%w: multipart without boundary", domain.ErrInvalidInput)
		}
		mr := multipart.NewReader(body, boundary)
		for {
			part, err := mr.NextRawPart()
			if errors.Is(err, io.EOF) {
				return nil
			}
			if err != nil {
				return fmt.Errorf("%w: read part: %v", domain.ErrInvalidInput, err)
			}
			err = e.walk(part.Header.Get("Content-Type"), part.Header.Get("Content-Disposition"),
				part.Header.Get("Content-Transfer-Encoding"), part, depth+1, out)
			part.Close()
			if err != nil {
				return err
			}
		}
	}

	name := attachmentName(disposition, params)
	if name == "" || !normalisers.HasExtension(name, e.extension) {
		return nil
	}

	content, err := io.ReadAll(decodeBody(body, encoding))
	if err != nil {
		return fmt.Errorf("decode attachment %s: %w", name, err)
	}
	*out = append(*out, domain.Attachment{
		Name:     name,
		MIMEType: mediaType,
		Content:  content,
	})
	return nil
}

// attachmentName prefers the Content-Disposition filename over the
// Content-Type name parameter. Directory components are stripped.
func attachmentName(disposition string, typeParams map[string]string) string {
	var name string
	if _, params, err := mime.ParseMediaType(disposition); err == nil {
		name = params["filename"]
	}
	if name == "" {
		name = typeParams["name"]
	}
	if name == "" {
		return ""
	}
	name = decodeHeader(name)
	return filepath.Base(strings.ReplaceAll(name, "\\", "/"))
}

func decodeBody(r io.Reader, encoding string) io.Reader {
	switch strings.ToLower(strings.TrimSpace(encoding)) {
	case "base64":
		return base64.NewDecoder(base64.StdEncoding, r)
	case "quoted-printable":
		return quotedprintable.NewReader(r)
	default:
		return r
	}
}

// decodeHeader decodes RFC 2047 encoded words.
func decodeHeader(header string) string {
	dec := new(mime.WordDecoder)
	decoded, err := dec.DecodeHeader(header)
	if err != nil {
		return header
	}
	return decoded
}
