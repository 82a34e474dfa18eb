// Package msg unpacks Outlook .msg files. A .msg file is a compound file
// (CFB); each attachment is a storage named __attach_version1.0_#XXXXXXXX
// holding MAPI property streams.
package msg

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/richardlehane/mscfb"
	"golang.org/x/text/encoding/unicode"

	"github.com/labonzique/comcast-asrs-handler/internal/core/domain"
	"github.com/labonzique/comcast-asrs-handler/internal/core/ports/driven"
	"github.com/labonzique/comcast-asrs-handler/internal/normalisers"
)

// Ensure Extractor implements the interface.
var _ driven.AttachmentExtractor = (*Extractor)(nil)

// MAPI property stream names inside an attachment storage.
const (
	attachPrefix       = "__attach_version1.0_#"
	embeddedMessage    = "__substg1.0_3701000D"
	propLongFilename   = "__substg1.0_3707001F"
	propShortFilename  = "__substg1.0_3704001F"
	propAttachData     = "__substg1.0_37010102"
	propAttachMIMETag  = "__substg1.0_370E001F"
	propLongFilenameA  = "__substg1.0_3707001E"
	propShortFilenameA = "__substg1.0_3704001E"
)

// Extractor collects attachments from Outlook messages.
type Extractor struct {
	extension string
}

// New creates an extractor keeping attachments whose long file name ends
// with extension (".pdf" when empty).
func New(extension string) *Extractor {
	if extension == "" {
		extension = ".pdf"
	}
	return &Extractor{extension: extension}
}

// SupportedMIMETypes returns the MIME types this extractor handles.
func (e *Extractor) SupportedMIMETypes() []string {
	return []string{domain.MIMETypeOutlookMessage}
}

// stream is one property stream read from the compound file.
type stream struct {
	path []string
	name string
	data []byte
}

// Extract reads the compound file and returns matching attachments in
// storage order. Attachments of embedded messages are not descended into.
func (e *Extractor) Extract(ctx context.Context, raw *domain.RawDocument) ([]domain.Attachment, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	doc, err := mscfb.New(bytes.NewReader(raw.Content))
	if err != nil {
		return nil, fmt.Errorf("%w: not an outlook message: %v", domain.ErrInvalidInput, err)
	}

	var streams []stream
	for entry, err := doc.Next(); ; entry, err = doc.Next() {
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: read compound file: %v", domain.ErrInvalidInput, err)
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if _, ok := attachmentStorage(entry.Path); !ok || !wanted(entry.Name) {
			continue
		}
		data, err := io.ReadAll(entry)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", entry.Name, err)
		}
		streams = append(streams, stream{path: entry.Path, name: entry.Name, data: data})
	}

	return e.assemble(streams), nil
}

// assemble groups property streams by attachment storage.
func (e *Extractor) assemble(streams []stream) []domain.Attachment {
	type parts struct {
		longName  string
		shortName string
		mimeTag   string
		data      []byte
		hasData   bool
	}
	byStorage := make(map[string]*parts)

	for _, s := range streams {
		storage, ok := attachmentStorage(s.path)
		if !ok {
			continue
		}
		p := byStorage[storage]
		if p == nil {
			p = &parts{}
			byStorage[storage] = p
		}
		switch s.name {
		case propLongFilename:
			p.longName = decodeUTF16(s.data)
		case propLongFilenameA:
			if p.longName == "" {
				p.longName = decodeString8(s.data)
			}
		case propShortFilename:
			p.shortName = decodeUTF16(s.data)
		case propShortFilenameA:
			if p.shortName == "" {
				p.shortName = decodeString8(s.data)
			}
		case propAttachMIMETag:
			p.mimeTag = decodeUTF16(s.data)
		case propAttachData:
			p.data = s.data
			p.hasData = true
		}
	}

	storages := make([]string, 0, len(byStorage))
	for name := range byStorage {
		storages = append(storages, name)
	}
	sort.Strings(storages)

	var out []domain.Attachment
	for _, storage := range storages {
		p := byStorage[storage]
		name := p.longName
		if name == "" {
			name = p.shortName
		}
		if !p.hasData || name == "" || !normalisers.HasExtension(name, e.extension) {
			continue
		}
		mimeType := p.mimeTag
		if mimeType == "" {
			mimeType = domain.MIMETypePDF
		}
		out = append(out, domain.Attachment{Name: name, MIMEType: mimeType, Content: p.data})
	}
	return out
}

// attachmentStorage returns the top-level attachment storage a stream
// belongs to. Streams nested in embedded messages are rejected.
func attachmentStorage(path []string) (string, bool) {
	if len(path) == 0 {
		return "", false
	}
	last := path[len(path)-1]
	if !strings.HasPrefix(last, attachPrefix) {
		return "", false
	}
	for _, p := range path[:len(path)-1] {
		if strings.HasPrefix(p, attachPrefix) || p == embeddedMessage {
			return "", false
		}
	}
	return last, true
}

func wanted(name string) bool {
	switch name {
	case propLongFilename, propLongFilenameA, propShortFilename, propShortFilenameA,
		propAttachData, propAttachMIMETag:
		return true
	default:
		return false
	}
}

// decodeUTF16 decodes a PT_UNICODE property, dropping the NUL terminator.
func decodeUTF16(b []byte) string {
	dec := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewDecoder()
	out, err := dec.Bytes(b)
	if err != nil {
		return ""
	}
	return strings.TrimRight(string(out), "\x00")
}

// decodeString8 decodes a PT_STRING8 property.
func decodeString8(b []byte) string {
	return strings.TrimRight(string(b), "\x00")
}
