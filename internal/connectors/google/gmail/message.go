package gmail

import (
	"encoding/base64"
	"fmt"
	"strings"

	"google.golang.org/api/gmail/v1"

	"github.com/labonzique/comcast-asrs-handler/internal/core/domain"
)

// MessageToRawDocument converts a Gmail message fetched with Format("raw").
// msg.Raw holds the base64url-encoded RFC 2822 message.
func MessageToRawDocument(msg *gmail.Message, sourceID string) (*domain.RawDocument, error) {
	rawBytes, err := decodeRaw(msg.Raw)
	if err != nil {
		return nil, fmt.Errorf("decode message %s: %w", msg.Id, err)
	}

	return &domain.RawDocument{
		SourceID: sourceID,
		URI:      fmt.Sprintf("gmail://messages/%s", msg.Id),
		MIMEType: domain.MIMETypeRFC822,
		Content:  rawBytes,
		Metadata: map[string]any{
			"message_id":    msg.Id,
			"thread_id":     msg.ThreadId,
			"labels":        msg.LabelIds,
			"snippet":       msg.Snippet,
			"internal_date": msg.InternalDate,
			"size":          len(rawBytes),
		},
	}, nil
}

// decodeRaw accepts padded and unpadded base64url.
func decodeRaw(s string) ([]byte, error) {
	if s == "" {
		return nil, fmt.Errorf("empty raw payload")
	}
	return base64.RawURLEncoding.DecodeString(strings.TrimRight(s, "="))
}
