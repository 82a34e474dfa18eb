package gmail

import (
	"github.com/labonzique/comcast-asrs-handler/internal/core/domain"
)

// DefaultQuery selects messages carrying a PDF attachment.
const DefaultQuery = "has:attachment filename:pdf"

// Config holds Gmail source configuration.
type Config struct {
	// Query is a Gmail search query.
	Query string
	// LabelIDs limits the listing to specific labels (optional).
	LabelIDs []string
	// MaxResults is the page size for messages.list.
	MaxResults int64
	// IncludeSpamTrash includes spam and trash if true.
	IncludeSpamTrash bool
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Query:      DefaultQuery,
		MaxResults: 100,
	}
}

// ConfigFromSettings builds a Config from the resolved settings.
func ConfigFromSettings(s domain.GmailSettings) *Config {
	cfg := DefaultConfig()
	if s.Query != "" {
		cfg.Query = s.Query
	}
	if s.MaxResults > 0 {
		cfg.MaxResults = s.MaxResults
	}
	return cfg
}
