package domain

import (
	"fmt"
	"strings"
)

const unknownDescription = "Unknown"

// SlotConflictPolicy decides which code survives when several
// cross-references classify into the same slot.
type SlotConflictPolicy string

// Available slot conflict policies.
const (
	// SlotConflictLast keeps the last code classified into a slot.
	SlotConflictLast SlotConflictPolicy = "last"

	// SlotConflictFirst keeps the first code classified into a slot.
	SlotConflictFirst SlotConflictPolicy = "first"
)

// IsValid returns true if the policy is recognised.
func (p SlotConflictPolicy) IsValid() bool {
	switch p {
	case SlotConflictLast, SlotConflictFirst:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (p SlotConflictPolicy) String() string {
	return string(p)
}

// Description returns a human-readable description of the policy.
func (p SlotConflictPolicy) Description() string {
	switch p {
	case SlotConflictLast:
		return "Last wins (later codes overwrite earlier ones)"
	case SlotConflictFirst:
		return "First wins (later codes are reported and dropped)"
	default:
		return unknownDescription
	}
}

// TrackerSettings configures the remote tracking sheet.
type TrackerSettings struct {
	// BaseURL is the API root, e.g. https://api.smartsheet.com/2.0.
	BaseURL string

	// APIToken is the bearer token.
	APIToken string

	// SheetID identifies the target sheet.
	SheetID int64

	// ColumnIDs maps field names (fa, remarks, ...) to sheet column IDs.
	ColumnIDs map[string]int64

	// RequestsPerSecond caps the API call rate.
	RequestsPerSecond float64
}

// IsConfigured returns true if uploads can be attempted.
func (t TrackerSettings) IsConfigured() bool {
	return t.APIToken != "" && t.SheetID != 0 && len(t.ColumnIDs) > 0
}

// GmailSettings configures the optional Gmail mail source.
type GmailSettings struct {
	Enabled      bool
	Query        string
	ClientID     string
	ClientSecret string
	RefreshToken string
	MaxResults   int64
}

// IsConfigured returns true if the Gmail source has credentials.
func (g GmailSettings) IsConfigured() bool {
	return g.Enabled && g.ClientID != "" && g.ClientSecret != "" && g.RefreshToken != ""
}

// Settings is the resolved runtime configuration for a run.
type Settings struct {
	// MailDir holds .msg and .eml containers to ingest.
	MailDir string

	// AttachmentDir is the temporary attachment directory.
	AttachmentDir string

	// TextDir is the temporary text directory consumed by the pipeline.
	TextDir string

	// ArchiveDir keeps a copy of every attachment for upload.
	ArchiveDir string

	// DataDir holds the run ledger database.
	DataDir string

	// LogDir holds the run log file.
	LogDir string

	// TextExtension marks documents the extractor accepts.
	TextExtension string

	// AttachmentExtension replaces TextExtension in output file names.
	AttachmentExtension string

	// OutputFile is the exported spreadsheet path.
	OutputFile string

	// DeleteExisting removes a previous output before the run.
	DeleteExisting bool

	// OpenOutput opens the spreadsheet after export.
	OpenOutput bool

	// Columns is the ordered export column list.
	Columns []string

	// SlotConflict decides slot overwrite behaviour.
	SlotConflict SlotConflictPolicy

	Tracker TrackerSettings
	Gmail   GmailSettings
}

// DefaultSettings returns the historical defaults of the intake tool.
func DefaultSettings() Settings {
	return Settings{
		MailDir:             "./mail_asrs",
		AttachmentDir:       "./tmp_pdf",
		TextDir:             "./tmp_txt",
		ArchiveDir:          "./asr_pdfs",
		DataDir:             "",
		LogDir:              "logs",
		TextExtension:       ".txt",
		AttachmentExtension: ".pdf",
		OutputFile:          "output.xlsx",
		DeleteExisting:      true,
		OpenOutput:          true,
		Columns:             append([]string(nil), DefaultExportColumns...),
		SlotConflict:        SlotConflictLast,
		Tracker: TrackerSettings{
			BaseURL:           "https://api.smartsheet.com/2.0",
			ColumnIDs:         map[string]int64{},
			RequestsPerSecond: 4,
		},
		Gmail: GmailSettings{
			Query:      "has:attachment filename:pdf",
			MaxResults: 100,
		},
	}
}

// Validate checks the settings for values the pipeline cannot run with.
func (s Settings) Validate() error {
	var problems []string
	if s.TextDir == "" {
		problems = append(problems, "text directory is empty")
	}
	if s.AttachmentDir == "" {
		problems = append(problems, "attachment directory is empty")
	}
	if !strings.HasPrefix(s.TextExtension, ".") {
		problems = append(problems, fmt.Sprintf("text extension %q must start with '.'", s.TextExtension))
	}
	if !strings.HasPrefix(s.AttachmentExtension, ".") {
		problems = append(problems, fmt.Sprintf("attachment extension %q must start with '.'", s.AttachmentExtension))
	}
	if len(s.Columns) == 0 {
		problems = append(problems, "export column list is empty")
	}
	if !s.SlotConflict.IsValid() {
		problems = append(problems, fmt.Sprintf("unknown slot conflict policy %q", s.SlotConflict))
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidInput, strings.Join(problems, "; "))
	}
	return nil
}
