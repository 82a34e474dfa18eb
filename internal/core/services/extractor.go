package services

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/labonzique/comcast-asrs-handler/internal/core/domain"
)

// Extraction patterns. Each rule is independent of the others.
var (
	primaryCodePattern   = regexp.MustCompile(`\bOF\w+\b`)
	secondaryCodePattern = regexp.MustCompile(`FA\s*:?\s*(\d{8})`)
	datePattern          = regexp.MustCompile(`(\b2\s02.+?):`)
)

// Remarks markers.
const (
	remarksStart = "REMARKS"
	remarksEnd   = "BILLNM"
)

// RecordExtractor pulls labelled fields out of document text.
type RecordExtractor struct {
	textExtension string
}

// NewRecordExtractor creates an extractor that accepts documents
// whose names end with textExtension.
func NewRecordExtractor(textExtension string) *RecordExtractor {
	if textExtension == "" {
		textExtension = ".txt"
	}
	return &RecordExtractor{textExtension: textExtension}
}

// IsTextDocument reports whether a document name is a recognised text file.
func (e *RecordExtractor) IsTextDocument(name string) bool {
	return strings.HasSuffix(name, e.textExtension)
}

// Extract produces a raw record from one document's text.
// A field whose pattern does not match is left nil.
func (e *RecordExtractor) Extract(doc domain.TextDocument) domain.RawRecord {
	return domain.RawRecord{
		PrimaryCode:   extractPrimaryCode(doc.Text),
		SecondaryCode: extractSecondaryCode(doc.Text),
		Remarks:       extractRemarks(doc.Text),
		SourceFile:    doc.Name,
		ExtractedDate: extractDate(doc.Text),
	}
}

// ExtractAll extracts one record per text document, in input order.
// Documents that are not text files are skipped and reported as warnings.
func (e *RecordExtractor) ExtractAll(docs []domain.TextDocument) ([]domain.RawRecord, domain.BatchReport) {
	var report domain.BatchReport
	records := make([]domain.RawRecord, 0, len(docs))

	for _, doc := range docs {
		if !e.IsTextDocument(doc.Name) {
			report.Warn(domain.StageExtract, doc.Name, "skipped: not a %s document", e.textExtension)
			continue
		}
		records = append(records, e.Extract(doc))
	}

	return records, report
}

func extractPrimaryCode(text string) *string {
	match := primaryCodePattern.FindString(text)
	if match == "" {
		return nil
	}
	return &match
}

func extractSecondaryCode(text string) *string {
	m := secondaryCodePattern.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	return &m[1]
}

// extractRemarks returns the text strictly between the first REMARKS
// and the next BILLNM.
func extractRemarks(text string) *string {
	start := strings.Index(text, remarksStart)
	if start < 0 {
		return nil
	}
	rest := text[start+len(remarksStart):]
	end := strings.Index(rest, remarksEnd)
	if end < 0 {
		return nil
	}

	body := strings.ReplaceAll(rest[:end], "\r\n", " ")
	body = strings.ReplaceAll(body, "\n", " ")
	body = strings.TrimSpace(body)
	return &body
}

// extractDate finds a "2 02..." stamp terminated by a colon and
// reformats its first eight characters as YYYY-MM-DD.
func extractDate(text string) *string {
	m := datePattern.FindStringSubmatch(text)
	if m == nil {
		return nil
	}

	raw := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, m[1])

	formatted := slice(raw, 0, 4) + "-" + slice(raw, 4, 6) + "-" + slice(raw, 6, 8)
	return &formatted
}

// slice returns the runes s[from:to] clamped to the string's length.
func slice(s string, from, to int) string {
	r := []rune(s)
	if from > len(r) {
		return ""
	}
	if to > len(r) {
		to = len(r)
	}
	return string(r[from:to])
}
