package services

import (
	"strings"

	"github.com/labonzique/comcast-asrs-handler/internal/core/domain"
)

// Consolidator merges raw records that share a group key.
type Consolidator struct {
	textExtension       string
	attachmentExtension string
}

// NewConsolidator creates a consolidator that maps text file names to
// their paired attachment names by swapping extensions.
func NewConsolidator(textExtension, attachmentExtension string) *Consolidator {
	return &Consolidator{
		textExtension:       textExtension,
		attachmentExtension: attachmentExtension,
	}
}

// Consolidate folds records into idx and returns it. A nil idx starts a
// fresh index. The first record seen for a key supplies every scalar
// field; later records only extend the code and file lists.
//
// Records without a primary code each become their own entry and are
// reported as warnings rather than coalesced under a shared key.
func (c *Consolidator) Consolidate(idx *domain.GroupIndex, records []domain.RawRecord) (*domain.GroupIndex, domain.BatchReport) {
	if idx == nil {
		idx = domain.NewGroupIndex()
	}
	var report domain.BatchReport

	for _, rec := range records {
		key := TrimToLastDigits(rec.PrimaryCode)
		outputFile := c.OutputFileName(rec.SourceFile)

		if key == nil {
			report.Warn(domain.StageGroup, rec.SourceFile, "no primary code; kept as a separate record")
			_ = idx.Add(domain.ConsolidatedRecord{
				SecondaryCode:   rec.SecondaryCode,
				Remarks:         rec.Remarks,
				ExtractedDate:   rec.ExtractedDate,
				AllPrimaryCodes: []string{},
				AllOutputFiles:  []string{outputFile},
			})
			continue
		}

		if existing, ok := idx.Lookup(*key); ok {
			existing.AllPrimaryCodes = append(existing.AllPrimaryCodes, *rec.PrimaryCode)
			existing.AllOutputFiles = append(existing.AllOutputFiles, outputFile)
			continue
		}

		// Lookup just missed, so Add cannot collide.
		_ = idx.Add(domain.ConsolidatedRecord{
			GroupKey:        key,
			SecondaryCode:   rec.SecondaryCode,
			Remarks:         rec.Remarks,
			ExtractedDate:   rec.ExtractedDate,
			AllPrimaryCodes: []string{*rec.PrimaryCode},
			AllOutputFiles:  []string{outputFile},
		})
	}

	return idx, report
}

// OutputFileName replaces a trailing text extension with the attachment extension.
func (c *Consolidator) OutputFileName(name string) string {
	if c.textExtension == "" || !strings.HasSuffix(name, c.textExtension) {
		return name
	}
	return strings.TrimSuffix(name, c.textExtension) + c.attachmentExtension
}
