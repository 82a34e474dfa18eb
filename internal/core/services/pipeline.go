package services

import (
	"context"

	"github.com/labonzique/comcast-asrs-handler/internal/core/domain"
	"github.com/labonzique/comcast-asrs-handler/internal/core/ports/driving"
	"github.com/labonzique/comcast-asrs-handler/internal/logger"
)

// Ensure RecordPipeline implements the interface.
var _ driving.RecordProcessor = (*RecordPipeline)(nil)

// RecordPipeline chains extraction, consolidation and classification.
// Every call starts from an empty group index, so concurrent calls over
// separate inputs are independent.
type RecordPipeline struct {
	extractor    *RecordExtractor
	consolidator *Consolidator
	classifier   *Classifier
}

// NewRecordPipeline creates a pipeline from settings.
func NewRecordPipeline(settings domain.Settings) *RecordPipeline {
	return &RecordPipeline{
		extractor:    NewRecordExtractor(settings.TextExtension),
		consolidator: NewConsolidator(settings.TextExtension, settings.AttachmentExtension),
		classifier:   NewClassifier(settings.SlotConflict),
	}
}

// Extract produces the raw record for one document.
func (p *RecordPipeline) Extract(doc domain.TextDocument) domain.RawRecord {
	return p.extractor.Extract(doc)
}

// Process runs the full pipeline over a copy of docs.
func (p *RecordPipeline) Process(ctx context.Context, docs []domain.TextDocument) (*domain.PipelineResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	snapshot := make([]domain.TextDocument, len(docs))
	copy(snapshot, docs)

	result := &domain.PipelineResult{}

	raw, report := p.extractor.ExtractAll(snapshot)
	result.Raw = raw
	result.Report.Merge(report)
	logger.Debug("Extracted %d records from %d documents", len(raw), len(snapshot))

	idx, report := p.consolidator.Consolidate(nil, raw)
	result.Consolidated = idx.Records()
	result.Report.Merge(report)
	logger.Debug("Consolidated into %d records", idx.Len())

	final, classified := p.classifier.Classify(result.Consolidated)
	result.Final = final
	for _, o := range classified.Overwritten {
		result.Report.Warn(domain.StageGroup, o.Label,
			"%s slot conflict: kept %s, dropped %s", o.Slot, o.Kept, o.Dropped)
	}
	logger.Debug("Classified %d codes, %d slot conflicts", classified.Classified, len(classified.Overwritten))

	return result, nil
}
