package mcp

import (
	"context"

	"github.com/labonzique/comcast-asrs-handler/internal/core/domain"
)

// mockRecordProcessor is a mock implementation of driving.RecordProcessor.
type mockRecordProcessor struct {
	record domain.RawRecord
	result *domain.PipelineResult
	docs   []domain.TextDocument
	err    error
}

func (m *mockRecordProcessor) Extract(doc domain.TextDocument) domain.RawRecord {
	rec := m.record
	rec.SourceFile = doc.Name
	return rec
}

func (m *mockRecordProcessor) Process(_ context.Context, docs []domain.TextDocument) (*domain.PipelineResult, error) {
	m.docs = docs
	if m.err != nil {
		return nil, m.err
	}
	if m.result == nil {
		return &domain.PipelineResult{}, nil
	}
	return m.result, nil
}

// mockHistoryService is a mock implementation of driving.HistoryService.
type mockHistoryService struct {
	runs      []domain.Run
	run       *domain.Run
	uploads   []domain.UploadEntry
	err       error
	uploadErr error
	limit     int
}

func (m *mockHistoryService) Runs(_ context.Context, limit int) ([]domain.Run, error) {
	m.limit = limit
	return m.runs, m.err
}

func (m *mockHistoryService) Run(_ context.Context, _ string) (*domain.Run, error) {
	return m.run, m.err
}

func (m *mockHistoryService) Uploads(_ context.Context, _ string) ([]domain.UploadEntry, error) {
	return m.uploads, m.uploadErr
}
