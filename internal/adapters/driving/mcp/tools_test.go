package mcp

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/labonzique/comcast-asrs-handler/internal/core/domain"
)

func TestServer_handleExtract(t *testing.T) {
	ctx := context.Background()

	t.Run("returns extracted fields", func(t *testing.T) {
		records := &mockRecordProcessor{record: domain.RawRecord{
			PrimaryCode:   domain.StringPtr("OF12345E1"),
			SecondaryCode: domain.StringPtr("12345678"),
			ExtractedDate: domain.StringPtr("2024-03-15"),
		}}
		server, err := NewServer(&Ports{Records: records})
		require.NoError(t, err)

		_, output, err := server.handleExtract(ctx, nil, DocumentInput{Name: "A1.txt", Text: "..."})

		require.NoError(t, err)
		assert.Equal(t, "A1.txt", output.SourceFile)
		assert.Equal(t, "OF12345E1", output.PrimaryCode)
		assert.Equal(t, "12345678", output.SecondaryCode)
		assert.Equal(t, "2024-03-15", output.Date)
		assert.Empty(t, output.Remarks)
	})

	t.Run("requires a name", func(t *testing.T) {
		server, err := NewServer(&Ports{Records: &mockRecordProcessor{}})
		require.NoError(t, err)

		_, _, err = server.handleExtract(ctx, nil, DocumentInput{Text: "OF1"})

		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})
}

func TestServer_handleProcess(t *testing.T) {
	ctx := context.Background()

	t.Run("returns grouped records and issues", func(t *testing.T) {
		records := &mockRecordProcessor{result: &domain.PipelineResult{
			Final: []domain.FinalRecord{{
				GroupKey:       domain.StringPtr("OF12345"),
				Pon1:           domain.StringPtr("OF12345E1"),
				Uni:            domain.StringPtr("OF12345"),
				AllOutputFiles: []string{"A1.pdf", "A2.pdf"},
			}},
			Report: domain.BatchReport{
				Failures: []domain.DocumentFailure{{Document: "x.txt", Stage: domain.StageRead, Err: errors.New("boom")}},
				Warnings: []domain.Warning{{Document: "y.md", Stage: domain.StageExtract, Message: "skipped"}},
			},
		}}
		server, err := NewServer(&Ports{Records: records})
		require.NoError(t, err)

		input := ProcessInput{Documents: []DocumentInput{
			{Name: "A1.txt", Text: "OF12345"},
			{Name: "A2.txt", Text: "OF12345E1"},
		}}
		_, output, err := server.handleProcess(ctx, nil, input)

		require.NoError(t, err)
		require.Len(t, records.docs, 2)
		assert.Equal(t, "A2.txt", records.docs[1].Name)

		assert.Equal(t, 1, output.Count)
		assert.Equal(t, "OF12345", output.Records[0].GroupKey)
		assert.Equal(t, "OF12345E1", output.Records[0].Pon1)
		assert.Empty(t, output.Records[0].Pon2)
		assert.Equal(t, []string{"A1.pdf", "A2.pdf"}, output.Records[0].Files)
		require.Len(t, output.Failures, 1)
		assert.Equal(t, "boom", output.Failures[0].Message)
		require.Len(t, output.Warnings, 1)
		assert.Equal(t, "extract", output.Warnings[0].Stage)
	})

	t.Run("empty input yields no records", func(t *testing.T) {
		server, err := NewServer(&Ports{Records: &mockRecordProcessor{}})
		require.NoError(t, err)

		_, output, err := server.handleProcess(ctx, nil, ProcessInput{})

		require.NoError(t, err)
		assert.Equal(t, 0, output.Count)
		assert.Empty(t, output.Records)
	})

	t.Run("returns error on processing failure", func(t *testing.T) {
		server, err := NewServer(&Ports{Records: &mockRecordProcessor{err: context.Canceled}})
		require.NoError(t, err)

		_, _, err = server.handleProcess(ctx, nil, ProcessInput{})

		assert.ErrorIs(t, err, context.Canceled)
	})
}
