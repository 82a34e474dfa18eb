package mcp

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/labonzique/comcast-asrs-handler/internal/core/domain"
)

func TestExtractRunID(t *testing.T) {
	tests := []struct {
		name     string
		uri      string
		expected string
	}{
		{"valid run URI", "asrs://runs/run-123", "run-123"},
		{"invalid prefix", "file://runs/run-123", ""},
		{"runs list", "asrs://runs", ""},
		{"empty URI", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, extractRunID(tt.uri))
		})
	}
}

// Helper to create a ReadResourceRequest with the given URI.
func makeReadResourceRequest(uri string) *mcp.ReadResourceRequest {
	return &mcp.ReadResourceRequest{
		Params: &mcp.ReadResourceParams{
			URI: uri,
		},
	}
}

func TestServer_handleRunsResource(t *testing.T) {
	ctx := context.Background()
	started := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	t.Run("nil history returns empty list", func(t *testing.T) {
		server, err := NewServer(&Ports{Records: &mockRecordProcessor{}})
		require.NoError(t, err)

		result, err := server.handleRunsResource(ctx, makeReadResourceRequest("asrs://runs"))

		require.NoError(t, err)
		require.Len(t, result.Contents, 1)
		assert.Equal(t, "[]", result.Contents[0].Text)
	})

	t.Run("returns runs", func(t *testing.T) {
		history := &mockHistoryService{runs: []domain.Run{
			{ID: "run-2", Status: domain.RunStatusRunning, StartedAt: started},
			{
				ID: "run-1", Status: domain.RunStatusCompleted, StartedAt: started,
				FinishedAt: started.Add(time.Minute), Records: 3, OutputPath: "output.xlsx",
			},
		}}
		server, err := NewServer(&Ports{Records: &mockRecordProcessor{}, History: history})
		require.NoError(t, err)

		result, err := server.handleRunsResource(ctx, makeReadResourceRequest("asrs://runs"))

		require.NoError(t, err)
		text := result.Contents[0].Text
		assert.Contains(t, text, `"id": "run-2"`)
		assert.Contains(t, text, `"status": "completed"`)
		assert.Contains(t, text, `"output_path": "output.xlsx"`)
		assert.Equal(t, runsLimit, history.limit)
	})

	t.Run("returns error on list failure", func(t *testing.T) {
		history := &mockHistoryService{err: errors.New("database error")}
		server, err := NewServer(&Ports{Records: &mockRecordProcessor{}, History: history})
		require.NoError(t, err)

		_, err = server.handleRunsResource(ctx, makeReadResourceRequest("asrs://runs"))

		require.Error(t, err)
		assert.Contains(t, err.Error(), "listing runs")
	})
}

func TestServer_handleRunResource(t *testing.T) {
	ctx := context.Background()

	t.Run("nil history returns not found", func(t *testing.T) {
		server, err := NewServer(&Ports{Records: &mockRecordProcessor{}})
		require.NoError(t, err)

		_, err = server.handleRunResource(ctx, makeReadResourceRequest("asrs://runs/run-1"))

		require.Error(t, err)
	})

	t.Run("invalid URI returns not found", func(t *testing.T) {
		server, err := NewServer(&Ports{Records: &mockRecordProcessor{}, History: &mockHistoryService{}})
		require.NoError(t, err)

		_, err = server.handleRunResource(ctx, makeReadResourceRequest("asrs://other/run-1"))

		require.Error(t, err)
	})

	t.Run("returns run with uploads", func(t *testing.T) {
		history := &mockHistoryService{
			run:     &domain.Run{ID: "run-1", Status: domain.RunStatusCompleted},
			uploads: []domain.UploadEntry{{GroupKey: "OF12345", RowID: 77, RunID: "run-1"}},
		}
		server, err := NewServer(&Ports{Records: &mockRecordProcessor{}, History: history})
		require.NoError(t, err)

		result, err := server.handleRunResource(ctx, makeReadResourceRequest("asrs://runs/run-1"))

		require.NoError(t, err)
		text := result.Contents[0].Text
		assert.Contains(t, text, "OF12345")
		assert.Contains(t, text, "77")
		assert.NotContains(t, text, "finished_at")
	})

	t.Run("returns error when run is missing", func(t *testing.T) {
		history := &mockHistoryService{err: domain.ErrNotFound}
		server, err := NewServer(&Ports{Records: &mockRecordProcessor{}, History: history})
		require.NoError(t, err)

		_, err = server.handleRunResource(ctx, makeReadResourceRequest("asrs://runs/missing"))

		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("returns error when uploads fail", func(t *testing.T) {
		history := &mockHistoryService{
			run:       &domain.Run{ID: "run-1"},
			uploadErr: errors.New("locked"),
		}
		server, err := NewServer(&Ports{Records: &mockRecordProcessor{}, History: history})
		require.NoError(t, err)

		_, err = server.handleRunResource(ctx, makeReadResourceRequest("asrs://runs/run-1"))

		require.Error(t, err)
		assert.Contains(t, err.Error(), "listing uploads")
	})
}
