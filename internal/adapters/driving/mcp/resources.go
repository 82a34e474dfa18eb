package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/labonzique/comcast-asrs-handler/internal/core/domain"
)

const (
	uriScheme = "asrs://"

	// runsLimit caps the runs listed by the runs resource.
	runsLimit = 50
)

// runInfo is the JSON shape of a ledger run.
type runInfo struct {
	ID         string               `json:"id"`
	Status     string               `json:"status"`
	StartedAt  time.Time            `json:"started_at"`
	FinishedAt *time.Time           `json:"finished_at,omitempty"`
	Records    int                  `json:"records"`
	Uploaded   int                  `json:"uploaded"`
	Failures   int                  `json:"failures"`
	OutputPath string               `json:"output_path,omitempty"`
	LastError  string               `json:"last_error,omitempty"`
	Uploads    []domain.UploadEntry `json:"uploads,omitempty"`
}

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "runs",
		Name:        "runs",
		Description: "Recent intake runs, newest first",
		MIMEType:    "application/json",
	}, s.handleRunsResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "runs/{runId}",
		Name:        "run",
		Description: "One intake run with the rows it uploaded",
		MIMEType:    "application/json",
	}, s.handleRunResource)
}

// handleRunsResource lists recent runs. Without a ledger the list is empty.
func (s *Server) handleRunsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.History == nil {
		return jsonResult(req.Params.URI, "[]"), nil
	}

	runs, err := s.ports.History.Runs(ctx, runsLimit)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}

	infos := make([]runInfo, len(runs))
	for i := range runs {
		infos[i] = toRunInfo(&runs[i])
	}

	data, err := json.MarshalIndent(infos, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling runs: %w", err)
	}
	return jsonResult(req.Params.URI, string(data)), nil
}

// handleRunResource returns one run and its uploads.
func (s *Server) handleRunResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.History == nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	runID := extractRunID(req.Params.URI)
	if runID == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	run, err := s.ports.History.Run(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("getting run: %w", err)
	}
	info := toRunInfo(run)

	info.Uploads, err = s.ports.History.Uploads(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("listing uploads: %w", err)
	}

	data, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling run: %w", err)
	}
	return jsonResult(req.Params.URI, string(data)), nil
}

func toRunInfo(run *domain.Run) runInfo {
	info := runInfo{
		ID:         run.ID,
		Status:     string(run.Status),
		StartedAt:  run.StartedAt,
		Records:    run.Records,
		Uploaded:   run.Uploaded,
		Failures:   run.Failures,
		OutputPath: run.OutputPath,
		LastError:  run.LastError,
	}
	if !run.FinishedAt.IsZero() {
		finished := run.FinishedAt
		info.FinishedAt = &finished
	}
	return info
}

func jsonResult(uri, text string) *mcp.ReadResourceResult {
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     text,
		}},
	}
}

// extractRunID extracts the run ID from a URI like asrs://runs/{runId}.
func extractRunID(uri string) string {
	const prefix = uriScheme + "runs/"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}
	return strings.TrimPrefix(uri, prefix)
}
