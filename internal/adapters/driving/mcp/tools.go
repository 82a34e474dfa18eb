package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/labonzique/comcast-asrs-handler/internal/core/domain"
)

// DocumentInput is one text document passed to a tool.
type DocumentInput struct {
	Name string `json:"name" jsonschema:"document file name, e.g. A1_OF12345.txt"`
	Text string `json:"text" jsonschema:"first-page text of the ASR form"`
}

// ExtractOutput is the output schema for the extract_record tool.
type ExtractOutput struct {
	SourceFile    string `json:"filename"`
	PrimaryCode   string `json:"of,omitempty"`
	SecondaryCode string `json:"fa,omitempty"`
	Remarks       string `json:"remarks,omitempty"`
	Date          string `json:"date,omitempty"`
}

// ProcessInput is the input schema for the process_documents tool.
type ProcessInput struct {
	Documents []DocumentInput `json:"documents" jsonschema:"text documents to extract and group"`
}

// RecordOutput is one grouped record.
type RecordOutput struct {
	GroupKey      string   `json:"of_short,omitempty"`
	SecondaryCode string   `json:"fa,omitempty"`
	Remarks       string   `json:"remarks,omitempty"`
	Date          string   `json:"date,omitempty"`
	Pon1          string   `json:"pon1,omitempty"`
	Pon2          string   `json:"pon2,omitempty"`
	Uni           string   `json:"uni,omitempty"`
	Files         []string `json:"all_files"`
}

// IssueOutput is a failure or warning raised while processing.
type IssueOutput struct {
	Document string `json:"document"`
	Stage    string `json:"stage"`
	Message  string `json:"message"`
}

// ProcessOutput is the output schema for the process_documents tool.
type ProcessOutput struct {
	Records  []RecordOutput `json:"records"`
	Count    int            `json:"count"`
	Failures []IssueOutput  `json:"failures,omitempty"`
	Warnings []IssueOutput  `json:"warnings,omitempty"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "extract_record",
		Description: "Extract the order code, FA code, remarks and date from one ASR text",
	}, s.handleExtract)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "process_documents",
		Description: "Extract, group by order and classify cross-references for a set of ASR texts",
	}, s.handleProcess)
}

func (s *Server) handleExtract(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input DocumentInput,
) (*mcp.CallToolResult, ExtractOutput, error) {
	if input.Name == "" {
		return nil, ExtractOutput{}, fmt.Errorf("%w: name is required", domain.ErrInvalidInput)
	}

	rec := s.ports.Records.Extract(domain.TextDocument{Name: input.Name, Text: input.Text})
	return nil, ExtractOutput{
		SourceFile:    rec.SourceFile,
		PrimaryCode:   domain.Deref(rec.PrimaryCode),
		SecondaryCode: domain.Deref(rec.SecondaryCode),
		Remarks:       domain.Deref(rec.Remarks),
		Date:          domain.Deref(rec.ExtractedDate),
	}, nil
}

func (s *Server) handleProcess(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ProcessInput,
) (*mcp.CallToolResult, ProcessOutput, error) {
	docs := make([]domain.TextDocument, len(input.Documents))
	for i, d := range input.Documents {
		docs[i] = domain.TextDocument{Name: d.Name, Text: d.Text}
	}

	result, err := s.ports.Records.Process(ctx, docs)
	if err != nil {
		return nil, ProcessOutput{}, err
	}

	output := ProcessOutput{
		Records: make([]RecordOutput, len(result.Final)),
		Count:   len(result.Final),
	}
	for i := range result.Final {
		output.Records[i] = toRecordOutput(&result.Final[i])
	}
	for _, f := range result.Report.Failures {
		output.Failures = append(output.Failures, IssueOutput{
			Document: f.Document, Stage: string(f.Stage), Message: f.Err.Error(),
		})
	}
	for _, w := range result.Report.Warnings {
		output.Warnings = append(output.Warnings, IssueOutput{
			Document: w.Document, Stage: string(w.Stage), Message: w.Message,
		})
	}

	return nil, output, nil
}

func toRecordOutput(rec *domain.FinalRecord) RecordOutput {
	return RecordOutput{
		GroupKey:      rec.Key(),
		SecondaryCode: domain.Deref(rec.SecondaryCode),
		Remarks:       domain.Deref(rec.Remarks),
		Date:          domain.Deref(rec.ExtractedDate),
		Pon1:          domain.Deref(rec.Pon1),
		Pon2:          domain.Deref(rec.Pon2),
		Uni:           domain.Deref(rec.Uni),
		Files:         append([]string{}, rec.AllOutputFiles...),
	}
}
