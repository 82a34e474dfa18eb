package domain

import (
	"errors"
	"fmt"
)

// Stage identifies where in a run a document failed.
type Stage string

// Run stages, in execution order.
const (
	StageFetch   Stage = "fetch"
	StageUnpack  Stage = "unpack"
	StageConvert Stage = "convert"
	StageRead    Stage = "read"
	StageExtract Stage = "extract"
	StageGroup   Stage = "group"
	StageExport  Stage = "export"
	StageUpload  Stage = "upload"
)

// DocumentFailure records one document that could not be processed.
type DocumentFailure struct {
	// Document is the document or container name.
	Document string `json:"document"`

	// Stage is where processing stopped.
	Stage Stage `json:"stage"`

	// Err is the underlying cause.
	Err error `json:"-"`
}

// Error implements the error interface.
func (f DocumentFailure) Error() string {
	return fmt.Sprintf("%s %s: %v", f.Stage, f.Document, f.Err)
}

// Unwrap returns the underlying cause.
func (f DocumentFailure) Unwrap() error {
	return f.Err
}

// Warning is a non-fatal observation about a document.
type Warning struct {
	Document string `json:"document"`
	Stage    Stage  `json:"stage"`
	Message  string `json:"message"`
}

// BatchReport accumulates per-document outcomes for one batch.
// Failures are collected and reported at the end, never swallowed.
type BatchReport struct {
	Failures []DocumentFailure `json:"failures,omitempty"`
	Warnings []Warning         `json:"warnings,omitempty"`
}

// Fail records a failure.
func (r *BatchReport) Fail(stage Stage, document string, err error) {
	r.Failures = append(r.Failures, DocumentFailure{Document: document, Stage: stage, Err: err})
}

// Warn records a warning.
func (r *BatchReport) Warn(stage Stage, document, format string, args ...any) {
	r.Warnings = append(r.Warnings, Warning{
		Document: document,
		Stage:    stage,
		Message:  fmt.Sprintf(format, args...),
	})
}

// Merge appends another report's entries.
func (r *BatchReport) Merge(other BatchReport) {
	r.Failures = append(r.Failures, other.Failures...)
	r.Warnings = append(r.Warnings, other.Warnings...)
}

// HasFailures reports whether any document failed.
func (r *BatchReport) HasFailures() bool {
	return len(r.Failures) > 0
}

// Err joins all failures into one error, or nil.
func (r *BatchReport) Err() error {
	if len(r.Failures) == 0 {
		return nil
	}
	errs := make([]error, len(r.Failures))
	for i := range r.Failures {
		errs[i] = r.Failures[i]
	}
	return errors.Join(errs...)
}

// PipelineResult is the output of one record pipeline invocation.
type PipelineResult struct {
	Raw          []RawRecord          `json:"raw"`
	Consolidated []ConsolidatedRecord `json:"consolidated"`
	Final        []FinalRecord        `json:"final"`
	Report       BatchReport          `json:"report"`
}

// RunOptions controls the optional steps of an intake run.
type RunOptions struct {
	// Upload sends rows and attachments to the tracking sheet.
	Upload bool

	// Open opens the exported spreadsheet in the system viewer.
	Open bool

	// KeepTemp leaves the temporary attachment and text directories in place.
	KeepTemp bool

	// Force re-uploads group keys already recorded in the ledger.
	Force bool
}

// RunReport summarises a completed intake run.
type RunReport struct {
	RunID          string      `json:"run_id"`
	Containers     int         `json:"containers"`
	Attachments    int         `json:"attachments"`
	TextDocuments  int         `json:"text_documents"`
	Records        int         `json:"records"`
	Uploaded       int         `json:"uploaded"`
	SkippedUploads int         `json:"skipped_uploads"`
	OutputPath     string      `json:"output_path,omitempty"`
	Report         BatchReport `json:"report"`
}
