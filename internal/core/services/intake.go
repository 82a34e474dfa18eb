package services

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/labonzique/comcast-asrs-handler/internal/core/domain"
	"github.com/labonzique/comcast-asrs-handler/internal/core/ports/driven"
	"github.com/labonzique/comcast-asrs-handler/internal/core/ports/driving"
	"github.com/labonzique/comcast-asrs-handler/internal/logger"
)

// Ensure IntakeService implements the interface.
var _ driving.IntakeService = (*IntakeService)(nil)

// IntakeDependencies are the collaborators of an intake run.
// Viewer, Uploader and Ledger are optional.
type IntakeDependencies struct {
	Sources    []driven.MailSource
	Extractors driven.AttachmentExtractorRegistry
	Converter  driven.TextConverter
	Workspace  driven.Workspace
	Exporter   driven.TabularExporter
	Viewer     driven.Viewer
	Uploader   driven.RowUploader
	Ledger     driven.LedgerStore
	Processor  driving.RecordProcessor
}

// IntakeService coordinates a full intake run.
type IntakeService struct {
	settings domain.Settings
	deps     IntakeDependencies

	newID func() string
	now   func() time.Time

	mu      sync.Mutex
	running bool
}

// NewIntakeService creates an intake service. When deps.Processor is nil
// a RecordPipeline is built from settings.
func NewIntakeService(settings domain.Settings, deps IntakeDependencies) *IntakeService {
	if deps.Processor == nil {
		deps.Processor = NewRecordPipeline(settings)
	}
	return &IntakeService{
		settings: settings,
		deps:     deps,
		newID:    uuid.NewString,
		now:      time.Now,
	}
}

// Running reports whether a run is in progress.
func (s *IntakeService) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Run performs one intake run.
//
//nolint:gocyclo // Orchestration function with necessary sequential steps
func (s *IntakeService) Run(ctx context.Context, opts domain.RunOptions) (*domain.RunReport, error) {
	if opts.Upload && s.deps.Uploader == nil {
		return nil, fmt.Errorf("upload: tracking sheet %w", domain.ErrNotConfigured)
	}
	if err := s.acquire(); err != nil {
		return nil, err
	}
	defer s.release()

	report := &domain.RunReport{RunID: s.newID()}
	run := domain.Run{
		ID:        report.RunID,
		Status:    domain.RunStatusRunning,
		StartedAt: s.now(),
	}
	s.ledgerCreate(ctx, run)

	err := s.execute(ctx, opts, report)

	run.FinishedAt = s.now()
	run.Records = report.Records
	run.Uploaded = report.Uploaded
	run.Failures = len(report.Report.Failures)
	run.OutputPath = report.OutputPath
	run.Status = domain.RunStatusCompleted
	if err != nil {
		run.Status = domain.RunStatusFailed
		run.LastError = err.Error()
	}
	s.ledgerUpdate(ctx, run)

	if err != nil {
		return report, err
	}

	logger.Info("Run %s complete: %d records, %d uploaded, %d failures",
		report.RunID, report.Records, report.Uploaded, len(report.Report.Failures))
	return report, nil
}

func (s *IntakeService) execute(ctx context.Context, opts domain.RunOptions, report *domain.RunReport) error {
	ws := s.deps.Workspace
	if err := ws.Prepare(ctx); err != nil {
		return fmt.Errorf("prepare workspace: %w", err)
	}

	if s.settings.DeleteExisting {
		removed, err := s.deps.Exporter.Remove(s.settings.OutputFile)
		if err != nil {
			return fmt.Errorf("remove previous output: %w", err)
		}
		if removed {
			logger.Info("Removed previous output %s", s.settings.OutputFile)
		}
	}

	// 1. Fetch and unpack
	logger.Section("Fetch")
	for _, source := range s.deps.Sources {
		if err := s.fetchSource(ctx, source, report); err != nil {
			return err
		}
	}

	// 2. Convert attachments to text
	logger.Section("Convert")
	if err := s.convertAttachments(ctx, &report.Report); err != nil {
		return err
	}

	// 3. Process the text working set
	logger.Section("Process")
	result, err := s.process(ctx)
	if err != nil {
		return err
	}
	report.TextDocuments = len(result.Raw)
	report.Records = len(result.Final)
	report.Report.Merge(result.Report)

	// 4. Export
	logger.Section("Export")
	rows := make([]map[string]any, len(result.Final))
	for i := range result.Final {
		rows[i] = result.Final[i].Fields()
	}
	if err := s.deps.Exporter.Export(ctx, s.settings.OutputFile, s.settings.Columns, rows); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	report.OutputPath = s.settings.OutputFile
	logger.Info("Exported %d records to %s", len(rows), s.settings.OutputFile)

	if opts.Open && s.deps.Viewer != nil {
		if err := s.deps.Viewer.Open(ctx, s.settings.OutputFile); err != nil {
			report.Report.Warn(domain.StageExport, s.settings.OutputFile, "open: %v", err)
		}
	}

	// 5. Upload
	if opts.Upload {
		logger.Section("Upload")
		if err := s.upload(ctx, result.Final, opts.Force, report); err != nil {
			return err
		}
	}

	if !opts.KeepTemp {
		if err := ws.Clear(ctx); err != nil {
			report.Report.Warn(domain.StageExport, "workspace", "clear: %v", err)
		}
	}

	for _, f := range report.Report.Failures {
		logger.Warn("%v", f)
	}
	return nil
}

// fetchSource drains one mail source. Source-level problems are recorded
// against the source and do not stop the run; cancellation does. Sources
// outlive a run and are closed by their owner.
//
//nolint:gocognit // Coordinates the document and error channels
func (s *IntakeService) fetchSource(ctx context.Context, source driven.MailSource, report *domain.RunReport) error {
	if err := source.Validate(ctx); err != nil {
		report.Report.Fail(domain.StageFetch, source.Name(), err)
		return nil
	}

	docsCh, errsCh := source.Fetch(ctx)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case err, ok := <-errsCh:
			if !ok {
				errsCh = nil
				continue
			}
			if err != nil {
				report.Report.Fail(domain.StageFetch, source.Name(), err)
			}

		case raw, ok := <-docsCh:
			if !ok {
				s.drainErrors(errsCh, source.Name(), &report.Report)
				return nil
			}
			report.Containers++
			logger.Debug("Unpacking: %s", raw.URI)
			report.Attachments += s.unpack(ctx, &raw, &report.Report)
		}
	}
}

// drainErrors collects errors still buffered after the document channel closed.
func (s *IntakeService) drainErrors(errsCh <-chan error, name string, report *domain.BatchReport) {
	if errsCh == nil {
		return
	}
	for err := range errsCh {
		if err != nil {
			report.Fail(domain.StageFetch, name, err)
		}
	}
}

// unpack stores the PDF attachments of one container. Returns the
// number of attachments saved.
func (s *IntakeService) unpack(ctx context.Context, raw *domain.RawDocument, report *domain.BatchReport) int {
	attachments, err := s.deps.Extractors.Extract(ctx, raw)
	if err != nil {
		report.Fail(domain.StageUnpack, raw.URI, err)
		return 0
	}
	if len(attachments) == 0 {
		report.Warn(domain.StageUnpack, raw.URI, "no %s attachments", s.settings.AttachmentExtension)
		return 0
	}

	saved := 0
	for _, att := range attachments {
		name, err := s.deps.Workspace.SaveAttachment(ctx, att)
		if err != nil {
			report.Fail(domain.StageUnpack, att.Name, err)
			continue
		}
		logger.Debug("Saved attachment %s from %s", name, raw.URI)
		saved++
	}
	return saved
}

// convertAttachments renders every temporary attachment to text unless a
// rendition already exists.
func (s *IntakeService) convertAttachments(ctx context.Context, report *domain.BatchReport) error {
	ws := s.deps.Workspace
	names, err := ws.ListAttachments(ctx)
	if err != nil {
		return fmt.Errorf("list attachments: %w", err)
	}

	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return err
		}
		ext := s.settings.AttachmentExtension
		if !strings.HasSuffix(strings.ToLower(name), strings.ToLower(ext)) {
			continue
		}
		textName := name[:len(name)-len(ext)] + s.settings.TextExtension
		if ws.HasText(ctx, textName) {
			logger.Debug("Text exists, skipping: %s", textName)
			continue
		}

		content, err := ws.ReadAttachment(ctx, name)
		if err != nil {
			report.Fail(domain.StageConvert, name, err)
			continue
		}
		text, err := s.deps.Converter.FirstPageText(ctx, content)
		switch {
		case errors.Is(err, domain.ErrNoText):
			report.Warn(domain.StageConvert, name, "first page has no text")
			continue
		case err != nil:
			report.Fail(domain.StageConvert, name, err)
			continue
		}
		if err := ws.SaveText(ctx, textName, text); err != nil {
			report.Fail(domain.StageConvert, textName, err)
		}
	}
	return nil
}

// Parse processes the current text working set without exporting.
func (s *IntakeService) Parse(ctx context.Context) (*domain.PipelineResult, error) {
	return s.process(ctx)
}

// process reads the text working set and runs the record pipeline.
// Unreadable documents are reported and left out.
func (s *IntakeService) process(ctx context.Context) (*domain.PipelineResult, error) {
	names, err := s.deps.Workspace.ListTexts(ctx)
	if err != nil {
		return nil, fmt.Errorf("list texts: %w", err)
	}

	var readReport domain.BatchReport
	docs := make([]domain.TextDocument, 0, len(names))
	for _, name := range names {
		doc, err := s.deps.Workspace.ReadText(ctx, name)
		if err != nil {
			readReport.Fail(domain.StageRead, name, err)
			continue
		}
		docs = append(docs, doc)
	}

	result, err := s.deps.Processor.Process(ctx, docs)
	if err != nil {
		return nil, fmt.Errorf("process records: %w", err)
	}
	readReport.Merge(result.Report)
	result.Report = readReport
	return result, nil
}

// upload sends each record to the tracking sheet, skipping group keys
// the ledger has already seen unless force is set.
func (s *IntakeService) upload(ctx context.Context, records []domain.FinalRecord, force bool, report *domain.RunReport) error {
	archive := s.deps.Workspace.ArchiveDir()

	for i := range records {
		if err := ctx.Err(); err != nil {
			return err
		}
		rec := records[i]
		key := rec.Key()
		label := rec.Label()

		if key != "" && !force && s.deps.Ledger != nil {
			uploaded, err := s.deps.Ledger.IsUploaded(ctx, key)
			if err != nil {
				report.Report.Warn(domain.StageUpload, label, "ledger lookup: %v", err)
			}
			if uploaded {
				logger.Debug("Already uploaded, skipping: %s", key)
				report.SkippedUploads++
				continue
			}
		}

		res, err := s.deps.Uploader.AddRow(ctx, rec, archive)
		if err != nil {
			report.Report.Fail(domain.StageUpload, label, err)
			if errors.Is(err, domain.ErrAuthInvalid) {
				return fmt.Errorf("upload: %w", err)
			}
			continue
		}
		report.Uploaded++
		for _, missing := range res.Missing {
			report.Report.Warn(domain.StageUpload, label, "attachment %s not found", missing)
		}
		for _, name := range slices.Sorted(maps.Keys(res.Failed)) {
			report.Report.Warn(domain.StageUpload, label, "attachment %s: %v", name, res.Failed[name])
		}

		if key != "" && s.deps.Ledger != nil {
			entry := domain.UploadEntry{
				GroupKey:    key,
				RowID:       res.RowID,
				RunID:       report.RunID,
				Attachments: len(res.Attached),
				UploadedAt:  s.now(),
			}
			if err := s.deps.Ledger.MarkUploaded(ctx, entry); err != nil {
				report.Report.Warn(domain.StageUpload, label, "ledger record: %v", err)
			}
		}
	}
	return nil
}

func (s *IntakeService) acquire() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return domain.ErrRunInProgress
	}
	s.running = true
	return nil
}

func (s *IntakeService) release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.running = false
}

func (s *IntakeService) ledgerCreate(ctx context.Context, run domain.Run) {
	if s.deps.Ledger == nil {
		return
	}
	if err := s.deps.Ledger.CreateRun(ctx, run); err != nil {
		logger.Warn("Failed to record run %s: %v", run.ID, err)
	}
}

func (s *IntakeService) ledgerUpdate(ctx context.Context, run domain.Run) {
	if s.deps.Ledger == nil {
		return
	}
	if err := s.deps.Ledger.UpdateRun(context.WithoutCancel(ctx), run); err != nil {
		logger.Warn("Failed to update run %s: %v", run.ID, err)
	}
}
