// Command asrs processes ASR order forms received by mail.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/labonzique/comcast-asrs-handler/internal/adapters/driven/config/file"
	"github.com/labonzique/comcast-asrs-handler/internal/adapters/driven/export/viewer"
	"github.com/labonzique/comcast-asrs-handler/internal/adapters/driven/export/xlsx"
	"github.com/labonzique/comcast-asrs-handler/internal/adapters/driven/storage/sqlite"
	"github.com/labonzique/comcast-asrs-handler/internal/adapters/driven/tracker/smartsheet"
	wsfs "github.com/labonzique/comcast-asrs-handler/internal/adapters/driven/workspace/filesystem"
	"github.com/labonzique/comcast-asrs-handler/internal/adapters/driving/cli"
	"github.com/labonzique/comcast-asrs-handler/internal/connectors/filesystem"
	"github.com/labonzique/comcast-asrs-handler/internal/connectors/google/gmail"
	"github.com/labonzique/comcast-asrs-handler/internal/core/ports/driven"
	"github.com/labonzique/comcast-asrs-handler/internal/core/services"
	"github.com/labonzique/comcast-asrs-handler/internal/logger"
	"github.com/labonzique/comcast-asrs-handler/internal/normalisers"
	"github.com/labonzique/comcast-asrs-handler/internal/normalisers/eml"
	"github.com/labonzique/comcast-asrs-handler/internal/normalisers/msg"
	"github.com/labonzique/comcast-asrs-handler/internal/normalisers/pdf"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cli.SetBootstrap(func(opts cli.GlobalOptions) (*cli.Services, func(), error) {
		return wire(ctx, opts)
	})

	if err := cli.Execute(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

// wire builds every adapter from the resolved settings.
func wire(ctx context.Context, opts cli.GlobalOptions) (*cli.Services, func(), error) {
	configStore, err := file.NewConfigStore(opts.ConfigPath, file.DefaultEnvPrefix)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	settingsService := services.NewSettingsService(configStore)
	settings, err := settingsService.Get()
	if err != nil {
		return nil, nil, err
	}

	closeLog, err := logger.OpenFile(filepath.Join(settings.LogDir, "app.log"))
	if err != nil {
		return nil, nil, err
	}

	store, err := sqlite.NewStore(settings.DataDir)
	if err != nil {
		_ = closeLog()
		return nil, nil, fmt.Errorf("open ledger: %w", err)
	}

	if err := pdf.CheckAvailable(); errors.Is(err, pdf.ErrPDFToolNotFound) {
		logger.Warn("pdftotext not found; %s", pdf.InstallInstructions())
	}

	mailDir := filesystem.New("mail", settings.MailDir)
	sources := []driven.MailSource{mailDir}
	if settings.Gmail.IsConfigured() {
		gm, err := gmail.NewFromSettings(ctx, "gmail", settings.Gmail)
		if err != nil {
			logger.Warn("Gmail source disabled: %v", err)
		} else {
			sources = append(sources, gm)
		}
	}

	var uploader driven.RowUploader
	if settings.Tracker.IsConfigured() {
		client, err := smartsheet.NewClient(smartsheet.ConfigFromSettings(settings.Tracker))
		if err != nil {
			logger.Warn("Tracker uploads disabled: %v", err)
		} else {
			uploader = client
		}
	}

	ledger := store.LedgerStore()
	pipeline := services.NewRecordPipeline(*settings)
	intake := services.NewIntakeService(*settings, services.IntakeDependencies{
		Sources: sources,
		Extractors: normalisers.NewRegistry(
			eml.New(settings.AttachmentExtension),
			msg.New(settings.AttachmentExtension),
		),
		Converter: pdf.New(),
		Workspace: wsfs.New(wsfs.DirsFromSettings(*settings), settings.TextExtension),
		Exporter:  xlsx.New(),
		Viewer:    viewer.New(),
		Uploader:  uploader,
		Ledger:    ledger,
		Processor: pipeline,
	})

	cleanup := func() {
		for _, source := range sources {
			if err := source.Close(); err != nil {
				logger.Debug("close source %s: %v", source.Name(), err)
			}
		}
		if err := store.Close(); err != nil {
			logger.Warn("close ledger: %v", err)
		}
		_ = closeLog()
	}

	return &cli.Services{
		Intake:   intake,
		Settings: settingsService,
		History:  services.NewHistoryService(ledger),
		Records:  pipeline,
		Watch:    services.NewWatchService(intake, 0, mailDir),
	}, cleanup, nil
}
