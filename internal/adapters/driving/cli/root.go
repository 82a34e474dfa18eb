// Package cli is the asrs command line interface.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/labonzique/comcast-asrs-handler/internal/core/ports/driving"
	"github.com/labonzique/comcast-asrs-handler/internal/logger"
)

// version is set at build time with -ldflags "-X ...cli.version=...".
var version = "dev"

// GlobalOptions are the persistent flags shared by every command.
type GlobalOptions struct {
	// ConfigPath overrides the default config file location.
	ConfigPath string

	// Verbose enables debug logging.
	Verbose bool
}

// Services are the driving ports the commands call.
type Services struct {
	Intake   driving.IntakeService
	Settings driving.SettingsService
	History  driving.HistoryService
	Records  driving.RecordProcessor
	Watch    driving.WatchService
}

// Bootstrap builds the services once flags are parsed. The returned
// cleanup runs after the command finishes.
type Bootstrap func(opts GlobalOptions) (*Services, func(), error)

var (
	globalOpts GlobalOptions
	bootstrap  Bootstrap
	cleanup    func()
	wired      bool

	intakeService   driving.IntakeService
	settingsService driving.SettingsService
	historyService  driving.HistoryService
	recordProcessor driving.RecordProcessor
	watchService    driving.WatchService
)

var rootCmd = &cobra.Command{
	Use:   "asrs",
	Short: "Process ASR forms received by mail",
	Long: `asrs collects PDF order forms attached to mail, extracts the order
codes and remarks from each form, groups forms by order and exports the
result to a spreadsheet. Rows can optionally be uploaded to a tracking sheet.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(_ *cobra.Command, _ []string) {
		if cleanup != nil {
			cleanup()
			cleanup = nil
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&globalOpts.ConfigPath, "config", "", "config file (default ~/.asrs/config.toml)")
	rootCmd.PersistentFlags().BoolVarP(&globalOpts.Verbose, "verbose", "v", false, "enable debug output")
}

// SetBootstrap registers the function that wires services from flags.
func SetBootstrap(b Bootstrap) {
	bootstrap = b
}

// SetServices injects services directly, bypassing the bootstrap.
func SetServices(s *Services) {
	intakeService = s.Intake
	settingsService = s.Settings
	historyService = s.History
	recordProcessor = s.Records
	watchService = s.Watch
	wired = true
}

// Execute runs the root command until ctx is cancelled.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// setup applies global flags and wires services unless they were
// injected already.
func setup(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(globalOpts.Verbose)

	if cmd.Name() == "version" || bootstrap == nil || wired {
		return nil
	}

	svcs, done, err := bootstrap(globalOpts)
	if err != nil {
		return fmt.Errorf("startup: %w", err)
	}
	SetServices(svcs)
	cleanup = done
	return nil
}
