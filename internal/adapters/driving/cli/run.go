package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/labonzique/comcast-asrs-handler/internal/core/domain"
)

type runFlagSet struct {
	upload   bool
	noOpen   bool
	keepTemp bool
	force    bool
	json     bool
}

var runFlags runFlagSet

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Process new mail and export the spreadsheet",
	Long: `Runs a full intake: reads every .msg and .eml container from the mail
directory (and Gmail when enabled), saves the PDF attachments, converts the
first page of each PDF to text, groups the forms by order code and writes
the spreadsheet.

With --upload each grouped record is also added as a row to the tracking
sheet together with its PDFs. Orders already uploaded by an earlier run are
skipped unless --force is given.`,
	Args: cobra.NoArgs,
	RunE: runRun,
}

func init() {
	f := runCmd.Flags()
	f.BoolVar(&runFlags.upload, "upload", false, "upload rows and attachments to the tracking sheet")
	f.BoolVar(&runFlags.noOpen, "no-open", false, "do not open the spreadsheet after export")
	f.BoolVar(&runFlags.keepTemp, "keep-temp", false, "keep the temporary PDF and text directories")
	f.BoolVar(&runFlags.force, "force", false, "re-upload orders already recorded as uploaded")
	f.BoolVar(&runFlags.json, "json", false, "print the run report as JSON")
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, _ []string) error {
	if intakeService == nil || settingsService == nil {
		return errors.New("intake service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	opts := domain.RunOptions{
		Upload:   runFlags.upload,
		Open:     settings.OpenOutput && !runFlags.noOpen,
		KeepTemp: runFlags.keepTemp,
		Force:    runFlags.force,
	}

	report, err := intakeService.Run(cmd.Context(), opts)
	if report != nil {
		if runFlags.json {
			if jerr := writeJSON(cmd.OutOrStdout(), report); jerr != nil {
				return jerr
			}
		} else {
			printRunReport(cmd, report)
		}
	}
	if err != nil {
		return fmt.Errorf("run failed: %w", err)
	}
	return nil
}

func printRunReport(cmd *cobra.Command, report *domain.RunReport) {
	out := cmd.OutOrStdout()
	printReport(out, report.Report)

	cmd.Println()
	cmd.Printf("Run %s\n", report.RunID)
	cmd.Printf("  Containers:   %d\n", report.Containers)
	cmd.Printf("  Attachments:  %d\n", report.Attachments)
	cmd.Printf("  Texts:        %d\n", report.TextDocuments)
	cmd.Printf("  Records:      %d\n", report.Records)
	if report.Uploaded > 0 || report.SkippedUploads > 0 {
		cmd.Printf("  Uploaded:     %d (%d already uploaded)\n", report.Uploaded, report.SkippedUploads)
	}
	if report.OutputPath != "" {
		cmd.Printf("  Output:       %s\n", report.OutputPath)
	}
	if n := len(report.Report.Failures); n > 0 {
		cmd.Printf("  Failures:     %d\n", n)
	}
}
