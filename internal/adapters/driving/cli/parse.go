package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var parseJSON bool

var parseCmd = &cobra.Command{
	Use:   "parse",
	Short: "Preview the records in the text directory",
	Long: `Runs extraction and grouping over the text files already in the text
directory and prints the resulting records. Nothing is exported or uploaded.`,
	Args: cobra.NoArgs,
	RunE: runParse,
}

func init() {
	parseCmd.Flags().BoolVar(&parseJSON, "json", false, "output the full pipeline result as JSON")
	rootCmd.AddCommand(parseCmd)
}

func runParse(cmd *cobra.Command, _ []string) error {
	if intakeService == nil || settingsService == nil {
		return errors.New("intake service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	result, err := intakeService.Parse(cmd.Context())
	if err != nil {
		return fmt.Errorf("parse failed: %w", err)
	}

	if parseJSON {
		return writeJSON(cmd.OutOrStdout(), result)
	}

	if len(result.Final) == 0 {
		cmd.Println("No records found.")
	} else {
		renderTable(cmd.OutOrStdout(), settings.Columns, recordRows(result.Final, settings.Columns))
	}
	printReport(cmd.OutOrStdout(), result.Report)
	return nil
}
