package cli

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history [run-id]",
	Short: "Show previous runs",
	Long: `Lists recent runs from the ledger, newest first. With a run ID, shows
that run and the rows it uploaded.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "maximum number of runs")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	if historyService == nil {
		return errors.New("history service not configured")
	}

	if len(args) == 1 {
		return showRun(cmd, args[0])
	}

	runs, err := historyService.Runs(cmd.Context(), historyLimit)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}
	if len(runs) == 0 {
		cmd.Println("No runs recorded.")
		return nil
	}

	rows := make([][]string, len(runs))
	for i := range runs {
		r := &runs[i]
		rows[i] = []string{
			r.ID,
			r.StartedAt.Local().Format(time.DateTime),
			string(r.Status),
			strconv.Itoa(r.Records),
			strconv.Itoa(r.Uploaded),
			strconv.Itoa(r.Failures),
			r.Duration().Round(time.Second).String(),
		}
	}
	renderTable(cmd.OutOrStdout(),
		[]string{"RUN", "STARTED", "STATUS", "RECORDS", "UPLOADED", "FAILURES", "DURATION"}, rows)
	return nil
}

func showRun(cmd *cobra.Command, id string) error {
	run, err := historyService.Run(cmd.Context(), id)
	if err != nil {
		return fmt.Errorf("failed to get run: %w", err)
	}

	cmd.Printf("Run %s\n", run.ID)
	cmd.Printf("  Status:   %s\n", run.Status)
	cmd.Printf("  Started:  %s\n", run.StartedAt.Local().Format(time.DateTime))
	if !run.FinishedAt.IsZero() {
		cmd.Printf("  Duration: %s\n", run.Duration().Round(time.Second))
	}
	cmd.Printf("  Records:  %d\n", run.Records)
	cmd.Printf("  Uploaded: %d\n", run.Uploaded)
	cmd.Printf("  Failures: %d\n", run.Failures)
	if run.OutputPath != "" {
		cmd.Printf("  Output:   %s\n", run.OutputPath)
	}
	if run.LastError != "" {
		cmd.Printf("  Error:    %s\n", run.LastError)
	}

	uploads, err := historyService.Uploads(cmd.Context(), id)
	if err != nil {
		return fmt.Errorf("failed to list uploads: %w", err)
	}
	if len(uploads) == 0 {
		return nil
	}

	cmd.Println()
	rows := make([][]string, len(uploads))
	for i, u := range uploads {
		rows[i] = []string{u.GroupKey, strconv.FormatInt(u.RowID, 10), strconv.Itoa(u.Attachments)}
	}
	renderTable(cmd.OutOrStdout(), []string{"ORDER", "ROW", "ATTACHMENTS"}, rows)
	return nil
}
