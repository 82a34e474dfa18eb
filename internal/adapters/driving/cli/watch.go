package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/labonzique/comcast-asrs-handler/internal/core/domain"
)

var watchUpload bool

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Run automatically when mail arrives",
	Long: `Watches the mail directory and starts a run shortly after new .msg or
.eml files stop arriving. Stops on Ctrl+C.`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().BoolVar(&watchUpload, "upload", false, "upload rows after each run")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, _ []string) error {
	if watchService == nil {
		return errors.New("watch service not configured")
	}

	cmd.Println("Watching for new mail. Press Ctrl+C to stop.")

	opts := domain.RunOptions{Upload: watchUpload}
	err := watchService.Watch(cmd.Context(), opts, func(report *domain.RunReport, err error) {
		stamp := mutedStyle.Render(time.Now().Format(time.TimeOnly))
		if err != nil {
			cmd.PrintErrf("%s run failed: %v\n", stamp, err)
			return
		}
		cmd.Printf("%s run %s: %d records, %d uploaded, %d failures\n",
			stamp, report.RunID, report.Records, report.Uploaded, len(report.Report.Failures))
	})
	if err != nil {
		return fmt.Errorf("watch failed: %w", err)
	}
	return nil
}
