package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and change settings stored in the config file.

Environment variables prefixed with ASRS_ override the file, e.g.
ASRS_TRACKER_API_TOKEN overrides tracker.api_token.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set <key> [value]",
	Short: "Change a setting",
	Long: `Validates and stores one setting. When the value is omitted it is read
from the terminal without echo, which suits tokens and secrets.

Examples:
  asrs settings set paths.mail_dir ./mail_asrs
  asrs settings set output.columns of_short,fa,date,uni,pon1,pon2,remarks,all_files
  asrs settings set tracker.sheet_id 4567890123
  asrs settings set columns.remarks 1122334455
  asrs settings set tracker.api_token`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runSettingsSet,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	entries, err := settingsService.Entries()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")

	section := ""
	for _, e := range entries {
		if s, _, _ := strings.Cut(e.Key, "."); s != section {
			section = s
			cmd.Printf("\n[%s]\n", section)
		}
		value := e.Value
		switch {
		case value == "":
			value = "(not set)"
		case e.Secret:
			value = maskAPIKey(value)
		}
		cmd.Printf("  %s = %s\n", e.Key, value)
	}
	cmd.Println()

	settings, err := settingsService.Get()
	if err != nil {
		return err
	}
	if settings.Tracker.IsConfigured() {
		cmd.Println("Tracking sheet: configured")
	} else {
		cmd.Println("Tracking sheet: not configured (uploads disabled)")
	}
	if settings.Gmail.IsConfigured() {
		cmd.Println("Gmail: enabled")
	}
	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	key := args[0]
	var value string
	if len(args) == 2 {
		value = args[1]
	} else {
		cmd.Printf("%s: ", key)
		value = readPassword()
		cmd.Println()
	}

	if err := settingsService.Set(key, value); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}
	cmd.Printf("Set %s\n", key)
	return nil
}

//nolint:errcheck // CLI helper, error ignored for UX
func readPassword() string {
	if term.IsTerminal(int(os.Stdin.Fd())) {
		password, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err == nil {
			return string(password)
		}
	}
	reader := bufio.NewReader(os.Stdin)
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
