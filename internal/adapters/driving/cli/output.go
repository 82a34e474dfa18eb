package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"golang.org/x/term"

	"github.com/labonzique/comcast-asrs-handler/internal/core/domain"
)

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED")).Padding(0, 1)
	cellStyle    = lipgloss.NewStyle().Padding(0, 1)
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#6C7086"))
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F9E2AF"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#F38BA8"))
	borderStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#45475A"))
)

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// renderTable draws rows with a styled border on terminals and as
// tab-separated text otherwise, so output stays pipeable.
func renderTable(w io.Writer, headers []string, rows [][]string) {
	if !isTerminal(w) {
		fmt.Fprintln(w, strings.Join(headers, "\t"))
		for _, row := range rows {
			fmt.Fprintln(w, strings.Join(row, "\t"))
		}
		return
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	fmt.Fprintln(w, t.Render())
}

// recordRows formats final records for the given column order.
func recordRows(records []domain.FinalRecord, columns []string) [][]string {
	rows := make([][]string, len(records))
	for i := range records {
		fields := records[i].Fields()
		row := make([]string, len(columns))
		for j, col := range columns {
			row[j] = fieldText(fields[col])
		}
		rows[i] = row
	}
	return rows
}

func fieldText(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case []string:
		return strings.Join(val, ", ")
	default:
		return fmt.Sprint(val)
	}
}

// printReport lists failures and warnings from a batch.
func printReport(w io.Writer, report domain.BatchReport) {
	color := isTerminal(w)
	paint := func(s lipgloss.Style, text string) string {
		if color {
			return s.Render(text)
		}
		return text
	}

	for _, warn := range report.Warnings {
		fmt.Fprintln(w, paint(warningStyle, fmt.Sprintf("warning: %s %s: %s", warn.Stage, warn.Document, warn.Message)))
	}
	for _, f := range report.Failures {
		fmt.Fprintln(w, paint(errorStyle, "failed: "+f.Error()))
	}
}

func writeJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
