// Package pdf renders the first page of a PDF attachment to text with
// poppler's pdftotext.
package pdf

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/labonzique/comcast-asrs-handler/internal/core/domain"
	"github.com/labonzique/comcast-asrs-handler/internal/core/ports/driven"
)

// Ensure Converter implements the interface.
var _ driven.TextConverter = (*Converter)(nil)

const toolName = "pdftotext"

// ErrPDFToolNotFound indicates pdftotext is not installed.
var ErrPDFToolNotFound = errors.New("pdftotext not found in PATH")

// CommandRunner runs an external command and returns its stdout.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// execRunner runs commands with os/exec.
type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	if _, err := exec.LookPath(name); err != nil {
		return nil, ErrPDFToolNotFound
	}
	cmd := exec.CommandContext(ctx, name, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("%s: %w: %s", name, err, msg)
		}
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return out, nil
}

// Converter extracts first-page text from PDFs.
type Converter struct {
	runner CommandRunner
	tmpDir string
}

// New creates a converter that shells out to pdftotext.
func New() *Converter {
	return NewWithRunner(execRunner{})
}

// NewWithRunner creates a converter with a custom command runner.
func NewWithRunner(runner CommandRunner) *Converter {
	return &Converter{runner: runner}
}

// FirstPageText writes the PDF to a temporary file and extracts the text
// of page one. Whitespace-only output yields domain.ErrNoText.
func (c *Converter) FirstPageText(ctx context.Context, pdf []byte) (string, error) {
	if len(pdf) == 0 {
		return "", domain.ErrInvalidInput
	}

	tmp, err := os.CreateTemp(c.tmpDir, "asrs-*.pdf")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(pdf); err != nil {
		tmp.Close()
		return "", fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close temp file: %w", err)
	}

	out, err := c.runner.Run(ctx, toolName, "-f", "1", "-l", "1", "-enc", "UTF-8", tmp.Name(), "-")
	if err != nil {
		return "", err
	}

	// pdftotext ends each page with a form feed.
	text := strings.TrimRight(string(out), "\f")
	if strings.TrimSpace(text) == "" {
		return "", domain.ErrNoText
	}
	return text, nil
}

// CheckAvailable returns ErrPDFToolNotFound if pdftotext is not installed.
func CheckAvailable() error {
	if _, err := exec.LookPath(toolName); err != nil {
		return ErrPDFToolNotFound
	}
	return nil
}

// InstallInstructions returns platform hints for installing pdftotext.
func InstallInstructions() string {
	return `pdftotext is required to read PDF attachments. Install poppler:
  macOS:          brew install poppler
  Debian/Ubuntu:  sudo apt install poppler-utils
  Fedora:         sudo dnf install poppler-utils
  Windows:        choco install poppler`
}
