// Package viewer opens exported files in the desktop's default application.
package viewer

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"runtime"

	"github.com/labonzique/comcast-asrs-handler/internal/core/ports/driven"
	"github.com/labonzique/comcast-asrs-handler/internal/logger"
)

// Ensure Viewer implements the interface.
var _ driven.Viewer = (*Viewer)(nil)

// Starter launches a command without waiting for it to exit.
type Starter func(ctx context.Context, name string, args ...string) error

// Viewer hands files to the OS opener.
type Viewer struct {
	goos  string
	start Starter
}

// New creates a viewer for the running OS.
func New() *Viewer {
	return &Viewer{goos: runtime.GOOS, start: startDetached}
}

// Open launches the default application for path. The file must exist.
func (v *Viewer) Open(ctx context.Context, path string) error {
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	name, args := Command(v.goos, path)
	if err := v.start(ctx, name, args...); err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	logger.Info("Excel file '%s' opened successfully.", path)
	return nil
}

// Command returns the opener invocation for an OS.
func Command(goos, path string) (string, []string) {
	switch goos {
	case "windows":
		return "rundll32", []string{"url.dll,FileProtocolHandler", path}
	case "darwin":
		return "open", []string{path}
	default:
		return "xdg-open", []string{path}
	}
}

func startDetached(_ context.Context, name string, args ...string) error {
	cmd := exec.Command(name, args...)
	if err := cmd.Start(); err != nil {
		return err
	}
	// Reap the opener in the background.
	go func() { _ = cmd.Wait() }()
	return nil
}
