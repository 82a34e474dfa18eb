// Package filesystem provides the directory-backed run workspace.
//
// Layout (defaults):
//
//	./tmp_pdf   attachments unpacked in this run (cleared afterwards)
//	./tmp_txt   first-page text of each attachment (cleared afterwards)
//	./asr_pdfs  permanent copy of every attachment, used for uploads
package filesystem

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/labonzique/comcast-asrs-handler/internal/core/domain"
	"github.com/labonzique/comcast-asrs-handler/internal/core/ports/driven"
	"github.com/labonzique/comcast-asrs-handler/internal/logger"
)

// Ensure Workspace implements the interface.
var _ driven.Workspace = (*Workspace)(nil)

// Dirs names the workspace directories.
type Dirs struct {
	Attachments string
	Texts       string
	Archive     string
}

// DirsFromSettings extracts the workspace directories from settings.
func DirsFromSettings(s domain.Settings) Dirs {
	return Dirs{
		Attachments: s.AttachmentDir,
		Texts:       s.TextDir,
		Archive:     s.ArchiveDir,
	}
}

// Workspace stores attachments and texts as plain files.
type Workspace struct {
	dirs          Dirs
	textExtension string
}

// New creates a workspace. The archive is optional.
func New(dirs Dirs, textExtension string) *Workspace {
	if textExtension == "" {
		textExtension = ".txt"
	}
	return &Workspace{dirs: dirs, textExtension: textExtension}
}

// Prepare creates the working directories.
func (w *Workspace) Prepare(_ context.Context) error {
	for _, dir := range []string{w.dirs.Attachments, w.dirs.Texts, w.dirs.Archive} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	return nil
}

// SaveAttachment writes the attachment to the temporary directory and to
// the archive. Directory components of the name are dropped and an
// existing file of the same name is overwritten.
func (w *Workspace) SaveAttachment(_ context.Context, att domain.Attachment) (string, error) {
	name, err := safeName(filepath.Base(strings.ReplaceAll(att.Name, "\\", "/")))
	if err != nil {
		return "", err
	}

	if err := os.WriteFile(filepath.Join(w.dirs.Attachments, name), att.Content, 0644); err != nil {
		return "", fmt.Errorf("save attachment: %w", err)
	}
	logger.Info("Attachment saved: %s", name)

	if w.dirs.Archive != "" {
		if err := os.WriteFile(filepath.Join(w.dirs.Archive, name), att.Content, 0644); err != nil {
			return "", fmt.Errorf("archive attachment: %w", err)
		}
		logger.Debug("Attachment archived: %s", filepath.Join(w.dirs.Archive, name))
	}
	return name, nil
}

// ListAttachments returns the files in the temporary attachment directory.
func (w *Workspace) ListAttachments(_ context.Context) ([]string, error) {
	return listFiles(w.dirs.Attachments, func(string) bool { return true })
}

// ReadAttachment returns the content of a temporary attachment.
func (w *Workspace) ReadAttachment(_ context.Context, name string) ([]byte, error) {
	name, err := safeName(name)
	if err != nil {
		return nil, err
	}
	return os.ReadFile(filepath.Join(w.dirs.Attachments, name))
}

// HasText reports whether a text rendition exists.
func (w *Workspace) HasText(_ context.Context, name string) bool {
	name, err := safeName(name)
	if err != nil {
		return false
	}
	info, err := os.Stat(filepath.Join(w.dirs.Texts, name))
	return err == nil && info.Mode().IsRegular()
}

// SaveText writes a text rendition as UTF-8.
func (w *Workspace) SaveText(_ context.Context, name, text string) error {
	name, err := safeName(name)
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(w.dirs.Texts, name), []byte(text), 0644); err != nil {
		return fmt.Errorf("save text: %w", err)
	}
	logger.Debug("Text saved: %s", name)
	return nil
}

// ListTexts returns the text documents in the text directory.
func (w *Workspace) ListTexts(_ context.Context) ([]string, error) {
	return listFiles(w.dirs.Texts, func(name string) bool {
		return strings.HasSuffix(name, w.textExtension)
	})
}

// ReadText reads one text document.
func (w *Workspace) ReadText(_ context.Context, name string) (domain.TextDocument, error) {
	safe, err := safeName(name)
	if err != nil {
		return domain.TextDocument{}, err
	}
	data, err := os.ReadFile(filepath.Join(w.dirs.Texts, safe))
	if err != nil {
		return domain.TextDocument{}, err
	}
	return domain.TextDocument{Name: safe, Text: string(data)}, nil
}

// ArchiveDir returns the archive directory.
func (w *Workspace) ArchiveDir() string {
	return w.dirs.Archive
}

// Clear deletes the files in the temporary directories. Subdirectories
// and the archive are left alone.
func (w *Workspace) Clear(_ context.Context) error {
	var errs []error
	for _, dir := range []string{w.dirs.Attachments, w.dirs.Texts} {
		if dir == "" {
			continue
		}
		entries, err := os.ReadDir(dir)
		if err != nil {
			if !os.IsNotExist(err) {
				errs = append(errs, err)
			}
			continue
		}
		for _, entry := range entries {
			if !entry.Type().IsRegular() {
				continue
			}
			if err := os.Remove(filepath.Join(dir, entry.Name())); err != nil {
				errs = append(errs, err)
			}
		}
		logger.Info("All files cleared from directory: %s", dir)
	}
	return errors.Join(errs...)
}

// listFiles returns regular file names in dir accepted by keep. A missing
// directory is empty.
func listFiles(dir string, keep func(string) bool) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var names []string
	for _, entry := range entries {
		if !entry.Type().IsRegular() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		if keep(entry.Name()) {
			names = append(names, entry.Name())
		} else {
			logger.Debug("Skipped file: %s", entry.Name())
		}
	}
	return names, nil
}

// safeName rejects names that would escape the workspace directories.
func safeName(name string) (string, error) {
	base := filepath.Base(name)
	if name == "" || base != name || base == "." || base == ".." {
		return "", fmt.Errorf("%w: file name %q", domain.ErrInvalidInput, name)
	}
	return base, nil
}
