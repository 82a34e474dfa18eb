package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/labonzique/comcast-asrs-handler/internal/core/domain"
	"github.com/labonzique/comcast-asrs-handler/internal/core/ports/driving"
)

type mockIntakeService struct {
	report *domain.RunReport
	result *domain.PipelineResult
	err    error
	opts   domain.RunOptions
}

func (m *mockIntakeService) Run(_ context.Context, opts domain.RunOptions) (*domain.RunReport, error) {
	m.opts = opts
	return m.report, m.err
}

func (m *mockIntakeService) Parse(_ context.Context) (*domain.PipelineResult, error) {
	return m.result, m.err
}

func (m *mockIntakeService) Running() bool { return false }

type mockSettingsService struct {
	settings domain.Settings
	entries  []driving.SettingEntry
	setKey   string
	setValue string
	err      error
}

func (m *mockSettingsService) Get() (*domain.Settings, error) {
	s := m.settings
	return &s, nil
}

func (m *mockSettingsService) Set(key, value string) error {
	m.setKey, m.setValue = key, value
	return m.err
}

func (m *mockSettingsService) Entries() ([]driving.SettingEntry, error) {
	return m.entries, nil
}

func (m *mockSettingsService) GetDefaults() domain.Settings {
	return domain.DefaultSettings()
}

type mockHistoryService struct {
	runs    []domain.Run
	run     *domain.Run
	uploads []domain.UploadEntry
	err     error
	limit   int
}

func (m *mockHistoryService) Runs(_ context.Context, limit int) ([]domain.Run, error) {
	m.limit = limit
	return m.runs, m.err
}

func (m *mockHistoryService) Run(_ context.Context, _ string) (*domain.Run, error) {
	return m.run, m.err
}

func (m *mockHistoryService) Uploads(_ context.Context, _ string) ([]domain.UploadEntry, error) {
	return m.uploads, nil
}

type mockWatchService struct {
	reports []*domain.RunReport
	opts    domain.RunOptions
}

func (m *mockWatchService) Watch(_ context.Context, opts domain.RunOptions, onRun func(*domain.RunReport, error)) error {
	m.opts = opts
	for _, r := range m.reports {
		onRun(r, nil)
	}
	return nil
}

// withServices injects services for one test and restores the
// package state afterwards.
func withServices(t *testing.T, s *Services) {
	t.Helper()
	SetServices(s)
	t.Cleanup(func() {
		SetServices(&Services{})
		wired = false
		runFlags = runFlagSet{}
		parseJSON = false
		historyLimit = 20
		watchUpload = false
		authNoBrowser = false
	})
}

// execute runs the root command with args and returns its output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()
	return buf.String(), err
}
