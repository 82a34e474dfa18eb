package driving

import "github.com/labonzique/comcast-asrs-handler/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get resolves the current settings from defaults, file and environment.
	Get() (*domain.Settings, error)

	// Set validates and persists a single setting.
	Set(key, value string) error

	// Entries returns every settable key with its resolved value, in
	// display order.
	Entries() ([]SettingEntry, error)

	// GetDefaults returns default settings.
	GetDefaults() domain.Settings
}

// SettingEntry is one resolved setting.
type SettingEntry struct {
	Key   string
	Value string

	// Secret marks credentials that should be masked on display.
	Secret bool
}
