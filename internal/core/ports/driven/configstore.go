package driven

// ConfigStore provides access to application configuration.
// Keys use dot notation ("tracker.sheet_id"). Implementations handle
// persistence and may overlay values from the environment; typed
// getters convert string values where the conversion is unambiguous.
type ConfigStore interface {
	// Get retrieves a configuration value by key.
	// Returns the value and a boolean indicating if the key exists.
	Get(key string) (any, bool)

	// GetString retrieves a string value. Empty if missing.
	GetString(key string) string

	// GetInt retrieves an integer value. Zero if missing or not an integer.
	GetInt(key string) int

	// GetFloat retrieves a floating point value. Zero if missing.
	GetFloat(key string) float64

	// GetBool retrieves a boolean value.
	// The second result is false when the key is missing or not a boolean.
	GetBool(key string) (bool, bool)

	// GetStringSlice retrieves a string list. Nil if missing.
	// A comma-separated string is split into its elements.
	GetStringSlice(key string) []string

	// Set stores a value and persists it immediately.
	Set(key string, value any) error

	// Save persists the current configuration.
	Save() error

	// Load reads configuration from storage.
	Load() error

	// Path returns the configuration file path.
	Path() string
}
