package services

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/labonzique/comcast-asrs-handler/internal/core/domain"
	"github.com/labonzique/comcast-asrs-handler/internal/core/ports/driven"
	"github.com/labonzique/comcast-asrs-handler/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyMailDir        = "paths.mail_dir"
	keyAttachmentDir  = "paths.attachment_dir"
	keyTextDir        = "paths.text_dir"
	keyArchiveDir     = "paths.archive_dir"
	keyDataDir        = "paths.data_dir"
	keyLogDir         = "paths.log_dir"
	keyTextExt        = "extensions.text"
	keyAttachmentExt  = "extensions.attachment"
	keyOutputFile     = "output.file"
	keyDeleteExisting = "output.delete_existing"
	keyOpenOutput     = "output.open"
	keyColumns        = "output.columns"
	keySlotConflict   = "classify.slot_conflict"
	keyTrackerURL     = "tracker.base_url"
	keyTrackerToken   = "tracker.api_token"
	keyTrackerSheet   = "tracker.sheet_id"
	keyTrackerRate    = "tracker.requests_per_second"
	keyGmailEnabled   = "gmail.enabled"
	keyGmailQuery     = "gmail.query"
	keyGmailClientID  = "gmail.client_id"
	keyGmailSecret    = "gmail.client_secret"
	keyGmailRefresh   = "gmail.refresh_token"
	keyGmailMax       = "gmail.max_results"

	// columnKeyPrefix precedes a field name to give its tracking sheet column ID.
	columnKeyPrefix = "columns."
)

type settingKind int

const (
	kindString settingKind = iota
	kindBool
	kindInt
	kindFloat
	kindList
	kindExtension
	kindPolicy
)

type settingDef struct {
	key    string
	kind   settingKind
	secret bool
}

// settingDefs lists every settable key in display order.
var settingDefs = func() []settingDef {
	defs := []settingDef{
		{key: keyMailDir},
		{key: keyAttachmentDir},
		{key: keyTextDir},
		{key: keyArchiveDir},
		{key: keyDataDir},
		{key: keyLogDir},
		{key: keyTextExt, kind: kindExtension},
		{key: keyAttachmentExt, kind: kindExtension},
		{key: keyOutputFile},
		{key: keyDeleteExisting, kind: kindBool},
		{key: keyOpenOutput, kind: kindBool},
		{key: keyColumns, kind: kindList},
		{key: keySlotConflict, kind: kindPolicy},
		{key: keyTrackerURL},
		{key: keyTrackerToken, secret: true},
		{key: keyTrackerSheet, kind: kindInt},
		{key: keyTrackerRate, kind: kindFloat},
	}
	for _, field := range trackedFields {
		defs = append(defs, settingDef{key: columnKeyPrefix + field, kind: kindInt})
	}
	return append(defs,
		settingDef{key: keyGmailEnabled, kind: kindBool},
		settingDef{key: keyGmailQuery},
		settingDef{key: keyGmailClientID},
		settingDef{key: keyGmailSecret, secret: true},
		settingDef{key: keyGmailRefresh, secret: true},
		settingDef{key: keyGmailMax, kind: kindInt},
	)
}()

// trackedFields are the fields that can be mapped to sheet columns.
var trackedFields = []string{
	domain.FieldSecondaryCode,
	domain.FieldRemarks,
	domain.FieldDate,
	domain.FieldPon1,
	domain.FieldPon2,
	domain.FieldUni,
	domain.FieldGroupKey,
	domain.FieldAllOutputFiles,
}

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{configStore: configStore}
}

// Get resolves settings: defaults, overridden by stored values.
func (s *SettingsService) Get() (*domain.Settings, error) {
	st := domain.DefaultSettings()

	st.MailDir = s.getString(keyMailDir, st.MailDir)
	st.AttachmentDir = s.getString(keyAttachmentDir, st.AttachmentDir)
	st.TextDir = s.getString(keyTextDir, st.TextDir)
	st.ArchiveDir = s.getString(keyArchiveDir, st.ArchiveDir)
	st.DataDir = s.getString(keyDataDir, st.DataDir)
	st.LogDir = s.getString(keyLogDir, st.LogDir)
	st.TextExtension = s.getString(keyTextExt, st.TextExtension)
	st.AttachmentExtension = s.getString(keyAttachmentExt, st.AttachmentExtension)
	st.OutputFile = s.getString(keyOutputFile, st.OutputFile)
	st.DeleteExisting = s.getBool(keyDeleteExisting, st.DeleteExisting)
	st.OpenOutput = s.getBool(keyOpenOutput, st.OpenOutput)
	if cols := s.configStore.GetStringSlice(keyColumns); len(cols) > 0 {
		st.Columns = cols
	}
	if policy := s.configStore.GetString(keySlotConflict); policy != "" {
		st.SlotConflict = domain.SlotConflictPolicy(policy)
	}

	st.Tracker.BaseURL = s.getString(keyTrackerURL, st.Tracker.BaseURL)
	st.Tracker.APIToken = s.configStore.GetString(keyTrackerToken)
	st.Tracker.SheetID = int64(s.configStore.GetInt(keyTrackerSheet))
	st.Tracker.RequestsPerSecond = s.getFloat(keyTrackerRate, st.Tracker.RequestsPerSecond)
	for _, field := range trackedFields {
		if id := s.configStore.GetInt(columnKeyPrefix + field); id != 0 {
			st.Tracker.ColumnIDs[field] = int64(id)
		}
	}

	st.Gmail.Enabled = s.getBool(keyGmailEnabled, st.Gmail.Enabled)
	st.Gmail.Query = s.getString(keyGmailQuery, st.Gmail.Query)
	st.Gmail.ClientID = s.configStore.GetString(keyGmailClientID)
	st.Gmail.ClientSecret = s.configStore.GetString(keyGmailSecret)
	st.Gmail.RefreshToken = s.configStore.GetString(keyGmailRefresh)
	if n := s.configStore.GetInt(keyGmailMax); n > 0 {
		st.Gmail.MaxResults = int64(n)
	}

	if err := st.Validate(); err != nil {
		return nil, err
	}
	return &st, nil
}

// Set parses value for key and persists it.
func (s *SettingsService) Set(key, value string) error {
	def, ok := lookupSetting(key)
	if !ok {
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}

	parsed, err := parseSetting(def, value)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", domain.ErrInvalidInput, key, err)
	}

	if err := s.configStore.Set(key, parsed); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// Entries returns every setting with its resolved value.
func (s *SettingsService) Entries() ([]driving.SettingEntry, error) {
	st, err := s.Get()
	if err != nil {
		return nil, err
	}

	values := map[string]string{
		keyMailDir:        st.MailDir,
		keyAttachmentDir:  st.AttachmentDir,
		keyTextDir:        st.TextDir,
		keyArchiveDir:     st.ArchiveDir,
		keyDataDir:        st.DataDir,
		keyLogDir:         st.LogDir,
		keyTextExt:        st.TextExtension,
		keyAttachmentExt:  st.AttachmentExtension,
		keyOutputFile:     st.OutputFile,
		keyDeleteExisting: strconv.FormatBool(st.DeleteExisting),
		keyOpenOutput:     strconv.FormatBool(st.OpenOutput),
		keyColumns:        strings.Join(st.Columns, ","),
		keySlotConflict:   st.SlotConflict.String(),
		keyTrackerURL:     st.Tracker.BaseURL,
		keyTrackerToken:   st.Tracker.APIToken,
		keyTrackerSheet:   formatID(st.Tracker.SheetID),
		keyTrackerRate:    strconv.FormatFloat(st.Tracker.RequestsPerSecond, 'g', -1, 64),
		keyGmailEnabled:   strconv.FormatBool(st.Gmail.Enabled),
		keyGmailQuery:     st.Gmail.Query,
		keyGmailClientID:  st.Gmail.ClientID,
		keyGmailSecret:    st.Gmail.ClientSecret,
		keyGmailRefresh:   st.Gmail.RefreshToken,
		keyGmailMax:       strconv.FormatInt(st.Gmail.MaxResults, 10),
	}
	for _, field := range trackedFields {
		values[columnKeyPrefix+field] = formatID(st.Tracker.ColumnIDs[field])
	}

	entries := make([]driving.SettingEntry, 0, len(settingDefs))
	for _, def := range settingDefs {
		entries = append(entries, driving.SettingEntry{
			Key:    def.key,
			Value:  values[def.key],
			Secret: def.secret,
		})
	}
	return entries, nil
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.Settings {
	return domain.DefaultSettings()
}

func lookupSetting(key string) (settingDef, bool) {
	for _, def := range settingDefs {
		if def.key == key {
			return def, true
		}
	}
	return settingDef{}, false
}

func parseSetting(def settingDef, value string) (any, error) {
	value = strings.TrimSpace(value)
	switch def.kind {
	case kindBool:
		return strconv.ParseBool(value)
	case kindInt:
		return strconv.ParseInt(value, 10, 64)
	case kindFloat:
		f, err := strconv.ParseFloat(value, 64)
		if err == nil && f <= 0 {
			return nil, fmt.Errorf("must be positive")
		}
		return f, err
	case kindList:
		var items []string
		for _, item := range strings.Split(value, ",") {
			if item = strings.TrimSpace(item); item != "" {
				items = append(items, item)
			}
		}
		if len(items) == 0 {
			return nil, fmt.Errorf("list is empty")
		}
		return items, nil
	case kindExtension:
		if !strings.HasPrefix(value, ".") || len(value) < 2 {
			return nil, fmt.Errorf("extension must start with '.'")
		}
		return value, nil
	case kindPolicy:
		policy := domain.SlotConflictPolicy(value)
		if !policy.IsValid() {
			return nil, fmt.Errorf("expected %q or %q", domain.SlotConflictLast, domain.SlotConflictFirst)
		}
		return value, nil
	default:
		return value, nil
	}
}

func formatID(id int64) string {
	if id == 0 {
		return ""
	}
	return strconv.FormatInt(id, 10)
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	val := s.configStore.GetFloat(key)
	if val <= 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getBool(key string, defaultVal bool) bool {
	val, ok := s.configStore.GetBool(key)
	if !ok {
		return defaultVal
	}
	return val
}
