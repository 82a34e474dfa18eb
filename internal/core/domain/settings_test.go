package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlotConflictPolicy(t *testing.T) {
	tests := []struct {
		policy SlotConflictPolicy
		valid  bool
	}{
		{SlotConflictLast, true},
		{SlotConflictFirst, true},
		{SlotConflictPolicy("random"), false},
		{SlotConflictPolicy(""), false},
	}
	for _, tt := range tests {
		t.Run(string(tt.policy), func(t *testing.T) {
			assert.Equal(t, tt.valid, tt.policy.IsValid())
			assert.Equal(t, string(tt.policy), tt.policy.String())
			if tt.valid {
				assert.NotEqual(t, unknownDescription, tt.policy.Description())
			} else {
				assert.Equal(t, unknownDescription, tt.policy.Description())
			}
		})
	}
}

func TestTrackerSettings_IsConfigured(t *testing.T) {
	full := TrackerSettings{APIToken: "t", SheetID: 1, ColumnIDs: map[string]int64{"fa": 2}}
	assert.True(t, full.IsConfigured())

	noToken := full
	noToken.APIToken = ""
	assert.False(t, noToken.IsConfigured())

	noSheet := full
	noSheet.SheetID = 0
	assert.False(t, noSheet.IsConfigured())

	noColumns := full
	noColumns.ColumnIDs = nil
	assert.False(t, noColumns.IsConfigured())
}

func TestGmailSettings_IsConfigured(t *testing.T) {
	g := GmailSettings{Enabled: true, ClientID: "id", ClientSecret: "s", RefreshToken: "r"}
	assert.True(t, g.IsConfigured())

	g.Enabled = false
	assert.False(t, g.IsConfigured())

	g.Enabled = true
	g.RefreshToken = ""
	assert.False(t, g.IsConfigured())
}

func TestDefaultSettings(t *testing.T) {
	s := DefaultSettings()

	assert.Equal(t, "./mail_asrs", s.MailDir)
	assert.Equal(t, "./tmp_txt", s.TextDir)
	assert.Equal(t, ".txt", s.TextExtension)
	assert.Equal(t, ".pdf", s.AttachmentExtension)
	assert.Equal(t, "output.xlsx", s.OutputFile)
	assert.Equal(t, DefaultExportColumns, s.Columns)
	assert.Equal(t, SlotConflictLast, s.SlotConflict)
	assert.False(t, s.Tracker.IsConfigured())
	assert.False(t, s.Gmail.IsConfigured())
	require.NoError(t, s.Validate())

	s.Columns[0] = "mutated"
	assert.Equal(t, FieldGroupKey, DefaultExportColumns[0])
}

func TestSettings_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Settings)
		want   string
	}{
		{"empty text dir", func(s *Settings) { s.TextDir = "" }, "text directory"},
		{"empty attachment dir", func(s *Settings) { s.AttachmentDir = "" }, "attachment directory"},
		{"bad text extension", func(s *Settings) { s.TextExtension = "txt" }, "text extension"},
		{"bad attachment extension", func(s *Settings) { s.AttachmentExtension = "pdf" }, "attachment extension"},
		{"no columns", func(s *Settings) { s.Columns = nil }, "column list"},
		{"bad policy", func(s *Settings) { s.SlotConflict = "x" }, "slot conflict"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := DefaultSettings()
			tt.mutate(&s)

			err := s.Validate()

			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidInput)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
