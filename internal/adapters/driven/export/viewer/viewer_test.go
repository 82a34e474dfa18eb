package viewer

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommand(t *testing.T) {
	tests := []struct {
		goos string
		name string
		args []string
	}{
		{"windows", "rundll32", []string{"url.dll,FileProtocolHandler", "out.xlsx"}},
		{"darwin", "open", []string{"out.xlsx"}},
		{"linux", "xdg-open", []string{"out.xlsx"}},
		{"freebsd", "xdg-open", []string{"out.xlsx"}},
	}
	for _, tt := range tests {
		t.Run(tt.goos, func(t *testing.T) {
			name, args := Command(tt.goos, "out.xlsx")
			assert.Equal(t, tt.name, name)
			assert.Equal(t, tt.args, args)
		})
	}
}

func TestOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "output.xlsx")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))

	var gotName string
	var gotArgs []string
	v := &Viewer{goos: "darwin", start: func(_ context.Context, name string, args ...string) error {
		gotName, gotArgs = name, args
		return nil
	}}

	require.NoError(t, v.Open(context.Background(), path))
	assert.Equal(t, "open", gotName)
	assert.Equal(t, []string{path}, gotArgs)
}

func TestOpen_MissingFile(t *testing.T) {
	called := false
	v := &Viewer{goos: "linux", start: func(context.Context, string, ...string) error {
		called = true
		return nil
	}}

	err := v.Open(context.Background(), filepath.Join(t.TempDir(), "missing.xlsx"))
	assert.Error(t, err)
	assert.False(t, called)
}

func TestOpen_StartFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "output.xlsx")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))
	boom := errors.New("no opener")
	v := &Viewer{goos: "linux", start: func(context.Context, string, ...string) error { return boom }}

	assert.ErrorIs(t, v.Open(context.Background(), path), boom)
}
