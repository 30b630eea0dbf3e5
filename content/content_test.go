package content_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jrsteele09/ideathon-portal/content"
	"github.com/stretchr/testify/require"
)

func TestLoad_Default(t *testing.T) {
	ev, err := content.Load("")
	require.NoError(t, err)
	require.Equal(t, "Ideathon 2026", ev.Name)
	require.NotEmpty(t, ev.Timeline)
	require.NotEmpty(t, ev.FAQ)
	require.NotEmpty(t, ev.Venue.Name)
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "event.yaml")
	require.NoError(t, os.WriteFile(path, []byte("name: Local Jam\nrules: [be kind]\n"), 0o600))

	ev, err := content.Load(path)
	require.NoError(t, err)
	require.Equal(t, "Local Jam", ev.Name)
	require.Equal(t, []string{"be kind"}, ev.Rules)
}

func TestParse_Errors(t *testing.T) {
	_, err := content.Parse([]byte("tagline: no name"))
	require.Error(t, err)

	_, err = content.Parse([]byte("name: [unclosed"))
	require.Error(t, err)

	_, err = content.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
