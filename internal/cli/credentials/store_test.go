package credentials

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	s, err := NewStore()
	require.NoError(t, err)
	return s
}

func TestEmptyStoreIsNotLoggedIn(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Profile()
	assert.ErrorIs(t, err, ErrNotLoggedIn)
}

func TestSaveAndReloadProfile(t *testing.T) {
	s := newTestStore(t)

	saved := &Profile{
		TrackerURL: "http://tracker.local:4750",
		Name:       "alice",
		Password:   "hunter2secret",
		IP:         "10.0.0.1",
		Port:       1052,
		ShareDir:   "/home/alice/shared",
	}
	require.NoError(t, s.SetProfile(saved))

	// A fresh store against the same config dir sees the profile.
	reloaded, err := NewStore()
	require.NoError(t, err)
	got, err := reloaded.Profile()
	require.NoError(t, err)
	assert.Equal(t, saved, got)
}

func TestProfileFilePermissions(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.SetProfile(&Profile{Name: "alice", Password: "hunter2secret"}))

	info, err := os.Stat(s.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(FilePermissions), info.Mode().Perm())
}

func TestClearRemovesProfile(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.SetProfile(&Profile{Name: "alice"}))

	require.NoError(t, s.Clear())
	_, err := s.Profile()
	assert.ErrorIs(t, err, ErrNotLoggedIn)

	// Clearing twice is fine.
	require.NoError(t, s.Clear())
}

func TestCorruptProfileFileIsAnError(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	path := filepath.Join(dir, DefaultConfigDir, ProfileFileName)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), DirPermissions))
	require.NoError(t, os.WriteFile(path, []byte("{not json"), FilePermissions))

	_, err := NewStore()
	assert.ErrorContains(t, err, "corrupt profile file")
}
