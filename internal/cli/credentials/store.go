// Package credentials persists the peerdexctl login profile between
// invocations.
package credentials

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

const (
	// DefaultConfigDir is the directory under XDG_CONFIG_HOME for
	// peerdexctl state.
	DefaultConfigDir = "peerdexctl"
	// ProfileFileName is the name of the saved profile file.
	ProfileFileName = "profile.json"
	// FilePermissions for the profile file (the password is stored in
	// it, so owner-only).
	FilePermissions = 0600
	// DirPermissions for config directories.
	DirPermissions = 0700
)

// ErrNotLoggedIn indicates no saved profile exists.
var ErrNotLoggedIn = errors.New("no saved profile - run 'peerdexctl login' first")

// Profile is the saved identity of this peer. The tracker creates the
// account on first login, so the profile doubles as the registration.
type Profile struct {
	TrackerURL string `json:"tracker_url"`
	Name       string `json:"name"`
	Password   string `json:"password"`

	// IP and Port are the transfer endpoint announced to the tracker.
	IP   string `json:"ip"`
	Port int    `json:"port"`

	// ShareDir is the directory served to other peers.
	ShareDir string `json:"share_dir,omitempty"`
}

// Store manages the profile file on disk.
type Store struct {
	path    string
	profile *Profile
}

// NewStore opens the profile store, loading the saved profile if one
// exists.
func NewStore() (*Store, error) {
	path, err := profilePath()
	if err != nil {
		return nil, err
	}

	s := &Store{path: path}
	if err := s.load(); err != nil && !os.IsNotExist(err) {
		return nil, err
	}
	return s, nil
}

func profilePath() (string, error) {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("cannot determine home directory: %w", err)
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, DefaultConfigDir, ProfileFileName), nil
}

func (s *Store) load() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return err
	}
	profile := &Profile{}
	if err := json.Unmarshal(data, profile); err != nil {
		return fmt.Errorf("corrupt profile file %s: %w", s.path, err)
	}
	s.profile = profile
	return nil
}

func (s *Store) save() error {
	if err := os.MkdirAll(filepath.Dir(s.path), DirPermissions); err != nil {
		return fmt.Errorf("cannot create config directory: %w", err)
	}
	data, err := json.MarshalIndent(s.profile, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, FilePermissions)
}

// Profile returns the saved profile, or ErrNotLoggedIn when none exists.
func (s *Store) Profile() (*Profile, error) {
	if s.profile == nil {
		return nil, ErrNotLoggedIn
	}
	return s.profile, nil
}

// SetProfile saves the profile to disk.
func (s *Store) SetProfile(p *Profile) error {
	s.profile = p
	return s.save()
}

// Clear removes the saved profile.
func (s *Store) Clear() error {
	s.profile = nil
	err := os.Remove(s.path)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// Path returns the location of the profile file.
func (s *Store) Path() string {
	return s.path
}
