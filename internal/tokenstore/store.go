// Package tokenstore persists the token pair and the cached user
// snapshot. It is a dumb store: no validation happens here, reads of
// missing values return zero values, and a corrupt file behaves as an
// empty one.
package tokenstore

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/Ref-Hub/refhub-cli/internal/api"
)

// Store is the persistence contract for session credentials
type Store interface {
	Token() string
	SetToken(token string) error
	RefreshToken() string
	SetRefreshToken(token string) error
	StoredUser() *api.User
	SetStoredUser(user *api.User) error
	RememberMe() bool
	SetRememberMe(remember bool) error
	ClearAll() error
}

// credentials is the on-disk layout
type credentials struct {
	AccessToken  string    `json:"accessToken,omitempty"`
	RefreshToken string    `json:"refreshToken,omitempty"`
	User         *api.User `json:"user,omitempty"`
	RememberMe   bool      `json:"rememberMe,omitempty"`
}

// FileStore persists credentials to a single JSON file, optionally
// sealed at rest.
type FileStore struct {
	path   string
	sealer *Sealer

	mu sync.Mutex
}

// DefaultPath returns the standard credentials location,
// ~/.refhub/credentials.json.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".refhub", "credentials.json"), nil
}

// NewFileStore creates a store backed by the file at path. A nil
// sealer stores plaintext JSON.
func NewFileStore(path string, sealer *Sealer) *FileStore {
	return &FileStore{path: path, sealer: sealer}
}

// load reads the current credentials. Missing or unreadable files
// yield empty credentials, never an error.
func (s *FileStore) load() credentials {
	var creds credentials

	data, err := os.ReadFile(s.path)
	if err != nil {
		return creds
	}

	if s.sealer != nil {
		data, err = s.sealer.Open(data)
		if err != nil {
			return credentials{}
		}
	}

	if err := json.Unmarshal(data, &creds); err != nil {
		return credentials{}
	}
	return creds
}

// save writes the credentials back, creating the directory on first
// use. File mode 0600: tokens are secrets.
func (s *FileStore) save(creds credentials) error {
	data, err := json.MarshalIndent(creds, "", "  ")
	if err != nil {
		return err
	}

	if s.sealer != nil {
		data, err = s.sealer.Seal(data)
		if err != nil {
			return err
		}
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0o600)
}

// Token returns the stored access token, or "" when absent
func (s *FileStore) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load().AccessToken
}

// SetToken persists a new access token
func (s *FileStore) SetToken(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	creds := s.load()
	creds.AccessToken = token
	return s.save(creds)
}

// RefreshToken returns the stored refresh token, or "" when absent
func (s *FileStore) RefreshToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load().RefreshToken
}

// SetRefreshToken persists a new refresh token
func (s *FileStore) SetRefreshToken(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	creds := s.load()
	creds.RefreshToken = token
	return s.save(creds)
}

// StoredUser returns the cached user snapshot, or nil when absent
func (s *FileStore) StoredUser() *api.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load().User
}

// SetStoredUser persists the user snapshot
func (s *FileStore) SetStoredUser(user *api.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	creds := s.load()
	creds.User = user
	return s.save(creds)
}

// RememberMe returns the stored remember-me flag, or false when absent
func (s *FileStore) RememberMe() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load().RememberMe
}

// SetRememberMe persists the remember-me flag
func (s *FileStore) SetRememberMe(remember bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	creds := s.load()
	creds.RememberMe = remember
	return s.save(creds)
}

// ClearAll removes every stored credential
func (s *FileStore) ClearAll() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	err := os.Remove(s.path)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// Compile-time verification
var _ Store = (*FileStore)(nil)
var _ api.TokenSource = (*FileStore)(nil)
