// Package credstore persists the session credential to a local file, the
// process-wide analogue of the dashboard's durable browser storage.
package credstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"

	"github.com/erptask/taskdeck/internal/core/domain"
)

// FileStore keeps the credential in memory and mirrors it to a JSON file.
// Token and user live in the same document, so set and clear are atomic for
// both halves. Writes go through a temp file + rename so a crash can't leave
// a torn credential on disk.
type FileStore struct {
	path string
	log  zerolog.Logger

	mu   sync.Mutex
	cred *domain.Credential
}

func NewFileStore(path string, log zerolog.Logger) *FileStore {
	return &FileStore{path: path, log: log}
}

// Load restores the credential from disk. Missing and corrupt files both
// mean "no session", never a fatal error.
func (s *FileStore) Load() (*domain.Credential, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("credstore: read %s: %w", s.path, err)
	}

	var cred domain.Credential
	if err := json.Unmarshal(raw, &cred); err != nil {
		s.log.Warn().Err(err).Str("path", s.path).Msg("corrupt credential file, ignoring")
		return nil, nil
	}
	if cred.Token == "" || cred.User.ID == 0 {
		// Half a credential is as good as none.
		s.log.Warn().Str("path", s.path).Msg("incomplete credential file, ignoring")
		return nil, nil
	}

	s.mu.Lock()
	c := cred
	s.cred = &c
	s.mu.Unlock()

	out := cred
	return &out, nil
}

// Set persists the credential and updates the in-memory copy. The in-memory
// copy is updated even when the durable write fails, so readers in this
// process stay consistent.
func (s *FileStore) Set(cred *domain.Credential) error {
	s.mu.Lock()
	c := *cred
	s.cred = &c
	s.mu.Unlock()

	raw, err := json.MarshalIndent(cred, "", "  ")
	if err != nil {
		return fmt.Errorf("credstore: encode: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("credstore: create %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".credentials-*")
	if err != nil {
		return fmt.Errorf("credstore: temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("credstore: chmod: %w", err)
	}
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return fmt.Errorf("credstore: write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("credstore: close: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("credstore: rename: %w", err)
	}
	return nil
}

// Clear drops both the in-memory and the durable copy. A missing file is not
// an error.
func (s *FileStore) Clear() error {
	s.mu.Lock()
	s.cred = nil
	s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("credstore: remove %s: %w", s.path, err)
	}
	return nil
}

// Get returns a copy of the current in-memory credential, or nil.
func (s *FileStore) Get() *domain.Credential {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cred == nil {
		return nil
	}
	c := *s.cred
	return &c
}
