// Package session persists the signed-in user between CLI invocations.
package session

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/smartgwiza/reports-cli/internal/model"
)

// ErrNoSession is returned when nobody is logged in.
var ErrNoSession = eris.New("session: not logged in")

// Store is a YAML file holding one session. The file is written with
// owner-only permissions since it contains a bearer token.
type Store struct {
	path string
	mu   sync.Mutex
}

// NewStore returns a store backed by path. The file need not exist.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the backing file.
func (s *Store) Path() string { return s.path }

// Get loads the current session.
func (s *Store) Get() (*model.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNoSession
	}
	if err != nil {
		return nil, eris.Wrap(err, "session: read file")
	}

	var sess model.Session
	if err := yaml.Unmarshal(data, &sess); err != nil {
		return nil, eris.Wrap(err, "session: parse file")
	}
	if sess.Token == "" {
		return nil, ErrNoSession
	}
	return &sess, nil
}

// Set replaces the stored session.
func (s *Store) Set(sess model.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := yaml.Marshal(sess)
	if err != nil {
		return eris.Wrap(err, "session: marshal")
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return eris.Wrap(err, "session: create directory")
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return eris.Wrap(err, "session: write file")
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return eris.Wrap(err, "session: replace file")
	}
	return nil
}

// Clear removes the session. Clearing an empty store is not an error.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return eris.Wrap(err, "session: remove file")
	}
	return nil
}

// Token returns the bearer token, satisfying backend.TokenSource.
func (s *Store) Token() (string, error) {
	sess, err := s.Get()
	if err != nil {
		return "", err
	}
	return sess.Token, nil
}
