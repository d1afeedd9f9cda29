package credentials

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"github.com/pkg/errors"
)

// Store persists one credential set as a single JSON document. Saves
// overwrite the whole file; Clear removes it. There is no schema versioning.
type Store struct {
	path string
	lock *flock.Flock
}

func NewStore(path string) *Store {
	return &Store{
		path: path,
		lock: flock.New(path + ".lock"),
	}
}

func (s *Store) Save(set Set) error {
	if err := s.lock.Lock(); err != nil {
		return errors.Wrap(err, "failed to lock credentials file")
	}
	defer func() { _ = s.lock.Unlock() }()

	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return errors.Wrap(err, "failed to create credentials directory")
	}

	encoded, err := json.MarshalIndent(set, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to encode credentials")
	}

	// tokens on disk, owner-readable only
	if err := os.WriteFile(s.path, encoded, 0600); err != nil {
		return errors.Wrap(err, "failed to write credentials file")
	}
	return nil
}

// Load returns the stored set, or an empty set when nothing was saved yet.
func (s *Store) Load() (Set, error) {
	if err := s.lock.RLock(); err != nil {
		return nil, errors.Wrap(err, "failed to lock credentials file")
	}
	defer func() { _ = s.lock.Unlock() }()

	fileBytes, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return Set{}, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to read credentials file")
	}

	var set Set
	if err := json.Unmarshal(fileBytes, &set); err != nil {
		return nil, errors.Wrap(err, "failed to parse credentials file")
	}
	return set, nil
}

func (s *Store) Clear() error {
	if err := s.lock.Lock(); err != nil {
		return errors.Wrap(err, "failed to lock credentials file")
	}
	defer func() { _ = s.lock.Unlock() }()

	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "failed to remove credentials file")
	}
	return nil
}
