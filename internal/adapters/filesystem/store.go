package filesystem

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"modelrepo/internal/codec"
)

// ErrNotExist is returned when no document is stored at a path
var ErrNotExist = errors.New("document does not exist")

// Store implements ports.DocumentStore with JSON files on disk
type Store struct {
	perm os.FileMode
}

// NewStore creates a new filesystem document store
func NewStore() *Store {
	return &Store{perm: 0644}
}

// expand resolves a leading ~ to the home directory
func expand(path string) string {
	if strings.HasPrefix(path, "~") {
		home, _ := os.UserHomeDir()
		path = filepath.Join(home, path[1:])
	}
	return path
}

// Exists reports whether a regular file is stored at path
func (s *Store) Exists(path string) bool {
	info, err := os.Stat(expand(path))
	return err == nil && info.Mode().IsRegular()
}

// Load reads and decodes the document at path
func (s *Store) Load(path string) (map[string]any, error) {
	data, err := os.ReadFile(expand(path))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotExist, path)
		}
		return nil, fmt.Errorf("failed to read document: %w", err)
	}
	tree, err := codec.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return tree, nil
}

// Save encodes tree and replaces the file at path. The document is written to
// a temporary file in the same directory and renamed over the target, so a
// reader never sees a partial document.
func (s *Store) Save(path string, tree map[string]any) error {
	path = expand(path)
	data, err := codec.Marshal(tree)
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write document: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync document: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close document: %w", err)
	}
	if err := os.Chmod(tmp.Name(), s.perm); err != nil {
		return fmt.Errorf("failed to set permissions: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to replace document: %w", err)
	}
	return nil
}
