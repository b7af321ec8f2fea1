package mediastore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// LocalStore stores media as files under a base directory. Keys may contain
// forward slashes, which map to subdirectories.
type LocalStore struct {
	basePath string
}

// NewLocalStore creates a LocalStore at the given base path. It creates the
// directory if it does not exist.
func NewLocalStore(basePath string) (*LocalStore, error) {
	if basePath == "" {
		basePath = "media"
	}
	if err := os.MkdirAll(basePath, 0o750); err != nil {
		return nil, fmt.Errorf("mediastore: create base directory: %w", err)
	}
	return &LocalStore{basePath: basePath}, nil
}

// path resolves a key to a filesystem path, rejecting traversal attempts.
func (s *LocalStore) path(key string) (string, error) {
	if key == "" || strings.Contains(key, "..") || strings.HasPrefix(key, "/") {
		return "", ErrInvalidKey
	}
	return filepath.Join(s.basePath, filepath.FromSlash(key)), nil
}

// Put writes media data using an atomic write pattern: a temp file in the
// target directory, then a rename.
func (s *LocalStore) Put(_ context.Context, key string, data []byte, _ string) error {
	finalPath, err := s.path(key)
	if err != nil {
		return err
	}

	dir := filepath.Dir(finalPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("mediastore: create directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("mediastore: create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("mediastore: write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("mediastore: close temp file: %w", err)
	}
	if err := os.Rename(tmpName, finalPath); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("mediastore: rename temp file: %w", err)
	}
	return nil
}

// Get reads media data. Returns ErrNotFound if the object does not exist.
func (s *LocalStore) Get(_ context.Context, key string) ([]byte, error) {
	p, err := s.path(key)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("mediastore: read file: %w", err)
	}
	return data, nil
}

// Delete removes a media file. Returns nil if the object does not exist.
func (s *LocalStore) Delete(_ context.Context, key string) error {
	p, err := s.path(key)
	if err != nil {
		return err
	}

	if err := os.Remove(p); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("mediastore: remove file: %w", err)
	}
	return nil
}
