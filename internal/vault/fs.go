package vault

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
)

// FS stores blobs as files under a root directory. Slash-separated keys map
// to subdirectories, so one user's backups share a directory.
type FS struct {
	root string
}

var _ Vault = (*FS)(nil)

// NewFS creates the root directory if needed and returns a vault over it.
func NewFS(root string) (*FS, error) {
	if err := os.MkdirAll(root, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create vault root: %w", err)
	}
	return &FS{root: root}, nil
}

func (f *FS) filePath(key string) (string, error) {
	if key == "" || strings.HasPrefix(key, "/") || strings.Contains(key, "..") || path.Clean(key) != key {
		return "", fmt.Errorf("invalid vault key %q", key)
	}
	return filepath.Join(f.root, filepath.FromSlash(key)), nil
}

// Put writes data to the file for key, creating parent directories.
func (f *FS) Put(_ context.Context, key string, data []byte) error {
	p, err := f.filePath(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o700); err != nil {
		return fmt.Errorf("failed to create backup directory: %w", err)
	}
	if err := os.WriteFile(p, data, 0o600); err != nil {
		return fmt.Errorf("failed to write backup: %w", err)
	}
	return nil
}

// Get reads the blob stored under key.
func (f *FS) Get(_ context.Context, key string) ([]byte, error) {
	p, err := f.filePath(key)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read backup: %w", err)
	}
	return data, nil
}

// Delete removes the file for key if present.
func (f *FS) Delete(_ context.Context, key string) error {
	p, err := f.filePath(key)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete backup: %w", err)
	}
	return nil
}

// List walks the vault and returns all keys with the given prefix in
// lexical order.
func (f *FS) List(_ context.Context, prefix string) ([]string, error) {
	var keys []string

	err := filepath.WalkDir(f.root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(f.root, p)
		if err != nil {
			return err
		}
		key := filepath.ToSlash(rel)
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list backups: %w", err)
	}

	sort.Strings(keys)
	return keys, nil
}
