package imagestore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"mime"
	"os"
	"path/filepath"
)

// FS stores images as files under a root directory.
type FS struct {
	root      string
	publicURL string
}

// NewFS creates root if needed and returns a store rooted there.
func NewFS(root, publicURL string) (*FS, error) {
	if root == "" {
		return nil, fmt.Errorf("image directory is required")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("creating image directory: %w", err)
	}
	return &FS{root: root, publicURL: publicURL}, nil
}

func (s *FS) Driver() Driver { return DriverFS }

func (s *FS) path(key string) (string, string, error) {
	key, err := sanitizeKey(key)
	if err != nil {
		return "", "", err
	}
	return key, filepath.Join(s.root, filepath.FromSlash(key)), nil
}

func (s *FS) Put(_ context.Context, key string, data []byte, _ string) (string, error) {
	key, p, err := s.path(key)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return "", fmt.Errorf("creating image directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(p), ".upload-*")
	if err != nil {
		return "", fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", fmt.Errorf("writing image: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("writing image: %w", err)
	}
	if err := os.Rename(tmp.Name(), p); err != nil {
		return "", fmt.Errorf("storing image: %w", err)
	}
	return localURL(s.publicURL, key), nil
}

func (s *FS) Get(_ context.Context, key string) ([]byte, string, error) {
	_, p, err := s.path(key)
	if err != nil {
		return nil, "", ErrNotFound
	}
	data, err := os.ReadFile(p)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, "", ErrNotFound
	}
	if err != nil {
		return nil, "", fmt.Errorf("reading image: %w", err)
	}
	return data, mime.TypeByExtension(filepath.Ext(p)), nil
}

func (s *FS) Delete(_ context.Context, key string) error {
	_, p, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("deleting image: %w", err)
	}
	return nil
}

func (s *FS) Close() error { return nil }
