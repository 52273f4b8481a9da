// Package imagestore stores processed cloth images behind a small key/value
// interface with interchangeable backends.
package imagestore

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path"
	"path/filepath"
	"strings"
)

// Driver names a storage backend.
type Driver string

// Supported drivers.
const (
	DriverFS     Driver = "fs"
	DriverMemory Driver = "memory"
	DriverS3     Driver = "s3"
	DriverGCS    Driver = "gcs"
	DriverBadger Driver = "badger"
)

// ErrNotFound is returned by Get when the key does not exist.
var ErrNotFound = errors.New("image not found")

// Store persists image bytes under a key and returns a URL clients can load.
type Store interface {
	// Put stores data under key, replacing any existing object.
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	Driver() Driver
	Close() error
}

// Getter is implemented by stores whose objects are served by this process.
type Getter interface {
	Get(ctx context.Context, key string) ([]byte, string, error)
}

// Config selects and configures a backend.
type Config struct {
	Driver    Driver
	Dir       string // fs and badger
	PublicURL string // base for locally served URLs

	Bucket          string // s3 and gcs
	Region          string
	Endpoint        string
	PathStyle       bool
	AccessKeyID     string
	SecretAccessKey string
	Credentials     string // gcs credentials file

	HTTPClient *http.Client // s3, optional
}

// Open constructs the store named by cfg.Driver.
func Open(ctx context.Context, cfg Config) (Store, error) {
	switch cfg.Driver {
	case DriverFS, "":
		return NewFS(cfg.Dir, cfg.PublicURL)
	case DriverMemory:
		return NewMemory(cfg.PublicURL), nil
	case DriverBadger:
		return NewBadger(cfg.Dir, cfg.PublicURL)
	case DriverS3:
		return NewS3(ctx, cfg)
	case DriverGCS:
		return NewGCS(ctx, cfg)
	default:
		return nil, fmt.Errorf("unsupported image driver %q", cfg.Driver)
	}
}

// ServePrefix is the path locally stored images are served under.
const ServePrefix = "/api/images/"

func localURL(publicURL, key string) string {
	return strings.TrimRight(publicURL, "/") + ServePrefix + key
}

func sanitizeKey(key string) (string, error) {
	if key == "" {
		return "", fmt.Errorf("empty key")
	}
	if strings.HasPrefix(key, "/") || strings.Contains(key, "..") || strings.Contains(key, "\\") {
		return "", fmt.Errorf("invalid key %q", key)
	}
	return filepath.ToSlash(path.Clean(key)), nil
}
