package imagestore

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"path"

	"github.com/dgraph-io/badger/v4"
)

const badgerPrefix = "image:"

// Badger keeps images in an embedded badger database, for single-node
// deployments that want one data directory instead of loose files.
type Badger struct {
	db        *badger.DB
	publicURL string
}

// NewBadger opens (or creates) a badger database in dir.
func NewBadger(dir, publicURL string) (*Badger, error) {
	if dir == "" {
		return nil, fmt.Errorf("image directory is required")
	}
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("opening image database: %w", err)
	}
	return &Badger{db: db, publicURL: publicURL}, nil
}

func (s *Badger) Driver() Driver { return DriverBadger }

func (s *Badger) Put(_ context.Context, key string, data []byte, _ string) (string, error) {
	key, err := sanitizeKey(key)
	if err != nil {
		return "", err
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(badgerPrefix+key), data)
	})
	if err != nil {
		return "", fmt.Errorf("storing image: %w", err)
	}
	return localURL(s.publicURL, key), nil
}

func (s *Badger) Get(_ context.Context, key string) ([]byte, string, error) {
	key, err := sanitizeKey(key)
	if err != nil {
		return nil, "", ErrNotFound
	}

	var data []byte
	err = s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(badgerPrefix + key))
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, "", ErrNotFound
	}
	if err != nil {
		return nil, "", fmt.Errorf("reading image: %w", err)
	}
	return data, mime.TypeByExtension(path.Ext(key)), nil
}

func (s *Badger) Delete(_ context.Context, key string) error {
	key, err := sanitizeKey(key)
	if err != nil {
		return err
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(badgerPrefix + key))
	})
	if err != nil {
		return fmt.Errorf("deleting image: %w", err)
	}
	return nil
}

func (s *Badger) Close() error {
	return s.db.Close()
}
