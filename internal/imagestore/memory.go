package imagestore

import (
	"context"
	"sync"
)

type memObject struct {
	data        []byte
	contentType string
}

// Memory keeps images in process memory. Used by tests and throwaway runs.
type Memory struct {
	mu        sync.RWMutex
	objects   map[string]memObject
	publicURL string
}

// NewMemory returns an empty in-memory store.
func NewMemory(publicURL string) *Memory {
	return &Memory{objects: make(map[string]memObject), publicURL: publicURL}
}

func (m *Memory) Driver() Driver { return DriverMemory }

func (m *Memory) Put(_ context.Context, key string, data []byte, contentType string) (string, error) {
	key, err := sanitizeKey(key)
	if err != nil {
		return "", err
	}
	buf := make([]byte, len(data))
	copy(buf, data)

	m.mu.Lock()
	m.objects[key] = memObject{data: buf, contentType: contentType}
	m.mu.Unlock()
	return localURL(m.publicURL, key), nil
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, string, error) {
	key, err := sanitizeKey(key)
	if err != nil {
		return nil, "", ErrNotFound
	}
	m.mu.RLock()
	obj, ok := m.objects[key]
	m.mu.RUnlock()
	if !ok {
		return nil, "", ErrNotFound
	}
	return obj.data, obj.contentType, nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	key, err := sanitizeKey(key)
	if err != nil {
		return err
	}
	m.mu.Lock()
	delete(m.objects, key)
	m.mu.Unlock()
	return nil
}

// Len returns the number of stored objects.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.objects)
}

func (m *Memory) Close() error { return nil }
