// Package storage provides the client-local key/value storage that holds the
// session token and the cart between runs.
package storage

import (
	"context"
	"sync"

	"github.com/pkg/errors"
)

// Well-known keys.
const (
	KeyToken = "authToken"
	KeyCart  = "shoppingCart"
)

// Store is a durable string key/value store. Get reports a missing key with
// ok == false and a nil error.
type Store interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// Config selects and configures a backend.
type Config struct {
	Backend     string // file, redis or memory
	Path        string
	RedisAddr   string
	RedisPrefix string
}

// Open builds the backend named by cfg.Backend.
func Open(cfg Config) (Store, error) {
	switch cfg.Backend {
	case "", "file":
		return NewFileStore(cfg.Path)
	case "redis":
		return NewRedisStore(cfg.RedisAddr, cfg.RedisPrefix)
	case "memory":
		return NewMemoryStore(), nil
	}
	return nil, errors.Errorf("unknown storage backend %q", cfg.Backend)
}

// MemoryStore keeps values for the lifetime of the process only.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]string)}
}

func (m *MemoryStore) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *MemoryStore) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}
