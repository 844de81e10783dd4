// Package storage persists whole-collection snapshots in a key-value store.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

// ErrNotFound is returned by a KV when a key has no value.
var ErrNotFound = errors.New("storage: key not found")

// Persisted collection keys.
const (
	KeyRecipes     = "flavr.recipes"
	KeyFavorites   = "flavr.favorites"
	KeyGrocery     = "flavr.grocery"
	KeyPlanner     = "flavr.planner"
	KeyConnections = "flavr.connections"
	KeyProfile     = "flavr.profile"
)

// Keys lists every collection key.
var Keys = []string{KeyRecipes, KeyFavorites, KeyGrocery, KeyPlanner, KeyConnections, KeyProfile}

// KV is a byte-oriented key-value store.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// Namespace returns the key under which account stores collection key.
func Namespace(account, key string) string {
	if account == "" {
		return key
	}
	return account + ":" + key
}

// Load reads key into dst. A missing or unparsable value leaves dst
// untouched so the caller's default stands; parse failures are logged and
// never returned.
func Load(ctx context.Context, kv KV, logger *slog.Logger, key string, dst any) {
	data, err := kv.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			logger.WarnContext(ctx, "state read failed, using default", slog.String("key", key), slog.String("error", err.Error()))
		}
		return
	}
	if err := json.Unmarshal(data, dst); err != nil {
		logger.WarnContext(ctx, "state unparsable, using default", slog.String("key", key), slog.String("error", err.Error()))
	}
}

// Save overwrites key with the JSON serialization of v.
func Save(ctx context.Context, kv KV, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", key, err)
	}
	if err := kv.Set(ctx, key, data); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

// MemoryKV keeps values in process memory.
type MemoryKV struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemoryKV creates an empty in-memory store.
func NewMemoryKV() *MemoryKV {
	return &MemoryKV{data: make(map[string][]byte)}
}

func (m *MemoryKV) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

func (m *MemoryKV) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = append([]byte(nil), value...)
	return nil
}

func (m *MemoryKV) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

// Collection binds a value type to one persisted key so stores can save
// themselves without knowing about the KV layout.
type Collection[T any] struct {
	KV  KV
	Key string
}

// NewCollection returns the collection key for account.
func NewCollection[T any](kv KV, account, key string) Collection[T] {
	return Collection[T]{KV: kv, Key: Namespace(account, key)}
}

// Save overwrites the collection with v.
func (c Collection[T]) Save(ctx context.Context, v T) error {
	return Save(ctx, c.KV, c.Key, v)
}

// Load reads the collection into dst, leaving it untouched on failure.
func (c Collection[T]) Load(ctx context.Context, logger *slog.Logger, dst *T) {
	Load(ctx, c.KV, logger, c.Key, dst)
}
