// Package progress owns the persisted training record: marks, path and step.
package progress

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/verte-zerg/tuiread/internal/model"
)

// StorageKey is the fixed key of the progress record.
const StorageKey = "reading-progress"

// Gateway loads, saves and clears the single progress record.
type Gateway interface {
	Load(ctx context.Context) (model.UserProgress, error)
	Save(ctx context.Context, p model.UserProgress) error
	Clear(ctx context.Context) error
}

// KV is a keyed store of raw string values.
type KV interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Put(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// KVGateway stores the record as JSON under StorageKey.
type KVGateway struct {
	kv  KV
	log *zap.Logger
}

// NewKVGateway wraps kv. A nil logger discards diagnostics.
func NewKVGateway(kv KV, log *zap.Logger) *KVGateway {
	if log == nil {
		log = zap.NewNop()
	}
	return &KVGateway{kv: kv, log: log}
}

// Load returns the stored record, or defaults when nothing usable is stored.
func (g *KVGateway) Load(ctx context.Context) (model.UserProgress, error) {
	raw, ok, err := g.kv.Get(ctx, StorageKey)
	if err != nil {
		return model.DefaultProgress(), fmt.Errorf("failed to read progress: %w", err)
	}
	if !ok {
		return model.DefaultProgress(), nil
	}
	var p model.UserProgress
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		g.log.Warn("failed to parse saved progress, using defaults", zap.Error(err))
		return model.DefaultProgress(), nil
	}
	return p, nil
}

// Save replaces the stored record.
func (g *KVGateway) Save(ctx context.Context, p model.UserProgress) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to encode progress: %w", err)
	}
	if err := g.kv.Put(ctx, StorageKey, string(data)); err != nil {
		return fmt.Errorf("failed to write progress: %w", err)
	}
	return nil
}

// Clear deletes the stored record.
func (g *KVGateway) Clear(ctx context.Context) error {
	if err := g.kv.Delete(ctx, StorageKey); err != nil {
		return fmt.Errorf("failed to clear progress: %w", err)
	}
	return nil
}

// MemoryKV is an in-process KV.
type MemoryKV struct {
	mu     sync.Mutex
	values map[string]string
}

// NewMemoryKV returns an empty MemoryKV.
func NewMemoryKV() *MemoryKV {
	return &MemoryKV{values: map[string]string{}}
}

// Get implements KV.
func (m *MemoryKV) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	return v, ok, nil
}

// Put implements KV.
func (m *MemoryKV) Put(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

// Delete implements KV.
func (m *MemoryKV) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}
