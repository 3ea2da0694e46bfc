package preferenceRepo

import (
	"context"
	"sync"
)

// MemoryPreferenceRepo keeps preferences in process memory.
type MemoryPreferenceRepo struct {
	mu     sync.RWMutex
	values map[string]string
}

func NewMemoryPreferenceRepo() *MemoryPreferenceRepo {
	return &MemoryPreferenceRepo{values: make(map[string]string)}
}

func (r *MemoryPreferenceRepo) Get(_ context.Context, key string) (string, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.values[key]
	return v, ok, nil
}

func (r *MemoryPreferenceRepo) Set(_ context.Context, key, value string) error {
	r.mu.Lock()
	r.values[key] = value
	r.mu.Unlock()
	return nil
}
