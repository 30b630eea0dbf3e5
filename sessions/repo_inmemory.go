package sessions

import (
	"context"
	"fmt"
	"sync"
)

// InMemoryRepo keeps session values in process memory. Everything is lost on restart.
type InMemoryRepo struct {
	mu     sync.RWMutex
	values map[string]map[string]string // namespace -> key -> value
}

var _ Repo = (*InMemoryRepo)(nil)

func NewInMemoryRepo() *InMemoryRepo {
	return &InMemoryRepo{
		values: make(map[string]map[string]string),
	}
}

func (r *InMemoryRepo) Get(_ context.Context, namespace, key string) (string, bool, error) {
	if namespace == "" {
		return "", false, fmt.Errorf("namespace is required")
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	value, ok := r.values[namespace][key]
	return value, ok, nil
}

func (r *InMemoryRepo) Set(_ context.Context, namespace, key, value string) error {
	if namespace == "" {
		return fmt.Errorf("namespace is required")
	}
	if key == "" {
		return fmt.Errorf("key is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.values[namespace]; !ok {
		r.values[namespace] = make(map[string]string)
	}
	r.values[namespace][key] = value
	return nil
}

func (r *InMemoryRepo) Delete(_ context.Context, namespace string, keys ...string) error {
	if namespace == "" {
		return fmt.Errorf("namespace is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	nsValues, ok := r.values[namespace]
	if !ok {
		return nil
	}
	for _, key := range keys {
		delete(nsValues, key)
	}

	// Clean up empty namespace map
	if len(nsValues) == 0 {
		delete(r.values, namespace)
	}
	return nil
}

func (r *InMemoryRepo) Purge(_ context.Context, namespace string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.values, namespace)
	return nil
}
