package flowrepo

import (
	"context"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/rs/zerolog/log"
)

type entryKey struct {
	key  string
	kind Kind
}

type entry struct {
	mu       sync.Mutex // held by the caller between Acquire and Release
	flow     Flow
	lastUsed time.Time
	deleted  bool
}

// InMemoryRepo is a thread-safe in-memory implementation of the Repo interface
type InMemoryRepo struct {
	clock   clock.Clock
	mu      sync.Mutex
	entries map[entryKey]*entry
}

var _ Repo = (*InMemoryRepo)(nil)

type Option func(*InMemoryRepo)

func WithClock(c clock.Clock) Option {
	return func(r *InMemoryRepo) { r.clock = c }
}

// NewInMemoryRepo creates a new in-memory flow repository
func NewInMemoryRepo(opts ...Option) *InMemoryRepo {
	r := &InMemoryRepo{
		clock:   clock.New(),
		entries: make(map[entryKey]*entry),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *InMemoryRepo) Acquire(key string, kind Kind, create func() Flow) (Flow, Release, bool) {
	if key == "" {
		return nil, nil, false
	}
	for {
		r.mu.Lock()
		e, exists := r.entries[entryKey{key, kind}]
		if !exists {
			if create == nil {
				r.mu.Unlock()
				return nil, nil, false
			}
			e = &entry{flow: create()}
			r.entries[entryKey{key, kind}] = e
		}
		r.mu.Unlock()

		e.mu.Lock()
		if e.deleted {
			// Dropped while we waited; look again.
			e.mu.Unlock()
			continue
		}
		e.lastUsed = r.clock.Now()
		var once sync.Once
		return e.flow, func() {
			once.Do(func() {
				e.lastUsed = r.clock.Now()
				e.mu.Unlock()
			})
		}, true
	}
}

func (r *InMemoryRepo) Delete(key string, kind Kind) {
	r.mu.Lock()
	e, exists := r.entries[entryKey{key, kind}]
	delete(r.entries, entryKey{key, kind})
	r.mu.Unlock()
	if !exists {
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	closeEntry(e)
}

func (r *InMemoryRepo) DeleteAll(key string) {
	r.Delete(key, KindLogin)
	r.Delete(key, KindRegister)
}

func (r *InMemoryRepo) Sweep(idle time.Duration) int {
	cutoff := r.clock.Now().Add(-idle)

	r.mu.Lock()
	defer r.mu.Unlock()

	swept := 0
	for k, e := range r.entries {
		if !e.mu.TryLock() {
			continue
		}
		if e.lastUsed.Before(cutoff) {
			delete(r.entries, k)
			closeEntry(e)
			swept++
		}
		e.mu.Unlock()
	}
	return swept
}

func (r *InMemoryRepo) Run(ctx context.Context, interval, idle time.Duration) {
	ticker := r.clock.Ticker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := r.Sweep(idle); n > 0 {
				log.Debug().Int("flows", n).Msg("swept idle flows")
			}
		}
	}
}

// Len is the number of stored flows.
func (r *InMemoryRepo) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// closeEntry closes e. The caller holds e.mu.
func closeEntry(e *entry) {
	if e.deleted {
		return
	}
	e.deleted = true
	e.flow.Close()
}
