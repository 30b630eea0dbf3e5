package sessions

import (
	"context"
	"sync"

	"github.com/benbjohnson/clock"
	"github.com/jrsteele09/ideathon-portal/users"
)

// ProfileClient fetches the profile behind the token of the session bound to ctx.
type ProfileClient interface {
	Me(ctx context.Context) (*users.User, error)
}

// Handle names one browser profile. Profile outlives the browser session, Tab does not.
type Handle struct {
	Profile string
	Tab     string
}

func (h Handle) profileNamespace() string { return "profile:" + h.Profile }
func (h Handle) tabNamespace() string     { return "tab:" + h.Tab }

// profileState is the in-memory part of a session: the fetched profile and the refresh flag.
// A wipe drops the state; gen is unique per state so a refresh that started before the wipe
// cannot resurrect the user into a later one.
type profileState struct {
	user    *users.User
	loading bool
	gen     uint64
}

// Manager is created once at start-up and hands out a Store per request.
type Manager struct {
	repo     Repo
	profiles ProfileClient
	clock    clock.Clock

	mu     sync.Mutex
	states map[string]*profileState // profile handle -> state, signed in or signing in only
	gens   uint64
}

type ManagerOption func(*Manager)

func WithClock(c clock.Clock) ManagerOption {
	return func(m *Manager) { m.clock = c }
}

func NewManager(repo Repo, profiles ProfileClient, opts ...ManagerOption) *Manager {
	m := &Manager{
		repo:     repo,
		profiles: profiles,
		clock:    clock.New(),
		states:   make(map[string]*profileState),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Open returns the session store for h. It is cheap and holds no resources.
func (m *Manager) Open(h Handle) *Store {
	return &Store{m: m, h: h}
}

// Discard purges everything stored for h, both namespaces included.
func (m *Manager) Discard(ctx context.Context, h Handle) error {
	m.mu.Lock()
	delete(m.states, h.Profile)
	m.mu.Unlock()

	if err := m.repo.Purge(ctx, h.profileNamespace()); err != nil {
		return err
	}
	return m.repo.Purge(ctx, h.tabNamespace())
}

// state returns the state for profile, creating it. Callers hold m.mu.
func (m *Manager) state(profile string) *profileState {
	st, ok := m.states[profile]
	if !ok {
		m.gens++
		st = &profileState{gen: m.gens}
		m.states[profile] = st
	}
	return st
}

// Len reports how many profiles have in-memory state.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.states)
}
