package sessions

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jrsteele09/ideathon-portal/token"
	"github.com/jrsteele09/ideathon-portal/users"
	"github.com/rs/zerolog/log"
)

// Store is the session of one browser profile. Pass it down explicitly, or bind it to a
// context with NewContext where only a context travels.
type Store struct {
	m *Manager
	h Handle
}

func (s *Store) Handle() Handle {
	return s.h
}

// Login persists token and email and starts fetching the profile in the background.
// IsLoading reports true until that fetch settles. An empty token removes any stored one, so a
// previous account's token never sits next to the new email.
func (s *Store) Login(ctx context.Context, rawToken, email string) error {
	ns := s.h.profileNamespace()
	if rawToken == "" {
		if err := s.m.repo.Delete(ctx, ns, KeyAuthToken); err != nil {
			return fmt.Errorf("[Store Login] drop token: %w", err)
		}
	} else if err := s.m.repo.Set(ctx, ns, KeyAuthToken, rawToken); err != nil {
		return fmt.Errorf("[Store Login] save token: %w", err)
	}
	if err := s.m.repo.Set(ctx, ns, KeyUserEmail, email); err != nil {
		return fmt.Errorf("[Store Login] save email: %w", err)
	}

	s.m.mu.Lock()
	s.m.state(s.h.Profile).loading = true
	s.m.mu.Unlock()

	go func() {
		if err := s.RefreshUser(context.WithoutCancel(ctx)); err != nil {
			log.Err(err).Str("email", email).Msg("profile refresh after login failed")
		}
	}()
	return nil
}

// Logout is ClearAuth.
func (s *Store) Logout(ctx context.Context) error {
	return s.ClearAuth(ctx)
}

// ClearAuth removes the token, the email, every legacy admin key and the cached profile.
// Calling it on an empty session is a no-op.
func (s *Store) ClearAuth(ctx context.Context) error {
	s.m.mu.Lock()
	delete(s.m.states, s.h.Profile)
	s.m.mu.Unlock()

	if err := s.m.repo.Delete(ctx, s.h.profileNamespace(), KeyAuthToken, KeyUserEmail); err != nil {
		return fmt.Errorf("[Store ClearAuth] profile keys: %w", err)
	}
	if err := s.m.repo.Delete(ctx, s.h.tabNamespace(), KeyIsAdmin, KeyAdminEmail, KeyAdminUsers); err != nil {
		return fmt.Errorf("[Store ClearAuth] admin keys: %w", err)
	}
	return nil
}

// RefreshUser fetches the profile for the stored token. Any failure wipes the session so a
// profile that cannot be confirmed is never kept.
func (s *Store) RefreshUser(ctx context.Context) error {
	s.m.mu.Lock()
	st := s.m.state(s.h.Profile)
	st.loading = true
	gen := st.gen
	s.m.mu.Unlock()

	user, err := s.fetchProfile(ctx)

	s.m.mu.Lock()
	st, ok := s.m.states[s.h.Profile]
	stale := !ok || st.gen != gen
	if !stale {
		st.loading = false
		if err == nil {
			st.user = user
		}
	}
	s.m.mu.Unlock()

	if stale {
		if err != nil {
			return fmt.Errorf("[Store RefreshUser] %w", err)
		}
		return nil
	}
	if err != nil {
		if clearErr := s.ClearAuth(ctx); clearErr != nil {
			log.Err(clearErr).Msg("clearing session after failed refresh")
		}
		return fmt.Errorf("[Store RefreshUser] %w", err)
	}
	return nil
}

func (s *Store) fetchProfile(ctx context.Context) (*users.User, error) {
	if s.Token(ctx) == "" {
		return nil, fmt.Errorf("no token stored")
	}
	if s.m.profiles == nil {
		return nil, fmt.Errorf("no profile client configured")
	}
	user, err := s.m.profiles.Me(NewContext(ctx, s))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("empty profile")
	}
	return user, nil
}

// EnsureUser resolves the profile once when a token is stored but nothing is cached yet,
// which is the case after a restart or on a fresh server.
func (s *Store) EnsureUser(ctx context.Context) {
	if s.User() != nil || s.IsLoading() || s.Token(ctx) == "" {
		return
	}
	if err := s.RefreshUser(ctx); err != nil {
		log.Err(err).Msg("resolving stored session failed")
	}
}

func (s *Store) User() *users.User {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if st, ok := s.m.states[s.h.Profile]; ok {
		return st.user
	}
	return nil
}

func (s *Store) IsAuthenticated() bool {
	return s.User() != nil
}

func (s *Store) IsLoading() bool {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if st, ok := s.m.states[s.h.Profile]; ok {
		return st.loading
	}
	return false
}

// Token returns the raw stored token or "".
func (s *Store) Token(ctx context.Context) string {
	return s.get(ctx, s.h.profileNamespace(), KeyAuthToken)
}

func (s *Store) Email(ctx context.Context) string {
	return s.get(ctx, s.h.profileNamespace(), KeyUserEmail)
}

// Claims peeks at the stored token. The result is for display and routing only.
func (s *Store) Claims(ctx context.Context) (*token.Claims, bool) {
	raw := s.Token(ctx)
	if raw == "" {
		return nil, false
	}
	return token.Peek(raw)
}

// IsExpired is true unless a stored token decodes and carries an exp in the future.
func (s *Store) IsExpired(ctx context.Context) bool {
	claims, ok := s.Claims(ctx)
	if !ok {
		return true
	}
	return claims.Expired(s.m.clock.Now())
}

// Role is the role claim of the stored token, RoleNone when there is none.
func (s *Store) Role(ctx context.Context) token.Role {
	claims, ok := s.Claims(ctx)
	if !ok {
		return token.RoleNone
	}
	return claims.GetRole()
}

// IsAdmin is true for an admin role claim or a legacy admin session.
func (s *Store) IsAdmin(ctx context.Context) bool {
	return s.Role(ctx) == token.RoleAdmin || s.LegacyAdmin(ctx)
}

// LegacyAdmin reports the admin flag set by the tokenless admin login.
// It is the only reader of that flag; drop it here once no backend grants admin that way.
func (s *Store) LegacyAdmin(ctx context.Context) bool {
	return s.get(ctx, s.h.tabNamespace(), KeyIsAdmin) == "true"
}

// GrantLegacyAdmin records a tokenless admin login with the roster it returned.
func (s *Store) GrantLegacyAdmin(ctx context.Context, email string, roster []users.User) error {
	ns := s.h.tabNamespace()
	if err := s.m.repo.Set(ctx, ns, KeyIsAdmin, "true"); err != nil {
		return fmt.Errorf("[Store GrantLegacyAdmin] flag: %w", err)
	}
	if err := s.m.repo.Set(ctx, ns, KeyAdminEmail, email); err != nil {
		return fmt.Errorf("[Store GrantLegacyAdmin] email: %w", err)
	}
	return s.CacheRoster(ctx, roster)
}

func (s *Store) AdminEmail(ctx context.Context) string {
	return s.get(ctx, s.h.tabNamespace(), KeyAdminEmail)
}

// CachedRoster returns the admin roster saved in this browser session, if any.
func (s *Store) CachedRoster(ctx context.Context) ([]users.User, bool) {
	raw := s.get(ctx, s.h.tabNamespace(), KeyAdminUsers)
	if raw == "" {
		return nil, false
	}
	var roster []users.User
	if err := json.Unmarshal([]byte(raw), &roster); err != nil {
		log.Err(err).Msg("cached admin roster is not valid JSON")
		return nil, false
	}
	return roster, true
}

func (s *Store) CacheRoster(ctx context.Context, roster []users.User) error {
	if roster == nil {
		roster = []users.User{}
	}
	data, err := json.Marshal(roster)
	if err != nil {
		return fmt.Errorf("[Store CacheRoster] encode: %w", err)
	}
	if err := s.m.repo.Set(ctx, s.h.tabNamespace(), KeyAdminUsers, string(data)); err != nil {
		return fmt.Errorf("[Store CacheRoster] save: %w", err)
	}
	return nil
}

func (s *Store) get(ctx context.Context, namespace, key string) string {
	value, _, err := s.m.repo.Get(ctx, namespace, key)
	if err != nil {
		log.Err(err).Str("key", key).Msg("reading session storage failed")
		return ""
	}
	return value
}

type contextKey struct{}

// NewContext binds s to ctx.
func NewContext(ctx context.Context, s *Store) context.Context {
	return context.WithValue(ctx, contextKey{}, s)
}

// FromContext returns the store bound to ctx, or nil.
func FromContext(ctx context.Context) *Store {
	s, _ := ctx.Value(contextKey{}).(*Store)
	return s
}
