package sessions_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/ideathon-portal/sessions"
	"github.com/jrsteele09/ideathon-portal/token"
	"github.com/jrsteele09/ideathon-portal/users"
	"github.com/stretchr/testify/require"
)

type fakeProfiles struct {
	mu      sync.Mutex
	user    *users.User
	err     error
	tokens  []string
	release chan struct{}
}

func (f *fakeProfiles) Me(ctx context.Context) (*users.User, error) {
	if f.release != nil {
		<-f.release
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if s := sessions.FromContext(ctx); s != nil {
		f.tokens = append(f.tokens, s.Token(ctx))
	}
	return f.user, f.err
}

type testFixture struct {
	repo     sessions.Repo
	profiles *fakeProfiles
	clock    *clock.Mock
	manager  *sessions.Manager
	store    *sessions.Store
}

func setupTestFixture(t *testing.T) *testFixture {
	t.Helper()
	repo := sessions.NewInMemoryRepo()
	profiles := &fakeProfiles{user: &users.User{Email: "a@test.com", Name: "Asha"}}
	mock := clock.NewMock()
	mock.Set(time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC))
	manager := sessions.NewManager(repo, profiles, sessions.WithClock(mock))
	return &testFixture{
		repo:     repo,
		profiles: profiles,
		clock:    mock,
		manager:  manager,
		store:    manager.Open(sessions.Handle{Profile: "p1", Tab: "t1"}),
	}
}

func tokenFor(t *testing.T, role token.Role, exp time.Time) string {
	t.Helper()
	claims := token.Claims{Email: "a@test.com", Role: role}
	if !exp.IsZero() {
		claims.ExpiresAt = jwt.NewNumericDate(exp)
	}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	require.NoError(t, err)
	return raw
}

func TestStore_Login(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()

	require.NoError(t, f.store.Login(ctx, "tok123", "a@test.com"))
	require.Equal(t, "tok123", f.store.Token(ctx))
	require.Equal(t, "a@test.com", f.store.Email(ctx))

	require.Eventually(t, func() bool { return f.store.IsAuthenticated() }, time.Second, 5*time.Millisecond)
	require.False(t, f.store.IsLoading())
	require.Equal(t, "Asha", f.store.User().Name)

	f.profiles.mu.Lock()
	require.Equal(t, []string{"tok123"}, f.profiles.tokens, "profile fetch sees the new token")
	f.profiles.mu.Unlock()
}

func TestStore_TokenlessLoginDropsStaleToken(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()
	require.NoError(t, f.repo.Set(ctx, "profile:p1", sessions.KeyAuthToken, "old.tok.en"))
	require.NoError(t, f.repo.Set(ctx, "profile:p1", sessions.KeyUserEmail, "old@test.com"))

	require.NoError(t, f.store.Login(ctx, "", "new@test.com"))
	require.Empty(t, f.store.Token(ctx), "the previous account's token is gone")

	require.Eventually(t, func() bool { return !f.store.IsLoading() }, time.Second, 5*time.Millisecond)
	require.False(t, f.store.IsAuthenticated())
	require.Empty(t, f.store.Email(ctx), "a profile that cannot be fetched ends the session")
	f.profiles.mu.Lock()
	require.Empty(t, f.profiles.tokens, "no profile is fetched with the old token")
	f.profiles.mu.Unlock()
}

func TestStore_LoadingUntilRefreshSettles(t *testing.T) {
	f := setupTestFixture(t)
	f.profiles.release = make(chan struct{})
	ctx := context.Background()

	require.NoError(t, f.store.Login(ctx, "tok123", "a@test.com"))
	require.True(t, f.store.IsLoading())
	require.False(t, f.store.IsAuthenticated())

	close(f.profiles.release)
	require.Eventually(t, func() bool { return !f.store.IsLoading() }, time.Second, 5*time.Millisecond)
	require.True(t, f.store.IsAuthenticated())
}

func TestStore_RefreshFailureLogsOut(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()
	require.NoError(t, f.repo.Set(ctx, "profile:p1", sessions.KeyAuthToken, "tok"))
	require.NoError(t, f.repo.Set(ctx, "profile:p1", sessions.KeyUserEmail, "a@test.com"))
	f.profiles.err = errors.New("boom")

	require.Error(t, f.store.RefreshUser(ctx))
	require.Empty(t, f.store.Token(ctx))
	require.Empty(t, f.store.Email(ctx))
	require.False(t, f.store.IsAuthenticated())
	require.False(t, f.store.IsLoading())
}

func TestStore_RefreshWithoutTokenLogsOut(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()
	require.NoError(t, f.repo.Set(ctx, "profile:p1", sessions.KeyUserEmail, "a@test.com"))

	require.Error(t, f.store.RefreshUser(ctx))
	require.Empty(t, f.store.Email(ctx))
}

func TestStore_ClearAuthWipesEveryKey(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()
	require.NoError(t, f.store.Login(ctx, "tok", "a@test.com"))
	require.NoError(t, f.store.GrantLegacyAdmin(ctx, "admin@test.com", []users.User{{Name: "A"}}))
	require.Eventually(t, func() bool { return !f.store.IsLoading() }, time.Second, 5*time.Millisecond)

	require.NoError(t, f.store.ClearAuth(ctx))
	require.NoError(t, f.store.ClearAuth(ctx), "idempotent")

	for ns, keys := range map[string][]string{
		"profile:p1": {sessions.KeyAuthToken, sessions.KeyUserEmail},
		"tab:t1":     {sessions.KeyIsAdmin, sessions.KeyAdminEmail, sessions.KeyAdminUsers},
	} {
		for _, key := range keys {
			_, ok, err := f.repo.Get(ctx, ns, key)
			require.NoError(t, err)
			require.False(t, ok, key)
		}
	}
	require.Nil(t, f.store.User())
}

func TestStore_StaleRefreshDoesNotResurrect(t *testing.T) {
	f := setupTestFixture(t)
	f.profiles.release = make(chan struct{})
	ctx := context.Background()

	require.NoError(t, f.store.Login(ctx, "tok", "a@test.com"))
	require.NoError(t, f.store.Logout(ctx))
	close(f.profiles.release)

	time.Sleep(20 * time.Millisecond)
	require.Nil(t, f.store.User())
	require.False(t, f.store.IsLoading())
}

func TestStore_IsExpired(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()
	now := f.clock.Now()

	require.True(t, f.store.IsExpired(ctx), "no token")

	require.NoError(t, f.repo.Set(ctx, "profile:p1", sessions.KeyAuthToken, "not-a-token"))
	require.True(t, f.store.IsExpired(ctx), "undecodable token")

	require.NoError(t, f.repo.Set(ctx, "profile:p1", sessions.KeyAuthToken, tokenFor(t, token.RoleUser, time.Time{})))
	require.True(t, f.store.IsExpired(ctx), "no exp claim")

	require.NoError(t, f.repo.Set(ctx, "profile:p1", sessions.KeyAuthToken, tokenFor(t, token.RoleUser, now.Add(time.Hour))))
	require.False(t, f.store.IsExpired(ctx))

	f.clock.Add(time.Hour)
	require.True(t, f.store.IsExpired(ctx), "now equal to exp")
}

func TestStore_Roles(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()
	exp := f.clock.Now().Add(time.Hour)

	require.Equal(t, token.RoleNone, f.store.Role(ctx))
	require.False(t, f.store.IsAdmin(ctx))

	require.NoError(t, f.repo.Set(ctx, "profile:p1", sessions.KeyAuthToken, tokenFor(t, token.RoleUser, exp)))
	require.Equal(t, token.RoleUser, f.store.Role(ctx))
	require.False(t, f.store.IsAdmin(ctx))

	require.NoError(t, f.repo.Set(ctx, "profile:p1", sessions.KeyAuthToken, tokenFor(t, token.RoleAdmin, exp)))
	require.True(t, f.store.IsAdmin(ctx))
}

func TestStore_LegacyAdmin(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()
	roster := []users.User{{Name: "A", Email: "a@test.com"}, {Name: "B", Email: "b@test.com"}}

	require.NoError(t, f.store.GrantLegacyAdmin(ctx, "admin@test.com", roster))
	require.True(t, f.store.LegacyAdmin(ctx))
	require.True(t, f.store.IsAdmin(ctx))
	require.Empty(t, f.store.Token(ctx), "admin login stores no token")
	require.Equal(t, "admin@test.com", f.store.AdminEmail(ctx))

	cached, ok := f.store.CachedRoster(ctx)
	require.True(t, ok)
	require.Equal(t, roster, cached)

	other := f.manager.Open(sessions.Handle{Profile: "p1", Tab: "t2"})
	require.False(t, other.LegacyAdmin(ctx), "the flag belongs to one browser session")
}

func TestStore_EnsureUser(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()
	require.NoError(t, f.repo.Set(ctx, "profile:p1", sessions.KeyAuthToken, "tok"))

	f.store.EnsureUser(ctx)
	require.True(t, f.store.IsAuthenticated())

	f.store.EnsureUser(ctx)
	f.profiles.mu.Lock()
	require.Len(t, f.profiles.tokens, 1, "cached profile is not refetched")
	f.profiles.mu.Unlock()
}

func TestManager_ForgetsSignedOutProfiles(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()
	other := f.manager.Open(sessions.Handle{Profile: "p2", Tab: "t2"})

	require.NoError(t, f.store.Login(ctx, "tok", "a@test.com"))
	require.NoError(t, other.Login(ctx, "tok2", "b@test.com"))
	require.Eventually(t, func() bool {
		return !f.store.IsLoading() && !other.IsLoading()
	}, time.Second, 5*time.Millisecond)
	require.Equal(t, 2, f.manager.Len())

	require.NoError(t, f.store.Logout(ctx))
	require.Equal(t, 1, f.manager.Len())

	f.profiles.mu.Lock()
	f.profiles.err = errors.New("revoked")
	f.profiles.mu.Unlock()
	require.Error(t, other.RefreshUser(ctx))
	require.Zero(t, f.manager.Len(), "a failed refresh leaves nothing behind")

	require.NoError(t, f.store.ClearAuth(ctx))
	require.Zero(t, f.manager.Len(), "clearing an empty session creates no state")
}

func TestManager_Discard(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()
	require.NoError(t, f.store.Login(ctx, "tok", "a@test.com"))
	require.Eventually(t, func() bool { return !f.store.IsLoading() }, time.Second, 5*time.Millisecond)

	require.NoError(t, f.manager.Discard(ctx, f.store.Handle()))
	require.Empty(t, f.store.Token(ctx))
	require.Nil(t, f.store.User())
}

func TestContext(t *testing.T) {
	f := setupTestFixture(t)
	ctx := sessions.NewContext(context.Background(), f.store)
	require.Same(t, f.store, sessions.FromContext(ctx))
	require.Nil(t, sessions.FromContext(context.Background()))
}
