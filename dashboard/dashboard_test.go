package dashboard_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/jrsteele09/ideathon-portal/api"
	"github.com/jrsteele09/ideathon-portal/dashboard"
	"github.com/jrsteele09/ideathon-portal/users"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

type fakeBackend struct {
	user      *users.User
	userErr   error
	roster    []users.User
	rosterErr error
	calls     int
}

func (f *fakeBackend) Dashboard(context.Context) (*users.User, error) {
	f.calls++
	return f.user, f.userErr
}

func (f *fakeBackend) AdminUsers(context.Context) ([]users.User, error) {
	f.calls++
	return f.roster, f.rosterErr
}

type fakeSession struct {
	admin   bool
	cached  []users.User
	cleared bool
}

func (f *fakeSession) IsAdmin(context.Context) bool { return f.admin }

func (f *fakeSession) CachedRoster(context.Context) ([]users.User, bool) {
	return f.cached, f.cached != nil
}

func (f *fakeSession) CacheRoster(_ context.Context, roster []users.User) error {
	f.cached = roster
	return nil
}

func (f *fakeSession) ClearAuth(context.Context) error {
	f.cleared = true
	f.cached = nil
	return nil
}

var roster = []users.User{
	{Name: "Asha", Email: "asha@test.com", TeamName: "Byte Riders", Topic: "EdTech",
		TeamMembers: []users.TeamMember{{Name: "Ravi", Email: "ravi@test.com", Mobile: "1"}}},
	{Name: "Meera", Email: "meera@test.com", TeamName: "Green Loop", Topic: "Sustainability"},
}

func TestRouter_AdminCachedFirst(t *testing.T) {
	backend := &fakeBackend{roster: roster}
	session := &fakeSession{admin: true, cached: roster[:1]}
	router := dashboard.NewRouter(backend)

	view := router.Resolve(context.Background(), session)
	require.Equal(t, dashboard.ViewAdmin, view.Kind)
	require.True(t, view.Stale)
	require.Len(t, view.Roster, 1)
	require.Zero(t, backend.calls, "cached roster paints before any fetch")

	view = router.RefreshRoster(context.Background(), session)
	require.False(t, view.Stale)
	require.Len(t, view.Roster, 2)
	require.Len(t, session.cached, 2, "fresh roster replaces the cache")
}

func TestRouter_AdminWithoutCacheFetches(t *testing.T) {
	backend := &fakeBackend{roster: roster}
	view := dashboard.NewRouter(backend).Resolve(context.Background(), &fakeSession{admin: true})
	require.Equal(t, dashboard.ViewAdmin, view.Kind)
	require.False(t, view.Stale)
	require.Len(t, view.Roster, 2)
}

func TestRouter_AdminAuthorizationLost(t *testing.T) {
	for _, err := range []error{api.ErrUnauthorized, api.ErrForbidden} {
		t.Run(err.Error(), func(t *testing.T) {
			session := &fakeSession{admin: true, cached: roster}
			view := dashboard.NewRouter(&fakeBackend{rosterErr: err}).RefreshRoster(context.Background(), session)
			require.Equal(t, dashboard.ViewRedirect, view.Kind)
			require.Equal(t, "/login", view.RedirectTo)
			require.True(t, session.cleared)
		})
	}
}

func TestRouter_AdminOtherFailureKeepsCache(t *testing.T) {
	session := &fakeSession{admin: true, cached: roster}
	backend := &fakeBackend{rosterErr: &api.Error{Status: 502}}

	view := dashboard.NewRouter(backend).RefreshRoster(context.Background(), session)
	require.Equal(t, dashboard.ViewAdmin, view.Kind)
	require.Equal(t, roster, view.Roster)
	require.NotEmpty(t, view.Error)
	require.False(t, session.cleared)
}

func TestRouter_Participant(t *testing.T) {
	t.Run("own record", func(t *testing.T) {
		backend := &fakeBackend{user: &roster[0]}
		view := dashboard.NewRouter(backend).Resolve(context.Background(), &fakeSession{})
		require.Equal(t, dashboard.ViewParticipant, view.Kind)
		require.Equal(t, "Asha", view.User.Name)
	})

	t.Run("missing user redirects", func(t *testing.T) {
		session := &fakeSession{}
		view := dashboard.NewRouter(&fakeBackend{userErr: api.ErrNoUser}).Resolve(context.Background(), session)
		require.Equal(t, dashboard.ViewRedirect, view.Kind)
		require.True(t, session.cleared)
	})

	t.Run("transport failure stays", func(t *testing.T) {
		session := &fakeSession{}
		view := dashboard.NewRouter(&fakeBackend{userErr: errors.New("dial tcp")}).Resolve(context.Background(), session)
		require.Equal(t, dashboard.ViewParticipant, view.Kind)
		require.NotEmpty(t, view.Error)
		require.False(t, session.cleared)
	})
}

func TestFilter(t *testing.T) {
	require.Len(t, dashboard.Filter(roster, ""), 2)
	require.Equal(t, "Meera", dashboard.Filter(roster, "green")[0].Name)
	require.Equal(t, "Asha", dashboard.Filter(roster, "ravi")[0].Name, "member fields are searched")
	require.Empty(t, dashboard.Filter(roster, "zzz"))
}

func TestExpanded(t *testing.T) {
	e := dashboard.NewExpanded("Asha@test.com", "")
	require.True(t, e.Has("asha@test.com"))
	require.Len(t, e, 1)

	require.Empty(t, e.Toggle("asha@test.com"))
	require.ElementsMatch(t, []string{"asha@test.com", "meera@test.com"}, e.Toggle("meera@test.com"))
}

func TestRows(t *testing.T) {
	rows := dashboard.Rows(roster)
	require.Equal(t, [][]string{
		{"1", "Leader", "Asha", "asha@test.com", "", "", "Byte Riders", "2", "EdTech", ""},
		{"", "Member", "Ravi", "ravi@test.com", "1", "", "", "", "", ""},
		{"2", "Leader", "Meera", "meera@test.com", "", "", "Green Loop", "1", "Sustainability", ""},
	}, rows)
}

func TestExport(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, dashboard.Export(&buf, roster))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(dashboard.ExportSheet)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	require.Equal(t, "S.No", rows[0][0])
	require.Equal(t, []string{"1", "Leader", "Asha", "asha@test.com"}, rows[1][:4])
	require.Equal(t, "2", rows[1][7], "team size counts the leader")
	require.Equal(t, []string{"", "Member", "Ravi", "ravi@test.com", "1"}, rows[2][:5])
	require.Equal(t, "Leader", rows[3][1])
}
