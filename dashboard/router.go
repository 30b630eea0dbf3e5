// Package dashboard decides what the dashboard shows for the current session: the admin roster
// or the participant's own registration.
package dashboard

import (
	"context"
	"errors"

	"github.com/jrsteele09/ideathon-portal/api"
	"github.com/jrsteele09/ideathon-portal/users"
	"github.com/rs/zerolog/log"
)

const LoginPath = "/login"

// Backend is the part of the API the dashboard reads.
type Backend interface {
	Dashboard(ctx context.Context) (*users.User, error)
	AdminUsers(ctx context.Context) ([]users.User, error)
}

// Session is the part of the session store the dashboard reads and clears.
type Session interface {
	IsAdmin(ctx context.Context) bool
	CachedRoster(ctx context.Context) ([]users.User, bool)
	CacheRoster(ctx context.Context, roster []users.User) error
	ClearAuth(ctx context.Context) error
}

type ViewKind int

const (
	ViewParticipant ViewKind = iota
	ViewAdmin
	ViewRedirect
)

type View struct {
	Kind ViewKind

	// Participant view
	User *users.User

	// Admin view. Stale is set while the roster comes from the session cache and a refetch
	// is still due.
	Roster []users.User
	Stale  bool

	// Error is a user facing message when the data could not be (re)loaded.
	Error string

	RedirectTo string
}

const (
	msgRosterRefreshFailed = "Could not refresh the registrations. Showing the last loaded list."
	msgDashboardFailed     = "Something went wrong loading your dashboard. Please try again."
)

type Router struct {
	backend Backend
}

func NewRouter(backend Backend) *Router {
	return &Router{backend: backend}
}

// Resolve picks the view. An admin with a cached roster gets it straight away, marked Stale;
// the caller follows up with RefreshRoster.
func (r *Router) Resolve(ctx context.Context, s Session) View {
	if !s.IsAdmin(ctx) {
		return r.participant(ctx, s)
	}
	if cached, ok := s.CachedRoster(ctx); ok {
		return View{Kind: ViewAdmin, Roster: cached, Stale: true}
	}
	return r.RefreshRoster(ctx, s)
}

// RefreshRoster fetches the authoritative roster. Losing authorization ends the session;
// any other failure keeps whatever roster was cached.
func (r *Router) RefreshRoster(ctx context.Context, s Session) View {
	roster, err := r.backend.AdminUsers(ctx)
	if err == nil {
		if err := s.CacheRoster(ctx, roster); err != nil {
			log.Err(err).Msg("caching admin roster failed")
		}
		return View{Kind: ViewAdmin, Roster: roster}
	}

	if errors.Is(err, api.ErrUnauthorized) || errors.Is(err, api.ErrForbidden) {
		return r.logout(ctx, s)
	}

	log.Err(err).Msg("admin roster refresh failed")
	cached, _ := s.CachedRoster(ctx)
	return View{Kind: ViewAdmin, Roster: cached, Error: msgRosterRefreshFailed}
}

func (r *Router) participant(ctx context.Context, s Session) View {
	user, err := r.backend.Dashboard(ctx)
	switch {
	case err == nil && user != nil:
		return View{Kind: ViewParticipant, User: user}
	case err == nil,
		errors.Is(err, api.ErrNoUser),
		errors.Is(err, api.ErrUnauthorized),
		errors.Is(err, api.ErrForbidden):
		return r.logout(ctx, s)
	default:
		log.Err(err).Msg("participant dashboard fetch failed")
		return View{Kind: ViewParticipant, Error: msgDashboardFailed}
	}
}

func (r *Router) logout(ctx context.Context, s Session) View {
	if err := s.ClearAuth(ctx); err != nil {
		log.Err(err).Msg("clearing session failed")
	}
	return View{Kind: ViewRedirect, RedirectTo: LoginPath}
}
