package server

import (
	"net/http"

	"github.com/jrsteele09/ideathon-portal/sessions"
)

// SessionMiddleware binds the session store of the requesting browser to the request context,
// issuing handle cookies on first contact.
func (s *Server) SessionMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store := s.sessions.Open(s.cookies.handle(w, r))
		next(w, r.WithContext(sessions.NewContext(r.Context(), store)))
	}
}

// ProtectedGate lets a request through only for a confirmed profile (or a legacy admin
// session). While a profile fetch is in flight it answers with a self-refreshing loading page.
func (s *Server) ProtectedGate(next http.HandlerFunc) http.HandlerFunc {
	loading := s.LoadingHandler()
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		store := sessionFrom(r)
		if store.IsLoading() {
			loading(w, r)
			return
		}
		store.EnsureUser(ctx)
		if store.IsAuthenticated() || store.LegacyAdmin(ctx) {
			next(w, r)
			return
		}
		redirectToLogin(w, r)
	}
}

// GuestGate keeps signed-in visitors away from the login and registration pages.
func (s *Server) GuestGate(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		store := sessionFrom(r)
		if !store.IsExpired(ctx) || store.LegacyAdmin(ctx) {
			redirect(w, r, RouteDashboard)
			return
		}
		next(w, r)
	}
}

// sessionFrom returns the store bound by SessionMiddleware.
func sessionFrom(r *http.Request) *sessions.Store {
	store := sessions.FromContext(r.Context())
	if store == nil {
		panic("server: route registered without SessionMiddleware")
	}
	return store
}

func (s *Server) pageMiddleware(mw ...func(http.HandlerFunc) http.HandlerFunc) []func(http.HandlerFunc) http.HandlerFunc {
	return s.HTMLMiddleWare(append([]func(http.HandlerFunc) http.HandlerFunc{s.SessionMiddleware}, mw...)...)
}
