package server

import (
	"bytes"
	"fmt"
	"net/http"
	"net/url"

	"github.com/jrsteele09/ideathon-portal/dashboard"
	"github.com/jrsteele09/ideathon-portal/users"
)

type rosterRow struct {
	No        int
	User      users.User
	TeamSize  int
	Expanded  bool
	ToggleURL string
}

type adminView struct {
	Query      string
	Rows       []rosterRow
	Total      int
	Stale      bool
	Error      string
	ExportURL  string
	RefreshURL string
}

type participantView struct {
	User  *users.User
	Error string
}

type dashboardView struct {
	Admin       *adminView
	Participant *participantView
}

func newAdminView(r *http.Request, v dashboard.View) *adminView {
	query := r.URL.Query().Get("q")
	expandedList := r.URL.Query()["expand"]
	expanded := dashboard.NewExpanded(expandedList...)

	filtered := dashboard.Filter(v.Roster, query)
	rows := make([]rosterRow, len(filtered))
	for i, u := range filtered {
		rows[i] = rosterRow{
			No:        i + 1,
			User:      u,
			TeamSize:  u.TeamSize(),
			Expanded:  expanded.Has(u.Email),
			ToggleURL: dashboardURL(RouteDashboard, query, expanded.Toggle(u.Email)),
		}
	}
	return &adminView{
		Query:      query,
		Rows:       rows,
		Total:      len(v.Roster),
		Stale:      v.Stale,
		Error:      v.Error,
		ExportURL:  dashboardURL(RouteDashboardExport, query, nil),
		RefreshURL: dashboardURL(RouteDashboardRoster, query, expandedList),
	}
}

func dashboardURL(path, query string, expand []string) string {
	values := url.Values{}
	if query != "" {
		values.Set("q", query)
	}
	for _, email := range expand {
		values.Add("expand", email)
	}
	if len(values) == 0 {
		return path
	}
	return path + "?" + values.Encode()
}

// DashboardHandler shows the admin roster or the participant's registration.
// An admin with a cached roster sees it at once; the page then asks RosterHandler for a fresh one.
func (s *Server) DashboardHandler() http.HandlerFunc {
	tmpl := mustParsePage("dashboard.html", "roster.html")
	return func(w http.ResponseWriter, r *http.Request) {
		store := sessionFrom(r)
		view := s.dashboard.Resolve(r.Context(), store)

		var data dashboardView
		switch view.Kind {
		case dashboard.ViewRedirect:
			redirect(w, r, view.RedirectTo)
			return
		case dashboard.ViewAdmin:
			data.Admin = newAdminView(r, view)
		default:
			data.Participant = &participantView{User: view.User, Error: view.Error}
		}
		renderPage(w, r, tmpl, s.newPage(r, "Dashboard", data))
	}
}

// RosterHandler refetches the admin roster and renders just the roster fragment.
func (s *Server) RosterHandler() http.HandlerFunc {
	tmpl, err := ParseTemplate("roster.html")
	if err != nil {
		panic("Failed to parse roster template: " + err.Error())
	}
	return func(w http.ResponseWriter, r *http.Request) {
		store := sessionFrom(r)
		if !store.IsAdmin(r.Context()) {
			http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
			return
		}
		view := s.dashboard.RefreshRoster(r.Context(), store)
		if view.Kind == dashboard.ViewRedirect {
			redirect(w, r, view.RedirectTo)
			return
		}
		render(w, r, tmpl, "roster", http.StatusOK, newAdminView(r, view))
	}
}

// ExportHandler downloads the roster already held in the session as a spreadsheet, filtered
// by q like the page. It makes no backend call.
func (s *Server) ExportHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		store := sessionFrom(r)
		if !store.IsAdmin(ctx) {
			http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
			return
		}
		roster, _ := store.CachedRoster(ctx)
		roster = dashboard.Filter(roster, r.URL.Query().Get("q"))

		var buf bytes.Buffer
		if err := dashboard.Export(&buf, roster); err != nil {
			logError(r.Method, r.URL.Path, err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", dashboard.ExportMIME)
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", dashboard.ExportFileName))
		_, _ = buf.WriteTo(w)
	}
}
