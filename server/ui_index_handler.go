package server

import (
	"net/http"
)

// IndexHandler renders the landing page from the event content.
func (s *Server) IndexHandler() http.HandlerFunc {
	tmpl := mustParsePage("index.html")

	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != RouteIndex {
			http.NotFound(w, r)
			return
		}
		renderPage(w, r, tmpl, s.newPage(r, s.event.Name, s.event))
	}
}
