package server

import (
	"bytes"
	"embed"
	"html/template"
	"io/fs"
	"net/http"
	"time"

	"github.com/jrsteele09/ideathon-portal/sessions"
)

//go:embed templates/*
var templateFiles embed.FS

func TemplateFilesFS() fs.FS {
	subFS, err := fs.Sub(templateFiles, "templates")
	if err != nil {
		panic("Failed to create templates sub filesystem: " + err.Error())
	}
	return subFS
}

var templateFuncs = template.FuncMap{
	"inc": func(i int) int { return i + 1 },
}

// ParseTemplate parses the named templates from the embedded filesystem into one set.
// Pages include layout.html and are executed as "layout".
func ParseTemplate(names ...string) (*template.Template, error) {
	return template.New(names[0]).Funcs(templateFuncs).ParseFS(TemplateFilesFS(), names...)
}

// mustParsePage parses a page on top of the layout. Handler constructors call it up front, so
// a broken template fails at start-up.
func mustParsePage(names ...string) *template.Template {
	tmpl, err := ParseTemplate(append([]string{"layout.html"}, names...)...)
	if err != nil {
		panic("Failed to parse template " + names[0] + ": " + err.Error())
	}
	return tmpl
}

// page is what layout.html renders around every page.
type page struct {
	AppName  string
	Title    string
	SignedIn bool
	Admin    bool

	// Refresh, when set, sends the browser to RefreshTo after RefreshAfter seconds.
	RefreshTo    string
	RefreshAfter int

	Data any
}

// redirectAfter makes the page move on to target once d has passed.
func (p *page) redirectAfter(target string, d time.Duration) {
	p.RefreshTo = target
	p.RefreshAfter = max(1, int(d.Round(time.Second)/time.Second))
}

func (s *Server) newPage(r *http.Request, title string, data any) page {
	p := page{AppName: s.config.GetAppName(), Title: title, Data: data}
	if store := sessions.FromContext(r.Context()); store != nil {
		ctx := r.Context()
		p.Admin = store.IsAdmin(ctx)
		p.SignedIn = store.IsAuthenticated() || p.Admin
	}
	return p
}

// render executes name into a buffer first so a template error never leaves half a page.
func render(w http.ResponseWriter, r *http.Request, tmpl *template.Template, name string, status int, data any) {
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		logError(r.Method, r.URL.Path, err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func renderPage(w http.ResponseWriter, r *http.Request, tmpl *template.Template, p page) {
	render(w, r, tmpl, "layout", http.StatusOK, p)
}

// LoadingHandler is the page shown while a profile fetch is in flight. It reloads itself.
func (s *Server) LoadingHandler() http.HandlerFunc {
	tmpl := mustParsePage("loading.html")
	return func(w http.ResponseWriter, r *http.Request) {
		p := s.newPage(r, "Loading", nil)
		p.redirectAfter(r.URL.RequestURI(), time.Second)
		renderPage(w, r, tmpl, p)
	}
}

