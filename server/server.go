package server

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/benbjohnson/clock"
	"github.com/jrsteele09/ideathon-portal/api"
	"github.com/jrsteele09/ideathon-portal/content"
	"github.com/jrsteele09/ideathon-portal/dashboard"
	"github.com/jrsteele09/ideathon-portal/flow"
	"github.com/jrsteele09/ideathon-portal/internal/config"
	"github.com/jrsteele09/ideathon-portal/server/flowrepo"
	"github.com/jrsteele09/ideathon-portal/sessions"
	"github.com/rs/cors"
	"github.com/rs/zerolog/log"
)

type Server struct {
	env    string // Environment (e.g., "development", "production")
	mux    *http.ServeMux
	routes []string
	config config.Config
	clock  clock.Clock

	transport http.RoundTripper
	api       *api.Client
	sessions  *sessions.Manager
	flows     flowrepo.Repo
	flowOpts  flow.Options
	cookies   *cookieJar
	dashboard *dashboard.Router
	event     *content.Event
	cors      *cors.Cors
}

type Option func(*Server)

// WithClock replaces the wall clock used by sessions and OTP cooldowns.
func WithClock(c clock.Clock) Option {
	return func(s *Server) { s.clock = c }
}

// WithAPITransport replaces the round tripper used to reach the backend API.
func WithAPITransport(rt http.RoundTripper) Option {
	return func(s *Server) { s.transport = rt }
}

func New(c config.Config, sessionRepo sessions.Repo, flowRepo flowrepo.Repo, opts ...Option) (*Server, error) {
	s := &Server{
		env:    c.GetEnv(),
		mux:    http.NewServeMux(),
		config: c,
		clock:  clock.New(),
		flows:  flowRepo,
	}
	for _, opt := range opts {
		opt(s)
	}

	event, err := content.Load(c.GetEventContentFile())
	if err != nil {
		return nil, fmt.Errorf("[Server New] failed to load event content: %w", err)
	}
	s.event = event

	cookies, err := newCookieJar(c.GetSessionSecret(), c.GetProfileMaxAge(), c.GetSecureCookies())
	if err != nil {
		return nil, fmt.Errorf("[Server New] failed to set up cookies: %w", err)
	}
	s.cookies = cookies

	clientOpts := []api.Option{api.WithSessionLookup(lookupSession)}
	if s.transport != nil {
		clientOpts = append(clientOpts, api.WithTransport(s.transport))
	}
	s.api = api.NewClient(c.GetAPIBaseURL(), c.GetAPITimeout(), clientOpts...)
	s.sessions = sessions.NewManager(sessionRepo, s.api, sessions.WithClock(s.clock))
	s.dashboard = dashboard.NewRouter(s.api)
	s.flowOpts = flow.Options{
		OTPLength:    c.GetOTPLength(),
		Cooldown:     c.GetOTPCooldown(),
		SuccessDelay: c.GetSuccessDelay(),
		Clock:        s.clock,
	}
	s.cors = cors.New(cors.Options{
		AllowedOrigins:   c.GetAllowedOrigins().List(),
		AllowedMethods:   c.GetAllowedMethods(),
		AllowedHeaders:   c.GetAllowedHeaders(),
		AllowCredentials: true,
		MaxAge:           86400,
	})

	s.initRoutes()
	s.logRoutes()

	return s, nil
}

// lookupSession hands the API client the session bound to the request context.
func lookupSession(ctx context.Context) api.Session {
	if store := sessions.FromContext(ctx); store != nil {
		return store
	}
	return nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// Sessions exposes the session manager, mostly so callers can share it with a CLI or tests.
func (s *Server) Sessions() *sessions.Manager {
	return s.sessions
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return // Skip logging in non-development environments
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)

		if len(parts) > 1 {
			logRoute(parts[0], parts[1])
		} else {
			logRoute("", parts[0])
		}
	}
}

func logRoute(method, path string) {
	log.Info().Msgf("[%-19s] %s", colourMethod(method), path)
}

func logError(method, path string, err error) {
	log.Err(err).Str("method", method).Str("path", path).Msg("request failed")
}

func colourMethod(method string) string {
	paddedMethod := fmt.Sprintf(" %-7s", method)
	if color, ok := methodColors[method]; ok {
		return color + paddedMethod + ResetColor
	}
	return Gray + paddedMethod + ResetColor
}
