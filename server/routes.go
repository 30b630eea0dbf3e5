package server

import "net/http"

func (s *Server) initRoutes() {
	page := s.pageMiddleware
	guest := func() []func(http.HandlerFunc) http.HandlerFunc { return page(s.GuestGate) }
	protected := func() []func(http.HandlerFunc) http.HandlerFunc { return page(s.ProtectedGate) }

	s.RegisterRouteHandler("GET "+RouteIndex, ChainMiddleware(s.IndexHandler(), page()...))

	// LOGIN
	s.RegisterRouteHandler("GET "+RouteLogin, ChainMiddleware(s.LoginPageHandler(), guest()...))
	s.RegisterRouteHandler("POST "+RouteLoginSendOTP, ChainMiddleware(s.LoginSendOTPHandler(), guest()...))
	s.RegisterRouteHandler("POST "+RouteLoginVerify, ChainMiddleware(s.LoginVerifyHandler(), guest()...))
	s.RegisterRouteHandler("POST "+RouteLoginResend, ChainMiddleware(s.LoginResendHandler(), guest()...))
	s.RegisterRouteHandler("POST "+RouteLoginChangeEmail, ChainMiddleware(s.LoginChangeEmailHandler(), guest()...))
	s.RegisterRouteHandler("POST "+RouteAuthLogout, ChainMiddleware(s.LogoutHandler(), page()...))

	// REGISTRATION
	s.RegisterRouteHandler("GET "+RouteRegister, ChainMiddleware(s.RegisterPageHandler(), guest()...))
	s.RegisterRouteHandler("POST "+RouteRegisterLeader, ChainMiddleware(s.RegisterLeaderHandler(), guest()...))
	s.RegisterRouteHandler("POST "+RouteRegisterVerify, ChainMiddleware(s.RegisterVerifyHandler(), guest()...))
	s.RegisterRouteHandler("POST "+RouteRegisterResend, ChainMiddleware(s.RegisterResendHandler(), guest()...))
	s.RegisterRouteHandler("POST "+RouteRegisterTeam, ChainMiddleware(s.RegisterTeamHandler(), guest()...))
	s.RegisterRouteHandler("POST "+RouteRegisterIdea, ChainMiddleware(s.RegisterIdeaHandler(), guest()...))

	// DASHBOARD
	s.RegisterRouteHandler("GET "+RouteDashboard, ChainMiddleware(s.DashboardHandler(), protected()...))
	s.RegisterRouteHandler("GET "+RouteDashboardRoster, ChainMiddleware(s.RosterHandler(), protected()...))
	s.RegisterRouteHandler("GET "+RouteDashboardExport, ChainMiddleware(s.ExportHandler(), protected()...))

	// API routes
	s.RegisterRouteHandler("GET "+RouteAPISession, ChainMiddleware(s.SessionSummaryHandler(), s.APIMiddleware(s.SessionMiddleware)...))
	s.RegisterRouteHandler("GET "+RouteAPIOTP, ChainMiddleware(s.OTPHandler(), s.APIMiddleware(s.SessionMiddleware)...))
	s.RegisterRouteHandler("POST "+RouteAPIOTP, ChainMiddleware(s.OTPHandler(), s.APIMiddleware(s.SessionMiddleware)...))
	s.RegisterRouteHandler("OPTIONS "+RouteAPIAny, ChainMiddleware(http.NotFound, s.APIMiddleware()...))

	s.RegisterRouteHandler("GET "+RouteStaticCSS, ChainMiddleware(s.serveFileHandler(), s.StaticMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteStaticJS, ChainMiddleware(s.serveFileHandler(), s.StaticMiddleware()...))
}
