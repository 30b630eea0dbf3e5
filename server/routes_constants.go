package server

// Route path constants
// All application routes are defined here to ensure consistency and prevent typos
const (
	RouteIndex = "/"

	// Login
	RouteLogin            = "/login"
	RouteLoginSendOTP     = "/auth/login/send-otp"
	RouteLoginVerify      = "/auth/login/verify"
	RouteLoginResend      = "/auth/login/resend"
	RouteLoginChangeEmail = "/auth/login/change-email"
	RouteAuthLogout       = "/auth/logout"

	// Registration
	RouteRegister       = "/register"
	RouteRegisterLeader = "/auth/register/leader"
	RouteRegisterVerify = "/auth/register/verify"
	RouteRegisterResend = "/auth/register/resend"
	RouteRegisterTeam   = "/auth/register/team"
	RouteRegisterIdea   = "/auth/register/idea"

	// Dashboard
	RouteDashboard       = "/dashboard"
	RouteDashboardRoster = "/dashboard/roster"
	RouteDashboardExport = "/dashboard/export"

	// API Routes
	RouteAPISession = "/api/session"
	RouteAPIOTP     = "/api/otp/{flow}"
	RouteAPIAny     = "/api/{path...}"

	// Static Asset Routes (patterns)
	RouteStaticCSS = "/css/{file}"
	RouteStaticJS  = "/js/{file}"
)
