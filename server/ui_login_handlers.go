package server

import (
	"net/http"
	"time"

	"github.com/jrsteele09/ideathon-portal/flow"
	"github.com/jrsteele09/ideathon-portal/server/flowrepo"
)

type loginView struct {
	Step          string
	Email         string
	Error         string
	OTP           otpView
	Admin         bool
	RedirectTo    string
	RedirectDelay time.Duration
}

func newLoginView(f *flow.LoginFlow) loginView {
	return loginView{
		Step:          f.Step().String(),
		Email:         f.Email(),
		Error:         f.Error(),
		OTP:           newOTPView(f, flowrepo.KindLogin),
		Admin:         f.AdminLogin(),
		RedirectTo:    f.RedirectTo(),
		RedirectDelay: f.RedirectDelay(),
	}
}

// LoginPageHandler renders the login flow of this tab at its current step.
func (s *Server) LoginPageHandler() http.HandlerFunc {
	tmpl := mustParsePage("login.html", "otp.html")
	return func(w http.ResponseWriter, r *http.Request) {
		store := sessionFrom(r)
		f, release, ok := s.loginFlow(store, true)
		if !ok {
			http.Error(w, "session unavailable", http.StatusBadRequest)
			return
		}
		view := newLoginView(f)
		release()
		renderPage(w, r, tmpl, s.newPage(r, "Login", view))
	}
}

// loginAction wraps one POST action on the login flow. Every action ends on the login page,
// except a verified code which shows the success screen and drops the flow.
func (s *Server) loginAction(action func(r *http.Request, f *flow.LoginFlow)) http.HandlerFunc {
	tmpl := mustParsePage("login.html", "otp.html")
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "bad form", http.StatusBadRequest)
			return
		}
		store := sessionFrom(r)
		f, release, ok := s.loginFlow(store, true)
		if !ok {
			http.Error(w, "session unavailable", http.StatusBadRequest)
			return
		}
		action(r, f)
		view := newLoginView(f)
		done := f.Step() == flow.LoginSuccess
		release()

		if !done {
			redirect(w, r, RouteLogin)
			return
		}
		s.flows.Delete(store.Handle().Tab, flowrepo.KindLogin)
		p := s.newPage(r, "Welcome", view)
		p.redirectAfter(view.RedirectTo, view.RedirectDelay)
		renderPage(w, r, tmpl, p)
	}
}

func (s *Server) LoginSendOTPHandler() http.HandlerFunc {
	return s.loginAction(func(r *http.Request, f *flow.LoginFlow) {
		f.SendOTP(r.Context(), r.PostFormValue("email"))
	})
}

func (s *Server) LoginResendHandler() http.HandlerFunc {
	return s.loginAction(func(r *http.Request, f *flow.LoginFlow) {
		f.Resend(r.Context())
	})
}

func (s *Server) LoginChangeEmailHandler() http.HandlerFunc {
	return s.loginAction(func(_ *http.Request, f *flow.LoginFlow) {
		f.ChangeEmail()
	})
}

func (s *Server) LoginVerifyHandler() http.HandlerFunc {
	return s.loginAction(func(r *http.Request, f *flow.LoginFlow) {
		if f.Step() != flow.LoginOTPEntry {
			return
		}
		applyDigits(f.Entry(), r)
		f.VerifyOTP(r.Context())
	})
}

// LogoutHandler wipes the session and every flow of this tab.
func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store := sessionFrom(r)
		if err := store.Logout(r.Context()); err != nil {
			logError(r.Method, r.URL.Path, err)
		}
		s.flows.DeleteAll(store.Handle().Tab)
		redirect(w, r, RouteLogin)
	}
}
