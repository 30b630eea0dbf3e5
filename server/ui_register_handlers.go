package server

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/jrsteele09/ideathon-portal/flow"
	"github.com/jrsteele09/ideathon-portal/server/flowrepo"
	"github.com/jrsteele09/ideathon-portal/users"
)

type registerView struct {
	Step          string
	Error         string
	Leader        flow.Leader
	OTPSent       bool
	EmailVerified bool
	OTP           otpView

	TeamName  string
	TeamSize  int
	TeamSizes []int
	Members   []users.TeamMember

	Idea   flow.Idea
	Topics []string

	RedirectTo    string
	RedirectDelay time.Duration
}

func newRegisterView(f *flow.RegistrationFlow) registerView {
	return registerView{
		Step:          f.Step().String(),
		Error:         f.Error(),
		Leader:        f.Leader(),
		OTPSent:       f.OTPSent(),
		EmailVerified: f.EmailVerified(),
		OTP:           newOTPView(f, flowrepo.KindRegister),
		TeamName:      f.TeamName(),
		TeamSize:      f.TeamSize(),
		TeamSizes:     flow.TeamSizeOptions(),
		Members:       f.Members(),
		Idea:          f.Idea(),
		Topics:        flow.Topics,
		RedirectTo:    f.RedirectTo(),
		RedirectDelay: f.RedirectDelay(),
	}
}

func (s *Server) RegisterPageHandler() http.HandlerFunc {
	tmpl := mustParsePage("register.html", "otp.html")
	return func(w http.ResponseWriter, r *http.Request) {
		store := sessionFrom(r)
		f, release, ok := s.registrationFlow(store, true)
		if !ok {
			http.Error(w, "session unavailable", http.StatusBadRequest)
			return
		}
		view := newRegisterView(f)
		release()
		renderPage(w, r, tmpl, s.newPage(r, "Register", view))
	}
}

// registerAction wraps one POST action on the registration flow, ending on the registration
// page or, once submitted, on the confirmation screen.
func (s *Server) registerAction(action func(r *http.Request, f *flow.RegistrationFlow)) http.HandlerFunc {
	tmpl := mustParsePage("register.html", "otp.html")
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "bad form", http.StatusBadRequest)
			return
		}
		store := sessionFrom(r)
		f, release, ok := s.registrationFlow(store, true)
		if !ok {
			http.Error(w, "session unavailable", http.StatusBadRequest)
			return
		}
		action(r, f)
		view := newRegisterView(f)
		done := f.Step() == flow.RegSubmitted
		release()

		if !done {
			redirect(w, r, RouteRegister)
			return
		}
		s.flows.Delete(store.Handle().Tab, flowrepo.KindRegister)
		p := s.newPage(r, "Registered", view)
		p.redirectAfter(view.RedirectTo, view.RedirectDelay)
		renderPage(w, r, tmpl, p)
	}
}

// RegisterLeaderHandler saves the leader details and continues: a code is sent for an
// unverified email, a verified one goes straight to the team step.
func (s *Server) RegisterLeaderHandler() http.HandlerFunc {
	return s.registerAction(func(r *http.Request, f *flow.RegistrationFlow) {
		f.SetLeader(flow.Leader{
			Name:      r.PostFormValue("name"),
			Email:     r.PostFormValue("email"),
			Mobile:    r.PostFormValue("mobile"),
			Institute: r.PostFormValue("institute"),
		})
		f.Continue(r.Context())
	})
}

func (s *Server) RegisterVerifyHandler() http.HandlerFunc {
	return s.registerAction(func(r *http.Request, f *flow.RegistrationFlow) {
		if !f.OTPSent() {
			return
		}
		applyDigits(f.Entry(), r)
		f.VerifyOTP(r.Context())
	})
}

func (s *Server) RegisterResendHandler() http.HandlerFunc {
	return s.registerAction(func(r *http.Request, f *flow.RegistrationFlow) {
		f.Resend(r.Context())
	})
}

// RegisterTeamHandler saves the team step. action is "resize", "back" or "next".
func (s *Server) RegisterTeamHandler() http.HandlerFunc {
	return s.registerAction(func(r *http.Request, f *flow.RegistrationFlow) {
		if f.Step() != flow.RegTeamDetails {
			return
		}
		f.SetTeamName(r.PostFormValue("teamName"))
		for i := range f.Members() {
			f.SetMember(i, users.TeamMember{
				Name:   r.PostFormValue(fmt.Sprintf("member%d_name", i)),
				Email:  r.PostFormValue(fmt.Sprintf("member%d_email", i)),
				Mobile: r.PostFormValue(fmt.Sprintf("member%d_mobile", i)),
			})
		}
		if size, err := strconv.Atoi(r.PostFormValue("teamSize")); err == nil && size != f.TeamSize() {
			if err := f.SetTeamSize(size); err != nil {
				return
			}
		}

		switch r.PostFormValue("action") {
		case "back":
			f.Back()
		case "next":
			f.NextToIdea()
		}
	})
}

// RegisterIdeaHandler saves the idea step. action is "back" or "submit".
func (s *Server) RegisterIdeaHandler() http.HandlerFunc {
	return s.registerAction(func(r *http.Request, f *flow.RegistrationFlow) {
		f.SetIdea(flow.Idea{
			Topic:       r.PostFormValue("topic"),
			Description: r.PostFormValue("ideaDescription"),
		})
		switch r.PostFormValue("action") {
		case "back":
			f.Back()
		case "submit":
			f.Submit(r.Context())
		}
	})
}
