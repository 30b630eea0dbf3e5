package server

import (
	"fmt"
	"net/http"

	"github.com/jrsteele09/ideathon-portal/flow"
	"github.com/jrsteele09/ideathon-portal/otp"
	"github.com/jrsteele09/ideathon-portal/server/flowrepo"
	"github.com/jrsteele09/ideathon-portal/sessions"
)

// otpView is the digit entry as templates and the OTP endpoint see it.
type otpView struct {
	Digits   []string `json:"digits"`
	Focus    int      `json:"focus"`
	Complete bool     `json:"complete"`
	Error    string   `json:"error,omitempty"`
	Cooldown int      `json:"cooldown"`

	Flow      flowrepo.Kind `json:"-"`
	VerifyURL string        `json:"-"`
	ResendURL string        `json:"-"`
}

func newOTPView(f flow.OTPFlow, kind flowrepo.Kind) otpView {
	entry := f.Entry()
	v := otpView{
		Digits:   entry.Digits(),
		Focus:    entry.Focus(),
		Complete: entry.IsComplete(),
		Error:    entry.Error(),
		Cooldown: f.Cooldown().Remaining(),
		Flow:     kind,
	}
	switch kind {
	case flowrepo.KindLogin:
		v.VerifyURL, v.ResendURL = RouteLoginVerify, RouteLoginResend
	case flowrepo.KindRegister:
		v.VerifyURL, v.ResendURL = RouteRegisterVerify, RouteRegisterResend
	}
	return v
}

// applyDigits copies the d0..dN form fields into entry. A field holding more than one
// character is a paste into that box.
func applyDigits(entry *otp.Entry, r *http.Request) {
	values := make([]string, entry.Len())
	for i := range values {
		values[i] = r.PostFormValue(fmt.Sprintf("d%d", i))
		if len(values[i]) > 1 {
			entry.HandlePaste(values[i], i)
			return
		}
	}
	for i, v := range values {
		entry.SetDigit(i, v)
	}
}

func (s *Server) loginFlow(store *sessions.Store, create bool) (*flow.LoginFlow, flowrepo.Release, bool) {
	var factory func() flowrepo.Flow
	if create {
		factory = func() flowrepo.Flow { return flow.NewLoginFlow(s.api, store, s.flowOpts) }
	}
	f, release, ok := s.flows.Acquire(store.Handle().Tab, flowrepo.KindLogin, factory)
	if !ok {
		return nil, nil, false
	}
	login, ok := f.(*flow.LoginFlow)
	if !ok {
		release()
		return nil, nil, false
	}
	return login, release, true
}

func (s *Server) registrationFlow(store *sessions.Store, create bool) (*flow.RegistrationFlow, flowrepo.Release, bool) {
	var factory func() flowrepo.Flow
	if create {
		factory = func() flowrepo.Flow { return flow.NewRegistrationFlow(s.api, s.flowOpts) }
	}
	f, release, ok := s.flows.Acquire(store.Handle().Tab, flowrepo.KindRegister, factory)
	if !ok {
		return nil, nil, false
	}
	reg, ok := f.(*flow.RegistrationFlow)
	if !ok {
		release()
		return nil, nil, false
	}
	return reg, release, true
}

// otpFlow finds the flow named by the {flow} path value of the OTP endpoint.
func (s *Server) otpFlow(store *sessions.Store, kind flowrepo.Kind) (flow.OTPFlow, flowrepo.Release, bool) {
	switch kind {
	case flowrepo.KindLogin:
		if f, release, ok := s.loginFlow(store, false); ok {
			return f, release, true
		}
	case flowrepo.KindRegister:
		if f, release, ok := s.registrationFlow(store, false); ok {
			return f, release, true
		}
	}
	return nil, nil, false
}
