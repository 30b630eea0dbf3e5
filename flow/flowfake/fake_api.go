// Package flowfake has hand written doubles for the flow dependencies.
package flowfake

import (
	"context"
	"sync"

	"github.com/jrsteele09/ideathon-portal/api"
	"github.com/jrsteele09/ideathon-portal/users"
)

// Call records one backend call.
type Call struct {
	Method string
	Email  string
	Code   string
}

// FakeAPI returns the configured results and records every call.
type FakeAPI struct {
	mu sync.Mutex

	SendResult   api.SendOTPResult
	SendErr      error
	LoginResult  api.LoginResult
	LoginErr     error
	VerifyResult api.VerifyResult
	VerifyErr    error
	RegisterErr  error

	Calls         []Call
	Registrations []api.Registration
}

func NewFakeAPI() *FakeAPI {
	return &FakeAPI{
		SendResult:   api.OTPSent{},
		LoginResult:  api.LoginVerified{Token: "tok123"},
		VerifyResult: api.OTPVerified{},
	}
}

func (f *FakeAPI) SendOTP(_ context.Context, email string) (api.SendOTPResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls = append(f.Calls, Call{Method: "send-otp", Email: email})
	return f.SendResult, f.SendErr
}

func (f *FakeAPI) Login(_ context.Context, email, code string) (api.LoginResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls = append(f.Calls, Call{Method: "login", Email: email, Code: code})
	return f.LoginResult, f.LoginErr
}

func (f *FakeAPI) VerifyOTP(_ context.Context, email, code string) (api.VerifyResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls = append(f.Calls, Call{Method: "verify-otp", Email: email, Code: code})
	return f.VerifyResult, f.VerifyErr
}

func (f *FakeAPI) Register(_ context.Context, reg api.Registration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls = append(f.Calls, Call{Method: "reg", Email: reg.Email})
	if f.RegisterErr == nil {
		f.Registrations = append(f.Registrations, reg)
	}
	return f.RegisterErr
}

// CallCount counts calls to method.
func (f *FakeAPI) CallCount(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.Calls {
		if c.Method == method {
			n++
		}
	}
	return n
}

// FakeSession records what a flow wrote to the session.
type FakeSession struct {
	mu sync.Mutex

	Token       string
	Email       string
	AdminEmail  string
	Roster      []users.User
	LegacyAdmin bool
	Err         error
}

func (s *FakeSession) Login(_ context.Context, rawToken, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	s.Token = rawToken
	s.Email = email
	return nil
}

func (s *FakeSession) GrantLegacyAdmin(_ context.Context, email string, roster []users.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	s.LegacyAdmin = true
	s.AdminEmail = email
	s.Roster = roster
	return nil
}
