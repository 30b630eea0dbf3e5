// Package flow drives the login and registration screens: it validates input, calls the
// backend, interprets its result codes and owns the OTP entry of each screen.
//
// A flow is not safe for concurrent use. Whoever owns it (one request at a time in the
// server, the prompt loop in the CLI) serializes every call.
package flow

import (
	"context"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/jrsteele09/ideathon-portal/api"
	"github.com/jrsteele09/ideathon-portal/otp"
	"github.com/jrsteele09/ideathon-portal/users"
)

// API is the part of the backend the flows call.
type API interface {
	SendOTP(ctx context.Context, email string) (api.SendOTPResult, error)
	Login(ctx context.Context, email, code string) (api.LoginResult, error)
	VerifyOTP(ctx context.Context, email, code string) (api.VerifyResult, error)
	Register(ctx context.Context, reg api.Registration) error
}

// SessionWriter records a successful login.
type SessionWriter interface {
	Login(ctx context.Context, rawToken, email string) error
	GrantLegacyAdmin(ctx context.Context, email string, roster []users.User) error
}

// OTPFlow is what the digit entry endpoints need from either flow.
type OTPFlow interface {
	Entry() *otp.Entry
	Cooldown() *otp.Cooldown
	Close()
}

const DashboardPath = "/dashboard"

type Options struct {
	OTPLength    int
	Cooldown     time.Duration
	SuccessDelay time.Duration
	Clock        clock.Clock
}

func DefaultOptions() Options {
	return Options{
		OTPLength:    otp.DefaultLength,
		Cooldown:     otp.DefaultCooldown,
		SuccessDelay: 2 * time.Second,
		Clock:        clock.New(),
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.OTPLength <= 0 {
		o.OTPLength = d.OTPLength
	}
	if o.Cooldown <= 0 {
		o.Cooldown = d.Cooldown
	}
	if o.SuccessDelay <= 0 {
		o.SuccessDelay = d.SuccessDelay
	}
	if o.Clock == nil {
		o.Clock = d.Clock
	}
	return o
}

func (o Options) newCooldown() *otp.Cooldown {
	return otp.NewCooldown(o.Cooldown, otp.WithClock(o.Clock))
}
