package flow

import (
	"context"
	"strings"
	"time"

	"github.com/jrsteele09/ideathon-portal/api"
	"github.com/jrsteele09/ideathon-portal/otp"
	"github.com/jrsteele09/ideathon-portal/users"
	"github.com/rs/zerolog/log"
)

type LoginStep int

const (
	LoginEmailEntry LoginStep = iota
	LoginOTPEntry
	LoginSuccess
)

func (s LoginStep) String() string {
	switch s {
	case LoginEmailEntry:
		return "email"
	case LoginOTPEntry:
		return "otp"
	case LoginSuccess:
		return "success"
	default:
		return "unknown"
	}
}

// LoginFlow is EmailEntry -> OTPEntry -> Success, with ChangeEmail going back from OTPEntry.
// Success is final.
type LoginFlow struct {
	api     API
	session SessionWriter
	opts    Options

	step     LoginStep
	email    string
	err      string
	admin    bool
	entry    *otp.Entry
	cooldown *otp.Cooldown
}

func NewLoginFlow(backend API, session SessionWriter, opts Options) *LoginFlow {
	opts = opts.withDefaults()
	return &LoginFlow{
		api:      backend,
		session:  session,
		opts:     opts,
		entry:    otp.NewEntry(opts.OTPLength),
		cooldown: opts.newCooldown(),
	}
}

func (f *LoginFlow) Step() LoginStep { return f.step }
func (f *LoginFlow) Email() string { return f.email }
func (f *LoginFlow) Entry() *otp.Entry { return f.entry }
func (f *LoginFlow) Cooldown() *otp.Cooldown { return f.cooldown }
func (f *LoginFlow) RedirectTo() string { return DashboardPath }
func (f *LoginFlow) RedirectDelay() time.Duration { return f.opts.SuccessDelay }

// Error is the message for the email step. OTP step messages live on Entry.
func (f *LoginFlow) Error() string { return f.err }

// AdminLogin reports that Success was reached through the tokenless admin answer.
func (f *LoginFlow) AdminLogin() bool { return f.admin }

// SendOTP validates email and asks the backend for a code. Success moves to OTPEntry.
func (f *LoginFlow) SendOTP(ctx context.Context, email string) {
	if f.step != LoginEmailEntry {
		return
	}
	email = strings.TrimSpace(email)
	f.email = email
	if email == "" {
		f.err = MsgEmailRequired
		return
	}
	if !users.ValidEmail(email) {
		f.err = MsgEmailInvalid
		return
	}
	if f.sendCode(ctx) {
		f.step = LoginOTPEntry
	}
}

// Resend asks for a new code once the cooldown has run out.
func (f *LoginFlow) Resend(ctx context.Context) {
	if f.step != LoginOTPEntry || f.cooldown.Active() {
		return
	}
	f.sendCode(ctx)
}

func (f *LoginFlow) sendCode(ctx context.Context) bool {
	res, err := f.api.SendOTP(ctx, f.email)
	if err != nil {
		log.Err(err).Str("email", f.email).Msg("send-otp failed")
		f.fail(MsgSomethingWrong)
		return false
	}

	switch r := res.(type) {
	case api.OTPSent:
		f.err = ""
		f.entry.Reset()
		f.cooldown.Start()
		return true
	case api.EmailNotRegistered:
		f.fail(MsgEmailNotRegistered)
	case api.ServerError:
		f.fail(MsgServerError)
	case api.Rejected:
		f.fail(messageOr(r.Message, MsgSendFailed))
	default:
		f.fail(MsgUnexpected)
	}
	return false
}

// VerifyOTP submits the entered code. Only a complete code is sent.
func (f *LoginFlow) VerifyOTP(ctx context.Context) {
	if f.step != LoginOTPEntry {
		return
	}
	if !f.entry.IsComplete() {
		f.entry.SetError(msgIncompleteCode(f.entry.Len()))
		return
	}

	res, err := f.api.Login(ctx, f.email, f.entry.Code())
	if err != nil {
		log.Err(err).Str("email", f.email).Msg("login failed")
		f.entry.SetError(MsgSomethingWrong)
		return
	}

	switch r := res.(type) {
	case api.LoginVerified:
		if err := f.session.Login(ctx, r.Token, f.email); err != nil {
			log.Err(err).Msg("saving session failed")
			f.entry.SetError(MsgSomethingWrong)
			return
		}
		f.succeed()
	case api.AdminLogin:
		if err := f.session.GrantLegacyAdmin(ctx, f.email, r.Users); err != nil {
			log.Err(err).Msg("saving admin session failed")
			f.entry.SetError(MsgSomethingWrong)
			return
		}
		f.admin = true
		f.succeed()
	case api.IncorrectCode:
		f.entry.Reset()
		f.entry.SetError(MsgIncorrectCode)
	case api.CodeExpired:
		f.entry.Reset()
		f.cooldown.Clear()
		f.entry.SetError(MsgCodeExpired)
	case api.ServerError:
		f.entry.SetError(MsgServerError)
	case api.Unrecognized:
		log.Warn().Str("result", r.Result).Msg("unrecognized login result")
		f.entry.SetError(MsgUnexpected)
	default:
		f.entry.SetError(MsgUnexpected)
	}
}

// ChangeEmail returns to the email step. The running cooldown is left alone; the next send
// restarts it.
func (f *LoginFlow) ChangeEmail() {
	if f.step != LoginOTPEntry {
		return
	}
	f.entry.Reset()
	f.err = ""
	f.step = LoginEmailEntry
}

// Close cancels the cooldown ticker. Safe to call more than once.
func (f *LoginFlow) Close() {
	f.cooldown.Stop()
}

func (f *LoginFlow) succeed() {
	f.step = LoginSuccess
	f.cooldown.Stop()
}

func (f *LoginFlow) fail(msg string) {
	if f.step == LoginOTPEntry {
		f.entry.SetError(msg)
		return
	}
	f.err = msg
}

func messageOr(msg, fallback string) string {
	if strings.TrimSpace(msg) == "" {
		return fallback
	}
	return msg
}
