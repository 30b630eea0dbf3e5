package flow_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/jrsteele09/ideathon-portal/api"
	"github.com/jrsteele09/ideathon-portal/flow"
	"github.com/jrsteele09/ideathon-portal/flow/flowfake"
	"github.com/jrsteele09/ideathon-portal/sessions"
	"github.com/jrsteele09/ideathon-portal/users"
	"github.com/stretchr/testify/require"
)

type loginFixture struct {
	api     *flowfake.FakeAPI
	session *flowfake.FakeSession
	clock   *clock.Mock
	flow    *flow.LoginFlow
}

func testOptions(mock *clock.Mock) flow.Options {
	opts := flow.DefaultOptions()
	opts.Clock = mock
	return opts
}

func setupLoginFixture(t *testing.T) *loginFixture {
	t.Helper()
	backend := flowfake.NewFakeAPI()
	session := &flowfake.FakeSession{}
	mock := clock.NewMock()
	f := flow.NewLoginFlow(backend, session, testOptions(mock))
	t.Cleanup(f.Close)
	return &loginFixture{api: backend, session: session, clock: mock, flow: f}
}

// atOTPStep sends a code for a@test.com and types code.
func (fx *loginFixture) atOTPStep(t *testing.T, code string) {
	t.Helper()
	fx.flow.SendOTP(context.Background(), "a@test.com")
	require.Equal(t, flow.LoginOTPEntry, fx.flow.Step())
	fx.flow.Entry().HandlePaste(code, 0)
}

func TestLoginFlow_EmailValidation(t *testing.T) {
	tests := []struct {
		email string
		want  string
	}{
		{"", flow.MsgEmailRequired},
		{"   ", flow.MsgEmailRequired},
		{"not-an-email", flow.MsgEmailInvalid},
		{"a@b", flow.MsgEmailInvalid},
	}
	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			fx := setupLoginFixture(t)
			fx.flow.SendOTP(context.Background(), tt.email)
			require.Equal(t, tt.want, fx.flow.Error())
			require.Equal(t, flow.LoginEmailEntry, fx.flow.Step())
			require.Zero(t, fx.api.CallCount("send-otp"), "validation never reaches the backend")
		})
	}
}

func TestLoginFlow_SendOTPFailures(t *testing.T) {
	tests := []struct {
		name   string
		result api.SendOTPResult
		err    error
		want   string
	}{
		{"not registered", api.EmailNotRegistered{}, nil, flow.MsgEmailNotRegistered},
		{"server error", api.ServerError{}, nil, flow.MsgServerError},
		{"rejected with detail", api.Rejected{Message: "Too many attempts"}, nil, "Too many attempts"},
		{"rejected without detail", api.Rejected{}, nil, flow.MsgSendFailed},
		{"transport", nil, api.ErrTransport, flow.MsgSomethingWrong},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fx := setupLoginFixture(t)
			fx.api.SendResult = tt.result
			fx.api.SendErr = tt.err

			fx.flow.SendOTP(context.Background(), "a@test.com")
			require.Equal(t, flow.LoginEmailEntry, fx.flow.Step())
			require.Equal(t, tt.want, fx.flow.Error())
			require.False(t, fx.flow.Cooldown().Active())
		})
	}
}

func TestLoginFlow_HappyPath(t *testing.T) {
	fx := setupLoginFixture(t)
	ctx := context.Background()

	fx.flow.SendOTP(ctx, "a@test.com")
	require.Equal(t, flow.LoginOTPEntry, fx.flow.Step())
	require.Equal(t, 60, fx.flow.Cooldown().Remaining())
	require.Equal(t, []string{"", "", "", "", "", ""}, fx.flow.Entry().Digits())

	fx.flow.Entry().HandlePaste("123456", 0)
	fx.flow.VerifyOTP(ctx)

	require.Equal(t, flow.LoginSuccess, fx.flow.Step())
	require.Equal(t, "tok123", fx.session.Token)
	require.Equal(t, "a@test.com", fx.session.Email)
	require.False(t, fx.session.LegacyAdmin)
	require.Equal(t, "/dashboard", fx.flow.RedirectTo())
	require.Equal(t, 2*time.Second, fx.flow.RedirectDelay())
	require.False(t, fx.flow.Cooldown().Running())

	fx.flow.ChangeEmail()
	require.Equal(t, flow.LoginSuccess, fx.flow.Step(), "success is final")
}

func TestLoginFlow_AdminLogin(t *testing.T) {
	fx := setupLoginFixture(t)
	roster := []users.User{{Name: "Asha", Email: "asha@test.com"}}
	fx.api.LoginResult = api.AdminLogin{Users: roster}
	fx.atOTPStep(t, "123456")

	fx.flow.VerifyOTP(context.Background())
	require.Equal(t, flow.LoginSuccess, fx.flow.Step())
	require.True(t, fx.flow.AdminLogin())
	require.True(t, fx.session.LegacyAdmin)
	require.Equal(t, roster, fx.session.Roster)
	require.Empty(t, fx.session.Token, "admin login stores no token")
}

type profileFunc func(ctx context.Context) (*users.User, error)

func (f profileFunc) Me(ctx context.Context) (*users.User, error) { return f(ctx) }

func TestLoginFlow_VerifiedWithoutTokenKeepsNoStaleToken(t *testing.T) {
	ctx := context.Background()
	repo := sessions.NewInMemoryRepo()
	require.NoError(t, repo.Set(ctx, "profile:p1", sessions.KeyAuthToken, "old.tok.en"))
	require.NoError(t, repo.Set(ctx, "profile:p1", sessions.KeyUserEmail, "old@test.com"))

	var fetched atomic.Int32
	manager := sessions.NewManager(repo, profileFunc(func(context.Context) (*users.User, error) {
		fetched.Add(1)
		return &users.User{Email: "old@test.com"}, nil
	}))
	store := manager.Open(sessions.Handle{Profile: "p1", Tab: "t1"})

	backend := flowfake.NewFakeAPI()
	backend.LoginResult = api.LoginVerified{Token: ""}
	f := flow.NewLoginFlow(backend, store, testOptions(clock.NewMock()))
	t.Cleanup(f.Close)

	f.SendOTP(ctx, "new@test.com")
	f.Entry().HandlePaste("123456", 0)
	f.VerifyOTP(ctx)
	require.Equal(t, flow.LoginSuccess, f.Step())

	require.Empty(t, store.Token(ctx))
	require.Eventually(t, func() bool { return !store.IsLoading() }, time.Second, 5*time.Millisecond)
	require.Nil(t, store.User(), "the previous account is never loaded")
	require.Zero(t, fetched.Load())
}

func TestLoginFlow_IncompleteCodeNotSent(t *testing.T) {
	fx := setupLoginFixture(t)
	fx.atOTPStep(t, "123")

	fx.flow.VerifyOTP(context.Background())
	require.Zero(t, fx.api.CallCount("login"))
	require.Equal(t, "Please enter the complete 6-digit code.", fx.flow.Entry().Error())
}

func TestLoginFlow_WrongCode(t *testing.T) {
	fx := setupLoginFixture(t)
	fx.api.LoginResult = api.IncorrectCode{}
	fx.atOTPStep(t, "123456")

	fx.clock.Add(time.Second)
	require.Eventually(t, func() bool { return fx.flow.Cooldown().Remaining() == 59 }, time.Second, time.Millisecond)

	fx.flow.VerifyOTP(context.Background())
	require.Equal(t, flow.LoginOTPEntry, fx.flow.Step())
	require.Equal(t, []string{"", "", "", "", "", ""}, fx.flow.Entry().Digits())
	require.Equal(t, 0, fx.flow.Entry().Focus())
	require.Equal(t, flow.MsgIncorrectCode, fx.flow.Entry().Error())
	require.Equal(t, 59, fx.flow.Cooldown().Remaining(), "cooldown keeps counting")
	require.True(t, fx.flow.Cooldown().Running())
}

func TestLoginFlow_ExpiredCode(t *testing.T) {
	fx := setupLoginFixture(t)
	fx.api.LoginResult = api.CodeExpired{}
	fx.atOTPStep(t, "123456")

	fx.flow.VerifyOTP(context.Background())
	require.Equal(t, flow.LoginOTPEntry, fx.flow.Step())
	require.Equal(t, []string{"", "", "", "", "", ""}, fx.flow.Entry().Digits())
	require.Equal(t, 0, fx.flow.Cooldown().Remaining())
	require.Equal(t, flow.MsgCodeExpired, fx.flow.Entry().Error())

	fx.flow.Resend(context.Background())
	require.Equal(t, 2, fx.api.CallCount("send-otp"), "resend is available at once")
	require.Equal(t, 60, fx.flow.Cooldown().Remaining())
}

func TestLoginFlow_VerifyFailuresKeepDigits(t *testing.T) {
	tests := []struct {
		name   string
		result api.LoginResult
		err    error
		want   string
	}{
		{"server error", api.ServerError{}, nil, flow.MsgServerError},
		{"unrecognized", api.Unrecognized{Result: "weird"}, nil, flow.MsgUnexpected},
		{"transport", nil, api.ErrTransport, flow.MsgSomethingWrong},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fx := setupLoginFixture(t)
			fx.api.LoginResult = tt.result
			fx.api.LoginErr = tt.err
			fx.atOTPStep(t, "123456")

			fx.flow.VerifyOTP(context.Background())
			require.Equal(t, flow.LoginOTPEntry, fx.flow.Step())
			require.Equal(t, "123456", fx.flow.Entry().Code())
			require.Equal(t, tt.want, fx.flow.Entry().Error())
		})
	}
}

func TestLoginFlow_SessionWriteFailure(t *testing.T) {
	fx := setupLoginFixture(t)
	fx.session.Err = errors.New("disk full")
	fx.atOTPStep(t, "123456")

	fx.flow.VerifyOTP(context.Background())
	require.Equal(t, flow.LoginOTPEntry, fx.flow.Step())
	require.Equal(t, flow.MsgSomethingWrong, fx.flow.Entry().Error())
}

func TestLoginFlow_ResendRespectsCooldown(t *testing.T) {
	fx := setupLoginFixture(t)
	fx.atOTPStep(t, "")

	fx.flow.Resend(context.Background())
	require.Equal(t, 1, fx.api.CallCount("send-otp"))

	fx.flow.Cooldown().Clear()
	fx.flow.Resend(context.Background())
	require.Equal(t, 2, fx.api.CallCount("send-otp"))
}

func TestLoginFlow_ChangeEmail(t *testing.T) {
	fx := setupLoginFixture(t)
	fx.atOTPStep(t, "12")
	fx.flow.Entry().SetError("x")

	fx.flow.ChangeEmail()
	require.Equal(t, flow.LoginEmailEntry, fx.flow.Step())
	require.Equal(t, []string{"", "", "", "", "", ""}, fx.flow.Entry().Digits())
	require.Empty(t, fx.flow.Entry().Error())
	require.Equal(t, "a@test.com", fx.flow.Email(), "email stays prefilled")

	fx.flow.SendOTP(context.Background(), "b@test.com")
	require.Equal(t, flow.LoginOTPEntry, fx.flow.Step())
	require.Equal(t, 60, fx.flow.Cooldown().Remaining())
}
