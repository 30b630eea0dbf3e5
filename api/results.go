package api

import "github.com/jrsteele09/ideathon-portal/users"

// Discriminator values carried in the "result" field of backend responses.
const (
	resultEmailNotFound  = "email-not-found"
	resultNotRegistered  = "not-registered"
	resultServerError    = "server-error"
	resultOTPVerified    = "otp-verified"
	resultLoginSuccess   = "login-succes" // sic, as the backend sends it
	resultAdminOK        = "ok"
	resultOTPNotVerified = "otp-not-verified"
	resultNoOTPFound     = "no-otp-found"
)

// SendOTPResult is the outcome of a send-otp call. Variants: OTPSent, EmailNotRegistered,
// ServerError, Rejected.
type SendOTPResult interface{ isSendOTPResult() }

// LoginResult is the outcome of a login call. Variants: LoginVerified, AdminLogin,
// IncorrectCode, CodeExpired, ServerError, Unrecognized.
type LoginResult interface{ isLoginResult() }

// VerifyResult is the outcome of a registration verify-otp call. Variants: OTPVerified,
// IncorrectCode, CodeExpired, ServerError, Unrecognized.
type VerifyResult interface{ isVerifyResult() }

type OTPSent struct{}

// EmailNotRegistered covers both "email-not-found" and "not-registered".
type EmailNotRegistered struct{}

// Rejected is any other non-success send-otp answer. Message is empty when the body had none.
type Rejected struct {
	Message string
}

// LoginVerified carries the participant session token. Token may be empty.
type LoginVerified struct {
	Token string
}

// AdminLogin is the admin branch of login: no token, the full roster instead.
type AdminLogin struct {
	Users []users.User
}

type OTPVerified struct{}

type IncorrectCode struct{}

// CodeExpired means the backend has no live code for the email.
type CodeExpired struct{}

type ServerError struct {
	Message string
}

// Unrecognized holds a discriminator outside the known set.
type Unrecognized struct {
	Result string
}

func (OTPSent) isSendOTPResult()            {}
func (EmailNotRegistered) isSendOTPResult() {}
func (Rejected) isSendOTPResult()           {}
func (ServerError) isSendOTPResult()        {}

func (LoginVerified) isLoginResult() {}
func (AdminLogin) isLoginResult()    {}
func (IncorrectCode) isLoginResult() {}
func (CodeExpired) isLoginResult()   {}
func (ServerError) isLoginResult()   {}
func (Unrecognized) isLoginResult()  {}

func (OTPVerified) isVerifyResult()   {}
func (IncorrectCode) isVerifyResult() {}
func (CodeExpired) isVerifyResult()   {}
func (ServerError) isVerifyResult()   {}
func (Unrecognized) isVerifyResult()  {}

// envelope is the loose shape shared by every backend answer.
type envelope struct {
	Result  string       `json:"result"`
	Message string       `json:"message"`
	Error   string       `json:"error"`
	Token   string       `json:"token"`
	Users   []users.User `json:"users"`
	User    *users.User  `json:"user"`
}

func (e envelope) detail() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Error
}

func decodeSendOTP(status int, env envelope) SendOTPResult {
	switch env.Result {
	case resultEmailNotFound, resultNotRegistered:
		return EmailNotRegistered{}
	case resultServerError:
		return ServerError{Message: env.detail()}
	}
	if status >= 200 && status < 300 {
		return OTPSent{}
	}
	return Rejected{Message: env.detail()}
}

func decodeLogin(env envelope) LoginResult {
	switch env.Result {
	case resultOTPVerified, resultLoginSuccess:
		return LoginVerified{Token: env.Token}
	case resultAdminOK:
		return AdminLogin{Users: env.Users}
	case resultOTPNotVerified:
		return IncorrectCode{}
	case resultNoOTPFound:
		return CodeExpired{}
	case resultServerError:
		return ServerError{Message: env.detail()}
	default:
		return Unrecognized{Result: env.Result}
	}
}

func decodeVerify(env envelope) VerifyResult {
	switch env.Result {
	case resultOTPVerified:
		return OTPVerified{}
	case resultOTPNotVerified:
		return IncorrectCode{}
	case resultNoOTPFound:
		return CodeExpired{}
	case resultServerError:
		return ServerError{Message: env.detail()}
	default:
		return Unrecognized{Result: env.Result}
	}
}
