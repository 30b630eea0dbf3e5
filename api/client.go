// Package api is the client of the external registration backend.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/jrsteele09/ideathon-portal/users"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
)

const maxResponseBytes = 4 << 20

// Session is the part of the caller's session the client needs: the bearer token to present
// and a way to wipe it when the backend answers 401.
type Session interface {
	Token(ctx context.Context) string
	ClearAuth(ctx context.Context) error
}

// SessionLookup finds the session bound to ctx, or nil.
type SessionLookup func(ctx context.Context) Session

type Client struct {
	baseURL       string
	timeout       time.Duration
	transport     http.RoundTripper
	sessionLookup SessionLookup
}

type Option func(*Client)

// WithTransport replaces the base round tripper, mostly for tests.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Client) { c.transport = rt }
}

// WithSessionLookup tells the client where to find the token and the 401 hook for a request.
func WithSessionLookup(lookup SessionLookup) Option {
	return func(c *Client) { c.sessionLookup = lookup }
}

func NewClient(baseURL string, timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		timeout:   timeout,
		transport: http.DefaultTransport,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type emailBody struct {
	Email string `json:"email"`
}

type otpBody struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

// SendOTP asks the backend to mail a code to email.
func (c *Client) SendOTP(ctx context.Context, email string) (SendOTPResult, error) {
	resp, err := c.doJSON(ctx, http.MethodPost, "send-otp", emailBody{Email: email})
	if err != nil {
		return nil, err
	}
	return decodeSendOTP(resp.status, resp.envelope), nil
}

// Login exchanges a code for a session.
func (c *Client) Login(ctx context.Context, email, code string) (LoginResult, error) {
	resp, err := c.doJSON(ctx, http.MethodPost, "login", otpBody{Email: email, OTP: code})
	if err != nil {
		return nil, err
	}
	return decodeLogin(resp.envelope), nil
}

// VerifyOTP proves control of email during registration. No session is created.
func (c *Client) VerifyOTP(ctx context.Context, email, code string) (VerifyResult, error) {
	resp, err := c.doJSON(ctx, http.MethodPost, "verify-otp", otpBody{Email: email, OTP: code})
	if err != nil {
		return nil, err
	}
	return decodeVerify(resp.envelope), nil
}

// Register submits a completed registration. Anything but 200 or 201 is an *Error.
func (c *Client) Register(ctx context.Context, reg Registration) error {
	body, contentType, err := reg.multipart()
	if err != nil {
		return err
	}
	resp, err := c.do(ctx, http.MethodPost, "reg", body, contentType)
	if err != nil {
		return err
	}
	if resp.status != http.StatusOK && resp.status != http.StatusCreated {
		return &Error{Status: resp.status, Detail: resp.envelope.detail()}
	}
	return nil
}

// Dashboard fetches the signed in participant's own record.
func (c *Client) Dashboard(ctx context.Context) (*users.User, error) {
	return c.profile(ctx, "dashboard")
}

// Me fetches the profile behind the current token.
func (c *Client) Me(ctx context.Context) (*users.User, error) {
	return c.profile(ctx, "auth/me")
}

// AdminUsers fetches the full roster. 403 comes back as ErrForbidden.
func (c *Client) AdminUsers(ctx context.Context) ([]users.User, error) {
	resp, err := c.do(ctx, http.MethodGet, "admin/users", nil, "")
	if err != nil {
		return nil, err
	}
	if resp.status == http.StatusForbidden {
		return nil, ErrForbidden
	}
	if resp.status != http.StatusOK || resp.envelope.Result != resultAdminOK {
		return nil, &Error{Status: resp.status, Detail: resp.envelope.detail()}
	}
	if resp.envelope.Users == nil {
		return []users.User{}, nil
	}
	return resp.envelope.Users, nil
}

func (c *Client) profile(ctx context.Context, path string) (*users.User, error) {
	resp, err := c.do(ctx, http.MethodGet, path, nil, "")
	if err != nil {
		return nil, err
	}
	if resp.status == http.StatusForbidden {
		return nil, ErrForbidden
	}
	if resp.status != http.StatusOK {
		return nil, &Error{Status: resp.status, Detail: resp.envelope.detail()}
	}
	if resp.envelope.User == nil {
		return nil, ErrNoUser
	}
	return resp.envelope.User, nil
}

type response struct {
	status   int
	envelope envelope
}

func (c *Client) doJSON(ctx context.Context, method, path string, payload any) (*response, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.Wrapf(err, "[api %s] encode request", path)
	}
	return c.do(ctx, method, path, bytes.NewReader(data), "application/json")
}

// do sends one request. A 401 runs the session's ClearAuth and returns ErrUnauthorized; any
// other status is left to the caller. A body that is not JSON decodes as an empty envelope.
func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string) (*response, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+"/"+path, body)
	if err != nil {
		return nil, errors.Wrapf(err, "[api %s] build request", path)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")

	session := c.session(ctx)
	resp, err := c.httpClient(ctx, session).Do(req)
	if err != nil {
		log.Err(err).Str("path", path).Msg("backend call failed")
		return nil, errors.Wrapf(ErrTransport, "[api %s] %v", path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		log.Err(err).Str("path", path).Msg("reading backend response failed")
		return nil, errors.Wrapf(ErrTransport, "[api %s] read body: %v", path, err)
	}
	log.Debug().Str("method", method).Str("path", path).Int("status", resp.StatusCode).Msg("backend call")

	if resp.StatusCode == http.StatusUnauthorized {
		if session != nil {
			if err := session.ClearAuth(ctx); err != nil {
				log.Err(err).Msg("clearing session after 401 failed")
			}
		}
		return nil, ErrUnauthorized
	}

	out := &response{status: resp.StatusCode}
	if len(bytes.TrimSpace(raw)) > 0 {
		if err := json.Unmarshal(raw, &out.envelope); err != nil {
			log.Warn().Str("path", path).Int("status", resp.StatusCode).Msg("backend answered with a non JSON body")
			out.envelope = envelope{}
		}
	}
	return out, nil
}

func (c *Client) session(ctx context.Context) Session {
	if c.sessionLookup == nil {
		return nil
	}
	return c.sessionLookup(ctx)
}

// httpClient attaches the bearer token through an oauth2 transport when the session has one.
func (c *Client) httpClient(ctx context.Context, session Session) *http.Client {
	if session == nil {
		return &http.Client{Transport: c.transport}
	}
	tok := session.Token(ctx)
	if tok == "" {
		return &http.Client{Transport: c.transport}
	}
	return &http.Client{Transport: &oauth2.Transport{
		Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: tok, TokenType: "Bearer"}),
		Base:   c.transport,
	}}
}
