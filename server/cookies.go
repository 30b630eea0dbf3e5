package server

import (
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/securecookie"
	apperrors "github.com/jrsteele09/ideathon-portal/internal/errors"
	"github.com/jrsteele09/ideathon-portal/sessions"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/hkdf"
)

const (
	profileCookieName = "ideathon_profile"
	tabCookieName     = "ideathon_tab"
)

// cookieJar issues and reads the two handle cookies. The profile cookie persists across
// browser restarts, the tab cookie is a session cookie and dies with the browser session.
type cookieJar struct {
	codec         *securecookie.SecureCookie
	profileMaxAge time.Duration
	secure        bool
}

func newCookieJar(secret string, profileMaxAge time.Duration, secure bool) (*cookieJar, error) {
	master := []byte(secret)
	if secret == "" {
		log.Warn().Msg("SESSION_SECRET is not set, sessions will not survive a restart")
		master = make([]byte, 32)
		if _, err := rand.Read(master); err != nil {
			return nil, fmt.Errorf("[newCookieJar] generate secret: %w", err)
		}
	}

	hashKey, err := deriveKey(master, "ideathon cookie hash", 32)
	if err != nil {
		return nil, err
	}
	blockKey, err := deriveKey(master, "ideathon cookie block", 32)
	if err != nil {
		return nil, err
	}

	codec := securecookie.New(hashKey, blockKey)
	codec.SetSerializer(securecookie.JSONEncoder{})
	codec.MaxAge(int(profileMaxAge.Seconds()))

	return &cookieJar{codec: codec, profileMaxAge: profileMaxAge, secure: secure}, nil
}

func deriveKey(secret []byte, info string, size int) ([]byte, error) {
	key := make([]byte, size)
	if _, err := io.ReadFull(hkdf.New(sha256.New, secret, nil, []byte(info)), key); err != nil {
		return nil, fmt.Errorf("[deriveKey] %s: %w", info, err)
	}
	return key, nil
}

// handle reads both handle cookies, issuing whichever is missing or unreadable.
func (j *cookieJar) handle(w http.ResponseWriter, r *http.Request) sessions.Handle {
	profile, err := j.read(r, profileCookieName)
	if err != nil {
		logUnreadable(err)
		profile = uuid.NewString()
		j.write(w, profileCookieName, profile, j.profileMaxAge)
	}
	tab, err := j.read(r, tabCookieName)
	if err != nil {
		logUnreadable(err)
		tab = uuid.NewString()
		j.write(w, tabCookieName, tab, 0)
	}
	return sessions.Handle{Profile: profile, Tab: tab}
}

func (j *cookieJar) read(r *http.Request, name string) (string, error) {
	cookie, err := r.Cookie(name)
	if err != nil {
		return "", apperrors.ErrNoSession
	}
	var id string
	if err := j.codec.Decode(name, cookie.Value, &id); err != nil || id == "" {
		return "", apperrors.Wrapf(apperrors.ErrMalformedCookie, "[cookieJar read] %s", name)
	}
	return id, nil
}

// logUnreadable notes cookies that were present but failed to decode, usually after a
// SESSION_SECRET rotation.
func logUnreadable(err error) {
	if apperrors.Is(err, apperrors.ErrMalformedCookie) {
		log.Debug().Err(err).Msg("replacing unreadable handle cookie")
	}
}

func (j *cookieJar) write(w http.ResponseWriter, name, id string, maxAge time.Duration) {
	encoded, err := j.codec.Encode(name, id)
	if err != nil {
		log.Err(err).Str("cookie", name).Msg("encoding handle cookie failed")
		return
	}
	cookie := &http.Cookie{
		Name:     name,
		Value:    encoded,
		Path:     "/",
		HttpOnly: true,
		Secure:   j.secure,
		SameSite: http.SameSiteLaxMode,
	}
	if maxAge > 0 {
		cookie.MaxAge = int(maxAge.Seconds())
		cookie.Expires = time.Now().Add(maxAge)
	}
	http.SetCookie(w, cookie)
}

// Helper function to determine the scheme (http/https)
func getScheme(r *http.Request) string {
	if r.TLS != nil {
		return "https"
	}
	if scheme := r.Header.Get("X-Forwarded-Proto"); scheme != "" {
		return scheme
	}
	return "http"
}

func isHTMXRequest(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

// redirect sends the browser to target, as an HX-Redirect for htmx requests.
func redirect(w http.ResponseWriter, r *http.Request, target string) {
	if isHTMXRequest(r) {
		w.Header().Set("HX-Redirect", target)
		w.WriteHeader(http.StatusNoContent)
		return
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// redirectToLogin sends the browser to the login page, remembering where it was going.
func redirectToLogin(w http.ResponseWriter, r *http.Request) {
	target := RouteLogin
	if next := r.URL.RequestURI(); r.Method == http.MethodGet && next != "" && next != "/" {
		target += "?next=" + url.QueryEscape(next)
	}
	redirect(w, r, target)
}
