// Package auth handles sign-in through Google and the signed session cookie
// that identifies the user on every later request.
package auth

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/securecookie"
	"golang.org/x/oauth2"
)

const (
	// SessionCookieName is the cookie carrying the encoded Session.
	SessionCookieName = "moohub_session"

	stateCookieName = "moohub_oauth_state"
	sessionMaxAge   = 30 * 24 * time.Hour
)

// ErrNoSession is returned when the request carries no valid session.
var ErrNoSession = errors.New("no session")

// Session is encoded, signed and optionally encrypted into the session cookie.
type Session struct {
	UserID string        `json:"uid"`
	Email  string        `json:"email"`
	Token  *oauth2.Token `json:"token,omitempty"`
}

// Sessions issues and reads session cookies.
type Sessions struct {
	codec  *securecookie.SecureCookie
	secure bool
}

// NewSessions creates a cookie codec. hashKey authenticates the cookie;
// a non-empty blockKey also encrypts it. secure marks cookies HTTPS-only.
func NewSessions(hashKey, blockKey []byte, secure bool) *Sessions {
	if len(blockKey) == 0 {
		blockKey = nil
	}
	codec := securecookie.New(hashKey, blockKey)
	codec.MaxAge(int(sessionMaxAge.Seconds()))
	codec.SetSerializer(securecookie.JSONEncoder{})
	return &Sessions{codec: codec, secure: secure}
}

// Issue writes a session cookie for s.
func (m *Sessions) Issue(w http.ResponseWriter, s Session) error {
	cookie, err := m.Cookie(s)
	if err != nil {
		return err
	}
	http.SetCookie(w, cookie)
	return nil
}

// Cookie encodes s without writing it. Tests use it to authenticate requests.
func (m *Sessions) Cookie(s Session) (*http.Cookie, error) {
	encoded, err := m.codec.Encode(SessionCookieName, s)
	if err != nil {
		return nil, fmt.Errorf("failed to encode session: %w", err)
	}
	return &http.Cookie{
		Name:     SessionCookieName,
		Value:    encoded,
		Path:     "/",
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Now().Add(sessionMaxAge),
	}, nil
}

// Current decodes the session attached to r.
func (m *Sessions) Current(r *http.Request) (Session, error) {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil || cookie.Value == "" {
		return Session{}, ErrNoSession
	}
	var s Session
	if err := m.codec.Decode(SessionCookieName, cookie.Value, &s); err != nil {
		return Session{}, fmt.Errorf("%w: %v", ErrNoSession, err)
	}
	if s.UserID == "" {
		return Session{}, ErrNoSession
	}
	return s, nil
}

// Clear expires the session cookie.
func (m *Sessions) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}
