package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/seckatie/moohub/internal/core/db"
	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// GoogleUserInfoURL is the OpenID Connect userinfo endpoint.
const GoogleUserInfoURL = "https://openidconnect.googleapis.com/v1/userinfo"

// Scopes requested at sign-in. Calendar access backs the calendar widget.
var Scopes = []string{
	"openid",
	"email",
	"profile",
	"https://www.googleapis.com/auth/calendar.readonly",
}

// GoogleConfig builds the OAuth client configuration for Google sign-in.
func GoogleConfig(clientID, clientSecret, redirectURL string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURL,
		Scopes:       Scopes,
		Endpoint:     google.Endpoint,
	}
}

// UserStore is the part of the database sign-in needs.
type UserStore interface {
	UpsertUser(ctx context.Context, email, name, image string) (db.User, error)
}

// Provider runs the OAuth login and callback.
type Provider struct {
	config      *oauth2.Config
	sessions    *Sessions
	users       UserStore
	userInfoURL string
	log         *logrus.Entry
}

func NewProvider(config *oauth2.Config, sessions *Sessions, users UserStore, log *logrus.Entry) *Provider {
	return &Provider{
		config:      config,
		sessions:    sessions,
		users:       users,
		userInfoURL: GoogleUserInfoURL,
		log:         log,
	}
}

// WithUserInfoURL overrides the userinfo endpoint.
func (p *Provider) WithUserInfoURL(u string) *Provider {
	p.userInfoURL = u
	return p
}

// Config returns the OAuth client configuration.
func (p *Provider) Config() *oauth2.Config {
	return p.config
}

// HandleLogin sets a random state cookie and redirects to the consent page.
// Offline access with forced consent makes Google return a refresh token.
func (p *Provider) HandleLogin(w http.ResponseWriter, r *http.Request) {
	state, err := generateState()
	if err != nil {
		p.log.Errorf("Failed to create OAuth state: %v", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    state,
		Path:     "/",
		HttpOnly: true,
		Secure:   p.sessions.secure,
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Now().Add(10 * time.Minute),
	})

	url := p.config.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
	http.Redirect(w, r, url, http.StatusFound)
}

// HandleCallback exchanges the code, looks up the Google profile, upserts the
// user by email and issues the session cookie.
func (p *Provider) HandleCallback(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(stateCookieName)
	if err != nil || cookie.Value == "" {
		http.Error(w, "Invalid session state", http.StatusBadRequest)
		return
	}
	if r.FormValue("state") != cookie.Value {
		http.Error(w, "Session state doesn't match callback state", http.StatusBadRequest)
		return
	}
	http.SetCookie(w, &http.Cookie{Name: stateCookieName, Path: "/", MaxAge: -1})

	code := r.FormValue("code")
	if code == "" {
		http.Error(w, "Missing code", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	token, err := p.config.Exchange(ctx, code)
	if err != nil {
		p.log.Errorf("Failed to exchange code: %v", err)
		http.Error(w, "Failed to authenticate", http.StatusInternalServerError)
		return
	}

	info, err := p.fetchUserInfo(ctx, token)
	if err != nil {
		p.log.Errorf("Failed to fetch user info: %v", err)
		http.Error(w, "Failed to authenticate", http.StatusInternalServerError)
		return
	}

	user, err := p.users.UpsertUser(ctx, info.Email, info.Name, info.Picture)
	if err != nil {
		p.log.Errorf("Failed to upsert user %s: %v", info.Email, err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	if err := p.sessions.Issue(w, Session{UserID: user.ID, Email: user.Email, Token: token}); err != nil {
		p.log.Errorf("Failed to issue session: %v", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	p.log.Infof("User %s signed in", user.Email)
	http.Redirect(w, r, "/", http.StatusFound)
}

type userInfo struct {
	Sub     string `json:"sub"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

func (p *Provider) fetchUserInfo(ctx context.Context, token *oauth2.Token) (userInfo, error) {
	client := p.config.Client(ctx, token)
	resp, err := client.Get(p.userInfoURL)
	if err != nil {
		return userInfo{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return userInfo{}, fmt.Errorf("userinfo returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var info userInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return userInfo{}, fmt.Errorf("failed to decode userinfo: %w", err)
	}
	if info.Email == "" {
		return userInfo{}, fmt.Errorf("userinfo has no email")
	}
	return info, nil
}

func generateState() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
