package auth

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/oauth2"
)

// TokenRefresher turns a possibly expired token into a usable one.
type TokenRefresher interface {
	Refresh(ctx context.Context, token *oauth2.Token) (*oauth2.Token, error)
}

// ConfigRefresher refreshes tokens against the provider's token endpoint.
type ConfigRefresher struct {
	Config *oauth2.Config
}

func (c ConfigRefresher) Refresh(ctx context.Context, token *oauth2.Token) (*oauth2.Token, error) {
	if token == nil {
		return nil, errors.New("no token")
	}
	fresh, err := c.Config.TokenSource(ctx, token).Token()
	if err != nil {
		return nil, fmt.Errorf("failed to refresh token: %w", err)
	}
	return fresh, nil
}

// TokenChanged reports whether a refresh produced a different access token,
// meaning the session cookie should be re-issued.
func TokenChanged(before, after *oauth2.Token) bool {
	if before == nil || after == nil {
		return before != after
	}
	return before.AccessToken != after.AccessToken || !before.Expiry.Equal(after.Expiry)
}
