package mail

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/nri-matrimony/matrimony/config"
	"golang.org/x/oauth2"
)

// expiryLeeway refreshes tokens slightly before the provider would reject them.
const expiryLeeway = time.Minute

// TokenSource holds the XOAUTH2 access token used for SMTP and refreshes it from the
// configured refresh token once it is about to expire.
type TokenSource struct {
	mu          sync.Mutex
	oauth       *oauth2.Config
	refresh     string
	accessToken string
	expiresAt   time.Time
	now         func() time.Time
}

func NewTokenSource(cfg config.MailOAuthConfig) *TokenSource {
	return &TokenSource{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			Endpoint:     oauth2.Endpoint{TokenURL: cfg.TokenURL},
		},
		refresh: cfg.RefreshToken,
		now:     time.Now,
	}
}

func (t *TokenSource) ExpiresAt() time.Time {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.expiresAt
}

// RefreshIfExpired returns the cached access token, exchanging the refresh token for a new
// one first when the cache is empty or within expiryLeeway of expiry.
func (t *TokenSource) RefreshIfExpired(ctx context.Context) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.accessToken != "" && t.now().Add(expiryLeeway).Before(t.expiresAt) {
		return t.accessToken, nil
	}

	token, err := t.oauth.TokenSource(ctx, &oauth2.Token{RefreshToken: t.refresh}).Token()
	if err != nil {
		return "", fmt.Errorf("oauth token refresh: %w", err)
	}
	if token.AccessToken == "" {
		return "", errors.New("oauth token refresh: empty access token")
	}

	t.accessToken = token.AccessToken
	t.expiresAt = token.Expiry
	if token.RefreshToken != "" {
		t.refresh = token.RefreshToken
	}

	return t.accessToken, nil
}
