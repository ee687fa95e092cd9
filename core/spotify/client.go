// Package spotify wraps the Spotify search API behind a lazily refreshed
// client-credentials session.
package spotify

import (
	"context"
	"sync"
	"time"

	"snapfm/config"
	"snapfm/logger"
	"snapfm/model"

	"github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// sessionTTL is a conservative local bound on token reuse. Spotify's actual
// token lifetime is longer; we refresh early rather than trusting it.
const sessionTTL = 45 * time.Minute

// authSession is one issued token wrapped in an API client. Valid strictly
// before expiresAt, replaced transparently on the next use after expiry.
type authSession struct {
	api       *spotify.Client
	expiresAt time.Time
}

// Client resolves (title, artist) pairs to catalog records.
type Client struct {
	creds   *clientcredentials.Config
	ttl     time.Duration
	timeout time.Duration
	baseURL string // overrides the API endpoint in tests

	mu      sync.Mutex
	session *authSession
}

// New builds the resolver. Missing credentials fail here, not at first search.
func New(cfg *config.Config) (*Client, error) {
	if cfg.SpotifyClientID == "" || cfg.SpotifyClientSecret == "" {
		return nil, &model.ConfigError{Missing: "SPOTIFY_CLIENT_ID or SPOTIFY_CLIENT_SECRET"}
	}

	return &Client{
		creds: &clientcredentials.Config{
			ClientID:     cfg.SpotifyClientID,
			ClientSecret: cfg.SpotifyClientSecret,
			TokenURL:     spotifyauth.TokenURL,
		},
		ttl:     sessionTTL,
		timeout: time.Duration(cfg.SpotifyTimeout) * time.Second,
	}, nil
}

// ensureSession returns the cached API client, exchanging credentials first
// when no session exists or the current one has expired. The lock is held
// across the exchange so concurrent callers trigger at most one exchange and
// reuse its result.
func (c *Client) ensureSession(ctx context.Context) (*spotify.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session != nil && time.Now().Before(c.session.expiresAt) {
		return c.session.api, nil
	}

	logger.Info("spotify session missing or expired, exchanging credentials")

	tokenCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	tok, err := c.creds.Token(tokenCtx)
	if err != nil {
		c.session = nil
		return nil, &model.CredentialError{Err: err}
	}

	httpClient := oauth2.NewClient(context.Background(), oauth2.StaticTokenSource(tok))
	var opts []spotify.ClientOption
	if c.baseURL != "" {
		opts = append(opts, spotify.WithBaseURL(c.baseURL))
	}

	c.session = &authSession{
		api:       spotify.New(httpClient, opts...),
		expiresAt: time.Now().Add(c.ttl),
	}
	return c.session.api, nil
}
