package spotify

import (
	"context"
	"testing"
	"time"

	"snapfm/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(id, secret string) *config.Config {
	return &config.Config{
		SpotifyClientID:     id,
		SpotifyClientSecret: secret,
		SpotifyTimeout:      5,
	}
}

// The fake token endpoint reports a 60 minute lifetime; the session must
// still be capped by our own conservative bound.
func TestSessionExpiryUsesLocalBoundNotRemoteLifetime(t *testing.T) {
	fake := newFakeCatalog(t)
	client := fake.client()

	_, err := client.SearchTrack(context.Background(), "Blue", "Eiffel 65")
	require.NoError(t, err)

	client.mu.Lock()
	defer client.mu.Unlock()
	require.NotNil(t, client.session)
	remaining := time.Until(client.session.expiresAt)
	assert.InDelta(t, sessionTTL.Seconds(), remaining.Seconds(), 5)
}
