package clients

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOAuthRefreshToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req refreshRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "refresh_token", req.GrantType)
		assert.Equal(t, "old-refresh", req.RefreshToken)
		assert.Equal(t, "client", req.ClientID)

		_, _ = io.WriteString(w, `{"access_token":"new-access","refresh_token":"new-refresh","expires_in":3600,"scope":["user.identity","tournament.reporter"]}`)
	}))
	defer srv.Close()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	client := NewOAuthClient(OAuthConfig{TokenURL: srv.URL, ClientID: "client", ClientSecret: "secret"}, NewHTTPClient(time.Second)).(*oauthClient)
	client.now = func() time.Time { return now }

	info, err := client.RefreshToken(t.Context(), "old-refresh")
	require.NoError(t, err)
	assert.Equal(t, "new-access", info.AccessToken)
	assert.Equal(t, "new-refresh", info.RefreshToken)
	assert.Equal(t, now.Add(time.Hour), info.ExpiresAt)
	assert.Equal(t, "user.identity tournament.reporter", info.Scope)
}

func TestOAuthRefreshRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"error":"invalid_grant"}`)
	}))
	defer srv.Close()

	client := NewOAuthClient(OAuthConfig{TokenURL: srv.URL}, NewHTTPClient(time.Second))
	_, err := client.RefreshToken(t.Context(), "stale")
	assert.Equal(t, http.StatusBadRequest, StatusCode(err))
}
