package probe

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTwitchTestServer(t *testing.T) (*httptest.Server, *TwitchClient) {
	t.Helper()

	mux := http.NewServeMux()

	mux.HandleFunc("/oauth2/token", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, r.ParseForm())
		require.Equal(t, "client_credentials", r.PostFormValue("grant_type"))
		require.Equal(t, "test-id", r.PostFormValue("client_id"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"test-token","expires_in":3600}`))
	})

	mux.HandleFunc("/helix/streams", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		require.Equal(t, "test-id", r.Header.Get("Client-Id"))

		logins := r.URL.Query()["user_login"]
		require.NotEmpty(t, logins)

		// Only alice is live.
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":[{"user_login":"alice","type":"live"}]}`))
	})

	mux.HandleFunc("/helix/users", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "alice", r.URL.Query().Get("login"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":[{"login":"alice","display_name":"Alice"}]}`))
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	client := &TwitchClient{
		ClientID:     "test-id",
		ClientSecret: "test-secret",
		HTTPClient:   server.Client(),
		TokenURL:     server.URL + "/oauth2/token",
		APIBaseURL:   server.URL + "/helix",
	}

	return server, client
}

// TestTwitchLiveURLs checks token acquisition and live stream lookup.
func TestTwitchLiveURLs(t *testing.T) {
	t.Parallel()

	_, client := newTwitchTestServer(t)

	urls, err := client.LiveURLs(context.Background(),
		[]string{"https://www.twitch.tv/Alice", "@bob", "alice"})
	require.NoError(t, err)
	require.Equal(t, []string{"https://www.twitch.tv/alice"}, urls)
}

// TestTwitchDisplayName checks the users endpoint wrapper.
func TestTwitchDisplayName(t *testing.T) {
	t.Parallel()

	_, client := newTwitchTestServer(t)

	name, err := client.DisplayName(context.Background(), "alice")
	require.NoError(t, err)
	require.Equal(t, "Alice", name)
}

// TestTwitchTokenFailure checks error propagation from the token endpoint.
func TestTwitchTokenFailure(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	t.Cleanup(server.Close)

	client := &TwitchClient{
		ClientID:     "test-id",
		ClientSecret: "bad-secret",
		HTTPClient:   server.Client(),
		TokenURL:     server.URL,
		APIBaseURL:   server.URL,
	}

	_, err := client.Token(context.Background())
	require.Error(t, err)

	_, err = client.LiveURLs(context.Background(), []string{"alice"})
	require.Error(t, err)
}

// TestTwitchConfigured checks the credential presence helper.
func TestTwitchConfigured(t *testing.T) {
	t.Parallel()

	require.False(t, (&TwitchClient{}).Configured())
	require.False(t, (&TwitchClient{ClientID: "id"}).Configured())
	require.True(t, (&TwitchClient{ClientID: "id", ClientSecret: "secret"}).Configured())
}
