package hostapp_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/jrsteele09/go-oauth-engine/auth"
	"github.com/jrsteele09/go-oauth-engine/internal/config"
	"github.com/jrsteele09/go-oauth-engine/internal/hostapp"
	"github.com/jrsteele09/go-oauth-engine/server"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// newTestServer serves the demo host over HTTP the way cmd/server does.
func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	f := newFixture(t)

	provider, err := auth.NewProvider(f.app.ProviderOptions(config.OAuth{}), auth.WithLogger(zerolog.Nop()))
	require.NoError(t, err)
	srv, err := server.New(provider, f.app.Routes(), server.WithLogger(zerolog.Nop()))
	require.NoError(t, err)

	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)
	return ts
}

func oauthConfig(ts *httptest.Server) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     demoClient,
		ClientSecret: demoSecret,
		RedirectURL:  demoRedirect,
		Endpoint: oauth2.Endpoint{
			AuthURL:   ts.URL + auth.DefaultAuthorizeEndpoint,
			TokenURL:  ts.URL + auth.DefaultTokenEndpoint,
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}
}

func getMe(t *testing.T, client *http.Client, ts *httptest.Server) map[string]any {
	t.Helper()
	resp, err := client.Get(ts.URL + hostapp.MePath)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

func requireRetrieveError(t *testing.T, err error, code string) {
	t.Helper()
	var retrieveErr *oauth2.RetrieveError
	require.True(t, errors.As(err, &retrieveErr), "expected a token endpoint error, got %v", err)
	require.Equal(t, code, retrieveErr.ErrorCode)
}

func TestEndToEnd_ClientCredentials(t *testing.T) {
	ts := newTestServer(t)
	ctx := context.Background()

	cfg := clientcredentials.Config{
		ClientID:     demoClient,
		ClientSecret: demoSecret,
		TokenURL:     ts.URL + auth.DefaultTokenEndpoint,
		AuthStyle:    oauth2.AuthStyleInHeader,
	}
	tok, err := cfg.Token(ctx)
	require.NoError(t, err)
	require.Equal(t, "Bearer", tok.TokenType)
	require.Empty(t, tok.RefreshToken)
	require.False(t, tok.Expiry.IsZero())

	require.Equal(t, map[string]any{"sub": demoClient, "client": true}, getMe(t, cfg.Client(ctx), ts))

	t.Run("wrong secret", func(t *testing.T) {
		bad := cfg
		bad.ClientSecret = "nope"
		_, err := bad.Token(ctx)
		requireRetrieveError(t, err, "invalid_client")
	})
}

func TestEndToEnd_Password(t *testing.T) {
	ts := newTestServer(t)
	ctx := context.Background()
	cfg := oauthConfig(ts)

	tok, err := cfg.PasswordCredentialsToken(ctx, demoUser, demoPassword)
	require.NoError(t, err)
	require.NotEmpty(t, tok.RefreshToken)
	require.Equal(t, demoUser, getMe(t, cfg.Client(ctx, tok), ts)["username"])

	t.Run("wrong password", func(t *testing.T) {
		_, err := cfg.PasswordCredentialsToken(ctx, demoUser, "Wrong-Passw0rd")
		requireRetrieveError(t, err, "access_denied")
	})
}

func TestEndToEnd_AuthorizationCode(t *testing.T) {
	ts := newTestServer(t)
	ctx := context.Background()
	cfg := oauthConfig(ts)

	browser := &http.Client{
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	approve := func(t *testing.T, setAuth func(r *http.Request)) *http.Response {
		req, err := http.NewRequest(http.MethodGet, cfg.AuthCodeURL("xyz"), nil)
		require.NoError(t, err)
		if setAuth != nil {
			setAuth(req)
		}
		resp, err := browser.Do(req)
		require.NoError(t, err)
		t.Cleanup(func() { resp.Body.Close() })
		return resp
	}

	t.Run("resource owner must log in", func(t *testing.T) {
		resp := approve(t, nil)
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		require.Contains(t, resp.Header.Get("WWW-Authenticate"), "Basic")
	})

	resp := approve(t, func(r *http.Request) { r.SetBasicAuth(demoUser, demoPassword) })
	require.Equal(t, http.StatusFound, resp.StatusCode)
	location, err := url.Parse(resp.Header.Get("Location"))
	require.NoError(t, err)
	code := location.Query().Get("code")
	require.NotEmpty(t, code)

	tok, err := cfg.Exchange(ctx, code)
	require.NoError(t, err)
	require.NotEmpty(t, tok.AccessToken)
	require.Equal(t, demoUser, getMe(t, cfg.Client(ctx, tok), ts)["sub"])

	t.Run("code is single use", func(t *testing.T) {
		_, err := cfg.Exchange(ctx, code)
		requireRetrieveError(t, err, "invalid_request")
	})

	t.Run("refresh rotates", func(t *testing.T) {
		refreshed, err := cfg.TokenSource(ctx, &oauth2.Token{RefreshToken: tok.RefreshToken}).Token()
		require.NoError(t, err)
		require.NotEqual(t, tok.RefreshToken, refreshed.RefreshToken)
		require.Equal(t, demoUser, getMe(t, cfg.Client(ctx, refreshed), ts)["sub"])

		_, err = cfg.TokenSource(ctx, &oauth2.Token{RefreshToken: tok.RefreshToken}).Token()
		requireRetrieveError(t, err, "invalid_grant")
	})
}

func TestEndToEnd_ResourceRequiresToken(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + hostapp.MePath)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	forged, err := http.NewRequest(http.MethodGet, ts.URL+hostapp.MePath, nil)
	require.NoError(t, err)
	forged.Header.Set("Authorization", "Bearer not-a-token")
	resp, err = http.DefaultClient.Do(forged)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	require.Contains(t, resp.Header.Get("WWW-Authenticate"), "Bearer realm=")
}
