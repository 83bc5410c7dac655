package hostapp_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	clientfakerepo "github.com/jrsteele09/go-oauth-engine/clients/fakerepo"
	"github.com/jrsteele09/go-oauth-engine/hooks"
	"github.com/jrsteele09/go-oauth-engine/internal/config"
	"github.com/jrsteele09/go-oauth-engine/internal/hostapp"
	"github.com/jrsteele09/go-oauth-engine/oauth2"
	"github.com/jrsteele09/go-oauth-engine/token"
	"github.com/jrsteele09/go-oauth-engine/token/refresh"
	refreshrepofake "github.com/jrsteele09/go-oauth-engine/token/refresh/repofake"
	tokenfakerepo "github.com/jrsteele09/go-oauth-engine/token/repofake"
	"github.com/jrsteele09/go-oauth-engine/users"
	userfakerepo "github.com/jrsteele09/go-oauth-engine/users/repofake"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

const (
	demoClient   = "demo-client"
	demoSecret   = "demo-secret"
	demoRedirect = "http://localhost:8080/callback"
	demoUser     = "demo"
	demoPassword = "Demo-Passw0rd"
)

type fixture struct {
	app    *hostapp.App
	hooks  hooks.Set
	tokens *token.Manager
	users  users.UserRepo
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	refreshManager := refresh.NewManager(refreshrepofake.NewFakeRefreshTokenRepo(), config.OAuth{})
	tokens, err := token.New(token.NewHMACSigner([]byte("test-secret")), tokenfakerepo.NewFakeCodeRepo(), refreshManager,
		token.WithAccessTokenExpiry(time.Hour))
	require.NoError(t, err)

	userRepo := userfakerepo.NewFakeUserRepo()
	app, err := hostapp.New(clientfakerepo.NewFakeClientRepo(), userRepo, tokens, hostapp.WithLogger(zerolog.Nop()))
	require.NoError(t, err)
	require.NoError(t, app.Seed(config.Demo{}))

	return &fixture{app: app, hooks: app.Hooks(), tokens: tokens, users: userRepo}
}

func TestNew_RequiresDependencies(t *testing.T) {
	_, err := hostapp.New(nil, nil, nil)
	require.Error(t, err)
}

func TestApp_HooksComplete(t *testing.T) {
	f := newFixture(t)
	require.Empty(t, f.hooks.Missing(
		hooks.AuthenticateClient, hooks.GenerateUserToken, hooks.GenerateRefreshToken, hooks.GenerateCode,
		hooks.ValidateAuthCode, hooks.ExchangeRefreshToken, hooks.UserAuthorization, hooks.ValidateToken,
	))
}

func TestApp_Seed(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.app.Seed(config.Demo{}))

	user, err := f.users.GetByUsername(demoUser)
	require.NoError(t, err)
	require.True(t, user.CheckPassword(demoPassword))
}

func TestApp_AuthenticateClient(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		id       string
		secret   string
		expected bool
	}{
		{"valid", demoClient, demoSecret, true},
		{"wrong secret", demoClient, "nope", false},
		{"unknown client", "someone", demoSecret, false},
		{"empty", "", "", false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			valid, err := f.hooks.AuthenticateClient(ctx, tc.id, tc.secret)
			require.NoError(t, err)
			require.Equal(t, tc.expected, valid)
		})
	}
}

func TestApp_PasswordGrantTokens(t *testing.T) {
	f := newFixture(t)
	ctx := hooks.WithGrantType(context.Background(), oauth2.PasswordGrant)

	t.Run("valid credentials", func(t *testing.T) {
		access, err := f.hooks.GenerateUserToken(ctx, demoUser, demoPassword)
		require.NoError(t, err)
		claims, err := f.tokens.ParseAccessToken(access)
		require.NoError(t, err)
		require.Equal(t, demoUser, claims.Subject)

		rt, err := f.hooks.GenerateRefreshToken(ctx, demoUser, demoPassword)
		require.NoError(t, err)
		require.NotEmpty(t, rt)
	})

	t.Run("wrong password", func(t *testing.T) {
		access, err := f.hooks.GenerateUserToken(ctx, demoUser, "Wrong-Passw0rd")
		require.NoError(t, err)
		require.Empty(t, access)
	})

	t.Run("empty password", func(t *testing.T) {
		access, err := f.hooks.GenerateUserToken(ctx, demoUser, "")
		require.NoError(t, err)
		require.Empty(t, access)
	})

	t.Run("blocked user", func(t *testing.T) {
		user, err := f.users.GetByUsername(demoUser)
		require.NoError(t, err)
		user.Blocked = true
		require.NoError(t, f.users.Upsert(user))
		defer func() { user.Blocked = false }()

		access, err := f.hooks.GenerateUserToken(ctx, demoUser, demoPassword)
		require.NoError(t, err)
		require.Empty(t, access)
	})
}

func TestApp_ClientCredentialsTokens(t *testing.T) {
	f := newFixture(t)
	ctx := hooks.WithGrantType(context.Background(), oauth2.ClientCredentialsGrant)

	access, err := f.hooks.GenerateUserToken(ctx, demoClient, demoSecret)
	require.NoError(t, err)
	claims, err := f.tokens.ParseAccessToken(access)
	require.NoError(t, err)
	require.Equal(t, demoClient, claims.Subject)

	rt, err := f.hooks.GenerateRefreshToken(ctx, demoClient, demoSecret)
	require.NoError(t, err)
	require.Empty(t, rt)
}

func TestApp_Codes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	t.Run("bound to redirect uri", func(t *testing.T) {
		code, err := f.hooks.GenerateCode(hooks.WithRedirectURI(ctx, demoRedirect), demoUser, demoClient)
		require.NoError(t, err)

		stored, err := f.hooks.ValidateAuthCode(ctx, code)
		require.NoError(t, err)
		require.Equal(t, &hooks.AuthCode{Code: code, ClientID: demoClient, RedirectURI: demoRedirect, ResourceOwner: demoUser}, stored)

		again, err := f.hooks.ValidateAuthCode(ctx, code)
		require.NoError(t, err)
		require.Nil(t, again)
	})

	t.Run("no redirect uri", func(t *testing.T) {
		code, err := f.hooks.GenerateCode(ctx, demoUser, demoClient)
		require.NoError(t, err)
		require.Empty(t, code)
	})
}

func TestApp_ExchangeRefreshToken(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	rt, err := f.tokens.CreateRefreshToken(demoUser)
	require.NoError(t, err)

	result, err := f.hooks.ExchangeRefreshToken(ctx, rt)
	require.NoError(t, err)
	require.True(t, f.tokens.ValidateAccessToken(result.AccessToken))
	require.NotEqual(t, rt, result.RefreshToken)

	_, err = f.hooks.ExchangeRefreshToken(ctx, rt)
	oauthErr, ok := oauth2.AsError(err)
	require.True(t, ok)
	require.Equal(t, oauth2.InvalidGrantKind, oauthErr.Kind)
}

func TestApp_UserAuthorization(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	authorize := func(redirectURI string, setAuth func(r *http.Request)) (string, *httptest.ResponseRecorder, error) {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/authorize", nil)
		if setAuth != nil {
			setAuth(r)
		}
		owner, err := f.hooks.UserAuthorization(ctx, w, r, demoClient, redirectURI)
		return owner, w, err
	}

	t.Run("approved", func(t *testing.T) {
		owner, _, err := authorize(demoRedirect, func(r *http.Request) { r.SetBasicAuth(demoUser, demoPassword) })
		require.NoError(t, err)
		require.Equal(t, demoUser, owner)
	})

	t.Run("challenge without credentials", func(t *testing.T) {
		owner, w, err := authorize(demoRedirect, nil)
		require.ErrorIs(t, err, hooks.ErrApprovalPending)
		require.Empty(t, owner)
		require.Equal(t, http.StatusUnauthorized, w.Code)
		require.Equal(t, `Basic realm="authorize", charset="UTF-8"`, w.Header().Get("WWW-Authenticate"))
	})

	t.Run("challenge on wrong password", func(t *testing.T) {
		_, w, err := authorize(demoRedirect, func(r *http.Request) { r.SetBasicAuth(demoUser, "nope") })
		require.ErrorIs(t, err, hooks.ErrApprovalPending)
		require.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("unregistered redirect", func(t *testing.T) {
		_, w, err := authorize("https://evil.example.com/cb", func(r *http.Request) { r.SetBasicAuth(demoUser, demoPassword) })
		require.ErrorIs(t, err, hooks.ErrApprovalPending)
		require.Equal(t, http.StatusBadRequest, w.Code)
		require.JSONEq(t,
			`{"error":"invalid_request","error_description":"redirect_uri is not registered for this client"}`,
			w.Body.String())
	})
}

func TestApp_ValidateToken(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	access, err := f.tokens.CreateAccessToken(demoUser)
	require.NoError(t, err)

	valid, err := f.hooks.ValidateToken(ctx, access)
	require.NoError(t, err)
	require.True(t, valid)

	valid, err = f.hooks.ValidateToken(ctx, "forged")
	require.NoError(t, err)
	require.False(t, valid)
}

func TestApp_Me(t *testing.T) {
	f := newFixture(t)

	get := func(subject string) *httptest.ResponseRecorder {
		access, err := f.tokens.CreateAccessToken(subject)
		require.NoError(t, err)
		r := httptest.NewRequest(http.MethodGet, hostapp.MePath, nil)
		r.Header.Set("Authorization", "Bearer "+access)
		w := httptest.NewRecorder()
		f.app.Routes().ServeHTTP(w, r)
		return w
	}

	t.Run("user", func(t *testing.T) {
		w := get(demoUser)
		require.Equal(t, http.StatusOK, w.Code)
		require.JSONEq(t,
			`{"sub":"demo","username":"demo","email":"demo@example.com","first_name":"Demo","last_name":"User"}`,
			w.Body.String())
	})

	t.Run("client", func(t *testing.T) {
		w := get(demoClient)
		require.Equal(t, http.StatusOK, w.Code)
		require.JSONEq(t, `{"sub":"demo-client","client":true}`, w.Body.String())
	})
}
