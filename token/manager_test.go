package token_test

import (
	"testing"
	"time"

	"github.com/jrsteele09/go-oauth-engine/internal/config"
	"github.com/jrsteele09/go-oauth-engine/token"
	"github.com/jrsteele09/go-oauth-engine/token/refresh"
	refreshrepofake "github.com/jrsteele09/go-oauth-engine/token/refresh/repofake"
	tokenfakerepo "github.com/jrsteele09/go-oauth-engine/token/repofake"
	"github.com/stretchr/testify/require"
)

type clock struct {
	now time.Time
}

func (c *clock) Now() time.Time { return c.now }

func newManager(t *testing.T, c *clock, options ...token.ManagerOption) *token.Manager {
	t.Helper()
	refreshManager := refresh.NewManager(refreshrepofake.NewFakeRefreshTokenRepo(), config.OAuth{}, refresh.WithNowFunc(c.Now))
	options = append([]token.ManagerOption{token.WithNowFunc(c.Now)}, options...)
	m, err := token.New(token.NewHMACSigner([]byte("test-secret")), tokenfakerepo.NewFakeCodeRepo(), refreshManager, options...)
	require.NoError(t, err)
	return m
}

func TestNew_RequiresDependencies(t *testing.T) {
	_, err := token.New(nil, tokenfakerepo.NewFakeCodeRepo(), nil)
	require.Error(t, err)
}

func TestManager_AccessToken(t *testing.T) {
	c := &clock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	m := newManager(t, c, token.WithAccessTokenExpiry(time.Hour))

	raw, err := m.CreateAccessToken("bob")
	require.NoError(t, err)

	claims, err := m.ParseAccessToken(raw)
	require.NoError(t, err)
	require.Equal(t, "bob", claims.Subject)
	require.True(t, m.ValidateAccessToken(raw))

	t.Run("expired", func(t *testing.T) {
		c.now = c.now.Add(2 * time.Hour)
		require.False(t, m.ValidateAccessToken(raw))
	})

	t.Run("other signer", func(t *testing.T) {
		other := newManager(t, &clock{now: time.Now()})
		foreign, err := other.CreateAccessToken("bob")
		require.NoError(t, err)

		signer, err := token.NewRandomHMACSigner()
		require.NoError(t, err)
		stranger, err := token.New(signer, tokenfakerepo.NewFakeCodeRepo(),
			refresh.NewManager(refreshrepofake.NewFakeRefreshTokenRepo(), config.OAuth{}))
		require.NoError(t, err)
		require.False(t, stranger.ValidateAccessToken(foreign))
	})

	t.Run("garbage", func(t *testing.T) {
		require.False(t, m.ValidateAccessToken(""))
		require.False(t, m.ValidateAccessToken("not.a.jwt"))
	})
}

func TestManager_AccessTokenWithoutExpiry(t *testing.T) {
	c := &clock{now: time.Now()}
	m := newManager(t, c)

	raw, err := m.CreateAccessToken("svc")
	require.NoError(t, err)

	c.now = c.now.Add(24 * 365 * time.Hour)
	claims, err := m.ParseAccessToken(raw)
	require.NoError(t, err)
	require.Nil(t, claims.ExpiresAt)
}

func TestManager_Codes(t *testing.T) {
	c := &clock{now: time.Now()}
	m := newManager(t, c)

	t.Run("single use", func(t *testing.T) {
		code, err := m.CreateCode("bob", "client", "https://app/cb")
		require.NoError(t, err)

		stored, err := m.ConsumeCode(code)
		require.NoError(t, err)
		require.Equal(t, "bob", stored.ResourceOwner)
		require.Equal(t, "client", stored.ClientID)
		require.Equal(t, "https://app/cb", stored.RedirectURI)

		again, err := m.ConsumeCode(code)
		require.NoError(t, err)
		require.Nil(t, again)
	})

	t.Run("expired", func(t *testing.T) {
		code, err := m.CreateCode("bob", "client", "https://app/cb")
		require.NoError(t, err)

		c.now = c.now.Add(11 * time.Minute)
		stored, err := m.ConsumeCode(code)
		require.NoError(t, err)
		require.Nil(t, stored)
	})

	t.Run("unknown", func(t *testing.T) {
		stored, err := m.ConsumeCode("nope")
		require.NoError(t, err)
		require.Nil(t, stored)
	})
}

func TestManager_RefreshTokens(t *testing.T) {
	c := &clock{now: time.Now()}
	m := newManager(t, c)

	first, err := m.CreateRefreshToken("bob")
	require.NoError(t, err)
	require.Len(t, first, 64)

	access, second, err := m.ExchangeRefreshToken(first)
	require.NoError(t, err)
	require.NotEqual(t, first, second)
	require.True(t, m.ValidateAccessToken(access))

	t.Run("rotated token is spent", func(t *testing.T) {
		_, _, err := m.ExchangeRefreshToken(first)
		require.ErrorIs(t, err, refresh.ErrInvalidToken)
	})

	t.Run("new token replaces the previous one", func(t *testing.T) {
		third, err := m.CreateRefreshToken("bob")
		require.NoError(t, err)

		_, _, err = m.ExchangeRefreshToken(second)
		require.ErrorIs(t, err, refresh.ErrInvalidToken)

		_, _, err = m.ExchangeRefreshToken(third)
		require.NoError(t, err)
	})

	t.Run("expired", func(t *testing.T) {
		rt, err := m.CreateRefreshToken("alice")
		require.NoError(t, err)

		c.now = c.now.Add(8 * 24 * time.Hour)
		_, _, err = m.ExchangeRefreshToken(rt)
		require.ErrorIs(t, err, refresh.ErrInvalidToken)
	})
}
