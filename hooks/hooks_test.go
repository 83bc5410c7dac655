package hooks_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/jrsteele09/go-oauth-engine/hooks"
	"github.com/jrsteele09/go-oauth-engine/oauth2"
	"github.com/stretchr/testify/require"
)

func TestSet_Has(t *testing.T) {
	var s hooks.Set
	require.False(t, s.Has(hooks.ValidateToken))
	require.False(t, s.Has(hooks.Name("unknown")))

	s.ValidateToken = func(ctx context.Context, token string) (bool, error) { return true, nil }
	require.True(t, s.Has(hooks.ValidateToken))
}

func TestSet_Missing(t *testing.T) {
	s := hooks.Set{
		GenerateUserToken: func(ctx context.Context, a, b string) (string, error) { return "t", nil },
	}

	missing := s.Missing(hooks.GenerateUserToken, hooks.GenerateRefreshToken, hooks.ExchangeRefreshToken)
	require.Equal(t, []hooks.Name{hooks.GenerateRefreshToken, hooks.ExchangeRefreshToken}, missing)
	require.Equal(t, "generateRefreshToken, exchangeRefreshToken", hooks.JoinNames(missing))
	require.Empty(t, s.Missing(hooks.GenerateUserToken))
}

func TestContractViolation(t *testing.T) {
	err := hooks.NewContractViolation(hooks.ValidateAuthCode, "must return a client id")
	require.True(t, hooks.IsContractViolation(err))
	require.True(t, hooks.IsContractViolation(fmt.Errorf("wrapped: %w", err)))
	require.False(t, hooks.IsContractViolation(hooks.ErrApprovalPending))
	require.Contains(t, err.Error(), "validateAuthCode")
}

func TestGrantTypeContext(t *testing.T) {
	_, ok := hooks.GrantTypeFromContext(context.Background())
	require.False(t, ok)

	ctx := hooks.WithGrantType(context.Background(), oauth2.PasswordGrant)
	grantType, ok := hooks.GrantTypeFromContext(ctx)
	require.True(t, ok)
	require.Equal(t, oauth2.PasswordGrant, grantType)
}

func TestRedirectURIContext(t *testing.T) {
	_, ok := hooks.RedirectURIFromContext(context.Background())
	require.False(t, ok)

	redirectURI, ok := hooks.RedirectURIFromContext(hooks.WithRedirectURI(context.Background(), "https://app/cb"))
	require.True(t, ok)
	require.Equal(t, "https://app/cb", redirectURI)
}
