package hooks

import (
	"context"

	"github.com/jrsteele09/go-oauth-engine/oauth2"
)

type grantTypeKey struct{}

// WithGrantType records the grant type of the token request being served.
func WithGrantType(ctx context.Context, grantType oauth2.GrantType) context.Context {
	return context.WithValue(ctx, grantTypeKey{}, grantType)
}

// GrantTypeFromContext returns the grant type the token endpoint is serving. Hooks called
// from the authorization endpoint see no grant type.
func GrantTypeFromContext(ctx context.Context) (oauth2.GrantType, bool) {
	grantType, ok := ctx.Value(grantTypeKey{}).(oauth2.GrantType)
	return grantType, ok
}

type redirectURIKey struct{}

// WithRedirectURI records the redirect_uri of the authorization request being served.
func WithRedirectURI(ctx context.Context, redirectURI string) context.Context {
	return context.WithValue(ctx, redirectURIKey{}, redirectURI)
}

// RedirectURIFromContext returns the redirect_uri the authorization endpoint is serving,
// letting a GenerateCode hook bind the code to it.
func RedirectURIFromContext(ctx context.Context) (string, bool) {
	redirectURI, ok := ctx.Value(redirectURIKey{}).(string)
	return redirectURI, ok
}
