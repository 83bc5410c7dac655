// Package grants implements the token endpoint grant types: authorization_code,
// client_credentials, password and refresh_token.
//
// Each strategy validates the shape of a token request and produces tokens through
// the host hooks. Strategies are built once by a Registry and are safe for concurrent use.
package grants

import (
	"context"
	"net/url"
	"strings"

	"github.com/jrsteele09/go-oauth-engine/hooks"
	"github.com/jrsteele09/go-oauth-engine/oauth2"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

const (
	deniedAccessToken   = "server denied access_token request"
	deniedCode          = "server denied code request"
	deniedAuthorization = "server denied authorization request"
)

// Request is a token request after client authentication.
type Request struct {
	// Params holds the request body fields.
	Params url.Values

	// ClientID and ClientSecret are the authenticated client credentials,
	// wherever they were supplied.
	ClientID     string
	ClientSecret string
}

// Params are the validated parameters handed from ValidateRequest to GrantToken.
type Params struct {
	ClientID      string
	RedirectURI   string
	Code          string
	ResourceOwner string
	Username      string
	Password      string
	RefreshToken  string
}

// Strategy is implemented by every grant type.
type Strategy interface {
	// Type is the grant_type value the strategy answers to.
	Type() oauth2.GrantType

	// RequiredHooks lists the hooks that must be configured for the grant to be enabled.
	RequiredHooks() []hooks.Name

	// ValidateRequest checks the request shape. Expected failures are *oauth2.Error.
	ValidateRequest(ctx context.Context, req *Request) (Params, error)

	// GrantToken issues tokens for validated parameters. Hook errors are returned verbatim.
	GrantToken(ctx context.Context, params Params) (oauth2.GrantOutcome, error)
}

// RequireParams reports every missing parameter in a single invalid_request error.
// Presence is what matters: a parameter sent with an empty value is present.
func RequireParams(values url.Values, names ...string) error {
	var errs []string
	for _, name := range names {
		if !values.Has(name) {
			errs = append(errs, name+" is a required parameter")
		}
	}
	if len(errs) > 0 {
		return oauth2.InvalidRequest(strings.Join(errs, " "))
	}
	return nil
}

// issueTokens asks for an access token and a refresh token concurrently and waits for
// both. An access token failure takes precedence over a refresh token failure.
func issueTokens(ctx context.Context, hs hooks.Set, key, secondaryKey string) (oauth2.GrantOutcome, error) {
	var (
		g                    errgroup.Group
		token, refresh       string
		tokenErr, refreshErr error
	)

	g.Go(func() error {
		defer recoverHook(hooks.GenerateUserToken, &tokenErr)
		token, tokenErr = hs.GenerateUserToken(ctx, key, secondaryKey)
		return tokenErr
	})
	g.Go(func() error {
		defer recoverHook(hooks.GenerateRefreshToken, &refreshErr)
		refresh, refreshErr = hs.GenerateRefreshToken(ctx, key, secondaryKey)
		return refreshErr
	})

	// Both outcomes are captured above, including recovered panics.
	_ = g.Wait()
	if tokenErr != nil {
		return oauth2.GrantOutcome{}, tokenErr
	}
	if refreshErr != nil {
		return oauth2.GrantOutcome{}, refreshErr
	}

	if token == "" {
		return oauth2.GrantOutcome{}, oauth2.AccessDenied(deniedAccessToken)
	}
	return oauth2.GrantOutcome{Token: token, Refresh: refresh}, nil
}

// recoverHook turns a panic in a hook running off the request goroutine into an error,
// which the caller reports as a server error.
func recoverHook(name hooks.Name, err *error) {
	if r := recover(); r != nil {
		*err = errors.Errorf("hook '%s' panicked: %v", name, r)
	}
}
