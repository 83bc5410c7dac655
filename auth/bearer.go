package auth

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/jrsteele09/go-oauth-engine/oauth2"
)

// BearerRequest holds the places a resource request may carry an access token.
type BearerRequest struct {
	// AuthScheme and AuthCredentials come from the Authorization header.
	AuthScheme      string
	AuthCredentials string

	Query url.Values
	Body  url.Values
}

// ChallengeError is an unauthorized_client error together with the headers that
// tell the client where and how to obtain a token.
type ChallengeError struct {
	Err             *oauth2.Error
	Link            string
	WWWAuthenticate string
}

func (e *ChallengeError) Error() string {
	return e.Err.Error()
}

func (e *ChallengeError) Unwrap() error {
	return e.Err
}

// ValidateBearer checks that the request carries exactly one bearer token and that
// the validateToken hook accepts it. A nil error means the request may proceed.
// A rejected token yields a *ChallengeError.
func (p *Provider) ValidateBearer(ctx context.Context, req BearerRequest) error {
	if err := p.validateBearer(ctx, req); err != nil {
		p.logFailure("bearer", err)
		return err
	}
	return nil
}

func (p *Provider) validateBearer(ctx context.Context, req BearerRequest) error {
	inHeader := req.AuthScheme != "" && req.AuthCredentials != ""
	inQuery := req.Query.Get(oauth2.ParamAccessToken) != ""
	inBody := req.Body.Get(oauth2.ParamAccessToken) != ""

	switch count(inHeader, inQuery, inBody) {
	case 0:
		return oauth2.InvalidRequest("access_token not included in the request")
	case 1:
	default:
		return oauth2.InvalidRequest("access_token can only be specified in either the: header, body, or query, once")
	}

	var token, tokenType string
	switch {
	case inHeader:
		token, tokenType = req.AuthCredentials, req.AuthScheme
	case inQuery:
		token, tokenType = req.Query.Get(oauth2.ParamAccessToken), req.Query.Get(oauth2.ParamTokenType)
	default:
		token, tokenType = req.Body.Get(oauth2.ParamAccessToken), req.Body.Get(oauth2.ParamTokenType)
	}

	if !strings.EqualFold(tokenType, oauth2.BearerTokenType) {
		return oauth2.InvalidRequest("token_type must be bearer")
	}

	valid, err := p.options.Hooks.ValidateToken(ctx, token)
	if err != nil {
		return err
	}
	if !valid {
		return p.challenge()
	}
	return nil
}

func (p *Provider) challenge() *ChallengeError {
	return &ChallengeError{
		Err: oauth2.UnauthorizedClient("Client not authorized"),
		Link: fmt.Sprintf("<%s>; rel='oauth2-token'; grant-types='%s'; token-types='bearer'",
			p.options.TokenEndpoint, p.registry.EnabledString()),
		WWWAuthenticate: fmt.Sprintf("Bearer realm='%s', error='401', error_description='Client not authorized'",
			p.options.Realm),
	}
}

func count(flags ...bool) int {
	n := 0
	for _, f := range flags {
		if f {
			n++
		}
	}
	return n
}
