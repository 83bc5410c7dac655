package auth

import (
	"context"
	"net/url"

	"github.com/jrsteele09/go-oauth-engine/grants"
	"github.com/jrsteele09/go-oauth-engine/hooks"
	"github.com/jrsteele09/go-oauth-engine/oauth2"
)

// TokenRequest is a request to the token endpoint.
type TokenRequest struct {
	// Body holds the form fields. A nil Body means the request had no usable body.
	Body url.Values

	// BasicAuth holds credentials from an Authorization: Basic header, if any.
	BasicAuth *ClientCredentials
}

// ClientCredentials is a client id and secret pair.
type ClientCredentials struct {
	ID     string
	Secret string
}

// Token runs the token endpoint: it checks the request shape, authenticates the client,
// and lets the selected grant strategy validate the request and issue tokens.
// Failures are either *oauth2.Error or an error returned by a hook.
func (p *Provider) Token(ctx context.Context, req TokenRequest) (*oauth2.TokenResponse, error) {
	resp, err := p.token(ctx, req)
	if err != nil {
		p.logFailure(p.options.TokenEndpoint, err)
		return nil, err
	}
	return resp, nil
}

func (p *Provider) token(ctx context.Context, req TokenRequest) (*oauth2.TokenResponse, error) {
	if req.Body == nil {
		return nil, oauth2.InvalidRequest("Request has no Body.")
	}
	if !req.Body.Has(oauth2.ParamGrantType) {
		return nil, oauth2.InvalidRequest("No grant_type specified.")
	}
	strategy, err := p.registry.Lookup(oauth2.GrantType(req.Body.Get(oauth2.ParamGrantType)))
	if err != nil {
		return nil, err
	}
	ctx = hooks.WithGrantType(ctx, strategy.Type())

	credentials, err := clientCredentials(req)
	if err != nil {
		return nil, err
	}

	valid, err := p.options.Hooks.AuthenticateClient(ctx, credentials.ID, credentials.Secret)
	if err != nil {
		return nil, err
	}
	if !valid {
		return nil, oauth2.InvalidClient("invalid client")
	}

	params, err := strategy.ValidateRequest(ctx, &grants.Request{
		Params:       req.Body,
		ClientID:     credentials.ID,
		ClientSecret: credentials.Secret,
	})
	if err != nil {
		return nil, err
	}

	outcome, err := strategy.GrantToken(ctx, params)
	if err != nil {
		return nil, err
	}
	return oauth2.NewTokenResponse(outcome, p.expiresIn()), nil
}

// clientCredentials prefers the Authorization header and falls back to the body.
// Credentials supplied in both places are rejected.
func clientCredentials(req TokenRequest) (ClientCredentials, error) {
	inBody := req.Body.Has(oauth2.ParamClientID) || req.Body.Has(oauth2.ParamClientSecret)
	if req.BasicAuth != nil {
		if inBody {
			return ClientCredentials{}, oauth2.InvalidRequest("you cannot put client authorization in more than one place")
		}
		return *req.BasicAuth, nil
	}
	return ClientCredentials{
		ID:     req.Body.Get(oauth2.ParamClientID),
		Secret: req.Body.Get(oauth2.ParamClientSecret),
	}, nil
}
