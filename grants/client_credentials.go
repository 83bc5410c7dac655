package grants

import (
	"context"

	"github.com/jrsteele09/go-oauth-engine/hooks"
	"github.com/jrsteele09/go-oauth-engine/oauth2"
)

var _ Strategy = (*ClientCredentials)(nil)

// ClientCredentials implements the client_credentials grant.
// The client has already been authenticated by the token endpoint.
type ClientCredentials struct {
	hooks hooks.Set
}

func NewClientCredentials(hs hooks.Set) *ClientCredentials {
	return &ClientCredentials{hooks: hs}
}

func (c *ClientCredentials) Type() oauth2.GrantType {
	return oauth2.ClientCredentialsGrant
}

func (c *ClientCredentials) RequiredHooks() []hooks.Name {
	return []hooks.Name{hooks.GenerateUserToken, hooks.GenerateRefreshToken}
}

func (c *ClientCredentials) ValidateRequest(_ context.Context, req *Request) (Params, error) {
	return Params{ClientID: req.ClientID}, nil
}

func (c *ClientCredentials) GrantToken(ctx context.Context, params Params) (oauth2.GrantOutcome, error) {
	return issueTokens(ctx, c.hooks, params.ClientID, "")
}
