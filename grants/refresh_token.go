package grants

import (
	"context"

	"github.com/jrsteele09/go-oauth-engine/hooks"
	"github.com/jrsteele09/go-oauth-engine/oauth2"
)

var _ Strategy = (*RefreshToken)(nil)

// RefreshToken implements the refresh_token grant.
type RefreshToken struct {
	hooks hooks.Set
}

func NewRefreshToken(hs hooks.Set) *RefreshToken {
	return &RefreshToken{hooks: hs}
}

func (rt *RefreshToken) Type() oauth2.GrantType {
	return oauth2.RefreshTokenGrant
}

func (rt *RefreshToken) RequiredHooks() []hooks.Name {
	return []hooks.Name{hooks.ExchangeRefreshToken}
}

func (rt *RefreshToken) ValidateRequest(_ context.Context, req *Request) (Params, error) {
	if err := RequireParams(req.Params, oauth2.ParamRefreshToken); err != nil {
		return Params{}, err
	}
	return Params{
		ClientID:     req.ClientID,
		RefreshToken: req.Params.Get(oauth2.ParamRefreshToken),
	}, nil
}

// GrantToken exchanges the refresh token for a new access token. A replacement
// refresh token is optional.
func (rt *RefreshToken) GrantToken(ctx context.Context, params Params) (oauth2.GrantOutcome, error) {
	result, err := rt.hooks.ExchangeRefreshToken(ctx, params.RefreshToken)
	if err != nil {
		return oauth2.GrantOutcome{}, err
	}
	if result.AccessToken == "" {
		return oauth2.GrantOutcome{}, oauth2.AccessDenied(deniedAccessToken)
	}
	return oauth2.GrantOutcome{Token: result.AccessToken, Refresh: result.RefreshToken}, nil
}
