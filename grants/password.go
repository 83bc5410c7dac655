package grants

import (
	"context"

	"github.com/jrsteele09/go-oauth-engine/hooks"
	"github.com/jrsteele09/go-oauth-engine/oauth2"
)

var _ Strategy = (*ResourceOwnerPassword)(nil)

// ResourceOwnerPassword implements the password grant.
type ResourceOwnerPassword struct {
	hooks hooks.Set
}

func NewResourceOwnerPassword(hs hooks.Set) *ResourceOwnerPassword {
	return &ResourceOwnerPassword{hooks: hs}
}

func (p *ResourceOwnerPassword) Type() oauth2.GrantType {
	return oauth2.PasswordGrant
}

func (p *ResourceOwnerPassword) RequiredHooks() []hooks.Name {
	return []hooks.Name{hooks.GenerateUserToken, hooks.GenerateRefreshToken}
}

func (p *ResourceOwnerPassword) ValidateRequest(_ context.Context, req *Request) (Params, error) {
	if err := RequireParams(req.Params, oauth2.ParamUsername, oauth2.ParamPassword); err != nil {
		return Params{}, err
	}
	return Params{
		ClientID: req.ClientID,
		Username: req.Params.Get(oauth2.ParamUsername),
		Password: req.Params.Get(oauth2.ParamPassword),
	}, nil
}

// GrantToken issues tokens keyed by the resource owner's username and password.
// Checking the credentials is the token hooks' job.
func (p *ResourceOwnerPassword) GrantToken(ctx context.Context, params Params) (oauth2.GrantOutcome, error) {
	return issueTokens(ctx, p.hooks, params.Username, params.Password)
}
