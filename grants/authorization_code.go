package grants

import (
	"context"
	"net/http"

	"github.com/jrsteele09/go-oauth-engine/hooks"
	"github.com/jrsteele09/go-oauth-engine/oauth2"
)

var _ Strategy = (*AuthorizationCode)(nil)

// AuthorizationCode implements the authorization_code grant, including the
// authorization endpoint side: resource owner approval and code (or implicit token) issuance.
type AuthorizationCode struct {
	hooks         hooks.Set
	allowImplicit bool
}

// NewAuthorizationCode creates the authorization_code strategy.
func NewAuthorizationCode(hs hooks.Set, allowImplicit bool) *AuthorizationCode {
	return &AuthorizationCode{hooks: hs, allowImplicit: allowImplicit}
}

func (a *AuthorizationCode) Type() oauth2.GrantType {
	return oauth2.AuthorizationCodeGrant
}

func (a *AuthorizationCode) RequiredHooks() []hooks.Name {
	return []hooks.Name{
		hooks.GenerateUserToken,
		hooks.GenerateRefreshToken,
		hooks.GenerateCode,
		hooks.ValidateAuthCode,
		hooks.UserAuthorization,
	}
}

// AllowImplicit reports whether response_type=token is honoured.
func (a *AuthorizationCode) AllowImplicit() bool {
	return a.allowImplicit
}

// ValidateRequest checks client_id, redirect_uri and code, then resolves the code
// through the validateAuthCode hook and checks it was issued for this client and redirect.
func (a *AuthorizationCode) ValidateRequest(ctx context.Context, req *Request) (Params, error) {
	if err := RequireParams(req.Params, oauth2.ParamClientID, oauth2.ParamRedirectURI, oauth2.ParamCode); err != nil {
		return Params{}, err
	}

	clientID := req.Params.Get(oauth2.ParamClientID)
	redirectURI := req.Params.Get(oauth2.ParamRedirectURI)
	code := req.Params.Get(oauth2.ParamCode)

	authCode, err := a.hooks.ValidateAuthCode(ctx, code)
	if err != nil {
		return Params{}, err
	}
	if authCode == nil || authCode.Code == "" {
		return Params{}, oauth2.InvalidRequest("the code provided was invalid")
	}
	if authCode.ClientID == "" || authCode.RedirectURI == "" || authCode.ResourceOwner == "" {
		return Params{}, hooks.NewContractViolation(hooks.ValidateAuthCode,
			"must return either an error, no code, or a code with client_id, redirect_uri and resource owner")
	}

	if authCode.RedirectURI != redirectURI {
		return Params{}, oauth2.InvalidRequest("redirect_uri does not match")
	}
	if authCode.ClientID != clientID {
		return Params{}, oauth2.InvalidRequest("invalid client_id")
	}

	return Params{
		ClientID:      clientID,
		RedirectURI:   redirectURI,
		Code:          code,
		ResourceOwner: authCode.ResourceOwner,
	}, nil
}

// GrantToken issues an access and refresh token for the code's resource owner.
func (a *AuthorizationCode) GrantToken(ctx context.Context, params Params) (oauth2.GrantOutcome, error) {
	return issueTokens(ctx, a.hooks, params.ResourceOwner, "")
}

// Approve asks the host to obtain the resource owner's approval. The request and
// response are passed through untouched; the engine does not interpret the mechanism.
func (a *AuthorizationCode) Approve(ctx context.Context, w http.ResponseWriter, r *http.Request, clientID, redirectURI string) (string, error) {
	owner, err := a.hooks.UserAuthorization(ctx, w, r, clientID, redirectURI)
	if err != nil {
		return "", err
	}
	if owner == "" {
		return "", oauth2.AccessDenied(deniedAuthorization)
	}
	return owner, nil
}

// IssueGrant produces the value returned from the authorization endpoint: an access
// token for response_type=token (implicit flow, when allowed) or an authorization code
// for response_type=code.
func (a *AuthorizationCode) IssueGrant(ctx context.Context, resourceOwner, redirectURI string, responseType oauth2.ResponseType, clientID string) (string, error) {
	switch {
	case responseType == oauth2.TokenResponseType && a.allowImplicit:
		token, err := a.hooks.GenerateUserToken(ctx, resourceOwner, "")
		if err != nil {
			return "", err
		}
		if token == "" {
			return "", oauth2.AccessDenied(deniedAccessToken)
		}
		return token, nil

	case responseType == oauth2.CodeResponseType:
		code, err := a.hooks.GenerateCode(ctx, resourceOwner, clientID)
		if err != nil {
			return "", err
		}
		if code == "" {
			return "", oauth2.AccessDenied(deniedCode)
		}
		return code, nil
	}

	return "", oauth2.InvalidRequest("response_type must be either: 'token' or 'code'")
}
