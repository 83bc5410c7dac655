package auth

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/jrsteele09/go-oauth-engine/grants"
	"github.com/jrsteele09/go-oauth-engine/hooks"
	"github.com/jrsteele09/go-oauth-engine/oauth2"
	"github.com/pkg/errors"
)

// AuthorizationRequest is a request to the authorization endpoint.
type AuthorizationRequest struct {
	// Query holds the request's query parameters.
	Query url.Values

	// Writer and Request are passed to the userAuthorization hook untouched.
	Writer  http.ResponseWriter
	Request *http.Request
}

// AuthorizationResult tells the HTTP layer how to answer an authorization request.
type AuthorizationResult struct {
	// Location is the redirect target. It carries either the code/token or the error.
	Location string

	// Err is the failure, if any. When Location is empty the error must be written as
	// a response body because there was no trustworthy redirect_uri.
	Err error

	// Handled is set when the approval hook took over the response.
	Handled bool
}

// Authorize validates an authorization request, obtains the resource owner's approval,
// and issues an authorization code (or an access token for the implicit flow).
func (p *Provider) Authorize(ctx context.Context, req AuthorizationRequest) AuthorizationResult {
	result := p.authorize(ctx, req)
	if result.Err != nil {
		p.logFailure(p.options.AuthorizeEndpoint, result.Err)
	}
	return result
}

func (p *Provider) authorize(ctx context.Context, req AuthorizationRequest) AuthorizationResult {
	authCode, ok := p.registry.AuthorizationCode()
	if !ok {
		return AuthorizationResult{Err: ErrAuthorizeDisabled}
	}

	if err := grants.RequireParams(req.Query, oauth2.ParamClientID, oauth2.ParamRedirectURI, oauth2.ParamResponseType); err != nil {
		return AuthorizationResult{Err: err}
	}

	clientID := req.Query.Get(oauth2.ParamClientID)
	redirectURI := req.Query.Get(oauth2.ParamRedirectURI)
	responseType := oauth2.ResponseType(req.Query.Get(oauth2.ParamResponseType))

	if strings.Contains(redirectURI, "#") {
		return AuthorizationResult{Err: oauth2.InvalidRequest("redirect_uri cannot contain a hash (#) fragment.")}
	}

	// From here on redirect_uri is usable and failures are delivered to it.
	ctx = hooks.WithRedirectURI(ctx, redirectURI)
	fail := func(err error) AuthorizationResult {
		return AuthorizationResult{Location: ErrorRedirect(redirectURI, err), Err: err}
	}

	if responseType != oauth2.CodeResponseType && responseType != oauth2.TokenResponseType {
		return fail(oauth2.InvalidRequest("the response_type must either be 'token' or 'code'"))
	}

	owner, err := authCode.Approve(ctx, req.Writer, req.Request, clientID, redirectURI)
	if errors.Is(err, hooks.ErrApprovalPending) {
		return AuthorizationResult{Handled: true}
	}
	if err != nil {
		return fail(err)
	}

	value, err := authCode.IssueGrant(ctx, owner, redirectURI, responseType, clientID)
	if err != nil {
		return fail(err)
	}

	if responseType == oauth2.TokenResponseType {
		return AuthorizationResult{Location: ImplicitRedirect(redirectURI, value)}
	}
	return AuthorizationResult{Location: AppendQuery(redirectURI, url.Values{oauth2.ParamCode: {value}})}
}
