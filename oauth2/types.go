package oauth2

// ResponseType represents the OAuth 2.0 response type.
// Determines what is returned from the authorization endpoint.
type ResponseType string

const (
	// CodeResponseType indicates the authorization code flow.
	// Returns an authorization code that must be exchanged for tokens at the token endpoint.
	// Example: /authorize?response_type=code&client_id=...
	CodeResponseType ResponseType = "code"

	// TokenResponseType indicates the implicit flow.
	// The access token is returned directly in the redirect_uri fragment.
	// Only honoured when the provider is configured to allow implicit grants.
	TokenResponseType ResponseType = "token"
)

// GrantType represents the OAuth 2.0 grant type used at the token endpoint.
// Determines what credentials are required to obtain tokens.
type GrantType string

const (
	// AuthorizationCodeGrant exchanges an authorization code for tokens.
	// Token request includes: code, client_id, redirect_uri
	AuthorizationCodeGrant GrantType = "authorization_code"

	// ClientCredentialsGrant allows machine-to-machine authentication.
	// Token request includes: client credentials only
	ClientCredentialsGrant GrantType = "client_credentials"

	// PasswordGrant exchanges resource owner credentials for tokens.
	// Token request includes: username, password
	PasswordGrant GrantType = "password"

	// RefreshTokenGrant exchanges a refresh token for new tokens.
	// Token request includes: refresh_token
	RefreshTokenGrant GrantType = "refresh_token"
)

// BearerTokenType is the only token type issued and accepted.
const BearerTokenType = "Bearer"

// Parameter names used on the wire.
const (
	ParamGrantType    = "grant_type"
	ParamClientID     = "client_id"
	ParamClientSecret = "client_secret"
	ParamCode         = "code"
	ParamRedirectURI  = "redirect_uri"
	ParamResponseType = "response_type"
	ParamRefreshToken = "refresh_token"
	ParamUsername     = "username"
	ParamPassword     = "password"
	ParamAccessToken  = "access_token"
	ParamTokenType    = "token_type"
)

// GrantOutcome is what every grant strategy produces on success.
// Refresh is empty when no refresh token was issued.
type GrantOutcome struct {
	Token   string
	Refresh string
}
