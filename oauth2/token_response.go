package oauth2

// TokenResponse represents the response from an OAuth2 token request.
// This is the standard OAuth2 token endpoint response format as defined in RFC 6749.
type TokenResponse struct {
	// AccessToken is the opaque token used to access protected resources.
	// Usage: Include in Authorization header: "Bearer <access_token>"
	AccessToken string `json:"access_token"`

	// RefreshToken is an opaque token used to obtain new access tokens.
	// Only present when the refresh hook issued one.
	RefreshToken string `json:"refresh_token,omitempty"`

	// TokenType indicates how to use the access token (always "Bearer").
	TokenType string `json:"token_type"`

	// ExpiresIn is the lifetime in seconds of the access token.
	// Omitted when the provider is configured without a finite expiry.
	ExpiresIn *int64 `json:"expires_in,omitempty"`
}

// NewTokenResponse builds the token endpoint body for a grant outcome.
// A nil expiresIn leaves the expiry out of the response.
func NewTokenResponse(outcome GrantOutcome, expiresIn *int64) *TokenResponse {
	return &TokenResponse{
		AccessToken:  outcome.Token,
		RefreshToken: outcome.Refresh,
		TokenType:    BearerTokenType,
		ExpiresIn:    expiresIn,
	}
}
