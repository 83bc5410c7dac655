package config

import (
	"time"

	"github.com/jrsteele09/go-oauth-engine/oauth2"
)

const (
	grantsEnvVar            = "OAUTH_GRANTS"
	allowImplicitEnvVar     = "OAUTH_ALLOW_IMPLICIT"
	tokenEndpointEnvVar     = "OAUTH_TOKEN_ENDPOINT"
	authorizeEndpointEnvVar = "OAUTH_AUTHORIZE_ENDPOINT"
	realmEnvVar             = "OAUTH_REALM"
	tokenExpiryEnvVar       = "OAUTH_TOKEN_EXPIRY"
	refreshExpiryEnvVar     = "OAUTH_REFRESH_EXPIRY"
)

type OAuthConfig interface {
	GetGrants() []oauth2.GrantType
	GetAllowImplicit() bool
	GetTokenEndpoint() string
	GetAuthorizeEndpoint() string
	GetRealm() string
	GetAccessTokenExpiry() time.Duration
	GetRefreshTokenExpiry() time.Duration
	GetAuthCodeTimeout() time.Duration
	GetRefreshTokenLength() int
}

type OAuth struct{}

var _ OAuthConfig = OAuth{}

var defaultGrants = []string{
	string(oauth2.AuthorizationCodeGrant),
	string(oauth2.ClientCredentialsGrant),
	string(oauth2.PasswordGrant),
	string(oauth2.RefreshTokenGrant),
}

func (OAuth) GetGrants() []oauth2.GrantType {
	names := GetEnvList(grantsEnvVar, defaultGrants)
	grantTypes := make([]oauth2.GrantType, len(names))
	for i, name := range names {
		grantTypes[i] = oauth2.GrantType(name)
	}
	return grantTypes
}

func (OAuth) GetAllowImplicit() bool {
	return GetEnvBool(allowImplicitEnvVar, false)
}

// GetTokenEndpoint is empty unless set, leaving the engine default in place.
func (OAuth) GetTokenEndpoint() string {
	return GetEnv(tokenEndpointEnvVar, "")
}

func (OAuth) GetAuthorizeEndpoint() string {
	return GetEnv(authorizeEndpointEnvVar, "")
}

func (OAuth) GetRealm() string {
	return GetEnv(realmEnvVar, "")
}

// GetAccessTokenExpiry is the access token lifetime. Zero means tokens do not expire.
func (OAuth) GetAccessTokenExpiry() time.Duration {
	return GetEnvDuration(tokenExpiryEnvVar, time.Hour)
}

func (OAuth) GetRefreshTokenExpiry() time.Duration {
	return GetEnvDuration(refreshExpiryEnvVar, 7*24*time.Hour)
}

func (OAuth) GetAuthCodeTimeout() time.Duration {
	return 10 * time.Minute
}

func (OAuth) GetRefreshTokenLength() int {
	return 32 // 32 bytes = 256 bits
}
