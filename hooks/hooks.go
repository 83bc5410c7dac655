// Package hooks describes the capabilities the OAuth2 engine delegates to the host
// application: client authentication, token and code generation, authorization code
// and access token validation, and resource owner approval.
//
// The engine treats every value returned by a hook as opaque. An empty string (or a
// false boolean) is the "denied" outcome and is reported to the client as a protocol
// error; a non-nil error is propagated to the HTTP boundary unchanged.
package hooks

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/pkg/errors"
)

// Name identifies a hook. The names match the hook names used in configuration errors.
type Name string

const (
	AuthenticateClient   Name = "authenticateClient"
	GenerateUserToken    Name = "generateUserToken"
	GenerateRefreshToken Name = "generateRefreshToken"
	GenerateCode         Name = "generateCode"
	ValidateAuthCode     Name = "validateAuthCode"
	ExchangeRefreshToken Name = "exchangeRefreshToken"
	UserAuthorization    Name = "userAuthorization"
	ValidateToken        Name = "validateToken"
)

// ErrApprovalPending is returned by a UserAuthorization hook that has taken over the
// response itself (rendered a login page, issued an authentication challenge...).
// The engine writes nothing further for that request.
var ErrApprovalPending = errors.New("resource owner approval pending")

// AuthCode is the result of a successful authorization code lookup.
// Every field must be set.
type AuthCode struct {
	Code          string
	ClientID      string
	RedirectURI   string
	ResourceOwner string
}

// RefreshResult is the outcome of exchanging a refresh token.
// An empty RefreshToken means no replacement refresh token was issued.
type RefreshResult struct {
	AccessToken  string
	RefreshToken string
}

type (
	AuthenticateClientFunc   func(ctx context.Context, clientID, clientSecret string) (bool, error)
	GenerateTokenFunc        func(ctx context.Context, ownerOrKey, secondaryKey string) (string, error)
	GenerateCodeFunc         func(ctx context.Context, resourceOwner, clientID string) (string, error)
	ValidateAuthCodeFunc     func(ctx context.Context, code string) (*AuthCode, error)
	ExchangeRefreshTokenFunc func(ctx context.Context, refreshToken string) (RefreshResult, error)
	UserAuthorizationFunc    func(ctx context.Context, w http.ResponseWriter, r *http.Request, clientID, redirectURI string) (string, error)
	ValidateTokenFunc        func(ctx context.Context, token string) (bool, error)
)

// Set holds the host supplied hooks. A nil field is an absent hook.
// A Set is configured once and only read afterwards.
type Set struct {
	AuthenticateClient   AuthenticateClientFunc
	GenerateUserToken    GenerateTokenFunc
	GenerateRefreshToken GenerateTokenFunc
	GenerateCode         GenerateCodeFunc
	ValidateAuthCode     ValidateAuthCodeFunc
	ExchangeRefreshToken ExchangeRefreshTokenFunc
	UserAuthorization    UserAuthorizationFunc
	ValidateToken        ValidateTokenFunc
}

// Has reports whether the named hook is present.
func (s Set) Has(name Name) bool {
	switch name {
	case AuthenticateClient:
		return s.AuthenticateClient != nil
	case GenerateUserToken:
		return s.GenerateUserToken != nil
	case GenerateRefreshToken:
		return s.GenerateRefreshToken != nil
	case GenerateCode:
		return s.GenerateCode != nil
	case ValidateAuthCode:
		return s.ValidateAuthCode != nil
	case ExchangeRefreshToken:
		return s.ExchangeRefreshToken != nil
	case UserAuthorization:
		return s.UserAuthorization != nil
	case ValidateToken:
		return s.ValidateToken != nil
	}
	return false
}

// Missing returns the names from required that are not present, in order.
func (s Set) Missing(required ...Name) []Name {
	var missing []Name
	for _, name := range required {
		if !s.Has(name) {
			missing = append(missing, name)
		}
	}
	return missing
}

// ContractViolationError reports a hook that returned a result of the wrong shape.
// It is a programming error in the host and never a protocol error.
type ContractViolationError struct {
	Hook   Name
	Reason string
}

func (e *ContractViolationError) Error() string {
	return fmt.Sprintf("hook contract violation: '%s' %s", e.Hook, e.Reason)
}

// NewContractViolation builds a ContractViolationError for hook.
func NewContractViolation(hook Name, reason string) *ContractViolationError {
	return &ContractViolationError{Hook: hook, Reason: reason}
}

// IsContractViolation reports whether err is, or wraps, a ContractViolationError.
func IsContractViolation(err error) bool {
	var violation *ContractViolationError
	return errors.As(err, &violation)
}

// JoinNames renders names as a comma separated list.
func JoinNames(names []Name) string {
	parts := make([]string, len(names))
	for i, n := range names {
		parts[i] = string(n)
	}
	return strings.Join(parts, ", ")
}
