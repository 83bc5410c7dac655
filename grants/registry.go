package grants

import (
	"fmt"
	"strings"

	"github.com/jrsteele09/go-oauth-engine/hooks"
	"github.com/jrsteele09/go-oauth-engine/oauth2"
	"github.com/pkg/errors"
)

var (
	// ErrUnknownGrant is returned when a configured grant type is not one the engine implements.
	ErrUnknownGrant = errors.New("unknown grant type")

	// ErrMissingHooks is matched by every MissingHooksError.
	ErrMissingHooks = errors.New("required hooks not met")
)

// MissingHooksError lists the hooks an enabled grant needs but were not configured.
type MissingHooksError struct {
	Grant oauth2.GrantType
	Hooks []hooks.Name
}

func (e *MissingHooksError) Error() string {
	return fmt.Sprintf("%s: grant '%s' needs %s", ErrMissingHooks, e.Grant, hooks.JoinNames(e.Hooks))
}

func (e *MissingHooksError) Unwrap() error {
	return ErrMissingHooks
}

// DefaultGrants is used when no grant type is enabled explicitly.
var DefaultGrants = []oauth2.GrantType{oauth2.AuthorizationCodeGrant}

type registryConfig struct {
	allowImplicit bool
}

// RegistryOption configures a Registry.
type RegistryOption func(*registryConfig)

// WithImplicit allows the authorization endpoint to issue access tokens directly
// (response_type=token).
func WithImplicit(allow bool) RegistryOption {
	return func(c *registryConfig) {
		c.allowImplicit = allow
	}
}

// Registry maps the enabled grant types to their strategies. It is built once and
// only read afterwards.
type Registry struct {
	enabled    []oauth2.GrantType
	strategies map[oauth2.GrantType]Strategy
}

// Known lists every grant type the engine implements.
func Known() []oauth2.GrantType {
	return []oauth2.GrantType{
		oauth2.AuthorizationCodeGrant,
		oauth2.ClientCredentialsGrant,
		oauth2.PasswordGrant,
		oauth2.RefreshTokenGrant,
	}
}

func newStrategy(grantType oauth2.GrantType, hs hooks.Set, cfg registryConfig) (Strategy, bool) {
	switch grantType {
	case oauth2.AuthorizationCodeGrant:
		return NewAuthorizationCode(hs, cfg.allowImplicit), true
	case oauth2.ClientCredentialsGrant:
		return NewClientCredentials(hs), true
	case oauth2.PasswordGrant:
		return NewResourceOwnerPassword(hs), true
	case oauth2.RefreshTokenGrant:
		return NewRefreshToken(hs), true
	}
	return nil, false
}

// NewRegistry builds the strategies for the enabled grant types and checks that each
// one has all of its required hooks. An empty list enables DefaultGrants.
func NewRegistry(enabled []oauth2.GrantType, hs hooks.Set, options ...RegistryOption) (*Registry, error) {
	var cfg registryConfig
	for _, opt := range options {
		opt(&cfg)
	}

	if len(enabled) == 0 {
		enabled = DefaultGrants
	}

	r := &Registry{
		strategies: make(map[oauth2.GrantType]Strategy, len(enabled)),
	}

	for _, grantType := range enabled {
		if _, seen := r.strategies[grantType]; seen {
			continue
		}
		strategy, ok := newStrategy(grantType, hs, cfg)
		if !ok {
			return nil, errors.Wrapf(ErrUnknownGrant, "[NewRegistry] '%s'", grantType)
		}
		if missing := hs.Missing(strategy.RequiredHooks()...); len(missing) > 0 {
			return nil, &MissingHooksError{Grant: grantType, Hooks: missing}
		}
		r.strategies[grantType] = strategy
		r.enabled = append(r.enabled, grantType)
	}

	return r, nil
}

// Enabled returns the enabled grant types in configuration order.
func (r *Registry) Enabled() []oauth2.GrantType {
	return append([]oauth2.GrantType(nil), r.enabled...)
}

// EnabledString renders the enabled grant types as "a, b".
func (r *Registry) EnabledString() string {
	names := make([]string, len(r.enabled))
	for i, g := range r.enabled {
		names[i] = string(g)
	}
	return strings.Join(names, ", ")
}

// Has reports whether grantType is enabled.
func (r *Registry) Has(grantType oauth2.GrantType) bool {
	_, ok := r.strategies[grantType]
	return ok
}

// Lookup returns the strategy for grantType or an unsupported_grant_type error
// listing the enabled grant types.
func (r *Registry) Lookup(grantType oauth2.GrantType) (Strategy, error) {
	strategy, ok := r.strategies[grantType]
	if !ok {
		return nil, oauth2.UnsupportedGrantType("the supported grant_type are: " + r.EnabledString())
	}
	return strategy, nil
}

// AuthorizationCode returns the authorization_code strategy when it is enabled.
func (r *Registry) AuthorizationCode() (*AuthorizationCode, bool) {
	strategy, ok := r.strategies[oauth2.AuthorizationCodeGrant]
	if !ok {
		return nil, false
	}
	ac, ok := strategy.(*AuthorizationCode)
	return ac, ok
}
