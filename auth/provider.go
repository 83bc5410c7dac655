package auth

import (
	"net/http"
	"time"

	"github.com/jrsteele09/go-oauth-engine/grants"
	"github.com/jrsteele09/go-oauth-engine/hooks"
	"github.com/jrsteele09/go-oauth-engine/oauth2"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Defaults applied by NewProvider to empty Options fields.
const (
	DefaultTokenEndpoint     = "/token"
	DefaultAuthorizeEndpoint = "/authorize"
	DefaultRealm             = "the porch"
)

// ErrAuthorizeDisabled is returned by Authorize when authorization_code is not enabled.
var ErrAuthorizeDisabled = errors.New("authorization endpoint requires the authorization_code grant")

// Options is the host supplied configuration.
type Options struct {
	// Grants lists the enabled grant types. Empty enables authorization_code only.
	Grants []oauth2.GrantType

	// AllowImplicit lets the authorization endpoint issue access tokens directly.
	AllowImplicit bool

	TokenEndpoint     string
	AuthorizeEndpoint string

	// Realm is advertised in WWW-Authenticate challenges.
	Realm string

	// Expiry is the access token lifetime reported as expires_in.
	// Zero means no finite expiry and expires_in is omitted.
	Expiry time.Duration

	Hooks hooks.Set
}

// Provider validates and orchestrates token, authorization and resource requests.
// It holds no per-request state and is safe for concurrent use.
type Provider struct {
	options  Options
	registry *grants.Registry
	logger   zerolog.Logger
}

// ProviderOption modifies a Provider.
type ProviderOption func(*Provider)

// WithLogger sets the logger used for request failures.
func WithLogger(logger zerolog.Logger) ProviderOption {
	return func(p *Provider) {
		p.logger = logger
	}
}

// NewProvider checks the configuration and builds the grant registry.
// Every enabled grant must have its required hooks, and the client authentication and
// token validation hooks are always required.
func NewProvider(options Options, opts ...ProviderOption) (*Provider, error) {
	if options.TokenEndpoint == "" {
		options.TokenEndpoint = DefaultTokenEndpoint
	}
	if options.AuthorizeEndpoint == "" {
		options.AuthorizeEndpoint = DefaultAuthorizeEndpoint
	}
	if options.Realm == "" {
		options.Realm = DefaultRealm
	}
	if options.Expiry < 0 {
		return nil, errors.New("[NewProvider] expiry cannot be negative")
	}

	if missing := options.Hooks.Missing(hooks.AuthenticateClient, hooks.ValidateToken); len(missing) > 0 {
		return nil, errors.Wrapf(grants.ErrMissingHooks, "[NewProvider] %s", hooks.JoinNames(missing))
	}

	registry, err := grants.NewRegistry(options.Grants, options.Hooks, grants.WithImplicit(options.AllowImplicit))
	if err != nil {
		return nil, errors.Wrap(err, "[NewProvider] grant configuration")
	}
	options.Grants = registry.Enabled()

	p := &Provider{
		options:  options,
		registry: registry,
		logger:   log.Logger,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// TokenEndpoint is the path of the token endpoint.
func (p *Provider) TokenEndpoint() string {
	return p.options.TokenEndpoint
}

// AuthorizeEndpoint is the path of the authorization endpoint.
func (p *Provider) AuthorizeEndpoint() string {
	return p.options.AuthorizeEndpoint
}

// Realm is the protection realm advertised to clients.
func (p *Provider) Realm() string {
	return p.options.Realm
}

// Grants returns the enabled grant types.
func (p *Provider) Grants() []oauth2.GrantType {
	return p.registry.Enabled()
}

// AuthorizeEnabled reports whether the authorization endpoint is served.
func (p *Provider) AuthorizeEnabled() bool {
	return p.registry.Has(oauth2.AuthorizationCodeGrant)
}

// IsEndpoint reports whether method and path address the token or authorization
// endpoint. Those requests are not subject to bearer token validation.
func (p *Provider) IsEndpoint(method, path string) bool {
	if method == http.MethodPost && path == p.options.TokenEndpoint {
		return true
	}
	return method == http.MethodGet && path == p.options.AuthorizeEndpoint && p.AuthorizeEnabled()
}

// expiresIn is the expires_in value for token responses, nil when unbounded.
// Partial seconds round up so a finite expiry never reports 0.
func (p *Provider) expiresIn() *int64 {
	if p.options.Expiry <= 0 {
		return nil
	}
	seconds := int64((p.options.Expiry + time.Second - 1) / time.Second)
	return &seconds
}

// logFailure records why a request failed. Protocol errors are expected outcomes and
// only logged at debug level.
func (p *Provider) logFailure(endpoint string, err error) {
	if oauthErr, ok := oauth2.AsError(err); ok {
		p.logger.Debug().
			Str("endpoint", endpoint).
			Str("error", oauthErr.Code()).
			Msg(oauthErr.Description)
		return
	}
	if hooks.IsContractViolation(err) {
		p.logger.Error().Err(err).
			Str("endpoint", endpoint).
			Bool("contract_violation", true).
			Msg("hook returned a malformed result")
		return
	}
	if errors.Is(err, hooks.ErrApprovalPending) {
		return
	}
	p.logger.Err(err).Str("endpoint", endpoint).Msg("hook failed")
}
