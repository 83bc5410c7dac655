// Package hostapp is the example host behind the engine hooks: registered clients,
// resource owners with passwords, JWT access tokens, single-use authorization codes
// and rotating refresh tokens, with HTTP Basic authentication for approvals.
package hostapp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/jrsteele09/go-oauth-engine/clients"
	"github.com/jrsteele09/go-oauth-engine/hooks"
	"github.com/jrsteele09/go-oauth-engine/oauth2"
	"github.com/jrsteele09/go-oauth-engine/token"
	"github.com/jrsteele09/go-oauth-engine/token/refresh"
	"github.com/jrsteele09/go-oauth-engine/users"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const defaultRealm = "authorize"

type App struct {
	clients clients.Repo
	users   users.UserRepo
	tokens  *token.Manager
	realm   string
	logger  zerolog.Logger
}

type Option func(*App)

func WithLogger(logger zerolog.Logger) Option {
	return func(a *App) {
		a.logger = logger
	}
}

// WithRealm sets the realm of the Basic challenge sent to resource owners.
func WithRealm(realm string) Option {
	return func(a *App) {
		a.realm = realm
	}
}

func New(clientRepo clients.Repo, userRepo users.UserRepo, tokens *token.Manager, opts ...Option) (*App, error) {
	if clientRepo == nil || userRepo == nil || tokens == nil {
		return nil, errors.New("[hostapp.New] client repo, user repo and token manager are required")
	}
	a := &App{
		clients: clientRepo,
		users:   userRepo,
		tokens:  tokens,
		realm:   defaultRealm,
		logger:  log.Logger,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// Hooks returns the complete hook set for the engine.
func (a *App) Hooks() hooks.Set {
	return hooks.Set{
		AuthenticateClient:   a.authenticateClient,
		GenerateUserToken:    a.generateUserToken,
		GenerateRefreshToken: a.generateRefreshToken,
		GenerateCode:         a.generateCode,
		ValidateAuthCode:     a.validateAuthCode,
		ExchangeRefreshToken: a.exchangeRefreshToken,
		UserAuthorization:    a.userAuthorization,
		ValidateToken:        a.validateToken,
	}
}

func (a *App) authenticateClient(_ context.Context, clientID, clientSecret string) (bool, error) {
	if clientID == "" {
		return false, nil
	}
	client, err := a.clients.Get(clientID)
	if errors.Is(err, clients.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, errors.Wrap(err, "[authenticateClient] Get")
	}
	return client.CheckSecret(clientSecret), nil
}

// subject resolves who a token is issued to. The password grant hands over the
// resource owner's credentials, which are checked here; every other caller passes a
// subject the engine has already established.
func (a *App) subject(ctx context.Context, key, secondaryKey string) (string, error) {
	if grantType, _ := hooks.GrantTypeFromContext(ctx); grantType != oauth2.PasswordGrant {
		return key, nil
	}
	user, err := a.checkUser(key, secondaryKey)
	if err != nil || user == nil {
		return "", err
	}
	return user.Username, nil
}

// checkUser returns the user when the credentials match an active account, nil otherwise.
func (a *App) checkUser(username, password string) (*users.User, error) {
	user, err := a.users.GetByUsername(username)
	if errors.Is(err, users.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "[checkUser] GetByUsername")
	}
	if user.Blocked || !user.CheckPassword(password) {
		return nil, nil
	}
	return user, nil
}

func (a *App) generateUserToken(ctx context.Context, key, secondaryKey string) (string, error) {
	subject, err := a.subject(ctx, key, secondaryKey)
	if err != nil || subject == "" {
		return "", err
	}
	return a.tokens.CreateAccessToken(subject)
}

// generateRefreshToken issues nothing for client_credentials: the client can always
// ask again with its own credentials.
func (a *App) generateRefreshToken(ctx context.Context, key, secondaryKey string) (string, error) {
	if grantType, _ := hooks.GrantTypeFromContext(ctx); grantType == oauth2.ClientCredentialsGrant {
		return "", nil
	}
	subject, err := a.subject(ctx, key, secondaryKey)
	if err != nil || subject == "" {
		return "", err
	}
	return a.tokens.CreateRefreshToken(subject)
}

func (a *App) generateCode(ctx context.Context, resourceOwner, clientID string) (string, error) {
	redirectURI, ok := hooks.RedirectURIFromContext(ctx)
	if !ok {
		return "", nil
	}
	return a.tokens.CreateCode(resourceOwner, clientID, redirectURI)
}

func (a *App) validateAuthCode(_ context.Context, code string) (*hooks.AuthCode, error) {
	stored, err := a.tokens.ConsumeCode(code)
	if err != nil || stored == nil {
		return nil, err
	}
	return &hooks.AuthCode{
		Code:          stored.Code,
		ClientID:      stored.ClientID,
		RedirectURI:   stored.RedirectURI,
		ResourceOwner: stored.ResourceOwner,
	}, nil
}

func (a *App) exchangeRefreshToken(_ context.Context, refreshToken string) (hooks.RefreshResult, error) {
	accessToken, replacement, err := a.tokens.ExchangeRefreshToken(refreshToken)
	if errors.Is(err, refresh.ErrInvalidToken) {
		return hooks.RefreshResult{}, oauth2.InvalidGrant(err.Error())
	}
	if err != nil {
		return hooks.RefreshResult{}, err
	}
	return hooks.RefreshResult{AccessToken: accessToken, RefreshToken: replacement}, nil
}

// userAuthorization approves a request for the resource owner named by HTTP Basic
// credentials. Unregistered redirect URIs are refused without redirecting to them.
func (a *App) userAuthorization(_ context.Context, w http.ResponseWriter, r *http.Request, clientID, redirectURI string) (string, error) {
	client, err := a.clients.Get(clientID)
	if err != nil && !errors.Is(err, clients.ErrNotFound) {
		return "", errors.Wrap(err, "[userAuthorization] Get")
	}
	if client == nil || !client.HasRedirectURI(redirectURI) {
		a.logger.Warn().Str("client_id", clientID).Str("redirect_uri", redirectURI).Msg("authorization for unregistered redirect_uri refused")
		writeError(w, http.StatusBadRequest, oauth2.InvalidRequest("redirect_uri is not registered for this client"))
		return "", hooks.ErrApprovalPending
	}

	username, password, ok := r.BasicAuth()
	if !ok {
		a.challenge(w)
		return "", hooks.ErrApprovalPending
	}
	user, err := a.checkUser(username, password)
	if err != nil {
		return "", err
	}
	if user == nil {
		a.challenge(w)
		return "", hooks.ErrApprovalPending
	}

	a.logger.Info().Str("client_id", clientID).Str("user", user.Username).Msg("authorization approved")
	return user.Username, nil
}

func (a *App) challenge(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", fmt.Sprintf("Basic realm=%q, charset=\"UTF-8\"", a.realm))
	writeError(w, http.StatusUnauthorized, oauth2.AccessDenied("resource owner authentication required"))
}

func (a *App) validateToken(_ context.Context, accessToken string) (bool, error) {
	return a.tokens.ValidateAccessToken(accessToken), nil
}

func writeError(w http.ResponseWriter, status int, err *oauth2.Error) {
	writeJSON(w, status, map[string]string{
		"error":             err.Code(),
		"error_description": err.Description,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
