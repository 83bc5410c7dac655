package token

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jrsteele09/go-oauth-engine/token/refresh"
	"github.com/pkg/errors"
)

const (
	defaultIssuer      = "go-oauth-engine"
	defaultCodeTimeout = 10 * time.Minute
)

// Manager issues and checks the credentials the example host hands out: signed JWT
// access tokens, single-use authorization codes and rotating refresh tokens.
type Manager struct {
	signer            Signer
	codes             CodeRepo
	refresh           *refresh.Manager
	issuer            string
	accessTokenExpiry time.Duration
	codeTimeout       time.Duration
	nowFunc           func() time.Time
}

type ManagerOption func(*Manager)

// WithAccessTokenExpiry sets the access token lifetime. Zero issues tokens without exp.
func WithAccessTokenExpiry(expiry time.Duration) ManagerOption {
	return func(m *Manager) {
		m.accessTokenExpiry = expiry
	}
}

func WithCodeTimeout(timeout time.Duration) ManagerOption {
	return func(m *Manager) {
		m.codeTimeout = timeout
	}
}

func WithIssuer(issuer string) ManagerOption {
	return func(m *Manager) {
		m.issuer = issuer
	}
}

func WithNowFunc(now func() time.Time) ManagerOption {
	return func(m *Manager) {
		m.nowFunc = now
	}
}

func New(signer Signer, codes CodeRepo, refreshManager *refresh.Manager, options ...ManagerOption) (*Manager, error) {
	if signer == nil {
		return nil, errors.New("[token.New] signer is required")
	}
	if codes == nil {
		return nil, errors.New("[token.New] code repo is required")
	}
	if refreshManager == nil {
		return nil, errors.New("[token.New] refresh manager is required")
	}

	m := &Manager{
		signer:      signer,
		codes:       codes,
		refresh:     refreshManager,
		issuer:      defaultIssuer,
		codeTimeout: defaultCodeTimeout,
		nowFunc:     time.Now,
	}
	for _, opt := range options {
		opt(m)
	}
	return m, nil
}

// CreateAccessToken signs an access token for subject.
func (m *Manager) CreateAccessToken(subject string) (string, error) {
	now := m.nowFunc()
	claims := jwt.RegisteredClaims{
		Issuer:   m.issuer,
		Subject:  subject,
		IssuedAt: jwt.NewNumericDate(now),
		ID:       uuid.NewString(),
	}
	if m.accessTokenExpiry > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(m.accessTokenExpiry))
	}

	signed, err := m.signer.Sign(claims)
	if err != nil {
		return "", errors.Wrap(err, "[Manager.CreateAccessToken]")
	}
	return signed, nil
}

// ParseAccessToken verifies rawToken's signature, issuer and expiry and returns its claims.
func (m *Manager) ParseAccessToken(rawToken string) (*jwt.RegisteredClaims, error) {
	if strings.TrimSpace(rawToken) == "" {
		return nil, errors.New("[Manager.ParseAccessToken] empty token")
	}

	parserOptions := []jwt.ParserOption{
		jwt.WithValidMethods([]string{m.signer.GetSigningMethod().Alg()}),
		jwt.WithIssuer(m.issuer),
		jwt.WithTimeFunc(m.nowFunc),
	}
	if m.accessTokenExpiry > 0 {
		parserOptions = append(parserOptions, jwt.WithExpirationRequired())
	}

	claims := &jwt.RegisteredClaims{}
	if _, err := jwt.ParseWithClaims(rawToken, claims, m.signer.GetVerificationKey, parserOptions...); err != nil {
		return nil, errors.Wrap(err, "[Manager.ParseAccessToken]")
	}
	return claims, nil
}

// ValidateAccessToken reports whether rawToken is a live token issued by this manager.
func (m *Manager) ValidateAccessToken(rawToken string) bool {
	_, err := m.ParseAccessToken(rawToken)
	return err == nil
}

// CreateCode issues an authorization code bound to clientID and redirectURI.
func (m *Manager) CreateCode(resourceOwner, clientID, redirectURI string) (string, error) {
	code := &AuthCode{
		Code:          uuid.NewString(),
		ClientID:      clientID,
		RedirectURI:   redirectURI,
		ResourceOwner: resourceOwner,
		ExpiresAt:     m.nowFunc().Add(m.codeTimeout),
	}
	if err := m.codes.Upsert(code); err != nil {
		return "", errors.Wrap(err, "[Manager.CreateCode] Upsert")
	}
	return code.Code, nil
}

// ConsumeCode returns the code's record and removes it. An unknown, already used or
// expired code returns nil without error.
func (m *Manager) ConsumeCode(code string) (*AuthCode, error) {
	stored, err := m.codes.Get(code)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "[Manager.ConsumeCode] Get")
	}

	if err := m.codes.Delete(code); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "[Manager.ConsumeCode] Delete")
	}

	if m.nowFunc().After(stored.ExpiresAt) {
		return nil, nil
	}
	return stored, nil
}

// CreateRefreshToken issues a refresh token for subject.
func (m *Manager) CreateRefreshToken(subject string) (string, error) {
	return m.refresh.Create(subject)
}

// ExchangeRefreshToken rotates refreshToken and issues a new access token for its subject.
func (m *Manager) ExchangeRefreshToken(refreshToken string) (accessToken, replacement string, err error) {
	subject, replacement, err := m.refresh.Rotate(refreshToken)
	if err != nil {
		return "", "", err
	}
	accessToken, err = m.CreateAccessToken(subject)
	if err != nil {
		return "", "", err
	}
	return accessToken, replacement, nil
}
