package refresh

import (
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/jrsteele09/go-oauth-engine/internal/config"
	"github.com/pkg/errors"
)

// ErrInvalidToken is returned by Rotate for an unknown, already used or expired token.
var ErrInvalidToken = errors.New("refresh token is invalid or expired")

// Manager handles refresh token creation, validation and rotation.
// A subject holds at most one refresh token at a time.
type Manager struct {
	repo    Repo
	config  config.OAuthConfig
	nowFunc func() time.Time
}

type ManagerOption func(*Manager)

func WithNowFunc(now func() time.Time) ManagerOption {
	return func(m *Manager) {
		m.nowFunc = now
	}
}

func NewManager(repo Repo, cfg config.OAuthConfig, options ...ManagerOption) *Manager {
	m := &Manager{
		repo:    repo,
		config:  cfg,
		nowFunc: time.Now,
	}
	for _, opt := range options {
		opt(m)
	}
	return m
}

// Create issues a new refresh token for subject, replacing any previous one.
func (m *Manager) Create(subject string) (string, error) {
	if existing, err := m.repo.GetBySubject(subject); err == nil && existing != nil {
		if err := m.repo.Delete(existing.Token); err != nil && !errors.Is(err, ErrNotFound) {
			return "", errors.Wrap(err, "[refresh.Create] Delete")
		}
	}

	tokenBytes := make([]byte, m.config.GetRefreshTokenLength())
	if _, err := rand.Read(tokenBytes); err != nil {
		return "", errors.Wrap(err, "[refresh.Create] rand.Read")
	}

	tokenStr := hex.EncodeToString(tokenBytes)
	if err := m.repo.Upsert(&StoredRefreshToken{
		Token:   tokenStr,
		Subject: subject,
		Iat:     m.nowFunc(),
	}); err != nil {
		return "", errors.Wrap(err, "[refresh.Create] Upsert")
	}
	return tokenStr, nil
}

// Rotate consumes token and issues its replacement. It returns the token's subject.
func (m *Manager) Rotate(token string) (subject, replacement string, err error) {
	stored, err := m.repo.Get(token)
	if errors.Is(err, ErrNotFound) {
		return "", "", ErrInvalidToken
	}
	if err != nil {
		return "", "", errors.Wrap(err, "[refresh.Rotate] Get")
	}

	// Delete is the single-use check: a concurrent rotation loses here.
	if err := m.repo.Delete(token); err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", "", ErrInvalidToken
		}
		return "", "", errors.Wrap(err, "[refresh.Rotate] Delete")
	}

	if m.IsExpired(stored) {
		return "", "", ErrInvalidToken
	}

	replacement, err = m.Create(stored.Subject)
	if err != nil {
		return "", "", err
	}
	return stored.Subject, replacement, nil
}

// IsExpired reports whether rt is older than the configured refresh token lifetime.
// A zero lifetime never expires.
func (m *Manager) IsExpired(rt *StoredRefreshToken) bool {
	expiry := m.config.GetRefreshTokenExpiry()
	if expiry <= 0 {
		return false
	}
	return m.nowFunc().Sub(rt.Iat) > expiry
}
