package refresh

import (
	"time"

	"github.com/pkg/errors"
)

// ErrNotFound is returned by a Repo for an unknown token.
var ErrNotFound = errors.New("refresh token not found")

// StoredRefreshToken is the server side record of a refresh token.
// The client only receives Token, a random string.
type StoredRefreshToken struct {
	Token   string
	Subject string // resource owner or client the token was issued to
	Iat     time.Time
}

// Repo stores refresh token records keyed by the token string.
// Delete of an unknown token returns ErrNotFound.
type Repo interface {
	Upsert(refreshToken *StoredRefreshToken) error
	Delete(token string) error
	Get(token string) (*StoredRefreshToken, error)
	GetBySubject(subject string) (*StoredRefreshToken, error)
}
