package token

import (
	"time"

	"github.com/pkg/errors"
)

// ErrNotFound is returned by a CodeRepo for an unknown code.
var ErrNotFound = errors.New("authorization code not found")

// AuthCode is an issued authorization code and what it was issued for.
type AuthCode struct {
	Code          string
	ClientID      string
	RedirectURI   string
	ResourceOwner string
	ExpiresAt     time.Time
}

// CodeRepo stores authorization codes. Delete of an unknown code returns ErrNotFound.
type CodeRepo interface {
	Upsert(code *AuthCode) error
	Get(code string) (*AuthCode, error)
	Delete(code string) error
}
