package users

import "github.com/pkg/errors"

// ErrNotFound is returned by a UserRepo for an unknown user.
var ErrNotFound = errors.New("user not found")

type UserRepo interface {
	Upsert(user *User) error
	GetByUsername(username string) (*User, error)
}
