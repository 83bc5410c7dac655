package oauth2

import (
	"net/http"

	"github.com/pkg/errors"
)

// ErrorKind is the machine readable error code defined by RFC 6749 §4.1.2.1 and §5.2.
type ErrorKind string

const (
	InvalidRequestKind          ErrorKind = "invalid_request"
	InvalidClientKind           ErrorKind = "invalid_client"
	InvalidGrantKind            ErrorKind = "invalid_grant"
	UnsupportedGrantTypeKind    ErrorKind = "unsupported_grant_type"
	InvalidScopeKind            ErrorKind = "invalid_scope"
	UnsupportedResponseTypeKind ErrorKind = "unsupported_response_type"
	UnauthorizedClientKind      ErrorKind = "unauthorized_client"
	AccessDeniedKind            ErrorKind = "access_denied"
)

// ServerErrorCode is used when a non protocol error has to be reported to a client.
const ServerErrorCode = "server_error"

var defaultStatus = map[ErrorKind]int{
	InvalidRequestKind:          http.StatusBadRequest,
	InvalidClientKind:           http.StatusBadRequest,
	InvalidGrantKind:            http.StatusBadRequest,
	UnsupportedGrantTypeKind:    http.StatusBadRequest,
	InvalidScopeKind:            http.StatusBadRequest,
	UnsupportedResponseTypeKind: http.StatusBadRequest,
	UnauthorizedClientKind:      http.StatusUnauthorized,
	AccessDeniedKind:            http.StatusUnauthorized,
}

// Status returns the default HTTP status for the kind.
func (k ErrorKind) Status() int {
	if status, ok := defaultStatus[k]; ok {
		return status
	}
	return http.StatusBadRequest
}

// Error is an OAuth2 protocol error. It is an expected negative outcome of
// validation and carries everything needed to format a response.
type Error struct {
	Kind        ErrorKind
	Status      int
	Description string
}

// NewError creates a protocol error with the kind's default status.
func NewError(kind ErrorKind, description string) *Error {
	return &Error{
		Kind:        kind,
		Status:      kind.Status(),
		Description: description,
	}
}

func (e *Error) Error() string {
	return string(e.Kind) + ": " + e.Description
}

// Code returns the snake_case error code sent to clients.
func (e *Error) Code() string {
	return string(e.Kind)
}

// StatusCode returns the HTTP status the error should be reported with.
func (e *Error) StatusCode() int {
	return e.Status
}

// Is matches errors of the same kind, so errors.Is(err, &Error{Kind: AccessDeniedKind}) works.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// AsError reports whether err is, or wraps, a protocol error.
func AsError(err error) (*Error, bool) {
	var oauthErr *Error
	if errors.As(err, &oauthErr) {
		return oauthErr, true
	}
	return nil, false
}

func InvalidRequest(description string) *Error {
	return NewError(InvalidRequestKind, description)
}

func InvalidClient(description string) *Error {
	return NewError(InvalidClientKind, description)
}

func InvalidGrant(description string) *Error {
	return NewError(InvalidGrantKind, description)
}

func UnsupportedGrantType(description string) *Error {
	return NewError(UnsupportedGrantTypeKind, description)
}

func InvalidScope(description string) *Error {
	return NewError(InvalidScopeKind, description)
}

func UnsupportedResponseType(description string) *Error {
	return NewError(UnsupportedResponseTypeKind, description)
}

func UnauthorizedClient(description string) *Error {
	return NewError(UnauthorizedClientKind, description)
}

func AccessDenied(description string) *Error {
	return NewError(AccessDeniedKind, description)
}
