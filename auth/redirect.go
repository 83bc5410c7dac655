package auth

import (
	"net/url"
	"strings"

	"github.com/jrsteele09/go-oauth-engine/oauth2"
)

// AppendQuery adds params to uri as a query string, starting it with '?' when uri has
// none yet and continuing it with '&' otherwise. The rest of uri is left as given.
func AppendQuery(uri string, params url.Values) string {
	sep := "?"
	if strings.Contains(uri, "?") {
		sep = "&"
	}
	return uri + sep + params.Encode()
}

// ImplicitRedirect places an implicit flow access token in the uri fragment.
func ImplicitRedirect(uri, accessToken string) string {
	return uri + "#access_token=" + url.QueryEscape(accessToken) + "&token_type=bearer"
}

// ErrorRedirect appends error and error_description for err to uri.
// Errors that are not protocol errors are reported as server_error without detail.
func ErrorRedirect(uri string, err error) string {
	code, description := oauth2.ServerErrorCode, "internal server error"
	if oauthErr, ok := oauth2.AsError(err); ok {
		code, description = oauthErr.Code(), oauthErr.Description
	}

	// Encode sorts keys, so error precedes error_description.
	return AppendQuery(uri, url.Values{
		"error":             {code},
		"error_description": {description},
	})
}
