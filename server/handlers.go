package server

import (
	"encoding/json"
	"mime"
	"net/http"
	"net/url"
	"strings"

	"github.com/jrsteele09/go-oauth-engine/auth"
	"github.com/jrsteele09/go-oauth-engine/oauth2"
	"github.com/pkg/errors"
)

const (
	contentTypeJSON = "application/json; charset=utf-8"
	contentTypeForm = "application/x-www-form-urlencoded"

	serverErrorCode        = oauth2.ServerErrorCode
	serverErrorDescription = "internal server error"

	maxFormBytes = 1 << 20
)

// Token serves the token endpoint.
func (s *Server) Token() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := auth.TokenRequest{
			Body:      parseFormBody(w, r),
			BasicAuth: basicAuth(r),
		}

		tokenResponse, err := s.provider.Token(r.Context(), req)
		if err != nil {
			writeError(w, err)
			return
		}

		w.Header().Set("Cache-Control", "no-cache, no-store")
		w.Header().Set("Pragma", "no-cache")
		writeJSON(w, http.StatusOK, tokenResponse)
	}
}

// Authorize serves the authorization endpoint. The route pattern also matches HEAD,
// which is not an endpoint request and is handed to the gated resource instead.
func (s *Server) Authorize() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !s.provider.IsEndpoint(r.Method, r.URL.Path) {
			s.RequireBearer(s.resource.ServeHTTP)(w, r)
			return
		}

		result := s.provider.Authorize(r.Context(), auth.AuthorizationRequest{
			Query:   r.URL.Query(),
			Writer:  w,
			Request: r,
		})

		switch {
		case result.Handled:
			return
		case result.Location != "":
			// Set directly: http.Redirect would rewrite a redirect_uri without a scheme.
			w.Header().Set("Location", result.Location)
			w.WriteHeader(http.StatusFound)
		case result.Err != nil:
			writeError(w, result.Err)
		}
	}
}

// RequireBearer lets a request through only when it carries an accepted bearer token.
// A url-encoded body is parsed to look for access_token, so next finds the form in
// r.PostForm and r.Form and r.Body has already been read to EOF.
func (s *Server) RequireBearer(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scheme, credentials, _ := strings.Cut(r.Header.Get("Authorization"), " ")

		var body url.Values
		if isForm(r) {
			body = parseFormBody(w, r)
		}

		err := s.provider.ValidateBearer(r.Context(), auth.BearerRequest{
			AuthScheme:      scheme,
			AuthCredentials: strings.TrimSpace(credentials),
			Query:           r.URL.Query(),
			Body:            body,
		})
		if err != nil {
			writeError(w, err)
			return
		}
		next(w, r)
	}
}

// parseFormBody returns the url-encoded request body, or nil when there is none.
func parseFormBody(w http.ResponseWriter, r *http.Request) url.Values {
	if r.Body == nil || r.Body == http.NoBody || !isForm(r) {
		return nil
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if err := r.ParseForm(); err != nil {
		return nil
	}
	return r.PostForm
}

func isForm(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mediaType == contentTypeForm
}

// basicAuth reads client credentials from an Authorization: Basic header.
// Clients form-encode the id and secret before joining them (RFC 6749 §2.3.1).
func basicAuth(r *http.Request) *auth.ClientCredentials {
	id, secret, ok := r.BasicAuth()
	if !ok {
		return nil
	}
	return &auth.ClientCredentials{ID: formDecode(id), Secret: formDecode(secret)}
}

func formDecode(s string) string {
	decoded, err := url.QueryUnescape(s)
	if err != nil {
		return s
	}
	return decoded
}

func errorBody(code, description string) map[string]string {
	return map[string]string{
		"error":             code,
		"error_description": description,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError answers with the protocol error carried by err. Anything else is a hook
// failure and is reported as a server_error without detail.
func writeError(w http.ResponseWriter, err error) {
	var challenge *auth.ChallengeError
	if errors.As(err, &challenge) {
		w.Header().Set("Link", challenge.Link)
		w.Header().Set("WWW-Authenticate", challenge.WWWAuthenticate)
	}

	oauthErr, ok := oauth2.AsError(err)
	if !ok {
		writeJSON(w, http.StatusInternalServerError, errorBody(serverErrorCode, serverErrorDescription))
		return
	}
	writeJSON(w, oauthErr.StatusCode(), errorBody(oauthErr.Code(), oauthErr.Description))
}
