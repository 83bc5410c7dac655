package hostapp

import (
	"net/http"
	"strings"

	"github.com/jrsteele09/go-oauth-engine/oauth2"
	"github.com/jrsteele09/go-oauth-engine/users"
	"github.com/pkg/errors"
)

const MePath = "/api/me"

type meResponse struct {
	Subject   string `json:"sub"`
	Username  string `json:"username,omitempty"`
	Email     string `json:"email,omitempty"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Client    bool   `json:"client,omitempty"`
}

// Routes returns the protected resources. Requests only reach them once the bearer
// gate has accepted their access token.
func (a *App) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET "+MePath, a.Me())
	return mux
}

// Me describes the subject of the presented access token: a resource owner, or the
// client itself for client_credentials tokens.
func (a *App) Me() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, err := a.tokens.ParseAccessToken(accessToken(r))
		if err != nil {
			writeError(w, http.StatusUnauthorized, oauth2.UnauthorizedClient("Client not authorized"))
			return
		}

		user, err := a.users.GetByUsername(claims.Subject)
		switch {
		case errors.Is(err, users.ErrNotFound):
			writeJSON(w, http.StatusOK, meResponse{Subject: claims.Subject, Client: true})
		case err != nil:
			a.logger.Error().Err(err).Str("sub", claims.Subject).Msg("user lookup failed")
			writeJSON(w, http.StatusInternalServerError, map[string]string{
				"error":             "server_error",
				"error_description": "internal server error",
			})
		default:
			writeJSON(w, http.StatusOK, meResponse{
				Subject:   claims.Subject,
				Username:  user.Username,
				Email:     user.Email,
				FirstName: user.FirstName,
				LastName:  user.LastName,
			})
		}
	}
}

// accessToken finds the token in whichever location the bearer gate accepted it from.
func accessToken(r *http.Request) string {
	if scheme, credentials, ok := strings.Cut(r.Header.Get("Authorization"), " "); ok && strings.EqualFold(scheme, "Bearer") {
		return strings.TrimSpace(credentials)
	}
	if token := r.URL.Query().Get("access_token"); token != "" {
		return token
	}
	if r.PostForm != nil {
		return r.PostForm.Get("access_token")
	}
	return ""
}
