package server

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/jrsteele09/go-oauth-engine/auth"
	"github.com/jrsteele09/go-oauth-engine/internal/config"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Server mounts the token and authorization endpoints in front of a host handler and
// gates every other request with bearer token validation.
type Server struct {
	env      string
	mux      *http.ServeMux
	routes   []string
	provider *auth.Provider
	resource http.Handler
	logger   zerolog.Logger
	limiter  *RateLimiter
	cors     config.CorsConfig
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithEnv sets the environment name. Routes are listed at startup in DEV.
func WithEnv(env string) Option {
	return func(s *Server) {
		s.env = env
	}
}

// WithRateLimit limits token endpoint requests per client IP.
func WithRateLimit(limiter *RateLimiter) Option {
	return func(s *Server) {
		s.limiter = limiter
	}
}

// WithCors answers cross origin requests to the endpoints for the allowed origins.
func WithCors(cors config.CorsConfig) Option {
	return func(s *Server) {
		s.cors = cors
	}
}

// New builds the server. resource serves every request that is not addressed to the
// token or authorization endpoint, once its bearer token has been accepted.
func New(provider *auth.Provider, resource http.Handler, opts ...Option) (*Server, error) {
	if provider == nil {
		return nil, errors.New("[server.New] provider is required")
	}
	if resource == nil {
		resource = http.NotFoundHandler()
	}

	s := &Server{
		mux:      http.NewServeMux(),
		provider: provider,
		resource: resource,
		logger:   log.Logger,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.initRoutes()
	s.logRoutes()

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) initRoutes() {
	s.RegisterRouteHandler("POST "+s.provider.TokenEndpoint(),
		ChainMiddleware(s.Token(), s.EndpointMiddleware(s.RateLimitMiddleware)...))

	if s.provider.AuthorizeEnabled() {
		s.RegisterRouteHandler("GET "+s.provider.AuthorizeEndpoint(),
			ChainMiddleware(s.Authorize(), s.EndpointMiddleware()...))
	}

	if s.cors != nil {
		s.RegisterRouteHandler("OPTIONS "+s.provider.TokenEndpoint(), ChainMiddleware(http.NotFound, s.EndpointMiddleware()...))
		if s.provider.AuthorizeEnabled() {
			s.RegisterRouteHandler("OPTIONS "+s.provider.AuthorizeEndpoint(), ChainMiddleware(http.NotFound, s.EndpointMiddleware()...))
		}
	}

	s.RegisterRouteHandler("/", ChainMiddleware(s.resource.ServeHTTP, s.ResourceMiddleware()...))
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return
	}
	for _, route := range s.routes {
		method, path, found := strings.Cut(route, " ")
		if !found {
			method, path = "*", route
		}
		s.logger.Info().Msg(colouredRoute(method, path))
	}
}

func colouredRoute(method, path string) string {
	colour, ok := methodColors[method]
	if !ok {
		colour = Gray
	}
	return fmt.Sprintf("[%s %-7s%s] %s", colour, method, ResetColor, path)
}
