package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/jrsteele09/go-oauth-engine/auth"
	clientfakerepo "github.com/jrsteele09/go-oauth-engine/clients/fakerepo"
	"github.com/jrsteele09/go-oauth-engine/internal/config"
	"github.com/jrsteele09/go-oauth-engine/internal/hostapp"
	"github.com/jrsteele09/go-oauth-engine/server"
	"github.com/jrsteele09/go-oauth-engine/token"
	"github.com/jrsteele09/go-oauth-engine/token/refresh"
	refreshrepofake "github.com/jrsteele09/go-oauth-engine/token/refresh/repofake"
	tokenfakerepo "github.com/jrsteele09/go-oauth-engine/token/repofake"
	userfakerepo "github.com/jrsteele09/go-oauth-engine/users/repofake"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	c := config.New()
	setupLogging(c)

	if err := run(c); err != nil {
		log.Fatal().Err(err).Msg("Error running server")
	}
	log.Info().Msg("Server stopped")
}

func setupLogging(c config.EnvConfig) {
	level, err := zerolog.ParseLevel(c.GetLogLevel())
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	if c.GetEnv() == "DEV" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
}

func run(c config.Config) (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Bytes("stack", debug.Stack()).Msg("Recovered from panic")
			returnError = errors.New("panic recovered")
		}
	}()

	displayAppname(c.GetAppName())

	handler, err := newHandler(c)
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:              c.GetPort(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- listenAndServe(httpServer)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-waitForStopSignal():
	}
	return shutdown(httpServer)
}

// newHandler builds the example host in memory and mounts it behind the engine.
func newHandler(c config.Config) (http.Handler, error) {
	signer, err := newSigner(c)
	if err != nil {
		return nil, err
	}

	refreshManager := refresh.NewManager(refreshrepofake.NewFakeRefreshTokenRepo(), c)
	tokens, err := token.New(signer, tokenfakerepo.NewFakeCodeRepo(), refreshManager,
		token.WithAccessTokenExpiry(c.GetAccessTokenExpiry()),
		token.WithCodeTimeout(c.GetAuthCodeTimeout()),
		token.WithIssuer(c.GetAppName()),
	)
	if err != nil {
		return nil, errors.Wrap(err, "[newHandler] token manager")
	}

	app, err := hostapp.New(clientfakerepo.NewFakeClientRepo(), userfakerepo.NewFakeUserRepo(), tokens,
		hostapp.WithRealm(c.GetAppName()))
	if err != nil {
		return nil, errors.Wrap(err, "[newHandler] host app")
	}
	if err := app.Seed(c); err != nil {
		return nil, err
	}

	provider, err := auth.NewProvider(app.ProviderOptions(c))
	if err != nil {
		return nil, errors.Wrap(err, "[newHandler] provider")
	}

	opts := []server.Option{server.WithEnv(c.GetEnv()), server.WithCors(c)}
	if c.GetEnableRateLimiting() {
		opts = append(opts, server.WithRateLimit(server.NewRateLimiter(c.GetRateLimitRPS(), c.GetRateLimitBurst())))
	}
	return server.New(provider, app.Routes(), opts...)
}

func newSigner(c config.SecurityConfig) (token.Signer, error) {
	if secret := c.GetJWTSecret(); secret != "" {
		return token.NewHMACSigner([]byte(secret)), nil
	}
	log.Warn().Msg("JWT_SECRET not set, access tokens will not survive a restart")
	return token.NewRandomHMACSigner()
}

func listenAndServe(server *http.Server) error {
	log.Info().Str("addr", server.Addr).Msg("Server listening")
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "server.ListenAndServe")
	}
	return nil
}

func waitForStopSignal() <-chan os.Signal {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	return stop
}

func shutdown(server *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return errors.Wrap(err, "server.Shutdown")
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
