package hostapp

import (
	"github.com/jrsteele09/go-oauth-engine/auth"
	"github.com/jrsteele09/go-oauth-engine/clients"
	"github.com/jrsteele09/go-oauth-engine/internal/config"
	"github.com/jrsteele09/go-oauth-engine/users"
	"github.com/pkg/errors"
)

// Seed registers the demo client and resource owner when they do not exist yet.
func (a *App) Seed(cfg config.DemoConfig) error {
	if err := a.seedClient(cfg); err != nil {
		return errors.Wrap(err, "[App.Seed] failed to bootstrap demo client")
	}
	if err := a.seedUser(cfg); err != nil {
		return errors.Wrap(err, "[App.Seed] failed to bootstrap demo user")
	}
	return nil
}

func (a *App) seedClient(cfg config.DemoConfig) error {
	clientID := cfg.GetDemoClientID()
	if _, err := a.clients.Get(clientID); err == nil {
		return nil
	} else if !errors.Is(err, clients.ErrNotFound) {
		return err
	}

	client, err := clients.New(clientID, cfg.GetDemoClientSecret(), "Demo client", cfg.GetDemoRedirectURI())
	if err != nil {
		return err
	}
	if err := a.clients.Upsert(client); err != nil {
		return err
	}
	a.logger.Info().
		Str("client_id", client.ID).
		Str("redirect_uri", cfg.GetDemoRedirectURI()).
		Msg("demo client registered")
	return nil
}

func (a *App) seedUser(cfg config.DemoConfig) error {
	username := cfg.GetDemoUsername()
	if _, err := a.users.GetByUsername(username); err == nil {
		return nil
	} else if !errors.Is(err, users.ErrNotFound) {
		return err
	}

	user, err := users.New(username, username+"@example.com", cfg.GetDemoPassword())
	if err != nil {
		return err
	}
	user.FirstName = "Demo"
	user.LastName = "User"
	if err := a.users.Upsert(user); err != nil {
		return err
	}
	a.logger.Info().Str("username", user.Username).Msg("demo user registered")
	return nil
}

// ProviderOptions maps the host configuration onto the engine options, with this
// app's hooks.
func (a *App) ProviderOptions(cfg config.OAuthConfig) auth.Options {
	return auth.Options{
		Grants:            cfg.GetGrants(),
		AllowImplicit:     cfg.GetAllowImplicit(),
		TokenEndpoint:     cfg.GetTokenEndpoint(),
		AuthorizeEndpoint: cfg.GetAuthorizeEndpoint(),
		Realm:             cfg.GetRealm(),
		Expiry:            cfg.GetAccessTokenExpiry(),
		Hooks:             a.Hooks(),
	}
}
