package core

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/easyfin/easyfin/cache"
	"github.com/easyfin/easyfin/config"
	"github.com/easyfin/easyfin/db"
	"github.com/easyfin/easyfin/oauth2"
	"github.com/easyfin/easyfin/router"
	"github.com/prometheus/client_golang/prometheus"
)

// App is the application wide context.
// db connections and permanent structs should go here.
//
// For simplicity, all handlers and middleware have App as receiver.
type App struct {
	dbApp          db.DbApp
	router         router.Router
	params         router.ParamGeter
	cache          cache.Cache[any]
	configProvider *config.Provider
	logger         *slog.Logger

	// configStore gives access to the age encrypted configuration kept in
	// the database. Nil when the server was started from a file.
	configStore config.SecureStore

	authenticator Authenticator
	validator     Validator

	// httpClient is used for the calls to Google.
	httpClient *http.Client

	registry *prometheus.Registry
	metrics  *loginMetrics
}

// NewApp builds an App from opts. Db, config provider, logger and cache are
// required; the rest gets defaults.
func NewApp(opts ...Option) (*App, error) {
	a := &App{}
	for _, opt := range opts {
		opt(a)
	}

	if a.dbApp == nil {
		return nil, fmt.Errorf("db is required but was not provided (use WithDbApp)")
	}
	if a.configProvider == nil {
		return nil, fmt.Errorf("config provider is required but was not provided (use WithConfigProvider)")
	}
	if a.logger == nil {
		return nil, fmt.Errorf("logger is required but was not provided (use WithLogger)")
	}
	if a.cache == nil {
		return nil, fmt.Errorf("cache is required but was not provided (use WithCache)")
	}

	if a.validator == nil {
		a.validator = NewValidator()
	}
	if a.authenticator == nil {
		a.authenticator = NewDefaultAuthenticator(a.dbApp, a.cache, a.logger, a.configProvider)
	}
	if a.httpClient == nil {
		a.httpClient = &http.Client{}
	}
	if a.registry == nil {
		a.registry = prometheus.NewRegistry()
	}
	a.metrics = newLoginMetrics(a.registry)

	return a, nil
}

// Router returns the application's router instance
func (a *App) Router() router.Router {
	return a.router
}

func (a *App) SetRouter(r router.Router) {
	a.router = r
}

func (a *App) SetParamGeter(p router.ParamGeter) {
	a.params = p
}

func (a *App) DbAuth() db.DbAuth {
	return a.dbApp
}

func (a *App) DbUserAdmin() db.DbUserAdmin {
	return a.dbApp
}

func (a *App) DbFinance() db.DbFinance {
	return a.dbApp
}

func (a *App) DbConfig() db.DbConfig {
	return a.dbApp
}

func (a *App) Logger() *slog.Logger {
	return a.logger
}

func (a *App) SetLogger(l *slog.Logger) {
	a.logger = l
}

func (a *App) Cache() cache.Cache[any] {
	return a.cache
}

func (a *App) Config() *config.Config {
	return a.configProvider.Get()
}

func (a *App) ConfigProvider() *config.Provider {
	return a.configProvider
}

func (a *App) ConfigStore() config.SecureStore {
	return a.configStore
}

func (a *App) Auth() Authenticator {
	return a.authenticator
}

// SetAuthenticator sets the authenticator implementation
func (a *App) SetAuthenticator(auth Authenticator) {
	a.authenticator = auth
}

// Validator returns the validator instance
func (a *App) Validator() Validator {
	return a.validator
}

// SetValidator sets the validator implementation
func (a *App) SetValidator(v Validator) {
	a.validator = v
}

// Registry is where the application's prometheus collectors live. The
// metrics endpoint serves it.
func (a *App) Registry() *prometheus.Registry {
	return a.registry
}

// google returns a client built from the current configuration, so a
// reloaded config takes effect on the next request.
func (a *App) google() *oauth2.Google {
	return oauth2.NewGoogle(a.Config().Google, a.httpClient)
}
