package core

import (
	"log/slog"
	"net/http"

	"github.com/easyfin/easyfin/cache"
	"github.com/easyfin/easyfin/config"
	"github.com/easyfin/easyfin/db"
	"github.com/easyfin/easyfin/router"
	"github.com/prometheus/client_golang/prometheus"
)

type Option func(*App)

// WithDbApp sets the database implementation for all db roles.
func WithDbApp(d db.DbApp) Option {
	return func(a *App) {
		a.dbApp = d
	}
}

// WithCache sets the cache implementation
func WithCache(c cache.Cache[any]) Option {
	return func(a *App) {
		a.cache = c
	}
}

// WithRouter sets the router implementation
func WithRouter(r router.Router) Option {
	return func(a *App) {
		a.router = r
	}
}

// WithParamGeter sets how handlers read path parameters. It must match the
// router.
func WithParamGeter(p router.ParamGeter) Option {
	return func(a *App) {
		a.params = p
	}
}

// WithConfigProvider sets the application's configuration provider.
func WithConfigProvider(p *config.Provider) Option {
	return func(a *App) {
		a.configProvider = p
	}
}

// WithConfigStore sets the encrypted configuration store.
func WithConfigStore(s config.SecureStore) Option {
	return func(a *App) {
		a.configStore = s
	}
}

// WithLogger sets the logger implementation
func WithLogger(l *slog.Logger) Option {
	return func(a *App) {
		a.logger = l
	}
}

func WithAuthenticator(auth Authenticator) Option {
	return func(a *App) {
		a.authenticator = auth
	}
}

func WithValidator(v Validator) Option {
	return func(a *App) {
		a.validator = v
	}
}

// WithHttpClient sets the client used for outbound calls to Google.
func WithHttpClient(c *http.Client) Option {
	return func(a *App) {
		a.httpClient = c
	}
}

// WithRegistry sets the prometheus registry. Defaults to a fresh one.
func WithRegistry(r *prometheus.Registry) Option {
	return func(a *App) {
		a.registry = r
	}
}
