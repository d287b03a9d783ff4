package easyfin

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/easyfin/easyfin/cache"
	"github.com/easyfin/easyfin/cache/ristretto"
	"github.com/easyfin/easyfin/config"
	"github.com/easyfin/easyfin/core"
	"github.com/easyfin/easyfin/core/prerouter"
	"github.com/easyfin/easyfin/db"
	"github.com/easyfin/easyfin/router"
	"github.com/easyfin/easyfin/router/httprouter"
	"github.com/easyfin/easyfin/server"
	phuslog "github.com/phuslu/log"
)

// initializer collects the options of New before the App exists.
type initializer struct {
	dbApp      db.DbApp
	logger     *slog.Logger
	cache      cache.Cache[any]
	httpClient *http.Client

	configPath string
	ageKeyPath string

	// set during New
	store    config.SecureStore
	logLevel *slog.LevelVar
}

// New creates the App and the Server. A database is required. The
// configuration comes from the age encrypted store when WithAgeKeyPath is
// given, from WithConfigFile otherwise, defaults and environment when
// neither is.
func New(opts ...Option) (*core.App, *server.Server, error) {
	init := &initializer{}
	for _, opt := range opts {
		opt(init)
	}

	if init.dbApp == nil {
		return nil, nil, fmt.Errorf("db is required (use WithZombiezenPool or WithDbApp)")
	}

	bootLogger := init.logger
	if bootLogger == nil {
		bootLogger = slog.New(slog.NewTextHandler(os.Stderr, nil))
	}

	provider, err := init.setupConfig(bootLogger)
	if err != nil {
		return nil, nil, err
	}
	cfg := provider.Get()

	if init.logger == nil {
		init.setupDefaultLogger(cfg)
	}

	if init.cache == nil {
		if err := init.setupDefaultCache(cfg); err != nil {
			return nil, nil, err
		}
	}

	coreOpts := []core.Option{
		core.WithDbApp(init.dbApp),
		core.WithConfigProvider(provider),
		core.WithLogger(init.logger),
		core.WithCache(init.cache),
		core.WithParamGeter(httprouter.NewParamGeter()),
	}
	if init.store != nil {
		coreOpts = append(coreOpts, core.WithConfigStore(init.store))
	}
	if init.httpClient != nil {
		coreOpts = append(coreOpts, core.WithHttpClient(init.httpClient))
	}

	app, err := core.NewApp(coreOpts...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize core app: %w", err)
	}

	init.setupDefaultRouter(app)
	route(cfg, app)

	app.Logger().Info("easyfin initialized",
		"environment", cfg.Environment,
		"config_source", cfg.Source,
		"addr", cfg.Server.Addr,
	)

	srv := server.NewServer(provider, preRouter(app), app.Logger(), init.reload(provider))
	return app, srv, nil
}

// preRouter wraps the router with the middlewares every request goes
// through. The recorder comes first so the log and metrics see the final
// status.
func preRouter(app *core.App) http.Handler {
	return router.NewChain(app.Router()).WithMiddleware(
		prerouter.NewRecorder(app).Execute,
		prerouter.NewRequestLog(app).Execute,
		prerouter.NewMetrics(app).Execute,
		prerouter.NewTLSHeaderSTS(app).Execute,
		prerouter.NewCors(app).Execute,
		prerouter.NewBlockIp(app).Execute,
		prerouter.NewBlockRequestBody(app).Execute,
	).Handler()
}

func (i *initializer) setupConfig(logger *slog.Logger) (*config.Provider, error) {
	if i.ageKeyPath != "" {
		store, err := config.NewSecureStoreAge(i.dbApp, i.ageKeyPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open secure config store: %w", err)
		}
		cfg, err := config.LoadFromStore(store, logger)
		if err != nil {
			return nil, err
		}
		i.store = store
		return config.NewProvider(cfg), nil
	}

	cfg, err := config.Load(i.configPath)
	if err != nil {
		return nil, err
	}
	return config.NewProvider(cfg), nil
}

// setupDefaultLogger logs JSON through phuslu/log when configured, text
// otherwise. The level follows config reloads.
func (i *initializer) setupDefaultLogger(cfg *config.Config) {
	i.logLevel = new(slog.LevelVar)
	i.logLevel.Set(cfg.Log.Level.Level)
	opts := &slog.HandlerOptions{Level: i.logLevel}

	if cfg.Log.Format == config.LogFormatJSON {
		i.logger = slog.New(phuslog.SlogNewJSONHandler(os.Stderr, opts))
		return
	}
	i.logger = slog.New(slog.NewTextHandler(os.Stdout, opts))
}

func (i *initializer) setupDefaultCache(cfg *config.Config) error {
	c, err := ristretto.New[any](cfg.Cache.Level)
	if err != nil {
		return fmt.Errorf("failed to create cache: %w", err)
	}
	i.cache = c
	return nil
}

func (i *initializer) setupDefaultRouter(app *core.App) {
	app.SetRouter(httprouter.New(http.HandlerFunc(app.NotFoundHandler)))
}

// reload re-reads the configuration from where it was first loaded. Routes
// and the listen address are fixed at startup.
func (i *initializer) reload(provider *config.Provider) func() error {
	return func() error {
		if i.store != nil {
			if err := config.Reload(i.store, provider, i.logger); err != nil {
				return err
			}
		} else {
			cfg, err := config.Load(i.configPath)
			if err != nil {
				return err
			}
			provider.Update(cfg)
		}

		if i.logLevel != nil {
			i.logLevel.Set(provider.Get().Log.Level.Level)
		}
		return nil
	}
}
