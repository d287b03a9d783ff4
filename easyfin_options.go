package easyfin

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime"

	"github.com/easyfin/easyfin/cache"
	"github.com/easyfin/easyfin/db"
	"github.com/easyfin/easyfin/db/zombiezen"
	"zombiezen.com/go/sqlite/sqlitex"
)

type Option func(*initializer)

// WithDbApp sets the database implementation.
func WithDbApp(dbApp db.DbApp) Option {
	return func(i *initializer) {
		if dbApp == nil {
			panic("DbApp cannot be nil")
		}
		i.dbApp = dbApp
	}
}

// WithZombiezenPool uses an existing pool. The caller owns its lifecycle.
func WithZombiezenPool(pool *sqlitex.Pool) Option {
	return func(i *initializer) {
		dbInstance, err := zombiezen.New(pool)
		if err != nil {
			panic(fmt.Sprintf("failed to initialize zombiezen DB with existing pool: %v", err))
		}
		i.dbApp = dbInstance
	}
}

// WithLogger replaces the logger built from the configuration.
func WithLogger(l *slog.Logger) Option {
	return func(i *initializer) {
		i.logger = l
	}
}

// WithCache replaces the ristretto cache built from the configuration.
func WithCache(c cache.Cache[any]) Option {
	return func(i *initializer) {
		i.cache = c
	}
}

// WithHttpClient sets the client used for the calls to Google.
func WithHttpClient(c *http.Client) Option {
	return func(i *initializer) {
		i.httpClient = c
	}
}

// WithConfigFile reads the configuration from a TOML file.
func WithConfigFile(path string) Option {
	return func(i *initializer) {
		i.configPath = path
	}
}

// WithAgeKeyPath reads the configuration from the encrypted store in the
// database, decrypted with the age identity at path.
func WithAgeKeyPath(path string) Option {
	return func(i *initializer) {
		i.ageKeyPath = path
	}
}

// NewZombiezenPool opens a pool with the zombiezen defaults: WAL, read
// write, create.
func NewZombiezenPool(dbPath string) (*sqlitex.Pool, error) {
	initString := fmt.Sprintf("file:%s", dbPath)

	pool, err := sqlitex.NewPool(initString, sqlitex.PoolOptions{
		PoolSize: runtime.NumCPU(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create zombiezen pool at %s: %w", dbPath, err)
	}
	return pool, nil
}
