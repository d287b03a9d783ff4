package zombiezen

import (
	"context"
	"fmt"

	"github.com/easyfin/easyfin/db"
	"github.com/easyfin/easyfin/migrations"
	"zombiezen.com/go/sqlite/sqlitex"
)

type Db struct {
	pool *sqlitex.Pool
}

// Verify interface implementations
var _ db.DbAuth = (*Db)(nil)
var _ db.DbUserAdmin = (*Db)(nil)
var _ db.DbFinance = (*Db)(nil)
var _ db.DbConfig = (*Db)(nil)

// New creates a new Db instance using an existing pool provided by the user.
// The lifecycle of the pool is managed by the caller.
func New(pool *sqlitex.Pool) (*Db, error) {
	if pool == nil {
		return nil, fmt.Errorf("provided pool cannot be nil")
	}
	return &Db{pool: pool}, nil
}

// Migrate applies the embedded schema.
func (d *Db) Migrate(ctx context.Context) error {
	conn, err := d.pool.Take(ctx)
	if err != nil {
		return fmt.Errorf("failed to get db connection: %w", err)
	}
	defer d.pool.Put(conn)

	return ApplyMigrations(conn, migrations.Schema())
}
