package zombiezen

import (
	"context"
	"fmt"
	"io"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"
)

// LatestConfig retrieves the newest encrypted configuration blob for scope.
// Returns nil if no config exists for the scope (no error).
func (d *Db) LatestConfig(scope string) ([]byte, error) {
	conn, err := d.pool.Take(context.TODO())
	if err != nil {
		return nil, fmt.Errorf("failed to get db connection for scope '%s': %w", scope, err)
	}
	defer d.pool.Put(conn)

	var content []byte
	err = sqlitex.Execute(conn,
		`SELECT content FROM app_config
		WHERE scope = ?
		ORDER BY id DESC
		LIMIT 1`,
		&sqlitex.ExecOptions{
			Args: []any{scope},
			ResultFunc: func(stmt *sqlite.Stmt) (err error) {
				content, err = io.ReadAll(stmt.ColumnReader(0))
				return err
			},
		})
	if err != nil {
		return nil, fmt.Errorf("failed to get config for scope '%s': %w", scope, err)
	}
	return content, nil
}

func (d *Db) InsertConfig(scope string, contentData []byte, format string, description string) error {
	conn, err := d.pool.Take(context.TODO())
	if err != nil {
		return fmt.Errorf("failed to get db connection for scope '%s': %w", scope, err)
	}
	defer d.pool.Put(conn)

	err = sqlitex.Execute(conn,
		`INSERT INTO app_config (scope, content, format, description) VALUES (?, ?, ?, ?)`,
		&sqlitex.ExecOptions{
			Args: []any{scope, contentData, format, description},
		})
	if err != nil {
		return fmt.Errorf("failed to insert config for scope '%s': %w", scope, err)
	}
	return nil
}
