package zombiezen

import (
	"context"
	"fmt"

	"github.com/easyfin/easyfin/db"
	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"
)

func newAccountFromStmt(stmt *sqlite.Stmt) (*db.Account, error) {
	created, err := db.TimeParse(stmt.GetText("created"))
	if err != nil {
		return nil, fmt.Errorf("error parsing created time: %w", err)
	}
	updated, err := db.TimeParse(stmt.GetText("updated"))
	if err != nil {
		return nil, fmt.Errorf("error parsing updated time: %w", err)
	}

	return &db.Account{
		ID:       stmt.GetText("id"),
		UserID:   stmt.GetText("user_id"),
		Name:     stmt.GetText("name"),
		Type:     stmt.GetText("type"),
		Balance:  stmt.GetInt64("balance"),
		Currency: stmt.GetText("currency"),
		Icon:     stmt.GetText("icon"),
		Color:    stmt.GetText("color"),
		Created:  created,
		Updated:  updated,
	}, nil
}

func newNotificationFromStmt(stmt *sqlite.Stmt) (*db.Notification, error) {
	created, err := db.TimeParse(stmt.GetText("created"))
	if err != nil {
		return nil, fmt.Errorf("error parsing created time: %w", err)
	}

	return &db.Notification{
		ID:       stmt.GetText("id"),
		UserID:   stmt.GetText("user_id"),
		Title:    stmt.GetText("title"),
		Message:  stmt.GetText("message"),
		Type:     stmt.GetText("type"),
		Category: stmt.GetText("category"),
		Read:     stmt.GetInt64("read") != 0,
		Created:  created,
	}, nil
}

// ListAccounts returns the accounts owned by userId, oldest first.
func (d *Db) ListAccounts(userId string) ([]*db.Account, error) {
	conn, err := d.pool.Take(context.TODO())
	if err != nil {
		return nil, err
	}
	defer d.pool.Put(conn)

	accounts := make([]*db.Account, 0)
	err = sqlitex.Execute(conn,
		`SELECT id, user_id, name, type, balance, currency, icon, color, created, updated
		FROM accounts WHERE user_id = ? ORDER BY created, id`,
		&sqlitex.ExecOptions{
			ResultFunc: func(stmt *sqlite.Stmt) error {
				a, err := newAccountFromStmt(stmt)
				if err != nil {
					return err
				}
				accounts = append(accounts, a)
				return nil
			},
			Args: []any{userId},
		})
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	return accounts, nil
}

// ListNotifications returns the newest notifications of userId.
func (d *Db) ListNotifications(userId string, limit int) ([]*db.Notification, error) {
	conn, err := d.pool.Take(context.TODO())
	if err != nil {
		return nil, err
	}
	defer d.pool.Put(conn)

	notifications := make([]*db.Notification, 0)
	err = sqlitex.Execute(conn,
		`SELECT id, user_id, title, message, type, category, read, created
		FROM notifications WHERE user_id = ? ORDER BY created DESC, id LIMIT ?`,
		&sqlitex.ExecOptions{
			ResultFunc: func(stmt *sqlite.Stmt) error {
				n, err := newNotificationFromStmt(stmt)
				if err != nil {
					return err
				}
				notifications = append(notifications, n)
				return nil
			},
			Args: []any{userId, limit},
		})
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	return notifications, nil
}
