package zombiezen

import (
	"context"
	"fmt"
	"time"

	"github.com/easyfin/easyfin/db"
	"github.com/google/uuid"
	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"
)

const userColumns = `id, email, name, password, avatar, role, active, created, updated`

// newUserFromStmt creates a User struct from a SQLite statement
func newUserFromStmt(stmt *sqlite.Stmt) (*db.User, error) {
	created, err := db.TimeParse(stmt.GetText("created"))
	if err != nil {
		return nil, fmt.Errorf("error parsing created time: %w", err)
	}

	updated, err := db.TimeParse(stmt.GetText("updated"))
	if err != nil {
		return nil, fmt.Errorf("error parsing updated time: %w", err)
	}

	return &db.User{
		ID:       stmt.GetText("id"),
		Email:    stmt.GetText("email"),
		Name:     stmt.GetText("name"),
		Password: stmt.GetText("password"),
		Avatar:   stmt.GetText("avatar"),
		Role:     stmt.GetText("role"),
		Active:   stmt.GetInt64("active") != 0,
		Created:  created,
		Updated:  updated,
	}, nil
}

func getUser(conn *sqlite.Conn, where string, arg any) (*db.User, error) {
	var user *db.User
	err := sqlitex.Execute(conn,
		`SELECT `+userColumns+` FROM users WHERE `+where+` = ? LIMIT 1`,
		&sqlitex.ExecOptions{
			ResultFunc: func(stmt *sqlite.Stmt) error {
				var err error
				user, err = newUserFromStmt(stmt)
				return err
			},
			Args: []any{arg},
		})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// GetUserByEmail retrieves a user by email address. The email is expected
// lower-cased. A nil user with nil error indicates no matching record.
func (d *Db) GetUserByEmail(email string) (*db.User, error) {
	conn, err := d.pool.Take(context.TODO())
	if err != nil {
		return nil, err
	}
	defer d.pool.Put(conn)

	return getUser(conn, "email", email)
}

func (d *Db) GetUserById(id string) (*db.User, error) {
	conn, err := d.pool.Take(context.TODO())
	if err != nil {
		return nil, err
	}
	defer d.pool.Put(conn)

	return getUser(conn, "id", id)
}

// CreateUserWithDefaults inserts the user, its first account and the welcome
// notification under one immediate transaction. Ids and timestamps are
// assigned here; values set by the caller are ignored.
func (d *Db) CreateUserWithDefaults(user db.User, account db.Account, welcome db.Notification) (u *db.User, created bool, err error) {
	conn, err := d.pool.Take(context.TODO())
	if err != nil {
		return nil, false, err
	}
	defer d.pool.Put(conn)

	endFn, err := sqlitex.ImmediateTransaction(conn)
	if err != nil {
		return nil, false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer endFn(&err)

	now := db.TimeFormat(time.Now())
	if user.Role == "" {
		user.Role = db.RoleUser
	}

	err = sqlitex.Execute(conn,
		`INSERT INTO users (id, email, name, password, avatar, role, active, created, updated)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(email) DO NOTHING
		RETURNING `+userColumns,
		&sqlitex.ExecOptions{
			ResultFunc: func(stmt *sqlite.Stmt) error {
				var err error
				u, err = newUserFromStmt(stmt)
				return err
			},
			Args: []any{
				uuid.NewString(),
				user.Email,
				user.Name,
				user.Password,
				user.Avatar,
				user.Role,
				user.Active,
				now,
				now,
			},
		})
	if err != nil {
		return nil, false, fmt.Errorf("failed to insert user: %w", err)
	}

	// Lost the race or the email was already taken.
	if u == nil {
		u, err = getUser(conn, "email", user.Email)
		if err != nil {
			return nil, false, fmt.Errorf("failed to read existing user: %w", err)
		}
		return u, false, nil
	}

	err = sqlitex.Execute(conn,
		`INSERT INTO accounts (id, user_id, name, type, balance, currency, icon, color, created, updated)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		&sqlitex.ExecOptions{
			Args: []any{
				uuid.NewString(),
				u.ID,
				account.Name,
				account.Type,
				account.Balance,
				account.Currency,
				account.Icon,
				account.Color,
				now,
				now,
			},
		})
	if err != nil {
		return nil, false, fmt.Errorf("failed to insert default account: %w", err)
	}

	err = sqlitex.Execute(conn,
		`INSERT INTO notifications (id, user_id, title, message, type, category, read, created)
		VALUES (?, ?, ?, ?, ?, ?, 0, ?)`,
		&sqlitex.ExecOptions{
			Args: []any{
				uuid.NewString(),
				u.ID,
				welcome.Title,
				welcome.Message,
				welcome.Type,
				welcome.Category,
				now,
			},
		})
	if err != nil {
		return nil, false, fmt.Errorf("failed to insert welcome notification: %w", err)
	}

	return u, true, nil
}

// SetAvatarIfEmpty writes avatar only if the stored one is empty.
func (d *Db) SetAvatarIfEmpty(userId string, avatar string) (bool, error) {
	conn, err := d.pool.Take(context.TODO())
	if err != nil {
		return false, err
	}
	defer d.pool.Put(conn)

	err = sqlitex.Execute(conn,
		`UPDATE users
		SET avatar = ?,
			updated = (strftime('%Y-%m-%dT%H:%M:%SZ', 'now'))
		WHERE id = ? AND avatar = ''`,
		&sqlitex.ExecOptions{
			Args: []any{avatar, userId},
		})
	if err != nil {
		return false, fmt.Errorf("failed to set avatar: %w", err)
	}
	return conn.Changes() > 0, nil
}

func (d *Db) ListUsers(limit, offset int) ([]*db.User, error) {
	conn, err := d.pool.Take(context.TODO())
	if err != nil {
		return nil, err
	}
	defer d.pool.Put(conn)

	users := make([]*db.User, 0)
	err = sqlitex.Execute(conn,
		`SELECT `+userColumns+` FROM users ORDER BY created DESC, id LIMIT ? OFFSET ?`,
		&sqlitex.ExecOptions{
			ResultFunc: func(stmt *sqlite.Stmt) error {
				u, err := newUserFromStmt(stmt)
				if err != nil {
					return err
				}
				users = append(users, u)
				return nil
			},
			Args: []any{limit, offset},
		})
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

func (d *Db) SetUserActive(userId string, active bool) error {
	conn, err := d.pool.Take(context.TODO())
	if err != nil {
		return err
	}
	defer d.pool.Put(conn)

	err = sqlitex.Execute(conn,
		`UPDATE users
		SET active = ?,
			updated = (strftime('%Y-%m-%dT%H:%M:%SZ', 'now'))
		WHERE id = ?`,
		&sqlitex.ExecOptions{
			Args: []any{active, userId},
		})
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	if conn.Changes() == 0 {
		return db.ErrUserNotFound
	}
	return nil
}
