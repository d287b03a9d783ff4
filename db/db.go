package db

import (
	"errors"
	"time"
)

var (
	ErrUserNotFound = errors.New("user not found")
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// DbAuth covers the lookups and writes of the login flows.
// A nil user with nil error means no matching record was found.
type DbAuth interface {
	GetUserByEmail(email string) (*User, error)
	GetUserById(id string) (*User, error)

	// CreateUserWithDefaults inserts user together with its first account and
	// welcome notification in one transaction. If a user with the same email
	// already exists nothing is written, the existing user is returned and
	// created is false.
	CreateUserWithDefaults(user User, account Account, welcome Notification) (u *User, created bool, err error)

	// SetAvatarIfEmpty stores avatar only when the user has none. It reports
	// whether a row changed.
	SetAvatarIfEmpty(userId string, avatar string) (bool, error)
}

type DbUserAdmin interface {
	ListUsers(limit, offset int) ([]*User, error)
	// SetUserActive returns ErrUserNotFound for an unknown id.
	SetUserActive(userId string, active bool) error
}

type DbFinance interface {
	ListAccounts(userId string) ([]*Account, error)
	ListNotifications(userId string, limit int) ([]*Notification, error)
}

// DbConfig stores encrypted configuration blobs per scope.
type DbConfig interface {
	// LatestConfig returns nil content when the scope has no entry.
	LatestConfig(scope string) ([]byte, error)
	InsertConfig(scope string, contentData []byte, format string, description string) error
}

// DbApp is the set of roles the application needs. *zombiezen.Db and
// *mock.Db implement it.
type DbApp interface {
	DbAuth
	DbUserAdmin
	DbFinance
	DbConfig
}

// User represents a user from the database.
// Timestamps (Created and Updated) use RFC3339 format in UTC timezone.
// Example: "2024-03-07T15:04:05Z"
type User struct {
	ID    string
	Email string
	Name  string
	// Empty password means the account can only log in through Google.
	Password string
	Avatar   string
	Role     string
	Active   bool
	Created  time.Time
	Updated  time.Time
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Account is a money container owned by a user. Balance is in minor units
// of Currency.
type Account struct {
	ID       string
	UserID   string
	Name     string
	Type     string
	Balance  int64
	Currency string
	Icon     string
	Color    string
	Created  time.Time
	Updated  time.Time
}

type Notification struct {
	ID       string
	UserID   string
	Title    string
	Message  string
	Type     string
	Category string
	Read     bool
	Created  time.Time
}

// TimeFormat formats t as RFC3339 in UTC, the layout stored in the database.
func TimeFormat(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// TimeParse parses an RFC3339 timestamp from the database. An empty string
// yields the zero time.
func TimeParse(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339, s)
}
