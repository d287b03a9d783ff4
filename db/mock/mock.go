package mock

import (
	"github.com/easyfin/easyfin/db"
)

// Compile-time check to ensure Db implements the DbApp interface
var _ db.DbApp = (*Db)(nil)

// Db implements db.DbApp for testing purposes.
// Use function fields to allow overriding behavior in specific tests.
type Db struct {
	// --- Mock DbAuth Methods ---
	GetUserByEmailFunc         func(email string) (*db.User, error)
	GetUserByIdFunc            func(id string) (*db.User, error)
	CreateUserWithDefaultsFunc func(user db.User, account db.Account, welcome db.Notification) (*db.User, bool, error)
	SetAvatarIfEmptyFunc       func(userId string, avatar string) (bool, error)

	// --- Mock DbUserAdmin Methods ---
	ListUsersFunc     func(limit, offset int) ([]*db.User, error)
	SetUserActiveFunc func(userId string, active bool) error

	// --- Mock DbFinance Methods ---
	ListAccountsFunc      func(userId string) ([]*db.Account, error)
	ListNotificationsFunc func(userId string, limit int) ([]*db.Notification, error)

	// --- Mock DbConfig Methods ---
	LatestConfigFunc func(scope string) ([]byte, error)
	InsertConfigFunc func(scope string, contentData []byte, format string, description string) error
}

// --- Implement DbAuth ---
func (m *Db) GetUserByEmail(email string) (*db.User, error) {
	if m.GetUserByEmailFunc != nil {
		return m.GetUserByEmailFunc(email)
	}
	return nil, nil // Default: Not found
}

func (m *Db) GetUserById(id string) (*db.User, error) {
	if m.GetUserByIdFunc != nil {
		return m.GetUserByIdFunc(id)
	}
	return nil, nil // Default: Not found
}

func (m *Db) CreateUserWithDefaults(user db.User, account db.Account, welcome db.Notification) (*db.User, bool, error) {
	if m.CreateUserWithDefaultsFunc != nil {
		return m.CreateUserWithDefaultsFunc(user, account, welcome)
	}
	// Default: Return the user passed in, assuming success
	user.ID = "mock-user-id"
	return &user, true, nil
}

func (m *Db) SetAvatarIfEmpty(userId string, avatar string) (bool, error) {
	if m.SetAvatarIfEmptyFunc != nil {
		return m.SetAvatarIfEmptyFunc(userId, avatar)
	}
	return true, nil
}

// --- Implement DbUserAdmin ---
func (m *Db) ListUsers(limit, offset int) ([]*db.User, error) {
	if m.ListUsersFunc != nil {
		return m.ListUsersFunc(limit, offset)
	}
	return nil, nil
}

func (m *Db) SetUserActive(userId string, active bool) error {
	if m.SetUserActiveFunc != nil {
		return m.SetUserActiveFunc(userId, active)
	}
	return nil
}

// --- Implement DbFinance ---
func (m *Db) ListAccounts(userId string) ([]*db.Account, error) {
	if m.ListAccountsFunc != nil {
		return m.ListAccountsFunc(userId)
	}
	return nil, nil
}

func (m *Db) ListNotifications(userId string, limit int) ([]*db.Notification, error) {
	if m.ListNotificationsFunc != nil {
		return m.ListNotificationsFunc(userId, limit)
	}
	return nil, nil
}

// --- Implement DbConfig ---
func (m *Db) LatestConfig(scope string) ([]byte, error) {
	if m.LatestConfigFunc != nil {
		return m.LatestConfigFunc(scope)
	}
	return nil, nil
}

func (m *Db) InsertConfig(scope string, contentData []byte, format string, description string) error {
	if m.InsertConfigFunc != nil {
		return m.InsertConfigFunc(scope, contentData, format, description)
	}
	return nil
}
