package core

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/easyfin/easyfin/crypto"
	"github.com/easyfin/easyfin/db"
	"github.com/easyfin/easyfin/db/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockValidator lets tests bypass or force content type failures.
type MockValidator struct {
	ContentTypeFunc func(r *http.Request, allowedType string) (jsonResponse, error)
}

func (m *MockValidator) ContentType(r *http.Request, allowedType string) (jsonResponse, error) {
	if m.ContentTypeFunc != nil {
		return m.ContentTypeFunc(r, allowedType)
	}
	return jsonResponse{}, nil
}

func TestAuthWithPasswordHandler_Validation(t *testing.T) {
	testCases := []struct {
		name        string
		contentType string
		body        string
		wantError   jsonResponse
	}{
		{"invalid content type", "text/plain", `{"email":"a@example.com","password":"password123"}`, errorInvalidContentType},
		{"malformed json", "application/json", `{"email":"a@example.com",`, errorInvalidRequest},
		{"missing email", "application/json", `{"password":"password123"}`, errorInvalidRequest},
		{"missing password", "application/json", `{"email":"a@example.com"}`, errorInvalidRequest},
		{"invalid email", "application/json", `{"email":"not-an-email","password":"password123"}`, errorInvalidRequest},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(tc.body))
			req.Header.Set("Content-Type", tc.contentType)
			rr := httptest.NewRecorder()

			dbm := &mock.Db{
				GetUserByEmailFunc: func(string) (*db.User, error) {
					t.Errorf("store must not be read")
					return nil, nil
				},
			}
			app := newTestApp(t, dbm, nil)
			app.AuthWithPasswordHandler(rr, req)

			assert.Equal(t, tc.wantError.status, rr.Code)
			assert.Equal(t, codeOf(t, tc.wantError), decodeAuthBody(t, rr).Code)
		})
	}
}

func TestAuthWithPasswordHandler_Authentication(t *testing.T) {
	hash, err := crypto.GenerateHash("correct-horse")
	require.NoError(t, err)

	users := map[string]*db.User{
		"ok@example.com":     {ID: "ok", Email: "ok@example.com", Password: hash, Role: db.RoleAdmin, Active: true},
		"locked@example.com": {ID: "locked", Email: "locked@example.com", Password: hash, Role: db.RoleUser, Active: false},
		"google@example.com": {ID: "g", Email: "google@example.com", Password: "", Role: db.RoleUser, Active: true},
	}

	testCases := []struct {
		name       string
		body       string
		dbErr      error
		wantStatus int
		wantCode   string
	}{
		{"valid login", `{"email":"OK@example.com","password":"correct-horse"}`, nil, http.StatusOK, ""},
		{"wrong password", `{"email":"ok@example.com","password":"wrong-horse"}`, nil, http.StatusUnauthorized, CodeErrorInvalidCredentials},
		{"unknown user", `{"email":"nobody@example.com","password":"correct-horse"}`, nil, http.StatusUnauthorized, CodeErrorInvalidCredentials},
		{"google only account", `{"email":"google@example.com","password":"correct-horse"}`, nil, http.StatusUnauthorized, CodeErrorInvalidCredentials},
		{"locked account", `{"email":"locked@example.com","password":"correct-horse"}`, nil, http.StatusForbidden, CodeErrorAccountLocked},
		{"database error", `{"email":"ok@example.com","password":"correct-horse"}`, errors.New("db down"), http.StatusInternalServerError, CodeErrorAuthDatabaseError},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			dbm := &mock.Db{
				GetUserByEmailFunc: func(email string) (*db.User, error) {
					if tc.dbErr != nil {
						return nil, tc.dbErr
					}
					return users[email], nil
				},
			}
			app := newTestApp(t, dbm, nil)

			rr := httptest.NewRecorder()
			app.AuthWithPasswordHandler(rr, jsonRequest(http.MethodPost, "/api/auth/login", tc.body))

			assert.Equal(t, tc.wantStatus, rr.Code, rr.Body.String())
			body := decodeAuthBody(t, rr)
			if tc.wantCode != "" {
				assert.Equal(t, tc.wantCode, body.Code)
				assert.Empty(t, body.Data.AccessToken)
				return
			}

			assert.True(t, body.Success)
			claims, err := crypto.ParseSessionToken(body.Data.AccessToken, []byte(testSecret))
			require.NoError(t, err)
			assert.Equal(t, "ok", claims.UserID)
			assert.Equal(t, db.RoleAdmin, claims.Role)
			assert.NotContains(t, rr.Body.String(), hash)
		})
	}
}

func TestRegisterWithPasswordHandler(t *testing.T) {
	t.Run("creates user with defaults", func(t *testing.T) {
		var got db.User
		var gotAccount db.Account
		dbm := &mock.Db{
			CreateUserWithDefaultsFunc: func(u db.User, acc db.Account, _ db.Notification) (*db.User, bool, error) {
				got, gotAccount = u, acc
				u.ID = "new"
				return &u, true, nil
			},
		}
		app := newTestApp(t, dbm, nil)

		rr := httptest.NewRecorder()
		app.RegisterWithPasswordHandler(rr, jsonRequest(http.MethodPost, "/api/auth/register", `{"email":" Eve@Example.com ","password":"long-enough"}`))

		require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
		body := decodeAuthBody(t, rr)
		assert.Equal(t, msgRegisterOk, body.Message)
		assert.Equal(t, "eve@example.com", body.Data.User.Email)
		assert.Equal(t, "eve", body.Data.User.Name)
		assert.True(t, crypto.CheckPassword("long-enough", got.Password))
		assert.Equal(t, db.RoleUser, got.Role)
		assert.True(t, got.Active)
		assert.Equal(t, "CASH", gotAccount.Type)
	})

	t.Run("existing email", func(t *testing.T) {
		dbm := &mock.Db{
			CreateUserWithDefaultsFunc: func(u db.User, _ db.Account, _ db.Notification) (*db.User, bool, error) {
				return &db.User{ID: "old", Email: u.Email, Active: true}, false, nil
			},
		}
		app := newTestApp(t, dbm, nil)

		rr := httptest.NewRecorder()
		app.RegisterWithPasswordHandler(rr, jsonRequest(http.MethodPost, "/api/auth/register", `{"email":"eve@example.com","password":"long-enough"}`))

		assert.Equal(t, http.StatusConflict, rr.Code)
		body := decodeAuthBody(t, rr)
		assert.Equal(t, CodeErrorEmailConflict, body.Code)
		assert.Empty(t, body.Data.AccessToken)
	})

	t.Run("short password", func(t *testing.T) {
		dbm := &mock.Db{}
		noMutation(t, dbm)
		app := newTestApp(t, dbm, nil)

		rr := httptest.NewRecorder()
		app.RegisterWithPasswordHandler(rr, jsonRequest(http.MethodPost, "/api/auth/register", `{"email":"eve@example.com","password":"short"}`))

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, CodeErrorPasswordComplexity, decodeAuthBody(t, rr).Code)
	})

	t.Run("password over bcrypt limit", func(t *testing.T) {
		dbm := &mock.Db{}
		noMutation(t, dbm)
		app := newTestApp(t, dbm, nil)

		password := strings.Repeat("p", crypto.MaxPasswordLength+1)
		rr := httptest.NewRecorder()
		app.RegisterWithPasswordHandler(rr, jsonRequest(http.MethodPost, "/api/auth/register", `{"email":"eve@example.com","password":"`+password+`"}`))

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, CodeErrorPasswordTooLong, decodeAuthBody(t, rr).Code)
	})

	t.Run("content type", func(t *testing.T) {
		app := newTestApp(t, &mock.Db{}, nil)
		app.SetValidator(&MockValidator{
			ContentTypeFunc: func(*http.Request, string) (jsonResponse, error) {
				return errorInvalidContentType, errors.New("invalid content type")
			},
		})

		rr := httptest.NewRecorder()
		app.RegisterWithPasswordHandler(rr, jsonRequest(http.MethodPost, "/api/auth/register", `{}`))
		assert.Equal(t, http.StatusUnsupportedMediaType, rr.Code)
	})
}
