package core

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/easyfin/easyfin/cache/ristretto"
	"github.com/easyfin/easyfin/config"
	"github.com/easyfin/easyfin/crypto"
	"github.com/easyfin/easyfin/db"
	"github.com/easyfin/easyfin/db/mock"
	"github.com/easyfin/easyfin/router/httprouter"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func newTestConfig() *config.Config {
	cfg := config.NewDefaultConfig()
	cfg.Jwt.Secret = testSecret
	cfg.Google.ClientID = "client-id"
	cfg.Google.ClientSecret = "client-secret"
	return cfg
}

// newTestApp builds a fully wired App over dbm. Logs are discarded.
func newTestApp(t *testing.T, dbm *mock.Db, cfg *config.Config) *App {
	t.Helper()
	if cfg == nil {
		cfg = newTestConfig()
	}

	c, err := ristretto.New[any]("small")
	require.NoError(t, err)
	t.Cleanup(c.Close)

	app, err := NewApp(
		WithDbApp(dbm),
		WithConfigProvider(config.NewProvider(cfg)),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithCache(c),
		WithParamGeter(httprouter.NewParamGeter()),
	)
	require.NoError(t, err)
	return app
}

// fakeGoogle serves tokeninfo, userinfo and token endpoints from maps.
type fakeGoogle struct {
	srv *httptest.Server

	// token -> JSON body
	idTokens     map[string]string
	accessTokens map[string]string
	// code -> access token
	codes map[string]string

	mu   sync.Mutex
	hits []string
}

// newFakeGoogle starts the server and points cfg at it.
func newFakeGoogle(t *testing.T, cfg *config.Config) *fakeGoogle {
	t.Helper()
	f := &fakeGoogle{
		idTokens:     map[string]string{},
		accessTokens: map[string]string{},
		codes:        map[string]string{},
	}
	f.srv = httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(f.srv.Close)

	cfg.Google.AuthURL = f.srv.URL + "/auth"
	cfg.Google.TokenURL = f.srv.URL + "/token"
	cfg.Google.UserInfoURL = f.srv.URL + "/userinfo"
	cfg.Google.TokenInfoURL = f.srv.URL + "/tokeninfo"
	cfg.Google.Timeout = config.Duration{Duration: 2 * time.Second}
	return f
}

func (f *fakeGoogle) serve(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.hits = append(f.hits, r.URL.Path)
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	switch r.URL.Path {
	case "/tokeninfo":
		body, ok := f.idTokens[r.URL.Query().Get("id_token")]
		if !ok {
			w.WriteHeader(http.StatusBadRequest)
			io.WriteString(w, `{"error_description":"Invalid Value"}`)
			return
		}
		io.WriteString(w, body)
	case "/userinfo":
		body, ok := f.accessTokens[strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")]
		if !ok {
			w.WriteHeader(http.StatusUnauthorized)
			io.WriteString(w, `{"error":"invalid_token"}`)
			return
		}
		io.WriteString(w, body)
	case "/token":
		r.ParseForm()
		at, ok := f.codes[r.Form.Get("code")]
		if !ok {
			w.WriteHeader(http.StatusBadRequest)
			io.WriteString(w, `{"error":"invalid_grant"}`)
			return
		}
		io.WriteString(w, `{"access_token":"`+at+`","token_type":"Bearer","expires_in":3600}`)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (f *fakeGoogle) paths() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.hits...)
}

// noMutation makes every write on dbm fail the test.
func noMutation(t *testing.T, dbm *mock.Db) {
	dbm.CreateUserWithDefaultsFunc = func(db.User, db.Account, db.Notification) (*db.User, bool, error) {
		t.Errorf("unexpected CreateUserWithDefaults")
		return nil, false, nil
	}
	dbm.SetAvatarIfEmptyFunc = func(string, string) (bool, error) {
		t.Errorf("unexpected SetAvatarIfEmpty")
		return false, nil
	}
	dbm.SetUserActiveFunc = func(string, bool) error {
		t.Errorf("unexpected SetUserActive")
		return nil
	}
}

type authBody struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Code    string `json:"code"`
	Error   string `json:"error"`
	Data    struct {
		AccessToken string     `json:"accessToken"`
		User        PublicUser `json:"user"`
	} `json:"data"`
}

func decodeAuthBody(t *testing.T, rr *httptest.ResponseRecorder) authBody {
	t.Helper()
	var body authBody
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body), rr.Body.String())
	return body
}

// codeOf returns the code field of a precomputed response.
func codeOf(t *testing.T, resp jsonResponse) string {
	t.Helper()
	var body JsonError
	require.NoError(t, json.Unmarshal(resp.body, &body))
	return body.Code
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func bearer(t *testing.T, user *db.User) string {
	t.Helper()
	token, _, err := crypto.NewSessionToken(user.ID, user.Email, user.Role, []byte(testSecret), time.Hour)
	require.NoError(t, err)
	return "Bearer " + token
}
