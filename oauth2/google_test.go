package oauth2

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/easyfin/easyfin/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestGoogle points every endpoint at a single httptest server.
func newTestGoogle(t *testing.T, handler http.HandlerFunc) (*Google, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := config.NewDefaultConfig().Google
	cfg.ClientID = "client-id"
	cfg.ClientSecret = "client-secret"
	cfg.AuthURL = srv.URL + "/auth"
	cfg.TokenURL = srv.URL + "/token"
	cfg.UserInfoURL = srv.URL + "/userinfo"
	cfg.TokenInfoURL = srv.URL + "/tokeninfo"
	cfg.Timeout = config.Duration{Duration: 2 * time.Second}
	return NewGoogle(cfg, srv.Client()), srv
}

func TestUserFromAccessToken(t *testing.T) {
	g, _ := newTestGoogle(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/userinfo" || r.Header.Get("Authorization") != "Bearer good" {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error":"invalid_token"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"email":" Alice@Example.COM ","name":"Alice","picture":"https://img/a.png","verified_email":true}`))
	})

	id, err := g.UserFromAccessToken(context.Background(), "good")
	require.NoError(t, err)
	assert.Equal(t, &Identity{Email: "alice@example.com", Name: "Alice", Avatar: "https://img/a.png", EmailVerified: true}, id)

	_, err = g.UserFromAccessToken(context.Background(), "bad")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrProviderVerificationFailed))
	assert.Contains(t, err.Error(), "invalid_token")
}

func TestUserFromAccessToken_MissingEmail(t *testing.T) {
	g, _ := newTestGoogle(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"name":"No Mail"}`))
	})

	_, err := g.UserFromAccessToken(context.Background(), "token")
	assert.True(t, errors.Is(err, ErrMissingIdentityEmail))
}

func TestVerifyIDToken(t *testing.T) {
	g, _ := newTestGoogle(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/tokeninfo" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		switch r.URL.Query().Get("id_token") {
		case "valid":
			w.Write([]byte(`{"email":"bob@example.com","email_verified":"true","name":"Bob","picture":"https://img/b.png","aud":"client-id"}`))
		case "other-aud":
			w.Write([]byte(`{"email":"bob@example.com","email_verified":"true","aud":"someone-else"}`))
		default:
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error_description":"Invalid Value"}`))
		}
	})

	id, err := g.VerifyIDToken(context.Background(), "valid")
	require.NoError(t, err)
	assert.Equal(t, "bob@example.com", id.Email)
	assert.Equal(t, "Bob", id.Name)
	assert.True(t, id.EmailVerified)

	_, err = g.VerifyIDToken(context.Background(), "garbage")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrProviderVerificationFailed))
	assert.Contains(t, err.Error(), "Invalid Value")

	// No audience restriction configured.
	_, err = g.VerifyIDToken(context.Background(), "other-aud")
	assert.NoError(t, err)

	g.cfg.Audiences = []string{"client-id"}
	_, err = g.VerifyIDToken(context.Background(), "other-aud")
	assert.True(t, errors.Is(err, ErrProviderVerificationFailed))

	_, err = g.VerifyIDToken(context.Background(), "valid")
	assert.NoError(t, err)
}

func TestExchangeCode(t *testing.T) {
	var gotRedirect string
	g, _ := newTestGoogle(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/token":
			if err := r.ParseForm(); err != nil {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			gotRedirect = r.Form.Get("redirect_uri")
			if r.Form.Get("code") != "good-code" {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusBadRequest)
				w.Write([]byte(`{"error":"invalid_grant"}`))
				return
			}
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"access_token":"at-1","token_type":"Bearer","expires_in":3600}`))
		case "/userinfo":
			if r.Header.Get("Authorization") != "Bearer at-1" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			w.Write([]byte(`{"email":"carol@example.com","name":"Carol","verified_email":true}`))
		}
	})

	callback := "https://api.example.com/api/auth/google/callback"
	id, err := g.ExchangeCode(context.Background(), "good-code", callback)
	require.NoError(t, err)
	assert.Equal(t, "carol@example.com", id.Email)
	assert.Equal(t, callback, gotRedirect)

	_, err = g.ExchangeCode(context.Background(), "bad-code", callback)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrProviderExchangeFailed))
}

func TestAuthCodeURL(t *testing.T) {
	g, srv := newTestGoogle(t, func(w http.ResponseWriter, r *http.Request) {})

	raw := g.AuthCodeURL("https://api.example.com/cb", "easyfin-login://login")
	require.True(t, strings.HasPrefix(raw, srv.URL+"/auth?"))

	u, err := url.Parse(raw)
	require.NoError(t, err)
	q := u.Query()
	assert.Equal(t, "client-id", q.Get("client_id"))
	assert.Equal(t, "https://api.example.com/cb", q.Get("redirect_uri"))
	assert.Equal(t, "code", q.Get("response_type"))
	assert.Equal(t, "offline", q.Get("access_type"))
	assert.Equal(t, "consent", q.Get("prompt"))
	assert.Equal(t, "easyfin-login://login", q.Get("state"))
	assert.Contains(t, q.Get("scope"), "userinfo.email")
}

func TestTimeout(t *testing.T) {
	g, _ := newTestGoogle(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	})
	g.cfg.Timeout = config.Duration{Duration: 50 * time.Millisecond}

	_, err := g.UserFromAccessToken(context.Background(), "slow")
	assert.True(t, errors.Is(err, ErrProviderVerificationFailed))
}

func TestFlexBool(t *testing.T) {
	cases := map[string]bool{`true`: true, `"true"`: true, `false`: false, `"false"`: false, `null`: false}
	for in, want := range cases {
		var b flexBool
		require.NoError(t, b.UnmarshalJSON([]byte(in)), in)
		assert.Equal(t, want, bool(b), in)
	}
	var b flexBool
	assert.Error(t, b.UnmarshalJSON([]byte(`"yes"`)))
}

type recordingTransport struct {
	base  http.RoundTripper
	auths []string
}

func (rt *recordingTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	rt.auths = append(rt.auths, r.URL.Path+" "+r.Header.Get("Authorization"))
	return rt.base.RoundTrip(r)
}

func TestUserInfo_UsesInjectedClient(t *testing.T) {
	g, srv := newTestGoogle(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/token":
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"access_token":"at-2","token_type":"Bearer","expires_in":3600}`))
		case "/userinfo":
			w.Write([]byte(`{"email":"dan@example.com","verified_email":true}`))
		}
	})
	rt := &recordingTransport{base: srv.Client().Transport}
	g.client = &http.Client{Transport: rt}

	_, err := g.UserFromAccessToken(context.Background(), "at-1")
	require.NoError(t, err)
	_, err = g.ExchangeCode(context.Background(), "code", "https://api.example.com/cb")
	require.NoError(t, err)

	assert.Equal(t, []string{
		"/userinfo Bearer at-1",
		"/token ",
		"/userinfo Bearer at-2",
	}, rt.auths)
}
