package oauth2

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/easyfin/easyfin/config"
	"golang.org/x/oauth2"
)

var (
	ErrProviderExchangeFailed     = errors.New("provider code exchange failed")
	ErrProviderVerificationFailed = errors.New("provider verification failed")
	ErrMissingIdentityEmail       = errors.New("provider identity has no email")
)

// maxBodySize caps what is read from a provider response.
const maxBodySize = 1 << 20

const defaultTimeout = 10 * time.Second

// Identity is the provider independent view of a Google account.
type Identity struct {
	Email         string
	Name          string
	Avatar        string
	EmailVerified bool
}

// Google talks to the Google OAuth endpoints configured in cfg.
type Google struct {
	cfg    config.Google
	client *http.Client
}

// NewGoogle returns a client for the given settings. A nil client means
// http.DefaultClient.
func NewGoogle(cfg config.Google, client *http.Client) *Google {
	if client == nil {
		client = http.DefaultClient
	}
	return &Google{cfg: cfg, client: client}
}

func (g *Google) oauth2Config(callbackURL string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     g.cfg.ClientID,
		ClientSecret: g.cfg.ClientSecret,
		RedirectURL:  callbackURL,
		Scopes:       g.cfg.Scopes,
		Endpoint: oauth2.Endpoint{
			AuthURL:   g.cfg.AuthURL,
			TokenURL:  g.cfg.TokenURL,
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}
}

func (g *Google) timeout() time.Duration {
	if g.cfg.Timeout.Duration > 0 {
		return g.cfg.Timeout.Duration
	}
	return defaultTimeout
}

// AuthCodeURL builds the consent screen url. state is echoed back to the
// callback untouched.
func (g *Google) AuthCodeURL(callbackURL, state string) string {
	opts := []oauth2.AuthCodeOption{}
	if g.cfg.AccessType == "offline" {
		opts = append(opts, oauth2.AccessTypeOffline)
	}
	if g.cfg.Prompt != "" {
		opts = append(opts, oauth2.SetAuthURLParam("prompt", g.cfg.Prompt))
	}
	return g.oauth2Config(callbackURL).AuthCodeURL(state, opts...)
}

// ExchangeCode trades an authorization code for an access token and reads
// the account behind it. callbackURL must equal the one used to start the
// flow.
func (g *Google) ExchangeCode(ctx context.Context, code, callbackURL string) (*Identity, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout())
	defer cancel()

	ctx = context.WithValue(ctx, oauth2.HTTPClient, g.client)
	oauth2Config := g.oauth2Config(callbackURL)
	token, err := oauth2Config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrProviderExchangeFailed, err)
	}
	if token.AccessToken == "" {
		return nil, fmt.Errorf("%w: empty access token", ErrProviderExchangeFailed)
	}

	return g.userInfo(ctx, oauth2Config.Client(ctx, token))
}

// UserFromAccessToken reads the account behind an access token obtained by
// a client side sign in.
func (g *Google) UserFromAccessToken(ctx context.Context, accessToken string) (*Identity, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout())
	defer cancel()

	ctx = context.WithValue(ctx, oauth2.HTTPClient, g.client)
	client := oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken}))
	return g.userInfo(ctx, client)
}

type userInfoResponse struct {
	Email         string   `json:"email"`
	Name          string   `json:"name"`
	Picture       string   `json:"picture"`
	VerifiedEmail flexBool `json:"verified_email"`
	EmailVerified flexBool `json:"email_verified"`
}

// userInfo reads the userinfo endpoint through an oauth2 client, which
// adds the access token to the request.
func (g *Google) userInfo(ctx context.Context, client *http.Client) (*Identity, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.cfg.UserInfoURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrProviderVerificationFailed, err)
	}

	var info userInfoResponse
	if err := getJSON(client, req, &info); err != nil {
		return nil, err
	}

	return newIdentity(info.Email, info.Name, info.Picture, bool(info.VerifiedEmail || info.EmailVerified))
}

type tokenInfoResponse struct {
	Email         string   `json:"email"`
	EmailVerified flexBool `json:"email_verified"`
	Name          string   `json:"name"`
	Picture       string   `json:"picture"`
	Aud           string   `json:"aud"`
}

// VerifyIDToken asks the tokeninfo endpoint to validate an ID token. The
// token is never decoded locally.
func (g *Google) VerifyIDToken(ctx context.Context, idToken string) (*Identity, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout())
	defer cancel()

	u := g.cfg.TokenInfoURL + "?id_token=" + url.QueryEscape(idToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrProviderVerificationFailed, err)
	}

	var info tokenInfoResponse
	if err := getJSON(g.client, req, &info); err != nil {
		return nil, err
	}

	if len(g.cfg.Audiences) > 0 && !slices.Contains(g.cfg.Audiences, info.Aud) {
		return nil, fmt.Errorf("%w: audience %q not allowed", ErrProviderVerificationFailed, info.Aud)
	}

	return newIdentity(info.Email, info.Name, info.Picture, bool(info.EmailVerified))
}

// getJSON performs req and decodes a 2xx body into v. Any other status is a
// verification failure carrying the provider's body text.
func getJSON(client *http.Client, req *http.Request, v any) error {
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrProviderVerificationFailed, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return fmt.Errorf("%w: reading response: %w", ErrProviderVerificationFailed, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: %s", ErrProviderVerificationFailed, strings.TrimSpace(string(body)))
	}

	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("%w: invalid response: %w", ErrProviderVerificationFailed, err)
	}
	return nil
}

func newIdentity(email, name, picture string, verified bool) (*Identity, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, ErrMissingIdentityEmail
	}
	return &Identity{
		Email:         email,
		Name:          strings.TrimSpace(name),
		Avatar:        picture,
		EmailVerified: verified,
	}, nil
}

// flexBool accepts true, "true" and their false counterparts. tokeninfo
// sends booleans as strings.
type flexBool bool

func (b *flexBool) UnmarshalJSON(data []byte) error {
	switch strings.Trim(string(data), `"`) {
	case "true":
		*b = true
	case "false", "", "null":
		*b = false
	default:
		return fmt.Errorf("invalid boolean %s", data)
	}
	return nil
}
