package config

import (
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"
)

const (
	ScopeApplication = "application"

	EnvDevelopment = "development"
	EnvProduction  = "production"

	LogFormatText = "text"
	LogFormatJSON = "json"

	// FallbackJwtSecret signs session tokens when no secret is configured.
	// It is refused in production.
	FallbackJwtSecret = "easyfin-secret-key-2024"
)

// Provider holds the current configuration and allows it to be swapped
// atomically while requests are being served.
type Provider struct {
	value atomic.Value
}

func NewProvider(initialConfig *Config) *Provider {
	if initialConfig == nil {
		panic("initial config cannot be nil")
	}
	p := &Provider{}
	p.value.Store(initialConfig)
	return p
}

// Get returns the current configuration. Callers must treat it as read-only.
func (p *Provider) Get() *Config {
	return p.value.Load().(*Config)
}

func (p *Provider) Update(newConfig *Config) {
	p.value.Store(newConfig)
}

type Config struct {
	Environment string `toml:"environment" env:"EASYFIN_ENV"`
	PublicURL   string `toml:"public_url" env:"EASYFIN_PUBLIC_URL"`
	DBPath      string `toml:"db_path" env:"EASYFIN_DB"`

	Server     Server     `toml:"server"`
	Jwt        Jwt        `toml:"jwt"`
	Google     Google     `toml:"google"`
	Cors       Cors       `toml:"cors"`
	Redirect   Redirect   `toml:"redirect"`
	Onboarding Onboarding `toml:"onboarding"`
	Endpoints  Endpoints  `toml:"endpoints"`
	Log        Log        `toml:"log"`
	Metrics    Metrics    `toml:"metrics"`
	BlockIp    BlockIp    `toml:"block_ip"`
	Cache      Cache      `toml:"cache"`

	BlockRequestBody BlockRequestBody `toml:"block_request_body"`

	// Source is where the configuration was read from: a file path or "db".
	Source string `toml:"-"`
}

func (c *Config) IsProduction() bool {
	return c.Environment == EnvProduction
}

// SigningSecret returns the secret used for session tokens. The second value
// reports whether the insecure fallback is in use.
func (c *Config) SigningSecret() ([]byte, bool) {
	if c.Jwt.Secret != "" {
		return []byte(c.Jwt.Secret), false
	}
	return []byte(FallbackJwtSecret), true
}

type Server struct {
	Addr                    string   `toml:"addr" env:"EASYFIN_ADDR"`
	ShutdownGracefulTimeout Duration `toml:"shutdown_graceful_timeout"`
	ReadTimeout             Duration `toml:"read_timeout"`
	ReadHeaderTimeout       Duration `toml:"read_header_timeout"`
	WriteTimeout            Duration `toml:"write_timeout"`
	IdleTimeout             Duration `toml:"idle_timeout"`
	// ClientIpProxyHeader names the header carrying the client ip when the
	// server runs behind a reverse proxy, e.g. "X-Forwarded-For". Empty means
	// the remote address of the connection is used.
	ClientIpProxyHeader string `toml:"client_ip_proxy_header"`
}

type Jwt struct {
	Secret        string   `toml:"secret" env:"JWT_SECRET"`
	TokenDuration Duration `toml:"token_duration"`
}

type Google struct {
	ClientID     string   `toml:"client_id" env:"GOOGLE_CLIENT_ID"`
	ClientSecret string   `toml:"client_secret" env:"GOOGLE_CLIENT_SECRET"`
	AuthURL      string   `toml:"auth_url"`
	TokenURL     string   `toml:"token_url"`
	UserInfoURL  string   `toml:"userinfo_url"`
	TokenInfoURL string   `toml:"tokeninfo_url"`
	Scopes       []string `toml:"scopes"`
	AccessType   string   `toml:"access_type"`
	Prompt       string   `toml:"prompt"`
	// Audiences, when not empty, restricts accepted ID tokens to these
	// client ids.
	Audiences []string `toml:"audiences"`
	Timeout   Duration `toml:"timeout"`
}

type Cors struct {
	AllowedOrigins   []string `toml:"allowed_origins"`
	AllowedMethods   []string `toml:"allowed_methods"`
	AllowedHeaders   []string `toml:"allowed_headers"`
	AllowCredentials bool     `toml:"allow_credentials"`
	// PathPrefix limits the cors headers to matching paths.
	PathPrefix string `toml:"path_prefix"`
}

// Redirect holds the deep links the OAuth flow may send users back to.
// Matching is exact.
type Redirect struct {
	DefaultURI  string   `toml:"default_uri"`
	AllowedURIs []string `toml:"allowed_uris"`
}

type Onboarding struct {
	Account      DefaultAccount      `toml:"account"`
	Notification WelcomeNotification `toml:"notification"`
}

type DefaultAccount struct {
	Name     string `toml:"name"`
	Type     string `toml:"type"`
	Currency string `toml:"currency"`
	Icon     string `toml:"icon"`
	Color    string `toml:"color"`
}

type WelcomeNotification struct {
	Title    string `toml:"title"`
	Message  string `toml:"message"`
	Type     string `toml:"type"`
	Category string `toml:"category"`
}

// Endpoints are "METHOD /path" strings.
type Endpoints struct {
	AuthGoogleStart      string `toml:"auth_google_start"`
	AuthGoogleCallback   string `toml:"auth_google_callback"`
	AuthWithGoogle       string `toml:"auth_with_google"`
	AuthWithPassword     string `toml:"auth_with_password"`
	RegisterWithPassword string `toml:"register_with_password"`
	AuthMe               string `toml:"auth_me"`
	ListAccounts         string `toml:"list_accounts"`
	ListNotifications    string `toml:"list_notifications"`
	AdminListUsers       string `toml:"admin_list_users"`
	AdminUpdateUser      string `toml:"admin_update_user"`
}

// Path returns the path part of an endpoint string.
func (e Endpoints) Path(endpoint string) string {
	if _, path, ok := strings.Cut(endpoint, " "); ok {
		return path
	}
	return endpoint
}

type Log struct {
	Level LogLevel `toml:"level"`
	// Format is "text" or "json".
	Format  string     `toml:"format" env:"EASYFIN_LOG_FORMAT"`
	Request LogRequest `toml:"request"`
}

type LogRequest struct {
	Activated bool             `toml:"activated"`
	Limits    LogRequestLimits `toml:"limits"`
}

type LogRequestLimits struct {
	URILength       int `toml:"uri_length"`
	UserAgentLength int `toml:"user_agent_length"`
	RefererLength   int `toml:"referer_length"`
	RemoteIPLength  int `toml:"remote_ip_length"`
}

type Metrics struct {
	Activated bool   `toml:"activated"`
	Endpoint  string `toml:"endpoint"`
	// AllowedIPs are exact addresses, no CIDR ranges.
	AllowedIPs []string `toml:"allowed_ips"`
}

type BlockIp struct {
	Activated bool `toml:"activated"`
	// Level is one of "low", "medium" or "high".
	Level         string   `toml:"level"`
	BlockDuration Duration `toml:"block_duration"`
}

// BlockRequestBody caps the size of request bodies.
type BlockRequestBody struct {
	Activated     bool     `toml:"activated"`
	Limit         int64    `toml:"limit"`
	ExcludedPaths []string `toml:"excluded_paths"`
}

type Cache struct {
	Level   string   `toml:"level"`
	UserTTL Duration `toml:"user_ttl"`
}

// Duration wraps time.Duration so it reads and writes as "10s" in TOML.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

type LogLevel struct {
	slog.Level
}

func (l *LogLevel) UnmarshalText(text []byte) error {
	switch strings.ToLower(string(text)) {
	case "debug":
		l.Level = slog.LevelDebug
	case "info":
		l.Level = slog.LevelInfo
	case "warn":
		l.Level = slog.LevelWarn
	case "error":
		l.Level = slog.LevelError
	default:
		return fmt.Errorf("unknown log level %q", string(text))
	}
	return nil
}

func (l LogLevel) MarshalText() ([]byte, error) {
	return []byte(l.Level.String()), nil
}
