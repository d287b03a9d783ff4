package config

import (
	"fmt"
	"net"
	"net/url"
	"strings"

	"github.com/easyfin/easyfin/crypto"
)

var blockIpLevels = map[string]bool{"low": true, "medium": true, "high": true}

var cacheLevels = map[string]bool{"small": true, "medium": true, "large": true, "very-large": true}

func Validate(cfg *Config) error {
	if cfg.Environment != EnvDevelopment && cfg.Environment != EnvProduction {
		return fmt.Errorf("environment must be %q or %q, got %q", EnvDevelopment, EnvProduction, cfg.Environment)
	}
	if cfg.DBPath == "" {
		return fmt.Errorf("db_path cannot be empty")
	}
	if err := validateServer(&cfg.Server); err != nil {
		return fmt.Errorf("server config validation failed: %w", err)
	}
	if err := validatePublicURL(cfg); err != nil {
		return fmt.Errorf("public url validation failed: %w", err)
	}
	if err := validateJwt(cfg); err != nil {
		return fmt.Errorf("jwt config validation failed: %w", err)
	}
	if err := validateGoogle(&cfg.Google); err != nil {
		return fmt.Errorf("google config validation failed: %w", err)
	}
	if err := validateRedirect(&cfg.Redirect); err != nil {
		return fmt.Errorf("redirect config validation failed: %w", err)
	}
	if err := validateEndpoints(&cfg.Endpoints); err != nil {
		return fmt.Errorf("endpoints config validation failed: %w", err)
	}
	if err := validateMetrics(&cfg.Metrics); err != nil {
		return fmt.Errorf("metrics config validation failed: %w", err)
	}
	if err := validateLogRequestLimits(&cfg.Log.Request.Limits); err != nil {
		return fmt.Errorf("log config validation failed: %w", err)
	}
	if cfg.Log.Format != LogFormatText && cfg.Log.Format != LogFormatJSON {
		return fmt.Errorf("log format must be %q or %q, got %q", LogFormatText, LogFormatJSON, cfg.Log.Format)
	}
	if cfg.BlockIp.Activated && !blockIpLevels[cfg.BlockIp.Level] {
		return fmt.Errorf("block_ip level %q must be one of low, medium, high", cfg.BlockIp.Level)
	}
	if cfg.BlockRequestBody.Activated && cfg.BlockRequestBody.Limit <= 0 {
		return fmt.Errorf("block_request_body limit must be positive")
	}
	if !cacheLevels[cfg.Cache.Level] {
		return fmt.Errorf("cache level %q is unknown", cfg.Cache.Level)
	}
	return nil
}

// validateServer checks the Server configuration section.
// It ensures the Addr field is not empty and contains a valid host:port or :port format.
// A bare ":port" is kept as is so the server listens on all interfaces.
func validateServer(server *Server) error {
	if server.Addr == "" {
		return fmt.Errorf("server address (Addr) cannot be empty")
	}

	_, port, err := net.SplitHostPort(server.Addr)
	if err != nil {
		return fmt.Errorf("invalid server address format '%s': %w", server.Addr, err)
	}
	if port == "" {
		return fmt.Errorf("server address '%s' must include a port", server.Addr)
	}
	if _, err := net.LookupPort("tcp", port); err != nil {
		return fmt.Errorf("invalid port '%s' in server address '%s': %w", port, server.Addr, err)
	}
	return nil
}

func validatePublicURL(cfg *Config) error {
	if cfg.PublicURL == "" {
		return nil
	}
	u, err := url.Parse(cfg.PublicURL)
	if err != nil || u.Host == "" {
		return fmt.Errorf("public_url '%s' is not an absolute url", cfg.PublicURL)
	}
	if cfg.IsProduction() && u.Scheme != "https" {
		return fmt.Errorf("public_url must use https in production")
	}
	if strings.HasSuffix(cfg.PublicURL, "/") {
		return fmt.Errorf("public_url must not end with a slash")
	}
	return nil
}

func validateJwt(cfg *Config) error {
	if cfg.Jwt.TokenDuration.Duration <= 0 {
		return fmt.Errorf("token_duration must be positive")
	}
	if cfg.IsProduction() && len(cfg.Jwt.Secret) < crypto.MinKeyLength {
		return fmt.Errorf("production requires a jwt secret of at least %d bytes", crypto.MinKeyLength)
	}
	return nil
}

func validateGoogle(g *Google) error {
	for name, raw := range map[string]string{
		"auth_url":      g.AuthURL,
		"token_url":     g.TokenURL,
		"userinfo_url":  g.UserInfoURL,
		"tokeninfo_url": g.TokenInfoURL,
	} {
		u, err := url.Parse(raw)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("%s '%s' is not an absolute url", name, raw)
		}
	}
	if g.Timeout.Duration <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	return nil
}

func validateRedirect(r *Redirect) error {
	if r.DefaultURI == "" {
		return fmt.Errorf("default_uri cannot be empty")
	}
	found := false
	for _, allowed := range r.AllowedURIs {
		u, err := url.Parse(allowed)
		if err != nil || u.Scheme == "" {
			return fmt.Errorf("allowed uri '%s' must be an absolute url or deep link", allowed)
		}
		if allowed == r.DefaultURI {
			found = true
		}
	}
	if !found {
		return fmt.Errorf("default_uri '%s' must be in allowed_uris", r.DefaultURI)
	}
	return nil
}

func validateEndpoints(e *Endpoints) error {
	for _, ep := range []string{
		e.AuthGoogleStart, e.AuthGoogleCallback, e.AuthWithGoogle,
		e.AuthWithPassword, e.RegisterWithPassword, e.AuthMe,
		e.ListAccounts, e.ListNotifications, e.AdminListUsers, e.AdminUpdateUser,
	} {
		if err := validateEndpoint(ep); err != nil {
			return err
		}
	}
	return nil
}

func validateEndpoint(ep string) error {
	method, path, ok := strings.Cut(ep, " ")
	if !ok || method == "" || !strings.HasPrefix(path, "/") {
		return fmt.Errorf("endpoint '%s' must have the form \"METHOD /path\"", ep)
	}
	return nil
}

func validateMetrics(m *Metrics) error {
	if !m.Activated && m.Endpoint == "" {
		return nil
	}
	if err := validateEndpoint(m.Endpoint); err != nil {
		return err
	}
	for _, ip := range m.AllowedIPs {
		if net.ParseIP(ip) == nil {
			return fmt.Errorf("allowed ip '%s' is not a valid ip address", ip)
		}
	}
	return nil
}

func validateLogRequestLimits(l *LogRequestLimits) error {
	if l.URILength < 64 {
		return fmt.Errorf("uri_length must be at least 64")
	}
	if l.UserAgentLength < 32 {
		return fmt.Errorf("user_agent_length must be at least 32")
	}
	if l.RefererLength < 64 {
		return fmt.Errorf("referer_length must be at least 64")
	}
	if l.RemoteIPLength < 15 {
		return fmt.Errorf("remote_ip_length must be at least 15")
	}
	return nil
}
