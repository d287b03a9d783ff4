package config

import (
	"bytes"
	"fmt"
	"log/slog"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
)

// Load reads the TOML file at path over the defaults and then applies
// environment overrides. An empty path means defaults plus environment.
func Load(path string) (*Config, error) {
	cfg := NewDefaultConfig()
	cfg.Source = "defaults"

	if path != "" {
		md, err := toml.DecodeFile(path, cfg)
		if err != nil {
			return nil, fmt.Errorf("config: failed to decode %s: %w", path, err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, fmt.Errorf("config: unknown keys in %s: %v", path, undecoded)
		}
		cfg.Source = path
	}

	if err := ApplyEnv(cfg); err != nil {
		return nil, err
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("config: validation failed: %w", err)
	}
	return cfg, nil
}

// Decode parses TOML bytes over the defaults, applies environment overrides
// and validates the result.
func Decode(data []byte) (*Config, error) {
	cfg := NewDefaultConfig()
	if _, err := toml.Decode(string(data), cfg); err != nil {
		return nil, fmt.Errorf("config: failed to decode toml: %w", err)
	}
	if err := ApplyEnv(cfg); err != nil {
		return nil, err
	}
	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("config: validation failed: %w", err)
	}
	return cfg, nil
}

// ApplyEnv overrides fields tagged with env from the process environment.
// Unset variables leave the current value untouched.
func ApplyEnv(cfg *Config) error {
	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("config: failed to parse environment: %w", err)
	}
	return nil
}

// Encode serializes the configuration as TOML.
func Encode(cfg *Config) ([]byte, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to encode toml: %w", err)
	}
	return buf.Bytes(), nil
}

// LoadFromStore decrypts the latest application config from the secure
// store.
func LoadFromStore(store SecureStore, logger *slog.Logger) (*Config, error) {
	data, err := store.Latest(ScopeApplication)
	if err != nil {
		return nil, fmt.Errorf("config: failed to load from store: %w", err)
	}

	cfg, err := Decode(data)
	if err != nil {
		return nil, err
	}
	cfg.Source = "db"
	logger.Info("loaded configuration from secure store", "scope", ScopeApplication)
	return cfg, nil
}

// Reload fetches the latest stored config and swaps it into provider.
// The current config stays in place on any error.
func Reload(store SecureStore, provider *Provider, logger *slog.Logger) error {
	cfg, err := LoadFromStore(store, logger)
	if err != nil {
		logger.Error("config reload failed", "error", err)
		return err
	}
	provider.Update(cfg)
	logger.Info("configuration reloaded", "scope", ScopeApplication)
	return nil
}
