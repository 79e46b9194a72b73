package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
)

// Environment overrides.
const (
	EnvJWTSecret    = "TASKTRACK_JWT_SECRET"
	EnvSMTPPassword = "TASKTRACK_SMTP_PASSWORD"
	EnvLogLevel     = "TASKTRACK_LOG_LEVEL"
	EnvDatabasePath = "TASKTRACK_DATABASE_PATH"
	EnvRedisAddr    = "TASKTRACK_REDIS_ADDR"
	EnvToken        = "TASKTRACK_TOKEN"
)

// Load resolves the service configuration. Precedence (highest first):
//  1. TASKTRACK_* environment variables
//  2. the file at path, or tasktrack.toml discovered upward from the cwd
//  3. built-in defaults
//
// A missing discovered file is not an error; an explicit path must exist.
func Load(path string) (*Config, error) {
	var cfg *Config
	if path == "" {
		found, err := DiscoverConfigPath()
		switch {
		case errors.Is(err, ErrNotFound):
			cfg = Default()
		case err != nil:
			return nil, err
		default:
			path = found
		}
	}
	if cfg == nil {
		var err error
		if cfg, err = ParseFile(path); err != nil {
			return nil, err
		}
	}

	applyEnv(cfg, os.LookupEnv)
	return cfg, cfg.Validate()
}

func applyEnv(cfg *Config, lookup func(string) (string, bool)) {
	if v, ok := lookup(EnvJWTSecret); ok && v != "" {
		cfg.Auth.JWTSecret = v
	}
	if v, ok := lookup(EnvSMTPPassword); ok && v != "" {
		cfg.SMTP.Password = v
	}
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		cfg.Log.Level = strings.ToLower(v)
	}
	if v, ok := lookup(EnvDatabasePath); ok && v != "" {
		cfg.Database.Path = v
	}
	if v, ok := lookup(EnvRedisAddr); ok && v != "" {
		cfg.Cache.RedisAddr = v
	}
}

// ClientConfig is what the CLI needs to reach a running server.
type ClientConfig struct {
	ServerHost string
	ServerPort int
	Token      string
}

// ResolveClient merges defaults, then the global config in homeDir, then the
// discovered project tasktrack.toml [server] section, then TASKTRACK_TOKEN.
func ResolveClient(homeDir string) (*ClientConfig, error) {
	globalCfg, err := LoadGlobalConfigFromDir(homeDir)
	if err != nil {
		return nil, err
	}

	resolved := &ClientConfig{
		ServerHost: DefaultServerHost,
		ServerPort: DefaultServerPort,
		Token:      globalCfg.Token,
	}
	if globalCfg.ServerHost != "" {
		resolved.ServerHost = globalCfg.ServerHost
	}
	if globalCfg.ServerPort != 0 {
		resolved.ServerPort = globalCfg.ServerPort
	}

	// Only values explicitly set in the project file override the global ones.
	if path, err := DiscoverConfigPath(); err == nil {
		var raw globalConfigFile
		if _, err := toml.DecodeFile(path, &raw); err != nil {
			return nil, fmt.Errorf("failed to parse TOML: %w", err)
		}
		if raw.Server.Host != "" {
			resolved.ServerHost = raw.Server.Host
		}
		if raw.Server.Port != nil {
			if err := validatePort(*raw.Server.Port); err != nil {
				return nil, err
			}
			resolved.ServerPort = *raw.Server.Port
		}
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	if v := os.Getenv(EnvToken); v != "" {
		resolved.Token = v
	}
	return resolved, nil
}
