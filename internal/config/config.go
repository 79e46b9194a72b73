package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

const (
	// ConfigFileName is the name of the service configuration file
	ConfigFileName = "tasktrack.toml"

	DefaultServerHost      = "localhost"
	DefaultServerPort      = 7432
	DefaultDatabasePath    = "tasktrack.db"
	DefaultCacheDriver     = CacheBadger
	DefaultCachePath       = "tasktrack-cache"
	DefaultCacheTTL        = time.Hour
	DefaultRedisAddr       = "localhost:6379"
	DefaultSMTPPort        = 587
	DefaultSMTPFrom        = "tasktrack <noreply@tasktrack.local>"
	DefaultSweepInterval   = time.Minute
	DefaultSweepBatchSize  = 50
	DefaultSweepMaxRetries = 3
	DefaultSweepStaleAfter = 10 * time.Minute
	DefaultLogLevel        = "info"
	DefaultLogFormat       = "text"
	DefaultFrontendURL     = "http://localhost:3000"
)

// Cache drivers.
const (
	CacheBadger = "badger"
	CacheRedis  = "redis"
	CacheMemory = "memory"
)

// ErrNotFound is returned by discovery when no tasktrack.toml exists up to
// the filesystem root.
var ErrNotFound = errors.New("no tasktrack.toml found")

// Config is the full service configuration.
type Config struct {
	Server   ServerConfig   `toml:"server"`
	Database DatabaseConfig `toml:"database"`
	Cache    CacheConfig    `toml:"cache"`
	Auth     AuthConfig     `toml:"auth"`
	SMTP     SMTPConfig     `toml:"smtp"`
	Sweeper  SweeperConfig  `toml:"sweeper"`
	Log      LogConfig      `toml:"log"`
	App      AppConfig      `toml:"app"`

	// Path is the file the config was read from, empty for defaults.
	Path string `toml:"-"`
}

type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// Addr returns host:port.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type DatabaseConfig struct {
	Path string `toml:"path"`
}

type CacheConfig struct {
	Driver    string        `toml:"driver"`
	Path      string        `toml:"path"`
	RedisAddr string        `toml:"redis_addr"`
	RedisDB   int           `toml:"redis_db"`
	TTL       time.Duration `toml:"ttl"`
}

type AuthConfig struct {
	JWTSecret string `toml:"jwt_secret"`
}

// SMTPConfig configures the email channel. An empty Host disables email
// delivery; attempts are then logged as failed.
type SMTPConfig struct {
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	Username string `toml:"username"`
	Password string `toml:"password"`
	From     string `toml:"from"`
}

type SweeperConfig struct {
	Interval   time.Duration `toml:"interval"`
	BatchSize  int           `toml:"batch_size"`
	MaxRetries int           `toml:"max_retries"`
	// StaleAfter is how long a notification may sit in sent before the
	// sweeper treats its dispatch as abandoned.
	StaleAfter time.Duration `toml:"stale_after"`
}

type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

type AppConfig struct {
	FrontendURL string `toml:"frontend_url"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Server:   ServerConfig{Host: DefaultServerHost, Port: DefaultServerPort},
		Database: DatabaseConfig{Path: DefaultDatabasePath},
		Cache: CacheConfig{
			Driver:    DefaultCacheDriver,
			Path:      DefaultCachePath,
			RedisAddr: DefaultRedisAddr,
			TTL:       DefaultCacheTTL,
		},
		SMTP: SMTPConfig{Port: DefaultSMTPPort, From: DefaultSMTPFrom},
		Sweeper: SweeperConfig{
			Interval:   DefaultSweepInterval,
			BatchSize:  DefaultSweepBatchSize,
			MaxRetries: DefaultSweepMaxRetries,
			StaleAfter: DefaultSweepStaleAfter,
		},
		Log: LogConfig{Level: DefaultLogLevel, Format: DefaultLogFormat},
		App: AppConfig{FrontendURL: DefaultFrontendURL},
	}
}

// DiscoverConfigPath finds tasktrack.toml by traversing up the directory tree
// from the current working directory.
func DiscoverConfigPath() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get current directory: %w", err)
	}
	return discoverConfigPathFrom(cwd)
}

func discoverConfigPathFrom(startDir string) (string, error) {
	dir := startDir
	for {
		configPath := filepath.Join(dir, ConfigFileName)
		if _, err := os.Stat(configPath); err == nil {
			return configPath, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", ErrNotFound
		}
		dir = parent
	}
}

// ParseFile reads the TOML file at path over the defaults and validates it.
// Relative database and cache paths are resolved against the file's directory.
func ParseFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if _, err := toml.Decode(string(data), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse TOML: %w", err)
	}
	cfg.Path = path

	base := filepath.Dir(path)
	if cfg.Database.Path != "" && cfg.Database.Path != ":memory:" && !filepath.IsAbs(cfg.Database.Path) {
		cfg.Database.Path = filepath.Join(base, cfg.Database.Path)
	}
	if cfg.Cache.Path != "" && !filepath.IsAbs(cfg.Cache.Path) {
		cfg.Cache.Path = filepath.Join(base, cfg.Cache.Path)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks value ranges and enumerations.
func (c *Config) Validate() error {
	if err := validatePort(c.Server.Port); err != nil {
		return err
	}
	switch c.Cache.Driver {
	case CacheBadger, CacheRedis, CacheMemory:
	default:
		return fmt.Errorf("invalid cache driver %q: must be one of badger, redis, memory", c.Cache.Driver)
	}
	if c.Cache.TTL <= 0 {
		return fmt.Errorf("invalid cache ttl %s: must be positive", c.Cache.TTL)
	}
	if c.Sweeper.Interval <= 0 {
		return fmt.Errorf("invalid sweeper interval %s: must be positive", c.Sweeper.Interval)
	}
	if c.Sweeper.BatchSize < 1 {
		return fmt.Errorf("invalid sweeper batch_size %d: must be at least 1", c.Sweeper.BatchSize)
	}
	if c.Sweeper.StaleAfter <= 0 {
		return fmt.Errorf("invalid sweeper stale_after %s: must be positive", c.Sweeper.StaleAfter)
	}
	if c.Sweeper.MaxRetries < 0 {
		return fmt.Errorf("invalid sweeper max_retries %d: must not be negative", c.Sweeper.MaxRetries)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("invalid log format %q: must be text or json", c.Log.Format)
	}
	return nil
}

// validatePort checks if the port is in the valid range (1-65535)
func validatePort(port int) error {
	if port < 1 || port > 65535 {
		return fmt.Errorf("invalid port %d: must be between 1 and 65535", port)
	}
	return nil
}
