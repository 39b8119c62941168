// Package config loads pinshelf configuration from flags, environment variables and .env files.
package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the application configuration.
type Config struct {
	App      AppConfig
	Logger   LoggerConfig
	Data     DataConfig
	Server   ServerConfig
	Auth     AuthConfig
	Database DatabaseConfig
	Cache    CacheConfig
	Preview  PreviewConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level string
}

// DataConfig holds the on-disk layout root. The SQLite database, badger cache,
// search index, image store and auth key all live under BasePath.
type DataConfig struct {
	BasePath string
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port         string        // default: 8080
	ReadTimeout  time.Duration // default: 15s
	WriteTimeout time.Duration // default: 30s
	IdleTimeout  time.Duration // default: 60s

	// CORSOrigins are the storefront origins allowed to call the public API.
	CORSOrigins []string
	// PublicRPS and PublicBurst bound anonymous storefront traffic per client IP.
	PublicRPS   float64
	PublicBurst int
}

// AuthConfig holds owner token configuration.
type AuthConfig struct {
	// PASETO v4 symmetric key (32 bytes), set from the key file at startup.
	AccessTokenKey      []byte
	AccessTokenDuration time.Duration
}

// Database drivers.
const (
	DatabaseSQLite   = "sqlite"
	DatabasePostgres = "postgres"
)

// DatabaseConfig selects the catalog store.
type DatabaseConfig struct {
	Driver      string
	PostgresDSN string
}

// Cache drivers.
const (
	CacheBadger = "badger"
	CacheRedis  = "redis"
	CacheNone   = "none"
)

// CacheConfig selects the public payload cache.
type CacheConfig struct {
	Driver        string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	TTL           time.Duration
}

// PreviewConfig controls PNG preview rendering.
type PreviewConfig struct {
	// FontPath is a TTF used for pin labels. Labels are skipped when empty.
	FontPath string
	// MaxWidth caps the requested preview width.
	MaxWidth int
}

// LoadConfig loads configuration from the process arguments.
func LoadConfig() (*Config, error) {
	return Load(os.Args[1:])
}

// Load builds a Config with precedence:
// 1. Command-line flags (highest priority).
// 2. Environment variables.
// 3. .env file.
// 4. Default values (lowest priority).
func Load(args []string) (*Config, error) {
	fs := flag.NewFlagSet("pinshelf", flag.ContinueOnError)

	env := fs.String("env", "", "Environment (development, staging, production)")
	logLevel := fs.String("log-level", "", "Log level (debug, info, warn, error)")
	dataPath := fs.String("data-path", "", "Base path for database, cache, index and images")
	serverPort := fs.String("port", "", "Server port (default: 8080)")
	readTimeout := fs.String("read-timeout", "", "HTTP read timeout (default: 15s)")
	writeTimeout := fs.String("write-timeout", "", "HTTP write timeout (default: 30s)")
	idleTimeout := fs.String("idle-timeout", "", "HTTP idle timeout (default: 60s)")
	corsOrigins := fs.String("cors-origins", "", "Comma-separated storefront origins")
	publicRPS := fs.String("public-rps", "", "Public API requests per second per client (default: 10)")
	publicBurst := fs.String("public-burst", "", "Public API burst per client (default: 30)")
	accessTokenDuration := fs.String("access-token-duration", "", "Owner token lifetime (default: 24h)")
	dbDriver := fs.String("db-driver", "", "Catalog store: sqlite or postgres (default: sqlite)")
	postgresDSN := fs.String("postgres-dsn", "", "Postgres DSN when db-driver=postgres")
	cacheDriver := fs.String("cache-driver", "", "Public cache: badger, redis or none (default: badger)")
	redisAddr := fs.String("redis-addr", "", "Redis address when cache-driver=redis")
	cacheTTL := fs.String("cache-ttl", "", "Public cache TTL (default: 5m)")
	fontPath := fs.String("preview-font", "", "TTF font used for preview labels")
	envFile := fs.String("env-file", ".env", "Path to .env file")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	// godotenv.Load never overrides variables already present in the environment.
	_ = godotenv.Load(*envFile)

	cfg := &Config{
		App: AppConfig{
			Environment: getConfigValue(*env, "ENV", "development"),
		},
		Logger: LoggerConfig{
			Level: getConfigValue(*logLevel, "LOG_LEVEL", "info"),
		},
		Data: DataConfig{
			BasePath: getConfigValue(*dataPath, "DATA_PATH", ""),
		},
		Server: ServerConfig{
			Port:        getConfigValue(*serverPort, "SERVER_PORT", "8080"),
			CORSOrigins: splitList(getConfigValue(*corsOrigins, "CORS_ORIGINS", "*")),
			PublicRPS:   getFloatConfigValue(*publicRPS, "PUBLIC_RPS", 10),
			PublicBurst: getIntConfigValue(*publicBurst, "PUBLIC_BURST", 30),
		},
		Database: DatabaseConfig{
			Driver:      getConfigValue(*dbDriver, "DB_DRIVER", DatabaseSQLite),
			PostgresDSN: getConfigValue(*postgresDSN, "POSTGRES_DSN", ""),
		},
		Cache: CacheConfig{
			Driver:        getConfigValue(*cacheDriver, "CACHE_DRIVER", CacheBadger),
			RedisAddr:     getConfigValue(*redisAddr, "REDIS_ADDR", "localhost:6379"),
			RedisPassword: getConfigValue("", "REDIS_PASSWORD", ""),
			RedisDB:       getIntConfigValue("", "REDIS_DB", 0),
		},
		Preview: PreviewConfig{
			FontPath: getConfigValue(*fontPath, "PREVIEW_FONT", ""),
			MaxWidth: getIntConfigValue("", "PREVIEW_MAX_WIDTH", 2400),
		},
	}

	durations := []struct {
		flagValue, envKey, def string
		dst                    *time.Duration
	}{
		{*readTimeout, "SERVER_READ_TIMEOUT", "15s", &cfg.Server.ReadTimeout},
		{*writeTimeout, "SERVER_WRITE_TIMEOUT", "30s", &cfg.Server.WriteTimeout},
		{*idleTimeout, "SERVER_IDLE_TIMEOUT", "60s", &cfg.Server.IdleTimeout},
		{*accessTokenDuration, "ACCESS_TOKEN_DURATION", "24h", &cfg.Auth.AccessTokenDuration},
		{*cacheTTL, "CACHE_TTL", "5m", &cfg.Cache.TTL},
	}
	for _, d := range durations {
		raw := getConfigValue(d.flagValue, d.envKey, d.def)
		parsed, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid %s %q: %w", strings.ToLower(d.envKey), raw, err)
		}
		*d.dst = parsed
	}

	if err := cfg.expandDataPath(); err != nil {
		return nil, fmt.Errorf("invalid data path: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required config values are present and valid.
func (c *Config) Validate() error {
	switch c.App.Environment {
	case "development", "staging", "production":
	case "":
		return errors.New("ENV is required")
	default:
		return fmt.Errorf("invalid environment: %s (must be development, staging, or production)", c.App.Environment)
	}

	switch strings.ToLower(c.Logger.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if c.Data.BasePath == "" {
		return errors.New("data base path cannot be empty after expansion")
	}

	switch c.Database.Driver {
	case DatabaseSQLite:
	case DatabasePostgres:
		if c.Database.PostgresDSN == "" {
			return errors.New("POSTGRES_DSN is required when DB_DRIVER=postgres")
		}
	default:
		return fmt.Errorf("invalid db driver: %s (must be sqlite or postgres)", c.Database.Driver)
	}

	switch c.Cache.Driver {
	case CacheBadger, CacheNone:
	case CacheRedis:
		if c.Cache.RedisAddr == "" {
			return errors.New("REDIS_ADDR is required when CACHE_DRIVER=redis")
		}
	default:
		return fmt.Errorf("invalid cache driver: %s (must be badger, redis, or none)", c.Cache.Driver)
	}

	if c.Server.PublicRPS <= 0 || c.Server.PublicBurst <= 0 {
		return errors.New("public rate limit must be positive")
	}

	return nil
}

// SQLitePath is the catalog database file.
func (c *Config) SQLitePath() string {
	return filepath.Join(c.Data.BasePath, "pinshelf.db")
}

// CachePath is the badger cache directory.
func (c *Config) CachePath() string {
	return filepath.Join(c.Data.BasePath, "cache")
}

// SearchPath is the bleve index directory.
func (c *Config) SearchPath() string {
	return filepath.Join(c.Data.BasePath, "search")
}

// ImagesPath is the local recipe image directory.
func (c *Config) ImagesPath() string {
	return filepath.Join(c.Data.BasePath, "images")
}

// expandPath expands ~ and makes the path absolute.
// If path is empty, defaultPath is returned as-is.
func expandPath(path, defaultPath string) (string, error) {
	if path == "" {
		return defaultPath, nil
	}

	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(homeDir, path[2:])
	}

	if !filepath.IsAbs(path) {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("failed to get absolute path: %w", err)
		}
		path = absPath
	}

	return filepath.Clean(path), nil
}

func (c *Config) expandDataPath() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}

	expanded, err := expandPath(c.Data.BasePath, filepath.Join(homeDir, ".pinshelf"))
	if err != nil {
		return err
	}
	c.Data.BasePath = expanded
	return nil
}

// getConfigValue returns the first non-empty value from flag, env var, or default.
func getConfigValue(flagValue, envKey, defaultValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if envKey != "" {
		if envValue := os.Getenv(envKey); envValue != "" {
			return envValue
		}
	}
	return defaultValue
}

func getIntConfigValue(flagValue, envKey string, defaultValue int) int {
	v, err := strconv.Atoi(getConfigValue(flagValue, envKey, ""))
	if err != nil {
		return defaultValue
	}
	return v
}

func getFloatConfigValue(flagValue, envKey string, defaultValue float64) float64 {
	v, err := strconv.ParseFloat(getConfigValue(flagValue, envKey, ""), 64)
	if err != nil {
		return defaultValue
	}
	return v
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
