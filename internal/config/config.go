// Package config loads server settings from flags, the environment and an
// optional .env file.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/erazemk/omara/internal/imagestore"
	"github.com/erazemk/omara/internal/jobs"
)

// envPrefix is prepended to every environment variable name.
const envPrefix = "OMARA_"

// Config holds all application configuration.
type Config struct {
	Environment string

	Server   ServerConfig
	Database DatabaseConfig
	Logger   LoggerConfig
	Auth     AuthConfig
	Images   ImageConfig
	Jobs     JobsConfig
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Addr           string
	RequestTimeout time.Duration
	RateLimit      float64
	RateBurst      int
	CORSOrigins    []string
}

// DatabaseConfig selects the record store.
type DatabaseConfig struct {
	Driver string
	DSN    string
}

// LoggerConfig holds logging settings.
type LoggerConfig struct {
	Level  string
	Format string
	File   string
}

// AuthConfig holds identity settings.
type AuthConfig struct {
	AdminUser string
	// DevHeader accepts the X-User-Id header as the caller identity.
	DevHeader bool
}

// ImageConfig selects and configures the image store.
type ImageConfig struct {
	Driver         string
	Dir            string
	PublicURL      string
	S3Bucket       string
	S3Region       string
	S3Endpoint     string
	S3PathStyle    bool
	GCSBucket      string
	GCSCredentials string
}

// JobsConfig holds background job settings.
type JobsConfig struct {
	SweepSchedule string
}

// IsProduction reports whether the server runs in production.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// ImageStore returns the image store configuration.
func (c *Config) ImageStore() imagestore.Config {
	cfg := imagestore.Config{
		Driver:    imagestore.Driver(c.Images.Driver),
		Dir:       c.Images.Dir,
		PublicURL: c.Images.PublicURL,
	}
	switch cfg.Driver {
	case imagestore.DriverS3:
		cfg.Bucket = c.Images.S3Bucket
		cfg.Region = c.Images.S3Region
		cfg.Endpoint = c.Images.S3Endpoint
		cfg.PathStyle = c.Images.S3PathStyle
	case imagestore.DriverGCS:
		cfg.Bucket = c.Images.GCSBucket
		cfg.Credentials = c.Images.GCSCredentials
	}
	return cfg
}

// Usage is printed for -h.
const Usage = `Usage: omara [flags]

Flags:
  -d, -db <path|dsn>      SQLite path or Postgres DSN (default: omara.sqlite3)
  -driver <name>          database driver: sqlite or postgres (default: sqlite)
  -a, -addr <host:port>   listen address (default: :8080)
  -u, -user <name>        admin username on first run (default: admin)
  -l, -log <path>         rotating log file (default: stdout/stderr only)
  -log-level <level>      debug, info, warn or error (default: info)
  -env <name>             development, staging or production (default: development)
  -env-file <path>        dotenv file to load (default: .env)
  -h, -help               show this help and exit

Every setting can also be given as an OMARA_* environment variable.
`

// Load builds the configuration from args (without the program name).
//
// Precedence:
//  1. Command-line flags
//  2. Environment variables
//  3. .env file
//  4. Default values
func Load(args []string) (*Config, error) {
	fs := flag.NewFlagSet("omara", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var dsn, addr, adminUser, logFile string
	fs.StringVar(&dsn, "db", "", "")
	fs.StringVar(&dsn, "d", "", "")
	fs.StringVar(&addr, "addr", "", "")
	fs.StringVar(&addr, "a", "", "")
	fs.StringVar(&adminUser, "user", "", "")
	fs.StringVar(&adminUser, "u", "", "")
	fs.StringVar(&logFile, "log", "", "")
	fs.StringVar(&logFile, "l", "", "")
	driver := fs.String("driver", "", "")
	logLevel := fs.String("log-level", "", "")
	env := fs.String("env", "", "")
	envFile := fs.String("env-file", ".env", "")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	dotenv, err := readEnvFile(*envFile)
	if err != nil {
		return nil, err
	}
	v := values{dotenv: dotenv}

	cfg := &Config{
		Environment: v.get(*env, "ENV", "development"),
		Server: ServerConfig{
			Addr:        v.get(addr, "ADDR", ":8080"),
			CORSOrigins: splitList(v.get("", "CORS_ORIGINS", "*")),
		},
		Database: DatabaseConfig{
			Driver: v.get(*driver, "DB_DRIVER", "sqlite"),
			DSN:    v.get(dsn, "DB", "omara.sqlite3"),
		},
		Logger: LoggerConfig{
			Level:  strings.ToLower(v.get(*logLevel, "LOG_LEVEL", "info")),
			Format: strings.ToLower(v.get("", "LOG_FORMAT", "text")),
			File:   v.get(logFile, "LOG_FILE", ""),
		},
		Auth: AuthConfig{
			AdminUser: v.get(adminUser, "ADMIN_USER", "admin"),
		},
		Images: ImageConfig{
			Driver:         v.get("", "IMAGE_DRIVER", string(imagestore.DriverFS)),
			Dir:            v.get("", "IMAGE_DIR", "images"),
			PublicURL:      strings.TrimSuffix(v.get("", "PUBLIC_URL", "http://localhost:8080"), "/"),
			S3Bucket:       v.get("", "S3_BUCKET", ""),
			S3Region:       v.get("", "S3_REGION", ""),
			S3Endpoint:     v.get("", "S3_ENDPOINT", ""),
			GCSBucket:      v.get("", "GCS_BUCKET", ""),
			GCSCredentials: v.get("", "GCS_CREDENTIALS", ""),
		},
		Jobs: JobsConfig{
			SweepSchedule: v.get("", "SWEEP_SCHEDULE", "@every 10m"),
		},
	}

	if cfg.Auth.DevHeader, err = v.getBool("DEV_AUTH", false); err != nil {
		return nil, err
	}
	if cfg.Images.S3PathStyle, err = v.getBool("S3_PATH_STYLE", false); err != nil {
		return nil, err
	}
	if cfg.Server.RequestTimeout, err = v.getDuration("REQUEST_TIMEOUT", 30*time.Second); err != nil {
		return nil, err
	}
	if cfg.Server.RateLimit, err = v.getFloat("RATE_LIMIT", 10); err != nil {
		return nil, err
	}
	if cfg.Server.RateBurst, err = v.getInt("RATE_BURST", 30); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// Validate checks that all config values are present and valid.
func (c *Config) Validate() error {
	switch c.Environment {
	case "development", "staging", "production":
	default:
		return fmt.Errorf("invalid environment: %s (must be development, staging, or production)", c.Environment)
	}

	switch c.Logger.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}
	switch c.Logger.Format {
	case "text", "json":
	default:
		return fmt.Errorf("invalid log format: %s (must be text or json)", c.Logger.Format)
	}

	switch c.Database.Driver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("invalid database driver: %s (must be sqlite or postgres)", c.Database.Driver)
	}
	if c.Database.DSN == "" {
		return errors.New("database path is required")
	}

	switch imagestore.Driver(c.Images.Driver) {
	case imagestore.DriverFS, imagestore.DriverBadger:
		if c.Images.Dir == "" {
			return fmt.Errorf("image directory is required for the %s driver", c.Images.Driver)
		}
	case imagestore.DriverMemory:
	case imagestore.DriverS3:
		if c.Images.S3Bucket == "" {
			return errors.New("S3_BUCKET is required for the s3 image driver")
		}
	case imagestore.DriverGCS:
		if c.Images.GCSBucket == "" {
			return errors.New("GCS_BUCKET is required for the gcs image driver")
		}
	default:
		return fmt.Errorf("invalid image driver: %s", c.Images.Driver)
	}

	if c.Server.Addr == "" {
		return errors.New("listen address is required")
	}
	if c.Server.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be positive, got %s", c.Server.RequestTimeout)
	}
	if c.Server.RateLimit <= 0 || c.Server.RateBurst <= 0 {
		return errors.New("rate limit and burst must be positive")
	}
	if c.Auth.AdminUser == "" {
		return errors.New("admin username is required")
	}
	if c.Auth.DevHeader && c.IsProduction() {
		return errors.New("DEV_AUTH cannot be enabled in production")
	}

	if err := jobs.ValidateSchedule(c.Jobs.SweepSchedule); err != nil {
		return fmt.Errorf("invalid sweep schedule: %w", err)
	}
	return nil
}

// readEnvFile parses a dotenv file. A missing file is not an error.
func readEnvFile(path string) (map[string]string, error) {
	if path == "" {
		return nil, nil
	}
	values, err := godotenv.Read(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading env file %s: %w", path, err)
	}
	return values, nil
}

type values struct {
	dotenv map[string]string
}

// get returns the flag value if set, then the environment, then the .env
// file, then the default.
func (v values) get(flagValue, key, defaultValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if envValue := os.Getenv(envPrefix + key); envValue != "" {
		return envValue
	}
	if fileValue := v.dotenv[envPrefix+key]; fileValue != "" {
		return fileValue
	}
	return defaultValue
}

func (v values) getBool(key string, defaultValue bool) (bool, error) {
	raw := v.get("", key, "")
	if raw == "" {
		return defaultValue, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid %s%s %q: %w", envPrefix, key, raw, err)
	}
	return b, nil
}

func (v values) getInt(key string, defaultValue int) (int, error) {
	raw := v.get("", key, "")
	if raw == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s%s %q: %w", envPrefix, key, raw, err)
	}
	return n, nil
}

func (v values) getFloat(key string, defaultValue float64) (float64, error) {
	raw := v.get("", key, "")
	if raw == "" {
		return defaultValue, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s%s %q: %w", envPrefix, key, raw, err)
	}
	return f, nil
}

func (v values) getDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	raw := v.get("", key, "")
	if raw == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s%s %q: %w", envPrefix, key, raw, err)
	}
	return d, nil
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
