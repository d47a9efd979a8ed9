package cliparse

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
)

const (
	DefaultPort           = 3318
	DefaultTokenTTL       = 24 * time.Hour
	DefaultMaxUploadBytes = 5 << 20
)

type Config struct {
	Port         int
	DatabaseURL  string
	DatabaseType string

	JWTSecret string
	TokenTTL  time.Duration

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	MediaDriver    string
	S3Bucket       string
	S3Region       string
	S3Endpoint     string
	S3PathStyle    bool
	MaxUploadBytes int64

	WebhookURL string

	LogLevel  string
	LogFormat string
}

// RegisterFlags binds every setting to fs. Zero values mean "not set on the
// command line" and are filled from the environment by ApplyEnv.
func RegisterFlags(fs *pflag.FlagSet, cfg *Config) {
	// Network config (can be CLI args or env)
	fs.IntVarP(&cfg.Port, "port", "p", 0, "Server port")
	fs.StringVarP(&cfg.DatabaseURL, "database", "d", "", "Database URL")
	fs.StringVarP(&cfg.DatabaseType, "db-type", "t", "", "Database type (sqlite or postgres)")

	// Secrets (prefer env variables, but allow CLI for dev)
	fs.StringVar(&cfg.JWTSecret, "jwt-secret", "", "Session signing secret (prefer env)")
	fs.DurationVar(&cfg.TokenTTL, "token-ttl", 0, "Session lifetime")

	fs.StringVar(&cfg.RedisAddr, "redis-addr", "", "Redis address for session revocation")
	fs.StringVar(&cfg.MediaDriver, "media", "", "Image storage driver (db or s3)")
	fs.StringVar(&cfg.WebhookURL, "webhook-url", "", "Webhook notified on new requests")
	fs.StringVar(&cfg.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	fs.StringVar(&cfg.LogFormat, "log-format", "", "Log format (json or console)")
}

// LoadDotEnv reads .env from the working directory when present.
func LoadDotEnv() error {
	err := godotenv.Load()
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to load .env: %w", err)
	}
	return nil
}

// ApplyEnv falls back to environment variables and defaults for every unset field.
func (c *Config) ApplyEnv() error {
	if c.Port == 0 {
		if portStr := os.Getenv("PORT"); portStr != "" {
			port, err := strconv.Atoi(portStr)
			if err != nil {
				return errors.New("invalid PORT env variable")
			}
			c.Port = port
		} else {
			c.Port = DefaultPort
		}
	}

	setString(&c.DatabaseURL, "DATABASE_URL", "")
	setString(&c.DatabaseType, "DATABASE_TYPE", "sqlite")
	setString(&c.JWTSecret, "JWT_SECRET", "")

	if c.TokenTTL == 0 {
		c.TokenTTL = DefaultTokenTTL
		if v := os.Getenv("TOKEN_TTL"); v != "" {
			ttl, err := time.ParseDuration(v)
			if err != nil {
				return errors.New("invalid TOKEN_TTL env variable")
			}
			c.TokenTTL = ttl
		}
	}

	setString(&c.RedisAddr, "REDIS_ADDR", "")
	setString(&c.RedisPassword, "REDIS_PASSWORD", "")
	if c.RedisDB == 0 {
		if v := os.Getenv("REDIS_DB"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return errors.New("invalid REDIS_DB env variable")
			}
			c.RedisDB = n
		}
	}

	setString(&c.MediaDriver, "MEDIA_DRIVER", "db")
	setString(&c.S3Bucket, "S3_BUCKET", "")
	setString(&c.S3Region, "S3_REGION", "")
	setString(&c.S3Endpoint, "S3_ENDPOINT", "")
	if !c.S3PathStyle {
		c.S3PathStyle = strings.EqualFold(os.Getenv("S3_PATH_STYLE"), "true")
	}
	if c.MaxUploadBytes == 0 {
		c.MaxUploadBytes = DefaultMaxUploadBytes
		if v := os.Getenv("MAX_UPLOAD_BYTES"); v != "" {
			n, err := strconv.ParseInt(v, 10, 64)
			if err != nil || n <= 0 {
				return errors.New("invalid MAX_UPLOAD_BYTES env variable")
			}
			c.MaxUploadBytes = n
		}
	}

	setString(&c.WebhookURL, "WEBHOOK_URL", "")
	setString(&c.LogLevel, "LOG_LEVEL", "info")
	setString(&c.LogFormat, "LOG_FORMAT", "json")
	return nil
}

func setString(dst *string, env, def string) {
	if *dst != "" {
		return
	}
	*dst = os.Getenv(env)
	if *dst == "" {
		*dst = def
	}
}

// ValidateDatabase checks the settings every command needs.
func (c Config) ValidateDatabase() error {
	if c.DatabaseURL == "" {
		return errors.New("database URL required (use -d or DATABASE_URL env)")
	}
	if c.DatabaseType != "sqlite" && c.DatabaseType != "postgres" {
		return fmt.Errorf("unsupported database type %q", c.DatabaseType)
	}
	return nil
}

// Validate checks everything the HTTP server needs.
func (c Config) Validate() error {
	if err := c.ValidateDatabase(); err != nil {
		return err
	}

	// Secrets - MUST be provided
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET required")
	}

	switch c.MediaDriver {
	case "db", "memory":
	case "s3":
		if c.S3Bucket == "" {
			return errors.New("S3_BUCKET required for s3 media driver")
		}
	default:
		return fmt.Errorf("unsupported media driver %q", c.MediaDriver)
	}
	return nil
}

// ParseFlags parses args, applies env fallbacks and validates the server config
func ParseFlags(args []string) (Config, error) {
	var cfg Config

	fs := pflag.NewFlagSet("bausite", pflag.ContinueOnError)
	RegisterFlags(fs, &cfg)
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	if err := cfg.ApplyEnv(); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
