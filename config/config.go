// Package config loads the service configuration from defaults, an optional
// YAML file, a .env file and the environment.
package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"notesapp/pkg/media"
)

var (
	ErrMissingSecret = errors.New("JWT_SECRET is required")
	ErrMissingDSN    = errors.New("DB_DSN is required")
)

type Server struct {
	Port            string        `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// Addr is the listen address for Port.
func (s Server) Addr() string {
	if strings.Contains(s.Port, ":") {
		return s.Port
	}
	return ":" + s.Port
}

type Auth struct {
	JWTSecret     string        `mapstructure:"jwt_secret"`
	RawTokenTTL   string        `mapstructure:"token_ttl"`
	TokenTTL      time.Duration `mapstructure:"-"`
	SaltRounds    int           `mapstructure:"salt_rounds"`
	SweepInterval time.Duration `mapstructure:"sweep_interval"`
}

type DB struct {
	DSN             string        `mapstructure:"dsn"`
	AutoMigrate     bool          `mapstructure:"auto_migrate"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	LogLevel        string        `mapstructure:"log_level"`
}

type Media struct {
	Backend        string         `mapstructure:"backend"`
	UploadBase     string         `mapstructure:"upload_base"`
	MaxImageBytes  int            `mapstructure:"max_image_bytes"`
	MaxUploadBytes int64          `mapstructure:"max_upload_bytes"`
	OCR            bool           `mapstructure:"ocr"`
	OCRLanguages   []string       `mapstructure:"ocr_languages"`
	S3             media.S3Config `mapstructure:"s3"`
}

type Log struct {
	Level  string `mapstructure:"level"`
	Pretty bool   `mapstructure:"pretty"`
}

type OTEL struct {
	Enable       bool    `mapstructure:"enable"`
	OTLPEndpoint string  `mapstructure:"otlp_endpoint"`
	ServiceName  string  `mapstructure:"service_name"`
	SampleRatio  float64 `mapstructure:"sample_ratio"`
}

type CORS struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type Config struct {
	Server Server `mapstructure:"server"`
	Auth   Auth   `mapstructure:"auth"`
	DB     DB     `mapstructure:"db"`
	Media  Media  `mapstructure:"media"`
	Log    Log    `mapstructure:"log"`
	OTEL   OTEL   `mapstructure:"otel"`
	CORS   CORS   `mapstructure:"cors"`
}

// Validate checks the values that cannot be defaulted and resolves TokenTTL.
func (c *Config) Validate() error {
	if c.Auth.JWTSecret == "" {
		return ErrMissingSecret
	}
	if c.DB.DSN == "" {
		return ErrMissingDSN
	}
	ttl, err := ParseTTL(c.Auth.RawTokenTTL)
	if err != nil {
		return fmt.Errorf("JWT_EXPIRES_IN: %w", err)
	}
	c.Auth.TokenTTL = ttl
	if c.Auth.SaltRounds < bcrypt.MinCost || c.Auth.SaltRounds > bcrypt.MaxCost {
		return fmt.Errorf("SALT_ROUNDS must be between %d and %d, got %d", bcrypt.MinCost, bcrypt.MaxCost, c.Auth.SaltRounds)
	}
	switch c.Media.Backend {
	case "local", "":
		c.Media.Backend = "local"
	case "s3":
		if c.Media.S3.Bucket == "" {
			return errors.New("media.s3.bucket is required for the s3 backend")
		}
	default:
		return fmt.Errorf("unknown media.backend %q", c.Media.Backend)
	}
	return nil
}

// ParseTTL accepts a Go duration ("90m"), a day count ("7d") or bare seconds ("3600").
func ParseTTL(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, errors.New("empty duration")
	}
	var d time.Duration
	switch {
	case strings.HasSuffix(s, "d"):
		n, err := strconv.Atoi(strings.TrimSuffix(s, "d"))
		if err != nil {
			return 0, fmt.Errorf("invalid day count %q", s)
		}
		d = time.Duration(n) * 24 * time.Hour
	default:
		if n, err := strconv.Atoi(s); err == nil {
			d = time.Duration(n) * time.Second
			break
		}
		parsed, err := time.ParseDuration(s)
		if err != nil {
			return 0, err
		}
		d = parsed
	}
	if d <= 0 {
		return 0, fmt.Errorf("duration must be positive, got %q", s)
	}
	return d, nil
}
