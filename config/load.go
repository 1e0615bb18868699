package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Options says where to look for configuration besides the environment.
type Options struct {
	File    string
	EnvFile string
}

// BindFlags registers --config and --env-file on flags.
func BindFlags(flags *pflag.FlagSet) *Options {
	o := &Options{}
	flags.StringVarP(&o.File, "config", "c", "", "path to a YAML config file")
	flags.StringVar(&o.EnvFile, "env-file", ".env", "dotenv file loaded before reading the environment")
	return o
}

// Loader wraps the viper instance so a config file can be watched after the
// first load.
type Loader struct {
	v    *viper.Viper
	opts Options
}

// legacyEnv maps keys to the flat variable names used by deployments.
var legacyEnv = map[string]string{
	"auth.jwt_secret":   "JWT_SECRET",
	"auth.token_ttl":    "JWT_EXPIRES_IN",
	"auth.salt_rounds":  "SALT_ROUNDS",
	"server.port":       "PORT",
	"db.dsn":            "DB_DSN",
	"db.auto_migrate":   "DB_AUTO_MIGRATE",
	"media.upload_base": "UPLOAD_BASE",
}

func NewLoader(opts Options) (*Loader, error) {
	if opts.EnvFile != "" {
		// existing environment variables win over the file
		if err := godotenv.Load(opts.EnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", opts.EnvFile, err)
		}
	}

	v := viper.New()
	v.SetConfigType("yaml")
	setDefaults(v)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, env := range legacyEnv {
		if err := v.BindEnv(key, env, strings.ToUpper(strings.ReplaceAll(key, ".", "_"))); err != nil {
			return nil, err
		}
	}

	if opts.File != "" {
		v.SetConfigFile(opts.File)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", opts.File, err)
		}
	}
	return &Loader{v: v, opts: opts}, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "3000")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.idle_timeout", "60s")
	v.SetDefault("server.shutdown_timeout", "10s")

	v.SetDefault("auth.token_ttl", "1h")
	v.SetDefault("auth.salt_rounds", 10)
	v.SetDefault("auth.sweep_interval", "1m")

	v.SetDefault("db.dsn", "")
	v.SetDefault("db.auto_migrate", true)
	v.SetDefault("db.max_open_conns", 20)
	v.SetDefault("db.max_idle_conns", 5)
	v.SetDefault("db.conn_max_lifetime", "30m")
	v.SetDefault("db.log_level", "warn")

	v.SetDefault("media.backend", "local")
	v.SetDefault("media.upload_base", "uploads")
	v.SetDefault("media.max_image_bytes", 1_000_000)
	v.SetDefault("media.max_upload_bytes", 10<<20)
	v.SetDefault("media.ocr", false)
	v.SetDefault("media.ocr_languages", []string{"eng"})
	v.SetDefault("media.s3.bucket", "")
	v.SetDefault("media.s3.prefix", "media")
	v.SetDefault("media.s3.region", "us-east-1")
	v.SetDefault("media.s3.endpoint", "")
	v.SetDefault("media.s3.access_key", "")
	v.SetDefault("media.s3.secret_key", "")
	v.SetDefault("media.s3.use_path_style", false)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)

	v.SetDefault("otel.enable", false)
	v.SetDefault("otel.otlp_endpoint", "localhost:4317")
	v.SetDefault("otel.service_name", "notesapp")
	v.SetDefault("otel.sample_ratio", 1.0)

	v.SetDefault("cors.allowed_origins", []string{"*"})
}

// Config decodes and validates the current values.
func (l *Loader) Config() (*Config, error) {
	var cfg Config
	if err := l.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Watch re-reads the config file on change and passes the result to fn.
// It does nothing when no file was given.
func (l *Loader) Watch(fn func(*Config, error)) bool {
	if l.opts.File == "" {
		return false
	}
	l.v.OnConfigChange(func(fsnotify.Event) {
		fn(l.Config())
	})
	l.v.WatchConfig()
	return true
}

// Load is NewLoader followed by Config.
func Load(opts Options) (*Config, error) {
	l, err := NewLoader(opts)
	if err != nil {
		return nil, err
	}
	return l.Config()
}
