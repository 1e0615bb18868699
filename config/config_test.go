package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func baseEnv(t *testing.T) {
	t.Helper()
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("DB_DSN", "postgres://localhost/notes_app")
}

func TestLoad_Defaults(t *testing.T) {
	baseEnv(t)
	cfg, err := Load(Options{})
	require.NoError(t, err)

	assert.Equal(t, ":3000", cfg.Server.Addr())
	assert.Equal(t, time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, 10, cfg.Auth.SaltRounds)
	assert.Equal(t, time.Minute, cfg.Auth.SweepInterval)
	assert.True(t, cfg.DB.AutoMigrate)
	assert.Equal(t, "local", cfg.Media.Backend)
	assert.Equal(t, "uploads", cfg.Media.UploadBase)
	assert.Equal(t, 1_000_000, cfg.Media.MaxImageBytes)
	assert.Equal(t, []string{"*"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)
}

func TestLoad_LegacyEnvNames(t *testing.T) {
	baseEnv(t)
	t.Setenv("JWT_EXPIRES_IN", "2d")
	t.Setenv("SALT_ROUNDS", "12")
	t.Setenv("PORT", "8081")
	t.Setenv("DB_AUTO_MIGRATE", "false")
	t.Setenv("UPLOAD_BASE", "/var/lib/notes")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load(Options{})
	require.NoError(t, err)
	assert.Equal(t, 48*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, 12, cfg.Auth.SaltRounds)
	assert.Equal(t, ":8081", cfg.Server.Addr())
	assert.False(t, cfg.DB.AutoMigrate)
	assert.Equal(t, "/var/lib/notes", cfg.Media.UploadBase)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_MissingSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("DB_DSN", "postgres://localhost/notes_app")
	_, err := Load(Options{})
	assert.ErrorIs(t, err, ErrMissingSecret)
}

func TestLoad_MissingDSN(t *testing.T) {
	t.Setenv("JWT_SECRET", "x")
	t.Setenv("DB_DSN", "")
	_, err := Load(Options{})
	assert.ErrorIs(t, err, ErrMissingDSN)
}

func TestLoad_BadSaltRounds(t *testing.T) {
	baseEnv(t)
	t.Setenv("SALT_ROUNDS", "99")
	_, err := Load(Options{})
	assert.Error(t, err)
}

func TestLoad_FileAndDotEnv(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("DB_DSN", "")
	// t.Setenv restores these after the test; godotenv only sets unset vars
	require.NoError(t, os.Unsetenv("JWT_SECRET"))
	require.NoError(t, os.Unsetenv("DB_DSN"))

	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("JWT_SECRET=from-dotenv\nDB_DSN=postgres://dotenv/db\n"), 0o600))
	cfgFile := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgFile, []byte(`
media:
  backend: s3
  s3:
    bucket: notes
    endpoint: http://localhost:9000
    use_path_style: true
log:
  pretty: true
cors:
  allowed_origins: ["http://localhost:4200"]
`), 0o600))

	cfg, err := Load(Options{File: cfgFile, EnvFile: envFile})
	require.NoError(t, err)
	assert.Equal(t, "from-dotenv", cfg.Auth.JWTSecret)
	assert.Equal(t, "postgres://dotenv/db", cfg.DB.DSN)
	assert.Equal(t, "s3", cfg.Media.Backend)
	assert.Equal(t, "notes", cfg.Media.S3.Bucket)
	assert.True(t, cfg.Media.S3.UsePathStyle)
	assert.Equal(t, "media", cfg.Media.S3.Prefix)
	assert.True(t, cfg.Log.Pretty)
	assert.Equal(t, []string{"http://localhost:4200"}, cfg.CORS.AllowedOrigins)
}

func TestLoad_MissingEnvFileIsFine(t *testing.T) {
	baseEnv(t)
	_, err := Load(Options{EnvFile: filepath.Join(t.TempDir(), "nope.env")})
	assert.NoError(t, err)
}

func TestLoad_UnknownBackend(t *testing.T) {
	baseEnv(t)
	t.Setenv("MEDIA_BACKEND", "ftp")
	_, err := Load(Options{})
	assert.Error(t, err)
}

func TestParseTTL(t *testing.T) {
	for in, want := range map[string]time.Duration{
		"1h":   time.Hour,
		"90m":  90 * time.Minute,
		"7d":   7 * 24 * time.Hour,
		"3600": time.Hour,
		" 2h ": 2 * time.Hour,
	} {
		got, err := ParseTTL(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	for _, in := range []string{"", "abc", "xd", "0", "-5m"} {
		_, err := ParseTTL(in)
		assert.Error(t, err, in)
	}
}

func TestBindFlags(t *testing.T) {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	opts := BindFlags(fs)
	require.NoError(t, fs.Parse([]string{"-c", "/etc/notes.yaml"}))
	assert.Equal(t, "/etc/notes.yaml", opts.File)
	assert.Equal(t, ".env", opts.EnvFile)
}

func TestWatchWithoutFile(t *testing.T) {
	baseEnv(t)
	l, err := NewLoader(Options{})
	require.NoError(t, err)
	assert.False(t, l.Watch(func(*Config, error) {}))
}
