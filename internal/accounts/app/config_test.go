package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv unsets every key LoadConfig reads for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	keys := []string{
		ConfigFileEnv, "ENV", "LOG_LEVEL", "LOG_FORMAT", "PORT", "SHUTDOWN_GRACE_PERIOD", "BASE_URL",
		"DATABASE_DRIVER", "DATABASE_FILE", "DATABASE_URL", "SECRET_KEY", "TOKEN_TTL",
		"PASSWORD_HASHER", "BCRYPT_COST", "PEPPER_FILE", "MAIL_TRANSPORT", "MAIL_HOST", "MAIL_PORT",
		"MAIL_USERNAME", "MAIL_PASSWORD", "MAIL_FROM", "PUBLIC_DIR", "TEMP_DIR", "AVATAR_STORAGE",
		"S3_BUCKET", "S3_REGION", "S3_ENDPOINT", "S3_ACCESS_KEY", "S3_SECRET_KEY", "MAX_UPLOAD_BYTES",
		"CORS_ALLOWED_ORIGINS", "HOUSEKEEPING_INTERVAL", "TEMP_UPLOAD_MAX_AGE",
	}
	for _, k := range keys {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "dev", cfg.Env)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "sqlite", cfg.DatabaseDriver)
	assert.Equal(t, "accounts.db", cfg.DatabaseFile)
	assert.Equal(t, 23*time.Hour, cfg.TokenTTL)
	assert.Equal(t, "argon2id", cfg.PasswordHasher)
	assert.Equal(t, "log", cfg.MailTransport)
	assert.Equal(t, 2525, cfg.MailPort)
	assert.Equal(t, "local", cfg.AvatarStorage)
	assert.Equal(t, int64(5<<20), cfg.MaxUploadBytes)
	assert.Equal(t, []string{"*"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, time.Hour, cfg.TempUploadMaxAge)
}

func TestLoadConfigFileWithEnvOverride(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "accounts.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
PORT: 9090
TOKEN_TTL: 2h
BASE_URL: https://accounts.example.com
CORS_ALLOWED_ORIGINS:
  - https://app.example.com
  - https://admin.example.com
mail_transport: smtp
MAIL_HOST: smtp.example.com
`), 0o600))
	t.Setenv(ConfigFileEnv, path)
	t.Setenv("PORT", "7070")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.Port, "environment wins over the file")
	assert.Equal(t, 2*time.Hour, cfg.TokenTTL)
	assert.Equal(t, "https://accounts.example.com", cfg.BaseURL)
	assert.Equal(t, []string{"https://app.example.com", "https://admin.example.com"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, "smtp", cfg.MailTransport)
	assert.Equal(t, "smtp.example.com", cfg.MailHost)
}

func TestLoadConfigMissingFile(t *testing.T) {
	clearEnv(t)
	t.Setenv(ConfigFileEnv, filepath.Join(t.TempDir(), "missing.yaml"))

	_, err := LoadConfig()
	require.Error(t, err)
}

func TestConfigValidate(t *testing.T) {
	clearEnv(t)
	base, err := LoadConfig()
	require.NoError(t, err)

	cases := map[string]func(c *Config){
		"prod without secret":      func(c *Config) { c.Env = "prod" },
		"postgres without url":     func(c *Config) { c.DatabaseDriver = "postgres" },
		"unknown driver":           func(c *Config) { c.DatabaseDriver = "mysql" },
		"smtp without host":        func(c *Config) { c.MailTransport = "smtp" },
		"s3 without bucket":        func(c *Config) { c.AvatarStorage = "s3" },
		"unknown storage":          func(c *Config) { c.AvatarStorage = "ftp" },
		"non-positive upload size": func(c *Config) { c.MaxUploadBytes = 0 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			c := base
			mutate(&c)
			require.Error(t, c.Validate())
		})
	}

	prod := base
	prod.Env = "prod"
	prod.SecretKey = "0123456789abcdef0123456789abcdef"
	require.NoError(t, prod.Validate())
}

func TestDurationAcceptsMinutes(t *testing.T) {
	clearEnv(t)
	t.Setenv("TEMP_UPLOAD_MAX_AGE", "15")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, 15*time.Minute, cfg.TempUploadMaxAge)
}
