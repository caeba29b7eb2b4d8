package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadFromFile(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9100
  mode: debug
database:
  path: /tmp/fintrack-test.db
jwt:
  secret: file-secret
  expire_hours: 2
app:
  default_page_size: 50
  max_page_size: 200
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9100, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Server.Mode)
	assert.Equal(t, "/tmp/fintrack-test.db", cfg.Database.Path)
	assert.Equal(t, "file-secret", cfg.JWT.Secret)
	assert.Equal(t, 2*time.Hour, cfg.TokenTTL())
	assert.Equal(t, 50, cfg.App.DefaultPageSize)
	assert.Equal(t, 200, cfg.App.MaxPageSize)
	// untouched keys keep their defaults
	assert.Equal(t, "fintrack", cfg.JWT.Issuer)
	assert.Equal(t, 10*time.Second, cfg.Server.ReadTimeout)
	require.NoError(t, cfg.Validate())
}

func TestEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "jwt:\n  secret: file-secret\n")
	t.Setenv("FINTRACK_JWT_SECRET", "env-secret")
	t.Setenv("FINTRACK_SERVER_PORT", "9200")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "env-secret", cfg.JWT.Secret)
	assert.Equal(t, 9200, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0:9200", cfg.Addr())
}

func TestLoadWithoutFileUsesDefaults(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 8000, cfg.Server.Port)
	assert.Equal(t, 100, cfg.App.DefaultPageSize)
	assert.Equal(t, 500, cfg.App.MaxPageSize)
	assert.Empty(t, cfg.AMQP.URL)
}

func TestValidateCollectsProblems(t *testing.T) {
	cfg := &Config{
		Server:   ServerConfig{Port: 0, Mode: "weird"},
		JWT:      JWTConfig{Secret: " ", ExpireHours: 0},
		Security: SecurityConfig{BcryptCost: 99},
		App:      AppSubConfig{DefaultPageSize: 100, MaxPageSize: 10},
		AMQP:     AMQPConfig{URL: "http://broker"},
	}

	err := cfg.Validate()
	require.Error(t, err)
	msg := err.Error()
	for _, want := range []string{
		"invalid server port",
		"invalid server mode",
		"database path cannot be empty",
		"jwt secret is required",
		"invalid jwt expire_hours",
		"invalid bcrypt cost",
		"invalid max_page_size",
		"invalid AMQP URL scheme",
		"AMQP exchange and queue are required",
	} {
		assert.Contains(t, msg, want)
	}
}
