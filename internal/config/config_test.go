package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maxviazov/tennis-players-service/internal/config"
)

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}
	return path
}

func TestConfigLoad_FromYAMLAndEnv(t *testing.T) {
	// Minimal YAML; secrets will come from ENV
	yaml := `
app:
  name: tennis-players-service
  version: 0.1.0
  env: test
  port: 18080

http:
  request_timeout: 3s

logger:
  level: info
  format: json
  output_target: stdout
  time_format: rfc3339

storage:
  driver: postgres

postgres:
  host: 127.0.0.1
  port: 5432
  sslmode: disable
  max_conns: 5

players:
  merge_mode: atomic
`
	path := writeTempConfig(t, yaml)

	// Provide required secrets via ENV using the canonical APP_* names
	t.Setenv("APP_POSTGRES_USER", "testuser")
	t.Setenv("APP_POSTGRES_PASSWORD", "testpass")
	t.Setenv("APP_POSTGRES_DB", "testdb")

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, 18080, cfg.App.Port)
	assert.Equal(t, ":18080", cfg.Addr())
	assert.Equal(t, 3*time.Second, cfg.HTTP.RequestTimeout)
	assert.Equal(t, "testuser", cfg.Postgres.User)
	assert.Equal(t, "testpass", cfg.Postgres.Password)
	assert.Equal(t, "testdb", cfg.Postgres.DBName)
	assert.Equal(t, "127.0.0.1", cfg.Postgres.Host)
	assert.EqualValues(t, 5, cfg.Postgres.MaxConns)
	assert.Equal(t, "atomic", cfg.Players.MergeMode)
	assert.Equal(t, "test", cfg.Logger.Env, "logger env inherited from app")
	assert.Equal(t, "tennis-players-service", cfg.Logger.ServiceName)
}

func TestConfigLoad_DefaultsWithoutFile(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, "mongo", cfg.Storage.Driver)
	assert.Equal(t, "players", cfg.Mongo.Collection)
	assert.Equal(t, 10, cfg.Players.DefaultLimit)
	assert.Equal(t, 100, cfg.Players.MaxLimit)
	assert.Equal(t, "read_modify_write", cfg.Players.MergeMode)
	assert.Equal(t, []string{"*"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, 3000, cfg.App.Port)
}

func TestConfigLoad_EnvOverridesDefaults(t *testing.T) {
	t.Setenv("APP_STORAGE_DRIVER", "memory")
	t.Setenv("APP_MONGO_URI", "mongodb://db:27017")
	t.Setenv("APP_PLAYERS_MAX_LIMIT", "50")
	t.Setenv("APP_HTTP_REQUEST_TIMEOUT", "750ms")

	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, "memory", cfg.Storage.Driver)
	assert.Equal(t, "mongodb://db:27017", cfg.Mongo.URI)
	assert.Equal(t, 50, cfg.Players.MaxLimit)
	assert.Equal(t, 750*time.Millisecond, cfg.HTTP.RequestTimeout)
}

func TestConfigLoad_MissingRequiredEnvFails(t *testing.T) {
	yaml := `
storage:
  driver: postgres

postgres:
  host: localhost
  port: 5432
  sslmode: disable
`
	path := writeTempConfig(t, yaml)

	// Ensure secrets are not set
	t.Setenv("APP_POSTGRES_USER", "")
	t.Setenv("APP_POSTGRES_PASSWORD", "")
	t.Setenv("APP_POSTGRES_DB", "")

	_, err := config.Load(path)
	assert.Error(t, err, "expected error when required postgres credentials are missing")
}

func TestConfigLoad_RejectsInvalidValues(t *testing.T) {
	cases := map[string]string{
		"unknown driver":     "storage:\n  driver: cassandra\n",
		"unknown merge mode": "players:\n  merge_mode: optimistic\n",
		"max below default":  "players:\n  default_limit: 20\n  max_limit: 5\n",
		"bad port":           "app:\n  port: 70000\n",
	}
	for name, yaml := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := config.Load(writeTempConfig(t, yaml))
			assert.Error(t, err)
		})
	}
}

func TestConfigLoad_MissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
