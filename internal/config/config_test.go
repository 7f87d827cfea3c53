package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envOf(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestFromEnv_Defaults(t *testing.T) {
	cfg, err := FromEnv(envOf(nil))
	require.NoError(t, err)

	assert.Equal(t, DriverSQLite, cfg.Driver)
	assert.Equal(t, "uniforms.db", cfg.SQLitePath)
	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "console", cfg.LogFormat)
}

func TestFromEnv_PostgresRequiresURL(t *testing.T) {
	_, err := FromEnv(envOf(map[string]string{"DB_DRIVER": "postgres"}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL")

	cfg, err := FromEnv(envOf(map[string]string{
		"DB_DRIVER":    "Postgres",
		"DATABASE_URL": "postgres://u:p@localhost:5432/uniforms",
	}))
	require.NoError(t, err)
	assert.Equal(t, DriverPostgres, cfg.Driver)
}

func TestFromEnv_RejectsUnknownValues(t *testing.T) {
	_, err := FromEnv(envOf(map[string]string{"DB_DRIVER": "mysql"}))
	assert.ErrorContains(t, err, "unsupported DB_DRIVER")

	_, err = FromEnv(envOf(map[string]string{"LOG_FORMAT": "xml"}))
	assert.ErrorContains(t, err, "unsupported LOG_FORMAT")
}

func TestNewLogger(t *testing.T) {
	cfg, err := FromEnv(envOf(map[string]string{"LOG_FORMAT": "json", "LOG_LEVEL": "debug"}))
	require.NoError(t, err)

	logger, err := cfg.NewLogger()
	require.NoError(t, err)
	assert.NotNil(t, logger)

	cfg.LogLevel = "loud"
	_, err = cfg.NewLogger()
	assert.ErrorContains(t, err, "invalid LOG_LEVEL")
}
