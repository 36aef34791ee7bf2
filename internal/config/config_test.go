package config

import (
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("ALLOW_REOPEN", "true")
	t.Setenv("CAP_RETRY_ATTEMPTS", "0")
	t.Setenv("DB_NAME", "forms_test")
	t.Setenv("CORS_ORIGINS", "http://forms.example.org,http://10.0.0.5:3000")

	c, err := Load()
	require.NoError(t, err)
	assert.True(t, c.AllowReopen)
	assert.Equal(t, 1, c.CapRetryAttempts)
	assert.Contains(t, c.DSN(), "dbname=forms_test")
	assert.Contains(t, c.DSN(), "sslmode=disable")
	assert.Equal(t, 24*time.Hour, c.TokenTTL)
	assert.Equal(t, []string{"http://forms.example.org", "http://10.0.0.5:3000"}, c.CorsOrigins)
}

func TestConfigureLogger(t *testing.T) {
	logger := logrus.New()
	c := &Config{Environment: "production", LogLevel: "warn"}
	c.ConfigureLogger(logger)
	assert.Equal(t, logrus.WarnLevel, logger.GetLevel())
	assert.IsType(t, &logrus.JSONFormatter{}, logger.Formatter)

	c = &Config{LogLevel: "nonsense"}
	c.ConfigureLogger(logger)
	assert.Equal(t, logrus.InfoLevel, logger.GetLevel())
}
