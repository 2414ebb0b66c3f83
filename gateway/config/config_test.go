package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("JWT_SECRET", "shh")
	t.Setenv("API_BASE_URL", "https://gaz.example.org/api")
	t.Setenv("API_TIMEOUT", "30s")
	t.Setenv("KAFKA_BROKERS", "kafka:9092")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example.org, https://b.example.org")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "https://gaz.example.org/api", cfg.API.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.API.Timeout)
	assert.Equal(t, 8*time.Hour, cfg.Auth.TokenTTL)
	assert.True(t, cfg.Kafka.Enabled())
	assert.Equal(t, "material.consigned", cfg.Kafka.Topic)
	assert.False(t, cfg.MinIO.Enabled())
	assert.Equal(t, []string{"https://a.example.org", "https://b.example.org"}, cfg.Server.Origins())
}

func TestLoadConfigNeedsSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	_, err := LoadConfig()
	assert.EqualError(t, err, "JWT_SECRET is required")
}

func TestValidate(t *testing.T) {
	cfg := Config{
		API:  APIConfig{BaseURL: "http://api", Timeout: time.Second},
		Auth: AuthConfig{JWTSecret: "x"},
	}
	assert.NoError(t, cfg.Validate())

	cfg.API.Timeout = 0
	assert.Error(t, cfg.Validate())

	cfg.API.Timeout = time.Second
	cfg.API.BaseURL = ""
	assert.EqualError(t, cfg.Validate(), "API_BASE_URL is required")
}

func TestOriginsEmpty(t *testing.T) {
	s := ServerConfig{AllowedOrigins: " , "}
	assert.Empty(t, s.Origins())
}
