package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// unsetenv removes key for the duration of the test.
func unsetenv(t *testing.T, keys ...string) {
	t.Helper()
	for _, key := range keys {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("GO_ENV", "test")
	unsetenv(t, "PORT", "STORE_DRIVER", "JWT_SECRET", "SESSION_TTL", "STORE_TIMEOUT", "MONGO_DATABASE", "EMAIL_PROVIDER")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, StoreDriverPostgres, cfg.StoreDriver)
	assert.Equal(t, 720*time.Hour, cfg.SessionTTL)
	assert.Equal(t, 10*time.Second, cfg.StoreTimeout)
	assert.Equal(t, "pintapoa", cfg.MongoDatabase)
	assert.Equal(t, devJWTSecret, cfg.JWTSecret)
	assert.Equal(t, "noop", cfg.EmailConfig.Provider)
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("GO_ENV", "test")
	t.Setenv("PORT", "9090")
	t.Setenv("STORE_DRIVER", "Mongo")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("SESSION_TTL", "2h")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://pintapoa.org,http://localhost:3000")
	t.Setenv("SECURE_COOKIES", "true")
	t.Setenv("EMAIL_PROVIDER", "ses")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, StoreDriverMongo, cfg.StoreDriver)
	assert.Equal(t, "s3cret", cfg.JWTSecret)
	assert.Equal(t, 2*time.Hour, cfg.SessionTTL)
	assert.Equal(t, []string{"https://pintapoa.org", "http://localhost:3000"}, cfg.CORSAllowedOrigins)
	assert.True(t, cfg.SecureCookies)
	assert.Equal(t, "ses", cfg.EmailConfig.Provider)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "unknown driver", env: map[string]string{"GO_ENV": "test", "STORE_DRIVER": "firestore"}},
		{name: "production without secret", env: map[string]string{"GO_ENV": "production", "JWT_SECRET": ""}},
		{name: "admin without password", env: map[string]string{"GO_ENV": "test", "ADMIN_EMAIL": "admin@pintapoa.org", "ADMIN_PASSWORD": ""}},
		{name: "bad duration", env: map[string]string{"GO_ENV": "test", "SESSION_TTL": "forever"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
