package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	// Ensure clean env for this test.
	os.Clearenv()

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "", cfg.DatabaseURL)
	require.Equal(t, "development", cfg.Env)
	require.False(t, cfg.IsProduction())
	require.Equal(t, 20, cfg.MaxOpenConns)
	require.Equal(t, 10, cfg.MaxIdleConns)
	require.Equal(t, 30*time.Minute, cfg.ConnMaxLifetime)
	require.Equal(t, 5*time.Minute, cfg.ConnMaxIdleTime)
	require.Equal(t, uint(3), cfg.ConnectAttempts)
	require.Equal(t, ":8080", cfg.HTTPAddr)
	require.Equal(t, "/.netlify/functions", cfg.HTTPBasePath)
	require.Equal(t, "info", cfg.LogLevel)
	require.Equal(t, "https://api.clerk.com/v1", cfg.Clerk.APIURL)
	require.False(t, cfg.Clerk.VerifySessions)
}

func TestLoad_Overrides(t *testing.T) {
	t.Cleanup(os.Clearenv)
	os.Clearenv()

	t.Setenv("APP_ENV", "Production")
	t.Setenv("DATABASE_URL", "postgres://u:p@localhost:5432/db")
	t.Setenv("DB_MAX_OPEN", "5")
	t.Setenv("DB_MAX_IDLE", "2")
	t.Setenv("DB_CONN_MAX_LIFETIME", "1m")
	t.Setenv("DB_CONN_MAX_IDLE_TIME", "10s")
	t.Setenv("HTTP_ADDR", ":9999")
	t.Setenv("HTTP_BASE_PATH", "/api")
	t.Setenv("LOG_PRETTY", "true")
	t.Setenv("CLERK_SECRET_KEY", "sk_test_x")
	t.Setenv("CLERK_PUBLISHABLE_KEY", "pk_test_x")
	t.Setenv("CLERK_AUTHORIZED_PARTIES", "http://localhost:8888,https://notes.example.com")

	cfg, err := Load()
	require.NoError(t, err)
	require.True(t, cfg.IsProduction())
	require.Equal(t, "postgres://u:p@localhost:5432/db", cfg.DatabaseURL)
	require.Equal(t, 5, cfg.MaxOpenConns)
	require.Equal(t, 2, cfg.MaxIdleConns)
	require.Equal(t, time.Minute, cfg.ConnMaxLifetime)
	require.Equal(t, 10*time.Second, cfg.ConnMaxIdleTime)
	require.Equal(t, ":9999", cfg.HTTPAddr)
	require.Equal(t, "/api", cfg.HTTPBasePath)
	require.True(t, cfg.LogPretty)
	require.Equal(t, "sk_test_x", cfg.Clerk.SecretKey)
	require.Equal(t, "pk_test_x", cfg.Clerk.PublishableKey)
	require.Equal(t, []string{"http://localhost:8888", "https://notes.example.com"}, cfg.Clerk.AuthorizedParties)
	require.NoError(t, cfg.Validate())
}

func TestLoad_PublishableKeyFallback(t *testing.T) {
	t.Cleanup(os.Clearenv)
	os.Clearenv()
	t.Setenv("VITE_CLERK_PUBLISHABLE_KEY", "pk_test_vite")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "pk_test_vite", cfg.Clerk.PublishableKey)

	t.Setenv("CLERK_PUBLISHABLE_KEY", "pk_test_server")
	cfg, err = Load()
	require.NoError(t, err)
	require.Equal(t, "pk_test_server", cfg.Clerk.PublishableKey)
}

func TestLoad_InvalidNumber(t *testing.T) {
	t.Cleanup(os.Clearenv)
	os.Clearenv()
	t.Setenv("DB_MAX_OPEN", "abc")

	_, err := Load()
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	require.Error(t, Config{}.Validate())
	require.Error(t, Config{DatabaseURL: "postgres://x"}.Validate())
	require.NoError(t, Config{DatabaseURL: "postgres://x", Clerk: ClerkConfig{JWTKey: "pem"}}.Validate())
}
