package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

type Config struct {
	Env string `env:"APP_ENV" env-default:"development"`

	DatabaseURL string `env:"DATABASE_URL"`

	MaxOpenConns    int           `env:"DB_MAX_OPEN" env-default:"20"`
	MaxIdleConns    int           `env:"DB_MAX_IDLE" env-default:"10"`
	ConnMaxLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME" env-default:"30m"`
	ConnMaxIdleTime time.Duration `env:"DB_CONN_MAX_IDLE_TIME" env-default:"5m"`
	ConnectAttempts uint          `env:"DB_CONNECT_ATTEMPTS" env-default:"3"`

	HTTPAddr     string `env:"HTTP_ADDR" env-default:":8080"`
	HTTPBasePath string `env:"HTTP_BASE_PATH" env-default:"/.netlify/functions"`

	LogLevel  string `env:"LOG_LEVEL" env-default:"info"`
	LogPretty bool   `env:"LOG_PRETTY" env-default:"false"`

	Clerk ClerkConfig
}

// ClerkConfig holds identity provider settings. SecretKey and JWTKey are
// server-side only; PublishableKey is handed to the browser and may also come
// from the Vite build variable older deployments set.
//
// With JWTKey set, tokens are checked offline against that PEM key. Otherwise
// the secret key fetches the instance JWKS, or, with VerifySessions, asks
// Clerk to verify every session.
type ClerkConfig struct {
	SecretKey         string   `env:"CLERK_SECRET_KEY"`
	PublishableKey    string   `env:"CLERK_PUBLISHABLE_KEY,VITE_CLERK_PUBLISHABLE_KEY"`
	JWTKey            string   `env:"CLERK_JWT_KEY"`
	VerifySessions    bool     `env:"CLERK_VERIFY_SESSIONS" env-default:"false"`
	APIURL            string   `env:"CLERK_API_URL" env-default:"https://api.clerk.com/v1"`
	AuthorizedParties []string `env:"CLERK_AUTHORIZED_PARTIES" env-separator:","`
}

// Load reads the configuration from the environment. A .env file in the
// working directory is applied first when present.
func Load() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse cfg: %w", err)
	}
	return cfg, nil
}

func (c Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

// Validate reports settings the API server cannot start without.
func (c Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.Clerk.SecretKey == "" && c.Clerk.JWTKey == "" {
		return fmt.Errorf("one of CLERK_SECRET_KEY or CLERK_JWT_KEY is required")
	}
	return nil
}
