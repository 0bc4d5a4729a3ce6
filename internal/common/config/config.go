package config

import (
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"

	commonerrors "github.com/avoronkov/webauth/internal/common/errors"
)

const secretKeyMinLength = 32

// Config holds everything read from the environment at startup. A .env file
// in the working directory is loaded first when present, matching local
// development setups.
type Config struct {
	DatabaseURL string `env:"DATABASE_URL"`
	DBHost      string `env:"DB_HOST" envDefault:"localhost"`
	DBUser      string `env:"DB_USER" envDefault:"postgres"`
	DBPassword  string `env:"DB_PASSWORD"`
	DBName      string `env:"DB_NAME" envDefault:"webauth"`
	DBPort      int    `env:"DB_PORT" envDefault:"5432"`

	SecretKey string `env:"SECRET_KEY"`
	HTTPPort  string `env:"HTTP_PORT" envDefault:"8080"`

	LogDir   string `env:"LOG_DIR"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"INFO"`

	RequestTimeout         time.Duration `env:"REQUEST_TIMEOUT" envDefault:"5s"`
	SessionIdleTimeout     time.Duration `env:"SESSION_IDLE_TIMEOUT" envDefault:"0"`
	AutoLoginAfterRegister bool          `env:"AUTO_LOGIN_AFTER_REGISTER"`
}

func Load() (Config, error) {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			return Config{}, fmt.Errorf("failed to load .env file: %w", err)
		}
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse environment: %w", err)
	}

	if cfg.SecretKey == "" {
		return Config{}, commonerrors.ErrMissingRequiredEnv.WithCause(fmt.Errorf("SECRET_KEY"))
	}
	if len(cfg.SecretKey) < secretKeyMinLength {
		return Config{}, commonerrors.ErrInvalidSecretKey.WithCause(fmt.Errorf("got %d bytes", len(cfg.SecretKey)))
	}

	return cfg, nil
}

// DSN returns the connection URL, preferring an explicit DATABASE_URL over
// the individual DB_* parts.
func (c Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}

	u := url.URL{
		Scheme: "postgres",
		Host:   fmt.Sprintf("%s:%d", c.DBHost, c.DBPort),
		Path:   "/" + c.DBName,
	}
	if c.DBPassword != "" {
		u.User = url.UserPassword(c.DBUser, c.DBPassword)
	} else {
		u.User = url.User(c.DBUser)
	}
	q := url.Values{}
	q.Set("sslmode", "disable")
	u.RawQuery = q.Encode()

	return u.String()
}
