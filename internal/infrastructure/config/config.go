package config

import (
	"context"
	"log/slog"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// Config is the full service configuration, loaded from the environment.
// Secrets have no defaults on purpose.
type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	Auth  AuthConfig
	Mongo MongoConfig
	Redis RedisConfig
}

// AuthConfig carries the signing secrets and token lifetimes. Operators can
// shorten any TTL without code changes.
type AuthConfig struct {
	// JWTSecret signs session access/refresh tokens.
	JWTSecret string `env:"JWT_SECRET"`
	// EmailTokenSecret signs the confirm-email and password-reset tokens.
	EmailTokenSecret string `env:"EMAIL_TOKEN_SECRET"`

	AccessTTL  time.Duration `env:"ACCESS_TOKEN_TTL,  default=1h"`
	RefreshTTL time.Duration `env:"REFRESH_TOKEN_TTL, default=720h"`
	ConfirmTTL time.Duration `env:"CONFIRM_TOKEN_TTL, default=2h"`
	ResetTTL   time.Duration `env:"RESET_TOKEN_TTL,   default=1h"`

	BcryptCost int `env:"BCRYPT_COST, default=10"`

	ResendLimit  int64         `env:"RESEND_LIMIT,  default=5"`
	ResendWindow time.Duration `env:"RESEND_WINDOW, default=1h"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=identity_api"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load(logger *slog.Logger) *Config {
	var cfg Config
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		logger.Error("Failed to load configuration", "error", err)
		panic(err)
	}
	return &cfg
}
