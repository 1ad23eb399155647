package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	APIBaseURL  string        `env:"API_BASE_URL, default=http://localhost:3000/api"`
	HTTPTimeout time.Duration `env:"HTTP_TIMEOUT, default=15s"`
	Env         string        `env:"ENV,          default=development"`
	LogLevel    string        `env:"LOG_LEVEL,    default=info"`

	Store    StoreConfig
	Redis    RedisConfig
	Identity IdentityConfig
}

type StoreConfig struct {
	// Backend selects the persisted session slot: "file" (single-user
	// devices) or "redis" (shared POS terminals).
	Backend string `env:"STORE_BACKEND, default=file"`
	Dir     string `env:"STORE_DIR,     default=.storefront"`
	// TerminalID keys the redis slot for this counter terminal.
	TerminalID string        `env:"TERMINAL_ID, default=pos-1"`
	SessionTTL time.Duration `env:"SESSION_TTL, default=0"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

type IdentityConfig struct {
	CallbackAddr string `env:"IDP_CALLBACK_ADDR, default=127.0.0.1:8423"`
	SignInURL    string `env:"IDP_SIGNIN_URL,    default=https://auth.bingsoohouse.example/signin"`
	RevokeURL    string `env:"IDP_REVOKE_URL"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}
