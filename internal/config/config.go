package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/rs/zerolog/log"
)

type Config struct {
	Port        int    `env:"PORT" envDefault:"8080"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	RedisURL    string `env:"REDIS_URL"`
	DatabaseURL string `env:"DATABASE_URL"`

	QueueStaleSeconds      int `env:"QUEUE_STALE_SECONDS" envDefault:"120"`
	ConfirmTimeoutSeconds  int `env:"CONFIRM_TIMEOUT_SECONDS" envDefault:"15"`
	PlayerIdleSeconds      int `env:"PLAYER_IDLE_SECONDS" envDefault:"60"`
	MatchIdleSeconds       int `env:"MATCH_IDLE_SECONDS" envDefault:"300"`
	PairingIntervalMS      int `env:"PAIRING_INTERVAL_MS" envDefault:"2000"`
	CleanupIntervalSeconds int `env:"CLEANUP_INTERVAL_SECONDS" envDefault:"20"`

	// CountReconnects controls whether a reconnect by a player with a
	// live session increments the connect counter again.
	CountReconnects bool `env:"COUNT_RECONNECTS" envDefault:"true"`

	RateLimitPerMin    int      `env:"RATE_LIMIT_PER_MIN" envDefault:"120"`
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`
	MaxBodyBytes       int64    `env:"MAX_BODY_BYTES" envDefault:"65536"`
}

func (c *Config) QueueStaleTTL() time.Duration {
	return time.Duration(c.QueueStaleSeconds) * time.Second
}

func (c *Config) ConfirmTimeout() time.Duration {
	return time.Duration(c.ConfirmTimeoutSeconds) * time.Second
}

func (c *Config) PlayerIdleTTL() time.Duration {
	return time.Duration(c.PlayerIdleSeconds) * time.Second
}

func (c *Config) MatchIdleTTL() time.Duration {
	return time.Duration(c.MatchIdleSeconds) * time.Second
}

func (c *Config) PairingInterval() time.Duration {
	return time.Duration(c.PairingIntervalMS) * time.Millisecond
}

func (c *Config) CleanupInterval() time.Duration {
	return time.Duration(c.CleanupIntervalSeconds) * time.Second
}

func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

func (c *Config) Validate() error {
	positive := map[string]int{
		"QUEUE_STALE_SECONDS":      c.QueueStaleSeconds,
		"CONFIRM_TIMEOUT_SECONDS":  c.ConfirmTimeoutSeconds,
		"PLAYER_IDLE_SECONDS":      c.PlayerIdleSeconds,
		"MATCH_IDLE_SECONDS":       c.MatchIdleSeconds,
		"PAIRING_INTERVAL_MS":      c.PairingIntervalMS,
		"CLEANUP_INTERVAL_SECONDS": c.CleanupIntervalSeconds,
	}
	for name, v := range positive {
		if v <= 0 {
			return fmt.Errorf("%s must be positive, got %d", name, v)
		}
	}

	if c.MaxBodyBytes <= 0 {
		return fmt.Errorf("MAX_BODY_BYTES must be positive, got %d", c.MaxBodyBytes)
	}
	if c.RateLimitPerMin <= 0 {
		return fmt.Errorf("RATE_LIMIT_PER_MIN must be positive, got %d", c.RateLimitPerMin)
	}

	if c.ConfirmTimeoutSeconds >= c.QueueStaleSeconds {
		log.Warn().
			Int("confirm_timeout_seconds", c.ConfirmTimeoutSeconds).
			Int("queue_stale_seconds", c.QueueStaleSeconds).
			Msg("confirmation timeout is not shorter than queue staleness; requeued players may expire immediately")
	}

	return nil
}

func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}
