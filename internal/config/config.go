// internal/config/config.go
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/sirupsen/logrus"
)

// Config holds runtime configuration for every binary in this module.
// Unset optional addresses disable the matching integration.
type Config struct {
	Port            string        `env:"PORT" envDefault:"8080"`
	LogLevel        string        `env:"LOG_LEVEL" envDefault:"info"`
	AllowedOrigins  []string      `env:"ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`
	DeliveryTimeout time.Duration `env:"DELIVERY_TIMEOUT" envDefault:"5s"`

	DiscordToken   string `env:"DISCORD_TOKEN"`
	DiscordGuildID string `env:"DISCORD_GUILD_ID"` // empty registers commands globally

	RedisAddr string `env:"REDIS_ADDR"`
	RedisDB   int    `env:"REDIS_DB" envDefault:"0"`
	QueueName string `env:"HISTORIAN_QUEUE_NAME" envDefault:"truthorlie_events"`

	DatabaseURL        string        `env:"DATABASE_URL"`
	HistorianBatchSize int           `env:"HISTORIAN_BATCH_SIZE" envDefault:"20"`
	HistorianFlush     time.Duration `env:"HISTORIAN_FLUSH_INTERVAL" envDefault:"500ms"`
	GameInactivity     time.Duration `env:"GAME_INACTIVITY_TIMEOUT" envDefault:"10m"`

	// TokenExpire is a Go duration, or "never"/"0" for tokens without exp.
	TokenExpire string `env:"TOKEN_EXPIRE_TIME" envDefault:"never"`
	// Raw ed25519 key files. When unset, a key pair is generated at startup.
	TokenPrivateKeyPath string `env:"TOKEN_PRIVATE_KEY_PATH"`
	TokenPublicKeyPath  string `env:"TOKEN_PUBLIC_KEY_PATH"`
}

// Load reads the environment into a Config.
func Load() (Config, error) {
	var c Config
	if err := env.Parse(&c); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if c.HistorianBatchSize <= 0 {
		return Config{}, fmt.Errorf("HISTORIAN_BATCH_SIZE must be positive, got %d", c.HistorianBatchSize)
	}
	if _, err := c.TokenTTL(); err != nil {
		return Config{}, err
	}
	if (c.TokenPrivateKeyPath == "") != (c.TokenPublicKeyPath == "") {
		return Config{}, fmt.Errorf("TOKEN_PRIVATE_KEY_PATH and TOKEN_PUBLIC_KEY_PATH must be set together")
	}
	return c, nil
}

// Address is the listen address for the HTTP server.
func (c Config) Address() string {
	return fmt.Sprintf(":%s", c.Port)
}

// TokenTTL parses TokenExpire. Zero means tokens never expire.
func (c Config) TokenTTL() (time.Duration, error) {
	switch c.TokenExpire {
	case "", "never", "0":
		return 0, nil
	}
	d, err := time.ParseDuration(c.TokenExpire)
	if err != nil {
		return 0, fmt.Errorf("parse TOKEN_EXPIRE_TIME: %w", err)
	}
	return d, nil
}

// NewLogger builds the process logger at the configured level.
func (c Config) NewLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		logger.Warnf("unknown LOG_LEVEL %q, using info", c.LogLevel)
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)
	return logger
}
