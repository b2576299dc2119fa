package config

import (
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	c, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", c.Address())
	assert.Equal(t, []string{"*"}, c.AllowedOrigins)
	assert.Equal(t, 5*time.Second, c.DeliveryTimeout)
	assert.Equal(t, 20, c.HistorianBatchSize)
	assert.Equal(t, "truthorlie_events", c.QueueName)
	assert.Equal(t, 10*time.Minute, c.GameInactivity)

	ttl, err := c.TokenTTL()
	require.NoError(t, err)
	assert.Zero(t, ttl)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("ALLOWED_ORIGINS", "a.example,b.example")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("HISTORIAN_FLUSH_INTERVAL", "2s")
	t.Setenv("TOKEN_EXPIRE_TIME", "72h")
	t.Setenv("LOG_LEVEL", "debug")

	c, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9000", c.Address())
	assert.Equal(t, []string{"a.example", "b.example"}, c.AllowedOrigins)
	assert.Equal(t, "localhost:6379", c.RedisAddr)
	assert.Equal(t, 2*time.Second, c.HistorianFlush)

	ttl, err := c.TokenTTL()
	require.NoError(t, err)
	assert.Equal(t, 72*time.Hour, ttl)
	assert.Equal(t, logrus.DebugLevel, c.NewLogger().GetLevel())
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Setenv("TOKEN_EXPIRE_TIME", "soon")
	_, err := Load()
	assert.Error(t, err)

	t.Setenv("TOKEN_EXPIRE_TIME", "never")
	t.Setenv("HISTORIAN_BATCH_SIZE", "0")
	_, err = Load()
	assert.Error(t, err)

	t.Setenv("HISTORIAN_BATCH_SIZE", "many")
	_, err = Load()
	assert.Error(t, err)
}

func TestNewLoggerFallsBackToInfo(t *testing.T) {
	c := Config{LogLevel: "loud"}
	assert.Equal(t, logrus.InfoLevel, c.NewLogger().GetLevel())
}

func TestLoadRequiresBothKeyPaths(t *testing.T) {
	t.Setenv("TOKEN_PRIVATE_KEY_PATH", "/keys/jwt")
	_, err := Load()
	assert.Error(t, err)

	t.Setenv("TOKEN_PUBLIC_KEY_PATH", "/keys/jwt.pub")
	c, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "/keys/jwt.pub", c.TokenPublicKeyPath)
}
