package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg := LoadConfig()

	assert.Equal(t, 3000, cfg.ServerPort)
	assert.Equal(t, "/api/v1", cfg.APIPrefix)
	assert.Equal(t, "some secret text", cfg.Secret)
	assert.Equal(t, 500*time.Millisecond, cfg.Delay)
	assert.Equal(t, "file", cfg.Store.Driver)
	assert.Equal(t, "db.json", cfg.Store.Path)
	assert.Equal(t, "memory", cfg.MQ.Driver)
	assert.Equal(t, "none", cfg.Search.Driver)
	assert.False(t, cfg.HashPasswords)
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("SERVER_PORT", "8080")
	t.Setenv("DELAY_MS", "0")
	t.Setenv("STORE_DRIVER", "Postgres")
	t.Setenv("HASH_PASSWORDS", "yes")
	t.Setenv("RABBITMQ_QUEUE_DURABLE", "off")
	t.Setenv("API_SECRET", "")

	cfg := LoadConfig()
	assert.Equal(t, 8080, cfg.ServerPort)
	assert.Equal(t, time.Duration(0), cfg.Delay)
	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.True(t, cfg.HashPasswords)
	assert.False(t, cfg.RabbitMQ.QueueDurable)
	assert.Empty(t, cfg.Secret)
}
