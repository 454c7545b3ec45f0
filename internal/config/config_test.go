package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()
	assert.Equal(t, 4001, cfg.Port)
	assert.Equal(t, "order_events", cfg.KafkaTopic)
	assert.Empty(t, cfg.KafkaBrokers)
	assert.False(t, cfg.Debug)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "9100")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")
	t.Setenv("KAFKA_TOPIC", "orders")
	t.Setenv("DEBUG", "true")

	cfg := Load()
	assert.Equal(t, 9100, cfg.Port)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "orders", cfg.KafkaTopic)
	assert.True(t, cfg.Debug)
}

func TestLoadBadPortFallsBack(t *testing.T) {
	t.Setenv("PORT", "not-a-port")
	cfg := Load()
	assert.Equal(t, 4001, cfg.Port)

	t.Setenv("PORT", "-1")
	cfg = Load()
	assert.Equal(t, 4001, cfg.Port)
}
