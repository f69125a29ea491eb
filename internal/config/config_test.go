package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("HTTP_PORT", "8088")
	t.Setenv("STORAGE_DRIVER", DriverMemory)
	t.Setenv("DB_PORT", "6543")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092,")
	t.Setenv("OUTBOX_POLL_INTERVAL", "250ms")
	t.Setenv("STOCK_ALERT_THRESHOLD", "3")

	cfg := Load()

	assert.Equal(t, "8088", cfg.HTTPPort)
	assert.Equal(t, DriverMemory, cfg.StorageDriver)
	assert.Equal(t, 6543, cfg.Postgres.Port)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, 250*time.Millisecond, cfg.Outbox.PollInterval)
	assert.Equal(t, 3, cfg.Stock.AlertThreshold)
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("DB_PORT", "not-a-port")
	t.Setenv("STOCK_CACHE_TTL", "soon")

	cfg := Load()

	assert.Equal(t, 5432, cfg.Postgres.Port)
	assert.Equal(t, 30*time.Second, cfg.Stock.CacheTTL)
}

func TestPostgresDSN(t *testing.T) {
	p := Postgres{Host: "db", Port: 5432, User: "u", Password: "p", Database: "bank"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=bank sslmode=disable", p.DSN())
}
