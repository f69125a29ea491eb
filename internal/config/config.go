package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

type Config struct {
	HTTPPort      string
	StorageDriver string
	LogLevel      string
	TxMaxAttempts int

	Postgres Postgres
	Kafka    Kafka
	Outbox   Outbox
	Stock    Stock
	Audit    Audit
}

type Postgres struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	MaxConns int32
}

func (p Postgres) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		p.Host, p.Port, p.User, p.Password, p.Database)
}

type Kafka struct {
	Brokers []string
	Topic   string
	GroupID string
}

type Outbox struct {
	PollInterval time.Duration
	BatchSize    int
	MaxAttempts  int

	// ProcessingLease is how long a claimed task may stay PROCESSING before
	// another publisher reclaims it.
	ProcessingLease time.Duration
}

type Stock struct {
	AlertThreshold int
	CacheTTL       time.Duration
}

type Audit struct {
	Workers   int
	BatchSize int
	Timeout   time.Duration
}

// Load reads configuration from the environment, after loading the first
// .env (or .example.env) file found in the working directory or its parents.
func Load() Config {
	loadEnv()

	return Config{
		HTTPPort:      getString("HTTP_PORT", "9000"),
		StorageDriver: getString("STORAGE_DRIVER", DriverPostgres),
		LogLevel:      getString("LOG_LEVEL", "info"),
		TxMaxAttempts: getInt("TX_MAX_ATTEMPTS", 3),
		Postgres: Postgres{
			Host:     getString("DB_HOST", "localhost"),
			Port:     getInt("DB_PORT", 5432),
			User:     getString("POSTGRES_USER", "postgres"),
			Password: getString("POSTGRES_PASSWORD", "postgres"),
			Database: getString("POSTGRES_DB", "bloodbank"),
			MaxConns: int32(getInt("DB_MAX_CONNS", 10)),
		},
		Kafka: Kafka{
			Brokers: splitList(getString("KAFKA_BROKERS", "")),
			Topic:   getString("KAFKA_TOPIC", "bloodbank.inventory-events"),
			GroupID: getString("KAFKA_GROUP_ID", "bloodbank-event-consumer"),
		},
		Outbox: Outbox{
			PollInterval:    getDuration("OUTBOX_POLL_INTERVAL", time.Second),
			BatchSize:       getInt("OUTBOX_BATCH_SIZE", 50),
			MaxAttempts:     getInt("OUTBOX_MAX_ATTEMPTS", 5),
			ProcessingLease: getDuration("OUTBOX_PROCESSING_LEASE", 5*time.Minute),
		},
		Stock: Stock{
			AlertThreshold: getInt("STOCK_ALERT_THRESHOLD", 5),
			CacheTTL:       getDuration("STOCK_CACHE_TTL", 30*time.Second),
		},
		Audit: Audit{
			Workers:   getInt("AUDIT_WORKERS", 2),
			BatchSize: getInt("AUDIT_BATCH_SIZE", 5),
			Timeout:   getDuration("AUDIT_FLUSH_TIMEOUT", 500*time.Millisecond),
		},
	}
}

func loadEnv() {
	wd, err := os.Getwd()
	if err != nil {
		log.Printf("config: cannot resolve working directory: %v", err)
		return
	}

	dirs := []string{wd, filepath.Join(wd, ".."), filepath.Join(wd, "..", "..")}
	for _, name := range []string{".env", ".example.env"} {
		for _, dir := range dirs {
			path := filepath.Join(dir, name)
			if err := godotenv.Load(path); err == nil {
				log.Printf("Loaded environment variables from %s", path)
				return
			}
		}
	}
}

func getString(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func getInt(key string, def int) int {
	v := getString(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("config: invalid integer %s=%q, using %d", key, v, def)
		return def
	}
	return n
}

func getDuration(key string, def time.Duration) time.Duration {
	v := getString(key, "")
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Printf("config: invalid duration %s=%q, using %s", key, v, def)
		return def
	}
	return d
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
