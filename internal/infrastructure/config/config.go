package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/lumenbank/mortgage-engine/pkg/postgres"
)

type KafkaConfig struct {
	Brokers    []string
	EventTopic string
}

type JWTConfig struct {
	// PublicKeyPath selects RSA verification; empty falls back to Secret.
	PublicKeyPath string
	Secret        string
}

type TracingConfig struct {
	Enabled      bool
	OTLPEndpoint string
}

type Config struct {
	ServiceName string
	GRPCPort    int
	HTTPPort    int
	LogLevel    string

	DB      postgres.Config
	Kafka   KafkaConfig
	JWT     JWTConfig
	Tracing TracingConfig

	MigrationsPath string
	// TickBatchSize caps how many due schedule rows one runner pass picks up.
	TickBatchSize int
	// TickInterval is the runner poll interval in seconds.
	TickIntervalSeconds int
}

func (c Config) Validate() {
	if c.DB.Password == "" {
		panic("DB_PASSWORD environment variable is required")
	}
	if c.JWT.PublicKeyPath == "" && c.JWT.Secret == "" {
		panic("JWT_PUBLIC_KEY_PATH or JWT_SECRET environment variable is required")
	}
}

func Load() Config {
	return Config{
		ServiceName: "mortgage-engine",
		GRPCPort:    getEnvInt("GRPC_PORT", 9095),
		HTTPPort:    getEnvInt("HTTP_PORT", 8095),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		DB: postgres.Config{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "mortgage"),
			Password: getEnv("DB_PASSWORD", ""),
			Database: getEnv("DB_NAME", "mortgage_engine"),
			SSLMode:  getEnv("DB_SSLMODE", "require"),
			MaxConns: int32(getEnvInt("DB_MAX_CONNS", 10)),
		},
		Kafka: KafkaConfig{
			Brokers:    strings.Split(getEnv("KAFKA_BROKERS", "localhost:9092"), ","),
			EventTopic: getEnv("KAFKA_EVENT_TOPIC", "mortgage.events"),
		},
		JWT: JWTConfig{
			PublicKeyPath: getEnv("JWT_PUBLIC_KEY_PATH", ""),
			Secret:        getEnv("JWT_SECRET", ""),
		},
		Tracing: TracingConfig{
			Enabled:      getEnv("OTEL_ENABLED", "false") == "true",
			OTLPEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
		},
		MigrationsPath:      getEnv("MIGRATIONS_PATH", "migrations"),
		TickBatchSize:       getEnvInt("TICK_BATCH_SIZE", 100),
		TickIntervalSeconds: getEnvInt("TICK_INTERVAL_SECONDS", 30),
	}
}

func (c Config) GRPCAddr() string {
	return fmt.Sprintf(":%d", c.GRPCPort)
}

func (c Config) HTTPAddr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}
