package config

import (
	"os"
	"strings"
	"time"
)

// Server captures process-level configuration.
type Server struct {
	Addr          string
	JWTSigningKey string
	TokenTTL      time.Duration

	// PostgresURL selects the postgres audit store when set; empty keeps the
	// in-memory store.
	PostgresURL string

	Redis RedisConfig
	Kafka KafkaConfig
}

// RedisConfig selects the redis audit store when URL is set.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// KafkaConfig enables the audit mirror when Brokers is non-empty.
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	addr := os.Getenv("CUSTODIA_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	jwtSigningKey := os.Getenv("CUSTODIA_JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		// Development default; must be overridden in production.
		jwtSigningKey = "dev-secret-key-change-in-production"
	}

	topic := os.Getenv("CUSTODIA_AUDIT_TOPIC")
	if topic == "" {
		topic = "custodia.audit.entries"
	}

	var brokers []string
	if raw := os.Getenv("CUSTODIA_KAFKA_BROKERS"); raw != "" {
		for _, b := range strings.Split(raw, ",") {
			if b = strings.TrimSpace(b); b != "" {
				brokers = append(brokers, b)
			}
		}
	}

	return Server{
		Addr:          addr,
		JWTSigningKey: jwtSigningKey,
		TokenTTL:      12 * time.Hour,
		PostgresURL:   os.Getenv("CUSTODIA_POSTGRES_URL"),
		Redis: RedisConfig{
			URL:          os.Getenv("CUSTODIA_REDIS_URL"),
			PoolSize:     10,
			MinIdleConns: 2,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
		Kafka: KafkaConfig{
			Brokers: brokers,
			Topic:   topic,
		},
	}
}
