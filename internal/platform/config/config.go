package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config captures everything the server needs from the environment so main
// stays lean. Every field has a development default; production overrides via
// CONFIDE_* variables.
type Config struct {
	Addr          string
	JWTSigningKey string

	// PostgresURL selects the durable storage backend. Empty means the
	// in-memory stores, which is the development and test default.
	PostgresURL string

	Redis RedisConfig

	// KafkaBrokers enables the best-effort event mirror when non-empty.
	KafkaBrokers []string
	KafkaTopic   string

	// MaxConfessionLength bounds confession text in runes.
	MaxConfessionLength int

	// DefaultEmoji is recorded when a first reaction arrives without an
	// explicit emoji and RequireExplicitEmoji is off.
	DefaultEmoji         string
	RequireExplicitEmoji bool

	// OpenTopicJoin keeps the broadcast channel unauthenticated. When false,
	// the websocket handshake must carry a valid access token.
	OpenTopicJoin bool
}

// RedisConfig mirrors the knobs the go-redis client exposes.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// FromEnv builds a Config from environment variables.
func FromEnv() Config {
	cfg := Config{
		Addr:                 getEnv("CONFIDE_ADDR", ":8080"),
		JWTSigningKey:        getEnv("CONFIDE_JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
		PostgresURL:          os.Getenv("CONFIDE_POSTGRES_URL"),
		KafkaTopic:           getEnv("CONFIDE_KAFKA_TOPIC", "confide.events"),
		MaxConfessionLength:  getEnvInt("CONFIDE_MAX_CONFESSION_LENGTH", 280),
		DefaultEmoji:         getEnv("CONFIDE_DEFAULT_EMOJI", "👍"),
		RequireExplicitEmoji: os.Getenv("CONFIDE_REACTION_REQUIRE_EXPLICIT_EMOJI") == "true",
		OpenTopicJoin:        getEnv("CONFIDE_LIVE_OPEN_TOPIC_JOIN", "true") == "true",
	}

	if brokers := os.Getenv("CONFIDE_KAFKA_BROKERS"); brokers != "" {
		for _, b := range strings.Split(brokers, ",") {
			if b = strings.TrimSpace(b); b != "" {
				cfg.KafkaBrokers = append(cfg.KafkaBrokers, b)
			}
		}
	}

	cfg.Redis = RedisConfig{
		URL:          os.Getenv("CONFIDE_REDIS_URL"),
		PoolSize:     getEnvInt("CONFIDE_REDIS_POOL_SIZE", 10),
		MinIdleConns: getEnvInt("CONFIDE_REDIS_MIN_IDLE_CONNS", 2),
		DialTimeout:  getEnvDuration("CONFIDE_REDIS_DIAL_TIMEOUT", 5*time.Second),
		ReadTimeout:  getEnvDuration("CONFIDE_REDIS_READ_TIMEOUT", 3*time.Second),
		WriteTimeout: getEnvDuration("CONFIDE_REDIS_WRITE_TIMEOUT", 3*time.Second),
	}

	return cfg
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
