package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config carries everything the composition root needs to wire the
// service.
type Config struct {
	ServerPort string

	DBHost     string
	DBPort     int
	DBUser     string
	DBPassword string
	DBName     string

	RedisURL string

	// Relying-party identity the WebAuthn ceremonies are scoped to.
	RPID     string
	RPOrigin string

	ChallengeTTL time.Duration
	AccessTTL    time.Duration
}

// Load reads configuration from the environment, with a .env file as
// fallback for local development.
func Load() (*Config, error) {
	// .env is optional; production injects env vars directly.
	_ = godotenv.Load()

	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}

	challengeTTL, err := time.ParseDuration(getEnv("CHALLENGE_TTL", "120s"))
	if err != nil {
		return nil, fmt.Errorf("invalid CHALLENGE_TTL: %w", err)
	}

	accessTTL, err := time.ParseDuration(getEnv("ACCESS_TOKEN_TTL", "15m"))
	if err != nil {
		return nil, fmt.Errorf("invalid ACCESS_TOKEN_TTL: %w", err)
	}

	return &Config{
		ServerPort:   getEnv("PORT", "8080"),
		DBHost:       getEnv("DB_HOST", "localhost"),
		DBPort:       dbPort,
		DBUser:       getEnv("DB_USER", "postgres"),
		DBPassword:   getEnv("DB_PASSWORD", ""),
		DBName:       getEnv("DB_NAME", "attendance_portal"),
		RedisURL:     getEnv("REDIS_URL", "redis://localhost:6379/0"),
		RPID:         getEnv("RP_ID", "localhost"),
		RPOrigin:     getEnv("RP_ORIGIN", "http://localhost:5173"),
		ChallengeTTL: challengeTTL,
		AccessTTL:    accessTTL,
	}, nil
}

// PostgresDSN renders the lib/pq connection URL.
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf("postgresql://%s:%s@%s:%d/%s?sslmode=disable",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
