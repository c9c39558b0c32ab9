package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

func String(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func RequiredString(key string) (string, error) {
	v := os.Getenv(key)
	if v == "" {
		return "", fmt.Errorf("%s is required", key)
	}
	return v, nil
}

func Int(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func Port(key, fallback string) (string, error) {
	v := String(key, fallback)
	p, err := strconv.Atoi(v)
	if err != nil || p < 1 || p > 65535 {
		return "", fmt.Errorf("%s must be a valid TCP port (got %q)", key, v)
	}
	return v, nil
}

// Config is the assembled service configuration. Everything comes from the
// environment; missing optional pieces disable the corresponding subsystem.
type Config struct {
	ServiceName string
	Port        string
	DatabaseURL string

	DBMaxConns        int
	DBMinConns        int
	DBConnMaxLifetime time.Duration
	DBConnMaxIdleTime time.Duration

	RedisAddr     string
	RedisPassword string

	KafkaBrokers string

	CORSOrigins []string

	PublicRateLimit  int
	PublicRateWindow time.Duration
}

func Load() (Config, error) {
	cfg := Config{
		ServiceName:       String("SERVICE_NAME", "booking-api"),
		DBMaxConns:        Int("DB_MAX_CONNS", 10),
		DBMinConns:        Int("DB_MIN_CONNS", 1),
		DBConnMaxLifetime: time.Duration(Int("DB_CONN_MAX_LIFETIME_MINUTES", 30)) * time.Minute,
		DBConnMaxIdleTime: time.Duration(Int("DB_CONN_MAX_IDLE_MINUTES", 5)) * time.Minute,
		RedisAddr:         String("REDIS_ADDR", ""),
		RedisPassword:     String("REDIS_PASSWORD", ""),
		KafkaBrokers:      String("KAFKA_BROKERS", ""),
		PublicRateLimit:   Int("PUBLIC_RATE_LIMIT", 120),
		PublicRateWindow:  time.Minute,
	}

	port, err := Port("PORT", "8080")
	if err != nil {
		return Config{}, err
	}
	cfg.Port = port

	dbURL, err := RequiredString("DATABASE_URL")
	if err != nil {
		return Config{}, err
	}
	cfg.DatabaseURL = dbURL

	for _, origin := range strings.Split(String("CORS_ALLOWED_ORIGINS", ""), ",") {
		origin = strings.TrimSpace(origin)
		if origin != "" {
			cfg.CORSOrigins = append(cfg.CORSOrigins, origin)
		}
	}
	return cfg, nil
}
