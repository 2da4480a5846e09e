package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DBDriver    string
	DatabaseURL string
	ServerPort  int

	CORSAllowedOrigins []string
	SessionLifetime    time.Duration
	// DevSessionHandshake exposes POST /session, which signs in any claimed
	// actor. Only for local development.
	DevSessionHandshake bool

	NATSURL     string
	NATSSubject string

	Archive ArchiveConfig
}

// ArchiveConfig points at an S3 compatible bucket receiving final standings.
// An empty Bucket disables archiving.
type ArchiveConfig struct {
	Bucket          string
	Endpoint        string
	Region          string
	AccessKeyID     string
	SecretAccessKey string
}

// Load reads configuration from the environment, picking up a .env file when
// one is present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	port, err := strconv.Atoi(getEnv("SERVER_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT environment variable: %w", err)
	}
	if port <= 0 || port > 65535 {
		return nil, fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", port)
	}

	lifetime, err := time.ParseDuration(getEnv("SESSION_LIFETIME", "24h"))
	if err != nil {
		return nil, fmt.Errorf("invalid SESSION_LIFETIME environment variable: %w", err)
	}

	devSessions, err := strconv.ParseBool(getEnv("DEV_SESSION_HANDSHAKE", "false"))
	if err != nil {
		return nil, fmt.Errorf("invalid DEV_SESSION_HANDSHAKE environment variable: %w", err)
	}

	driver := getEnv("DB_DRIVER", "sqlite3")
	if driver != "sqlite3" && driver != "postgres" {
		return nil, fmt.Errorf("DB_DRIVER must be sqlite3 or postgres, got %q", driver)
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		if driver == "postgres" {
			return nil, fmt.Errorf("DATABASE_URL environment variable is not set")
		}
		dbURL = "olympics.db?_journal_mode=WAL"
	}

	return &Config{
		DBDriver:            driver,
		DatabaseURL:         dbURL,
		ServerPort:          port,
		CORSAllowedOrigins:  splitList(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000")),
		SessionLifetime:     lifetime,
		DevSessionHandshake: devSessions,
		NATSURL:             os.Getenv("NATS_URL"),
		NATSSubject:         getEnv("NATS_SUBJECT", "olympics.draws.completed"),
		Archive: ArchiveConfig{
			Bucket:          os.Getenv("ARCHIVE_BUCKET"),
			Endpoint:        os.Getenv("ARCHIVE_ENDPOINT"),
			Region:          getEnv("ARCHIVE_REGION", "auto"),
			AccessKeyID:     os.Getenv("ARCHIVE_ACCESS_KEY_ID"),
			SecretAccessKey: os.Getenv("ARCHIVE_SECRET_ACCESS_KEY"),
		},
	}, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
