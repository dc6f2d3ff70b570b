package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	CORS     CORSConfig
	Feed     FeedConfig
	Security SecurityConfig
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port string
	Host string
	Addr string // Combined host:port for convenience
}

// DatabaseConfig holds database-specific configuration
type DatabaseConfig struct {
	Path string
}

// CORSConfig holds CORS-specific configuration
type CORSConfig struct {
	AllowedOrigins []string
}

// FeedConfig holds the statement-feed configuration. URL is optional; when
// empty the nightly refresh job is not scheduled and only manual CSV import
// is available.
type FeedConfig struct {
	URL      string
	Schedule string // Cron expression for the nightly refresh
}

// SecurityConfig holds secrets-related configuration. FernetKey encrypts
// stored feed tokens at rest; InternalAPIKey protects internal endpoints.
type SecurityConfig struct {
	FernetKey      string
	InternalAPIKey string
}

// Load reads configuration from environment variables and .env file
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	config := &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "5001"),
			Host: getEnv("SERVER_HOST", "localhost"),
		},
		Database: DatabaseConfig{
			Path: getEnv("DB_PATH", "./data/fundamentals_simulator.db"),
		},
		CORS: CORSConfig{
			AllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000,http://localhost")),
		},
		Feed: FeedConfig{
			URL:      getEnv("FEED_URL", ""),
			Schedule: getEnv("FEED_SCHEDULE", "0 3 * * *"),
		},
		Security: SecurityConfig{
			FernetKey:      getEnv("FERNET_KEY", ""),
			InternalAPIKey: getEnv("INTERNAL_API_KEY", ""),
		},
	}

	// Combine host and port
	config.Server.Addr = fmt.Sprintf("%s:%s", config.Server.Host, config.Server.Port)

	return config, nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// splitList splits a comma-separated environment value into trimmed entries.
func splitList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
