// Package config loads application configuration from environment variables
// and the optional scraper YAML file.
package config

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/venuevibe/vibecheck/internal/logging"
)

// Config holds all runtime configuration values. Each field corresponds to
// an environment variable.
type Config struct {
	Env    string // application environment (dev, prod)
	Port   string // HTTP port to listen on
	DBUser string
	DBPass string // empty allowed
	DBHost string
	DBPort string
	DBName string

	LogLevel  string
	LogFormat string // json | console

	JWTSecret         string // empty disables the admin surface
	AdminPasswordHash string // bcrypt hash checked by POST /api/auth/login
	AccessTTLMin      int

	SyncStaleAfter    time.Duration // watermark age that triggers a sync
	EventsTimezone    string        // zone used for scraped times and the day cutoff
	EventsDayStartHr  int           // events before this hour today are hidden
	ScraperConfigPath string

	RabbitURL         string
	SyncAuditLog      string
	SyncAuditConsumer bool
}

// Load reads a .env file when present and then the environment. Required
// variables are enforced by must() and a missing value exits the process.
func Load() Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logging.Warnf("config: could not read .env: %v", err)
	}
	return Config{
		Env:    must("APP_ENV"),
		Port:   must("APP_PORT"),
		DBUser: must("DB_USER"),
		DBPass: os.Getenv("DB_PASS"),
		DBHost: must("DB_HOST"),
		DBPort: must("DB_PORT"),
		DBName: must("DB_NAME"),

		LogLevel:  envStr("LOG_LEVEL", "info"),
		LogFormat: envStr("LOG_FORMAT", "json"),

		JWTSecret:         os.Getenv("JWT_SECRET"),
		AdminPasswordHash: os.Getenv("ADMIN_PASSWORD_HASH"),
		AccessTTLMin:      envInt("ACCESS_TOKEN_TTL_MIN", 60),

		SyncStaleAfter:    envDur("SYNC_STALE_AFTER", time.Hour),
		EventsTimezone:    envStr("EVENTS_TIMEZONE", "America/New_York"),
		EventsDayStartHr:  envInt("EVENTS_DAY_START_HOUR", 6),
		ScraperConfigPath: os.Getenv("SCRAPER_CONFIG"),

		RabbitURL:         rabbitURL(),
		SyncAuditLog:      envStr("SYNC_AUDIT_LOG", "logs/sync.log"),
		SyncAuditConsumer: envBool("SYNC_AUDIT_CONSUMER", false),
	}
}

// AdminEnabled reports whether tokens can be issued and verified.
func (c Config) AdminEnabled() bool {
	return c.JWTSecret != ""
}

// rabbitURL accepts either RABBITMQ_URL or AMQP_URL. Empty disables publishing.
func rabbitURL() string {
	if v := strings.TrimSpace(os.Getenv("RABBITMQ_URL")); v != "" {
		return v
	}
	return strings.TrimSpace(os.Getenv("AMQP_URL"))
}

// must retrieves the value of a required environment variable. If it is
// unset or empty the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		logging.Fatalf("missing required env var: %s", key)
	}
	return v
}

// LoadAdmin reads only the token settings, for commands that do not touch
// the database.
func LoadAdmin() (jwtSecret string, accessTTLMin int) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logging.Warnf("config: could not read .env: %v", err)
	}
	return os.Getenv("JWT_SECRET"), envInt("ACCESS_TOKEN_TTL_MIN", 60)
}
