// internal/config/config.go
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// Config is the runtime configuration shared by the server and historian.
// Every field is read from the environment; a .env file is honored when the
// binary imports godotenv/autoload.
type Config struct {
	Port           string
	LogLevel       logrus.Level
	OriginPatterns []string

	// MailboxSize bounds each session's outbound queue.
	MailboxSize int
	// SubscriberBuffer bounds each session's broadcast mailbox. Overflow drops the oldest event.
	SubscriberBuffer int
	WriteTimeout     time.Duration

	RedisAddr  string
	RedisDB    int
	EventQueue string

	DatabaseURL string

	AdminPasswordHash string
	TokenTTL          time.Duration

	HistorianBatchSize int
	HistorianFlush     time.Duration
}

// Load reads the configuration, falling back to defaults for unset or
// malformed values.
func Load() Config {
	return Config{
		Port:           getEnv("PORT", "8080"),
		LogLevel:       getEnvLevel("LOG_LEVEL", logrus.InfoLevel),
		OriginPatterns: getEnvList("WS_ORIGIN_PATTERNS", []string{"*"}),

		MailboxSize:      getEnvInt("MAILBOX_SIZE", 64),
		SubscriberBuffer: getEnvInt("SUBSCRIBER_BUFFER", 128),
		WriteTimeout:     getEnvDuration("WRITE_TIMEOUT", 5*time.Second),

		RedisAddr:  getEnv("REDIS_ADDR", ""),
		RedisDB:    getEnvInt("REDIS_DB", 0),
		EventQueue: getEnv("EVENT_QUEUE_NAME", "thulla_events"),

		DatabaseURL: getEnv("DATABASE_URL", ""),

		AdminPasswordHash: getEnv("ADMIN_PASSWORD_HASH", ""),
		TokenTTL:          getEnvDuration("TOKEN_EXPIRE_TIME", 12*time.Hour),

		HistorianBatchSize: getEnvInt("HISTORIAN_BATCH_SIZE", 20),
		HistorianFlush:     time.Duration(getEnvInt("HISTORIAN_FLUSH_MS", 500)) * time.Millisecond,
	}
}

// Addr is the listen address for the HTTP server.
func (c Config) Addr() string {
	return ":" + c.Port
}

// getEnv reads an environment variable or returns def.
func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

// getEnvInt parses an environment variable as a non-negative integer, else def.
func getEnvInt(key string, def int) int {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil || v < 0 {
		return def
	}
	return v
}

// getEnvDuration accepts Go duration syntax ("5s"). "never" and "0" mean zero.
func getEnvDuration(key string, def time.Duration) time.Duration {
	s := os.Getenv(key)
	switch s {
	case "":
		return def
	case "never", "0":
		return 0
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return def
	}
	return d
}

func getEnvLevel(key string, def logrus.Level) logrus.Level {
	lvl, err := logrus.ParseLevel(getEnv(key, def.String()))
	if err != nil {
		return def
	}
	return lvl
}

// getEnvList splits a comma-separated variable, dropping empty entries.
func getEnvList(key string, def []string) []string {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
