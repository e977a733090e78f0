package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	ServerPort string
	JWTSecret  string

	// Timezone is the reference location for day boundaries. Streaks,
	// the completion timeseries and routine rollover all depend on it,
	// so it is explicit configuration rather than the platform default.
	Timezone string
	// WeekStart names the first day of the calendar week for weekly
	// routines. Only "monday" and "sunday" are accepted.
	WeekStart string

	// DigestInterval controls the periodic completion digest job.
	// Zero disables it.
	DigestInterval time.Duration
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  No .env file found, using system environment variables")
	}

	cfg := &Config{
		DBHost:         getEnv("DB_HOST", "localhost"),
		DBPort:         getEnv("DB_PORT", "5432"),
		DBUser:         getEnv("DB_USER", "taskpulse_user"),
		DBPassword:     getEnv("DB_PASSWORD", "taskpulse_pass"),
		DBName:         getEnv("DB_NAME", "taskpulse_db"),
		ServerPort:     getEnv("SERVER_PORT", "8080"),
		JWTSecret:      getEnv("JWT_SECRET", "supersecretkey"),
		Timezone:       getEnv("TIMEZONE", "UTC"),
		WeekStart:      strings.ToLower(getEnv("WEEK_START", "monday")),
		DigestInterval: parseInterval(getEnv("DIGEST_INTERVAL_HOURS", "24")),
	}

	if _, err := cfg.Location(); err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE %q: %w", cfg.Timezone, err)
	}
	if _, err := cfg.WeekStartDay(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Location resolves the configured reference timezone.
func (c *Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.Timezone)
}

// WeekStartDay resolves the configured week-start convention.
func (c *Config) WeekStartDay() (time.Weekday, error) {
	switch c.WeekStart {
	case "monday":
		return time.Monday, nil
	case "sunday":
		return time.Sunday, nil
	}
	return time.Monday, fmt.Errorf("invalid WEEK_START %q: expected monday or sunday", c.WeekStart)
}

func parseInterval(raw string) time.Duration {
	hours, err := time.ParseDuration(strings.TrimSpace(raw) + "h")
	if err != nil || hours < 0 {
		log.Printf("⚠️  Invalid DIGEST_INTERVAL_HOURS %q, digest job disabled", raw)
		return 0
	}
	return hours
}

func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}
