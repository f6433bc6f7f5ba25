package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config captures environment driven configuration values for the meeting
// service.
type Config struct {
	HTTPPort         int
	SQLiteDSN        string
	RedisAddr        string
	RedisPassword    string
	RedisDB          int
	EventNamespace   string
	ReminderLead     time.Duration
	ReminderSchedule string
}

// Load parses configuration values from the current process environment.
//
// A .env file in the working directory is read first when present; real
// environment variables take precedence over it. Optional fields fall back to
// defaults, and values that fail to parse are reported together.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		HTTPPort:         8080,
		SQLiteDSN:        "file:meetings.db?_foreign_keys=on",
		EventNamespace:   "meetings",
		ReminderLead:     30 * time.Minute,
		ReminderSchedule: "*/1 * * * *",
	}

	invalid := make([]string, 0, 2)

	if portValue := strings.TrimSpace(os.Getenv("MEETINGS_HTTP_PORT")); portValue != "" {
		port, err := strconv.Atoi(portValue)
		if err != nil || port <= 0 {
			invalid = append(invalid, "MEETINGS_HTTP_PORT")
		} else {
			cfg.HTTPPort = port
		}
	}

	if dsn := strings.TrimSpace(os.Getenv("MEETINGS_SQLITE_DSN")); dsn != "" {
		cfg.SQLiteDSN = dsn
	}

	// An empty address disables event publishing entirely.
	cfg.RedisAddr = strings.TrimSpace(os.Getenv("MEETINGS_REDIS_ADDR"))
	cfg.RedisPassword = os.Getenv("MEETINGS_REDIS_PASSWORD")

	if dbValue := strings.TrimSpace(os.Getenv("MEETINGS_REDIS_DB")); dbValue != "" {
		db, err := strconv.Atoi(dbValue)
		if err != nil || db < 0 {
			invalid = append(invalid, "MEETINGS_REDIS_DB")
		} else {
			cfg.RedisDB = db
		}
	}

	if namespace := strings.TrimSpace(os.Getenv("MEETINGS_EVENT_NAMESPACE")); namespace != "" {
		cfg.EventNamespace = namespace
	}

	if leadValue := strings.TrimSpace(os.Getenv("MEETINGS_REMINDER_LEAD")); leadValue != "" {
		lead, err := time.ParseDuration(leadValue)
		if err != nil || lead <= 0 {
			invalid = append(invalid, "MEETINGS_REMINDER_LEAD")
		} else {
			cfg.ReminderLead = lead
		}
	}

	if schedule := strings.TrimSpace(os.Getenv("MEETINGS_REMINDER_SCHEDULE")); schedule != "" {
		cfg.ReminderSchedule = schedule
	}

	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("invalid environment variable values: %s", strings.Join(invalid, ", "))
	}

	return cfg, nil
}
