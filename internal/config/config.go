package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration
type Config struct {
	ServerPort      string
	DatabaseType    string
	DatabasePath    string
	DatabaseURL     string
	MigrationsPath  string
	ContentPath     string
	SessionDuration time.Duration
	Debug           bool

	// Admin identity, compared case-insensitively against the signed-in email
	AdminEmails    []string
	ActivityWindow time.Duration

	MetricsUser string
	MetricsPass string

	RateLimitRPS   float64
	RateLimitBurst int

	CORSAllowedOrigins []string
	CSRFSecret         string

	GoogleClientID       string
	GoogleClientSecret   string
	OAuthRedirectBaseURL string

	AWSRegion    string
	SESFromEmail string
	SESFromName  string
	AppBaseURL   string

	// ReminderHour is the local hour (0-23) the daily reminder job runs; negative disables it
	ReminderHour   int
	ReminderSecret string
}

// Load reads configuration from environment variables with sensible defaults
func Load() *Config {
	return &Config{
		ServerPort:      getEnv("SERVER_PORT", "8080"),
		DatabaseType:    strings.ToLower(getEnv("DATABASE_TYPE", "sqlite")),
		DatabasePath:    getEnv("DATABASE_PATH", "./coachpath.db"),
		DatabaseURL:     getEnv("DATABASE_URL", ""),
		MigrationsPath:  getEnv("MIGRATIONS_PATH", ""),
		ContentPath:     getEnv("CONTENT_PATH", ""),
		SessionDuration: getEnvDuration("SESSION_DURATION", 7*24*time.Hour),
		Debug:           getEnvBool("DEBUG", false),

		AdminEmails:    getEnvList("ADMIN_EMAILS"),
		ActivityWindow: getEnvDuration("ACTIVITY_WINDOW", 7*24*time.Hour),

		MetricsUser: getEnv("METRICS_USER", ""),
		MetricsPass: getEnv("METRICS_PASS", ""),

		RateLimitRPS:   getEnvFloat("RATE_LIMIT_RPS", 5),
		RateLimitBurst: getEnvInt("RATE_LIMIT_BURST", 10),

		CORSAllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS"),
		CSRFSecret:         getEnv("CSRF_SECRET", ""),

		GoogleClientID:       getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret:   getEnv("GOOGLE_CLIENT_SECRET", ""),
		OAuthRedirectBaseURL: getEnv("OAUTH_REDIRECT_BASE_URL", "http://localhost:8080"),

		AWSRegion:    getEnv("AWS_REGION", "eu-west-1"),
		SESFromEmail: getEnv("SES_FROM_EMAIL", ""),
		SESFromName:  getEnv("SES_FROM_NAME", "Coachpath"),
		AppBaseURL:   getEnv("APP_BASE_URL", "http://localhost:8080"),

		ReminderHour:   getEnvInt("REMINDER_HOUR", 8),
		ReminderSecret: getEnv("REMINDER_SECRET", ""),
	}
}

// IsAdmin reports whether email belongs to a configured admin
func (c *Config) IsAdmin(email string) bool {
	email = strings.TrimSpace(email)
	if email == "" {
		return false
	}
	for _, admin := range c.AdminEmails {
		if strings.EqualFold(admin, email) {
			return true
		}
	}
	return false
}

// getEnv reads an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if n, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return n
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if f, err := strconv.ParseFloat(os.Getenv(key), 64); err == nil {
		return f
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if b, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return b
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if d, err := time.ParseDuration(os.Getenv(key)); err == nil && d > 0 {
		return d
	}
	return defaultValue
}

// getEnvList splits a comma separated variable, dropping empty entries
func getEnvList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
