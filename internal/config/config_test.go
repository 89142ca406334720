package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("SERVER_PORT", "")
	t.Setenv("DATABASE_TYPE", "")
	t.Setenv("ADMIN_EMAILS", "")
	t.Setenv("ACTIVITY_WINDOW", "")

	cfg := Load()

	if cfg.ServerPort != "8080" {
		t.Errorf("ServerPort = %q, want 8080", cfg.ServerPort)
	}
	if cfg.DatabaseType != "sqlite" {
		t.Errorf("DatabaseType = %q, want sqlite", cfg.DatabaseType)
	}
	if cfg.ActivityWindow != 7*24*time.Hour {
		t.Errorf("ActivityWindow = %v, want 168h", cfg.ActivityWindow)
	}
	if len(cfg.AdminEmails) != 0 {
		t.Errorf("AdminEmails = %v, want none", cfg.AdminEmails)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("DATABASE_TYPE", "Postgres")
	t.Setenv("ADMIN_EMAILS", " coach@example.com, ,boss@example.com")
	t.Setenv("ACTIVITY_WINDOW", "72h")
	t.Setenv("REMINDER_HOUR", "-1")
	t.Setenv("RATE_LIMIT_RPS", "2.5")
	t.Setenv("DEBUG", "true")
	t.Setenv("SESSION_DURATION", "not-a-duration")

	cfg := Load()

	if cfg.DatabaseType != "postgres" {
		t.Errorf("DatabaseType = %q, want postgres", cfg.DatabaseType)
	}
	if len(cfg.AdminEmails) != 2 {
		t.Errorf("AdminEmails = %v, want 2 entries", cfg.AdminEmails)
	}
	if cfg.ActivityWindow != 72*time.Hour {
		t.Errorf("ActivityWindow = %v, want 72h", cfg.ActivityWindow)
	}
	if cfg.ReminderHour != -1 {
		t.Errorf("ReminderHour = %d, want -1", cfg.ReminderHour)
	}
	if cfg.RateLimitRPS != 2.5 {
		t.Errorf("RateLimitRPS = %v, want 2.5", cfg.RateLimitRPS)
	}
	if !cfg.Debug {
		t.Error("Debug = false, want true")
	}
	if cfg.SessionDuration != 7*24*time.Hour {
		t.Errorf("SessionDuration = %v, want default", cfg.SessionDuration)
	}
}

func TestIsAdmin(t *testing.T) {
	cfg := &Config{AdminEmails: []string{"Coach@Example.com"}}

	tests := []struct {
		email string
		want  bool
	}{
		{"coach@example.com", true},
		{" COACH@example.com ", true},
		{"other@example.com", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := cfg.IsAdmin(tt.email); got != tt.want {
			t.Errorf("IsAdmin(%q) = %v, want %v", tt.email, got, tt.want)
		}
	}
}
