package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()
	if cfg.ServerPort == "" {
		t.Fatalf("expected default server port")
	}
	if cfg.PostgresURL == "" {
		t.Fatalf("expected default postgres url")
	}
	if cfg.NotifySchedule != "5 22 * * *" {
		t.Fatalf("unexpected default schedule %q", cfg.NotifySchedule)
	}
	if cfg.NotifyLeadDays != 5 {
		t.Fatalf("unexpected default lead days %d", cfg.NotifyLeadDays)
	}
	if cfg.HTTPTimeout != 10*time.Second {
		t.Fatalf("unexpected default http timeout %v", cfg.HTTPTimeout)
	}
	if cfg.SMTPPort != 587 {
		t.Fatalf("unexpected default smtp port %d", cfg.SMTPPort)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", ":9000")
	t.Setenv("POSTGRES_URL", "postgres://example")
	t.Setenv("REDIS_ADDR", "redis:6379")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("WEATHER_API_KEY", "weather-key")
	t.Setenv("SMTP_USERNAME", "bot@example.com")
	t.Setenv("NOTIFY_LEAD_DAYS", "7")
	t.Setenv("HTTP_TIMEOUT", "3s")

	cfg := Load()
	if cfg.ServerPort != ":9000" {
		t.Fatalf("expected override port")
	}
	if cfg.PostgresURL != "postgres://example" {
		t.Fatalf("expected override postgres")
	}
	if cfg.RedisAddr != "redis:6379" {
		t.Fatalf("expected override redis")
	}
	if cfg.JWTSecret != "secret" {
		t.Fatalf("expected override secret")
	}
	if cfg.WeatherAPIKey != "weather-key" {
		t.Fatalf("expected override weather key")
	}
	if cfg.SMTPFrom != "bot@example.com" {
		t.Fatalf("expected smtp from to fall back to username, got %q", cfg.SMTPFrom)
	}
	if cfg.NotifyLeadDays != 7 {
		t.Fatalf("expected override lead days")
	}
	if cfg.HTTPTimeout != 3*time.Second {
		t.Fatalf("expected override http timeout")
	}
}

func TestLocation(t *testing.T) {
	if (Config{}).Location() != time.UTC {
		t.Fatalf("expected utc for empty timezone")
	}
	if (Config{NotifyTimezone: "Not/AZone"}).Location() != time.UTC {
		t.Fatalf("expected utc for unknown timezone")
	}
	loc := Config{NotifyTimezone: "Asia/Bangkok"}.Location()
	if loc.String() != "Asia/Bangkok" {
		t.Fatalf("unexpected location %s", loc)
	}
}
