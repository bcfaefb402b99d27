package config

import (
	"strings"
	"testing"
	"time"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_URL", "postgres://localhost/recordstore")
	t.Setenv("JWT_SECRET", "0123456789abcdef")
}

func TestLoadDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.MusicBrainz.MinInterval != 1100*time.Millisecond {
		t.Fatalf("expected 1100ms interval, got %s", cfg.MusicBrainz.MinInterval)
	}
	if cfg.CoverArt.Concurrency != 8 {
		t.Fatalf("expected default concurrency 8, got %d", cfg.CoverArt.Concurrency)
	}
	if cfg.Server.Addr() != "0.0.0.0:8080" {
		t.Fatalf("unexpected addr %q", cfg.Server.Addr())
	}
	if !strings.HasPrefix(cfg.MusicBrainz.UserAgent, "RecordStore/") {
		t.Fatalf("unexpected user agent %q", cfg.MusicBrainz.UserAgent)
	}
}

func TestLoadBuildsURLFromParts(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("JWT_SECRET", "0123456789abcdef")
	t.Setenv("DB_HOST", "db")
	t.Setenv("DB_USER", "rs")
	t.Setenv("DB_PASSWORD", "pw")
	t.Setenv("DB_NAME", "recordstore")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := "postgresql://rs:pw@db:5432/recordstore?sslmode=disable"
	if cfg.Database.URL != want {
		t.Fatalf("expected %q, got %q", want, cfg.Database.URL)
	}
}

func TestValidateAggregatesProblems(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("JWT_SECRET", "short")
	t.Setenv("LOG_LEVEL", "loud")
	t.Setenv("MUSICBRAINZ_MIN_INTERVAL", "200ms")

	_, err := Load()
	if err == nil {
		t.Fatalf("expected validation error")
	}
	for _, want := range []string{"JWT_SECRET", "LOG_LEVEL", "MUSICBRAINZ_MIN_INTERVAL"} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("expected error to mention %s, got %v", want, err)
		}
	}
}

func TestLoadRejectsBadDuration(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("HTTP_TIMEOUT", "forever")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error for invalid HTTP_TIMEOUT")
	}
}
