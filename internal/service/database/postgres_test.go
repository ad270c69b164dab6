package database

import (
	"testing"
	"time"
)

func TestPostgresConfigDefaults(t *testing.T) {
	cfg := PostgresConfig{Host: "db", Port: 5432, User: "u", Database: "d"}.withDefaults()

	if cfg.SSLMode != "disable" {
		t.Fatalf("expected default sslmode disable, got %q", cfg.SSLMode)
	}
	if cfg.MaxOpenConns != 25 || cfg.MaxIdleConns != 5 {
		t.Fatalf("unexpected default pool sizes: open %d idle %d", cfg.MaxOpenConns, cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime != 5*time.Minute {
		t.Fatalf("unexpected default lifetime: %v", cfg.ConnMaxLifetime)
	}
}

func TestPostgresConfigKeepsExplicitSettings(t *testing.T) {
	cfg := PostgresConfig{
		Host:            "db.internal",
		Port:            6432,
		User:            "app",
		Password:        "secret",
		Database:        "creatorlens",
		SSLMode:         "require",
		MaxOpenConns:    50,
		MaxIdleConns:    10,
		ConnMaxLifetime: time.Minute,
	}.withDefaults()

	if cfg.SSLMode != "require" || cfg.MaxOpenConns != 50 || cfg.MaxIdleConns != 10 || cfg.ConnMaxLifetime != time.Minute {
		t.Fatalf("explicit settings were overridden: %+v", cfg)
	}

	want := "host=db.internal port=6432 user=app password=secret dbname=creatorlens sslmode=require"
	if got := cfg.dsn(); got != want {
		t.Fatalf("unexpected dsn:\n got %q\nwant %q", got, want)
	}
}
