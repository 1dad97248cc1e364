package config

import (
	"strings"
	"testing"
	"time"
)

func TestParseEnv(t *testing.T) {
	tests := []struct {
		in   string
		want Environment
	}{
		{"prod", EnvProduction},
		{"production", EnvProduction},
		{"test", EnvTest},
		{"dev", EnvDevelopment},
		{"", EnvDevelopment},
		{"staging", EnvDevelopment},
	}
	for _, tt := range tests {
		if got := parseEnv(tt.in); got != tt.want {
			t.Errorf("parseEnv(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTokenTTL(t *testing.T) {
	tests := []struct {
		hours int
		want  time.Duration
	}{
		{24, 24 * time.Hour},
		{1, time.Hour},
		{0, 24 * time.Hour},
		{-5, 24 * time.Hour},
	}
	for _, tt := range tests {
		cfg := AuthConfig{TokenTTLHours: tt.hours}
		if got := cfg.TokenTTL(); got != tt.want {
			t.Errorf("TokenTTL(%d) = %v, want %v", tt.hours, got, tt.want)
		}
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("APP_ENV", "dev")
	t.Setenv("PORT", "")
	t.Setenv("JWT_SECRET", "test-secret")

	cfg := Load()

	if cfg.Server.Port == "" {
		t.Error("expected default port, got empty")
	}
	if cfg.Mongo.URI == "" {
		t.Error("expected default mongo uri, got empty")
	}
	if cfg.Mongo.Database == "" {
		t.Error("expected default mongo database, got empty")
	}
	if cfg.Upload.MaxSizeBytes <= 0 {
		t.Errorf("expected positive upload limit, got %d", cfg.Upload.MaxSizeBytes)
	}
	if cfg.Auth.JWTSecret != "test-secret" {
		t.Errorf("JWTSecret = %q, want from env", cfg.Auth.JWTSecret)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("APP_ENV", "dev")
	t.Setenv("PORT", "9999")
	t.Setenv("MONGODB_DATABASE", "override_db")
	t.Setenv("MINIO_BUCKET", "override-bucket")

	cfg := Load()

	if cfg.Server.Port != "9999" {
		t.Errorf("Port = %q, want 9999", cfg.Server.Port)
	}
	if cfg.Mongo.Database != "override_db" {
		t.Errorf("Database = %q, want override_db", cfg.Mongo.Database)
	}
	if cfg.MinIO.Bucket != "override-bucket" {
		t.Errorf("Bucket = %q, want override-bucket", cfg.MinIO.Bucket)
	}
}

func TestStringRedactsSecrets(t *testing.T) {
	cfg := &Config{}
	cfg.Auth.JWTSecret = "super-secret"
	cfg.MinIO.SecretKey = "minio-secret"

	s := cfg.String()
	if strings.Contains(s, "super-secret") || strings.Contains(s, "minio-secret") {
		t.Errorf("String() leaked a secret: %s", s)
	}
}
