package config

import (
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("ENV", "development")
	t.Setenv("JWT_EXPIRY_HOURS", "")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.test, http://b.test ,")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.JWT.ExpiryHours != 24 {
		t.Errorf("expected 24h token lifetime, got %d", cfg.JWT.ExpiryHours)
	}
	if len(cfg.CORS.AllowedOrigins) != 2 || cfg.CORS.AllowedOrigins[1] != "http://b.test" {
		t.Errorf("unexpected origins: %v", cfg.CORS.AllowedOrigins)
	}
	if cfg.MaxUploadBytes() != int64(cfg.Media.MaxUploadMB)<<20 {
		t.Errorf("unexpected upload cap %d", cfg.MaxUploadBytes())
	}
}

func TestLoad_ProductionRequiresSecrets(t *testing.T) {
	t.Setenv("ENV", "production")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("CLOUDINARY_CLOUD_NAME", "demo")
	t.Setenv("CLOUDINARY_API_KEY", "key")
	t.Setenv("CLOUDINARY_API_SECRET", "secret")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for default JWT secret in production")
	}

	t.Setenv("JWT_SECRET", "a-real-secret")
	t.Setenv("CLOUDINARY_API_SECRET", "")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for missing media credentials in production")
	}

	t.Setenv("CLOUDINARY_API_SECRET", "secret")
	if _, err := Load(); err != nil {
		t.Fatalf("expected valid production config, got %v", err)
	}
}

func TestGetDSN(t *testing.T) {
	cfg := &Config{Database: DatabaseConfig{Host: "db", Port: "5432", User: "u", Password: "p", DBName: "n", SSLMode: "disable"}}
	want := "host=db port=5432 user=u password=p dbname=n sslmode=disable"
	if got := cfg.GetDSN(); got != want {
		t.Errorf("GetDSN() = %q, want %q", got, want)
	}
}
