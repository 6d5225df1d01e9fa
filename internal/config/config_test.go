package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaults_AreValid(t *testing.T) {
	if err := Defaults().Validate(); err != nil {
		t.Errorf("expected defaults to validate, got: %v", err)
	}
}

func TestConfig_Validate_InvalidServerEnv(t *testing.T) {
	cfg := Defaults()
	cfg.Server.Env = "invalid"

	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "SERVER_ENV") {
		t.Errorf("expected SERVER_ENV error, got: %v", err)
	}
}

func TestConfig_Validate_CollectsAllErrors(t *testing.T) {
	cfg := Defaults()
	cfg.Server.Port = ""
	cfg.Database.Host = ""
	cfg.JWT.ExpirationMins = 0

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected errors")
	}
	for _, want := range []string{"SERVER_PORT", "DB_HOST", "JWT_EXPIRATION_MINS"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("expected error to mention %s, got: %v", want, err)
		}
	}
}

func TestConfig_Validate_MemoryStorageRejectedInProduction(t *testing.T) {
	cfg := Defaults()
	cfg.Server.Env = "production"

	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "STORAGE_DRIVER") {
		t.Errorf("expected storage driver error, got: %v", err)
	}

	cfg.Storage.Driver = "s3"
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected s3 config to validate, got: %v", err)
	}
}

func TestConfig_Validate_S3KeysTogether(t *testing.T) {
	cfg := Defaults()
	cfg.Storage.Driver = "s3"
	cfg.Storage.AccessKeyID = "AKIA"

	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "S3_SECRET_ACCESS_KEY") {
		t.Errorf("expected paired key error, got: %v", err)
	}
}

func TestConfig_Validate_RateLimitOnlyCheckedWhenEnabled(t *testing.T) {
	cfg := Defaults()
	cfg.RateLimit.RequestsPerMinute = 0
	if err := cfg.Validate(); err == nil {
		t.Error("expected RATE_LIMIT_RPM error")
	}

	cfg.RateLimit.Enabled = false
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected disabled rate limit to skip checks, got: %v", err)
	}
}

func TestLoad_EnvOverridesDefaults(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("JOBS_OVERDUE_INTERVAL", "5m")
	t.Setenv("REDIS_ADDR", "redis:6379")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != "9090" {
		t.Errorf("expected port 9090, got %s", cfg.Server.Port)
	}
	if len(cfg.Server.AllowedOrigins) != 2 || cfg.Server.AllowedOrigins[1] != "https://b.example" {
		t.Errorf("unexpected origins %v", cfg.Server.AllowedOrigins)
	}
	if cfg.Jobs.OverdueInterval != 5*time.Minute {
		t.Errorf("expected 5m, got %v", cfg.Jobs.OverdueInterval)
	}
	if cfg.Redis.Addr != "redis:6379" {
		t.Errorf("expected redis addr, got %q", cfg.Redis.Addr)
	}
}

func TestLoad_FileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "aisle.yaml")
	body := `
server:
  port: "7000"
  env: test
database:
  namespace: staging
storage:
  driver: s3
  region: eu-west-1
  buckets:
    moodboards: aisle-staging-moodboards
image_generation:
  base_url: https://images.example/v1
  timeout: 90s
`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("DB_NAMESPACE", "from-env")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != "7000" || cfg.Server.Env != "test" {
		t.Errorf("file values not applied: %+v", cfg.Server)
	}
	if cfg.Database.Namespace != "from-env" {
		t.Errorf("env should override file, got %q", cfg.Database.Namespace)
	}
	if cfg.Database.Host != "localhost" {
		t.Errorf("defaults should survive, got %q", cfg.Database.Host)
	}
	if cfg.Storage.Buckets["moodboards"] != "aisle-staging-moodboards" {
		t.Errorf("unexpected buckets %v", cfg.Storage.Buckets)
	}
	if cfg.ImageGen.Timeout != 90*time.Second {
		t.Errorf("expected 90s, got %v", cfg.ImageGen.Timeout)
	}
}

func TestLoad_UnknownFileKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("server:\n  prot: \"1\"\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CONFIG_FILE", path)

	if _, err := Load(); err == nil {
		t.Error("expected unknown key error")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.yaml"))

	if _, err := Load(); err == nil {
		t.Error("expected error for missing file")
	}
}
