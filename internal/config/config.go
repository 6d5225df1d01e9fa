// Package config loads Aisle API settings.
//
// Defaults are overlaid first by an optional YAML file named by CONFIG_FILE
// and then by individual environment variables, so a deployment can keep a
// checked-in file and override secrets from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	JWT       JWTConfig       `yaml:"jwt"`
	Storage   StorageConfig   `yaml:"storage"`
	ImageGen  ImageGenConfig  `yaml:"image_generation"`
	FloorPlan FloorPlanConfig `yaml:"floor_plan"`
	Redis     RedisConfig     `yaml:"redis"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Jobs      JobsConfig      `yaml:"jobs"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port           string        `yaml:"port"`
	Env            string        `yaml:"env"`
	ReadTimeout    time.Duration `yaml:"read_timeout"`
	WriteTimeout   time.Duration `yaml:"write_timeout"`
	AllowedOrigins []string      `yaml:"allowed_origins"`
	PublicURL      string        `yaml:"public_url"`
}

// DatabaseConfig holds SurrealDB connection settings
type DatabaseConfig struct {
	Host      string `yaml:"host"`
	Port      string `yaml:"port"`
	Namespace string `yaml:"namespace"`
	Database  string `yaml:"database"`
	User      string `yaml:"user"`
	Password  string `yaml:"password"`
}

// JWTConfig holds token settings
type JWTConfig struct {
	PrivateKeyPath   string `yaml:"private_key_path"`
	PublicKeyPath    string `yaml:"public_key_path"`
	ExpirationMins   int    `yaml:"expiration_mins"`
	Issuer           string `yaml:"issuer"`
	RefreshTokenDays int    `yaml:"refresh_token_days"`
}

// StorageConfig selects and configures the media store
type StorageConfig struct {
	Driver          string            `yaml:"driver"` // memory or s3
	Region          string            `yaml:"region"`
	Endpoint        string            `yaml:"endpoint"`
	AccessKeyID     string            `yaml:"access_key_id"`
	SecretAccessKey string            `yaml:"secret_access_key"`
	UsePathStyle    bool              `yaml:"use_path_style"`
	PublicBaseURL   string            `yaml:"public_base_url"`
	Buckets         map[string]string `yaml:"buckets"`
}

// ImageGenConfig configures the moodboard image provider
type ImageGenConfig struct {
	BaseURL string        `yaml:"base_url"`
	APIKey  string        `yaml:"api_key"`
	Model   string        `yaml:"model"`
	Size    string        `yaml:"size"`
	Timeout time.Duration `yaml:"timeout"`
}

// FloorPlanConfig configures the floor plan analysis endpoint
type FloorPlanConfig struct {
	BaseURL string        `yaml:"base_url"`
	APIKey  string        `yaml:"api_key"`
	Timeout time.Duration `yaml:"timeout"`
}

// RedisConfig enables the shared rate limit store when Addr is set
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// RateLimitConfig holds per-client request limits
type RateLimitConfig struct {
	Enabled           bool `yaml:"enabled"`
	RequestsPerMinute int  `yaml:"requests_per_minute"`
	Burst             int  `yaml:"burst"`
	AuthPerMinute     int  `yaml:"auth_per_minute"`
}

// JobsConfig holds background processor intervals
type JobsConfig struct {
	OverdueInterval      time.Duration `yaml:"overdue_interval"`
	TokenCleanupInterval time.Duration `yaml:"token_cleanup_interval"`
}

// Defaults returns the built-in configuration
func Defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Port:           "8080",
			Env:            "development",
			ReadTimeout:    15 * time.Second,
			WriteTimeout:   60 * time.Second,
			AllowedOrigins: []string{"http://localhost:3000"},
			PublicURL:      "http://localhost:8080",
		},
		Database: DatabaseConfig{
			Host:      "localhost",
			Port:      "8000",
			Namespace: "aisle",
			Database:  "main",
			User:      "root",
			Password:  "root",
		},
		JWT: JWTConfig{
			PrivateKeyPath:   "./keys/private.pem",
			PublicKeyPath:    "./keys/public.pem",
			ExpirationMins:   15,
			Issuer:           "aisle",
			RefreshTokenDays: 30,
		},
		Storage: StorageConfig{
			Driver: "memory",
			Region: "us-east-1",
		},
		ImageGen: ImageGenConfig{
			Size:    "1024x1024",
			Timeout: 60 * time.Second,
		},
		FloorPlan: FloorPlanConfig{
			Timeout: 30 * time.Second,
		},
		RateLimit: RateLimitConfig{
			Enabled:           true,
			RequestsPerMinute: 120,
			Burst:             30,
			AuthPerMinute:     10,
		},
		Jobs: JobsConfig{
			OverdueInterval:      time.Hour,
			TokenCleanupInterval: 6 * time.Hour,
		},
	}
}

// Load builds configuration from defaults, CONFIG_FILE and the environment
func Load() (*Config, error) {
	cfg := Defaults()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open config file: %w", err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil {
		return fmt.Errorf("decode config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.Server.Port = getEnv("SERVER_PORT", c.Server.Port)
	c.Server.Env = getEnv("SERVER_ENV", c.Server.Env)
	c.Server.ReadTimeout = getDurationEnv("SERVER_READ_TIMEOUT", c.Server.ReadTimeout)
	c.Server.WriteTimeout = getDurationEnv("SERVER_WRITE_TIMEOUT", c.Server.WriteTimeout)
	c.Server.AllowedOrigins = getSliceEnv("CORS_ALLOWED_ORIGINS", c.Server.AllowedOrigins)
	c.Server.PublicURL = getEnv("PUBLIC_URL", c.Server.PublicURL)

	c.Database.Host = getEnv("DB_HOST", c.Database.Host)
	c.Database.Port = getEnv("DB_PORT", c.Database.Port)
	c.Database.Namespace = getEnv("DB_NAMESPACE", c.Database.Namespace)
	c.Database.Database = getEnv("DB_DATABASE", c.Database.Database)
	c.Database.User = getEnv("DB_USER", c.Database.User)
	c.Database.Password = getEnv("DB_PASSWORD", c.Database.Password)

	c.JWT.PrivateKeyPath = getEnv("JWT_PRIVATE_KEY_PATH", c.JWT.PrivateKeyPath)
	c.JWT.PublicKeyPath = getEnv("JWT_PUBLIC_KEY_PATH", c.JWT.PublicKeyPath)
	c.JWT.ExpirationMins = getIntEnv("JWT_EXPIRATION_MINS", c.JWT.ExpirationMins)
	c.JWT.Issuer = getEnv("JWT_ISSUER", c.JWT.Issuer)
	c.JWT.RefreshTokenDays = getIntEnv("JWT_REFRESH_TOKEN_DAYS", c.JWT.RefreshTokenDays)

	c.Storage.Driver = getEnv("STORAGE_DRIVER", c.Storage.Driver)
	c.Storage.Region = getEnv("S3_REGION", getEnv("AWS_REGION", c.Storage.Region))
	c.Storage.Endpoint = getEnv("S3_ENDPOINT", c.Storage.Endpoint)
	c.Storage.AccessKeyID = getEnv("S3_ACCESS_KEY_ID", c.Storage.AccessKeyID)
	c.Storage.SecretAccessKey = getEnv("S3_SECRET_ACCESS_KEY", c.Storage.SecretAccessKey)
	c.Storage.UsePathStyle = getBoolEnv("S3_USE_PATH_STYLE", c.Storage.UsePathStyle)
	c.Storage.PublicBaseURL = getEnv("S3_PUBLIC_BASE_URL", c.Storage.PublicBaseURL)

	c.ImageGen.BaseURL = getEnv("IMAGEGEN_BASE_URL", c.ImageGen.BaseURL)
	c.ImageGen.APIKey = getEnv("IMAGEGEN_API_KEY", c.ImageGen.APIKey)
	c.ImageGen.Model = getEnv("IMAGEGEN_MODEL", c.ImageGen.Model)
	c.ImageGen.Size = getEnv("IMAGEGEN_SIZE", c.ImageGen.Size)
	c.ImageGen.Timeout = getDurationEnv("IMAGEGEN_TIMEOUT", c.ImageGen.Timeout)

	c.FloorPlan.BaseURL = getEnv("FLOORPLAN_BASE_URL", c.FloorPlan.BaseURL)
	c.FloorPlan.APIKey = getEnv("FLOORPLAN_API_KEY", c.FloorPlan.APIKey)
	c.FloorPlan.Timeout = getDurationEnv("FLOORPLAN_TIMEOUT", c.FloorPlan.Timeout)

	c.Redis.Addr = getEnv("REDIS_ADDR", c.Redis.Addr)
	c.Redis.Password = getEnv("REDIS_PASSWORD", c.Redis.Password)
	c.Redis.DB = getIntEnv("REDIS_DB", c.Redis.DB)

	c.RateLimit.Enabled = getBoolEnv("RATE_LIMIT_ENABLED", c.RateLimit.Enabled)
	c.RateLimit.RequestsPerMinute = getIntEnv("RATE_LIMIT_RPM", c.RateLimit.RequestsPerMinute)
	c.RateLimit.Burst = getIntEnv("RATE_LIMIT_BURST", c.RateLimit.Burst)
	c.RateLimit.AuthPerMinute = getIntEnv("RATE_LIMIT_AUTH_RPM", c.RateLimit.AuthPerMinute)

	c.Jobs.OverdueInterval = getDurationEnv("JOBS_OVERDUE_INTERVAL", c.Jobs.OverdueInterval)
	c.Jobs.TokenCleanupInterval = getDurationEnv("JOBS_TOKEN_CLEANUP_INTERVAL", c.Jobs.TokenCleanupInterval)
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production"
}

// Validate checks that all required configuration values are present and valid.
// It returns an error describing all validation failures, or nil if valid.
func (c *Config) Validate() error {
	var errs []error

	if c.Server.Port == "" {
		errs = append(errs, errors.New("SERVER_PORT is required"))
	}
	if c.Server.Env != "development" && c.Server.Env != "production" && c.Server.Env != "test" {
		errs = append(errs, fmt.Errorf("SERVER_ENV must be 'development', 'production', or 'test', got '%s'", c.Server.Env))
	}
	if len(c.Server.AllowedOrigins) == 0 {
		errs = append(errs, errors.New("CORS_ALLOWED_ORIGINS must have at least one origin"))
	}

	if c.Database.Host == "" {
		errs = append(errs, errors.New("DB_HOST is required"))
	}
	if c.Database.Port == "" {
		errs = append(errs, errors.New("DB_PORT is required"))
	}
	if c.Database.Namespace == "" {
		errs = append(errs, errors.New("DB_NAMESPACE is required"))
	}
	if c.Database.Database == "" {
		errs = append(errs, errors.New("DB_DATABASE is required"))
	}

	if c.IsProduction() && c.JWT.PrivateKeyPath == "" {
		errs = append(errs, errors.New("JWT_PRIVATE_KEY_PATH is required in production"))
	}
	if c.JWT.ExpirationMins <= 0 {
		errs = append(errs, errors.New("JWT_EXPIRATION_MINS must be positive"))
	}
	if c.JWT.RefreshTokenDays <= 0 {
		errs = append(errs, errors.New("JWT_REFRESH_TOKEN_DAYS must be positive"))
	}

	switch c.Storage.Driver {
	case "memory":
		if c.IsProduction() {
			errs = append(errs, errors.New("STORAGE_DRIVER=memory is not allowed in production"))
		}
	case "s3":
		if c.Storage.Region == "" {
			errs = append(errs, errors.New("S3_REGION is required when STORAGE_DRIVER is s3"))
		}
		if (c.Storage.AccessKeyID == "") != (c.Storage.SecretAccessKey == "") {
			errs = append(errs, errors.New("S3_ACCESS_KEY_ID and S3_SECRET_ACCESS_KEY must be set together"))
		}
	default:
		errs = append(errs, fmt.Errorf("STORAGE_DRIVER must be 'memory' or 's3', got '%s'", c.Storage.Driver))
	}

	if c.RateLimit.Enabled {
		if c.RateLimit.RequestsPerMinute <= 0 {
			errs = append(errs, errors.New("RATE_LIMIT_RPM must be positive when rate limiting is enabled"))
		}
		if c.RateLimit.Burst <= 0 {
			errs = append(errs, errors.New("RATE_LIMIT_BURST must be positive when rate limiting is enabled"))
		}
	}

	if c.Jobs.OverdueInterval <= 0 || c.Jobs.TokenCleanupInterval <= 0 {
		errs = append(errs, errors.New("job intervals must be positive"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// Helper functions for reading environment variables

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getSliceEnv(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return parts
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
