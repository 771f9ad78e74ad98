package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	AppMode   string
	Port      string
	Database  DatabaseConfig
	Redis     RedisConfig
	Supabase  SupabaseConfig
	JWT       JWTConfig
	RateLimit RateLimitConfig
	LogSync   LogSyncConfig
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

// RedisConfig holds redis configuration
type RedisConfig struct {
	URL string
}

// SupabaseConfig holds identity provider configuration
type SupabaseConfig struct {
	URL        string
	Key        string
	ServiceKey string
}

// JWTConfig holds JWT configuration. TokenExpiryMins is deliberately short
// (3 minutes) since issued tokens cannot be revoked.
type JWTConfig struct {
	Secret          string
	TokenExpiryMins int
}

// RateLimitConfig holds admission control configuration
type RateLimitConfig struct {
	Points          int
	WindowSeconds   int
	CooldownMinutes int
	// FailClosed rejects requests when the counter store is unreachable.
	// Default is fail-open: availability outweighs strict admission
	// control during a store outage.
	FailClosed bool
}

// LogSyncConfig holds request log sync configuration
type LogSyncConfig struct {
	Schedule string
}

// Load reads configuration from .env file and environment variables
func Load() (*Config, error) {
	// Load .env file (ignore error if file doesn't exist in production)
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using environment variables")
	}

	appMode := strings.TrimSpace(getEnv("APP_MODE", "dev"))
	if appMode != "dev" && appMode != "prod" {
		return nil, fmt.Errorf("invalid APP_MODE: '%s' (must be 'dev' or 'prod')", appMode)
	}

	config := &Config{
		AppMode:   appMode,
		Port:      getEnv("PORT", "3000"),
		Database:  loadDatabaseConfig(appMode),
		Redis:     loadRedisConfig(),
		Supabase:  loadSupabaseConfig(),
		JWT:       loadJWTConfig(appMode),
		RateLimit: loadRateLimitConfig(),
		LogSync:   loadLogSyncConfig(),
	}

	if config.JWT.Secret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	if config.Supabase.URL == "" || config.Supabase.Key == "" {
		return nil, fmt.Errorf("SUPABASE_URL and SUPABASE_KEY are required")
	}

	log.Printf("✅ Configuration loaded successfully [MODE: %s]", appMode)
	return config, nil
}

// loadDatabaseConfig loads database config based on mode
func loadDatabaseConfig(mode string) DatabaseConfig {
	prefix := "DEV_"
	if mode == "prod" {
		prefix = "PROD_"
	}

	return DatabaseConfig{
		Host:     getEnv(prefix+"DB_HOST", "localhost"),
		Port:     getEnv(prefix+"DB_PORT", "3306"),
		User:     getEnv(prefix+"DB_USER", "root"),
		Password: getEnv(prefix+"DB_PASS", ""),
		DBName:   getEnv(prefix+"DB_NAME", "outsized_identity"),
	}
}

// loadRedisConfig loads redis config
func loadRedisConfig() RedisConfig {
	return RedisConfig{
		URL: getEnv("REDIS_URL", "redis://localhost:6379"),
	}
}

// loadSupabaseConfig loads identity provider config
func loadSupabaseConfig() SupabaseConfig {
	return SupabaseConfig{
		URL:        getEnv("SUPABASE_URL", ""),
		Key:        getEnv("SUPABASE_KEY", ""),
		ServiceKey: getEnv("SUPABASE_SERVICE_KEY", ""),
	}
}

// loadJWTConfig loads JWT config based on mode
func loadJWTConfig(mode string) JWTConfig {
	prefix := "DEV_"
	if mode == "prod" {
		prefix = "PROD_"
	}

	expiryMins, _ := strconv.Atoi(getEnv("TOKEN_EXPIRY_MINUTES", "3"))

	return JWTConfig{
		Secret:          getEnv(prefix+"JWT_SECRET", ""),
		TokenExpiryMins: expiryMins,
	}
}

// loadRateLimitConfig loads admission control config
func loadRateLimitConfig() RateLimitConfig {
	points, _ := strconv.Atoi(getEnv("RATE_LIMIT_POINTS", "100"))
	window, _ := strconv.Atoi(getEnv("RATE_LIMIT_WINDOW_SECONDS", "60"))
	cooldown, _ := strconv.Atoi(getEnv("RATE_LIMIT_COOLDOWN_MINUTES", "15"))
	failClosed, _ := strconv.ParseBool(getEnv("RATE_LIMIT_FAIL_CLOSED", "false"))

	return RateLimitConfig{
		Points:          points,
		WindowSeconds:   window,
		CooldownMinutes: cooldown,
		FailClosed:      failClosed,
	}
}

// loadLogSyncConfig loads request log sync config
func loadLogSyncConfig() LogSyncConfig {
	return LogSyncConfig{
		Schedule: getEnv("LOG_SYNC_SCHEDULE", "*/5 * * * *"),
	}
}

// CooldownDuration returns the cooldown as a duration
func (c RateLimitConfig) CooldownDuration() time.Duration {
	return time.Duration(c.CooldownMinutes) * time.Minute
}

// getEnv gets environment variable with default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// IsDev returns true if running in development mode
func (c *Config) IsDev() bool {
	return c.AppMode == "dev"
}

// IsProd returns true if running in production mode
func (c *Config) IsProd() bool {
	return c.AppMode == "prod"
}

// GetAllowedOrigins returns allowed origins for CORS
func (c *Config) GetAllowedOrigins() string {
	origins := getEnv("ALLOWED_ORIGINS", "")
	if origins == "" && c.IsDev() {
		return "*"
	}
	return origins
}
