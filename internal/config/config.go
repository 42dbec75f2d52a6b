package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Supported database drivers
const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Config holds all configuration for the application
type Config struct {
	AppMode     string
	Port        string
	Database    DatabaseConfig
	JWT         JWTConfig
	Cookie      CookieConfig
	Log         LogConfig
	SentryDSN   string
	MasterAdmin MasterAdminConfig
	InitialYear int
	CronPurge   string
	RateLimit   RateLimitConfig
}

// RateLimitConfig holds per-minute request limits per IP. Zero disables a limiter.
type RateLimitConfig struct {
	General int
	Auth    int
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Driver   string
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret           string
	RefreshSecret    string
	AccessTokenMins  int
	RefreshTokenDays int
}

// CookieConfig holds cookie configuration
type CookieConfig struct {
	Secure   bool
	SameSite string
	Domain   string
}

// LogConfig holds logging configuration
type LogConfig struct {
	File  string
	Level string
	JSON  bool
}

// MasterAdminConfig is the account seeded as master admin on first start
type MasterAdminConfig struct {
	Email    string
	Password string
	Phone    string
	Name     string
}

// Global config instance
var AppConfig *Config

// Load reads configuration from .env file and environment variables
func Load() (*Config, error) {
	// .env is optional in production
	if err := godotenv.Load(); err != nil {
		logrus.Warn(".env file not found, using environment variables")
	}

	// trim spaces for Windows line endings
	appMode := strings.TrimSpace(getEnv("APP_MODE", "dev"))
	if appMode != "dev" && appMode != "prod" {
		return nil, fmt.Errorf("invalid APP_MODE: '%s' (must be 'dev' or 'prod')", appMode)
	}

	initialYear, err := strconv.Atoi(getEnv("INITIAL_YEAR", strconv.Itoa(time.Now().Year())))
	if err != nil {
		return nil, fmt.Errorf("invalid INITIAL_YEAR: %w", err)
	}

	config := &Config{
		AppMode:     appMode,
		Port:        getEnv("PORT", "3000"),
		Database:    loadDatabaseConfig(appMode),
		JWT:         loadJWTConfig(appMode),
		Cookie:      loadCookieConfig(appMode),
		Log:         loadLogConfig(appMode),
		SentryDSN:   getEnv("SENTRY_DSN", ""),
		MasterAdmin: loadMasterAdminConfig(),
		InitialYear: initialYear,
		CronPurge:   getEnv("CRON_TOKEN_PURGE", ""),
		RateLimit:   loadRateLimitConfig(),
	}

	if err := config.validate(); err != nil {
		return nil, err
	}

	AppConfig = config

	logrus.WithFields(logrus.Fields{
		"mode":   appMode,
		"driver": config.Database.Driver,
	}).Info("configuration loaded")
	return config, nil
}

// validate rejects settings that must not reach production
func (c *Config) validate() error {
	switch c.Database.Driver {
	case DriverMySQL, DriverPostgres, DriverMemory:
	default:
		return fmt.Errorf("invalid DB_DRIVER: '%s' (must be mysql, postgres or memory)", c.Database.Driver)
	}
	if c.IsProd() {
		if c.JWT.Secret == defaultJWTSecret || c.JWT.RefreshSecret == defaultRefreshSecret {
			return fmt.Errorf("PROD_JWT_SECRET and PROD_JWT_REFRESH_SECRET must be set in prod mode")
		}
		if c.Database.Driver == DriverMemory {
			return fmt.Errorf("DB_DRIVER=memory is not allowed in prod mode")
		}
	}
	return nil
}

const (
	defaultJWTSecret     = "default_secret"
	defaultRefreshSecret = "default_refresh_secret"
)

func modePrefix(mode string) string {
	if mode == "prod" {
		return "PROD_"
	}
	return "DEV_"
}

// loadDatabaseConfig loads database config based on mode
func loadDatabaseConfig(mode string) DatabaseConfig {
	prefix := modePrefix(mode)
	driver := strings.ToLower(strings.TrimSpace(getEnv("DB_DRIVER", DriverMySQL)))

	defaultPort := "3306"
	if driver == DriverPostgres {
		defaultPort = "5432"
	}

	return DatabaseConfig{
		Driver:   driver,
		Host:     getEnv(prefix+"DB_HOST", "localhost"),
		Port:     getEnv(prefix+"DB_PORT", defaultPort),
		User:     getEnv(prefix+"DB_USER", "root"),
		Password: getEnv(prefix+"DB_PASS", ""),
		DBName:   getEnv(prefix+"DB_NAME", "membership_portal"),
		SSLMode:  getEnv(prefix+"DB_SSLMODE", "disable"),
	}
}

// loadJWTConfig loads JWT config based on mode
func loadJWTConfig(mode string) JWTConfig {
	prefix := modePrefix(mode)

	accessMins, _ := strconv.Atoi(getEnv("ACCESS_TOKEN_MINUTES", "15"))
	refreshDays, _ := strconv.Atoi(getEnv("REFRESH_TOKEN_DAYS", "7"))

	return JWTConfig{
		Secret:           getEnv(prefix+"JWT_SECRET", defaultJWTSecret),
		RefreshSecret:    getEnv(prefix+"JWT_REFRESH_SECRET", defaultRefreshSecret),
		AccessTokenMins:  accessMins,
		RefreshTokenDays: refreshDays,
	}
}

// loadCookieConfig loads cookie config based on mode
func loadCookieConfig(mode string) CookieConfig {
	secure, _ := strconv.ParseBool(getEnv(modePrefix(mode)+"COOKIE_SECURE", "false"))

	return CookieConfig{
		Secure:   secure,
		SameSite: getEnv("COOKIE_SAMESITE", "lax"),
		Domain:   getEnv("COOKIE_DOMAIN", ""),
	}
}

func loadLogConfig(mode string) LogConfig {
	level := "debug"
	if mode == "prod" {
		level = "info"
	}
	json, _ := strconv.ParseBool(getEnv("LOG_JSON", "false"))
	return LogConfig{
		File:  getEnv("LOG_FILE", "./logs/app.log"),
		Level: getEnv("LOG_LEVEL", level),
		JSON:  json,
	}
}

func loadRateLimitConfig() RateLimitConfig {
	general, _ := strconv.Atoi(getEnv("RATE_LIMIT_PER_MIN", "100"))
	auth, _ := strconv.Atoi(getEnv("AUTH_RATE_LIMIT_PER_MIN", "10"))
	return RateLimitConfig{General: general, Auth: auth}
}

func loadMasterAdminConfig() MasterAdminConfig {
	return MasterAdminConfig{
		Email:    strings.ToLower(strings.TrimSpace(getEnv("MASTER_ADMIN_EMAIL", ""))),
		Password: getEnv("MASTER_ADMIN_PASSWORD", ""),
		Phone:    strings.TrimSpace(getEnv("MASTER_ADMIN_PHONE", "")),
		Name:     getEnv("MASTER_ADMIN_NAME", "Master Admin"),
	}
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
	if origins == "" {
		if c.IsDev() {
			return "*"
		}
		return "https://members.example.org"
	}
	return origins
}
