package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	Server ServerConfig

	// Database configuration
	Database DatabaseConfig

	// Stripe gateway configuration
	Stripe StripeConfig

	// Contract link signing configuration
	ContractLink ContractLinkConfig

	// Notification configuration
	Notifications NotificationConfig

	// Reconciliation sweep configuration
	Reconciliation ReconciliationConfig

	// CORS configuration
	CORS CORSConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port        string
	Environment string // development, staging, production
	LogLevel    string // debug, info, warn, error
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	URL                string
	MaxConnections     int
	MaxIdleConnections int
	ConnMaxLifetime    time.Duration
}

// StripeConfig holds Stripe API and webhook configuration
type StripeConfig struct {
	SecretKey     string // Stripe API secret key (SECRET - never expose to client)
	WebhookSecret string // Webhook endpoint signing secret
}

// ContractLinkConfig holds signed contract link configuration
type ContractLinkConfig struct {
	Secret  string // HMAC secret for time-limited contract links
	BaseURL string // Public base URL links are built against
	TTL     time.Duration
}

// NotificationConfig holds notification emitter configuration
type NotificationConfig struct {
	AdminRoles []string // roles that receive admin broadcasts
}

// ReconciliationConfig holds booking-status sweep configuration
type ReconciliationConfig struct {
	Enabled   bool
	Interval  time.Duration
	BatchSize int
}

// CORSConfig holds CORS-related configuration
type CORSConfig struct {
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists (for local development)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	config := &Config{
		Server: ServerConfig{
			Port:        getEnv("PORT", "8080"),
			Environment: getEnv("ENVIRONMENT", "development"),
			LogLevel:    getEnv("LOG_LEVEL", "info"),
		},
		Database: DatabaseConfig{
			URL:                getEnv("DATABASE_URL", ""),
			MaxConnections:     getEnvAsInt("DATABASE_MAX_CONNECTIONS", 10),
			MaxIdleConnections: getEnvAsInt("DATABASE_MAX_IDLE_CONNECTIONS", 5),
			ConnMaxLifetime:    time.Duration(getEnvAsInt("DATABASE_CONN_MAX_LIFETIME", 300)) * time.Second,
		},
		Stripe: StripeConfig{
			SecretKey:     getEnv("STRIPE_SECRET_KEY", ""),
			WebhookSecret: getEnv("STRIPE_WEBHOOK_SECRET", ""),
		},
		ContractLink: ContractLinkConfig{
			Secret:  getEnv("CONTRACT_LINK_SECRET", ""),
			BaseURL: getEnv("CONTRACT_LINK_BASE_URL", "https://app.rentworks.io"),
			TTL:     time.Duration(getEnvAsInt("CONTRACT_LINK_TTL_MINUTES", 60)) * time.Minute,
		},
		Notifications: NotificationConfig{
			AdminRoles: getEnvAsSlice("NOTIFICATION_ADMIN_ROLES", []string{"admin", "operations"}),
		},
		Reconciliation: ReconciliationConfig{
			Enabled:   getEnvAsBool("RECONCILIATION_ENABLED", true),
			Interval:  time.Duration(getEnvAsInt("RECONCILIATION_INTERVAL_SECONDS", 300)) * time.Second,
			BatchSize: getEnvAsInt("RECONCILIATION_BATCH_SIZE", 100),
		},
		CORS: CORSConfig{
			AllowedOrigins: getEnvAsSlice("CORS_ALLOWED_ORIGINS", []string{"*"}),
			AllowedMethods: getEnvAsSlice("CORS_ALLOWED_METHODS", []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
			AllowedHeaders: getEnvAsSlice("CORS_ALLOWED_HEADERS", []string{"Content-Type", "Authorization", "Stripe-Signature"}),
		},
	}

	// Validate required configuration
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.Stripe.SecretKey == "" {
		return fmt.Errorf("STRIPE_SECRET_KEY is required")
	}

	if c.Stripe.WebhookSecret == "" {
		return fmt.Errorf("STRIPE_WEBHOOK_SECRET is required")
	}

	if c.ContractLink.Secret == "" {
		return fmt.Errorf("CONTRACT_LINK_SECRET is required")
	}

	if len(c.Notifications.AdminRoles) == 0 {
		return fmt.Errorf("NOTIFICATION_ADMIN_ROLES must name at least one role")
	}

	if c.Reconciliation.Interval < time.Second {
		return fmt.Errorf("RECONCILIATION_INTERVAL_SECONDS must be at least 1")
	}

	return nil
}

// Helper functions to get environment variables

func getEnv(key string, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Invalid integer value for %s, using default: %d", key, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		log.Printf("Invalid boolean value for %s, using default: %t", key, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	// Split by comma
	var result []string
	for _, v := range splitString(valueStr, ",") {
		trimmed := trimString(v)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	if len(result) == 0 {
		return defaultValue
	}
	return result
}

// Helper to split strings
func splitString(s, sep string) []string {
	var result []string
	current := ""
	for _, char := range s {
		if string(char) == sep {
			result = append(result, current)
			current = ""
		} else {
			current += string(char)
		}
	}
	if current != "" {
		result = append(result, current)
	}
	return result
}

// Helper to trim strings
func trimString(s string) string {
	start := 0
	end := len(s)

	// Trim leading spaces
	for start < end && (s[start] == ' ' || s[start] == '\t' || s[start] == '\n' || s[start] == '\r') {
		start++
	}

	// Trim trailing spaces
	for end > start && (s[end-1] == ' ' || s[end-1] == '\t' || s[end-1] == '\n' || s[end-1] == '\r') {
		end--
	}

	return s[start:end]
}
