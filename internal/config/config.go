// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	Port           int
	LogLevel       string
	DevMode        bool
	ExportDir      string // Always absolute
	S3Bucket       string // Exports go to S3 instead of ExportDir when set
	S3Prefix       string
	AWSRegion      string
	AllowedOrigins []string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	exportDir, err := filepath.Abs(getEnv("EXPORT_DIR", "./exports"))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve export directory path: %w", err)
	}

	cfg := &Config{
		Port:           getEnvAsInt("SKUSIM_PORT", 8001),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		DevMode:        getEnvAsBool("DEV_MODE", false),
		ExportDir:      exportDir,
		S3Bucket:       getEnv("EXPORT_S3_BUCKET", ""),
		S3Prefix:       strings.Trim(getEnv("EXPORT_S3_PREFIX", ""), "/"),
		AWSRegion:      getEnv("AWS_REGION", ""),
		AllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"*"}),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if required configuration is present
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d: must be between 1 and 65535", c.Port)
	}
	if len(c.AllowedOrigins) == 0 {
		return fmt.Errorf("at least one allowed origin is required")
	}
	return nil
}

// UsesS3 reports whether exports should be stored in S3.
func (c *Config) UsesS3() bool {
	return c.S3Bucket != ""
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	if len(items) == 0 {
		return defaultValue
	}
	return items
}
