// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds application configuration. Environment variables provide the
// initial values; selected fields can be overridden later from the settings
// database once it is open (see UpdateFromSettings).
type Config struct {
	DataDir        string // Base directory for all databases (always absolute)
	Port           int
	LogLevel       string
	DevMode        bool
	S3Bucket       string // Bucket for exports and backups (empty disables uploads)
	S3Region       string
	S3AccessKey    string
	S3SecretKey    string
	S3Endpoint     string // Optional custom endpoint (R2, MinIO)
	BackupSchedule string // Cron expression for the database backup job
}

// SettingsProvider is the slice of the settings service the config layer
// needs. Defined here to avoid importing the settings module.
type SettingsProvider interface {
	GetString(key string) (string, error)
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	dataDir := getEnv("PALLETPULSE_DATA_DIR", "")
	if dataDir == "" {
		dataDir = "./data"
	}

	absDataDir, err := filepath.Abs(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}

	if err := os.MkdirAll(absDataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	cfg := &Config{
		DataDir:        absDataDir,
		Port:           getEnvAsInt("PORT", 8080),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		DevMode:        getEnvAsBool("DEV_MODE", false),
		S3Bucket:       getEnv("S3_BUCKET", ""),
		S3Region:       getEnv("S3_REGION", "auto"),
		S3AccessKey:    getEnv("S3_ACCESS_KEY_ID", ""),
		S3SecretKey:    getEnv("S3_SECRET_ACCESS_KEY", ""),
		S3Endpoint:     getEnv("S3_ENDPOINT", ""),
		BackupSchedule: getEnv("BACKUP_SCHEDULE", "0 0 3 * * *"),
	}

	return cfg, nil
}

// UpdateFromSettings overrides credentials and schedules from the settings
// database. Settings values take precedence over environment variables, but
// empty settings keep whatever the environment provided.
func (c *Config) UpdateFromSettings(settings SettingsProvider) error {
	overrides := []struct {
		key    string
		target *string
	}{
		{"s3_bucket", &c.S3Bucket},
		{"s3_region", &c.S3Region},
		{"s3_access_key_id", &c.S3AccessKey},
		{"s3_secret_access_key", &c.S3SecretKey},
		{"s3_endpoint", &c.S3Endpoint},
		{"backup_schedule", &c.BackupSchedule},
	}

	for _, o := range overrides {
		val, err := settings.GetString(o.key)
		if err != nil {
			return fmt.Errorf("failed to get %s from settings: %w", o.key, err)
		}
		if val != "" {
			*o.target = val
		}
	}

	return nil
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
