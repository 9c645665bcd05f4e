package config

import (
	"os"
	"strconv"
	"time"

	"trustlens/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Database DatabaseConfig `validate:"required"`
	Server   ServerConfig   `validate:"required"`
	Engine   EngineConfig
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	URL      string `validate:"required"`
	User     string
	Password string
	Name     string
	Host     string
	Port     int
	SSLMode  string
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port string `validate:"required"`
}

// EngineConfig holds tunables for the evidence engine. Values flow into
// immutable component configs at construction time; nothing here is read
// after startup.
type EngineConfig struct {
	DetectorTimeout        time.Duration
	MaxConcurrentDetectors int64
	DisagreementThreshold  float64
	PenaltyCutoff          float64
	AgreementBoost         float64
	CheckpointIntervalSec  int
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{}

	dbConfig, err := loadDatabaseConfig()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load database configuration")
	}
	config.Database = *dbConfig

	config.Server = ServerConfig{
		Port: getEnvOrDefault("PORT", "8080"),
	}

	config.Engine = EngineConfig{
		DetectorTimeout:        getEnvDurationOrDefault("DETECTOR_TIMEOUT", 5*time.Second),
		MaxConcurrentDetectors: int64(getEnvIntOrDefault("MAX_CONCURRENT_DETECTORS", 4)),
		DisagreementThreshold:  getEnvFloatOrDefault("DISAGREEMENT_THRESHOLD", 0.35),
		PenaltyCutoff:          getEnvFloatOrDefault("PENALTY_CUTOFF", 0.15),
		AgreementBoost:         getEnvFloatOrDefault("AGREEMENT_BOOST", 0.05),
		CheckpointIntervalSec:  getEnvIntOrDefault("CHECKPOINT_INTERVAL_SEC", 5),
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func loadDatabaseConfig() (*DatabaseConfig, error) {
	url := os.Getenv("DATABASE_URL")
	if url == "" {
		return nil, errors.ConfigInvalid("DATABASE_URL is required")
	}

	return &DatabaseConfig{
		URL:      url,
		User:     getEnvOrDefault("DB_USER", ""),
		Password: getEnvOrDefault("DB_PASS", ""),
		Name:     getEnvOrDefault("DB_NAME", ""),
		Host:     getEnvOrDefault("DB_HOST", ""),
		Port:     getEnvIntOrDefault("DB_PORT", 5432),
		SSLMode:  getEnvOrDefault("SSL_MODE", "disable"),
	}, nil
}

func validateConfig(config *Config) error {
	if config.Database.URL == "" {
		return errors.ConfigInvalid("database URL is required")
	}
	if config.Engine.DetectorTimeout <= 0 {
		return errors.ConfigInvalid("detector timeout must be positive")
	}
	if config.Engine.DisagreementThreshold < 0 || config.Engine.DisagreementThreshold > 1 {
		return errors.ConfigInvalid("disagreement threshold must be within [0,1]")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
