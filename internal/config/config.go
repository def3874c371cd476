package config

import (
	"os"
	"strconv"
	"strings"

	"donorviz/internal/errors"
)

// Data source kinds
const (
	SourceFile     = "file"
	SourcePostgres = "postgres"
)

// Config represents the complete application configuration
type Config struct {
	Server    ServerConfig
	Data      DataConfig
	Database  DatabaseConfig
	Profiling ProfilingConfig
	Dashboard DashboardConfig
	LogLevel  string
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port    string
	GinMode string
}

// DataConfig says where the association tables come from
type DataConfig struct {
	Source           string
	ResultsFile      string
	SignificanceFile string
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	URL string
}

// ProfilingConfig holds performance profiling settings
type ProfilingConfig struct {
	Port    string
	Enabled bool
}

// DashboardConfig holds presentation settings of the overview page
type DashboardConfig struct {
	SignificanceAlpha float64
	OverviewTop       int
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Server:    *loadServerConfig(),
		Data:      *loadDataConfig(),
		Database:  *loadDatabaseConfig(),
		Profiling: *loadProfilingConfig(),
		Dashboard: *loadDashboardConfig(),
		LogLevel:  getEnvOrDefault("LOG_LEVEL", "INFO"),
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func loadServerConfig() *ServerConfig {
	return &ServerConfig{
		Port:    getEnvOrDefault("PORT", "8050"),
		GinMode: getEnvOrDefault("GIN_MODE", "release"),
	}
}

func loadDataConfig() *DataConfig {
	return &DataConfig{
		Source:           strings.ToLower(getEnvOrDefault("DATA_SOURCE", SourceFile)),
		ResultsFile:      getEnvOrDefault("RESULTS_FILE", "./data/plotdata24.csv"),
		SignificanceFile: getEnvOrDefault("SIGNIFICANCE_FILE", "./data/fdr24.csv"),
	}
}

func loadDatabaseConfig() *DatabaseConfig {
	return &DatabaseConfig{
		URL: getEnvOrDefault("DATABASE_URL", ""),
	}
}

func loadProfilingConfig() *ProfilingConfig {
	return &ProfilingConfig{
		Port:    getEnvOrDefault("PPROF_PORT", "6060"),
		Enabled: getEnvBoolOrDefault("PPROF_ENABLED", false),
	}
}

func loadDashboardConfig() *DashboardConfig {
	return &DashboardConfig{
		SignificanceAlpha: getEnvFloatOrDefault("SIGNIFICANCE_ALPHA", 0.05),
		OverviewTop:       getEnvIntOrDefault("OVERVIEW_TOP", 10),
	}
}

func validateConfig(config *Config) error {
	switch config.Data.Source {
	case SourceFile:
		if config.Data.ResultsFile == "" {
			return errors.ConfigInvalid("RESULTS_FILE is required")
		}
		if config.Data.SignificanceFile == "" {
			return errors.ConfigInvalid("SIGNIFICANCE_FILE is required")
		}
	case SourcePostgres:
		if config.Database.URL == "" {
			return errors.ConfigInvalid("DATABASE_URL is required when DATA_SOURCE=postgres")
		}
	default:
		return errors.ConfigInvalid("DATA_SOURCE must be one of file, postgres")
	}
	if config.Dashboard.SignificanceAlpha <= 0 || config.Dashboard.SignificanceAlpha >= 1 {
		return errors.ConfigInvalid("SIGNIFICANCE_ALPHA must be in (0, 1)")
	}
	if config.Dashboard.OverviewTop < 0 {
		return errors.ConfigInvalid("OVERVIEW_TOP must not be negative")
	}
	if config.Server.Port == "" {
		return errors.ConfigInvalid("PORT is required")
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

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
