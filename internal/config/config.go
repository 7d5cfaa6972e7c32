package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/sirupsen/logrus"
)

// Create a new instance of the logger
// Configure it to log at the desired level
// and format it as JSON for structured logging
var log = logrus.New()

func init() {
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetLevel(LevelForEnvironment(GetEnvWithDefault("APP_ENV", "development")))
}

// LevelForEnvironment maps APP_ENV to the logrus level used across the service
func LevelForEnvironment(environment string) logrus.Level {
	switch environment {
	case "development":
		return logrus.DebugLevel
	case "production":
		return logrus.ErrorLevel
	default:
		return logrus.InfoLevel
	}
}

// Config used for the application configuration, loading the input from environment variables
type Config struct {
	// Server Configuration
	Environment string `json:"environment"`
	Port        int    `json:"port"`
	Host        string `json:"host"`

	// Database configuration
	DBDriver   string `json:"db_driver"`
	DBPath     string `json:"db_path"`
	DBHost     string `json:"db_host"`
	DBPort     string `json:"db_port"`
	DBName     string `json:"db_name"`
	DBUser     string `json:"db_user"`
	DBPassword string `json:"db_password"`
	DBSSLMode  string `json:"db_sslmode"`

	// Storage configuration
	MediaRoot   string `json:"media_root"`
	DataDir     string `json:"data_dir"`
	SeedCatalog bool   `json:"seed_catalog"`

	// Logging configuration
	LogLevel string `json:"log_level"`

	// Security Configuration
	JWTSecret     string `json:"jwt_secret"`
	TokenTTLHours int    `json:"token_ttl_hours"`
}

// String returns a string representation of Config with sensitive data masked
func (c *Config) String() string {
	return fmt.Sprintf("Config{Env: %s, Port: %d, Host: %s, DBDriver: %s, DBPath: %s, DBHost: %s, DBName: %s, DBUser: %s, DBPassword: [REDACTED], MediaRoot: %s, DataDir: %s, LogLevel: %s, JWTSecret: [REDACTED]}",
		c.Environment, c.Port, c.Host, c.DBDriver, c.DBPath, c.DBHost, c.DBName, c.DBUser, c.MediaRoot, c.DataDir, c.LogLevel)
}

// LoadConfig read the proper configuration from environment variables and returns a Config struct
// Returns an error if a numeric or boolean variable cannot be parsed or the driver is unknown
func LoadConfig() (*Config, error) {
	log.Info("Loading configuration from environment variables")
	port, err := strconv.Atoi(GetEnvWithDefault("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}

	ttl, err := strconv.Atoi(GetEnvWithDefault("TOKEN_TTL_HOURS", "24"))
	if err != nil || ttl < 1 {
		return nil, fmt.Errorf("invalid TOKEN_TTL_HOURS: must be a positive integer")
	}

	seed, err := strconv.ParseBool(GetEnvWithDefault("SEED_CATALOG", "true"))
	if err != nil {
		return nil, fmt.Errorf("invalid SEED_CATALOG: %w", err)
	}

	driver := GetEnvWithDefault("DB_DRIVER", "sqlite")
	switch driver {
	case "sqlite", "postgres", "postgresql":
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q (supported: sqlite, postgres)", driver)
	}

	config := &Config{
		Environment:   GetEnvWithDefault("APP_ENV", "development"),
		Port:          port,
		Host:          GetEnvWithDefault("APP_HOST", "localhost"),
		DBDriver:      driver,
		DBPath:        GetEnvWithDefault("DB_PATH", "foodgram.sqlite"),
		DBHost:        GetEnvWithDefault("DB_HOST", "localhost"),
		DBPort:        GetEnvWithDefault("DB_PORT", "5432"),
		DBName:        GetEnvWithDefault("DB_NAME", "foodgram"),
		DBUser:        GetEnvWithDefault("DB_USER", "foodgram"),
		DBPassword:    GetEnvWithDefault("DB_PASSWORD", "password"),
		DBSSLMode:     GetEnvWithDefault("DB_SSLMODE", "disable"),
		MediaRoot:     GetEnvWithDefault("MEDIA_ROOT", "media"),
		DataDir:       GetEnvWithDefault("DATA_DIR", "data"),
		SeedCatalog:   seed,
		LogLevel:      GetEnvWithDefault("LOG_LEVEL", "info"),
		JWTSecret:     GetEnvWithDefault("JWT_SECRET", "secret"),
		TokenTTLHours: ttl,
	}
	log.Infof("Configuration loaded: %s", config.String())
	return config, nil
}

// Helper to get environment with default values
func GetEnvWithDefault(key, defaultValue string) string {
	log.Tracef("Getting environment variable: %s", key)
	value := os.Getenv(key)
	if value == "" {
		log.Debugf("Environment variable %s not set, using default value", key)
		return defaultValue
	}
	return value
}

// GetEnvAsType retrieves an environment variable and converts it to the specified type
// using generic type handling.
func GetEnvAsType[T any](key string, defaultValue T) T {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	var result T
	switch any(result).(type) {
	case int:
		intValue, err := strconv.Atoi(value)
		if err != nil {
			return defaultValue
		}
		return any(intValue).(T)
	case string:
		return any(value).(T)
	case bool:
		boolValue, err := strconv.ParseBool(value)
		if err != nil {
			return defaultValue
		}
		return any(boolValue).(T)
	default:
		return defaultValue // Fallback for unsupported types
	}
}
