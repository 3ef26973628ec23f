package config

import (
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig
	MongoDB   MongoDBConfig
	JWT       JWTConfig
	VTU       VTUConfig
	SMSRental SMSRentalConfig
	Poller    PollerConfig
	LogLevel  string
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port         string
	Environment  string
	AllowedHosts []string
}

// MongoDBConfig holds MongoDB-specific configuration
type MongoDBConfig struct {
	URI      string
	Database string
}

// JWTConfig holds JWT-specific configuration
type JWTConfig struct {
	Secret    string
	ExpiresIn int
}

// VTUConfig holds the VTU provider gateway configuration
type VTUConfig struct {
	BaseURL string
	APIKey  string
	MockAPI bool
}

// SMSRentalConfig holds the SMS number provider configuration
type SMSRentalConfig struct {
	BaseURL string
	APIKey  string
	MockAPI bool
}

// PollerConfig holds the SMS code polling and notification watcher timings
type PollerConfig struct {
	InitialDelay  time.Duration
	Interval      time.Duration
	MaxAttempts   int
	WatchInterval time.Duration
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		// It's okay if config file is not found, we'll use environment variables
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// setDefaults sets default values for configuration
func setDefaults() {
	viper.SetDefault("Server.Port", "4000")
	viper.SetDefault("Server.Environment", "development")
	viper.SetDefault("Server.AllowedHosts", []string{"localhost:3000"})
	viper.SetDefault("MongoDB.URI", "mongodb://localhost:27017")
	viper.SetDefault("MongoDB.Database", "vtuhub")
	viper.SetDefault("JWT.ExpiresIn", 24*60*60) // 24 hours
	viper.SetDefault("LogLevel", "info")
	viper.SetDefault("VTU.MockAPI", true)
	viper.SetDefault("SMSRental.MockAPI", true)
	viper.SetDefault("Poller.InitialDelay", 1500*time.Millisecond)
	viper.SetDefault("Poller.Interval", 3*time.Second)
	viper.SetDefault("Poller.MaxAttempts", 60)
	viper.SetDefault("Poller.WatchInterval", 30*time.Second)
}
