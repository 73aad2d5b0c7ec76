package config

import (
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig
	MongoDB  MongoDBConfig
	JWT      JWTConfig
	Giveaway GiveawayConfig
	LogLevel string
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port         string
	AllowedHosts []string
	Debug        bool
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

// GiveawayConfig holds defaults applied to newly created giveaways and the
// entry-cutoff sweep schedule
type GiveawayConfig struct {
	DefaultCreditCost   int
	DefaultFreeEntries  int
	DefaultMinPicks     int
	CutoffSweepSchedule string
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
		// A missing config file is fine, environment variables take over
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
	viper.SetDefault("Server.Port", GetEnv("PORT", "4000"))
	viper.SetDefault("Server.AllowedHosts", GetEnvAsSlice("ALLOWED_HOSTS", ",", []string{"localhost:3000"}))
	viper.SetDefault("Server.Debug", GetEnvAsBool("DEBUG", false))
	viper.SetDefault("MongoDB.URI", GetEnv("MONGODB_URI", "mongodb://localhost:27017"))
	viper.SetDefault("MongoDB.Database", GetEnv("MONGODB_DATABASE", "cardhaus"))
	viper.SetDefault("JWT.Secret", GetEnv("JWT_SECRET", ""))
	viper.SetDefault("JWT.ExpiresIn", GetEnvAsInt("JWT_EXPIRES_IN", 24*60*60)) // 24 hours
	viper.SetDefault("Giveaway.DefaultCreditCost", 1)
	viper.SetDefault("Giveaway.DefaultFreeEntries", 1)
	viper.SetDefault("Giveaway.DefaultMinPicks", 50)
	viper.SetDefault("Giveaway.CutoffSweepSchedule", "*/5 * * * *")
	viper.SetDefault("LogLevel", "info")
}
