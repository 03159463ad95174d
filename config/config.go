package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/framecart/backend/internal/domain"
)

// Config holds all configuration for the application
type Config struct {
	Server Server `mapstructure:"server"`
	Store  Store  `mapstructure:"store"`
	Gemini Gemini `mapstructure:"gemini"`
	Video  Video  `mapstructure:"video"`
	Match  Match  `mapstructure:"match"`
}

// Server holds server-related configuration
type Server struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// Store holds the default catalog tenant configuration
type Store struct {
	Domain         string `mapstructure:"domain"`
	AccessToken    string `mapstructure:"access_token"`
	APIVersion     string `mapstructure:"api_version"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

// Gemini holds vision model configuration
type Gemini struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

// Video holds frame sampling configuration
type Video struct {
	TargetFPS   int `mapstructure:"target_fps"`
	MaxFrames   int `mapstructure:"max_frames"`
	ScaleHeight int `mapstructure:"scale_height"`
}

// Match holds batch matching configuration
type Match struct {
	LimitPerItem int `mapstructure:"limit_per_item"`
	MaxItems     int `mapstructure:"max_items"`
	Workers      int `mapstructure:"workers"`
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/framecart/")

	v.SetEnvPrefix("FRAMECART")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// Config file is optional; env vars and defaults cover everything.
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:5173"})

	// Credentials default to empty so env-only values survive Unmarshal.
	v.SetDefault("store.domain", "")
	v.SetDefault("store.access_token", "")
	v.SetDefault("store.api_version", domain.DefaultAPIVersion)
	v.SetDefault("store.timeout_seconds", 20)

	v.SetDefault("gemini.api_key", "")
	v.SetDefault("gemini.model", "gemini-2.5-flash")

	v.SetDefault("video.target_fps", 1)
	v.SetDefault("video.max_frames", 10)
	v.SetDefault("video.scale_height", 720)

	v.SetDefault("match.limit_per_item", 5)
	v.SetDefault("match.max_items", 6)
	v.SetDefault("match.workers", 1)
}

// validate validates the configuration
func validate(config *Config) error {
	if config.Store.TimeoutSeconds <= 0 {
		return fmt.Errorf("store timeout must be positive, got: %d", config.Store.TimeoutSeconds)
	}
	if config.Video.MaxFrames <= 0 {
		return fmt.Errorf("video max_frames must be positive, got: %d", config.Video.MaxFrames)
	}
	if config.Match.Workers < 1 {
		return fmt.Errorf("match workers must be at least 1, got: %d", config.Match.Workers)
	}
	return nil
}

// StoreConfig builds the immutable store identity passed into the catalog
// client and orchestrator. Domain/token validity is checked on first use,
// not here, so a search-less deployment can boot without credentials.
func (c *Config) StoreConfig() domain.StoreConfig {
	return domain.StoreConfig{
		Domain:      c.Store.Domain,
		AccessToken: c.Store.AccessToken,
		APIVersion:  c.Store.APIVersion,
		Timeout:     time.Duration(c.Store.TimeoutSeconds) * time.Second,
	}.Normalized()
}
