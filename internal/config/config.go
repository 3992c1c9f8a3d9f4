package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"order-desk/internal/core"
)

type Config struct {
	API      APIConfig      `mapstructure:"api"`
	Realtime RealtimeConfig `mapstructure:"realtime"`
	Server   ServerConfig   `mapstructure:"server"`
	Log      LogConfig      `mapstructure:"log"`
}

type APIConfig struct {
	BaseURL          string        `mapstructure:"base_url"`
	Timeout          time.Duration `mapstructure:"timeout"`
	Token            string        `mapstructure:"token"`
	FallbackUserID   string        `mapstructure:"fallback_user_id"`
	FallbackRegionID string        `mapstructure:"fallback_region_id"`
}

type RealtimeConfig struct {
	WSURL          string        `mapstructure:"ws_url"`
	ReconnectDelay time.Duration `mapstructure:"reconnect_delay"`
}

type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	AllowedOrigins  string        `mapstructure:"allowed_origins"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Session builds the startup session from the configured token and fallback pair.
func (c APIConfig) Session() core.Session {
	return core.Session{
		Token:            c.Token,
		FallbackUserID:   c.FallbackUserID,
		FallbackRegionID: c.FallbackRegionID,
	}
}

// Load reads .env, an optional config.yaml from ./configs or ., and the
// environment, in increasing order of precedence.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath(".")

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	bindEnvVariables(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}

// Validate rejects configurations the client cannot run with.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.API.BaseURL) == "" {
		return fmt.Errorf("api.base_url (API_BASE_URL) is required")
	}
	if c.API.Timeout <= 0 {
		return fmt.Errorf("api.timeout must be positive, got %s", c.API.Timeout)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api.timeout", 10*time.Second)
	v.SetDefault("api.fallback_user_id", "1")
	v.SetDefault("api.fallback_region_id", "1")
	v.SetDefault("realtime.reconnect_delay", 5*time.Second)
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
}

func bindEnvVariables(v *viper.Viper) {
	// API
	v.BindEnv("api.base_url", "API_BASE_URL")
	v.BindEnv("api.timeout", "API_TIMEOUT")
	v.BindEnv("api.token", "API_TOKEN")
	v.BindEnv("api.fallback_user_id", "API_FALLBACK_USER_ID")
	v.BindEnv("api.fallback_region_id", "API_FALLBACK_REGION_ID")

	// Realtime
	v.BindEnv("realtime.ws_url", "WS_URL")
	v.BindEnv("realtime.reconnect_delay", "WS_RECONNECT_DELAY")

	// Server
	v.BindEnv("server.port", "SERVER_PORT")
	v.BindEnv("server.allowed_origins", "ALLOWED_ORIGINS")

	// Log
	v.BindEnv("log.level", "LOG_LEVEL")
	v.BindEnv("log.format", "LOG_FORMAT")
}
