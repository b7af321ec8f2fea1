package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/olkipaint/backend/internal/auth"
	"github.com/olkipaint/backend/internal/logger"
	"github.com/olkipaint/backend/internal/mailer"
	"github.com/olkipaint/backend/internal/mediastore"
	"github.com/olkipaint/backend/internal/queue"
	"github.com/olkipaint/backend/internal/storage"
)

// Config holds all application configuration.
type Config struct {
	API       APIConfig            `mapstructure:"api"`
	Database  storage.Config       `mapstructure:"database"`
	Broker    queue.Config         `mapstructure:"broker"`
	Email     mailer.Config        `mapstructure:"email"`
	Media     mediastore.Config    `mapstructure:"media"`
	Redis     RedisConfig          `mapstructure:"redis"`
	Auth      AuthConfig           `mapstructure:"auth"`
	RateLimit auth.RateLimitConfig `mapstructure:"rate_limit"`
	Logging   logger.Config        `mapstructure:"logging"`
}

// APIConfig holds REST API server configuration.
type APIConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// RedisConfig holds the optional Redis connection used for rate limiting.
// An empty Addr disables Redis entirely.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// AuthConfig holds admin authentication configuration.
type AuthConfig struct {
	JWT   auth.JWTConfig   `mapstructure:"jwt"`
	Admin auth.AdminConfig `mapstructure:"admin"`
}

// Load reads configuration from the given config directory path. It looks
// for a file named "config.yaml" in that directory. Environment variables
// with prefix OLKI_ override file values; for example, OLKI_BROKER_URL
// overrides broker.url.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configPath)

	v.SetEnvPrefix("OLKI")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	broker := queue.DefaultConfig()
	v.SetDefault("broker.url", broker.URL)
	v.SetDefault("broker.queue", broker.Queue)
	v.SetDefault("broker.reconnect_delay", broker.ReconnectDelay)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return &cfg, nil
}

// ValidateWorker checks the settings the notification worker cannot run
// without. The worker fails fast at startup instead of consuming with a
// broken transport.
func (c *Config) ValidateWorker() error {
	if err := c.Broker.Validate(); err != nil {
		return fmt.Errorf("broker config: %w", err)
	}
	if err := c.Email.Validate(); err != nil {
		return fmt.Errorf("email config: %w", err)
	}
	if err := c.Database.Validate(); err != nil {
		return fmt.Errorf("database config: %w", err)
	}
	return nil
}
