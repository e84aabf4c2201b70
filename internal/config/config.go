package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/viper"
)

type Config struct {
	Server      ServerConfig
	Database    DatabaseConfig
	Redis       RedisConfig
	JWT         JWTConfig
	SMTP        SMTPConfig
	Scheduler   SchedulerConfig
	AccessCache AccessCacheConfig `mapstructure:"access_cache"`
}

type ServerConfig struct {
	Port           int `mapstructure:"port"`
	TimeoutSeconds int `mapstructure:"timeoutSeconds"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
}

type RedisConfig struct {
	URL          string        `mapstructure:"url"`
	MaxRetries   int           `mapstructure:"max_retries"`
	RetryBackoff time.Duration `mapstructure:"retry_backoff"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
}

type JWTConfig struct {
	Secret      string `mapstructure:"secret"`
	ExpiryHours int    `mapstructure:"expiry_hours"`
}

type SMTPConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
}

// SchedulerConfig drives the auto-confirmation worker. The maturation
// window is how long an appointment may sit pending before the worker
// promotes it; the item timeout bounds each store call so one slow row
// cannot stall the batch.
type SchedulerConfig struct {
	TickInterval     time.Duration `mapstructure:"tick_interval"`
	MaturationWindow time.Duration `mapstructure:"maturation_window"`
	ItemTimeout      time.Duration `mapstructure:"item_timeout"`
}

type AccessCacheConfig struct {
	TTL             time.Duration `mapstructure:"ttl"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
}

func LoadConfig() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	config.applyDefaults()
	return &config, nil
}

// WorkerOverrides are environment overrides for the worker binary, so a
// deployment can tune the scheduler without shipping a new config file.
type WorkerOverrides struct {
	TickInterval     time.Duration `envconfig:"SCHEDULER_TICK_INTERVAL"`
	MaturationWindow time.Duration `envconfig:"SCHEDULER_MATURATION_WINDOW"`
	ItemTimeout      time.Duration `envconfig:"SCHEDULER_ITEM_TIMEOUT"`
}

// LoadWorkerConfig layers envconfig overrides on top of the file config.
func LoadWorkerConfig() (*Config, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, err
	}

	var overrides WorkerOverrides
	if err := envconfig.Process("", &overrides); err != nil {
		return nil, fmt.Errorf("failed to process worker env overrides: %w", err)
	}

	if overrides.TickInterval > 0 {
		cfg.Scheduler.TickInterval = overrides.TickInterval
	}
	if overrides.MaturationWindow > 0 {
		cfg.Scheduler.MaturationWindow = overrides.MaturationWindow
	}
	if overrides.ItemTimeout > 0 {
		cfg.Scheduler.ItemTimeout = overrides.ItemTimeout
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Scheduler.TickInterval <= 0 {
		c.Scheduler.TickInterval = 10 * time.Minute
	}
	if c.Scheduler.MaturationWindow <= 0 {
		c.Scheduler.MaturationWindow = 2 * time.Hour
	}
	if c.Scheduler.ItemTimeout <= 0 {
		c.Scheduler.ItemTimeout = 5 * time.Second
	}
	if c.AccessCache.TTL <= 0 {
		c.AccessCache.TTL = 5 * time.Minute
	}
	if c.AccessCache.CleanupInterval <= 0 {
		c.AccessCache.CleanupInterval = 10 * time.Minute
	}
	if c.Redis.PoolSize <= 0 {
		c.Redis.PoolSize = 10
	}
}
