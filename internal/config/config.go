package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Environment string `toml:"-"`

	Host string `toml:"host"`
	Port int    `toml:"port"`
	// logging
	LogLevel      string `toml:"log_level"`
	LogsPath      string `toml:"logs_path"`
	LogToStdout   bool   `toml:"log_to_stdout"`
	LogFormatJSON bool   `toml:"log_format_json"`
	// postgres
	PostgresHost   string `toml:"postgres_host"`
	PostgresPort   string `toml:"postgres_port"`
	PostgresUser   string `toml:"postgres_user"`
	PostgresDBName string `toml:"postgres_db_name"`
	RunMigrations  bool   `toml:"run_migrations"`
	// redis
	RedisHost string `toml:"redis_host"`
	RedisPort string `toml:"redis_port"`
	// metrics
	PrometheusMetricsHost string `toml:"prometheus_metrics_host"`
	PrometheusMetricsPort string `toml:"prometheus_metrics_port"`

	LoginRateLimitAllowedPerMin int `toml:"login_rate_limit_allowed_per_min"`
	// size of the in-memory exercise catalog cache, in megabytes
	CatalogCacheSizeMB int `toml:"catalog_cache_size_mb"`
	// time zone used to interpret the local (offset-less) timestamps typed into the workout log form
	LogFormTimezone string   `toml:"log_form_timezone"`
	AllowedOrigins  []string `toml:"allowed_origins"`
}

type Toml struct {
	Development *Config `toml:"development"`
	Production  *Config `toml:"production"`
}

func (t *Toml) Get(env string) (*Config, error) {
	var cfg *Config
	switch strings.ToLower(env) {
	case "dev", "development":
		cfg = t.Development
		env = "development"
	case "prod", "production":
		cfg = t.Production
		env = "production"
	default:
		return nil, fmt.Errorf("unknown env: %s", env)
	}

	if cfg == nil {
		return nil, fmt.Errorf("no config section for env: %s", env)
	}
	cfg.Environment = env
	return cfg, nil
}

// Load reads the TOML file and returns the section for the given environment,
// with defaults applied for the values left out.
func Load(env, path string) (*Config, error) {
	var t Toml
	if _, err := toml.DecodeFile(path, &t); err != nil {
		return nil, fmt.Errorf("decode toml config %s: %w", path, err)
	}

	cfg, err := t.Get(env)
	if err != nil {
		return nil, err
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Host == "" {
		c.Host = "localhost"
	}
	if c.PostgresUser == "" {
		c.PostgresUser = "postgres"
	}
	if c.PostgresPort == "" {
		c.PostgresPort = "5432"
	}
	if c.RedisPort == "" {
		c.RedisPort = "6379"
	}
	if c.LoginRateLimitAllowedPerMin <= 0 {
		c.LoginRateLimitAllowedPerMin = 15
	}
	if c.CatalogCacheSizeMB <= 0 {
		c.CatalogCacheSizeMB = 10
	}
	if c.LogFormTimezone == "" {
		c.LogFormTimezone = "UTC"
	}
}

func (c *Config) Validate() error {
	if c.Port <= 0 {
		return errors.New("port not set")
	}
	if c.PostgresHost == "" || c.PostgresDBName == "" {
		return errors.New("postgres host or db name not set")
	}
	if c.RedisHost == "" {
		return errors.New("redis host not set")
	}
	if _, err := time.LoadLocation(c.LogFormTimezone); err != nil {
		return fmt.Errorf("invalid log form timezone %s: %w", c.LogFormTimezone, err)
	}
	return nil
}

// LogFormLocation returns the location local form timestamps are interpreted in.
func (c *Config) LogFormLocation() *time.Location {
	loc, err := time.LoadLocation(c.LogFormTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
