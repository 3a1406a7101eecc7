package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	Log       LogConfig       `yaml:"log"`
	Engine    EngineConfig    `yaml:"engine"`
	Cache     CacheConfig     `yaml:"cache"`
	Auth      AuthConfig      `yaml:"auth"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Locker    string          `yaml:"locker"` // "memory" or "redis"
	Scheduler SchedulerConfig `yaml:"scheduler"`
}

type ServerConfig struct {
	Host     string `yaml:"host"`
	HTTPPort int    `yaml:"http_port"`
	GRPCPort int    `yaml:"grpc_port"`
}

// DatabaseConfig contains PostgreSQL connection settings
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	SSLMode  string `yaml:"ssl_mode"`
}

type RedisConfig struct {
	Addr      string `yaml:"addr"`
	Password  string `yaml:"password"`
	DB        int    `yaml:"db"`
	LockTTLMs int    `yaml:"lock_ttl_ms"`
}

// LogConfig contains logging settings
type LogConfig struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `yaml:"format"` // "json" or "text"
}

// EngineConfig holds the pricing and availability knobs.
type EngineConfig struct {
	TaxRate             string `yaml:"tax_rate"` // decimal string, e.g. "0.0825"
	Timezone            string `yaml:"timezone"`
	ForwardProbeDays    int    `yaml:"forward_probe_days"`
	BackwardProbeDays   int    `yaml:"backward_probe_days"`
	MaxSuggestions      int    `yaml:"max_suggestions"`
	CartHoldTTLMinutes  int    `yaml:"cart_hold_ttl_minutes"`
	CapacityHorizonDays int    `yaml:"capacity_horizon_days"`
}

type CacheConfig struct {
	RateTableTTLSeconds int `yaml:"rate_table_ttl_seconds"`
}

// AuthConfig contains service token settings
type AuthConfig struct {
	Secret string `yaml:"secret"`
	Issuer string `yaml:"issuer"`
}

type RateLimitConfig struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
	// TrustProxy keys clients by X-Forwarded-For; enable only behind a proxy
	// that overwrites the header.
	TrustProxy  bool `yaml:"trust_proxy"`
	IdleMinutes int  `yaml:"idle_minutes"`
}

// SchedulerConfig contains cron schedule settings
type SchedulerConfig struct {
	ExpireCartHolds          string `yaml:"expire_cart_holds"`
	ReportCapacityShortfalls string `yaml:"report_capacity_shortfalls"`
}

// Load reads configuration from a YAML file
func Load(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML, applies environment overrides and validates.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.overrideWithEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func envInt(name string, dst *int) {
	if val := os.Getenv(name); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			*dst = n
		}
	}
}

func envString(name string, dst *string) {
	if val := os.Getenv(name); val != "" {
		*dst = val
	}
}

// overrideWithEnv overrides config values with environment variables
func (c *Config) overrideWithEnv() {
	envString("DB_HOST", &c.Database.Host)
	envInt("DB_PORT", &c.Database.Port)
	envString("DB_USER", &c.Database.User)
	envString("DB_PASSWORD", &c.Database.Password)
	envString("DB_NAME", &c.Database.Database)
	envString("DB_SSL_MODE", &c.Database.SSLMode)

	envString("REDIS_ADDR", &c.Redis.Addr)
	envString("REDIS_PASSWORD", &c.Redis.Password)

	envString("SERVER_HOST", &c.Server.Host)
	envInt("HTTP_PORT", &c.Server.HTTPPort)
	envInt("GRPC_PORT", &c.Server.GRPCPort)

	envString("LOG_LEVEL", &c.Log.Level)
	envString("LOG_FORMAT", &c.Log.Format)

	envString("TAX_RATE", &c.Engine.TaxRate)
	envString("AUTH_SECRET", &c.Auth.Secret)
	envString("LOCKER", &c.Locker)
}

// Validate checks the configuration and fills defaults for optional settings.
func (c *Config) Validate() error {
	if c.Server.HTTPPort <= 0 || c.Server.HTTPPort > 65535 {
		return fmt.Errorf("invalid http port: %d", c.Server.HTTPPort)
	}
	if c.Server.GRPCPort == 0 {
		c.Server.GRPCPort = c.Server.HTTPPort + 1
	}
	if c.Server.GRPCPort < 0 || c.Server.GRPCPort > 65535 {
		return fmt.Errorf("invalid grpc port: %d", c.Server.GRPCPort)
	}

	if c.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}
	if c.Database.User == "" {
		return fmt.Errorf("database user is required")
	}
	if c.Database.Database == "" {
		return fmt.Errorf("database name is required")
	}
	if c.Database.Port == 0 {
		c.Database.Port = 5432
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}

	switch c.Locker {
	case "":
		c.Locker = "memory"
	case "memory":
	case "redis":
		if c.Redis.Addr == "" {
			return fmt.Errorf("redis addr is required when locker is redis")
		}
	default:
		return fmt.Errorf("unknown locker %q", c.Locker)
	}
	if c.Redis.LockTTLMs <= 0 {
		c.Redis.LockTTLMs = 5000
	}

	if c.Engine.TaxRate == "" {
		c.Engine.TaxRate = "0"
	}
	rate, err := decimal.NewFromString(c.Engine.TaxRate)
	if err != nil {
		return fmt.Errorf("invalid tax rate %q: %w", c.Engine.TaxRate, err)
	}
	if rate.IsNegative() || rate.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return fmt.Errorf("tax rate must be within [0, 1): %s", c.Engine.TaxRate)
	}
	if c.Engine.Timezone == "" {
		c.Engine.Timezone = "UTC"
	}
	if _, err := time.LoadLocation(c.Engine.Timezone); err != nil {
		return fmt.Errorf("invalid timezone %q: %w", c.Engine.Timezone, err)
	}
	if c.Engine.ForwardProbeDays <= 0 {
		c.Engine.ForwardProbeDays = 14
	}
	if c.Engine.BackwardProbeDays <= 0 {
		c.Engine.BackwardProbeDays = 7
	}
	if c.Engine.MaxSuggestions <= 0 {
		c.Engine.MaxSuggestions = 3
	}
	if c.Engine.CartHoldTTLMinutes <= 0 {
		c.Engine.CartHoldTTLMinutes = 30
	}
	if c.Engine.CapacityHorizonDays <= 0 {
		c.Engine.CapacityHorizonDays = 30
	}

	if c.Cache.RateTableTTLSeconds <= 0 {
		c.Cache.RateTableTTLSeconds = 60
	}

	if c.Auth.Secret == "" {
		return fmt.Errorf("auth secret is required")
	}
	if len(c.Auth.Secret) < 32 {
		return fmt.Errorf("auth secret must be at least 32 characters")
	}
	if c.Auth.Issuer == "" {
		c.Auth.Issuer = "rental-engine"
	}

	if c.RateLimit.RPS <= 0 {
		c.RateLimit.RPS = 20
	}
	if c.RateLimit.Burst <= 0 {
		c.RateLimit.Burst = 40
	}
	if c.RateLimit.IdleMinutes <= 0 {
		c.RateLimit.IdleMinutes = 10
	}

	if c.Scheduler.ExpireCartHolds == "" {
		c.Scheduler.ExpireCartHolds = "0 */5 * * * *" // every 5 minutes
	}
	if c.Scheduler.ReportCapacityShortfalls == "" {
		c.Scheduler.ReportCapacityShortfalls = "0 0 6 * * *" // 6 AM UTC
	}

	return nil
}

// TaxRate returns the validated engine tax rate.
func (c *Config) TaxRate() decimal.Decimal {
	return decimal.RequireFromString(c.Engine.TaxRate)
}

// Location returns the engine timezone used for "today".
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Engine.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func (c *Config) LockTTL() time.Duration {
	return time.Duration(c.Redis.LockTTLMs) * time.Millisecond
}

func (c *Config) RateTableTTL() time.Duration {
	return time.Duration(c.Cache.RateTableTTLSeconds) * time.Second
}

// RateLimitIdle is how long an idle client bucket is kept.
func (c *Config) RateLimitIdle() time.Duration {
	return time.Duration(c.RateLimit.IdleMinutes) * time.Minute
}

func (c *Config) CartHoldTTL() time.Duration {
	return time.Duration(c.Engine.CartHoldTTLMinutes) * time.Minute
}

// GetDatabaseConnectionString returns a PostgreSQL connection string
func (c *Config) GetDatabaseConnectionString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Database,
		c.Database.SSLMode,
	)
}

func (c *Config) GetHTTPAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.HTTPPort)
}

func (c *Config) GetGRPCAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.GRPCPort)
}
