package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"

	"github.com/beezio/marketplace/internal/domain/pricing"
)

// Server-side import modes
const (
	ServerModeProcedure   = "procedure"
	ServerModeTransaction = "transaction"
	ServerModeDisabled    = "disabled"
)

// Config holds all application configuration
type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	Log       LogConfig
	HTTP      HTTPConfig
	Telemetry TelemetryConfig
	Pricing   PricingConfig
	Import    ImportConfig
	Providers ProvidersConfig
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
	Port string
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int // in minutes
	ConnMaxIdleTime int // in minutes
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

// JWTConfig holds settings for reading caller identity from bearer tokens
type JWTConfig struct {
	Secret string
	Issuer string
	// AllowHeaderIdentity accepts X-User-Email when no token is sent (development only)
	AllowHeaderIdentity bool
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	ReadTimeout      time.Duration
	WriteTimeout     time.Duration
	IdleTimeout      time.Duration
	ShutdownTimeout  time.Duration
	MaxHeaderBytes   int
	MaxBodySize      int64
	CORSAllowOrigins []string
	TrustedProxies   []string

	// RateLimitPerSecond paces each caller on the import and catalog routes; zero disables it
	RateLimitPerSecond float64
	RateLimitBurst     int
}

// TelemetryConfig holds OpenTelemetry configuration
type TelemetryConfig struct {
	Enabled           bool    // Whether to enable OpenTelemetry
	CollectorEndpoint string  // OTEL Collector endpoint (e.g., "localhost:4317")
	SamplingRatio     float64 // Sampling ratio (0.0-1.0, 1.0 = 100%)
	ServiceName       string  // Service name for traces
	Insecure          bool    // Use insecure (non-TLS) connection (development only)
	MetricsEnabled    bool
	MetricsInterval   time.Duration
	LogsEnabled       bool // Bridge zap records to OTEL logs
	// Database tracing options
	DBTraceEnabled    bool          // Enable database query tracing (otelgorm)
	DBLogFullSQL      bool          // Log full SQL statements (dev only)
	DBSlowQueryThresh time.Duration // Slow query threshold for warnings (default: 200ms)
	// Continuous profiling
	ProfilingEnabled  bool
	PyroscopeEndpoint string
}

// PricingConfig holds the platform-wide pricing policy. Rates are percentages.
type PricingConfig struct {
	RecruiterRate     string
	PlatformRate      string
	ProcessorRate     string
	ProcessorFixedFee string
	Currency          string
}

// ImportConfig holds import orchestration settings
type ImportConfig struct {
	FetchTimeout   time.Duration
	PersistTimeout time.Duration
	MaxConcurrent  int
	JobTTL         time.Duration
	// ServerMode selects the atomic server-side write: procedure, transaction or disabled
	ServerMode string
	// PrivilegedIdentities get PrivilegedRole when their owner record is provisioned
	PrivilegedIdentities []string
	PrivilegedRole       string
	DefaultRole          string
	FallbackCategory     string
	CategoryCacheTTL     time.Duration
	OrphanListLimit      int
}

// ProviderConfig holds settings for one provider adapter
type ProviderConfig struct {
	BaseURL           string
	APIVersion        string
	Currency          string
	TimeoutSeconds    int
	RequestsPerSecond float64
	Burst             int
}

// ProvidersConfig holds adapter settings
type ProvidersConfig struct {
	// Enabled lists provider codes to register; empty registers all
	Enabled        []string
	Printful       ProviderConfig
	Shopify        ProviderConfig
	CJDropshipping ProviderConfig
}

// Load loads configuration from .env, TOML file and environment variables
// Priority (highest to lowest):
// 1. Environment variables with MKT_ prefix (e.g., MKT_DATABASE_PASSWORD)
// 2. .env in the working directory (never overrides the real environment)
// 3. config.toml
// 4. Built-in defaults
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("error reading .env file: %w", err)
	}

	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("/app")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, we'll use defaults and env vars
	}

	v.SetEnvPrefix("MKT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
			Port: v.GetString("app.port"),
		},
		Database: DatabaseConfig{
			Host:            v.GetString("database.host"),
			Port:            v.GetInt("database.port"),
			User:            v.GetString("database.user"),
			Password:        v.GetString("database.password"),
			DBName:          v.GetString("database.dbname"),
			SSLMode:         v.GetString("database.sslmode"),
			MaxOpenConns:    v.GetInt("database.max_open_conns"),
			MaxIdleConns:    v.GetInt("database.max_idle_conns"),
			ConnMaxLifetime: v.GetInt("database.conn_max_lifetime"),
			ConnMaxIdleTime: v.GetInt("database.conn_max_idle_time"),
		},
		Redis: RedisConfig{
			Enabled:  v.GetBool("redis.enabled"),
			Host:     v.GetString("redis.host"),
			Port:     v.GetInt("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		JWT: JWTConfig{
			Secret:              v.GetString("jwt.secret"),
			Issuer:              v.GetString("jwt.issuer"),
			AllowHeaderIdentity: v.GetBool("jwt.allow_header_identity"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:      v.GetDuration("http.read_timeout"),
			WriteTimeout:     v.GetDuration("http.write_timeout"),
			IdleTimeout:      v.GetDuration("http.idle_timeout"),
			ShutdownTimeout:  v.GetDuration("http.shutdown_timeout"),
			MaxHeaderBytes:   v.GetInt("http.max_header_bytes"),
			MaxBodySize:      v.GetInt64("http.max_body_size"),
			CORSAllowOrigins: v.GetStringSlice("http.cors_allow_origins"),
			TrustedProxies:   v.GetStringSlice("http.trusted_proxies"),

			RateLimitPerSecond: v.GetFloat64("http.rate_limit_per_second"),
			RateLimitBurst:     v.GetInt("http.rate_limit_burst"),
		},
		Telemetry: TelemetryConfig{
			Enabled:           v.GetBool("telemetry.enabled"),
			CollectorEndpoint: v.GetString("telemetry.collector_endpoint"),
			SamplingRatio:     v.GetFloat64("telemetry.sampling_ratio"),
			ServiceName:       v.GetString("telemetry.service_name"),
			Insecure:          v.GetBool("telemetry.insecure"),
			MetricsEnabled:    v.GetBool("telemetry.metrics_enabled"),
			MetricsInterval:   v.GetDuration("telemetry.metrics_interval"),
			LogsEnabled:       v.GetBool("telemetry.logs_enabled"),
			DBTraceEnabled:    v.GetBool("telemetry.db_trace_enabled"),
			DBLogFullSQL:      v.GetBool("telemetry.db_log_full_sql"),
			DBSlowQueryThresh: v.GetDuration("telemetry.db_slow_query_threshold"),
			ProfilingEnabled:  v.GetBool("telemetry.profiling_enabled"),
			PyroscopeEndpoint: v.GetString("telemetry.pyroscope_endpoint"),
		},
		Pricing: PricingConfig{
			RecruiterRate:     v.GetString("pricing.recruiter_rate"),
			PlatformRate:      v.GetString("pricing.platform_rate"),
			ProcessorRate:     v.GetString("pricing.processor_rate"),
			ProcessorFixedFee: v.GetString("pricing.processor_fixed_fee"),
			Currency:          v.GetString("pricing.currency"),
		},
		Import: ImportConfig{
			FetchTimeout:         v.GetDuration("import.fetch_timeout"),
			PersistTimeout:       v.GetDuration("import.persist_timeout"),
			MaxConcurrent:        v.GetInt("import.max_concurrent"),
			JobTTL:               v.GetDuration("import.job_ttl"),
			ServerMode:           v.GetString("import.server_mode"),
			PrivilegedIdentities: v.GetStringSlice("import.privileged_identities"),
			PrivilegedRole:       v.GetString("import.privileged_role"),
			DefaultRole:          v.GetString("import.default_role"),
			FallbackCategory:     v.GetString("import.fallback_category"),
			CategoryCacheTTL:     v.GetDuration("import.category_cache_ttl"),
			OrphanListLimit:      v.GetInt("import.orphan_list_limit"),
		},
		Providers: ProvidersConfig{
			Enabled:        v.GetStringSlice("providers.enabled"),
			Printful:       providerConfig(v, "providers.printful"),
			Shopify:        providerConfig(v, "providers.shopify"),
			CJDropshipping: providerConfig(v, "providers.cjdropshipping"),
		},
	}

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func providerConfig(v *viper.Viper, prefix string) ProviderConfig {
	return ProviderConfig{
		BaseURL:           v.GetString(prefix + ".base_url"),
		APIVersion:        v.GetString(prefix + ".api_version"),
		Currency:          v.GetString(prefix + ".currency"),
		TimeoutSeconds:    v.GetInt(prefix + ".timeout_seconds"),
		RequestsPerSecond: v.GetFloat64(prefix + ".requests_per_second"),
		Burst:             v.GetInt(prefix + ".burst"),
	}
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "marketplace"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Port == "" {
		cfg.App.Port = "8080"
	}
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.User == "" {
		cfg.Database.User = "postgres"
	}
	if cfg.Database.DBName == "" {
		cfg.Database.DBName = "marketplace"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 25
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = 60
	}
	if cfg.Database.ConnMaxIdleTime == 0 {
		cfg.Database.ConnMaxIdleTime = 30
	}
	if cfg.Redis.Host == "" {
		cfg.Redis.Host = "localhost"
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}
	if cfg.JWT.Issuer == "" {
		cfg.JWT.Issuer = "marketplace"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}
	if cfg.HTTP.ReadTimeout == 0 {
		cfg.HTTP.ReadTimeout = 15 * time.Second
	}
	if cfg.HTTP.WriteTimeout == 0 {
		// Bulk imports hold the request open while every item runs.
		cfg.HTTP.WriteTimeout = 2 * time.Minute
	}
	if cfg.HTTP.IdleTimeout == 0 {
		cfg.HTTP.IdleTimeout = 60 * time.Second
	}
	if cfg.HTTP.ShutdownTimeout == 0 {
		cfg.HTTP.ShutdownTimeout = 30 * time.Second
	}
	if cfg.HTTP.MaxHeaderBytes == 0 {
		cfg.HTTP.MaxHeaderBytes = 1 << 20 // 1MB
	}
	if cfg.HTTP.MaxBodySize == 0 {
		cfg.HTTP.MaxBodySize = 2 << 20 // 2MB
	}
	if cfg.HTTP.RateLimitBurst == 0 {
		cfg.HTTP.RateLimitBurst = 10
	}
	if cfg.Telemetry.CollectorEndpoint == "" {
		cfg.Telemetry.CollectorEndpoint = "localhost:4317"
	}
	if cfg.Telemetry.SamplingRatio == 0 {
		cfg.Telemetry.SamplingRatio = 1.0
	}
	if cfg.Telemetry.ServiceName == "" {
		cfg.Telemetry.ServiceName = "marketplace"
	}
	if cfg.Telemetry.MetricsInterval == 0 {
		cfg.Telemetry.MetricsInterval = 60 * time.Second
	}
	if cfg.Telemetry.DBSlowQueryThresh == 0 {
		cfg.Telemetry.DBSlowQueryThresh = 200 * time.Millisecond
	}
	if cfg.Telemetry.PyroscopeEndpoint == "" {
		cfg.Telemetry.PyroscopeEndpoint = "http://localhost:4040"
	}
	if cfg.Pricing.RecruiterRate == "" {
		cfg.Pricing.RecruiterRate = "5"
	}
	if cfg.Pricing.PlatformRate == "" {
		cfg.Pricing.PlatformRate = "10"
	}
	if cfg.Pricing.ProcessorRate == "" {
		cfg.Pricing.ProcessorRate = "2.9"
	}
	if cfg.Pricing.ProcessorFixedFee == "" {
		cfg.Pricing.ProcessorFixedFee = "0.30"
	}
	if cfg.Pricing.Currency == "" {
		cfg.Pricing.Currency = "USD"
	}
	if cfg.Import.FetchTimeout == 0 {
		cfg.Import.FetchTimeout = 30 * time.Second
	}
	if cfg.Import.PersistTimeout == 0 {
		cfg.Import.PersistTimeout = 15 * time.Second
	}
	if cfg.Import.MaxConcurrent == 0 {
		cfg.Import.MaxConcurrent = 4
	}
	if cfg.Import.JobTTL == 0 {
		cfg.Import.JobTTL = 10 * time.Minute
	}
	if cfg.Import.ServerMode == "" {
		cfg.Import.ServerMode = ServerModeProcedure
	}
	if cfg.Import.PrivilegedRole == "" {
		cfg.Import.PrivilegedRole = "admin"
	}
	if cfg.Import.DefaultRole == "" {
		cfg.Import.DefaultRole = "seller"
	}
	if cfg.Import.FallbackCategory == "" {
		cfg.Import.FallbackCategory = "Other"
	}
	if cfg.Import.CategoryCacheTTL == 0 {
		cfg.Import.CategoryCacheTTL = 5 * time.Minute
	}
	if cfg.Import.OrphanListLimit == 0 {
		cfg.Import.OrphanListLimit = 100
	}
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	if c.Database.MaxOpenConns <= 0 {
		return fmt.Errorf("database.max_open_conns must be positive")
	}
	if c.Database.MaxIdleConns < 0 {
		return fmt.Errorf("database.max_idle_conns cannot be negative")
	}
	if c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		return fmt.Errorf("database.max_idle_conns (%d) cannot exceed database.max_open_conns (%d)",
			c.Database.MaxIdleConns, c.Database.MaxOpenConns)
	}

	if c.App.Env == "production" {
		if len(c.JWT.Secret) < 32 {
			return fmt.Errorf("jwt.secret must be at least 32 characters in production")
		}
		if c.JWT.AllowHeaderIdentity {
			return fmt.Errorf("jwt.allow_header_identity must be false in production")
		}
		if c.Database.Password == "" {
			return fmt.Errorf("database.password is required in production")
		}
		if c.Database.SSLMode == "disable" {
			return fmt.Errorf("database.sslmode cannot be 'disable' in production")
		}
		for _, origin := range c.HTTP.CORSAllowOrigins {
			if origin == "*" {
				return fmt.Errorf("cors_allow_origins cannot be '*' in production (use specific origins)")
			}
		}
		if c.Telemetry.DBLogFullSQL {
			return fmt.Errorf("telemetry.db_log_full_sql must be false in production to prevent sensitive data exposure in traces")
		}
	}

	if c.Telemetry.SamplingRatio < 0.0 || c.Telemetry.SamplingRatio > 1.0 {
		return fmt.Errorf("telemetry.sampling_ratio must be between 0.0 and 1.0, got %f", c.Telemetry.SamplingRatio)
	}

	if _, err := c.Pricing.Policy(); err != nil {
		return fmt.Errorf("pricing: %w", err)
	}

	if c.Import.MaxConcurrent < 1 {
		return fmt.Errorf("import.max_concurrent must be positive")
	}
	if c.Import.FetchTimeout < 0 || c.Import.PersistTimeout < 0 {
		return fmt.Errorf("import timeouts cannot be negative")
	}
	modes := []string{ServerModeProcedure, ServerModeTransaction, ServerModeDisabled}
	if !slices.Contains(modes, c.Import.ServerMode) {
		return fmt.Errorf("import.server_mode must be one of %v, got %q", modes, c.Import.ServerMode)
	}
	for _, role := range []string{c.Import.PrivilegedRole, c.Import.DefaultRole} {
		if role != "admin" && role != "seller" {
			return fmt.Errorf("import roles must be admin or seller, got %q", role)
		}
	}

	return nil
}

// Policy parses the pricing section into a validated pricing policy
func (p PricingConfig) Policy() (pricing.Policy, error) {
	parse := func(name, value string) (decimal.Decimal, error) {
		d, err := decimal.NewFromString(strings.TrimSpace(value))
		if err != nil {
			return decimal.Zero, fmt.Errorf("%s %q is not a number: %w", name, value, err)
		}
		return d, nil
	}

	recruiter, err := parse("recruiter_rate", p.RecruiterRate)
	if err != nil {
		return pricing.Policy{}, err
	}
	platform, err := parse("platform_rate", p.PlatformRate)
	if err != nil {
		return pricing.Policy{}, err
	}
	processor, err := parse("processor_rate", p.ProcessorRate)
	if err != nil {
		return pricing.Policy{}, err
	}
	fixed, err := parse("processor_fixed_fee", p.ProcessorFixedFee)
	if err != nil {
		return pricing.Policy{}, err
	}

	policy := pricing.Policy{
		RecruiterRate: recruiter,
		PlatformRate:  platform,
		Processor: pricing.FeeSchedule{
			PercentageRate: processor,
			FixedFee:       fixed,
		},
		Currency: strings.ToUpper(p.Currency),
	}
	if err := policy.Validate(); err != nil {
		return pricing.Policy{}, err
	}
	return policy, nil
}

// IsPrivileged reports whether identity appears in the privileged list,
// ignoring case and surrounding whitespace
func (c ImportConfig) IsPrivileged(identity string) bool {
	identity = strings.ToLower(strings.TrimSpace(identity))
	for _, p := range c.PrivilegedIdentities {
		if strings.ToLower(strings.TrimSpace(p)) == identity && identity != "" {
			return true
		}
	}
	return false
}

// DSN returns the database connection string with properly escaped values
func (d *DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   d.DBName,
	}
	q := u.Query()
	q.Set("sslmode", d.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}
