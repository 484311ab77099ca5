package config

import "time"

type Config struct {
	App            AppConfig            `mapstructure:"app"`
	HTTP           HTTPConfig           `mapstructure:"http"`
	GRPC           GRPCConfig           `mapstructure:"grpc"`
	Database       DatabaseConfig       `mapstructure:"database"`
	Redis          RedisConfig          `mapstructure:"redis"`
	Queue          QueueConfig          `mapstructure:"queue"`
	NATS           NATSConfig           `mapstructure:"nats"`
	RabbitMQ       RabbitMQConfig       `mapstructure:"rabbitmq"`
	JWT            JWTConfig            `mapstructure:"jwt"`
	Vault          VaultConfig          `mapstructure:"vault"`
	OpenTelemetry  OpenTelemetryConfig  `mapstructure:"opentelemetry"`
	Prometheus     PrometheusConfig     `mapstructure:"prometheus"`
	Logging        LoggingConfig        `mapstructure:"logging"`
	CircuitBreaker CircuitBreakerConfig `mapstructure:"circuit_breaker"`
	CORS           CORSConfig           `mapstructure:"cors"`
	Notification   NotificationConfig   `mapstructure:"notification"`
	Cache          CacheConfig          `mapstructure:"cache"`
	Alerts         AlertsConfig         `mapstructure:"alerts"`
}

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type HTTPConfig struct {
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

type GRPCConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Port    int  `mapstructure:"port"`
}

// DatabaseConfig selects the storage backend. Driver "memory" keeps all
// state in process and is meant for local runs.
type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"`
	URL             string        `mapstructure:"url"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
	AutoMigrate     bool          `mapstructure:"auto_migrate"`
	LogQueries      bool          `mapstructure:"log_queries"`
}

type RedisConfig struct {
	URL       string `mapstructure:"url"`
	KeyPrefix string `mapstructure:"key_prefix"`
}

// QueueConfig picks the event bus: nats, rabbitmq or local.
type QueueConfig struct {
	Provider string `mapstructure:"provider"`
	Group    string `mapstructure:"group"`
}

type NATSConfig struct {
	URL           string        `mapstructure:"url"`
	MaxReconnects int           `mapstructure:"max_reconnects"`
	ReconnectWait time.Duration `mapstructure:"reconnect_wait"`
	Timeout       time.Duration `mapstructure:"timeout"`
}

type RabbitMQConfig struct {
	URL string `mapstructure:"url"`
}

type JWTConfig struct {
	Secret   string `mapstructure:"secret"`
	Issuer   string `mapstructure:"issuer"`
	Audience string `mapstructure:"audience"`
}

type VaultConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	Address    string `mapstructure:"address"`
	Token      string `mapstructure:"token"`
	MountPath  string `mapstructure:"mount_path"`
	SecretPath string `mapstructure:"secret_path"`
}

type OpenTelemetryConfig struct {
	Enabled     bool         `mapstructure:"enabled"`
	Jaeger      JaegerConfig `mapstructure:"jaeger"`
	ServiceName string       `mapstructure:"service_name"`
}

type JaegerConfig struct {
	Endpoint     string  `mapstructure:"endpoint"`
	SamplerParam float64 `mapstructure:"sampler_param"`
}

type PrometheusConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type CircuitBreakerConfig struct {
	Enabled          bool          `mapstructure:"enabled"`
	MaxRequests      int           `mapstructure:"max_requests"`
	Interval         time.Duration `mapstructure:"interval"`
	Timeout          time.Duration `mapstructure:"timeout"`
	FailureThreshold float64       `mapstructure:"failure_threshold"`
}

type CORSConfig struct {
	Enabled        bool     `mapstructure:"enabled"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	AllowedMethods []string `mapstructure:"allowed_methods"`
	AllowedHeaders []string `mapstructure:"allowed_headers"`
	MaxAge         int      `mapstructure:"max_age"`
	Credentials    bool     `mapstructure:"credentials"`
}

type NotificationConfig struct {
	Email EmailConfig `mapstructure:"email"`
}

type EmailConfig struct {
	Enabled     bool       `mapstructure:"enabled"`
	Provider    string     `mapstructure:"provider"` // sendgrid, smtp
	APIKey      string     `mapstructure:"api_key"`
	From        string     `mapstructure:"from"`
	FromName    string     `mapstructure:"from_name"`
	Recipients  []string   `mapstructure:"recipients"`
	MinPriority string     `mapstructure:"min_priority"`
	BaseURL     string     `mapstructure:"base_url"` // back-office link in alert mails
	SMTP        SMTPConfig `mapstructure:"smtp"`
}

type SMTPConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	UseTLS   bool   `mapstructure:"use_tls"`
}

type CacheConfig struct {
	AlertCountTTL time.Duration `mapstructure:"alert_count_ttl"`
}

// AlertsConfig holds the trigger thresholds and the sweep schedule.
// Percentages are expressed as 0-100.
type AlertsConfig struct {
	SweepEnabled  bool          `mapstructure:"sweep_enabled"`
	SweepInterval time.Duration `mapstructure:"sweep_interval"`
	SweepLockTTL  time.Duration `mapstructure:"sweep_lock_ttl"`

	LowStockPercent        float64       `mapstructure:"low_stock_percent"`
	ShiftMaxHours          float64       `mapstructure:"shift_max_hours"`
	ShiftBlockHours        float64       `mapstructure:"shift_block_hours"`
	CashTolerancePercent   float64       `mapstructure:"cash_tolerance_percent"`
	CashAbsoluteThreshold  float64       `mapstructure:"cash_absolute_threshold"`
	CashBlockThreshold     float64       `mapstructure:"cash_block_threshold"`
	CashHighPercent        float64       `mapstructure:"cash_high_percent"`
	IndexMinPercent        float64       `mapstructure:"index_min_percent"`
	IndexMinUnits          float64       `mapstructure:"index_min_units"`
	IndexHighPercent       float64       `mapstructure:"index_high_percent"`
	IndexHighUnits         float64       `mapstructure:"index_high_units"`
	CreditWarningPercent   float64       `mapstructure:"credit_warning_percent"`
	CreditHysteresis       float64       `mapstructure:"credit_hysteresis"`
	MaintenanceLookahead   time.Duration `mapstructure:"maintenance_lookahead"`
	MaintenanceMediumAhead time.Duration `mapstructure:"maintenance_medium_ahead"`
	VarianceLookback       time.Duration `mapstructure:"variance_lookback"`
}
