package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"

	"github.com/seu-repo/sigec-posto/internal/domain"
)

func Load() (*Config, error) {
	return LoadFrom("")
}

// LoadFrom reads the config file at path, or searches the usual locations
// when path is empty. Environment variables override file values.
func LoadFrom(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
		v.AddConfigPath("/app/configs")
	}

	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Allow common env vars without APP_ prefix for Docker/VM deploys
	v.BindEnv("http.port", "HTTP_PORT", "APP_HTTP_PORT")
	v.BindEnv("database.url", "DATABASE_URL", "APP_DATABASE_URL")
	v.BindEnv("redis.url", "REDIS_URL", "APP_REDIS_URL")
	v.BindEnv("nats.url", "NATS_URL", "APP_NATS_URL")
	v.BindEnv("rabbitmq.url", "RABBITMQ_URL", "APP_RABBITMQ_URL")
	v.BindEnv("jwt.secret", "JWT_SECRET", "APP_JWT_SECRET")
	v.BindEnv("vault.token", "VAULT_TOKEN", "APP_VAULT_TOKEN")
	v.BindEnv("notification.email.api_key", "SENDGRID_API_KEY", "APP_NOTIFICATION_EMAIL_API_KEY")
	v.BindEnv("app.environment", "APP_ENVIRONMENT")
	v.BindEnv("logging.level", "LOG_LEVEL")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || path != "" {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "sigec-posto")
	v.SetDefault("app.version", "dev")
	v.SetDefault("app.environment", "development")

	v.SetDefault("http.port", 8080)
	v.SetDefault("http.read_timeout", 15*time.Second)
	v.SetDefault("http.write_timeout", 15*time.Second)
	v.SetDefault("http.idle_timeout", 60*time.Second)
	v.SetDefault("grpc.port", 9090)

	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", 5*time.Minute)
	v.SetDefault("database.conn_max_idle_time", 5*time.Minute)
	v.SetDefault("redis.key_prefix", "sigec:")

	v.SetDefault("queue.provider", "nats")
	v.SetDefault("queue.group", "sigec-posto")
	v.SetDefault("nats.max_reconnects", 10)
	v.SetDefault("nats.reconnect_wait", 2*time.Second)
	v.SetDefault("nats.timeout", 5*time.Second)

	v.SetDefault("vault.mount_path", "secret")
	v.SetDefault("vault.secret_path", "sigec-posto")

	v.SetDefault("prometheus.enabled", true)
	v.SetDefault("prometheus.path", "/metrics")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("circuit_breaker.max_requests", 3)
	v.SetDefault("circuit_breaker.interval", 60*time.Second)
	v.SetDefault("circuit_breaker.timeout", 30*time.Second)
	v.SetDefault("circuit_breaker.failure_threshold", 0.6)

	v.SetDefault("cors.allowed_origins", []string{"*"})
	v.SetDefault("cors.allowed_methods", []string{"GET", "POST", "PATCH", "OPTIONS"})
	v.SetDefault("cors.allowed_headers", []string{"Origin", "Content-Type", "Accept", "Authorization"})
	v.SetDefault("cors.max_age", 86400)

	v.SetDefault("notification.email.provider", "sendgrid")
	v.SetDefault("notification.email.from_name", "SIGEC Posto")
	v.SetDefault("notification.email.min_priority", string(domain.AlertPriorityHigh))
	v.SetDefault("notification.email.smtp.port", 587)

	v.SetDefault("cache.alert_count_ttl", 30*time.Second)

	th := domain.DefaultAlertThresholds()
	v.SetDefault("alerts.sweep_enabled", true)
	v.SetDefault("alerts.sweep_interval", 5*time.Minute)
	v.SetDefault("alerts.sweep_lock_ttl", 4*time.Minute)
	v.SetDefault("alerts.low_stock_percent", th.LowStockPercent.InexactFloat64())
	v.SetDefault("alerts.shift_max_hours", th.ShiftMaxHours)
	v.SetDefault("alerts.shift_block_hours", th.ShiftBlockHours)
	v.SetDefault("alerts.cash_tolerance_percent", th.CashTolerancePercent.InexactFloat64())
	v.SetDefault("alerts.cash_absolute_threshold", th.CashAbsoluteThreshold.InexactFloat64())
	v.SetDefault("alerts.cash_block_threshold", th.CashBlockThreshold.InexactFloat64())
	v.SetDefault("alerts.cash_high_percent", th.CashHighPercent.InexactFloat64())
	v.SetDefault("alerts.index_min_percent", th.IndexMinPercent.InexactFloat64())
	v.SetDefault("alerts.index_min_units", th.IndexMinUnits.InexactFloat64())
	v.SetDefault("alerts.index_high_percent", th.IndexHighPercent.InexactFloat64())
	v.SetDefault("alerts.index_high_units", th.IndexHighUnits.InexactFloat64())
	v.SetDefault("alerts.credit_warning_percent", th.CreditWarningPercent.InexactFloat64())
	v.SetDefault("alerts.credit_hysteresis", th.CreditHysteresis.InexactFloat64())
	v.SetDefault("alerts.maintenance_lookahead", th.MaintenanceLookahead)
	v.SetDefault("alerts.maintenance_medium_ahead", th.MaintenanceMediumAhead)
	v.SetDefault("alerts.variance_lookback", th.VarianceLookback)
}

// Validate rejects combinations the binaries cannot start with.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "postgres":
		if c.Database.URL == "" && !c.Vault.Enabled {
			return fmt.Errorf("database.url is required for the postgres driver")
		}
	case "memory":
	default:
		return fmt.Errorf("unknown database driver %q", c.Database.Driver)
	}

	switch c.Queue.Provider {
	case "nats", "rabbitmq", "local":
	default:
		return fmt.Errorf("unknown queue provider %q", c.Queue.Provider)
	}

	if c.Alerts.SweepEnabled && c.Alerts.SweepInterval <= 0 {
		return fmt.Errorf("alerts.sweep_interval must be positive")
	}
	if c.Alerts.CreditHysteresis < 0 || c.Alerts.CreditHysteresis > c.Alerts.CreditWarningPercent {
		return fmt.Errorf("alerts.credit_hysteresis must be between 0 and credit_warning_percent")
	}
	if c.Alerts.ShiftBlockHours < c.Alerts.ShiftMaxHours {
		return fmt.Errorf("alerts.shift_block_hours must not be below shift_max_hours")
	}
	return nil
}

// Thresholds converts the alert section into the rule thresholds.
func (a AlertsConfig) Thresholds() *domain.AlertThresholds {
	return &domain.AlertThresholds{
		LowStockPercent:        decimal.NewFromFloat(a.LowStockPercent),
		ShiftMaxHours:          a.ShiftMaxHours,
		ShiftBlockHours:        a.ShiftBlockHours,
		CashTolerancePercent:   decimal.NewFromFloat(a.CashTolerancePercent),
		CashAbsoluteThreshold:  decimal.NewFromFloat(a.CashAbsoluteThreshold),
		CashBlockThreshold:     decimal.NewFromFloat(a.CashBlockThreshold),
		CashHighPercent:        decimal.NewFromFloat(a.CashHighPercent),
		IndexMinPercent:        decimal.NewFromFloat(a.IndexMinPercent),
		IndexMinUnits:          decimal.NewFromFloat(a.IndexMinUnits),
		IndexHighPercent:       decimal.NewFromFloat(a.IndexHighPercent),
		IndexHighUnits:         decimal.NewFromFloat(a.IndexHighUnits),
		CreditWarningPercent:   decimal.NewFromFloat(a.CreditWarningPercent),
		CreditHysteresis:       decimal.NewFromFloat(a.CreditHysteresis),
		MaintenanceLookahead:   a.MaintenanceLookahead,
		MaintenanceMediumAhead: a.MaintenanceMediumAhead,
		VarianceLookback:       a.VarianceLookback,
	}
}
