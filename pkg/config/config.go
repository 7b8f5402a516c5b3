package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = ""

	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App          AppConfig
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	Processor    ProcessorConfig
	Fees         FeesConfig
	Payouts      PayoutsConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"FRESHWAX_APP_ENV" required:"true"`
	Port         string `envconfig:"FRESHWAX_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"FRESHWAX_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"FRESHWAX_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"FRESHWAX_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"FRESHWAX_DB_DSN"`
	Driver string `envconfig:"FRESHWAX_DB_DRIVER" default:"postgres"`

	MaxOpenConns    int           `envconfig:"FRESHWAX_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"FRESHWAX_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"FRESHWAX_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"FRESHWAX_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

func (d DBConfig) validate() error {
	if d.DSN == "" {
		return fmt.Errorf("FRESHWAX_DB_DSN is required")
	}
	switch d.Driver {
	case "postgres", "sqlite":
		return nil
	default:
		return fmt.Errorf("unsupported db driver %q", d.Driver)
	}
}

type RedisConfig struct {
	URL          string        `envconfig:"FRESHWAX_REDIS_URL" required:"true"`
	Address      string        `envconfig:"FRESHWAX_REDIS_ADDR"`
	Password     string        `envconfig:"FRESHWAX_REDIS_PASSWORD"`
	DB           int           `envconfig:"FRESHWAX_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"FRESHWAX_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"FRESHWAX_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"FRESHWAX_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"FRESHWAX_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"FRESHWAX_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// ProcessorConfig carries credentials for the payment processor's sub-account
// transfer API and the shared secret used to verify inbound webhooks.
type ProcessorConfig struct {
	BaseURL            string        `envconfig:"FRESHWAX_PROCESSOR_BASE_URL" required:"true"`
	APIKey             string        `envconfig:"FRESHWAX_PROCESSOR_API_KEY" required:"true"`
	WebhookSecret      string        `envconfig:"FRESHWAX_PROCESSOR_WEBHOOK_SECRET" required:"true"`
	TransferTimeout    time.Duration `envconfig:"FRESHWAX_PROCESSOR_TRANSFER_TIMEOUT" default:"20s"`
	SignatureTolerance time.Duration `envconfig:"FRESHWAX_PROCESSOR_SIGNATURE_TOLERANCE" default:"5m"`
}

// FeesConfig holds the platform's fee policy. Processing fees are charged once
// per order (percentage plus fixed) and split equally across sellers.
type FeesConfig struct {
	ProcessorPercent  float64 `envconfig:"FRESHWAX_FEE_PROCESSOR_PERCENT" default:"1.4"`
	ProcessorFixed    float64 `envconfig:"FRESHWAX_FEE_PROCESSOR_FIXED" default:"0.20"`
	PlatformMusicRate float64 `envconfig:"FRESHWAX_FEE_PLATFORM_MUSIC_PERCENT" default:"1"`
	PlatformMerchRate float64 `envconfig:"FRESHWAX_FEE_PLATFORM_MERCH_PERCENT" default:"5"`
}

type PayoutsConfig struct {
	SweepBatchSize int           `envconfig:"FRESHWAX_PAYOUT_SWEEP_BATCH_SIZE" default:"25"`
	SweepInterval  time.Duration `envconfig:"FRESHWAX_PAYOUT_SWEEP_INTERVAL" default:"1h"`
	Currency       string        `envconfig:"FRESHWAX_PAYOUT_CURRENCY" default:"GBP"`
	IdempotencyTTL time.Duration `envconfig:"FRESHWAX_WEBHOOK_IDEMPOTENCY_TTL" default:"720h"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"FRESHWAX_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"FRESHWAX_AUTO_MIGRATE" default:"false"`
}
