package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Kafka     KafkaConfig
	JWT       JWTConfig
	Payroll   PayrollConfig
	Statutory StatutoryConfig
	Worker    WorkerConfig
}

type AppConfig struct {
	Port          string
	Env           string
	RBACModelPath string
}

type DatabaseConfig struct {
	Host       string
	Port       string
	User       string
	Password   string
	Name       string
	SSLMode    string
	MaxRetries int
}

// DSN renders the libpq connection string used by the gorm postgres driver.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		d.Host, d.User, d.Password, d.Name, d.Port, d.SSLMode,
	)
}

type RedisConfig struct {
	Addr string
}

type KafkaConfig struct {
	Broker string
}

type JWTConfig struct {
	Secret string
}

type PayrollConfig struct {
	PayslipDir         string
	ResolveCacheTTL    time.Duration
	BuildConcurrency   int
	IdempotencyLockTTL time.Duration
}

// StatutoryConfig overrides the default statutory rule set. Zero values keep
// the defaults.
type StatutoryConfig struct {
	EPFRate          decimal.Decimal
	EPFWageCeiling   decimal.Decimal
	ESIRate          decimal.Decimal
	ESIGrossLimit    decimal.Decimal
	LWFAmount        decimal.Decimal
	GratuityRate     decimal.Decimal
	BonusRate        decimal.Decimal
	BonusWageCeiling decimal.Decimal
}

type WorkerConfig struct {
	OutboxPollInterval time.Duration
	OutboxRetention    time.Duration
	OutboxPurgeSpec    string
}

// Load reads .env (when present) and the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		App: AppConfig{
			Port:          getEnv("PORT", "3000"),
			Env:           getEnv("APP_ENV", "development"),
			RBACModelPath: getEnv("RBAC_MODEL_PATH", "internal/rbac/infra/model.conf"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Name:     getEnv("DB_NAME", "payroll"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Addr: getEnv("REDIS_ADDR", "localhost:6379"),
		},
		Kafka: KafkaConfig{
			Broker: getEnv("KAFKA_BROKER", ""),
		},
		JWT: JWTConfig{
			Secret: getEnv("JWT_SECRET", ""),
		},
		Worker: WorkerConfig{
			OutboxPurgeSpec: getEnv("CRON_OUTBOX_PURGE", "0 3 * * *"),
		},
		Payroll: PayrollConfig{
			PayslipDir: getEnv("PAYSLIP_DIR", "storage/payslips"),
		},
	}

	var err error
	if cfg.Database.MaxRetries, err = getInt("DB_MAX_RETRIES", 5); err != nil {
		return nil, err
	}
	if cfg.Payroll.BuildConcurrency, err = getInt("PAYROLL_BUILD_CONCURRENCY", 4); err != nil {
		return nil, err
	}
	if cfg.Payroll.ResolveCacheTTL, err = getDuration("RESOLVE_CACHE_TTL", 10*time.Minute); err != nil {
		return nil, err
	}
	if cfg.Payroll.IdempotencyLockTTL, err = getDuration("IDEMPOTENCY_LOCK_TTL", 2*time.Minute); err != nil {
		return nil, err
	}
	if cfg.Worker.OutboxPollInterval, err = getDuration("OUTBOX_POLL_INTERVAL", 3*time.Second); err != nil {
		return nil, err
	}
	if cfg.Worker.OutboxRetention, err = getDuration("OUTBOX_RETENTION", 7*24*time.Hour); err != nil {
		return nil, err
	}

	statutoryEnv := []struct {
		key string
		dst *decimal.Decimal
	}{
		{"STATUTORY_EPF_RATE", &cfg.Statutory.EPFRate},
		{"STATUTORY_EPF_WAGE_CEILING", &cfg.Statutory.EPFWageCeiling},
		{"STATUTORY_ESI_RATE", &cfg.Statutory.ESIRate},
		{"STATUTORY_ESI_GROSS_LIMIT", &cfg.Statutory.ESIGrossLimit},
		{"STATUTORY_LWF_AMOUNT", &cfg.Statutory.LWFAmount},
		{"STATUTORY_GRATUITY_RATE", &cfg.Statutory.GratuityRate},
		{"STATUTORY_BONUS_RATE", &cfg.Statutory.BonusRate},
		{"STATUTORY_BONUS_WAGE_CEILING", &cfg.Statutory.BonusWageCeiling},
	}
	for _, s := range statutoryEnv {
		if *s.dst, err = getDecimal(s.key); err != nil {
			return nil, err
		}
	}

	if cfg.App.Env == "production" && cfg.JWT.Secret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required in production")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func getDecimal(key string) (decimal.Decimal, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
