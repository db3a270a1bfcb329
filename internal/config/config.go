package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

const envPrefix = "MIDAS"

type Config struct {
	// Queue
	Brokers      []string
	Topic        string
	GroupID      string
	PollTimeout  time.Duration
	OutcomeTopic string // empty disables outcome publishing

	// Incentive service
	IncentiveURL     string
	IncentiveTimeout time.Duration

	// Fraud guard
	FraudThreshold decimal.Decimal

	// Account/ledger store
	DatabaseDriver string
	DatabaseURL    string

	// Balance API
	HTTPAddr string

	// Logging
	Environment string
	LogLevel    string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("queue_endpoint", "localhost:9092")
	v.SetDefault("topic", "midas-transactions")
	v.SetDefault("group_id", "midas-engine")
	v.SetDefault("poll_timeout", "1s")
	v.SetDefault("outcome_topic", "")
	v.SetDefault("incentive_url", "http://localhost:8080/incentive")
	v.SetDefault("incentive_timeout", "2s")
	v.SetDefault("fraud_threshold", "2000")
	v.SetDefault("database_driver", "sqlite")
	v.SetDefault("database_url", "file:midas_bank.db?_busy_timeout=5000")
	v.SetDefault("http_addr", ":8000")
	v.SetDefault("environment", "production")
	v.SetDefault("log_level", "")
}

// Load reads .env (if present), then the optional YAML file at path, then
// MIDAS_* environment variables. Later sources override earlier ones.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	threshold, err := decimal.NewFromString(v.GetString("fraud_threshold"))
	if err != nil {
		return nil, fmt.Errorf("fraud_threshold: %w", err)
	}

	cfg := &Config{
		Brokers:          splitList(v.GetString("queue_endpoint")),
		Topic:            strings.TrimSpace(v.GetString("topic")),
		GroupID:          strings.TrimSpace(v.GetString("group_id")),
		PollTimeout:      v.GetDuration("poll_timeout"),
		OutcomeTopic:     v.GetString("outcome_topic"),
		IncentiveURL:     v.GetString("incentive_url"),
		IncentiveTimeout: v.GetDuration("incentive_timeout"),
		FraudThreshold:   threshold,
		DatabaseDriver:   strings.ToLower(v.GetString("database_driver")),
		DatabaseURL:      v.GetString("database_url"),
		HTTPAddr:         v.GetString("http_addr"),
		Environment:      v.GetString("environment"),
		LogLevel:         v.GetString("log_level"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []error

	if len(c.Brokers) == 0 {
		errs = append(errs, errors.New("queue_endpoint is required"))
	}
	if c.Topic == "" {
		errs = append(errs, errors.New("topic is required"))
	}
	if c.GroupID == "" {
		errs = append(errs, errors.New("group_id is required"))
	}
	if c.PollTimeout <= 0 {
		errs = append(errs, errors.New("poll_timeout must be positive"))
	}
	if c.IncentiveURL == "" {
		errs = append(errs, errors.New("incentive_url is required"))
	}
	if c.IncentiveTimeout <= 0 {
		errs = append(errs, errors.New("incentive_timeout must be positive"))
	}
	if c.FraudThreshold.IsNegative() {
		errs = append(errs, errors.New("fraud_threshold must not be negative"))
	}
	switch c.DatabaseDriver {
	case "memory", "sqlite", "postgres":
	default:
		errs = append(errs, fmt.Errorf("unknown database_driver %q", c.DatabaseDriver))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
