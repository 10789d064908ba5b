package config

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

type HTTPConfig struct {
	Host string
	Port int
}

type DBConfig struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime string
}

type AuthConfig struct {
	AccessSecret string
}

type LedgerConfig struct {
	DepositRatio     decimal.Decimal
	PayRetryAttempts int
}

type Config struct {
	Environment string
	HTTP        HTTPConfig
	DB          DBConfig
	Auth        AuthConfig
	Ledger      LedgerConfig
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("app")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("./deploy")
	v.AddConfigPath("./internal/config")
	v.AutomaticEnv()

	_ = v.ReadInConfig()

	cfg := &Config{
		Environment: v.GetString("APP_ENV"),
		HTTP: HTTPConfig{
			Host: v.GetString("HTTP_HOST"),
			Port: v.GetInt("HTTP_PORT"),
		},
		DB: DBConfig{
			DSN:             v.GetString("DB_DSN"),
			MaxOpenConns:    v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:    v.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: v.GetString("DB_CONN_MAX_LIFETIME"),
		},
		Auth: AuthConfig{
			AccessSecret: v.GetString("JWT_ACCESS_SECRET"),
		},
		Ledger: LedgerConfig{
			PayRetryAttempts: v.GetInt("LEDGER_PAY_RETRY_ATTEMPTS"),
		},
	}

	if raw := v.GetString("LEDGER_DEPOSIT_RATIO"); raw != "" {
		ratio, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, fmt.Errorf("LEDGER_DEPOSIT_RATIO is not a valid decimal: %w", err)
		}
		cfg.Ledger.DepositRatio = ratio
	}

	if cfg.Environment == "" {
		cfg.Environment = "development"
	}
	if cfg.HTTP.Host == "" {
		cfg.HTTP.Host = "0.0.0.0"
	}
	if cfg.HTTP.Port == 0 {
		cfg.HTTP.Port = 7090
	}
	if cfg.Ledger.DepositRatio.IsZero() {
		cfg.Ledger.DepositRatio = decimal.NewFromFloat(0.25)
	}
	if cfg.Ledger.PayRetryAttempts == 0 {
		cfg.Ledger.PayRetryAttempts = 3
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func validate(cfg *Config) error {
	if cfg.DB.DSN == "" {
		return fmt.Errorf("DB_DSN is required")
	}
	if cfg.Auth.AccessSecret == "" {
		return fmt.Errorf("JWT_ACCESS_SECRET is required")
	}
	if cfg.Ledger.DepositRatio.IsNegative() || cfg.Ledger.DepositRatio.GreaterThan(decimal.NewFromInt(1)) {
		return fmt.Errorf("LEDGER_DEPOSIT_RATIO must be between 0 and 1")
	}
	if cfg.Ledger.PayRetryAttempts < 1 {
		return fmt.Errorf("LEDGER_PAY_RETRY_ATTEMPTS must be positive")
	}
	return nil
}
