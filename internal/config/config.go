package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"auction-storefront/utils"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// Config holds the runtime settings of the storefront
type Config struct {
	Port     string
	LogLevel string
	GinMode  string

	JWTSecret string
	JWTTTL    time.Duration

	BidIncrement decimal.Decimal
	TickInterval time.Duration

	KafkaBrokers     []string
	KafkaTopicPrefix string
}

// Load reads an optional .env file, then the environment, applying defaults
// for anything unset. Malformed values are errors.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("config: load .env: %w", err)
	}

	cfg := &Config{
		Port:             ":" + getEnv("PORT", "8080"),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		GinMode:          getEnv("GIN_MODE", "release"),
		JWTSecret:        getEnv("JWT_SECRET", ""),
		KafkaTopicPrefix: getEnv("KAFKA_TOPIC_PREFIX", "storefront"),
	}

	var err error
	if cfg.JWTTTL, err = time.ParseDuration(getEnv("JWT_TTL", "24h")); err != nil {
		return nil, fmt.Errorf("config: JWT_TTL: %w", err)
	}
	if cfg.TickInterval, err = time.ParseDuration(getEnv("TICK_INTERVAL", "1s")); err != nil {
		return nil, fmt.Errorf("config: TICK_INTERVAL: %w", err)
	}
	if cfg.BidIncrement, err = decimal.NewFromString(getEnv("BID_INCREMENT", "1.00")); err != nil {
		return nil, fmt.Errorf("config: BID_INCREMENT: %w", err)
	}
	if !cfg.BidIncrement.IsPositive() {
		return nil, fmt.Errorf("config: BID_INCREMENT must be positive, got %s", cfg.BidIncrement)
	}

	if brokers := getEnv("KAFKA_BROKERS", ""); brokers != "" {
		for _, b := range strings.Split(brokers, ",") {
			if b = strings.TrimSpace(b); b != "" {
				cfg.KafkaBrokers = append(cfg.KafkaBrokers, b)
			}
		}
	}

	if cfg.JWTSecret == "" {
		cfg.JWTSecret = utils.GenerateID()
		utils.Warn("JWT_SECRET not set, using an ephemeral secret; tokens will not survive a restart", nil)
	}

	utils.Info("configuration loaded", map[string]any{
		"port":          cfg.Port,
		"log_level":     cfg.LogLevel,
		"bid_increment": cfg.BidIncrement.StringFixed(2),
		"tick_interval": cfg.TickInterval.String(),
		"kafka_brokers": len(cfg.KafkaBrokers),
	})
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}
