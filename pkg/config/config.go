// Package config reads and validates service settings
// from environment variables.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/viper"
)

// Config holds everything needed to wire the service:
// the HTTP listen address, Kafka connection settings and
// Redis connection settings.
type Config struct {
	HTTPAddr      string
	KafkaBrokers  string
	KafkaClientID string
	ReadTimeout   time.Duration
	RedisURI      string
	RedisPoolSize int
	LogLevel      string
}

// exit will exit and print the error.
// Used in case of errors during config load/validate.
func exit(e error) {
	fmt.Println(e)
	os.Exit(1)
}

// load reads raw settings from the environment, applying defaults.
func load() Config {
	viper.AutomaticEnv()

	viper.SetDefault("HTTP_ADDR", ":8080")
	viper.SetDefault("KAFKA_BROKERS", "localhost:9092")
	viper.SetDefault("KAFKA_READ_TIMEOUT_SECONDS", 20)
	viper.SetDefault("REDIS_URI", "redis://127.0.0.1:6379")
	viper.SetDefault("REDIS_POOL_SIZE", 10)
	viper.SetDefault("LOG_LEVEL", "info")

	clientID := viper.GetString("KAFKA_CLIENT_ID")
	if clientID == "" {
		clientID, _ = os.Hostname()
	}
	if clientID == "" {
		clientID = "dev-" + uuid.New().String()
	}

	return Config{
		HTTPAddr:      viper.GetString("HTTP_ADDR"),
		KafkaBrokers:  viper.GetString("KAFKA_BROKERS"),
		KafkaClientID: clientID,
		ReadTimeout:   time.Duration(viper.GetInt("KAFKA_READ_TIMEOUT_SECONDS")) * time.Second,
		RedisURI:      viper.GetString("REDIS_URI"),
		RedisPoolSize: viper.GetInt("REDIS_POOL_SIZE"),
		LogLevel:      viper.GetString("LOG_LEVEL"),
	}
}

// validate guards from incorrect settings and generates the final Config.
func validate(cfg Config) (Config, error) {
	switch {
	case cfg.HTTPAddr == "":
		return cfg, fmt.Errorf("HTTP_ADDR is required")
	case cfg.KafkaBrokers == "":
		return cfg, fmt.Errorf("KAFKA_BROKERS is required")
	case !strings.HasPrefix(cfg.RedisURI, "redis://") && !strings.HasPrefix(cfg.RedisURI, "rediss://"):
		return cfg, fmt.Errorf("REDIS_URI must start with redis:// or rediss://")
	case cfg.RedisPoolSize < 1:
		return cfg, fmt.Errorf("REDIS_POOL_SIZE must be at least 1")
	case cfg.ReadTimeout <= 0:
		return cfg, fmt.Errorf("KAFKA_READ_TIMEOUT_SECONDS must be positive")
	}

	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return cfg, fmt.Errorf("LOG_LEVEL must be one of debug, info, warn, error")
	}

	return cfg, nil
}

// Parse loads the environment and returns a validated Config.
func Parse() Config {
	cfg, err := validate(load())
	if err != nil {
		// we exit here instead of returning so that main
		// doesn't have to repeat the error handling.
		exit(err)
	}

	return cfg
}
