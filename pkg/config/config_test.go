package config

import (
	"testing"
	"time"
)

func valid() Config {
	return Config{
		HTTPAddr:      ":8080",
		KafkaBrokers:  "localhost:9092",
		KafkaClientID: "test-client",
		ReadTimeout:   20 * time.Second,
		RedisURI:      "redis://127.0.0.1:6379",
		RedisPoolSize: 10,
		LogLevel:      "info",
	}
}

func TestValid(t *testing.T) {
	cfg, err := validate(valid())
	if err != nil {
		t.Error("valid config should pass: ", err)
	}

	if cfg.RedisURI != "redis://127.0.0.1:6379" {
		t.Error("wrong redis uri")
	}
}

func TestNoHTTPAddr(t *testing.T) {
	cfg := valid()
	cfg.HTTPAddr = ""

	if _, err := validate(cfg); err == nil {
		t.Error("HTTP_ADDR should be required")
	}
}

func TestNoBrokers(t *testing.T) {
	cfg := valid()
	cfg.KafkaBrokers = ""

	if _, err := validate(cfg); err == nil {
		t.Error("KAFKA_BROKERS should be required")
	}
}

func TestBadRedisURI(t *testing.T) {
	cfg := valid()
	cfg.RedisURI = "127.0.0.1:6379"

	if _, err := validate(cfg); err == nil {
		t.Error("non redis:// uri should be rejected")
	}
}

func TestSecureRedisURI(t *testing.T) {
	cfg := valid()
	cfg.RedisURI = "rediss://127.0.0.1:6379"

	if _, err := validate(cfg); err != nil {
		t.Error("rediss:// uri should be accepted: ", err)
	}
}

func TestBadPoolSize(t *testing.T) {
	cfg := valid()
	cfg.RedisPoolSize = 0

	if _, err := validate(cfg); err == nil {
		t.Error("zero pool size should be rejected")
	}
}

func TestBadReadTimeout(t *testing.T) {
	cfg := valid()
	cfg.ReadTimeout = 0

	if _, err := validate(cfg); err == nil {
		t.Error("zero read timeout should be rejected")
	}
}

func TestBadLogLevel(t *testing.T) {
	cfg := valid()
	cfg.LogLevel = "verbose"

	if _, err := validate(cfg); err == nil {
		t.Error("unknown log level should be rejected")
	}
}
