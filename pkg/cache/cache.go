// Package cache wraps a Redis pool with the string and JSON
// operations the service needs. All operations log the outcome
// and hand back the client's error untouched; a missing key is
// reported with a boolean, never an error.
package cache

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/mediocregopher/radix/v3"
	"go.uber.org/zap"

	"github.com/edgerelay/kafka-redis-bridge/pkg/metrics"
)

// userEventTTL is the fixed retention for consumed user events.
const userEventTTL = 24 * time.Hour

const userEventPrefix = "user:event:"

// Cache holds references to a Redis client and a logger.
// radix.Client is satisfied by both *radix.Pool and *radix.Cluster.
type Cache struct {
	client radix.Client
	logger *zap.Logger
}

// New creates the Cache struct, used to read/write Redis.
func New(client radix.Client, logger *zap.Logger) *Cache {
	return &Cache{
		client: client,
		logger: logger,
	}
}

// Ping checks connectivity to the Redis server.
func (c *Cache) Ping() error {
	return c.client.Do(radix.Cmd(nil, "PING"))
}

// Set stores a string value under key, without expiry.
// Last write wins; an empty key or value is still attempted.
func (c *Cache) Set(key, value string) error {
	metrics.CacheOps.WithLabelValues("set").Inc()

	if err := c.client.Do(radix.Cmd(nil, "SET", key, value)); err != nil {
		c.logger.Error("cache set failed", zap.String("key", key), zap.Error(err))
		return err
	}

	c.logger.Debug("cache set", zap.String("key", key), zap.Int("value_len", len(value)))
	return nil
}

// SetTTL stores a string value under key with an expiry, after
// which Redis removes the entry on its own.
func (c *Cache) SetTTL(key, value string, ttl time.Duration) error {
	metrics.CacheOps.WithLabelValues("set").Inc()

	px := strconv.FormatInt(ttl.Milliseconds(), 10)
	if err := c.client.Do(radix.Cmd(nil, "SET", key, value, "PX", px)); err != nil {
		c.logger.Error("cache set with ttl failed",
			zap.String("key", key), zap.Duration("ttl", ttl), zap.Error(err))
		return err
	}

	c.logger.Debug("cache set with ttl",
		zap.String("key", key), zap.Int("value_len", len(value)), zap.Duration("ttl", ttl))
	return nil
}

// Get reads the string value under key. The boolean reports
// whether the key existed.
func (c *Cache) Get(key string) (string, bool, error) {
	metrics.CacheOps.WithLabelValues("get").Inc()

	var value string
	mn := radix.MaybeNil{Rcv: &value}
	if err := c.client.Do(radix.Cmd(&mn, "GET", key)); err != nil {
		c.logger.Error("cache get failed", zap.String("key", key), zap.Error(err))
		return "", false, err
	}

	if mn.Nil {
		c.logger.Debug("cache miss", zap.String("key", key))
		return "", false, nil
	}

	c.logger.Debug("cache hit", zap.String("key", key), zap.Int("value_len", len(value)))
	return value, true, nil
}

// Exists reports whether key is present.
func (c *Cache) Exists(key string) (bool, error) {
	metrics.CacheOps.WithLabelValues("exists").Inc()

	var n int
	if err := c.client.Do(radix.Cmd(&n, "EXISTS", key)); err != nil {
		c.logger.Error("cache exists failed", zap.String("key", key), zap.Error(err))
		return false, err
	}

	return n == 1, nil
}

// Delete removes key and its value.
func (c *Cache) Delete(key string) error {
	metrics.CacheOps.WithLabelValues("delete").Inc()

	if err := c.client.Do(radix.Cmd(nil, "DEL", key)); err != nil {
		c.logger.Error("cache delete failed", zap.String("key", key), zap.Error(err))
		return err
	}

	c.logger.Debug("cache delete", zap.String("key", key))
	return nil
}

// Expire sets an expiry on an existing key.
func (c *Cache) Expire(key string, ttl time.Duration) error {
	metrics.CacheOps.WithLabelValues("expire").Inc()

	px := strconv.FormatInt(ttl.Milliseconds(), 10)
	if err := c.client.Do(radix.Cmd(nil, "PEXPIRE", key, px)); err != nil {
		c.logger.Error("cache expire failed",
			zap.String("key", key), zap.Duration("ttl", ttl), zap.Error(err))
		return err
	}

	c.logger.Debug("cache expire", zap.String("key", key), zap.Duration("ttl", ttl))
	return nil
}

// SetJSON marshals v and stores it as a JSON string under key.
func (c *Cache) SetJSON(key string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		c.logger.Error("cache json marshal failed", zap.String("key", key), zap.Error(err))
		return err
	}

	return c.Set(key, string(data))
}

// GetJSON reads the JSON string under key and unmarshals it
// into v. The boolean reports whether the key existed.
func (c *Cache) GetJSON(key string, v interface{}) (bool, error) {
	data, ok, err := c.Get(key)
	if err != nil || !ok {
		return ok, err
	}

	if err := json.Unmarshal([]byte(data), v); err != nil {
		c.logger.Error("cache json unmarshal failed", zap.String("key", key), zap.Error(err))
		return true, err
	}

	return true, nil
}

// CacheUserEvent stores a consumed user event under a fixed
// prefix for 24 hours.
func (c *Cache) CacheUserEvent(userID, eventData string) error {
	key := userEventKey(userID)
	c.logger.Info("caching user event", zap.String("user_id", userID), zap.String("key", key))

	return c.SetTTL(key, eventData, userEventTTL)
}

// UserEvent reads a previously cached user event.
func (c *Cache) UserEvent(userID string) (string, bool, error) {
	return c.Get(userEventKey(userID))
}

func userEventKey(userID string) string {
	return userEventPrefix + userID
}
