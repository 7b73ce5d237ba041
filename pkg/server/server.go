// Package server exposes the REST surface: Kafka publish, Redis
// get/set, the combined integration flow and a health check.
package server

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/edgerelay/kafka-redis-bridge/pkg/kafka"
)

const serviceName = "kafka-redis-bridge"

// testUserPrefix namespaces the keys written by the integration flow.
const testUserPrefix = "test:user:"

const shutdownTimeout = 5 * time.Second

// Sender publishes a payload to a topic, keyless when key is empty.
type Sender interface {
	Send(topic, key, payload string) error
}

// Store reads and writes string values in the cache.
type Store interface {
	Set(key, value string) error
	Get(key string) (string, bool, error)
}

// Server wires the REST handlers to the producer and cache wrappers.
type Server struct {
	sender Sender
	store  Store
	logger *zap.Logger
	router *gin.Engine
}

// New creates the Server struct with its routes registered.
func New(sender Sender, store Store, logger *zap.Logger) *Server {
	s := &Server{
		sender: sender,
		store:  store,
		logger: logger,
	}
	s.router = s.routes()

	return s
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	api := r.Group("/api/test")
	api.POST("/kafka/send", s.handleKafkaSend)
	api.POST("/redis/set", s.handleRedisSet)
	api.GET("/redis/get", s.handleRedisGet)
	api.POST("/integration/test", s.handleIntegration)
	api.GET("/health", s.handleHealth)

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

// Handler returns the routed http.Handler, also used by tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is done, then shuts down gracefully.
// To be used in an ErrGroup.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.router}

	errc := make(chan error, 1)
	go func() {
		errc <- srv.ListenAndServe()
	}()

	s.logger.Info("http server listening", zap.String("addr", addr))

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}

		s.logger.Info("http server: exit")
		return ctx.Err()
	}
}

// POST /api/test/kafka/send?topic=...&key=...
func (s *Server) handleKafkaSend(c *gin.Context) {
	topic := c.Query("topic")
	if topic == "" {
		c.String(http.StatusBadRequest, "topic is required")
		return
	}
	key := strings.TrimSpace(c.Query("key"))

	body, err := c.GetRawData()
	if err != nil {
		c.String(http.StatusInternalServerError, "Error sending message: "+err.Error())
		return
	}

	if err := s.sender.Send(topic, key, string(body)); err != nil {
		s.logger.Error("kafka send failed", zap.String("topic", topic), zap.Error(err))
		c.String(http.StatusInternalServerError, "Error sending message: "+err.Error())
		return
	}

	s.logger.Info("kafka send accepted", zap.String("topic", topic), zap.String("key", key))
	c.String(http.StatusOK, "Message sent to Kafka topic: "+topic)
}

// POST /api/test/redis/set?key=...
func (s *Server) handleRedisSet(c *gin.Context) {
	key := c.Query("key")
	if key == "" {
		c.String(http.StatusBadRequest, "key is required")
		return
	}

	body, err := c.GetRawData()
	if err != nil {
		c.String(http.StatusInternalServerError, "Error setting value: "+err.Error())
		return
	}

	if err := s.store.Set(key, string(body)); err != nil {
		s.logger.Error("redis set failed", zap.String("key", key), zap.Error(err))
		c.String(http.StatusInternalServerError, "Error setting value: "+err.Error())
		return
	}

	c.String(http.StatusOK, "Value set in Redis for key: "+key)
}

// GET /api/test/redis/get?key=...
func (s *Server) handleRedisGet(c *gin.Context) {
	key := c.Query("key")
	if key == "" {
		c.String(http.StatusBadRequest, "key is required")
		return
	}

	value, ok, err := s.store.Get(key)
	if err != nil {
		s.logger.Error("redis get failed", zap.String("key", key), zap.Error(err))
		c.String(http.StatusInternalServerError, "Error getting value: "+err.Error())
		return
	}
	if !ok {
		c.Status(http.StatusNotFound)
		return
	}

	c.String(http.StatusOK, value)
}

// POST /api/test/integration/test?userId=...
//
// Publishes the body to the user events topic keyed by userId, then
// mirrors it into the cache. The first failure aborts the flow.
func (s *Server) handleIntegration(c *gin.Context) {
	userID := c.Query("userId")
	if userID == "" {
		c.String(http.StatusBadRequest, "userId is required")
		return
	}

	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"status": "error", "message": err.Error(), "userId": userID,
		})
		return
	}
	data := string(body)

	if err := s.sender.Send(kafka.UserEventsTopic, userID, data); err != nil {
		s.logger.Error("integration publish failed", zap.String("user_id", userID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"status": "error", "message": err.Error(), "userId": userID,
		})
		return
	}

	redisKey := testUserPrefix + userID
	if err := s.store.Set(redisKey, data); err != nil {
		s.logger.Error("integration cache store failed", zap.String("key", redisKey), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"status": "error", "message": err.Error(), "userId": userID,
		})
		return
	}

	s.logger.Info("integration flow done", zap.String("user_id", userID), zap.String("key", redisKey))
	c.JSON(http.StatusOK, gin.H{
		"status":   "success",
		"message":  "Data sent to Kafka and stored in Redis",
		"userId":   userID,
		"redisKey": redisKey,
	})
}

// GET /api/test/health
func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "UP",
		"service":   serviceName,
		"timestamp": strconv.FormatInt(time.Now().UnixMilli(), 10),
	})
}
