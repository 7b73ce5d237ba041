// Package run wires the cache, Kafka and HTTP components and
// supervises their goroutines.
package run

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/mediocregopher/radix/v3"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"

	"github.com/edgerelay/kafka-redis-bridge/pkg/cache"
	"github.com/edgerelay/kafka-redis-bridge/pkg/config"
	"github.com/edgerelay/kafka-redis-bridge/pkg/kafka"
	"github.com/edgerelay/kafka-redis-bridge/pkg/server"
	"github.com/edgerelay/kafka-redis-bridge/pkg/signal"
)

const provisionTimeout = 30 * time.Second

// Exit helper
func exit(e error) {
	fmt.Println(e)
	os.Exit(1)
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, err
	}

	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(lvl)

	return zcfg.Build()
}

// Run orchestrates the consumers, the HTTP server and the signal
// handler. It blocks until a signal arrives or a component fails.
func Run(cfg config.Config) {
	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		exit(err)
	}
	defer logger.Sync()

	// create ErrGroup to manage goroutines
	ctx, cancel := context.WithCancel(context.Background())
	g, gctx := errgroup.WithContext(ctx)

	// Start signal handling goroutine
	g.Go(func() error {
		return signal.Run(gctx, cancel, logger)
	})

	pool, err := radix.NewPool("tcp", cfg.RedisURI, cfg.RedisPoolSize)
	if err != nil {
		exit(errors.Wrap(err, "connecting to redis"))
	}
	defer pool.Close()

	store := cache.New(pool, logger)
	if err := store.Ping(); err != nil {
		exit(errors.Wrap(err, "pinging redis"))
	}

	client := kafka.NewClient(cfg, logger)

	producer, err := client.NewProducer()
	if err != nil {
		exit(errors.Wrap(err, "creating producer"))
	}
	defer producer.Close()

	provisionCtx, provisionCancel := context.WithTimeout(gctx, provisionTimeout)
	defer provisionCancel()
	if err := client.EnsureTopics(provisionCtx); err != nil {
		exit(errors.Wrap(err, "provisioning topics"))
	}

	testConsumer, err := client.NewConsumer(kafka.TestTopic, kafka.TestGroup, testTopicHandler(logger))
	if err != nil {
		exit(errors.Wrap(err, "creating test topic consumer"))
	}
	g.Go(func() error {
		return testConsumer.Run(gctx)
	})

	eventConsumer, err := client.NewConsumer(kafka.UserEventsTopic, kafka.UserEventsGroup, userEventHandler(store, logger))
	if err != nil {
		exit(errors.Wrap(err, "creating user events consumer"))
	}
	g.Go(func() error {
		return eventConsumer.Run(gctx)
	})

	srv := server.New(producer, store, logger)
	g.Go(func() error {
		defer cancel()
		return srv.Run(gctx, cfg.HTTPAddr)
	})

	// Block and wait for goroutines
	err = g.Wait()
	if err != nil && err != context.Canceled {
		exit(errors.Wrap(err, "error in process"))
	} else {
		logger.Info("done")
	}
}
