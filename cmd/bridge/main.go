package main

import (
	"github.com/edgerelay/kafka-redis-bridge/pkg/config"
	"github.com/edgerelay/kafka-redis-bridge/pkg/run"
)

func main() {
	// parse config from the environment, will exit in case of errors.
	cfg := config.Parse()

	run.Run(cfg)
}
