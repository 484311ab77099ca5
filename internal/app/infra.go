package app

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/seu-repo/sigec-posto/internal/adapter/cache"
	"github.com/seu-repo/sigec-posto/internal/adapter/queue"
	"github.com/seu-repo/sigec-posto/internal/ports"
	"github.com/seu-repo/sigec-posto/pkg/config"
)

// Coordination is the cache and the lock shared between replicas.
type Coordination struct {
	Cache  ports.Cache
	Locker ports.Locker
}

// OpenCoordination uses Redis when a URL is configured and falls back to
// process-local implementations otherwise. The local locker only excludes
// sweeps inside one process.
func OpenCoordination(cfg config.RedisConfig, log *zap.Logger) (*Coordination, error) {
	if cfg.URL == "" {
		log.Warn("No Redis configured; cache and sweep lock are process-local")
		return &Coordination{
			Cache:  cache.NewLocalCache(time.Minute, log),
			Locker: cache.NewLocalLocker(),
		}, nil
	}

	client, err := cache.Connect(cfg.URL, log)
	if err != nil {
		return nil, err
	}
	return &Coordination{
		Cache:  cache.NewRedisCache(client, cfg.KeyPrefix, log),
		Locker: cache.NewRedisLocker(client, cfg.KeyPrefix, log),
	}, nil
}

func (c *Coordination) Close() error {
	return c.Cache.Close()
}

// OpenQueue connects the configured event bus.
func OpenQueue(cfg *config.Config, log *zap.Logger) (queue.MessageQueue, error) {
	switch cfg.Queue.Provider {
	case "nats":
		return queue.NewNATSQueue(cfg.NATS.URL, log)
	case "rabbitmq":
		return queue.NewRabbitMQQueue(cfg.RabbitMQ.URL, cfg.Queue.Group, log)
	case "local", "":
		return queue.NewLocalQueue(log), nil
	}
	return nil, fmt.Errorf("unknown queue provider: %s", cfg.Queue.Provider)
}
