// Package redis wraps the go-redis client behind the two roles the
// application needs: a TTL cache and a fire-and-forget task queue.
package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// Config holds connection parameters for the Redis client.
type Config struct {
	Addr     string
	Password string
	DB       int
}

// NewClient connects to Redis and verifies the connection with a ping.
func NewClient(cfg Config) (*goredis.Client, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        cfg.Addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return rdb, nil
}

// Pinger adapts the client to the error-returning pinger shape the
// health check expects.
type Pinger struct {
	rdb *goredis.Client
}

// NewPinger wraps an existing client.
func NewPinger(rdb *goredis.Client) Pinger {
	return Pinger{rdb: rdb}
}

// Ping checks connectivity.
func (p Pinger) Ping(ctx context.Context) error {
	return p.rdb.Ping(ctx).Err()
}
