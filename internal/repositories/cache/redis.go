// Package cache provides the Redis-backed read-path cache for wallets.
// Cached balances are snapshots; every balance mutation invalidates the
// wallet's entry, and callers that need strong consistency read through
// the repository under the wallet's lock instead.
package cache

import (
	"fmt"

	"github.com/redis/go-redis/v9"
)

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

func NewRedisClient(cfg *RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}
