// File: utils/cache.go
package utils

import (
	"context"
	"fmt"
	"time"

	"randevu/config"

	"github.com/go-redis/redis/v8"
)

// NewCacheClient builds and pings the Redis client backing the availability
// cache. The client is handed to the services that need it rather than kept
// as package state.
func NewCacheClient() (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisCacheDB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, err := client.Ping(ctx).Result(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis (cache): %w", err)
	}
	return client, nil
}
