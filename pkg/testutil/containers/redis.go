//go:build integration

package containers

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"

	"menuapi/internal/platform/config"
	redisclient "menuapi/internal/platform/redis"
)

const redisImage = "redis:7-alpine"

// RedisContainer backs the menu cache in integration tests. Client is built
// through the same constructor the server uses.
type RedisContainer struct {
	Container *tcredis.RedisContainer
	URL       string
	Client    *redis.Client
}

func startRedis() (*RedisContainer, error) {
	ctx := context.Background()
	container, err := tcredis.Run(ctx, redisImage)
	if err != nil {
		return nil, fmt.Errorf("start %s: %w", redisImage, err)
	}
	stop := func() { _ = container.Terminate(ctx) }

	url, err := container.ConnectionString(ctx)
	if err != nil {
		stop()
		return nil, fmt.Errorf("redis connection string: %w", err)
	}
	rc, err := redisclient.New(ctx, config.RedisConfig{URL: url, PoolSize: 4})
	if err != nil {
		stop()
		return nil, err
	}
	return &RedisContainer{Container: container, URL: url, Client: rc.Client}, nil
}

// FlushAll drops every cached menu so suites start cold.
func (r *RedisContainer) FlushAll(ctx context.Context) error {
	return r.Client.FlushAll(ctx).Err()
}
