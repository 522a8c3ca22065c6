package testutils

import (
	"context"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"

	"github.com/pantrymatch/server/internal/infrastructure/cache"
	"github.com/pantrymatch/server/internal/infrastructure/config"
)

const redisPort = nat.Port("6379/tcp")

// SetupTestRedis starts Redis 7 and returns a connected client. ExpireNX
// needs Redis 7 or later.
func SetupTestRedis(t *testing.T) (*cache.RedisClient, config.RedisConfig) {
	t.Helper()
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx,
		testcontainers.GenericContainerRequest{
			ContainerRequest: testcontainers.ContainerRequest{
				Image:        "redis:7-alpine",
				ExposedPorts: []string{string(redisPort)},
				WaitingFor: wait.ForLog("Ready to accept connections").
					WithStartupTimeout(30 * time.Second),
			},
			Started: true,
		})
	require.NoError(t, err, "Failed to start redis container")
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("Failed to terminate redis container: %v", err)
		}
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, redisPort)
	require.NoError(t, err)

	cfg := config.RedisConfig{
		Enabled:      true,
		Host:         host,
		Port:         port.Int(),
		PoolSize:     5,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	}
	client, err := cache.NewRedisClient(ctx, &cfg, zap.NewNop())
	require.NoError(t, err, "Failed to connect to test redis")
	t.Cleanup(func() { _ = client.Close() })

	return client, cfg
}
