package middleware

import (
	"context"
	"fmt"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/gofiber/fiber/v2"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// startRedis returns a client for REDIS_TEST_ADDR or a throw-away container,
// skipping the test when neither is available.
func startRedis(t *testing.T) *redis.Client {
	t.Helper()
	ping := func(addr string) (*redis.Client, error) {
		client := redis.NewClient(&redis.Options{Addr: addr})
		if err := client.Ping(context.Background()).Err(); err != nil {
			_ = client.Close()
			return nil, err
		}
		return client, nil
	}

	if addr := os.Getenv("REDIS_TEST_ADDR"); addr != "" {
		client, err := ping(addr)
		if err != nil {
			t.Skipf("REDIS_TEST_ADDR unreachable: %v", err)
		}
		t.Cleanup(func() { _ = client.Close() })
		return client
	}

	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Skipf("docker unavailable: %v", err)
	}
	if err := pool.Client.Ping(); err != nil {
		t.Skipf("docker unavailable: %v", err)
	}
	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "redis",
		Tag:        "7",
	}, func(hc *docker.HostConfig) {
		hc.AutoRemove = true
		hc.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		t.Skipf("could not start redis: %v", err)
	}
	t.Cleanup(func() { _ = pool.Purge(resource) })

	var client *redis.Client
	addr := fmt.Sprintf("localhost:%s", resource.GetPort("6379/tcp"))
	require.NoError(t, pool.Retry(func() error {
		var err error
		client, err = ping(addr)
		return err
	}))
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestRedisStorage(t *testing.T) {
	client := startRedis(t)
	storage := NewRedisStorage(client, "test:limiter:")

	val, err := storage.Get("missing")
	require.NoError(t, err)
	assert.Nil(t, val)

	require.NoError(t, storage.Set("a", []byte("1"), time.Minute))
	require.NoError(t, storage.Set("b", []byte("2"), 0))
	val, err = storage.Get("a")
	require.NoError(t, err)
	assert.Equal(t, []byte("1"), val)

	ttl, err := client.TTL(context.Background(), "test:limiter:a").Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))

	require.NoError(t, storage.Delete("a"))
	val, err = storage.Get("a")
	require.NoError(t, err)
	assert.Nil(t, val)

	require.NoError(t, client.Set(context.Background(), "unrelated", "x", 0).Err())
	require.NoError(t, storage.Reset())
	val, err = storage.Get("b")
	require.NoError(t, err)
	assert.Nil(t, val)
	assert.Equal(t, "x", client.Get(context.Background(), "unrelated").Val())
}

func limitedApp(storage fiber.Storage) *fiber.App {
	app := fiber.New()
	app.Use(RateLimiter(2, time.Minute, storage))
	app.Get("/", func(c *fiber.Ctx) error { return c.SendString("ok") })
	app.Get("/health", func(c *fiber.Ctx) error { return c.SendString("ok") })
	return app
}

func hit(t *testing.T, app *fiber.App, path string) int {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, path, nil))
	require.NoError(t, err)
	return resp.StatusCode
}

func TestRateLimiter_Memory(t *testing.T) {
	app := limitedApp(nil)

	assert.Equal(t, fiber.StatusOK, hit(t, app, "/"))
	assert.Equal(t, fiber.StatusOK, hit(t, app, "/"))
	assert.Equal(t, fiber.StatusTooManyRequests, hit(t, app, "/"))
	assert.Equal(t, fiber.StatusOK, hit(t, app, "/health"))
}

func TestRateLimiter_SharedRedisCounters(t *testing.T) {
	client := startRedis(t)
	storage := NewRedisStorage(client, "test:shared:")
	t.Cleanup(func() { _ = storage.Reset() })

	first, second := limitedApp(storage), limitedApp(storage)
	assert.Equal(t, fiber.StatusOK, hit(t, first, "/"))
	assert.Equal(t, fiber.StatusOK, hit(t, second, "/"))
	assert.Equal(t, fiber.StatusTooManyRequests, hit(t, first, "/"))
}
