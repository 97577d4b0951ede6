package storage

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/testcontainers/testcontainers-go"
	testRedis "github.com/testcontainers/testcontainers-go/modules/redis"
)

func setupRedis(t *testing.T, c context.Context) *redis.Client {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping redis container test in short mode")
	}

	redisContainer, err := testRedis.Run(c, "redis:7.4.2-alpine3.21")
	if err != nil {
		t.Fatalf("failed running redis container with error: %s", err)
	}
	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(redisContainer); err != nil {
			t.Fatalf("failed to terminate container: %s", err)
		}
	})

	redisConnStr, err := redisContainer.ConnectionString(c)
	if err != nil {
		t.Fatalf("failed getting redis connection string with error: %s", err)
	}

	redisOpt, err := redis.ParseURL(redisConnStr)
	if err != nil {
		t.Fatalf("failed parsing redis connection string with error: %s", err)
	}

	client := redis.NewClient(redisOpt)
	t.Cleanup(func() { client.Close() })
	if err = client.Ping(c).Err(); err != nil {
		t.Fatalf("failed ping redis client with error: %s", err)
	}
	return client
}

func TestRedis(t *testing.T) {
	c := context.Background()
	client := setupRedis(t, c)
	store := NewRedis(client, "storefront-test")

	value, ok, err := store.Get(c, "cart-items")
	assert.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, value)

	blob := `[{"id":2,"name":"Kablosuz Kulaklık","price":"449,99 TL","quantity":1}]`
	assert.NoError(t, store.Set(c, "cart-items", blob))

	value, ok, err = store.Get(c, "cart-items")
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, blob, value)

	raw, err := client.Get(c, "storefront-test:cart-items").Result()
	assert.NoError(t, err)
	assert.Equal(t, blob, raw)

	ttl, err := client.TTL(c, "storefront-test:cart-items").Result()
	assert.NoError(t, err)
	assert.Equal(t, time.Duration(-1), ttl, "expected no expiry on persisted cart")
}

func TestRedisUnreachable(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1})
	defer client.Close()
	store := NewRedis(client, "")

	_, ok, err := store.Get(context.Background(), "cart-items")
	assert.Error(t, err)
	assert.False(t, ok)
	assert.Error(t, store.Set(context.Background(), "cart-items", "[]"))
}
