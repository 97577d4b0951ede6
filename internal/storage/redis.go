package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/Alturino/storefront/internal/log"
	"github.com/Alturino/storefront/internal/otel"
)

// Redis stores values as plain strings without expiry, prefixed with a
// namespace so several storefronts can share one server.
type Redis struct {
	client    *redis.Client
	namespace string
}

func NewRedis(client *redis.Client, namespace string) *Redis {
	return &Redis{client: client, namespace: namespace}
}

func (r *Redis) key(key string) string {
	if r.namespace == "" {
		return key
	}
	return r.namespace + ":" + key
}

func (r *Redis) Get(c context.Context, key string) (string, bool, error) {
	c, span := otel.Tracer.Start(c, "Redis Get")
	defer span.End()

	key = r.key(key)
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "Redis Get").
		Str(log.KeyStorageKey, key).
		Logger()

	logger.Trace().Msg("getting value from redis")
	value, err := r.client.Get(c, key).Result()
	if errors.Is(err, redis.Nil) {
		logger.Trace().Msg("key not found in redis")
		return "", false, nil
	}
	if err != nil {
		err = fmt.Errorf("failed getting key=%s from redis with error=%w", key, err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return "", false, err
	}
	logger.Trace().Msg("got value from redis")

	return value, true, nil
}

func (r *Redis) Set(c context.Context, key string, value string) error {
	c, span := otel.Tracer.Start(c, "Redis Set")
	defer span.End()

	key = r.key(key)
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "Redis Set").
		Str(log.KeyStorageKey, key).
		Logger()

	logger.Trace().Msg("setting value in redis")
	if err := r.client.Set(c, key, value, 0).Err(); err != nil {
		err = fmt.Errorf("failed setting key=%s in redis with error=%w", key, err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	logger.Trace().Msg("set value in redis")

	return nil
}
