package notifier

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/Alturino/storefront/internal/log"
)

// RedisTransport fans events out over a Redis pub/sub channel. The client is
// owned by the caller and is not closed here.
type RedisTransport struct {
	client  *redis.Client
	channel string
}

func NewRedisTransport(client *redis.Client, channel string) *RedisTransport {
	return &RedisTransport{client: client, channel: channel}
}

func (t *RedisTransport) Publish(c context.Context, payload []byte) error {
	if err := t.client.Publish(c, t.channel, payload).Err(); err != nil {
		return fmt.Errorf("failed publishing to channel=%s with error=%w", t.channel, err)
	}
	return nil
}

func (t *RedisTransport) Receive(c context.Context, deliver func(c context.Context, payload []byte)) error {
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "RedisTransport Receive").
		Str(log.KeyChannel, t.channel).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "subscribing").Logger()
	logger.Info().Msg("subscribing")
	pubsub := t.client.Subscribe(c, t.channel)
	defer pubsub.Close()
	if _, err := pubsub.Receive(c); err != nil {
		err = fmt.Errorf("failed subscribing to channel=%s with error=%w", t.channel, err)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	logger.Info().Msg("subscribed")

	messages := pubsub.Channel()
	for {
		select {
		case <-c.Done():
			return c.Err()
		case msg, ok := <-messages:
			if !ok {
				return fmt.Errorf("subscription to channel=%s closed", t.channel)
			}
			deliver(c, []byte(msg.Payload))
		}
	}
}

func (t *RedisTransport) Close() error {
	return nil
}
