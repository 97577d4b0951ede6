package notifier

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"

	"github.com/Alturino/storefront/internal/log"
)

// KafkaTransport publishes events to a topic and reads them back through a
// consumer group of its own, so every process sees every event. The group
// id must be unique per process and stable across its restarts. A new group
// starts at the newest offset; a known one resumes where it left off.
type KafkaTransport struct {
	writer *kafka.Writer
	reader *kafka.Reader
	topic  string
}

func NewKafkaTransport(brokers []string, topic string, groupID string) *KafkaTransport {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 10 * time.Millisecond,
	}
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     brokers,
		Topic:       topic,
		GroupID:     groupID,
		StartOffset: kafka.LastOffset,
		MinBytes:    1,
		MaxBytes:    10e6,
	})
	return &KafkaTransport{writer: writer, reader: reader, topic: topic}
}

func (t *KafkaTransport) Publish(c context.Context, payload []byte) error {
	err := t.writer.WriteMessages(c, kafka.Message{Value: payload, Time: time.Now()})
	if err != nil {
		return fmt.Errorf("failed writing to topic=%s with error=%w", t.topic, err)
	}
	return nil
}

func (t *KafkaTransport) Receive(c context.Context, deliver func(c context.Context, payload []byte)) error {
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "KafkaTransport Receive").
		Str(log.KeyChannel, t.topic).
		Logger()

	logger.Info().Msg("reading messages")
	for {
		msg, err := t.reader.ReadMessage(c)
		if err != nil {
			if c.Err() != nil {
				return c.Err()
			}
			if errors.Is(err, io.EOF) {
				return fmt.Errorf("reader for topic=%s closed", t.topic)
			}
			err = fmt.Errorf("failed reading from topic=%s with error=%w", t.topic, err)
			logger.Error().Err(err).Msg(err.Error())
			continue
		}
		deliver(c, msg.Value)
	}
}

func (t *KafkaTransport) Close() error {
	return errors.Join(t.writer.Close(), t.reader.Close())
}
