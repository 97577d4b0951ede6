package infra

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Alturino/storefront/internal/config"
	"github.com/Alturino/storefront/internal/errors"
	"github.com/Alturino/storefront/internal/log"
	"github.com/Alturino/storefront/internal/notifier"
	"github.com/Alturino/storefront/internal/storage"
)

// NewStorage opens the backend named by storage.driver. writer identifies
// this process in the postgres updated_by column.
func NewStorage(c context.Context, cfg *config.Config, writer uuid.UUID) (storage.Storage, error) {
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "main NewStorage").
		Str(log.KeyStorageDriver, cfg.Storage.Driver).
		Logger()
	c = logger.WithContext(c)

	logger.Info().Msg("initializing storage")
	switch cfg.Storage.Driver {
	case config.StorageMemory, "":
		return storage.NewMemory(), nil
	case config.StorageRedis:
		return storage.NewRedis(NewCacheClient(c, cfg.Cache), cfg.Storage.Namespace), nil
	case config.StoragePostgres:
		return storage.NewPostgres(NewDatabaseClient(c, cfg.Database), cfg.Storage.Namespace, writer), nil
	default:
		err := fmt.Errorf("failed initializing storage driver=%s with error=%w", cfg.Storage.Driver, errors.ErrUnknownStorage)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}
}

// NewTransport returns the cross-process notifier transport, or nil when
// notifier.transport is local and events stay inside the process.
func NewTransport(c context.Context, cfg *config.Config, appName string) (notifier.Transport, error) {
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "main NewTransport").
		Str(log.KeyTransport, cfg.Notifier.Transport).
		Logger()
	c = logger.WithContext(c)

	logger.Info().Msg("initializing notifier transport")
	switch cfg.Notifier.Transport {
	case config.TransportLocal, "":
		return nil, nil
	case config.TransportRedis:
		return notifier.NewRedisTransport(NewCacheClient(c, cfg.Cache), cfg.Notifier.Channel), nil
	case config.TransportKafka:
		groupID := kafkaGroupID(cfg.Notifier, appName, os.Hostname)
		logger.Info().Str(log.KeyGroupID, groupID).Msg("joining kafka consumer group")
		return notifier.NewKafkaTransport(cfg.Notifier.Brokers, cfg.Notifier.Topic, groupID), nil
	default:
		err := fmt.Errorf("failed initializing notifier transport=%s with error=%w", cfg.Notifier.Transport, errors.ErrUnknownTransport)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}
}

// kafkaGroupID keeps the consumer group stable across restarts of the same
// zone instance: notifier.group_id when set, otherwise the app name and host.
func kafkaGroupID(cfg config.Notifier, appName string, hostname func() (string, error)) string {
	if cfg.GroupID != "" {
		return cfg.GroupID
	}
	host, err := hostname()
	if err != nil || host == "" {
		return "storefront-" + appName
	}
	return fmt.Sprintf("storefront-%s-%s", appName, host)
}
