package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/Alturino/storefront/internal/log"
	"github.com/Alturino/storefront/internal/otel"
)

const (
	getQuery = `SELECT value FROM cart_storage WHERE key = $1`
	setQuery = `WITH previous AS (SELECT updated_by FROM cart_storage WHERE key = $1)
INSERT INTO cart_storage (key, value, updated_by, updated_at)
VALUES ($1, $2, $3, now())
ON CONFLICT (key) DO UPDATE
SET value = EXCLUDED.value, updated_by = EXCLUDED.updated_by, updated_at = EXCLUDED.updated_at
RETURNING COALESCE((SELECT updated_by FROM previous), $3)`
)

// Postgres upserts values into the cart_storage table. Every row remembers
// the process that wrote it last; writes are still last-writer-wins, and
// overwriting another process's value is logged.
type Postgres struct {
	pool      *pgxpool.Pool
	namespace string
	writer    uuid.UUID
}

func NewPostgres(pool *pgxpool.Pool, namespace string, writer uuid.UUID) *Postgres {
	return &Postgres{pool: pool, namespace: namespace, writer: writer}
}

func (p *Postgres) key(key string) string {
	if p.namespace == "" {
		return key
	}
	return p.namespace + ":" + key
}

func (p *Postgres) Get(c context.Context, key string) (string, bool, error) {
	c, span := otel.Tracer.Start(c, "Postgres Get")
	defer span.End()

	key = p.key(key)
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "Postgres Get").
		Str(log.KeyStorageKey, key).
		Logger()

	logger.Trace().Msg("getting value from postgres")
	var value string
	err := p.pool.QueryRow(c, getQuery, key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		logger.Trace().Msg("key not found in postgres")
		return "", false, nil
	}
	if err != nil {
		err = fmt.Errorf("failed getting key=%s from postgres with error=%w", key, err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return "", false, err
	}
	logger.Trace().Msg("got value from postgres")

	return value, true, nil
}

func (p *Postgres) Set(c context.Context, key string, value string) error {
	c, span := otel.Tracer.Start(c, "Postgres Set")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "Postgres Set").
		Str(log.KeyStorageKey, p.key(key)).
		Logger()

	logger.Trace().Msg("upserting value in postgres")
	previous, err := p.upsert(c, key, value)
	if err != nil {
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	if previous != p.writer {
		logger.Debug().
			Str(log.KeyPreviousWriter, previous.String()).
			Msg("overwrote value written by another process")
	}
	logger.Trace().Msg("upserted value in postgres")

	return nil
}

// upsert writes value and returns the process that held key before, or this
// process when key was new.
func (p *Postgres) upsert(c context.Context, key string, value string) (uuid.UUID, error) {
	var previous uuid.UUID
	if err := p.pool.QueryRow(c, setQuery, p.key(key), value, p.writer).Scan(&previous); err != nil {
		return uuid.Nil, fmt.Errorf("failed upserting key=%s in postgres with error=%w", p.key(key), err)
	}
	return previous, nil
}
