package infra

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"

	"github.com/exaring/otelpgx"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog"
	pgxuuid "github.com/vgarvardt/pgx-google-uuid/v5"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"

	"github.com/Alturino/storefront/internal/config"
	"github.com/Alturino/storefront/internal/log"
)

var (
	databaseOnce sync.Once
	database     *pgxpool.Pool
)

func postgresURL(cfg config.Database) string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(cfg.Username, cfg.Password),
		Host:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Path:     cfg.Name,
		RawQuery: "sslmode=disable",
	}
	if cfg.TimeZone != "" {
		u.RawQuery += "&timezone=" + url.QueryEscape(cfg.TimeZone)
	}
	return u.String()
}

// NewDatabaseClient migrates the cart_storage schema and returns the shared
// pgx pool.
func NewDatabaseClient(c context.Context, cfg config.Database) *pgxpool.Pool {
	databaseOnce.Do(func() {
		logger := zerolog.Ctx(c).
			With().
			Str(log.KeyTag, "main NewDatabaseClient").
			Str(log.KeyProcess, "connecting to database").
			Logger()

		logger.Info().Msg("connecting to database")
		dsn := postgresURL(cfg)

		logger = logger.With().Str(log.KeyProcess, "migrating schema").Logger()
		logger.Info().Msg("migrating schema")
		migration, err := migrate.New(cfg.MigrationPath, dsn)
		if err != nil {
			err = fmt.Errorf("failed initializing migration with error=%w", err)
			logger.Fatal().Err(err).Msg(err.Error())
		}
		err = migration.Up()
		if err != nil && !errors.Is(err, migrate.ErrNoChange) {
			err = fmt.Errorf("failed migration up with error=%w", err)
			logger.Fatal().Err(err).Msg(err.Error())
		}
		srcErr, dbErr := migration.Close()
		if err := errors.Join(srcErr, dbErr); err != nil {
			logger.Warn().Err(err).Msg("failed closing migration")
		}
		logger.Info().Msg("migrated schema")

		logger = logger.With().Str(log.KeyProcess, "initializing pgx config").Logger()
		logger.Info().Msg("initializing pgx config")
		pgxConfig, err := pgxpool.ParseConfig(dsn)
		if err != nil {
			err = fmt.Errorf("failed creating pgx config with error=%w", err)
			logger.Fatal().Err(err).Msg(err.Error())
		}
		if cfg.MaxConnections > 0 {
			pgxConfig.MaxConns = cfg.MaxConnections
		}
		if cfg.MinConnections > 0 {
			pgxConfig.MinConns = cfg.MinConnections
		}
		pgxConfig.ConnConfig.Tracer = otelpgx.NewTracer(
			otelpgx.WithAttributes(semconv.DBSystemPostgreSQL),
		)
		pgxConfig.AfterConnect = func(c context.Context, conn *pgx.Conn) error {
			pgxuuid.Register(conn.TypeMap())
			return nil
		}
		logger.Info().Msg("initialized pgx config")

		logger = logger.With().Str(log.KeyProcess, "creating connection pool").Logger()
		logger.Info().Msg("creating connection pool")
		pool, err := pgxpool.NewWithConfig(c, pgxConfig)
		if err != nil {
			err = fmt.Errorf("failed creating connection pool with error=%w", err)
			logger.Fatal().Err(err).Msg(err.Error())
		}
		logger.Info().Msg("created connection pool")

		logger = logger.With().Str(log.KeyProcess, "ping db").Logger()
		logger.Info().Msg("ping db")
		if err = pool.Ping(c); err != nil {
			err = fmt.Errorf("failed ping db with error=%w", err)
			logger.Fatal().Err(err).Msg(err.Error())
		}
		logger.Info().Msg("successed ping db")

		database = pool
	})
	return database
}
