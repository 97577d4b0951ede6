package cmd

import (
	"context"
	"fmt"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"

	"github.com/Alturino/storefront/home/internal/controller"
	"github.com/Alturino/storefront/internal/common/constants"
	"github.com/Alturino/storefront/internal/config"
	"github.com/Alturino/storefront/internal/log"
	"github.com/Alturino/storefront/internal/middleware"
	"github.com/Alturino/storefront/internal/otel"
	"github.com/Alturino/storefront/internal/zone"
)

func RunHomeZone(c context.Context) {
	c, span := otel.Tracer.Start(c, "RunHomeZone")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyAppName, constants.AppHomeZone).
		Str(log.KeyTag, "main RunHomeZone").
		Logger()

	logger = logger.With().Str(log.KeyProcess, "init config").Logger()
	logger.Info().Msg("initializing config")
	c = logger.WithContext(c)
	cfg := config.InitConfig(c, constants.AppHomeZone)
	log.SetLevel(cfg.Application.Env)
	logger.Info().Msg("initialized config")

	logger = logger.With().Str(log.KeyProcess, "initializing otel sdk").Logger()
	logger.Info().Msg("initializing otel sdk")
	c = logger.WithContext(c)
	otelShutdowns, err := otel.InitOtelSdk(c, constants.AppHomeZone, cfg.Otel)
	if err != nil {
		err = fmt.Errorf("failed initializing otel sdk with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return
	}
	defer func() {
		logger.Info().Msg("shutting down otel")
		if err := otel.ShutdownOtel(context.WithoutCancel(c), otelShutdowns); err != nil {
			err = fmt.Errorf("failed shutting down otel with error=%w", err)
			logger.Error().Err(err).Msg(err.Error())
			return
		}
		logger.Info().Msg("shutdown otel")
	}()
	logger.Info().Msg("initialized otel sdk")

	logger = logger.With().Str(log.KeyProcess, "initializing zone").Logger()
	logger.Info().Msg("initializing zone")
	c = logger.WithContext(c)
	z, err := zone.Boot(c, constants.AppHomeZone, cfg)
	if err != nil {
		err = fmt.Errorf("failed initializing zone with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return
	}
	defer func() {
		if err := z.Close(); err != nil {
			logger.Error().Err(err).Msg("failed closing notifier transport")
		}
	}()
	logger = logger.With().Str(log.KeyOrigin, z.Origin).Logger()
	logger.Info().Msg("initialized zone")

	logger = logger.With().Str(log.KeyProcess, "initializing router").Logger()
	logger.Info().Msg("initializing router")
	router := mux.NewRouter()
	router.Use(otelmux.Middleware(constants.AppHomeZone), middleware.Logging, middleware.RecoverPanic)
	router.Handle("/metrics", promhttp.Handler())
	controller.AttachHomeController(router, z.Store, z.Bus, z.Signer, cfg.Handoff.CartURL)
	logger.Info().Msg("initialized router")

	c = logger.WithContext(c)
	go func() {
		if err := z.Run(c); err != nil {
			logger.Error().Err(err).Msg(err.Error())
		}
	}()

	if err := zone.Serve(c, cfg.Application, router); err != nil {
		otel.RecordError(err, span)
	}
}
