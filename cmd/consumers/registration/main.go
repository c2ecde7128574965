package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/carverauto/mco-registration/pkg/config"
	registrationconsumer "github.com/carverauto/mco-registration/pkg/consumers/registration"
	"github.com/carverauto/mco-registration/pkg/lifecycle"
	"github.com/carverauto/mco-registration/pkg/logger"
	"github.com/carverauto/mco-registration/pkg/registration"
	"github.com/carverauto/mco-registration/pkg/version"
)

const tracingShutdownTimeout = 5 * time.Second

func main() {
	configPath := flag.String("config", "/etc/mcollective/registration.json", "Path to config file")
	flag.Parse()

	ctx := context.Background()

	var cfg registrationconsumer.Config

	if err := config.NewConfig(nil).LoadAndValidate(ctx, *configPath, &cfg); err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := cfg.Registration.ResolvePassword(); err != nil {
		log.Fatalf("Registration config validation failed: %v", err)
	}

	loggerConfig := cfg.Logging
	if loggerConfig == nil {
		loggerConfig = logger.DefaultConfig()
	}

	storeLogger, err := lifecycle.CreateComponentLogger(ctx, "registration-store", loggerConfig)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	serviceLogger, err := lifecycle.CreateComponentLogger(ctx, "registration-service", loggerConfig)
	if err != nil {
		log.Fatalf("Failed to initialize service logger: %v", err)
	}

	defer func() { _ = lifecycle.ShutdownLogger() }()

	serviceLogger.Info().Str("version", version.GetFullVersion()).Msg("Starting registration consumer")

	if sanitized, err := config.SanitizeForLog(&cfg); err == nil {
		serviceLogger.Debug().RawJSON("config", sanitized).Msg("Loaded configuration")
	}

	if _, err := logger.InitializeTracing(ctx, logger.TracingConfig{
		ServiceName:    "mco-registration",
		ServiceVersion: version.GetVersion(),
		OTel:           &loggerConfig.OTel,
	}); err != nil {
		serviceLogger.Warn().Err(err).Msg("Tracing disabled")
	}

	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), tracingShutdownTimeout)
		defer cancel()

		if err := logger.ShutdownTracing(shutdownCtx); err != nil {
			serviceLogger.Warn().Err(err).Msg("Failed to flush traces")
		}
	}()

	metrics := registration.NewMetrics()

	store, err := registrationconsumer.OpenStore(ctx, &cfg, storeLogger)
	if err != nil {
		log.Fatalf("Failed to open document store: %v", err)
	}

	agent, extraCloser, err := registrationconsumer.NewAgent(ctx, &cfg, store, metrics, serviceLogger)
	if err != nil {
		_ = store.Close()
		log.Fatalf("Failed to initialize registration agent: %v", err) //nolint:gocritic // store is closed explicitly
	}

	defer func() { _ = extraCloser.Close() }()

	svc, err := registrationconsumer.NewService(&cfg, agent, store, serviceLogger)
	if err != nil {
		_ = store.Close()
		log.Fatalf("Failed to initialize registration service: %v", err)
	}

	opts := &lifecycle.ServerOptions{
		ListenAddr:        cfg.ListenAddr,
		ServiceName:       "mco-registration",
		Service:           svc,
		EnableHealthCheck: true,
		Gatherer:          metrics.Registry(),
		Logger:            serviceLogger,
	}

	if err := lifecycle.RunServer(ctx, opts); err != nil {
		serviceLogger.Error().Err(err).Msg("Server failed")
	}
}
