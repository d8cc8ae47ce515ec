// Package main is the entry point for the media-queue-service API.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"media-queue-service/internal/app/service"
	"media-queue-service/internal/config"
	"media-queue-service/internal/infocache"
	"media-queue-service/internal/infra/extractor"
	"media-queue-service/internal/job"
	"media-queue-service/internal/logger"
	"media-queue-service/internal/transport/httpserver"
	"media-queue-service/internal/validator"
)

func main() {
	cfg, err := config.Load(os.Getenv("APP_CONFIG_FILE"))
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log, err := logger.New(
		logger.Config{
			Level:   cfg.Logger.Level,
			Format:  cfg.Logger.Format,
			Output:  cfg.Logger.Output,
			Service: cfg.App.Name,
		},
		logger.SentryConfig{
			Enabled:     cfg.Sentry.Enabled,
			DSN:         cfg.Sentry.DSN,
			Environment: cfg.Sentry.Environment,
			SampleRate:  cfg.Sentry.SampleRate,
		},
	)
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer func() { _ = log.Sync() }()

	log.Info("starting media-queue-service",
		zap.String("env", cfg.App.Env),
		zap.Int("port", cfg.App.Port),
	)

	// Extraction cache
	overrides, err := cfg.Cache.ServiceOverrides()
	if err != nil {
		log.Fatal("invalid cache ttl overrides", zap.Error(err))
	}
	cache, err := infocache.New(
		infocache.Config{
			MaxItems:   cfg.Cache.MaxItems,
			TrimTarget: cfg.Cache.TrimTarget,
			TTL: infocache.ServiceTTL{
				Default:   cfg.Cache.DefaultTTL,
				Overrides: overrides,
			},
		},
		log.Logger,
	)
	if err != nil {
		log.Fatal("failed to create info cache", zap.Error(err))
	}
	maxItems, trimTarget := cache.Limits()
	log.Info("info cache ready",
		zap.Int("max_items", maxItems),
		zap.Int("trim_target", trimTarget),
		zap.Duration("default_ttl", cfg.Cache.DefaultTTL),
	)

	// Extraction service client
	extractorClient := extractor.New(
		extractor.ClientConfig{
			BaseURL: cfg.Extractor.BaseURL,
			Timeout: cfg.Extractor.Timeout,
			Retry: extractor.RetryConfig{
				MaxAttempts: cfg.Extractor.Retry.MaxAttempts,
				WaitTime:    cfg.Extractor.Retry.WaitTime,
				MaxWaitTime: cfg.Extractor.Retry.MaxWaitTime,
			},
			CB: extractor.CBConfig{
				MaxRequests:  cfg.Extractor.CB.MaxRequests,
				Interval:     cfg.Extractor.CB.Interval,
				Timeout:      cfg.Extractor.CB.Timeout,
				FailureRatio: cfg.Extractor.CB.FailureRatio,
			},
		},
		log.Logger,
	)

	// Services
	infoSvc := service.NewInfoService(extractorClient, cache, log.Logger)
	queueSvc := service.NewQueueService(infoSvc, log.Logger)

	server := httpserver.NewServer(
		httpserver.ServerConfig{
			Port:      cfg.App.Port,
			BodyLimit: 64 * 1024,
			FetchWait: cfg.Session.FetchWait,
		},
		infoSvc,
		queueSvc,
		validator.New(),
		log.Logger,
	)

	reaper := job.NewSessionReaper(
		queueSvc,
		job.ReaperConfig{
			Interval:    cfg.Session.ReapInterval,
			IdleTimeout: cfg.Session.IdleTimeout,
		},
		log.Logger,
	)
	reaper.Start()

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Info("shutdown signal received")

		reaper.Stop()

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := server.App.ShutdownWithContext(ctx); err != nil {
			log.Error("server shutdown error", zap.Error(err))
		}

		queueSvc.DisposeAll()
	}()

	if err := server.Start(cfg.App.Port); err != nil {
		log.Fatal("server error", zap.Error(err))
	}
}
