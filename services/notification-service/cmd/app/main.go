package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	httpx "order-events-playground/services/notification-service/internal/http"
	"order-events-playground/services/notification-service/internal/worker"
	"order-events-playground/shared/pkg/config"
	"order-events-playground/shared/pkg/logger"
	"order-events-playground/shared/pkg/rabbit"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	log := logger.New("notification-service", cfg.Common.LogLevel)

	rc, err := rabbit.Connect(cfg.Rabbit.URL)
	if err != nil {
		log.Fatal().Err(err).Msg("rabbit connect failed")
	}
	defer func() { _ = rc.Close() }()

	if err := rabbit.DeclareTopology(rc.Ch); err != nil {
		log.Fatal().Err(err).Msg("declare topology failed")
	}

	svc, err := worker.NewService(rc, log, cfg.Consumer.MaxConcurrent)
	if err != nil {
		log.Fatal().Err(err).Msg("build notification service failed")
	}

	httpSrv := &http.Server{
		Addr:              cfg.NotifyHTTP.Addr,
		Handler:           (&httpx.Server{}).Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		log.Info().Str("addr", httpSrv.Addr).Msg("http started")
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("http failed")
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := svc.Run(ctx); err != nil {
		log.Fatal().Err(err).Msg("notification service failed")
	}

	shCtx, shCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shCancel()
	_ = httpSrv.Shutdown(shCtx)
	log.Info().Msg("shutdown complete")
}
