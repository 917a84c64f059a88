package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpx "order-events-playground/services/api/internal/http"
	"order-events-playground/services/api/internal/http/handlers"
	"order-events-playground/services/api/internal/publisher"
	"order-events-playground/shared/pkg/config"
	"order-events-playground/shared/pkg/logger"
	"order-events-playground/shared/pkg/rabbit"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	log := logger.New("api", cfg.Common.LogLevel)

	rc, err := rabbit.Connect(cfg.Rabbit.URL)
	if err != nil {
		log.Fatal().Err(err).Msg("rabbit connect failed")
	}
	defer func() { _ = rc.Close() }()

	if err := rabbit.DeclareTopology(rc.Ch); err != nil {
		log.Fatal().Err(err).Msg("declare topology failed")
	}

	create := &handlers.CreateOrderHandler{
		Publisher: publisher.New(rc, log),
		Log:       log,
	}

	router := httpx.NewRouter(&httpx.Handlers{
		Health:      handlers.Health,
		CreateOrder: create.ServeHTTP,
	})

	srv := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("http started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("http failed")
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	log.Info().Msg("shutdown...")
	shCtx, shCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shCancel()
	_ = srv.Shutdown(shCtx)
}
