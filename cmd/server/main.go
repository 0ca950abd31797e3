package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"stocker/internal/app"
	"stocker/internal/config"
	"stocker/internal/logging"
)

func main() {
	// Config
	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		l := zerolog.New(os.Stderr)
		l.Fatal().Err(err).Msg("loading config")
	}
	log := logging.New(cfg.Log, os.Stderr)
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid config")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("building app")
	}
	a.Scheduler.Start()

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           newHandler(a.Service, cfg.Server, logging.Component(log, "http")),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      time.Duration(cfg.Server.RequestTimeoutSec)*time.Second + 10*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info().
			Str("addr", "http://localhost:"+cfg.Server.Port).
			Bool("live", a.Service.Live()).
			Str("env", cfg.Server.Env).
			Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server")
		}
	}()

	// graceful shutdown
	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutting down server")
	}
	if err := a.Scheduler.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("stopping scheduler")
	}
}
