// Package app wires configuration into a ready Service.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"stocker/internal/config"
	"stocker/internal/credential"
	"stocker/internal/gateway"
	"stocker/internal/gateway/cache"
	"stocker/internal/httpx"
	"stocker/internal/kis"
	"stocker/internal/logging"
	"stocker/internal/mockdata"
	"stocker/internal/ratelimit"
	"stocker/internal/scheduler"
	"stocker/internal/service"
	"stocker/internal/stock"
)

const tokenRefreshJob = "kis-token-refresh"

// App holds the long-lived components.
type App struct {
	Service   *service.Service
	Scheduler *scheduler.Scheduler
	// Credentials is nil when the upstream is not configured.
	Credentials *credential.Cache
}

// New builds the components described by cfg. Without KIS secrets the
// service runs on synthetic data only.
func New(ctx context.Context, cfg config.Config, log zerolog.Logger) (*App, error) {
	timeout := time.Duration(cfg.Server.RequestTimeoutSec) * time.Second
	a := &App{Scheduler: scheduler.New(ctx, logging.Component(log, "scheduler"), timeout)}
	gen := mockdata.NewGenerator()

	if !cfg.KIS.Configured() {
		log.Warn().Msg("KIS_APP_KEY or KIS_APP_SECRET not set, serving synthetic data")
		a.Service = service.New(gen, service.WithLogger(logging.Component(log, "service")))
		return a, nil
	}

	httpClient := httpx.New(timeout)
	client := kis.NewClient(cfg.KIS.AppKey, cfg.KIS.AppSecret,
		kis.WithBaseURL(cfg.KIS.BaseURL),
		kis.WithHTTPClient(httpClient),
	)

	credOpts := []credential.Option{
		credential.WithSafetyMargin(time.Duration(cfg.KIS.TokenMarginSec) * time.Second),
		credential.WithMinInterval(time.Duration(cfg.KIS.TokenMinIntervalSec) * time.Second),
		credential.WithLogger(logging.Component(log, "credential")),
	}
	if cfg.KIS.TokenStateFile != "" {
		credOpts = append(credOpts, credential.WithStore(credential.FileStore{Path: cfg.KIS.TokenStateFile}))
	}
	a.Credentials = credential.New(credential.FromKIS(client), credOpts...)

	gwOpts := []gateway.Option{gateway.WithLogger(logging.Component(log, "gateway"))}
	if cfg.KIS.MaxRPS > 0 {
		gwOpts = append(gwOpts, gateway.WithLimiter(ratelimit.NewTokenBucket(cfg.KIS.MaxRPS, cfg.KIS.Burst)))
	}
	gw := gateway.New(client, a.Credentials, gwOpts...)

	var series stock.SeriesFetcher = gw
	if cfg.Chart.CacheTTLSeconds > 0 {
		series = &cache.Series{
			F:        gw,
			TTL:      time.Duration(cfg.Chart.CacheTTLSeconds) * time.Second,
			MaxItems: cfg.Chart.CacheMaxItems,
		}
	}

	a.Service = service.New(gen,
		service.WithUpstream(series, gw),
		service.WithLogger(logging.Component(log, "service")),
	)

	if cfg.KIS.TokenRefreshCron != "" {
		if err := a.Scheduler.Add(cfg.KIS.TokenRefreshCron, tokenRefreshJob, a.refreshToken); err != nil {
			return nil, fmt.Errorf("scheduling token refresh: %w", err)
		}
	}
	return a, nil
}

func (a *App) refreshToken(ctx context.Context) error {
	_, err := a.Credentials.Refresh(ctx)
	return err
}
