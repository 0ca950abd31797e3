package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"
	"time"

	"github.com/rs/zerolog"

	"stocker/internal/app"
	"stocker/internal/config"
	"stocker/internal/logging"
	"stocker/internal/stock"
)

func main() {
	var symbol string
	var chartType string
	var mockLabel string
	var points bool
	var timeout int
	var configPath string

	flag.StringVar(&symbol, "symbol", getenv("SYMBOL", "005930"), "stock symbol")
	flag.StringVar(&chartType, "period", getenv("CHART_TYPE", "D"), "chart period: D, W or M")
	flag.StringVar(&mockLabel, "mock", "", "skip the upstream and generate a synthetic series for this window (1W, 1M, 3M, 6M, 1Y)")
	flag.BoolVar(&points, "points", false, "print candlestick widget points instead of bars")
	flag.IntVar(&timeout, "timeout", 0, "request timeout seconds (default from config)")
	flag.StringVar(&configPath, "config", getenv("CONFIG_FILE", ""), "path to config.json or config.yaml (optional)")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		l := zerolog.New(os.Stderr)
		l.Fatal().Err(err).Msg("loading config")
	}
	if timeout > 0 {
		cfg.Server.RequestTimeoutSec = timeout
	}
	// Tokens issued by a one-shot CLI are not worth scheduling refreshes for.
	cfg.KIS.TokenRefreshCron = ""
	log := logging.New(cfg.Log, os.Stderr)
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid config")
	}

	period, err := stock.ParsePeriod(chartType)
	if err != nil {
		log.Fatal().Err(err).Msg("parsing period")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.RequestTimeoutSec)*time.Second)
	defer cancel()

	a, err := app.New(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("building app")
	}

	var out any
	switch {
	case mockLabel != "":
		out, err = a.Service.MockChart(symbol, mockLabel)
	case points:
		out, err = a.Service.ChartPoints(ctx, symbol, period)
	default:
		out, err = a.Service.Chart(ctx, symbol, period)
	}
	if err != nil {
		log.Fatal().Err(err).Str("symbol", symbol).Msg("fetching chart")
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		log.Fatal().Err(err).Msg("encoding output")
	}
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
