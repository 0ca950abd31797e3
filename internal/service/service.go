// Package service combines the catalog, the gateway and the synthetic
// generator into the operations served over HTTP.
package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"stocker/internal/chart"
	"stocker/internal/gateway"
	"stocker/internal/mockdata"
	"stocker/internal/stock"
)

// Option configures a Service.
type Option func(*Service)

// WithUpstream enables live data. Without it every operation is served
// from the catalog and the generator.
func WithUpstream(series stock.SeriesFetcher, quotes stock.QuoteFetcher) Option {
	return func(s *Service) {
		s.series = series
		s.quotes = quotes
	}
}

// WithLogger sets the logger.
func WithLogger(log zerolog.Logger) Option {
	return func(s *Service) { s.log = log }
}

// Service is safe for concurrent use.
type Service struct {
	gen    *mockdata.Generator
	series stock.SeriesFetcher
	quotes stock.QuoteFetcher
	log    zerolog.Logger
}

func New(gen *mockdata.Generator, opts ...Option) *Service {
	if gen == nil {
		gen = mockdata.NewGenerator()
	}
	s := &Service{gen: gen, log: zerolog.Nop()}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Live reports whether upstream data is enabled.
func (s *Service) Live() bool { return s.series != nil && s.quotes != nil }

// KoreanStocks returns the static domestic list.
func (s *Service) KoreanStocks() []stock.Quote { return mockdata.KoreanQuotes() }

// ForeignStocks returns the static foreign list.
func (s *Service) ForeignStocks() []stock.Quote { return mockdata.ForeignQuotes() }

// MainKoreanStocks returns a quote per main-board symbol in catalog order.
// A symbol whose upstream call fails gets its fallback quote; any other
// error fails the whole call.
func (s *Service) MainKoreanStocks(ctx context.Context) ([]stock.Quote, error) {
	out := make([]stock.Quote, len(mockdata.MainKorean))
	if !s.Live() {
		s.log.Info().Msg("upstream not configured, serving main board from catalog")
		for i, e := range mockdata.MainKorean {
			out[i] = s.fallbackQuote(e)
		}
		return out, nil
	}

	g, ctx := errgroup.WithContext(ctx)
	for i, e := range mockdata.MainKorean {
		g.Go(func() error {
			q, err := s.quotes.FetchQuote(ctx, e.Symbol)
			switch {
			case err == nil:
				out[i] = q
			case gateway.IsUpstream(err):
				s.log.Warn().Err(err).Str("symbol", e.Symbol).Msg("quote unavailable, using fallback")
				out[i] = s.fallbackQuote(e)
			default:
				return err
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("main board: %w", err)
	}
	s.log.Debug().Int("count", len(out)).Msg("main board fetched")
	return out, nil
}

func (s *Service) fallbackQuote(e mockdata.Entry) stock.Quote {
	if q, ok := mockdata.Lookup(e.Symbol); ok {
		q.Name = e.Name
		return q
	}
	return s.gen.SynthesizeQuote(e.Symbol, e.Name)
}

// StockDetail returns the static quote for symbol or stock.ErrNotFound.
func (s *Service) StockDetail(symbol string) (stock.Quote, error) {
	q, ok := mockdata.Lookup(symbol)
	if !ok {
		return stock.Quote{}, stock.ErrNotFound
	}
	return q, nil
}

// Chart returns the live series when possible and a synthetic one when the
// upstream is not configured or fails.
func (s *Service) Chart(ctx context.Context, symbol string, period stock.Period) (stock.ChartSeries, error) {
	if !s.Live() {
		s.log.Debug().Str("symbol", symbol).Msg("upstream not configured, serving synthetic chart")
		return s.MockChart(symbol, period.String())
	}

	series, err := s.series.FetchSeries(ctx, symbol, period)
	switch {
	case err == nil:
		return series, nil
	case gateway.IsUpstream(err):
		s.log.Warn().Err(err).Str("symbol", symbol).Msg("upstream chart failed, serving synthetic chart")
		return s.MockChart(symbol, period.String())
	default:
		return stock.ChartSeries{}, err
	}
}

// MockChart generates a series for a catalog symbol starting at its static price.
func (s *Service) MockChart(symbol, label string) (stock.ChartSeries, error) {
	q, ok := mockdata.Lookup(symbol)
	if !ok {
		return stock.ChartSeries{}, stock.ErrNotFound
	}
	return stock.ChartSeries{
		Symbol: symbol,
		Name:   q.Name,
		Prices: s.gen.Generate(symbol, q.Name, q.Price, label),
	}, nil
}

// Points is a chart series converted for a candlestick widget.
type Points struct {
	Symbol  string         `json:"symbol"`
	Name    string         `json:"name"`
	Candles []chart.Candle `json:"candles"`
	Volumes []chart.Volume `json:"volumes"`
}

// ChartPoints is Chart followed by chart.ToSeriesPoints.
func (s *Service) ChartPoints(ctx context.Context, symbol string, period stock.Period) (Points, error) {
	series, err := s.Chart(ctx, symbol, period)
	if err != nil {
		return Points{}, err
	}
	candles, volumes := chart.ToSeriesPoints(series.Prices)
	return Points{Symbol: series.Symbol, Name: series.Name, Candles: candles, Volumes: volumes}, nil
}
