// Package gateway reads chart series and quotes from the brokerage API.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"stocker/internal/kis"
	"stocker/internal/mockdata"
	"stocker/internal/ratelimit"
	"stocker/internal/stock"
)

const (
	// msgCodeExpiredToken is the API message code for an expired access token.
	msgCodeExpiredToken = "EGW00123"
	// refreshTimeout bounds a background refresh after a rejected token.
	refreshTimeout = 2 * time.Minute
)

// Option configures a Gateway.
type Option func(*Gateway)

// WithLimiter gates every upstream call.
func WithLimiter(tb *ratelimit.TokenBucket) Option {
	return func(g *Gateway) { g.limiter = tb }
}

// WithClock replaces time.Now when computing date ranges.
func WithClock(now func() time.Time) Option {
	return func(g *Gateway) {
		if now != nil {
			g.now = now
		}
	}
}

// WithLogger sets the logger.
func WithLogger(log zerolog.Logger) Option {
	return func(g *Gateway) { g.log = log }
}

// Gateway fetches and normalizes upstream data. It never substitutes
// synthetic data; callers decide what to do with a KindUpstream error.
type Gateway struct {
	upstream Upstream
	creds    Credentials
	limiter  *ratelimit.TokenBucket
	now      func() time.Time
	log      zerolog.Logger

	refreshing atomic.Bool
}

func New(upstream Upstream, creds Credentials, opts ...Option) *Gateway {
	g := &Gateway{
		upstream: upstream,
		creds:    creds,
		now:      time.Now,
		log:      zerolog.Nop(),
	}
	for _, o := range opts {
		o(g)
	}
	return g
}

// FetchSeries returns the chart for symbol with bars ascending by date and
// every close positive.
func (g *Gateway) FetchSeries(ctx context.Context, symbol string, period stock.Period) (stock.ChartSeries, error) {
	symbol = strings.TrimSpace(symbol)
	if symbol == "" {
		return stock.ChartSeries{}, &FetchError{Kind: KindInvalid, Err: errors.New("empty symbol")}
	}
	switch period {
	case stock.Day, stock.Week, stock.Month:
	default:
		return stock.ChartSeries{}, &FetchError{Kind: KindInvalid, Symbol: symbol, Err: fmt.Errorf("unknown period %q", period)}
	}

	token, err := g.token(ctx, symbol)
	if err != nil {
		return stock.ChartSeries{}, err
	}

	start, end := DateRange(period, g.now())
	q := kis.ChartQuery{Symbol: symbol, Start: start, End: end, Period: period}

	if err := g.limiter.Wait(ctx); err != nil {
		return stock.ChartSeries{}, &FetchError{Kind: KindUpstream, Symbol: symbol, Err: err}
	}
	bars, err := g.upstream.DailyItemChartPrice(ctx, token, q)
	if err != nil {
		return stock.ChartSeries{}, g.upstreamError(ctx, symbol, err)
	}

	prices := Normalize(bars)
	g.log.Debug().
		Str("symbol", symbol).
		Str("period", period.String()).
		Int("received", len(bars)).
		Int("kept", len(prices)).
		Msg("chart fetched")

	return stock.ChartSeries{
		Symbol: symbol,
		Name:   mockdata.NameOf(symbol),
		Prices: prices,
	}, nil
}

// FetchQuote returns the current quote for a domestic symbol.
func (g *Gateway) FetchQuote(ctx context.Context, symbol string) (stock.Quote, error) {
	symbol = strings.TrimSpace(symbol)
	if symbol == "" {
		return stock.Quote{}, &FetchError{Kind: KindInvalid, Err: errors.New("empty symbol")}
	}

	token, err := g.token(ctx, symbol)
	if err != nil {
		return stock.Quote{}, err
	}

	if err := g.limiter.Wait(ctx); err != nil {
		return stock.Quote{}, &FetchError{Kind: KindUpstream, Symbol: symbol, Err: err}
	}
	q, err := g.upstream.CurrentPrice(ctx, token, symbol)
	if err != nil {
		return stock.Quote{}, g.upstreamError(ctx, symbol, err)
	}
	if name, ok := mockdata.MainName(symbol); ok {
		q.Name = name
	}
	return q, nil
}

func (g *Gateway) token(ctx context.Context, symbol string) (string, error) {
	cred, err := g.creds.Get(ctx)
	if err != nil {
		return "", &FetchError{Kind: KindCredential, Symbol: symbol, Err: err}
	}
	return cred.Token, nil
}

// upstreamError wraps err and, when the token was rejected, starts a
// background refresh for the next call. The failed call is not retried.
func (g *Gateway) upstreamError(ctx context.Context, symbol string, err error) error {
	if tokenRejected(err) {
		g.refreshAsync(ctx)
	}
	return &FetchError{Kind: KindUpstream, Symbol: symbol, Err: err}
}

// refreshAsync runs at most one refresh at a time, outliving the request.
func (g *Gateway) refreshAsync(ctx context.Context) {
	if !g.refreshing.CompareAndSwap(false, true) {
		return
	}
	go func() {
		defer g.refreshing.Store(false)
		rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), refreshTimeout)
		defer cancel()
		if _, err := g.creds.Refresh(rctx); err != nil {
			g.log.Warn().Err(err).Msg("token refresh after rejection failed")
		}
	}()
}

func tokenRejected(err error) bool {
	var se *kis.StatusError
	if errors.As(err, &se) && se.Code == http.StatusUnauthorized {
		return true
	}
	var ae *kis.APIError
	return errors.As(err, &ae) && ae.MsgCode == msgCodeExpiredToken
}

// DateRange returns the inclusive start and end days for a period chart
// ending at now, in Korea Standard Time.
func DateRange(period stock.Period, now time.Time) (start, end string) {
	now = now.In(stock.KST)
	return stock.FormatDate(now.AddDate(-period.Lookback(), 0, 0)), stock.FormatDate(now)
}

// Normalize drops bars without a positive close and reverses the
// newest-first upstream order. The input is not modified.
func Normalize(bars []stock.PriceBar) []stock.PriceBar {
	out := make([]stock.PriceBar, 0, len(bars))
	for _, b := range bars {
		if b.Close > 0 {
			out = append(out, b)
		}
	}
	slices.Reverse(out)
	return out
}
