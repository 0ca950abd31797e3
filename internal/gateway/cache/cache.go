// Package cache memoizes chart series per symbol and period.
package cache

import (
	"context"
	"strings"
	"sync"
	"time"

	"stocker/internal/stock"
)

type key struct {
	symbol string
	period stock.Period
}

// entry stores a cached series with expiry.
type entry struct {
	expiresAt time.Time
	series    stock.ChartSeries
}

// Series caches successful results of F for TTL. Errors are never cached.
// A TTL of zero or less disables caching.
type Series struct {
	F        stock.SeriesFetcher
	TTL      time.Duration
	MaxItems int

	// Now defaults to time.Now.
	Now func() time.Time

	mu    sync.RWMutex
	items map[key]entry
}

// FetchSeries returns the cached series when valid and otherwise asks F.
func (c *Series) FetchSeries(ctx context.Context, symbol string, period stock.Period) (stock.ChartSeries, error) {
	if c.TTL <= 0 {
		return c.F.FetchSeries(ctx, symbol, period)
	}

	symbol = strings.TrimSpace(symbol)
	now := c.now()
	k := key{symbol: symbol, period: period}

	c.mu.RLock()
	e, ok := c.items[k]
	c.mu.RUnlock()
	if ok && now.Before(e.expiresAt) {
		return cloneSeries(e.series), nil
	}

	series, err := c.F.FetchSeries(ctx, symbol, period)
	if err != nil {
		return stock.ChartSeries{}, err
	}

	c.mu.Lock()
	if c.items == nil {
		c.items = make(map[key]entry)
	}
	c.items[k] = entry{expiresAt: now.Add(c.TTL), series: cloneSeries(series)}
	c.evict(now)
	c.mu.Unlock()

	return series, nil
}

// Len returns the number of entries, expired or not.
func (c *Series) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// evict is a best-effort cap on the cache size: expired entries go first,
// then arbitrary ones. Callers hold mu.
func (c *Series) evict(now time.Time) {
	if c.MaxItems <= 0 || len(c.items) <= c.MaxItems {
		return
	}
	for k, v := range c.items {
		if !now.Before(v.expiresAt) {
			delete(c.items, k)
		}
		if len(c.items) <= c.MaxItems {
			return
		}
	}
	for k := range c.items {
		if len(c.items) <= c.MaxItems {
			return
		}
		delete(c.items, k)
	}
}

func (c *Series) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

func cloneSeries(s stock.ChartSeries) stock.ChartSeries {
	s.Prices = append([]stock.PriceBar(nil), s.Prices...)
	return s
}
