// Package mockdata holds the static catalog and the synthetic series used
// when the upstream cannot be reached.
package mockdata

import (
	"math"
	"math/rand/v2"
	"sync"
	"time"

	"stocker/internal/stock"
)

// DaysFor maps a period label to a calendar-day window. Unknown labels,
// including the chart codes D, W and M, get 30 days.
func DaysFor(label string) int {
	switch label {
	case "1W":
		return 7
	case "1M":
		return 30
	case "3M":
		return 90
	case "6M":
		return 180
	case "1Y":
		return 365
	default:
		return 30
	}
}

// Option configures a Generator.
type Option func(*Generator)

// WithSeed makes the generator deterministic.
func WithSeed(seed uint64) Option {
	return func(g *Generator) { g.rng = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)) }
}

// WithClock replaces time.Now as the reference day.
func WithClock(now func() time.Time) Option {
	return func(g *Generator) {
		if now != nil {
			g.now = now
		}
	}
}

// Generator produces random walks of daily bars. Safe for concurrent use.
type Generator struct {
	mu  sync.Mutex
	rng *rand.Rand
	now func() time.Time
}

func NewGenerator(opts ...Option) *Generator {
	seed := uint64(time.Now().UnixNano())
	g := &Generator{
		rng: rand.New(rand.NewPCG(seed, seed>>1)),
		now: time.Now,
	}
	for _, o := range opts {
		o(g)
	}
	return g
}

// Generate returns one bar per weekday in the trailing window for label,
// oldest first, starting from basePrice. Dates are Korea Standard Time days.
func (g *Generator) Generate(symbol, name string, basePrice float64, label string) []stock.PriceBar {
	days := DaysFor(label)
	today := g.now().In(stock.KST)

	g.mu.Lock()
	defer g.mu.Unlock()

	bars := make([]stock.PriceBar, 0, days)
	price := basePrice
	for i := days - 1; i >= 0; i-- {
		day := today.AddDate(0, 0, -i)
		if wd := day.Weekday(); wd == time.Saturday || wd == time.Sunday {
			continue
		}

		variation := (g.rng.Float64() - 0.5) * 0.1
		open := price * (1 + variation)
		high := open * (1 + g.rng.Float64()*0.05)
		low := open * (1 - g.rng.Float64()*0.05)
		closing := low + (high-low)*g.rng.Float64()

		bars = append(bars, stock.PriceBar{
			Date:   day.Format(stock.DateLayout),
			Open:   math.Round(open),
			High:   math.Round(high),
			Low:    math.Round(low),
			Close:  math.Round(closing),
			Volume: 100000 + g.rng.Int64N(1000000),
		})
		price = closing
	}
	return bars
}

// SynthesizeQuote builds a random domestic quote for a symbol without a static entry.
func (g *Generator) SynthesizeQuote(symbol, name string) stock.Quote {
	g.mu.Lock()
	defer g.mu.Unlock()

	r := g.rng
	return stock.Quote{
		Symbol:        symbol,
		Name:          name,
		Price:         50000 + r.Float64()*50000,
		Change:        (r.Float64() - 0.5) * 5000,
		ChangePercent: (r.Float64() - 0.5) * 10,
		Volume:        100000 + r.Int64N(1000000),
		MarketCap:     10000000 + r.Int64N(100000000),
		Market:        "KR",
		Open:          stock.Float(48000 + r.Float64()*54000),
		High:          stock.Float(55000 + r.Float64()*45000),
		Low:           stock.Float(45000 + r.Float64()*45000),
		PER:           stock.Float(10 + r.Float64()*20),
		PBR:           stock.Float(1 + r.Float64()*3),
		EPS:           stock.Float(1000 + r.Float64()*5000),
		BPS:           stock.Float(10000 + r.Float64()*40000),
	}
}
