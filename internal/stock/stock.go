package stock

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// DateLayout is the 8-digit calendar day layout used by the upstream API and PriceBar.Date.
const DateLayout = "20060102"

// KST is Korea Standard Time. Korea has no daylight saving so a fixed zone is enough.
var KST = time.FixedZone("KST", 9*60*60)

// ErrNotFound is returned when a symbol is absent from the known catalog.
var ErrNotFound = errors.New("주식을 찾을 수 없습니다.")

// PriceBar is one OHLCV record for a day, week or month bucket.
type PriceBar struct {
	Date   string  `json:"date"`
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume int64   `json:"volume"`
}

// ChartSeries is the chart payload for a single symbol.
type ChartSeries struct {
	Symbol string     `json:"symbol"`
	Name   string     `json:"name"`
	Prices []PriceBar `json:"prices"`
}

// Quote is the normalized current-price shape served by list and detail routes.
type Quote struct {
	Symbol        string   `json:"symbol"`
	Name          string   `json:"name"`
	Price         float64  `json:"price"`
	Change        float64  `json:"change"`
	ChangePercent float64  `json:"changePercent"`
	Volume        int64    `json:"volume"`
	Market        string   `json:"market"`
	MarketCap     int64    `json:"marketCap"`
	Open          *float64 `json:"open,omitempty"`
	High          *float64 `json:"high,omitempty"`
	Low           *float64 `json:"low,omitempty"`
	PER           *float64 `json:"per,omitempty"`
	PBR           *float64 `json:"pbr,omitempty"`
	EPS           *float64 `json:"eps,omitempty"`
	BPS           *float64 `json:"bps,omitempty"`
}

// Period is the bar granularity requested from the upstream chart endpoint.
type Period string

const (
	Day   Period = "D"
	Week  Period = "W"
	Month Period = "M"
)

// ParsePeriod accepts D, W or M in any case. An empty string means Day.
func ParsePeriod(s string) (Period, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", "D":
		return Day, nil
	case "W":
		return Week, nil
	case "M":
		return Month, nil
	default:
		return "", fmt.Errorf("unknown chart type %q", s)
	}
}

// Lookback is how far back a chart request reaches so that each
// granularity yields roughly a hundred bars.
func (p Period) Lookback() (years int) {
	switch p {
	case Week:
		return 10
	case Month:
		return 30
	default:
		return 2
	}
}

func (p Period) String() string { return string(p) }

// FormatDate renders t as an 8-digit day in Korea Standard Time.
func FormatDate(t time.Time) string { return t.In(KST).Format(DateLayout) }

// SeriesFetcher produces chart series for a symbol and period.
type SeriesFetcher interface {
	FetchSeries(ctx context.Context, symbol string, period Period) (ChartSeries, error)
}

// QuoteFetcher produces the current quote for a symbol.
type QuoteFetcher interface {
	FetchQuote(ctx context.Context, symbol string) (Quote, error)
}

// Float returns a pointer to v, for the optional Quote fields.
func Float(v float64) *float64 { return &v }
