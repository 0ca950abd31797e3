package gateway

import (
	"context"

	"stocker/internal/credential"
	"stocker/internal/kis"
	"stocker/internal/stock"
)

// Upstream is the quotation API the gateway reads from.
//
//go:generate mockgen -package=gateway_test -destination=mock_deps_test.go -source=deps.go Upstream,Credentials
type Upstream interface {
	DailyItemChartPrice(ctx context.Context, token string, q kis.ChartQuery) ([]stock.PriceBar, error)
	CurrentPrice(ctx context.Context, token, symbol string) (stock.Quote, error)
}

// Credentials hands out bearer tokens for Upstream.
type Credentials interface {
	Get(ctx context.Context) (credential.Credential, error)
	Refresh(ctx context.Context) (credential.Credential, error)
}
