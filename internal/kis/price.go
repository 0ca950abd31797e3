package kis

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"stocker/internal/stock"
)

const (
	inquirePricePath = "/uapi/domestic-stock/v1/quotations/inquire-price"
	inquirePriceTrID = "FHKST01010100"
)

// CurrentPrice fetches the current quote of a domestic symbol.
func (c *Client) CurrentPrice(ctx context.Context, token, symbol string) (stock.Quote, error) {
	query := url.Values{}
	query.Set("FID_COND_MRKT_DIV_CODE", "J")
	query.Set("FID_INPUT_ISCD", symbol)

	body, err := c.get(ctx, token, inquirePriceTrID, inquirePricePath, query)
	if err != nil {
		return stock.Quote{}, err
	}
	q, err := DecodeCurrentPrice(symbol, body)
	if err != nil {
		return stock.Quote{}, fmt.Errorf("current price %s: %w", symbol, err)
	}
	return q, nil
}

// DecodeCurrentPrice decodes an inquire-price payload whose "output" is an object.
func DecodeCurrentPrice(symbol string, body []byte) (stock.Quote, error) {
	root, err := parseResult(body)
	if err != nil {
		return stock.Quote{}, err
	}
	out := root.Get("output")
	if !out.IsObject() {
		return stock.Quote{}, &DecodeError{Reason: "expected output object"}
	}

	name := strings.TrimSpace(out.Get("hts_kor_isnm").String())
	if name == "" {
		name = symbol
	}
	return stock.Quote{
		Symbol:        symbol,
		Name:          name,
		Price:         number(out.Get("stck_prpr")),
		Change:        number(out.Get("prdy_vrss")),
		ChangePercent: number(out.Get("prdy_ctrt")),
		Volume:        integer(out.Get("acml_vol")),
		MarketCap:     integer(out.Get("lstn_stcn")),
		Market:        "KR",
		Open:          stock.Float(number(out.Get("stck_oprc"))),
		High:          stock.Float(number(out.Get("stck_hgpr"))),
		Low:           stock.Float(number(out.Get("stck_lwpr"))),
		PER:           stock.Float(number(out.Get("per"))),
		PBR:           stock.Float(number(out.Get("pbr"))),
		EPS:           stock.Float(number(out.Get("eps"))),
		BPS:           stock.Float(number(out.Get("bps"))),
	}, nil
}
