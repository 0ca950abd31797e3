package kis

import (
	"context"
	"fmt"
	"net/url"

	"github.com/tidwall/gjson"

	"stocker/internal/stock"
)

const (
	dailyItemChartPricePath = "/uapi/domestic-stock/v1/quotations/inquire-daily-itemchartprice"
	dailyItemChartPriceTrID = "FHKST03010100"
)

// ChartQuery selects a period chart for one domestic symbol.
type ChartQuery struct {
	Symbol string
	// Start and End are inclusive 8-digit dates.
	Start  string
	End    string
	Period stock.Period
}

// DailyItemChartPrice fetches the period chart. Bars are returned in upstream
// order (newest first) and are not filtered.
func (c *Client) DailyItemChartPrice(ctx context.Context, token string, q ChartQuery) ([]stock.PriceBar, error) {
	query := url.Values{}
	query.Set("FID_COND_MRKT_DIV_CODE", "J")
	query.Set("FID_INPUT_ISCD", q.Symbol)
	query.Set("FID_INPUT_DATE_1", q.Start)
	query.Set("FID_INPUT_DATE_2", q.End)
	query.Set("FID_PERIOD_DIV_CODE", q.Period.String())
	// 0: adjusted prices, 1: original prices
	query.Set("FID_ORG_ADJ_PRC", "0")

	body, err := c.get(ctx, token, dailyItemChartPriceTrID, dailyItemChartPricePath, query)
	if err != nil {
		return nil, err
	}
	bars, err := DecodeDailyPrices(body)
	if err != nil {
		return nil, fmt.Errorf("daily chart %s: %w", q.Symbol, err)
	}
	return bars, nil
}

// DecodeDailyPrices decodes a period chart payload. Accepted shapes are an
// object holding an "output2" array or, failing that, an "output" array.
func DecodeDailyPrices(body []byte) ([]stock.PriceBar, error) {
	root, err := parseResult(body)
	if err != nil {
		return nil, err
	}

	var rows gjson.Result
	switch {
	case root.Get("output2").IsArray():
		rows = root.Get("output2")
	case root.Get("output").IsArray():
		rows = root.Get("output")
	default:
		return nil, &DecodeError{Reason: "expected output2 or output array"}
	}

	items := rows.Array()
	bars := make([]stock.PriceBar, 0, len(items))
	for i, row := range items {
		if !row.IsObject() {
			return nil, &DecodeError{Reason: fmt.Sprintf("row %d is not an object", i)}
		}
		bars = append(bars, decodeBar(row))
	}
	return bars, nil
}

func decodeBar(row gjson.Result) stock.PriceBar {
	// Only a missing or empty close falls back; a blank one stays and decodes to zero.
	closeField := row.Get("stck_clpr")
	if !closeField.Exists() || closeField.String() == "" {
		closeField = row.Get("stck_prpr")
	}
	return stock.PriceBar{
		Date:   row.Get("stck_bsop_date").String(),
		Open:   number(row.Get("stck_oprc")),
		High:   number(row.Get("stck_hgpr")),
		Low:    number(row.Get("stck_lwpr")),
		Close:  number(closeField),
		Volume: integer(row.Get("acml_vol")),
	}
}
