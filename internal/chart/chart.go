// Package chart converts price bars into the point shapes a candlestick
// widget consumes.
package chart

import "stocker/internal/stock"

// ColorTag marks a volume bar as a rising or falling day.
type ColorTag string

const (
	Up   ColorTag = "up"
	Down ColorTag = "down"
)

// Colors are the widget colours for each tag.
var Colors = map[ColorTag]string{
	Up:   "#fd0400",
	Down: "#2e37e9",
}

// Candle is one OHLC point.
type Candle struct {
	Time  string  `json:"time"`
	Open  float64 `json:"open"`
	High  float64 `json:"high"`
	Low   float64 `json:"low"`
	Close float64 `json:"close"`
}

// Volume is one histogram point.
type Volume struct {
	Time     string   `json:"time"`
	Value    int64    `json:"value"`
	ColorTag ColorTag `json:"colorTag"`
}

// ConvertDate turns YYYYMMDD into YYYY-MM-DD. Any other length is returned unchanged.
func ConvertDate(s string) string {
	if len(s) != 8 {
		return s
	}
	return s[:4] + "-" + s[4:6] + "-" + s[6:]
}

// ToSeriesPoints maps bars one to one into candles and volumes, keeping order.
func ToSeriesPoints(bars []stock.PriceBar) ([]Candle, []Volume) {
	candles := make([]Candle, len(bars))
	volumes := make([]Volume, len(bars))
	for i, b := range bars {
		t := ConvertDate(b.Date)
		candles[i] = Candle{Time: t, Open: b.Open, High: b.High, Low: b.Low, Close: b.Close}

		tag := Down
		if b.Close >= b.Open {
			tag = Up
		}
		volumes[i] = Volume{Time: t, Value: b.Volume, ColorTag: tag}
	}
	return candles, volumes
}
