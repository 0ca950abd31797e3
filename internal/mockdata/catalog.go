package mockdata

import (
	"slices"

	"stocker/internal/stock"
)

// Entry is a symbol and its display name.
type Entry struct {
	Symbol string
	Name   string
}

// MainKorean lists the large caps shown on the main board.
var MainKorean = []Entry{
	{"005930", "삼성전자"},
	{"000660", "SK하이닉스"},
	{"035420", "NAVER"},
	{"035720", "카카오"},
	{"051910", "LG화학"},
	{"207940", "삼성바이오로직스"},
	{"005380", "현대차"},
	{"068270", "셀트리온"},
	{"105560", "KB금융"},
	{"055550", "신한지주"},
}

// Popular names chart series fetched from upstream.
var Popular = []Entry{
	{"005930", "삼성전자"},
	{"000660", "SK하이닉스"},
	{"035420", "NAVER"},
	{"035720", "카카오"},
	{"051910", "LG화학"},
}

var koreanQuotes = []stock.Quote{
	{
		Symbol: "005930", Name: "삼성전자",
		Price: 70000, Change: 1000, ChangePercent: 1.45, Volume: 1000000,
		Market: "KOSPI", MarketCap: 2000000000000,
		Open: stock.Float(69000), High: stock.Float(71000), Low: stock.Float(68900),
		PER: stock.Float(10.5), PBR: stock.Float(1.2), EPS: stock.Float(6666.67), BPS: stock.Float(58333.33),
	},
	{
		Symbol: "035720", Name: "카카오",
		Price: 50000, Change: -2000, ChangePercent: -3.85, Volume: 500000,
		Market: "KOSPI", MarketCap: 2000000000000,
		Open: stock.Float(52000), High: stock.Float(52500), Low: stock.Float(49500),
		PER: stock.Float(25.0), PBR: stock.Float(2.5), EPS: stock.Float(2000.0), BPS: stock.Float(20000.0),
	},
}

var foreignQuotes = []stock.Quote{
	{
		Symbol: "AAPL", Name: "Apple Inc.",
		Price: 180.5, Change: 2.5, ChangePercent: 1.4, Volume: 5000000,
		Market: "NASDAQ", MarketCap: 2000000000000,
		Open: stock.Float(178.0), High: stock.Float(182.0), Low: stock.Float(177.5),
		PER: stock.Float(28.5), PBR: stock.Float(35.2), EPS: stock.Float(6.33), BPS: stock.Float(5.13),
	},
	{
		Symbol: "MSFT", Name: "Microsoft Corporation",
		Price: 420.75, Change: -3.25, ChangePercent: -0.77, Volume: 3000000,
		Market: "NASDAQ", MarketCap: 2000000000000,
		Open: stock.Float(424.0), High: stock.Float(425.5), Low: stock.Float(419.0),
		PER: stock.Float(35.8), PBR: stock.Float(12.4), EPS: stock.Float(11.75), BPS: stock.Float(33.93),
	},
}

// KoreanQuotes returns a copy of the static domestic quotes.
func KoreanQuotes() []stock.Quote { return cloneQuotes(koreanQuotes) }

// ForeignQuotes returns a copy of the static foreign quotes.
func ForeignQuotes() []stock.Quote { return cloneQuotes(foreignQuotes) }

// Lookup finds a static quote, domestic first.
func Lookup(symbol string) (stock.Quote, bool) {
	for _, list := range [][]stock.Quote{koreanQuotes, foreignQuotes} {
		if i := slices.IndexFunc(list, func(q stock.Quote) bool { return q.Symbol == symbol }); i >= 0 {
			return cloneQuote(list[i]), true
		}
	}
	return stock.Quote{}, false
}

// NameOf returns the popular-list name of symbol, or symbol itself.
func NameOf(symbol string) string {
	if name, ok := find(Popular, symbol); ok {
		return name
	}
	return symbol
}

// MainName returns the main-board name of symbol, if listed.
func MainName(symbol string) (string, bool) { return find(MainKorean, symbol) }

func find(list []Entry, symbol string) (string, bool) {
	for _, e := range list {
		if e.Symbol == symbol {
			return e.Name, true
		}
	}
	return "", false
}

func cloneQuotes(in []stock.Quote) []stock.Quote {
	out := make([]stock.Quote, len(in))
	for i, q := range in {
		out[i] = cloneQuote(q)
	}
	return out
}

// cloneQuote copies the optional fields so callers cannot mutate the catalog.
func cloneQuote(q stock.Quote) stock.Quote {
	for _, p := range []**float64{&q.Open, &q.High, &q.Low, &q.PER, &q.PBR, &q.EPS, &q.BPS} {
		if *p != nil {
			*p = stock.Float(**p)
		}
	}
	return q
}
