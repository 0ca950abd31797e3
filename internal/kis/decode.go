package kis

import (
	"strings"

	"github.com/shopspring/decimal"
	"github.com/tidwall/gjson"
)

// parseResult validates body as JSON and surfaces an rt_cd failure.
func parseResult(body []byte) (gjson.Result, error) {
	if !gjson.ValidBytes(body) {
		return gjson.Result{}, &DecodeError{Reason: "invalid json"}
	}
	root := gjson.ParseBytes(body)
	if !root.IsObject() {
		return gjson.Result{}, &DecodeError{Reason: "expected a json object"}
	}
	if rt := root.Get("rt_cd"); rt.Exists() && rt.String() != "0" {
		return gjson.Result{}, &APIError{
			Code:    rt.String(),
			MsgCode: root.Get("msg_cd").String(),
			Message: strings.TrimSpace(root.Get("msg1").String()),
		}
	}
	return root, nil
}

// number parses an upstream numeric string. Missing, blank or unparsable
// values become zero, which is what the dashboard has always shown for them.
func number(r gjson.Result) float64 {
	d, ok := parseDecimal(r)
	if !ok {
		return 0
	}
	return d.InexactFloat64()
}

// integer is number for counts such as volume.
func integer(r gjson.Result) int64 {
	d, ok := parseDecimal(r)
	if !ok {
		return 0
	}
	return d.IntPart()
}

func parseDecimal(r gjson.Result) (decimal.Decimal, bool) {
	s := strings.TrimSpace(r.String())
	if s == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}
