package rest

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

func stringFromAny(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case json.Number:
		return val.String()
	}
	return ""
}

func floatFromAny(v any) float64 {
	switch val := v.(type) {
	case float64:
		return val
	case string:
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	case json.Number:
		if f, err := val.Float64(); err == nil {
			return f
		}
	}
	return 0
}

func boolFromAny(v any) bool {
	switch val := v.(type) {
	case bool:
		return val
	case string:
		return val == "true"
	}
	return false
}

func decimalFromAny(v any) decimal.Decimal {
	switch val := v.(type) {
	case string:
		if d, err := decimal.NewFromString(val); err == nil {
			return d
		}
	case float64:
		return decimal.NewFromFloat(val)
	}
	return decimal.Zero
}

// stringListFromAny handles Gamma's habit of returning list fields either as
// a real JSON array or as a JSON-encoded string ("[\"a\",\"b\"]").
func stringListFromAny(v any) []string {
	switch val := v.(type) {
	case []any:
		out := make([]string, 0, len(val))
		for _, item := range val {
			if s := stringFromAny(item); s != "" {
				out = append(out, s)
			}
		}
		return out
	case string:
		if val == "" {
			return nil
		}
		var decoded []string
		if err := json.Unmarshal([]byte(val), &decoded); err == nil {
			return decoded
		}
	}
	return nil
}

func timeFromAny(v any) time.Time {
	switch val := v.(type) {
	case string:
		if ts, err := time.Parse(time.RFC3339, val); err == nil {
			return ts
		}
		if sec, err := strconv.ParseInt(val, 10, 64); err == nil {
			return time.Unix(sec, 0).UTC()
		}
	case float64:
		return time.Unix(int64(val), 0).UTC()
	}
	return time.Time{}
}

func parseMarket(raw map[string]any) Market {
	m := Market{
		ID:           stringFromAny(raw["id"]),
		Question:     stringFromAny(raw["question"]),
		Slug:         stringFromAny(raw["slug"]),
		ConditionID:  stringFromAny(raw["conditionId"]),
		NegRisk:      boolFromAny(raw["negRisk"]),
		Active:       boolFromAny(raw["active"]),
		Closed:       boolFromAny(raw["closed"]),
		Volume24hUSD: floatFromAny(raw["volume24hr"]),
	}
	if prices := stringListFromAny(raw["outcomePrices"]); len(prices) > 0 {
		m.YesPrice = decimalFromAny(prices[0])
		if len(prices) > 1 {
			m.NoPrice = decimalFromAny(prices[1])
		} else {
			m.NoPrice = decimal.NewFromInt(1).Sub(m.YesPrice)
		}
	}
	if tokens := stringListFromAny(raw["clobTokenIds"]); len(tokens) > 0 {
		m.YesTokenID = tokens[0]
		if len(tokens) > 1 {
			m.NoTokenID = tokens[1]
		} else {
			m.NoTokenID = tokens[0]
		}
	}
	return m
}

func parseTrade(raw map[string]any) Trade {
	wallet := stringFromAny(raw["proxyWallet"])
	if wallet == "" {
		wallet = stringFromAny(raw["user"])
	}
	name := stringFromAny(raw["name"])
	if name == "" {
		name = stringFromAny(raw["pseudonym"])
	}
	return Trade{
		Side:        stringFromAny(raw["side"]),
		Outcome:     stringFromAny(raw["outcome"]),
		Price:       decimalFromAny(raw["price"]),
		Size:        decimalFromAny(raw["size"]),
		Title:       stringFromAny(raw["title"]),
		Slug:        stringFromAny(raw["slug"]),
		ConditionID: stringFromAny(raw["conditionId"]),
		Wallet:      wallet,
		TraderName:  name,
		Timestamp:   timeFromAny(raw["timestamp"]),
	}
}
