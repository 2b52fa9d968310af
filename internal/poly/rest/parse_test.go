package rest

import (
	"encoding/json"
	"testing"
)

func TestParseMarketJSONEncodedLists(t *testing.T) {
	// Gamma returns outcomePrices and clobTokenIds as JSON-encoded strings.
	raw := map[string]any{
		"id":            "12345",
		"question":      "Will it rain tomorrow?",
		"slug":          "will-it-rain",
		"conditionId":   "0xabc",
		"negRisk":       true,
		"active":        true,
		"closed":        false,
		"volume24hr":    123456.78,
		"outcomePrices": `["0.35", "0.65"]`,
		"clobTokenIds":  `["111", "222"]`,
	}
	m := parseMarket(raw)
	if m.ID != "12345" || !m.NegRisk || !m.Active || m.Closed {
		t.Errorf("market = %+v", m)
	}
	if m.YesPrice.String() != "0.35" || m.NoPrice.String() != "0.65" {
		t.Errorf("prices = %s / %s", m.YesPrice, m.NoPrice)
	}
	if m.YesTokenID != "111" || m.NoTokenID != "222" {
		t.Errorf("tokens = %s / %s", m.YesTokenID, m.NoTokenID)
	}
	if m.TokenID("yes") != "111" || m.TokenID("no") != "222" {
		t.Error("TokenID lookup broken")
	}
}

func TestParseMarketRealArrays(t *testing.T) {
	raw := map[string]any{
		"id":            "1",
		"outcomePrices": []any{"0.20"},
		"clobTokenIds":  []any{"111"},
	}
	m := parseMarket(raw)
	if m.YesPrice.String() != "0.2" {
		t.Errorf("yes price = %s", m.YesPrice)
	}
	// A single price implies the complement for the no side.
	if m.NoPrice.String() != "0.8" {
		t.Errorf("no price = %s", m.NoPrice)
	}
}

func TestParseMarketIgnoresGarbageLists(t *testing.T) {
	raw := map[string]any{"id": "1", "outcomePrices": "not json", "clobTokenIds": 42}
	m := parseMarket(raw)
	if !m.YesPrice.IsZero() || m.YesTokenID != "" {
		t.Errorf("market = %+v", m)
	}
}

func TestParseTrade(t *testing.T) {
	var raw map[string]any
	payload := `{
		"side": "BUY",
		"outcome": "Yes",
		"price": 0.42,
		"size": "1200",
		"title": "Will it rain?",
		"conditionId": "0xabc",
		"proxyWallet": "0xwallet",
		"pseudonym": "RainMan",
		"timestamp": 1724500000
	}`
	if err := json.Unmarshal([]byte(payload), &raw); err != nil {
		t.Fatal(err)
	}
	tr := parseTrade(raw)
	if tr.Side != "BUY" || tr.Outcome != "Yes" || tr.Wallet != "0xwallet" || tr.TraderName != "RainMan" {
		t.Errorf("trade = %+v", tr)
	}
	if tr.NotionalUSD().String() != "504" {
		t.Errorf("notional = %s", tr.NotionalUSD())
	}
	if tr.Timestamp.IsZero() {
		t.Error("timestamp not parsed")
	}
}

func TestFromAnyHelpers(t *testing.T) {
	if got := floatFromAny("12.5"); got != 12.5 {
		t.Errorf("floatFromAny = %f", got)
	}
	if !boolFromAny("true") || boolFromAny("yes") {
		t.Error("boolFromAny string handling")
	}
	if got := stringFromAny(float64(42)); got != "42" {
		t.Errorf("stringFromAny = %q", got)
	}
	if !decimalFromAny(nil).IsZero() {
		t.Error("decimalFromAny(nil) not zero")
	}
}
