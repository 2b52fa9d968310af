package price

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestValidate(t *testing.T) {
	cases := []struct {
		price string
		ok    bool
	}{
		{"0.001", true},
		{"0.35", true},
		{"0.999", true},
		{"0", false},
		{"1", false},
		{"1.01", false},
		{"-0.1", false},
	}
	for _, tc := range cases {
		err := Validate(decimal.RequireFromString(tc.price))
		if tc.ok && err != nil {
			t.Errorf("Validate(%s) = %v, want nil", tc.price, err)
		}
		if !tc.ok && err == nil {
			t.Errorf("Validate(%s) = nil, want error", tc.price)
		}
	}
}

func TestQuantize(t *testing.T) {
	cases := []struct {
		price, tick, want string
	}{
		{"0.3875", "0.001", "0.388"},
		{"0.3875", "0.01", "0.39"},
		{"0.35", "0.01", "0.35"},
		{"0.123456", "0.001", "0.123"},
	}
	for _, tc := range cases {
		got := Quantize(decimal.RequireFromString(tc.price), decimal.RequireFromString(tc.tick))
		if !got.Equal(decimal.RequireFromString(tc.want)) {
			t.Errorf("Quantize(%s, %s) = %s, want %s", tc.price, tc.tick, got, tc.want)
		}
	}
}

func TestQuantizeIdempotent(t *testing.T) {
	for _, tick := range []decimal.Decimal{TickDefault, TickNegRisk} {
		p := decimal.RequireFromString("0.5678901")
		once := Quantize(p, tick)
		twice := Quantize(once, tick)
		if !once.Equal(twice) {
			t.Errorf("Quantize not idempotent for tick %s: %s vs %s", tick, once, twice)
		}
	}
}

func TestTick(t *testing.T) {
	if !Tick(false).Equal(TickDefault) {
		t.Errorf("Tick(false) = %s", Tick(false))
	}
	if !Tick(true).Equal(TickNegRisk) {
		t.Errorf("Tick(true) = %s", Tick(true))
	}
}

func TestDisplay(t *testing.T) {
	cases := []struct {
		price, want string
	}{
		{"0.35", "35¢"},
		{"0.05", "5¢"},
		{"0.345", "35¢"},
		{"0.99", "99¢"},
	}
	for _, tc := range cases {
		if got := Display(decimal.RequireFromString(tc.price)); got != tc.want {
			t.Errorf("Display(%s) = %s, want %s", tc.price, got, tc.want)
		}
	}
}
