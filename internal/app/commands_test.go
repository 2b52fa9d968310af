package app

import (
	"testing"
)

func TestParsePrice(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"35", "0.35", true},
		{"35¢", "0.35", true},
		{"0.35", "0.35", true},
		{"1", "0.01", true},
		{"0.001", "0.001", true},
		{"99", "0.99", true},
		{"0", "", false},
		{"100", "", false},
		{"abc", "", false},
	}
	for _, tc := range cases {
		got, err := parsePrice(tc.in)
		if tc.ok {
			if err != nil {
				t.Errorf("parsePrice(%q) error: %v", tc.in, err)
				continue
			}
			if got.String() != tc.want {
				t.Errorf("parsePrice(%q) = %s, want %s", tc.in, got, tc.want)
			}
		} else if err == nil {
			t.Errorf("parsePrice(%q) accepted", tc.in)
		}
	}
}

func TestParseSize(t *testing.T) {
	if n, err := parseSize("25"); err != nil || n != 25 {
		t.Errorf("parseSize(25) = %d, %v", n, err)
	}
	for _, bad := range []string{"0", "-1", "ten", "1.5"} {
		if _, err := parseSize(bad); err == nil {
			t.Errorf("parseSize(%q) accepted", bad)
		}
	}
}

func TestIsDigits(t *testing.T) {
	if !isDigits("12345") || isDigits("0xabc") || isDigits("") || isDigits("12a") {
		t.Error("isDigits misclassifies")
	}
}
