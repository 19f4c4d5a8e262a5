package deals

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestDealPrice(t *testing.T) {
	cases := []struct {
		price, pct, want string
	}{
		{"100", "20", "80"},
		{"400", "20", "320"},
		{"3.99", "15", "3.39"},
		{"10.00", "33.33", "6.67"},
		{"2.50", "100", "0"},
	}
	for _, tc := range cases {
		got := DealPrice(decimal.RequireFromString(tc.price), decimal.RequireFromString(tc.pct))
		if !got.Equal(decimal.RequireFromString(tc.want)) {
			t.Fatalf("DealPrice(%s, %s) = %s, want %s", tc.price, tc.pct, got, tc.want)
		}
	}
}

func TestIsActiveBounds(t *testing.T) {
	start := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	end := start.Add(48 * time.Hour)
	if !IsActive(start, end, start) || !IsActive(start, end, end) {
		t.Fatal("interval bounds must be inclusive")
	}
	if IsActive(start, end, start.Add(-time.Second)) || IsActive(start, end, end.Add(time.Second)) {
		t.Fatal("outside interval must be inactive")
	}
}
