package service

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestCalculateFee(t *testing.T) {
	t.Parallel()

	entry := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	five := decimal.NewFromInt(5)

	tests := []struct {
		name    string
		elapsed time.Duration
		rate    decimal.Decimal
		want    string
	}{
		{name: "immediate exit", elapsed: 0, rate: five, want: "0.00"},
		{name: "one second", elapsed: time.Second, rate: five, want: "0.08"},
		{name: "ninety seconds", elapsed: 90 * time.Second, rate: five, want: "7.50"},
		{name: "two hours", elapsed: 2 * time.Hour, rate: five, want: "600.00"},
		{name: "half rounds to even down", elapsed: 1500 * time.Millisecond, rate: five, want: "0.12"},
		{name: "half rounds to even up", elapsed: 4500 * time.Millisecond, rate: five, want: "0.38"},
		{name: "negative elapsed", elapsed: -time.Minute, rate: five, want: "0.00"},
		{name: "fractional rate", elapsed: 10 * time.Minute, rate: decimal.RequireFromString("1.15"), want: "11.50"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := CalculateFee(entry, entry.Add(tt.elapsed), tt.rate)
			if got.StringFixed(2) != tt.want {
				t.Fatalf("expected %s, got %s", tt.want, got.StringFixed(2))
			}
		})
	}
}
