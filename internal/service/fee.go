package service

import (
	"time"

	"github.com/shopspring/decimal"
)

// DefaultFeeRate is charged per started or partial minute of parking, pro rata.
var DefaultFeeRate = decimal.NewFromInt(5)

var nanosPerMinute = decimal.NewFromInt(int64(time.Minute))

// CalculateFee charges ratePerMinute for the elapsed wall-clock time between entry and
// exit, rounded half-to-even to two decimal places. An exit before the entry costs zero.
func CalculateFee(entry, exit time.Time, ratePerMinute decimal.Decimal) decimal.Decimal {
	elapsed := exit.Sub(entry)
	if elapsed <= 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(elapsed)).
		Mul(ratePerMinute).
		Div(nanosPerMinute).
		RoundBank(2)
}
