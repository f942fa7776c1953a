package analytics

import "github.com/shopspring/decimal"

// Rounding is half away from zero and only applied when a Snapshot is
// assembled.

func roundMoney(v float64) float64 { return roundTo(v, 2) }

func roundPercent(v float64) float64 { return roundTo(v, 1) }

func roundTo(v float64, places int32) float64 {
	return decimal.NewFromFloat(v).Round(places).InexactFloat64()
}

// growthRate is the percentage change from previous to current, defined as
// 0 when previous is 0.
func growthRate(current, previous float64) float64 {
	if previous == 0 {
		return 0
	}
	return (current - previous) / previous * 100
}

func ratio(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(part) / float64(total) * 100
}
