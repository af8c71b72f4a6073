package calculator

import (
	"github.com/shopspring/decimal"

	"github.com/mmynk/clubhouse/internal/models"
)

// FeeTotals summarises a set of monthly fees.
type FeeTotals struct {
	PaidCount   int
	UnpaidCount int
	Paid        decimal.Decimal // sum of paid fee amounts
	Outstanding decimal.Decimal // sum of unpaid fee amounts
}

// FeeReport counts paid and unpaid fees and sums their amounts.
func FeeReport(fees []models.MonthlyFee) FeeTotals {
	totals := FeeTotals{Paid: decimal.Zero, Outstanding: decimal.Zero}
	for _, f := range fees {
		if f.Paid() {
			totals.PaidCount++
			totals.Paid = totals.Paid.Add(f.Amount)
		} else {
			totals.UnpaidCount++
			totals.Outstanding = totals.Outstanding.Add(f.Amount)
		}
	}
	return totals
}
