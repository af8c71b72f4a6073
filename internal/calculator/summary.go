package calculator

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmynk/clubhouse/internal/models"
)

// Filter narrows the window of postings a summary totals.
// Zero-valued optional fields do not filter.
type Filter struct {
	StartDate   time.Time
	EndDate     time.Time // zero means no upper bound
	AccountID   string
	Group       models.AccountGroup
	Beneficiary string
}

// Summary is the derived view of the ledger for one window.
// ClosingBalance always equals OpeningBalance + TotalRevenue - TotalExpense.
type Summary struct {
	OpeningBalance decimal.Decimal
	TotalRevenue   decimal.Decimal
	TotalExpense   decimal.Decimal
	ClosingBalance decimal.Decimal
}

// ComputeSummary folds the ledger into opening balance, window totals and
// closing balance. It returns ok=false when no start date is set, which
// callers treat as "nothing loaded yet".
//
// Algorithm:
// - Opening: base plus every posting dated before the start day, whatever the filter
// - Window: postings from start of StartDate through end of EndDate matching the filter
// - Totals: revenue and expense values summed separately (values are never negative)
// - Closing: opening + revenue - expense
func ComputeSummary(postings []models.Posting, base decimal.Decimal, f Filter) (Summary, bool) {
	if f.StartDate.IsZero() {
		return Summary{}, false
	}

	opening := OpeningBalance(postings, base, f.StartDate)

	revenue := decimal.Zero
	expense := decimal.Zero
	for _, p := range Window(postings, f) {
		switch p.Group {
		case models.AccountGroupRevenue:
			revenue = revenue.Add(p.Value)
		case models.AccountGroupExpense:
			expense = expense.Add(p.Value)
		}
	}

	return Summary{
		OpeningBalance: opening,
		TotalRevenue:   revenue,
		TotalExpense:   expense,
		ClosingBalance: opening.Add(revenue).Sub(expense),
	}, true
}

// OpeningBalance is the balance immediately before the start of the given day.
func OpeningBalance(postings []models.Posting, base decimal.Decimal, start time.Time) decimal.Decimal {
	cutoff := models.StartOfDay(start)
	balance := base
	for _, p := range postings {
		if p.Date.Before(cutoff) {
			balance = balance.Add(p.Signed())
		}
	}
	return balance
}

// Window returns the postings inside the filter's date range that match every
// set filter field. Order is preserved.
func Window(postings []models.Posting, f Filter) []models.Posting {
	from := models.StartOfDay(f.StartDate)
	var to time.Time
	if !f.EndDate.IsZero() {
		to = models.EndOfDay(f.EndDate)
	}

	var out []models.Posting
	for _, p := range postings {
		if p.Date.Before(from) {
			continue
		}
		if !to.IsZero() && p.Date.After(to) {
			continue
		}
		if f.AccountID != "" && p.AccountID != f.AccountID {
			continue
		}
		if f.Group != "" && p.Group != f.Group {
			continue
		}
		// An empty beneficiary never matches a beneficiary filter
		if f.Beneficiary != "" && p.Beneficiary != f.Beneficiary {
			continue
		}
		out = append(out, p)
	}
	return out
}
