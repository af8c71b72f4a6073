package calculator

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/mmynk/clubhouse/internal/models"
)

// PostingWithBalance pairs a posting with the balance after applying it.
type PostingWithBalance struct {
	Posting models.Posting
	Balance decimal.Decimal
}

// RunningBalances orders postings by (date, created_at, id) and attaches the
// running balance starting from opening. The input slice is not modified.
func RunningBalances(opening decimal.Decimal, postings []models.Posting) []PostingWithBalance {
	sorted := make([]models.Posting, len(postings))
	copy(sorted, postings)
	SortPostings(sorted)

	out := make([]PostingWithBalance, 0, len(sorted))
	balance := opening
	for _, p := range sorted {
		balance = balance.Add(p.Signed())
		out = append(out, PostingWithBalance{Posting: p, Balance: balance})
	}
	return out
}

// SortPostings sorts in place by date, then creation time, then id.
func SortPostings(postings []models.Posting) {
	sort.SliceStable(postings, func(i, j int) bool {
		a, b := postings[i], postings[j]
		if !a.Date.Equal(b.Date) {
			return a.Date.Before(b.Date)
		}
		if a.CreatedAt != b.CreatedAt {
			return a.CreatedAt < b.CreatedAt
		}
		return a.ID < b.ID
	})
}
