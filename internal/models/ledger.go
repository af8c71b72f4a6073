package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountGroup classifies accounts and the postings made against them.
type AccountGroup string

const (
	AccountGroupRevenue AccountGroup = "revenue"
	AccountGroupExpense AccountGroup = "expense"
)

// Valid reports whether g is a known group.
func (g AccountGroup) Valid() bool {
	return g == AccountGroupRevenue || g == AccountGroupExpense
}

// Account is an entry in the chart of accounts.
type Account struct {
	// ID is the unique identifier for the account (UUID format).
	ID string

	// Description is the display name (e.g., "Court rental", "Monthly fees").
	Description string

	// Group decides the sign of every posting made against this account.
	Group AccountGroup

	// CreatedAt is the Unix timestamp when the account was created.
	CreatedAt int64
}

// Posting is a single dated ledger record.
// Value is never negative; the sign is implied by Group.
type Posting struct {
	// ID is the unique identifier for the posting (UUID format).
	ID string

	// AccountID references the Account this posting belongs to.
	AccountID string

	// Date is the calendar date of the posting, at UTC midnight.
	Date time.Time

	// Value is the non-negative amount in currency units (12.50 means 12.50).
	Value decimal.Decimal

	// Group is copied from the account when the posting is written.
	Group AccountGroup

	// Beneficiary is an optional free-text payee or payer.
	Beneficiary string

	// ReferenceMonth is an optional YYYY-MM the posting relates to (e.g., the month a fee covers).
	ReferenceMonth string

	// Description is an optional note.
	Description string

	// CreatedAt is the Unix timestamp when the posting was recorded.
	CreatedAt int64
}

// Signed returns the posting's value with the sign implied by its group.
func (p Posting) Signed() decimal.Decimal {
	if p.Group == AccountGroupExpense {
		return p.Value.Neg()
	}
	return p.Value
}

// MonthlyFee is a member's dues for one reference month.
type MonthlyFee struct {
	// ID is the unique identifier for the fee (UUID format).
	ID string

	// MemberID is the member who owes the fee.
	MemberID string

	// ReferenceMonth is the YYYY-MM the fee covers.
	ReferenceMonth string

	// Amount is the fee due.
	Amount decimal.Decimal

	// PaidOn is the payment date, nil while unpaid.
	PaidOn *time.Time

	// PostingID references the revenue posting that recorded the payment.
	// Empty while unpaid. Must never reference a deleted posting.
	PostingID string

	// CreatedAt is the Unix timestamp when the fee was generated.
	CreatedAt int64
}

// Paid reports whether the fee has a payment linked.
func (f MonthlyFee) Paid() bool {
	return f.PaidOn != nil && f.PostingID != ""
}
