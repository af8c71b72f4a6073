package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mmynk/clubhouse/internal/models"
	"github.com/mmynk/clubhouse/internal/storage"
)

type feeRow struct {
	ID             string          `db:"id"`
	MemberID       string          `db:"member_id"`
	ReferenceMonth string          `db:"reference_month"`
	Amount         decimal.Decimal `db:"amount"`
	PaidOn         sql.NullString  `db:"paid_on"`
	PostingID      sql.NullString  `db:"posting_id"`
	CreatedAt      int64           `db:"created_at"`
}

func (r feeRow) model() (models.MonthlyFee, error) {
	f := models.MonthlyFee{
		ID:             r.ID,
		MemberID:       r.MemberID,
		ReferenceMonth: r.ReferenceMonth,
		Amount:         r.Amount,
		PostingID:      r.PostingID.String,
		CreatedAt:      r.CreatedAt,
	}
	if r.PaidOn.Valid {
		paidOn, err := models.ParseDate(r.PaidOn.String)
		if err != nil {
			return models.MonthlyFee{}, fmt.Errorf("fee %s: %w", r.ID, err)
		}
		f.PaidOn = &paidOn
	}
	return f, nil
}

const feeColumns = `id, member_id, reference_month, amount, paid_on, posting_id, created_at`

// CreateFee inserts an unpaid fee.
func (s *Store) CreateFee(ctx context.Context, f *models.MonthlyFee) error {
	if f.ID == "" {
		f.ID = uuid.New().String()
	}
	if f.CreatedAt == 0 {
		f.CreatedAt = time.Now().Unix()
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	_, err := s.db.ExecContext(ctx, s.rebind(`
		INSERT INTO monthly_fees (id, member_id, reference_month, amount, created_at)
		VALUES (?, ?, ?, ?, ?)`),
		f.ID, f.MemberID, f.ReferenceMonth, f.Amount.String(), f.CreatedAt,
	)
	if err != nil {
		return writeErr("insert fee", err)
	}
	return nil
}

// GetFee retrieves a fee by ID.
func (s *Store) GetFee(ctx context.Context, id string) (*models.MonthlyFee, error) {
	return s.getFee(ctx, "id", id)
}

// GetFeeByPosting retrieves the fee paid by the given posting.
func (s *Store) GetFeeByPosting(ctx context.Context, postingID string) (*models.MonthlyFee, error) {
	return s.getFee(ctx, "posting_id", postingID)
}

func (s *Store) getFee(ctx context.Context, column, value string) (*models.MonthlyFee, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var row feeRow
	err := s.db.GetContext(ctx, &row, s.rebind(`SELECT `+feeColumns+` FROM monthly_fees WHERE `+column+` = ?`), value)
	if err != nil {
		return nil, readErr("fee", value, err)
	}
	f, err := row.model()
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// ListFees returns fees ordered by reference month, then member.
func (s *Store) ListFees(ctx context.Context, q storage.FeeQuery) ([]models.MonthlyFee, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var where []string
	var args []interface{}
	if q.MemberID != "" {
		where = append(where, "member_id = ?")
		args = append(args, q.MemberID)
	}
	if q.ReferenceMonth != "" {
		where = append(where, "reference_month = ?")
		args = append(args, q.ReferenceMonth)
	}
	if q.UnpaidOnly {
		where = append(where, "posting_id IS NULL")
	}

	query := `SELECT ` + feeColumns + ` FROM monthly_fees`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY reference_month, member_id`

	var rows []feeRow
	if err := s.db.SelectContext(ctx, &rows, s.rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to list fees: %w", err)
	}

	fees := make([]models.MonthlyFee, 0, len(rows))
	for _, r := range rows {
		f, err := r.model()
		if err != nil {
			return nil, err
		}
		fees = append(fees, f)
	}
	return fees, nil
}

// MarkFeePaid links a fee to the posting that recorded its payment. A fee
// that is already linked is left alone and storage.ErrConflict is returned.
func (s *Store) MarkFeePaid(ctx context.Context, feeID string, paidOn time.Time, postingID string) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	res, err := s.db.ExecContext(ctx, s.rebind(`
		UPDATE monthly_fees SET paid_on = ?, posting_id = ?
		WHERE id = ? AND posting_id IS NULL`),
		formatDate(paidOn), nullString(postingID), feeID,
	)
	if err != nil {
		return writeErr("mark fee paid", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if n > 0 {
		return nil
	}

	// Nothing updated: either the fee is gone or another payment won.
	var linked sql.NullString
	err = s.db.GetContext(ctx, &linked, s.rebind(`SELECT posting_id FROM monthly_fees WHERE id = ?`), feeID)
	if err != nil {
		return readErr("fee", feeID, err)
	}
	return fmt.Errorf("fee %s already paid by posting %s: %w", feeID, linked.String, storage.ErrConflict)
}
