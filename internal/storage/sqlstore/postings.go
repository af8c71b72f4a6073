package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mmynk/clubhouse/internal/models"
	"github.com/mmynk/clubhouse/internal/storage"
)

type postingRow struct {
	ID             string          `db:"id"`
	AccountID      string          `db:"account_id"`
	Date           string          `db:"posting_date"`
	Value          decimal.Decimal `db:"value"`
	Group          string          `db:"account_group"`
	Beneficiary    string          `db:"beneficiary"`
	ReferenceMonth string          `db:"reference_month"`
	Description    string          `db:"description"`
	CreatedAt      int64           `db:"created_at"`
}

func (r postingRow) model() (models.Posting, error) {
	date, err := models.ParseDate(r.Date)
	if err != nil {
		return models.Posting{}, fmt.Errorf("posting %s: %w", r.ID, err)
	}
	return models.Posting{
		ID:             r.ID,
		AccountID:      r.AccountID,
		Date:           date,
		Value:          r.Value,
		Group:          models.AccountGroup(r.Group),
		Beneficiary:    r.Beneficiary,
		ReferenceMonth: r.ReferenceMonth,
		Description:    r.Description,
		CreatedAt:      r.CreatedAt,
	}, nil
}

const postingColumns = `id, account_id, posting_date, value, account_group, beneficiary, reference_month, description, created_at`

// CreatePosting inserts a posting. The group is copied from the account in the
// same statement so it can never disagree with it.
func (s *Store) CreatePosting(ctx context.Context, p *models.Posting) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	if p.CreatedAt == 0 {
		p.CreatedAt = time.Now().Unix()
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var group string
	if err := tx.GetContext(ctx, &group, s.rebind(`SELECT account_group FROM accounts WHERE id = ?`), p.AccountID); err != nil {
		return readErr("account", p.AccountID, err)
	}
	p.Group = models.AccountGroup(group)

	_, err = tx.ExecContext(ctx, s.rebind(`
		INSERT INTO postings (`+postingColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		p.ID, p.AccountID, formatDate(p.Date), p.Value.String(), group,
		p.Beneficiary, p.ReferenceMonth, p.Description, p.CreatedAt,
	)
	if err != nil {
		return writeErr("insert posting", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetPosting retrieves a posting by ID.
func (s *Store) GetPosting(ctx context.Context, id string) (*models.Posting, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var row postingRow
	err := s.db.GetContext(ctx, &row, s.rebind(`SELECT `+postingColumns+` FROM postings WHERE id = ?`), id)
	if err != nil {
		return nil, readErr("posting", id, err)
	}
	p, err := row.model()
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ListPostings returns postings ordered by date, created_at, id.
func (s *Store) ListPostings(ctx context.Context, q storage.PostingQuery) ([]models.Posting, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var where []string
	var args []interface{}
	if q.AccountID != "" {
		where = append(where, "account_id = ?")
		args = append(args, q.AccountID)
	}
	// ISO dates compare correctly as text
	if !q.From.IsZero() {
		where = append(where, "posting_date >= ?")
		args = append(args, formatDate(q.From))
	}
	if !q.To.IsZero() {
		where = append(where, "posting_date <= ?")
		args = append(args, formatDate(q.To))
	}

	query := `SELECT ` + postingColumns + ` FROM postings`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY posting_date, created_at, id`

	var rows []postingRow
	if err := s.db.SelectContext(ctx, &rows, s.rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to list postings: %w", err)
	}

	postings := make([]models.Posting, 0, len(rows))
	for _, r := range rows {
		p, err := r.model()
		if err != nil {
			return nil, err
		}
		postings = append(postings, p)
	}
	return postings, nil
}

// UpdatePosting overwrites a posting, re-copying the group from its account.
func (s *Store) UpdatePosting(ctx context.Context, p *models.Posting) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var group string
	if err := tx.GetContext(ctx, &group, s.rebind(`SELECT account_group FROM accounts WHERE id = ?`), p.AccountID); err != nil {
		return readErr("account", p.AccountID, err)
	}
	p.Group = models.AccountGroup(group)

	res, err := tx.ExecContext(ctx, s.rebind(`
		UPDATE postings
		SET account_id = ?, posting_date = ?, value = ?, account_group = ?,
		    beneficiary = ?, reference_month = ?, description = ?
		WHERE id = ?`),
		p.AccountID, formatDate(p.Date), p.Value.String(), group,
		p.Beneficiary, p.ReferenceMonth, p.Description, p.ID,
	)
	if err != nil {
		return writeErr("update posting", err)
	}
	if err := expectOne(res, "posting", p.ID); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// DeletePosting removes a posting. A fee still linked to it makes this fail
// with storage.ErrReferenced.
func (s *Store) DeletePosting(ctx context.Context, id string) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	res, err := s.db.ExecContext(ctx, s.rebind(`DELETE FROM postings WHERE id = ?`), id)
	if err != nil {
		return writeErr("delete posting", err)
	}
	return expectOne(res, "posting", id)
}

// UnlinkAndDeletePosting marks the fee paid by the posting unpaid, if there is
// one, and then deletes the posting. Both happen in one transaction, so on any
// failure the fee keeps its link and the posting stays. It returns the ID of
// the unlinked fee, or "" when the posting paid no fee.
func (s *Store) UnlinkAndDeletePosting(ctx context.Context, id string) (string, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var feeID string
	err = tx.GetContext(ctx, &feeID, s.rebind(`SELECT id FROM monthly_fees WHERE posting_id = ?`), id)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		feeID = ""
	case err != nil:
		return "", fmt.Errorf("failed to find fee for posting: %w", err)
	default:
		res, err := tx.ExecContext(ctx, s.rebind(`
			UPDATE monthly_fees SET paid_on = NULL, posting_id = NULL WHERE id = ?`), feeID)
		if err != nil {
			return "", writeErr("clear fee payment", err)
		}
		if err := expectOne(res, "fee", feeID); err != nil {
			return "", err
		}
	}

	res, err := tx.ExecContext(ctx, s.rebind(`DELETE FROM postings WHERE id = ?`), id)
	if err != nil {
		return "", writeErr("delete posting", err)
	}
	if err := expectOne(res, "posting", id); err != nil {
		return "", err
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit transaction: %w", err)
	}
	return feeID, nil
}
