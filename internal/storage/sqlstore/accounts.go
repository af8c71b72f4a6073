package sqlstore

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/clubhouse/internal/models"
	"github.com/mmynk/clubhouse/internal/storage"
)

type accountRow struct {
	ID          string `db:"id"`
	Description string `db:"description"`
	Group       string `db:"account_group"`
	CreatedAt   int64  `db:"created_at"`
}

func (r accountRow) model() models.Account {
	return models.Account{
		ID:          r.ID,
		Description: r.Description,
		Group:       models.AccountGroup(r.Group),
		CreatedAt:   r.CreatedAt,
	}
}

// CreateAccount inserts a new account.
func (s *Store) CreateAccount(ctx context.Context, a *models.Account) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	if a.CreatedAt == 0 {
		a.CreatedAt = time.Now().Unix()
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	_, err := s.db.ExecContext(ctx, s.rebind(`
		INSERT INTO accounts (id, description, account_group, created_at)
		VALUES (?, ?, ?, ?)`),
		a.ID, a.Description, string(a.Group), a.CreatedAt,
	)
	if err != nil {
		return writeErr("insert account", err)
	}
	return nil
}

// GetAccount retrieves an account by ID.
func (s *Store) GetAccount(ctx context.Context, id string) (*models.Account, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var row accountRow
	err := s.db.GetContext(ctx, &row, s.rebind(`
		SELECT id, description, account_group, created_at FROM accounts WHERE id = ?`), id)
	if err != nil {
		return nil, readErr("account", id, err)
	}
	a := row.model()
	return &a, nil
}

// ListAccounts returns every account ordered by description.
func (s *Store) ListAccounts(ctx context.Context) ([]models.Account, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var rows []accountRow
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, description, account_group, created_at FROM accounts ORDER BY description, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}

	accounts := make([]models.Account, 0, len(rows))
	for _, r := range rows {
		accounts = append(accounts, r.model())
	}
	return accounts, nil
}

// UpdateAccount renames or regroups an account. Postings follow the account's group.
func (s *Store) UpdateAccount(ctx context.Context, a *models.Account) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, s.rebind(`
		UPDATE accounts SET description = ?, account_group = ? WHERE id = ?`),
		a.Description, string(a.Group), a.ID,
	)
	if err != nil {
		return writeErr("update account", err)
	}
	if err := expectOne(res, "account", a.ID); err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, s.rebind(`
		UPDATE postings SET account_group = ? WHERE account_id = ?`),
		string(a.Group), a.ID,
	)
	if err != nil {
		return writeErr("regroup postings", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// DeleteAccount removes an account that has no postings.
func (s *Store) DeleteAccount(ctx context.Context, id string) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var count int
	if err := s.db.GetContext(ctx, &count, s.rebind(`SELECT COUNT(*) FROM postings WHERE account_id = ?`), id); err != nil {
		return fmt.Errorf("failed to count postings: %w", err)
	}
	if count > 0 {
		return fmt.Errorf("account %s has %d postings: %w", id, count, storage.ErrReferenced)
	}

	res, err := s.db.ExecContext(ctx, s.rebind(`DELETE FROM accounts WHERE id = ?`), id)
	if err != nil {
		return writeErr("delete account", err)
	}
	return expectOne(res, "account", id)
}
