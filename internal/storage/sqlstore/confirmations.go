package sqlstore

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/clubhouse/internal/models"
)

type confirmationRow struct {
	ID        string `db:"id"`
	GameID    string `db:"game_id"`
	MemberID  string `db:"member_id"`
	Status    string `db:"status"`
	CreatedAt int64  `db:"created_at"`
}

// CreateConfirmation records an RSVP. The unique (game_id, member_id) index
// turns a second confirmation into storage.ErrConflict.
func (s *Store) CreateConfirmation(ctx context.Context, c *models.Confirmation) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	if c.CreatedAt == 0 {
		c.CreatedAt = time.Now().Unix()
	}
	if c.Status == "" {
		c.Status = models.ConfirmationStatusConfirmed
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	_, err := s.db.ExecContext(ctx, s.rebind(`
		INSERT INTO confirmations (id, game_id, member_id, status, created_at)
		VALUES (?, ?, ?, ?, ?)`),
		c.ID, c.GameID, c.MemberID, string(c.Status), c.CreatedAt,
	)
	if err != nil {
		return writeErr("insert confirmation", err)
	}
	return nil
}

// ListConfirmations returns a game's confirmations in the order they arrived.
func (s *Store) ListConfirmations(ctx context.Context, gameID string) ([]models.Confirmation, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var rows []confirmationRow
	err := s.db.SelectContext(ctx, &rows, s.rebind(`
		SELECT id, game_id, member_id, status, created_at
		FROM confirmations WHERE game_id = ?
		ORDER BY created_at, id`), gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to list confirmations: %w", err)
	}

	out := make([]models.Confirmation, 0, len(rows))
	for _, r := range rows {
		out = append(out, models.Confirmation{
			ID:        r.ID,
			GameID:    r.GameID,
			MemberID:  r.MemberID,
			Status:    models.ConfirmationStatus(r.Status),
			CreatedAt: r.CreatedAt,
		})
	}
	return out, nil
}
