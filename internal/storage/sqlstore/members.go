package sqlstore

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/clubhouse/internal/models"
	"github.com/mmynk/clubhouse/internal/storage"
)

type memberRow struct {
	ID        string `db:"id"`
	Name      string `db:"name"`
	Nickname  string `db:"nickname"`
	Email     string `db:"email"`
	Phone     string `db:"phone"`
	PhotoURL  string `db:"photo_url"`
	Active    bool   `db:"active"`
	CreatedAt int64  `db:"created_at"`
}

func (r memberRow) model() models.Member {
	return models.Member{
		ID:        r.ID,
		Name:      r.Name,
		Nickname:  r.Nickname,
		Email:     r.Email,
		Phone:     r.Phone,
		PhotoURL:  r.PhotoURL,
		Active:    r.Active,
		CreatedAt: r.CreatedAt,
	}
}

const memberColumns = `id, name, nickname, email, phone, photo_url, active, created_at`

// CreateMember inserts a new member, generating its ID and timestamp if unset.
func (s *Store) CreateMember(ctx context.Context, m *models.Member) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	if m.CreatedAt == 0 {
		m.CreatedAt = time.Now().Unix()
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	_, err := s.db.ExecContext(ctx, s.rebind(`
		INSERT INTO members (`+memberColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`),
		m.ID, m.Name, m.Nickname, m.Email, m.Phone, m.PhotoURL, m.Active, m.CreatedAt,
	)
	if err != nil {
		return writeErr("insert member", err)
	}
	return nil
}

// GetMember retrieves a member by ID.
func (s *Store) GetMember(ctx context.Context, id string) (*models.Member, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var row memberRow
	err := s.db.GetContext(ctx, &row, s.rebind(`SELECT `+memberColumns+` FROM members WHERE id = ?`), id)
	if err != nil {
		return nil, readErr("member", id, err)
	}
	m := row.model()
	return &m, nil
}

// ListMembers returns members ordered by name, then id.
func (s *Store) ListMembers(ctx context.Context, q storage.MemberQuery) ([]models.Member, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	query := `SELECT ` + memberColumns + ` FROM members`
	var args []interface{}
	if q.ActiveOnly {
		query += ` WHERE active = ?`
		args = append(args, true)
	}
	query += ` ORDER BY name, id`

	var rows []memberRow
	if err := s.db.SelectContext(ctx, &rows, s.rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}

	members := make([]models.Member, 0, len(rows))
	for _, r := range rows {
		members = append(members, r.model())
	}
	return members, nil
}

// UpdateMember overwrites every mutable field of the member.
func (s *Store) UpdateMember(ctx context.Context, m *models.Member) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	res, err := s.db.ExecContext(ctx, s.rebind(`
		UPDATE members
		SET name = ?, nickname = ?, email = ?, phone = ?, photo_url = ?, active = ?
		WHERE id = ?`),
		m.Name, m.Nickname, m.Email, m.Phone, m.PhotoURL, m.Active, m.ID,
	)
	if err != nil {
		return writeErr("update member", err)
	}
	return expectOne(res, "member", m.ID)
}

// DeleteMember removes a member along with their fees and confirmations.
func (s *Store) DeleteMember(ctx context.Context, id string) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	res, err := s.db.ExecContext(ctx, s.rebind(`DELETE FROM members WHERE id = ?`), id)
	if err != nil {
		return writeErr("delete member", err)
	}
	return expectOne(res, "member", id)
}
