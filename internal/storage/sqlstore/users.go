package sqlstore

import (
	"context"
	"time"

	"github.com/mmynk/clubhouse/internal/models"
)

type userRow struct {
	ID           string `db:"id"`
	Email        string `db:"email"`
	DisplayName  string `db:"display_name"`
	Nickname     string `db:"nickname"`
	PasswordHash string `db:"password_hash"`
	IsAdmin      bool   `db:"is_admin"`
	CreatedAt    int64  `db:"created_at"`
	UpdatedAt    int64  `db:"updated_at"`
}

const userColumns = `id, email, display_name, nickname, password_hash, is_admin, created_at, updated_at`

// CreateUser inserts a new user into the database.
func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	_, err := s.db.ExecContext(ctx, s.rebind(`
		INSERT INTO users (`+userColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`),
		user.ID,
		user.Email,
		user.DisplayName,
		user.Nickname,
		user.PasswordHash,
		user.IsAdmin,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		return writeErr("create user", err)
	}
	return nil
}

// GetUserByEmail retrieves a user by their email address.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getUser(ctx, "email", email)
}

// GetUserByID retrieves a user by their ID.
func (s *Store) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	return s.getUser(ctx, "id", id)
}

func (s *Store) getUser(ctx context.Context, column, value string) (*models.User, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var row userRow
	err := s.db.GetContext(ctx, &row, s.rebind(`SELECT `+userColumns+` FROM users WHERE `+column+` = ?`), value)
	if err != nil {
		return nil, readErr("user", value, err)
	}
	return &models.User{
		ID:           row.ID,
		Email:        row.Email,
		DisplayName:  row.DisplayName,
		Nickname:     row.Nickname,
		PasswordHash: row.PasswordHash,
		IsAdmin:      row.IsAdmin,
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
	}, nil
}

// SetAdmin grants or revokes the admin flag. Takes effect at the user's next login.
func (s *Store) SetAdmin(ctx context.Context, email string, admin bool) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	res, err := s.db.ExecContext(ctx, s.rebind(`
		UPDATE users SET is_admin = ?, updated_at = ? WHERE email = ?`),
		admin, time.Now().Unix(), email,
	)
	if err != nil {
		return writeErr("set admin", err)
	}
	return expectOne(res, "user", email)
}
