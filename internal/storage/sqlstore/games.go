package sqlstore

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/clubhouse/internal/models"
	"github.com/mmynk/clubhouse/internal/storage"
)

type gameRow struct {
	ID        string `db:"id"`
	Date      string `db:"game_date"`
	Time      string `db:"game_time"`
	Location  string `db:"location"`
	Status    string `db:"status"`
	Notes     string `db:"notes"`
	CreatedAt int64  `db:"created_at"`
}

func (r gameRow) model() (models.Game, error) {
	date, err := models.ParseDate(r.Date)
	if err != nil {
		return models.Game{}, fmt.Errorf("game %s: %w", r.ID, err)
	}
	return models.Game{
		ID:        r.ID,
		Date:      date,
		Time:      r.Time,
		Location:  r.Location,
		Status:    models.GameStatus(r.Status),
		Notes:     r.Notes,
		CreatedAt: r.CreatedAt,
	}, nil
}

const gameColumns = `id, game_date, game_time, location, status, notes, created_at`

// CreateGame inserts a game. New games default to scheduled.
func (s *Store) CreateGame(ctx context.Context, g *models.Game) error {
	if g.ID == "" {
		g.ID = uuid.New().String()
	}
	if g.CreatedAt == 0 {
		g.CreatedAt = time.Now().Unix()
	}
	if g.Status == "" {
		g.Status = models.GameStatusScheduled
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	_, err := s.db.ExecContext(ctx, s.rebind(`
		INSERT INTO games (`+gameColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?)`),
		g.ID, formatDate(g.Date), g.Time, g.Location, string(g.Status), g.Notes, g.CreatedAt,
	)
	if err != nil {
		return writeErr("insert game", err)
	}
	return nil
}

// GetGame retrieves a game by ID.
func (s *Store) GetGame(ctx context.Context, id string) (*models.Game, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var row gameRow
	err := s.db.GetContext(ctx, &row, s.rebind(`SELECT `+gameColumns+` FROM games WHERE id = ?`), id)
	if err != nil {
		return nil, readErr("game", id, err)
	}
	g, err := row.model()
	if err != nil {
		return nil, err
	}
	return &g, nil
}

// ListGames returns games ordered by date and kick-off time.
func (s *Store) ListGames(ctx context.Context, q storage.GameQuery) ([]models.Game, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var where []string
	var args []interface{}
	if !q.From.IsZero() {
		where = append(where, "game_date >= ?")
		args = append(args, formatDate(q.From))
	}
	if !q.To.IsZero() {
		where = append(where, "game_date <= ?")
		args = append(args, formatDate(q.To))
	}
	if q.Status != "" {
		where = append(where, "status = ?")
		args = append(args, string(q.Status))
	}

	query := `SELECT ` + gameColumns + ` FROM games`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY game_date, game_time, id`

	var rows []gameRow
	if err := s.db.SelectContext(ctx, &rows, s.rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to list games: %w", err)
	}

	games := make([]models.Game, 0, len(rows))
	for _, r := range rows {
		g, err := r.model()
		if err != nil {
			return nil, err
		}
		games = append(games, g)
	}
	return games, nil
}

// UpdateGame overwrites every mutable field of the game.
func (s *Store) UpdateGame(ctx context.Context, g *models.Game) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	res, err := s.db.ExecContext(ctx, s.rebind(`
		UPDATE games SET game_date = ?, game_time = ?, location = ?, status = ?, notes = ?
		WHERE id = ?`),
		formatDate(g.Date), g.Time, g.Location, string(g.Status), g.Notes, g.ID,
	)
	if err != nil {
		return writeErr("update game", err)
	}
	return expectOne(res, "game", g.ID)
}

// DeleteGame removes a game and its confirmations.
func (s *Store) DeleteGame(ctx context.Context, id string) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	res, err := s.db.ExecContext(ctx, s.rebind(`DELETE FROM games WHERE id = ?`), id)
	if err != nil {
		return writeErr("delete game", err)
	}
	return expectOne(res, "game", id)
}
