package sqlstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/clubhouse/internal/models"
	"github.com/mmynk/clubhouse/internal/storage"
)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return New(db, DriverPostgres, time.Second), mock
}

func TestPostgresUniqueViolationIsConflict(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec(`INSERT INTO confirmations \(id, game_id, member_id, status, created_at\)\s+VALUES \(\$1, \$2, \$3, \$4, \$5\)`).
		WillReturnError(&pq.Error{Code: "23505", Message: "duplicate key value violates unique constraint"})

	err := store.CreateConfirmation(context.Background(), &models.Confirmation{GameID: "g1", MemberID: "m1"})
	assert.ErrorIs(t, err, storage.ErrConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresForeignKeyViolationIsReferenced(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec(`DELETE FROM postings WHERE id = \$1`).
		WithArgs("p1").
		WillReturnError(&pq.Error{Code: "23503"})

	err := store.DeletePosting(context.Background(), "p1")
	assert.ErrorIs(t, err, storage.ErrReferenced)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDriverFaultStaysUnclassified(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(`SELECT .* FROM games WHERE id = \$1`).
		WithArgs("g1").
		WillReturnError(errors.New("connection reset by peer"))

	_, err := store.GetGame(context.Background(), "g1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, storage.ErrNotFound)
	assert.NotErrorIs(t, err, storage.ErrConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUnlinkAndDeletePostingRollsBack(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT id FROM monthly_fees WHERE posting_id = \$1`).
		WithArgs("p1").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("f1"))
	mock.ExpectExec(`UPDATE monthly_fees SET paid_on = NULL, posting_id = NULL WHERE id = \$1`).
		WithArgs("f1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE FROM postings WHERE id = \$1`).
		WithArgs("p1").
		WillReturnError(errors.New("connection reset by peer"))
	mock.ExpectRollback()

	feeID, err := store.UnlinkAndDeletePosting(context.Background(), "p1")
	require.Error(t, err)
	assert.Empty(t, feeID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkFeePaidOnlyLinksUnpaidFee(t *testing.T) {
	store, mock := newMockStore(t)
	paidOn := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)

	mock.ExpectExec(`UPDATE monthly_fees SET paid_on = \$1, posting_id = \$2\s+WHERE id = \$3 AND posting_id IS NULL`).
		WithArgs("2024-03-10", "p2", "f1").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT posting_id FROM monthly_fees WHERE id = \$1`).
		WithArgs("f1").
		WillReturnRows(sqlmock.NewRows([]string{"posting_id"}).AddRow("p1"))

	err := store.MarkFeePaid(context.Background(), "f1", paidOn, "p2")
	assert.ErrorIs(t, err, storage.ErrConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}
