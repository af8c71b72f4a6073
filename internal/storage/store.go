// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"io"
	"time"

	"github.com/mmynk/clubhouse/internal/models"
)

// MemberQuery filters ListMembers.
type MemberQuery struct {
	ActiveOnly bool
}

// PostingQuery filters ListPostings. Zero fields do not filter.
type PostingQuery struct {
	AccountID string
	From      time.Time
	To        time.Time
}

// FeeQuery filters ListFees. Zero fields do not filter.
type FeeQuery struct {
	MemberID       string
	ReferenceMonth string
	UnpaidOnly     bool
}

// GameQuery filters ListGames. Zero fields do not filter.
type GameQuery struct {
	From   time.Time
	To     time.Time
	Status models.GameStatus
}

// MemberStore persists the member registry.
type MemberStore interface {
	// CreateMember inserts a member. Returns ErrConflict if the nickname is taken.
	CreateMember(ctx context.Context, m *models.Member) error
	GetMember(ctx context.Context, id string) (*models.Member, error)
	// ListMembers returns members ordered by name, then id.
	ListMembers(ctx context.Context, q MemberQuery) ([]models.Member, error)
	UpdateMember(ctx context.Context, m *models.Member) error
	DeleteMember(ctx context.Context, id string) error
}

// AccountStore persists the chart of accounts.
type AccountStore interface {
	CreateAccount(ctx context.Context, a *models.Account) error
	GetAccount(ctx context.Context, id string) (*models.Account, error)
	ListAccounts(ctx context.Context) ([]models.Account, error)
	// UpdateAccount also copies a changed group onto the account's postings.
	UpdateAccount(ctx context.Context, a *models.Account) error
	// DeleteAccount returns ErrReferenced while postings reference the account.
	DeleteAccount(ctx context.Context, id string) error
}

// PostingStore persists ledger postings.
type PostingStore interface {
	CreatePosting(ctx context.Context, p *models.Posting) error
	GetPosting(ctx context.Context, id string) (*models.Posting, error)
	// ListPostings returns postings ordered by date, created_at, id.
	ListPostings(ctx context.Context, q PostingQuery) ([]models.Posting, error)
	UpdatePosting(ctx context.Context, p *models.Posting) error
	// DeletePosting fails while a fee still links to the posting.
	DeletePosting(ctx context.Context, id string) error
	// UnlinkAndDeletePosting marks the fee the posting paid unpaid, then
	// deletes the posting, atomically. Returns the unlinked fee ID, if any.
	UnlinkAndDeletePosting(ctx context.Context, id string) (string, error)
}

// FeeStore persists monthly fees.
type FeeStore interface {
	// CreateFee returns ErrConflict if the member already has a fee for the month.
	CreateFee(ctx context.Context, f *models.MonthlyFee) error
	GetFee(ctx context.Context, id string) (*models.MonthlyFee, error)
	ListFees(ctx context.Context, q FeeQuery) ([]models.MonthlyFee, error)
	// GetFeeByPosting returns the fee paid by the posting, or ErrNotFound.
	GetFeeByPosting(ctx context.Context, postingID string) (*models.MonthlyFee, error)
	// MarkFeePaid returns ErrConflict if the fee is already linked to a posting.
	MarkFeePaid(ctx context.Context, feeID string, paidOn time.Time, postingID string) error
}

// GameStore persists games.
type GameStore interface {
	CreateGame(ctx context.Context, g *models.Game) error
	GetGame(ctx context.Context, id string) (*models.Game, error)
	// ListGames returns games ordered by date, time.
	ListGames(ctx context.Context, q GameQuery) ([]models.Game, error)
	UpdateGame(ctx context.Context, g *models.Game) error
	DeleteGame(ctx context.Context, id string) error
}

// ConfirmationStore persists RSVP confirmations.
type ConfirmationStore interface {
	// CreateConfirmation returns ErrConflict if the member already confirmed for the game.
	CreateConfirmation(ctx context.Context, c *models.Confirmation) error
	ListConfirmations(ctx context.Context, gameID string) ([]models.Confirmation, error)
}

// UserStore persists login identities.
type UserStore interface {
	// CreateUser returns ErrConflict if the email is taken.
	CreateUser(ctx context.Context, u *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	SetAdmin(ctx context.Context, email string, admin bool) error
}

// Store composes every collection.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL)
// without changing the service layer.
type Store interface {
	MemberStore
	AccountStore
	PostingStore
	FeeStore
	GameStore
	ConfirmationStore
	UserStore

	// Close releases any resources held by the store.
	Close() error
}

// BlobStore keeps uploaded files such as member photos.
type BlobStore interface {
	// Put stores the content under key and returns its public URL.
	Put(ctx context.Context, key string, r io.Reader) (string, error)
}
