// Package rsvp implements the public attendance confirmation flow for a game.
//
// A Flow moves through Loading, FormReady, Submitting and finally Confirmed or
// Error. Each outcome is reported as a State snapshot carrying an inline
// message and whether the visitor may retry, rather than as a Go error.
package rsvp

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/mmynk/clubhouse/internal/apperr"
	"github.com/mmynk/clubhouse/internal/models"
	"github.com/mmynk/clubhouse/internal/roster"
	"github.com/mmynk/clubhouse/internal/storage"
)

// DefaultRedirectDelay is how long the confirmation screen stays before redirecting.
const DefaultRedirectDelay = 2 * time.Second

// Messages shown to the visitor.
const (
	MsgNotFound         = "not found"
	MsgUnavailable      = "unavailable"
	MsgNicknameRequired = "nickname required"
	MsgMemberNotFound   = "member not found"
	MsgAlreadyConfirmed = "already confirmed"
	MsgTryAgain         = "try again"
)

// Phase is the step the flow is in.
type Phase string

const (
	PhaseLoading    Phase = "loading"
	PhaseError      Phase = "error"
	PhaseFormReady  Phase = "form_ready"
	PhaseSubmitting Phase = "submitting"
	PhaseConfirmed  Phase = "confirmed"
)

// Store is the storage the flow reads and writes.
type Store interface {
	GetGame(ctx context.Context, id string) (*models.Game, error)
	ListMembers(ctx context.Context, q storage.MemberQuery) ([]models.Member, error)
	CreateConfirmation(ctx context.Context, c *models.Confirmation) error
}

// State is a snapshot of the flow.
type State struct {
	Phase Phase

	// Game is set once loading succeeded.
	Game *models.Game

	// Member is the member the submitted nickname resolved to, if any.
	Member *models.Member

	// Confirmation is the stored record after a successful submit.
	Confirmation *models.Confirmation

	// Err is the inline message for the visitor. On FormReady it carries a
	// validation hint; on Error it explains the failure.
	Err *apperr.Error

	// Recoverable tells the visitor the form may be submitted again.
	Recoverable bool

	// RedirectAfter is set on Confirmed.
	RedirectAfter time.Duration
}

// Terminal reports whether no further transition is possible.
func (s State) Terminal() bool {
	return s.Phase == PhaseConfirmed || (s.Phase == PhaseError && !s.Recoverable)
}

// Option configures a Flow.
type Option func(*Flow)

// WithRedirectDelay overrides DefaultRedirectDelay.
func WithRedirectDelay(d time.Duration) Option {
	return func(f *Flow) {
		f.redirect = d
	}
}

// Flow confirms one member's attendance for one game.
// It is safe for concurrent use; calls are serialised.
type Flow struct {
	mu       sync.Mutex
	store    Store
	gameID   string
	redirect time.Duration
	state    State
}

// NewFlow starts a flow in the Loading phase.
func NewFlow(store Store, gameID string, opts ...Option) *Flow {
	f := &Flow{
		store:    store,
		gameID:   gameID,
		redirect: DefaultRedirectDelay,
		state:    State{Phase: PhaseLoading},
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// CurrentState returns a snapshot of the flow.
func (f *Flow) CurrentState() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state.snapshot()
}

// Load fetches the game and decides whether the form can be shown.
// Terminal states are returned unchanged.
func (f *Flow) Load(ctx context.Context) State {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.state.Terminal() {
		return f.state.snapshot()
	}
	f.load(ctx)
	return f.state.snapshot()
}

func (f *Flow) load(ctx context.Context) {
	f.state = State{Phase: PhaseLoading}

	game, err := f.store.GetGame(ctx, f.gameID)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		f.fail(apperr.Wrap(apperr.KindNotFound, MsgNotFound, err), false)
		return
	case err != nil:
		f.fail(apperr.Transient(MsgTryAgain, err), true)
		return
	}

	f.state.Game = game
	if !game.AcceptsConfirmations() {
		f.fail(apperr.Unavailable(MsgUnavailable), false)
		return
	}
	f.state.Phase = PhaseFormReady
}

// Submit confirms attendance for the member the nickname resolves to.
// A flow whose game failed to load reloads it first. Terminal states are
// returned unchanged.
func (f *Flow) Submit(ctx context.Context, nickname string) State {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.state.Terminal() {
		return f.state.snapshot()
	}
	if f.state.Game == nil {
		f.load(ctx)
		if f.state.Phase != PhaseFormReady {
			return f.state.snapshot()
		}
	}

	game := f.state.Game
	if strings.TrimSpace(nickname) == "" {
		f.state = State{
			Phase:       PhaseFormReady,
			Game:        game,
			Err:         apperr.Validation(MsgNicknameRequired),
			Recoverable: true,
		}
		return f.state.snapshot()
	}

	f.state = State{Phase: PhaseSubmitting, Game: game}
	f.submit(ctx, nickname)
	return f.state.snapshot()
}

func (f *Flow) submit(ctx context.Context, nickname string) {
	member, ok, err := roster.Lookup(ctx, f.store, nickname)
	if err != nil {
		f.fail(apperr.Transient(MsgTryAgain, err), true)
		return
	}
	if !ok {
		f.fail(apperr.NotFound(MsgMemberNotFound), true)
		return
	}
	f.state.Member = member

	c := &models.Confirmation{
		GameID:   f.state.Game.ID,
		MemberID: member.ID,
		Status:   models.ConfirmationStatusConfirmed,
	}
	err = f.store.CreateConfirmation(ctx, c)
	switch {
	case errors.Is(err, storage.ErrConflict):
		f.fail(apperr.Wrap(apperr.KindAlreadyExists, MsgAlreadyConfirmed, err), true)
		return
	case err != nil:
		f.fail(apperr.Transient(MsgTryAgain, err), true)
		return
	}

	f.state.Phase = PhaseConfirmed
	f.state.Confirmation = c
	f.state.RedirectAfter = f.redirect
}

func (f *Flow) fail(err *apperr.Error, recoverable bool) {
	f.state.Phase = PhaseError
	f.state.Err = err
	f.state.Recoverable = recoverable
}

func (s State) snapshot() State {
	out := s
	if s.Game != nil {
		g := *s.Game
		out.Game = &g
	}
	if s.Member != nil {
		m := *s.Member
		out.Member = &m
	}
	if s.Confirmation != nil {
		c := *s.Confirmation
		out.Confirmation = &c
	}
	return out
}
