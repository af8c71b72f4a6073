package rsvp

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/clubhouse/internal/apperr"
	"github.com/mmynk/clubhouse/internal/models"
	"github.com/mmynk/clubhouse/internal/storage"
)

// MockStore is a testify mock of Store.
type MockStore struct {
	mock.Mock
}

func (m *MockStore) GetGame(ctx context.Context, id string) (*models.Game, error) {
	args := m.Called(ctx, id)
	if g := args.Get(0); g != nil {
		return g.(*models.Game), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockStore) ListMembers(ctx context.Context, q storage.MemberQuery) ([]models.Member, error) {
	args := m.Called(ctx, q)
	if ms := args.Get(0); ms != nil {
		return ms.([]models.Member), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockStore) CreateConfirmation(ctx context.Context, c *models.Confirmation) error {
	return m.Called(ctx, c).Error(0)
}

// memStore enforces one confirmation per (game, member) like the database does.
type memStore struct {
	mu            sync.Mutex
	games         map[string]*models.Game
	members       []models.Member
	confirmations map[string]models.Confirmation
}

func newMemStore() *memStore {
	return &memStore{
		games: map[string]*models.Game{
			"g1": {ID: "g1", Status: models.GameStatusScheduled, Location: "Arena"},
			"g2": {ID: "g2", Status: models.GameStatusCancelled},
			"g3": {ID: "g3", Status: models.GameStatusPlayed},
		},
		members:       []models.Member{{ID: "m1", Nickname: "Ze"}, {ID: "m2", Nickname: "Bia"}},
		confirmations: map[string]models.Confirmation{},
	}
}

func (s *memStore) GetGame(ctx context.Context, id string) (*models.Game, error) {
	g, ok := s.games[id]
	if !ok {
		return nil, fmt.Errorf("game %s: %w", id, storage.ErrNotFound)
	}
	cp := *g
	return &cp, nil
}

func (s *memStore) ListMembers(ctx context.Context, q storage.MemberQuery) ([]models.Member, error) {
	return s.members, nil
}

func (s *memStore) CreateConfirmation(ctx context.Context, c *models.Confirmation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := c.GameID + "/" + c.MemberID
	if _, ok := s.confirmations[key]; ok {
		return storage.ErrConflict
	}
	c.ID = fmt.Sprintf("c%d", len(s.confirmations)+1)
	s.confirmations[key] = *c
	return nil
}

func TestFlowConfirmsOnce(t *testing.T) {
	store := newMemStore()
	ctx := context.Background()

	first := NewFlow(store, "g1")
	require.Equal(t, PhaseFormReady, first.Load(ctx).Phase)

	st := first.Submit(ctx, "Ze")
	require.Equal(t, PhaseConfirmed, st.Phase)
	assert.Equal(t, DefaultRedirectDelay, st.RedirectAfter)
	assert.Equal(t, "m1", st.Member.ID)
	require.NotNil(t, st.Confirmation)
	assert.Equal(t, models.ConfirmationStatusConfirmed, st.Confirmation.Status)
	assert.Len(t, store.confirmations, 1)

	second := NewFlow(store, "g1")
	second.Load(ctx)
	st = second.Submit(ctx, "Ze")
	assert.Equal(t, PhaseError, st.Phase)
	assert.Equal(t, MsgAlreadyConfirmed, st.Err.Message)
	assert.Equal(t, apperr.KindAlreadyExists, st.Err.Kind)
	assert.True(t, st.Recoverable)
	assert.Len(t, store.confirmations, 1, "no second record")
}

func TestFlowUnavailableGame(t *testing.T) {
	for _, id := range []string{"g2", "g3"} {
		t.Run(id, func(t *testing.T) {
			store := newMemStore()
			f := NewFlow(store, id)

			st := f.Load(context.Background())
			assert.Equal(t, PhaseError, st.Phase)
			assert.Equal(t, MsgUnavailable, st.Err.Message)
			assert.Equal(t, apperr.KindUnavailable, st.Err.Kind)
			assert.True(t, st.Terminal())

			// Nothing the visitor types changes the outcome
			for _, nick := range []string{"Ze", "", "nobody"} {
				st = f.Submit(context.Background(), nick)
				assert.Equal(t, MsgUnavailable, st.Err.Message)
			}
			assert.Empty(t, store.confirmations)
		})
	}
}

func TestFlowGameNotFound(t *testing.T) {
	f := NewFlow(newMemStore(), "missing")
	st := f.Load(context.Background())
	assert.Equal(t, PhaseError, st.Phase)
	assert.Equal(t, MsgNotFound, st.Err.Message)
	assert.Equal(t, apperr.KindNotFound, st.Err.Kind)
	assert.False(t, st.Recoverable)
}

func TestFlowNicknameFallback(t *testing.T) {
	store := newMemStore()
	f := NewFlow(store, "g1")
	f.Load(context.Background())

	st := f.Submit(context.Background(), "ze")
	require.Equal(t, PhaseConfirmed, st.Phase)
	assert.Equal(t, "m1", st.Member.ID)
}

func TestFlowValidationAndRecovery(t *testing.T) {
	store := newMemStore()
	ctx := context.Background()
	f := NewFlow(store, "g1", WithRedirectDelay(5*time.Second))
	f.Load(ctx)

	st := f.Submit(ctx, "   ")
	assert.Equal(t, PhaseFormReady, st.Phase)
	assert.Equal(t, apperr.KindValidation, st.Err.Kind)
	assert.Equal(t, MsgNicknameRequired, st.Err.Message)

	st = f.Submit(ctx, "Carlos")
	assert.Equal(t, PhaseError, st.Phase)
	assert.Equal(t, MsgMemberNotFound, st.Err.Message)
	assert.True(t, st.Recoverable)

	st = f.Submit(ctx, "Bia")
	assert.Equal(t, PhaseConfirmed, st.Phase)
	assert.Equal(t, 5*time.Second, st.RedirectAfter)

	// Confirmed is terminal
	again := f.Submit(ctx, "Ze")
	assert.Equal(t, PhaseConfirmed, again.Phase)
	assert.Equal(t, "m2", again.Member.ID)
	assert.Len(t, store.confirmations, 1)
}

func TestFlowTransientFaults(t *testing.T) {
	ctx := context.Background()
	game := &models.Game{ID: "g1", Status: models.GameStatusScheduled}
	members := []models.Member{{ID: "m1", Nickname: "Ze"}}

	t.Run("load fault is retried by submit", func(t *testing.T) {
		store := new(MockStore)
		store.On("GetGame", mock.Anything, "g1").Return(nil, errors.New("timeout")).Once()
		store.On("GetGame", mock.Anything, "g1").Return(game, nil).Once()
		store.On("ListMembers", mock.Anything, storage.MemberQuery{}).Return(members, nil)
		store.On("CreateConfirmation", mock.Anything, mock.AnythingOfType("*models.Confirmation")).Return(nil)

		f := NewFlow(store, "g1")
		st := f.Load(ctx)
		assert.Equal(t, PhaseError, st.Phase)
		assert.Equal(t, MsgTryAgain, st.Err.Message)
		assert.Equal(t, apperr.KindTransient, st.Err.Kind)
		assert.True(t, st.Recoverable)

		st = f.Submit(ctx, "Ze")
		assert.Equal(t, PhaseConfirmed, st.Phase)
		store.AssertExpectations(t)
	})

	t.Run("member listing fault", func(t *testing.T) {
		store := new(MockStore)
		store.On("GetGame", mock.Anything, "g1").Return(game, nil)
		store.On("ListMembers", mock.Anything, storage.MemberQuery{}).Return(nil, errors.New("db down"))

		f := NewFlow(store, "g1")
		f.Load(ctx)
		st := f.Submit(ctx, "Ze")
		assert.Equal(t, PhaseError, st.Phase)
		assert.Equal(t, MsgTryAgain, st.Err.Message)
		store.AssertNotCalled(t, "CreateConfirmation", mock.Anything, mock.Anything)
	})

	t.Run("insert fault never leaves submitting", func(t *testing.T) {
		store := new(MockStore)
		store.On("GetGame", mock.Anything, "g1").Return(game, nil)
		store.On("ListMembers", mock.Anything, storage.MemberQuery{}).Return(members, nil)
		store.On("CreateConfirmation", mock.Anything, mock.MatchedBy(func(c *models.Confirmation) bool {
			return c.GameID == "g1" && c.MemberID == "m1" && c.Status == models.ConfirmationStatusConfirmed
		})).Return(errors.New("disk full"))

		f := NewFlow(store, "g1")
		f.Load(ctx)
		st := f.Submit(ctx, "Ze")
		assert.Equal(t, PhaseError, st.Phase)
		assert.Equal(t, apperr.KindTransient, st.Err.Kind)
		assert.NotEqual(t, PhaseSubmitting, f.CurrentState().Phase)
		store.AssertExpectations(t)
	})
}

func TestCurrentStateIsSnapshot(t *testing.T) {
	f := NewFlow(newMemStore(), "g1")
	assert.Equal(t, PhaseLoading, f.CurrentState().Phase)

	f.Load(context.Background())
	st := f.CurrentState()
	st.Game.Location = "changed"
	assert.Equal(t, "Arena", f.CurrentState().Game.Location)
}
