package service

import (
	"context"
	"log/slog"
	"time"

	"connectrpc.com/connect"

	"github.com/mmynk/clubhouse/internal/metrics"
	"github.com/mmynk/clubhouse/internal/rsvp"
	"github.com/mmynk/clubhouse/pkg/api"
	"github.com/mmynk/clubhouse/pkg/api/apiconnect"
)

// RSVPService implements the public Connect RSVPService. Every outcome of the
// flow, failures included, is returned as a state for the page to render;
// only malformed requests produce RPC errors.
type RSVPService struct {
	store    rsvp.Store
	redirect time.Duration
	metrics  *metrics.Registry
	validate *ValidationHelper
}

var _ apiconnect.RSVPServiceHandler = (*RSVPService)(nil)

// NewRSVPService creates an RSVPService. A zero redirect uses
// rsvp.DefaultRedirectDelay; m may be nil.
func NewRSVPService(store rsvp.Store, redirect time.Duration, m *metrics.Registry) *RSVPService {
	if redirect <= 0 {
		redirect = rsvp.DefaultRedirectDelay
	}
	return &RSVPService{store: store, redirect: redirect, metrics: m, validate: NewValidationHelper()}
}

// GetInvitation loads the game behind an RSVP link.
func (s *RSVPService) GetInvitation(ctx context.Context, req *connect.Request[api.GetInvitationRequest]) (*connect.Response[api.GetInvitationResponse], error) {
	if err := s.validate.Validate(req.Msg); err != nil {
		return nil, err
	}

	flow := rsvp.NewFlow(s.store, req.Msg.GameID, rsvp.WithRedirectDelay(s.redirect))
	state := flow.Load(ctx)

	slog.Info("GetInvitation", "game_id", req.Msg.GameID, "phase", state.Phase)
	return connect.NewResponse(&api.GetInvitationResponse{State: toRSVPState(state)}), nil
}

// ConfirmAttendance confirms the member behind the nickname for the game.
func (s *RSVPService) ConfirmAttendance(ctx context.Context, req *connect.Request[api.ConfirmAttendanceRequest]) (*connect.Response[api.ConfirmAttendanceResponse], error) {
	if err := s.validate.Validate(req.Msg); err != nil {
		return nil, err
	}

	flow := rsvp.NewFlow(s.store, req.Msg.GameID, rsvp.WithRedirectDelay(s.redirect))
	state := flow.Submit(ctx, req.Msg.Nickname)
	out := toRSVPState(state)

	if s.metrics != nil {
		s.metrics.RSVPOutcomes.WithLabelValues(out.Phase, out.Message).Inc()
	}

	if state.Phase == rsvp.PhaseConfirmed {
		slog.Info("Attendance confirmed",
			"game_id", req.Msg.GameID,
			"member_id", state.Member.ID,
			"confirmation_id", state.Confirmation.ID,
		)
	} else {
		slog.Info("Attendance not confirmed",
			"game_id", req.Msg.GameID,
			"phase", out.Phase,
			"message", out.Message,
			"kind", out.ErrorKind,
		)
	}
	return connect.NewResponse(&api.ConfirmAttendanceResponse{State: out}), nil
}

func toRSVPState(s rsvp.State) *api.RSVPState {
	out := &api.RSVPState{
		Phase:       string(s.Phase),
		Recoverable: s.Recoverable,
	}
	if s.Game != nil {
		out.Game = toGame(s.Game)
	}
	if s.Member != nil {
		out.MemberName = s.Member.Name
	}
	if s.Err != nil {
		out.Message = s.Err.Message
		out.ErrorKind = string(s.Err.Kind)
	}
	if s.Phase == rsvp.PhaseConfirmed {
		out.RedirectAfterMs = s.RedirectAfter.Milliseconds()
	}
	return out
}
