package service

import (
	"bytes"
	"context"
	"image/png"
	"log/slog"
	"net/url"
	"strings"

	"connectrpc.com/connect"
	"github.com/skip2/go-qrcode"

	"github.com/mmynk/clubhouse/internal/apperr"
	"github.com/mmynk/clubhouse/internal/models"
	"github.com/mmynk/clubhouse/internal/storage"
	"github.com/mmynk/clubhouse/pkg/api"
	"github.com/mmynk/clubhouse/pkg/api/apiconnect"
)

const defaultQRSize = 256

// GameStore is the storage the game service needs.
type GameStore interface {
	storage.GameStore
	storage.ConfirmationStore
	storage.MemberStore
}

// GameService implements the Connect GameService.
type GameService struct {
	store         GameStore
	publicBaseURL string
	validate      *ValidationHelper
}

var _ apiconnect.GameServiceHandler = (*GameService)(nil)

// NewGameService creates a GameService. publicBaseURL is the address members
// open RSVP links on.
func NewGameService(store GameStore, publicBaseURL string) *GameService {
	return &GameService{
		store:         store,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
		validate:      NewValidationHelper(),
	}
}

// CreateGame schedules a game.
func (s *GameService) CreateGame(ctx context.Context, req *connect.Request[api.CreateGameRequest]) (*connect.Response[api.CreateGameResponse], error) {
	slog.Info("CreateGame request received",
		"date", req.Msg.Date.String(),
		"time", req.Msg.Time,
		"location", req.Msg.Location,
	)

	if err := s.validate.Validate(req.Msg); err != nil {
		return nil, err
	}

	game := &models.Game{
		Date:     fromDate(req.Msg.Date),
		Time:     req.Msg.Time,
		Location: req.Msg.Location,
		Status:   models.GameStatusScheduled,
		Notes:    req.Msg.Notes,
	}
	if err := s.store.CreateGame(ctx, game); err != nil {
		return nil, toConnectError("CreateGame", err)
	}

	slog.Info("Game created", "game_id", game.ID)
	return connect.NewResponse(&api.CreateGameResponse{Game: toGame(game)}), nil
}

// GetGame retrieves a game by ID.
func (s *GameService) GetGame(ctx context.Context, req *connect.Request[api.GetGameRequest]) (*connect.Response[api.GetGameResponse], error) {
	if err := s.validate.Validate(req.Msg); err != nil {
		return nil, err
	}

	game, err := s.store.GetGame(ctx, req.Msg.ID)
	if err != nil {
		return nil, toConnectError("GetGame", err)
	}
	return connect.NewResponse(&api.GetGameResponse{Game: toGame(game)}), nil
}

// ListGames returns games ordered by date and time.
func (s *GameService) ListGames(ctx context.Context, req *connect.Request[api.ListGamesRequest]) (*connect.Response[api.ListGamesResponse], error) {
	if err := s.validate.Validate(req.Msg); err != nil {
		return nil, err
	}

	games, err := s.store.ListGames(ctx, storage.GameQuery{
		From:   fromOptionalDate(req.Msg.From),
		To:     fromOptionalDate(req.Msg.To),
		Status: models.GameStatus(req.Msg.Status),
	})
	if err != nil {
		return nil, toConnectError("ListGames", err)
	}

	out := make([]*api.Game, len(games))
	for i := range games {
		out[i] = toGame(&games[i])
	}
	return connect.NewResponse(&api.ListGamesResponse{Games: out}), nil
}

// UpdateGame edits a game, including its status. Only scheduled games accept
// confirmations.
func (s *GameService) UpdateGame(ctx context.Context, req *connect.Request[api.UpdateGameRequest]) (*connect.Response[api.UpdateGameResponse], error) {
	slog.Info("UpdateGame request received", "game_id", req.Msg.ID, "status", req.Msg.Status)

	if err := s.validate.Validate(req.Msg); err != nil {
		return nil, err
	}

	game, err := s.store.GetGame(ctx, req.Msg.ID)
	if err != nil {
		return nil, toConnectError("UpdateGame", err)
	}
	game.Date = fromDate(req.Msg.Date)
	game.Time = req.Msg.Time
	game.Location = req.Msg.Location
	game.Status = models.GameStatus(req.Msg.Status)
	game.Notes = req.Msg.Notes

	if err := s.store.UpdateGame(ctx, game); err != nil {
		return nil, toConnectError("UpdateGame", err)
	}

	slog.Info("Game updated", "game_id", game.ID)
	return connect.NewResponse(&api.UpdateGameResponse{Game: toGame(game)}), nil
}

// DeleteGame removes a game and its confirmations.
func (s *GameService) DeleteGame(ctx context.Context, req *connect.Request[api.DeleteGameRequest]) (*connect.Response[api.DeleteGameResponse], error) {
	slog.Info("DeleteGame request received", "game_id", req.Msg.ID)

	if err := s.validate.Validate(req.Msg); err != nil {
		return nil, err
	}
	if err := s.store.DeleteGame(ctx, req.Msg.ID); err != nil {
		return nil, toConnectError("DeleteGame", err)
	}

	slog.Info("Game deleted", "game_id", req.Msg.ID)
	return connect.NewResponse(&api.DeleteGameResponse{}), nil
}

// ListConfirmations returns who confirmed for a game, with their nicknames.
func (s *GameService) ListConfirmations(ctx context.Context, req *connect.Request[api.ListConfirmationsRequest]) (*connect.Response[api.ListConfirmationsResponse], error) {
	if err := s.validate.Validate(req.Msg); err != nil {
		return nil, err
	}

	if _, err := s.store.GetGame(ctx, req.Msg.GameID); err != nil {
		return nil, toConnectError("ListConfirmations", err)
	}

	confirmations, err := s.store.ListConfirmations(ctx, req.Msg.GameID)
	if err != nil {
		return nil, toConnectError("ListConfirmations", err)
	}
	members, err := s.store.ListMembers(ctx, storage.MemberQuery{})
	if err != nil {
		return nil, toConnectError("ListConfirmations", err)
	}
	nicknames := make(map[string]string, len(members))
	for _, m := range members {
		nicknames[m.ID] = m.Nickname
	}

	out := make([]*api.Confirmation, len(confirmations))
	for i, c := range confirmations {
		out[i] = &api.Confirmation{
			ID:             c.ID,
			GameID:         c.GameID,
			MemberID:       c.MemberID,
			MemberNickname: nicknames[c.MemberID],
			Status:         string(c.Status),
			CreatedAt:      c.CreatedAt,
		}
	}
	return connect.NewResponse(&api.ListConfirmationsResponse{Confirmations: out}), nil
}

// GetRSVPLink returns the public confirmation URL for a game and a QR code
// encoding it.
func (s *GameService) GetRSVPLink(ctx context.Context, req *connect.Request[api.GetRSVPLinkRequest]) (*connect.Response[api.GetRSVPLinkResponse], error) {
	if err := s.validate.Validate(req.Msg); err != nil {
		return nil, err
	}

	game, err := s.store.GetGame(ctx, req.Msg.GameID)
	if err != nil {
		return nil, toConnectError("GetRSVPLink", err)
	}

	link := s.publicBaseURL + "/rsvp/" + url.PathEscape(game.ID)

	size := req.Msg.QRSize
	if size == 0 {
		size = defaultQRSize
	}
	image, err := qrPNG(link, size)
	if err != nil {
		return nil, toConnectError("GetRSVPLink", apperr.Transient("could not render QR code", err))
	}

	slog.Info("GetRSVPLink successful", "game_id", game.ID, "url", link)
	return connect.NewResponse(&api.GetRSVPLinkResponse{URL: link, QRCodePNG: image}), nil
}

func qrPNG(content string, size int) ([]byte, error) {
	qr, err := qrcode.New(content, qrcode.Medium)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, qr.Image(size)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
