package service

import (
	"bytes"
	"context"
	"image/png"
	"testing"

	"connectrpc.com/connect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/clubhouse/internal/apperr"
	"github.com/mmynk/clubhouse/pkg/api"
)

func TestCreateGame(t *testing.T) {
	env := setupTestServer(t)

	g := env.createGame(t, "2024-05-04")
	assert.Equal(t, "scheduled", g.Status)
	assert.Equal(t, "2024-05-04", g.Date.String())
	assert.Equal(t, "19:30", g.Time)

	t.Run("bad time", func(t *testing.T) {
		_, err := env.games.CreateGame(context.Background(), connect.NewRequest(&api.CreateGameRequest{
			Date:     date(t, "2024-05-04"),
			Time:     "7pm",
			Location: "Court 2",
		}))
		assertKind(t, err, apperr.KindValidation)
	})
}

func TestListGames(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()
	env.createGame(t, "2024-05-11")
	first := env.createGame(t, "2024-05-04")
	env.createGame(t, "2024-06-01")

	_, err := env.games.UpdateGame(ctx, connect.NewRequest(&api.UpdateGameRequest{
		ID:       first.ID,
		Date:     first.Date,
		Time:     first.Time,
		Location: first.Location,
		Status:   "played",
	}))
	require.NoError(t, err)

	may, err := env.games.ListGames(ctx, connect.NewRequest(&api.ListGamesRequest{
		From: datePtr(t, "2024-05-01"),
		To:   datePtr(t, "2024-05-31"),
	}))
	require.NoError(t, err)
	require.Len(t, may.Msg.Games, 2)
	assert.Equal(t, first.ID, may.Msg.Games[0].ID)

	scheduled, err := env.games.ListGames(ctx, connect.NewRequest(&api.ListGamesRequest{Status: "scheduled"}))
	require.NoError(t, err)
	assert.Len(t, scheduled.Msg.Games, 2)
}

func TestGetRSVPLink(t *testing.T) {
	env := setupTestServer(t)
	g := env.createGame(t, "2024-05-04")

	resp, err := env.games.GetRSVPLink(context.Background(), connect.NewRequest(&api.GetRSVPLinkRequest{GameID: g.ID}))
	require.NoError(t, err)
	assert.Equal(t, "http://club.test/rsvp/"+g.ID, resp.Msg.URL)

	img, err := png.Decode(bytes.NewReader(resp.Msg.QRCodePNG))
	require.NoError(t, err)
	assert.Equal(t, 256, img.Bounds().Dx())

	t.Run("custom size", func(t *testing.T) {
		resp, err := env.games.GetRSVPLink(context.Background(), connect.NewRequest(&api.GetRSVPLinkRequest{GameID: g.ID, QRSize: 128}))
		require.NoError(t, err)
		img, err := png.Decode(bytes.NewReader(resp.Msg.QRCodePNG))
		require.NoError(t, err)
		assert.Equal(t, 128, img.Bounds().Dx())
	})

	t.Run("unknown game", func(t *testing.T) {
		_, err := env.games.GetRSVPLink(context.Background(), connect.NewRequest(&api.GetRSVPLinkRequest{GameID: "missing"}))
		assertKind(t, err, apperr.KindNotFound)
	})
}

func TestDeleteGame_RemovesConfirmations(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()
	g := env.createGame(t, "2024-05-04")
	env.createMember(t, "José", "Ze")

	_, err := env.rsvp.ConfirmAttendance(ctx, connect.NewRequest(&api.ConfirmAttendanceRequest{GameID: g.ID, Nickname: "Ze"}))
	require.NoError(t, err)

	_, err = env.games.DeleteGame(ctx, connect.NewRequest(&api.DeleteGameRequest{ID: g.ID}))
	require.NoError(t, err)

	confirmations, err := env.store.ListConfirmations(ctx, g.ID)
	require.NoError(t, err)
	assert.Empty(t, confirmations)

	_, err = env.games.GetGame(ctx, connect.NewRequest(&api.GetGameRequest{ID: g.ID}))
	assertKind(t, err, apperr.KindNotFound)
}
