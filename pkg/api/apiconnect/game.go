package apiconnect

import (
	"context"
	"net/http"

	"connectrpc.com/connect"

	"github.com/mmynk/clubhouse/pkg/api"
)

// GameServiceName is the fully-qualified name of the GameService.
const GameServiceName = "clubhouse.v1.GameService"

// Procedure paths of the GameService.
const (
	GameServiceCreateGameProcedure        = "/clubhouse.v1.GameService/CreateGame"
	GameServiceGetGameProcedure           = "/clubhouse.v1.GameService/GetGame"
	GameServiceListGamesProcedure         = "/clubhouse.v1.GameService/ListGames"
	GameServiceUpdateGameProcedure        = "/clubhouse.v1.GameService/UpdateGame"
	GameServiceDeleteGameProcedure        = "/clubhouse.v1.GameService/DeleteGame"
	GameServiceListConfirmationsProcedure = "/clubhouse.v1.GameService/ListConfirmations"
	GameServiceGetRSVPLinkProcedure       = "/clubhouse.v1.GameService/GetRSVPLink"
)

// GameServiceHandler is the server side of the GameService.
type GameServiceHandler interface {
	CreateGame(context.Context, *connect.Request[api.CreateGameRequest]) (*connect.Response[api.CreateGameResponse], error)
	GetGame(context.Context, *connect.Request[api.GetGameRequest]) (*connect.Response[api.GetGameResponse], error)
	ListGames(context.Context, *connect.Request[api.ListGamesRequest]) (*connect.Response[api.ListGamesResponse], error)
	UpdateGame(context.Context, *connect.Request[api.UpdateGameRequest]) (*connect.Response[api.UpdateGameResponse], error)
	DeleteGame(context.Context, *connect.Request[api.DeleteGameRequest]) (*connect.Response[api.DeleteGameResponse], error)
	ListConfirmations(context.Context, *connect.Request[api.ListConfirmationsRequest]) (*connect.Response[api.ListConfirmationsResponse], error)
	GetRSVPLink(context.Context, *connect.Request[api.GetRSVPLinkRequest]) (*connect.Response[api.GetRSVPLinkResponse], error)
}

// NewGameServiceHandler builds an HTTP handler for every procedure of the service.
// It returns the path prefix to mount it on.
func NewGameServiceHandler(svc GameServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = withJSON(opts)
	mux := http.NewServeMux()
	mux.Handle(GameServiceCreateGameProcedure, connect.NewUnaryHandler(GameServiceCreateGameProcedure, svc.CreateGame, opts...))
	mux.Handle(GameServiceGetGameProcedure, connect.NewUnaryHandler(GameServiceGetGameProcedure, svc.GetGame, opts...))
	mux.Handle(GameServiceListGamesProcedure, connect.NewUnaryHandler(GameServiceListGamesProcedure, svc.ListGames, opts...))
	mux.Handle(GameServiceUpdateGameProcedure, connect.NewUnaryHandler(GameServiceUpdateGameProcedure, svc.UpdateGame, opts...))
	mux.Handle(GameServiceDeleteGameProcedure, connect.NewUnaryHandler(GameServiceDeleteGameProcedure, svc.DeleteGame, opts...))
	mux.Handle(GameServiceListConfirmationsProcedure, connect.NewUnaryHandler(GameServiceListConfirmationsProcedure, svc.ListConfirmations, opts...))
	mux.Handle(GameServiceGetRSVPLinkProcedure, connect.NewUnaryHandler(GameServiceGetRSVPLinkProcedure, svc.GetRSVPLink, opts...))
	return "/" + GameServiceName + "/", mux
}

// GameServiceClient calls the GameService over Connect.
type GameServiceClient struct {
	createGame        *connect.Client[api.CreateGameRequest, api.CreateGameResponse]
	getGame           *connect.Client[api.GetGameRequest, api.GetGameResponse]
	listGames         *connect.Client[api.ListGamesRequest, api.ListGamesResponse]
	updateGame        *connect.Client[api.UpdateGameRequest, api.UpdateGameResponse]
	deleteGame        *connect.Client[api.DeleteGameRequest, api.DeleteGameResponse]
	listConfirmations *connect.Client[api.ListConfirmationsRequest, api.ListConfirmationsResponse]
	getRSVPLink       *connect.Client[api.GetRSVPLinkRequest, api.GetRSVPLinkResponse]
}

// NewGameServiceClient builds a client for the server at baseURL (e.g., http://localhost:8080).
func NewGameServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *GameServiceClient {
	opts = withJSONClient(opts)
	return &GameServiceClient{
		createGame:        connect.NewClient[api.CreateGameRequest, api.CreateGameResponse](httpClient, baseURL+GameServiceCreateGameProcedure, opts...),
		getGame:           connect.NewClient[api.GetGameRequest, api.GetGameResponse](httpClient, baseURL+GameServiceGetGameProcedure, opts...),
		listGames:         connect.NewClient[api.ListGamesRequest, api.ListGamesResponse](httpClient, baseURL+GameServiceListGamesProcedure, opts...),
		updateGame:        connect.NewClient[api.UpdateGameRequest, api.UpdateGameResponse](httpClient, baseURL+GameServiceUpdateGameProcedure, opts...),
		deleteGame:        connect.NewClient[api.DeleteGameRequest, api.DeleteGameResponse](httpClient, baseURL+GameServiceDeleteGameProcedure, opts...),
		listConfirmations: connect.NewClient[api.ListConfirmationsRequest, api.ListConfirmationsResponse](httpClient, baseURL+GameServiceListConfirmationsProcedure, opts...),
		getRSVPLink:       connect.NewClient[api.GetRSVPLinkRequest, api.GetRSVPLinkResponse](httpClient, baseURL+GameServiceGetRSVPLinkProcedure, opts...),
	}
}

func (c *GameServiceClient) CreateGame(ctx context.Context, req *connect.Request[api.CreateGameRequest]) (*connect.Response[api.CreateGameResponse], error) {
	return c.createGame.CallUnary(ctx, req)
}

func (c *GameServiceClient) GetGame(ctx context.Context, req *connect.Request[api.GetGameRequest]) (*connect.Response[api.GetGameResponse], error) {
	return c.getGame.CallUnary(ctx, req)
}

func (c *GameServiceClient) ListGames(ctx context.Context, req *connect.Request[api.ListGamesRequest]) (*connect.Response[api.ListGamesResponse], error) {
	return c.listGames.CallUnary(ctx, req)
}

func (c *GameServiceClient) UpdateGame(ctx context.Context, req *connect.Request[api.UpdateGameRequest]) (*connect.Response[api.UpdateGameResponse], error) {
	return c.updateGame.CallUnary(ctx, req)
}

func (c *GameServiceClient) DeleteGame(ctx context.Context, req *connect.Request[api.DeleteGameRequest]) (*connect.Response[api.DeleteGameResponse], error) {
	return c.deleteGame.CallUnary(ctx, req)
}

func (c *GameServiceClient) ListConfirmations(ctx context.Context, req *connect.Request[api.ListConfirmationsRequest]) (*connect.Response[api.ListConfirmationsResponse], error) {
	return c.listConfirmations.CallUnary(ctx, req)
}

func (c *GameServiceClient) GetRSVPLink(ctx context.Context, req *connect.Request[api.GetRSVPLinkRequest]) (*connect.Response[api.GetRSVPLinkResponse], error) {
	return c.getRSVPLink.CallUnary(ctx, req)
}
