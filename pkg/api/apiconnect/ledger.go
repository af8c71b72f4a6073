package apiconnect

import (
	"context"
	"net/http"

	"connectrpc.com/connect"

	"github.com/mmynk/clubhouse/pkg/api"
)

// LedgerServiceName is the fully-qualified name of the LedgerService.
const LedgerServiceName = "clubhouse.v1.LedgerService"

// Procedure paths of the LedgerService.
const (
	LedgerServiceCreateAccountProcedure  = "/clubhouse.v1.LedgerService/CreateAccount"
	LedgerServiceListAccountsProcedure   = "/clubhouse.v1.LedgerService/ListAccounts"
	LedgerServiceUpdateAccountProcedure  = "/clubhouse.v1.LedgerService/UpdateAccount"
	LedgerServiceDeleteAccountProcedure  = "/clubhouse.v1.LedgerService/DeleteAccount"
	LedgerServiceCreatePostingProcedure  = "/clubhouse.v1.LedgerService/CreatePosting"
	LedgerServiceUpdatePostingProcedure  = "/clubhouse.v1.LedgerService/UpdatePosting"
	LedgerServiceDeletePostingProcedure  = "/clubhouse.v1.LedgerService/DeletePosting"
	LedgerServiceListPostingsProcedure   = "/clubhouse.v1.LedgerService/ListPostings"
	LedgerServiceComputeSummaryProcedure = "/clubhouse.v1.LedgerService/ComputeSummary"
)

// LedgerServiceHandler is the server side of the LedgerService.
type LedgerServiceHandler interface {
	CreateAccount(context.Context, *connect.Request[api.CreateAccountRequest]) (*connect.Response[api.CreateAccountResponse], error)
	ListAccounts(context.Context, *connect.Request[api.ListAccountsRequest]) (*connect.Response[api.ListAccountsResponse], error)
	UpdateAccount(context.Context, *connect.Request[api.UpdateAccountRequest]) (*connect.Response[api.UpdateAccountResponse], error)
	DeleteAccount(context.Context, *connect.Request[api.DeleteAccountRequest]) (*connect.Response[api.DeleteAccountResponse], error)
	CreatePosting(context.Context, *connect.Request[api.CreatePostingRequest]) (*connect.Response[api.CreatePostingResponse], error)
	UpdatePosting(context.Context, *connect.Request[api.UpdatePostingRequest]) (*connect.Response[api.UpdatePostingResponse], error)
	DeletePosting(context.Context, *connect.Request[api.DeletePostingRequest]) (*connect.Response[api.DeletePostingResponse], error)
	ListPostings(context.Context, *connect.Request[api.ListPostingsRequest]) (*connect.Response[api.ListPostingsResponse], error)
	ComputeSummary(context.Context, *connect.Request[api.ComputeSummaryRequest]) (*connect.Response[api.ComputeSummaryResponse], error)
}

// NewLedgerServiceHandler builds an HTTP handler for every procedure of the service.
// It returns the path prefix to mount it on.
func NewLedgerServiceHandler(svc LedgerServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = withJSON(opts)
	mux := http.NewServeMux()
	mux.Handle(LedgerServiceCreateAccountProcedure, connect.NewUnaryHandler(LedgerServiceCreateAccountProcedure, svc.CreateAccount, opts...))
	mux.Handle(LedgerServiceListAccountsProcedure, connect.NewUnaryHandler(LedgerServiceListAccountsProcedure, svc.ListAccounts, opts...))
	mux.Handle(LedgerServiceUpdateAccountProcedure, connect.NewUnaryHandler(LedgerServiceUpdateAccountProcedure, svc.UpdateAccount, opts...))
	mux.Handle(LedgerServiceDeleteAccountProcedure, connect.NewUnaryHandler(LedgerServiceDeleteAccountProcedure, svc.DeleteAccount, opts...))
	mux.Handle(LedgerServiceCreatePostingProcedure, connect.NewUnaryHandler(LedgerServiceCreatePostingProcedure, svc.CreatePosting, opts...))
	mux.Handle(LedgerServiceUpdatePostingProcedure, connect.NewUnaryHandler(LedgerServiceUpdatePostingProcedure, svc.UpdatePosting, opts...))
	mux.Handle(LedgerServiceDeletePostingProcedure, connect.NewUnaryHandler(LedgerServiceDeletePostingProcedure, svc.DeletePosting, opts...))
	mux.Handle(LedgerServiceListPostingsProcedure, connect.NewUnaryHandler(LedgerServiceListPostingsProcedure, svc.ListPostings, opts...))
	mux.Handle(LedgerServiceComputeSummaryProcedure, connect.NewUnaryHandler(LedgerServiceComputeSummaryProcedure, svc.ComputeSummary, opts...))
	return "/" + LedgerServiceName + "/", mux
}

// LedgerServiceClient calls the LedgerService over Connect.
type LedgerServiceClient struct {
	createAccount  *connect.Client[api.CreateAccountRequest, api.CreateAccountResponse]
	listAccounts   *connect.Client[api.ListAccountsRequest, api.ListAccountsResponse]
	updateAccount  *connect.Client[api.UpdateAccountRequest, api.UpdateAccountResponse]
	deleteAccount  *connect.Client[api.DeleteAccountRequest, api.DeleteAccountResponse]
	createPosting  *connect.Client[api.CreatePostingRequest, api.CreatePostingResponse]
	updatePosting  *connect.Client[api.UpdatePostingRequest, api.UpdatePostingResponse]
	deletePosting  *connect.Client[api.DeletePostingRequest, api.DeletePostingResponse]
	listPostings   *connect.Client[api.ListPostingsRequest, api.ListPostingsResponse]
	computeSummary *connect.Client[api.ComputeSummaryRequest, api.ComputeSummaryResponse]
}

// NewLedgerServiceClient builds a client for the server at baseURL (e.g., http://localhost:8080).
func NewLedgerServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *LedgerServiceClient {
	opts = withJSONClient(opts)
	return &LedgerServiceClient{
		createAccount:  connect.NewClient[api.CreateAccountRequest, api.CreateAccountResponse](httpClient, baseURL+LedgerServiceCreateAccountProcedure, opts...),
		listAccounts:   connect.NewClient[api.ListAccountsRequest, api.ListAccountsResponse](httpClient, baseURL+LedgerServiceListAccountsProcedure, opts...),
		updateAccount:  connect.NewClient[api.UpdateAccountRequest, api.UpdateAccountResponse](httpClient, baseURL+LedgerServiceUpdateAccountProcedure, opts...),
		deleteAccount:  connect.NewClient[api.DeleteAccountRequest, api.DeleteAccountResponse](httpClient, baseURL+LedgerServiceDeleteAccountProcedure, opts...),
		createPosting:  connect.NewClient[api.CreatePostingRequest, api.CreatePostingResponse](httpClient, baseURL+LedgerServiceCreatePostingProcedure, opts...),
		updatePosting:  connect.NewClient[api.UpdatePostingRequest, api.UpdatePostingResponse](httpClient, baseURL+LedgerServiceUpdatePostingProcedure, opts...),
		deletePosting:  connect.NewClient[api.DeletePostingRequest, api.DeletePostingResponse](httpClient, baseURL+LedgerServiceDeletePostingProcedure, opts...),
		listPostings:   connect.NewClient[api.ListPostingsRequest, api.ListPostingsResponse](httpClient, baseURL+LedgerServiceListPostingsProcedure, opts...),
		computeSummary: connect.NewClient[api.ComputeSummaryRequest, api.ComputeSummaryResponse](httpClient, baseURL+LedgerServiceComputeSummaryProcedure, opts...),
	}
}

func (c *LedgerServiceClient) CreateAccount(ctx context.Context, req *connect.Request[api.CreateAccountRequest]) (*connect.Response[api.CreateAccountResponse], error) {
	return c.createAccount.CallUnary(ctx, req)
}

func (c *LedgerServiceClient) ListAccounts(ctx context.Context, req *connect.Request[api.ListAccountsRequest]) (*connect.Response[api.ListAccountsResponse], error) {
	return c.listAccounts.CallUnary(ctx, req)
}

func (c *LedgerServiceClient) UpdateAccount(ctx context.Context, req *connect.Request[api.UpdateAccountRequest]) (*connect.Response[api.UpdateAccountResponse], error) {
	return c.updateAccount.CallUnary(ctx, req)
}

func (c *LedgerServiceClient) DeleteAccount(ctx context.Context, req *connect.Request[api.DeleteAccountRequest]) (*connect.Response[api.DeleteAccountResponse], error) {
	return c.deleteAccount.CallUnary(ctx, req)
}

func (c *LedgerServiceClient) CreatePosting(ctx context.Context, req *connect.Request[api.CreatePostingRequest]) (*connect.Response[api.CreatePostingResponse], error) {
	return c.createPosting.CallUnary(ctx, req)
}

func (c *LedgerServiceClient) UpdatePosting(ctx context.Context, req *connect.Request[api.UpdatePostingRequest]) (*connect.Response[api.UpdatePostingResponse], error) {
	return c.updatePosting.CallUnary(ctx, req)
}

func (c *LedgerServiceClient) DeletePosting(ctx context.Context, req *connect.Request[api.DeletePostingRequest]) (*connect.Response[api.DeletePostingResponse], error) {
	return c.deletePosting.CallUnary(ctx, req)
}

func (c *LedgerServiceClient) ListPostings(ctx context.Context, req *connect.Request[api.ListPostingsRequest]) (*connect.Response[api.ListPostingsResponse], error) {
	return c.listPostings.CallUnary(ctx, req)
}

func (c *LedgerServiceClient) ComputeSummary(ctx context.Context, req *connect.Request[api.ComputeSummaryRequest]) (*connect.Response[api.ComputeSummaryResponse], error) {
	return c.computeSummary.CallUnary(ctx, req)
}
