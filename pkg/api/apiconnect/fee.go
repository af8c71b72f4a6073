package apiconnect

import (
	"context"
	"net/http"

	"connectrpc.com/connect"

	"github.com/mmynk/clubhouse/pkg/api"
)

// FeeServiceName is the fully-qualified name of the FeeService.
const FeeServiceName = "clubhouse.v1.FeeService"

// Procedure paths of the FeeService.
const (
	FeeServiceGenerateMonthlyFeesProcedure = "/clubhouse.v1.FeeService/GenerateMonthlyFees"
	FeeServiceListFeesProcedure            = "/clubhouse.v1.FeeService/ListFees"
	FeeServicePayFeeProcedure              = "/clubhouse.v1.FeeService/PayFee"
	FeeServiceGetFeeReportProcedure        = "/clubhouse.v1.FeeService/GetFeeReport"
)

// FeeServiceHandler is the server side of the FeeService.
type FeeServiceHandler interface {
	GenerateMonthlyFees(context.Context, *connect.Request[api.GenerateMonthlyFeesRequest]) (*connect.Response[api.GenerateMonthlyFeesResponse], error)
	ListFees(context.Context, *connect.Request[api.ListFeesRequest]) (*connect.Response[api.ListFeesResponse], error)
	PayFee(context.Context, *connect.Request[api.PayFeeRequest]) (*connect.Response[api.PayFeeResponse], error)
	GetFeeReport(context.Context, *connect.Request[api.GetFeeReportRequest]) (*connect.Response[api.GetFeeReportResponse], error)
}

// NewFeeServiceHandler builds an HTTP handler for every procedure of the service.
// It returns the path prefix to mount it on.
func NewFeeServiceHandler(svc FeeServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = withJSON(opts)
	mux := http.NewServeMux()
	mux.Handle(FeeServiceGenerateMonthlyFeesProcedure, connect.NewUnaryHandler(FeeServiceGenerateMonthlyFeesProcedure, svc.GenerateMonthlyFees, opts...))
	mux.Handle(FeeServiceListFeesProcedure, connect.NewUnaryHandler(FeeServiceListFeesProcedure, svc.ListFees, opts...))
	mux.Handle(FeeServicePayFeeProcedure, connect.NewUnaryHandler(FeeServicePayFeeProcedure, svc.PayFee, opts...))
	mux.Handle(FeeServiceGetFeeReportProcedure, connect.NewUnaryHandler(FeeServiceGetFeeReportProcedure, svc.GetFeeReport, opts...))
	return "/" + FeeServiceName + "/", mux
}

// FeeServiceClient calls the FeeService over Connect.
type FeeServiceClient struct {
	generateMonthlyFees *connect.Client[api.GenerateMonthlyFeesRequest, api.GenerateMonthlyFeesResponse]
	listFees            *connect.Client[api.ListFeesRequest, api.ListFeesResponse]
	payFee              *connect.Client[api.PayFeeRequest, api.PayFeeResponse]
	getFeeReport        *connect.Client[api.GetFeeReportRequest, api.GetFeeReportResponse]
}

// NewFeeServiceClient builds a client for the server at baseURL (e.g., http://localhost:8080).
func NewFeeServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *FeeServiceClient {
	opts = withJSONClient(opts)
	return &FeeServiceClient{
		generateMonthlyFees: connect.NewClient[api.GenerateMonthlyFeesRequest, api.GenerateMonthlyFeesResponse](httpClient, baseURL+FeeServiceGenerateMonthlyFeesProcedure, opts...),
		listFees:            connect.NewClient[api.ListFeesRequest, api.ListFeesResponse](httpClient, baseURL+FeeServiceListFeesProcedure, opts...),
		payFee:              connect.NewClient[api.PayFeeRequest, api.PayFeeResponse](httpClient, baseURL+FeeServicePayFeeProcedure, opts...),
		getFeeReport:        connect.NewClient[api.GetFeeReportRequest, api.GetFeeReportResponse](httpClient, baseURL+FeeServiceGetFeeReportProcedure, opts...),
	}
}

func (c *FeeServiceClient) GenerateMonthlyFees(ctx context.Context, req *connect.Request[api.GenerateMonthlyFeesRequest]) (*connect.Response[api.GenerateMonthlyFeesResponse], error) {
	return c.generateMonthlyFees.CallUnary(ctx, req)
}

func (c *FeeServiceClient) ListFees(ctx context.Context, req *connect.Request[api.ListFeesRequest]) (*connect.Response[api.ListFeesResponse], error) {
	return c.listFees.CallUnary(ctx, req)
}

func (c *FeeServiceClient) PayFee(ctx context.Context, req *connect.Request[api.PayFeeRequest]) (*connect.Response[api.PayFeeResponse], error) {
	return c.payFee.CallUnary(ctx, req)
}

func (c *FeeServiceClient) GetFeeReport(ctx context.Context, req *connect.Request[api.GetFeeReportRequest]) (*connect.Response[api.GetFeeReportResponse], error) {
	return c.getFeeReport.CallUnary(ctx, req)
}
