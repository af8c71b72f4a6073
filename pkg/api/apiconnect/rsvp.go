package apiconnect

import (
	"context"
	"net/http"

	"connectrpc.com/connect"

	"github.com/mmynk/clubhouse/pkg/api"
)

// RSVPServiceName is the fully-qualified name of the RSVPService.
const RSVPServiceName = "clubhouse.v1.RSVPService"

// Procedure paths of the RSVPService.
const (
	RSVPServiceGetInvitationProcedure     = "/clubhouse.v1.RSVPService/GetInvitation"
	RSVPServiceConfirmAttendanceProcedure = "/clubhouse.v1.RSVPService/ConfirmAttendance"
)

// RSVPServiceHandler is the server side of the RSVPService.
type RSVPServiceHandler interface {
	GetInvitation(context.Context, *connect.Request[api.GetInvitationRequest]) (*connect.Response[api.GetInvitationResponse], error)
	ConfirmAttendance(context.Context, *connect.Request[api.ConfirmAttendanceRequest]) (*connect.Response[api.ConfirmAttendanceResponse], error)
}

// NewRSVPServiceHandler builds an HTTP handler for every procedure of the service.
// It returns the path prefix to mount it on.
func NewRSVPServiceHandler(svc RSVPServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = withJSON(opts)
	mux := http.NewServeMux()
	mux.Handle(RSVPServiceGetInvitationProcedure, connect.NewUnaryHandler(RSVPServiceGetInvitationProcedure, svc.GetInvitation, opts...))
	mux.Handle(RSVPServiceConfirmAttendanceProcedure, connect.NewUnaryHandler(RSVPServiceConfirmAttendanceProcedure, svc.ConfirmAttendance, opts...))
	return "/" + RSVPServiceName + "/", mux
}

// RSVPServiceClient calls the RSVPService over Connect.
type RSVPServiceClient struct {
	getInvitation     *connect.Client[api.GetInvitationRequest, api.GetInvitationResponse]
	confirmAttendance *connect.Client[api.ConfirmAttendanceRequest, api.ConfirmAttendanceResponse]
}

// NewRSVPServiceClient builds a client for the server at baseURL (e.g., http://localhost:8080).
func NewRSVPServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *RSVPServiceClient {
	opts = withJSONClient(opts)
	return &RSVPServiceClient{
		getInvitation:     connect.NewClient[api.GetInvitationRequest, api.GetInvitationResponse](httpClient, baseURL+RSVPServiceGetInvitationProcedure, opts...),
		confirmAttendance: connect.NewClient[api.ConfirmAttendanceRequest, api.ConfirmAttendanceResponse](httpClient, baseURL+RSVPServiceConfirmAttendanceProcedure, opts...),
	}
}

func (c *RSVPServiceClient) GetInvitation(ctx context.Context, req *connect.Request[api.GetInvitationRequest]) (*connect.Response[api.GetInvitationResponse], error) {
	return c.getInvitation.CallUnary(ctx, req)
}

func (c *RSVPServiceClient) ConfirmAttendance(ctx context.Context, req *connect.Request[api.ConfirmAttendanceRequest]) (*connect.Response[api.ConfirmAttendanceResponse], error) {
	return c.confirmAttendance.CallUnary(ctx, req)
}
