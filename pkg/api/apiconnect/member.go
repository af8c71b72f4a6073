package apiconnect

import (
	"context"
	"net/http"

	"connectrpc.com/connect"

	"github.com/mmynk/clubhouse/pkg/api"
)

// MemberServiceName is the fully-qualified name of the MemberService.
const MemberServiceName = "clubhouse.v1.MemberService"

// Procedure paths of the MemberService.
const (
	MemberServiceCreateMemberProcedure         = "/clubhouse.v1.MemberService/CreateMember"
	MemberServiceGetMemberProcedure            = "/clubhouse.v1.MemberService/GetMember"
	MemberServiceListMembersProcedure          = "/clubhouse.v1.MemberService/ListMembers"
	MemberServiceUpdateMemberProcedure         = "/clubhouse.v1.MemberService/UpdateMember"
	MemberServiceDeleteMemberProcedure         = "/clubhouse.v1.MemberService/DeleteMember"
	MemberServiceFindMemberByNicknameProcedure = "/clubhouse.v1.MemberService/FindMemberByNickname"
	MemberServiceUploadMemberPhotoProcedure    = "/clubhouse.v1.MemberService/UploadMemberPhoto"
)

// MemberServiceHandler is the server side of the MemberService.
type MemberServiceHandler interface {
	CreateMember(context.Context, *connect.Request[api.CreateMemberRequest]) (*connect.Response[api.CreateMemberResponse], error)
	GetMember(context.Context, *connect.Request[api.GetMemberRequest]) (*connect.Response[api.GetMemberResponse], error)
	ListMembers(context.Context, *connect.Request[api.ListMembersRequest]) (*connect.Response[api.ListMembersResponse], error)
	UpdateMember(context.Context, *connect.Request[api.UpdateMemberRequest]) (*connect.Response[api.UpdateMemberResponse], error)
	DeleteMember(context.Context, *connect.Request[api.DeleteMemberRequest]) (*connect.Response[api.DeleteMemberResponse], error)
	FindMemberByNickname(context.Context, *connect.Request[api.FindMemberByNicknameRequest]) (*connect.Response[api.FindMemberByNicknameResponse], error)
	UploadMemberPhoto(context.Context, *connect.Request[api.UploadMemberPhotoRequest]) (*connect.Response[api.UploadMemberPhotoResponse], error)
}

// NewMemberServiceHandler builds an HTTP handler for every procedure of the service.
// It returns the path prefix to mount it on.
func NewMemberServiceHandler(svc MemberServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = withJSON(opts)
	mux := http.NewServeMux()
	mux.Handle(MemberServiceCreateMemberProcedure, connect.NewUnaryHandler(MemberServiceCreateMemberProcedure, svc.CreateMember, opts...))
	mux.Handle(MemberServiceGetMemberProcedure, connect.NewUnaryHandler(MemberServiceGetMemberProcedure, svc.GetMember, opts...))
	mux.Handle(MemberServiceListMembersProcedure, connect.NewUnaryHandler(MemberServiceListMembersProcedure, svc.ListMembers, opts...))
	mux.Handle(MemberServiceUpdateMemberProcedure, connect.NewUnaryHandler(MemberServiceUpdateMemberProcedure, svc.UpdateMember, opts...))
	mux.Handle(MemberServiceDeleteMemberProcedure, connect.NewUnaryHandler(MemberServiceDeleteMemberProcedure, svc.DeleteMember, opts...))
	mux.Handle(MemberServiceFindMemberByNicknameProcedure, connect.NewUnaryHandler(MemberServiceFindMemberByNicknameProcedure, svc.FindMemberByNickname, opts...))
	mux.Handle(MemberServiceUploadMemberPhotoProcedure, connect.NewUnaryHandler(MemberServiceUploadMemberPhotoProcedure, svc.UploadMemberPhoto, opts...))
	return "/" + MemberServiceName + "/", mux
}

// MemberServiceClient calls the MemberService over Connect.
type MemberServiceClient struct {
	createMember         *connect.Client[api.CreateMemberRequest, api.CreateMemberResponse]
	getMember            *connect.Client[api.GetMemberRequest, api.GetMemberResponse]
	listMembers          *connect.Client[api.ListMembersRequest, api.ListMembersResponse]
	updateMember         *connect.Client[api.UpdateMemberRequest, api.UpdateMemberResponse]
	deleteMember         *connect.Client[api.DeleteMemberRequest, api.DeleteMemberResponse]
	findMemberByNickname *connect.Client[api.FindMemberByNicknameRequest, api.FindMemberByNicknameResponse]
	uploadMemberPhoto    *connect.Client[api.UploadMemberPhotoRequest, api.UploadMemberPhotoResponse]
}

// NewMemberServiceClient builds a client for the server at baseURL (e.g., http://localhost:8080).
func NewMemberServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *MemberServiceClient {
	opts = withJSONClient(opts)
	return &MemberServiceClient{
		createMember:         connect.NewClient[api.CreateMemberRequest, api.CreateMemberResponse](httpClient, baseURL+MemberServiceCreateMemberProcedure, opts...),
		getMember:            connect.NewClient[api.GetMemberRequest, api.GetMemberResponse](httpClient, baseURL+MemberServiceGetMemberProcedure, opts...),
		listMembers:          connect.NewClient[api.ListMembersRequest, api.ListMembersResponse](httpClient, baseURL+MemberServiceListMembersProcedure, opts...),
		updateMember:         connect.NewClient[api.UpdateMemberRequest, api.UpdateMemberResponse](httpClient, baseURL+MemberServiceUpdateMemberProcedure, opts...),
		deleteMember:         connect.NewClient[api.DeleteMemberRequest, api.DeleteMemberResponse](httpClient, baseURL+MemberServiceDeleteMemberProcedure, opts...),
		findMemberByNickname: connect.NewClient[api.FindMemberByNicknameRequest, api.FindMemberByNicknameResponse](httpClient, baseURL+MemberServiceFindMemberByNicknameProcedure, opts...),
		uploadMemberPhoto:    connect.NewClient[api.UploadMemberPhotoRequest, api.UploadMemberPhotoResponse](httpClient, baseURL+MemberServiceUploadMemberPhotoProcedure, opts...),
	}
}

func (c *MemberServiceClient) CreateMember(ctx context.Context, req *connect.Request[api.CreateMemberRequest]) (*connect.Response[api.CreateMemberResponse], error) {
	return c.createMember.CallUnary(ctx, req)
}

func (c *MemberServiceClient) GetMember(ctx context.Context, req *connect.Request[api.GetMemberRequest]) (*connect.Response[api.GetMemberResponse], error) {
	return c.getMember.CallUnary(ctx, req)
}

func (c *MemberServiceClient) ListMembers(ctx context.Context, req *connect.Request[api.ListMembersRequest]) (*connect.Response[api.ListMembersResponse], error) {
	return c.listMembers.CallUnary(ctx, req)
}

func (c *MemberServiceClient) UpdateMember(ctx context.Context, req *connect.Request[api.UpdateMemberRequest]) (*connect.Response[api.UpdateMemberResponse], error) {
	return c.updateMember.CallUnary(ctx, req)
}

func (c *MemberServiceClient) DeleteMember(ctx context.Context, req *connect.Request[api.DeleteMemberRequest]) (*connect.Response[api.DeleteMemberResponse], error) {
	return c.deleteMember.CallUnary(ctx, req)
}

func (c *MemberServiceClient) FindMemberByNickname(ctx context.Context, req *connect.Request[api.FindMemberByNicknameRequest]) (*connect.Response[api.FindMemberByNicknameResponse], error) {
	return c.findMemberByNickname.CallUnary(ctx, req)
}

func (c *MemberServiceClient) UploadMemberPhoto(ctx context.Context, req *connect.Request[api.UploadMemberPhotoRequest]) (*connect.Response[api.UploadMemberPhotoResponse], error) {
	return c.uploadMemberPhoto.CallUnary(ctx, req)
}
