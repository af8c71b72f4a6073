package service

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"

	"connectrpc.com/connect"

	"github.com/mmynk/clubhouse/internal/apperr"
	"github.com/mmynk/clubhouse/internal/models"
	"github.com/mmynk/clubhouse/internal/roster"
	"github.com/mmynk/clubhouse/internal/storage"
	"github.com/mmynk/clubhouse/pkg/api"
	"github.com/mmynk/clubhouse/pkg/api/apiconnect"
)

var photoExtensions = map[string]string{
	"image/png":  "png",
	"image/jpeg": "jpg",
}

// MemberService implements the Connect MemberService.
type MemberService struct {
	store    storage.MemberStore
	blobs    storage.BlobStore
	validate *ValidationHelper
}

var _ apiconnect.MemberServiceHandler = (*MemberService)(nil)

// NewMemberService creates a MemberService. blobs may be nil, in which case
// photo uploads are unavailable.
func NewMemberService(store storage.MemberStore, blobs storage.BlobStore) *MemberService {
	return &MemberService{store: store, blobs: blobs, validate: NewValidationHelper()}
}

// CreateMember registers a member. Nicknames are unique.
func (s *MemberService) CreateMember(ctx context.Context, req *connect.Request[api.CreateMemberRequest]) (*connect.Response[api.CreateMemberResponse], error) {
	slog.Info("CreateMember request received", "nickname", req.Msg.Nickname)

	if err := s.validate.Validate(req.Msg); err != nil {
		return nil, err
	}

	member := &models.Member{
		Name:     req.Msg.Name,
		Nickname: req.Msg.Nickname,
		Email:    req.Msg.Email,
		Phone:    req.Msg.Phone,
		Active:   true,
	}
	if req.Msg.Active != nil {
		member.Active = *req.Msg.Active
	}

	if err := s.store.CreateMember(ctx, member); err != nil {
		return nil, toConnectError("CreateMember", nicknameTaken(err))
	}

	slog.Info("Member created", "member_id", member.ID)
	return connect.NewResponse(&api.CreateMemberResponse{Member: toMember(member)}), nil
}

// GetMember retrieves a member by ID.
func (s *MemberService) GetMember(ctx context.Context, req *connect.Request[api.GetMemberRequest]) (*connect.Response[api.GetMemberResponse], error) {
	if err := s.validate.Validate(req.Msg); err != nil {
		return nil, err
	}

	member, err := s.store.GetMember(ctx, req.Msg.ID)
	if err != nil {
		return nil, toConnectError("GetMember", err)
	}
	return connect.NewResponse(&api.GetMemberResponse{Member: toMember(member)}), nil
}

// ListMembers returns members ordered by name.
func (s *MemberService) ListMembers(ctx context.Context, req *connect.Request[api.ListMembersRequest]) (*connect.Response[api.ListMembersResponse], error) {
	slog.Info("ListMembers request received", "active_only", req.Msg.ActiveOnly)

	members, err := s.store.ListMembers(ctx, storage.MemberQuery{ActiveOnly: req.Msg.ActiveOnly})
	if err != nil {
		return nil, toConnectError("ListMembers", err)
	}

	out := make([]*api.Member, len(members))
	for i := range members {
		out[i] = toMember(&members[i])
	}
	return connect.NewResponse(&api.ListMembersResponse{Members: out}), nil
}

// UpdateMember replaces a member's editable fields. The photo is kept.
func (s *MemberService) UpdateMember(ctx context.Context, req *connect.Request[api.UpdateMemberRequest]) (*connect.Response[api.UpdateMemberResponse], error) {
	slog.Info("UpdateMember request received", "member_id", req.Msg.ID)

	if err := s.validate.Validate(req.Msg); err != nil {
		return nil, err
	}

	member, err := s.store.GetMember(ctx, req.Msg.ID)
	if err != nil {
		return nil, toConnectError("UpdateMember", err)
	}
	member.Name = req.Msg.Name
	member.Nickname = req.Msg.Nickname
	member.Email = req.Msg.Email
	member.Phone = req.Msg.Phone
	member.Active = req.Msg.Active

	if err := s.store.UpdateMember(ctx, member); err != nil {
		return nil, toConnectError("UpdateMember", nicknameTaken(err))
	}

	slog.Info("Member updated", "member_id", member.ID)
	return connect.NewResponse(&api.UpdateMemberResponse{Member: toMember(member)}), nil
}

// DeleteMember removes a member together with their fees and confirmations.
func (s *MemberService) DeleteMember(ctx context.Context, req *connect.Request[api.DeleteMemberRequest]) (*connect.Response[api.DeleteMemberResponse], error) {
	slog.Info("DeleteMember request received", "member_id", req.Msg.ID)

	if err := s.validate.Validate(req.Msg); err != nil {
		return nil, err
	}
	if err := s.store.DeleteMember(ctx, req.Msg.ID); err != nil {
		return nil, toConnectError("DeleteMember", err)
	}

	slog.Info("Member deleted", "member_id", req.Msg.ID)
	return connect.NewResponse(&api.DeleteMemberResponse{}), nil
}

// FindMemberByNickname resolves a nickname the way the RSVP form does. A miss
// is a normal response with Found=false.
func (s *MemberService) FindMemberByNickname(ctx context.Context, req *connect.Request[api.FindMemberByNicknameRequest]) (*connect.Response[api.FindMemberByNicknameResponse], error) {
	if err := s.validate.Validate(req.Msg); err != nil {
		return nil, err
	}

	member, ok, err := roster.Lookup(ctx, s.store, req.Msg.Nickname)
	if err != nil {
		return nil, toConnectError("FindMemberByNickname", err)
	}
	if !ok {
		return connect.NewResponse(&api.FindMemberByNicknameResponse{}), nil
	}
	return connect.NewResponse(&api.FindMemberByNicknameResponse{Found: true, Member: toMember(member)}), nil
}

// UploadMemberPhoto stores a PNG or JPEG and points the member's photo at it.
// The declared content type must match the bytes.
func (s *MemberService) UploadMemberPhoto(ctx context.Context, req *connect.Request[api.UploadMemberPhotoRequest]) (*connect.Response[api.UploadMemberPhotoResponse], error) {
	slog.Info("UploadMemberPhoto request received",
		"member_id", req.Msg.MemberID,
		"content_type", req.Msg.ContentType,
		"bytes", len(req.Msg.Data),
	)

	if err := s.validate.Validate(req.Msg); err != nil {
		return nil, err
	}
	if s.blobs == nil {
		return nil, apiconnect.NewError(apperr.Unavailable("photo storage is not configured"), nil)
	}
	if sniffed := http.DetectContentType(req.Msg.Data); sniffed != req.Msg.ContentType {
		return nil, apiconnect.NewError(
			apperr.Validation("data is not "+req.Msg.ContentType),
			map[string]string{"data": "detected " + sniffed},
		)
	}

	member, err := s.store.GetMember(ctx, req.Msg.MemberID)
	if err != nil {
		return nil, toConnectError("UploadMemberPhoto", err)
	}

	key := "members/" + member.ID + "/photo." + photoExtensions[req.Msg.ContentType]
	url, err := s.blobs.Put(ctx, key, bytes.NewReader(req.Msg.Data))
	if err != nil {
		return nil, toConnectError("UploadMemberPhoto", err)
	}

	member.PhotoURL = url
	if err := s.store.UpdateMember(ctx, member); err != nil {
		return nil, toConnectError("UploadMemberPhoto", err)
	}

	slog.Info("Member photo stored", "member_id", member.ID, "url", url)
	return connect.NewResponse(&api.UploadMemberPhotoResponse{Member: toMember(member)}), nil
}

func nicknameTaken(err error) error {
	if errors.Is(err, storage.ErrConflict) {
		return apperr.Wrap(apperr.KindAlreadyExists, "nickname already taken", err)
	}
	return err
}
