package service

import (
	"context"
	"log/slog"
	"strconv"

	"connectrpc.com/connect"

	"github.com/mptwarrior/warrior/internal/invitation"
	"github.com/mptwarrior/warrior/internal/middleware"
	"github.com/mptwarrior/warrior/internal/models"
	"github.com/mptwarrior/warrior/internal/storage"
	"github.com/mptwarrior/warrior/pkg/api"
)

// InvitationService manages registration and referral codes.
type InvitationService struct {
	store storage.Store
	codes *invitation.Manager
}

func NewInvitationService(store storage.Store, codes *invitation.Manager) *InvitationService {
	return &InvitationService{store: store, codes: codes}
}

// ValidateCode checks a code without consuming it. It needs no login.
func (s *InvitationService) ValidateCode(ctx context.Context, req *connect.Request[api.ValidateCodeRequest]) (*connect.Response[api.ValidateCodeResponse], error) {
	if invitation.Normalize(req.Msg.Code) == "" {
		return nil, invalidArgument("code is required")
	}

	v, err := s.codes.Validate(ctx, req.Msg.Code)
	if err != nil {
		return nil, toConnectError(err)
	}

	resp := &api.ValidateCodeResponse{Valid: v.Valid}
	if !v.Valid {
		resp.Reason = string(v.Reason)
		resp.Message = v.Reason.Message()
	} else {
		resp.Role = v.Code.Role
	}
	return connect.NewResponse(resp), nil
}

// GenerateCode mints one code.
func (s *InvitationService) GenerateCode(ctx context.Context, req *connect.Request[api.GenerateCodeRequest]) (*connect.Response[api.GenerateCodeResponse], error) {
	if err := middleware.RequireAdmin(ctx); err != nil {
		return nil, err
	}
	adminID := middleware.GetUserID(ctx)
	msg := req.Msg

	code, err := s.codes.Generate(ctx, invitation.GenerateParams{
		Code:          msg.Code,
		MaxUses:       msg.MaxUses,
		ExpiresInDays: msg.ExpiresInDays,
		Role:          msg.Role,
		Description:   msg.Description,
		CreatedBy:     adminID,
	})
	if err != nil {
		slog.Warn("GenerateCode failed", "admin_id", adminID, "error", err)
		return nil, toConnectError(err)
	}

	recordAudit(ctx, s.store, models.AuditCodeCreated, adminID, "", map[string]string{
		"code":     code.Code,
		"role":     string(code.Role),
		"max_uses": strconv.Itoa(code.MaxUses),
	})
	return connect.NewResponse(&api.GenerateCodeResponse{Code: code}), nil
}

// BulkGenerateCodes mints between 1 and 100 random codes.
func (s *InvitationService) BulkGenerateCodes(ctx context.Context, req *connect.Request[api.BulkGenerateCodesRequest]) (*connect.Response[api.BulkGenerateCodesResponse], error) {
	if err := middleware.RequireAdmin(ctx); err != nil {
		return nil, err
	}
	adminID := middleware.GetUserID(ctx)
	msg := req.Msg

	codes, err := s.codes.BulkGenerate(ctx, msg.Count, invitation.GenerateParams{
		MaxUses:       msg.MaxUses,
		ExpiresInDays: msg.ExpiresInDays,
		Role:          msg.Role,
		Description:   msg.Description,
		CreatedBy:     adminID,
	})
	if len(codes) > 0 {
		recordAudit(ctx, s.store, models.AuditCodeCreated, adminID, "", map[string]string{
			"count": strconv.Itoa(len(codes)),
			"first": codes[0].Code,
		})
	}
	if err != nil {
		slog.Warn("BulkGenerateCodes failed", "admin_id", adminID, "created", len(codes), "error", err)
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&api.BulkGenerateCodesResponse{Codes: codes}), nil
}

func (s *InvitationService) ListCodes(ctx context.Context, req *connect.Request[api.ListCodesRequest]) (*connect.Response[api.ListCodesResponse], error) {
	if err := middleware.RequireAdmin(ctx); err != nil {
		return nil, err
	}
	codes, err := s.codes.List(ctx, req.Msg.ActiveOnly)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&api.ListCodesResponse{Codes: codes}), nil
}

func (s *InvitationService) UpdateCode(ctx context.Context, req *connect.Request[api.UpdateCodeRequest]) (*connect.Response[api.UpdateCodeResponse], error) {
	if err := middleware.RequireAdmin(ctx); err != nil {
		return nil, err
	}
	msg := req.Msg
	if invitation.Normalize(msg.Code) == "" {
		return nil, invalidArgument("code is required")
	}

	code, err := s.codes.Update(ctx, msg.Code, invitation.UpdateParams{
		MaxUses:       msg.MaxUses,
		ExpiresInDays: msg.ExpiresInDays,
		Description:   msg.Description,
		IsActive:      msg.IsActive,
	})
	if err != nil {
		return nil, toConnectError(err)
	}

	recordAudit(ctx, s.store, models.AuditCodeEdited, middleware.GetUserID(ctx), "", map[string]string{
		"code":      code.Code,
		"max_uses":  strconv.Itoa(code.MaxUses),
		"is_active": strconv.FormatBool(code.IsActive),
	})
	return connect.NewResponse(&api.UpdateCodeResponse{Code: code}), nil
}

func (s *InvitationService) DeactivateCode(ctx context.Context, req *connect.Request[api.CodeRequest]) (*connect.Response[api.DeactivateCodeResponse], error) {
	if err := middleware.RequireAdmin(ctx); err != nil {
		return nil, err
	}
	code, err := s.codes.Deactivate(ctx, req.Msg.Code)
	if err != nil {
		return nil, toConnectError(err)
	}
	recordAudit(ctx, s.store, models.AuditCodeDeactivated, middleware.GetUserID(ctx), "", map[string]string{"code": code.Code})
	return connect.NewResponse(&api.DeactivateCodeResponse{Code: code}), nil
}

func (s *InvitationService) DeleteCode(ctx context.Context, req *connect.Request[api.CodeRequest]) (*connect.Response[api.DeleteCodeResponse], error) {
	if err := middleware.RequireAdmin(ctx); err != nil {
		return nil, err
	}
	code := invitation.Normalize(req.Msg.Code)
	if err := s.codes.Delete(ctx, code); err != nil {
		return nil, toConnectError(err)
	}
	recordAudit(ctx, s.store, models.AuditCodeDeleted, middleware.GetUserID(ctx), "", map[string]string{"code": code})
	return connect.NewResponse(&api.DeleteCodeResponse{}), nil
}

// GenerateReferralCode returns the caller's personal referral code.
func (s *InvitationService) GenerateReferralCode(ctx context.Context, req *connect.Request[api.GenerateReferralCodeRequest]) (*connect.Response[api.GenerateReferralCodeResponse], error) {
	userID, err := middleware.Authenticated(ctx)
	if err != nil {
		return nil, err
	}
	if middleware.GetStatus(ctx) != models.StatusActive {
		return nil, connect.NewError(connect.CodePermissionDenied, middleware.ErrAccountPending)
	}

	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		return nil, toConnectError(err)
	}
	code, err := s.codes.ReferralCode(ctx, user)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&api.GenerateReferralCodeResponse{Code: code}), nil
}
