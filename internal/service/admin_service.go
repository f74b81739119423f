package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"connectrpc.com/connect"

	"github.com/mptwarrior/warrior/internal/invitation"
	"github.com/mptwarrior/warrior/internal/middleware"
	"github.com/mptwarrior/warrior/internal/models"
	"github.com/mptwarrior/warrior/internal/storage"
	"github.com/mptwarrior/warrior/pkg/api"
)

const (
	defaultAuditLimit = 50
	maxAuditLimit     = 500
)

var errSuperAdminTarget = errors.New("super admin accounts cannot be changed here")

// AdminService implements member moderation for admins.
type AdminService struct {
	store storage.Store
	now   func() time.Time
}

func NewAdminService(store storage.Store) *AdminService {
	return &AdminService{store: store, now: time.Now}
}

// ListPendingUsers lists accounts waiting for approval.
func (s *AdminService) ListPendingUsers(ctx context.Context, req *connect.Request[api.ListUsersRequest]) (*connect.Response[api.ListUsersResponse], error) {
	if err := middleware.RequireAdmin(ctx); err != nil {
		return nil, err
	}
	users, err := s.store.ListUsers(ctx, storage.UserFilter{Status: models.StatusPending})
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&api.ListUsersResponse{Users: api.NewUsers(users)}), nil
}

// ListUsers lists accounts, optionally with one status.
func (s *AdminService) ListUsers(ctx context.Context, req *connect.Request[api.ListUsersRequest]) (*connect.Response[api.ListUsersResponse], error) {
	if err := middleware.RequireAdmin(ctx); err != nil {
		return nil, err
	}
	if req.Msg.Status != "" && !req.Msg.Status.Valid() {
		return nil, invalidArgument("unknown status " + string(req.Msg.Status))
	}
	users, err := s.store.ListUsers(ctx, storage.UserFilter{Status: req.Msg.Status})
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&api.ListUsersResponse{Users: api.NewUsers(users)}), nil
}

// ApproveUser activates an account. Admin-invited users stay ADMIN; everyone
// else becomes WARRIOR.
func (s *AdminService) ApproveUser(ctx context.Context, req *connect.Request[api.UserActionRequest]) (*connect.Response[api.UserActionResponse], error) {
	return s.moderate(ctx, req.Msg, middleware.RequireAdmin, models.AuditUserApproved, func(u *models.User, by string, now time.Time) {
		u.Status = models.StatusActive
		if u.Role != models.RoleAdmin {
			u.Role = models.RoleWarrior
		}
		u.ApprovedDate = &now
		u.ApprovedBy = by
	})
}

func (s *AdminService) RejectUser(ctx context.Context, req *connect.Request[api.UserActionRequest]) (*connect.Response[api.UserActionResponse], error) {
	return s.moderate(ctx, req.Msg, middleware.RequireAdmin, models.AuditUserRejected, func(u *models.User, _ string, _ time.Time) {
		u.Status = models.StatusRejected
	})
}

func (s *AdminService) SuspendUser(ctx context.Context, req *connect.Request[api.UserActionRequest]) (*connect.Response[api.UserActionResponse], error) {
	return s.moderate(ctx, req.Msg, middleware.RequireAdmin, models.AuditUserSuspended, func(u *models.User, _ string, _ time.Time) {
		u.Status = models.StatusSuspended
	})
}

// PromoteUser grants ADMIN. Super admins only.
func (s *AdminService) PromoteUser(ctx context.Context, req *connect.Request[api.UserActionRequest]) (*connect.Response[api.UserActionResponse], error) {
	return s.moderate(ctx, req.Msg, middleware.RequireSuperAdmin, models.AuditUserPromoted, func(u *models.User, _ string, _ time.Time) {
		u.Role = models.RoleAdmin
	})
}

// MarkFounder flags the academy founder, who is kept off the leaderboard.
// Super admins only.
func (s *AdminService) MarkFounder(ctx context.Context, req *connect.Request[api.UserActionRequest]) (*connect.Response[api.UserActionResponse], error) {
	return s.moderate(ctx, req.Msg, middleware.RequireSuperAdmin, models.AuditFounderMarked, func(u *models.User, _ string, _ time.Time) {
		u.Founder = true
	})
}

// moderate loads the target, applies change, saves and audits.
func (s *AdminService) moderate(
	ctx context.Context,
	msg *api.UserActionRequest,
	authorize func(context.Context) error,
	action models.AuditAction,
	change func(u *models.User, by string, now time.Time),
) (*connect.Response[api.UserActionResponse], error) {
	if err := authorize(ctx); err != nil {
		return nil, err
	}
	if msg.UserID == "" {
		return nil, invalidArgument("userId is required")
	}
	adminID := middleware.GetUserID(ctx)
	slog.Info("Admin action", "action", action, "user_id", msg.UserID, "admin_id", adminID)

	user, err := s.store.GetUserByID(ctx, msg.UserID)
	if err != nil {
		return nil, toConnectError(err)
	}
	if user.Role == models.RoleSuperAdmin {
		return nil, connect.NewError(connect.CodePermissionDenied, errSuperAdminTarget)
	}

	now := s.now().UTC()
	change(user, adminID, now)
	user.UpdatedAt = now
	if err := s.store.UpdateUser(ctx, user); err != nil {
		slog.Error("Admin action failed", "action", action, "user_id", user.ID, "error", err)
		return nil, toConnectError(err)
	}

	meta := map[string]string{"status": string(user.Status), "role": string(user.Role)}
	if msg.Reason != "" {
		meta["reason"] = msg.Reason
	}
	recordAudit(ctx, s.store, action, adminID, user.ID, meta)

	return connect.NewResponse(&api.UserActionResponse{User: api.NewUser(user)}), nil
}

// ListAuditLogs returns the newest audit entries.
func (s *AdminService) ListAuditLogs(ctx context.Context, req *connect.Request[api.ListAuditLogsRequest]) (*connect.Response[api.ListAuditLogsResponse], error) {
	if err := middleware.RequireAdmin(ctx); err != nil {
		return nil, err
	}
	limit := req.Msg.Limit
	if limit <= 0 {
		limit = defaultAuditLimit
	}
	limit = min(limit, maxAuditLimit)

	logs, err := s.store.ListAuditLogs(ctx, limit)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&api.ListAuditLogsResponse{Logs: logs}), nil
}

// GetStatistics summarizes membership and activity for the admin dashboard.
func (s *AdminService) GetStatistics(ctx context.Context, req *connect.Request[api.GetStatisticsRequest]) (*connect.Response[api.GetStatisticsResponse], error) {
	if err := middleware.RequireAdmin(ctx); err != nil {
		return nil, err
	}

	users, err := s.store.ListUsers(ctx, storage.UserFilter{})
	if err != nil {
		return nil, toConnectError(err)
	}
	resp := &api.GetStatisticsResponse{
		TotalUsers:    len(users),
		UsersByStatus: make(map[models.UserStatus]int),
		UsersByRole:   make(map[models.Role]int),
	}
	for _, u := range users {
		resp.UsersByStatus[u.Status]++
		resp.UsersByRole[u.Role]++
	}

	if resp.TotalTrades, err = s.store.CountTrades(ctx); err != nil {
		return nil, toConnectError(err)
	}

	codes, err := s.store.ListCodes(ctx, true)
	if err != nil {
		return nil, toConnectError(err)
	}
	now := s.now()
	for _, c := range codes {
		if invitation.Check(c, now) == "" {
			resp.ActiveCodes++
		}
	}

	ungraded, err := s.store.ListUngradedAnswers(ctx)
	if err != nil {
		return nil, toConnectError(err)
	}
	resp.PendingEssays = len(ungraded)

	entries, err := s.store.ListLeaderboardEntries(ctx)
	if err != nil {
		return nil, toConnectError(err)
	}
	resp.RankedWarriors = len(entries)

	return connect.NewResponse(resp), nil
}
