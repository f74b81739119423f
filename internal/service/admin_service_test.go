package service

import (
	"context"
	"testing"

	"connectrpc.com/connect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mptwarrior/warrior/internal/invitation"
	"github.com/mptwarrior/warrior/internal/models"
	"github.com/mptwarrior/warrior/pkg/api"
)

func TestApprovePendingUser(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin, adminToken := env.admin()
	pending, _ := env.user(models.RolePending, models.StatusPending)

	client := env.adminClient(adminToken)
	list, err := client.ListPendingUsers(ctx, connect.NewRequest(&api.ListUsersRequest{}))
	require.NoError(t, err)
	require.Len(t, list.Msg.Users, 1)
	assert.Equal(t, pending.ID, list.Msg.Users[0].ID)

	resp, err := client.ApproveUser(ctx, connect.NewRequest(&api.UserActionRequest{UserID: pending.ID, Reason: "verified"}))
	require.NoError(t, err)
	assert.Equal(t, models.StatusActive, resp.Msg.User.Status)
	assert.Equal(t, models.RoleWarrior, resp.Msg.User.Role)
	assert.NotNil(t, resp.Msg.User.ApprovedDate)

	stored, err := env.store.GetUserByID(ctx, pending.ID)
	require.NoError(t, err)
	assert.Equal(t, admin.ID, stored.ApprovedBy)

	logs, err := client.ListAuditLogs(ctx, connect.NewRequest(&api.ListAuditLogsRequest{}))
	require.NoError(t, err)
	require.NotEmpty(t, logs.Msg.Logs)
	assert.Equal(t, models.AuditUserApproved, logs.Msg.Logs[0].Action)
	assert.Equal(t, admin.ID, logs.Msg.Logs[0].PerformedBy)
	assert.Equal(t, "verified", logs.Msg.Logs[0].Metadata["reason"])

	list, err = client.ListPendingUsers(ctx, connect.NewRequest(&api.ListUsersRequest{}))
	require.NoError(t, err)
	assert.Empty(t, list.Msg.Users)
}

func TestApproveKeepsAdminRole(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	_, adminToken := env.admin()
	invitedAdmin, _ := env.user(models.RoleAdmin, models.StatusPending)

	resp, err := env.adminClient(adminToken).ApproveUser(ctx, connect.NewRequest(&api.UserActionRequest{UserID: invitedAdmin.ID}))
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, resp.Msg.User.Role)
	assert.Equal(t, models.StatusActive, resp.Msg.User.Status)
}

func TestModerationPermissions(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	_, warriorToken := env.warrior()
	_, adminToken := env.admin()
	superAdmin, superToken := env.superAdmin()
	target, _ := env.warrior()

	tests := []struct {
		name  string
		token string
		call  func(c *testEnv, token string) error
		want  connect.Code
	}{
		{
			name:  "warrior cannot list users",
			token: warriorToken,
			call: func(e *testEnv, token string) error {
				_, err := e.adminClient(token).ListUsers(ctx, connect.NewRequest(&api.ListUsersRequest{}))
				return err
			},
			want: connect.CodePermissionDenied,
		},
		{
			name:  "anonymous cannot suspend",
			token: "",
			call: func(e *testEnv, token string) error {
				_, err := e.adminClient(token).SuspendUser(ctx, connect.NewRequest(&api.UserActionRequest{UserID: target.ID}))
				return err
			},
			want: connect.CodeUnauthenticated,
		},
		{
			name:  "admin cannot promote",
			token: adminToken,
			call: func(e *testEnv, token string) error {
				_, err := e.adminClient(token).PromoteUser(ctx, connect.NewRequest(&api.UserActionRequest{UserID: target.ID}))
				return err
			},
			want: connect.CodePermissionDenied,
		},
		{
			name:  "nobody moderates a super admin",
			token: superToken,
			call: func(e *testEnv, token string) error {
				_, err := e.adminClient(token).SuspendUser(ctx, connect.NewRequest(&api.UserActionRequest{UserID: superAdmin.ID}))
				return err
			},
			want: connect.CodePermissionDenied,
		},
		{
			name:  "unknown user",
			token: adminToken,
			call: func(e *testEnv, token string) error {
				_, err := e.adminClient(token).RejectUser(ctx, connect.NewRequest(&api.UserActionRequest{UserID: "missing"}))
				return err
			},
			want: connect.CodeNotFound,
		},
		{
			name:  "unknown status filter",
			token: adminToken,
			call: func(e *testEnv, token string) error {
				_, err := e.adminClient(token).ListUsers(ctx, connect.NewRequest(&api.ListUsersRequest{Status: "banned"}))
				return err
			},
			want: connect.CodeInvalidArgument,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			requireCode(t, tt.call(env, tt.token), tt.want)
		})
	}
}

func TestSuperAdminActions(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	_, superToken := env.superAdmin()
	target, _ := env.warrior()
	client := env.adminClient(superToken)

	promoted, err := client.PromoteUser(ctx, connect.NewRequest(&api.UserActionRequest{UserID: target.ID}))
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, promoted.Msg.User.Role)

	founder, err := client.MarkFounder(ctx, connect.NewRequest(&api.UserActionRequest{UserID: target.ID}))
	require.NoError(t, err)
	assert.True(t, founder.Msg.User.Founder)

	suspended, err := client.SuspendUser(ctx, connect.NewRequest(&api.UserActionRequest{UserID: target.ID}))
	require.NoError(t, err)
	assert.Equal(t, models.StatusSuspended, suspended.Msg.User.Status)

	_, err = env.authClient("").Login(ctx, connect.NewRequest(&api.LoginRequest{Email: target.Email, Password: testPassword}))
	requireCode(t, err, connect.CodePermissionDenied)
}

func TestGetStatistics(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	_, adminToken := env.admin()
	_, _ = env.warrior()
	_, _ = env.user(models.RolePending, models.StatusPending)

	_, err := env.codes.Generate(ctx, invitation.GenerateParams{Code: "LIVE-CODE"})
	require.NoError(t, err)
	_, err = env.codes.Generate(ctx, invitation.GenerateParams{Code: "DEAD-CODE"})
	require.NoError(t, err)
	_, err = env.codes.Deactivate(ctx, "DEAD-CODE")
	require.NoError(t, err)

	resp, err := env.adminClient(adminToken).GetStatistics(ctx, connect.NewRequest(&api.GetStatisticsRequest{}))
	require.NoError(t, err)
	stats := resp.Msg
	assert.Equal(t, 3, stats.TotalUsers)
	assert.Equal(t, 2, stats.UsersByStatus[models.StatusActive])
	assert.Equal(t, 1, stats.UsersByStatus[models.StatusPending])
	assert.Equal(t, 1, stats.UsersByRole[models.RoleAdmin])
	assert.Equal(t, 1, stats.ActiveCodes)
	assert.Equal(t, 0, stats.TotalTrades)
}
