package service

import (
	"context"
	"log/slog"
	"strconv"
	"strings"

	"connectrpc.com/connect"

	"github.com/mptwarrior/warrior/internal/calculator"
	"github.com/mptwarrior/warrior/internal/discipline"
	"github.com/mptwarrior/warrior/internal/middleware"
	"github.com/mptwarrior/warrior/internal/models"
	"github.com/mptwarrior/warrior/internal/storage"
	"github.com/mptwarrior/warrior/pkg/api"
)

// DisciplineService exposes discipline scores. Trades feed the score through
// TradeService; admins can record an action by hand.
type DisciplineService struct {
	store   storage.Store
	tracker *discipline.Tracker
}

func NewDisciplineService(store storage.Store, tracker *discipline.Tracker) *DisciplineService {
	return &DisciplineService{store: store, tracker: tracker}
}

// GetDiscipline returns the caller's score, milestones and recent history.
func (s *DisciplineService) GetDiscipline(ctx context.Context, req *connect.Request[api.GetDisciplineRequest]) (*connect.Response[api.GetDisciplineResponse], error) {
	userID, err := middleware.Authenticated(ctx)
	if err != nil {
		return nil, err
	}
	if req.Msg.Limit < 0 {
		return nil, invalidArgument("limit must not be negative")
	}

	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		return nil, toConnectError(err)
	}
	history, err := s.tracker.History(ctx, userID, req.Msg.Limit)
	if err != nil {
		return nil, toConnectError(err)
	}

	score := user.DisciplineScore
	return connect.NewResponse(&api.GetDisciplineResponse{
		Score:         score,
		Milestones:    calculator.DisciplineMilestones(score),
		NextMilestone: calculator.NextDisciplineMilestone(score),
		History:       history,
	}), nil
}

// RecordDiscipline applies one action to a member's score. Admins only.
func (s *DisciplineService) RecordDiscipline(ctx context.Context, req *connect.Request[api.RecordDisciplineRequest]) (*connect.Response[api.RecordDisciplineResponse], error) {
	if err := middleware.RequireAdmin(ctx); err != nil {
		return nil, err
	}
	msg := req.Msg
	if msg.UserID == "" {
		return nil, invalidArgument("userId is required")
	}
	if _, ok := msg.Action.Points(); !ok {
		return nil, invalidArgument("unknown action " + string(msg.Action))
	}

	adminID := middleware.GetUserID(ctx)
	entry, err := s.tracker.Record(ctx, msg.UserID, msg.Action, msg.TradeID, strings.TrimSpace(msg.Reason))
	if err != nil {
		slog.Error("RecordDiscipline failed", "user_id", msg.UserID, "action", msg.Action, "error", err)
		return nil, toConnectError(err)
	}

	recordAudit(ctx, s.store, models.AuditDisciplineSet, adminID, msg.UserID, map[string]string{
		"action":    string(msg.Action),
		"points":    strconv.Itoa(entry.Points),
		"new_score": strconv.Itoa(entry.NewScore),
	})
	slog.Info("Discipline recorded", "user_id", msg.UserID, "action", msg.Action, "score", entry.NewScore, "admin_id", adminID)
	return connect.NewResponse(&api.RecordDisciplineResponse{Entry: entry}), nil
}
