package service

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"connectrpc.com/connect"

	"github.com/mptwarrior/warrior/internal/leaderboard"
	"github.com/mptwarrior/warrior/internal/middleware"
	"github.com/mptwarrior/warrior/internal/models"
	"github.com/mptwarrior/warrior/internal/storage"
	"github.com/mptwarrior/warrior/pkg/api"
)

// LeaderboardService exposes weekly rankings and the admin controls around them.
type LeaderboardService struct {
	store    storage.Store
	board    *leaderboard.Board
	pipeline *leaderboard.Pipeline
}

func NewLeaderboardService(store storage.Store, board *leaderboard.Board, pipeline *leaderboard.Pipeline) *LeaderboardService {
	return &LeaderboardService{store: store, board: board, pipeline: pipeline}
}

func (s *LeaderboardService) GetLeaderboard(ctx context.Context, req *connect.Request[api.GetLeaderboardRequest]) (*connect.Response[api.GetLeaderboardResponse], error) {
	if _, err := middleware.Authenticated(ctx); err != nil {
		return nil, err
	}
	if req.Msg.Limit < 0 || req.Msg.Offset < 0 {
		return nil, invalidArgument("limit and offset must not be negative")
	}
	entries, err := s.board.Page(ctx, req.Msg.Limit, req.Msg.Offset, req.Msg.Search)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&api.GetLeaderboardResponse{Entries: entries}), nil
}

func (s *LeaderboardService) GetTopThree(ctx context.Context, req *connect.Request[api.GetTopThreeRequest]) (*connect.Response[api.GetTopThreeResponse], error) {
	if _, err := middleware.Authenticated(ctx); err != nil {
		return nil, err
	}
	entries, err := s.board.TopThree(ctx)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&api.GetTopThreeResponse{Entries: entries}), nil
}

// GetUserRanking returns the caller's ranking unless another user id is given.
func (s *LeaderboardService) GetUserRanking(ctx context.Context, req *connect.Request[api.GetUserRankingRequest]) (*connect.Response[api.GetUserRankingResponse], error) {
	userID, err := middleware.Authenticated(ctx)
	if err != nil {
		return nil, err
	}
	if req.Msg.UserID != "" {
		userID = req.Msg.UserID
	}

	r, err := s.board.Ranking(ctx, userID)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&api.GetUserRankingResponse{
		Entry:            r.Entry,
		TotalRanked:      r.TotalRanked,
		Percentile:       r.Percentile,
		PointsToNextTier: r.PointsToNextTier,
	}), nil
}

// AdjustPoints adds a bonus (or penalty) to a user's points. The board
// reflects it on the next recalculation.
func (s *LeaderboardService) AdjustPoints(ctx context.Context, req *connect.Request[api.AdjustPointsRequest]) (*connect.Response[api.AdjustPointsResponse], error) {
	if err := middleware.RequireSuperAdmin(ctx); err != nil {
		return nil, err
	}
	msg := req.Msg
	if msg.UserID == "" {
		return nil, invalidArgument("userId is required")
	}
	if msg.Delta == 0 {
		return nil, invalidArgument("delta must not be zero")
	}

	user, err := s.store.GetUserByID(ctx, msg.UserID)
	if err != nil {
		return nil, toConnectError(err)
	}
	user.BonusPoints += msg.Delta
	if err := s.store.UpdateUser(ctx, user); err != nil {
		slog.Error("AdjustPoints failed", "user_id", msg.UserID, "error", err)
		return nil, toConnectError(err)
	}

	actor := middleware.GetUserID(ctx)
	recordAudit(ctx, s.store, models.AuditPointsAdjusted, actor, user.ID, map[string]string{
		"delta":  strconv.Itoa(msg.Delta),
		"total":  strconv.Itoa(user.BonusPoints),
		"reason": msg.Reason,
	})
	slog.Info("Points adjusted", "user_id", user.ID, "delta", msg.Delta, "bonus_points", user.BonusPoints, "performed_by", actor)
	return connect.NewResponse(&api.AdjustPointsResponse{BonusPoints: user.BonusPoints}), nil
}

// Recalculate runs the ranking pipeline now.
func (s *LeaderboardService) Recalculate(ctx context.Context, req *connect.Request[api.RecalculateRequest]) (*connect.Response[api.RecalculateResponse], error) {
	if err := middleware.RequireSuperAdmin(ctx); err != nil {
		return nil, err
	}
	res, err := s.pipeline.Run(ctx, "admin")
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(newRecalculateResponse(res)), nil
}

func newRecalculateResponse(res *leaderboard.Result) *api.RecalculateResponse {
	return &api.RecalculateResponse{
		Week:       res.Week,
		Processed:  res.Processed,
		Updated:    res.Updated,
		Removed:    res.Removed,
		DurationMS: res.Duration.Milliseconds(),
	}
}

// CronHandler lets an external scheduler trigger a recalculation over plain
// HTTP. The secret is accepted in X-Cron-Token or as a bearer token.
func CronHandler(pipeline *leaderboard.Pipeline, secret string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.Header().Set("Allow", http.MethodPost)
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if !cronAuthorized(r, secret) {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		res, err := pipeline.Run(r.Context(), "http")
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]any{"success": false, "error": "recalculation failed"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "result": newRecalculateResponse(res)})
	})
}

func cronAuthorized(r *http.Request, secret string) bool {
	if secret == "" {
		return false
	}
	token := r.Header.Get("X-Cron-Token")
	if token == "" {
		if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
			token = strings.TrimPrefix(h, "Bearer ")
		}
	}
	return subtle.ConstantTimeCompare([]byte(token), []byte(secret)) == 1
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("Failed to write response", "error", err)
	}
}
