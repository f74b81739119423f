package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"connectrpc.com/connect"
	"github.com/google/uuid"

	"github.com/mptwarrior/warrior/internal/calculator"
	"github.com/mptwarrior/warrior/internal/discipline"
	"github.com/mptwarrior/warrior/internal/middleware"
	"github.com/mptwarrior/warrior/internal/models"
	"github.com/mptwarrior/warrior/internal/storage"
	"github.com/mptwarrior/warrior/pkg/api"
)

// maxTradePage caps ListTrades pages.
const maxTradePage = 500

// tradeStore is what the journal needs: the trades themselves and the
// owner's settings for the discipline review.
type tradeStore interface {
	storage.TradeStore
	GetUserByID(ctx context.Context, id string) (*models.User, error)
}

// TradeService is the caller's trade journal. Every call is scoped to the
// authenticated user.
type TradeService struct {
	store      tradeStore
	discipline *discipline.Tracker
	now        func() time.Time
}

// NewTradeService creates the journal. A nil tracker leaves discipline
// scores untouched.
func NewTradeService(store tradeStore, tracker *discipline.Tracker) *TradeService {
	return &TradeService{store: store, discipline: tracker, now: time.Now}
}

// CreateTrade records a trade. The pair is upper-cased and the trade date
// defaults to now. The trade is then reviewed for the discipline score; a
// failed review is logged and does not fail the call.
func (s *TradeService) CreateTrade(ctx context.Context, req *connect.Request[api.CreateTradeRequest]) (*connect.Response[api.TradeResponse], error) {
	userID, err := middleware.Authenticated(ctx)
	if err != nil {
		return nil, err
	}
	msg := req.Msg
	slog.Info("CreateTrade request received", "user_id", userID, "pair", msg.Pair)

	pair := normalizePair(msg.Pair)
	switch {
	case pair == "":
		return nil, invalidArgument("pair is required")
	case !msg.Position.Valid():
		return nil, invalidArgument("position must be BUY or SELL")
	case !msg.Result.Valid():
		return nil, invalidArgument("result must be WIN, LOSS or BREAKEVEN")
	}

	now := s.now().UTC()
	trade := &models.Trade{
		ID:             uuid.New().String(),
		UserID:         userID,
		Pair:           pair,
		Position:       msg.Position,
		Result:         msg.Result,
		Pips:           msg.Pips,
		EntryPrice:     msg.EntryPrice,
		ExitPrice:      msg.ExitPrice,
		StopLoss:       msg.StopLoss,
		TakeProfit:     msg.TakeProfit,
		LotSize:        msg.LotSize,
		Notes:          msg.Notes,
		EmotionalState: msg.EmotionalState,
		Tags:           msg.Tags,
		Screenshot:     msg.Screenshot,
		TradeDate:      now,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if msg.TradeDate != nil && !msg.TradeDate.IsZero() {
		trade.TradeDate = msg.TradeDate.UTC()
	}

	if err := s.store.CreateTrade(ctx, trade); err != nil {
		slog.Error("CreateTrade failed", "user_id", userID, "error", err)
		return nil, toConnectError(err)
	}

	slog.Info("Trade created", "user_id", userID, "trade_id", trade.ID)

	logs, err := s.reviewTrade(ctx, trade, msg)
	if err != nil {
		slog.Warn("Discipline review failed", "user_id", userID, "trade_id", trade.ID, "recorded", len(logs), "error", err)
	}
	return connect.NewResponse(&api.TradeResponse{Trade: trade, Discipline: logs}), nil
}

// reviewTrade scores trade against the owner's trades of the last day, using
// the owner's risk limit and timezone.
func (s *TradeService) reviewTrade(ctx context.Context, trade *models.Trade, msg *api.CreateTradeRequest) ([]*models.DisciplineLog, error) {
	if s.discipline == nil {
		return nil, nil
	}
	user, err := s.store.GetUserByID(ctx, trade.UserID)
	if err != nil {
		return nil, err
	}
	loc, err := time.LoadLocation(user.Settings.Timezone)
	if err != nil {
		loc = time.UTC
	}
	recent, err := s.store.ListTrades(ctx, trade.UserID, models.TradeFilter{Since: trade.TradeDate.Add(-24 * time.Hour)})
	if err != nil {
		return nil, err
	}
	return s.discipline.ReviewTrade(ctx, trade, recent, calculator.TradeReview{
		FollowedStrategy: msg.FollowedStrategy,
		RiskPercent:      msg.RiskPercent,
		MaxRiskPercent:   user.Settings.RiskPercent,
		Location:         loc,
	})
}

func (s *TradeService) GetTrade(ctx context.Context, req *connect.Request[api.GetTradeRequest]) (*connect.Response[api.TradeResponse], error) {
	userID, err := middleware.Authenticated(ctx)
	if err != nil {
		return nil, err
	}
	if req.Msg.TradeID == "" {
		return nil, invalidArgument("tradeId is required")
	}

	trade, err := s.store.GetTrade(ctx, userID, req.Msg.TradeID)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&api.TradeResponse{Trade: trade}), nil
}

// ListTrades returns the caller's trades, newest trade date first.
func (s *TradeService) ListTrades(ctx context.Context, req *connect.Request[api.ListTradesRequest]) (*connect.Response[api.ListTradesResponse], error) {
	userID, err := middleware.Authenticated(ctx)
	if err != nil {
		return nil, err
	}
	msg := req.Msg
	if msg.Result != "" && !msg.Result.Valid() {
		return nil, invalidArgument("result must be WIN, LOSS or BREAKEVEN")
	}
	if msg.Limit < 0 || msg.Offset < 0 {
		return nil, invalidArgument("limit and offset must not be negative")
	}

	trades, err := s.store.ListTrades(ctx, userID, models.TradeFilter{
		Pair:   normalizePair(msg.Pair),
		Result: msg.Result,
		Limit:  min(msg.Limit, maxTradePage),
		Offset: msg.Offset,
	})
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&api.ListTradesResponse{Trades: trades}), nil
}

// UpdateTrade applies the fields that are set. ID and owner never change.
func (s *TradeService) UpdateTrade(ctx context.Context, req *connect.Request[api.UpdateTradeRequest]) (*connect.Response[api.TradeResponse], error) {
	userID, err := middleware.Authenticated(ctx)
	if err != nil {
		return nil, err
	}
	msg := req.Msg
	if msg.TradeID == "" {
		return nil, invalidArgument("tradeId is required")
	}

	trade, err := s.store.GetTrade(ctx, userID, msg.TradeID)
	if err != nil {
		return nil, toConnectError(err)
	}

	if msg.Pair != nil {
		if trade.Pair = normalizePair(*msg.Pair); trade.Pair == "" {
			return nil, invalidArgument("pair must not be empty")
		}
	}
	if msg.Position != nil {
		if !msg.Position.Valid() {
			return nil, invalidArgument("position must be BUY or SELL")
		}
		trade.Position = *msg.Position
	}
	if msg.Result != nil {
		if !msg.Result.Valid() {
			return nil, invalidArgument("result must be WIN, LOSS or BREAKEVEN")
		}
		trade.Result = *msg.Result
	}
	if msg.Pips != nil {
		trade.Pips = *msg.Pips
	}
	if msg.EntryPrice != nil {
		trade.EntryPrice = msg.EntryPrice
	}
	if msg.ExitPrice != nil {
		trade.ExitPrice = msg.ExitPrice
	}
	if msg.StopLoss != nil {
		trade.StopLoss = msg.StopLoss
	}
	if msg.TakeProfit != nil {
		trade.TakeProfit = msg.TakeProfit
	}
	if msg.LotSize != nil {
		trade.LotSize = msg.LotSize
	}
	if msg.Notes != nil {
		trade.Notes = *msg.Notes
	}
	if msg.EmotionalState != nil {
		trade.EmotionalState = *msg.EmotionalState
	}
	if msg.Tags != nil {
		trade.Tags = msg.Tags
	}
	if msg.Screenshot != nil {
		trade.Screenshot = *msg.Screenshot
	}
	if msg.TradeDate != nil && !msg.TradeDate.IsZero() {
		trade.TradeDate = msg.TradeDate.UTC()
	}
	trade.UpdatedAt = s.now().UTC()

	if err := s.store.UpdateTrade(ctx, trade); err != nil {
		slog.Error("UpdateTrade failed", "user_id", userID, "trade_id", trade.ID, "error", err)
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&api.TradeResponse{Trade: trade}), nil
}

func (s *TradeService) DeleteTrade(ctx context.Context, req *connect.Request[api.GetTradeRequest]) (*connect.Response[api.DeleteTradeResponse], error) {
	userID, err := middleware.Authenticated(ctx)
	if err != nil {
		return nil, err
	}
	if req.Msg.TradeID == "" {
		return nil, invalidArgument("tradeId is required")
	}

	if err := s.store.DeleteTrade(ctx, userID, req.Msg.TradeID); err != nil {
		return nil, toConnectError(err)
	}
	slog.Info("Trade deleted", "user_id", userID, "trade_id", req.Msg.TradeID)
	return connect.NewResponse(&api.DeleteTradeResponse{}), nil
}

// GetTradeStats summarizes all of the caller's trades.
func (s *TradeService) GetTradeStats(ctx context.Context, req *connect.Request[api.GetTradeStatsRequest]) (*connect.Response[api.GetTradeStatsResponse], error) {
	userID, err := middleware.Authenticated(ctx)
	if err != nil {
		return nil, err
	}
	trades, err := s.store.ListTrades(ctx, userID, models.TradeFilter{})
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&api.GetTradeStatsResponse{Stats: calculator.ComputeTradeStats(trades)}), nil
}

// normalizePair turns " eur/usd " into "EUR/USD".
func normalizePair(pair string) string {
	return strings.ToUpper(strings.TrimSpace(pair))
}
