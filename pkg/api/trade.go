package api

import (
	"time"

	"github.com/mptwarrior/warrior/internal/calculator"
	"github.com/mptwarrior/warrior/internal/models"
)

type CreateTradeRequest struct {
	Pair           string             `json:"pair"`
	Position       models.Position    `json:"position"`
	Result         models.TradeResult `json:"result"`
	Pips           float64            `json:"pips"`
	EntryPrice     *float64           `json:"entryPrice,omitempty"`
	ExitPrice      *float64           `json:"exitPrice,omitempty"`
	StopLoss       *float64           `json:"stopLoss,omitempty"`
	TakeProfit     *float64           `json:"takeProfit,omitempty"`
	LotSize        *float64           `json:"lotSize,omitempty"`
	Notes          string             `json:"notes,omitempty"`
	EmotionalState string             `json:"emotionalState,omitempty"`
	Tags           []string           `json:"tags,omitempty"`
	Screenshot     string             `json:"screenshot,omitempty"`
	// TradeDate defaults to now.
	TradeDate *time.Time `json:"tradeDate,omitempty"`

	// FollowedStrategy and RiskPercent feed the discipline score only.
	FollowedStrategy bool     `json:"followedStrategy,omitempty"`
	RiskPercent      *float64 `json:"riskPercent,omitempty"`
}

type TradeResponse struct {
	Trade *models.Trade `json:"trade"`

	// Discipline lists the score changes CreateTrade caused.
	Discipline []*models.DisciplineLog `json:"discipline,omitempty"`
}

type GetTradeRequest struct {
	TradeID string `json:"tradeId"`
}

type ListTradesRequest struct {
	Pair   string             `json:"pair,omitempty"`
	Result models.TradeResult `json:"result,omitempty"`
	Limit  int                `json:"limit,omitempty"`
	Offset int                `json:"offset,omitempty"`
}

type ListTradesResponse struct {
	Trades []*models.Trade `json:"trades"`
}

// UpdateTradeRequest changes the fields that are set.
type UpdateTradeRequest struct {
	TradeID        string              `json:"tradeId"`
	Pair           *string             `json:"pair,omitempty"`
	Position       *models.Position    `json:"position,omitempty"`
	Result         *models.TradeResult `json:"result,omitempty"`
	Pips           *float64            `json:"pips,omitempty"`
	EntryPrice     *float64            `json:"entryPrice,omitempty"`
	ExitPrice      *float64            `json:"exitPrice,omitempty"`
	StopLoss       *float64            `json:"stopLoss,omitempty"`
	TakeProfit     *float64            `json:"takeProfit,omitempty"`
	LotSize        *float64            `json:"lotSize,omitempty"`
	Notes          *string             `json:"notes,omitempty"`
	EmotionalState *string             `json:"emotionalState,omitempty"`
	Tags           []string            `json:"tags,omitempty"`
	Screenshot     *string             `json:"screenshot,omitempty"`
	TradeDate      *time.Time          `json:"tradeDate,omitempty"`
}

type DeleteTradeResponse struct{}

type GetTradeStatsRequest struct{}

type GetTradeStatsResponse struct {
	Stats calculator.TradeStats `json:"stats"`
}
