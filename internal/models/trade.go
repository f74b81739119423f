package models

import "time"

// Position is the direction of a trade.
type Position string

const (
	PositionBuy  Position = "BUY"
	PositionSell Position = "SELL"
)

// Valid reports whether p is BUY or SELL.
func (p Position) Valid() bool {
	return p == PositionBuy || p == PositionSell
}

// TradeResult is the outcome of a closed trade.
type TradeResult string

const (
	ResultWin       TradeResult = "WIN"
	ResultLoss      TradeResult = "LOSS"
	ResultBreakeven TradeResult = "BREAKEVEN"
)

// Valid reports whether r is a known result.
func (r TradeResult) Valid() bool {
	switch r {
	case ResultWin, ResultLoss, ResultBreakeven:
		return true
	}
	return false
}

// Trade is one journaled position outcome.
type Trade struct {
	// ID is the unique identifier (UUID format).
	ID string `json:"id"`

	// UserID owns the trade and is the partition key.
	UserID string `json:"userId"`

	// Pair is the instrument, upper-cased (e.g. "XAUUSD").
	Pair     string      `json:"pair"`
	Position Position    `json:"position"`
	Result   TradeResult `json:"result"`

	// Pips is the signed outcome in pips.
	Pips float64 `json:"pips"`

	EntryPrice *float64 `json:"entryPrice,omitempty"`
	ExitPrice  *float64 `json:"exitPrice,omitempty"`
	StopLoss   *float64 `json:"stopLoss,omitempty"`
	TakeProfit *float64 `json:"takeProfit,omitempty"`
	LotSize    *float64 `json:"lotSize,omitempty"`

	Notes          string   `json:"notes,omitempty"`
	EmotionalState string   `json:"emotionalState,omitempty"`
	Tags           []string `json:"tags,omitempty"`
	Screenshot     string   `json:"screenshot,omitempty"`

	// TradeDate is when the trade happened, as reported by the user.
	TradeDate time.Time `json:"tradeDate"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TradeFilter narrows a trade listing. Zero values mean "no filter".
type TradeFilter struct {
	Pair   string
	Result TradeResult
	Since  time.Time
	Limit  int
	Offset int
}
