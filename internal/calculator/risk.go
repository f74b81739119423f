package calculator

import (
	"errors"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidBalance  = errors.New("balance must be greater than 0")
	ErrInvalidRisk     = errors.New("risk must be between 0 and 5 percent")
	ErrInvalidStopLoss = errors.New("stop loss must be greater than 0 pips")
	ErrInvalidTarget   = errors.New("take profit cannot be negative")
)

// MaxRiskPercent is the largest risk per trade the calculator accepts.
const MaxRiskPercent = 5

// AccountCategory buckets an account by balance.
type AccountCategory string

const (
	CategoryMicro        AccountCategory = "Micro"
	CategoryMini         AccountCategory = "Mini"
	CategoryStandard     AccountCategory = "Standard"
	CategoryProfessional AccountCategory = "Professional"
)

// RewardQuality grades a risk/reward ratio.
type RewardQuality string

const (
	RewardNone      RewardQuality = "NONE"
	RewardPoor      RewardQuality = "POOR"
	RewardFair      RewardQuality = "FAIR"
	RewardExcellent RewardQuality = "EXCELLENT"
)

// RiskInput holds the user-supplied numbers.
type RiskInput struct {
	Balance        float64
	RiskPercent    float64
	StopLossPips   float64
	TakeProfitPips float64

	// PipValue overrides the balance-derived pip value when positive.
	PipValue float64
}

// RiskResult is the position sizing for one trade idea.
type RiskResult struct {
	Category       AccountCategory `json:"accountCategory"`
	PipValue       float64         `json:"pipValue"`
	RiskAmount     float64         `json:"riskAmount"`
	LotSize        float64         `json:"lotSize"`
	MarginRequired float64         `json:"marginRequired"`
	ProfitTarget   float64         `json:"profitTarget"`
	RiskReward     float64         `json:"riskRewardRatio"`
	Quality        RewardQuality   `json:"rewardQuality"`
}

// PipValueFor returns the value of one pip for an account of the given size.
func PipValueFor(balance float64) (float64, AccountCategory) {
	switch {
	case balance < 1000:
		return 0.1, CategoryMicro
	case balance < 10000:
		return 1, CategoryMini
	case balance < 100000:
		return 10, CategoryStandard
	default:
		return 100, CategoryProfessional
	}
}

// CalculateRisk sizes a position so that hitting the stop loses exactly
// RiskPercent of the balance.
//
//	risk amount = balance × risk% (2dp)
//	lot size    = risk amount / (stop loss pips × pip value) (4dp)
//	margin      = 2% of balance (2dp)
//	profit      = take profit pips × pip value × lot size (2dp)
//	R:R         = take profit pips / stop loss pips (2dp)
func CalculateRisk(in RiskInput) (*RiskResult, error) {
	if in.Balance <= 0 {
		return nil, ErrInvalidBalance
	}
	if in.RiskPercent <= 0 || in.RiskPercent > MaxRiskPercent {
		return nil, ErrInvalidRisk
	}
	if in.StopLossPips <= 0 {
		return nil, ErrInvalidStopLoss
	}
	if in.TakeProfitPips < 0 {
		return nil, ErrInvalidTarget
	}

	pipValue, category := PipValueFor(in.Balance)
	if in.PipValue > 0 {
		pipValue = in.PipValue
	}

	balance := decimal.NewFromFloat(in.Balance)
	pip := decimal.NewFromFloat(pipValue)
	sl := decimal.NewFromFloat(in.StopLossPips)
	tp := decimal.NewFromFloat(in.TakeProfitPips)

	risk := balance.Mul(decimal.NewFromFloat(in.RiskPercent)).Div(decimal.NewFromInt(100))
	lot := risk.Div(sl.Mul(pip))
	margin := balance.Mul(decimal.NewFromFloat(0.02))

	result := &RiskResult{
		Category:       category,
		PipValue:       pipValue,
		RiskAmount:     risk.Round(2).InexactFloat64(),
		LotSize:        lot.Round(4).InexactFloat64(),
		MarginRequired: margin.Round(2).InexactFloat64(),
		Quality:        RewardNone,
	}

	if tp.IsPositive() {
		result.ProfitTarget = tp.Mul(pip).Mul(lot).Round(2).InexactFloat64()
		rr := tp.Div(sl).Round(2)
		result.RiskReward = rr.InexactFloat64()
		result.Quality = gradeRiskReward(rr)
	}

	return result, nil
}

func gradeRiskReward(rr decimal.Decimal) RewardQuality {
	switch {
	case rr.GreaterThanOrEqual(decimal.NewFromFloat(1.5)):
		return RewardExcellent
	case rr.GreaterThanOrEqual(decimal.NewFromInt(1)):
		return RewardFair
	default:
		return RewardPoor
	}
}
