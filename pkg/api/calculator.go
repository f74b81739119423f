package api

import "github.com/mptwarrior/warrior/internal/calculator"

type CalculateRiskRequest struct {
	Balance        float64 `json:"balance"`
	RiskPercent    float64 `json:"riskPercent"`
	StopLossPips   float64 `json:"stopLossPips"`
	TakeProfitPips float64 `json:"takeProfitPips,omitempty"`
	// PipValue overrides the balance-based default when positive.
	PipValue float64 `json:"pipValue,omitempty"`
}

type CalculateRiskResponse struct {
	Result calculator.RiskResult `json:"result"`
}
