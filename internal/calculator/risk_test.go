package calculator

import (
	"errors"
	"math"
	"testing"
)

func TestCalculateRisk(t *testing.T) {
	tests := []struct {
		name    string
		input   RiskInput
		wantErr error
		want    RiskResult
	}{
		{
			name:  "mini account with target",
			input: RiskInput{Balance: 5000, RiskPercent: 2, StopLossPips: 50, TakeProfitPips: 100},
			// risk = 100, pip value = 1, lot = 100 / (50 × 1) = 2, profit = 100 × 1 × 2 = 200
			want: RiskResult{
				Category:       CategoryMini,
				PipValue:       1,
				RiskAmount:     100,
				LotSize:        2,
				MarginRequired: 100,
				ProfitTarget:   200,
				RiskReward:     2,
				Quality:        RewardExcellent,
			},
		},
		{
			name:  "micro account rounds lot to 4dp",
			input: RiskInput{Balance: 500, RiskPercent: 1, StopLossPips: 30},
			// risk = 5, pip value = 0.1, lot = 5 / 3 = 1.6667
			want: RiskResult{
				Category:       CategoryMicro,
				PipValue:       0.1,
				RiskAmount:     5,
				LotSize:        1.6667,
				MarginRequired: 10,
				Quality:        RewardNone,
			},
		},
		{
			name:  "standard account fair reward",
			input: RiskInput{Balance: 25000, RiskPercent: 1, StopLossPips: 40, TakeProfitPips: 40},
			// risk = 250, pip value = 10, lot = 250 / 400 = 0.625, profit = 40 × 10 × 0.625 = 250
			want: RiskResult{
				Category:       CategoryStandard,
				PipValue:       10,
				RiskAmount:     250,
				LotSize:        0.625,
				MarginRequired: 500,
				ProfitTarget:   250,
				RiskReward:     1,
				Quality:        RewardFair,
			},
		},
		{
			name:  "professional account poor reward",
			input: RiskInput{Balance: 200000, RiskPercent: 0.5, StopLossPips: 20, TakeProfitPips: 10},
			want: RiskResult{
				Category:       CategoryProfessional,
				PipValue:       100,
				RiskAmount:     1000,
				LotSize:        0.5,
				MarginRequired: 4000,
				ProfitTarget:   500,
				RiskReward:     0.5,
				Quality:        RewardPoor,
			},
		},
		{
			name:    "zero balance",
			input:   RiskInput{Balance: 0, RiskPercent: 1, StopLossPips: 10},
			wantErr: ErrInvalidBalance,
		},
		{
			name:    "risk above five percent",
			input:   RiskInput{Balance: 1000, RiskPercent: 5.5, StopLossPips: 10},
			wantErr: ErrInvalidRisk,
		},
		{
			name:    "zero risk",
			input:   RiskInput{Balance: 1000, RiskPercent: 0, StopLossPips: 10},
			wantErr: ErrInvalidRisk,
		},
		{
			name:    "zero stop loss",
			input:   RiskInput{Balance: 1000, RiskPercent: 1, StopLossPips: 0},
			wantErr: ErrInvalidStopLoss,
		},
		{
			name:    "negative take profit",
			input:   RiskInput{Balance: 1000, RiskPercent: 1, StopLossPips: 10, TakeProfitPips: -5},
			wantErr: ErrInvalidTarget,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CalculateRisk(tt.input)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("CalculateRisk() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("CalculateRisk() unexpected error: %v", err)
			}

			if got.Category != tt.want.Category {
				t.Errorf("Category = %s, want %s", got.Category, tt.want.Category)
			}
			if got.Quality != tt.want.Quality {
				t.Errorf("Quality = %s, want %s", got.Quality, tt.want.Quality)
			}
			checks := []struct {
				field     string
				got, want float64
			}{
				{"PipValue", got.PipValue, tt.want.PipValue},
				{"RiskAmount", got.RiskAmount, tt.want.RiskAmount},
				{"LotSize", got.LotSize, tt.want.LotSize},
				{"MarginRequired", got.MarginRequired, tt.want.MarginRequired},
				{"ProfitTarget", got.ProfitTarget, tt.want.ProfitTarget},
				{"RiskReward", got.RiskReward, tt.want.RiskReward},
			}
			for _, c := range checks {
				if math.Abs(c.got-c.want) > 0.00001 {
					t.Errorf("%s = %v, want %v", c.field, c.got, c.want)
				}
			}
		})
	}
}

func TestCalculateRiskPipValueOverride(t *testing.T) {
	got, err := CalculateRisk(RiskInput{Balance: 5000, RiskPercent: 1, StopLossPips: 25, PipValue: 10})
	if err != nil {
		t.Fatalf("CalculateRisk() unexpected error: %v", err)
	}
	// risk = 50, lot = 50 / (25 × 10) = 0.2
	if got.PipValue != 10 || math.Abs(got.LotSize-0.2) > 0.00001 {
		t.Errorf("override ignored: pip value %v, lot %v", got.PipValue, got.LotSize)
	}
	if got.Category != CategoryMini {
		t.Errorf("Category = %s, want %s", got.Category, CategoryMini)
	}
}

func TestPipValueForBoundaries(t *testing.T) {
	tests := []struct {
		balance float64
		want    float64
	}{
		{999.99, 0.1},
		{1000, 1},
		{9999, 1},
		{10000, 10},
		{99999, 10},
		{100000, 100},
	}
	for _, tt := range tests {
		got, _ := PipValueFor(tt.balance)
		if got != tt.want {
			t.Errorf("PipValueFor(%v) = %v, want %v", tt.balance, got, tt.want)
		}
	}
}
