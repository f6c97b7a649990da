// Package risk holds the pre-trade arithmetic: position sizing from a
// fixed account risk, reward/risk ratios, and the manual-entry guards.
// It is pure and has no persistence dependency.
package risk

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Inputs are the five account parameters for a position-size calculation.
type Inputs struct {
	AccountBalance decimal.Decimal `json:"account_balance"`
	RiskPercent    decimal.Decimal `json:"risk_percent"` // 0 < r <= 100
	EntryPrice     decimal.Decimal `json:"entry_price"`
	StopLossPrice  decimal.Decimal `json:"stop_loss_price"`
	TargetPrice    decimal.Decimal `json:"target_price"`
}

// Result is the sizing output. When the stop is not below the entry the
// case is degenerate: every output is zero and Degenerate is set, which is
// a defined answer rather than an error.
type Result struct {
	RiskPerTrade    decimal.Decimal `json:"risk_per_trade"`
	RiskPerShare    decimal.Decimal `json:"risk_per_share"`
	PotentialReward decimal.Decimal `json:"potential_reward"`
	PositionSize    decimal.Decimal `json:"position_size"`
	TotalInvestment decimal.Decimal `json:"total_investment"`
	MaxLoss         decimal.Decimal `json:"max_loss"`
	PotentialProfit decimal.Decimal `json:"potential_profit"`
	RewardRiskRatio decimal.Decimal `json:"reward_risk_ratio"`
	Degenerate      bool            `json:"degenerate"`
	Warning         string          `json:"warning,omitempty"`
}

// centTolerance bounds the max-loss self-check.
var centTolerance = decimal.NewFromFloat(0.01)

var oneHundred = decimal.NewFromInt(100)

// Calculate sizes a position so that a losing trade costs the configured
// fraction of the account. The max-loss consistency check re-verifies the
// arithmetic within one cent and reports a mismatch as a warning only.
func Calculate(in Inputs) (Result, error) {
	if !in.AccountBalance.IsPositive() {
		return Result{}, fmt.Errorf("account balance must be positive, got %s", in.AccountBalance)
	}
	if !in.RiskPercent.IsPositive() || in.RiskPercent.GreaterThan(oneHundred) {
		return Result{}, fmt.Errorf("risk percent must be in (0, 100], got %s", in.RiskPercent)
	}

	riskPerTrade := in.AccountBalance.Mul(in.RiskPercent).Div(oneHundred)
	riskPerShare := in.EntryPrice.Sub(in.StopLossPrice)
	potentialReward := in.TargetPrice.Sub(in.EntryPrice)

	if !riskPerShare.IsPositive() {
		// Stop at or above entry: defined degenerate case, all zeros.
		return Result{Degenerate: true}, nil
	}

	positionSize := riskPerTrade.Div(riskPerShare)
	res := Result{
		RiskPerTrade:    riskPerTrade,
		RiskPerShare:    riskPerShare,
		PotentialReward: potentialReward,
		PositionSize:    positionSize,
		TotalInvestment: positionSize.Mul(in.EntryPrice),
		MaxLoss:         positionSize.Mul(riskPerShare),
		PotentialProfit: positionSize.Mul(potentialReward),
		RewardRiskRatio: potentialReward.Div(riskPerShare),
	}

	if res.MaxLoss.Sub(riskPerTrade).Abs().GreaterThan(centTolerance) {
		res.Warning = fmt.Sprintf("max loss %s deviates from planned risk %s by more than a cent",
			res.MaxLoss.StringFixed(2), riskPerTrade.StringFixed(2))
	}
	return res, nil
}
