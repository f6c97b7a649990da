package risk

import "fmt"

// EntryGuards are the hard limits checked before a manual trade is
// recorded: maximum share count, maximum dollar investment, and the
// minimum distance the stop must sit below the entry.
type EntryGuards struct {
	MaxShares       int
	MaxInvestment   float64
	MinStopDistance float64
}

// GuardViolation names a broken entry guard.
type GuardViolation struct {
	Code string `json:"code"`
	Msg  string `json:"msg"`
}

// CheckEntry evaluates the entry guards for a planned trade and returns
// every violation. An empty slice means the entry is within limits.
func CheckEntry(shares int, buyPrice, stopLossPrice float64, g EntryGuards) []GuardViolation {
	var violations []GuardViolation

	if g.MaxShares > 0 && shares > g.MaxShares {
		violations = append(violations, GuardViolation{
			Code: "MAX_SHARES",
			Msg:  fmt.Sprintf("shares %d exceed max %d", shares, g.MaxShares),
		})
	}
	if investment := buyPrice * float64(shares); g.MaxInvestment > 0 && investment > g.MaxInvestment {
		violations = append(violations, GuardViolation{
			Code: "MAX_INVESTMENT",
			Msg:  fmt.Sprintf("investment %.2f exceeds max %.2f", investment, g.MaxInvestment),
		})
	}
	if stopLossPrice > buyPrice-g.MinStopDistance {
		violations = append(violations, GuardViolation{
			Code: "STOP_TOO_TIGHT",
			Msg:  fmt.Sprintf("stop %.2f not at least %.2f below entry %.2f", stopLossPrice, g.MinStopDistance, buyPrice),
		})
	}
	return violations
}
