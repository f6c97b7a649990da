package analytics

import (
	"fmt"

	"github.com/wolfnote/30-day-trading-tracker/internal/models"
)

// Verdict is the tri-state outcome of a discipline rule. Rules never
// error: with no evidence either way they report NotApplicable.
type Verdict string

const (
	Pass          Verdict = "pass"
	Violated      Verdict = "violated"
	NotApplicable Verdict = "not_applicable"
)

// Rule is one evaluated checklist entry.
type Rule struct {
	Name    string  `json:"name"`
	Verdict Verdict `json:"verdict"`
	Detail  string  `json:"detail,omitempty"`
}

// Limits carries the configured daily discipline thresholds.
type Limits struct {
	MaxDailyTrades    int
	MaxDailyLoss      float64 // dollars, positive number
	DailyProfitTarget float64
	HourWindowStart   int
	HourWindowEnd     int // inclusive
}

const (
	RuleTradingWindow = "within trading window"
	RuleTradeCap      = "within daily trade cap"
	RuleMaxLoss       = "within daily max loss"
	RuleProfitTarget  = "profit target reached"
)

// Checklist evaluates the fixed daily discipline rules against the given
// day's trades. The profit-target rule is informational: it passes when
// reached and is otherwise not applicable, never a violation.
func Checklist(records []models.TradeRecord, limits Limits) []Rule {
	summary := Summarize(records)

	return []Rule{
		windowRule(records, limits),
		capRule(summary, limits),
		lossRule(summary, limits),
		targetRule(summary, limits),
	}
}

func windowRule(records []models.TradeRecord, limits Limits) Rule {
	timed := 0
	for _, r := range records {
		h, ok := r.Hour()
		if !ok {
			continue
		}
		timed++
		if h < limits.HourWindowStart || h > limits.HourWindowEnd {
			return Rule{
				Name:    RuleTradingWindow,
				Verdict: Violated,
				Detail: fmt.Sprintf("trade at %s outside %02d:00-%02d:59",
					r.TradeTime, limits.HourWindowStart, limits.HourWindowEnd),
			}
		}
	}
	if timed == 0 {
		return Rule{Name: RuleTradingWindow, Verdict: NotApplicable}
	}
	return Rule{Name: RuleTradingWindow, Verdict: Pass}
}

func capRule(s Summary, limits Limits) Rule {
	if s.TradeCount == 0 {
		return Rule{Name: RuleTradeCap, Verdict: NotApplicable}
	}
	if s.TradeCount > limits.MaxDailyTrades {
		return Rule{
			Name:    RuleTradeCap,
			Verdict: Violated,
			Detail:  fmt.Sprintf("%d trades exceeds cap of %d", s.TradeCount, limits.MaxDailyTrades),
		}
	}
	return Rule{Name: RuleTradeCap, Verdict: Pass}
}

func lossRule(s Summary, limits Limits) Rule {
	if s.TradeCount == 0 {
		return Rule{Name: RuleMaxLoss, Verdict: NotApplicable}
	}
	if s.TotalPL <= -limits.MaxDailyLoss {
		return Rule{
			Name:    RuleMaxLoss,
			Verdict: Violated,
			Detail:  fmt.Sprintf("P/L %.2f breaches max loss of -%.2f", s.TotalPL, limits.MaxDailyLoss),
		}
	}
	return Rule{Name: RuleMaxLoss, Verdict: Pass}
}

func targetRule(s Summary, limits Limits) Rule {
	if s.TotalPL >= limits.DailyProfitTarget && s.TradeCount > 0 {
		return Rule{
			Name:    RuleProfitTarget,
			Verdict: Pass,
			Detail:  fmt.Sprintf("P/L %.2f reached target of %.2f", s.TotalPL, limits.DailyProfitTarget),
		}
	}
	return Rule{Name: RuleProfitTarget, Verdict: NotApplicable}
}
