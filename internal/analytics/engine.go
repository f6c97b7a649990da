// Package analytics derives performance metrics and discipline verdicts
// from a slice of trade records. Everything here is a pure function of its
// input: an empty slice yields zero-valued metrics, never an error.
package analytics

import (
	"sort"

	"github.com/wolfnote/30-day-trading-tracker/internal/models"
)

// Summary is the headline metric block for a filtered set of trades.
type Summary struct {
	TotalPL    float64 `json:"total_pl"`
	TradeCount int     `json:"trade_count"`
	WinRate    float64 `json:"win_rate"` // fraction in [0,1]; 0 when empty
	AvgWin     float64 `json:"avg_win"`
	AvgLoss    float64 `json:"avg_loss"`
}

// Summarize computes the headline metrics over the given trades.
func Summarize(records []models.TradeRecord) Summary {
	var s Summary
	var wins, losses int
	var winSum, lossSum float64

	for _, r := range records {
		s.TradeCount++
		s.TotalPL += r.NetGainLoss
		if r.WinFlag {
			wins++
		}
		if r.NetGainLoss > 0 {
			winSum += r.NetGainLoss
		} else if r.NetGainLoss < 0 {
			lossSum += r.NetGainLoss
			losses++
		}
	}

	if s.TradeCount > 0 {
		s.WinRate = float64(wins) / float64(s.TradeCount)
	}
	if wins > 0 {
		s.AvgWin = winSum / float64(wins)
	}
	if losses > 0 {
		s.AvgLoss = lossSum / float64(losses)
	}
	return s
}

// HourHistogram buckets trades by hour of day. Records without a trade
// time carry no hour and are left out of the histogram; they still count
// toward the summary totals.
func HourHistogram(records []models.TradeRecord) map[int]int {
	hist := make(map[int]int)
	for _, r := range records {
		if h, ok := r.Hour(); ok {
			hist[h]++
		}
	}
	return hist
}

// EmotionCounts tallies trades per emotion tag.
func EmotionCounts(records []models.TradeRecord) map[string]int {
	counts := make(map[string]int)
	for _, r := range records {
		counts[r.Emotion]++
	}
	return counts
}

// StrategyCounts tallies trades per strategy.
func StrategyCounts(records []models.TradeRecord) map[string]int {
	counts := make(map[string]int)
	for _, r := range records {
		counts[r.Strategy]++
	}
	return counts
}

// GroupKey selects the grouping column for ProfitByGroup.
type GroupKey string

const (
	GroupByStrategy GroupKey = "strategy"
	GroupBySymbol   GroupKey = "symbol"
)

// GroupProfit is one grouped P/L bucket.
type GroupProfit struct {
	Key   string  `json:"key"`
	Total float64 `json:"total"`
}

// ProfitByGroup sums net gain/loss per strategy or per symbol, descending
// by total. The group sums partition the overall total exactly.
func ProfitByGroup(records []models.TradeRecord, key GroupKey) []GroupProfit {
	totals := make(map[string]float64)
	for _, r := range records {
		k := r.Strategy
		if key == GroupBySymbol {
			k = r.StockSymbol
		}
		totals[k] += r.NetGainLoss
	}

	groups := make([]GroupProfit, 0, len(totals))
	for k, v := range totals {
		groups = append(groups, GroupProfit{Key: k, Total: v})
	}
	sort.Slice(groups, func(i, j int) bool {
		if groups[i].Total != groups[j].Total {
			return groups[i].Total > groups[j].Total
		}
		return groups[i].Key < groups[j].Key
	})
	return groups
}

// MonthlyTotal is the P/L sum for one calendar month.
type MonthlyTotal struct {
	Month string  `json:"month"` // "2006-01"
	Total float64 `json:"total"`
}

// MonthlyRollup groups full-history trades by calendar month, ascending.
func MonthlyRollup(records []models.TradeRecord) []MonthlyTotal {
	totals := make(map[string]float64)
	for _, r := range records {
		totals[r.TradeDate.Format("2006-01")] += r.NetGainLoss
	}

	months := make([]MonthlyTotal, 0, len(totals))
	for m, v := range totals {
		months = append(months, MonthlyTotal{Month: m, Total: v})
	}
	sort.Slice(months, func(i, j int) bool { return months[i].Month < months[j].Month })
	return months
}

// WeeklyTotal is the P/L sum and mean return percentage for one ISO week.
type WeeklyTotal struct {
	Year             int     `json:"year"`
	Week             int     `json:"week"`
	Total            float64 `json:"total"`
	AvgReturnPercent float64 `json:"avg_return_percent"`
}

// WeeklyRollup groups full-history trades by ISO week, ascending.
func WeeklyRollup(records []models.TradeRecord) []WeeklyTotal {
	type bucket struct {
		total      float64
		percentSum float64
		count      int
	}
	type weekKey struct{ year, week int }

	buckets := make(map[weekKey]*bucket)
	for _, r := range records {
		y, w := r.TradeDate.ISOWeek()
		k := weekKey{y, w}
		b := buckets[k]
		if b == nil {
			b = &bucket{}
			buckets[k] = b
		}
		b.total += r.NetGainLoss
		b.percentSum += r.ReturnPercent
		b.count++
	}

	weeks := make([]WeeklyTotal, 0, len(buckets))
	for k, b := range buckets {
		weeks = append(weeks, WeeklyTotal{
			Year:             k.year,
			Week:             k.week,
			Total:            b.total,
			AvgReturnPercent: b.percentSum / float64(b.count),
		})
	}
	sort.Slice(weeks, func(i, j int) bool {
		if weeks[i].Year != weeks[j].Year {
			return weeks[i].Year < weeks[j].Year
		}
		return weeks[i].Week < weeks[j].Week
	})
	return weeks
}
