package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/wolfnote/30-day-trading-tracker/internal/analytics"
	"github.com/wolfnote/30-day-trading-tracker/internal/ledger"
)

type summaryResponse struct {
	Summary         analytics.Summary       `json:"summary"`
	HourHistogram   map[int]int             `json:"hour_histogram"`
	EmotionCounts   map[string]int          `json:"emotion_counts"`
	StrategyCounts  map[string]int          `json:"strategy_counts"`
	ProfitByGroup   []analytics.GroupProfit `json:"profit_by_group"`
	ProfitGroupedBy analytics.GroupKey      `json:"profit_grouped_by"`
}

func (s *Server) summary(c *gin.Context) {
	filter, err := queryFilter(c)
	if err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}
	records, err := s.store.Query(filter)
	if err != nil {
		fail(c, http.StatusInternalServerError, err.Error())
		return
	}

	groupKey := analytics.GroupByStrategy
	if c.Query("group") == string(analytics.GroupBySymbol) {
		groupKey = analytics.GroupBySymbol
	}

	ok(c, summaryResponse{
		Summary:         analytics.Summarize(records),
		HourHistogram:   analytics.HourHistogram(records),
		EmotionCounts:   analytics.EmotionCounts(records),
		StrategyCounts:  analytics.StrategyCounts(records),
		ProfitByGroup:   analytics.ProfitByGroup(records, groupKey),
		ProfitGroupedBy: groupKey,
	})
}

// checklist evaluates the daily discipline rules for one calendar day,
// today by default.
func (s *Server) checklist(c *gin.Context) {
	day := time.Now().UTC().Truncate(24 * time.Hour)
	if v := c.Query("day"); v != "" {
		parsed, err := parseDay(v)
		if err != nil {
			fail(c, http.StatusBadRequest, err.Error())
			return
		}
		day = parsed
	}

	records, err := s.store.Query(ledger.Filter{Start: &day, End: &day})
	if err != nil {
		fail(c, http.StatusInternalServerError, err.Error())
		return
	}

	limits := analytics.Limits{
		MaxDailyTrades:    s.cfg.Trading.MaxDailyTrades,
		MaxDailyLoss:      s.cfg.Trading.MaxDailyLoss,
		DailyProfitTarget: s.cfg.Trading.DailyProfitTarget,
		HourWindowStart:   s.cfg.Trading.HourWindowStart,
		HourWindowEnd:     s.cfg.Trading.HourWindowEnd,
	}
	ok(c, gin.H{
		"day":   day.Format(dayLayout),
		"rules": analytics.Checklist(records, limits),
	})
}

// rollups aggregates the unfiltered full history by calendar month and
// ISO week.
func (s *Server) rollups(c *gin.Context) {
	records, err := s.store.Query(ledger.Filter{})
	if err != nil {
		fail(c, http.StatusInternalServerError, err.Error())
		return
	}
	ok(c, gin.H{
		"monthly": analytics.MonthlyRollup(records),
		"weekly":  analytics.WeeklyRollup(records),
	})
}
