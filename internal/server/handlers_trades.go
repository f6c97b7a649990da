package server

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/wolfnote/30-day-trading-tracker/internal/importer"
	"github.com/wolfnote/30-day-trading-tracker/internal/ledger"
	"github.com/wolfnote/30-day-trading-tracker/internal/models"
	"github.com/wolfnote/30-day-trading-tracker/internal/risk"
)

const dayLayout = "2006-01-02"

func parseDay(s string) (time.Time, error) {
	t, err := time.Parse(dayLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, want YYYY-MM-DD", s)
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
}

// queryFilter builds a ledger filter from the shared query parameters:
// start, end, strategies (comma-separated), paper, ondemand.
func queryFilter(c *gin.Context) (ledger.Filter, error) {
	var f ledger.Filter
	if v := c.Query("start"); v != "" {
		t, err := parseDay(v)
		if err != nil {
			return f, err
		}
		f.Start = &t
	}
	if v := c.Query("end"); v != "" {
		t, err := parseDay(v)
		if err != nil {
			return f, err
		}
		f.End = &t
	}
	if v := strings.TrimSpace(c.Query("strategies")); v != "" {
		for _, s := range strings.Split(v, ",") {
			if s = strings.TrimSpace(s); s != "" {
				f.Strategies = append(f.Strategies, s)
			}
		}
	}
	f.PaperOnly = c.Query("paper") == "true"
	f.OndemandOnly = c.Query("ondemand") == "true"
	return f, nil
}

func (s *Server) listTrades(c *gin.Context) {
	filter, err := queryFilter(c)
	if err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}
	records, err := s.store.Query(filter)
	if err != nil {
		s.logger.Error("query failed", zap.Error(err))
		fail(c, http.StatusInternalServerError, err.Error())
		return
	}
	ok(c, records)
}

type createTradeRequest struct {
	TradeDate     string  `json:"trade_date" binding:"required"`
	TradeTime     string  `json:"trade_time"`
	Strategy      string  `json:"strategy" binding:"required"`
	StockSymbol   string  `json:"stock_symbol" binding:"required"`
	PositionType  string  `json:"position_type" binding:"required"`
	Shares        int     `json:"shares" binding:"required"`
	BuyPrice      float64 `json:"buy_price"`
	SellPrice     float64 `json:"sell_price"`
	StopLossPrice float64 `json:"stop_loss_price"`
	PremarketNews string  `json:"premarket_news"`
	Emotion       string  `json:"emotion"`
	IraTrade      bool    `json:"ira_trade"`
	PaperTrade    bool    `json:"paper_trade"`
	OndemandTrade bool    `json:"ondemand_trade"`
}

func (s *Server) createTrade(c *gin.Context) {
	var req createTradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}
	tradeDate, err := parseDay(req.TradeDate)
	if err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}

	guards := risk.EntryGuards{
		MaxShares:       s.cfg.Trading.MaxShares,
		MaxInvestment:   s.cfg.Trading.MaxInvestment,
		MinStopDistance: s.cfg.Trading.MinStopDistance,
	}
	if violations := risk.CheckEntry(req.Shares, req.BuyPrice, req.StopLossPrice, guards); len(violations) > 0 {
		c.JSON(http.StatusUnprocessableEntity, apiResponse{
			Code:    http.StatusUnprocessableEntity,
			Message: "entry guards violated",
			Data:    violations,
		})
		return
	}

	rec := models.NewManualTrade(models.ManualEntry{
		TradeDate:     tradeDate,
		TradeTime:     req.TradeTime,
		Strategy:      req.Strategy,
		StockSymbol:   req.StockSymbol,
		PositionType:  req.PositionType,
		Shares:        req.Shares,
		BuyPrice:      req.BuyPrice,
		SellPrice:     req.SellPrice,
		StopLossPrice: req.StopLossPrice,
		PremarketNews: req.PremarketNews,
		Emotion:       req.Emotion,
		IraTrade:      req.IraTrade,
		PaperTrade:    req.PaperTrade,
		OndemandTrade: req.OndemandTrade,
	})

	if _, err := s.store.Insert(rec); err != nil {
		var verr *models.ValidationError
		if errors.As(err, &verr) {
			fail(c, http.StatusUnprocessableEntity, verr.Error())
			return
		}
		s.logger.Error("insert failed", zap.Error(err))
		fail(c, http.StatusInternalServerError, err.Error())
		return
	}
	ok(c, rec)
}

func (s *Server) deleteTrade(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		fail(c, http.StatusBadRequest, "invalid trade id")
		return
	}
	if err := s.store.Delete(uint(id)); err != nil {
		fail(c, http.StatusInternalServerError, err.Error())
		return
	}
	ok(c, gin.H{"deleted": id})
}

// deleteTrades handles bulk deletion: by id range (start_id, end_id), by
// date range (start, end), or everything (all=true plus confirm=true).
func (s *Server) deleteTrades(c *gin.Context) {
	switch {
	case c.Query("all") == "true":
		if c.Query("confirm") != "true" {
			fail(c, http.StatusBadRequest, "deleting all trades requires confirm=true")
			return
		}
		if err := s.store.DeleteAll(); err != nil {
			fail(c, http.StatusInternalServerError, err.Error())
			return
		}
		ok(c, gin.H{"deleted": "all"})

	case c.Query("start_id") != "":
		startID, err1 := strconv.ParseUint(c.Query("start_id"), 10, 64)
		endID, err2 := strconv.ParseUint(c.Query("end_id"), 10, 64)
		if err1 != nil || err2 != nil || endID < startID {
			fail(c, http.StatusBadRequest, "invalid id range")
			return
		}
		if err := s.store.DeleteRange(uint(startID), uint(endID)); err != nil {
			fail(c, http.StatusInternalServerError, err.Error())
			return
		}
		ok(c, gin.H{"deleted_ids": []uint64{startID, endID}})

	case c.Query("start") != "":
		start, err := parseDay(c.Query("start"))
		if err != nil {
			fail(c, http.StatusBadRequest, err.Error())
			return
		}
		end, err := parseDay(c.Query("end"))
		if err != nil {
			fail(c, http.StatusBadRequest, err.Error())
			return
		}
		if err := s.store.DeleteByDateRange(start, end); err != nil {
			fail(c, http.StatusInternalServerError, err.Error())
			return
		}
		ok(c, gin.H{"deleted_dates": []string{start.Format(dayLayout), end.Format(dayLayout)}})

	default:
		fail(c, http.StatusBadRequest, "specify all=true, an id range, or a date range")
	}
}

func (s *Server) importTrades(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		fail(c, http.StatusBadRequest, "missing csv file upload")
		return
	}
	f, err := file.Open()
	if err != nil {
		fail(c, http.StatusBadRequest, "unreadable upload")
		return
	}
	defer f.Close()

	// A typed-nil session would slip past the importer's interface nil
	// check and panic inside the guard.
	sess := currentSession(c)
	if sess == nil {
		fail(c, http.StatusUnauthorized, "no session")
		return
	}

	report, err := s.importer.Import(f, sess)
	switch {
	case errors.Is(err, importer.ErrAlreadyImported):
		fail(c, http.StatusConflict, err.Error())
	case errors.Is(err, importer.ErrSchemaMismatch):
		fail(c, http.StatusBadRequest, err.Error())
	case err != nil:
		s.logger.Error("import failed", zap.Error(err))
		fail(c, http.StatusInternalServerError, err.Error())
	default:
		ok(c, report)
	}
}

func (s *Server) exportTrades(c *gin.Context) {
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

	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", `attachment; filename="trades_export.csv"`)
	if err := importer.Export(c.Writer, records); err != nil {
		s.logger.Error("export failed", zap.Error(err))
	}
}
