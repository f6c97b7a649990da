package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/wolfnote/30-day-trading-tracker/internal/risk"
)

type positionSizeRequest struct {
	AccountBalance float64 `json:"account_balance" binding:"required"`
	RiskPercent    float64 `json:"risk_percent" binding:"required"`
	EntryPrice     float64 `json:"entry_price" binding:"required"`
	StopLossPrice  float64 `json:"stop_loss_price"`
	TargetPrice    float64 `json:"target_price"`
}

// positionSize runs the pre-trade calculator. The API narrows the risk
// percentage to the UI's 0.5-5.0 band; the calculator itself accepts the
// full (0, 100] range.
func (s *Server) positionSize(c *gin.Context) {
	var req positionSizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}
	if req.RiskPercent < 0.5 || req.RiskPercent > 5.0 {
		fail(c, http.StatusBadRequest, "risk_percent must be between 0.5 and 5.0")
		return
	}

	result, err := risk.Calculate(risk.Inputs{
		AccountBalance: decimal.NewFromFloat(req.AccountBalance),
		RiskPercent:    decimal.NewFromFloat(req.RiskPercent),
		EntryPrice:     decimal.NewFromFloat(req.EntryPrice),
		StopLossPrice:  decimal.NewFromFloat(req.StopLossPrice),
		TargetPrice:    decimal.NewFromFloat(req.TargetPrice),
	})
	if err != nil {
		fail(c, http.StatusUnprocessableEntity, err.Error())
		return
	}
	ok(c, result)
}
