package models

import (
	"fmt"
	"math"
	"strings"
	"time"
)

const (
	PositionLong  = "Long"
	PositionShort = "Short"

	PremarketYes = "yes"
	PremarketNo  = "no"

	DefaultEmotion = "Calm"
)

// TradeRecord represents one completed or planned trade in the ledger.
// Records are insert-only: there is no update path, only delete and
// re-insert. The store assigns the ID.
type TradeRecord struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	TradeDate         time.Time `gorm:"index;not null" json:"trade_date"`
	TradeTime         string    `json:"trade_time"` // "HH:MM" 24h, empty when unknown
	Strategy          string    `gorm:"index" json:"strategy"`
	StockSymbol       string    `gorm:"index" json:"stock_symbol"`
	PositionType      string    `json:"position_type"` // "Long" or "Short"
	Shares            int       `json:"shares"`
	BuyPrice          float64   `json:"buy_price"`
	SellPrice         float64   `json:"sell_price"`
	StopLossPrice     float64   `json:"stop_loss_price"`
	PremarketNews     string    `json:"premarket_news"` // "yes" or "no"
	Emotion           string    `json:"emotion"`
	NetGainLoss       float64   `json:"net_gain_loss"`
	ReturnWin         float64   `json:"return_win"`
	ReturnLoss        float64   `json:"return_loss"`
	ReturnPercent     float64   `json:"return_percent"`
	ReturnPercentLoss float64   `json:"return_percent_loss"`
	TotalInvestment   float64   `json:"total_investment"`
	Fees              float64   `json:"fees"`
	GrossReturn       float64   `json:"gross_return"`
	WinFlag           bool      `json:"win_flag"`
	IraTrade          bool      `json:"ira_trade"`
	PaperTrade        bool      `json:"paper_trade"`
	OndemandTrade     bool      `json:"ondemand_trade"`
}

// ValidationError reports a TradeRecord field that breaks an invariant.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid trade record: %s %s", e.Field, e.Reason)
}

// Normalize canonicalizes free-form fields before validation: symbols are
// uppercased, surrounding whitespace is dropped, and the emotion and
// premarket-news fields fall back to their defaults, matching the manual
// entry flow.
func (r *TradeRecord) Normalize() {
	r.StockSymbol = strings.ToUpper(strings.TrimSpace(r.StockSymbol))
	r.Strategy = strings.TrimSpace(r.Strategy)
	r.PositionType = strings.TrimSpace(r.PositionType)
	r.TradeTime = strings.TrimSpace(r.TradeTime)
	r.Emotion = strings.TrimSpace(r.Emotion)
	if r.Emotion == "" {
		r.Emotion = DefaultEmotion
	}
	news := strings.ToLower(strings.TrimSpace(r.PremarketNews))
	if news != PremarketYes {
		news = PremarketNo
	}
	r.PremarketNews = news
}

// Validate checks the record invariants. approvedStrategies is the
// configured strategy set; an empty set disables the strategy check.
// Callers are expected to Normalize first.
func (r *TradeRecord) Validate(approvedStrategies []string) error {
	if r.TradeDate.IsZero() {
		return &ValidationError{Field: "trade_date", Reason: "is required"}
	}
	if r.TradeTime != "" {
		if _, err := time.Parse("15:04", r.TradeTime); err != nil {
			return &ValidationError{Field: "trade_time", Reason: "must be HH:MM 24-hour"}
		}
	}
	if r.StockSymbol == "" {
		return &ValidationError{Field: "stock_symbol", Reason: "is required"}
	}
	if r.PositionType != PositionLong && r.PositionType != PositionShort {
		return &ValidationError{Field: "position_type", Reason: "must be Long or Short"}
	}
	if r.Shares <= 0 {
		return &ValidationError{Field: "shares", Reason: "must be positive"}
	}
	if r.BuyPrice < 0 || r.SellPrice < 0 || r.StopLossPrice < 0 {
		return &ValidationError{Field: "price", Reason: "must be non-negative"}
	}
	if r.TotalInvestment < 0 {
		return &ValidationError{Field: "total_investment", Reason: "must be non-negative"}
	}
	if len(approvedStrategies) > 0 && !contains(approvedStrategies, r.Strategy) {
		return &ValidationError{Field: "strategy", Reason: fmt.Sprintf("%q is not in the approved set", r.Strategy)}
	}
	if r.WinFlag != (r.NetGainLoss > 0) {
		return &ValidationError{Field: "win_flag", Reason: "inconsistent with net_gain_loss sign"}
	}
	if r.ReturnWin != 0 && r.NetGainLoss <= 0 {
		return &ValidationError{Field: "return_win", Reason: "set on a non-winning trade"}
	}
	if r.ReturnLoss != 0 && r.NetGainLoss >= 0 {
		return &ValidationError{Field: "return_loss", Reason: "set on a non-losing trade"}
	}
	return nil
}

// Hour returns the hour-of-day component of the trade time. The second
// return value is false when the trade time is absent or unparseable; such
// records are excluded from hour-based aggregation.
func (r *TradeRecord) Hour() (int, bool) {
	if r.TradeTime == "" {
		return 0, false
	}
	t, err := time.Parse("15:04", r.TradeTime)
	if err != nil {
		return 0, false
	}
	return t.Hour(), true
}

// Day returns the calendar-day key used for daily grouping.
func (r *TradeRecord) Day() string {
	return r.TradeDate.Format("2006-01-02")
}

// ManualEntry is the raw form input for a manually recorded trade.
// Derived columns are computed by NewManualTrade.
type ManualEntry struct {
	TradeDate     time.Time
	TradeTime     string
	Strategy      string
	StockSymbol   string
	PositionType  string
	Shares        int
	BuyPrice      float64
	SellPrice     float64
	StopLossPrice float64
	PremarketNews string
	Emotion       string
	IraTrade      bool
	PaperTrade    bool
	OndemandTrade bool
}

// NewManualTrade derives the computed columns from a manual entry:
// investment is buy price times shares, the net gain splits into the
// mutually exclusive win/loss returns, and percentages are taken against
// the investment. Amounts are rounded to cents.
func NewManualTrade(e ManualEntry) *TradeRecord {
	investment := Round2(e.BuyPrice * float64(e.Shares))
	net := Round2((e.SellPrice - e.BuyPrice) * float64(e.Shares))

	var returnWin, returnLoss float64
	if net > 0 {
		returnWin = net
	} else if net < 0 {
		returnLoss = net
	}

	var returnPercent, returnPercentLoss float64
	if investment > 0 {
		if returnWin != 0 {
			returnPercent = Round2(returnWin / investment * 100)
		}
		if returnLoss != 0 {
			returnPercentLoss = Round2(returnLoss / investment * 100)
		}
	}

	rec := &TradeRecord{
		TradeDate:         e.TradeDate,
		TradeTime:         e.TradeTime,
		Strategy:          e.Strategy,
		StockSymbol:       e.StockSymbol,
		PositionType:      e.PositionType,
		Shares:            e.Shares,
		BuyPrice:          e.BuyPrice,
		SellPrice:         e.SellPrice,
		StopLossPrice:     e.StopLossPrice,
		PremarketNews:     e.PremarketNews,
		Emotion:           e.Emotion,
		NetGainLoss:       net,
		ReturnWin:         returnWin,
		ReturnLoss:        returnLoss,
		ReturnPercent:     returnPercent,
		ReturnPercentLoss: returnPercentLoss,
		TotalInvestment:   investment,
		Fees:              0,
		GrossReturn:       investment + net,
		WinFlag:           net > 0,
		IraTrade:          e.IraTrade,
		PaperTrade:        e.PaperTrade,
		OndemandTrade:     e.OndemandTrade,
	}
	rec.Normalize()
	return rec
}

// Round2 rounds a dollar amount to cents.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func contains(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}
