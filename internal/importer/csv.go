package importer

import (
	"bytes"
	"crypto/sha256"
	"encoding/csv"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/wolfnote/30-day-trading-tracker/internal/ledger"
	"github.com/wolfnote/30-day-trading-tracker/internal/models"
)

// Columns is the required CSV column set, in the ledger's persisted order
// minus the store-assigned id. The upload header must be a superset;
// extra columns are ignored.
var Columns = []string{
	"trade_date", "trade_time", "strategy", "stock_symbol", "position_type",
	"shares", "buy_price", "sell_price", "stop_loss_price", "premarket_news",
	"emotion", "net_gain_loss", "return_win", "return_loss", "return_percent",
	"return_percent_loss", "total_investment", "fees", "gross_return",
	"win_flag", "ira_trade", "paper_trade", "ondemand_trade",
}

var (
	// ErrSchemaMismatch aborts the whole import with zero rows inserted.
	ErrSchemaMismatch = errors.New("csv header missing required columns")
	// ErrAlreadyImported rejects re-submission of the same upload within
	// one session.
	ErrAlreadyImported = errors.New("file already imported in this session")
)

// RowFailure records one unparsable or invalid row by its 1-based
// position. Row failures never abort the remaining rows.
type RowFailure struct {
	Row int    `json:"row"`
	Err string `json:"error"`
}

// Report is the outcome of a partial-success import.
type Report struct {
	Inserted int          `json:"inserted"`
	Failures []RowFailure `json:"failures,omitempty"`
}

// SessionGuard tracks uploads already imported within a session.
// AlreadyImported reports whether the fingerprint was seen before;
// MarkImported records it. The importer marks only once an upload has
// been processed to completion, so a rejected or aborted file stays
// free to retry.
type SessionGuard interface {
	AlreadyImported(fingerprint string) bool
	MarkImported(fingerprint string)
}

// Importer converts CSV uploads into ledger inserts.
type Importer struct {
	store  *ledger.Store
	logger *zap.Logger
}

func New(store *ledger.Store, logger *zap.Logger) *Importer {
	return &Importer{store: store, logger: logger.Named("importer")}
}

// Import reads a CSV upload and inserts its rows. The header is checked
// first: a missing required column fails the entire import with
// ErrSchemaMismatch and no side effects. Rows are then processed
// independently; a failed row is reported against its 1-based index and
// the rest continue. The guard, when non-nil, rejects a byte-identical
// re-submission of a completed upload within the same session; a
// rejected or aborted import is never recorded, and duplicate rows
// across distinct uploads are deliberately not deduplicated.
func (im *Importer) Import(r io.Reader, guard SessionGuard) (*Report, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}

	var fingerprint string
	if guard != nil {
		sum := sha256.Sum256(data)
		fingerprint = hex.EncodeToString(sum[:])
		if guard.AlreadyImported(fingerprint) {
			return nil, ErrAlreadyImported
		}
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}

	colIndex := make(map[string]int, len(header))
	for i, name := range header {
		colIndex[strings.TrimSpace(strings.ToLower(name))] = i
	}
	var missing []string
	for _, col := range Columns {
		if _, ok := colIndex[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrSchemaMismatch, strings.Join(missing, ", "))
	}

	report := &Report{}
	for rowNum := 1; ; rowNum++ {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			report.Failures = append(report.Failures, RowFailure{Row: rowNum, Err: err.Error()})
			continue
		}

		rec, err := parseRow(row, colIndex)
		if err == nil {
			_, err = im.store.Insert(rec)
		}
		if err != nil {
			// Store failures abort the import; conversion and validation
			// failures stay row-local.
			if errors.Is(err, ledger.ErrStore) {
				return report, err
			}
			report.Failures = append(report.Failures, RowFailure{Row: rowNum, Err: err.Error()})
			continue
		}
		report.Inserted++
	}

	if guard != nil {
		guard.MarkImported(fingerprint)
	}
	im.logger.Info("csv import finished",
		zap.Int("inserted", report.Inserted),
		zap.Int("failed", len(report.Failures)),
	)
	return report, nil
}

func parseRow(row []string, colIndex map[string]int) (*models.TradeRecord, error) {
	field := func(name string) string {
		i := colIndex[name]
		if i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	tradeDate, err := parseDate(field("trade_date"))
	if err != nil {
		return nil, err
	}
	tradeTime, err := parseTime(field("trade_time"))
	if err != nil {
		return nil, err
	}
	shares, err := parseInt("shares", field("shares"))
	if err != nil {
		return nil, err
	}

	rec := &models.TradeRecord{
		TradeDate:     tradeDate,
		TradeTime:     tradeTime,
		Strategy:      field("strategy"),
		StockSymbol:   field("stock_symbol"),
		PositionType:  field("position_type"),
		Shares:        shares,
		PremarketNews: field("premarket_news"),
		Emotion:       field("emotion"),
	}

	for name, dst := range map[string]*float64{
		"buy_price":           &rec.BuyPrice,
		"sell_price":          &rec.SellPrice,
		"stop_loss_price":     &rec.StopLossPrice,
		"net_gain_loss":       &rec.NetGainLoss,
		"return_win":          &rec.ReturnWin,
		"return_loss":         &rec.ReturnLoss,
		"return_percent":      &rec.ReturnPercent,
		"return_percent_loss": &rec.ReturnPercentLoss,
		"total_investment":    &rec.TotalInvestment,
		"fees":                &rec.Fees,
		"gross_return":        &rec.GrossReturn,
	} {
		v, err := parseFloat(name, field(name))
		if err != nil {
			return nil, err
		}
		*dst = v
	}

	for name, dst := range map[string]*bool{
		"win_flag":       &rec.WinFlag,
		"ira_trade":      &rec.IraTrade,
		"paper_trade":    &rec.PaperTrade,
		"ondemand_trade": &rec.OndemandTrade,
	} {
		v, err := parseBool(name, field(name))
		if err != nil {
			return nil, err
		}
		*dst = v
	}

	return rec, nil
}

// dateLayouts covers ISO and the locale formats the dashboard has
// historically accepted; exportDateLayout keeps the round trip closed.
var dateLayouts = []string{"2006-01-02", exportDateLayout, "01/02/2006"}

func parseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, fmt.Errorf("unparsable trade_date %q", s)
}

// parseTime coerces a time-of-day to HH:MM, stripping seconds. An empty
// value is valid: the record simply carries no trade time.
func parseTime(s string) (string, error) {
	if s == "" {
		return "", nil
	}
	for _, layout := range []string{"15:04", "15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("15:04"), nil
		}
	}
	return "", fmt.Errorf("unparsable trade_time %q", s)
}

func parseInt(name, s string) (int, error) {
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("non-numeric %s %q", name, s)
	}
	return v, nil
}

func parseFloat(name, s string) (float64, error) {
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("non-numeric %s %q", name, s)
	}
	return v, nil
}

func parseBool(name, s string) (bool, error) {
	switch strings.ToLower(s) {
	case "1", "true", "t", "yes", "y":
		return true, nil
	case "", "0", "false", "f", "no", "n":
		return false, nil
	}
	return false, fmt.Errorf("non-boolean %s %q", name, s)
}
