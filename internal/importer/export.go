package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/wolfnote/30-day-trading-tracker/internal/models"
)

// exportDateLayout is MM-DD-YYYY, the dashboard's historical export format.
const exportDateLayout = "01-02-2006"

// Export writes records as CSV with the import column set: dates as
// MM-DD-YYYY, times as HH:MM, dollar amounts rounded to two decimals.
// Exported files re-import losslessly up to that formatting.
func Export(w io.Writer, records []models.TradeRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for _, r := range records {
		row := []string{
			r.TradeDate.Format(exportDateLayout),
			r.TradeTime,
			r.Strategy,
			r.StockSymbol,
			r.PositionType,
			strconv.Itoa(r.Shares),
			money(r.BuyPrice),
			money(r.SellPrice),
			money(r.StopLossPrice),
			r.PremarketNews,
			r.Emotion,
			money(r.NetGainLoss),
			money(r.ReturnWin),
			money(r.ReturnLoss),
			money(r.ReturnPercent),
			money(r.ReturnPercentLoss),
			money(r.TotalInvestment),
			money(r.Fees),
			money(r.GrossReturn),
			strconv.FormatBool(r.WinFlag),
			strconv.FormatBool(r.IraTrade),
			strconv.FormatBool(r.PaperTrade),
			strconv.FormatBool(r.OndemandTrade),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

func money(v float64) string {
	return strconv.FormatFloat(models.Round2(v), 'f', 2, 64)
}
