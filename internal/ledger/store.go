package ledger

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/wolfnote/30-day-trading-tracker/internal/models"
)

// ErrStore marks failures of the underlying storage. Errors from the
// driver are wrapped, surfaced verbatim to the caller, and never retried.
var ErrStore = errors.New("ledger store failure")

// Filter narrows a Query. Zero-valued fields are ignored; set fields
// compose by logical AND.
type Filter struct {
	Start        *time.Time // inclusive
	End          *time.Time // inclusive
	Strategies   []string
	PaperOnly    bool
	OndemandOnly bool
}

// Store owns the trade ledger. It is the sole writer of TradeRecords:
// insert-only with delete by id, id range, date range, or full wipe.
// Each call is individually atomic; no cross-call transaction is exposed.
type Store struct {
	db       *gorm.DB
	logger   *zap.Logger
	approved []string
}

// NewStore creates a Store on an already-open database handle.
// approvedStrategies is the configured strategy set enforced on insert.
func NewStore(db *gorm.DB, logger *zap.Logger, approvedStrategies []string) *Store {
	return &Store{
		db:       db,
		logger:   logger.Named("ledger"),
		approved: approvedStrategies,
	}
}

// Insert validates the record and persists it, returning the assigned id.
// Invariant violations surface as *models.ValidationError; the store never
// re-derives computed columns on the caller's behalf.
func (s *Store) Insert(rec *models.TradeRecord) (uint, error) {
	rec.Normalize()
	if err := rec.Validate(s.approved); err != nil {
		return 0, err
	}
	if err := s.db.Create(rec).Error; err != nil {
		return 0, fmt.Errorf("%w: insert: %v", ErrStore, err)
	}
	s.logger.Debug("trade inserted",
		zap.Uint("id", rec.ID),
		zap.String("symbol", rec.StockSymbol),
		zap.Float64("net", rec.NetGainLoss),
	)
	return rec.ID, nil
}

// Delete removes a single trade. Deleting a non-existent id is a no-op.
func (s *Store) Delete(id uint) error {
	if err := s.db.Delete(&models.TradeRecord{}, id).Error; err != nil {
		return fmt.Errorf("%w: delete id %d: %v", ErrStore, id, err)
	}
	return nil
}

// DeleteRange removes all trades with ids in [startID, endID].
func (s *Store) DeleteRange(startID, endID uint) error {
	err := s.db.Where("id BETWEEN ? AND ?", startID, endID).
		Delete(&models.TradeRecord{}).Error
	if err != nil {
		return fmt.Errorf("%w: delete ids %d..%d: %v", ErrStore, startID, endID, err)
	}
	return nil
}

// DeleteByDateRange removes all trades with trade_date in [start, end],
// both bounds inclusive. Records outside the window are untouched.
func (s *Store) DeleteByDateRange(start, end time.Time) error {
	err := s.db.Where("trade_date >= ? AND trade_date <= ?", start, end).
		Delete(&models.TradeRecord{}).Error
	if err != nil {
		return fmt.Errorf("%w: delete date range: %v", ErrStore, err)
	}
	return nil
}

// DeleteAll wipes the ledger.
func (s *Store) DeleteAll() error {
	if err := s.db.Where("1 = 1").Delete(&models.TradeRecord{}).Error; err != nil {
		return fmt.Errorf("%w: delete all: %v", ErrStore, err)
	}
	return nil
}

// Query returns trades matching the filter, ordered by trade date then
// trade time. An empty result is a valid outcome, not an error.
func (s *Store) Query(f Filter) ([]models.TradeRecord, error) {
	q := s.db.Model(&models.TradeRecord{})
	if f.Start != nil {
		q = q.Where("trade_date >= ?", *f.Start)
	}
	if f.End != nil {
		q = q.Where("trade_date <= ?", *f.End)
	}
	if len(f.Strategies) > 0 {
		q = q.Where("strategy IN ?", f.Strategies)
	}
	if f.PaperOnly {
		q = q.Where("paper_trade = ?", true)
	}
	if f.OndemandOnly {
		q = q.Where("ondemand_trade = ?", true)
	}

	var records []models.TradeRecord
	if err := q.Order("trade_date, trade_time").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("%w: query: %v", ErrStore, err)
	}
	return records, nil
}
