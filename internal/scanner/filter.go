package scanner

// Criteria is the momentum screen: cheap, fast-moving, high-volume,
// low-float small caps.
type Criteria struct {
	MinPrice         float64 `json:"min_price"`
	MaxPrice         float64 `json:"max_price"`
	MinPercentChange float64 `json:"min_percent_change"`
	MinVolume        float64 `json:"min_volume"`
	MaxFloat         float64 `json:"max_float"`      // millions of shares
	MaxMarketCap     float64 `json:"max_market_cap"` // millions of dollars
}

// DefaultCriteria returns the stock screen the dashboard ships with.
func DefaultCriteria() Criteria {
	return Criteria{
		MinPrice:         1,
		MaxPrice:         20,
		MinPercentChange: 10,
		MinVolume:        1_000_000,
		MaxFloat:         20,
		MaxMarketCap:     500,
	}
}

// Matches reports whether a scan row passes every criterion.
func (c Criteria) Matches(s StockData) bool {
	return s.Price >= c.MinPrice && s.Price <= c.MaxPrice &&
		s.PercentChange > c.MinPercentChange &&
		s.Volume >= c.MinVolume &&
		s.Float <= c.MaxFloat &&
		s.MarketCap <= c.MaxMarketCap
}
