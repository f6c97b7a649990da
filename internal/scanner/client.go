package scanner

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/wolfnote/30-day-trading-tracker/internal/config"
)

// Quote is the Finnhub /quote response.
type Quote struct {
	Current       float64 `json:"c"`
	High          float64 `json:"h"`
	Low           float64 `json:"l"`
	Open          float64 `json:"o"`
	PreviousClose float64 `json:"pc"`
	Volume        float64 `json:"v"`
}

// Profile is the subset of /stock/profile2 the scanner filters on.
// MarketCap is in millions of dollars, SharesOutstanding in millions.
type Profile struct {
	MarketCap         float64 `json:"marketCapitalization"`
	SharesOutstanding float64 `json:"shareOutstanding"`
}

// StockData is one scanned symbol, flattened for filtering and display.
type StockData struct {
	Symbol        string  `json:"symbol"`
	Price         float64 `json:"price"`
	PercentChange float64 `json:"percent_change"`
	Volume        float64 `json:"volume"`
	MarketCap     float64 `json:"market_cap"`
	Float         float64 `json:"float"`
}

// Client is a rate-limited Finnhub REST client. The free tier allows 60
// requests a minute, so the limiter defaults to one request per second.
type Client struct {
	client  *resty.Client
	apiKey  string
	logger  *zap.Logger
	limiter *rate.Limiter
}

// NewClient creates a Finnhub client from the scanner configuration.
func NewClient(cfg *config.Scanner, logger *zap.Logger) *Client {
	return &Client{
		client:  resty.New().SetBaseURL(cfg.BaseURL),
		apiKey:  cfg.APIKey,
		logger:  logger.Named("scanner"),
		limiter: rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateLimitBurst),
	}
}

// doRequest executes a request under the rate limiter with retry on 429
// and server errors.
func (c *Client) doRequest(ctx context.Context, path string, req *resty.Request) (*resty.Response, error) {
	var resp *resty.Response
	var err error
	var lastErr error
	const maxRetries = 3

	for i := 0; i < maxRetries; i++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter wait failed: %w", err)
		}

		resp, err = req.Execute(http.MethodGet, path)
		if err == nil && !resp.IsError() {
			return resp, nil
		}

		lastErr = err
		if err == nil {
			lastErr = fmt.Errorf("status %s", resp.Status())
		}

		shouldRetry := false
		var retryAfter time.Duration

		if resp != nil {
			statusCode := resp.StatusCode()
			if statusCode == http.StatusTooManyRequests {
				shouldRetry = true
				if seconds, err := strconv.Atoi(resp.Header().Get("Retry-After")); err == nil {
					retryAfter = time.Duration(seconds) * time.Second
				}
			} else if statusCode >= 500 {
				shouldRetry = true
			}
		} else {
			// Network or other client-side errors
			shouldRetry = true
		}

		if !shouldRetry {
			return nil, fmt.Errorf("request failed with status %s: %s", resp.Status(), resp.String())
		}

		if retryAfter == 0 {
			// Exponential backoff: 1s, 2s, 4s
			retryAfter = time.Duration(math.Pow(2, float64(i))) * time.Second
		}

		c.logger.Warn("Request failed, retrying...",
			zap.String("path", path),
			zap.Int("attempt", i+1),
			zap.Duration("retry_after", retryAfter),
			zap.Error(err),
		)

		select {
		case <-time.After(retryAfter):
			continue
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	return nil, fmt.Errorf("request failed after %d attempts: %w", maxRetries, lastErr)
}

// FetchQuote fetches the real-time quote for a symbol.
func (c *Client) FetchQuote(ctx context.Context, symbol string) (*Quote, error) {
	req := c.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{"symbol": symbol, "token": c.apiKey}).
		SetResult(&Quote{})

	resp, err := c.doRequest(ctx, "/quote", req)
	if err != nil {
		return nil, fmt.Errorf("failed to get quote for %s: %w", symbol, err)
	}
	return resp.Result().(*Quote), nil
}

// FetchProfile fetches the company profile for a symbol.
func (c *Client) FetchProfile(ctx context.Context, symbol string) (*Profile, error) {
	req := c.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{"symbol": symbol, "token": c.apiKey}).
		SetResult(&Profile{})

	resp, err := c.doRequest(ctx, "/stock/profile2", req)
	if err != nil {
		return nil, fmt.Errorf("failed to get profile for %s: %w", symbol, err)
	}
	return resp.Result().(*Profile), nil
}

// FetchStockData combines quote and profile into one scan row.
func (c *Client) FetchStockData(ctx context.Context, symbol string) (*StockData, error) {
	quote, err := c.FetchQuote(ctx, symbol)
	if err != nil {
		return nil, err
	}
	profile, err := c.FetchProfile(ctx, symbol)
	if err != nil {
		return nil, err
	}

	var percentChange float64
	if quote.PreviousClose != 0 {
		percentChange = round2((quote.Current - quote.PreviousClose) / quote.PreviousClose * 100)
	}

	return &StockData{
		Symbol:        symbol,
		Price:         quote.Current,
		PercentChange: percentChange,
		Volume:        quote.Volume,
		MarketCap:     profile.MarketCap,
		Float:         profile.SharesOutstanding,
	}, nil
}

// Scan fetches every symbol and splits the results into all rows and the
// subset matching the criteria. A failed symbol is logged and skipped so
// one bad ticker does not abort the scan.
func (c *Client) Scan(ctx context.Context, symbols []string, criteria Criteria) (all, matched []StockData, err error) {
	for _, symbol := range symbols {
		data, err := c.FetchStockData(ctx, symbol)
		if err != nil {
			if ctx.Err() != nil {
				return all, matched, ctx.Err()
			}
			c.logger.Warn("skipping symbol", zap.String("symbol", symbol), zap.Error(err))
			continue
		}
		all = append(all, *data)
		if criteria.Matches(*data) {
			matched = append(matched, *data)
		}
	}
	return all, matched, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
