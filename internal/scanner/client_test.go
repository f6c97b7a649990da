package scanner

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// setupTestServer creates a test server and a Client configured to use it.
func setupTestServer(handler http.Handler) (*Client, *httptest.Server) {
	server := httptest.NewServer(handler)

	c := &Client{
		client:  resty.New().SetBaseURL(server.URL),
		apiKey:  "test_api_key",
		logger:  zap.NewNop(),
		limiter: rate.NewLimiter(rate.Inf, 1), // Allow all requests in tests
	}
	return c, server
}

func quoteHandler(quotes map[string]string, profiles map[string]string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		symbol := r.URL.Query().Get("symbol")
		w.Header().Set("Content-Type", "application/json")

		switch r.URL.Path {
		case "/quote":
			if body, ok := quotes[symbol]; ok {
				fmt.Fprint(w, body)
				return
			}
		case "/stock/profile2":
			if body, ok := profiles[symbol]; ok {
				fmt.Fprint(w, body)
				return
			}
		}
		// Not retryable, so tests fail fast on unknown symbols.
		w.WriteHeader(http.StatusNotFound)
	})
}

func TestFetchStockData(t *testing.T) {
	quotes := map[string]string{
		"BAOS": `{"c": 4.40, "pc": 4.00, "v": 2000000, "h": 4.6, "l": 3.9, "o": 4.0}`,
	}
	profiles := map[string]string{
		"BAOS": `{"marketCapitalization": 42.5, "shareOutstanding": 9.8}`,
	}

	c, server := setupTestServer(quoteHandler(quotes, profiles))
	defer server.Close()

	data, err := c.FetchStockData(context.Background(), "BAOS")
	require.NoError(t, err)

	assert.Equal(t, "BAOS", data.Symbol)
	assert.InDelta(t, 4.40, data.Price, 1e-9)
	assert.InDelta(t, 10.0, data.PercentChange, 1e-9)
	assert.InDelta(t, 2_000_000, data.Volume, 1e-9)
	assert.InDelta(t, 42.5, data.MarketCap, 1e-9)
	assert.InDelta(t, 9.8, data.Float, 1e-9)
}

func TestFetchQuoteSendsAPIKey(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/quote", r.URL.Path)
		assert.Equal(t, "test_api_key", r.URL.Query().Get("token"))
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"c": 1}`)
	})

	c, server := setupTestServer(handler)
	defer server.Close()

	_, err := c.FetchQuote(context.Background(), "TSLA")
	assert.NoError(t, err)
}

func TestScanSkipsFailingSymbols(t *testing.T) {
	quotes := map[string]string{
		"GOOD": `{"c": 5.50, "pc": 4.80, "v": 3000000}`,
	}
	profiles := map[string]string{
		"GOOD": `{"marketCapitalization": 120, "shareOutstanding": 15}`,
	}

	c, server := setupTestServer(quoteHandler(quotes, profiles))
	defer server.Close()

	all, matched, err := c.Scan(context.Background(), []string{"GOOD", "BAD"}, DefaultCriteria())
	require.NoError(t, err)
	require.Len(t, all, 1)
	require.Len(t, matched, 1)
	assert.Equal(t, "GOOD", matched[0].Symbol)
}

func TestRetriesExhaustedReportsLastStatus(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "1")
		w.WriteHeader(http.StatusTooManyRequests)
	})

	c, server := setupTestServer(handler)
	defer server.Close()

	_, err := c.FetchQuote(context.Background(), "TSLA")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "after 3 attempts")
	assert.Contains(t, err.Error(), "429")
	assert.NotContains(t, err.Error(), "%!w(<nil>)")
}

func TestCriteriaMatches(t *testing.T) {
	criteria := DefaultCriteria()

	base := StockData{
		Price:         5,
		PercentChange: 15,
		Volume:        2_000_000,
		MarketCap:     100,
		Float:         10,
	}

	testCases := []struct {
		name   string
		mutate func(s *StockData)
		want   bool
	}{
		{"momentum small cap", func(s *StockData) {}, true},
		{"too expensive", func(s *StockData) { s.Price = 25 }, false},
		{"too cheap", func(s *StockData) { s.Price = 0.5 }, false},
		{"not moving", func(s *StockData) { s.PercentChange = 4 }, false},
		{"thin volume", func(s *StockData) { s.Volume = 500_000 }, false},
		{"heavy float", func(s *StockData) { s.Float = 80 }, false},
		{"large cap", func(s *StockData) { s.MarketCap = 5_000 }, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s := base
			tc.mutate(&s)
			assert.Equal(t, tc.want, criteria.Matches(s))
		})
	}
}
