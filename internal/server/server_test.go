package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/wolfnote/30-day-trading-tracker/internal/auth"
	"github.com/wolfnote/30-day-trading-tracker/internal/config"
	"github.com/wolfnote/30-day-trading-tracker/internal/importer"
	"github.com/wolfnote/30-day-trading-tracker/internal/ledger"
	"github.com/wolfnote/30-day-trading-tracker/internal/models"
	"github.com/wolfnote/30-day-trading-tracker/internal/session"
)

var testDBCounter atomic.Int64

func testConfig() *config.Config {
	return &config.Config{
		Server: config.Server{Port: 0},
		Auth: config.Auth{
			Username:        "wolfnote",
			Password:        "s3cret",
			JWTSecret:       "test-secret",
			TokenTTLMinutes: 60,
		},
		Trading: config.Trading{
			ApprovedStrategies: []string{"Gap & Go", "Momentum", "Reversals"},
			MaxDailyTrades:     4,
			MaxDailyLoss:       100,
			DailyProfitTarget:  200,
			MaxShares:          500,
			MaxInvestment:      500,
			MinStopDistance:    0.10,
			HourWindowStart:    9,
			HourWindowEnd:      12,
		},
	}
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := testConfig()
	log := zap.NewNop()

	dsn := fmt.Sprintf("file:server_%s_%d?mode=memory&cache=shared", t.Name(), testDBCounter.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.TradeRecord{}))

	store := ledger.NewStore(db, log, cfg.Trading.ApprovedStrategies)
	imp := importer.New(store, log)
	verifier := auth.NewStaticVerifier(cfg.Auth.Username, cfg.Auth.Password)
	tokens := auth.JWT{Secret: []byte(cfg.Auth.JWTSecret), TokenTTL: time.Hour}

	return New(cfg, log, store, imp, nil, verifier, tokens, session.NewManager())
}

func doJSON(s *Server, method, path, token string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.http.Handler.ServeHTTP(w, req)
	return w
}

func loginToken(t *testing.T, s *Server) string {
	t.Helper()
	w := doJSON(s, http.MethodPost, "/api/login", "", gin.H{
		"username": "wolfnote",
		"password": "s3cret",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Data.Token)
	return resp.Data.Token
}

func TestLogin(t *testing.T) {
	s := newTestServer(t)

	t.Run("valid credentials", func(t *testing.T) {
		loginToken(t, s)
	})

	t.Run("invalid credentials", func(t *testing.T) {
		w := doJSON(s, http.MethodPost, "/api/login", "", gin.H{
			"username": "wolfnote",
			"password": "wrong",
		})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("missing fields", func(t *testing.T) {
		w := doJSON(s, http.MethodPost, "/api/login", "", gin.H{"username": "wolfnote"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestAuthRequired(t *testing.T) {
	s := newTestServer(t)

	w := doJSON(s, http.MethodGet, "/api/trades", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(s, http.MethodGet, "/api/trades", "bogus-token", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCreateAndListTrades(t *testing.T) {
	s := newTestServer(t)
	token := loginToken(t, s)

	w := doJSON(s, http.MethodPost, "/api/trades", token, gin.H{
		"trade_date":      "2025-07-14",
		"trade_time":      "10:30",
		"strategy":        "Momentum",
		"stock_symbol":    "tsla",
		"position_type":   "Long",
		"shares":          100,
		"buy_price":       4.00,
		"sell_price":      4.25,
		"stop_loss_price": 3.85,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = doJSON(s, http.MethodGet, "/api/trades?start=2025-07-14&end=2025-07-14", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data []models.TradeRecord `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "TSLA", resp.Data[0].StockSymbol)
	assert.InDelta(t, 25.0, resp.Data[0].NetGainLoss, 1e-9)
}

func TestCreateTradeGuardViolation(t *testing.T) {
	s := newTestServer(t)
	token := loginToken(t, s)

	w := doJSON(s, http.MethodPost, "/api/trades", token, gin.H{
		"trade_date":      "2025-07-14",
		"strategy":        "Momentum",
		"stock_symbol":    "TSLA",
		"position_type":   "Long",
		"shares":          600, // over the 500-share guard
		"buy_price":       1.00,
		"sell_price":      1.10,
		"stop_loss_price": 0.80,
	})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "MAX_SHARES")
}

func TestCreateTradeUnapprovedStrategy(t *testing.T) {
	s := newTestServer(t)
	token := loginToken(t, s)

	w := doJSON(s, http.MethodPost, "/api/trades", token, gin.H{
		"trade_date":      "2025-07-14",
		"strategy":        "YOLO",
		"stock_symbol":    "TSLA",
		"position_type":   "Long",
		"shares":          100,
		"buy_price":       4.00,
		"sell_price":      4.25,
		"stop_loss_price": 3.85,
	})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "strategy")
}

func TestDeleteAllRequiresConfirm(t *testing.T) {
	s := newTestServer(t)
	token := loginToken(t, s)

	w := doJSON(s, http.MethodDelete, "/api/trades?all=true", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(s, http.MethodDelete, "/api/trades?all=true&confirm=true", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestPositionSizeEndpoint(t *testing.T) {
	s := newTestServer(t)
	token := loginToken(t, s)

	w := doJSON(s, http.MethodPost, "/api/risk/position-size", token, gin.H{
		"account_balance": 10000,
		"risk_percent":    1.0,
		"entry_price":     100,
		"stop_loss_price": 98,
		"target_price":    106,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Data struct {
			PositionSize    string `json:"position_size"`
			RewardRiskRatio string `json:"reward_risk_ratio"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "50", resp.Data.PositionSize)
	assert.Equal(t, "3", resp.Data.RewardRiskRatio)
}

func TestPositionSizeRiskBand(t *testing.T) {
	s := newTestServer(t)
	token := loginToken(t, s)

	w := doJSON(s, http.MethodPost, "/api/risk/position-size", token, gin.H{
		"account_balance": 10000,
		"risk_percent":    10.0, // outside the UI band
		"entry_price":     100,
		"stop_loss_price": 98,
		"target_price":    106,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestChecklistEmptyDay(t *testing.T) {
	s := newTestServer(t)
	token := loginToken(t, s)

	w := doJSON(s, http.MethodGet, "/api/checklist?day=2025-07-14", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "not_applicable")
}

func TestImportEndpoint(t *testing.T) {
	s := newTestServer(t)
	token := loginToken(t, s)

	csv := strings.Join(importer.Columns, ",") + "\n" +
		"2025-07-14,10:30,Momentum,TSLA,Long,10,40.00,42.00,39.50,no,Calm," +
		"20.00,20.00,0.00,5.00,0.00,400.00,0.00,420.00,true,false,false,false\n"

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "trades.csv")
	require.NoError(t, err)
	_, err = part.Write([]byte(csv))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/trades/import", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	s.http.Handler.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"inserted":1`)
}

func TestImportWithoutSessionRejected(t *testing.T) {
	s := newTestServer(t)

	// Route the handler without the auth middleware: no session in the
	// request context must yield 401, not a panic in the import guard.
	r := gin.New()
	r.POST("/import", s.importTrades)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "trades.csv")
	require.NoError(t, err)
	_, err = part.Write([]byte(strings.Join(importer.Columns, ",") + "\n"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/import", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestScannerUnconfigured(t *testing.T) {
	s := newTestServer(t)
	token := loginToken(t, s)

	w := doJSON(s, http.MethodGet, "/api/scanner", token, nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
