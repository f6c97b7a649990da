package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/wolfnote/30-day-trading-tracker/internal/auth"
	"github.com/wolfnote/30-day-trading-tracker/internal/config"
	"github.com/wolfnote/30-day-trading-tracker/internal/importer"
	"github.com/wolfnote/30-day-trading-tracker/internal/ledger"
	"github.com/wolfnote/30-day-trading-tracker/internal/scanner"
	"github.com/wolfnote/30-day-trading-tracker/internal/session"
)

// Server is the HTTP front of the tracker. It owns no business state:
// every operation delegates to the ledger store, importer, analytics
// functions, risk calculator, or scanner client.
type Server struct {
	http     *http.Server
	logger   *zap.Logger
	cfg      *config.Config
	store    *ledger.Store
	importer *importer.Importer
	scanner  *scanner.Client
	verifier auth.CredentialVerifier
	tokens   auth.JWT
	sessions *session.Manager
}

// New wires the router and handlers.
func New(
	cfg *config.Config,
	logger *zap.Logger,
	store *ledger.Store,
	imp *importer.Importer,
	scan *scanner.Client,
	verifier auth.CredentialVerifier,
	tokens auth.JWT,
	sessions *session.Manager,
) *Server {
	s := &Server{
		logger:   logger.Named("server"),
		cfg:      cfg,
		store:    store,
		importer: imp,
		scanner:  scan,
		verifier: verifier,
		tokens:   tokens,
		sessions: sessions,
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	s.register(engine)

	s.http = &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: engine,
	}
	return s
}

func (s *Server) register(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) { c.String(http.StatusOK, "OK") })
	r.POST("/api/login", s.login)

	api := r.Group("/api", s.authRequired())
	api.PUT("/session/theme", s.setTheme)

	api.GET("/trades", s.listTrades)
	api.POST("/trades", s.createTrade)
	api.DELETE("/trades/:id", s.deleteTrade)
	api.DELETE("/trades", s.deleteTrades)
	api.POST("/trades/import", s.importTrades)
	api.GET("/trades/export", s.exportTrades)

	api.GET("/summary", s.summary)
	api.GET("/checklist", s.checklist)
	api.GET("/rollups", s.rollups)

	api.POST("/risk/position-size", s.positionSize)
	api.GET("/scanner", s.scan)
}

// Start runs the HTTP server in a new goroutine.
func (s *Server) Start() {
	s.logger.Info("Starting API server", zap.String("address", s.http.Addr))
	go func() {
		if err := s.http.ListenAndServe(); err != http.ErrServerClosed {
			s.logger.Error("API server failed", zap.Error(err))
		}
	}()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Stopping API server...")
	return s.http.Shutdown(ctx)
}
