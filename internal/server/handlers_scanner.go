package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/wolfnote/30-day-trading-tracker/internal/scanner"
)

// scan runs the momentum screen over the configured watchlist, or over
// the comma-separated symbols query parameter when given.
func (s *Server) scan(c *gin.Context) {
	if s.scanner == nil {
		fail(c, http.StatusServiceUnavailable, "scanner is not configured")
		return
	}

	symbols := s.cfg.Scanner.Symbols
	if v := strings.TrimSpace(c.Query("symbols")); v != "" {
		symbols = nil
		for _, sym := range strings.Split(v, ",") {
			if sym = strings.ToUpper(strings.TrimSpace(sym)); sym != "" {
				symbols = append(symbols, sym)
			}
		}
	}
	if len(symbols) == 0 {
		fail(c, http.StatusBadRequest, "no symbols to scan")
		return
	}

	all, matched, err := s.scanner.Scan(c.Request.Context(), symbols, scanner.DefaultCriteria())
	if err != nil {
		s.logger.Error("scan failed", zap.Error(err))
		fail(c, http.StatusBadGateway, err.Error())
		return
	}
	ok(c, gin.H{"scanned": all, "matched": matched})
}
