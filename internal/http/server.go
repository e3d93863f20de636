// Package http exposes the billing engine as a JSON API.
package http

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"contas/internal/cache"
	"contas/internal/config"
	"contas/internal/core"
	"contas/internal/credit"
	"contas/internal/services"
)

type Server struct {
	http.Server
	transactions *services.TransactionService
	purchases    *services.PurchaseService
	billing      *services.BillingService
	importer     *services.ImportService
	rateLimiter  *rateLimiter
	metrics      *securityMetrics

	// Expanded-occurrence listings dominate read traffic; usage is close
	// behind. Both are invalidated on write.
	occurrenceCache *cache.LRUCache[[]core.Occurrence]
	usageCache      *cache.LRUCache[credit.Usage]
	cacheManager    *cache.Manager

	shutdownOnce sync.Once
}

// NewServer configures routes and caches, returning a ready-to-run server.
func NewServer(cfg *config.Config, transactions *services.TransactionService, purchases *services.PurchaseService, billingSvc *services.BillingService, importer *services.ImportService) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:    ":" + cfg.Port,
			Handler: mux,
		},
		transactions:    transactions,
		purchases:       purchases,
		billing:         billingSvc,
		importer:        importer,
		rateLimiter:     newRateLimiter(),
		metrics:         &securityMetrics{},
		occurrenceCache: cache.NewLRUCache[[]core.Occurrence](cfg.CacheSize, cfg.CacheTTL),
		usageCache:      cache.NewLRUCache[credit.Usage](cfg.CacheSize, cfg.CacheTTL),
		cacheManager:    cache.NewManager(),
	}

	s.cacheManager.Register(s.occurrenceCache)
	s.cacheManager.Register(s.usageCache)
	s.cacheManager.StartCleanup(10 * time.Minute)

	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/readyz", handleReady)

	mux.HandleFunc("POST /api/transactions", s.withMiddleware(s.handleCreateTransaction))
	mux.HandleFunc("GET /api/transactions/expanded", s.withMiddleware(s.handleListExpanded))

	mux.HandleFunc("POST /api/wallets", s.withMiddleware(s.handleCreateWallet))

	mux.HandleFunc("POST /api/cards", s.withMiddleware(s.handleCreateCard))
	mux.HandleFunc("GET /api/cards", s.withMiddleware(s.handleListCards))
	mux.HandleFunc("GET /api/cards/{id}/usage", s.withMiddleware(s.handleCardUsage))
	mux.HandleFunc("GET /api/cards/{id}/bills", s.withMiddleware(s.handleListBills))
	mux.HandleFunc("POST /api/cards/{id}/close", s.withMiddleware(s.handleClosePeriod))

	mux.HandleFunc("POST /api/purchases", s.withMiddleware(s.handleCreatePurchase))
	mux.HandleFunc("PATCH /api/purchases/{id}", s.withMiddleware(s.handleUpdatePurchase))
	mux.HandleFunc("DELETE /api/purchases/{id}", s.withMiddleware(s.handleDeletePurchase))
	mux.HandleFunc("GET /api/purchases/{id}/installments", s.withMiddleware(s.handleListInstallments))

	mux.HandleFunc("GET /api/bills/{id}", s.withMiddleware(s.handleGetBill))
	mux.HandleFunc("DELETE /api/bills/{id}", s.withMiddleware(s.handleDeleteBill))
	mux.HandleFunc("PUT /api/bills/{id}/status", s.withMiddleware(s.handleOverrideStatus))
	mux.HandleFunc("GET /api/bills/{id}/payments", s.withMiddleware(s.handleListPayments))
	mux.HandleFunc("POST /api/bills/{id}/payments", s.withMiddleware(s.handleRegisterPayment))

	mux.HandleFunc("POST /api/import/purchases", s.withMiddleware(s.handleImportPurchases))

	return s
}

// Shutdown gracefully shuts down the server and cleanup routines
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.cacheManager.Stop()

		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}

		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}

// withMiddleware adds rate limiting, security headers and request logging.
func (s *Server) withMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		clientIP := extractClientIP(r)
		requestID := generateRequestID()

		ctx := context.WithValue(r.Context(), requestIDKey, requestID)
		r = r.WithContext(ctx)

		if detectSuspiciousRequest(r, s.metrics) {
			slog.WarnContext(ctx, "Suspicious request detected",
				"request_id", requestID,
				"client_ip", clientIP,
				"url", r.URL.Path)
		}

		slog.InfoContext(ctx, "Request started",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"client_ip", clientIP)

		// Writes are rate limited per client IP; reads are not.
		if r.Method != http.MethodGet && !s.rateLimiter.allow(clientIP, s.metrics) {
			slog.WarnContext(ctx, "Rate limit exceeded",
				"client_ip", clientIP, "method", r.Method, "url", r.URL.Path)
			w.Header().Set("Retry-After", "60")
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		duration := time.Since(start)
		slog.InfoContext(ctx, "Request completed",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"status", rw.statusCode,
			"duration_ms", duration.Milliseconds(),
			"client_ip", clientIP)
	}
}

type contextKey string

const requestIDKey contextKey = "request_id"

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// generateRequestID creates a unique request ID for tracing
func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		// Fallback to timestamp if random fails
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// invalidateOccurrences drops every cached listing. Occurrence listings key
// on flow+window and a new record can land in any cached window.
func (s *Server) invalidateOccurrences() {
	s.occurrenceCache.Purge()
}
