// Package http exposes the insights pipeline as a small JSON API.
package http

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"sync"
	"time"

	"scadenze/internal/cache"
	"scadenze/internal/core"
	"scadenze/internal/log"
	"scadenze/internal/services"
)

const (
	dashboardCacheSize = 100
	recapCacheSize     = 200
	responseCacheTTL   = 5 * time.Minute
	cacheSweepInterval = 10 * time.Minute
)

// InsightService is the slice of the service layer the API serves.
type InsightService interface {
	Dashboard(ctx context.Context, planID string) (services.Dashboard, error)
	PeriodRecap(ctx context.Context, planID string, year, month int) (core.RecapSummary, error)
	Upcoming(ctx context.Context, planID string, limit int) ([]core.UpcomingPayment, error)
}

type Server struct {
	http.Server
	insights    InsightService
	rateLimiter *rateLimiter
	logger      *log.Logger
	httpLog     *log.HTTPLogger

	// Derived responses are cached per plan; writes go through the store,
	// so a short TTL is the only invalidation needed.
	dashboardCache *cache.LRUCache[services.Dashboard]
	recapCache     *cache.LRUCache[core.RecapSummary]
	cacheManager   *cache.Manager

	shutdownOnce sync.Once
}

// NewServer configures routes and response caches, returning a
// ready-to-run http.Server. A nil logger falls back to the default
// configuration.
func NewServer(addr string, insights InsightService, logger *log.Logger) *Server {
	mux := http.NewServeMux()

	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	logger = logger.WithComponent(log.ComponentHTTP)

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: mux,
		},
		insights:       insights,
		rateLimiter:    newRateLimiter(),
		logger:         logger,
		httpLog:        log.NewHTTPLogger(logger),
		dashboardCache: cache.NewLRUCache[services.Dashboard](dashboardCacheSize, responseCacheTTL),
		recapCache:     cache.NewLRUCache[core.RecapSummary](recapCacheSize, responseCacheTTL),
		cacheManager:   cache.NewManager(),
	}

	s.cacheManager.Register("dashboard", s.dashboardCache)
	s.cacheManager.Register("recap", s.recapCache)
	s.cacheManager.StartCleanup(cacheSweepInterval)

	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/readyz", handleReady)
	mux.HandleFunc("/api/dashboard", s.withAPIGuard(s.handleDashboard))
	mux.HandleFunc("/api/recap", s.withAPIGuard(s.handleRecap))
	mux.HandleFunc("/api/upcoming", s.withAPIGuard(s.handleUpcoming))

	return s
}

// Shutdown stops the cleanup goroutines before draining in-flight requests.
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

// withAPIGuard adds security headers, rate limiting and request logging.
func (s *Server) withAPIGuard(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		clientIP := extractClientIP(r)
		requestID := generateRequestID()

		logger := s.logger.With(log.FieldRequestID, requestID)
		ctx := context.WithValue(r.Context(), log.LoggerContextKey, logger)
		r = r.WithContext(ctx)

		s.httpLog.LogStart(ctx, r, clientIP)

		if !s.rateLimiter.allow(clientIP) {
			logger.WarnContext(ctx, "Rate limit exceeded", log.FieldClientIP, clientIP, log.FieldPath, r.URL.Path)
			w.Header().Set("Retry-After", "60")
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}

		applySecurityHeaders(w)

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		duration := time.Since(start)
		s.httpLog.LogEnd(ctx, r, rw.statusCode, duration.Milliseconds(), clientIP)
	}
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

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
