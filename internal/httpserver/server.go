package httpserver

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/http/pprof"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"lococlient/internal/circuit"
	"lococlient/internal/logger"
	"lococlient/internal/middleware"
	"lococlient/internal/pool"
)

// Build information, set at compile time via -ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

// Server provides HTTP endpoints for health checks and metrics over a
// running Loco session.
type Server struct {
	addr        string
	log         *logger.Logger
	server      *http.Server
	stats       *SessionStats
	startedAt   time.Time
	enablePprof bool
	tlsConfig   *tls.Config
}

// SessionStats holds references to session and connection-management state
// for stats reporting.
type SessionStats struct {
	DialAddr             string
	PendingRequests      func() int
	BroadcastQueueLength func() int
	RateLimit            *middleware.RateLimiter
	CircuitBreaker       *circuit.Breaker
	BufferPool           *pool.BytePool
}

// New creates a new HTTP server.
func New(addr string, log *logger.Logger, stats *SessionStats, tlsConfig *tls.Config) *Server {
	return &Server{
		addr:        addr,
		log:         log,
		stats:       stats,
		startedAt:   time.Now(),
		enablePprof: false,
		tlsConfig:   tlsConfig,
	}
}

// NewWithPprof creates a new HTTP server with pprof enabled.
func NewWithPprof(addr string, log *logger.Logger, stats *SessionStats, enablePprof bool, tlsConfig *tls.Config) *Server {
	return &Server{
		addr:        addr,
		log:         log,
		stats:       stats,
		startedAt:   time.Now(),
		enablePprof: enablePprof,
		tlsConfig:   tlsConfig,
	}
}

// Run starts the HTTP server and blocks until context is done.
func (s *Server) Run(ctx context.Context) error {
	mux := http.NewServeMux()

	mux.HandleFunc("/", s.handleRoot)
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/ready", s.handleReady)
	mux.HandleFunc("/livez", s.handleLivez)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/status", s.handleStatus)
	mux.HandleFunc("/version", s.handleVersion)
	mux.HandleFunc("/admin/circuit-breaker", s.handleAdminCircuitBreaker)
	mux.HandleFunc("/admin/circuit-breaker/reset", s.handleAdminCircuitBreakerReset)

	if s.enablePprof {
		s.log.Warn("pprof profiling endpoints enabled - do not expose in production!")
		mux.HandleFunc("/debug/pprof/", pprof.Index)
		mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
		mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
		mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
		mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
		mux.Handle("/debug/pprof/heap", pprof.Handler("heap"))
		mux.Handle("/debug/pprof/goroutine", pprof.Handler("goroutine"))
		mux.Handle("/debug/pprof/block", pprof.Handler("block"))
		mux.Handle("/debug/pprof/mutex", pprof.Handler("mutex"))
		mux.Handle("/debug/pprof/allocs", pprof.Handler("allocs"))
		mux.Handle("/debug/pprof/threadcreate", pprof.Handler("threadcreate"))
	}

	s.server = &http.Server{
		Addr:    s.addr,
		Handler: mux,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("http server starting", "addr", s.addr)
		if s.tlsConfig != nil {
			s.server.TLSConfig = s.tlsConfig
			errCh <- s.server.ListenAndServeTLS("", "")
			return
		}
		errCh <- s.server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		s.log.Info("http server shutdown initiated")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.server.Shutdown(shutdownCtx)
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("http server error: %w", err)
		}
		return nil
	}
}

// handleRoot provides a friendly root endpoint.
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(map[string]any{
		"service": "lococlient",
		"message": "session host is live",
		"time":    time.Now().Unix(),
	}); err != nil {
		s.log.Error("failed to encode root response", "err", err)
	}
}

// handleHealth checks if the server process is running.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(map[string]any{
		"status": "healthy",
		"time":   time.Now().Unix(),
	}); err != nil {
		s.log.Error("failed to encode health response", "err", err)
	}
}

// handleReady checks whether the configured Loco endpoint is currently
// reachable by a short dial.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	timeoutCtx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	dialAddr := ""
	if s.stats != nil {
		dialAddr = s.stats.DialAddr
	}

	reachable := true
	if dialAddr != "" {
		var dialer net.Dialer
		conn, err := dialer.DialContext(timeoutCtx, "tcp", dialAddr)
		if err != nil {
			reachable = false
		} else if closeErr := conn.Close(); closeErr != nil {
			s.log.Warn("failed to close readiness check connection", "err", closeErr)
		}
	}

	response := map[string]any{
		"ready":     reachable,
		"time":      time.Now().Unix(),
		"dial_addr": dialAddr,
	}

	if !reachable {
		w.WriteHeader(http.StatusServiceUnavailable)
	} else {
		w.WriteHeader(http.StatusOK)
	}

	if err := json.NewEncoder(w).Encode(response); err != nil {
		s.log.Error("failed to encode ready response", "err", err)
	}
}

// handleLivez checks if server process is alive (always returns 200).
func (s *Server) handleLivez(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(map[string]any{
		"alive": true,
		"time":  time.Now().Unix(),
	}); err != nil {
		s.log.Error("failed to encode livez response", "err", err)
	}
}

// handleStatus returns detailed status information about the session.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	status := map[string]any{
		"time":           time.Now().Unix(),
		"started_at":     s.startedAt.Unix(),
		"uptime_seconds": time.Since(s.startedAt).Seconds(),
	}

	if s.stats != nil {
		status["dial_addr"] = s.stats.DialAddr
		if s.stats.PendingRequests != nil {
			status["pending_requests"] = s.stats.PendingRequests()
		}
		if s.stats.BroadcastQueueLength != nil {
			status["broadcast_queue_length"] = s.stats.BroadcastQueueLength()
		}
		if s.stats.RateLimit != nil {
			status["rate_limit"] = s.stats.RateLimit.Stats()
		}
		if s.stats.CircuitBreaker != nil {
			status["circuit_breaker"] = s.stats.CircuitBreaker.Stats()
		}
		if s.stats.BufferPool != nil {
			status["buffer_pool"] = s.stats.BufferPool.Stats()
		}
	}

	if err := json.NewEncoder(w).Encode(status); err != nil {
		s.log.Error("failed to encode status response", "err", err)
	}
}

// handleVersion returns build version information.
func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(map[string]any{
		"version":    Version,
		"git_commit": GitCommit,
		"build_time": BuildTime,
		"go_version": runtime.Version(),
	}); err != nil {
		s.log.Error("failed to encode version response", "err", err)
	}
}

// handleAdminCircuitBreaker returns circuit breaker state.
func (s *Server) handleAdminCircuitBreaker(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		if err := json.NewEncoder(w).Encode(map[string]any{
			"error": "method not allowed",
		}); err != nil {
			s.log.Error("failed to encode circuit breaker error response", "err", err)
		}
		return
	}

	response := map[string]any{
		"time": time.Now().Unix(),
	}

	if s.stats != nil && s.stats.CircuitBreaker != nil {
		response["circuit_breaker"] = s.stats.CircuitBreaker.Stats()
		response["available"] = true
	} else {
		response["circuit_breaker"] = nil
		response["available"] = false
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		s.log.Error("failed to encode circuit breaker response", "err", err)
	}
}

// handleAdminCircuitBreakerReset resets the circuit breaker.
func (s *Server) handleAdminCircuitBreakerReset(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		if err := json.NewEncoder(w).Encode(map[string]any{
			"error": "method not allowed, use POST",
		}); err != nil {
			s.log.Error("failed to encode circuit breaker reset error response", "err", err)
		}
		return
	}

	if s.stats == nil || s.stats.CircuitBreaker == nil {
		w.WriteHeader(http.StatusNotFound)
		if err := json.NewEncoder(w).Encode(map[string]any{
			"error": "circuit breaker not configured",
		}); err != nil {
			s.log.Error("failed to encode circuit breaker not found response", "err", err)
		}
		return
	}

	s.stats.CircuitBreaker.Reset()
	s.log.Info("circuit breaker manually reset via admin API")

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(map[string]any{
		"success": true,
		"message": "circuit breaker reset to closed state",
		"time":    time.Now().Unix(),
	}); err != nil {
		s.log.Error("failed to encode circuit breaker reset response", "err", err)
	}
}
