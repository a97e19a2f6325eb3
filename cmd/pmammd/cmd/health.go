package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"runtime"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	startTime = time.Now()

	healthCheckTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pmamm_health_check_total",
			Help: "Total number of health check requests",
		},
		[]string{"endpoint", "status"},
	)

	healthCheckDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pmamm_health_check_duration_seconds",
			Help:    "Health check request duration in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1.0, 5.0},
		},
		[]string{"endpoint"},
	)

	serviceHealthy = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "pmamm_service_healthy",
			Help: "1 if service is healthy, 0 if unhealthy",
		},
		[]string{"service"},
	)
)

// startupGrace is how long /health/startup reports "starting".
var startupGrace = 5 * time.Second

// HealthCheck represents the health check server
type HealthCheck struct {
	server  *http.Server
	checker AppHealthChecker
	cache   *healthCache
}

// AppHealthChecker reports on the state store and the pool registry.
type AppHealthChecker interface {
	CheckStore() error
	CheckGenesis() error
	PoolStats() (PoolStats, error)
}

// healthCache caches health check results to avoid overload
type healthCache struct {
	mu          sync.RWMutex
	result      *DetailedHealthResponse
	lastChecked time.Time
	ttl         time.Duration
}

func newHealthCache(ttl time.Duration) *healthCache {
	return &healthCache{
		ttl: ttl,
	}
}

func (c *healthCache) get() (*DetailedHealthResponse, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.result == nil || time.Since(c.lastChecked) > c.ttl {
		return nil, false
	}

	return c.result, true
}

func (c *healthCache) set(result *DetailedHealthResponse) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.result = result
	c.lastChecked = time.Now()
}

// BasicHealthResponse is the response for /health
type BasicHealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

// ReadinessResponse is the response for /health/ready
type ReadinessResponse struct {
	Status string                 `json:"status"`
	Checks map[string]CheckResult `json:"checks"`
}

// DetailedHealthResponse is the response for /health/detailed
type DetailedHealthResponse struct {
	Status        string                  `json:"status"`
	UptimeSeconds int64                   `json:"uptime_seconds"`
	Version       string                  `json:"version"`
	Checks        map[string]CheckResult  `json:"checks"`
	Modules       map[string]ModuleHealth `json:"modules"`
	System        SystemHealth            `json:"system"`
}

// CheckResult represents a single health check result
type CheckResult struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// ModuleHealth represents module-specific health information
type ModuleHealth struct {
	Status  string         `json:"status"`
	Metrics map[string]any `json:"metrics,omitempty"`
}

// SystemHealth represents system-level health metrics
type SystemHealth struct {
	MemoryMB   uint64 `json:"memory_mb"`
	Goroutines int    `json:"goroutines"`
}

// StartHealthCheckServer starts the health check HTTP server
func StartHealthCheckServer(port int, checker AppHealthChecker) *HealthCheck {
	hc := NewHealthCheck(checker)

	hc.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           hc.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
	}

	go func() {
		if err := hc.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			fmt.Printf("health check server error: %v\n", err)
		}
	}()

	return hc
}

// NewHealthCheck creates a health check without a listener.
func NewHealthCheck(checker AppHealthChecker) *HealthCheck {
	return &HealthCheck{
		checker: checker,
		cache:   newHealthCache(5 * time.Second),
	}
}

// Handler routes the health endpoints.
func (hc *HealthCheck) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", hc.withHealthMetrics("health", hc.handleBasicHealth))
	mux.HandleFunc("/health/ready", hc.withHealthMetrics("ready", hc.handleReadiness))
	mux.HandleFunc("/health/detailed", hc.withHealthMetrics("detailed", hc.handleDetailed))
	mux.HandleFunc("/health/startup", hc.withHealthMetrics("startup", hc.handleStartup))
	return mux
}

// withHealthMetrics wraps health check handlers with metrics
func (hc *HealthCheck) withHealthMetrics(endpoint string, handler http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Use a custom response writer to capture status code
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		handler(rw, r)

		duration := time.Since(start)
		status := fmt.Sprintf("%d", rw.statusCode)

		healthCheckTotal.WithLabelValues(endpoint, status).Inc()
		healthCheckDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
	}
}

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func writeJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(v)
}

// handleBasicHealth handles GET /health - always returns 200 if process is alive
func (hc *HealthCheck) handleBasicHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, BasicHealthResponse{
		Status:    "ok",
		Timestamp: time.Now().Format(time.RFC3339),
	})
}

func (hc *HealthCheck) runChecks() (map[string]CheckResult, bool) {
	checks := make(map[string]CheckResult)
	allHealthy := true
	if hc.checker == nil {
		return checks, allHealthy
	}

	if err := hc.checker.CheckStore(); err != nil {
		checks["store"] = CheckResult{Status: "unhealthy", Message: err.Error()}
		allHealthy = false
		serviceHealthy.WithLabelValues("store").Set(0)
	} else {
		checks["store"] = CheckResult{Status: "ok"}
		serviceHealthy.WithLabelValues("store").Set(1)
	}

	if err := hc.checker.CheckGenesis(); err != nil {
		checks["genesis"] = CheckResult{Status: "unhealthy", Message: err.Error()}
		allHealthy = false
		serviceHealthy.WithLabelValues("genesis").Set(0)
	} else {
		checks["genesis"] = CheckResult{Status: "ok"}
		serviceHealthy.WithLabelValues("genesis").Set(1)
	}

	return checks, allHealthy
}

// handleReadiness handles GET /health/ready - checks if service can handle traffic
func (hc *HealthCheck) handleReadiness(w http.ResponseWriter, _ *http.Request) {
	checks, allHealthy := hc.runChecks()

	status := "ready"
	statusCode := http.StatusOK
	if !allHealthy {
		status = "not_ready"
		statusCode = http.StatusServiceUnavailable
	}

	writeJSON(w, statusCode, ReadinessResponse{
		Status: status,
		Checks: checks,
	})
}

// handleDetailed handles GET /health/detailed - comprehensive health information
func (hc *HealthCheck) handleDetailed(w http.ResponseWriter, _ *http.Request) {
	if cached, ok := hc.cache.get(); ok {
		w.Header().Set("X-Cache", "HIT")
		writeJSON(w, http.StatusOK, cached)
		return
	}

	checks, _ := hc.runChecks()
	modules := make(map[string]ModuleHealth)

	if hc.checker != nil {
		stats, err := hc.checker.PoolStats()
		if err != nil {
			checks["pools"] = CheckResult{Status: "degraded", Message: err.Error()}
			modules["swaps"] = ModuleHealth{Status: "degraded"}
		} else {
			checks["pools"] = CheckResult{Status: "ok"}
			modules["swaps"] = ModuleHealth{
				Status: "ok",
				Metrics: map[string]any{
					"pools":           stats.Total,
					"active_pools":    stats.Active,
					"closed_pools":    stats.Closed,
					"arbitrage_cache": stats.ArbitrageCache,
					"next_pool_id":    stats.NextPoolID,
				},
			}
			modules["rikiddo"] = ModuleHealth{
				Status:  "ok",
				Metrics: map[string]any{"market_makers": stats.Rikiddo},
			}
		}
	}

	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	status := "healthy"
	for _, check := range checks {
		if check.Status == "unhealthy" {
			status = "unhealthy"
			break
		} else if check.Status == "degraded" && status == "healthy" {
			status = "degraded"
		}
	}

	response := &DetailedHealthResponse{
		Status:        status,
		UptimeSeconds: int64(time.Since(startTime).Seconds()),
		Version:       getVersion(),
		Checks:        checks,
		Modules:       modules,
		System: SystemHealth{
			MemoryMB:   m.Alloc / 1024 / 1024,
			Goroutines: runtime.NumGoroutine(),
		},
	}

	hc.cache.set(response)

	w.Header().Set("X-Cache", "MISS")
	writeJSON(w, http.StatusOK, response)
}

// handleStartup handles GET /health/startup - for Kubernetes startup probes
func (hc *HealthCheck) handleStartup(w http.ResponseWriter, r *http.Request) {
	if time.Since(startTime) < startupGrace {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"status":  "starting",
			"message": "application is initializing",
		})
		return
	}

	hc.handleReadiness(w, r)
}

// Shutdown gracefully shuts down the health check server
func (hc *HealthCheck) Shutdown(ctx context.Context) error {
	if hc.server != nil {
		return hc.server.Shutdown(ctx)
	}
	return nil
}
