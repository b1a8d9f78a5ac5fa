package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"golang.org/x/time/rate"

	"github.com/wonny/capexwatch/internal/api/handlers"
	"github.com/wonny/capexwatch/internal/brain"
	"github.com/wonny/capexwatch/internal/metrics"
	"github.com/wonny/capexwatch/pkg/config"
	"github.com/wonny/capexwatch/pkg/logger"
)

// NewRouter creates and configures the HTTP router.
// m may be nil when metrics are disabled.
// ⭐ SSOT: 라우팅 설정은 이 함수에서만
func NewRouter(o *brain.Orchestrator, hub *Hub, m *metrics.Metrics, apiCfg config.APIConfig, log *logger.Logger) http.Handler {
	r := mux.NewRouter()
	log = log.WithComponent("api")

	pipelineHandler := handlers.NewPipelineHandler(o, hub, log)
	scenarioHandler := handlers.NewScenarioHandler(o, log)

	// Health check
	r.HandleFunc("/health", healthCheckHandler).Methods("GET")
	if m != nil {
		r.Handle("/metrics", m.Handler()).Methods("GET")
	}
	r.HandleFunc("/ws/dashboard", hub.ServeWS).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()
	limited := rateLimitMiddleware(rate.NewLimiter(rate.Limit(apiCfg.RateLimit), apiCfg.RateBurst))

	// Pipeline endpoints
	api.HandleFunc("/dashboard", pipelineHandler.GetDashboard).Methods("GET")
	api.HandleFunc("/runs/{runID}/{kind}", pipelineHandler.GetArtifact).Methods("GET")
	api.Handle("/runs", limited(http.HandlerFunc(pipelineHandler.TriggerRun))).Methods("POST")

	// Scenario endpoints
	api.HandleFunc("/scenarios/presets", scenarioHandler.GetPresets).Methods("GET")
	api.Handle("/scenarios/simulate", limited(http.HandlerFunc(scenarioHandler.Simulate))).Methods("POST")

	if m != nil {
		api.Use(metricsMiddleware(m))
	}

	// Apply middleware
	r.Use(loggingMiddleware(log))
	r.Use(recoveryMiddleware(log))

	return r
}

// healthCheckHandler returns server health status
func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":  "ok",
		"service": "capexwatch-api",
	})
}

// loggingMiddleware logs HTTP requests
func loggingMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// Call next handler
			next.ServeHTTP(w, r)

			// Log request
			log.WithFields(map[string]interface{}{
				"method":   r.Method,
				"path":     r.URL.Path,
				"duration": time.Since(start),
			}).Debug("HTTP request")
		})
	}
}

// recoveryMiddleware recovers from panics
func recoveryMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					log.WithFields(map[string]interface{}{
						"error": err,
						"path":  r.URL.Path,
					}).Error("Panic recovered")

					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					json.NewEncoder(w).Encode(map[string]string{
						"error": "Internal server error",
					})
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}

// rateLimitMiddleware shares one token bucket across the wrapped endpoints
func rateLimitMiddleware(limiter *rate.Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("Retry-After", "1")
				w.WriteHeader(http.StatusTooManyRequests)
				json.NewEncoder(w).Encode(map[string]string{
					"error": "Rate limit exceeded",
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// statusRecorder captures the response code for metrics
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// metricsMiddleware counts requests by route template and status
func metricsMiddleware(m *metrics.Metrics) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)

			route := r.URL.Path
			if cur := mux.CurrentRoute(r); cur != nil {
				if tpl, err := cur.GetPathTemplate(); err == nil {
					route = tpl
				}
			}
			m.HTTPRequests.WithLabelValues(route, strconv.Itoa(rec.status)).Inc()
		})
	}
}
