package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/skinfolio/skinfolio/internal/api/handlers"
	"github.com/skinfolio/skinfolio/pkg/logger"
)

// NewRouter configures every route. Routing lives in this function only.
func NewRouter(
	market *handlers.MarketHandler,
	ingest *handlers.IngestHandler,
	strategy *handlers.StrategyHandler,
	stream *TickStream,
	log *logger.Logger,
) http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/health", healthCheckHandler).Methods("GET")

	// Read surface
	r.HandleFunc("/items", market.ListItems).Methods("GET")
	r.HandleFunc("/history/{id:[0-9]+}", market.GetHistory).Methods("GET")
	r.HandleFunc("/audit/summary", market.AuditSummary).Methods("GET")
	r.HandleFunc("/audit/snapshots", market.AuditSnapshots).Methods("GET")
	r.HandleFunc("/recommendations", strategy.Recommendations).Methods("GET")
	r.HandleFunc("/simulation/portfolio", strategy.Simulation).Methods("GET")

	// Ingestion triggers
	r.HandleFunc("/track", ingest.Track).Methods("POST")
	r.HandleFunc("/backfill", ingest.Backfill).Methods("POST")
	r.HandleFunc("/maintenance/rebuild", ingest.Rebuild).Methods("POST")
	r.HandleFunc("/maintenance/enrich-images", ingest.EnrichImages).Methods("POST")

	// Live tick stream
	r.HandleFunc("/ws/ticks", stream.Handle).Methods("GET")

	r.Use(loggingMiddleware(log))
	r.Use(recoveryMiddleware(log))

	return r
}

func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":  "ok",
		"service": "skinfolio-api",
	})
}

// loggingMiddleware logs completed requests.
func loggingMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			next.ServeHTTP(w, r)

			log.WithFields(map[string]interface{}{
				"method":   r.Method,
				"path":     r.URL.Path,
				"duration": time.Since(start),
			}).Debug("HTTP request")
		})
	}
}

// recoveryMiddleware converts handler panics into 500 responses.
func recoveryMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					log.WithFields(map[string]interface{}{
						"error": err,
						"path":  r.URL.Path,
					}).Error("panic recovered")

					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					json.NewEncoder(w).Encode(map[string]string{
						"error": "internal server error",
					})
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
