package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/linesmerrill/motorent-api/models"
)

// Pinger reports whether a backing store is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// New creates a new mux router with the health and metrics routes
func New(db Pinger) *mux.Router {
	r := mux.NewRouter()
	r.Use(MetricsMiddleware)
	r.HandleFunc("/health", healthCheckHandler(db)).Methods(http.MethodGet)
	r.Handle("/metrics", MetricsHandler()).Methods(http.MethodGet)
	return r
}

func healthCheckHandler(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := models.HealthCheckResponse{Alive: true}
		status := http.StatusOK
		if db != nil {
			ctx, cancel := WithQueryTimeout(r.Context())
			defer cancel()
			if err := db.Ping(ctx); err != nil {
				resp.Alive = false
				resp.Database = err.Error()
				status = http.StatusServiceUnavailable
			} else {
				resp.Database = "ok"
			}
		}
		b, _ := json.Marshal(resp)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write(b)
	}
}
