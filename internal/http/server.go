// Package http exposes the cost store and reports as a small JSON API.
package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	applog "costbook/internal/log"
	"costbook/internal/rates"
	"costbook/internal/reports"
	"costbook/internal/services"
)

// Server wires the cost service, the aggregator and the rate cache behind
// HTTP handlers.
type Server struct {
	costs      *services.CostService
	aggregator *reports.Aggregator
	rateCache  *rates.Cache
}

// NewServer configures routes and returns a ready-to-run http.Server.
func NewServer(addr string, costs *services.CostService, aggregator *reports.Aggregator, rateCache *rates.Cache, logger *applog.Logger) *http.Server {
	s := &Server{
		costs:      costs,
		aggregator: aggregator,
		rateCache:  rateCache,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/api/costs", s.handleAddCost)
	mux.HandleFunc("/api/reports/monthly", s.handleMonthlyReport)
	mux.HandleFunc("/api/reports/categories", s.handleCategoryTotals)
	mux.HandleFunc("/api/reports/totals", s.handleMonthlyTotals)

	handler := http.Handler(mux)
	if logger != nil {
		handler = applog.RequestMiddleware(logger)(handler)
	}

	return &http.Server{
		Addr:           addr,
		Handler:        handler,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 16, // 64KB
	}
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
