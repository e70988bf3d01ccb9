// Package api declares the read-only HTTP pull surface over the pipeline.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/okian/matchpulse/internal/domain/model"
)

// Dependencies required by the HTTP handlers. An interface bundle keeps the
// handler layer loosely coupled to the pipeline implementation.
type Dependencies interface {
	RecentInsightFrames() []model.InsightFrame
	MinuteAggregates() []model.MinuteAggregate
	MinuteSeries(duration time.Duration) []model.MinuteAggregate
	MatchReport() (model.MatchReport, bool)
	Stats() map[string]any
}

// Server wires HTTP routes for the pull accessors.
type Server struct {
	health   *HealthHandler
	stats    *StatsHandler
	insights *InsightsHandler
}

// NewServer creates an API server with all handlers.
func NewServer(deps Dependencies) *Server {
	return &Server{
		health:   NewHealthHandler(),
		stats:    NewStatsHandler(deps),
		insights: NewInsightsHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.health.HandleHealth, "healthz"))
	mux.HandleFunc("/metrics", MetricsMiddleware(s.health.HandleMetrics, "metrics"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.stats.HandleStats, "stats"))
	mux.HandleFunc("/api/insights/recent", MetricsMiddleware(s.insights.HandleRecent, "insights_recent"))
	mux.HandleFunc("/api/insights/minutes", MetricsMiddleware(s.insights.HandleMinutes, "insights_minutes"))
	mux.HandleFunc("/api/insights/series", MetricsMiddleware(s.insights.HandleSeries, "insights_series"))
	mux.HandleFunc("/api/report", MetricsMiddleware(s.insights.HandleReport, "report"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
