package api

import (
	"errors"
	"net/http"
	"time"
)

// InsightsHandler serves the analytics pull accessors.
type InsightsHandler struct {
	deps Dependencies
}

// NewInsightsHandler creates an insights handler.
func NewInsightsHandler(deps Dependencies) *InsightsHandler {
	return &InsightsHandler{deps: deps}
}

// HandleRecent handles GET /api/insights/recent.
func (h *InsightsHandler) HandleRecent(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, h.deps.RecentInsightFrames())
}

// HandleMinutes handles GET /api/insights/minutes.
func (h *InsightsHandler) HandleMinutes(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, h.deps.MinuteAggregates())
}

// HandleSeries handles GET /api/insights/series?duration=10m.
func (h *InsightsHandler) HandleSeries(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	raw := r.URL.Query().Get("duration")
	if raw == "" {
		writeError(w, http.StatusBadRequest, "bad_request", errors.New("missing duration"))
		return
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		writeError(w, http.StatusBadRequest, "bad_request", errors.New("invalid duration"))
		return
	}
	writeJSON(w, http.StatusOK, h.deps.MinuteSeries(d))
}

// HandleReport handles GET /api/report. Returns 404 until the terminal event
// has been observed.
func (h *InsightsHandler) HandleReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	report, ok := h.deps.MatchReport()
	if !ok {
		writeError(w, http.StatusNotFound, "not_ready", errors.New("match report not available yet"))
		return
	}
	writeJSON(w, http.StatusOK, report)
}
