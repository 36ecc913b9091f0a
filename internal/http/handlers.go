package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"scadenze/internal/core"
	"scadenze/internal/log"
)

// handleDashboard serves the full per-plan insight payload: previous-month
// recap, ranked upcoming payments and prioritized tips.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if !requireGet(w, r) {
		return
	}
	planID, ok := requirePlan(w, r)
	if !ok {
		return
	}

	if cached, found := s.dashboardCache.Get(planID); found {
		log.FromContext(r.Context()).DebugContext(r.Context(), "Dashboard cache hit", log.FieldPlanID, planID)
		writeJSON(w, http.StatusOK, cached)
		return
	}

	dash, err := s.insights.Dashboard(r.Context(), planID)
	if err != nil {
		writeServiceError(w, r, err, "Dashboard error", planID)
		return
	}

	s.dashboardCache.Set(planID, dash)
	writeJSON(w, http.StatusOK, dash)
}

// handleRecap serves the payment recap for an explicit year and month.
func (s *Server) handleRecap(w http.ResponseWriter, r *http.Request) {
	if !requireGet(w, r) {
		return
	}
	planID, ok := requirePlan(w, r)
	if !ok {
		return
	}

	year, err := queryInt(r, "year")
	if err != nil {
		writeError(w, http.StatusBadRequest, "year parameter is required")
		return
	}
	month, err := queryInt(r, "month")
	if err != nil {
		writeError(w, http.StatusBadRequest, "month parameter is required")
		return
	}

	key := planID + ":" + strconv.Itoa(year) + "-" + strconv.Itoa(month)
	if cached, found := s.recapCache.Get(key); found {
		log.FromContext(r.Context()).DebugContext(r.Context(), "Recap cache hit",
			log.FieldPlanID, planID, log.FieldYear, year, log.FieldMonth, month)
		writeJSON(w, http.StatusOK, cached)
		return
	}

	recap, err := s.insights.PeriodRecap(r.Context(), planID, year, month)
	if err != nil {
		writeServiceError(w, r, err, "Recap error", planID)
		return
	}

	s.recapCache.Set(key, recap)
	writeJSON(w, http.StatusOK, recap)
}

// handleUpcoming serves the mixed upcoming-payment list. An optional limit
// parameter overrides the default list size.
func (s *Server) handleUpcoming(w http.ResponseWriter, r *http.Request) {
	if !requireGet(w, r) {
		return
	}
	planID, ok := requirePlan(w, r)
	if !ok {
		return
	}

	limit := 0
	if v := strings.TrimSpace(r.URL.Query().Get("limit")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "limit must be a positive number")
			return
		}
		limit = n
	}

	upcoming, err := s.insights.Upcoming(r.Context(), planID, limit)
	if err != nil {
		writeServiceError(w, r, err, "Upcoming error", planID)
		return
	}

	writeJSON(w, http.StatusOK, struct {
		Upcoming []core.UpcomingPayment `json:"upcoming"`
	}{Upcoming: upcoming})
}

func requireGet(w http.ResponseWriter, r *http.Request) bool {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return false
	}
	return true
}

func requirePlan(w http.ResponseWriter, r *http.Request) (string, bool) {
	planID := strings.TrimSpace(r.URL.Query().Get("plan"))
	if planID == "" {
		writeError(w, http.StatusBadRequest, "plan parameter is required")
		return "", false
	}
	return planID, true
}

func queryInt(r *http.Request, name string) (int, error) {
	v := strings.TrimSpace(r.URL.Query().Get(name))
	if v == "" {
		return 0, errors.New("missing " + name)
	}
	return strconv.Atoi(v)
}

func writeServiceError(w http.ResponseWriter, r *http.Request, err error, msg, planID string) {
	switch {
	case errors.Is(err, core.ErrPlanNotFound):
		writeError(w, http.StatusNotFound, "budget plan not found")
	case errors.Is(err, core.ErrInvalidMonth):
		writeError(w, http.StatusBadRequest, "month must be between 1 and 12")
	default:
		log.FromContext(r.Context()).ErrorContext(r.Context(), msg, log.FieldError, err, log.FieldPlanID, planID)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("Response encoding failed", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, struct {
		Error string `json:"error"`
	}{Error: message})
}
