package handlers

import (
	"net/http"

	"growbrain/internal/service"
)

// DashboardHandler serves the aggregated dashboard payload
type DashboardHandler struct {
	analytics *service.AnalyticsService
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(analytics *service.AnalyticsService) *DashboardHandler {
	return &DashboardHandler{analytics: analytics}
}

// GetDashboard handles GET /api/dashboard
func (h *DashboardHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	sc := GetScopeFromContext(r.Context())

	data, err := h.analytics.Dashboard(r.Context(), sc)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to load dashboard", "dashboard load failed", err)
		return
	}

	respondWithJSON(w, http.StatusOK, dashboardView(data))
}
