package http

import (
	"Linkfolio-Backend/internal/analytics"
	"Linkfolio-Backend/internal/repository"
	"net/http"

	"go.uber.org/zap"
)

// AnalyticsHandler serves the authenticated analytics endpoints.
type AnalyticsHandler struct {
	storage repository.Storage
	summary *analytics.SummaryService
	log     *zap.Logger
}

// NewAnalyticsHandler creates a new analytics handler.
func NewAnalyticsHandler(storage repository.Storage, summary *analytics.SummaryService, log *zap.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{
		storage: storage,
		summary: summary,
		log:     log,
	}
}

// GetSummary returns the analytics dashboard payload
//
//	@Summary		Get the analytics summary
//	@Description	Aggregated click counts, referrers and daily history for the profile
//	@Tags			Analytics
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	analytics.Summary	"Dashboard aggregation"
//	@Failure		401	{object}	map[string]string	"Authentication required"
//	@Router			/api/analytics/summary [get]
func (h *AnalyticsHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	profile, err := profileFromRequest(r, h.storage)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	summary, err := h.summary.GetSummary(r.Context(), profile.ID)
	if err != nil {
		h.log.Error("failed to build analytics summary",
			zap.String("profile_id", profile.ID),
			zap.Error(err))
		writeServiceError(w, err)
		return
	}
	writeJSON(w, summary, http.StatusOK)
}
