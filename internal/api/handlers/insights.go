package handlers

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/dvloznov/techmart-analytics/internal/api/middleware"
	"github.com/dvloznov/techmart-analytics/internal/insights"
	"github.com/dvloznov/techmart-analytics/internal/pipeline"
)

// InsightsHandler serves a narrative summary of the filtered dashboard.
type InsightsHandler struct {
	data       DatasetProvider
	summarizer insights.Summarizer
	log        zerolog.Logger
}

// NewInsightsHandler creates a new insights handler. A nil summarizer
// disables the endpoint.
func NewInsightsHandler(data DatasetProvider, summarizer insights.Summarizer, log zerolog.Logger) *InsightsHandler {
	return &InsightsHandler{data: data, summarizer: summarizer, log: log}
}

// Summary handles GET /api/insights
func (h *InsightsHandler) Summary(w http.ResponseWriter, r *http.Request) {
	if h.summarizer == nil {
		middleware.WriteError(w, http.StatusServiceUnavailable, insights.ErrDisabled.Error())
		return
	}

	query := r.URL.Query()
	filters, err := ParseFilters(query)
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	period, err := pipeline.ParseRollupPeriod(query.Get(ParamRollup))
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	rs, info, ok := snapshot(w, r, h.data, h.log)
	if !ok {
		return
	}

	d, err := pipeline.BuildDashboard(rs.Rows(), filters, pipeline.DrillMonthly, period)
	if err != nil {
		writePipelineError(w, h.log, err)
		return
	}

	summary, err := h.summarizer.Summarize(r.Context(), d)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to summarize dashboard")
		middleware.WriteError(w, http.StatusBadGateway, "Failed to generate insights")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"dataset": info,
		"summary": summary,
	})
}
