package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/dvloznov/techmart-analytics/internal/api/middleware"
	"github.com/dvloznov/techmart-analytics/internal/dataset"
	"github.com/dvloznov/techmart-analytics/internal/pipeline"
)

// StaleHeader is set when a response is computed from a snapshot that could
// not be refreshed.
const StaleHeader = "X-Dataset-Stale"

// NoDataWarning is returned instead of aggregations for an empty dataset.
const NoDataWarning = "No data available. Please verify your data source."

// DatasetProvider serves snapshots. *dataset.Cache implements it.
type DatasetProvider interface {
	Get(ctx context.Context) (*dataset.RowSet, error)
	Refresh(ctx context.Context) (*dataset.RowSet, error)
	Status() dataset.Status
}

// DatasetInfo identifies the snapshot a response was computed from.
type DatasetInfo struct {
	SnapshotID string    `json:"snapshot_id"`
	Source     string    `json:"source"`
	LoadedAt   time.Time `json:"loaded_at"`
	Rows       int       `json:"rows"`
	Stale      bool      `json:"stale,omitempty"`
}

func datasetInfo(rs *dataset.RowSet, stale bool) DatasetInfo {
	return DatasetInfo{
		SnapshotID: rs.ID.String(),
		Source:     rs.Source,
		LoadedAt:   rs.LoadedAt,
		Rows:       rs.Len(),
		Stale:      stale,
	}
}

// snapshot resolves the current snapshot and writes the response itself
// when there is nothing to aggregate. ok is false in that case.
func snapshot(w http.ResponseWriter, r *http.Request, data DatasetProvider, log zerolog.Logger) (rs *dataset.RowSet, info DatasetInfo, ok bool) {
	rs, err := data.Get(r.Context())

	stale := false
	if err != nil && !dataset.IsEmptyDataset(err) {
		if rs == nil {
			log.Error().Err(err).Msg("Dataset unavailable")
			middleware.WriteError(w, http.StatusServiceUnavailable, "Dataset unavailable: "+err.Error())
			return nil, DatasetInfo{}, false
		}
		log.Warn().Err(err).Str("snapshot_id", rs.ID.String()).Msg("Serving stale dataset")
		w.Header().Set(StaleHeader, "true")
		stale = true
	}

	info = datasetInfo(rs, stale)
	if rs.Len() == 0 {
		middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
			"warning": NoDataWarning,
			"dataset": info,
		})
		return nil, DatasetInfo{}, false
	}

	return rs, info, true
}

// writePipelineError maps pipeline errors to 400 and anything else to 500.
func writePipelineError(w http.ResponseWriter, log zerolog.Logger, err error) {
	if errors.Is(err, pipeline.ErrInvalidFilter) || errors.Is(err, pipeline.ErrUnknownView) {
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	log.Error().Err(err).Msg("Aggregation failed")
	middleware.WriteError(w, http.StatusInternalServerError, "Aggregation failed")
}

// AnalyticsHandler serves the dashboard, single views, KPIs and filter
// domains.
type AnalyticsHandler struct {
	data DatasetProvider
	log  zerolog.Logger
}

// NewAnalyticsHandler creates a new analytics handler.
func NewAnalyticsHandler(data DatasetProvider, log zerolog.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{data: data, log: log}
}

// Dashboard handles GET /api/dashboard
func (h *AnalyticsHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	filters, err := ParseFilters(query)
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	level, err := pipeline.ParseDrillLevel(query.Get(ParamDrill))
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

	d, err := pipeline.BuildDashboard(rs.Rows(), filters, level, period)
	if err != nil {
		writePipelineError(w, h.log, err)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"dataset":   info,
		"filtered":  filters.Active(),
		"dashboard": d,
	})
}

// View handles GET /api/views/{kind}
func (h *AnalyticsHandler) View(w http.ResponseWriter, r *http.Request, kind string) {
	query := r.URL.Query()

	filters, err := ParseFilters(query)
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	granularity := query.Get(ParamLevel)
	if kind == pipeline.KindRollup {
		granularity = query.Get(ParamPeriod)
	}
	view, err := pipeline.ParseView(kind, granularity)
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	rs, info, ok := snapshot(w, r, h.data, h.log)
	if !ok {
		return
	}

	result, err := pipeline.Run(rs.Rows(), filters, view)
	if err != nil {
		writePipelineError(w, h.log, err)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"dataset":  info,
		"filtered": filters.Active(),
		"result":   result,
	})
}

// KPIs handles GET /api/kpis
func (h *AnalyticsHandler) KPIs(w http.ResponseWriter, r *http.Request) {
	filters, err := ParseFilters(r.URL.Query())
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	rs, info, ok := snapshot(w, r, h.data, h.log)
	if !ok {
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"dataset":  info,
		"filtered": filters.Active(),
		"kpis":     pipeline.ComputeKPIs(pipeline.Apply(rs.Rows(), filters)),
	})
}

// Filters handles GET /api/filters
func (h *AnalyticsHandler) Filters(w http.ResponseWriter, r *http.Request) {
	rs, info, ok := snapshot(w, r, h.data, h.log)
	if !ok {
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"dataset": info,
		"filters": pipeline.FilterDomains(rs.Rows(), values(r.URL.Query(), ParamCounty)),
	})
}
