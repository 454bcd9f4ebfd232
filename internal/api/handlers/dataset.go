package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/dvloznov/techmart-analytics/internal/api/middleware"
	"github.com/dvloznov/techmart-analytics/internal/dataset"
	"github.com/dvloznov/techmart-analytics/internal/jobs"
)

// DatasetHandler reports on and refreshes the cached dataset.
type DatasetHandler struct {
	data      DatasetProvider
	publisher jobs.Publisher
	log       zerolog.Logger
}

// NewDatasetHandler creates a new dataset handler. publisher may be nil, in
// which case asynchronous refreshes are rejected.
func NewDatasetHandler(data DatasetProvider, publisher jobs.Publisher, log zerolog.Logger) *DatasetHandler {
	return &DatasetHandler{data: data, publisher: publisher, log: log}
}

// Status handles GET /api/dataset
func (h *DatasetHandler) Status(w http.ResponseWriter, r *http.Request) {
	middleware.WriteJSON(w, http.StatusOK, h.data.Status())
}

// Refresh handles POST /api/refresh
func (h *DatasetHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	async, _ := strconv.ParseBool(r.URL.Query().Get("async"))
	if async {
		h.enqueue(w, r)
		return
	}

	rs, err := h.data.Refresh(ctx)
	switch {
	case err == nil:
	case dataset.IsEmptyDataset(err):
		middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
			"warning": NoDataWarning,
			"status":  h.data.Status(),
		})
		return
	case rs != nil:
		h.log.Warn().Err(err).Msg("Refresh failed, previous snapshot kept")
		w.Header().Set(StaleHeader, "true")
		middleware.WriteJSON(w, http.StatusBadGateway, map[string]interface{}{
			"error":  "Refresh failed: " + err.Error(),
			"status": h.data.Status(),
		})
		return
	default:
		h.log.Error().Err(err).Msg("Refresh failed")
		middleware.WriteError(w, http.StatusServiceUnavailable, "Dataset unavailable: "+err.Error())
		return
	}

	h.log.Info().Str("snapshot_id", rs.ID.String()).Int("rows", rs.Len()).Msg("Dataset refreshed on request")
	middleware.WriteJSON(w, http.StatusOK, h.data.Status())
}

func (h *DatasetHandler) enqueue(w http.ResponseWriter, r *http.Request) {
	if h.publisher == nil {
		middleware.WriteError(w, http.StatusServiceUnavailable, "Background refresh is not available")
		return
	}

	job := &jobs.RefreshJob{Reason: "api:" + middleware.RequestIDFromContext(r.Context())}
	if err := h.publisher.PublishRefresh(r.Context(), job); err != nil {
		h.log.Error().Err(err).Msg("Failed to enqueue refresh job")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to enqueue refresh job")
		return
	}

	h.log.Info().Str("job_id", job.JobID).Msg("Refresh job enqueued")

	middleware.WriteJSON(w, http.StatusAccepted, map[string]string{
		"job_id": job.JobID,
		"status": string(job.Status),
	})
}

// RefreshJobHandler returns the job handler that reloads data. Empty
// datasets count as success; the job records zero rows.
func RefreshJobHandler(data DatasetProvider, log zerolog.Logger) jobs.JobHandler {
	return func(ctx context.Context, job *jobs.RefreshJob) error {
		log.Info().Str("job_id", job.JobID).Str("reason", job.Reason).Msg("Processing refresh job")

		rs, err := data.Refresh(ctx)
		if err != nil && !dataset.IsEmptyDataset(err) {
			return err
		}
		if rs == nil {
			return fmt.Errorf("RefreshJobHandler: no snapshot after refresh")
		}
		job.SnapshotID = rs.ID.String()
		job.RowCount = rs.Len()
		return nil
	}
}
