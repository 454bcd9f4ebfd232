package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/dvloznov/techmart-analytics/internal/api/middleware"
	"github.com/dvloznov/techmart-analytics/internal/insights"
	"github.com/dvloznov/techmart-analytics/internal/jobs"
)

// Deps are the collaborators the HTTP surface needs.
type Deps struct {
	Data       DatasetProvider
	Publisher  jobs.Publisher
	JobStore   jobs.JobStore
	Summarizer insights.Summarizer
	Log        zerolog.Logger
}

func allow(method string, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != method {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}
		h(w, r)
	}
}

// NewRouter registers every endpoint on a new ServeMux.
func NewRouter(d Deps) *http.ServeMux {
	analytics := NewAnalyticsHandler(d.Data, d.Log)
	datasetHandler := NewDatasetHandler(d.Data, d.Publisher, d.Log)
	jobsHandler := NewJobsHandler(d.JobStore, d.Log)
	insightsHandler := NewInsightsHandler(d.Data, d.Summarizer, d.Log)

	mux := http.NewServeMux()

	mux.HandleFunc("/api/dashboard", allow(http.MethodGet, analytics.Dashboard))
	mux.HandleFunc("/api/kpis", allow(http.MethodGet, analytics.KPIs))
	mux.HandleFunc("/api/filters", allow(http.MethodGet, analytics.Filters))

	mux.HandleFunc("/api/views/", allow(http.MethodGet, func(w http.ResponseWriter, r *http.Request) {
		kind := strings.TrimPrefix(r.URL.Path, "/api/views/")
		if kind == "" {
			middleware.WriteError(w, http.StatusBadRequest, "View kind is required")
			return
		}
		analytics.View(w, r, kind)
	}))

	mux.HandleFunc("/api/dataset", allow(http.MethodGet, datasetHandler.Status))
	mux.HandleFunc("/api/refresh", allow(http.MethodPost, datasetHandler.Refresh))

	mux.HandleFunc("/api/jobs", allow(http.MethodGet, jobsHandler.ListJobs))
	mux.HandleFunc("/api/jobs/", allow(http.MethodGet, func(w http.ResponseWriter, r *http.Request) {
		jobID := strings.TrimPrefix(r.URL.Path, "/api/jobs/")
		if jobID == "" {
			middleware.WriteError(w, http.StatusBadRequest, "Job ID is required")
			return
		}
		jobsHandler.GetJob(w, r, jobID)
	}))

	mux.HandleFunc("/api/insights", allow(http.MethodGet, insightsHandler.Summary))

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteJSON(w, http.StatusOK, map[string]string{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	return mux
}
