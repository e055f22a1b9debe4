// Eventrec - Event Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventrec

package api

import (
	"context"
	"errors"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/tomtom215/eventrec/internal/recommend/storage"
	"github.com/tomtom215/eventrec/internal/supervisor/services"
	"github.com/tomtom215/eventrec/internal/validation"
)

// Report kinds served by the API.
const (
	KindSimulation = "simulation"
	KindEvaluation = "evaluation"
)

// Pinger checks store connectivity. Satisfied by *database.DB.
type Pinger interface {
	Ping(ctx context.Context) error
}

// RunReporter exposes the last scheduled production run.
// Satisfied by *services.RecommendService.
type RunReporter interface {
	LastRun() (services.RunStatus, bool)
}

// Handler serves the read-only report API.
type Handler struct {
	db        Pinger
	stores    map[string]*storage.ReportStore
	runs      RunReporter
	startTime time.Time
}

// NewHandler creates a handler. stores maps a report kind to its store;
// runs may be nil when no scheduler is running.
func NewHandler(db Pinger, stores map[string]*storage.ReportStore, runs RunReporter) *Handler {
	return &Handler{db: db, stores: stores, runs: runs, startTime: time.Now()}
}

// HealthStatus is the /healthz body.
type HealthStatus struct {
	Status            string     `json:"status"`
	DatabaseConnected bool       `json:"database_connected"`
	Uptime            float64    `json:"uptime_seconds"`
	LastRunAt         *time.Time `json:"last_run_at,omitempty"`
	LastRunError      string     `json:"last_run_error,omitempty"`
	LastRunRecs       *int       `json:"last_run_recommendations,omitempty"`
}

// Health reports store connectivity and the last production run. A store
// that cannot be pinged makes the service unavailable.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	health := HealthStatus{
		Status:            "healthy",
		DatabaseConnected: h.db != nil && h.db.Ping(ctx) == nil,
		Uptime:            time.Since(h.startTime).Seconds(),
	}
	if h.runs != nil {
		if run, ok := h.runs.LastRun(); ok {
			health.LastRunAt = &run.StartedAt
			if run.Err != nil {
				health.LastRunError = run.Err.Error()
			} else {
				health.LastRunRecs = &run.Result.TotalRecs
			}
		}
	}

	status := http.StatusOK
	if !health.DatabaseConnected {
		health.Status = "unavailable"
		status = http.StatusServiceUnavailable
	}
	NewResponseWriter(w, r).Status(status, health)
}

// ReportEntry describes one stored report.
type ReportEntry struct {
	Kind     string    `json:"kind"`
	Name     string    `json:"name"`
	Size     int64     `json:"size"`
	Modified time.Time `json:"modified"`
}

type listReportsRequest struct {
	Kind  string `json:"kind" validate:"omitempty,oneof=simulation evaluation"`
	Limit int    `json:"limit" validate:"gte=0,lte=1000"`
}

// ListReports lists reports newest first, optionally filtered by kind and
// truncated to limit.
func (h *Handler) ListReports(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	req := listReportsRequest{Kind: r.URL.Query().Get("kind")}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			rw.BadRequest("limit must be an integer")
			return
		}
		req.Limit = limit
	}
	if verr := validation.ValidateStruct(req); verr != nil {
		rw.ValidationError(verr)
		return
	}

	entries := []ReportEntry{}
	for _, kind := range h.kinds(req.Kind) {
		reports, err := h.stores[kind].List()
		if err != nil {
			rw.InternalError(err)
			return
		}
		for _, rep := range reports {
			entries = append(entries, ReportEntry{Kind: kind, Name: rep.Name, Size: rep.Size, Modified: rep.Modified})
		}
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Modified.After(entries[j].Modified)
	})
	if req.Limit > 0 && len(entries) > req.Limit {
		entries = entries[:req.Limit]
	}

	rw.List(entries, len(entries))
}

type getReportRequest struct {
	Name string `json:"name" validate:"required,max=255"`
	Kind string `json:"kind" validate:"omitempty,oneof=simulation evaluation"`
}

// GetReport returns a report's JSON content. Without a kind query
// parameter every store is searched, simulation first.
func (h *Handler) GetReport(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	req := getReportRequest{Name: chi.URLParam(r, "name"), Kind: r.URL.Query().Get("kind")}
	if verr := validation.ValidateStruct(req); verr != nil {
		rw.ValidationError(verr)
		return
	}

	for _, kind := range h.kinds(req.Kind) {
		data, err := h.stores[kind].Read(req.Name)
		switch {
		case err == nil:
			rw.Success(map[string]interface{}{
				"kind":   kind,
				"name":   req.Name,
				"report": json.RawMessage(data),
			})
			return
		case errors.Is(err, storage.ErrInvalidName):
			rw.BadRequest(err.Error())
			return
		case errors.Is(err, storage.ErrReportNotFound):
			continue
		default:
			rw.InternalError(err)
			return
		}
	}
	rw.NotFound("report not found: " + req.Name)
}

// kinds returns the configured kinds to search, in a fixed order.
func (h *Handler) kinds(only string) []string {
	var out []string
	for _, kind := range []string{KindSimulation, KindEvaluation} {
		if _, ok := h.stores[kind]; !ok {
			continue
		}
		if only != "" && only != kind {
			continue
		}
		out = append(out, kind)
	}
	return out
}
