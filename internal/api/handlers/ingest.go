package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/skinfolio/skinfolio/internal/contracts"
	"github.com/skinfolio/skinfolio/internal/ingest"
	"github.com/skinfolio/skinfolio/pkg/logger"
)

const defaultBackfillDays = 30

// IngestHandler exposes the write-side pipeline triggers.
type IngestHandler struct {
	pipeline *ingest.Pipeline
	logger   *logger.Logger
}

// NewIngestHandler creates the ingestion trigger handler.
func NewIngestHandler(pipeline *ingest.Pipeline, log *logger.Logger) *IngestHandler {
	return &IngestHandler{pipeline: pipeline, logger: log}
}

// Track runs a sync of today's prices.
// POST /track
func (h *IngestHandler) Track(w http.ResponseWriter, r *http.Request) {
	result, err := h.pipeline.Sync(r.Context())
	if err != nil {
		h.logger.WithError(err).Error("sync failed")
		respondError(w, http.StatusInternalServerError, "sync failed")
		return
	}
	respondJSON(w, http.StatusOK, result)
}

type backfillRequest struct {
	Days int `json:"days"`
}

// Backfill fills historical snapshots.
// POST /backfill {"days": 30}
func (h *IngestHandler) Backfill(w http.ResponseWriter, r *http.Request) {
	days, ok := h.parseDays(w, r)
	if !ok {
		return
	}

	result, err := h.pipeline.Backfill(r.Context(), days)
	if err != nil {
		if contracts.IsValidation(err) {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.WithError(err).Error("backfill failed")
		respondError(w, http.StatusInternalServerError, "backfill failed")
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// Rebuild wipes and re-ingests the whole dataset.
// POST /maintenance/rebuild {"days": 30}
func (h *IngestHandler) Rebuild(w http.ResponseWriter, r *http.Request) {
	days, ok := h.parseDays(w, r)
	if !ok {
		return
	}

	result, err := h.pipeline.Rebuild(r.Context(), days)
	if err != nil {
		if contracts.IsValidation(err) {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.WithError(err).Error("rebuild failed")
		respondError(w, http.StatusInternalServerError, "rebuild failed")
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// EnrichImages resolves missing item icons.
// POST /maintenance/enrich-images
func (h *IngestHandler) EnrichImages(w http.ResponseWriter, r *http.Request) {
	updated, err := h.pipeline.EnrichImages(r.Context())
	if err != nil {
		h.logger.WithError(err).Error("image enrichment failed")
		respondError(w, http.StatusInternalServerError, "image enrichment failed")
		return
	}
	respondJSON(w, http.StatusOK, map[string]int{"updated": updated})
}

// parseDays reads the optional request body; an empty body means the
// default window.
func (h *IngestHandler) parseDays(w http.ResponseWriter, r *http.Request) (int, bool) {
	var req backfillRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return 0, false
	}
	if req.Days == 0 {
		req.Days = defaultBackfillDays
	}
	if req.Days < 1 {
		respondError(w, http.StatusBadRequest, "days must be at least 1")
		return 0, false
	}
	return req.Days, true
}
