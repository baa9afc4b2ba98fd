package handlers

import (
	"net/http"
	"strconv"

	"github.com/skinfolio/skinfolio/internal/scoring"
	"github.com/skinfolio/skinfolio/internal/simulation"
	"github.com/skinfolio/skinfolio/pkg/logger"
)

// StrategyHandler serves rankings and portfolio replays.
type StrategyHandler struct {
	scoring   *scoring.Service
	simulator *simulation.Simulator
	logger    *logger.Logger
}

// NewStrategyHandler creates the strategy handler.
func NewStrategyHandler(scoringSvc *scoring.Service, sim *simulation.Simulator, log *logger.Logger) *StrategyHandler {
	return &StrategyHandler{scoring: scoringSvc, simulator: sim, logger: log}
}

// Recommendations returns the current ranking.
// GET /recommendations?limit=5
func (h *StrategyHandler) Recommendations(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			respondError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = parsed
	}

	records, err := h.scoring.Recommendations(r.Context(), limit)
	if err != nil {
		h.logger.WithError(err).Error("ranking failed")
		respondError(w, http.StatusInternalServerError, "ranking failed")
		return
	}
	respondJSON(w, http.StatusOK, records)
}

// Simulation replays the strategy over stored history.
// GET /simulation/portfolio?capital=8000&top_n=5
func (h *StrategyHandler) Simulation(w http.ResponseWriter, r *http.Request) {
	capital := 0.0
	if raw := r.URL.Query().Get("capital"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil || parsed <= 0 {
			respondError(w, http.StatusBadRequest, "capital must be a positive number")
			return
		}
		capital = parsed
	}

	topN := 0
	if raw := r.URL.Query().Get("top_n"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			respondError(w, http.StatusBadRequest, "top_n must be a positive integer")
			return
		}
		topN = parsed
	}

	result, err := h.simulator.Run(r.Context(), capital, topN)
	if err != nil {
		h.logger.WithError(err).Error("simulation failed")
		respondError(w, http.StatusInternalServerError, "simulation failed")
		return
	}
	respondJSON(w, http.StatusOK, result)
}
