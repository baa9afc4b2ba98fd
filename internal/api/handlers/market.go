package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/skinfolio/skinfolio/internal/contracts"
	"github.com/skinfolio/skinfolio/pkg/logger"
)

const defaultAuditLimit = 50

// MarketHandler serves the read-only market data endpoints.
type MarketHandler struct {
	items  contracts.ItemRepository
	snaps  contracts.SnapshotRepository
	logger *logger.Logger
}

// NewMarketHandler creates the read-surface handler.
func NewMarketHandler(items contracts.ItemRepository, snaps contracts.SnapshotRepository, log *logger.Logger) *MarketHandler {
	return &MarketHandler{items: items, snaps: snaps, logger: log}
}

type itemResponse struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	Rarity     string `json:"rarity"`
	Category   string `json:"category"`
	ImageURL   string `json:"image_url,omitempty"`
	ListingURL string `json:"listing_url,omitempty"`
	Thesis     string `json:"thesis,omitempty"`
}

// ListItems returns the tracked universe.
// GET /items
func (h *MarketHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	items, err := h.items.List(r.Context())
	if err != nil {
		h.logger.WithError(err).Error("failed to list items")
		respondError(w, http.StatusInternalServerError, "failed to list items")
		return
	}

	out := make([]itemResponse, len(items))
	for i, item := range items {
		out[i] = itemResponse{
			ID:         item.ID,
			Name:       item.Name,
			Rarity:     item.Rarity,
			Category:   item.Category,
			ImageURL:   item.ImageURL,
			ListingURL: item.ListingURL,
			Thesis:     item.Thesis,
		}
	}
	respondJSON(w, http.StatusOK, out)
}

type snapshotResponse struct {
	ItemID    int64   `json:"item_id"`
	Date      string  `json:"date"`
	PriceUSD  float64 `json:"price_usd"`
	Volume24h int64   `json:"volume_24h"`
	Source    string  `json:"source"`
	Verified  bool    `json:"verified"`
}

func toSnapshotResponse(s contracts.Snapshot) snapshotResponse {
	return snapshotResponse{
		ItemID:    s.ItemID,
		Date:      s.Date.Format("2006-01-02"),
		PriceUSD:  s.PriceUSD,
		Volume24h: s.Volume24h,
		Source:    string(s.Source),
		Verified:  s.Verified,
	}
}

// GetHistory returns one item's snapshots ascending by date.
// GET /history/{id}
func (h *MarketHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	if _, err := h.items.GetByID(ctx, id); err != nil {
		if errors.Is(err, contracts.ErrNotFound) {
			respondError(w, http.StatusNotFound, "item not found")
			return
		}
		h.logger.WithError(err).Error("failed to load item")
		respondError(w, http.StatusInternalServerError, "failed to load item")
		return
	}

	history, err := h.snaps.History(ctx, id)
	if err != nil {
		h.logger.WithError(err).Error("failed to load history")
		respondError(w, http.StatusInternalServerError, "failed to load history")
		return
	}

	out := make([]snapshotResponse, len(history))
	for i, s := range history {
		out[i] = toSnapshotResponse(s)
	}
	respondJSON(w, http.StatusOK, out)
}

// AuditSummary returns aggregate counts over the stored dataset.
// GET /audit/summary
func (h *MarketHandler) AuditSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.snaps.AuditSummary(r.Context())
	if err != nil {
		h.logger.WithError(err).Error("failed to build audit summary")
		respondError(w, http.StatusInternalServerError, "failed to build audit summary")
		return
	}
	respondJSON(w, http.StatusOK, summary)
}

// AuditSnapshots returns the newest raw rows for inspection.
// GET /audit/snapshots?limit=50
func (h *MarketHandler) AuditSnapshots(w http.ResponseWriter, r *http.Request) {
	limit := defaultAuditLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			respondError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = parsed
	}

	recent, err := h.snaps.Recent(r.Context(), limit)
	if err != nil {
		h.logger.WithError(err).Error("failed to load recent snapshots")
		respondError(w, http.StatusInternalServerError, "failed to load recent snapshots")
		return
	}

	out := make([]snapshotResponse, len(recent))
	for i, s := range recent {
		out[i] = toSnapshotResponse(s)
	}
	respondJSON(w, http.StatusOK, out)
}
