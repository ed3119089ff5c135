// Package api exposes the screener over REST: cached snapshots,
// on-demand scans, universe management and market status.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/mohamedamin/halal-screener/internal/data"
	"github.com/mohamedamin/halal-screener/internal/models"
	"github.com/mohamedamin/halal-screener/internal/scan"
	"github.com/mohamedamin/halal-screener/internal/storage"
	"github.com/mohamedamin/halal-screener/pkg/logger"
)

// HistoryReader serves persisted snapshot history. Nil when the
// storage sink is disabled.
type HistoryReader interface {
	History(ctx context.Context, symbol string, limit int) ([]storage.HistoryRow, error)
}

// ScreenerHandler handles the screener endpoints.
type ScreenerHandler struct {
	cache          scan.SnapshotCache
	orchestrator   *scan.Orchestrator
	universe       *scan.Universe
	provider       data.Provider
	history        HistoryReader
	exchangeSuffix string
}

// NewScreenerHandler creates a screener handler. history may be nil.
func NewScreenerHandler(
	cache scan.SnapshotCache,
	orchestrator *scan.Orchestrator,
	universe *scan.Universe,
	provider data.Provider,
	history HistoryReader,
	exchangeSuffix string,
) *ScreenerHandler {
	return &ScreenerHandler{
		cache:          cache,
		orchestrator:   orchestrator,
		universe:       universe,
		provider:       provider,
		history:        history,
		exchangeSuffix: exchangeSuffix,
	}
}

// RunScan handles GET /api/v1/scan. It runs a full pass synchronously
// and returns the fresh results, ranked by score.
func (h *ScreenerHandler) RunScan(w http.ResponseWriter, r *http.Request) {
	result := h.orchestrator.RunPass(r.Context(), h.universe.Symbols())

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"passId":    result.PassID,
		"total":     result.Total,
		"succeeded": result.Succeeded,
		"skipped":   result.Skipped,
		"elapsedMs": result.Elapsed.Milliseconds(),
		"stocks":    rankSnapshots(result.Snapshots),
	})
}

// ListStocks handles GET /api/v1/stocks, serving the latest cached
// snapshots ranked by score.
func (h *ScreenerHandler) ListStocks(w http.ResponseWriter, r *http.Request) {
	snapshots, err := h.rankedSnapshots()
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to read snapshots")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"stocks": snapshots,
		"count":  len(snapshots),
	})
}

// GetStock handles GET /api/v1/stocks/{symbol}.
func (h *ScreenerHandler) GetStock(w http.ResponseWriter, r *http.Request) {
	symbol := data.CleanSymbol(mux.Vars(r)["symbol"], h.exchangeSuffix)

	snapshot, err := h.cache.Get(symbol)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to read snapshot")
		return
	}
	if snapshot == nil {
		respondWithError(w, http.StatusNotFound, "Symbol not scanned")
		return
	}

	respondWithJSON(w, http.StatusOK, snapshot)
}

// GetStockHistory handles GET /api/v1/stocks/{symbol}/history.
func (h *ScreenerHandler) GetStockHistory(w http.ResponseWriter, r *http.Request) {
	if h.history == nil {
		respondWithError(w, http.StatusNotFound, "Snapshot history is not enabled")
		return
	}

	symbol := data.CleanSymbol(mux.Vars(r)["symbol"], h.exchangeSuffix)

	limit := 30
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if n, err := strconv.Atoi(limitStr); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}

	rows, err := h.history.History(r.Context(), symbol, limit)
	if err != nil {
		logger.Error("Failed to read snapshot history",
			logger.String("symbol", symbol),
			logger.ErrorField(err),
		)
		respondWithError(w, http.StatusInternalServerError, "Failed to read snapshot history")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"symbol":  symbol,
		"history": rows,
		"count":   len(rows),
	})
}

// GetStockList handles GET /api/v1/stocklist.
func (h *ScreenerHandler) GetStockList(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, h.universe.Info(h.exchangeSuffix))
}

type stockListRequest struct {
	Name    string   `json:"name"`
	Symbols []string `json:"symbols"`
}

// UpdateStockList handles PUT /api/v1/stocklist, replacing the active
// universe.
func (h *ScreenerHandler) UpdateStockList(w http.ResponseWriter, r *http.Request) {
	var req stockListRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	symbols := make([]string, 0, len(req.Symbols))
	for _, s := range req.Symbols {
		s = strings.TrimSpace(s)
		if s != "" {
			symbols = append(symbols, s)
		}
	}
	if len(symbols) == 0 {
		respondWithError(w, http.StatusBadRequest, "Symbol list cannot be empty")
		return
	}
	if req.Name == "" {
		req.Name = "custom"
	}

	h.universe.Replace(req.Name, symbols, "user")
	logger.Info("Stock list replaced",
		logger.String("name", req.Name),
		logger.Int("symbols", len(symbols)),
	)

	respondWithJSON(w, http.StatusOK, h.universe.Info(h.exchangeSuffix))
}

// ResetStockList handles DELETE /api/v1/stocklist, restoring the
// default universe.
func (h *ScreenerHandler) ResetStockList(w http.ResponseWriter, r *http.Request) {
	h.universe.Reset()
	respondWithJSON(w, http.StatusOK, h.universe.Info(h.exchangeSuffix))
}

// GetMarketStatus handles GET /api/v1/market/status.
func (h *ScreenerHandler) GetMarketStatus(w http.ResponseWriter, r *http.Request) {
	status, err := h.provider.GetMarketStatus(r.Context())
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to get market status")
		return
	}
	respondWithJSON(w, http.StatusOK, status)
}

// Health handles GET /health.
func (h *ScreenerHandler) Health(w http.ResponseWriter, r *http.Request) {
	snapshots, err := h.cache.Len()
	if err != nil {
		respondWithError(w, http.StatusServiceUnavailable, "Snapshot cache unavailable")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "ok",
		"provider":  h.provider.GetName(),
		"symbols":   len(h.universe.Symbols()),
		"snapshots": snapshots,
		"scanning":  h.orchestrator.IsRunning(),
	})
}

// rankedSnapshots returns all cached snapshots, ranked.
func (h *ScreenerHandler) rankedSnapshots() ([]*models.Snapshot, error) {
	all, err := h.cache.All()
	if err != nil {
		return nil, err
	}
	return rankSnapshots(all), nil
}

// rankSnapshots orders snapshots by final score descending, symbol
// ascending for equal scores.
func rankSnapshots(snapshots []*models.Snapshot) []*models.Snapshot {
	sort.Slice(snapshots, func(i, j int) bool {
		if snapshots[i].Technicals.FinalScore != snapshots[j].Technicals.FinalScore {
			return snapshots[i].Technicals.FinalScore > snapshots[j].Technicals.FinalScore
		}
		return snapshots[i].Symbol < snapshots[j].Symbol
	})
	return snapshots
}
