package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/sokomjinga/sokomjinga-api/internal/domain"
)

// MarketService defines the methods that the market handler requires from
// the service layer. It is declared locally so the handler package does not
// depend on the concrete service implementation.
type MarketService interface {
	ListMarkets(ctx context.Context) ([]domain.Market, error)
	GetMarket(ctx context.Context, id string) (domain.Market, error)
	CreateMarket(ctx context.Context, in domain.CreateMarketInput) (domain.Market, error)
	UpdateMarket(ctx context.Context, id string, patch domain.MarketPatch) (domain.Market, error)
	DeleteMarket(ctx context.Context, id string) error
}

// MarketHandler serves market HTTP endpoints.
type MarketHandler struct {
	markets MarketService
	logger  *slog.Logger
}

// NewMarketHandler creates a MarketHandler with the given service and logger.
func NewMarketHandler(markets MarketService, logger *slog.Logger) *MarketHandler {
	return &MarketHandler{
		markets: markets,
		logger:  logger,
	}
}

// ListMarkets returns every market with its outcomes, newest first.
// GET /markets
func (h *MarketHandler) ListMarkets(w http.ResponseWriter, r *http.Request) {
	markets, err := h.markets.ListMarkets(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: list markets failed",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to list markets")
		return
	}

	if markets == nil {
		markets = []domain.Market{}
	}
	writeJSON(w, http.StatusOK, markets)
}

// GetMarket returns a single market by its ID.
// GET /markets/{id}
func (h *MarketHandler) GetMarket(w http.ResponseWriter, r *http.Request) {
	id := pathParam(r, "id")

	market, err := h.markets.GetMarket(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "market not found")
			return
		}
		h.logger.ErrorContext(r.Context(), "handler: get market failed",
			slog.String("market_id", id),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to get market")
		return
	}

	writeJSON(w, http.StatusOK, market)
}

// CreateMarket creates a market from a JSON body. Only title is required.
// POST /markets
func (h *MarketHandler) CreateMarket(w http.ResponseWriter, r *http.Request) {
	var in domain.CreateMarketInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	market, err := h.markets.CreateMarket(r.Context(), in)
	if err != nil {
		var ve *domain.ValidationError
		if errors.As(err, &ve) {
			writeError(w, http.StatusBadRequest, ve.Message)
			return
		}
		h.logger.ErrorContext(r.Context(), "handler: create market failed",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to create market")
		return
	}

	writeJSON(w, http.StatusCreated, market)
}

// UpdateMarket applies a partial patch to a market.
// PUT /markets/{id}
func (h *MarketHandler) UpdateMarket(w http.ResponseWriter, r *http.Request) {
	id := pathParam(r, "id")

	var patch domain.MarketPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	market, err := h.markets.UpdateMarket(r.Context(), id, patch)
	if err != nil {
		var ve *domain.ValidationError
		if errors.As(err, &ve) {
			writeError(w, http.StatusBadRequest, ve.Message)
			return
		}
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "market not found")
			return
		}
		h.logger.ErrorContext(r.Context(), "handler: update market failed",
			slog.String("market_id", id),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to update market")
		return
	}

	writeJSON(w, http.StatusOK, market)
}

// DeleteMarket removes a market and all of its outcomes.
// DELETE /markets/{id}
func (h *MarketHandler) DeleteMarket(w http.ResponseWriter, r *http.Request) {
	id := pathParam(r, "id")

	if err := h.markets.DeleteMarket(r.Context(), id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "market not found")
			return
		}
		h.logger.ErrorContext(r.Context(), "handler: delete market failed",
			slog.String("market_id", id),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to delete market")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
