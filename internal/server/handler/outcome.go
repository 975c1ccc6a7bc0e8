package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/sokomjinga/sokomjinga-api/internal/domain"
)

// OutcomeService defines the methods that the outcome handler requires
// from the service layer.
type OutcomeService interface {
	AddOutcome(ctx context.Context, marketID string, in domain.CreateOutcomeInput) (domain.Outcome, error)
	UpdateOutcome(ctx context.Context, marketID, outcomeID string, patch domain.OutcomePatch) (domain.Outcome, error)
	DeleteOutcome(ctx context.Context, marketID, outcomeID string) error
}

// OutcomeHandler serves outcome HTTP endpoints nested under a market.
type OutcomeHandler struct {
	outcomes OutcomeService
	logger   *slog.Logger
}

// NewOutcomeHandler creates an OutcomeHandler with the given service and logger.
func NewOutcomeHandler(outcomes OutcomeService, logger *slog.Logger) *OutcomeHandler {
	return &OutcomeHandler{
		outcomes: outcomes,
		logger:   logger,
	}
}

// AddOutcome creates an outcome under an existing market.
// POST /markets/{id}/outcomes
func (h *OutcomeHandler) AddOutcome(w http.ResponseWriter, r *http.Request) {
	marketID := pathParam(r, "id")

	var in domain.CreateOutcomeInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	outcome, err := h.outcomes.AddOutcome(r.Context(), marketID, in)
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
		h.logger.ErrorContext(r.Context(), "handler: add outcome failed",
			slog.String("market_id", marketID),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to add outcome")
		return
	}

	writeJSON(w, http.StatusCreated, outcome)
}

// UpdateOutcome applies a partial patch to an outcome. The lookup is
// scoped jointly by market and outcome id, so an outcome under a different
// market is not found.
// PUT /markets/{id}/outcomes/{oid}
func (h *OutcomeHandler) UpdateOutcome(w http.ResponseWriter, r *http.Request) {
	marketID := pathParam(r, "id")
	outcomeID := pathParam(r, "oid")

	var patch domain.OutcomePatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	outcome, err := h.outcomes.UpdateOutcome(r.Context(), marketID, outcomeID, patch)
	if err != nil {
		var ve *domain.ValidationError
		if errors.As(err, &ve) {
			writeError(w, http.StatusBadRequest, ve.Message)
			return
		}
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "outcome not found")
			return
		}
		h.logger.ErrorContext(r.Context(), "handler: update outcome failed",
			slog.String("market_id", marketID),
			slog.String("outcome_id", outcomeID),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to update outcome")
		return
	}

	writeJSON(w, http.StatusOK, outcome)
}

// DeleteOutcome removes an outcome, scoped jointly by market and outcome id.
// DELETE /markets/{id}/outcomes/{oid}
func (h *OutcomeHandler) DeleteOutcome(w http.ResponseWriter, r *http.Request) {
	marketID := pathParam(r, "id")
	outcomeID := pathParam(r, "oid")

	if err := h.outcomes.DeleteOutcome(r.Context(), marketID, outcomeID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "outcome not found")
			return
		}
		h.logger.ErrorContext(r.Context(), "handler: delete outcome failed",
			slog.String("market_id", marketID),
			slog.String("outcome_id", outcomeID),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to delete outcome")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
