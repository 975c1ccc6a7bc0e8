package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sokomjinga/sokomjinga-api/internal/domain"
)

type stubOutcomeService struct {
	err          error
	lastMarketID string
	lastOutcome  string
	lastPatch    domain.OutcomePatch
}

func (s *stubOutcomeService) AddOutcome(_ context.Context, marketID string, in domain.CreateOutcomeInput) (domain.Outcome, error) {
	s.lastMarketID = marketID
	if s.err != nil {
		return domain.Outcome{}, s.err
	}
	return domain.Outcome{ID: "o1", MarketID: marketID, Label: in.Label, Status: "open"}, nil
}

func (s *stubOutcomeService) UpdateOutcome(_ context.Context, marketID, outcomeID string, patch domain.OutcomePatch) (domain.Outcome, error) {
	s.lastMarketID = marketID
	s.lastOutcome = outcomeID
	s.lastPatch = patch
	if s.err != nil {
		return domain.Outcome{}, s.err
	}
	return domain.Outcome{ID: outcomeID, MarketID: marketID, Label: "updated", Status: "open"}, nil
}

func (s *stubOutcomeService) DeleteOutcome(_ context.Context, marketID, outcomeID string) error {
	s.lastMarketID = marketID
	s.lastOutcome = outcomeID
	return s.err
}

func newOutcomeMux(svc OutcomeService) *http.ServeMux {
	h := NewOutcomeHandler(svc, testLogger())
	mux := http.NewServeMux()
	mux.HandleFunc("POST /markets/{id}/outcomes", h.AddOutcome)
	mux.HandleFunc("PUT /markets/{id}/outcomes/{oid}", h.UpdateOutcome)
	mux.HandleFunc("DELETE /markets/{id}/outcomes/{oid}", h.DeleteOutcome)
	return mux
}

func TestAddOutcome(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		svc := &stubOutcomeService{}
		mux := newOutcomeMux(svc)

		rec := doRequest(t, mux, http.MethodPost, "/markets/m1/outcomes", `{"label":"Yes","price_cents":6}`)
		require.Equal(t, http.StatusCreated, rec.Code)
		require.Equal(t, "m1", svc.lastMarketID)
		require.Equal(t, "Yes", decodeBody(t, rec)["label"])
	})

	t.Run("market_not_found", func(t *testing.T) {
		mux := newOutcomeMux(&stubOutcomeService{err: domain.ErrNotFound})

		rec := doRequest(t, mux, http.MethodPost, "/markets/missing/outcomes", `{"label":"Yes"}`)
		require.Equal(t, http.StatusNotFound, rec.Code)
		require.Equal(t, "market not found", decodeBody(t, rec)["error"])
	})

	t.Run("validation_error", func(t *testing.T) {
		mux := newOutcomeMux(&stubOutcomeService{err: domain.NewValidationError("label is required")})

		rec := doRequest(t, mux, http.MethodPost, "/markets/m1/outcomes", `{}`)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.Equal(t, "label is required", decodeBody(t, rec)["error"])
	})

	t.Run("malformed_json", func(t *testing.T) {
		mux := newOutcomeMux(&stubOutcomeService{})

		rec := doRequest(t, mux, http.MethodPost, "/markets/m1/outcomes", `{`)
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestUpdateOutcome(t *testing.T) {
	t.Run("both_ids_reach_service", func(t *testing.T) {
		svc := &stubOutcomeService{}
		mux := newOutcomeMux(svc)

		rec := doRequest(t, mux, http.MethodPut, "/markets/m1/outcomes/o1", `{"price_cents":null}`)
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "m1", svc.lastMarketID)
		require.Equal(t, "o1", svc.lastOutcome)
		require.True(t, svc.lastPatch.PriceCents.Set())
		require.True(t, svc.lastPatch.PriceCents.IsNull())
	})

	t.Run("not_found_under_other_market", func(t *testing.T) {
		mux := newOutcomeMux(&stubOutcomeService{err: domain.ErrNotFound})

		rec := doRequest(t, mux, http.MethodPut, "/markets/other/outcomes/o1", `{"label":"No"}`)
		require.Equal(t, http.StatusNotFound, rec.Code)
		require.Equal(t, "outcome not found", decodeBody(t, rec)["error"])
	})
}

func TestDeleteOutcome(t *testing.T) {
	t.Run("no_content", func(t *testing.T) {
		svc := &stubOutcomeService{}
		mux := newOutcomeMux(svc)

		rec := doRequest(t, mux, http.MethodDelete, "/markets/m1/outcomes/o1", "")
		require.Equal(t, http.StatusNoContent, rec.Code)
		require.Equal(t, "o1", svc.lastOutcome)
	})

	t.Run("not_found", func(t *testing.T) {
		mux := newOutcomeMux(&stubOutcomeService{err: domain.ErrNotFound})

		rec := doRequest(t, mux, http.MethodDelete, "/markets/m1/outcomes/missing", "")
		require.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestHealth(t *testing.T) {
	h := NewHealthHandler("sokomjinga-api", testLogger())
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", h.HealthCheck)

	rec := doRequest(t, mux, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, true, body["ok"])
	require.Equal(t, "sokomjinga-api", body["service"])
	require.NotEmpty(t, body["time"])
}
