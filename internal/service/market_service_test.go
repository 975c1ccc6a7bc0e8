package service

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/sokomjinga/sokomjinga-api/internal/domain"
)

// fakeMarketStore records the last write and returns canned results.
type fakeMarketStore struct {
	created    domain.Market
	lastUpdate domain.MarketUpdate
	getErr     error
	deletedID  string
}

func (f *fakeMarketStore) Create(_ context.Context, m domain.Market) (domain.Market, error) {
	f.created = m
	m.CreatedAt = time.Now().UTC()
	m.UpdatedAt = m.CreatedAt
	m.Outcomes = []domain.Outcome{}
	return m, nil
}

func (f *fakeMarketStore) GetByID(_ context.Context, id string) (domain.Market, error) {
	if f.getErr != nil {
		return domain.Market{}, f.getErr
	}
	return domain.Market{ID: id, Title: "existing", Status: "open"}, nil
}

func (f *fakeMarketStore) List(context.Context) ([]domain.Market, error) {
	return nil, nil
}

func (f *fakeMarketStore) Update(_ context.Context, id string, upd domain.MarketUpdate) (domain.Market, error) {
	f.lastUpdate = upd
	return domain.Market{ID: id, Title: upd.Title.Or("existing"), Status: upd.Status.Or("open")}, nil
}

func (f *fakeMarketStore) Delete(_ context.Context, id string) error {
	f.deletedID = id
	return nil
}

type fakeOutcomeStore struct {
	created    domain.Outcome
	lastUpdate domain.OutcomeUpdate
}

func (f *fakeOutcomeStore) Create(_ context.Context, o domain.Outcome) (domain.Outcome, error) {
	f.created = o
	o.CreatedAt = time.Now().UTC()
	o.UpdatedAt = o.CreatedAt
	return o, nil
}

func (f *fakeOutcomeStore) GetByID(_ context.Context, marketID, outcomeID string) (domain.Outcome, error) {
	return domain.Outcome{ID: outcomeID, MarketID: marketID}, nil
}

func (f *fakeOutcomeStore) Update(_ context.Context, marketID, outcomeID string, upd domain.OutcomeUpdate) (domain.Outcome, error) {
	f.lastUpdate = upd
	return domain.Outcome{ID: outcomeID, MarketID: marketID, Label: upd.Label.Or("existing")}, nil
}

func (f *fakeOutcomeStore) Delete(context.Context, string, string) error {
	return nil
}

type recordingPublisher struct {
	events []string
}

func (p *recordingPublisher) Publish(event string, _ any) {
	p.events = append(p.events, event)
}

func newTestService(markets domain.MarketStore, outcomes domain.OutcomeStore, pub Publisher) *MarketService {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewMarketService(markets, outcomes, pub, logger)
}

func TestCreateMarket(t *testing.T) {
	desc := "a description"

	tests := []struct {
		name       string
		in         domain.CreateMarketInput
		wantErr    string
		wantStatus string
		check      func(t *testing.T, store *fakeMarketStore, m domain.Market)
	}{
		{
			name:       "minimal_input_defaults_status_open",
			in:         domain.CreateMarketInput{Title: "Will it rain?"},
			wantStatus: "open",
		},
		{
			name:    "missing_title",
			in:      domain.CreateMarketInput{},
			wantErr: "title is required",
		},
		{
			name:    "whitespace_title",
			in:      domain.CreateMarketInput{Title: "   "},
			wantErr: "title is required",
		},
		{
			name:       "title_is_trimmed",
			in:         domain.CreateMarketInput{Title: "  padded  "},
			wantStatus: "open",
			check: func(t *testing.T, store *fakeMarketStore, m domain.Market) {
				require.Equal(t, "padded", m.Title)
			},
		},
		{
			name:       "explicit_status_kept",
			in:         domain.CreateMarketInput{Title: "t", Status: "closed"},
			wantStatus: "closed",
		},
		{
			name:       "optional_fields_pass_through",
			in:         domain.CreateMarketInput{Title: "t", Description: &desc},
			wantStatus: "open",
			check: func(t *testing.T, store *fakeMarketStore, m domain.Market) {
				require.NotNil(t, m.Description)
				require.Equal(t, desc, *m.Description)
			},
		},
		{
			name:    "bad_close_at",
			in:      domain.CreateMarketInput{Title: "t", CloseAt: "tomorrowish"},
			wantErr: "close_at must be ISO8601",
		},
		{
			name:       "close_at_date_only",
			in:         domain.CreateMarketInput{Title: "t", CloseAt: "2026-12-31"},
			wantStatus: "open",
			check: func(t *testing.T, store *fakeMarketStore, m domain.Market) {
				require.NotNil(t, m.CloseAt)
				require.Equal(t, 2026, m.CloseAt.Year())
			},
		},
		{
			name:       "close_at_rfc3339",
			in:         domain.CreateMarketInput{Title: "t", CloseAt: "2026-12-31T10:00:00Z"},
			wantStatus: "open",
			check: func(t *testing.T, store *fakeMarketStore, m domain.Market) {
				require.NotNil(t, m.CloseAt)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &fakeMarketStore{}
			pub := &recordingPublisher{}
			svc := newTestService(store, &fakeOutcomeStore{}, pub)

			m, err := svc.CreateMarket(context.Background(), tt.in)
			if tt.wantErr != "" {
				require.Error(t, err)
				require.True(t, domain.IsValidation(err))
				require.EqualError(t, err, tt.wantErr)
				require.Empty(t, pub.events)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.wantStatus, m.Status)
			_, parseErr := uuid.Parse(m.ID)
			require.NoError(t, parseErr)
			require.Equal(t, []string{EventMarketCreated}, pub.events)
			if tt.check != nil {
				tt.check(t, store, m)
			}
		})
	}
}

func TestUpdateMarket(t *testing.T) {
	tests := []struct {
		name    string
		patch   domain.MarketPatch
		wantErr string
		check   func(t *testing.T, upd domain.MarketUpdate)
	}{
		{
			name:  "empty_patch_touches_nothing",
			patch: domain.MarketPatch{},
			check: func(t *testing.T, upd domain.MarketUpdate) {
				require.False(t, upd.Title.Set())
				require.False(t, upd.Status.Set())
				require.False(t, upd.CloseAt.Set())
			},
		},
		{
			name:    "blank_title_rejected",
			patch:   domain.MarketPatch{Title: domain.Some("  ")},
			wantErr: "title cannot be empty",
		},
		{
			name:    "null_title_rejected",
			patch:   domain.MarketPatch{Title: domain.Null[string]()},
			wantErr: "title cannot be empty",
		},
		{
			name:  "title_trimmed",
			patch: domain.MarketPatch{Title: domain.Some(" new title ")},
			check: func(t *testing.T, upd domain.MarketUpdate) {
				require.Equal(t, "new title", upd.Title.Or(""))
			},
		},
		{
			name:  "null_description_clears",
			patch: domain.MarketPatch{Description: domain.Null[string]()},
			check: func(t *testing.T, upd domain.MarketUpdate) {
				require.True(t, upd.Description.Set())
				require.True(t, upd.Description.IsNull())
			},
		},
		{
			name:  "close_at_null_clears",
			patch: domain.MarketPatch{CloseAt: domain.Null[string]()},
			check: func(t *testing.T, upd domain.MarketUpdate) {
				require.True(t, upd.CloseAt.Set())
				require.True(t, upd.CloseAt.IsNull())
			},
		},
		{
			name:  "close_at_empty_string_clears",
			patch: domain.MarketPatch{CloseAt: domain.Some("")},
			check: func(t *testing.T, upd domain.MarketUpdate) {
				require.True(t, upd.CloseAt.Set())
				require.True(t, upd.CloseAt.IsNull())
			},
		},
		{
			name:    "close_at_malformed",
			patch:   domain.MarketPatch{CloseAt: domain.Some("soon")},
			wantErr: "close_at must be ISO8601",
		},
		{
			name:  "close_at_parsed",
			patch: domain.MarketPatch{CloseAt: domain.Some("2026-06-01T00:00:00Z")},
			check: func(t *testing.T, upd domain.MarketUpdate) {
				v, ok := upd.CloseAt.Get()
				require.True(t, ok)
				require.Equal(t, time.June, v.Month())
			},
		},
		{
			name:  "blank_status_keeps_stored_value",
			patch: domain.MarketPatch{Status: domain.Some("  ")},
			check: func(t *testing.T, upd domain.MarketUpdate) {
				require.False(t, upd.Status.Set())
			},
		},
		{
			name:  "status_written",
			patch: domain.MarketPatch{Status: domain.Some("closed")},
			check: func(t *testing.T, upd domain.MarketUpdate) {
				require.Equal(t, "closed", upd.Status.Or(""))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &fakeMarketStore{}
			pub := &recordingPublisher{}
			svc := newTestService(store, &fakeOutcomeStore{}, pub)

			_, err := svc.UpdateMarket(context.Background(), "m1", tt.patch)
			if tt.wantErr != "" {
				require.Error(t, err)
				require.True(t, domain.IsValidation(err))
				require.EqualError(t, err, tt.wantErr)
				require.Empty(t, pub.events)
				return
			}
			require.NoError(t, err)
			require.Equal(t, []string{EventMarketUpdated}, pub.events)
			if tt.check != nil {
				tt.check(t, store.lastUpdate)
			}
		})
	}
}

func TestAddOutcome(t *testing.T) {
	price := 55

	t.Run("market_missing", func(t *testing.T) {
		store := &fakeMarketStore{getErr: domain.ErrNotFound}
		svc := newTestService(store, &fakeOutcomeStore{}, nil)

		_, err := svc.AddOutcome(context.Background(), "nope", domain.CreateOutcomeInput{Label: "Yes"})
		require.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("label_required", func(t *testing.T) {
		svc := newTestService(&fakeMarketStore{}, &fakeOutcomeStore{}, nil)

		_, err := svc.AddOutcome(context.Background(), "m1", domain.CreateOutcomeInput{Label: "   "})
		require.True(t, domain.IsValidation(err))
		require.EqualError(t, err, "label is required")
	})

	t.Run("created_with_defaults", func(t *testing.T) {
		outcomes := &fakeOutcomeStore{}
		pub := &recordingPublisher{}
		svc := newTestService(&fakeMarketStore{}, outcomes, pub)

		o, err := svc.AddOutcome(context.Background(), "m1", domain.CreateOutcomeInput{
			Label:      " Yes ",
			PriceCents: &price,
		})
		require.NoError(t, err)
		require.Equal(t, "Yes", o.Label)
		require.Equal(t, "m1", o.MarketID)
		require.Equal(t, "open", o.Status)
		require.NotNil(t, o.PriceCents)
		require.Equal(t, price, *o.PriceCents)
		require.Equal(t, []string{EventOutcomeCreated}, pub.events)
	})
}

func TestUpdateOutcome(t *testing.T) {
	t.Run("blank_label_rejected", func(t *testing.T) {
		svc := newTestService(&fakeMarketStore{}, &fakeOutcomeStore{}, nil)

		_, err := svc.UpdateOutcome(context.Background(), "m1", "o1", domain.OutcomePatch{
			Label: domain.Some(""),
		})
		require.True(t, domain.IsValidation(err))
	})

	t.Run("price_null_clears", func(t *testing.T) {
		outcomes := &fakeOutcomeStore{}
		svc := newTestService(&fakeMarketStore{}, outcomes, nil)

		_, err := svc.UpdateOutcome(context.Background(), "m1", "o1", domain.OutcomePatch{
			PriceCents: domain.Null[int](),
		})
		require.NoError(t, err)
		require.True(t, outcomes.lastUpdate.PriceCents.Set())
		require.True(t, outcomes.lastUpdate.PriceCents.IsNull())
	})

	t.Run("blank_status_ignored", func(t *testing.T) {
		outcomes := &fakeOutcomeStore{}
		svc := newTestService(&fakeMarketStore{}, outcomes, nil)

		_, err := svc.UpdateOutcome(context.Background(), "m1", "o1", domain.OutcomePatch{
			Status: domain.Some(" "),
		})
		require.NoError(t, err)
		require.False(t, outcomes.lastUpdate.Status.Set())
	})
}

func TestDeleteMarketPublishes(t *testing.T) {
	store := &fakeMarketStore{}
	pub := &recordingPublisher{}
	svc := newTestService(store, &fakeOutcomeStore{}, pub)

	require.NoError(t, svc.DeleteMarket(context.Background(), "m1"))
	require.Equal(t, "m1", store.deletedID)
	require.Equal(t, []string{EventMarketDeleted}, pub.events)
}

func TestParseCloseAtLayouts(t *testing.T) {
	for _, in := range []string{
		"2026-12-31T23:59:59Z",
		"2026-12-31T23:59:59+03:00",
		"2026-12-31T23:59:59",
		"2026-12-31",
	} {
		_, err := parseCloseAt(in)
		require.NoError(t, err, in)
	}

	_, err := parseCloseAt("31/12/2026")
	require.Error(t, err)
}
