// Package service implements the application rules between the HTTP
// handlers and the stores: input validation, normalization, defaulting,
// and change-event publication.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sokomjinga/sokomjinga-api/internal/domain"
)

// Change event names published after committed mutations.
const (
	EventMarketCreated  = "market_created"
	EventMarketUpdated  = "market_updated"
	EventMarketDeleted  = "market_deleted"
	EventOutcomeCreated = "outcome_created"
	EventOutcomeUpdated = "outcome_updated"
	EventOutcomeDeleted = "outcome_deleted"
)

// Publisher broadcasts entity change events to live-update subscribers.
type Publisher interface {
	Publish(event string, data any)
}

// nopPublisher drops events; used when no hub is wired.
type nopPublisher struct{}

func (nopPublisher) Publish(string, any) {}

// closeAtLayouts are the accepted close_at input formats: full timestamp
// with offset, naive timestamp, and date only.
var closeAtLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// parseCloseAt parses an ISO-8601 date or date-time string.
func parseCloseAt(s string) (time.Time, error) {
	for _, layout := range closeAtLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("parse close_at %q", s)
}

// MarketService validates and normalizes market and outcome mutations and
// delegates persistence to the stores.
type MarketService struct {
	markets  domain.MarketStore
	outcomes domain.OutcomeStore
	events   Publisher
	logger   *slog.Logger
}

// NewMarketService creates a MarketService. A nil events publisher is
// replaced by a no-op one.
func NewMarketService(markets domain.MarketStore, outcomes domain.OutcomeStore, events Publisher, logger *slog.Logger) *MarketService {
	if events == nil {
		events = nopPublisher{}
	}
	return &MarketService{
		markets:  markets,
		outcomes: outcomes,
		events:   events,
		logger:   logger.With(slog.String("component", "service")),
	}
}

// ListMarkets returns all markets newest first with nested outcomes.
func (s *MarketService) ListMarkets(ctx context.Context) ([]domain.Market, error) {
	return s.markets.List(ctx)
}

// GetMarket returns a single market with its outcomes.
func (s *MarketService) GetMarket(ctx context.Context, id string) (domain.Market, error) {
	return s.markets.GetByID(ctx, id)
}

// CreateMarket validates the input and inserts a new market. The returned
// market carries server-assigned id and timestamps and no outcomes.
func (s *MarketService) CreateMarket(ctx context.Context, in domain.CreateMarketInput) (domain.Market, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return domain.Market{}, domain.NewValidationError("title is required")
	}

	m := domain.Market{
		ID:          uuid.NewString(),
		Title:       title,
		Description: in.Description,
		ImageURL:    in.ImageURL,
		Category:    in.Category,
	}

	if in.CloseAt != "" {
		t, err := parseCloseAt(in.CloseAt)
		if err != nil {
			return domain.Market{}, domain.NewValidationError("close_at must be ISO8601")
		}
		m.CloseAt = &t
	}

	status := strings.TrimSpace(in.Status)
	if status == "" {
		status = string(domain.MarketStatusOpen)
	}
	m.Status = status

	created, err := s.markets.Create(ctx, m)
	if err != nil {
		return domain.Market{}, err
	}
	s.publish(EventMarketCreated, created)
	return created, nil
}

// UpdateMarket applies a partial patch. Only keys present in the patch are
// written; a validation failure writes nothing.
func (s *MarketService) UpdateMarket(ctx context.Context, id string, patch domain.MarketPatch) (domain.Market, error) {
	var upd domain.MarketUpdate

	if patch.Title.Set() {
		title := strings.TrimSpace(patch.Title.Or(""))
		if title == "" {
			return domain.Market{}, domain.NewValidationError("title cannot be empty")
		}
		upd.Title = domain.Some(title)
	}
	upd.Description = patch.Description
	upd.ImageURL = patch.ImageURL
	upd.Category = patch.Category

	if patch.CloseAt.Set() {
		if raw, ok := patch.CloseAt.Get(); ok && raw != "" {
			t, err := parseCloseAt(raw)
			if err != nil {
				return domain.Market{}, domain.NewValidationError("close_at must be ISO8601")
			}
			upd.CloseAt = domain.Some(t)
		} else {
			// Explicit null or empty string clears the stored value.
			upd.CloseAt = domain.Null[time.Time]()
		}
	}

	if patch.Status.Set() {
		// Blank status keeps the stored value rather than writing blank.
		if status := strings.TrimSpace(patch.Status.Or("")); status != "" {
			upd.Status = domain.Some(status)
		}
	}

	updated, err := s.markets.Update(ctx, id, upd)
	if err != nil {
		return domain.Market{}, err
	}
	s.publish(EventMarketUpdated, updated)
	return updated, nil
}

// DeleteMarket removes a market and, through the cascade, its outcomes.
func (s *MarketService) DeleteMarket(ctx context.Context, id string) error {
	if err := s.markets.Delete(ctx, id); err != nil {
		return err
	}
	s.publish(EventMarketDeleted, map[string]string{"id": id})
	return nil
}

// AddOutcome inserts an outcome under an existing market. The market is
// looked up first so a missing market is reported before any write.
func (s *MarketService) AddOutcome(ctx context.Context, marketID string, in domain.CreateOutcomeInput) (domain.Outcome, error) {
	if _, err := s.markets.GetByID(ctx, marketID); err != nil {
		return domain.Outcome{}, err
	}

	label := strings.TrimSpace(in.Label)
	if label == "" {
		return domain.Outcome{}, domain.NewValidationError("label is required")
	}

	status := strings.TrimSpace(in.Status)
	if status == "" {
		status = string(domain.MarketStatusOpen)
	}

	o := domain.Outcome{
		ID:         uuid.NewString(),
		MarketID:   marketID,
		Label:      label,
		PriceCents: in.PriceCents,
		Status:     status,
	}

	created, err := s.outcomes.Create(ctx, o)
	if err != nil {
		return domain.Outcome{}, err
	}
	s.publish(EventOutcomeCreated, created)
	return created, nil
}

// UpdateOutcome applies a partial patch to an outcome, scoped jointly by
// market and outcome id.
func (s *MarketService) UpdateOutcome(ctx context.Context, marketID, outcomeID string, patch domain.OutcomePatch) (domain.Outcome, error) {
	var upd domain.OutcomeUpdate

	if patch.Label.Set() {
		label := strings.TrimSpace(patch.Label.Or(""))
		if label == "" {
			return domain.Outcome{}, domain.NewValidationError("label cannot be empty")
		}
		upd.Label = domain.Some(label)
	}
	upd.PriceCents = patch.PriceCents

	if patch.Status.Set() {
		if status := strings.TrimSpace(patch.Status.Or("")); status != "" {
			upd.Status = domain.Some(status)
		}
	}

	updated, err := s.outcomes.Update(ctx, marketID, outcomeID, upd)
	if err != nil {
		return domain.Outcome{}, err
	}
	s.publish(EventOutcomeUpdated, updated)
	return updated, nil
}

// DeleteOutcome removes an outcome, scoped jointly by market and outcome id.
func (s *MarketService) DeleteOutcome(ctx context.Context, marketID, outcomeID string) error {
	if err := s.outcomes.Delete(ctx, marketID, outcomeID); err != nil {
		return err
	}
	s.publish(EventOutcomeDeleted, map[string]string{
		"id":        outcomeID,
		"market_id": marketID,
	})
	return nil
}

func (s *MarketService) publish(event string, data any) {
	s.events.Publish(event, data)
	s.logger.Debug("published change event", slog.String("event", event))
}
