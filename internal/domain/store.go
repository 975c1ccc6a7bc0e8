package domain

import "context"

// MarketStore persists markets. Every write runs inside its own scoped
// transaction and returns the row as re-read after the write, so
// created_at/updated_at always reflect server-assigned values.
type MarketStore interface {
	Create(ctx context.Context, m Market) (Market, error)
	GetByID(ctx context.Context, id string) (Market, error)
	List(ctx context.Context) ([]Market, error)
	Update(ctx context.Context, id string, upd MarketUpdate) (Market, error)
	Delete(ctx context.Context, id string) error
}

// OutcomeStore persists outcomes. Single-row lookups are jointly scoped by
// market id and outcome id: an outcome that exists under a different
// market is ErrNotFound.
type OutcomeStore interface {
	Create(ctx context.Context, o Outcome) (Outcome, error)
	GetByID(ctx context.Context, marketID, outcomeID string) (Outcome, error)
	Update(ctx context.Context, marketID, outcomeID string, upd OutcomeUpdate) (Outcome, error)
	Delete(ctx context.Context, marketID, outcomeID string) error
}
