package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sokomjinga/sokomjinga-api/internal/domain"
)

// OutcomeStore implements domain.OutcomeStore using PostgreSQL.
type OutcomeStore struct {
	pool *pgxpool.Pool
}

// NewOutcomeStore creates a new OutcomeStore backed by the given connection pool.
func NewOutcomeStore(pool *pgxpool.Pool) *OutcomeStore {
	return &OutcomeStore{pool: pool}
}

const outcomeCols = `id, market_id, label, price_cents, status, created_at, updated_at`

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// scanOutcome scans a single outcome row into a domain.Outcome.
func scanOutcome(row pgx.Row) (domain.Outcome, error) {
	var o domain.Outcome
	err := row.Scan(
		&o.ID, &o.MarketID, &o.Label, &o.PriceCents,
		&o.Status, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return domain.Outcome{}, err
	}
	return o, nil
}

// queryOutcomes runs an outcome query and collects the rows.
func queryOutcomes(ctx context.Context, q querier, query string, args ...any) ([]domain.Outcome, error) {
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	outcomes := []domain.Outcome{}
	for rows.Next() {
		o, err := scanOutcome(rows)
		if err != nil {
			return nil, err
		}
		outcomes = append(outcomes, o)
	}
	return outcomes, rows.Err()
}

// Create inserts an outcome and returns the row as stored. A foreign-key
// violation (market deleted between lookup and insert) surfaces as
// ErrNotFound.
func (s *OutcomeStore) Create(ctx context.Context, o domain.Outcome) (domain.Outcome, error) {
	const query = `
		INSERT INTO outcomes (id, market_id, label, price_cents, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + outcomeCols

	var created domain.Outcome
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx, query, o.ID, o.MarketID, o.Label, o.PriceCents, o.Status)
		var err error
		created, err = scanOutcome(row)
		return err
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return domain.Outcome{}, domain.ErrNotFound
		}
		return domain.Outcome{}, fmt.Errorf("postgres: create outcome: %w", err)
	}
	return created, nil
}

// GetByID retrieves an outcome scoped jointly by market and outcome id.
func (s *OutcomeStore) GetByID(ctx context.Context, marketID, outcomeID string) (domain.Outcome, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+outcomeCols+` FROM outcomes WHERE id = $1 AND market_id = $2`,
		outcomeID, marketID)
	o, err := scanOutcome(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Outcome{}, domain.ErrNotFound
		}
		return domain.Outcome{}, fmt.Errorf("postgres: get outcome %s: %w", outcomeID, err)
	}
	return o, nil
}

// Update writes only the set fields of upd, refreshes updated_at, and
// returns the row as re-read after the write.
func (s *OutcomeStore) Update(ctx context.Context, marketID, outcomeID string, upd domain.OutcomeUpdate) (domain.Outcome, error) {
	query := `UPDATE outcomes SET updated_at = NOW()`
	args := []any{outcomeID, marketID}
	argIdx := 3

	set := func(col string, arg any) {
		query += fmt.Sprintf(", %s = $%d", col, argIdx)
		args = append(args, arg)
		argIdx++
	}
	if upd.Label.Set() {
		set("label", optArg(upd.Label))
	}
	if upd.PriceCents.Set() {
		set("price_cents", optArg(upd.PriceCents))
	}
	if upd.Status.Set() {
		set("status", optArg(upd.Status))
	}
	query += ` WHERE id = $1 AND market_id = $2 RETURNING ` + outcomeCols

	var updated domain.Outcome
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		var err error
		updated, err = scanOutcome(tx.QueryRow(ctx, query, args...))
		return err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Outcome{}, domain.ErrNotFound
		}
		return domain.Outcome{}, fmt.Errorf("postgres: update outcome %s: %w", outcomeID, err)
	}
	return updated, nil
}

// Delete removes an outcome scoped jointly by market and outcome id.
func (s *OutcomeStore) Delete(ctx context.Context, marketID, outcomeID string) error {
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx,
			`DELETE FROM outcomes WHERE id = $1 AND market_id = $2`,
			outcomeID, marketID)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return domain.ErrNotFound
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("postgres: delete outcome %s: %w", outcomeID, err)
	}
	return nil
}
