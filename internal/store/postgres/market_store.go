package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sokomjinga/sokomjinga-api/internal/domain"
)

// MarketStore implements domain.MarketStore using PostgreSQL.
type MarketStore struct {
	pool *pgxpool.Pool
}

// NewMarketStore creates a new MarketStore backed by the given connection pool.
func NewMarketStore(pool *pgxpool.Pool) *MarketStore {
	return &MarketStore{pool: pool}
}

const marketCols = `id, title, description, image_url, category,
	status, close_at, created_at, updated_at`

// scanMarket scans a single market row into a domain.Market.
func scanMarket(row pgx.Row) (domain.Market, error) {
	var m domain.Market
	err := row.Scan(
		&m.ID, &m.Title, &m.Description, &m.ImageURL, &m.Category,
		&m.Status, &m.CloseAt, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		return domain.Market{}, err
	}
	m.Outcomes = []domain.Outcome{}
	return m, nil
}

// Create inserts a market and returns the row as stored, with
// server-assigned timestamps.
func (s *MarketStore) Create(ctx context.Context, m domain.Market) (domain.Market, error) {
	const query = `
		INSERT INTO markets (id, title, description, image_url, category, status, close_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + marketCols

	var created domain.Market
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx, query,
			m.ID, m.Title, m.Description, m.ImageURL, m.Category, m.Status, m.CloseAt,
		)
		var err error
		created, err = scanMarket(row)
		return err
	})
	if err != nil {
		return domain.Market{}, fmt.Errorf("postgres: create market: %w", err)
	}
	return created, nil
}

// GetByID retrieves a market with its outcomes attached.
func (s *MarketStore) GetByID(ctx context.Context, id string) (domain.Market, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+marketCols+` FROM markets WHERE id = $1`, id)
	m, err := scanMarket(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Market{}, domain.ErrNotFound
		}
		return domain.Market{}, fmt.Errorf("postgres: get market %s: %w", id, err)
	}

	m.Outcomes, err = queryOutcomes(ctx, s.pool,
		`SELECT `+outcomeCols+` FROM outcomes WHERE market_id = $1 ORDER BY created_at`, id)
	if err != nil {
		return domain.Market{}, fmt.Errorf("postgres: get market %s outcomes: %w", id, err)
	}
	return m, nil
}

// List returns all markets newest first, each with its outcomes attached.
func (s *MarketStore) List(ctx context.Context) ([]domain.Market, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+marketCols+` FROM markets ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("postgres: list markets: %w", err)
	}
	defer rows.Close()

	markets := []domain.Market{}
	index := map[string]int{}
	for rows.Next() {
		m, err := scanMarket(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres: scan market: %w", err)
		}
		index[m.ID] = len(markets)
		markets = append(markets, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: list markets rows: %w", err)
	}
	if len(markets) == 0 {
		return markets, nil
	}

	ids := make([]string, 0, len(markets))
	for _, m := range markets {
		ids = append(ids, m.ID)
	}
	outcomes, err := queryOutcomes(ctx, s.pool,
		`SELECT `+outcomeCols+` FROM outcomes WHERE market_id = ANY($1) ORDER BY created_at`, ids)
	if err != nil {
		return nil, fmt.Errorf("postgres: list market outcomes: %w", err)
	}
	for _, o := range outcomes {
		i := index[o.MarketID]
		markets[i].Outcomes = append(markets[i].Outcomes, o)
	}
	return markets, nil
}

// Update writes only the set fields of upd, refreshes updated_at, and
// returns the row as re-read after the write. The whole patch commits or
// nothing does.
func (s *MarketStore) Update(ctx context.Context, id string, upd domain.MarketUpdate) (domain.Market, error) {
	query := `UPDATE markets SET updated_at = NOW()`
	args := []any{id}
	argIdx := 2

	set := func(col string, arg any) {
		query += fmt.Sprintf(", %s = $%d", col, argIdx)
		args = append(args, arg)
		argIdx++
	}
	if upd.Title.Set() {
		set("title", optArg(upd.Title))
	}
	if upd.Description.Set() {
		set("description", optArg(upd.Description))
	}
	if upd.ImageURL.Set() {
		set("image_url", optArg(upd.ImageURL))
	}
	if upd.Category.Set() {
		set("category", optArg(upd.Category))
	}
	if upd.CloseAt.Set() {
		set("close_at", optArg(upd.CloseAt))
	}
	if upd.Status.Set() {
		set("status", optArg(upd.Status))
	}
	query += ` WHERE id = $1 RETURNING ` + marketCols

	var updated domain.Market
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		m, err := scanMarket(tx.QueryRow(ctx, query, args...))
		if err != nil {
			return err
		}
		m.Outcomes, err = queryOutcomes(ctx, tx,
			`SELECT `+outcomeCols+` FROM outcomes WHERE market_id = $1 ORDER BY created_at`, id)
		if err != nil {
			return err
		}
		updated = m
		return nil
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Market{}, domain.ErrNotFound
		}
		return domain.Market{}, fmt.Errorf("postgres: update market %s: %w", id, err)
	}
	return updated, nil
}

// Delete removes a market; its outcomes go with it via the FK cascade.
func (s *MarketStore) Delete(ctx context.Context, id string) error {
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `DELETE FROM markets WHERE id = $1`, id)
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
		return fmt.Errorf("postgres: delete market %s: %w", id, err)
	}
	return nil
}

// optArg converts a set Optional into a query argument, using nil for an
// explicit null.
func optArg[T any](o domain.Optional[T]) any {
	if v, ok := o.Get(); ok {
		return v
	}
	return nil
}
