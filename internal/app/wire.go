package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sokomjinga/sokomjinga-api/internal/config"
	"github.com/sokomjinga/sokomjinga-api/internal/domain"
	"github.com/sokomjinga/sokomjinga-api/internal/server/ws"
	"github.com/sokomjinga/sokomjinga-api/internal/service"
	"github.com/sokomjinga/sokomjinga-api/internal/store/postgres"
)

// Dependencies bundles everything the application needs to serve requests.
// It is constructed by Wire and torn down by the returned cleanup function.
type Dependencies struct {
	MarketStore  domain.MarketStore
	OutcomeStore domain.OutcomeStore
	Markets      *service.MarketService
	Hub          *ws.Hub
}

// Wire constructs all concrete dependency implementations from the given
// configuration and returns them together with a cleanup function that
// should be called on shutdown to release resources.
func Wire(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Dependencies, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	pgClient, err := postgres.New(ctx, postgres.ClientConfig{
		DSN:      cfg.Database.DSN,
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		Database: cfg.Database.Database,
		User:     cfg.Database.User,
		Password: cfg.Database.Password,
		SSLMode:  cfg.Database.SSLMode,
		MaxConns: cfg.Database.PoolMaxConns,
		MinConns: cfg.Database.PoolMinConns,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("wire: postgres: %w", err)
	}
	closers = append(closers, pgClient.Close)

	if cfg.Database.RunMigrations {
		if err := pgClient.RunMigrations(ctx); err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: postgres migrations: %w", err)
		}
	}

	pool := pgClient.Pool()
	deps := &Dependencies{
		MarketStore:  postgres.NewMarketStore(pool),
		OutcomeStore: postgres.NewOutcomeStore(pool),
	}

	deps.Hub = ws.NewHub(cfg.Service.Name, logger)
	deps.Markets = service.NewMarketService(deps.MarketStore, deps.OutcomeStore, deps.Hub, logger)

	return deps, cleanup, nil
}
