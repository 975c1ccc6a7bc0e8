// Command seed inserts a set of demo markets with Yes/No outcomes so a fresh
// database has something to browse. Running it twice is safe: markets are
// matched by title and outcomes are only added to markets that have none.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"github.com/sokomjinga/sokomjinga-api/internal/app"
	"github.com/sokomjinga/sokomjinga-api/internal/config"
	"github.com/sokomjinga/sokomjinga-api/internal/domain"
)

var seedTitles = []string{
	"Will Ruto serve WANTAM?",
	"Will Kenya qualify for AFCON 2025?",
	"Will Manchester City win the Premier League this season?",
	"Will Bitcoin close above $100,000 by year-end?",
	"Will crude oil trade above $100 per barrel this quarter?",
	"Will the NSE 20 index finish the year higher than it started?",
	"Will Nairobi record a daily high above 35°C this month?",
	"Will a nationwide internet outage last more than 1 hour this quarter?",
	"Will a new international airline launch direct flights to Nairobi this year?",
	"Will the Safari Rally remain on the WRC calendar next season?",
}

func main() {
	configPath := flag.String("config", "config.toml", "path to configuration file")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx := context.Background()
	deps, cleanup, err := app.Wire(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to wire dependencies", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer cleanup()

	if err := run(ctx, deps, logger); err != nil {
		logger.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(ctx context.Context, deps *app.Dependencies, logger *slog.Logger) error {
	existing, err := deps.Markets.ListMarkets(ctx)
	if err != nil {
		return err
	}
	byTitle := make(map[string]domain.Market, len(existing))
	for _, m := range existing {
		byTitle[m.Title] = m
	}

	created := 0
	for _, title := range seedTitles {
		if _, ok := byTitle[title]; ok {
			continue
		}
		m, err := deps.Markets.CreateMarket(ctx, domain.CreateMarketInput{Title: title})
		if err != nil {
			return err
		}
		byTitle[title] = m
		created++
	}
	if created > 0 {
		logger.Info("seeded markets", slog.Int("count", created))
	} else {
		logger.Info("markets already present, skipping")
	}

	yes, no := 6, 94
	added := 0
	for _, title := range seedTitles {
		m, ok := byTitle[title]
		if !ok || len(m.Outcomes) > 0 {
			continue
		}
		if _, err := deps.Markets.AddOutcome(ctx, m.ID, domain.CreateOutcomeInput{
			Label:      "Yes",
			PriceCents: &yes,
		}); err != nil {
			return err
		}
		if _, err := deps.Markets.AddOutcome(ctx, m.ID, domain.CreateOutcomeInput{
			Label:      "No",
			PriceCents: &no,
		}); err != nil {
			return err
		}
		added += 2
	}
	if added > 0 {
		logger.Info("seeded outcomes", slog.Int("count", added))
	} else {
		logger.Info("outcomes already present, skipping")
	}
	return nil
}
