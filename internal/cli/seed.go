package cli

import (
	"context"
	"net/http"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tg383520/geo-quiz/internal/config"
	"github.com/tg383520/geo-quiz/internal/infra/postgres"
	"github.com/tg383520/geo-quiz/internal/infra/restcountries"
	"github.com/tg383520/geo-quiz/internal/logging"
)

// NewSeedCmd downloads the country data and stores it in Postgres so the
// server can start without reaching the upstream API.
func NewSeedCmd(configPath *string) *cobra.Command {
	var lang string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Fetch the country catalog and store it in Postgres",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			if lang != "" {
				cfg.Catalog.Language = lang
			}
			logger, err := logging.New(cfg.Log.Level, cfg.Log.Encoding)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()
			return runSeed(cmd.Context(), cfg, logger)
		},
	}
	cmd.Flags().StringVar(&lang, "lang", "", "translation key to seed (overrides config)")
	return cmd
}

func runSeed(ctx context.Context, cfg config.Config, logger *zap.Logger) error {
	if cfg.Postgres.URL == "" {
		return errNoPostgres
	}
	if err := runMigrations(ctx, cfg, logger); err != nil {
		return err
	}

	pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
	if err != nil {
		return err
	}
	defer pool.Close()

	loader := restcountries.NewLoader(newCountriesClient(cfg))
	cat, err := loader.LoadCatalog(ctx, cfg.Catalog.Language)
	if err != nil {
		return err
	}
	if err := postgres.NewCatalogStore(pool).SaveCatalog(ctx, cat); err != nil {
		return err
	}
	logger.Info("catalog seeded",
		zap.String("language", cat.Language),
		zap.Int("countries", len(cat.Countries)),
	)
	return nil
}

func newCountriesClient(cfg config.Config) *restcountries.Client {
	httpClient := &http.Client{Timeout: config.TTLDuration(cfg.Catalog.Timeout, 15*time.Second)}
	return restcountries.NewClient(httpClient, cfg.Catalog.BaseURL)
}
