package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/tg383520/geo-quiz/internal/domain"
)

// CatalogLoader fetches a catalog from another source when Postgres has none.
type CatalogLoader interface {
	LoadCatalog(ctx context.Context, lang string) (domain.Catalog, error)
}

// CatalogStore mirrors country catalogs as JSONB, one row per language.
type CatalogStore struct {
	pool     *pgxpool.Pool
	fallback CatalogLoader
}

func NewCatalogStore(pool *pgxpool.Pool) *CatalogStore {
	return &CatalogStore{pool: pool}
}

// WithFallback makes LoadCatalog fetch and persist a catalog when the table
// has no row for the language yet.
func (s *CatalogStore) WithFallback(loader CatalogLoader) *CatalogStore {
	return &CatalogStore{pool: s.pool, fallback: loader}
}

func (s *CatalogStore) LoadCatalog(ctx context.Context, lang string) (domain.Catalog, error) {
	var (
		raw       []byte
		fetchedAt time.Time
	)
	err := s.pool.QueryRow(ctx, `SELECT data, fetched_at FROM country_catalogs WHERE language=$1`, lang).Scan(&raw, &fetchedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		if s.fallback == nil {
			return domain.Catalog{}, fmt.Errorf("load catalog %q: %w", lang, domain.ErrCatalogNotFound)
		}
		return s.refill(ctx, lang)
	}
	if err != nil {
		return domain.Catalog{}, fmt.Errorf("load catalog: %w", err)
	}

	var countries []domain.Country
	if err := json.Unmarshal(raw, &countries); err != nil {
		return domain.Catalog{}, fmt.Errorf("unmarshal catalog: %w", err)
	}
	return domain.Catalog{Language: lang, Countries: countries, FetchedAt: fetchedAt.UTC()}, nil
}

func (s *CatalogStore) refill(ctx context.Context, lang string) (domain.Catalog, error) {
	cat, err := s.fallback.LoadCatalog(ctx, lang)
	if err != nil {
		return domain.Catalog{}, err
	}
	if err := s.SaveCatalog(ctx, cat); err != nil {
		return domain.Catalog{}, err
	}
	return cat, nil
}

// SaveCatalog upserts the catalog for its language.
func (s *CatalogStore) SaveCatalog(ctx context.Context, cat domain.Catalog) error {
	data, err := json.Marshal(cat.Countries)
	if err != nil {
		return fmt.Errorf("marshal catalog: %w", err)
	}
	fetchedAt := cat.FetchedAt
	if fetchedAt.IsZero() {
		fetchedAt = time.Now().UTC()
	}
	_, err = s.pool.Exec(ctx, `
INSERT INTO country_catalogs (language, data, fetched_at) VALUES ($1, $2::jsonb, $3)
ON CONFLICT (language) DO UPDATE SET data=EXCLUDED.data, fetched_at=EXCLUDED.fetched_at`,
		cat.Language, string(data), fetchedAt)
	if err != nil {
		return fmt.Errorf("save catalog: %w", err)
	}
	return nil
}
