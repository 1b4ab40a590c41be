package redis

import (
	"context"
	"encoding/json"
	"math/rand"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/tg383520/geo-quiz/internal/domain"
	"golang.org/x/sync/singleflight"
)

// CatalogLoader fetches the country catalog for a language from a backing source.
type CatalogLoader interface {
	LoadCatalog(ctx context.Context, lang string) (domain.Catalog, error)
}

// CatalogRepository caches the catalog in Redis as one JSON document per
// language and falls back to a loader on cache miss:
//
//	SET geoquiz:catalog:{lang} <json> EX <ttl>
type CatalogRepository struct {
	client *redis.Client
	loader CatalogLoader
	ttl    time.Duration
	sf     singleflight.Group

	rndMu sync.Mutex
	rnd   *rand.Rand
}

func NewCatalogRepository(client *redis.Client, loader CatalogLoader, ttl time.Duration) *CatalogRepository {
	return &CatalogRepository{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *CatalogRepository) GetCatalog(ctx context.Context, lang string) (domain.Catalog, error) {
	if cat, ok := r.cached(ctx, lang); ok {
		return cat, nil
	}

	result, err, _ := r.sf.Do(lang, func() (interface{}, error) {
		// Re-check cache in case another instance filled it.
		if cat, ok := r.cached(ctx, lang); ok {
			return cat, nil
		}

		cat, err := r.loader.LoadCatalog(ctx, lang)
		if err != nil {
			return domain.Catalog{}, err
		}

		// A cache write failure only costs a reload later.
		if raw, err := json.Marshal(cat); err == nil {
			_ = r.client.Set(ctx, catalogKey(lang), raw, r.ttlWithJitter()).Err()
		}
		return cat, nil
	})
	if err != nil {
		return domain.Catalog{}, err
	}
	return result.(domain.Catalog), nil
}

func (r *CatalogRepository) cached(ctx context.Context, lang string) (domain.Catalog, bool) {
	// redis.Nil and transport errors both count as a miss.
	raw, err := r.client.Get(ctx, catalogKey(lang)).Bytes()
	if err != nil {
		return domain.Catalog{}, false
	}
	var cat domain.Catalog
	if err := json.Unmarshal(raw, &cat); err != nil || len(cat.Countries) == 0 {
		return domain.Catalog{}, false
	}
	return cat, true
}

func catalogKey(lang string) string {
	if lang == "" {
		lang = "default"
	}
	return "geoquiz:catalog:" + lang
}

func (r *CatalogRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	jitterMax := int64(r.ttl) / 10
	r.rndMu.Lock()
	defer r.rndMu.Unlock()
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
