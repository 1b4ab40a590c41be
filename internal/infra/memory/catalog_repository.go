package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/tg383520/geo-quiz/internal/domain"
	"golang.org/x/sync/singleflight"
)

// CatalogLoader fetches the country catalog for a language from a backing source
// (REST Countries, Postgres).
type CatalogLoader interface {
	LoadCatalog(ctx context.Context, lang string) (domain.Catalog, error)
}

// CatalogRepository caches catalogs per language with TTL so restarts of a
// quiz never hit the remote API twice.
type CatalogRepository struct {
	loader CatalogLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rnd    *rand.Rand

	mu    sync.RWMutex
	cache map[string]cachedCatalog
}

type cachedCatalog struct {
	catalog   domain.Catalog
	expiresAt time.Time
}

// NewCatalogRepository wraps loader. A non-positive ttl caches forever.
func NewCatalogRepository(loader CatalogLoader, ttl time.Duration) *CatalogRepository {
	return &CatalogRepository{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:  make(map[string]cachedCatalog),
	}
}

func (r *CatalogRepository) fresh(lang string, now time.Time) (domain.Catalog, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.cache[lang]
	if !ok {
		return domain.Catalog{}, false
	}
	if !entry.expiresAt.IsZero() && !entry.expiresAt.After(now) {
		return domain.Catalog{}, false
	}
	return entry.catalog, true
}

func (r *CatalogRepository) GetCatalog(ctx context.Context, lang string) (domain.Catalog, error) {
	if cat, ok := r.fresh(lang, r.clock()); ok {
		return cat, nil
	}

	result, err, _ := r.sf.Do(lang, func() (interface{}, error) {
		now := r.clock()
		if cat, ok := r.fresh(lang, now); ok {
			return cat, nil
		}

		cat, err := r.loader.LoadCatalog(ctx, lang)
		if err != nil {
			return domain.Catalog{}, err
		}

		entry := cachedCatalog{catalog: cat}
		r.mu.Lock()
		// rnd is guarded by mu as well.
		if ttl := r.ttlWithJitter(); ttl > 0 {
			entry.expiresAt = now.Add(ttl)
		}
		r.cache[lang] = entry
		r.mu.Unlock()
		return cat, nil
	})
	if err != nil {
		return domain.Catalog{}, err
	}
	return result.(domain.Catalog), nil
}

// StaticCatalogLoader serves fixed country records (useful for tests/demos).
type StaticCatalogLoader struct {
	countries []domain.Country
	now       func() time.Time
}

func NewStaticCatalogLoader(countries []domain.Country) *StaticCatalogLoader {
	return &StaticCatalogLoader{countries: countries, now: time.Now}
}

func (l *StaticCatalogLoader) LoadCatalog(_ context.Context, lang string) (domain.Catalog, error) {
	if len(l.countries) == 0 {
		return domain.Catalog{}, domain.ErrCatalogNotFound
	}
	return domain.Catalog{Language: lang, Countries: l.countries, FetchedAt: l.now().UTC()}, nil
}

func (r *CatalogRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	// up to 10% jitter so replicas do not refetch in lockstep
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
