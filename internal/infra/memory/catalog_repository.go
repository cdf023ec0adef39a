package memory

import (
	"context"
	"math/rand"
	"os"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"oloom-quiz-service/internal/domain"
)

// CatalogLoader fetches catalog content from a backing store (file, Postgres).
type CatalogLoader interface {
	LoadCatalog(ctx context.Context, catalogID string) (domain.Catalog, error)
}

// CatalogRepository caches catalogs with TTL to avoid repeated backing-store hits.
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

func NewCatalogRepository(loader CatalogLoader, ttl time.Duration) *CatalogRepository {
	return &CatalogRepository{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:  make(map[string]cachedCatalog),
	}
}

func (r *CatalogRepository) GetCatalog(ctx context.Context, catalogID string) (domain.Catalog, error) {
	now := r.clock()

	r.mu.RLock()
	if entry, ok := r.cache[catalogID]; ok && entry.expiresAt.After(now) {
		r.mu.RUnlock()
		return entry.catalog, nil
	}
	r.mu.RUnlock()

	result, err, _ := r.sf.Do(catalogID, func() (interface{}, error) {
		now := r.clock()
		r.mu.RLock()
		if entry, ok := r.cache[catalogID]; ok && entry.expiresAt.After(now) {
			r.mu.RUnlock()
			return entry.catalog, nil
		}
		r.mu.RUnlock()

		catalog, err := r.loader.LoadCatalog(ctx, catalogID)
		if err != nil {
			return domain.Catalog{}, err
		}

		r.mu.Lock()
		r.cache[catalogID] = cachedCatalog{
			catalog:   catalog,
			expiresAt: now.Add(r.ttlWithJitter()),
		}
		r.mu.Unlock()
		return catalog, nil
	})
	if err != nil {
		return domain.Catalog{}, err
	}
	return result.(domain.Catalog), nil
}

func (r *CatalogRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}

// StaticCatalogLoader is a loader backed by an in-memory map (tests/demos).
type StaticCatalogLoader struct {
	catalogs map[string]domain.Catalog
}

func NewStaticCatalogLoader(catalogs map[string]domain.Catalog) *StaticCatalogLoader {
	return &StaticCatalogLoader{catalogs: catalogs}
}

func (l *StaticCatalogLoader) LoadCatalog(_ context.Context, catalogID string) (domain.Catalog, error) {
	if catalog, ok := l.catalogs[catalogID]; ok {
		return catalog, nil
	}
	return domain.Catalog{}, domain.ErrCatalogNotFound
}

// BankFileLoader reads the question-bank JSON file exported by the content
// pipeline and resolves it into a catalog.
type BankFileLoader struct {
	path string
}

func NewBankFileLoader(path string) *BankFileLoader {
	return &BankFileLoader{path: path}
}

func (l *BankFileLoader) LoadCatalog(_ context.Context, catalogID string) (domain.Catalog, error) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		return domain.Catalog{}, err
	}
	return domain.ParseBank(catalogID, data)
}
