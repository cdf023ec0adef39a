package redis

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"oloom-quiz-service/internal/domain"
)

// CatalogLoader fetches catalog content from a backing store (file, Postgres).
type CatalogLoader interface {
	LoadCatalog(ctx context.Context, catalogID string) (domain.Catalog, error)
}

// CatalogRepository caches whole catalogs as JSON in Redis and falls back to
// a loader on cache miss. Free-text grading needs full question bodies, so
// the entire catalog is cached rather than an answer-key projection.
// Stored as: SET quiz:catalog:{catalogID} {json} EX ttl
type CatalogRepository struct {
	client *redis.Client
	loader CatalogLoader
	ttl    time.Duration
	sf     singleflight.Group
	rnd    *rand.Rand
}

func NewCatalogRepository(client *redis.Client, loader CatalogLoader, ttl time.Duration) *CatalogRepository {
	return &CatalogRepository{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *CatalogRepository) GetCatalog(ctx context.Context, catalogID string) (domain.Catalog, error) {
	key := r.key(catalogID)

	if catalog, ok := r.cached(ctx, key); ok {
		return catalog, nil
	}

	result, err, _ := r.sf.Do(catalogID, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if catalog, ok := r.cached(ctx, key); ok {
			return catalog, nil
		}

		catalog, err := r.loader.LoadCatalog(ctx, catalogID)
		if err != nil {
			return domain.Catalog{}, err
		}

		if raw, err := json.Marshal(catalog); err == nil {
			// best-effort cache fill
			_ = r.client.Set(ctx, key, raw, r.ttlWithJitter()).Err()
		}
		return catalog, nil
	})
	if err != nil {
		return domain.Catalog{}, err
	}
	return result.(domain.Catalog), nil
}

func (r *CatalogRepository) cached(ctx context.Context, key string) (domain.Catalog, bool) {
	raw, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) || err != nil {
		return domain.Catalog{}, false
	}
	var catalog domain.Catalog
	if err := json.Unmarshal(raw, &catalog); err != nil {
		return domain.Catalog{}, false
	}
	return catalog, true
}

func (r *CatalogRepository) key(catalogID string) string {
	return "quiz:catalog:" + catalogID
}

func (r *CatalogRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
