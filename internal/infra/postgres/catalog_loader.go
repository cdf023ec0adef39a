package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"oloom-quiz-service/internal/domain"
)

// CatalogLoader loads catalog JSONB from Postgres.
type CatalogLoader struct {
	pool *pgxpool.Pool
}

func NewCatalogLoader(pool *pgxpool.Pool) *CatalogLoader {
	return &CatalogLoader{pool: pool}
}

func (l *CatalogLoader) LoadCatalog(ctx context.Context, catalogID string) (domain.Catalog, error) {
	var raw []byte
	err := l.pool.QueryRow(ctx, `SELECT data FROM catalogs WHERE id=$1`, catalogID).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Catalog{}, domain.ErrCatalogNotFound
	}
	if err != nil {
		return domain.Catalog{}, fmt.Errorf("load catalog: %w", err)
	}
	var catalog domain.Catalog
	if err := json.Unmarshal(raw, &catalog); err != nil {
		return domain.Catalog{}, fmt.Errorf("unmarshal catalog: %w", err)
	}
	return catalog, nil
}
