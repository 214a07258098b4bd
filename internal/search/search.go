// Package search finds products by free text. Elasticsearch is used when it
// is configured; otherwise queries go to the store.
package search

import (
	"context"

	"github.com/Skotchmaster/amilimetros/internal/models"
)

type Engine interface {
	Search(ctx context.Context, query string, from, size int) (int64, []models.Product, error)
	Index(ctx context.Context, p models.Product) error
	Remove(ctx context.Context, id uint) error
}

type productSearcher interface {
	SearchByName(ctx context.Context, query string, offset, limit int) (int64, []models.Product, error)
}

// StoreEngine searches product names in the store. The store is always in
// sync, so indexing is a no-op.
type StoreEngine struct {
	Products productSearcher
}

func (s StoreEngine) Search(ctx context.Context, query string, from, size int) (int64, []models.Product, error) {
	return s.Products.SearchByName(ctx, query, from, size)
}

func (StoreEngine) Index(context.Context, models.Product) error { return nil }
func (StoreEngine) Remove(context.Context, uint) error          { return nil }
