package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/Skotchmaster/amilimetros/internal/events"
	"github.com/Skotchmaster/amilimetros/internal/logging"
	"github.com/Skotchmaster/amilimetros/internal/models"
	"github.com/Skotchmaster/amilimetros/internal/repo"
	"github.com/Skotchmaster/amilimetros/internal/search"
	"github.com/Skotchmaster/amilimetros/internal/util"
)

type CatalogService struct {
	Products *repo.ProductRepo
	Engine   search.Engine
	Events   events.Publisher
}

type SearchResult struct {
	Total    int64            `json:"total"`
	Page     int              `json:"page"`
	Size     int              `json:"size"`
	Products []models.Product `json:"products"`
}

func (s *CatalogService) List(ctx context.Context, category string) ([]models.Product, error) {
	if category == "" {
		return s.Products.ListProducts(ctx)
	}
	c := models.Category(category)
	if !c.Valid() {
		return nil, fmt.Errorf("unknown category %q: %w", category, ErrValidation)
	}
	return s.Products.ListByCategory(ctx, c)
}

func (s *CatalogService) Get(ctx context.Context, id uint) (*models.Product, error) {
	return s.Products.GetProduct(ctx, id)
}

func (s *CatalogService) Search(ctx context.Context, query string, page, size int) (*SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("empty search query: %w", ErrValidation)
	}
	engine := s.Engine
	if engine == nil {
		engine = search.StoreEngine{Products: s.Products}
	}
	from, size := util.Calculate(page, size)
	total, products, err := engine.Search(ctx, query, from, size)
	if err != nil {
		logging.FromContext(ctx).Error("search_failed", "query", query, "error", err)
		return nil, err
	}
	if _, local := engine.(search.StoreEngine); !local {
		products = s.current(ctx, products)
	}
	return &SearchResult{Total: total, Page: util.PageOf(from, size), Size: size, Products: products}, nil
}

// current swaps indexed copies for the stored rows, keeping hit order, so
// price and stock are never stale. Hits deleted since indexing are dropped.
// If the store read fails the indexed copies are returned as they are.
func (s *CatalogService) current(ctx context.Context, hits []models.Product) []models.Product {
	if len(hits) == 0 {
		return hits
	}
	ids := make([]uint, len(hits))
	for i, h := range hits {
		ids[i] = h.ID
	}
	stored, err := s.Products.GetProducts(ctx, ids)
	if err != nil {
		logging.FromContext(ctx).Warn("search_refresh_failed", "error", err)
		return hits
	}
	byID := make(map[uint]models.Product, len(stored))
	for _, p := range stored {
		byID[p.ID] = p
	}
	out := make([]models.Product, 0, len(hits))
	for _, h := range hits {
		if p, ok := byID[h.ID]; ok {
			out = append(out, p)
		}
	}
	return out
}

func (s *CatalogService) Create(ctx context.Context, p *models.Product) error {
	if err := checkProduct(p); err != nil {
		return err
	}
	if _, err := s.Products.AddProduct(ctx, p); err != nil {
		return err
	}
	s.index(ctx, *p)
	s.publish(ctx, events.TypeProductCreated, *p)
	return nil
}

func (s *CatalogService) Update(ctx context.Context, p *models.Product) error {
	if err := checkProduct(p); err != nil {
		return err
	}
	if err := s.Products.UpdateProduct(ctx, p); err != nil {
		return err
	}
	s.index(ctx, *p)
	s.publish(ctx, events.TypeProductUpdated, *p)
	return nil
}

func (s *CatalogService) Delete(ctx context.Context, id uint) error {
	if err := s.Products.DeleteProduct(ctx, id); err != nil {
		return err
	}
	if s.Engine != nil {
		if err := s.Engine.Remove(ctx, id); err != nil {
			logging.FromContext(ctx).Warn("search_remove_failed", "product_id", id, "error", err)
		}
	}
	s.publish(ctx, events.TypeProductDeleted, models.Product{ID: id})
	return nil
}

func (s *CatalogService) index(ctx context.Context, p models.Product) {
	if s.Engine == nil {
		return
	}
	if err := s.Engine.Index(ctx, p); err != nil {
		logging.FromContext(ctx).Warn("search_index_failed", "product_id", p.ID, "error", err)
	}
}

func (s *CatalogService) publish(ctx context.Context, typ string, p models.Product) {
	publish(ctx, s.Events, events.TopicProducts, strconv.FormatUint(uint64(p.ID), 10), events.ProductChanged{
		Type:      typ,
		ProductID: p.ID,
		Name:      p.Name,
		Price:     p.Price,
	})
}

func checkProduct(p *models.Product) error {
	if !p.Category.Valid() {
		return fmt.Errorf("unknown category %q: %w", p.Category, ErrValidation)
	}
	if !p.Price.IsPositive() {
		return fmt.Errorf("price must be greater than zero: %w", ErrValidation)
	}
	return nil
}
