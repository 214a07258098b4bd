package repo

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/Skotchmaster/amilimetros/internal/models"
	"github.com/Skotchmaster/amilimetros/internal/watch"
)

type ProductRepo struct {
	base
	DB *gorm.DB
}

func NewProductRepo(db *gorm.DB, hub *watch.Hub) *ProductRepo {
	return &ProductRepo{base: newBase("product", hub), DB: db}
}

func (r *ProductRepo) AddProduct(ctx context.Context, p *models.Product) (uint, error) {
	p.ID = 0
	err := r.DB.WithContext(ctx).Create(p).Error
	if err = r.done("add", err); err != nil {
		return 0, err
	}
	r.notify(models.TableProducts)
	return p.ID, nil
}

// UpdateProduct overwrites every column of the stored product with p,
// including nil stock and image.
func (r *ProductRepo) UpdateProduct(ctx context.Context, p *models.Product) error {
	if p.ID == 0 {
		return r.done("update", fmt.Errorf("product without id: %w", ErrNotFound))
	}
	res := r.DB.WithContext(ctx).Model(&models.Product{ID: p.ID}).Select("*").Omit("id").Updates(p)
	err := res.Error
	if err == nil && res.RowsAffected == 0 {
		err = fmt.Errorf("product %d: %w", p.ID, ErrNotFound)
	}
	if err = r.done("update", err); err != nil {
		return err
	}
	r.notify(models.TableProducts)
	return nil
}

func (r *ProductRepo) DeleteProduct(ctx context.Context, id uint) error {
	res := r.DB.WithContext(ctx).Delete(&models.Product{}, id)
	err := res.Error
	if err == nil && res.RowsAffected == 0 {
		err = fmt.Errorf("product %d: %w", id, ErrNotFound)
	}
	if err = r.done("delete", err); err != nil {
		return err
	}
	r.notify(models.TableProducts)
	return nil
}

func (r *ProductRepo) GetProduct(ctx context.Context, id uint) (*models.Product, error) {
	var p models.Product
	err := r.DB.WithContext(ctx).First(&p, id).Error
	if err = r.done("get", err); err != nil {
		return nil, err
	}
	return &p, nil
}

// GetProducts returns the products with the given ids in id order. Unknown
// ids are skipped.
func (r *ProductRepo) GetProducts(ctx context.Context, ids []uint) ([]models.Product, error) {
	out := []models.Product{}
	if len(ids) == 0 {
		return out, nil
	}
	err := r.DB.WithContext(ctx).Where("id IN ?", ids).Order("id").Find(&out).Error
	if err = r.done("get_many", err); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *ProductRepo) ListProducts(ctx context.Context) ([]models.Product, error) {
	return r.list("list", r.DB.WithContext(ctx))
}

func (r *ProductRepo) ListByCategory(ctx context.Context, c models.Category) ([]models.Product, error) {
	return r.list("list_by_category", r.DB.WithContext(ctx).Where("category = ?", c))
}

func (r *ProductRepo) list(op string, q *gorm.DB) ([]models.Product, error) {
	out := []models.Product{}
	err := q.Order("name").Order("id").Find(&out).Error
	if err = r.done(op, err); err != nil {
		return nil, err
	}
	return out, nil
}

// SearchByName matches name case-insensitively as a substring and returns
// one page of results ordered by name together with the total match count.
func (r *ProductRepo) SearchByName(ctx context.Context, query string, offset, limit int) (int64, []models.Product, error) {
	if limit <= 0 {
		limit = -1
	}
	pattern := "%" + escapeLike(strings.ToLower(strings.TrimSpace(query))) + "%"
	matching := func() *gorm.DB {
		return r.DB.WithContext(ctx).Model(&models.Product{}).Where(`LOWER(name) LIKE ? ESCAPE '\'`, pattern)
	}

	var total int64
	if err := r.done("search", matching().Count(&total).Error); err != nil {
		return 0, nil, err
	}

	out := []models.Product{}
	err := matching().Order("name").Order("id").Offset(offset).Limit(limit).Find(&out).Error
	if err = r.done("search", err); err != nil {
		return 0, nil, err
	}
	return total, out, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func (r *ProductRepo) AllProducts() *watch.Feed[[]models.Product] {
	return watch.Open(r.hub, "products:all", r.ListProducts, models.TableProducts)
}

func (r *ProductRepo) ProductsByCategory(c models.Category) *watch.Feed[[]models.Product] {
	return watch.Open(r.hub, "products:"+string(c), func(ctx context.Context) ([]models.Product, error) {
		return r.ListByCategory(ctx, c)
	}, models.TableProducts)
}
