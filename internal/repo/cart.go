package repo

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Skotchmaster/amilimetros/internal/models"
	"github.com/Skotchmaster/amilimetros/internal/watch"
)

type CartRepo struct {
	base
	DB *gorm.DB
}

func NewCartRepo(db *gorm.DB, hub *watch.Hub) *CartRepo {
	return &CartRepo{base: newBase("cart", hub), DB: db}
}

// AddToCart merges quantity into the user's line for product, creating the
// line from the product's current name, price and image when there is none.
// The merge is a single upsert on (user_id, product_id), so concurrent first
// adds end up in one line. A quantity below 1 counts as 1.
func (r *CartRepo) AddToCart(ctx context.Context, userID uint, product models.Product, quantity int) (*models.CartItem, error) {
	if quantity < 1 {
		quantity = 1
	}

	item := models.CartItem{
		UserID:       userID,
		ProductID:    product.ID,
		ProductName:  product.Name,
		ProductPrice: product.Price,
		Quantity:     quantity,
		ImageURL:     product.ImageURL,
	}
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "product_id"}},
			DoUpdates: clause.Assignments(map[string]any{
				"quantity": gorm.Expr(models.TableCartItems + ".quantity + excluded.quantity"),
			}),
		}).Create(&item).Error
		if err != nil {
			return err
		}
		item = models.CartItem{}
		return tx.Where("user_id = ? AND product_id = ?", userID, product.ID).First(&item).Error
	})
	if err = r.done("add", err); err != nil {
		return nil, err
	}

	r.notify(models.TableCartItems)
	return &item, nil
}

// UpdateQuantity overwrites the line's quantity. Zero or less removes the
// line, in which case the returned item is nil.
func (r *CartRepo) UpdateQuantity(ctx context.Context, item models.CartItem, quantity int) (*models.CartItem, error) {
	if quantity <= 0 {
		if err := r.RemoveFromCart(ctx, item); err != nil {
			return nil, err
		}
		return nil, nil
	}

	res := r.DB.WithContext(ctx).Model(&models.CartItem{}).
		Where("id = ?", item.ID).
		Update("quantity", quantity)
	err := res.Error
	if err == nil && res.RowsAffected == 0 {
		err = fmt.Errorf("cart item %d: %w", item.ID, ErrNotFound)
	}
	if err = r.done("update_quantity", err); err != nil {
		return nil, err
	}

	r.notify(models.TableCartItems)
	item.Quantity = quantity
	return &item, nil
}

// RemoveFromCart deletes the line. Removing a line that is already gone is
// not an error.
func (r *CartRepo) RemoveFromCart(ctx context.Context, item models.CartItem) error {
	err := r.DB.WithContext(ctx).Delete(&models.CartItem{}, item.ID).Error
	if err = r.done("remove", err); err != nil {
		return err
	}
	r.notify(models.TableCartItems)
	return nil
}

// ClearCart empties the user's cart and returns the lines it removed.
// Clearing an empty cart is not an error.
func (r *CartRepo) ClearCart(ctx context.Context, userID uint) ([]models.CartItem, error) {
	items := []models.CartItem{}
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).Order("id").Find(&items).Error; err != nil {
			return err
		}
		if len(items) == 0 {
			return nil
		}
		return tx.Where("user_id = ?", userID).Delete(&models.CartItem{}).Error
	})
	if err = r.done("clear", err); err != nil {
		return nil, err
	}
	if len(items) > 0 {
		r.notify(models.TableCartItems)
	}
	return items, nil
}

// GetItem returns the line only if it belongs to userID.
func (r *CartRepo) GetItem(ctx context.Context, userID, itemID uint) (*models.CartItem, error) {
	var item models.CartItem
	err := r.DB.WithContext(ctx).Where("id = ? AND user_id = ?", itemID, userID).First(&item).Error
	if err = r.done("get", err); err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *CartRepo) ListItems(ctx context.Context, userID uint) ([]models.CartItem, error) {
	items := []models.CartItem{}
	err := r.DB.WithContext(ctx).Where("user_id = ?", userID).Order("id").Find(&items).Error
	if err = r.done("list", err); err != nil {
		return nil, err
	}
	return items, nil
}

// Total sums price times quantity over the user's lines, zero when empty.
func (r *CartRepo) Total(ctx context.Context, userID uint) (decimal.Decimal, error) {
	items, err := r.ListItems(ctx, userID)
	if err != nil {
		return decimal.Zero, err
	}
	return SumItems(items), nil
}

func SumItems(items []models.CartItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.Subtotal())
	}
	return total
}

func (r *CartRepo) CartItems(userID uint) *watch.Feed[[]models.CartItem] {
	return watch.Open(r.hub, fmt.Sprintf("cart_items:%d", userID), func(ctx context.Context) ([]models.CartItem, error) {
		return r.ListItems(ctx, userID)
	}, models.TableCartItems)
}

func (r *CartRepo) CartTotal(userID uint) *watch.Feed[decimal.Decimal] {
	return watch.Open(r.hub, fmt.Sprintf("cart_total:%d", userID), func(ctx context.Context) (decimal.Decimal, error) {
		return r.Total(ctx, userID)
	}, models.TableCartItems)
}
