package service

import (
	"context"
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/amilimetros/internal/events"
	"github.com/Skotchmaster/amilimetros/internal/logging"
	"github.com/Skotchmaster/amilimetros/internal/models"
	"github.com/Skotchmaster/amilimetros/internal/repo"
	"github.com/Skotchmaster/amilimetros/internal/watch"
)

type CartService struct {
	Cart     *repo.CartRepo
	Products *repo.ProductRepo
	Events   events.Publisher
}

type CartView struct {
	Items []models.CartItem `json:"items"`
	Total decimal.Decimal   `json:"total"`
}

func (s *CartService) View(ctx context.Context, userID uint) (*CartView, error) {
	items, err := s.Cart.ListItems(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &CartView{Items: items, Total: repo.SumItems(items)}, nil
}

// Add puts quantity units of the product in the cart. Zero means one.
func (s *CartService) Add(ctx context.Context, userID, productID uint, quantity int) (*models.CartItem, error) {
	if productID == 0 {
		return nil, fmt.Errorf("product id is required: %w", ErrValidation)
	}
	if quantity < 0 {
		return nil, fmt.Errorf("quantity must be more than zero: %w", ErrValidation)
	}
	p, err := s.Products.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	item, err := s.Cart.AddToCart(ctx, userID, *p, quantity)
	if err != nil {
		logging.FromContext(ctx).Error("cart_add_failed", "product_id", productID, "error", err)
		return nil, err
	}
	s.publish(ctx, events.TypeItemAdded, userID, productID, item.Quantity)
	return item, nil
}

// SetQuantity overwrites the quantity of one of the user's lines; zero or
// less removes it and returns nil.
func (s *CartService) SetQuantity(ctx context.Context, userID, itemID uint, quantity int) (*models.CartItem, error) {
	item, err := s.Cart.GetItem(ctx, userID, itemID)
	if err != nil {
		return nil, err
	}
	updated, err := s.Cart.UpdateQuantity(ctx, *item, quantity)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		s.publish(ctx, events.TypeItemRemoved, userID, item.ProductID, 0)
	} else {
		s.publish(ctx, events.TypeItemUpdated, userID, item.ProductID, updated.Quantity)
	}
	return updated, nil
}

func (s *CartService) Remove(ctx context.Context, userID, itemID uint) error {
	item, err := s.Cart.GetItem(ctx, userID, itemID)
	if err != nil {
		return err
	}
	if err := s.Cart.RemoveFromCart(ctx, *item); err != nil {
		return err
	}
	s.publish(ctx, events.TypeItemRemoved, userID, item.ProductID, 0)
	return nil
}

func (s *CartService) Clear(ctx context.Context, userID uint) error {
	if _, err := s.Cart.ClearCart(ctx, userID); err != nil {
		return err
	}
	s.publish(ctx, events.TypeCartCleared, userID, 0, 0)
	return nil
}

// Checkout empties the cart like Clear and returns what was in it. There is
// no payment step, and stock is left alone. An empty cart checks out as an
// empty receipt.
func (s *CartService) Checkout(ctx context.Context, userID uint) (*CartView, error) {
	l := logging.FromContext(ctx).With("svc", "cart.checkout")

	bought, err := s.Cart.ClearCart(ctx, userID)
	if err != nil {
		l.Error("checkout_failed", "user_id", userID, "error", err)
		return nil, err
	}
	view := &CartView{Items: bought, Total: repo.SumItems(bought)}

	publish(ctx, s.Events, events.TopicCart, key(userID), events.CartCheckedOut{
		Type:   events.TypeCartCheckedOut,
		UserID: userID,
		Items:  len(bought),
		Total:  view.Total,
	})
	l.Info("checkout_ok", "user_id", userID, "items", len(bought), "total", view.Total.String())
	return view, nil
}

func (s *CartService) ItemsFeed(userID uint) *watch.Feed[[]models.CartItem] {
	return s.Cart.CartItems(userID)
}

func (s *CartService) TotalFeed(userID uint) *watch.Feed[decimal.Decimal] {
	return s.Cart.CartTotal(userID)
}

func (s *CartService) publish(ctx context.Context, typ string, userID, productID uint, quantity int) {
	publish(ctx, s.Events, events.TopicCart, key(userID), events.CartChanged{
		Type:      typ,
		UserID:    userID,
		ProductID: productID,
		Quantity:  quantity,
	})
}

func key(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
