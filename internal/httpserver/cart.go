package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/amilimetros/internal/middleware"
	"github.com/Skotchmaster/amilimetros/internal/service"
)

type CartHandler struct {
	Cart *service.CartService
}

type addToCartRequest struct {
	ProductID uint `json:"product_id" validate:"required"`
	Quantity  int  `json:"quantity"   validate:"gt=0"`
}

type quantityRequest struct {
	Quantity int `json:"quantity"`
}

func (h *CartHandler) GetCart(c echo.Context) error {
	view, err := h.Cart.View(c.Request().Context(), middleware.UserID(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, view)
}

func (h *CartHandler) AddToCart(c echo.Context) error {
	var req addToCartRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}
	item, err := h.Cart.Add(c.Request().Context(), middleware.UserID(c), req.ProductID, req.Quantity)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, item)
}

// SetQuantity answers 204 when the quantity removed the line.
func (h *CartHandler) SetQuantity(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var req quantityRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}
	item, err := h.Cart.SetQuantity(c.Request().Context(), middleware.UserID(c), id, req.Quantity)
	if err != nil {
		return fail(c, err)
	}
	if item == nil {
		return c.NoContent(http.StatusNoContent)
	}
	return c.JSON(http.StatusOK, item)
}

func (h *CartHandler) RemoveItem(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	if err := h.Cart.Remove(c.Request().Context(), middleware.UserID(c), id); err != nil {
		return fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *CartHandler) ClearCart(c echo.Context) error {
	if err := h.Cart.Clear(c.Request().Context(), middleware.UserID(c)); err != nil {
		return fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *CartHandler) Checkout(c echo.Context) error {
	view, err := h.Cart.Checkout(c.Request().Context(), middleware.UserID(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, view)
}

// Stream follows the cart lines, or only the total with ?view=total.
func (h *CartHandler) Stream(c echo.Context) error {
	uid := middleware.UserID(c)
	if c.QueryParam("view") == "total" {
		return stream(c, "cart_total", h.Cart.TotalFeed(uid))
	}
	return stream(c, "cart_items", h.Cart.ItemsFeed(uid))
}
