package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/amilimetros/internal/models"
	"github.com/Skotchmaster/amilimetros/internal/service"
	"github.com/Skotchmaster/amilimetros/internal/util"
)

type ProductHandler struct {
	Catalog *service.CatalogService
}

type productRequest struct {
	Name        string          `json:"name"        validate:"required,min=1,max=100"`
	Description string          `json:"description" validate:"required,min=10,max=1000"`
	Price       decimal.Decimal `json:"price"       validate:"gt=0"`
	Stock       *int            `json:"stock"       validate:"omitempty,gte=0"`
	Category    string          `json:"category"    validate:"required,category"`
	ImageURL    *string         `json:"image_url"   validate:"omitempty,max=2048"`
}

func (r productRequest) product(id uint) *models.Product {
	p := &models.Product{
		ID:          id,
		Name:        r.Name,
		Description: r.Description,
		Price:       r.Price,
		Category:    models.Category(r.Category),
		ImageURL:    r.ImageURL,
	}
	if r.Stock != nil {
		s := uint(*r.Stock)
		p.Stock = &s
	}
	return p
}

// paginate slices items for the page and size query parameters and wraps
// them with the page metadata.
func paginate[T any](c echo.Context, items []T) map[string]any {
	page := parseIntDefault(c.QueryParam("page"), 1)
	size := parseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)
	total := int64(len(items))

	return map[string]any{
		"data": util.Slice(items, offset, limit),
		"meta": map[string]any{
			"page":        util.PageOf(offset, limit),
			"size":        limit,
			"total":       total,
			"total_pages": (total + int64(limit) - 1) / int64(limit),
			"has_prev":    offset > 0,
			"has_next":    int64(offset+limit) < total,
		},
	}
}

func (h *ProductHandler) GetProducts(c echo.Context) error {
	items, err := h.Catalog.List(c.Request().Context(), c.QueryParam("category"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, paginate(c, items))
}

func (h *ProductHandler) GetProduct(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	p, err := h.Catalog.Get(c.Request().Context(), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *ProductHandler) Search(c echo.Context) error {
	page := parseIntDefault(c.QueryParam("page"), 1)
	size := parseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	res, err := h.Catalog.Search(c.Request().Context(), c.QueryParam("q"), page, size)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

// Stream pushes the catalogue, or one category of it, whenever products
// change.
func (h *ProductHandler) Stream(c echo.Context) error {
	cat := c.QueryParam("category")
	if cat == "" {
		return stream(c, "products", h.Catalog.Products.AllProducts())
	}
	if !models.Category(cat).Valid() {
		return echo.NewHTTPError(http.StatusBadRequest, "unknown category")
	}
	return stream(c, "products", h.Catalog.Products.ProductsByCategory(models.Category(cat)))
}

func (h *ProductHandler) CreateProduct(c echo.Context) error {
	var req productRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}
	p := req.product(0)
	if err := h.Catalog.Create(c.Request().Context(), p); err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *ProductHandler) UpdateProduct(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var req productRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}
	p := req.product(id)
	if err := h.Catalog.Update(c.Request().Context(), p); err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *ProductHandler) DeleteProduct(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	if err := h.Catalog.Delete(c.Request().Context(), id); err != nil {
		return fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
