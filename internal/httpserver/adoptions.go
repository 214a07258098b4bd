package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/amilimetros/internal/middleware"
	"github.com/Skotchmaster/amilimetros/internal/models"
	"github.com/Skotchmaster/amilimetros/internal/service"
)

type AdoptionHandler struct {
	Adoptions *service.AdoptionService
}

type adoptionRequest struct {
	AnimalID         uint    `json:"animal_id"          validate:"required"`
	Reason           string  `json:"reason"             validate:"required,max=2000"`
	LivesInApartment bool    `json:"lives_in_apartment"`
	HasBalconyNets   bool    `json:"has_balcony_nets"`
	PhotoURI         *string `json:"photo_uri"          validate:"omitempty,max=2048"`
}

type statusRequest struct {
	Status string `json:"status" validate:"required,adoptionstatus"`
}

func (h *AdoptionHandler) Submit(c echo.Context) error {
	var req adoptionRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}
	form, err := h.Adoptions.Submit(c.Request().Context(), middleware.UserID(c), service.AdoptionRequest{
		AnimalID:         req.AnimalID,
		Reason:           req.Reason,
		LivesInApartment: req.LivesInApartment,
		HasBalconyNets:   req.HasBalconyNets,
		PhotoURI:         req.PhotoURI,
	})
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, form)
}

func (h *AdoptionHandler) Mine(c echo.Context) error {
	forms, err := h.Adoptions.Mine(c.Request().Context(), middleware.UserID(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, forms)
}

func (h *AdoptionHandler) MineStream(c echo.Context) error {
	return stream(c, "adoptions", h.Adoptions.MineFeed(middleware.UserID(c)))
}

func (h *AdoptionHandler) All(c echo.Context) error {
	forms, err := h.Adoptions.All(c.Request().Context())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, paginate(c, forms))
}

func (h *AdoptionHandler) AllStream(c echo.Context) error {
	return stream(c, "adoptions", h.Adoptions.AllFeed())
}

func (h *AdoptionHandler) SetStatus(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var req statusRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}
	form, err := h.Adoptions.SetStatus(c.Request().Context(), id, models.AdoptionStatus(req.Status))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, form)
}
