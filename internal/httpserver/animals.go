package httpserver

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/amilimetros/internal/models"
	"github.com/Skotchmaster/amilimetros/internal/service"
)

type AnimalHandler struct {
	Animals *service.AnimalService
}

type animalRequest struct {
	Name        string  `json:"name"        validate:"required,personname,max=100"`
	Species     string  `json:"species"     validate:"required,max=50"`
	Breed       string  `json:"breed"       validate:"required,max=100"`
	Age         int     `json:"age"         validate:"gte=0,lte=30"`
	Description string  `json:"description" validate:"required,min=10,max=1000"`
	ImageURL    *string `json:"image_url"   validate:"omitempty,max=2048"`
}

func (r animalRequest) animal(id uint) *models.Animal {
	return &models.Animal{
		ID:          id,
		Name:        r.Name,
		Species:     r.Species,
		Breed:       r.Breed,
		Age:         r.Age,
		Description: r.Description,
		ImageURL:    r.ImageURL,
	}
}

// includeAdopted reads ?all=true; anything unparsable means false.
func includeAdopted(c echo.Context) bool {
	all, _ := strconv.ParseBool(c.QueryParam("all"))
	return all
}

func (h *AnimalHandler) GetAnimals(c echo.Context) error {
	items, err := h.Animals.List(c.Request().Context(), includeAdopted(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, paginate(c, items))
}

func (h *AnimalHandler) GetAnimal(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	a, err := h.Animals.Get(c.Request().Context(), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, a)
}

func (h *AnimalHandler) Stream(c echo.Context) error {
	return stream(c, "animals", h.Animals.Feed(includeAdopted(c)))
}

func (h *AnimalHandler) Adopt(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	a, err := h.Animals.Adopt(c.Request().Context(), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, a)
}

func (h *AnimalHandler) CreateAnimal(c echo.Context) error {
	var req animalRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}
	a := req.animal(0)
	if err := h.Animals.Create(c.Request().Context(), a); err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, a)
}

func (h *AnimalHandler) UpdateAnimal(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var req animalRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}
	a := req.animal(id)
	if err := h.Animals.Update(c.Request().Context(), a); err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, a)
}

func (h *AnimalHandler) DeleteAnimal(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	if err := h.Animals.Delete(c.Request().Context(), id); err != nil {
		return fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
