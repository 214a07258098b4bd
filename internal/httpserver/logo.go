package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/amilimetros/internal/repo"
)

type LogoHandler struct {
	Logos *repo.LogoRepo
}

func (h *LogoHandler) GetLogo(c echo.Context) error {
	logo, err := h.Logos.Load(c.Request().Context())
	if err != nil {
		return fail(c, err)
	}
	c.Response().Header().Set("Cache-Control", "public, max-age=3600")
	return c.Blob(http.StatusOK, http.DetectContentType(logo.Image), logo.Image)
}
