package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/bloodcare/donation-system/internal/core/ports"
)

// GeoHandler serves the recognized district/upazila dataset.
type GeoHandler struct {
	geo ports.GeoDirectory
}

func NewGeoHandler(geo ports.GeoDirectory) *GeoHandler {
	return &GeoHandler{geo: geo}
}

// Districts handles GET /v1/geo/districts.
func (h *GeoHandler) Districts(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string][]string{"districts": h.geo.Districts()})
}

// Upazilas handles GET /v1/geo/districts/:district/upazilas.
func (h *GeoHandler) Upazilas(c echo.Context) error {
	district := c.Param("district")
	upazilas, ok := h.geo.Upazilas(district)
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "unknown district")
	}
	return c.JSON(http.StatusOK, map[string][]string{"upazilas": upazilas})
}
