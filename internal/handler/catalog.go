package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/salon-booking/internal/catalog"
	"github.com/iliyamo/salon-booking/internal/repository"
)

// CatalogHandler serves the public service catalog.
type CatalogHandler struct {
	Services ServiceStore
}

// ListServices returns the catalog newest first, optionally filtered by
// ?category= (name or slug; "all" means no filter).
func (h *CatalogHandler) ListServices(c echo.Context) error {
	category, ok := catalog.Resolve(c.QueryParam("category"))
	if !ok {
		return badRequest(c, "unknown category")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	svcs, err := h.Services.List(ctx, category)
	if err != nil {
		return serverError(c, "database error")
	}
	return c.JSON(http.StatusOK, echo.Map{"items": svcs})
}

// GetService returns one service.
func (h *CatalogHandler) GetService(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	sv, err := h.Services.GetByID(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrServiceNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "service not found"})
		}
		return serverError(c, "database error")
	}
	return c.JSON(http.StatusOK, sv)
}

// ListCategories returns the fixed categories with their slugs.
func (h *CatalogHandler) ListCategories(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"items": catalog.List()})
}
