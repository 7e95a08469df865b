package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/jinzhu/copier"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/salon-booking/internal/catalog"
	"github.com/iliyamo/salon-booking/internal/model"
	"github.com/iliyamo/salon-booking/internal/repository"
)

// AdminServiceHandler manages the catalog.  Every successful mutation
// drops the cached public catalog.
type AdminServiceHandler struct {
	Services ServiceStore
	Cache    CacheInvalidator // nil when running without Redis
	Seed     func() ([]model.Service, error)
	Logger   *zap.Logger
}

type createServiceReq struct {
	Name        string  `json:"name" validate:"required,max=255"`
	Category    string  `json:"category" validate:"omitempty,max=64"`
	Description *string `json:"description"`
	Duration    *string `json:"duration" validate:"omitempty,max=64"`
	Price       string  `json:"price" validate:"required,max=64"`
	ImageURL    *string `json:"image_url" validate:"omitempty,max=1024"`
}

type updateServiceReq struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=255"`
	Category    *string `json:"category" validate:"omitempty,max=64"`
	Description *string `json:"description"`
	Duration    *string `json:"duration" validate:"omitempty,max=64"`
	Price       *string `json:"price" validate:"omitempty,min=1,max=64"`
	ImageURL    *string `json:"image_url" validate:"omitempty,max=1024"`
}

func (h *AdminServiceHandler) invalidate(ctx context.Context) {
	if h.Cache == nil {
		return
	}
	if err := h.Cache.Invalidate(ctx); err != nil {
		h.Logger.Warn("invalidate catalog cache", zap.Error(err))
	}
}

// List returns every service, newest first.
func (h *AdminServiceHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	svcs, err := h.Services.List(ctx, "")
	if err != nil {
		return serverError(c, "database error")
	}
	return c.JSON(http.StatusOK, echo.Map{"items": svcs})
}

// Create adds a service.  A blank category defaults to "Hair Services".
func (h *AdminServiceHandler) Create(c echo.Context) error {
	var req createServiceReq
	if msg, ok := bindValid(c, &req); !ok {
		return badRequest(c, msg)
	}
	sv := model.Service{
		Name:        strings.TrimSpace(req.Name),
		Category:    strings.TrimSpace(req.Category),
		Description: trimPtr(req.Description),
		Duration:    trimPtr(req.Duration),
		Price:       strings.TrimSpace(req.Price),
		ImageURL:    trimPtr(req.ImageURL),
	}
	if sv.Category == "" {
		sv.Category = catalog.DefaultCategory
	}
	if !catalog.Valid(sv.Category) {
		return badRequest(c, "unknown category")
	}
	if sv.Name == "" || sv.Price == "" {
		return badRequest(c, "name and price are required")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	if err := h.Services.Create(ctx, &sv); err != nil {
		h.Logger.Error("create service", zap.Error(err))
		return serverError(c, "create failed")
	}
	h.invalidate(ctx)
	return c.JSON(http.StatusCreated, sv)
}

// Update changes the fields present in the body.
func (h *AdminServiceHandler) Update(c echo.Context) error {
	var req updateServiceReq
	if msg, ok := bindValid(c, &req); !ok {
		return badRequest(c, msg)
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	sv, err := h.Services.GetByID(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrServiceNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "service not found"})
		}
		return serverError(c, "database error")
	}
	if err := copier.CopyWithOption(sv, &req, copier.Option{IgnoreEmpty: true}); err != nil {
		return serverError(c, "update failed")
	}
	sv.Name = strings.TrimSpace(sv.Name)
	sv.Price = strings.TrimSpace(sv.Price)
	sv.Description = trimPtr(sv.Description)
	sv.Duration = trimPtr(sv.Duration)
	sv.ImageURL = trimPtr(sv.ImageURL)
	if !catalog.Valid(sv.Category) {
		return badRequest(c, "unknown category")
	}
	if sv.Name == "" || sv.Price == "" {
		return badRequest(c, "name and price are required")
	}

	if err := h.Services.Update(ctx, sv); err != nil {
		if errors.Is(err, repository.ErrServiceNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "service not found"})
		}
		return serverError(c, "update failed")
	}
	h.invalidate(ctx)
	return c.JSON(http.StatusOK, sv)
}

// Delete removes a service.
func (h *AdminServiceHandler) Delete(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if err := h.Services.Delete(ctx, c.Param("id")); err != nil {
		if errors.Is(err, repository.ErrServiceNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "service not found"})
		}
		return serverError(c, "delete failed")
	}
	h.invalidate(ctx)
	return c.NoContent(http.StatusNoContent)
}

// SeedSamples inserts the sample catalog.
func (h *AdminServiceHandler) SeedSamples(c echo.Context) error {
	svcs, err := h.Seed()
	if err != nil {
		h.Logger.Error("load seed file", zap.Error(err))
		return serverError(c, "seed file invalid")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	n, err := h.Services.CreateMany(ctx, svcs)
	if err != nil {
		h.Logger.Error("seed services", zap.Error(err))
		return serverError(c, "seed failed")
	}
	h.invalidate(ctx)
	return c.JSON(http.StatusCreated, echo.Map{"inserted": n})
}
