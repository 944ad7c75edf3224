package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/locaspot/booking-api/internal/logger"
	"github.com/locaspot/booking-api/internal/middleware"
	"github.com/locaspot/booking-api/internal/repository"
)

// AdminHandler serves the moderation endpoints behind RequireRole(ADMIN):
// dashboard listings plus activation toggles for users and products. The
// toggles are field-patches, so fields the admin did not send keep their
// values.
type AdminHandler struct {
	Users        UserStore
	Products     ProductStore
	Reservations ReservationStore
	Views        *middleware.ViewCache
}

func NewAdminHandler(users UserStore, products ProductStore, reservations ReservationStore, views *middleware.ViewCache) *AdminHandler {
	return &AdminHandler{Users: users, Products: products, Reservations: reservations, Views: views}
}

// ListUsers returns every user for the admin dashboard.
func (h *AdminHandler) ListUsers(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	users, err := h.Users.List(ctx)
	if err != nil {
		lg := logger.Get()
		lg.Error().Err(err).Msg("list users failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "server error"})
	}
	return c.JSON(http.StatusOK, users)
}

// ListReservations returns every reservation for the admin dashboard.
func (h *AdminHandler) ListReservations(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	reservations, err := h.Reservations.ListAll(ctx)
	if err != nil {
		lg := logger.Get()
		lg.Error().Err(err).Msg("list reservations failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "server error"})
	}
	return c.JSON(http.StatusOK, reservations)
}

type activePatchReq struct {
	Active *bool `json:"active"`
}

// PatchUser toggles a user's active flag.
func (h *AdminHandler) PatchUser(c echo.Context) error {
	id, ok := paramID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req activePatchReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Active == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "no fields to update"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.Patch(ctx, id, repository.UserPatch{Active: req.Active})
	if err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
		}
		lg := logger.Get()
		lg.Error().Err(err).Uint64("user_id", id).Msg("patch user failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update user failed"})
	}

	h.Views.Invalidate(ctx, middleware.ViewAdmin)
	return c.JSON(http.StatusOK, u)
}

// PatchProduct toggles a product's active flag.
func (h *AdminHandler) PatchProduct(c echo.Context) error {
	id, ok := paramID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req activePatchReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Active == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "no fields to update"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	p, err := h.Products.Patch(ctx, id, repository.ProductPatch{Active: req.Active})
	if err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
		}
		lg := logger.Get()
		lg.Error().Err(err).Uint64("product_id", id).Msg("patch product failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update product failed"})
	}

	h.Views.Invalidate(ctx, middleware.ViewProducts, middleware.ViewAdmin)
	return c.JSON(http.StatusOK, p)
}
