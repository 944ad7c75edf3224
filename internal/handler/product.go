package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/locaspot/booking-api/internal/logger"
	"github.com/locaspot/booking-api/internal/metrics"
	"github.com/locaspot/booking-api/internal/middleware"
	"github.com/locaspot/booking-api/internal/model"
	"github.com/locaspot/booking-api/internal/repository"
	"github.com/locaspot/booking-api/internal/upload"
)

// ProductHandler serves the listing CRUD endpoints. Reads are public;
// mutations sit behind RequireAuth in the router and invalidate the cached
// product views.
type ProductHandler struct {
	Products ProductStore
	Uploads  *upload.Store
	Views    *middleware.ViewCache
}

func NewProductHandler(products ProductStore, uploads *upload.Store, views *middleware.ViewCache) *ProductHandler {
	return &ProductHandler{Products: products, Uploads: uploads, Views: views}
}

// List returns all products with their images, newest first.
func (h *ProductHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	products, err := h.Products.List(ctx)
	if err != nil {
		lg := logger.Get()
		lg.Error().Err(err).Msg("list products failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "server error"})
	}
	return c.JSON(http.StatusOK, products)
}

// Get returns one product by id.
func (h *ProductHandler) Get(c echo.Context) error {
	id, ok := paramID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	p, err := h.Products.GetByID(ctx, id)
	if err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
		}
		lg := logger.Get()
		lg.Error().Err(err).Uint64("product_id", id).Msg("get product failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "server error"})
	}
	return c.JSON(http.StatusOK, p)
}

// Create inserts a product and its gallery from a multipart form. The
// product row and all image rows are written in one transaction; the files
// themselves are written first and are not rolled back when the insert
// fails, matching the documented storage model.
func (h *ProductHandler) Create(c echo.Context) error {
	title := strings.TrimSpace(c.FormValue("title"))
	description := strings.TrimSpace(c.FormValue("description"))
	city := strings.TrimSpace(c.FormValue("city"))
	price, _ := strconv.ParseFloat(c.FormValue("price"), 64)
	if title == "" || description == "" || city == "" || price <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "title, description, price and city are required"})
	}

	var lat, lng *float64
	if v := c.FormValue("latitude"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			lat = &f
		}
	}
	if v := c.FormValue("longitude"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			lng = &f
		}
	}

	var mainImage *string
	if fh, err := c.FormFile("mainImage"); err == nil {
		path, err := h.Uploads.Save(fh, upload.PurposeUploads)
		if err != nil {
			lg := logger.Get()
			lg.Error().Err(err).Msg("store main image failed")
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "store image failed"})
		}
		if path != "" {
			mainImage = &path
			metrics.UploadsTotal.WithLabelValues(upload.PurposeUploads).Inc()
		}
	}

	gallery := []string{}
	if form, err := c.MultipartForm(); err == nil {
		for _, fh := range form.File["gallery"] {
			path, err := h.Uploads.Save(fh, upload.PurposeUploads)
			if err != nil {
				lg := logger.Get()
				lg.Error().Err(err).Msg("store gallery image failed")
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "store image failed"})
			}
			if path != "" {
				gallery = append(gallery, path)
				metrics.UploadsTotal.WithLabelValues(upload.PurposeUploads).Inc()
			}
		}
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	p := model.Product{
		Title:       title,
		Description: description,
		Price:       price,
		City:        city,
		Latitude:    lat,
		Longitude:   lng,
		Image:       mainImage,
	}
	if err := h.Products.CreateWithImages(ctx, &p, gallery); err != nil {
		lg := logger.Get()
		lg.Error().Err(err).Msg("create product failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create product failed"})
	}

	h.Views.Invalidate(ctx, middleware.ViewProducts, middleware.ViewAdmin)
	return c.JSON(http.StatusCreated, echo.Map{"ok": true, "id": p.ID})
}

type productUpdateReq struct {
	Title       string   `json:"title" validate:"required"`
	Description string   `json:"description" validate:"required"`
	Price       float64  `json:"price" validate:"required,gt=0"`
	City        string   `json:"city" validate:"required"`
	Latitude    *float64 `json:"latitude"`
	Longitude   *float64 `json:"longitude"`
	Image       *string  `json:"image"`
}

// Update replaces all editable fields of a product from a JSON body.
func (h *ProductHandler) Update(c echo.Context) error {
	id, ok := paramID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req productUpdateReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Title = strings.TrimSpace(req.Title)
	req.Description = strings.TrimSpace(req.Description)
	req.City = strings.TrimSpace(req.City)
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	p, err := h.Products.Update(ctx, id, repository.ProductUpdate{
		Title:       req.Title,
		Description: req.Description,
		Price:       req.Price,
		City:        req.City,
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
		Image:       req.Image,
	})
	if err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
		}
		lg := logger.Get()
		lg.Error().Err(err).Uint64("product_id", id).Msg("update product failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update product failed"})
	}

	h.Views.Invalidate(ctx, middleware.ViewProducts, middleware.ViewAdmin)
	return c.JSON(http.StatusOK, p)
}

// Delete removes a product; its image rows go with it via the schema
// cascade. Uploaded files stay on disk, as in the storage model.
func (h *ProductHandler) Delete(c echo.Context) error {
	id, ok := paramID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Products.Delete(ctx, id); err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
		}
		lg := logger.Get()
		lg.Error().Err(err).Uint64("product_id", id).Msg("delete product failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete product failed"})
	}

	h.Views.Invalidate(ctx, middleware.ViewProducts, middleware.ViewAdmin)
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

// paramID parses the :id route parameter.
func paramID(c echo.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return id, true
}
