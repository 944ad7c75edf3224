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
	"github.com/locaspot/booking-api/internal/queue"
	"github.com/locaspot/booking-api/internal/repository"
	"github.com/locaspot/booking-api/internal/upload"
)

// ReservationHandler serves reservation endpoints. Creation and listing are
// caller-scoped; status updates and deletion are admin operations gated in
// the router.
type ReservationHandler struct {
	Reservations ReservationStore
	Products     ProductStore
	Uploads      *upload.Store
	Views        *middleware.ViewCache
	Events       *queue.Publisher
}

func NewReservationHandler(reservations ReservationStore, products ProductStore, uploads *upload.Store, views *middleware.ViewCache, events *queue.Publisher) *ReservationHandler {
	return &ReservationHandler{
		Reservations: reservations,
		Products:     products,
		Uploads:      uploads,
		Views:        views,
		Events:       events,
	}
}

// List returns the caller's reservations, newest first, each with its
// product attached.
func (h *ReservationHandler) List(c echo.Context) error {
	u := middleware.CurrentUser(c)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	reservations, err := h.Reservations.ListByUser(ctx, u.ID)
	if err != nil {
		lg := logger.Get()
		lg.Error().Err(err).Uint64("user_id", u.ID).Msg("list reservations failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "server error"})
	}
	return c.JSON(http.StatusOK, reservations)
}

// Create books a product for the caller from a multipart form: productId,
// startDate, endDate, totalPrice, occupant contact fields and up to three
// document files. Missing or zero-byte document files leave their reference
// fields null.
func (h *ReservationHandler) Create(c echo.Context) error {
	u := middleware.CurrentUser(c)

	productID, _ := strconv.ParseUint(c.FormValue("productId"), 10, 64)
	totalPrice, _ := strconv.ParseFloat(c.FormValue("totalPrice"), 64)
	startRaw := c.FormValue("startDate")
	endRaw := c.FormValue("endDate")
	if productID == 0 || totalPrice <= 0 || startRaw == "" || endRaw == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "productId, startDate, endDate and totalPrice are required"})
	}
	start, err1 := parseDate(startRaw)
	end, err2 := parseDate(endRaw)
	if err1 != nil || err2 != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid date format"})
	}
	if start.After(end) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "startDate must not be after endDate"})
	}

	totalPersons := 1
	if v := c.FormValue("totalPersons"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			totalPersons = n
		}
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	product, err := h.Products.GetByID(ctx, productID)
	if err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "product not found"})
		}
		lg := logger.Get()
		lg.Error().Err(err).Uint64("product_id", productID).Msg("load product failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "server error"})
	}

	cin, err := h.saveDocument(c, "cinFile")
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "store document failed"})
	}
	passport, err := h.saveDocument(c, "passportFile")
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "store document failed"})
	}
	contract, err := h.saveDocument(c, "contractFile")
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "store document failed"})
	}

	res := model.Reservation{
		UserID:       u.ID,
		ProductID:    productID,
		StartDate:    start,
		EndDate:      end,
		TotalPrice:   totalPrice,
		Status:       model.ReservationPending,
		FullName:     optForm(c, "fullName"),
		Phone:        optForm(c, "phone"),
		Address:      optForm(c, "address"),
		TotalPersons: totalPersons,
		CinFile:      cin,
		PassportFile: passport,
		ContractFile: contract,
	}
	if err := h.Reservations.Create(ctx, &res); err != nil {
		lg := logger.Get()
		lg.Error().Err(err).Msg("create reservation failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create reservation failed"})
	}

	metrics.ReservationsCreatedTotal.Inc()
	h.Views.Invalidate(ctx, middleware.ViewAdmin)
	_ = h.Events.ReservationCreated(ctx, queue.ReservationCreatedEvent{
		ReservationID: res.ID,
		UserID:        res.UserID,
		ProductID:     res.ProductID,
		ProductTitle:  product.Title,
		StartDate:     res.StartDate.Format("2006-01-02"),
		EndDate:       res.EndDate.Format("2006-01-02"),
		TotalPrice:    res.TotalPrice,
		TotalPersons:  res.TotalPersons,
		CreatedAt:     res.CreatedAt.UTC().Format(time.RFC3339),
	})

	return c.JSON(http.StatusCreated, res)
}

type statusReq struct {
	Status string `json:"status" validate:"required,oneof=PENDING CONFIRMED CANCELLED"`
}

// UpdateStatus patches only the status field of a reservation; every other
// field keeps its value. Admin-only.
func (h *ReservationHandler) UpdateStatus(c echo.Context) error {
	id, ok := paramID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req statusReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Status = strings.ToUpper(strings.TrimSpace(req.Status))
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	prev, err := h.Reservations.GetByID(ctx, id)
	if err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
		}
		lg := logger.Get()
		lg.Error().Err(err).Uint64("reservation_id", id).Msg("load reservation failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "server error"})
	}

	res, err := h.Reservations.UpdateStatus(ctx, id, req.Status)
	if err != nil {
		lg := logger.Get()
		lg.Error().Err(err).Uint64("reservation_id", id).Msg("update status failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update reservation failed"})
	}

	metrics.ReservationStatusTotal.WithLabelValues(req.Status).Inc()
	h.Views.Invalidate(ctx, middleware.ViewAdmin)
	_ = h.Events.ReservationStatus(ctx, queue.ReservationStatusEvent{
		ReservationID: res.ID,
		UserID:        res.UserID,
		OldStatus:     prev.Status,
		NewStatus:     res.Status,
		ChangedBy:     middleware.CurrentUser(c).ID,
		ChangedAt:     time.Now().UTC().Format(time.RFC3339),
	})

	return c.JSON(http.StatusOK, res)
}

// Delete removes a reservation. Admin-only.
func (h *ReservationHandler) Delete(c echo.Context) error {
	id, ok := paramID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Reservations.Delete(ctx, id); err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
		}
		lg := logger.Get()
		lg.Error().Err(err).Uint64("reservation_id", id).Msg("delete reservation failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete reservation failed"})
	}

	h.Views.Invalidate(ctx, middleware.ViewAdmin)
	return c.JSON(http.StatusOK, echo.Map{"ok": true})
}

func (h *ReservationHandler) saveDocument(c echo.Context, field string) (*string, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		return nil, nil // absent file -> null reference
	}
	path, err := h.Uploads.Save(fh, upload.PurposeDocuments)
	if err != nil {
		lg := logger.Get()
		lg.Error().Err(err).Str("field", field).Msg("store document failed")
		return nil, err
	}
	if path == "" {
		return nil, nil // zero-byte file -> null reference
	}
	metrics.UploadsTotal.WithLabelValues(upload.PurposeDocuments).Inc()
	return &path, nil
}

// parseDate accepts plain dates and RFC3339 timestamps.
func parseDate(raw string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, raw)
}

func optForm(c echo.Context, field string) *string {
	v := strings.TrimSpace(c.FormValue(field))
	if v == "" {
		return nil
	}
	return &v
}
