package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/locaspot/booking-api/internal/config"
	"github.com/locaspot/booking-api/internal/logger"
	"github.com/locaspot/booking-api/internal/metrics"
	"github.com/locaspot/booking-api/internal/middleware"
	"github.com/locaspot/booking-api/internal/model"
	"github.com/locaspot/booking-api/internal/repository"
	"github.com/locaspot/booking-api/internal/upload"
	"github.com/locaspot/booking-api/internal/utils"
)

// AuthHandler bundles dependencies for the auth endpoints.
type AuthHandler struct {
	Cfg     config.Config
	Users   UserStore
	Uploads *upload.Store
	Views   *middleware.ViewCache
}

func NewAuthHandler(cfg config.Config, users UserStore, uploads *upload.Store, views *middleware.ViewCache) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: users, Uploads: uploads, Views: views}
}

type registerReq struct {
	Name     string `form:"name" validate:"required"`
	Email    string `form:"email" validate:"required,email"`
	Phone    string `form:"phone"`
	Password string `form:"password" validate:"required,min=6"`
}

type loginReq struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Register creates a user from a multipart form (name, email, phone,
// password, optional avatar file). The password hash never leaves the
// server; a duplicate email maps to 409.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Name = strings.TrimSpace(req.Name)
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	// A zero-byte or absent avatar is "no file", not an error.
	var avatar *string
	if fh, err := c.FormFile("avatar"); err == nil {
		path, err := h.Uploads.Save(fh, upload.PurposeAvatars)
		if err != nil {
			lg := logger.Get()
			lg.Error().Err(err).Msg("store avatar failed")
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "store avatar failed"})
		}
		if path != "" {
			avatar = &path
			metrics.UploadsTotal.WithLabelValues(upload.PurposeAvatars).Inc()
		}
	}

	hash, err := utils.HashPassword(req.Password, h.Cfg.BcryptCost)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "hash password failed"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u := model.User{
		Email:        req.Email,
		PasswordHash: hash,
		Role:         model.RoleUser,
		Name:         req.Name,
		Phone:        strings.TrimSpace(req.Phone),
		Avatar:       avatar,
	}
	if err := h.Users.Create(ctx, &u); err != nil {
		if err == repository.ErrEmailExists {
			return c.JSON(http.StatusConflict, echo.Map{"error": "email already exists"})
		}
		lg := logger.Get()
		lg.Error().Err(err).Msg("create user failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create user failed"})
	}

	metrics.RegistrationsTotal.Inc()
	h.Views.Invalidate(ctx, middleware.ViewAdmin)

	return c.JSON(http.StatusCreated, echo.Map{"success": true, "user": u})
}

// Login verifies credentials and sets the session cookie. Unknown email and
// wrong password produce the same response so the endpoint does not reveal
// which emails are registered.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
		}
		lg := logger.Get()
		lg.Error().Err(err).Msg("query user failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "login failed"})
	}
	if !utils.VerifyPassword(u.PasswordHash, req.Password) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}

	tok, err := utils.NewSessionToken(h.Cfg.JWTSecret, u.ID, h.Cfg.SessionTTLDays)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue token failed"})
	}
	c.SetCookie(h.sessionCookie(tok.Token, tok.Exp))

	return c.JSON(http.StatusOK, echo.Map{"success": true, "user": u})
}

// Logout clears the session cookie. The token itself simply ages out.
func (h *AuthHandler) Logout(c echo.Context) error {
	c.SetCookie(h.sessionCookie("", time.Unix(0, 0)))
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

// Me returns the resolved caller. The route is wrapped in RequireAuth, so a
// guest never reaches this handler.
func (h *AuthHandler) Me(c echo.Context) error {
	return c.JSON(http.StatusOK, middleware.CurrentUser(c))
}

func (h *AuthHandler) sessionCookie(value string, expires time.Time) *http.Cookie {
	ck := &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   h.Cfg.IsProd(),
	}
	if value == "" {
		ck.MaxAge = -1
	}
	return ck
}
